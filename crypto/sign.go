package crypto

import (
	"bytes"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/pkg/errors"
)

// SignDetached signs the message with every key of the keyring, in order,
// and returns the detached signature packets. Pre-existing signatures in
// extra are attached after the keyring signatures.
func (keyRing *KeyRing) SignDetached(message *PlainMessage, extra *PGPSignature, unixTime int64) (*PGPSignature, error) {
	sigs, err := keyRing.signDetachedPackets(message, extra, unixTime)
	if err != nil {
		return nil, err
	}
	if len(sigs) == 0 {
		return nil, errors.New("openpgpjs: no signer available")
	}

	var buf bytes.Buffer
	for _, sig := range sigs {
		if err := sig.Serialize(&buf); err != nil {
			return nil, errors.Wrap(err, "openpgpjs: error in serializing signature")
		}
	}
	return NewPGPSignature(buf.Bytes()), nil
}

// signDetachedPackets computes one signature packet per keyring key over the
// message, in keyring order, appending any pre-existing signature packets
// from extra.
func (keyRing *KeyRing) signDetachedPackets(message *PlainMessage, extra *PGPSignature, unixTime int64) ([]*packet.Signature, error) {
	config := mainConfig(unixTime)

	var sigs []*packet.Signature
	for _, key := range keyRing.keys {
		var buf bytes.Buffer
		var err error
		if message.IsText() {
			err = openpgp.DetachSignText(&buf, key.entity, message.NewReader(), config)
		} else {
			err = openpgp.DetachSign(&buf, key.entity, message.NewReader(), config)
		}
		if err != nil {
			return nil, errors.Wrap(err, "openpgpjs: error in signing")
		}
		parsed, err := parseSignaturePackets(buf.Bytes())
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, parsed...)
	}

	if extra != nil && len(extra.Data) > 0 {
		parsed, err := parseSignaturePackets(extra.Data)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, parsed...)
	}

	return sigs, nil
}

// parseSignaturePackets reads every signature packet out of data.
func parseSignaturePackets(data []byte) ([]*packet.Signature, error) {
	var sigs []*packet.Signature

	packets := packet.NewReader(bytes.NewReader(data))
	for {
		p, err := packets.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "openpgpjs: error in parsing signature packets")
		}
		sig, ok := p.(*packet.Signature)
		if !ok {
			return nil, errors.New("openpgpjs: signature data contains a non-signature packet")
		}
		sigs = append(sigs, sig)
	}

	if len(sigs) == 0 {
		return nil, errors.New("openpgpjs: no signature packet found")
	}
	return sigs, nil
}

// SignCleartext signs the text with every private key of the keyring and
// returns the armored cleartext signed message.
func (keyRing *KeyRing) SignCleartext(text string, unixTime int64) (string, error) {
	config := mainConfig(unixTime)

	var privateKeys []*packet.PrivateKey
	for _, key := range keyRing.keys {
		if key.entity.PrivateKey != nil && !key.entity.PrivateKey.Encrypted {
			privateKeys = append(privateKeys, key.entity.PrivateKey)
		}
	}
	if len(privateKeys) == 0 {
		return "", errors.New("openpgpjs: cannot sign cleartext message, no unlocked signer key")
	}

	var buf bytes.Buffer
	w, err := clearsign.EncodeMulti(&buf, privateKeys, config)
	if err != nil {
		return "", errors.Wrap(err, "openpgpjs: error in encoding cleartext message")
	}
	if _, err := io.WriteString(w, text); err != nil {
		return "", errors.Wrap(err, "openpgpjs: error in writing cleartext message")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "openpgpjs: error in signing cleartext message")
	}

	return buf.String(), nil
}

// NewCleartextMessageFromArmored parses an armored cleartext signed message
// into its text and signature packets.
func NewCleartextMessageFromArmored(armored string) (*CleartextMessage, error) {
	block, rest := clearsign.Decode([]byte(armored))
	if block == nil {
		return nil, errors.New("openpgpjs: not a cleartext signed message")
	}
	if len(bytes.TrimSpace(rest)) > 0 {
		return nil, errors.New("openpgpjs: extra data after cleartext signed message")
	}

	signature, err := io.ReadAll(block.ArmoredSignature.Body)
	if err != nil {
		return nil, errors.Wrap(err, "openpgpjs: error in reading cleartext signature")
	}

	return &CleartextMessage{
		Text:      string(block.Bytes),
		Signature: NewPGPSignature(signature),
	}, nil
}
