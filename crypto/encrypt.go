package crypto

import (
	"bytes"
	"crypto"
	"io"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/pkg/errors"

	"github.com/ninetyfivenorth/openpgpjs/constants"
)

// mainConfig returns the packet configuration for an operation pinned at the
// given unix time.
func mainConfig(unixTime int64) *packet.Config {
	config := &packet.Config{
		DefaultCipher: packet.CipherAES256,
		DefaultHash:   crypto.SHA256,
	}
	if unixTime > 0 {
		config.Time = NewConstantClock(unixTime)
	} else {
		config.Time = time.Now
	}
	return config
}

// noOpCloser adapts a plain writer to the WriteCloser interface the packet
// serializers take.
type noOpCloser struct {
	out io.Writer
}

func (c *noOpCloser) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

func (c *noOpCloser) Close() error {
	return nil
}

// LiteralPacket serializes the message into a single literal data packet,
// tagged with the filename and creation date carried by the message.
func (msg *PlainMessage) LiteralPacket() ([]byte, error) {
	var buf bytes.Buffer
	literalWriter, err := packet.SerializeLiteral(&noOpCloser{&buf}, msg.IsBinary(), msg.Filename, msg.Time)
	if err != nil {
		return nil, errors.Wrap(err, "openpgpjs: error in serializing literal packet")
	}
	if _, err := literalWriter.Write(msg.Data); err != nil {
		return nil, errors.Wrap(err, "openpgpjs: error in writing literal data")
	}
	if err := literalWriter.Close(); err != nil {
		return nil, errors.Wrap(err, "openpgpjs: error in closing literal writer")
	}
	return buf.Bytes(), nil
}

// SignMessageInline signs the message with every key of the keyring, in
// order, and returns the packets of the signed message: one-pass signature
// packets, the literal data packet, and the signature packets in nested
// order. Pre-existing detached signatures in extra are attached after the
// keyring signatures as co-signers.
func (keyRing *KeyRing) SignMessageInline(message *PlainMessage, extra *PGPSignature, unixTime int64) ([]byte, error) {
	detached, err := keyRing.signDetachedPackets(message, extra, unixTime)
	if err != nil {
		return nil, err
	}
	if len(detached) == 0 {
		return nil, errors.New("openpgpjs: no signer available for inline signing")
	}

	literal, err := message.LiteralPacket()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for i, sig := range detached {
		keyID := uint64(0)
		if sig.IssuerKeyId != nil {
			keyID = *sig.IssuerKeyId
		}
		ops := &packet.OnePassSignature{
			Version:    3,
			SigType:    sig.SigType,
			Hash:       sig.Hash,
			PubKeyAlgo: sig.PubKeyAlgo,
			KeyId:      keyID,
			IsLast:     i == len(detached)-1,
		}
		if err := ops.Serialize(&buf); err != nil {
			return nil, errors.Wrap(err, "openpgpjs: error in serializing one-pass signature")
		}
	}

	buf.Write(literal)

	// Signatures close in reverse order of their one-pass packets.
	for i := len(detached) - 1; i >= 0; i-- {
		if err := detached[i].Serialize(&buf); err != nil {
			return nil, errors.Wrap(err, "openpgpjs: error in serializing signature packet")
		}
	}

	return buf.Bytes(), nil
}

// CompressPackets wraps the given message packets into a compressed data
// packet. The NoCompression selector returns the input unchanged.
func CompressPackets(packets []byte, algo int8) ([]byte, error) {
	var compressionAlgo packet.CompressionAlgo
	switch algo {
	case constants.NoCompression:
		return packets, nil
	case constants.ZIPCompression:
		compressionAlgo = packet.CompressionZIP
	case constants.DefaultCompression, constants.ZLIBCompression:
		compressionAlgo = packet.CompressionZLIB
	default:
		return nil, errors.Errorf("openpgpjs: unsupported compression algorithm: %d", algo)
	}

	var buf bytes.Buffer
	compressedWriter, err := packet.SerializeCompressed(&noOpCloser{&buf}, compressionAlgo, nil)
	if err != nil {
		return nil, errors.Wrap(err, "openpgpjs: error in serializing compressed packet")
	}
	if _, err := compressedWriter.Write(packets); err != nil {
		return nil, errors.Wrap(err, "openpgpjs: error in compressing message")
	}
	if err := compressedWriter.Close(); err != nil {
		return nil, errors.Wrap(err, "openpgpjs: error in closing compression writer")
	}
	return buf.Bytes(), nil
}

// EncryptSessionKey encrypts the session key to every key in the keyring and
// returns the concatenated public-key encrypted session key packets, in
// keyring order. When hidden is set, the recipient key ID on every packet is
// zeroed so the ciphertext does not reveal its recipients.
func (keyRing *KeyRing) EncryptSessionKey(sk *SessionKey, hidden bool, unixTime int64) ([]byte, error) {
	outbuf := &bytes.Buffer{}
	cf, err := sk.GetCipherFunc()
	if err != nil {
		return nil, errors.Wrap(err, "openpgpjs: unable to encrypt session key")
	}
	config := mainConfig(unixTime)

	if len(keyRing.keys) == 0 {
		return nil, errors.New("openpgpjs: cannot encrypt session key: no public key available")
	}

	for _, key := range keyRing.keys {
		encryptionKey, ok := key.entity.EncryptionKey(config.Now())
		if !ok {
			return nil, errors.New("openpgpjs: encryption key is unavailable for key id " + key.GetHexKeyID())
		}
		if err := packet.SerializeEncryptedKeyWithHiddenOption(outbuf, encryptionKey.PublicKey, cf, sk.Key, hidden, config); err != nil {
			return nil, errors.Wrap(err, "openpgpjs: error in serializing encrypted key packet")
		}
	}

	return outbuf.Bytes(), nil
}

// EncryptSessionKeyWithPassword encrypts the session key under a key derived
// from the password and returns a symmetric-key encrypted session key packet.
func EncryptSessionKeyWithPassword(sk *SessionKey, password []byte) ([]byte, error) {
	outbuf := &bytes.Buffer{}

	cf, err := sk.GetCipherFunc()
	if err != nil {
		return nil, errors.Wrap(err, "openpgpjs: unable to encrypt session key with password")
	}

	config := &packet.Config{
		DefaultCipher: cf,
	}

	err = packet.SerializeSymmetricKeyEncryptedReuseKey(outbuf, sk.Key, password, config)
	if err != nil {
		return nil, errors.Wrap(err, "openpgpjs: error in serializing symmetric key packet")
	}

	return outbuf.Bytes(), nil
}

// EncryptPackets symmetrically encrypts the given message packets under the
// session key and returns the encrypted data packet.
func (sk *SessionKey) EncryptPackets(inner []byte) ([]byte, error) {
	cf, err := sk.GetCipherFunc()
	if err != nil {
		return nil, errors.Wrap(err, "openpgpjs: unable to encrypt with session key")
	}

	var buf bytes.Buffer
	config := &packet.Config{
		DefaultCipher: cf,
	}
	encryptWriter, err := packet.SerializeSymmetricallyEncrypted(&buf, cf, false, packet.CipherSuite{}, sk.Key, config)
	if err != nil {
		return nil, errors.Wrap(err, "openpgpjs: unable to serialize symmetrically encrypted packet")
	}
	if _, err := encryptWriter.Write(inner); err != nil {
		return nil, errors.Wrap(err, "openpgpjs: error in writing encrypted data")
	}
	if err := encryptWriter.Close(); err != nil {
		return nil, errors.Wrap(err, "openpgpjs: error in closing encryption writer")
	}

	return buf.Bytes(), nil
}
