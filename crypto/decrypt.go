package crypto

import (
	"bytes"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/pkg/errors"
)

// messagePackets is the split view of an encrypted message: the session key
// packets up front, followed by a single encrypted data packet.
type messagePackets struct {
	encryptedKeys []*packet.EncryptedKey
	symKeys       []*packet.SymmetricKeyEncrypted
	data          *packet.SymmetricallyEncrypted
}

// parsePackets splits the message into session key packets and the encrypted
// data packet. Parsing stops at the data packet so its contents stay
// unconsumed.
func (msg *PGPMessage) parsePackets() (*messagePackets, error) {
	split := &messagePackets{}

	packets := packet.NewReader(msg.NewReader())
Loop:
	for {
		p, err := packets.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "openpgpjs: error in parsing message packets")
		}
		switch p := p.(type) {
		case *packet.EncryptedKey:
			split.encryptedKeys = append(split.encryptedKeys, p)
		case *packet.SymmetricKeyEncrypted:
			split.symKeys = append(split.symKeys, p)
		case *packet.SymmetricallyEncrypted:
			split.data = p
			break Loop
		}
	}

	return split, nil
}

// CheckPackets parses the packet framing of the message without decrypting
// anything, reporting malformed packet structure.
func (msg *PGPMessage) CheckPackets() error {
	_, err := msg.parsePackets()
	return err
}

// DecryptSessionKey tries to unwrap a session key packet of the message with
// the private keys of the keyring, in keyring order. Wildcard packets with a
// zeroed recipient ID are tried against every decryption key.
func (keyRing *KeyRing) DecryptSessionKey(msg *PGPMessage) (*SessionKey, error) {
	split, err := msg.parsePackets()
	if err != nil {
		return nil, err
	}
	if len(split.encryptedKeys) == 0 {
		return nil, errors.New("openpgpjs: message does not contain an encrypted session key packet")
	}

	for _, key := range keyRing.keys {
		for _, priv := range key.decryptionPrivateKeys() {
			if priv.Encrypted {
				// Locked secret material cannot unwrap anything.
				continue
			}
			for _, ek := range split.encryptedKeys {
				if ek.KeyId != 0 && ek.KeyId != priv.KeyId {
					continue
				}
				if err := ek.Decrypt(priv, nil); err != nil {
					continue
				}
				return newSessionKeyFromEncrypted(ek.Key, ek.CipherFunc)
			}
		}
	}

	return nil, errors.New("openpgpjs: unable to decrypt session key with the given keys")
}

// DecryptSessionKeyWithPassword tries to unwrap a session key packet of the
// message with a key derived from the password.
func DecryptSessionKeyWithPassword(msg *PGPMessage, password []byte) (*SessionKey, error) {
	split, err := msg.parsePackets()
	if err != nil {
		return nil, err
	}
	if len(split.symKeys) == 0 {
		return nil, errors.New("openpgpjs: message does not contain a password encrypted session key packet")
	}

	for _, s := range split.symKeys {
		key, cipherFunc, err := s.Decrypt(password)
		if err != nil {
			continue
		}
		sk, err := newSessionKeyFromEncrypted(key, cipherFunc)
		if err != nil {
			continue
		}
		return sk, nil
	}

	return nil, errors.New("openpgpjs: password incorrect")
}

// DecryptSessionKeys unwraps every resolvable session key packet of the
// message, trying private keys first, then passwords. An empty result is
// reported as an empty slice, not an error.
func (msg *PGPMessage) DecryptSessionKeys(keyRing *KeyRing, passwords [][]byte) ([]*SessionKey, error) {
	split, err := msg.parsePackets()
	if err != nil {
		return nil, err
	}

	var resolved []*SessionKey

	if keyRing != nil {
		for _, key := range keyRing.keys {
			for _, priv := range key.decryptionPrivateKeys() {
				if priv.Encrypted {
					continue
				}
				for _, ek := range split.encryptedKeys {
					if ek.Key != nil {
						continue // already unwrapped by an earlier key
					}
					if ek.KeyId != 0 && ek.KeyId != priv.KeyId {
						continue
					}
					if err := ek.Decrypt(priv, nil); err != nil {
						continue
					}
					if sk, err := newSessionKeyFromEncrypted(ek.Key, ek.CipherFunc); err == nil {
						resolved = append(resolved, sk)
					}
				}
			}
		}
	}

	for _, password := range passwords {
		for _, s := range split.symKeys {
			key, cipherFunc, err := s.Decrypt(password)
			if err != nil {
				continue
			}
			if sk, err := newSessionKeyFromEncrypted(key, cipherFunc); err == nil {
				resolved = append(resolved, sk)
			}
		}
	}

	return resolved, nil
}

// DecryptPackets decrypts the encrypted data packet of the message with the
// session key and returns the message packets it contains.
func (sk *SessionKey) DecryptPackets(msg *PGPMessage) ([]byte, error) {
	split, err := msg.parsePackets()
	if err != nil {
		return nil, err
	}
	if split.data == nil {
		return nil, errors.New("openpgpjs: message does not contain an encrypted data packet")
	}

	cf, err := sk.GetCipherFunc()
	if err != nil {
		return nil, err
	}

	decrypted, err := split.data.Decrypt(cf, sk.Key)
	if err != nil {
		return nil, errors.Wrap(err, "openpgpjs: unable to decrypt message body")
	}

	inner, err := io.ReadAll(checkReader{decrypted, decrypted})
	if err != nil {
		return nil, errors.Wrap(err, "openpgpjs: error in reading decrypted message body")
	}

	return inner, nil
}

// SignedContent is a parsed plaintext message: the literal data together
// with any signature packets found next to it.
type SignedContent struct {
	// Plain holds the literal data of the message.
	Plain *PlainMessage
	sigs  []*packet.Signature
}

// ReadSignedMessage parses a decrypted or plain message packet stream into
// its literal data and signatures, descending into compressed packets.
func ReadSignedMessage(data []byte) (*SignedContent, error) {
	content := &SignedContent{}
	onePass := false

	packets := packet.NewReader(bytes.NewReader(data))
	for {
		p, err := packets.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "openpgpjs: error in parsing message")
		}
		switch p := p.(type) {
		case *packet.Compressed:
			if err := packets.Push(p.Body); err != nil {
				return nil, errors.Wrap(err, "openpgpjs: error in reading compressed packet")
			}
		case *packet.LiteralData:
			body, err := io.ReadAll(p.Body)
			if err != nil {
				return nil, errors.Wrap(err, "openpgpjs: error in reading literal data")
			}
			content.Plain = &PlainMessage{
				Data:     body,
				TextType: !p.IsBinary,
				Filename: p.FileName,
				Time:     p.Time,
			}
		case *packet.OnePassSignature:
			onePass = true
		case *packet.Signature:
			content.sigs = append(content.sigs, p)
		}
	}

	if content.Plain == nil {
		return nil, errors.New("openpgpjs: message does not contain literal data")
	}

	// One-pass trailing signatures close in reverse of their one-pass
	// packets. Restore signer order.
	if onePass {
		for i, j := 0, len(content.sigs)-1; i < j; i, j = i+1, j-1 {
			content.sigs[i], content.sigs[j] = content.sigs[j], content.sigs[i]
		}
	}

	return content, nil
}

// HasSignatures reports whether the message carried inline signatures.
func (sc *SignedContent) HasSignatures() bool {
	return len(sc.sigs) > 0
}

// Signatures returns the inline signature packets as a detached signature
// value, or nil if the message was not signed.
func (sc *SignedContent) Signatures() (*PGPSignature, error) {
	if len(sc.sigs) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	for _, sig := range sc.sigs {
		if err := sig.Serialize(&buf); err != nil {
			return nil, errors.Wrap(err, "openpgpjs: error in serializing signature")
		}
	}
	return NewPGPSignature(buf.Bytes()), nil
}
