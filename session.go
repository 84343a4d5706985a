package openpgpjs

import (
	"bytes"

	"github.com/ninetyfivenorth/openpgpjs/crypto"
)

// EncryptSessionKeyOptions control the EncryptSessionKey operation. At
// least one recipient public key or one password is required.
type EncryptSessionKeyOptions struct {
	PublicKeys []*crypto.Key
	Passwords  []string
	// Wildcard zeroes the recipient key ID on every encrypted key packet.
	Wildcard bool
	// Date is the encryption time as a unix timestamp; zero means now.
	Date int64
}

// EncryptSessionKeyResult is the output envelope of EncryptSessionKey: a
// message holding only encrypted key packets, without a body.
type EncryptSessionKeyResult struct {
	Message *crypto.PGPMessage
}

// EncryptSessionKeyArgs is the argument bag of a delegated call.
type EncryptSessionKeyArgs struct {
	SessionKey *crypto.SessionKey
	Options    *EncryptSessionKeyOptions
}

// EncryptSessionKey wraps a raw symmetric key for every recipient key and
// password, with the same fan-out rule as Encrypt but no message body.
func EncryptSessionKey(key []byte, algorithm string, opts *EncryptSessionKeyOptions) (*EncryptSessionKeyResult, error) {
	if opts == nil {
		opts = &EncryptSessionKeyOptions{}
	}
	if len(key) == 0 {
		return nil, newError(InvalidInputType, "no session key data provided")
	}
	sessionKey := crypto.NewSessionKeyFromToken(key, algorithm)
	if _, err := sessionKey.GetCipherFunc(); err != nil {
		return nil, newError(InvalidInputType, "unsupported session key algorithm: "+algorithm)
	}
	if len(opts.PublicKeys) == 0 && len(opts.Passwords) == 0 {
		return nil, newError(MissingCredential, "no recipient keys or passwords provided")
	}

	o := *opts
	o.Date = resolveDate(o.Date)

	if w := routeWorker(opEncryptSessionKey); w != nil {
		result, err := delegate(w, opEncryptSessionKey, &EncryptSessionKeyArgs{SessionKey: sessionKey, Options: &o})
		if err != nil {
			return nil, err
		}
		typed, ok := result.(*EncryptSessionKeyResult)
		if !ok {
			return nil, workerShapeError(opEncryptSessionKey)
		}
		return typed, nil
	}

	return encryptSessionKeyLocal(sessionKey, &o)
}

func encryptSessionKeyLocal(sessionKey *crypto.SessionKey, opts *EncryptSessionKeyOptions) (*EncryptSessionKeyResult, error) {
	const op = "Error encrypting session key"

	recipients, err := toKeyRing(opts.PublicKeys)
	if err != nil {
		return nil, translate(op, PrimitiveFailure, err)
	}

	var out bytes.Buffer
	if recipients.CountKeys() > 0 {
		keyPackets, err := recipients.EncryptSessionKey(sessionKey, opts.Wildcard, opts.Date)
		if err != nil {
			return nil, translate(op, PrimitiveFailure, err)
		}
		out.Write(keyPackets)
	}
	for _, password := range normalizePasswords(opts.Passwords) {
		keyPacket, err := crypto.EncryptSessionKeyWithPassword(sessionKey, password)
		if err != nil {
			return nil, translate(op, PrimitiveFailure, err)
		}
		out.Write(keyPacket)
	}

	return &EncryptSessionKeyResult{Message: crypto.NewPGPMessage(out.Bytes())}, nil
}

// DecryptSessionKeysArgs is the argument bag of a delegated call.
type DecryptSessionKeysArgs struct {
	Message     *crypto.PGPMessage
	PrivateKeys []*crypto.Key
	Passwords   []string
}

// DecryptSessionKeys unwraps every session key packet of the message that
// the supplied credentials can resolve, private keys before passwords. An
// empty result means no packet could be resolved; it is not a failure.
func DecryptSessionKeys(message *crypto.PGPMessage, privateKeys []*crypto.Key, passwords []string) ([]*crypto.SessionKey, error) {
	if message == nil {
		return nil, newError(InvalidInputType, "no message provided")
	}

	if w := routeWorker(opDecryptSessionKeys); w != nil {
		args := &DecryptSessionKeysArgs{Message: message, PrivateKeys: privateKeys, Passwords: passwords}
		result, err := delegate(w, opDecryptSessionKeys, args)
		if err != nil {
			return nil, err
		}
		typed, ok := result.([]*crypto.SessionKey)
		if !ok {
			return nil, workerShapeError(opDecryptSessionKeys)
		}
		return typed, nil
	}

	const op = "Error decrypting session keys"
	decryptionKeys, err := toKeyRing(privateKeys)
	if err != nil {
		return nil, translate(op, PrimitiveFailure, err)
	}
	resolved, err := message.DecryptSessionKeys(decryptionKeys, normalizePasswords(passwords))
	if err != nil {
		return nil, translate(op, PrimitiveFailure, err)
	}
	return resolved, nil
}
