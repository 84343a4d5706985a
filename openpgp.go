// Package openpgpjs is the high-level entry point of the library: it
// composes the message and key primitives of the crypto subpackage into
// the encrypt, decrypt, sign, verify, session key and key lifecycle
// operations of the OpenPGP model.
//
// Every operation validates and normalizes its input before any
// cryptographic work runs, sequences the protocol stages in the mandated
// order (sign before compress before encrypt, and the reverse on the way
// back), and decides per call whether to execute locally or to delegate to
// a registered worker. Failures surface as *Error values carrying a kind
// from the taxonomy and the operation's user-facing description.
package openpgpjs

import (
	"bytes"

	"github.com/ninetyfivenorth/openpgpjs/crypto"
)

// Output formats of the Decrypt operation.
const (
	FormatUTF8   = "utf8"
	FormatBinary = "binary"
)

// SignatureRecord reports the verification outcome of one signature: the
// hex key ID of its issuer and whether it verified against the supplied
// keys. Verification failure is data, never an operation failure.
type SignatureRecord struct {
	KeyID string
	Valid bool
}

func toSignatureRecords(verified []*crypto.VerifiedSignature) []SignatureRecord {
	records := make([]SignatureRecord, 0, len(verified))
	for _, vs := range verified {
		records = append(records, SignatureRecord{KeyID: vs.HexKeyID(), Valid: vs.Valid})
	}
	return records
}

// EncryptOptions control the Encrypt operation. At least one recipient
// public key or one password is required.
type EncryptOptions struct {
	// PublicKeys are the recipient keys the session key is encrypted to,
	// one encrypted key packet each, in order.
	PublicKeys []*crypto.Key
	// PrivateKeys sign the message before compression, in order.
	PrivateKeys []*crypto.Key
	// Passwords derive one symmetric key-encryption packet each.
	Passwords []string
	// SessionKey replaces the generated session key.
	SessionKey *crypto.SessionKey
	// Signature is a pre-existing detached signature attached as a
	// co-signer next to the PrivateKeys signatures.
	Signature *crypto.PGPSignature
	// Filename tags the literal data packet.
	Filename string
	// Compression selects a compression constant; zero means none.
	Compression int8
	// Armor renders the result as armored text.
	Armor bool
	// Detached computes the signature separately instead of embedding it.
	Detached bool
	// ReturnSessionKey includes the session key in the result.
	ReturnSessionKey bool
	// Wildcard zeroes the recipient key ID on every encrypted key packet.
	Wildcard bool
	// Date is the signing and encryption time as a unix timestamp; zero
	// means now, resolved once at the call boundary.
	Date int64
}

// NewEncryptOptions returns encrypt options with armoring enabled and the
// configured default compression.
func NewEncryptOptions() *EncryptOptions {
	return &EncryptOptions{
		Armor:       true,
		Compression: GetConfig().Compression,
	}
}

// EncryptResult is the output envelope of Encrypt.
type EncryptResult struct {
	// Data is the armored message, when armoring was requested.
	Data string
	// Message is the encrypted message.
	Message *crypto.PGPMessage
	// Signature is the detached signature, when Detached was requested.
	Signature *crypto.PGPSignature
	// SignatureData is the armored detached signature.
	SignatureData string
	// SessionKey is set when ReturnSessionKey was requested.
	SessionKey *crypto.SessionKey
}

// EncryptArgs is the argument bag of a delegated encrypt call.
type EncryptArgs struct {
	Data    *Plaintext
	Options *EncryptOptions
}

// Encrypt signs, compresses and encrypts a payload for the recipients and
// passwords in the options.
func Encrypt(data *Plaintext, opts *EncryptOptions) (*EncryptResult, error) {
	if opts == nil {
		opts = NewEncryptOptions()
	}
	if err := data.validate(); err != nil {
		return nil, err
	}
	if len(opts.PublicKeys) == 0 && len(opts.Passwords) == 0 {
		return nil, newError(MissingCredential, "no recipient keys or passwords provided")
	}

	o := *opts
	o.Date = resolveDate(o.Date)

	if w := routeWorker(opEncrypt); w != nil {
		result, err := delegate(w, opEncrypt, &EncryptArgs{Data: data, Options: &o})
		if err != nil {
			return nil, err
		}
		typed, ok := result.(*EncryptResult)
		if !ok {
			return nil, workerShapeError(opEncrypt)
		}
		return typed, nil
	}

	return encryptLocal(data, &o)
}

func encryptLocal(data *Plaintext, opts *EncryptOptions) (*EncryptResult, error) {
	const op = "Error encrypting message"

	recipients, err := toKeyRing(opts.PublicKeys)
	if err != nil {
		return nil, translate(op, PrimitiveFailure, err)
	}
	signers, err := toKeyRing(opts.PrivateKeys)
	if err != nil {
		return nil, translate(op, PrimitiveFailure, err)
	}

	plain := data.message(opts.Filename, opts.Date)

	// Signing strictly precedes compression, compression strictly
	// precedes encryption.
	var detachedSignature *crypto.PGPSignature
	var packets []byte
	switch {
	case signers.CountKeys() == 0 && opts.Signature == nil:
		packets, err = plain.LiteralPacket()
	case opts.Detached:
		detachedSignature, err = signers.SignDetached(plain, opts.Signature, opts.Date)
		if err == nil {
			packets, err = plain.LiteralPacket()
		}
	default:
		packets, err = signers.SignMessageInline(plain, opts.Signature, opts.Date)
	}
	if err != nil {
		return nil, translate(op, PrimitiveFailure, err)
	}

	compressed, err := crypto.CompressPackets(packets, opts.Compression)
	if err != nil {
		return nil, translate(op, PrimitiveFailure, err)
	}

	sessionKey := opts.SessionKey
	if sessionKey == nil {
		sessionKey, err = crypto.GenerateSessionKey()
		if err != nil {
			return nil, translate(op, PrimitiveFailure, err)
		}
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

	body, err := sessionKey.EncryptPackets(compressed)
	if err != nil {
		return nil, translate(op, PrimitiveFailure, err)
	}
	out.Write(body)

	message := crypto.NewPGPMessage(out.Bytes())
	result := &EncryptResult{Message: message}
	if opts.Armor {
		if result.Data, err = message.GetArmored(); err != nil {
			return nil, translate(op, PrimitiveFailure, err)
		}
	}
	if detachedSignature != nil {
		result.Signature = detachedSignature
		if opts.Armor {
			if result.SignatureData, err = detachedSignature.GetArmored(); err != nil {
				return nil, translate(op, PrimitiveFailure, err)
			}
		}
	}
	if opts.ReturnSessionKey {
		result.SessionKey = sessionKey
	}
	return result, nil
}

// DecryptOptions control the Decrypt operation. At least one private key,
// password or session key is required.
type DecryptOptions struct {
	// PrivateKeys are tried first against the encrypted key packets,
	// in order.
	PrivateKeys []*crypto.Key
	// Passwords are tried after the private keys.
	Passwords []string
	// SessionKeys are pre-extracted session keys tried last, directly
	// against the message body.
	SessionKeys []*crypto.SessionKey
	// PublicKeys verify the signatures of the decrypted message. An
	// empty set yields invalid verification records, not an error.
	PublicKeys []*crypto.Key
	// Format selects the output shape, FormatUTF8 or FormatBinary.
	Format string
	// Signature is a detached signature verified against the decrypted
	// content instead of any inline signatures.
	Signature *crypto.PGPSignature
	// Date is the verification time as a unix timestamp; zero means now.
	Date int64
}

// NewDecryptOptions returns decrypt options producing utf8 output.
func NewDecryptOptions() *DecryptOptions {
	return &DecryptOptions{Format: FormatUTF8}
}

// DecryptResult is the output envelope of Decrypt. Exactly one of Data and
// Text is populated, per the requested format.
type DecryptResult struct {
	Data       []byte
	Text       string
	Filename   string
	Signatures []SignatureRecord
}

// DecryptArgs is the argument bag of a delegated decrypt call.
type DecryptArgs struct {
	Message *crypto.PGPMessage
	Options *DecryptOptions
}

// Decrypt resolves a session key with the supplied credentials, decrypts
// and decompresses the message, and verifies its signatures.
func Decrypt(message *crypto.PGPMessage, opts *DecryptOptions) (*DecryptResult, error) {
	if opts == nil {
		opts = NewDecryptOptions()
	}
	if message == nil {
		return nil, newError(InvalidInputType, "no message provided")
	}
	if opts.Format != FormatUTF8 && opts.Format != FormatBinary {
		return nil, newError(InvalidFormat, "unsupported output format: "+opts.Format)
	}
	if len(opts.PrivateKeys) == 0 && len(opts.Passwords) == 0 && len(opts.SessionKeys) == 0 {
		return nil, newError(MissingCredential, "no private keys, passwords or session keys provided")
	}

	o := *opts
	o.Date = resolveDate(o.Date)

	if w := routeWorker(opDecrypt); w != nil {
		result, err := delegate(w, opDecrypt, &DecryptArgs{Message: message, Options: &o})
		if err != nil {
			return nil, err
		}
		typed, ok := result.(*DecryptResult)
		if !ok {
			return nil, workerShapeError(opDecrypt)
		}
		return typed, nil
	}

	return decryptLocal(message, &o)
}

func decryptLocal(message *crypto.PGPMessage, opts *DecryptOptions) (*DecryptResult, error) {
	const op = "Error decrypting message"

	decryptionKeys, err := toKeyRing(opts.PrivateKeys)
	if err != nil {
		return nil, translate(op, PrimitiveFailure, err)
	}

	// Malformed packet structure is a message defect, not a credential
	// failure.
	if err := message.CheckPackets(); err != nil {
		return nil, translate(op, PrimitiveFailure, err)
	}

	// Credential resolution order: private keys, passwords, session
	// keys. The first success wins.
	var sessionKey *crypto.SessionKey
	if decryptionKeys.CountKeys() > 0 {
		sessionKey, _ = decryptionKeys.DecryptSessionKey(message)
	}
	if sessionKey == nil {
		for _, password := range normalizePasswords(opts.Passwords) {
			if sk, err := crypto.DecryptSessionKeyWithPassword(message, password); err == nil {
				sessionKey = sk
				break
			}
		}
	}

	var inner []byte
	if sessionKey != nil {
		if inner, err = sessionKey.DecryptPackets(message); err != nil {
			return nil, translate(op, PrimitiveFailure, err)
		}
	} else {
		for _, candidate := range opts.SessionKeys {
			if body, err := candidate.DecryptPackets(message); err == nil {
				inner = body
				break
			}
		}
		if inner == nil {
			return nil, translate(op, ResolutionFailure,
				newError(ResolutionFailure, "session key decryption failed"))
		}
	}

	content, err := crypto.ReadSignedMessage(inner)
	if err != nil {
		return nil, translate(op, PrimitiveFailure, err)
	}

	verificationKeys, err := toKeyRing(opts.PublicKeys)
	if err != nil {
		return nil, translate(op, PrimitiveFailure, err)
	}
	var verified []*crypto.VerifiedSignature
	if opts.Signature != nil {
		if verified, err = verificationKeys.VerifyDetached(content.Plain, opts.Signature, opts.Date); err != nil {
			return nil, translate(op, PrimitiveFailure, err)
		}
	} else {
		verified = content.Verify(verificationKeys, opts.Date)
	}

	result := &DecryptResult{
		Filename:   content.Plain.GetFilename(),
		Signatures: toSignatureRecords(verified),
	}
	if opts.Format == FormatBinary {
		result.Data = content.Plain.GetBinary()
	} else {
		result.Text = content.Plain.GetString()
	}
	return result, nil
}

func workerShapeError(operation string) *Error {
	return &Error{
		Kind:    WorkerFailure,
		Op:      operationDescription(operation),
		Message: "worker returned a result of the wrong shape",
	}
}
