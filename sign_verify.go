package openpgpjs

import (
	"github.com/ninetyfivenorth/openpgpjs/crypto"
)

// SignOptions control the Sign operation.
type SignOptions struct {
	// PrivateKeys sign the payload, in order. At least one is required.
	PrivateKeys []*crypto.Key
	// Armor renders the result as armored text. A text payload signed
	// with armoring and without Detached yields a cleartext signed
	// message.
	Armor bool
	// Detached computes a standalone signature instead of a signed
	// message.
	Detached bool
	// Date is the signing time as a unix timestamp; zero means now.
	Date int64
}

// NewSignOptions returns sign options with armoring enabled.
func NewSignOptions() *SignOptions {
	return &SignOptions{Armor: true}
}

// SignResult is the output envelope of Sign.
type SignResult struct {
	// Data is the armored signed message, or the armored cleartext
	// signed message for a text payload.
	Data string
	// Message is the signed message, when an inline signature was
	// produced as a packet message.
	Message *crypto.PGPMessage
	// Cleartext is the cleartext signed message, when a text payload was
	// signed attached and unarmored.
	Cleartext *crypto.CleartextMessage
	// Signature is the detached signature, when Detached was requested.
	Signature *crypto.PGPSignature
	// SignatureData is the armored detached signature.
	SignatureData string
}

// SignArgs is the argument bag of a delegated sign call.
type SignArgs struct {
	Data    *Plaintext
	Options *SignOptions
}

// Sign produces a detached signature, a cleartext signed message or a
// message with inline signatures over the payload.
func Sign(data *Plaintext, opts *SignOptions) (*SignResult, error) {
	if opts == nil {
		opts = NewSignOptions()
	}
	if err := data.validate(); err != nil {
		return nil, err
	}
	if len(opts.PrivateKeys) == 0 {
		return nil, newError(MissingCredential, "no private keys provided for signing")
	}

	o := *opts
	o.Date = resolveDate(o.Date)

	if w := routeWorker(opSign); w != nil {
		result, err := delegate(w, opSign, &SignArgs{Data: data, Options: &o})
		if err != nil {
			return nil, err
		}
		typed, ok := result.(*SignResult)
		if !ok {
			return nil, workerShapeError(opSign)
		}
		return typed, nil
	}

	return signLocal(data, &o)
}

func signLocal(data *Plaintext, opts *SignOptions) (*SignResult, error) {
	const op = "Error signing message"

	signers, err := toKeyRing(opts.PrivateKeys)
	if err != nil {
		return nil, translate(op, PrimitiveFailure, err)
	}

	result := &SignResult{}
	switch {
	case opts.Detached:
		plain := data.message("", opts.Date)
		signature, err := signers.SignDetached(plain, nil, opts.Date)
		if err != nil {
			return nil, translate(op, PrimitiveFailure, err)
		}
		result.Signature = signature
		if opts.Armor {
			if result.SignatureData, err = signature.GetArmored(); err != nil {
				return nil, translate(op, PrimitiveFailure, err)
			}
		}
	case data.Text != nil:
		armored, err := signers.SignCleartext(*data.Text, opts.Date)
		if err != nil {
			return nil, translate(op, PrimitiveFailure, err)
		}
		if opts.Armor {
			result.Data = armored
		} else {
			cleartext, err := crypto.NewCleartextMessageFromArmored(armored)
			if err != nil {
				return nil, translate(op, PrimitiveFailure, err)
			}
			result.Cleartext = cleartext
		}
	default:
		plain := data.message("", opts.Date)
		packets, err := signers.SignMessageInline(plain, nil, opts.Date)
		if err != nil {
			return nil, translate(op, PrimitiveFailure, err)
		}
		result.Message = crypto.NewPGPMessage(packets)
		if opts.Armor {
			if result.Data, err = result.Message.GetArmored(); err != nil {
				return nil, translate(op, PrimitiveFailure, err)
			}
		}
	}
	return result, nil
}

// VerifyOptions control the Verify operation.
type VerifyOptions struct {
	// PublicKeys verify the signatures. An empty set yields invalid
	// verification records, not an error.
	PublicKeys []*crypto.Key
	// Signature is a detached signature verified against the message
	// content instead of its inline signatures.
	Signature *crypto.PGPSignature
	// Date is the verification time as a unix timestamp; zero means now.
	Date int64
}

// VerifyResult is the output envelope of Verify.
type VerifyResult struct {
	// Data is the signed content.
	Data []byte
	// Text is the signed content as text, when the message is textual.
	Text string
	// Signatures reports one record per signature.
	Signatures []SignatureRecord
}

// VerifyArgs is the argument bag of a delegated verify call.
type VerifyArgs struct {
	Message crypto.Message
	Options *VerifyOptions
}

// Verify checks the signatures of a signed message or a cleartext signed
// message and reports one validity record per signature.
func Verify(message crypto.Message, opts *VerifyOptions) (*VerifyResult, error) {
	if opts == nil {
		opts = &VerifyOptions{}
	}
	if message == nil {
		return nil, newError(InvalidInputType, "no message provided")
	}

	o := *opts
	o.Date = resolveDate(o.Date)

	if w := routeWorker(opVerify); w != nil {
		result, err := delegate(w, opVerify, &VerifyArgs{Message: message, Options: &o})
		if err != nil {
			return nil, err
		}
		typed, ok := result.(*VerifyResult)
		if !ok {
			return nil, workerShapeError(opVerify)
		}
		return typed, nil
	}

	return verifyLocal(message, &o)
}

func verifyLocal(message crypto.Message, opts *VerifyOptions) (*VerifyResult, error) {
	const op = "Error verifying signed message"

	verificationKeys, err := toKeyRing(opts.PublicKeys)
	if err != nil {
		return nil, translate(op, PrimitiveFailure, err)
	}

	switch m := message.(type) {
	case *crypto.CleartextMessage:
		var verified []*crypto.VerifiedSignature
		if opts.Signature != nil {
			plain := crypto.NewPlainMessageFromString(m.GetText())
			verified, err = verificationKeys.VerifyDetached(plain, opts.Signature, opts.Date)
		} else {
			verified, err = verificationKeys.VerifyCleartext(m, opts.Date)
		}
		if err != nil {
			return nil, translate(op, PrimitiveFailure, err)
		}
		return &VerifyResult{
			Data:       []byte(m.GetText()),
			Text:       m.GetText(),
			Signatures: toSignatureRecords(verified),
		}, nil
	case *crypto.PGPMessage:
		content, err := crypto.ReadSignedMessage(m.GetBinary())
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
		result := &VerifyResult{
			Data:       content.Plain.GetBinary(),
			Signatures: toSignatureRecords(verified),
		}
		if content.Plain.IsText() {
			result.Text = content.Plain.GetString()
		}
		return result, nil
	}
	return nil, newError(InvalidInputType, "message must be a packet message or a cleartext message")
}
