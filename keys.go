package openpgpjs

import (
	"github.com/ninetyfivenorth/openpgpjs/crypto"
)

// GenerateKeyOptions control the GenerateKey operation.
type GenerateKeyOptions struct {
	// UserIDs are the identities of the key. At least one is required.
	UserIDs []UserID
	// Passphrase locks the generated secret key material when non-empty.
	Passphrase string
	// RSABits is the RSA modulus size when no curve is selected.
	RSABits int
	// Curve selects an elliptic curve key instead of RSA.
	Curve string
	// Unlocked leaves the secret material unlocked even when a
	// passphrase is given.
	Unlocked bool
	// KeyExpirationTime is the key lifetime in seconds relative to its
	// creation time; zero means no expiration.
	KeyExpirationTime uint32
	// Date is the key creation time as a unix timestamp; zero means now.
	Date int64
}

// NewGenerateKeyOptions returns key generation options with the default
// RSA strength.
func NewGenerateKeyOptions() *GenerateKeyOptions {
	return &GenerateKeyOptions{RSABits: GetConfig().MinRSABits}
}

// KeyResult is the output envelope of the GenerateKey and ReformatKey
// operations.
type KeyResult struct {
	Key               *crypto.Key
	PrivateKeyArmored string
	PublicKeyArmored  string
}

// GenerateKeyArgs is the argument bag of a delegated call.
type GenerateKeyArgs struct {
	Options *GenerateKeyOptions
}

// GenerateKey produces a new key pair carrying the given identities,
// locked under the passphrase when one is set.
func GenerateKey(opts *GenerateKeyOptions) (*KeyResult, error) {
	if opts == nil {
		opts = NewGenerateKeyOptions()
	}
	identities, err := normalizeUserIDs(opts.UserIDs)
	if err != nil {
		return nil, err
	}
	algorithm := "rsa"
	bits := opts.RSABits
	if opts.Curve != "" {
		algorithm = opts.Curve
	} else {
		if bits == 0 {
			bits = GetConfig().MinRSABits
		}
		if nativeAEADSupported() && bits < GetConfig().MinRSABits {
			return nil, newError(InvalidInputType, "rsa key size below the configured minimum")
		}
	}

	o := *opts
	o.RSABits = bits
	o.Date = resolveDate(o.Date)

	if w := routeWorker(opGenerateKey); w != nil {
		result, err := delegate(w, opGenerateKey, &GenerateKeyArgs{Options: &o})
		if err != nil {
			return nil, err
		}
		typed, ok := result.(*KeyResult)
		if !ok {
			return nil, workerShapeError(opGenerateKey)
		}
		return typed, nil
	}

	const op = "Error generating keypair"
	key, err := crypto.GenerateKey(identities, algorithm, bits, o.KeyExpirationTime, o.Date)
	if err != nil {
		return nil, translate(op, PrimitiveFailure, err)
	}
	return lockAndAssemble(op, key, o.Passphrase, o.Unlocked)
}

// ReformatKeyArgs is the argument bag of a delegated call.
type ReformatKeyArgs struct {
	Key     *crypto.Key
	Options *GenerateKeyOptions
}

// ReformatKey rebuilds the user IDs and self-signatures of an unlocked
// private key without regenerating its key material.
func ReformatKey(privateKey *crypto.Key, opts *GenerateKeyOptions) (*KeyResult, error) {
	if opts == nil {
		opts = &GenerateKeyOptions{}
	}
	if privateKey == nil {
		return nil, newError(InvalidInputType, "no private key provided")
	}
	identities, err := normalizeUserIDs(opts.UserIDs)
	if err != nil {
		return nil, err
	}

	o := *opts
	o.Date = resolveDate(o.Date)

	if w := routeWorker(opReformatKey); w != nil {
		result, err := delegate(w, opReformatKey, &ReformatKeyArgs{Key: privateKey, Options: &o})
		if err != nil {
			return nil, err
		}
		typed, ok := result.(*KeyResult)
		if !ok {
			return nil, workerShapeError(opReformatKey)
		}
		return typed, nil
	}

	const op = "Error reformatting keypair"
	key, err := crypto.ReformatKey(privateKey, identities, o.KeyExpirationTime, o.Date)
	if err != nil {
		return nil, translate(op, PrimitiveFailure, err)
	}
	return lockAndAssemble(op, key, o.Passphrase, o.Unlocked)
}

func lockAndAssemble(op string, key *crypto.Key, passphrase string, unlocked bool) (*KeyResult, error) {
	// Armoring the private key must happen on the locked copy, so the
	// serialized form never carries plaintext secret material when a
	// passphrase was given.
	resultKey := key
	if passphrase != "" {
		locked, err := key.Lock([]byte(passphrase))
		if err != nil {
			return nil, translate(op, PrimitiveFailure, err)
		}
		resultKey = locked
	}

	privateArmored, err := resultKey.Armor()
	if err != nil {
		return nil, translate(op, PrimitiveFailure, err)
	}
	publicArmored, err := resultKey.GetArmoredPublicKey()
	if err != nil {
		return nil, translate(op, PrimitiveFailure, err)
	}

	result := &KeyResult{
		Key:               resultKey,
		PrivateKeyArmored: privateArmored,
		PublicKeyArmored:  publicArmored,
	}
	if unlocked && passphrase != "" {
		result.Key = key
	}
	return result, nil
}

// DecryptKeyArgs is the argument bag of a delegated call.
type DecryptKeyArgs struct {
	Key        *crypto.Key
	Passphrase string
}

// DecryptKey unlocks the secret material of the key in place and returns
// the same key reference. It is the one operation that mutates its input.
func DecryptKey(privateKey *crypto.Key, passphrase string) (*crypto.Key, error) {
	if privateKey == nil {
		return nil, newError(InvalidInputType, "no private key provided")
	}

	if w := routeWorker(opDecryptKey); w != nil {
		result, err := delegate(w, opDecryptKey, &DecryptKeyArgs{Key: privateKey, Passphrase: passphrase})
		if err != nil {
			return nil, err
		}
		typed, ok := result.(*crypto.Key)
		if !ok {
			return nil, workerShapeError(opDecryptKey)
		}
		return typed, nil
	}

	const op = "Error decrypting private key"
	if err := privateKey.Decrypt([]byte(passphrase)); err != nil {
		return nil, translate(op, PrimitiveFailure, err)
	}
	return privateKey, nil
}
