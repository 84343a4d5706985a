// Package helper contains several functions with a simple interface for
// common armored-message workflows.
package helper

import (
	"github.com/pkg/errors"

	"github.com/ninetyfivenorth/openpgpjs"
	"github.com/ninetyfivenorth/openpgpjs/crypto"
)

// EncryptMessageWithPassword encrypts a string with a passphrase using AES256.
func EncryptMessageWithPassword(password []byte, plaintext string) (string, error) {
	opts := openpgpjs.NewEncryptOptions()
	opts.Passwords = []string{string(password)}

	result, err := openpgpjs.Encrypt(openpgpjs.NewTextPlaintext(plaintext), opts)
	if err != nil {
		return "", err
	}
	return result.Data, nil
}

// DecryptMessageWithPassword decrypts an armored message with a passphrase.
// The algorithm is derived from the armored packets.
func DecryptMessageWithPassword(password []byte, ciphertext string) (string, error) {
	pgpMessage, err := crypto.NewPGPMessageFromArmored(ciphertext)
	if err != nil {
		return "", err
	}

	opts := openpgpjs.NewDecryptOptions()
	opts.Passwords = []string{string(password)}

	result, err := openpgpjs.Decrypt(pgpMessage, opts)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// EncryptMessageArmored generates an armored message given a plaintext and an
// armored public key.
func EncryptMessageArmored(key, plaintext string) (string, error) {
	publicKey, err := publicKeyFromArmored(key)
	if err != nil {
		return "", err
	}

	opts := openpgpjs.NewEncryptOptions()
	opts.PublicKeys = []*crypto.Key{publicKey}

	result, err := openpgpjs.Encrypt(openpgpjs.NewTextPlaintext(plaintext), opts)
	if err != nil {
		return "", err
	}
	return result.Data, nil
}

// EncryptSignMessageArmored generates an armored signed message given a
// plaintext, an armored public key, and an armored private key with its
// passphrase.
func EncryptSignMessageArmored(
	publicKey, privateKey string, passphrase []byte, plaintext string,
) (string, error) {
	publicKeyObj, err := publicKeyFromArmored(publicKey)
	if err != nil {
		return "", err
	}
	unlockedKeyObj, err := unlockedKeyFromArmored(privateKey, passphrase)
	if err != nil {
		return "", err
	}

	opts := openpgpjs.NewEncryptOptions()
	opts.PublicKeys = []*crypto.Key{publicKeyObj}
	opts.PrivateKeys = []*crypto.Key{unlockedKeyObj}

	result, err := openpgpjs.Encrypt(openpgpjs.NewTextPlaintext(plaintext), opts)
	if err != nil {
		return "", err
	}
	return result.Data, nil
}

// DecryptMessageArmored decrypts an armored message given an armored private
// key and its passphrase.
func DecryptMessageArmored(
	privateKey string, passphrase []byte, ciphertext string,
) (string, error) {
	result, err := decryptMessageArmored(privateKey, passphrase, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// DecryptVerifyMessageArmored decrypts an armored message given an armored
// private key and its passphrase and verifies the embedded signature against
// the armored public key. It returns an error when no signature verifies.
func DecryptVerifyMessageArmored(
	publicKey, privateKey string, passphrase []byte, ciphertext string,
) (string, error) {
	publicKeyObj, err := publicKeyFromArmored(publicKey)
	if err != nil {
		return "", err
	}

	result, err := decryptMessageArmored(privateKey, passphrase, ciphertext, publicKeyObj)
	if err != nil {
		return "", err
	}
	if !anyValid(result.Signatures) {
		return "", errors.New("helper: signature verification failed")
	}
	return result.Text, nil
}

func decryptMessageArmored(
	privateKey string, passphrase []byte, ciphertext string, verificationKey *crypto.Key,
) (*openpgpjs.DecryptResult, error) {
	unlockedKeyObj, err := unlockedKeyFromArmored(privateKey, passphrase)
	if err != nil {
		return nil, err
	}
	pgpMessage, err := crypto.NewPGPMessageFromArmored(ciphertext)
	if err != nil {
		return nil, err
	}

	opts := openpgpjs.NewDecryptOptions()
	opts.PrivateKeys = []*crypto.Key{unlockedKeyObj}
	if verificationKey != nil {
		opts.PublicKeys = []*crypto.Key{verificationKey}
	}
	return openpgpjs.Decrypt(pgpMessage, opts)
}

func publicKeyFromArmored(armored string) (*crypto.Key, error) {
	key, err := crypto.NewKeyFromArmored(armored)
	if err != nil {
		return nil, err
	}
	if key.IsPrivate() {
		return key.ToPublic()
	}
	return key, nil
}

func unlockedKeyFromArmored(armored string, passphrase []byte) (*crypto.Key, error) {
	key, err := crypto.NewKeyFromArmored(armored)
	if err != nil {
		return nil, err
	}
	if locked, err := key.IsLocked(); err == nil && !locked {
		return key, nil
	}
	return key.Unlock(passphrase)
}

func anyValid(records []openpgpjs.SignatureRecord) bool {
	for _, record := range records {
		if record.Valid {
			return true
		}
	}
	return false
}
