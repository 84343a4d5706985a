package helper

import (
	"github.com/pkg/errors"

	"github.com/ninetyfivenorth/openpgpjs"
	"github.com/ninetyfivenorth/openpgpjs/crypto"
)

// SignCleartextMessageArmored signs text with an armored private key,
// returning an armored cleartext signed message.
func SignCleartextMessageArmored(privateKey string, passphrase []byte, text string) (string, error) {
	unlockedKeyObj, err := unlockedKeyFromArmored(privateKey, passphrase)
	if err != nil {
		return "", err
	}

	opts := openpgpjs.NewSignOptions()
	opts.PrivateKeys = []*crypto.Key{unlockedKeyObj}

	result, err := openpgpjs.Sign(openpgpjs.NewTextPlaintext(text), opts)
	if err != nil {
		return "", err
	}
	return result.Data, nil
}

// VerifyCleartextMessageArmored verifies an armored cleartext signed message
// with an armored public key at the given verification time, returning the
// signed text or an error when no signature verifies.
func VerifyCleartextMessageArmored(publicKey, armored string, verifyTime int64) (string, error) {
	publicKeyObj, err := publicKeyFromArmored(publicKey)
	if err != nil {
		return "", err
	}
	message, err := crypto.NewCleartextMessageFromArmored(armored)
	if err != nil {
		return "", err
	}

	result, err := openpgpjs.Verify(message, &openpgpjs.VerifyOptions{
		PublicKeys: []*crypto.Key{publicKeyObj},
		Date:       verifyTime,
	})
	if err != nil {
		return "", err
	}
	if !anyValid(result.Signatures) {
		return "", errors.New("helper: signature verification failed")
	}
	return result.Text, nil
}
