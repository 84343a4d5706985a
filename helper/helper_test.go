package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninetyfivenorth/openpgpjs"
	"github.com/ninetyfivenorth/openpgpjs/crypto"
)

const testTime = 1557754627

var (
	testPrivateKeyArmored string
	testPublicKeyArmored  string
)

var testPassphrase = []byte("helper passphrase")

func init() {
	crypto.UpdateTime(testTime)

	result, err := openpgpjs.GenerateKey(&openpgpjs.GenerateKeyOptions{
		UserIDs:    []openpgpjs.UserID{{Name: "Helper", Email: "helper@example.com"}},
		Curve:      "curve25519",
		Passphrase: string(testPassphrase),
		Date:       testTime,
	})
	if err != nil {
		panic(err)
	}
	testPrivateKeyArmored = result.PrivateKeyArmored
	testPublicKeyArmored = result.PublicKeyArmored
}

func TestEncryptDecryptMessageWithPassword(t *testing.T) {
	ciphertext, err := EncryptMessageWithPassword([]byte("pw"), "secret text")
	require.NoError(t, err)
	assert.Contains(t, ciphertext, "-----BEGIN PGP MESSAGE-----")

	plaintext, err := DecryptMessageWithPassword([]byte("pw"), ciphertext)
	require.NoError(t, err)
	assert.Exactly(t, "secret text", plaintext)

	_, err = DecryptMessageWithPassword([]byte("wrong"), ciphertext)
	assert.Error(t, err)
}

func TestEncryptDecryptMessageArmored(t *testing.T) {
	ciphertext, err := EncryptMessageArmored(testPublicKeyArmored, "armored secret")
	require.NoError(t, err)

	plaintext, err := DecryptMessageArmored(testPrivateKeyArmored, testPassphrase, ciphertext)
	require.NoError(t, err)
	assert.Exactly(t, "armored secret", plaintext)
}

func TestEncryptMessageArmoredAcceptsPrivateKey(t *testing.T) {
	// A private key as the recipient argument is reduced to its public
	// part.
	ciphertext, err := EncryptMessageArmored(testPrivateKeyArmored, "to self")
	require.NoError(t, err)

	plaintext, err := DecryptMessageArmored(testPrivateKeyArmored, testPassphrase, ciphertext)
	require.NoError(t, err)
	assert.Exactly(t, "to self", plaintext)
}

func TestEncryptSignDecryptVerifyArmored(t *testing.T) {
	ciphertext, err := EncryptSignMessageArmored(
		testPublicKeyArmored, testPrivateKeyArmored, testPassphrase, "signed secret")
	require.NoError(t, err)

	plaintext, err := DecryptVerifyMessageArmored(
		testPublicKeyArmored, testPrivateKeyArmored, testPassphrase, ciphertext)
	require.NoError(t, err)
	assert.Exactly(t, "signed secret", plaintext)
}

func TestDecryptVerifyRejectsUnsignedMessage(t *testing.T) {
	ciphertext, err := EncryptMessageArmored(testPublicKeyArmored, "unsigned")
	require.NoError(t, err)

	_, err = DecryptVerifyMessageArmored(
		testPublicKeyArmored, testPrivateKeyArmored, testPassphrase, ciphertext)
	assert.Error(t, err)
}

func TestSignVerifyCleartextArmored(t *testing.T) {
	armored, err := SignCleartextMessageArmored(testPrivateKeyArmored, testPassphrase, "cleartext helper")
	require.NoError(t, err)
	assert.Contains(t, armored, "-----BEGIN PGP SIGNED MESSAGE-----")

	text, err := VerifyCleartextMessageArmored(testPublicKeyArmored, armored, testTime)
	require.NoError(t, err)
	assert.Contains(t, text, "cleartext helper")
}

func TestVerifyCleartextArmoredWrongKey(t *testing.T) {
	armored, err := SignCleartextMessageArmored(testPrivateKeyArmored, testPassphrase, "stranger danger")
	require.NoError(t, err)

	other, err := openpgpjs.GenerateKey(&openpgpjs.GenerateKeyOptions{
		UserIDs: []openpgpjs.UserID{{Name: "Other", Email: "other@example.com"}},
		Curve:   "curve25519",
		Date:    testTime,
	})
	require.NoError(t, err)

	_, err = VerifyCleartextMessageArmored(other.PublicKeyArmored, armored, testTime)
	assert.Error(t, err)
}
