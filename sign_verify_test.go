package openpgpjs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninetyfivenorth/openpgpjs/crypto"
)

func TestSignVerifyCleartext(t *testing.T) {
	opts := NewSignOptions()
	opts.PrivateKeys = []*crypto.Key{keyTestAlice}
	opts.Date = testTime

	signed, err := Sign(NewTextPlaintext("cleartext to sign"), opts)
	require.NoError(t, err)
	assert.Contains(t, signed.Data, "-----BEGIN PGP SIGNED MESSAGE-----")

	message, err := crypto.NewCleartextMessageFromArmored(signed.Data)
	require.NoError(t, err)

	result, err := Verify(message, &VerifyOptions{
		PublicKeys: []*crypto.Key{pubTestAlice},
		Date:       testTime,
	})
	require.NoError(t, err)
	assert.Contains(t, result.Text, "cleartext to sign")
	require.Len(t, result.Signatures, 1)
	assert.True(t, result.Signatures[0].Valid)
	assert.Exactly(t, keyTestAlice.GetHexKeyID(), result.Signatures[0].KeyID)
}

func TestSignVerifyInlineBinary(t *testing.T) {
	payload := []byte{0x10, 0x20, 0x30}

	opts := NewSignOptions()
	opts.PrivateKeys = []*crypto.Key{keyTestAlice}
	opts.Date = testTime

	signed, err := Sign(NewBinaryPlaintext(payload), opts)
	require.NoError(t, err)
	require.NotNil(t, signed.Message)
	assert.Contains(t, signed.Data, "-----BEGIN PGP MESSAGE-----")

	result, err := Verify(signed.Message, &VerifyOptions{
		PublicKeys: []*crypto.Key{pubTestAlice},
		Date:       testTime,
	})
	require.NoError(t, err)
	assert.Exactly(t, payload, result.Data)
	require.Len(t, result.Signatures, 1)
	assert.True(t, result.Signatures[0].Valid)
}

func TestVerifyTamperedCleartext(t *testing.T) {
	opts := NewSignOptions()
	opts.PrivateKeys = []*crypto.Key{keyTestAlice}
	opts.Date = testTime

	signed, err := Sign(NewTextPlaintext("do not touch"), opts)
	require.NoError(t, err)

	message, err := crypto.NewCleartextMessageFromArmored(signed.Data)
	require.NoError(t, err)
	message.Text = "do not Xouch"

	// Tampering flips the validity flag, it does not raise an error.
	result, err := Verify(message, &VerifyOptions{
		PublicKeys: []*crypto.Key{pubTestAlice},
		Date:       testTime,
	})
	require.NoError(t, err)
	require.Len(t, result.Signatures, 1)
	assert.False(t, result.Signatures[0].Valid)
}

func TestSignDetachedAndVerify(t *testing.T) {
	opts := NewSignOptions()
	opts.PrivateKeys = []*crypto.Key{keyTestAlice}
	opts.Detached = true
	opts.Date = testTime

	signed, err := Sign(NewBinaryPlaintext([]byte("detached payload")), opts)
	require.NoError(t, err)
	require.NotNil(t, signed.Signature)
	assert.Contains(t, signed.SignatureData, "-----BEGIN PGP SIGNATURE-----")
	assert.Nil(t, signed.Message)

	// An unsigned message plus the detached signature verifies like
	// inline signing.
	signOpts := NewSignOptions()
	signOpts.PrivateKeys = []*crypto.Key{keyTestAlice}
	signOpts.Armor = false
	signOpts.Date = testTime
	inline, err := Sign(NewBinaryPlaintext([]byte("detached payload")), signOpts)
	require.NoError(t, err)

	detachedResult, err := Verify(inline.Message, &VerifyOptions{
		PublicKeys: []*crypto.Key{pubTestAlice},
		Signature:  signed.Signature,
		Date:       testTime,
	})
	require.NoError(t, err)
	require.Len(t, detachedResult.Signatures, 1)
	assert.True(t, detachedResult.Signatures[0].Valid)
}

func TestSignRequiresPrivateKeys(t *testing.T) {
	_, err := Sign(NewTextPlaintext("unsigned"), NewSignOptions())
	require.Error(t, err)
	assert.Exactly(t, MissingCredential, errorKind(err))
}

func TestVerifyWithEmptyKeySet(t *testing.T) {
	opts := NewSignOptions()
	opts.PrivateKeys = []*crypto.Key{keyTestAlice}
	opts.Armor = false
	opts.Date = testTime

	signed, err := Sign(NewTextPlaintext("verify me"), opts)
	require.NoError(t, err)
	require.NotNil(t, signed.Cleartext)

	result, err := Verify(signed.Cleartext, &VerifyOptions{Date: testTime})
	require.NoError(t, err)
	require.Len(t, result.Signatures, 1)
	assert.False(t, result.Signatures[0].Valid)
}

func TestSignTextUnarmoredYieldsCleartext(t *testing.T) {
	opts := NewSignOptions()
	opts.PrivateKeys = []*crypto.Key{keyTestAlice}
	opts.Armor = false
	opts.Date = testTime

	signed, err := Sign(NewTextPlaintext("attached unarmored"), opts)
	require.NoError(t, err)
	require.NotNil(t, signed.Cleartext)
	assert.Nil(t, signed.Message)
	assert.Empty(t, signed.Data)
	assert.Exactly(t, "attached unarmored", signed.Cleartext.GetText())

	result, err := Verify(signed.Cleartext, &VerifyOptions{
		PublicKeys: []*crypto.Key{pubTestAlice},
		Date:       testTime,
	})
	require.NoError(t, err)
	require.Len(t, result.Signatures, 1)
	assert.True(t, result.Signatures[0].Valid)
}

func TestVerifyNilMessage(t *testing.T) {
	_, err := Verify(nil, nil)
	require.Error(t, err)
	assert.Exactly(t, InvalidInputType, errorKind(err))
}
