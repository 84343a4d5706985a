package openpgpjs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninetyfivenorth/openpgpjs/constants"
	"github.com/ninetyfivenorth/openpgpjs/crypto"
)

func TestEncryptDecryptSessionKey(t *testing.T) {
	token, err := crypto.RandomToken(32)
	require.NoError(t, err)

	wrapped, err := EncryptSessionKey(token, constants.AES256, &EncryptSessionKeyOptions{
		PublicKeys: []*crypto.Key{pubTestAlice},
		Passwords:  []string{"backup"},
		Date:       testTime,
	})
	require.NoError(t, err)
	require.NotNil(t, wrapped.Message)

	ids := encryptedKeyIDs(t, wrapped.Message)
	require.Len(t, ids, 1)
	assert.NotZero(t, ids[0])

	// Key path.
	resolved, err := DecryptSessionKeys(wrapped.Message, []*crypto.Key{keyTestAlice}, nil)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Exactly(t, token, resolved[0].Key)
	assert.Exactly(t, constants.AES256, resolved[0].Algo)

	// Password path.
	resolved, err = DecryptSessionKeys(wrapped.Message, nil, []string{"backup"})
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Exactly(t, token, resolved[0].Key)

	// Both credential paths resolve their own copy of the key.
	resolved, err = DecryptSessionKeys(wrapped.Message, []*crypto.Key{keyTestAlice}, []string{"backup"})
	require.NoError(t, err)
	assert.Len(t, resolved, 2)
}

func TestDecryptSessionKeysEmptyResult(t *testing.T) {
	token, err := crypto.RandomToken(32)
	require.NoError(t, err)

	wrapped, err := EncryptSessionKey(token, constants.AES256, &EncryptSessionKeyOptions{
		PublicKeys: []*crypto.Key{pubTestAlice},
		Date:       testTime,
	})
	require.NoError(t, err)

	// Unresolvable packets yield an empty result, not a failure.
	resolved, err := DecryptSessionKeys(wrapped.Message, []*crypto.Key{keyTestBob}, []string{"nope"})
	require.NoError(t, err)
	assert.Empty(t, resolved)
}

func TestEncryptSessionKeyWildcard(t *testing.T) {
	token, err := crypto.RandomToken(32)
	require.NoError(t, err)

	wrapped, err := EncryptSessionKey(token, constants.AES256, &EncryptSessionKeyOptions{
		PublicKeys: []*crypto.Key{pubTestAlice},
		Wildcard:   true,
		Date:       testTime,
	})
	require.NoError(t, err)

	ids := encryptedKeyIDs(t, wrapped.Message)
	require.Len(t, ids, 1)
	assert.Exactly(t, uint64(0), ids[0])

	resolved, err := DecryptSessionKeys(wrapped.Message, []*crypto.Key{keyTestAlice}, nil)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Exactly(t, token, resolved[0].Key)
}

func TestEncryptSessionKeyValidation(t *testing.T) {
	token, err := crypto.RandomToken(32)
	require.NoError(t, err)

	_, err = EncryptSessionKey(nil, constants.AES256, nil)
	require.Error(t, err)
	assert.Exactly(t, InvalidInputType, errorKind(err))

	_, err = EncryptSessionKey(token, "rot13", &EncryptSessionKeyOptions{
		PublicKeys: []*crypto.Key{pubTestAlice},
	})
	require.Error(t, err)
	assert.Exactly(t, InvalidInputType, errorKind(err))

	_, err = EncryptSessionKey(token, constants.AES256, nil)
	require.Error(t, err)
	assert.Exactly(t, MissingCredential, errorKind(err))
}
