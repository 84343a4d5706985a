package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninetyfivenorth/openpgpjs/constants"
)

// encryptTo builds a complete encrypted message the way the high-level
// encrypt pipeline does: literal packet, optional compression, key packets,
// body.
func encryptTo(t *testing.T, message *PlainMessage, recipients *KeyRing, passwords [][]byte, hidden bool, compression int8) (*PGPMessage, *SessionKey) {
	t.Helper()

	packets, err := message.LiteralPacket()
	require.NoError(t, err)
	compressed, err := CompressPackets(packets, compression)
	require.NoError(t, err)

	sk, err := GenerateSessionKey()
	require.NoError(t, err)

	var out bytes.Buffer
	if recipients != nil && recipients.CountKeys() > 0 {
		keyPackets, err := recipients.EncryptSessionKey(sk, hidden, testTime)
		require.NoError(t, err)
		out.Write(keyPackets)
	}
	for _, password := range passwords {
		keyPacket, err := EncryptSessionKeyWithPassword(sk, password)
		require.NoError(t, err)
		out.Write(keyPacket)
	}
	body, err := sk.EncryptPackets(compressed)
	require.NoError(t, err)
	out.Write(body)

	return NewPGPMessage(out.Bytes()), sk
}

func TestSessionKeyRoundTrip(t *testing.T) {
	message := NewPlainMessage([]byte("The secret is out"))
	pgpMessage, _ := encryptTo(t, message, keyRingTestAlice, nil, false, constants.NoCompression)

	sk, err := keyRingTestAlice.DecryptSessionKey(pgpMessage)
	require.NoError(t, err)
	assert.Exactly(t, constants.AES256, sk.Algo)

	inner, err := sk.DecryptPackets(pgpMessage)
	require.NoError(t, err)
	content, err := ReadSignedMessage(inner)
	require.NoError(t, err)
	assert.Exactly(t, message.GetBinary(), content.Plain.GetBinary())
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	message := NewPlainMessage([]byte("not for bob"))
	pgpMessage, _ := encryptTo(t, message, keyRingTestAlice, nil, false, constants.NoCompression)

	_, err := keyRingTestBob.DecryptSessionKey(pgpMessage)
	assert.Error(t, err)
}

func TestPasswordRoundTrip(t *testing.T) {
	message := NewPlainMessage([]byte("password protected"))
	pgpMessage, _ := encryptTo(t, message, nil, [][]byte{[]byte("hunter2")}, false, constants.NoCompression)

	sk, err := DecryptSessionKeyWithPassword(pgpMessage, []byte("hunter2"))
	require.NoError(t, err)

	inner, err := sk.DecryptPackets(pgpMessage)
	require.NoError(t, err)
	content, err := ReadSignedMessage(inner)
	require.NoError(t, err)
	assert.Exactly(t, message.GetBinary(), content.Plain.GetBinary())

	_, err = DecryptSessionKeyWithPassword(pgpMessage, []byte("wrong"))
	assert.Error(t, err)
}

func TestWildcardRecipient(t *testing.T) {
	message := NewPlainMessage([]byte("hidden recipient"))
	pgpMessage, _ := encryptTo(t, message, keyRingTestAlice, nil, true, constants.NoCompression)

	split, err := pgpMessage.parsePackets()
	require.NoError(t, err)
	require.NotEmpty(t, split.encryptedKeys)
	for _, ek := range split.encryptedKeys {
		assert.Zero(t, ek.KeyId)
	}

	sk, err := keyRingTestAlice.DecryptSessionKey(pgpMessage)
	require.NoError(t, err)
	inner, err := sk.DecryptPackets(pgpMessage)
	require.NoError(t, err)
	content, err := ReadSignedMessage(inner)
	require.NoError(t, err)
	assert.Exactly(t, message.GetBinary(), content.Plain.GetBinary())
}

func TestCompressedRoundTrip(t *testing.T) {
	for _, algo := range []int8{constants.ZIPCompression, constants.ZLIBCompression, constants.DefaultCompression} {
		message := NewPlainMessage(bytes.Repeat([]byte("compressible "), 64))
		pgpMessage, _ := encryptTo(t, message, keyRingTestAlice, nil, false, algo)

		sk, err := keyRingTestAlice.DecryptSessionKey(pgpMessage)
		require.NoError(t, err)
		inner, err := sk.DecryptPackets(pgpMessage)
		require.NoError(t, err)
		content, err := ReadSignedMessage(inner)
		require.NoError(t, err)
		assert.Exactly(t, message.GetBinary(), content.Plain.GetBinary())
	}
}

func TestCompressUnknownAlgorithm(t *testing.T) {
	_, err := CompressPackets([]byte{0xc0}, 42)
	assert.Error(t, err)
}

func TestMultipleRecipients(t *testing.T) {
	recipients, err := NewKeyRingFromKeys([]*Key{keyTestAlice, keyTestBob})
	require.NoError(t, err)

	message := NewPlainMessage([]byte("to both"))
	pgpMessage, _ := encryptTo(t, message, recipients, nil, false, constants.NoCompression)

	split, err := pgpMessage.parsePackets()
	require.NoError(t, err)
	assert.Len(t, split.encryptedKeys, 2)

	for _, keyRing := range []*KeyRing{keyRingTestAlice, keyRingTestBob} {
		sk, err := keyRing.DecryptSessionKey(pgpMessage)
		require.NoError(t, err)
		inner, err := sk.DecryptPackets(pgpMessage)
		require.NoError(t, err)
		content, err := ReadSignedMessage(inner)
		require.NoError(t, err)
		assert.Exactly(t, message.GetBinary(), content.Plain.GetBinary())
	}
}

func TestDecryptSessionKeysCollectsAll(t *testing.T) {
	recipients, err := NewKeyRingFromKeys([]*Key{keyTestAlice})
	require.NoError(t, err)

	message := NewPlainMessage([]byte("collect"))
	pgpMessage, _ := encryptTo(t, message, recipients, [][]byte{[]byte("pw")}, false, constants.NoCompression)

	resolved, err := pgpMessage.DecryptSessionKeys(keyRingTestAlice, [][]byte{[]byte("pw")})
	require.NoError(t, err)
	assert.Len(t, resolved, 2)
	assert.Exactly(t, resolved[0].Key, resolved[1].Key)

	// No resolvable packet is an empty result, not an error.
	resolved, err = pgpMessage.DecryptSessionKeys(keyRingTestBob, nil)
	require.NoError(t, err)
	assert.Empty(t, resolved)
}

func TestSessionKeyGeneration(t *testing.T) {
	sk, err := GenerateSessionKeyAlgo(constants.AES128)
	require.NoError(t, err)
	assert.Len(t, sk.Key, 16)

	sk, err = GenerateSessionKey()
	require.NoError(t, err)
	assert.Len(t, sk.Key, 32)
	assert.Exactly(t, constants.AES256, sk.Algo)

	_, err = GenerateSessionKeyAlgo("rot13")
	assert.Error(t, err)
}
