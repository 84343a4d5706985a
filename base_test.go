package openpgpjs

import (
	"bytes"
	"io"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/stretchr/testify/require"

	"github.com/ninetyfivenorth/openpgpjs/crypto"
)

const testTime = 1557754627 // 2019-05-13T13:37:07+00:00

var (
	keyTestAlice *crypto.Key
	keyTestBob   *crypto.Key

	pubTestAlice *crypto.Key
	pubTestBob   *crypto.Key
)

func init() {
	crypto.UpdateTime(testTime)

	var err error
	keyTestAlice, err = crypto.GenerateKey(
		[]crypto.Identity{{Name: "Alice", Email: "alice@example.com"}},
		"curve25519", 0, 0, testTime,
	)
	if err != nil {
		panic(err)
	}
	keyTestBob, err = crypto.GenerateKey(
		[]crypto.Identity{{Name: "Bob", Email: "bob@example.com"}},
		"curve25519", 0, 0, testTime,
	)
	if err != nil {
		panic(err)
	}

	if pubTestAlice, err = keyTestAlice.ToPublic(); err != nil {
		panic(err)
	}
	if pubTestBob, err = keyTestBob.ToPublic(); err != nil {
		panic(err)
	}
}

// encryptedKeyIDs returns the recipient key ID of every public-key encrypted
// session key packet in the message.
func encryptedKeyIDs(t *testing.T, message *crypto.PGPMessage) []uint64 {
	t.Helper()

	var ids []uint64
	packets := packet.NewReader(bytes.NewReader(message.GetBinary()))
	for {
		p, err := packets.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if _, ok := p.(*packet.SymmetricallyEncrypted); ok {
			break
		}
		if ek, ok := p.(*packet.EncryptedKey); ok {
			ids = append(ids, ek.KeyId)
		}
	}
	return ids
}

func errorKind(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return 0
}
