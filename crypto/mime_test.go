package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninetyfivenorth/openpgpjs/constants"
)

type testMIMECallbacks struct {
	body        string
	mimetype    string
	attachments [][]byte
	verified    int
	errs        []error
}

func (tc *testMIMECallbacks) OnBody(body string, mimetype string) {
	tc.body = body
	tc.mimetype = mimetype
}

func (tc *testMIMECallbacks) OnAttachment(headers string, data []byte) {
	tc.attachments = append(tc.attachments, data)
}

func (tc *testMIMECallbacks) OnEncryptedHeaders(headers string) {}

func (tc *testMIMECallbacks) OnVerified(verified int) {
	tc.verified = verified
}

func (tc *testMIMECallbacks) OnError(err error) {
	tc.errs = append(tc.errs, err)
}

const testMIMEBody = "Mime-Version: 1.0\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"This is the mime body\r\n"

func TestDecryptMIMEMessage(t *testing.T) {
	message := NewPlainMessage([]byte(testMIMEBody))
	pgpMessage, _ := encryptTo(t, message, keyRingTestAlice, nil, false, constants.NoCompression)

	callbacks := &testMIMECallbacks{}
	keyRingTestAlice.DecryptMIMEMessage(pgpMessage, nil, callbacks, testTime)

	require.Empty(t, callbacks.errs)
	assert.Contains(t, callbacks.body, "This is the mime body")
	assert.Exactly(t, "text/plain", callbacks.mimetype)
	assert.Empty(t, callbacks.attachments)
	assert.Exactly(t, constants.SIGNATURE_NOT_SIGNED, callbacks.verified)
}

func TestDecryptMIMEMessageWrongKey(t *testing.T) {
	message := NewPlainMessage([]byte(testMIMEBody))
	pgpMessage, _ := encryptTo(t, message, keyRingTestAlice, nil, false, constants.NoCompression)

	callbacks := &testMIMECallbacks{}
	keyRingTestBob.DecryptMIMEMessage(pgpMessage, nil, callbacks, testTime)

	assert.NotEmpty(t, callbacks.errs)
}
