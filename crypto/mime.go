package crypto

import (
	"bytes"
	"io"
	"net/mail"
	"net/textproto"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	gomime "github.com/ProtonMail/go-mime"
	"github.com/pkg/errors"

	"github.com/ninetyfivenorth/openpgpjs/constants"
)

// MIMECallbacks receives the parts of a decrypted MIME message.
type MIMECallbacks interface {
	OnBody(body string, mimetype string)
	OnAttachment(headers string, data []byte)
	// Encrypted headers can be in an attachment and thus be placed at
	// the end of the mime structure.
	OnEncryptedHeaders(headers string)
	OnVerified(verified int)
	OnError(err error)
}

// DecryptMIMEMessage decrypts a MIME message with the private keys of the
// keyring and walks its structure, reporting the body, the attachments and
// the signature verification status through the callbacks. Inline message
// signatures and an embedded multipart/signed layer are both checked
// against verifyKey.
func (keyRing *KeyRing) DecryptMIMEMessage(
	message *PGPMessage, verifyKey *KeyRing, callbacks MIMECallbacks, verifyTime int64,
) {
	sessionKey, err := keyRing.DecryptSessionKey(message)
	if err != nil {
		callbacks.OnError(err)
		return
	}
	inner, err := sessionKey.DecryptPackets(message)
	if err != nil {
		callbacks.OnError(err)
		return
	}
	content, err := ReadSignedMessage(inner)
	if err != nil {
		callbacks.OnError(err)
		return
	}

	embeddedVerified := constants.SIGNATURE_NOT_SIGNED
	if content.HasSignatures() {
		embeddedVerified = constants.SIGNATURE_FAILED
		if verifyKey == nil {
			embeddedVerified = constants.SIGNATURE_NO_VERIFIER
		} else {
			for _, record := range content.Verify(verifyKey, verifyTime) {
				if record.Valid {
					embeddedVerified = constants.SIGNATURE_OK
					break
				}
			}
		}
	}

	body, attachments, attachmentHeaders, mimeVerified, err := parseMIME(
		string(content.Plain.GetBinary()), verifyKey, verifyTime)
	if err != nil {
		callbacks.OnError(err)
		return
	}

	bodyContent, bodyMimeType := body.GetBody()
	callbacks.OnBody(bodyContent, bodyMimeType)
	for i := 0; i < len(attachments); i++ {
		callbacks.OnAttachment(attachmentHeaders[i], []byte(attachments[i]))
	}
	callbacks.OnEncryptedHeaders("")
	callbacks.OnVerified(combineVerification(embeddedVerified, mimeVerified))
}

// combineVerification merges the status of the inline message signature and
// the multipart/signed layer: a verified layer wins over an unsigned one, a
// failure wins over everything.
func combineVerification(embedded, mime int) int {
	if embedded == constants.SIGNATURE_FAILED || mime == constants.SIGNATURE_FAILED {
		return constants.SIGNATURE_FAILED
	}
	if embedded == constants.SIGNATURE_OK || mime == constants.SIGNATURE_OK {
		return constants.SIGNATURE_OK
	}
	if embedded == constants.SIGNATURE_NO_VERIFIER || mime == constants.SIGNATURE_NO_VERIFIER {
		return constants.SIGNATURE_NO_VERIFIER
	}
	return constants.SIGNATURE_NOT_SIGNED
}

func parseMIME(
	mimeBody string, verifyKey *KeyRing, verifyTime int64,
) (*gomime.BodyCollector, []string, []string, int, error) {
	mm, err := mail.ReadMessage(strings.NewReader(mimeBody))
	if err != nil {
		return nil, nil, nil, 0, errors.Wrap(err, "openpgpjs: error in reading mime message")
	}

	h := textproto.MIMEHeader(mm.Header)
	mmBodyData, err := io.ReadAll(mm.Body)
	if err != nil {
		return nil, nil, nil, 0, errors.Wrap(err, "openpgpjs: error in reading mime message body")
	}

	printAccepter := gomime.NewMIMEPrinter()
	bodyCollector := gomime.NewBodyCollector(printAccepter)
	attachmentsCollector := gomime.NewAttachmentsCollector(bodyCollector)
	mimeVisitor := gomime.NewMimeVisitor(attachmentsCollector)

	var entities openpgp.KeyRing
	if verifyKey != nil {
		entities = verifyKey.GetEntities()
	}
	collector := newSignatureCollector(mimeVisitor, entities, mainConfig(verifyTime))

	if err := gomime.VisitAll(bytes.NewReader(mmBodyData), h, collector); err != nil {
		return nil, nil, nil, 0, errors.Wrap(err, "openpgpjs: error in parsing mime message")
	}

	return bodyCollector,
		attachmentsCollector.GetAttachments(),
		attachmentsCollector.GetAttHeaders(),
		collector.verified,
		nil
}
