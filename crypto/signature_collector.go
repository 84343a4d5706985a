package crypto

import (
	"bytes"
	"io"
	"mime"
	"net/textproto"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	gomime "github.com/ProtonMail/go-mime"

	"github.com/ninetyfivenorth/openpgpjs/constants"
)

// signatureCollector passes MIME parts to the target acceptor while pulling
// out the detached signature of a multipart/signed part and verifying it
// against the keyring.
type signatureCollector struct {
	config    *packet.Config
	keyring   openpgp.KeyRing
	target    gomime.VisitAcceptor
	signature string
	verified  int
}

func newSignatureCollector(
	target gomime.VisitAcceptor, keyring openpgp.KeyRing, config *packet.Config,
) *signatureCollector {
	return &signatureCollector{
		target:   target,
		config:   config,
		keyring:  keyring,
		verified: constants.SIGNATURE_NOT_SIGNED,
	}
}

// Accept implements gomime.VisitAcceptor.
func (sc *signatureCollector) Accept(
	part io.Reader, header textproto.MIMEHeader, hasPlainSibling bool, isFirst, isLast bool,
) (err error) {
	parentMediaType, params, _ := mime.ParseMediaType(header.Get("Content-Type"))
	if parentMediaType != "multipart/signed" {
		return sc.target.Accept(part, header, hasPlainSibling, isFirst, isLast)
	}

	newPart, rawBody := gomime.GetRawMimePart(part, "--"+params["boundary"])
	multiparts, multipartHeaders, err := gomime.GetMultipartParts(newPart, params)
	if err != nil {
		return err
	}

	hasPlainChild := false
	for _, h := range multipartHeaders {
		mediaType, _, _ := mime.ParseMediaType(h.Get("Content-Type"))
		if mediaType == "text/plain" {
			hasPlainChild = true
		}
	}

	if len(multiparts) != 2 {
		// Not the two-part signed layout, pass the parts along unverified.
		sc.verified = constants.SIGNATURE_NOT_SIGNED
		if _, err := io.ReadAll(rawBody); err != nil {
			return err
		}
		for i, p := range multiparts {
			if err = sc.target.Accept(p, multipartHeaders[i], hasPlainChild, true, true); err != nil {
				return err
			}
		}
		return nil
	}

	if err = sc.target.Accept(multiparts[0], multipartHeaders[0], hasPlainChild, true, true); err != nil {
		return err
	}

	partData, err := io.ReadAll(multiparts[1])
	if err != nil {
		return err
	}
	decodedPart := gomime.DecodeContentEncoding(
		bytes.NewReader(partData), multipartHeaders[1].Get("Content-Transfer-Encoding"))
	buffer, err := io.ReadAll(decodedPart)
	if err != nil {
		return err
	}
	buffer, err = gomime.DecodeCharset(buffer, parentMediaType, params)
	if err != nil {
		return err
	}
	sc.signature = string(buffer)

	signedPart, err := io.ReadAll(rawBody)
	if err != nil {
		return err
	}

	switch {
	case sc.keyring == nil:
		sc.verified = constants.SIGNATURE_NO_VERIFIER
	default:
		_, err = openpgp.CheckArmoredDetachedSignature(
			sc.keyring, bytes.NewReader(signedPart), bytes.NewReader(buffer), sc.config)
		if err != nil {
			sc.verified = constants.SIGNATURE_FAILED
		} else {
			sc.verified = constants.SIGNATURE_OK
		}
	}
	return nil
}

// GetSignature returns the armored detached signature of the last visited
// multipart/signed part.
func (sc *signatureCollector) GetSignature() string {
	return sc.signature
}
