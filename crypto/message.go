package crypto

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/ninetyfivenorth/openpgpjs/armor"
	"github.com/ninetyfivenorth/openpgpjs/constants"
	"github.com/ninetyfivenorth/openpgpjs/internal"
)

// Message is the closed union over the two message kinds the verify and
// decrypt entry points accept: a packet-encoded *PGPMessage or a
// *CleartextMessage carrying inline signatures.
type Message interface {
	isMessage()
}

// PlainMessage stores the content of a literal data packet: plaintext bytes
// or text, together with the file metadata.
type PlainMessage struct {
	// Data contains the plaintext.
	Data []byte
	// TextType is true for text data, false for binary.
	TextType bool
	// Filename is the optional name of the encrypted file.
	Filename string
	// Time is the creation timestamp of the content, in unix seconds.
	Time uint32
}

// PGPMessage stores a PGP-encoded message, as a sequence of binary packets.
type PGPMessage struct {
	// Data contains the message packets.
	Data []byte
}

func (msg *PGPMessage) isMessage() {}

// PGPSignature stores one or more detached PGP signature packets.
type PGPSignature struct {
	// Data contains the signature packets.
	Data []byte
}

// CleartextMessage stores a text payload paired with zero or more inline
// signatures that are kept outside the packet encoding.
type CleartextMessage struct {
	// Text contains the message text.
	Text string
	// Signature contains the text signature packets, if any.
	Signature *PGPSignature
}

func (msg *CleartextMessage) isMessage() {}

// ---- Plain message

// NewPlainMessage generates a new binary PlainMessage from data.
func NewPlainMessage(data []byte) *PlainMessage {
	return &PlainMessage{
		Data:     clone(data),
		TextType: false,
	}
}

// NewPlainMessageFromFile generates a new binary PlainMessage with file metadata.
func NewPlainMessageFromFile(data []byte, filename string, modTime uint32) *PlainMessage {
	return &PlainMessage{
		Data:     clone(data),
		TextType: false,
		Filename: filename,
		Time:     modTime,
	}
}

// NewPlainMessageFromString generates a new text PlainMessage.
func NewPlainMessageFromString(text string) *PlainMessage {
	return &PlainMessage{
		Data:     []byte(text),
		TextType: true,
	}
}

// GetBinary returns the plaintext as bytes.
func (msg *PlainMessage) GetBinary() []byte {
	return msg.Data
}

// GetString returns the plaintext as a string.
func (msg *PlainMessage) GetString() string {
	return string(msg.Data)
}

// GetFilename returns the file name of the message, if any.
func (msg *PlainMessage) GetFilename() string {
	return msg.Filename
}

// IsText returns whether the message is a text message.
func (msg *PlainMessage) IsText() bool {
	return msg.TextType
}

// IsBinary returns whether the message is a binary message.
func (msg *PlainMessage) IsBinary() bool {
	return !msg.TextType
}

// NewReader returns a reader over the plaintext.
func (msg *PlainMessage) NewReader() io.Reader {
	return bytes.NewReader(msg.Data)
}

// ---- PGP message

// NewPGPMessage generates a new PGPMessage from the binary packet data.
func NewPGPMessage(data []byte) *PGPMessage {
	return &PGPMessage{
		Data: clone(data),
	}
}

// NewPGPMessageFromArmored generates a new PGPMessage from an armored string.
func NewPGPMessageFromArmored(armored string) (*PGPMessage, error) {
	data, err := armor.Unarmor(armored)
	if err != nil {
		return nil, errors.Wrap(err, "openpgpjs: error in unarmoring message")
	}

	return &PGPMessage{Data: data}, nil
}

// GetBinary returns the unarmored binary content of the message.
func (msg *PGPMessage) GetBinary() []byte {
	return msg.Data
}

// NewReader returns a reader over the packet data.
func (msg *PGPMessage) NewReader() io.Reader {
	return bytes.NewReader(msg.Data)
}

// GetArmored returns the armored message as a string.
func (msg *PGPMessage) GetArmored() (string, error) {
	return armor.ArmorWithType(msg.Data, constants.PGPMessageHeader)
}

// ---- PGP signature

// NewPGPSignature generates a new PGPSignature from binary signature packets.
func NewPGPSignature(data []byte) *PGPSignature {
	return &PGPSignature{
		Data: clone(data),
	}
}

// NewPGPSignatureFromArmored generates a new PGPSignature from an armored string.
func NewPGPSignatureFromArmored(armored string) (*PGPSignature, error) {
	data, err := armor.Unarmor(armored)
	if err != nil {
		return nil, errors.Wrap(err, "openpgpjs: error in unarmoring signature")
	}

	return &PGPSignature{Data: data}, nil
}

// GetBinary returns the unarmored signature packets.
func (sig *PGPSignature) GetBinary() []byte {
	return sig.Data
}

// GetArmored returns the armored signature as a string.
func (sig *PGPSignature) GetArmored() (string, error) {
	return armor.ArmorWithType(sig.Data, constants.PGPSignatureHeader)
}

// ---- Cleartext message

// NewCleartextMessage generates a new unsigned CleartextMessage from text.
// The text has trailing whitespace trimmed from every line, as mandated for
// cleartext signing.
func NewCleartextMessage(text string) *CleartextMessage {
	return &CleartextMessage{
		Text: internal.TrimEachLine(text),
	}
}

// GetText returns the message text.
func (msg *CleartextMessage) GetText() string {
	return msg.Text
}

// IsSigned returns whether the message carries inline signatures.
func (msg *CleartextMessage) IsSigned() bool {
	return msg.Signature != nil && len(msg.Signature.Data) > 0
}
