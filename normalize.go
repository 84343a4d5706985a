package openpgpjs

import (
	"net/mail"
	"strings"

	"github.com/ninetyfivenorth/openpgpjs/crypto"
)

// Plaintext is a payload carrying exactly one of a text or binary value.
// The exactly-one rule is checked before any cryptographic work runs.
type Plaintext struct {
	Text   *string
	Binary []byte
}

// NewTextPlaintext wraps a text payload.
func NewTextPlaintext(text string) *Plaintext {
	return &Plaintext{Text: &text}
}

// NewBinaryPlaintext wraps a binary payload.
func NewBinaryPlaintext(data []byte) *Plaintext {
	return &Plaintext{Binary: data}
}

func (p *Plaintext) validate() error {
	if p == nil {
		return newError(InvalidInputType, "no data provided")
	}
	if p.Text == nil && p.Binary == nil {
		return newError(InvalidInputType, "data must be a text or binary value")
	}
	if p.Text != nil && p.Binary != nil {
		return newError(InvalidInputType, "data must be either a text or a binary value, not both")
	}
	return nil
}

// message builds the literal message of the payload. It must be called
// after validate.
func (p *Plaintext) message(filename string, unixTime int64) *crypto.PlainMessage {
	if p.Text != nil {
		msg := crypto.NewPlainMessageFromString(*p.Text)
		msg.Filename = filename
		msg.Time = uint32(unixTime)
		return msg
	}
	return crypto.NewPlainMessageFromFile(p.Binary, filename, uint32(unixTime))
}

// UserID is a caller-supplied key identity record.
type UserID struct {
	Name  string
	Email string
}

// normalizeUserID validates a user identity record: the name is trimmed,
// a non-empty email must be address-syntax valid, and at least one of the
// two must remain non-empty.
func normalizeUserID(id UserID) (crypto.Identity, error) {
	name := strings.TrimSpace(id.Name)
	email := strings.TrimSpace(id.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return crypto.Identity{}, newError(InvalidUserId, "invalid email address: "+id.Email)
		}
	}
	if name == "" && email == "" {
		return crypto.Identity{}, newError(InvalidUserId, "user id requires a name or an email address")
	}
	return crypto.Identity{Name: name, Email: email}, nil
}

func normalizeUserIDs(ids []UserID) ([]crypto.Identity, error) {
	if len(ids) == 0 {
		return nil, newError(InvalidUserId, "no user id provided")
	}
	identities := make([]crypto.Identity, 0, len(ids))
	for _, id := range ids {
		identity, err := normalizeUserID(id)
		if err != nil {
			return nil, err
		}
		identities = append(identities, identity)
	}
	return identities, nil
}

// FormatUserID renders a user identity record in the canonical
// "Name <email>" form.
func FormatUserID(id UserID) (string, error) {
	identity, err := normalizeUserID(id)
	if err != nil {
		return "", err
	}
	switch {
	case identity.Name == "":
		return "<" + identity.Email + ">", nil
	case identity.Email == "":
		return identity.Name, nil
	}
	return identity.Name + " <" + identity.Email + ">", nil
}

// toKeyRing collects keys into an ordered keyring, rejecting nil entries.
// An empty or nil slice yields an empty keyring, not an error.
func toKeyRing(keys []*crypto.Key) (*crypto.KeyRing, error) {
	keyRing, err := crypto.NewKeyRingFromKeys(nil)
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		if key == nil {
			return nil, newError(InvalidInputType, "key collection contains a nil key")
		}
		if err := keyRing.AddKey(key); err != nil {
			return nil, err
		}
	}
	return keyRing, nil
}

func normalizePasswords(passwords []string) [][]byte {
	if len(passwords) == 0 {
		return nil
	}
	out := make([][]byte, 0, len(passwords))
	for _, pw := range passwords {
		out = append(out, []byte(pw))
	}
	return out
}

// resolveDate treats a zero timestamp as "now", resolved exactly once at
// the operation boundary.
func resolveDate(unixTime int64) int64 {
	if unixTime == 0 {
		return crypto.GetUnixTime()
	}
	return unixTime
}
