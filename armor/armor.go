// Package armor contains a set of helper methods for armoring and unarmoring
// data.
package armor

import (
	"bytes"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/pkg/errors"

	"github.com/ninetyfivenorth/openpgpjs/constants"
	"github.com/ninetyfivenorth/openpgpjs/internal"
)

// ArmorKey armors input as a public key.
func ArmorKey(input []byte) (string, error) {
	return ArmorWithType(input, constants.PublicKeyHeader)
}

// ArmorWithType armors input with the given armorType.
func ArmorWithType(input []byte, armorType string) (string, error) {
	var b bytes.Buffer

	w, err := armor.Encode(&b, armorType, internal.ArmorHeaders)
	if err != nil {
		return "", errors.Wrap(err, "openpgpjs: unable to encode armoring")
	}
	if _, err = w.Write(input); err != nil {
		return "", errors.Wrap(err, "openpgpjs: unable to write armored to buffer")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "openpgpjs: unable to close armor buffer")
	}
	return b.String(), nil
}

// Unarmor unarmors an armored input into a byte array.
func Unarmor(input string) ([]byte, error) {
	b, err := armor.Decode(bytes.NewReader([]byte(input)))
	if err != nil {
		return nil, errors.Wrap(err, "openpgpjs: unable to unarmor")
	}
	return io.ReadAll(b.Body)
}

// IsPGPArmored reads a prefix from the reader and checks if it is armored.
// Returns an equivalent reader with the prefix restored.
func IsPGPArmored(in io.Reader) (io.Reader, bool) {
	const armorPrefix = "-----BEGIN PGP"
	buffer := make([]byte, len(armorPrefix))

	n, _ := io.ReadFull(in, buffer)
	outReader := io.MultiReader(bytes.NewReader(buffer[:n]), in)

	return outReader, bytes.HasPrefix(buffer, []byte(armorPrefix))
}
