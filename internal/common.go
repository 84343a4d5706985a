// Package internal contains internal methods and constants.
package internal

import (
	"strings"

	"github.com/ninetyfivenorth/openpgpjs/constants"
)

// ArmorHeaders is the map of default armor headers.
var ArmorHeaders = map[string]string{}

func init() {
	if constants.ArmorHeaderEnabled {
		ArmorHeaders = map[string]string{
			"Version": constants.ArmorHeaderVersion,
			"Comment": constants.ArmorHeaderComment,
		}
	}
}

// Canonicalize rewrites text with canonical CRLF line endings.
func Canonicalize(text string) string {
	return strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\n", "\r\n")
}

// TrimEachLine removes trailing spaces, tabs and carriage returns from every
// line of text.
func TrimEachLine(text string) string {
	lines := strings.Split(text, "\n")

	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t\r")
	}

	return strings.Join(lines, "\n")
}
