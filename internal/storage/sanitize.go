package storage

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// windowsDeviceNames are rejected as bare names so files stay portable.
var windowsDeviceNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"LPT1": true, "LPT2": true, "LPT3": true,
}

// SecureFilename reduces an uploaded file name to a flat ASCII name that is
// safe to join onto a directory. Separators become underscores, runs of
// whitespace collapse to one underscore and leading/trailing dots and
// underscores are dropped. The result may be empty.
func SecureFilename(name string) string {
	decomposed := norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range decomposed {
		if r > unicode.MaxASCII {
			continue
		}
		if r == '/' || r == '\\' {
			r = ' '
		}
		b.WriteRune(r)
	}

	joined := strings.Join(strings.Fields(b.String()), "_")
	clean := strings.Trim(unsafeFilenameChars.ReplaceAllString(joined, ""), "._")

	if clean != "" {
		base := strings.ToUpper(strings.SplitN(clean, ".", 2)[0])
		if windowsDeviceNames[base] {
			clean = "_" + clean
		}
	}
	return clean
}
