package extract

import (
	"bufio"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// TextExtractor reads the leading characters of a plain text file.
type TextExtractor struct{}

// NewTextExtractor creates a plain text extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (t *TextExtractor) Name() string { return "text" }

func (t *TextExtractor) CanExtract(filePath string) bool {
	return hasExt(filePath, ".txt")
}

// Extract reads the first pageBudget*CharsPerPage characters. Bytes that
// are not valid UTF-8 are skipped.
func (t *TextExtractor) Extract(filePath string, pageBudget int) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	limit := pageBudget * CharsPerPage
	r := bufio.NewReader(f)

	var b strings.Builder
	for n := 0; n < limit; {
		c, size, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if c == utf8.RuneError && size == 1 {
			continue
		}
		b.WriteRune(c)
		n++
	}

	return b.String(), nil
}
