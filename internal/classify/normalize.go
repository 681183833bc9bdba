package classify

import (
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"
)

// commentPattern matches // line comments and /* block comments */. The
// block form is greedy and spans newlines.
var commentPattern = regexp.MustCompile(`//[^\n]*|(?s:/\*.*\*/)`)

// Normalize screen-scrapes a JSON object out of a model answer: it keeps
// the span from the first '{' to the last '}', strips comments and deletes
// every '[' and ']'. Answers without braces normalize to "{}".
func Normalize(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < 0 {
		return "{}"
	}
	if end < start {
		return ""
	}

	text := strings.TrimSpace(raw[start : end+1])
	text = commentPattern.ReplaceAllString(text, "")
	text = strings.NewReplacer("[", "", "]", "").Replace(text)
	return text
}

// ParseLegacy normalizes raw and parses the result as one JSON object.
// Scalars other than strings are kept as their JSON text.
func ParseLegacy(raw string) (Tree, error) {
	normalized := Normalize(raw)

	dec := json.NewDecoder(strings.NewReader(normalized))
	dec.UseNumber()

	p := &treeParser{dec: dec, raw: raw}
	tree, err := p.parseDocument()
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("extra data after JSON object")
		}
		return nil, &ParseError{Raw: raw, Err: err}
	}
	return tree, nil
}
