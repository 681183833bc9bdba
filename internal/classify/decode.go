package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Decode reads the first JSON object in raw as a folder tree without
// rewriting any characters. Objects become folders, strings become leaves
// and arrays of strings become leaves with an empty synopsis. Any other
// value is rejected with a *SchemaError; malformed JSON with a *ParseError.
// Text after the object is ignored.
func Decode(raw string) (Tree, error) {
	start := strings.Index(raw, "{")
	if start < 0 {
		return nil, &ParseError{Raw: raw, Err: errors.New("no JSON object found in model response")}
	}

	dec := json.NewDecoder(strings.NewReader(raw[start:]))
	dec.UseNumber()

	p := &treeParser{dec: dec, raw: raw, strict: true}
	return p.parseDocument()
}

type treeParser struct {
	dec    *json.Decoder
	raw    string
	strict bool
}

func (p *treeParser) parseDocument() (Tree, error) {
	tok, err := p.token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, p.schemaErr("", fmt.Sprintf("expected an object, found %s", describe(tok)))
	}
	return p.parseObject("")
}

// parseObject consumes keys up to and including the closing '}'.
func (p *treeParser) parseObject(path string) (Tree, error) {
	tree := make(Tree, 0)

	for p.dec.More() {
		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, &ParseError{Raw: p.raw, Err: fmt.Errorf("expected object key, found %s", describe(tok))}
		}
		childPath := path + "/" + key

		tok, err = p.token()
		if err != nil {
			return nil, err
		}

		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				children, err := p.parseObject(childPath)
				if err != nil {
					return nil, err
				}
				tree = tree.set(&Node{Key: key, IsFolder: true, Children: children})
			case '[':
				children, err := p.parseArray(childPath)
				if err != nil {
					return nil, err
				}
				tree = tree.set(&Node{Key: key, IsFolder: true, Children: children})
			default:
				return nil, &ParseError{Raw: p.raw, Err: fmt.Errorf("unexpected %q", rune(v))}
			}
		case string:
			tree = tree.set(&Node{Key: key, Value: v})
		default:
			if p.strict {
				return nil, p.schemaErr(childPath, fmt.Sprintf("expected string or object, found %s", describe(tok)))
			}
			tree = tree.set(&Node{Key: key, Value: scalarText(tok)})
		}
	}

	if _, err := p.token(); err != nil {
		return nil, err
	}
	return tree, nil
}

// parseArray flattens ["a.pdf", "b.pdf"] into leaves a.pdf and b.pdf.
func (p *treeParser) parseArray(path string) (Tree, error) {
	if !p.strict {
		return nil, p.schemaErr(path, "arrays are not supported")
	}

	tree := make(Tree, 0)
	for i := 0; p.dec.More(); i++ {
		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, p.schemaErr(fmt.Sprintf("%s/%d", path, i), fmt.Sprintf("expected file name string, found %s", describe(tok)))
		}
		tree = tree.set(&Node{Key: name})
	}

	if _, err := p.token(); err != nil {
		return nil, err
	}
	return tree, nil
}

func (p *treeParser) token() (json.Token, error) {
	tok, err := p.dec.Token()
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, &ParseError{Raw: p.raw, Err: err}
	}
	return tok, nil
}

func (p *treeParser) schemaErr(path, reason string) error {
	if path == "" {
		path = "/"
	}
	return &SchemaError{Raw: p.raw, Path: path, Reason: reason}
}

func describe(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '[':
			return "array"
		case '{':
			return "object"
		}
		return fmt.Sprintf("%q", rune(v))
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", tok)
}

func scalarText(tok json.Token) string {
	switch v := tok.(type) {
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	}
	return ""
}
