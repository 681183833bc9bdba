package classify

import "fmt"

// ParseError reports a model answer that is not valid JSON. Raw is the
// model's unmodified answer.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON from model: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SchemaError reports well-formed JSON that is not a folder tree. Path
// locates the offending value, e.g. "/Finance/2024".
type SchemaError struct {
	Raw    string
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid folder tree at %s: %s", e.Path, e.Reason)
}
