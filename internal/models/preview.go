package models

// Preview is a bounded text excerpt of one document, keyed by its filename.
type Preview struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}
