package prompt

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile customises prompt construction. It is read from a YAML file such as:
//
//	header: |
//	  Sort these documents into folders ...
//	max_preview_chars: 800
type Profile struct {
	Header          string `yaml:"header"`
	MaxPreviewChars int    `yaml:"max_preview_chars"`
}

// LoadProfile parses a YAML prompt profile.
func LoadProfile(filePath string) (*Profile, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadProfileFromReader(file)
}

// LoadProfileFromReader parses a prompt profile from an io.Reader.
func LoadProfileFromReader(r io.Reader) (*Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

// Builder returns a builder with the profile applied over the defaults.
func (p *Profile) Builder() *Builder {
	b := NewBuilder()
	if p == nil {
		return b
	}
	if p.Header != "" {
		b.Header = p.Header
	}
	if p.MaxPreviewChars > 0 {
		b.MaxPreviewChars = p.MaxPreviewChars
	}
	return b
}
