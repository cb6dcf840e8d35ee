// Package questions reads question sources from JSON or YAML and validates them before they reach
// the engine.
package questions

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"quiz-engine/internal/domain"
)

// DefaultSetID names the question set compiled into the binary.
const DefaultSetID = "default"

//go:embed data/default.json
var defaultSource []byte

// Format is the encoding of a question file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%s: %w", path, domain.ErrUnsupportedFormat)
	}
}

// Parse decodes a question source. Unknown fields are rejected.
func Parse(id string, data []byte, format Format) (domain.QuestionSource, error) {
	var src domain.QuestionSource
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&src); err != nil {
			return domain.QuestionSource{}, fmt.Errorf("parse questions: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&src); err != nil {
			return domain.QuestionSource{}, fmt.Errorf("parse questions: %w", err)
		}
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			if err == nil {
				return domain.QuestionSource{}, fmt.Errorf("parse questions: multiple YAML documents are not supported")
			}
			return domain.QuestionSource{}, fmt.Errorf("parse questions: %w", err)
		}
	default:
		return domain.QuestionSource{}, fmt.Errorf("format %q: %w", format, domain.ErrUnsupportedFormat)
	}
	src.ID = id
	return src, nil
}

// ParseFile reads and decodes a question file. The set ID is the file name without extension.
func ParseFile(path string) (domain.QuestionSource, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return domain.QuestionSource{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.QuestionSource{}, err
	}
	return Parse(SetIDFromPath(path), data, format)
}

// Load parses and validates a question file.
func Load(path string) (domain.QuestionSource, error) {
	src, err := ParseFile(path)
	if err != nil {
		return domain.QuestionSource{}, err
	}
	if err := Validate(src); err != nil {
		return domain.QuestionSource{}, err
	}
	return src, nil
}

// Default returns the embedded question set.
func Default() domain.QuestionSource {
	src, err := Parse(DefaultSetID, defaultSource, FormatJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded question set: %v", err))
	}
	return src
}

// SetIDFromPath derives a question set ID from a file name.
func SetIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
