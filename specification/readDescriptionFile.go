// This file handles reading and parsing specification documents.
// A document is typically application.yaml, but TOML and HCL documents are
// accepted as well. The format is chosen by the file extension.
package specification

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the document read when no path is given.
const DefaultFileName = "application.yaml"

// Format identifies the syntax of a specification document.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
	FormatHCL
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatHCL:
		return "hcl"
	default:
		return "yaml"
	}
}

// FormatOf picks the document format from the file extension. Unknown
// extensions are read as YAML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".hcl":
		return FormatHCL
	default:
		return FormatYAML
	}
}

// Load reads the document at path and builds a Specification from it.
// Path patterns inside the document are resolved relative to the directory
// that holds the document.
//
// Parameters:
//   - path: Path to the document (defaults to "application.yaml")
//
// Returns a *ConfigError if:
//   - The file cannot be opened or read
//   - The document cannot be parsed
//   - Required keys are missing or values are invalid
func Load(path string) (*Specification, error) {
	if path == "" {
		path = DefaultFileName
	}

	// Open the document
	file, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	defer file.Close()

	// Read the complete content into memory
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	doc, err := Decode(data, path, FormatOf(path))
	if err != nil {
		return nil, err
	}

	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	spec, err := New(doc, filepath.Dir(absolute))
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) && cfgErr.Path == "" {
			cfgErr.Path = path
		}
		return nil, err
	}
	return spec, nil
}

// Decode parses data in the given format. Keys the document does not know are
// rejected so that typos surface instead of being silently ignored. name is
// only used in error messages.
func Decode(data []byte, name string, format Format) (Document, error) {
	var doc Document

	switch format {
	case FormatTOML:
		meta, err := toml.Decode(string(data), &doc)
		if err != nil {
			return Document{}, &ConfigError{Path: name, Err: err}
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Document{}, &ConfigError{Path: name, Field: undecoded[0].String(), Err: errors.New("unknown key")}
		}

	case FormatHCL:
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCL(data, name)
		if diags.HasErrors() {
			return Document{}, &ConfigError{Path: name, Err: diags}
		}
		if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
			return Document{}, &ConfigError{Path: name, Err: diags}
		}

	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return Document{}, &ConfigError{Path: name, Err: errors.New("document is empty")}
			}
			return Document{}, &ConfigError{Path: name, Err: fmt.Errorf("parse yaml: %w", err)}
		}
	}

	return doc, nil
}

// Encode renders doc in the given format. It is used to write new documents.
func Encode(doc Document, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, err
		}
	case FormatHCL:
		return nil, errors.New("writing hcl documents is not supported")
	default:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
