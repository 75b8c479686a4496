// Package serializer converts message payloads to and from the bytes stored
// in the content, data and error_details columns.
//
// A serializer reports whether its output is text or binary. The query
// provider uses that capability to pick column types (text vs. blob), and the
// repository uses it to decide how payload columns are bound and scanned.
// All serializers are stateless and safe for concurrent use.
package serializer

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Serializer produces and consumes the stored payload representation.
type Serializer interface {
	// IsText reports whether Serialize output is valid text.
	IsText() bool
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, v any) error
}

// Names accepted by ByName.
const (
	NameJSON = "json"
	NameYAML = "yaml"
	NameGob  = "gob"
)

// ByName returns the serializer registered under name.
func ByName(name string) (Serializer, error) {
	switch name {
	case NameJSON, "":
		return JSON{}, nil
	case NameYAML:
		return YAML{}, nil
	case NameGob:
		return Gob{}, nil
	default:
		return nil, fmt.Errorf("unknown serializer %q", name)
	}
}

// JSON serializes to compact JSON text.
type JSON struct{}

func (JSON) IsText() bool { return true }

// Serialize encodes v with HTML escaping disabled so stored payloads stay
// byte-identical to what the caller produced.
func (JSON) Serialize(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("json serialize: %w", err)
	}
	// Encoder adds a trailing newline
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (JSON) Deserialize(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("json deserialize: %w", err)
	}
	return nil
}

// YAML serializes to YAML text.
type YAML struct{}

func (YAML) IsText() bool { return true }

func (YAML) Serialize(v any) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yaml serialize: %w", err)
	}
	return data, nil
}

func (YAML) Deserialize(data []byte, v any) error {
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yaml deserialize: %w", err)
	}
	return nil
}

// Gob serializes to the binary encoding/gob format.
// Interface-typed values must have their concrete types registered with
// gob.Register by the caller.
type Gob struct{}

func (Gob) IsText() bool { return false }

func (Gob) Serialize(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("gob serialize: %w", err)
	}
	return buf.Bytes(), nil
}

func (Gob) Deserialize(data []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("gob deserialize: %w", err)
	}
	return nil
}
