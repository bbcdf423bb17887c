package shorthand

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed families.yaml
var defaultTable []byte

// Table is the serialized, versioned shorthand family description.
type Table struct {
	Version  int          `yaml:"version"`
	Families []FamilySpec `yaml:"families"`
}

// FamilySpec describes one shorthand family. Box families list their four
// sides (top, right, bottom, left) sharing one initial value, sequence
// families list longhands in serialization order.
type FamilySpec struct {
	Name      string            `yaml:"name"`
	Kind      string            `yaml:"kind"`
	Layered   bool              `yaml:"layered,omitempty"`
	Initial   string            `yaml:"initial,omitempty"`
	Sides     []string          `yaml:"sides,omitempty"`
	Anchor    string            `yaml:"anchor,omitempty"`
	Keywords  map[string]string `yaml:"keywords,omitempty"`
	Longhands []LonghandSpec    `yaml:"longhands,omitempty"`
}

// LonghandSpec describes a component of a sequence family. Accepts lists
// value categories (length, percentage, number, time, angle, color, image,
// function, string, ident, any) or keyword alternatives separated by "|".
type LonghandSpec struct {
	Property string   `yaml:"property"`
	Initial  string   `yaml:"initial"`
	Accepts  []string `yaml:"accepts"`
}

// DefaultTable returns the embedded family table.
func DefaultTable() *Table {
	t, err := LoadTable(bytes.NewReader(defaultTable))
	if err != nil {
		panic(fmt.Sprintf("embedded shorthand table is broken: %v", err))
	}
	return t
}

// LoadTable decodes a family table, rejecting unknown fields.
func LoadTable(r io.Reader) (*Table, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var t Table
	if err := dec.Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("shorthand table is empty")
		}
		return nil, fmt.Errorf("unable to decode shorthand table: %w", err)
	}
	if t.Version <= 0 {
		return nil, fmt.Errorf("shorthand table has invalid version %d", t.Version)
	}
	return &t, nil
}

// LoadTableFile reads a family table from a file. Empty path selects the
// embedded default.
func LoadTableFile(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open shorthand table: %w", err)
	}
	defer f.Close()
	return LoadTable(f)
}
