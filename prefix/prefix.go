// Package prefix adds vendor prefixed declarations from a versioned
// compatibility table.
package prefix

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"stylec/css"
)

//go:embed prefixes.yaml
var defaultTable []byte

// Table is the serialized compatibility table.
type Table struct {
	Version    int             `yaml:"version"`
	Properties []PropertyEntry `yaml:"properties"`
	Values     []ValueEntry    `yaml:"values"`
}

// PropertyEntry prefixes the property name, e.g. -webkit-user-select.
type PropertyEntry struct {
	Property string   `yaml:"property"`
	Prefixes []string `yaml:"prefixes"`
}

// ValueEntry prefixes a keyword value of a property, e.g.
// position: -webkit-sticky.
type ValueEntry struct {
	Property string   `yaml:"property"`
	Value    string   `yaml:"value"`
	Prefixes []string `yaml:"prefixes"`
}

var vendors = map[string]bool{"-webkit-": true, "-moz-": true, "-ms-": true, "-o-": true}

// DefaultTable returns the embedded table.
func DefaultTable() *Table {
	t, err := LoadTable(bytes.NewReader(defaultTable))
	if err != nil {
		panic(fmt.Sprintf("embedded prefix table is broken: %v", err))
	}
	return t
}

// LoadTable decodes a compatibility table, rejecting unknown fields.
func LoadTable(r io.Reader) (*Table, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var t Table
	if err := dec.Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("prefix table is empty")
		}
		return nil, fmt.Errorf("unable to decode prefix table: %w", err)
	}
	if t.Version <= 0 {
		return nil, fmt.Errorf("prefix table has invalid version %d", t.Version)
	}
	return &t, nil
}

// LoadTableFile reads a table from a file. Empty path selects the embedded
// default.
func LoadTableFile(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open prefix table: %w", err)
	}
	defer f.Close()
	return LoadTable(f)
}

// Prefixer looks up prefixed emissions. It is read only after New and may be
// shared between sheets.
type Prefixer struct {
	log        *zap.Logger
	version    int
	properties map[string][]string
	values     map[string]map[string][]string
}

// New builds a prefixer from t. A nil table selects the embedded default.
func New(log *zap.Logger, t *Table) (*Prefixer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if t == nil {
		t = DefaultTable()
	}
	p := &Prefixer{
		log:        log.Named("prefixer"),
		version:    t.Version,
		properties: make(map[string][]string, len(t.Properties)),
		values:     make(map[string]map[string][]string),
	}

	var errs error
	for _, e := range t.Properties {
		if err := checkPrefixes(e.Property, e.Prefixes); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if _, dup := p.properties[e.Property]; dup {
			errs = multierr.Append(errs, fmt.Errorf("property %q listed twice", e.Property))
			continue
		}
		p.properties[e.Property] = e.Prefixes
	}
	for _, e := range t.Values {
		if err := checkPrefixes(e.Property, e.Prefixes); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if e.Value == "" {
			errs = multierr.Append(errs, fmt.Errorf("property %q: value entry without value", e.Property))
			continue
		}
		m, ok := p.values[e.Property]
		if !ok {
			m = make(map[string][]string)
			p.values[e.Property] = m
		}
		kw := strings.ToLower(e.Value)
		if _, dup := m[kw]; dup {
			errs = multierr.Append(errs, fmt.Errorf("property %q: value %q listed twice", e.Property, e.Value))
			continue
		}
		m[kw] = e.Prefixes
	}
	if errs != nil {
		return nil, errs
	}
	p.log.Debug("Prefix table loaded", zap.Int("version", p.version),
		zap.Int("properties", len(p.properties)), zap.Int("values", len(t.Values)))
	return p, nil
}

func checkPrefixes(property string, prefixes []string) error {
	if property == "" {
		return errors.New("entry without property")
	}
	if len(prefixes) == 0 {
		return fmt.Errorf("property %q: no prefixes", property)
	}
	for _, pfx := range prefixes {
		if !vendors[pfx] {
			return fmt.Errorf("property %q: unknown vendor prefix %q", property, pfx)
		}
	}
	return nil
}

// Version returns the table version.
func (p *Prefixer) Version() int {
	return p.version
}

// Prefix returns the declarations to emit for property: prefixed forms first,
// then the standard one. Unknown properties yield only the standard form.
func (p *Prefixer) Prefix(property string, v css.Value) []css.Declaration {
	out := make([]css.Declaration, 0, 1)
	for _, pfx := range p.properties[property] {
		out = append(out, css.Declaration{Property: pfx + property, Value: v})
	}
	if kw, ok := v.(css.KeywordValue); ok {
		for _, pfx := range p.values[property][strings.ToLower(kw.Value)] {
			out = append(out, css.Declaration{Property: property, Value: css.Keyword(pfx + kw.Value)})
		}
	}
	return append(out, css.Declaration{Property: property, Value: v})
}
