// Package classmap exports the mapping from declarations to atomic classes
// for consumption by markup renderers.
package classmap

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/amazon-ion/ion-go/ion"
	"github.com/beevik/etree"
	"github.com/maruel/natural"
	yaml "gopkg.in/yaml.v3"

	"stylec/stylesheet"
)

// Format of an exported map.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatXML
	FormatIon
)

var formatNames = [...]string{"json", "yaml", "xml", "ion"}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatFromPath selects a format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".xml":
		return FormatXML, nil
	case ".ion":
		return FormatIon, nil
	}
	return FormatJSON, fmt.Errorf("unsupported class map extension %q", filepath.Ext(path))
}

type (
	Entry struct {
		Rule     string   `json:"rule" yaml:"rule" ion:"rule"`
		Property string   `json:"property" yaml:"property" ion:"property"`
		Classes  []string `json:"classes" yaml:"classes" ion:"classes"`
	}

	Map struct {
		Sheet   string  `json:"sheet" yaml:"sheet" ion:"sheet"`
		Entries []Entry `json:"entries" yaml:"entries" ion:"entries"`
	}
)

// FromResult collects the classes of a compile result ordered by rule id
// (natural order) and property.
func FromResult(sheet string, res *stylesheet.Result) *Map {
	m := &Map{Sheet: sheet, Entries: make([]Entry, 0, len(res.Classes))}
	for k, classes := range res.Classes {
		m.Entries = append(m.Entries, Entry{Rule: k.RuleID, Property: k.Property, Classes: classes})
	}
	sort.Slice(m.Entries, func(i, j int) bool {
		a, b := m.Entries[i], m.Entries[j]
		if a.Rule != b.Rule {
			return natural.Less(a.Rule, b.Rule)
		}
		return a.Property < b.Property
	})
	return m
}

// Write encodes m in format f.
func (m *Map) Write(w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	case FormatXML:
		_, err := m.xml().WriteTo(w)
		return err
	case FormatIon:
		data, err := ion.MarshalText(m)
		if err != nil {
			return fmt.Errorf("unable to encode ion: %w", err)
		}
		_, err = w.Write(append(data, '\n'))
		return err
	}
	return fmt.Errorf("unsupported class map format %s", f)
}

func (m *Map) xml() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("classmap")
	root.CreateAttr("sheet", m.Sheet)
	for _, e := range m.Entries {
		el := root.CreateElement("declaration")
		el.CreateAttr("rule", e.Rule)
		el.CreateAttr("property", e.Property)
		for _, c := range e.Classes {
			el.CreateElement("class").SetText(c)
		}
	}
	doc.Indent(2)
	return doc
}

// WriteFile writes m to path in the format its extension selects.
func (m *Map) WriteFile(path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create class map: %w", err)
	}
	if err := m.Write(out, f); err != nil {
		out.Close()
		return fmt.Errorf("unable to write class map: %w", err)
	}
	return out.Close()
}
