// Package snapshot loads rule sets from YAML or JSON documents and applies
// them to a stylesheet.
package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	validator "github.com/go-playground/validator/v10"
	"golang.org/x/net/html/charset"
	yaml "gopkg.in/yaml.v3"
)

type (
	Style struct {
		Property string `yaml:"property" json:"property" validate:"required"`
		Value    string `yaml:"value" json:"value"`
	}

	Breakpoint struct {
		ID       string   `yaml:"id" json:"id" validate:"required"`
		Query    string   `yaml:"query,omitempty" json:"query,omitempty"`
		MinWidth *float64 `yaml:"min_width,omitempty" json:"min_width,omitempty" validate:"omitempty,gte=0"`
		MaxWidth *float64 `yaml:"max_width,omitempty" json:"max_width,omitempty" validate:"omitempty,gte=0"`
	}

	FontFace struct {
		ID          string  `yaml:"id" json:"id"`
		Family      string  `yaml:"family" json:"family" validate:"required"`
		Asset       string  `yaml:"asset,omitempty" json:"asset,omitempty"`
		Src         string  `yaml:"src,omitempty" json:"src,omitempty"`
		Descriptors []Style `yaml:"descriptors,omitempty" json:"descriptors,omitempty" validate:"dive"`
	}

	Mixin struct {
		ID     string  `yaml:"id" json:"id" validate:"required"`
		Styles []Style `yaml:"styles" json:"styles" validate:"dive"`
	}

	Child struct {
		ID       string  `yaml:"id,omitempty" json:"id,omitempty"`
		Selector string  `yaml:"selector" json:"selector" validate:"required"`
		Styles   []Style `yaml:"styles" json:"styles" validate:"dive"`
	}

	// Rule becomes a plain rule, or a nesting rule when it names a
	// breakpoint or has children. Missing ids are derived from the sheet
	// name and rule position, missing selectors from the rule name. Atomic
	// rules compile to atomic classes even in readable mode.
	Rule struct {
		ID         string   `yaml:"id,omitempty" json:"id,omitempty"`
		Name       string   `yaml:"name,omitempty" json:"name,omitempty"`
		Selector   string   `yaml:"selector,omitempty" json:"selector,omitempty"`
		Breakpoint string   `yaml:"breakpoint,omitempty" json:"breakpoint,omitempty"`
		Mixins     []string `yaml:"mixins,omitempty" json:"mixins,omitempty" validate:"dive,required"`
		Styles     []Style  `yaml:"styles" json:"styles" validate:"dive"`
		Children   []Child  `yaml:"children,omitempty" json:"children,omitempty" validate:"dive"`
		Atomic     bool     `yaml:"atomic,omitempty" json:"atomic,omitempty"`
	}

	Media struct {
		ID         string `yaml:"id,omitempty" json:"id,omitempty"`
		Breakpoint string `yaml:"breakpoint" json:"breakpoint" validate:"required"`
		Rules      []Rule `yaml:"rules" json:"rules" validate:"dive"`
	}

	Snapshot struct {
		Version     int          `yaml:"version" json:"version" validate:"eq=1"`
		Name        string       `yaml:"name" json:"name"`
		Breakpoints []Breakpoint `yaml:"breakpoints,omitempty" json:"breakpoints,omitempty" validate:"dive"`
		FontFaces   []FontFace   `yaml:"font_faces,omitempty" json:"font_faces,omitempty" validate:"dive"`
		Mixins      []Mixin      `yaml:"mixins,omitempty" json:"mixins,omitempty" validate:"dive"`
		Rules       []Rule       `yaml:"rules,omitempty" json:"rules,omitempty" validate:"dive"`
		Media       []Media      `yaml:"media,omitempty" json:"media,omitempty" validate:"dive"`

		fonts FontFormats
	}
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(breakpointLevel, Breakpoint{})
	v.RegisterStructValidation(ruleLevel, Rule{})
	return v
}

// breakpointLevel requires either a query or width bounds, not both, and
// ordered bounds.
func breakpointLevel(sl validator.StructLevel) {
	bp := sl.Current().Interface().(Breakpoint)
	bounds := bp.MinWidth != nil || bp.MaxWidth != nil
	switch {
	case bp.Query != "" && bounds:
		sl.ReportError(bp.Query, "Query", "query", "excluded_with_bounds", "")
	case bp.Query == "" && !bounds:
		sl.ReportError(bp.Query, "Query", "query", "required_without_bounds", "")
	case bp.MinWidth != nil && bp.MaxWidth != nil && *bp.MinWidth > *bp.MaxWidth:
		sl.ReportError(*bp.MinWidth, "MinWidth", "min_width", "ltefield", "MaxWidth")
	}
}

// ruleLevel requires something to derive a selector from.
func ruleLevel(sl validator.StructLevel) {
	r := sl.Current().Interface().(Rule)
	if r.Selector == "" && r.Name == "" && r.ID == "" {
		sl.ReportError(r.Selector, "Selector", "selector", "required_without_name", "")
	}
}

// Load decodes and validates a snapshot. Input in a legacy encoding is
// converted to UTF-8 first; JSON documents are accepted as YAML.
func Load(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read snapshot: %w", err)
	}
	var ur io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		if ur, err = charset.NewReader(ur, ""); err != nil {
			return nil, fmt.Errorf("unable to detect snapshot encoding: %w", err)
		}
	}

	// only fields we defined are allowed
	dec := yaml.NewDecoder(ur)
	dec.KnownFields(true)
	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty snapshot")
		}
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if err := validate.Struct(&s); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	return &s, nil
}

// LoadFile reads a snapshot from path.
func LoadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open snapshot: %w", err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}
