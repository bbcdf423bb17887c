package shorthand

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stylec/css"
)

// Kind selects how a family distributes its value over longhands.
type Kind int

const (
	// KindBox families take one to four values for top, right, bottom and
	// left in the usual CSS repetition pattern.
	KindBox Kind = iota
	// KindSequence families take space separated components in any order,
	// each claimed by the first longhand that accepts it.
	KindSequence
)

type category int

const (
	catKeywords category = iota
	catLength
	catPercentage
	catNumber
	catTime
	catAngle
	catColor
	catImage
	catFunction
	catString
	catIdent
	catAny
)

var categories = map[string]category{
	"length":     catLength,
	"percentage": catPercentage,
	"number":     catNumber,
	"time":       catTime,
	"angle":      catAngle,
	"color":      catColor,
	"image":      catImage,
	"function":   catFunction,
	"string":     catString,
	"ident":      catIdent,
	"any":        catAny,
}

type matcher struct {
	cat      category
	keywords map[string]bool
}

func newMatcher(spec string) (matcher, error) {
	spec = strings.TrimSpace(spec)
	if c, ok := categories[spec]; ok {
		return matcher{cat: c}, nil
	}
	m := matcher{cat: catKeywords, keywords: make(map[string]bool)}
	for _, kw := range strings.Split(spec, "|") {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			return matcher{}, fmt.Errorf("empty keyword in %q", spec)
		}
		m.keywords[strings.ToLower(kw)] = true
	}
	return m, nil
}

// generic matchers only claim a component nobody else wants.
func (m matcher) generic() bool {
	return m.cat == catIdent || m.cat == catAny
}

func (m matcher) match(v css.Value) bool {
	switch m.cat {
	case catAny:
		return true
	case catKeywords:
		kw, ok := v.(css.KeywordValue)
		return ok && m.keywords[strings.ToLower(kw.Value)]
	case catLength:
		u, ok := v.(css.UnitValue)
		return ok && u.IsLength()
	case catPercentage:
		u, ok := v.(css.UnitValue)
		return ok && u.Unit == css.UnitPercent
	case catNumber:
		u, ok := v.(css.UnitValue)
		return ok && u.Unit == css.UnitNumber
	case catTime:
		u, ok := v.(css.UnitValue)
		return ok && u.Unit.IsTime()
	case catAngle:
		u, ok := v.(css.UnitValue)
		return ok && u.Unit.IsAngle()
	case catColor:
		switch x := v.(type) {
		case css.ColorValue:
			return true
		case css.KeywordValue:
			return strings.EqualFold(x.Value, "currentcolor")
		}
	case catImage:
		switch x := v.(type) {
		case css.ImageValue:
			return true
		case css.FunctionValue:
			name := strings.ToLower(x.Name)
			return strings.HasSuffix(name, "gradient") || name == "image-set"
		}
	case catFunction:
		f, ok := v.(css.FunctionValue)
		return ok && f.Name != ""
	case catString:
		kw, ok := v.(css.KeywordValue)
		return ok && len(kw.Value) > 1 && (kw.Value[0] == '"' || kw.Value[0] == '\'')
	case catIdent:
		kw, ok := v.(css.KeywordValue)
		return ok && isIdent(kw.Value) && !css.IsCSSWideKeyword(kw)
	}
	return false
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c == '-' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

// Longhand is a compiled component of a family.
type Longhand struct {
	Property string
	Initial  css.Value
	matchers []matcher
}

func (l *Longhand) accepts(v css.Value, generic bool) bool {
	for _, m := range l.matchers {
		if m.generic() == generic && m.match(v) {
			return true
		}
	}
	return false
}

func (l *Longhand) acceptsAny(v css.Value) bool {
	return l.accepts(v, false) || l.accepts(v, true)
}

type keyword struct {
	name   string
	values []css.Value
}

// Family is a compiled shorthand family.
type Family struct {
	Name      string
	Kind      Kind
	Layered   bool
	Longhands []Longhand
	anchor    int
	keywords  []keyword
}

// Expander expands shorthands into longhands and merges them back. It is
// immutable once built and may be shared between sheets.
type Expander struct {
	log      *zap.Logger
	version  int
	families []*Family
	byName   map[string]*Family
}

// New compiles a family table. Family values are parsed with parser. A nil
// table selects the embedded default.
func New(log *zap.Logger, parser *css.Parser, t *Table) (*Expander, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if parser == nil {
		parser = css.NewParser(log, 0)
	}
	if t == nil {
		t = DefaultTable()
	}

	e := &Expander{
		log:     log.Named("shorthand"),
		version: t.Version,
		byName:  make(map[string]*Family, len(t.Families)),
	}

	var errs error
	for _, spec := range t.Families {
		f, err := e.compile(parser, spec)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("family %q: %w", spec.Name, err))
			continue
		}
		e.families = append(e.families, f)
		e.byName[f.Name] = f
	}
	for i, f := range e.families {
		for _, l := range f.Longhands {
			for _, later := range e.families[i+1:] {
				if later.Name == l.Property {
					errs = multierr.Append(errs, fmt.Errorf("family %q must be listed after %q", f.Name, later.Name))
				}
			}
		}
	}
	if errs != nil {
		return nil, errs
	}
	e.log.Debug("Shorthand table compiled", zap.Int("version", e.version), zap.Int("families", len(e.families)))
	return e, nil
}

func (e *Expander) compile(parser *css.Parser, spec FamilySpec) (*Family, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if _, dup := e.byName[spec.Name]; dup {
		return nil, fmt.Errorf("duplicate family")
	}
	f := &Family{Name: spec.Name, Layered: spec.Layered}

	switch spec.Kind {
	case "box":
		f.Kind = KindBox
		if len(spec.Sides) != 4 {
			return nil, fmt.Errorf("box family needs 4 sides, got %d", len(spec.Sides))
		}
		if spec.Layered || len(spec.Longhands) > 0 || len(spec.Keywords) > 0 {
			return nil, fmt.Errorf("box family takes only sides and initial")
		}
		initial, err := parser.Parse(spec.Initial)
		if err != nil {
			return nil, fmt.Errorf("initial: %w", err)
		}
		for _, side := range spec.Sides {
			f.Longhands = append(f.Longhands, Longhand{Property: side, Initial: initial, matchers: []matcher{{cat: catAny}}})
		}
	case "sequence":
		f.Kind = KindSequence
		if len(spec.Longhands) < 2 {
			return nil, fmt.Errorf("sequence family needs at least 2 longhands")
		}
		f.anchor = -1
		for i, ls := range spec.Longhands {
			l := Longhand{Property: ls.Property}
			if l.Property == "" {
				return nil, fmt.Errorf("longhand %d has no property", i)
			}
			if ls.Property == spec.Anchor || (spec.Anchor == "" && i == 0) {
				f.anchor = i
			}
			initial, err := parser.Parse(ls.Initial)
			if err != nil {
				return nil, fmt.Errorf("%s initial: %w", ls.Property, err)
			}
			l.Initial = initial
			if len(ls.Accepts) == 0 {
				return nil, fmt.Errorf("%s accepts nothing", ls.Property)
			}
			for _, a := range ls.Accepts {
				m, err := newMatcher(a)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", ls.Property, err)
				}
				l.matchers = append(l.matchers, m)
			}
			f.Longhands = append(f.Longhands, l)
		}
		if f.anchor < 0 {
			return nil, fmt.Errorf("anchor %q is not a longhand", spec.Anchor)
		}
	default:
		return nil, fmt.Errorf("unknown kind %q", spec.Kind)
	}

	for _, l := range f.Longhands {
		if l.Property == f.Name {
			return nil, fmt.Errorf("family lists itself as a longhand")
		}
	}

	names := make([]string, 0, len(spec.Keywords))
	for name := range spec.Keywords {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, err := parser.Parse(spec.Keywords[name])
		if err != nil {
			return nil, fmt.Errorf("keyword %q: %w", name, err)
		}
		vals, err := f.expandSequence(v, false)
		if err != nil {
			return nil, fmt.Errorf("keyword %q: %w", name, err)
		}
		f.keywords = append(f.keywords, keyword{name: name, values: vals})
	}
	return f, nil
}

// Version returns the version of the table the expander was built from.
func (e *Expander) Version() int {
	return e.version
}

// Family returns the compiled family for a shorthand property.
func (e *Expander) Family(name string) (*Family, bool) {
	f, ok := e.byName[name]
	return f, ok
}

// IsShorthand reports whether property names a known family.
func (e *Expander) IsShorthand(property string) bool {
	_, ok := e.byName[property]
	return ok
}

// Families returns families in merge order.
func (e *Expander) Families() []*Family {
	return e.families
}
