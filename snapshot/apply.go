package snapshot

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/multierr"

	"stylec/css"
	"stylec/stylesheet"
)

// namespace for rule ids derived from snapshot content
var namespace = uuid.MustParse("6f1c2c8e-3f55-5b6e-9a8e-2f2f0c6a4d10")

// RuleID returns the id a rule without one receives: a name based UUID of
// the sheet name, the section and the rule position.
func RuleID(sheet, section string, index int) string {
	return uuid.NewSHA1(namespace, []byte(sheet+"/"+section+"/"+strconv.Itoa(index))).String()
}

// Selector returns the class selector derived from a rule name.
func Selector(name string) string {
	return "." + slug.Make(name)
}

// ResolveBreakpoints resolves declared breakpoints by id.
func (s *Snapshot) ResolveBreakpoints() (map[string]*css.Breakpoint, error) {
	out := make(map[string]*css.Breakpoint, len(s.Breakpoints))
	var errs error
	for _, b := range s.Breakpoints {
		if _, dup := out[b.ID]; dup {
			errs = multierr.Append(errs, fmt.Errorf("breakpoint %q: duplicate id", b.ID))
			continue
		}
		var bp *css.Breakpoint
		if b.Query != "" {
			parsed, err := css.ParseMedia(b.ID, b.Query)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("breakpoint %q: %w", b.ID, err))
				continue
			}
			bp = parsed
		} else {
			bp = &css.Breakpoint{ID: b.ID}
			if b.MinWidth != nil {
				bp.MinWidth, bp.HasMin = *b.MinWidth, true
			}
			if b.MaxWidth != nil {
				bp.MaxWidth, bp.HasMax = *b.MaxWidth, true
			}
		}
		out[b.ID] = bp
	}
	return out, errs
}

// FontFormats reports the format() hint for a font asset.
type FontFormats interface {
	FontFormat(id string) (string, bool)
}

// UseFonts sets where font face asset formats are looked up.
func (s *Snapshot) UseFonts(f FontFormats) {
	s.fonts = f
}

// BuildRules converts the snapshot to stylesheet rules: font faces, mixins,
// rules and media blocks in that order.
func (s *Snapshot) BuildRules() ([]stylesheet.Rule, error) {
	bps, errs := s.ResolveBreakpoints()

	var out []stylesheet.Rule
	for i, f := range s.FontFaces {
		id := f.ID
		if id == "" {
			id = RuleID(s.Name, "font_faces", i)
		}
		descriptors := []stylesheet.Entry{stylesheet.Raw("font-family", f.Family)}
		if src := s.fontSource(f); src != "" {
			descriptors = append(descriptors, stylesheet.Raw("src", src))
		}
		out = append(out, &stylesheet.FontFaceRule{ID: id, Descriptors: append(descriptors, entries(f.Descriptors)...)})
	}
	for _, m := range s.Mixins {
		out = append(out, &stylesheet.MixinRule{ID: m.ID, Styles: entries(m.Styles)})
	}
	for i, r := range s.Rules {
		rule, err := s.rule(r, "rules", i, bps)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, rule)
	}
	for i, m := range s.Media {
		bp, ok := bps[m.Breakpoint]
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("media %d: unknown breakpoint %q", i, m.Breakpoint))
			continue
		}
		id := m.ID
		if id == "" {
			id = RuleID(s.Name, "media", i)
		}
		media := &stylesheet.MediaRule{ID: id, Breakpoint: bp}
		for j, r := range m.Rules {
			if r.Breakpoint != "" || len(r.Children) > 0 {
				errs = multierr.Append(errs, fmt.Errorf("media %q rule %d: nested rules and breakpoints are not allowed", id, j))
				continue
			}
			media.Rules = append(media.Rules, *s.plain(r, "media/"+id, j))
		}
		out = append(out, media)
	}
	return out, errs
}

// fontSource puts the asset reference, with its format hint when known,
// ahead of any literal sources.
func (s *Snapshot) fontSource(f FontFace) string {
	if f.Asset == "" {
		return f.Src
	}
	src := fmt.Sprintf(`url("%s%s")`, css.AssetScheme, f.Asset)
	if s.fonts != nil {
		if format, ok := s.fonts.FontFormat(f.Asset); ok {
			src += fmt.Sprintf(` format("%s")`, format)
		}
	}
	if f.Src != "" {
		src += ", " + f.Src
	}
	return src
}

func (s *Snapshot) rule(r Rule, section string, index int, bps map[string]*css.Breakpoint) (stylesheet.Rule, error) {
	p := s.plain(r, section, index)
	if r.Breakpoint == "" && len(r.Children) == 0 {
		return p, nil
	}
	n := &stylesheet.NestingRule{ID: p.ID, Selector: p.Selector, Mixins: p.Mixins, Styles: p.Styles, Atomic: p.Atomic}
	if r.Breakpoint != "" {
		bp, ok := bps[r.Breakpoint]
		if !ok {
			return nil, fmt.Errorf("rule %q: unknown breakpoint %q", p.ID, r.Breakpoint)
		}
		n.Breakpoint = bp
	}
	for i, c := range r.Children {
		id := c.ID
		if id == "" {
			id = RuleID(s.Name, section+"/"+p.ID, i)
		}
		n.Children = append(n.Children, stylesheet.ChildRule{ID: id, Selector: c.Selector, Styles: entries(c.Styles)})
	}
	return n, nil
}

func (s *Snapshot) plain(r Rule, section string, index int) *stylesheet.PlainRule {
	id := r.ID
	if id == "" {
		id = RuleID(s.Name, section, index)
	}
	selector := r.Selector
	if selector == "" {
		name := r.Name
		if name == "" {
			name = r.ID
		}
		selector = Selector(name)
	}
	return &stylesheet.PlainRule{ID: id, Selector: selector, Mixins: r.Mixins, Styles: entries(r.Styles), Atomic: r.Atomic}
}

func entries(styles []Style) []stylesheet.Entry {
	out := make([]stylesheet.Entry, 0, len(styles))
	for _, st := range styles {
		out = append(out, stylesheet.Raw(st.Property, st.Value))
	}
	return out
}

// Apply upserts every rule of the snapshot into sheet. Rules that fail are
// reported together; the others are applied.
func (s *Snapshot) Apply(sheet *stylesheet.StyleSheet) error {
	rules, errs := s.BuildRules()
	for _, r := range rules {
		if err := sheet.UpsertRule(r); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
