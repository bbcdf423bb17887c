package shorthand

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"stylec/css"
)

// ExpandError reports a shorthand value that does not fit its family.
type ExpandError struct {
	Property string
	Value    string
	Reason   string
}

func (e *ExpandError) Error() string {
	return fmt.Sprintf("unable to expand %s: %q: %s", e.Property, e.Value, e.Reason)
}

// Expand decomposes a shorthand declaration into the family's longhands,
// one level deep. Components the value leaves out get their initial
// value. Properties that are not shorthands and values holding var() or
// unparsed text are returned unchanged.
func (e *Expander) Expand(property string, v css.Value) ([]css.Declaration, error) {
	f, ok := e.byName[property]
	if !ok || css.IsEscape(v) {
		return []css.Declaration{{Property: property, Value: v}}, nil
	}
	vals, err := f.expand(v)
	if err != nil {
		return nil, &ExpandError{Property: property, Value: css.Serialize(v), Reason: err.Error()}
	}
	out := make([]css.Declaration, len(vals))
	for i, l := range f.Longhands {
		out[i] = css.Declaration{Property: l.Property, Value: vals[i]}
	}
	return out, nil
}

// ExpandAll expands a declaration recursively until only properties that
// are not shorthands remain, e.g. border down to border-top-width.
func (e *Expander) ExpandAll(property string, v css.Value) ([]css.Declaration, error) {
	decls, err := e.Expand(property, v)
	if err != nil {
		return nil, err
	}
	if len(decls) == 1 && decls[0].Property == property {
		return decls, nil
	}
	out := make([]css.Declaration, 0, len(decls))
	for _, d := range decls {
		sub, err := e.ExpandAll(d.Property, d.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

func (f *Family) expand(v css.Value) ([]css.Value, error) {
	if css.IsCSSWideKeyword(v) {
		vals := make([]css.Value, len(f.Longhands))
		for i := range vals {
			vals[i] = v
		}
		return vals, nil
	}
	if f.Kind == KindBox {
		return f.expandBox(v)
	}
	layers, ok := v.(css.LayersValue)
	if !ok {
		return f.expandSequence(v, true)
	}
	if !f.Layered {
		return nil, errors.New("comma separated lists are not allowed")
	}
	per := make([][]css.Value, len(f.Longhands))
	for _, item := range layers.Items {
		vals, err := f.expandSequence(item, true)
		if err != nil {
			return nil, err
		}
		for i := range vals {
			per[i] = append(per[i], vals[i])
		}
	}
	out := make([]css.Value, len(per))
	for i := range per {
		out[i] = css.LayersValue{Items: per[i]}
	}
	return out, nil
}

func (f *Family) expandBox(v css.Value) ([]css.Value, error) {
	items := []css.Value{v}
	if t, ok := v.(css.TupleValue); ok {
		items = t.Items
	}
	if len(items) > 4 {
		return nil, fmt.Errorf("expected 1 to 4 values, got %d", len(items))
	}
	for _, it := range items {
		switch x := it.(type) {
		case css.LayersValue, css.TupleValue:
			return nil, errors.New("nested lists are not allowed")
		case css.KeywordValue:
			if x.Value == "/" {
				return nil, errors.New("slash separated values are not supported")
			}
			if css.IsCSSWideKeyword(x) {
				return nil, fmt.Errorf("%s must be used alone", x.Value)
			}
		}
	}
	switch len(items) {
	case 1:
		return []css.Value{items[0], items[0], items[0], items[0]}, nil
	case 2:
		return []css.Value{items[0], items[1], items[0], items[1]}, nil
	case 3:
		return []css.Value{items[0], items[1], items[2], items[1]}, nil
	}
	return slices.Clone(items), nil
}

// expandSequence hands each component to the first free longhand that
// accepts it, trying specific categories before generic identifiers.
func (f *Family) expandSequence(v css.Value, useKeywords bool) ([]css.Value, error) {
	if kw, ok := v.(css.KeywordValue); ok && useKeywords {
		for _, k := range f.keywords {
			if strings.EqualFold(k.name, kw.Value) {
				return slices.Clone(k.values), nil
			}
		}
	}
	items := []css.Value{v}
	if t, ok := v.(css.TupleValue); ok {
		items = t.Items
	}
	vals := make([]css.Value, len(f.Longhands))
	for _, it := range items {
		if css.IsCSSWideKeyword(it) {
			return nil, fmt.Errorf("%s must be used alone", css.Serialize(it))
		}
		i := f.claim(it, vals)
		if i < 0 {
			return nil, fmt.Errorf("%q does not fit any component", css.Serialize(it))
		}
		vals[i] = it
	}
	for i := range vals {
		if vals[i] == nil {
			vals[i] = f.Longhands[i].Initial
		}
	}
	return vals, nil
}

func (f *Family) claim(v css.Value, taken []css.Value) int {
	for _, generic := range []bool{false, true} {
		for i := range f.Longhands {
			if taken[i] == nil && f.Longhands[i].accepts(v, generic) {
				return i
			}
		}
	}
	return -1
}
