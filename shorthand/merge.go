package shorthand

import (
	"slices"

	"go.uber.org/zap"

	"stylec/css"
)

// Merge recombines complete sets of longhands into their shorthands, in
// family order so that nested families (border-width into border) merge
// bottom up. A family is left alone when a longhand is missing, holds a
// var() or unparsed value, or when the shorthand itself is already
// present. The merged declaration takes the position of the first
// longhand.
//
// Forms carry shorthands as the author wrote them. When the longhands of a
// family still hold exactly what its form expanded to, the written value is
// used instead of the shortest one, so component order, explicit initial
// values and repeated box sides survive. Later forms of the same family win.
func (e *Expander) Merge(decls []css.Declaration, forms ...Form) []css.Declaration {
	written := make(map[string]Form, len(forms))
	for _, fm := range forms {
		written[fm.Property] = fm
	}
	out := slices.Clone(decls)
	for _, f := range e.families {
		out = e.mergeFamily(f, out, written)
	}
	return out
}

// Form is a shorthand declaration as written together with its one level
// expansion.
type Form struct {
	Property string
	Value    css.Value
	parts    []css.Value
}

// Form records how a shorthand was written. It reports false for
// properties that are not shorthands, for var() and unparsed values and
// for values that do not expand.
func (e *Expander) Form(property string, v css.Value) (Form, bool) {
	f, ok := e.byName[property]
	if !ok || css.IsEscape(v) {
		return Form{}, false
	}
	parts, err := f.expand(v)
	if err != nil {
		return Form{}, false
	}
	return Form{Property: property, Value: v, parts: parts}, true
}

func (e *Expander) mergeFamily(f *Family, decls []css.Declaration, written map[string]Form) []css.Declaration {
	pos := make(map[string]int, len(decls))
	for i, d := range decls {
		pos[d.Property] = i
	}
	if _, ok := pos[f.Name]; ok {
		return decls
	}

	idx := make([]int, len(f.Longhands))
	vals := make([]css.Value, len(f.Longhands))
	first := len(decls)
	for i, l := range f.Longhands {
		j, ok := pos[l.Property]
		if !ok {
			return decls
		}
		if css.IsEscape(decls[j].Value) {
			e.log.Debug("Shorthand not merged, escape value", zap.String("family", f.Name), zap.String("longhand", l.Property))
			return decls
		}
		idx[i], vals[i] = j, decls[j].Value
		first = min(first, j)
	}

	var v css.Value
	if fm, ok := written[f.Name]; ok && equalValues(fm.parts, vals) {
		v = fm.Value
	} else if v, ok = f.merge(vals); !ok {
		e.log.Debug("Shorthand not merged", zap.String("family", f.Name))
		return decls
	}

	out := make([]css.Declaration, 0, len(decls)-len(idx)+1)
	for j, d := range decls {
		switch {
		case j == first:
			out = append(out, css.Declaration{Property: f.Name, Value: v})
		case slices.Contains(idx, j):
		default:
			out = append(out, d)
		}
	}
	return out
}

func (f *Family) merge(vals []css.Value) (css.Value, bool) {
	wide := 0
	for _, v := range vals {
		if css.IsCSSWideKeyword(v) {
			wide++
		}
	}
	switch {
	case wide == len(vals) && allEqual(vals):
		return vals[0], true
	case wide > 0:
		return nil, false
	}

	if f.Kind == KindBox {
		return mergeBox(vals)
	}
	if !f.Layered {
		return f.mergeSequence(vals)
	}

	n := -1
	for _, v := range vals {
		c := 1
		if l, ok := v.(css.LayersValue); ok {
			c = len(l.Items)
		}
		if n >= 0 && c != n {
			return nil, false
		}
		n = c
	}
	if n == 1 {
		return f.mergeSequence(unwrapLayers(vals, 0))
	}
	items := make([]css.Value, n)
	for k := range n {
		m, ok := f.mergeSequence(unwrapLayers(vals, k))
		if !ok {
			return nil, false
		}
		items[k] = m
	}
	return css.LayersValue{Items: items}, true
}

func unwrapLayers(vals []css.Value, k int) []css.Value {
	out := make([]css.Value, len(vals))
	for i, v := range vals {
		if l, ok := v.(css.LayersValue); ok {
			out[i] = l.Items[k]
			continue
		}
		out[i] = v
	}
	return out
}

// mergeSequence emits the shortest component list that expands back to
// vals. Initial components are omitted unless a later emitted component
// could be claimed by them on re-expansion.
func (f *Family) mergeSequence(vals []css.Value) (css.Value, bool) {
	for _, k := range f.keywords {
		if equalValues(vals, k.values) {
			return css.Keyword(k.name), true
		}
	}
	for i, v := range vals {
		if !f.Longhands[i].acceptsAny(v) {
			return nil, false
		}
	}

	emit := make([]bool, len(vals))
	for i := len(vals) - 1; i >= 0; i-- {
		if !css.Equal(vals[i], f.Longhands[i].Initial) {
			emit[i] = true
			continue
		}
		for j := i + 1; j < len(vals); j++ {
			if emit[j] && f.Longhands[i].acceptsAny(vals[j]) {
				emit[i] = true
				break
			}
		}
	}

	for _, all := range []bool{false, true} {
		var items []css.Value
		for i, v := range vals {
			if emit[i] || all {
				items = append(items, v)
			}
		}
		var v css.Value
		switch len(items) {
		case 0:
			v = vals[f.anchor]
		case 1:
			v = items[0]
		default:
			v = css.TupleValue{Items: items}
		}
		back, err := f.expandSequence(v, true)
		if err == nil && equalValues(back, vals) {
			return v, true
		}
	}
	return nil, false
}

func mergeBox(vals []css.Value) (css.Value, bool) {
	for _, v := range vals {
		switch x := v.(type) {
		case css.LayersValue, css.TupleValue:
			return nil, false
		case css.KeywordValue:
			if x.Value == "/" {
				return nil, false
			}
		}
	}
	t, r, b, l := vals[0], vals[1], vals[2], vals[3]
	var items []css.Value
	switch {
	case css.Equal(r, l) && css.Equal(t, b) && css.Equal(t, r):
		return t, true
	case css.Equal(r, l) && css.Equal(t, b):
		items = []css.Value{t, r}
	case css.Equal(r, l):
		items = []css.Value{t, r, b}
	default:
		items = []css.Value{t, r, b, l}
	}
	return css.TupleValue{Items: items}, true
}

func allEqual(vals []css.Value) bool {
	for _, v := range vals[1:] {
		if !css.Equal(v, vals[0]) {
			return false
		}
	}
	return true
}

func equalValues(a, b []css.Value) bool {
	return slices.EqualFunc(a, b, css.Equal)
}
