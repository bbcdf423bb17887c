package stylesheet

import (
	"slices"

	"stylec/css"
)

// Entry is one stored declaration. Value holds a typed value; when it is
// nil, Raw is parsed at compile time so that parse failures surface as
// diagnostics.
type Entry struct {
	Property string
	Value    css.Value
	Raw      string
}

// Raw builds an entry from unparsed text. The property may be given in
// camelCase.
func Raw(property, raw string) Entry {
	return Entry{Property: css.Hyphenate(property), Raw: raw}
}

// Typed builds an entry from a parsed value.
func Typed(property string, v css.Value) Entry {
	return Entry{Property: css.Hyphenate(property), Value: v}
}

func (e Entry) text() string {
	if e.Value != nil {
		return css.Serialize(e.Value)
	}
	return e.Raw
}

// Declarations is an ordered set keyed by property. Replacing an existing
// property keeps its position. The zero value is ready to use.
type Declarations struct {
	order []string
	items map[string]Entry
}

// Set stores e and reports whether the property was new.
func (d *Declarations) Set(e Entry) bool {
	if d.items == nil {
		d.items = make(map[string]Entry)
	}
	_, exists := d.items[e.Property]
	d.items[e.Property] = e
	if !exists {
		d.order = append(d.order, e.Property)
	}
	return !exists
}

// Delete removes property and reports whether it was present.
func (d *Declarations) Delete(property string) bool {
	if _, ok := d.items[property]; !ok {
		return false
	}
	delete(d.items, property)
	d.order = slices.DeleteFunc(d.order, func(p string) bool { return p == property })
	return true
}

// Get returns the entry for property.
func (d *Declarations) Get(property string) (Entry, bool) {
	e, ok := d.items[property]
	return e, ok
}

// Len returns the number of properties.
func (d *Declarations) Len() int {
	return len(d.order)
}

// All returns entries in order.
func (d *Declarations) All() []Entry {
	out := make([]Entry, 0, len(d.order))
	for _, p := range d.order {
		out = append(out, d.items[p])
	}
	return out
}

func (d *Declarations) clone() Declarations {
	c := Declarations{order: slices.Clone(d.order), items: make(map[string]Entry, len(d.items))}
	for k, v := range d.items {
		c.items[k] = v
	}
	return c
}
