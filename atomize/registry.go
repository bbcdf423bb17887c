package atomize

import (
	"slices"
)

// Entry is one atomic class held by at least one rule.
type Entry struct {
	Class string
	Key   Key
	Refs  int
	seq   uint64
}

// Registry counts references from rules to atomic classes. It belongs to a
// single sheet and is not safe for concurrent use.
type Registry struct {
	entries map[string]*Entry
	held    map[string]map[string]bool
	seq     uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
		held:    make(map[string]map[string]bool),
	}
}

// Acquire records that rule uses class. Repeated acquisition by the same
// rule counts once.
func (r *Registry) Acquire(rule, class string, k Key) {
	h, ok := r.held[rule]
	if !ok {
		h = make(map[string]bool)
		r.held[rule] = h
	}
	if h[class] {
		return
	}
	h[class] = true
	e, ok := r.entries[class]
	if !ok {
		r.seq++
		e = &Entry{Class: class, Key: k, seq: r.seq}
		r.entries[class] = e
	}
	e.Refs++
}

// Atom pairs a class with the key it was generated from.
type Atom struct {
	Class string
	Key   Key
}

// Replace sets the classes held by rule, releasing those no longer used.
// New classes are registered in the order given. It returns classes whose
// count dropped to zero.
func (r *Registry) Replace(rule string, atoms []Atom) []string {
	keep := make(map[string]bool, len(atoms))
	for _, a := range atoms {
		keep[a.Class] = true
	}
	var evicted []string
	for class := range r.held[rule] {
		if !keep[class] && r.drop(rule, class) {
			evicted = append(evicted, class)
		}
	}
	for _, a := range atoms {
		r.Acquire(rule, a.Class, a.Key)
	}
	if len(r.held[rule]) == 0 {
		delete(r.held, rule)
	}
	slices.Sort(evicted)
	return evicted
}

// Release drops every reference held by rule and returns evicted classes.
func (r *Registry) Release(rule string) []string {
	var evicted []string
	for class := range r.held[rule] {
		if r.drop(rule, class) {
			evicted = append(evicted, class)
		}
	}
	delete(r.held, rule)
	slices.Sort(evicted)
	return evicted
}

func (r *Registry) drop(rule, class string) bool {
	delete(r.held[rule], class)
	e, ok := r.entries[class]
	if !ok {
		return false
	}
	e.Refs--
	if e.Refs > 0 {
		return false
	}
	delete(r.entries, class)
	return true
}

// RefCount returns the number of rules holding class.
func (r *Registry) RefCount(class string) int {
	if e, ok := r.entries[class]; ok {
		return e.Refs
	}
	return 0
}

// Classes returns the classes held by rule.
func (r *Registry) Classes(rule string) []string {
	out := make([]string, 0, len(r.held[rule]))
	for class := range r.held[rule] {
		out = append(out, class)
	}
	slices.Sort(out)
	return out
}

// Entries returns live entries in first seen order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	return out
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	return len(r.entries)
}
