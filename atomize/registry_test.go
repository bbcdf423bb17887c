package atomize_test

import (
	"testing"

	"stylec/atomize"
	"stylec/css"
)

func TestRegistry_RefCount(t *testing.T) {
	g := atomize.NewGenerator(nil, "")
	r := atomize.NewRegistry()

	key := atomize.Key{Property: "color", Value: "red"}
	class := g.AtomizeKey(key)

	r.Acquire("rule-a", class, key)
	r.Acquire("rule-b", class, key)
	r.Acquire("rule-b", class, key)
	if got := r.RefCount(class); got != 2 {
		t.Fatalf("RefCount = %d, want 2", got)
	}

	if evicted := r.Release("rule-a"); len(evicted) != 0 {
		t.Errorf("nothing should be evicted yet, got %v", evicted)
	}
	if got := r.RefCount(class); got != 1 {
		t.Fatalf("RefCount = %d, want 1", got)
	}
	if r.Len() != 1 {
		t.Errorf("class must still be live")
	}

	evicted := r.Release("rule-b")
	if len(evicted) != 1 || evicted[0] != class {
		t.Errorf("expected %q evicted, got %v", class, evicted)
	}
	if got := r.RefCount(class); got != 0 {
		t.Errorf("RefCount = %d, want 0", got)
	}
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d entries", r.Len())
	}
}

func TestRegistry_Replace(t *testing.T) {
	g := atomize.NewGenerator(nil, "")
	r := atomize.NewRegistry()

	red := atomize.Key{Property: "color", Value: "red"}
	blue := atomize.Key{Property: "color", Value: "blue"}
	pad := atomize.Key{Property: "padding", Value: css.Serialize(css.Px(4))}
	cRed, cBlue, cPad := g.AtomizeKey(red), g.AtomizeKey(blue), g.AtomizeKey(pad)

	r.Replace("rule", []atomize.Atom{{Class: cPad, Key: pad}, {Class: cRed, Key: red}})
	r.Acquire("other", cPad, pad)

	evicted := r.Replace("rule", []atomize.Atom{{Class: cPad, Key: pad}, {Class: cBlue, Key: blue}})
	if len(evicted) != 1 || evicted[0] != cRed {
		t.Errorf("expected red evicted, got %v", evicted)
	}
	if r.RefCount(cPad) != 2 || r.RefCount(cBlue) != 1 {
		t.Errorf("unexpected counts pad=%d blue=%d", r.RefCount(cPad), r.RefCount(cBlue))
	}

	entries := r.Entries()
	if len(entries) != 2 || entries[0].Class != cPad || entries[1].Class != cBlue {
		t.Errorf("entries must be in first seen order, got %+v", entries)
	}
	if got := r.Classes("rule"); len(got) != 2 {
		t.Errorf("Classes = %v", got)
	}
}
