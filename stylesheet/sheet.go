package stylesheet

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"stylec/atomize"
	"stylec/css"
)

// StyleSheet owns a set of rules and compiles them incrementally. It is not
// safe for concurrent use; distinct sheets may be compiled in parallel when
// they share an Engine.
type StyleSheet struct {
	log    *zap.Logger
	engine *Engine
	gen    *atomize.Generator

	roots []*node
	byID  map[string]*node
	// mixin id -> ids of root rules referencing it
	users map[string]map[string]bool

	dirty    map[string]bool
	outputs  map[string]*ruleOutput
	atoms    *atomize.Registry
	atomInfo map[string]atom

	changed bool
	lastKey string
	last    *Result
}

// New creates an empty sheet. A nil engine gets the default one.
func New(log *zap.Logger, engine *Engine) *StyleSheet {
	if log == nil {
		log = zap.NewNop()
	}
	if engine == nil {
		engine = DefaultEngine(log)
	}
	return &StyleSheet{
		log:      log.Named("stylesheet"),
		engine:   engine,
		gen:      atomize.NewGenerator(engine.cache, engine.seed()),
		byID:     make(map[string]*node),
		users:    make(map[string]map[string]bool),
		dirty:    make(map[string]bool),
		outputs:  make(map[string]*ruleOutput),
		atoms:    atomize.NewRegistry(),
		atomInfo: make(map[string]atom),
	}
}

// Len returns the number of top level rules.
func (s *StyleSheet) Len() int {
	return len(s.roots)
}

// RuleIDs returns top level rule ids in insertion order.
func (s *StyleSheet) RuleIDs() []string {
	ids := make([]string, 0, len(s.roots))
	for _, n := range s.roots {
		ids = append(ids, n.id)
	}
	return ids
}

// RefCount returns the number of rules holding an atomic class as of the
// last compile.
func (s *StyleSheet) RefCount(class string) int {
	return s.atoms.RefCount(class)
}

// UpsertRule adds r or replaces the rule with the same id, keeping its
// position. Child rule ids share the namespace with top level ids.
func (s *StyleSheet) UpsertRule(r Rule) error {
	n, err := build(r)
	if err != nil {
		return err
	}

	old := s.byID[n.id]
	if old != nil && old.parent != nil {
		return fmt.Errorf("rule %q: id is used by a nested rule of %q", n.id, old.root().id)
	}
	var clash error
	n.walk(func(c *node) {
		if other, ok := s.byID[c.id]; ok && other.root() != old && clash == nil {
			clash = fmt.Errorf("rule %q: id %q is already used by rule %q", n.id, c.id, other.root().id)
		}
	})
	if clash != nil {
		return clash
	}

	if old != nil {
		s.detach(old)
		i := slices.Index(s.roots, old)
		s.roots[i] = n
	} else {
		s.roots = append(s.roots, n)
	}
	s.attach(n)
	s.touch(n)
	if old != nil && old.kind == KindMixin && n.kind != KindMixin {
		s.touchUsers(old.id)
	}
	s.log.Debug("Rule upserted", zap.String("id", n.id), zap.Stringer("kind", n.kind), zap.Bool("replaced", old != nil))
	return nil
}

// RemoveRule deletes a rule by id. Removing a nested rule leaves its parent
// in place. Atomic classes referenced only by the removed rule are dropped
// immediately.
func (s *StyleSheet) RemoveRule(id string) error {
	n, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownRule, id)
	}
	if n.parent != nil {
		n.parent.children = slices.DeleteFunc(n.parent.children, func(c *node) bool { return c == n })
		delete(s.byID, id)
		s.touch(n.parent)
		return nil
	}

	s.detach(n)
	s.roots = slices.DeleteFunc(s.roots, func(c *node) bool { return c == n })
	delete(s.dirty, id)
	delete(s.outputs, id)
	for _, class := range s.atoms.Release(id) {
		delete(s.atomInfo, class)
	}
	if n.kind == KindMixin {
		s.touchUsers(id)
	}
	s.changed = true
	s.log.Debug("Rule removed", zap.String("id", id))
	return nil
}

// Upsert sets a typed declaration on a rule.
func (s *StyleSheet) Upsert(ruleID, property string, v css.Value) error {
	if v == nil {
		return fmt.Errorf("rule %q property %q: nil value", ruleID, property)
	}
	return s.set(ruleID, Typed(property, v))
}

// UpsertRaw sets a declaration from text, parsed when the sheet compiles.
func (s *StyleSheet) UpsertRaw(ruleID, property, raw string) error {
	return s.set(ruleID, Raw(property, raw))
}

func (s *StyleSheet) set(ruleID string, e Entry) error {
	n, err := s.holder(ruleID)
	if err != nil {
		return err
	}
	if e.Property == "" {
		return fmt.Errorf("rule %q: empty property", ruleID)
	}
	n.decls.Set(e)
	s.touch(n)
	return nil
}

// Remove deletes a declaration and reports whether it existed.
func (s *StyleSheet) Remove(ruleID, property string) (bool, error) {
	n, err := s.holder(ruleID)
	if err != nil {
		return false, err
	}
	if !n.decls.Delete(css.Hyphenate(property)) {
		return false, nil
	}
	s.touch(n)
	return true, nil
}

// Declarations returns a rule's own declarations in order.
func (s *StyleSheet) Declarations(ruleID string) ([]Entry, error) {
	n, err := s.holder(ruleID)
	if err != nil {
		return nil, err
	}
	return n.decls.All(), nil
}

func (s *StyleSheet) holder(ruleID string) (*node, error) {
	n, ok := s.byID[ruleID]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownRule, ruleID)
	}
	if n.kind == KindMedia {
		return nil, fmt.Errorf("rule %q: media rules hold no declarations", ruleID)
	}
	return n, nil
}

func (s *StyleSheet) attach(n *node) {
	root := n.id
	n.walk(func(c *node) {
		s.byID[c.id] = c
		for _, m := range c.mixins {
			if s.users[m] == nil {
				s.users[m] = make(map[string]bool)
			}
			s.users[m][root] = true
		}
	})
}

func (s *StyleSheet) detach(n *node) {
	root := n.id
	n.walk(func(c *node) {
		delete(s.byID, c.id)
		for _, m := range c.mixins {
			delete(s.users[m], root)
			if len(s.users[m]) == 0 {
				delete(s.users, m)
			}
		}
	})
}

// touch marks the rule holding n for recompilation. Editing a mixin
// invalidates every rule that splices it.
func (s *StyleSheet) touch(n *node) {
	root := n.root()
	s.dirty[root.id] = true
	s.changed = true
	if root.kind == KindMixin {
		root.resolved = nil
		s.touchUsers(root.id)
	}
}

func (s *StyleSheet) touchUsers(mixin string) {
	for id := range s.users[mixin] {
		s.dirty[id] = true
	}
	s.changed = true
}

// build validates r and converts it to its owned form.
func build(r Rule) (*node, error) {
	if r == nil {
		return nil, fmt.Errorf("nil rule")
	}
	if r.RuleID() == "" {
		return nil, fmt.Errorf("%s rule without id", r.Kind())
	}
	switch r := r.(type) {
	case *PlainRule:
		return plainNode(r)
	case *NestingRule:
		if !checkSelector(r.Selector) {
			return nil, fmt.Errorf("rule %q: invalid selector %q", r.ID, r.Selector)
		}
		if r.Breakpoint != nil {
			if err := r.Breakpoint.Check(); err != nil {
				return nil, fmt.Errorf("rule %q: %w", r.ID, err)
			}
		}
		n := &node{id: r.ID, kind: KindNesting, selector: r.Selector, bp: r.Breakpoint, mixins: slices.Clone(r.Mixins), atomic: r.Atomic}
		fill(&n.decls, r.Styles)
		for _, c := range r.Children {
			if c.ID == "" {
				return nil, fmt.Errorf("rule %q: nested rule without id", r.ID)
			}
			if !checkSelector(c.Selector) {
				return nil, fmt.Errorf("rule %q: invalid nested selector %q", c.ID, c.Selector)
			}
			child := &node{id: c.ID, kind: KindPlain, selector: c.Selector, parent: n}
			fill(&child.decls, c.Styles)
			n.children = append(n.children, child)
		}
		return n, uniqueIDs(n)
	case *MediaRule:
		if r.Breakpoint == nil {
			return nil, fmt.Errorf("rule %q: media rule without breakpoint", r.ID)
		}
		if err := r.Breakpoint.Check(); err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.ID, err)
		}
		n := &node{id: r.ID, kind: KindMedia, bp: r.Breakpoint}
		for i := range r.Rules {
			child, err := plainNode(&r.Rules[i])
			if err != nil {
				return nil, err
			}
			child.parent = n
			n.children = append(n.children, child)
		}
		return n, uniqueIDs(n)
	case *MixinRule:
		n := &node{id: r.ID, kind: KindMixin}
		fill(&n.decls, r.Styles)
		return n, nil
	case *FontFaceRule:
		n := &node{id: r.ID, kind: KindFontFace}
		fill(&n.decls, r.Descriptors)
		if _, ok := n.decls.Get("font-family"); !ok {
			return nil, fmt.Errorf("rule %q: font-face without font-family", r.ID)
		}
		return n, nil
	}
	return nil, fmt.Errorf("rule %q: unsupported rule type %T", r.RuleID(), r)
}

func plainNode(r *PlainRule) (*node, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("plain rule without id")
	}
	if !checkSelector(r.Selector) {
		return nil, fmt.Errorf("rule %q: invalid selector %q", r.ID, r.Selector)
	}
	n := &node{id: r.ID, kind: KindPlain, selector: r.Selector, mixins: slices.Clone(r.Mixins), atomic: r.Atomic}
	fill(&n.decls, r.Styles)
	return n, nil
}

func fill(d *Declarations, styles []Entry) {
	for _, e := range styles {
		e.Property = css.Hyphenate(e.Property)
		if e.Property != "" {
			d.Set(e)
		}
	}
}

func uniqueIDs(n *node) error {
	seen := make(map[string]bool)
	var err error
	n.walk(func(c *node) {
		if seen[c.id] && err == nil {
			err = fmt.Errorf("rule %q: duplicate id %q", n.id, c.id)
		}
		seen[c.id] = true
	})
	return err
}
