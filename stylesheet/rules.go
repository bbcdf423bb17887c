package stylesheet

import (
	"strings"

	"stylec/css"
)

// Kind is a rule kind. Kinds are emitted in declaration order of the
// constants; mixins never emit on their own.
type Kind int

const (
	KindFontFace Kind = iota
	KindPlain
	KindNesting
	KindMixin
	KindMedia
)

var kindNames = [...]string{"font-face", "plain", "nesting", "mixin", "media"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Rule is the input form of a rule handed to UpsertRule. The sheet copies
// what it needs, later changes to the value have no effect.
type Rule interface {
	RuleID() string
	Kind() Kind
}

// PlainRule is a selector with declarations. Atomic asks for atomic
// classes for this rule even when the sheet compiles readable.
type PlainRule struct {
	ID       string
	Selector string
	Mixins   []string
	Styles   []Entry
	Atomic   bool
}

// NestingRule is a selector with declarations, optional breakpoint and
// child rules whose selectors are relative to it.
type NestingRule struct {
	ID         string
	Selector   string
	Breakpoint *css.Breakpoint
	Mixins     []string
	Styles     []Entry
	Children   []ChildRule
	// Atomic covers the rule and its children.
	Atomic bool
}

// ChildRule is nested under a NestingRule. Selector is either a suffix
// (":hover", " > li") or contains "&" standing for the parent selector.
type ChildRule struct {
	ID       string
	Selector string
	Styles   []Entry
}

// MediaRule groups plain rules under a breakpoint.
type MediaRule struct {
	ID         string
	Breakpoint *css.Breakpoint
	Rules      []PlainRule
}

// MixinRule is a named bundle of declarations spliced into rules that
// reference it.
type MixinRule struct {
	ID     string
	Styles []Entry
}

// FontFaceRule declares a web font. Descriptors must include font-family.
type FontFaceRule struct {
	ID          string
	Descriptors []Entry
}

func (r *PlainRule) RuleID() string    { return r.ID }
func (r *NestingRule) RuleID() string  { return r.ID }
func (r *MediaRule) RuleID() string    { return r.ID }
func (r *MixinRule) RuleID() string    { return r.ID }
func (r *FontFaceRule) RuleID() string { return r.ID }

func (*PlainRule) Kind() Kind    { return KindPlain }
func (*NestingRule) Kind() Kind  { return KindNesting }
func (*MediaRule) Kind() Kind    { return KindMedia }
func (*MixinRule) Kind() Kind    { return KindMixin }
func (*FontFaceRule) Kind() Kind { return KindFontFace }

// node is the owned representation of a rule or a nested child.
type node struct {
	id       string
	kind     Kind
	selector string
	bp       *css.Breakpoint
	mixins   []string
	decls    Declarations
	parent   *node
	children []*node
	atomic   bool

	// mixins only: resolved entries cached until the mixin changes
	resolved []Entry
}

func (n *node) root() *node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// walk visits n and all its descendants.
func (n *node) walk(fn func(*node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}

// childSelector resolves a nested selector against its parent.
func childSelector(parent, child string) string {
	switch {
	case strings.Contains(child, "&"):
		return strings.ReplaceAll(child, "&", parent)
	case strings.HasPrefix(child, ":"), strings.HasPrefix(child, "["):
		return parent + child
	case strings.HasPrefix(child, " "):
		return parent + child
	}
	return parent + " " + child
}

// shape is the structural part of a nested selector with "&" standing for
// the element carrying the atomic class.
func shape(child string) string {
	child = strings.TrimRight(child, " ")
	if child == "" {
		return "&"
	}
	return childSelector("&", child)
}

func checkSelector(s string) bool {
	return strings.TrimSpace(s) != "" && !strings.ContainsAny(s, "{};")
}
