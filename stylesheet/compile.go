package stylesheet

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"stylec/atomize"
	"stylec/css"
	"stylec/shorthand"
)

// Mode selects the output form.
type Mode int

const (
	// ModeReadable emits rules with their own selectors.
	ModeReadable Mode = iota
	// ModeAtomic emits one class per unique declaration.
	ModeAtomic
)

func (m Mode) String() string {
	if m == ModeAtomic {
		return "atomic"
	}
	return "readable"
}

// ParseMode converts a mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "readable":
		return ModeReadable, nil
	case "atomic":
		return ModeAtomic, nil
	}
	return ModeReadable, fmt.Errorf("unknown compile mode %q", s)
}

// Options controls a compile call. Changing options between calls
// invalidates every cached rule.
type Options struct {
	Mode            Mode
	IncludePrefixes bool
	// MergeShorthands collapses complete longhand sets, readable mode only.
	MergeShorthands bool
	// BreakpointFilter limits conditional output to the listed breakpoint
	// ids. Empty means all.
	BreakpointFilter []string
	// AtomicRules lists rule ids compiled to atomic classes in readable
	// mode, in addition to rules flagged Atomic. Ids of media rules cover
	// all their rules.
	AtomicRules []string
}

// Key identifies the options. Equal keys produce equal output for the same
// rules.
func (o Options) Key() string {
	return fmt.Sprintf("%s|%t|%t|%s|%s", o.Mode, o.IncludePrefixes, o.MergeShorthands,
		sortedSet(o.BreakpointFilter), sortedSet(o.AtomicRules))
}

func sortedSet(list []string) string {
	list = slices.Clone(list)
	slices.Sort(list)
	return strings.Join(slices.Compact(list), ",")
}

// atomized reports whether n, or its root, asks for atomic output.
func (o Options) atomized(n *node) bool {
	if o.Mode == ModeAtomic {
		return true
	}
	for c := n; c != nil; c = c.parent {
		if c.atomic || slices.Contains(o.AtomicRules, c.id) {
			return true
		}
	}
	return false
}

func (o Options) allows(bp *css.Breakpoint) bool {
	return bp.IsGlobal() || len(o.BreakpointFilter) == 0 || slices.Contains(o.BreakpointFilter, bp.ID)
}

// ClassKey identifies a declaration as written: the rule holding it and the
// property before shorthand expansion.
type ClassKey struct {
	RuleID   string
	Property string
}

// Result is the outcome of a successful compile.
type Result struct {
	CSS string
	// Classes maps declarations of atomized rules to atomic classes: every
	// rule in atomic mode, flagged rules in readable mode. A shorthand maps
	// to the classes of all its longhands.
	Classes     map[ClassKey][]string
	Diagnostics []Diagnostic
}

// ClassList returns every class generated for a rule, sorted and without
// duplicates.
func (r *Result) ClassList(ruleID string) []string {
	var out []string
	for k, classes := range r.Classes {
		if k.RuleID == ruleID {
			out = append(out, classes...)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

type block struct {
	selector string
	bp       *css.Breakpoint
	decls    []css.Declaration
}

type atom struct {
	class string
	shape string
	bp    *css.Breakpoint
	decls []css.Declaration
}

type ruleOutput struct {
	blocks  []block
	atoms   []atom
	keys    []atomize.Atom
	classes map[ClassKey][]string
	diags   []Diagnostic
}

// Compile emits CSS for the whole sheet. Rules unchanged since the previous
// call with the same options are taken from cache; when nothing changed the
// previous result is returned as is. A failed compile leaves the sheet as it
// was.
func (s *StyleSheet) Compile(opts Options) (*Result, error) {
	key := opts.Key()
	if s.last != nil && !s.changed && key == s.lastKey {
		s.log.Debug("Nothing changed, returning cached result")
		return s.last, nil
	}
	start := time.Now()

	full := key != s.lastKey || s.last == nil
	if err := s.checkMixins(); err != nil {
		return nil, err
	}

	type staged struct {
		id  string
		out *ruleOutput
	}
	var work []staged
	for _, n := range s.roots {
		if !full && !s.dirty[n.id] {
			continue
		}
		out, err := s.compileRule(n, opts)
		if err != nil {
			return nil, err
		}
		work = append(work, staged{id: n.id, out: out})
	}

	if full {
		s.outputs = make(map[string]*ruleOutput, len(s.roots))
		s.atoms = atomize.NewRegistry()
		s.atomInfo = make(map[string]atom)
	}
	for _, w := range work {
		s.outputs[w.id] = w.out
		for _, class := range s.atoms.Replace(w.id, w.out.keys) {
			delete(s.atomInfo, class)
		}
		for _, a := range w.out.atoms {
			s.atomInfo[a.class] = a
		}
	}
	for _, e := range s.atoms.Entries() {
		if _, ok := s.atomInfo[e.Class]; !ok {
			return nil, fmt.Errorf("%w: class %s has no declarations", ErrInvariant, e.Class)
		}
	}

	res := s.assemble(opts)
	s.dirty = make(map[string]bool)
	s.changed = false
	s.lastKey = key
	s.last = res

	s.log.Debug("Compiled",
		zap.Stringer("mode", opts.Mode),
		zap.Int("rules", len(s.roots)),
		zap.Int("recompiled", len(work)),
		zap.Int("diagnostics", len(res.Diagnostics)),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

func (s *StyleSheet) checkMixins() error {
	for _, n := range s.roots {
		var err error
		n.walk(func(c *node) {
			for _, m := range c.mixins {
				if mx, ok := s.byID[m]; (!ok || mx.kind != KindMixin) && err == nil {
					err = &UnresolvedMixinError{ID: m, RuleID: c.id}
				}
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *StyleSheet) compileRule(n *node, opts Options) (*ruleOutput, error) {
	out := &ruleOutput{classes: make(map[ClassKey][]string)}
	switch n.kind {
	case KindMixin:
	case KindFontFace:
		out.blocks = append(out.blocks, block{selector: "@font-face", decls: s.descriptors(n, out)})
	case KindPlain:
		s.emit(n, n.selector, "&", nil, opts, out)
	case KindNesting:
		s.emit(n, n.selector, "&", n.bp, opts, out)
		for _, c := range n.children {
			s.emit(c, childSelector(n.selector, c.selector), shape(c.selector), n.bp, opts, out)
		}
	case KindMedia:
		if n.bp == nil {
			return nil, fmt.Errorf("%w: media rule %q has no breakpoint", ErrInvariant, n.id)
		}
		for _, c := range n.children {
			s.emit(c, c.selector, "&", n.bp, opts, out)
		}
	default:
		return nil, fmt.Errorf("%w: rule %q has kind %d", ErrInvariant, n.id, n.kind)
	}
	return out, nil
}

// resolved is a final longhand together with the property it was written as.
type resolved struct {
	origin string
	decl   css.Declaration
}

// emit compiles the declarations of n, mixins first, into out: atomic
// classes when n is atomized, a readable block otherwise.
func (s *StyleSheet) emit(n *node, selector, shape string, bp *css.Breakpoint, opts Options, out *ruleOutput) {
	decls, forms := s.resolve(n, out)
	if len(decls) == 0 {
		return
	}
	if opts.atomized(n) {
		bpID := ""
		if !bp.IsGlobal() {
			bpID = bp.ID
		}
		for _, r := range decls {
			k := atomize.Key{
				Breakpoint: bpID,
				Shape:      shape,
				Property:   r.decl.Property,
				Value:      s.engine.serializer.Serialize(r.decl.Value),
			}
			class := s.gen.AtomizeKey(k)
			if !slices.ContainsFunc(out.keys, func(a atomize.Atom) bool { return a.Class == class }) {
				out.keys = append(out.keys, atomize.Atom{Class: class, Key: k})
				out.atoms = append(out.atoms, atom{class: class, shape: shape, bp: bp, decls: s.finish([]css.Declaration{r.decl}, opts)})
			}
			ck := ClassKey{RuleID: n.id, Property: r.origin}
			if !slices.Contains(out.classes[ck], class) {
				out.classes[ck] = append(out.classes[ck], class)
			}
		}
		return
	}
	list := make([]css.Declaration, 0, len(decls))
	for _, r := range decls {
		list = append(list, r.decl)
	}
	if opts.MergeShorthands {
		list = s.engine.expander.Merge(list, forms...)
	}
	out.blocks = append(out.blocks, block{selector: selector, bp: bp, decls: s.finish(list, opts)})
}

// resolve splices mixins ahead of own declarations, parses and expands
// them. Later longhands replace earlier ones in place. Shorthands are also
// returned as written so merging can restore them.
func (s *StyleSheet) resolve(n *node, out *ruleOutput) ([]resolved, []shorthand.Form) {
	var entries Declarations
	for _, m := range n.mixins {
		for _, e := range s.mixinEntries(s.byID[m]) {
			entries.Set(e)
		}
	}
	for _, e := range n.decls.All() {
		entries.Delete(e.Property)
		entries.Set(e)
	}

	var (
		list  []resolved
		forms []shorthand.Form
		pos   = make(map[string]int)
	)
	for _, e := range entries.All() {
		v, ok := s.value(n.id, e, out)
		if !ok {
			continue
		}
		expanded, err := s.engine.expander.ExpandAll(e.Property, v)
		if err != nil {
			out.diags = append(out.diags, Diagnostic{
				Code:     CodeInvalidShorthand,
				RuleID:   n.id,
				Property: e.Property,
				Value:    e.text(),
				Err:      err,
			})
			continue
		}
		if fm, ok := s.engine.expander.Form(e.Property, v); ok {
			forms = append(forms, fm)
		}
		for _, d := range expanded {
			if i, ok := pos[d.Property]; ok {
				list[i] = resolved{origin: e.Property, decl: d}
				continue
			}
			pos[d.Property] = len(list)
			list = append(list, resolved{origin: e.Property, decl: d})
		}
	}
	return list, forms
}

func (s *StyleSheet) mixinEntries(mx *node) []Entry {
	if mx.resolved == nil {
		mx.resolved = mx.decls.All()
	}
	return mx.resolved
}

// value returns the typed value of e, recording a diagnostic when it is
// dropped or passed through.
func (s *StyleSheet) value(ruleID string, e Entry, out *ruleOutput) (css.Value, bool) {
	report := func(code Code, err error) {
		out.diags = append(out.diags, Diagnostic{Code: code, RuleID: ruleID, Property: e.Property, Value: e.text(), Err: err})
	}
	if !s.engine.properties.Known(e.Property) {
		raw := strings.TrimSpace(e.text())
		if raw == "" {
			report(CodeParseError, errors.New("empty value"))
			return nil, false
		}
		report(CodeUnknownProperty, nil)
		return css.UnparsedValue{Raw: raw}, true
	}
	if e.Value != nil {
		if err := css.Validate(e.Value, s.engine.parser.MaxDepth()); err != nil {
			if errors.Is(err, css.ErrValueTooDeep) {
				report(CodeValueTooDeep, err)
			} else {
				report(CodeParseError, err)
			}
			return nil, false
		}
		return e.Value, true
	}
	v, err := s.engine.parser.ParseProperty(e.Property, e.Raw)
	if err != nil {
		if errors.Is(err, css.ErrValueTooDeep) {
			report(CodeValueTooDeep, err)
		} else {
			report(CodeParseError, err)
		}
		return nil, false
	}
	return v, true
}

func (s *StyleSheet) descriptors(n *node, out *ruleOutput) []css.Declaration {
	var list []css.Declaration
	for _, e := range n.decls.All() {
		v := e.Value
		if v == nil {
			var err error
			if v, err = s.engine.parser.ParseProperty(e.Property, e.Raw); err != nil {
				code := CodeParseError
				if errors.Is(err, css.ErrValueTooDeep) {
					code = CodeValueTooDeep
				}
				out.diags = append(out.diags, Diagnostic{Code: code, RuleID: n.id, Property: e.Property, Value: e.Raw, Err: err})
				continue
			}
		}
		list = append(list, css.Declaration{Property: e.Property, Value: v})
	}
	return list
}

func (s *StyleSheet) finish(decls []css.Declaration, opts Options) []css.Declaration {
	if !opts.IncludePrefixes {
		return decls
	}
	out := make([]css.Declaration, 0, len(decls))
	for _, d := range decls {
		out = append(out, s.engine.prefixer.Prefix(d.Property, d.Value)...)
	}
	return out
}
