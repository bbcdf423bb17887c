package stylesheet

import (
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"stylec/css"
)

// mediaGroup collects blocks under equivalent breakpoints. The first
// breakpoint seen names the group.
type mediaGroup[T any] struct {
	bp    *css.Breakpoint
	items []T
}

func group[T any](groups []*mediaGroup[T], bp *css.Breakpoint, item T) []*mediaGroup[T] {
	for _, g := range groups {
		if css.EqualMedia(g.bp, bp) {
			g.items = append(g.items, item)
			return groups
		}
	}
	return append(groups, &mediaGroup[T]{bp: bp, items: []T{item}})
}

// order sorts groups most general first: ties keep first appearance.
func order[T any](groups []*mediaGroup[T]) {
	sort.SliceStable(groups, func(i, j int) bool {
		return css.CompareMedia(groups[i].bp, groups[j].bp) < 0
	})
}

func (s *StyleSheet) assemble(opts Options) *Result {
	res := &Result{}
	for _, n := range s.roots {
		out := s.outputs[n.id]
		if out == nil {
			continue
		}
		res.Diagnostics = append(res.Diagnostics, out.diags...)
		for k, v := range out.classes {
			// classes under filtered breakpoints have no CSS
			kept := slices.DeleteFunc(slices.Clone(v), func(class string) bool {
				return !opts.allows(s.atomInfo[class].bp)
			})
			if len(kept) == 0 {
				continue
			}
			if res.Classes == nil {
				res.Classes = make(map[ClassKey][]string)
			}
			res.Classes[k] = kept
		}
	}
	for _, d := range res.Diagnostics {
		s.log.Debug("Diagnostic", zap.String("detail", d.String()))
	}

	var b strings.Builder
	if opts.Mode == ModeAtomic {
		s.writeAtomic(&b, opts)
	} else {
		s.writeReadable(&b, opts)
	}
	res.CSS = b.String()
	return res
}

// writeReadable emits font faces, plain rules, unconditional nesting rules,
// then media groups from the most general condition to the most specific.
// Classes of rules atomized in readable mode follow in compact form.
func (s *StyleSheet) writeReadable(b *strings.Builder, opts Options) {
	for _, kind := range []Kind{KindFontFace, KindPlain, KindNesting, KindMedia} {
		for _, n := range s.roots {
			if n.kind != kind {
				continue
			}
			for _, blk := range s.outputs[n.id].blocks {
				if blk.bp.IsGlobal() {
					s.writeBlock(b, blk, "")
				}
			}
		}
	}

	var groups []*mediaGroup[block]
	for _, n := range s.roots {
		for _, blk := range s.outputs[n.id].blocks {
			if !blk.bp.IsGlobal() {
				groups = group(groups, blk.bp, blk)
			}
		}
	}
	order(groups)
	for _, g := range groups {
		if !opts.allows(g.bp) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("@media " + g.bp.Query() + " {\n")
		for i, blk := range g.items {
			if i > 0 {
				b.WriteByte('\n')
			}
			s.writeBlock(b, blk, "  ")
		}
		b.WriteString("}\n")
	}

	if s.atoms.Len() > 0 {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		s.writeAtoms(b, opts)
	}
}

func (s *StyleSheet) writeBlock(b *strings.Builder, blk block, indent string) {
	if len(blk.decls) == 0 {
		return
	}
	if indent == "" && b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(indent + blk.selector + " {\n")
	for _, d := range blk.decls {
		b.WriteString(indent + "  " + d.Property + ": " + s.engine.serializer.Serialize(d.Value) + ";\n")
	}
	b.WriteString(indent + "}\n")
}

// writeAtomic emits font faces verbatim followed by one compact rule per
// live class in first seen order, grouped like readable output.
func (s *StyleSheet) writeAtomic(b *strings.Builder, opts Options) {
	for _, n := range s.roots {
		if n.kind != KindFontFace {
			continue
		}
		for _, blk := range s.outputs[n.id].blocks {
			b.WriteString(blk.selector + "{" + s.compact(blk.decls) + "}\n")
		}
	}
	s.writeAtoms(b, opts)
}

// writeAtoms emits one compact rule per live class.
func (s *StyleSheet) writeAtoms(b *strings.Builder, opts Options) {
	var groups []*mediaGroup[atom]
	for _, e := range s.atoms.Entries() {
		a := s.atomInfo[e.Class]
		if a.bp.IsGlobal() {
			b.WriteString(atomSelector(a) + "{" + s.compact(a.decls) + "}\n")
			continue
		}
		groups = group(groups, a.bp, a)
	}
	order(groups)
	for _, g := range groups {
		if !opts.allows(g.bp) {
			continue
		}
		b.WriteString("@media " + g.bp.Query() + "{\n")
		for _, a := range g.items {
			b.WriteString(atomSelector(a) + "{" + s.compact(a.decls) + "}\n")
		}
		b.WriteString("}\n")
	}
}

func atomSelector(a atom) string {
	return strings.ReplaceAll(a.shape, "&", "."+a.class)
}

func (s *StyleSheet) compact(decls []css.Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.Property+":"+s.engine.serializer.Serialize(d.Value))
	}
	return strings.Join(parts, ";")
}
