package stylesheet

import (
	"sort"

	"github.com/maruel/natural"

	"stylec/css"
	"stylec/utils/debug"
)

// Dump returns a readable tree of the sheet contents. It exists for manual
// inspection and is not a stable format.
func (s *StyleSheet) Dump() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "StyleSheet (%d rules, %d dirty, %d atomic classes)", len(s.roots), len(s.dirty), s.atoms.Len())

	bps := make(map[string]*css.Breakpoint)
	for _, n := range s.roots {
		n.walk(func(c *node) {
			if !c.bp.IsGlobal() {
				bps[c.bp.ID] = c.bp
			}
		})
	}
	if len(bps) > 0 {
		ids := make([]string, 0, len(bps))
		for id := range bps {
			ids = append(ids, id)
		}
		sort.Sort(natural.StringSlice(ids))
		tw.Line(0, "Breakpoints: %d", len(ids))
		for _, id := range ids {
			tw.Line(1, "Breakpoint[%q] %s", id, bps[id].Query())
		}
	}

	for _, n := range s.roots {
		dumpNode(tw, 0, n)
	}
	return tw.String()
}

func dumpNode(tw *debug.TreeWriter, depth int, n *node) {
	switch {
	case n.selector != "" && !n.bp.IsGlobal():
		tw.Line(depth, "%s %q selector=%q breakpoint=%q", n.kind, n.id, n.selector, n.bp.ID)
	case n.selector != "":
		tw.Line(depth, "%s %q selector=%q", n.kind, n.id, n.selector)
	case !n.bp.IsGlobal():
		tw.Line(depth, "%s %q breakpoint=%q", n.kind, n.id, n.bp.ID)
	default:
		tw.Line(depth, "%s %q", n.kind, n.id)
	}
	tw.List(depth+1, "mixins", n.mixins)
	for _, e := range n.decls.All() {
		tw.Declaration(depth+1, e.Property, e.text())
	}
	for _, c := range n.children {
		dumpNode(tw, depth+1, c)
	}
}
