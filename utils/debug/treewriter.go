package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter renders indented trees for manual inspection.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Declaration writes "property: value", quoting values that would be
// ambiguous when read back.
func (tw TreeWriter) Declaration(depth int, property, value string) {
	tw.indent(depth)
	tw.w.WriteString(property)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// List writes "label: [a, b, c]", nothing when items is empty.
func (tw TreeWriter) List(depth int, label string, items []string) {
	if len(items) == 0 {
		return
	}
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": [")
	tw.w.WriteString(strings.Join(items, ", "))
	tw.w.WriteString("]\n")
}

func encodeText(raw string) string {
	if raw == "" || raw != strings.TrimSpace(raw) || strings.ContainsAny(raw, "\n\r\t") {
		return strconv.Quote(raw)
	}
	return raw
}
