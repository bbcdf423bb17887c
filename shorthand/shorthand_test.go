package shorthand_test

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"stylec/css"
	"stylec/shorthand"
)

func newExpander(t *testing.T) (*shorthand.Expander, *css.Parser) {
	t.Helper()
	p := css.NewParser(zap.NewNop(), 0)
	e, err := shorthand.New(zap.NewNop(), p, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e, p
}

func mustParse(t *testing.T, p *css.Parser, property, raw string) css.Value {
	t.Helper()
	v, err := p.ParseProperty(property, raw)
	if err != nil {
		t.Fatalf("ParseProperty(%q, %q) failed: %v", property, raw, err)
	}
	return v
}

func render(decls []css.Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.Property+": "+css.Serialize(d.Value))
	}
	return strings.Join(parts, "; ")
}

func TestExpand_Border(t *testing.T) {
	e, p := newExpander(t)

	decls, err := e.Expand("border", mustParse(t, p, "border", "1px solid red"))
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(decls) != 3 {
		t.Fatalf("expected 3 longhands, got %d: %s", len(decls), render(decls))
	}
	if decls[0].Property != "border-width" || !css.Equal(decls[0].Value, css.Px(1)) {
		t.Errorf("unexpected width %s", render(decls[:1]))
	}
	if decls[1].Property != "border-style" || !css.Equal(decls[1].Value, css.Keyword("solid")) {
		t.Errorf("unexpected style %s", render(decls[1:2]))
	}
	if c, ok := decls[2].Value.(css.ColorValue); decls[2].Property != "border-color" || !ok || c.Name != "red" {
		t.Errorf("unexpected color %s", render(decls[2:]))
	}

	merged := e.Merge(decls)
	if got, want := render(merged), "border: 1px solid red"; got != want {
		t.Errorf("Merge = %q, want %q", got, want)
	}
}

func TestExpand(t *testing.T) {
	e, p := newExpander(t)

	tests := []struct {
		property string
		in       string
		want     string
	}{
		{"margin", "1px", "margin-top: 1px; margin-right: 1px; margin-bottom: 1px; margin-left: 1px"},
		{"margin", "1px auto", "margin-top: 1px; margin-right: auto; margin-bottom: 1px; margin-left: auto"},
		{"padding", "1px 2px 3px", "padding-top: 1px; padding-right: 2px; padding-bottom: 3px; padding-left: 2px"},
		{"inset", "1px 2px 3px 4px", "top: 1px; right: 2px; bottom: 3px; left: 4px"},
		{"border", "solid", "border-width: medium; border-style: solid; border-color: currentcolor"},
		{"border", "red 2px dashed", "border-width: 2px; border-style: dashed; border-color: red"},
		{"border", "inherit", "border-width: inherit; border-style: inherit; border-color: inherit"},
		{"flex", "none", "flex-grow: 0; flex-shrink: 0; flex-basis: auto"},
		{"flex", "2", "flex-grow: 2; flex-shrink: 1; flex-basis: 0%"},
		{"flex", "1 0 200px", "flex-grow: 1; flex-shrink: 0; flex-basis: 200px"},
		{"list-style", "none", "list-style-type: none; list-style-position: outside; list-style-image: none"},
		{"list-style", "square inside", "list-style-type: square; list-style-position: inside; list-style-image: none"},
		{"text-decoration", "underline wavy red", "text-decoration-line: underline; text-decoration-style: wavy; text-decoration-color: red; text-decoration-thickness: auto"},
		{"transition", "opacity 0.3s ease-in 1s",
			"transition-property: opacity; transition-duration: 0.3s; transition-timing-function: ease-in; transition-delay: 1s"},
		{"transition", "opacity 1s, transform 2s",
			"transition-property: opacity, transform; transition-duration: 1s, 2s; transition-timing-function: ease, ease; transition-delay: 0s, 0s"},
		{"font", "bold 12px serif", "font: bold 12px serif"},
		{"border", "var(--b)", "border: var(--b)"},
		{"color", "red", "color: red"},
	}

	for _, tt := range tests {
		t.Run(tt.property+": "+tt.in, func(t *testing.T) {
			decls, err := e.Expand(tt.property, mustParse(t, p, tt.property, tt.in))
			if err != nil {
				t.Fatalf("Expand failed: %v", err)
			}
			if got := render(decls); got != tt.want {
				t.Errorf("Expand = %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestExpand_Errors(t *testing.T) {
	e, p := newExpander(t)

	tests := []struct {
		property string
		in       string
	}{
		{"margin", "1px 2px 3px 4px 5px"},
		{"border", "1px 2px"},
		{"border", "solid inherit"},
		{"border", "1px, 2px"},
		{"border-radius", "10px / 20px"},
		{"flex", "1 2 3 4"},
	}

	for _, tt := range tests {
		t.Run(tt.property+": "+tt.in, func(t *testing.T) {
			_, err := e.Expand(tt.property, mustParse(t, p, tt.property, tt.in))
			var ee *shorthand.ExpandError
			if !errors.As(err, &ee) {
				t.Fatalf("expected *ExpandError, got %v", err)
			}
			if ee.Property != tt.property {
				t.Errorf("error property = %q, want %q", ee.Property, tt.property)
			}
		})
	}
}

func TestExpandAll(t *testing.T) {
	e, p := newExpander(t)

	decls, err := e.ExpandAll("border", mustParse(t, p, "border", "1px solid red"))
	if err != nil {
		t.Fatalf("ExpandAll failed: %v", err)
	}
	if len(decls) != 12 {
		t.Fatalf("expected 12 longhands, got %d: %s", len(decls), render(decls))
	}
	if decls[0].Property != "border-top-width" || decls[11].Property != "border-left-color" {
		t.Errorf("unexpected order: %s", render(decls))
	}
}

// Canonical values survive expansion to leaf longhands and merging back.
func TestRoundTrip(t *testing.T) {
	e, p := newExpander(t)

	tests := []struct {
		property string
		in       string
	}{
		{"margin", "1px"},
		{"margin", "1px 2px"},
		{"margin", "1px 2px 3px"},
		{"margin", "1px 2px 3px 4px"},
		{"padding", "0"},
		{"inset", "0 auto"},
		{"border-radius", "4px 8px"},
		{"border", "1px solid red"},
		{"border", "none"},
		{"border", "2px dashed"},
		{"border", "inherit"},
		{"border-top", "1px solid red"},
		{"outline", "2px dashed blue"},
		{"column-rule", "1px solid"},
		{"list-style", "none"},
		{"list-style", "square inside"},
		{"text-decoration", "underline red"},
		{"flex", "2"},
		{"flex", "2 3"},
		{"flex", "200px"},
		{"flex", "2 3 10%"},
		{"flex", "none"},
		{"flex", "auto"},
		{"transition", "opacity 1s"},
		{"transition", "opacity 0s 1s"},
		{"transition", "all 1s ease-in"},
		{"transition", "opacity 1s, transform 2s ease-out"},
		{"animation", "fade 1s infinite"},
		{"animation", "none"},
	}

	for _, tt := range tests {
		t.Run(tt.property+": "+tt.in, func(t *testing.T) {
			v := mustParse(t, p, tt.property, tt.in)
			decls, err := e.ExpandAll(tt.property, v)
			if err != nil {
				t.Fatalf("ExpandAll failed: %v", err)
			}
			merged := e.Merge(decls)
			if len(merged) != 1 {
				t.Fatalf("expected a single declaration, got %s", render(merged))
			}
			if merged[0].Property != tt.property {
				t.Errorf("merged into %q, want %q", merged[0].Property, tt.property)
			}
			if got := css.Serialize(merged[0].Value); got != tt.in {
				t.Errorf("round trip = %q, want %q", got, tt.in)
			}
		})
	}
}

// Shorthands keep the author's spelling when merged with their written form.
func TestRoundTrip_WrittenForm(t *testing.T) {
	e, p := newExpander(t)

	tests := []struct {
		property string
		in       string
	}{
		{"border", "solid 1px red"},
		{"border", "1px solid currentcolor"},
		{"border", "medium none currentcolor"},
		{"margin", "1px 2px 1px 2px"},
		{"margin", "0 0 0 0"},
		{"list-style", "inside square"},
		{"transition", "1s opacity"},
		{"transition", "1s opacity, ease-out transform 2s"},
		{"flex", "1 1 auto"},
		{"outline", "blue dashed 2px"},
		{"border", "1px solid red"},
	}

	for _, tt := range tests {
		t.Run(tt.property+": "+tt.in, func(t *testing.T) {
			v := mustParse(t, p, tt.property, tt.in)
			decls, err := e.ExpandAll(tt.property, v)
			if err != nil {
				t.Fatalf("ExpandAll failed: %v", err)
			}
			form, ok := e.Form(tt.property, v)
			if !ok {
				t.Fatalf("Form(%q) not recorded", tt.in)
			}
			merged := e.Merge(decls, form)
			if len(merged) != 1 || merged[0].Property != tt.property {
				t.Fatalf("expected a single %s, got %s", tt.property, render(merged))
			}
			if got := css.Serialize(merged[0].Value); got != tt.in {
				t.Errorf("round trip = %q, want %q", got, tt.in)
			}
		})
	}
}

func TestMerge_WrittenFormOverridden(t *testing.T) {
	e, p := newExpander(t)

	v := mustParse(t, p, "border", "solid 1px red")
	decls, err := e.ExpandAll("border", v)
	if err != nil {
		t.Fatalf("ExpandAll failed: %v", err)
	}
	form, _ := e.Form("border", v)
	for i := range decls {
		if strings.HasSuffix(decls[i].Property, "-color") {
			decls[i].Value = mustParse(t, p, decls[i].Property, "blue")
		}
	}

	merged := e.Merge(decls, form)
	if len(merged) != 1 || merged[0].Property != "border" {
		t.Fatalf("expected a single border, got %s", render(merged))
	}
	if got := css.Serialize(merged[0].Value); got != "1px solid blue" {
		t.Errorf("merge = %q, want shortest form %q", got, "1px solid blue")
	}
}

func TestForm_NotShorthand(t *testing.T) {
	e, p := newExpander(t)

	if _, ok := e.Form("color", mustParse(t, p, "color", "red")); ok {
		t.Error("color is not a shorthand")
	}
	if _, ok := e.Form("margin", css.UnparsedValue{Raw: "1px 2px"}); ok {
		t.Error("unparsed values have no written form")
	}
}

func TestMerge_Skips(t *testing.T) {
	e, p := newExpander(t)

	side := func(prop, raw string) css.Declaration {
		return css.Declaration{Property: prop, Value: mustParse(t, p, prop, raw)}
	}

	tests := []struct {
		name  string
		decls []css.Declaration
		want  string
	}{
		{
			name: "missing longhand",
			decls: []css.Declaration{
				side("margin-top", "1px"), side("margin-right", "1px"), side("margin-bottom", "1px"),
			},
			want: "margin-top: 1px; margin-right: 1px; margin-bottom: 1px",
		},
		{
			name: "variable",
			decls: []css.Declaration{
				side("margin-top", "1px"), side("margin-right", "var(--m)"),
				side("margin-bottom", "1px"), side("margin-left", "1px"),
			},
			want: "margin-top: 1px; margin-right: var(--m); margin-bottom: 1px; margin-left: 1px",
		},
		{
			name: "unparsed",
			decls: []css.Declaration{
				{Property: "border-width", Value: css.UnparsedValue{Raw: "1px"}},
				side("border-style", "solid"), side("border-color", "red"),
			},
			want: "border-width: 1px; border-style: solid; border-color: red",
		},
		{
			name: "mixed css-wide keywords",
			decls: []css.Declaration{
				side("border-width", "inherit"), side("border-style", "solid"), side("border-color", "red"),
			},
			want: "border-width: inherit; border-style: solid; border-color: red",
		},
		{
			name: "position of first longhand",
			decls: []css.Declaration{
				side("color", "red"), side("margin-left", "4px"), side("display", "block"),
				side("margin-top", "1px"), side("margin-right", "2px"), side("margin-bottom", "3px"),
			},
			want: "color: red; margin: 1px 2px 3px 4px; display: block",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(e.Merge(tt.decls)); got != tt.want {
				t.Errorf("Merge = %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestLoadTable(t *testing.T) {
	if _, err := shorthand.LoadTable(strings.NewReader("version: 1\nfamilies: []\nextra: true\n")); err == nil {
		t.Error("expected unknown field to be rejected")
	}
	if _, err := shorthand.LoadTable(strings.NewReader("families: []\n")); err == nil {
		t.Error("expected missing version to be rejected")
	}
	if _, err := shorthand.LoadTable(strings.NewReader("")); err == nil {
		t.Error("expected empty table to be rejected")
	}

	tbl := shorthand.DefaultTable()
	if tbl.Version != 1 || len(tbl.Families) == 0 {
		t.Errorf("unexpected default table: version %d, %d families", tbl.Version, len(tbl.Families))
	}
}

func TestNew_InvalidTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"box sides", `
version: 1
families:
  - {name: margin, kind: box, initial: "0", sides: [margin-top, margin-right]}
`},
		{"unknown kind", `
version: 1
families:
  - {name: margin, kind: grid}
`},
		{"bad initial", `
version: 1
families:
  - {name: margin, kind: box, initial: "(", sides: [a, b, c, d]}
`},
		{"order", `
version: 1
families:
  - name: border
    kind: sequence
    longhands:
      - {property: border-width, initial: medium, accepts: [length]}
      - {property: border-style, initial: none, accepts: [solid|none]}
  - {name: border-width, kind: box, initial: medium, sides: [a, b, c, d]}
`},
		{"anchor", `
version: 1
families:
  - name: pair
    kind: sequence
    anchor: nope
    longhands:
      - {property: a, initial: "0", accepts: [length]}
      - {property: b, initial: "0", accepts: [number]}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := shorthand.LoadTable(strings.NewReader(tt.yaml))
			if err != nil {
				t.Fatalf("LoadTable failed: %v", err)
			}
			if _, err := shorthand.New(zap.NewNop(), nil, tbl); err == nil {
				t.Error("expected New to reject the table")
			}
		})
	}
}
