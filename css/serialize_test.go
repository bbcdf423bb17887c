package css_test

import (
	"testing"

	"stylec/css"
)

func TestSerialize(t *testing.T) {
	tests := []struct {
		name string
		v    css.Value
		want string
	}{
		{"rounded", css.Px(1.23456), "1.2346px"},
		{"negative zero", css.Number(-0.00001), "0"},
		{"no exponent", css.Px(1e7), "10000000px"},
		{"family quoting", css.FontFamilyValue{Names: []string{"My \"Font\"", "monospace"}}, `"My \"Font\"", monospace`},
		{"group", css.TupleValue{Items: []css.Value{
			css.FunctionValue{Args: []css.Value{css.TupleValue{Items: []css.Value{css.Px(1), css.Keyword("+"), css.Px(2)}}}},
			css.Keyword("*"), css.Number(2),
		}}, "(1px + 2px) * 2"},
		{"transparent", mustNamed(t, "transparent"), "transparent"},
		{"hwb", css.ColorValue{Space: css.SpaceHWB, Channels: [3]float64{90, 10, 20}, Alpha: 1}, "hwb(90 10% 20%)"},
		{"lch alpha", css.ColorValue{Space: css.SpaceLCH, Channels: [3]float64{60, 40, 30}, Alpha: 0.5}, "lch(60% 40 30 / 0.5)"},
		{"shadow", css.ShadowValue{OffsetX: css.Px(1), OffsetY: css.Px(2)}, "1px 2px"},
		{"unparsed", css.UnparsedValue{Raw: "anything ; goes"}, "anything ; goes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := css.Serialize(tt.v); got != tt.want {
				t.Errorf("Serialize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSerializer_Assets(t *testing.T) {
	s := css.Serializer{Assets: func(id string) string { return "/assets/" + id + ".webp" }}
	got := s.Serialize(css.ImageValue{Asset: "hero"})
	if want := `url("/assets/hero.webp")`; got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
	if got := css.Serialize(css.ImageValue{Asset: "hero"}); got != `url("hero")` {
		t.Errorf("default resolver must keep the id, got %q", got)
	}
}

func mustNamed(t *testing.T, name string) css.ColorValue {
	t.Helper()
	c, ok := css.Named(name)
	if !ok {
		t.Fatalf("unknown color %q", name)
	}
	return c
}
