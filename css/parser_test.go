package css_test

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"stylec/css"
)

func TestParser_RoundTrip(t *testing.T) {
	p := css.NewParser(zap.NewNop(), 0)

	tests := []struct {
		in   string
		want string
	}{
		{"1px solid red", "1px solid red"},
		{"0", "0"},
		{"-0.5em", "-0.5em"},
		{"50%", "50%"},
		{"#ff0000", "rgb(255, 0, 0)"},
		{"#f00", "rgb(255, 0, 0)"},
		{"#ff000080", "rgba(255, 0, 0, 0.502)"},
		{"rgba(0, 0, 0, 0.5)", "rgba(0, 0, 0, 0.5)"},
		{"rgb(0 128 255 / 25%)", "rgba(0, 128, 255, 0.25)"},
		{"hsl(120deg 50% 50%)", "hsl(120, 50%, 50%)"},
		{"oklch(70% 0.1 120 / 50%)", "oklch(0.7 0.1 120 / 0.5)"},
		{"lab(50% 20 -30)", "lab(50% 20 -30)"},
		{"color(display-p3 1 0 0)", "color(display-p3 1 0 0)"},
		{"var(--gap, 4px)", "var(--gap, 4px)"},
		{"var(--gap)", "var(--gap)"},
		{"calc(100% - 2px)", "calc(100% - 2px)"},
		{"translate(10px, 20px) rotate(45deg)", "translate(10px, 20px) rotate(45deg)"},
		{"opacity 0.3s ease, transform 1s", "opacity 0.3s ease, transform 1s"},
		{`url("a.png")`, `url("a.png")`},
		{"url(a.png)", `url("a.png")`},
		{"1px /* note */ 2px", "1px 2px"},
		{"rgb(var(--r), 0, 0)", "rgb(var(--r), 0, 0)"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := p.Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.in, err)
			}
			if got := css.Serialize(v); got != tt.want {
				t.Errorf("Serialize(Parse(%q)) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParser_Types(t *testing.T) {
	p := css.NewParser(zap.NewNop(), 0)

	v, err := p.Parse("1px solid red")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	tuple, ok := v.(css.TupleValue)
	if !ok || len(tuple.Items) != 3 {
		t.Fatalf("expected 3 item tuple, got %#v", v)
	}
	if !css.Equal(tuple.Items[0], css.Px(1)) {
		t.Errorf("expected 1px, got %#v", tuple.Items[0])
	}
	if !css.Equal(tuple.Items[1], css.Keyword("solid")) {
		t.Errorf("expected keyword solid, got %#v", tuple.Items[1])
	}
	c, ok := tuple.Items[2].(css.ColorValue)
	if !ok || c.Name != "red" || c.Channels != [3]float64{255, 0, 0} {
		t.Errorf("expected named color red, got %#v", tuple.Items[2])
	}

	v, err = p.Parse("a, b")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if v.Kind() != css.KindLayers {
		t.Errorf("expected layers, got %s", v.Kind())
	}

	v, err = p.Parse("var(--a, 1px 2px)")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	vv, ok := v.(css.VarValue)
	if !ok || vv.Name != "--a" || vv.Fallback == nil || vv.Fallback.Kind() != css.KindTuple {
		t.Errorf("unexpected var value %#v", v)
	}
	if !css.IsEscape(v) {
		t.Error("var() must be an escape value")
	}
}

func TestParser_Errors(t *testing.T) {
	p := css.NewParser(zap.NewNop(), 0)

	tests := []string{
		"",
		"   ",
		"rgb(1, 2",
		"1px)",
		"10foo",
		"red !important",
		"a { b }",
		"var(1px)",
		`url("javascript:alert(1)")`,
		`url("VBScript:msgbox")`,
		`url("data:text/html,hi")`,
		"1px,,2px",
	}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			v, err := p.Parse(in)
			if err == nil {
				t.Fatalf("Parse(%q) = %#v, expected error", in, v)
			}
			var pe *css.ParseError
			if !errors.As(err, &pe) {
				t.Errorf("expected *ParseError, got %T: %v", err, err)
			}
		})
	}
}

func TestParser_ImageDataURL(t *testing.T) {
	p := css.NewParser(zap.NewNop(), 0)

	v, err := p.Parse(`url("data:image/png;base64,AAAA")`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	img, ok := v.(css.ImageValue)
	if !ok || img.URL != "data:image/png;base64,AAAA" {
		t.Errorf("unexpected image %#v", v)
	}
}

func TestParser_ImageAsset(t *testing.T) {
	p := css.NewParser(zap.NewNop(), 0)

	v, err := p.Parse(`url("asset:hero/banner")`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if img, ok := v.(css.ImageValue); !ok || img.Asset != "hero/banner" || img.URL != "" {
		t.Errorf("unexpected image %#v", v)
	}
	s := css.Serializer{Assets: func(id string) string { return "/static/" + id + ".webp" }}
	if got, want := s.Serialize(v), `url("/static/hero/banner.webp")`; got != want {
		t.Errorf("Serialize = %q, want %q", got, want)
	}
	if _, err := p.Parse(`url("asset:")`); err == nil {
		t.Error("empty asset id must fail")
	}
}

func TestParser_DepthLimit(t *testing.T) {
	const in = "a(b(c(d)))"

	if _, err := css.NewParser(zap.NewNop(), 4).Parse(in); err != nil {
		t.Fatalf("depth 4 should be accepted: %v", err)
	}
	_, err := css.NewParser(zap.NewNop(), 3).Parse(in)
	if !errors.Is(err, css.ErrValueTooDeep) {
		t.Fatalf("expected ErrValueTooDeep, got %v", err)
	}

	_, err = css.NewParser(zap.NewNop(), 3).Parse("var(--a, var(--b, var(--c, 1px)))")
	if !errors.Is(err, css.ErrValueTooDeep) {
		t.Fatalf("expected ErrValueTooDeep for nested fallbacks, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	v := css.FunctionValue{Name: "a", Args: []css.Value{
		css.FunctionValue{Name: "b", Args: []css.Value{css.Px(1)}},
	}}
	if err := css.Validate(v, 3); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := css.Validate(v, 2); !errors.Is(err, css.ErrValueTooDeep) {
		t.Errorf("expected ErrValueTooDeep, got %v", err)
	}
}

func TestValidate_ImageURL(t *testing.T) {
	tests := []struct {
		name string
		v    css.Value
		ok   bool
	}{
		{"https", css.ImageValue{URL: "https://example.com/a.png"}, true},
		{"relative", css.ImageValue{URL: "img/a.png"}, true},
		{"asset", css.ImageValue{Asset: "logo"}, true},
		{"image data", css.ImageValue{URL: "data:image/png;base64,AAAA"}, true},
		{"javascript", css.ImageValue{URL: "javascript:alert(1)"}, false},
		{"javascript mixed case", css.ImageValue{URL: " JavaScript:alert(1)"}, false},
		{"vbscript", css.ImageValue{URL: "vbscript:msgbox"}, false},
		{"html data", css.ImageValue{URL: "data:text/html,<script>x</script>"}, false},
		{"empty", css.ImageValue{}, false},
		{"nested in layers", css.LayersValue{Items: []css.Value{
			css.ImageValue{URL: "a.png"},
			css.ImageValue{URL: "javascript:x"},
		}}, false},
		{"nested in function", css.FunctionValue{Name: "image-set", Args: []css.Value{
			css.ImageValue{URL: "vbscript:x"},
		}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := css.Validate(tt.v, 0)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, css.ErrUnsafeURL) {
				t.Errorf("expected ErrUnsafeURL, got %v", err)
			}
		})
	}
}

func TestParser_ParseProperty(t *testing.T) {
	p := css.NewParser(zap.NewNop(), 0)

	tests := []struct {
		property string
		in       string
		kind     css.Kind
		want     string
	}{
		{"font-family", `"Times New Roman", Georgia, serif`, css.KindFontFamily, `"Times New Roman", Georgia, serif`},
		{"font-family", "Open Sans, sans-serif", css.KindFontFamily, `"Open Sans", sans-serif`},
		{"font-family", "Arial", css.KindFontFamily, "Arial"},
		{"box-shadow", "0 1px 2px red", css.KindShadow, "0 1px 2px red"},
		{"box-shadow", "inset 0 1px 2px rgba(0, 0, 0, 0.2), 0 0 4px red", css.KindLayers, "inset 0 1px 2px rgba(0, 0, 0, 0.2), 0 0 4px red"},
		{"box-shadow", "none", css.KindKeyword, "none"},
		{"--brand", "  whatever { } goes  ", css.KindUnparsed, "whatever { } goes"},
		{"color", "red", css.KindColor, "red"},
	}

	for _, tt := range tests {
		t.Run(tt.property+"/"+tt.in, func(t *testing.T) {
			v, err := p.ParseProperty(tt.property, tt.in)
			if err != nil {
				t.Fatalf("ParseProperty failed: %v", err)
			}
			if v.Kind() != tt.kind {
				t.Errorf("kind = %s, want %s", v.Kind(), tt.kind)
			}
			if got := css.Serialize(v); got != tt.want {
				t.Errorf("Serialize = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	p := css.NewParser(zap.NewNop(), 0)

	a, _ := p.Parse("1px solid #ff0000")
	b, _ := p.Parse("1px  solid  #f00")
	c, _ := p.Parse("1px solid red")

	if !css.Equal(a, b) {
		t.Error("expected hex spellings to be equal")
	}
	if css.Equal(a, c) {
		t.Error("named color keeps its name and must differ from hex")
	}
	if css.Equal(css.Px(0), css.Number(0)) {
		t.Error("0px and 0 differ structurally")
	}
}
