package css

import (
	"math"
	"strconv"
	"strings"
)

// AssetResolver maps an asset id to the URL emitted for it.
type AssetResolver func(asset string) string

// Serializer turns values into CSS text. The zero value emits asset ids as
// their own URLs.
type Serializer struct {
	Assets AssetResolver
}

// Serialize returns the CSS text of v using the default serializer.
func Serialize(v Value) string {
	return Serializer{}.Serialize(v)
}

// Serialize returns the CSS text of v.
func (s Serializer) Serialize(v Value) string {
	var b strings.Builder
	s.write(&b, v)
	return b.String()
}

func (s Serializer) write(b *strings.Builder, v Value) {
	switch v := v.(type) {
	case nil:
	case UnitValue:
		b.WriteString(formatNumber(v.Value))
		b.WriteString(string(v.Unit))
	case KeywordValue:
		b.WriteString(v.Value)
	case ColorValue:
		writeColor(b, v)
	case ImageValue:
		u := v.URL
		if v.Asset != "" {
			u = v.Asset
			if s.Assets != nil {
				u = s.Assets(v.Asset)
			}
		}
		b.WriteString(`url("`)
		b.WriteString(cssEscapeDoubleQuoted(u))
		b.WriteString(`")`)
	case FontFamilyValue:
		for i, name := range v.Names {
			if i > 0 {
				b.WriteString(", ")
			}
			writeFamilyName(b, name)
		}
	case FunctionValue:
		b.WriteString(v.Name)
		b.WriteByte('(')
		for i, a := range v.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			s.write(b, a)
		}
		b.WriteByte(')')
	case LayersValue:
		for i, item := range v.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			s.write(b, item)
		}
	case TupleValue:
		for i, item := range v.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			s.write(b, item)
		}
	case VarValue:
		b.WriteString("var(")
		b.WriteString(v.Name)
		if v.Fallback != nil {
			b.WriteString(", ")
			s.write(b, v.Fallback)
		}
		b.WriteByte(')')
	case UnparsedValue:
		b.WriteString(v.Raw)
	case ShadowValue:
		sep := false
		part := func(p Value) {
			if p == nil {
				return
			}
			if sep {
				b.WriteByte(' ')
			}
			s.write(b, p)
			sep = true
		}
		if v.Inset {
			part(Keyword("inset"))
		}
		part(v.OffsetX)
		part(v.OffsetY)
		part(v.Blur)
		part(v.Spread)
		part(v.Color)
	}
}

// formatNumber prints numbers rounded to four decimals, without exponent and
// independent of locale.
func formatNumber(f float64) string {
	r := roundTo(f, 4)
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func roundTo(f float64, digits int) float64 {
	p := math.Pow10(digits)
	return math.Round(f*p) / p
}

var genericFamilies = map[string]bool{
	"serif": true, "sans-serif": true, "monospace": true, "cursive": true,
	"fantasy": true, "system-ui": true, "ui-serif": true, "ui-sans-serif": true,
	"ui-monospace": true, "ui-rounded": true, "math": true, "emoji": true,
	"fangsong": true,
}

func writeFamilyName(b *strings.Builder, name string) {
	if genericFamilies[name] || isIdentifier(name) {
		b.WriteString(name)
		return
	}
	b.WriteByte('"')
	b.WriteString(cssEscapeDoubleQuoted(name))
	b.WriteByte('"')
}

func isIdentifier(s string) bool {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// cssEscapeDoubleQuoted escapes a string for use inside CSS double quotes.
// Backslashes and double quotes are escaped per CSS syntax: \" and \\.
func cssEscapeDoubleQuoted(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
