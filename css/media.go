package css

import (
	"errors"
	"io"
	"math"
	"slices"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Breakpoint is a parsed media condition. Width bounds are kept in pixels,
// anything else the engine does not understand is carried as opaque
// feature text and emitted verbatim.
type Breakpoint struct {
	ID        string
	MinWidth  float64
	HasMin    bool
	MaxWidth  float64
	HasMax    bool
	MediaType string
	Features  []string
}

// MinWidth returns a breakpoint bounded from below only.
func MinWidth(id string, px float64) *Breakpoint {
	return &Breakpoint{ID: id, MinWidth: px, HasMin: true}
}

// MaxWidth returns a breakpoint bounded from above only.
func MaxWidth(id string, px float64) *Breakpoint {
	return &Breakpoint{ID: id, MaxWidth: px, HasMax: true}
}

// IsGlobal reports whether the breakpoint places no condition at all.
func (b *Breakpoint) IsGlobal() bool {
	return b == nil || (!b.HasMin && !b.HasMax && b.MediaType == "" && len(b.Features) == 0)
}

func (b *Breakpoint) hasWidth() bool {
	return b.HasMin || b.HasMax
}

// Check verifies bound ordering.
func (b *Breakpoint) Check() error {
	if b.HasMin && b.HasMax && b.MinWidth > b.MaxWidth {
		return parseErrorf(b.Query(), "min-width %spx is greater than max-width %spx",
			formatNumber(b.MinWidth), formatNumber(b.MaxWidth))
	}
	return nil
}

// Query returns the media condition text, without the @media keyword.
func (b *Breakpoint) Query() string {
	if b.IsGlobal() {
		return ""
	}
	var parts []string
	if b.MediaType != "" {
		parts = append(parts, b.MediaType)
	}
	if b.HasMin {
		parts = append(parts, "(min-width: "+formatNumber(b.MinWidth)+"px)")
	}
	if b.HasMax {
		parts = append(parts, "(max-width: "+formatNumber(b.MaxWidth)+"px)")
	}
	parts = append(parts, b.Features...)
	return strings.Join(parts, " and ")
}

// ParseMedia parses a media query. Width features in min-width/max-width
// form or in range syntax (width >= 768px) become bounds, other features
// pass through as opaque text. A bare "min-width: 768px" without
// parentheses is accepted.
func ParseMedia(id, query string) (*Breakpoint, error) {
	q := strings.TrimSpace(query)
	if len(q) >= 6 && strings.EqualFold(q[:6], "@media") {
		q = strings.TrimSpace(q[6:])
	}
	if q != "" && !strings.Contains(q, "(") && strings.Contains(q, ":") {
		q = "(" + q + ")"
	}

	bp := &Breakpoint{ID: id}
	terms, err := mediaTerms(q)
	if err != nil {
		return nil, err
	}
	for _, term := range terms {
		if len(term) == 1 && term[0].tt == css.IdentToken {
			kw := strings.ToLower(term[0].data)
			switch kw {
			case "all":
			case "only", "not":
				return nil, parseErrorf(query, "media query modifiers are not supported")
			default:
				if bp.MediaType != "" {
					return nil, parseErrorf(query, "more than one media type")
				}
				bp.MediaType = kw
			}
			continue
		}
		if len(term) == 0 || term[0].tt != css.LeftParenthesisToken {
			return nil, parseErrorf(query, "unexpected %q", joinTokens(term))
		}
		ok, err := bp.widthFeature(query, term)
		if err != nil {
			return nil, err
		}
		if !ok {
			bp.Features = append(bp.Features, joinTokens(term))
		}
	}
	if err := bp.Check(); err != nil {
		return nil, err
	}
	return bp, nil
}

type mediaToken struct {
	tt   css.TokenType
	data string
}

// mediaTerms splits a query into terms separated by top level "and".
// Whitespace is collapsed to single tokens.
func mediaTerms(q string) ([][]mediaToken, error) {
	l := css.NewLexer(parse.NewInputString(q))

	var (
		terms   [][]mediaToken
		cur     []mediaToken
		depth   int
		pending bool
	)
	flush := func() {
		for len(cur) > 0 && cur[len(cur)-1].tt == css.WhitespaceToken {
			cur = cur[:len(cur)-1]
		}
		if len(cur) > 0 {
			terms = append(terms, cur)
		}
		cur = nil
	}
	for {
		tt, data := l.Next()
		and := tt == css.IdentToken && strings.EqualFold(string(data), "and")
		if depth == 0 && len(cur) > 0 && cur[0].tt == css.LeftParenthesisToken && !and {
			switch tt {
			case css.ErrorToken, css.WhitespaceToken, css.CommentToken:
			default:
				return nil, parseErrorf(q, "missing \"and\" after %q", joinTokens(cur))
			}
		}
		switch tt {
		case css.ErrorToken:
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, parseErrorf(q, "%v", err)
			}
			if depth != 0 {
				return nil, parseErrorf(q, "unbalanced parentheses")
			}
			if pending {
				return nil, parseErrorf(q, "dangling \"and\"")
			}
			flush()
			return terms, nil
		case css.CommentToken:
			continue
		case css.CommaToken:
			if depth == 0 {
				return nil, parseErrorf(q, "media query lists are not supported")
			}
		case css.LeftParenthesisToken, css.FunctionToken:
			depth++
		case css.RightParenthesisToken:
			if depth == 0 {
				return nil, parseErrorf(q, "unbalanced parentheses")
			}
			depth--
		case css.WhitespaceToken:
			if len(cur) == 0 {
				continue
			}
			data = []byte(" ")
		case css.IdentToken:
			if depth == 0 && and {
				if len(cur) == 0 {
					return nil, parseErrorf(q, "dangling \"and\"")
				}
				flush()
				pending = true
				continue
			}
		}
		pending = false
		cur = append(cur, mediaToken{tt: tt, data: string(data)})
	}
}

func joinTokens(toks []mediaToken) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.data)
	}
	return b.String()
}

// widthFeature applies a parenthesized width feature to bp. It reports false
// for features that are not width bounds.
func (bp *Breakpoint) widthFeature(query string, term []mediaToken) (bool, error) {
	var inner []mediaToken
	for _, t := range term[1 : len(term)-1] {
		if t.tt != css.WhitespaceToken {
			inner = append(inner, t)
		}
	}
	if len(inner) == 3 && inner[0].tt == css.IdentToken && inner[1].tt == css.ColonToken {
		name := strings.ToLower(inner[0].data)
		if name != "min-width" && name != "max-width" {
			return false, nil
		}
		px, err := mediaLength(query, inner[2])
		if err != nil {
			return false, err
		}
		return true, bp.bound(query, name == "min-width", px)
	}

	// range syntax: width >= a, width <= a, a <= width, a <= width <= b
	var (
		ops  []string
		vals []mediaToken
		seen bool
	)
	for i := 0; i < len(inner); i++ {
		t := inner[i]
		switch {
		case t.tt == css.IdentToken && strings.EqualFold(t.data, "width"):
			if seen {
				return false, nil
			}
			seen = true
			vals = append(vals, t)
		case t.tt == css.DelimToken && (t.data == "<" || t.data == ">"):
			op := t.data
			if i+1 < len(inner) && inner[i+1].tt == css.DelimToken && inner[i+1].data == "=" {
				op += "="
				i++
			}
			ops = append(ops, op)
		case t.tt == css.DimensionToken || t.tt == css.NumberToken:
			vals = append(vals, t)
		default:
			return false, nil
		}
	}
	if !seen || len(ops) == 0 || len(vals) != len(ops)+1 {
		return false, nil
	}
	for i, op := range ops {
		if op != "<=" && op != ">=" {
			return false, nil
		}
		left, right := vals[i], vals[i+1]
		lower := op == ">="
		v := right
		if right.tt == css.IdentToken {
			v, lower = left, !lower
		} else if left.tt != css.IdentToken {
			return false, nil
		}
		px, err := mediaLength(query, v)
		if err != nil {
			return false, err
		}
		if err := bp.bound(query, lower, px); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (bp *Breakpoint) bound(query string, lower bool, px float64) error {
	if lower {
		if bp.HasMin {
			return parseErrorf(query, "duplicate min-width")
		}
		bp.MinWidth, bp.HasMin = px, true
		return nil
	}
	if bp.HasMax {
		return parseErrorf(query, "duplicate max-width")
	}
	bp.MaxWidth, bp.HasMax = px, true
	return nil
}

func mediaLength(query string, t mediaToken) (float64, error) {
	f, unit, err := splitDimension(t.data)
	if err != nil {
		return 0, parseErrorf(query, "bad length %q", t.data)
	}
	px, err := ToPx(UnitValue{Value: f, Unit: Unit(unit)})
	if err != nil {
		return 0, parseErrorf(query, "%v", err)
	}
	return px, nil
}

// CompareMedia orders breakpoints for emission: global first, then width
// based breakpoints by ascending min-width (no min first) and ascending
// max-width (no max last), then opaque-only conditions. Remaining ties
// report 0 and are left to a stable sort.
func CompareMedia(a, b *Breakpoint) int {
	ag, bg := a.IsGlobal(), b.IsGlobal()
	switch {
	case ag && bg:
		return 0
	case ag:
		return -1
	case bg:
		return 1
	}
	aw, bw := a.hasWidth(), b.hasWidth()
	switch {
	case aw && !bw:
		return -1
	case !aw && bw:
		return 1
	case !aw:
		return 0
	}
	if c := cmpFloat(lowerBound(a), lowerBound(b)); c != 0 {
		return c
	}
	return cmpFloat(upperBound(a), upperBound(b))
}

func lowerBound(b *Breakpoint) float64 {
	if b.HasMin {
		return b.MinWidth
	}
	return math.Inf(-1)
}

func upperBound(b *Breakpoint) float64 {
	if b.HasMax {
		return b.MaxWidth
	}
	return math.Inf(1)
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// EqualMedia reports whether two breakpoints describe the same condition,
// regardless of their ids.
func EqualMedia(a, b *Breakpoint) bool {
	ag, bg := a.IsGlobal(), b.IsGlobal()
	if ag || bg {
		return ag == bg
	}
	return a.HasMin == b.HasMin && a.HasMax == b.HasMax &&
		(!a.HasMin || a.MinWidth == b.MinWidth) &&
		(!a.HasMax || a.MaxWidth == b.MaxWidth) &&
		a.MediaType == b.MediaType &&
		slices.Equal(a.Features, b.Features)
}

// MatchMedia reports whether bp applies to a screen viewport of the given
// width in pixels. Opaque features cannot be evaluated and never match.
func MatchMedia(bp *Breakpoint, width float64) bool {
	if bp.IsGlobal() {
		return true
	}
	if len(bp.Features) > 0 {
		return false
	}
	if bp.MediaType != "" && bp.MediaType != "screen" {
		return false
	}
	if bp.HasMin && width < bp.MinWidth {
		return false
	}
	if bp.HasMax && width > bp.MaxWidth {
		return false
	}
	return true
}
