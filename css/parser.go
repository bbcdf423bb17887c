package css

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// Parser turns raw CSS value text into typed values.
type Parser struct {
	log      *zap.Logger
	maxDepth int
}

// NewParser creates a value parser. maxDepth bounds nesting of functions,
// lists and var() fallbacks; zero selects DefaultMaxDepth.
func NewParser(log *zap.Logger, maxDepth int) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Parser{log: log.Named("css-parser"), maxDepth: maxDepth}
}

// MaxDepth returns the nesting limit the parser enforces.
func (p *Parser) MaxDepth() int {
	return p.maxDepth
}

// node is a token, or for functions and parenthesized groups, a token with
// its enclosed tokens.
type node struct {
	tt   css.TokenType
	data string
	args []node
}

// Parse parses a value without property context.
func (p *Parser) Parse(raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, parseErrorf(raw, "empty value")
	}
	nodes, err := p.tokenize(raw)
	if err != nil {
		p.log.Debug("Value rejected", zap.String("value", raw), zap.Error(err))
		return nil, err
	}
	v, err := p.build(raw, nodes)
	if err == nil {
		err = Validate(v, p.maxDepth)
	}
	if err != nil {
		p.log.Debug("Value rejected", zap.String("value", raw), zap.Error(err))
		return nil, err
	}
	return v, nil
}

// ParseProperty parses a value for the given hyphenated property. Custom
// property values are kept unparsed; font-family and shadow properties get
// their dedicated variants.
func (p *Parser) ParseProperty(property, raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, parseErrorf(raw, "empty value")
	}
	if IsCustomProperty(property) {
		return UnparsedValue{Raw: raw}, nil
	}
	v, err := p.Parse(raw)
	if err != nil {
		return nil, err
	}
	switch property {
	case "font-family":
		if fam, ok := fontFamily(v); ok {
			return fam, nil
		}
	case "box-shadow", "text-shadow":
		if sh, ok := shadows(v); ok {
			return sh, nil
		}
	}
	return v, nil
}

func (p *Parser) tokenize(raw string) ([]node, error) {
	l := css.NewLexer(parse.NewInputString(raw))

	var (
		cur   []node
		stack [][]node
		open  []node
	)
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, parseErrorf(raw, "%v", err)
			}
			if len(open) > 0 {
				return nil, parseErrorf(raw, "unclosed %q", open[len(open)-1].data+"(")
			}
			return cur, nil

		case css.CommentToken:

		case css.FunctionToken, css.LeftParenthesisToken:
			n := node{tt: tt}
			if tt == css.FunctionToken {
				n.data = strings.TrimSuffix(string(data), "(")
			}
			open = append(open, n)
			if len(open) >= p.maxDepth {
				return nil, fmt.Errorf("%w (limit %d)", ErrValueTooDeep, p.maxDepth)
			}
			stack = append(stack, cur)
			cur = nil

		case css.RightParenthesisToken:
			if len(open) == 0 {
				return nil, parseErrorf(raw, "unbalanced ')'")
			}
			fn := open[len(open)-1]
			open = open[:len(open)-1]
			fn.args = cur
			cur = append(stack[len(stack)-1], fn)
			stack = stack[:len(stack)-1]

		case css.BadStringToken, css.BadURLToken:
			return nil, parseErrorf(raw, "malformed %v", tt)

		case css.LeftBraceToken, css.RightBraceToken, css.LeftBracketToken, css.RightBracketToken,
			css.SemicolonToken, css.ColonToken, css.AtKeywordToken:
			return nil, parseErrorf(raw, "unexpected %q", string(data))

		default:
			cur = append(cur, node{tt: tt, data: string(data)})
		}
	}
}

// splitTop splits nodes on separator tokens. Nested tokens are already folded
// into their function node so only top level separators count.
func splitTop(nodes []node, sep css.TokenType) [][]node {
	parts := [][]node{nil}
	for _, n := range nodes {
		if n.tt == sep {
			parts = append(parts, nil)
			continue
		}
		parts[len(parts)-1] = append(parts[len(parts)-1], n)
	}
	return parts
}

func (p *Parser) build(raw string, nodes []node) (Value, error) {
	parts := splitTop(nodes, css.CommaToken)
	if len(parts) == 1 {
		return p.buildTuple(raw, parts[0])
	}
	items := make([]Value, 0, len(parts))
	for _, part := range parts {
		v, err := p.buildTuple(raw, part)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return LayersValue{Items: items}, nil
}

func (p *Parser) buildTuple(raw string, nodes []node) (Value, error) {
	var items []Value
	for _, n := range nodes {
		if n.tt == css.WhitespaceToken {
			continue
		}
		v, err := p.buildSingle(raw, n)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	switch len(items) {
	case 0:
		return nil, parseErrorf(raw, "empty list item")
	case 1:
		return items[0], nil
	}
	return TupleValue{Items: items}, nil
}

func (p *Parser) buildSingle(raw string, n node) (Value, error) {
	switch n.tt {
	case css.IdentToken:
		if c, ok := Named(strings.ToLower(n.data)); ok {
			return c, nil
		}
		return KeywordValue{Value: n.data}, nil

	case css.CustomPropertyNameToken:
		return KeywordValue{Value: n.data}, nil

	case css.NumberToken:
		f, err := strconv.ParseFloat(n.data, 64)
		if err != nil {
			return nil, parseErrorf(raw, "bad number %q", n.data)
		}
		return UnitValue{Value: f}, nil

	case css.PercentageToken:
		f, err := strconv.ParseFloat(strings.TrimSuffix(n.data, "%"), 64)
		if err != nil {
			return nil, parseErrorf(raw, "bad percentage %q", n.data)
		}
		return UnitValue{Value: f, Unit: UnitPercent}, nil

	case css.DimensionToken:
		f, unit, err := splitDimension(n.data)
		if err != nil {
			return nil, parseErrorf(raw, "bad dimension %q", n.data)
		}
		if !Unit(unit).Known() {
			return nil, parseErrorf(raw, "unknown unit %q", unit)
		}
		return UnitValue{Value: f, Unit: Unit(unit)}, nil

	case css.HashToken:
		c, ok := parseHexColor(n.data)
		if !ok {
			return nil, parseErrorf(raw, "bad color %q", n.data)
		}
		return c, nil

	case css.StringToken:
		return KeywordValue{Value: n.data}, nil

	case css.URLToken:
		return image(raw, urlTarget(n.data))

	case css.DelimToken:
		if n.data == "!" {
			return nil, parseErrorf(raw, "priority annotations are not supported")
		}
		return KeywordValue{Value: n.data}, nil

	case css.FunctionToken:
		return p.function(raw, n)

	case css.LeftParenthesisToken:
		args, err := p.args(raw, n.args)
		if err != nil {
			return nil, err
		}
		return FunctionValue{Args: args}, nil
	}
	return nil, parseErrorf(raw, "unexpected %q", n.data)
}

func (p *Parser) function(raw string, n node) (Value, error) {
	name := strings.ToLower(n.data)
	switch name {
	case "var":
		return p.variable(raw, n.args)
	case "url":
		var b strings.Builder
		for _, a := range n.args {
			b.WriteString(a.data)
		}
		return image(raw, unquote(b.String()))
	case "color":
		if c, ok := p.color(raw, n.args, SpaceDisplayP3); ok {
			return c, nil
		}
	default:
		if space, ok := colorFunctions[name]; ok {
			if c, ok := p.color(raw, n.args, space); ok {
				return c, nil
			}
		}
	}
	args, err := p.args(raw, n.args)
	if err != nil {
		return nil, err
	}
	return FunctionValue{Name: n.data, Args: args}, nil
}

func (p *Parser) args(raw string, nodes []node) ([]Value, error) {
	if len(trimWhitespace(nodes)) == 0 {
		return nil, nil
	}
	parts := splitTop(nodes, css.CommaToken)
	args := make([]Value, 0, len(parts))
	for _, part := range parts {
		v, err := p.buildTuple(raw, part)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func (p *Parser) variable(raw string, nodes []node) (Value, error) {
	head, rest := nodes, []node(nil)
	for i, n := range nodes {
		if n.tt == css.CommaToken {
			head, rest = nodes[:i], nodes[i+1:]
			break
		}
	}
	head = trimWhitespace(head)
	if len(head) != 1 || !strings.HasPrefix(head[0].data, "--") {
		return nil, parseErrorf(raw, "var() expects a custom property name")
	}
	v := VarValue{Name: head[0].data}
	if len(trimWhitespace(rest)) > 0 {
		fb, err := p.build(raw, rest)
		if err != nil {
			return nil, err
		}
		v.Fallback = fb
	}
	return v, nil
}

// color folds the arguments of a color function into a ColorValue. It
// reports false when the arguments do not form a plain color, in which case
// the caller keeps the generic function form (e.g. channels set by var()).
func (p *Parser) color(raw string, nodes []node, space ColorSpace) (ColorValue, bool) {
	nodes = trimWhitespace(nodes)
	if space == SpaceDisplayP3 {
		if len(nodes) == 0 || nodes[0].tt != css.IdentToken || !strings.EqualFold(nodes[0].data, "display-p3") {
			return ColorValue{}, false
		}
		nodes = nodes[1:]
	}
	var (
		comps []UnitValue
		alpha *UnitValue
		slash bool
	)
	for _, n := range nodes {
		switch n.tt {
		case css.WhitespaceToken, css.CommaToken:
		case css.DelimToken:
			if n.data != "/" || slash {
				return ColorValue{}, false
			}
			slash = true
		case css.NumberToken, css.PercentageToken, css.DimensionToken:
			v, err := p.buildSingle(raw, n)
			if err != nil {
				return ColorValue{}, false
			}
			uv := v.(UnitValue)
			if slash {
				if alpha != nil {
					return ColorValue{}, false
				}
				alpha = &uv
				continue
			}
			comps = append(comps, uv)
		default:
			return ColorValue{}, false
		}
	}
	if len(comps) == 4 && alpha == nil {
		alpha = &comps[3]
		comps = comps[:3]
	}
	return colorFromArgs(space, comps, alpha)
}

func trimWhitespace(nodes []node) []node {
	for len(nodes) > 0 && nodes[0].tt == css.WhitespaceToken {
		nodes = nodes[1:]
	}
	for len(nodes) > 0 && nodes[len(nodes)-1].tt == css.WhitespaceToken {
		nodes = nodes[:len(nodes)-1]
	}
	return nodes
}

// splitDimension extracts numeric value and unit from a dimension token.
func splitDimension(s string) (float64, string, error) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	for i < len(s) && (isDigit(s[i]) || s[i] == '.') {
		i++
	}
	if i+1 < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if s[j] == '+' || s[j] == '-' {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	f, err := strconv.ParseFloat(s[:i], 64)
	return f, strings.ToLower(s[i:]), err
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func urlTarget(token string) string {
	s := token
	if len(s) >= 4 && strings.EqualFold(s[:4], "url(") {
		s = s[4:]
	}
	s = strings.TrimSuffix(s, ")")
	return unquote(strings.TrimSpace(s))
}

// AssetScheme marks a url() target as an asset id resolved at
// serialization time.
const AssetScheme = "asset:"

// image builds an ImageValue, rejecting URL schemes that can execute code.
func image(raw, target string) (Value, error) {
	lower := strings.ToLower(strings.TrimSpace(target))
	switch {
	case target == "":
		return nil, parseErrorf(raw, "empty url")
	case strings.HasPrefix(lower, AssetScheme):
		id := strings.TrimSpace(target[len(AssetScheme):])
		if id == "" {
			return nil, parseErrorf(raw, "empty asset id")
		}
		return ImageValue{Asset: id}, nil
	}
	if err := checkURL(target); err != nil {
		return nil, parseErrorf(raw, "%v", err)
	}
	return ImageValue{URL: target}, nil
}

func checkURL(target string) error {
	lower := strings.ToLower(strings.TrimSpace(target))
	switch {
	case strings.HasPrefix(lower, "javascript:"), strings.HasPrefix(lower, "vbscript:"):
		return fmt.Errorf("%w: scheme of %q", ErrUnsafeURL, target)
	case strings.HasPrefix(lower, "data:") && !strings.HasPrefix(lower, "data:image/"):
		return fmt.Errorf("%w: only image data urls are allowed", ErrUnsafeURL)
	}
	return nil
}

// fontFamily converts a generic parse result into a font stack.
func fontFamily(v Value) (FontFamilyValue, bool) {
	items := []Value{v}
	if l, ok := v.(LayersValue); ok {
		items = l.Items
	}
	fam := FontFamilyValue{Names: make([]string, 0, len(items))}
	for _, it := range items {
		name, ok := familyName(it)
		if !ok {
			return FontFamilyValue{}, false
		}
		fam.Names = append(fam.Names, norm.NFC.String(name))
	}
	return fam, true
}

func familyName(v Value) (string, bool) {
	switch x := v.(type) {
	case KeywordValue:
		if IsCSSWideKeyword(x) {
			return "", false
		}
		return unquote(x.Value), true
	case ColorValue:
		// a family that happens to be spelled like a color keyword
		if x.Name != "" {
			return x.Name, true
		}
	case TupleValue:
		words := make([]string, 0, len(x.Items))
		for _, it := range x.Items {
			kw, ok := it.(KeywordValue)
			if !ok {
				return "", false
			}
			words = append(words, kw.Value)
		}
		return strings.Join(words, " "), true
	}
	return "", false
}

// shadows converts a generic parse result into shadow layers.
func shadows(v Value) (Value, bool) {
	layers := []Value{v}
	if l, ok := v.(LayersValue); ok {
		layers = l.Items
	}
	out := make([]Value, 0, len(layers))
	for _, layer := range layers {
		sh, ok := shadow(layer)
		if !ok {
			return nil, false
		}
		out = append(out, sh)
	}
	if len(out) == 1 {
		return out[0], true
	}
	return LayersValue{Items: out}, true
}

func shadow(v Value) (ShadowValue, bool) {
	items := []Value{v}
	if t, ok := v.(TupleValue); ok {
		items = t.Items
	}
	var (
		sh      ShadowValue
		lengths []Value
	)
	for _, it := range items {
		switch x := it.(type) {
		case KeywordValue:
			switch {
			case x.Value == "inset" && !sh.Inset:
				sh.Inset = true
			case strings.EqualFold(x.Value, "currentcolor") && sh.Color == nil:
				sh.Color = x
			default:
				return ShadowValue{}, false
			}
		case UnitValue:
			if !x.IsLength() {
				return ShadowValue{}, false
			}
			lengths = append(lengths, x)
		case ColorValue:
			if sh.Color != nil {
				return ShadowValue{}, false
			}
			sh.Color = x
		default:
			return ShadowValue{}, false
		}
	}
	if len(lengths) < 2 || len(lengths) > 4 {
		return ShadowValue{}, false
	}
	sh.OffsetX, sh.OffsetY = lengths[0], lengths[1]
	if len(lengths) > 2 {
		sh.Blur = lengths[2]
	}
	if len(lengths) > 3 {
		sh.Spread = lengths[3]
	}
	return sh, true
}
