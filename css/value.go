package css

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindUnit Kind = iota
	KindKeyword
	KindColor
	KindImage
	KindFontFamily
	KindFunction
	KindLayers
	KindTuple
	KindVar
	KindUnparsed
	KindShadow
)

var kindNames = [...]string{
	KindUnit:       "unit",
	KindKeyword:    "keyword",
	KindColor:      "color",
	KindImage:      "image",
	KindFontFamily: "font-family",
	KindFunction:   "function",
	KindLayers:     "layers",
	KindTuple:      "tuple",
	KindVar:        "var",
	KindUnparsed:   "unparsed",
	KindShadow:     "shadow",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// Value is a typed CSS property value. The set of implementations is closed:
// only the variants declared in this package satisfy it.
type Value interface {
	Kind() Kind
	value()
}

// Declaration is a single property/value pair. Property is always the
// hyphenated CSS name.
type Declaration struct {
	Property string
	Value    Value
}

// UnitValue is a number with an optional unit. UnitNumber marks a bare number.
type UnitValue struct {
	Value float64
	Unit  Unit
}

// KeywordValue is an identifier (auto, solid, inherit) or any other single
// token kept verbatim: quoted strings and delimiters such as "/".
type KeywordValue struct {
	Value string
}

// ColorValue is a color tagged with its color space. Channel meaning depends
// on Space, see ColorSpace. Name is set for named colors and wins on output.
type ColorValue struct {
	Space    ColorSpace
	Channels [3]float64
	Alpha    float64
	Name     string
}

// ImageValue references an image either by URL or by asset id. Exactly one of
// URL and Asset is set.
type ImageValue struct {
	URL   string
	Asset string
}

// FontFamilyValue is an ordered font stack.
type FontFamilyValue struct {
	Names []string
}

// FunctionValue is a CSS function call with comma separated arguments. An
// empty Name denotes a parenthesized group, as used inside calc().
type FunctionValue struct {
	Name string
	Args []Value
}

// LayersValue is a comma separated list (background layers, transitions).
type LayersValue struct {
	Items []Value
}

// TupleValue is a space separated list.
type TupleValue struct {
	Items []Value
}

// VarValue is a reference to a custom property with optional fallback.
type VarValue struct {
	Name     string
	Fallback Value
}

// UnparsedValue is emitted verbatim and never takes part in shorthand
// expansion or merging.
type UnparsedValue struct {
	Raw string
}

// ShadowValue is a single box-shadow or text-shadow layer. Nil members are
// absent from the source.
type ShadowValue struct {
	Inset   bool
	OffsetX Value
	OffsetY Value
	Blur    Value
	Spread  Value
	Color   Value
}

func (UnitValue) Kind() Kind       { return KindUnit }
func (KeywordValue) Kind() Kind    { return KindKeyword }
func (ColorValue) Kind() Kind      { return KindColor }
func (ImageValue) Kind() Kind      { return KindImage }
func (FontFamilyValue) Kind() Kind { return KindFontFamily }
func (FunctionValue) Kind() Kind   { return KindFunction }
func (LayersValue) Kind() Kind     { return KindLayers }
func (TupleValue) Kind() Kind      { return KindTuple }
func (VarValue) Kind() Kind        { return KindVar }
func (UnparsedValue) Kind() Kind   { return KindUnparsed }
func (ShadowValue) Kind() Kind     { return KindShadow }

func (UnitValue) value()       {}
func (KeywordValue) value()    {}
func (ColorValue) value()      {}
func (ImageValue) value()      {}
func (FontFamilyValue) value() {}
func (FunctionValue) value()   {}
func (LayersValue) value()     {}
func (TupleValue) value()      {}
func (VarValue) value()        {}
func (UnparsedValue) value()   {}
func (ShadowValue) value()     {}

// Px is a shortcut for a pixel length.
func Px(v float64) UnitValue {
	return UnitValue{Value: v, Unit: UnitPx}
}

// Number is a shortcut for a unitless number.
func Number(v float64) UnitValue {
	return UnitValue{Value: v, Unit: UnitNumber}
}

// Keyword is a shortcut for a keyword value.
func Keyword(s string) KeywordValue {
	return KeywordValue{Value: s}
}

// Named returns the sRGB color for a CSS named color.
func Named(name string) (ColorValue, bool) {
	c, ok := namedColors[name]
	if !ok {
		return ColorValue{}, false
	}
	alpha := 1.0
	if name == "transparent" {
		alpha = 0
	}
	return ColorValue{Space: SpaceSRGB, Channels: c, Alpha: alpha, Name: name}, true
}

// cssWideKeywords apply to every property.
var cssWideKeywords = map[string]bool{
	"inherit":      true,
	"initial":      true,
	"unset":        true,
	"revert":       true,
	"revert-layer": true,
}

// IsCSSWideKeyword reports whether v is one of inherit, initial, unset,
// revert or revert-layer.
func IsCSSWideKeyword(v Value) bool {
	kw, ok := v.(KeywordValue)
	return ok && cssWideKeywords[kw.Value]
}
