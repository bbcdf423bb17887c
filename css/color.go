package css

import (
	"strconv"
	"strings"
)

// ColorSpace tags the interpretation of ColorValue channels.
type ColorSpace int

const (
	// SpaceSRGB channels are red, green, blue in 0..255.
	SpaceSRGB ColorSpace = iota
	// SpaceHSL channels are hue in degrees, saturation and lightness in percent.
	SpaceHSL
	// SpaceHWB channels are hue in degrees, whiteness and blackness in percent.
	SpaceHWB
	// SpaceLab channels are lightness in percent, a and b axes.
	SpaceLab
	// SpaceLCH channels are lightness in percent, chroma and hue in degrees.
	SpaceLCH
	// SpaceOKLab channels are lightness in 0..1, a and b axes.
	SpaceOKLab
	// SpaceOKLCH channels are lightness in 0..1, chroma and hue in degrees.
	SpaceOKLCH
	// SpaceDisplayP3 channels are red, green, blue in 0..1.
	SpaceDisplayP3
)

var spaceNames = map[ColorSpace]string{
	SpaceSRGB:      "srgb",
	SpaceHSL:       "hsl",
	SpaceHWB:       "hwb",
	SpaceLab:       "lab",
	SpaceLCH:       "lch",
	SpaceOKLab:     "oklab",
	SpaceOKLCH:     "oklch",
	SpaceDisplayP3: "display-p3",
}

func (s ColorSpace) String() string {
	if n, ok := spaceNames[s]; ok {
		return n
	}
	return "unknown"
}

// legacy reports whether the space serializes with the comma separated
// rgb()/hsl() syntax.
func (s ColorSpace) legacy() bool {
	return s == SpaceSRGB || s == SpaceHSL
}

// namedColors is the sRGB table for CSS named colors accepted by the parser.
var namedColors = map[string][3]float64{
	"transparent":   {0, 0, 0},
	"black":         {0, 0, 0},
	"white":         {255, 255, 255},
	"red":           {255, 0, 0},
	"green":         {0, 128, 0},
	"blue":          {0, 0, 255},
	"yellow":        {255, 255, 0},
	"cyan":          {0, 255, 255},
	"aqua":          {0, 255, 255},
	"magenta":       {255, 0, 255},
	"fuchsia":       {255, 0, 255},
	"gray":          {128, 128, 128},
	"grey":          {128, 128, 128},
	"silver":        {192, 192, 192},
	"maroon":        {128, 0, 0},
	"olive":         {128, 128, 0},
	"lime":          {0, 255, 0},
	"teal":          {0, 128, 128},
	"navy":          {0, 0, 128},
	"purple":        {128, 0, 128},
	"orange":        {255, 165, 0},
	"pink":          {255, 192, 203},
	"brown":         {165, 42, 42},
	"gold":          {255, 215, 0},
	"indigo":        {75, 0, 130},
	"violet":        {238, 130, 238},
	"coral":         {255, 127, 80},
	"crimson":       {220, 20, 60},
	"salmon":        {250, 128, 114},
	"tomato":        {255, 99, 71},
	"khaki":         {240, 230, 140},
	"beige":         {245, 245, 220},
	"ivory":         {255, 255, 240},
	"lavender":      {230, 230, 250},
	"turquoise":     {64, 224, 208},
	"chocolate":     {210, 105, 30},
	"tan":           {210, 180, 140},
	"skyblue":       {135, 206, 235},
	"steelblue":     {70, 130, 180},
	"slategray":     {112, 128, 144},
	"darkgray":      {169, 169, 169},
	"lightgray":     {211, 211, 211},
	"whitesmoke":    {245, 245, 245},
	"gainsboro":     {220, 220, 220},
	"dodgerblue":    {30, 144, 255},
	"royalblue":     {65, 105, 225},
	"rebeccapurple": {102, 51, 153},
	"firebrick":     {178, 34, 34},
	"darkred":       {139, 0, 0},
	"darkgreen":     {0, 100, 0},
	"darkblue":      {0, 0, 139},
	"forestgreen":   {34, 139, 34},
	"seagreen":      {46, 139, 87},
	"orangered":     {255, 69, 0},
	"hotpink":       {255, 105, 180},
	"deeppink":      {255, 20, 147},
	"midnightblue":  {25, 25, 112},
}

// parseHexColor parses #rgb, #rgba, #rrggbb and #rrggbbaa.
func parseHexColor(hash string) (ColorValue, bool) {
	h := strings.TrimPrefix(hash, "#")
	switch len(h) {
	case 3, 4:
		var b strings.Builder
		for _, r := range h {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		h = b.String()
	case 6, 8:
	default:
		return ColorValue{}, false
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return ColorValue{}, false
	}
	c := ColorValue{Space: SpaceSRGB, Alpha: 1}
	if len(h) == 8 {
		c.Alpha = roundTo(float64(n&0xff)/255, 3)
		n >>= 8
	}
	c.Channels = [3]float64{float64(n >> 16 & 0xff), float64(n >> 8 & 0xff), float64(n & 0xff)}
	return c, true
}

// colorFunctions maps CSS color function names to their space.
var colorFunctions = map[string]ColorSpace{
	"rgb":   SpaceSRGB,
	"rgba":  SpaceSRGB,
	"hsl":   SpaceHSL,
	"hsla":  SpaceHSL,
	"hwb":   SpaceHWB,
	"lab":   SpaceLab,
	"lch":   SpaceLCH,
	"oklab": SpaceOKLab,
	"oklch": SpaceOKLCH,
}

// colorFromArgs builds a color from three channel values and an optional
// alpha. It returns false when a component has a type the space does not
// accept, leaving the caller to keep the generic function form.
func colorFromArgs(space ColorSpace, comps []UnitValue, alpha *UnitValue) (ColorValue, bool) {
	if len(comps) != 3 {
		return ColorValue{}, false
	}
	c := ColorValue{Space: space, Alpha: 1}
	for i, v := range comps {
		ch, ok := channel(space, i, v)
		if !ok {
			return ColorValue{}, false
		}
		c.Channels[i] = ch
	}
	if alpha != nil {
		switch alpha.Unit {
		case UnitNumber:
			c.Alpha = alpha.Value
		case UnitPercent:
			c.Alpha = alpha.Value / 100
		default:
			return ColorValue{}, false
		}
	}
	return c, true
}

func channel(space ColorSpace, i int, v UnitValue) (float64, bool) {
	switch space {
	case SpaceSRGB:
		switch v.Unit {
		case UnitNumber:
			return v.Value, true
		case UnitPercent:
			return v.Value * 255 / 100, true
		}
	case SpaceHSL, SpaceHWB:
		if i == 0 {
			return toDegrees(v)
		}
		if v.Unit == UnitPercent || v.Unit == UnitNumber {
			return v.Value, true
		}
	case SpaceLab, SpaceLCH:
		if i == 2 && space == SpaceLCH {
			return toDegrees(v)
		}
		if v.Unit == UnitPercent || v.Unit == UnitNumber {
			return v.Value, true
		}
	case SpaceOKLab, SpaceOKLCH:
		if i == 0 && v.Unit == UnitPercent {
			return v.Value / 100, true
		}
		if i == 2 && space == SpaceOKLCH {
			return toDegrees(v)
		}
		if v.Unit == UnitNumber {
			return v.Value, true
		}
	case SpaceDisplayP3:
		switch v.Unit {
		case UnitNumber:
			return v.Value, true
		case UnitPercent:
			return v.Value / 100, true
		}
	}
	return 0, false
}

func writeColor(b *strings.Builder, c ColorValue) {
	if c.Name != "" {
		b.WriteString(c.Name)
		return
	}
	ch := c.Channels
	opaque := c.Alpha >= 1
	if c.Space.legacy() {
		name := "rgb"
		if c.Space == SpaceHSL {
			name = "hsl"
		}
		if !opaque {
			name += "a"
		}
		b.WriteString(name)
		b.WriteByte('(')
		if c.Space == SpaceHSL {
			b.WriteString(formatNumber(ch[0]))
			b.WriteString(", ")
			b.WriteString(formatNumber(ch[1]))
			b.WriteString("%, ")
			b.WriteString(formatNumber(ch[2]))
			b.WriteByte('%')
		} else {
			b.WriteString(formatNumber(ch[0]))
			b.WriteString(", ")
			b.WriteString(formatNumber(ch[1]))
			b.WriteString(", ")
			b.WriteString(formatNumber(ch[2]))
		}
		if !opaque {
			b.WriteString(", ")
			b.WriteString(formatNumber(c.Alpha))
		}
		b.WriteByte(')')
		return
	}

	switch c.Space {
	case SpaceDisplayP3:
		b.WriteString("color(display-p3 ")
	default:
		b.WriteString(c.Space.String())
		b.WriteByte('(')
	}
	pct := c.Space == SpaceHWB
	for i := range ch {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(formatNumber(ch[i]))
		switch {
		case pct && i > 0:
			b.WriteByte('%')
		case (c.Space == SpaceLab || c.Space == SpaceLCH) && i == 0:
			b.WriteByte('%')
		}
	}
	if !opaque {
		b.WriteString(" / ")
		b.WriteString(formatNumber(c.Alpha))
	}
	b.WriteByte(')')
}
