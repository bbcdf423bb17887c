package css

import (
	"strings"
	"unicode"
)

// IsCustomProperty reports whether name is a custom property (--name).
func IsCustomProperty(name string) bool {
	return strings.HasPrefix(name, "--")
}

var vendorPrefixes = []string{"webkit", "moz", "ms", "o"}

// Hyphenate converts a camelCase property identifier into its CSS form:
// borderTopWidth becomes border-top-width and WebkitUserSelect or
// msTransform get a leading dash. Names already in CSS form and custom
// properties are returned unchanged.
func Hyphenate(name string) string {
	if IsCustomProperty(name) {
		return name
	}
	if strings.ContainsRune(name, '-') {
		return strings.ToLower(name)
	}
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	for _, p := range vendorPrefixes {
		if strings.HasPrefix(out, p+"-") {
			return "-" + out
		}
	}
	return out
}

// Registry is the set of property names the engine knows. Properties
// outside it still compile but their values are passed through unparsed.
type Registry struct {
	known map[string]bool
}

// NewRegistry creates a registry with the default property list plus extra.
func NewRegistry(extra ...string) *Registry {
	r := &Registry{known: make(map[string]bool, len(defaultProperties)+len(extra))}
	for _, p := range defaultProperties {
		r.known[p] = true
	}
	for _, p := range extra {
		r.known[Hyphenate(p)] = true
	}
	return r
}

// Known reports whether property is registered. Custom properties and
// vendor prefixed names are always accepted.
func (r *Registry) Known(property string) bool {
	if IsCustomProperty(property) {
		return true
	}
	if strings.HasPrefix(property, "-") {
		for _, p := range vendorPrefixes {
			if rest, ok := strings.CutPrefix(property, "-"+p+"-"); ok {
				return rest != ""
			}
		}
	}
	return r.known[property]
}

var defaultProperties = []string{
	"accent-color", "align-content", "align-items", "align-self", "animation",
	"animation-delay", "animation-direction", "animation-duration", "animation-fill-mode",
	"animation-iteration-count", "animation-name", "animation-play-state",
	"animation-timing-function", "appearance", "aspect-ratio", "backdrop-filter",
	"backface-visibility", "background", "background-attachment", "background-blend-mode",
	"background-clip", "background-color", "background-image", "background-origin",
	"background-position", "background-position-x", "background-position-y",
	"background-repeat", "background-size", "block-size", "border", "border-bottom",
	"border-bottom-color", "border-bottom-left-radius", "border-bottom-right-radius",
	"border-bottom-style", "border-bottom-width", "border-collapse", "border-color",
	"border-left", "border-left-color", "border-left-style", "border-left-width",
	"border-radius", "border-right", "border-right-color", "border-right-style",
	"border-right-width", "border-spacing", "border-style", "border-top",
	"border-top-color", "border-top-left-radius", "border-top-right-radius",
	"border-top-style", "border-top-width", "border-width", "bottom", "box-shadow",
	"box-sizing", "caret-color", "clear", "clip-path", "color", "column-count",
	"column-gap", "column-rule", "column-rule-color", "column-rule-style",
	"column-rule-width", "columns", "content", "cursor", "direction", "display",
	"fill", "filter", "flex", "flex-basis", "flex-direction", "flex-flow", "flex-grow",
	"flex-shrink", "flex-wrap", "float", "font", "font-display", "font-family",
	"font-feature-settings", "font-size", "font-stretch", "font-style", "font-variant",
	"font-weight", "gap", "grid", "grid-area", "grid-auto-columns", "grid-auto-flow",
	"grid-auto-rows", "grid-column", "grid-column-end", "grid-column-start", "grid-row",
	"grid-row-end", "grid-row-start", "grid-template", "grid-template-areas",
	"grid-template-columns", "grid-template-rows", "height", "hyphens", "inline-size",
	"inset", "isolation", "justify-content", "justify-items", "justify-self", "left",
	"letter-spacing", "line-height", "list-style", "list-style-image",
	"list-style-position", "list-style-type", "margin", "margin-bottom", "margin-left",
	"margin-right", "margin-top", "mask-image", "max-height", "max-width", "min-height",
	"min-width", "mix-blend-mode", "object-fit", "object-position", "opacity", "order",
	"outline", "outline-color", "outline-offset", "outline-style", "outline-width",
	"overflow", "overflow-wrap", "overflow-x", "overflow-y", "padding", "padding-bottom",
	"padding-left", "padding-right", "padding-top", "perspective", "place-content",
	"place-items", "pointer-events", "position", "resize", "right", "rotate", "row-gap",
	"scale", "scroll-behavior", "src", "stroke", "tab-size", "table-layout", "text-align",
	"text-decoration", "text-decoration-color", "text-decoration-line",
	"text-decoration-style", "text-decoration-thickness", "text-indent", "text-overflow",
	"text-shadow", "text-size-adjust", "text-transform", "top", "transform",
	"transform-origin", "transition", "transition-delay", "transition-duration",
	"transition-property", "transition-timing-function", "translate", "unicode-range",
	"user-select", "vertical-align", "visibility", "white-space", "width", "will-change",
	"word-break", "word-spacing", "writing-mode", "z-index",
}
