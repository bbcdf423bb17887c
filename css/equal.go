package css

import "fmt"

// Equal reports whether a and b are structurally identical.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case UnitValue:
		return x == b.(UnitValue)
	case KeywordValue:
		return x == b.(KeywordValue)
	case ColorValue:
		return x == b.(ColorValue)
	case ImageValue:
		return x == b.(ImageValue)
	case UnparsedValue:
		return x == b.(UnparsedValue)
	case FontFamilyValue:
		y := b.(FontFamilyValue)
		if len(x.Names) != len(y.Names) {
			return false
		}
		for i := range x.Names {
			if x.Names[i] != y.Names[i] {
				return false
			}
		}
		return true
	case FunctionValue:
		y := b.(FunctionValue)
		return x.Name == y.Name && equalList(x.Args, y.Args)
	case LayersValue:
		return equalList(x.Items, b.(LayersValue).Items)
	case TupleValue:
		return equalList(x.Items, b.(TupleValue).Items)
	case VarValue:
		y := b.(VarValue)
		return x.Name == y.Name && Equal(x.Fallback, y.Fallback)
	case ShadowValue:
		y := b.(ShadowValue)
		return x.Inset == y.Inset &&
			Equal(x.OffsetX, y.OffsetX) && Equal(x.OffsetY, y.OffsetY) &&
			Equal(x.Blur, y.Blur) && Equal(x.Spread, y.Spread) &&
			Equal(x.Color, y.Color)
	}
	return false
}

func equalList(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// DefaultMaxDepth bounds value nesting when no explicit limit is configured.
const DefaultMaxDepth = 16

// Validate checks that v nests no deeper than maxDepth levels and that no
// image in it points to an unsafe URL. A top level value is at depth 1; every
// function argument, list item, var() fallback and shadow component adds one
// level.
func Validate(v Value, maxDepth int) error {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return validate(v, 1, maxDepth)
}

func validate(v Value, depth, limit int) error {
	if v == nil {
		return nil
	}
	if depth > limit {
		return fmt.Errorf("%w (limit %d)", ErrValueTooDeep, limit)
	}
	if img, ok := v.(ImageValue); ok && img.Asset == "" {
		if img.URL == "" {
			return fmt.Errorf("%w: empty image", ErrUnsafeURL)
		}
		return checkURL(img.URL)
	}
	for _, c := range children(v) {
		if err := validate(c, depth+1, limit); err != nil {
			return err
		}
	}
	return nil
}

func children(v Value) []Value {
	switch v := v.(type) {
	case FunctionValue:
		return v.Args
	case LayersValue:
		return v.Items
	case TupleValue:
		return v.Items
	case VarValue:
		if v.Fallback != nil {
			return []Value{v.Fallback}
		}
	case ShadowValue:
		return []Value{v.OffsetX, v.OffsetY, v.Blur, v.Spread, v.Color}
	}
	return nil
}

// IsEscape reports whether v, or anything nested in it, is a var() reference
// or an unparsed value. Such values never take part in shorthand handling.
func IsEscape(v Value) bool {
	switch v.(type) {
	case VarValue, UnparsedValue:
		return true
	}
	for _, c := range children(v) {
		if c != nil && IsEscape(c) {
			return true
		}
	}
	return false
}
