package shorthand_test

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"stylec/css"
)

// Merging any four sides and expanding the result gives the sides back.
func TestMergeExpand_Box_Property(t *testing.T) {
	e, _ := newExpander(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("expand(merge(sides)) == sides", prop.ForAll(
		func(top, right, bottom, left int) bool {
			sides := []css.Value{css.Px(float64(top)), css.Px(float64(right)), css.Px(float64(bottom)), css.Px(float64(left))}
			decls := []css.Declaration{
				{Property: "padding-top", Value: sides[0]},
				{Property: "padding-right", Value: sides[1]},
				{Property: "padding-bottom", Value: sides[2]},
				{Property: "padding-left", Value: sides[3]},
			}
			merged := e.Merge(decls)
			if len(merged) != 1 || merged[0].Property != "padding" {
				return false
			}
			back, err := e.Expand("padding", merged[0].Value)
			if err != nil || len(back) != 4 {
				return false
			}
			for i := range back {
				if !css.Equal(back[i].Value, sides[i]) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 3),
		gen.IntRange(0, 3),
		gen.IntRange(0, 3),
		gen.IntRange(0, 3),
	))

	properties.TestingRun(t)
}

// Every fully specified border survives expansion to leaf longhands and
// merging back, byte for byte.
func TestRoundTrip_Border_Property(t *testing.T) {
	e, p := newExpander(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("merge(expand(border)) == border", prop.ForAll(
		func(width int, style string, color string) bool {
			in := fmt.Sprintf("%dpx %s %s", width, style, color)
			v, err := p.ParseProperty("border", in)
			if err != nil {
				return false
			}
			decls, err := e.ExpandAll("border", v)
			if err != nil {
				return false
			}
			merged := e.Merge(decls)
			return len(merged) == 1 && merged[0].Property == "border" && css.Serialize(merged[0].Value) == in
		},
		gen.IntRange(1, 50),
		gen.OneConstOf("solid", "dashed", "dotted", "double", "groove"),
		gen.OneConstOf("red", "blue", "black", "rgb(1, 2, 3)", "rgba(0, 0, 0, 0.5)"),
	))

	properties.TestingRun(t)
}

// Components of a border in any order, with or without explicit initial
// values, come back as written when merged with their form.
func TestRoundTrip_WrittenOrder_Property(t *testing.T) {
	e, p := newExpander(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	orders := [][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	properties.Property("merge(expand(border), form) == border", prop.ForAll(
		func(order int, width, style, color string) bool {
			parts := [3]string{width, style, color}
			in := fmt.Sprintf("%s %s %s", parts[orders[order][0]], parts[orders[order][1]], parts[orders[order][2]])
			v, err := p.ParseProperty("border", in)
			if err != nil {
				return false
			}
			decls, err := e.ExpandAll("border", v)
			if err != nil {
				return false
			}
			form, ok := e.Form("border", v)
			if !ok {
				return false
			}
			merged := e.Merge(decls, form)
			return len(merged) == 1 && merged[0].Property == "border" && css.Serialize(merged[0].Value) == in
		},
		gen.IntRange(0, len(orders)-1),
		gen.OneConstOf("1px", "medium", "thin", "3em"),
		gen.OneConstOf("solid", "none", "dashed"),
		gen.OneConstOf("red", "currentcolor", "rgb(1, 2, 3)"),
	))

	properties.TestingRun(t)
}
