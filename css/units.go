package css

import (
	"fmt"
	"math"
)

// Unit is a CSS unit identifier as written after a number.
type Unit string

const (
	UnitNumber  Unit = ""
	UnitPercent Unit = "%"

	UnitPx   Unit = "px"
	UnitEm   Unit = "em"
	UnitRem  Unit = "rem"
	UnitEx   Unit = "ex"
	UnitCh   Unit = "ch"
	UnitVw   Unit = "vw"
	UnitVh   Unit = "vh"
	UnitVmin Unit = "vmin"
	UnitVmax Unit = "vmax"
	UnitSvh  Unit = "svh"
	UnitLvh  Unit = "lvh"
	UnitDvh  Unit = "dvh"
	UnitCm   Unit = "cm"
	UnitMm   Unit = "mm"
	UnitQ    Unit = "q"
	UnitIn   Unit = "in"
	UnitPt   Unit = "pt"
	UnitPc   Unit = "pc"

	UnitDeg  Unit = "deg"
	UnitRad  Unit = "rad"
	UnitGrad Unit = "grad"
	UnitTurn Unit = "turn"

	UnitS  Unit = "s"
	UnitMs Unit = "ms"

	UnitFr   Unit = "fr"
	UnitX    Unit = "x"
	UnitDpi  Unit = "dpi"
	UnitDppx Unit = "dppx"
)

type unitClass int

const (
	classNumber unitClass = iota
	classPercent
	classLength
	classAngle
	classTime
	classFlex
	classResolution
)

var units = map[Unit]unitClass{
	UnitNumber: classNumber, UnitPercent: classPercent,
	UnitPx: classLength, UnitEm: classLength, UnitRem: classLength, UnitEx: classLength,
	UnitCh: classLength, UnitVw: classLength, UnitVh: classLength, UnitVmin: classLength,
	UnitVmax: classLength, UnitSvh: classLength, UnitLvh: classLength, UnitDvh: classLength,
	UnitCm: classLength, UnitMm: classLength, UnitQ: classLength, UnitIn: classLength,
	UnitPt: classLength, UnitPc: classLength,
	UnitDeg: classAngle, UnitRad: classAngle, UnitGrad: classAngle, UnitTurn: classAngle,
	UnitS: classTime, UnitMs: classTime,
	UnitFr:  classFlex,
	UnitX:   classResolution, UnitDpi: classResolution, UnitDppx: classResolution,
}

// Known reports whether u is a recognized unit.
func (u Unit) Known() bool {
	_, ok := units[u]
	return ok
}

func (u Unit) IsLength() bool  { return units[u] == classLength }
func (u Unit) IsAngle() bool   { return units[u] == classAngle }
func (u Unit) IsTime() bool    { return units[u] == classTime }
func (u Unit) IsPercent() bool { return u == UnitPercent }

// IsLength reports whether v is a length, treating a bare zero as a length
// the way CSS grammar does.
func (v UnitValue) IsLength() bool {
	return v.Unit.IsLength() || (v.Unit == UnitNumber && v.Value == 0)
}

// ToPx converts an absolute or font-relative length to pixels, assuming the
// default 16px root font size for em and rem.
func ToPx(v UnitValue) (float64, error) {
	switch v.Unit {
	case UnitPx:
		return v.Value, nil
	case UnitEm, UnitRem:
		return v.Value * 16, nil
	case UnitPt:
		return v.Value * 96 / 72, nil
	case UnitPc:
		return v.Value * 16, nil
	case UnitIn:
		return v.Value * 96, nil
	case UnitCm:
		return v.Value * 96 / 2.54, nil
	case UnitMm:
		return v.Value * 96 / 25.4, nil
	case UnitQ:
		return v.Value * 96 / 101.6, nil
	case UnitNumber:
		if v.Value == 0 {
			return 0, nil
		}
	}
	return 0, fmt.Errorf("unit %q cannot be converted to px", v.Unit)
}

// toDegrees normalizes an angle (or bare number) to degrees.
func toDegrees(v UnitValue) (float64, bool) {
	switch v.Unit {
	case UnitNumber, UnitDeg:
		return v.Value, true
	case UnitTurn:
		return v.Value * 360, true
	case UnitRad:
		return v.Value * 180 / math.Pi, true
	case UnitGrad:
		return v.Value * 0.9, true
	}
	return 0, false
}
