package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for lengths in style sheets.

// Unit represents the original unit of a length value as specified in DSL.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, read as pixels
	UnitPX               // pixels
	UnitPT               // points
	UnitMM               // millimeters, only used by the PDF proof
)

// Conversion constants at 96 DPI.
const (
	PtToPx = 96.0 / 72.0
	PxToPt = 1.0 / PtToPx
	PxToMm = 25.4 / 96.0
	MmToPx = 1.0 / PxToMm
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToPX converts the length to pixels. Unit-less values are pixels.
func (l Length) ToPX() float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * 96 / 72
	case UnitMM:
		return l.Value * 96 / 25.4
	default:
		return l.Value
	}
}

// To converts this length to target unit.
func (l Length) To(target Unit) float64 {
	px := l.ToPX()
	switch target {
	case UnitPT:
		return px * 72 / 96
	case UnitMM:
		return px * 25.4 / 96
	default:
		return px
	}
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + UnitToString(l.Unit)
}

// ParseRawLengthStr parses a DSL length string preserving its unit.
func ParseRawLengthStr(value string) (Length, error) {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" {
		return Length{}, fmt.Errorf("长度为空")
	}
	unit := UnitNone
	num := lower
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}} {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("长度 %s 无法解析", value)
	}
	if f < 0 {
		return Length{}, fmt.Errorf("长度 %s 不能为负数", value)
	}
	return Length{Value: f, Unit: unit}, nil
}

// ParsePixels parses a length and rounds it to whole pixels.
func ParsePixels(value string) (int, error) {
	l, err := ParseRawLengthStr(value)
	if err != nil {
		return 0, err
	}
	return int(l.ToPX() + 0.5), nil
}
