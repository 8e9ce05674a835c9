package domain

import (
	"math"
	"strconv"
)

// RGB is a color with 8-bit channels.
type RGB struct {
	R, G, B int
}

// White is returned for evaluations without a grade.
var White = RGB{255, 255, 255}

// gradeColors maps integer grades to their display color, from green
// (best) to red (worst).
var gradeColors = map[int]RGB{
	1: {136, 191, 74},
	2: {187, 209, 84},
	3: {239, 226, 88},
	4: {242, 158, 88},
	5: {235, 89, 90},
}

// GradeColorPalette returns the color of an integer grade 1..5.
func GradeColorPalette(grade int) (RGB, bool) {
	c, ok := gradeColors[grade]
	return c, ok
}

// ColorMix interpolates linearly from c1 (fraction 0) to c2 (fraction 1).
// Channels are rounded half to even.
func ColorMix(c1, c2 RGB, fraction float64) RGB {
	mix := func(a, b int) int {
		return int(math.RoundToEven(float64(a)*(1-fraction) + float64(b)*fraction))
	}
	return RGB{mix(c1.R, c2.R), mix(c1.G, c2.G), mix(c1.B, c2.B)}
}

// GradeColor returns the color of a possibly fractional grade. A nil or
// zero grade yields White. The grade is rounded to one decimal and the
// color interpolated between the two enclosing integer grades; grades
// outside 1..5 are clamped.
func GradeColor(grade *float64) RGB {
	if grade == nil || *grade == 0 {
		return White
	}
	g := roundOneDecimal(*grade)
	g = math.Max(1, math.Min(NumGrades, g))

	lower := int(math.Floor(g))
	higher := int(math.Ceil(g))
	return ColorMix(gradeColors[lower], gradeColors[higher], g-float64(lower))
}

// roundOneDecimal rounds the exact binary value of g to one decimal, ties
// to even. Scaling by ten first rounds away the excess of 1.05 over the
// tie and would yield 1.0.
func roundOneDecimal(g float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(g, 'f', 1, 64), 64)
	if err != nil {
		return g
	}
	return r
}
