package domain

import (
	"fmt"
	"math"
)

// NumGrades is the number of buckets of a grade distribution (grades 1..5).
const NumGrades = 5

// Distribution is the probability mass over the grades 1..5; index 0 holds
// grade 1. Functions in this package use a nil *Distribution for an
// undefined distribution, e.g. when nobody answered.
type Distribution [NumGrades]float64

// Sum returns the total mass of the distribution.
func (d Distribution) Sum() float64 {
	var sum float64
	for _, v := range d {
		sum += v
	}
	return sum
}

// WeightedDistribution pairs a possibly undefined distribution with its
// weight in an average.
type WeightedDistribution struct {
	Distribution *Distribution
	Weight       float64
}

// Normalize divides values by their sum so the result adds up to one. It
// can also convert counts to a distribution. It returns nil if values is
// nil or sums to zero.
func Normalize(values []float64) []float64 {
	if values == nil {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	if sum == 0 {
		return nil
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v / sum
	}
	return out
}

// NormalizedDistribution normalizes up to NumGrades values into a
// Distribution. It returns nil for nil or all-zero input and an error for
// more than NumGrades values.
func NormalizedDistribution(values []float64) (*Distribution, error) {
	if len(values) > NumGrades {
		return nil, fmt.Errorf("%w: %d values do not fit %d grade buckets",
			ErrInconsistentData, len(values), NumGrades)
	}
	normalized := Normalize(values)
	if normalized == nil {
		return nil, nil
	}
	var d Distribution
	copy(d[:], normalized)
	return &d, nil
}

// CountsDistribution normalizes integer answer counts into a Distribution.
func CountsDistribution(counts []int) (*Distribution, error) {
	if counts == nil {
		return nil, nil
	}
	values := make([]float64, len(counts))
	for i, c := range counts {
		values[i] = float64(c)
	}
	return NormalizedDistribution(values)
}

// normalized is NormalizedDistribution for a value that always fits.
func (d Distribution) normalized() *Distribution {
	n, _ := NormalizedDistribution(d[:])
	return n
}

// UnipolarizedDistribution maps the counts of a rating result onto the
// integer grade buckets. A count whose grade has a fractional part is split
// linearly between the two adjacent buckets. It returns nil if the result
// has no counts or only zero counts.
func UnipolarizedDistribution(r *RatingResult) *Distribution {
	if r == nil || len(r.Counts) == 0 {
		return nil
	}

	var summed Distribution
	grades := r.Choices().Grades
	for i, count := range r.Counts {
		whole, fraction := math.Modf(grades[i])
		grade := int(whole)
		summed[grade-1] += (1 - fraction) * float64(count)
		if grade < NumGrades {
			summed[grade] += fraction * float64(count)
		}
	}
	return summed.normalized()
}

// AvgDistribution averages distributions by weight. Weighted vectors of all
// defined distributions are summed and the sum is normalized, which also
// absorbs the division by the total weight. Undefined distributions add
// nothing regardless of their weight. It returns nil if every distribution
// is undefined or the weighted sum is zero.
func AvgDistribution(weighted []WeightedDistribution) *Distribution {
	var summed Distribution
	defined := false
	for _, wd := range weighted {
		if wd.Distribution == nil {
			continue
		}
		defined = true
		for i, v := range wd.Distribution {
			summed[i] += wd.Weight * v
		}
	}
	if !defined {
		return nil
	}
	return summed.normalized()
}

// DistributionToGrade returns the expected grade of the distribution, or
// nil if the distribution is undefined.
func DistributionToGrade(d *Distribution) *float64 {
	if d == nil {
		return nil
	}
	var grade float64
	for i, mass := range d {
		grade += float64(i+1) * mass
	}
	return &grade
}
