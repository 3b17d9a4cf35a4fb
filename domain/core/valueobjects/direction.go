package valueobjects

import (
	"fmt"

	pkgerrors "simkernel/pkg/errors"
)

// Direction is one of the eight fixed compass keys used by the
// allocation record.
type Direction string

const (
	DirectionN  Direction = "N"
	DirectionNE Direction = "NE"
	DirectionE  Direction = "E"
	DirectionSE Direction = "SE"
	DirectionS  Direction = "S"
	DirectionSW Direction = "SW"
	DirectionW  Direction = "W"
	DirectionNW Direction = "NW"
)

// Directions returns all compass keys in their canonical order.
// The order is stable and used for deterministic iteration and hashing.
func Directions() []Direction {
	return []Direction{
		DirectionN, DirectionNE, DirectionE, DirectionSE,
		DirectionS, DirectionSW, DirectionW, DirectionNW,
	}
}

// ParseDirection maps an untrusted string onto a compass key
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionN, DirectionNE, DirectionE, DirectionSE,
		DirectionS, DirectionSW, DirectionW, DirectionNW:
		return Direction(s), nil
	}
	return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown direction %q", s)).
		WithCode(pkgerrors.CodeInvalidEnum)
}

// Allocations is the weight distribution over the eight directions
type Allocations map[Direction]float64

// NewAllocations returns an allocation record with every weight zero
func NewAllocations() Allocations {
	a := make(Allocations, 8)
	for _, d := range Directions() {
		a[d] = 0
	}
	return a
}

// NewUniformAllocations returns an allocation record with equal weight
// on every direction, summing to 1.0
func NewUniformAllocations() Allocations {
	a := make(Allocations, 8)
	for _, d := range Directions() {
		a[d] = 1.0 / 8.0
	}
	return a
}

// Copy returns an independent copy of the allocation record
func (a Allocations) Copy() Allocations {
	out := make(Allocations, 8)
	for _, d := range Directions() {
		out[d] = a[d]
	}
	return out
}

// Merge overlays the supplied weights onto a copy of the record.
// Only directions present in patch are replaced.
func (a Allocations) Merge(patch Allocations) Allocations {
	out := a.Copy()
	for d, w := range patch {
		out[d] = w
	}
	return out
}

// Sum returns the total weight across all directions
func (a Allocations) Sum() float64 {
	var sum float64
	for _, d := range Directions() {
		sum += a[d]
	}
	return sum
}

// Normalized returns a copy rescaled to sum to 1.0. An all-zero record
// normalizes to the uniform distribution.
func (a Allocations) Normalized() Allocations {
	sum := a.Sum()
	if sum == 0 {
		return NewUniformAllocations()
	}
	out := make(Allocations, 8)
	for _, d := range Directions() {
		out[d] = a[d] / sum
	}
	return out
}

// Validate rejects negative weights. Unknown keys are rejected earlier,
// at the parse boundary.
func (a Allocations) Validate() error {
	for _, d := range Directions() {
		if a[d] < 0 {
			return pkgerrors.NewValidationError(fmt.Sprintf("allocation weight for %s must be non-negative", d))
		}
	}
	return nil
}
