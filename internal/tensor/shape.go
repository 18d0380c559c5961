package tensor

import "github.com/pkg/errors"

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements.
// A rank-0 shape describes a scalar and has one element.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that every dimension is positive.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return errors.Errorf("dimension %d is %d, must be positive", i, dim)
		}
	}
	return nil
}

// Equal reports whether two shapes have the same rank and dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	c := make(Shape, len(s))
	copy(c, s)
	return c
}

// ComputeStrides returns row-major strides for the shape.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}
	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// NormalizeAxis resolves a possibly-negative axis against the shape's rank.
// Axis -1 refers to the last dimension, as in the Python-side API of most
// frameworks. Returns an error if the axis is out of range.
func (s Shape) NormalizeAxis(axis int) (int, error) {
	rank := len(s)
	if axis < 0 {
		axis += rank
	}
	if axis < 0 || axis >= rank {
		return 0, errors.Errorf("axis out of range for rank-%d shape %v", rank, s)
	}
	return axis, nil
}

// BroadcastShapes applies NumPy-style broadcasting rules to two shapes.
//
// Dimensions are compared right to left; they are compatible when equal or
// when one of them is 1. Missing leading dimensions count as 1.
//
// Returns the broadcast shape, whether any expansion is actually needed,
// and an error for incompatible shapes.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	rank := len(a)
	if len(b) > rank {
		rank = len(b)
	}
	out := make(Shape, rank)
	expanded := false

	for i := 0; i < rank; i++ {
		da, db := 1, 1
		if idx := len(a) - 1 - i; idx >= 0 {
			da = a[idx]
		}
		if idx := len(b) - 1 - i; idx >= 0 {
			db = b[idx]
		}
		switch {
		case da == db:
			out[rank-1-i] = da
		case da == 1:
			out[rank-1-i] = db
			expanded = true
		case db == 1:
			out[rank-1-i] = da
			expanded = true
		default:
			return nil, false, errors.Errorf("cannot broadcast shapes %v and %v (dim %d vs %d)", a, b, da, db)
		}
	}
	if len(a) != len(b) {
		expanded = true
	}
	return out, expanded, nil
}
