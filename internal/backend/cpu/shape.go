package cpu

import (
	"fmt"

	"github.com/JinkiJung/CNTK/internal/tensor"
)

// Reshape returns a view of x under a new shape with the same element
// count. The buffer is shared, not copied.
func (c *CPUBackend) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	view, err := x.WithShape(shape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return view
}

// Transpose permutes the axes of x into a new tensor. With no axes given
// the order is reversed.
func (c *CPUBackend) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := x.Shape()
	rank := len(shape)

	if len(axes) == 0 {
		axes = make([]int, rank)
		for i := range axes {
			axes[i] = rank - 1 - i
		}
	}
	if len(axes) != rank {
		panic(fmt.Sprintf("transpose: got %d axes for rank-%d tensor", len(axes), rank))
	}
	seen := make([]bool, rank)
	outShape := make(tensor.Shape, rank)
	for i, a := range axes {
		if a < 0 || a >= rank || seen[a] {
			panic(fmt.Sprintf("transpose: invalid axis permutation %v", axes))
		}
		seen[a] = true
		outShape[i] = shape[a]
	}

	result := tensor.MustNewRaw(outShape, x.DType(), c.device)
	srcStrides := x.Strides()
	outStrides := outShape.ComputeStrides()
	n := x.NumElements()

	for i := 0; i < n; i++ {
		src := 0
		rem := i
		for d := 0; d < rank; d++ {
			coord := rem / outStrides[d]
			rem %= outStrides[d]
			src += coord * srcStrides[axes[d]]
		}
		switch x.DType() {
		case tensor.Float32:
			result.AsFloat32()[i] = x.AsFloat32()[src]
		case tensor.Float64:
			result.AsFloat64()[i] = x.AsFloat64()[src]
		case tensor.Int32:
			result.AsInt32()[i] = x.AsInt32()[src]
		}
	}
	return result
}
