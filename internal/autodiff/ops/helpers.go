package ops

import (
	"fmt"

	"github.com/JinkiJung/CNTK/internal/tensor"
)

// reduceToShape reduces a gradient to the shape of the operand it belongs
// to. When the forward pass broadcast the operand, the gradient of each
// replicated element has to be summed back onto its source.
func reduceToShape(grad *tensor.RawTensor, shape tensor.Shape, _ tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(shape) {
		return grad
	}

	result := tensor.MustNewRaw(shape, grad.DType(), grad.Device())
	srcStrides := broadcastStrides(shape, grad.Shape())
	gradStrides := grad.Shape().ComputeStrides()
	n := grad.NumElements()

	for i := 0; i < n; i++ {
		dst := 0
		rem := i
		for d := 0; d < len(gradStrides); d++ {
			coord := rem / gradStrides[d]
			rem %= gradStrides[d]
			dst += coord * srcStrides[d]
		}
		result.SetFloat64Value(dst, result.Float64Value(dst)+grad.Float64Value(i))
	}
	return result
}

// broadcastStrides returns strides for addressing a tensor of shape `in`
// under the broadcast shape `out` (stride 0 on expanded dimensions).
func broadcastStrides(in, out tensor.Shape) []int {
	inStrides := in.ComputeStrides()
	strides := make([]int, len(out))
	offset := len(out) - len(in)
	for i := range out {
		j := i - offset
		if j < 0 || in[j] == 1 {
			strides[i] = 0
		} else {
			strides[i] = inStrides[j]
		}
	}
	return strides
}

// broadcastReader returns an accessor reading tensor x as if it had the
// broadcast shape `out`.
func broadcastReader(x *tensor.RawTensor, out tensor.Shape) func(flat int) float64 {
	if x.Shape().Equal(out) {
		return x.Float64Value
	}
	xs := broadcastStrides(x.Shape(), out)
	outStrides := out.ComputeStrides()
	return func(flat int) float64 {
		src := 0
		rem := flat
		for d := 0; d < len(outStrides); d++ {
			coord := rem / outStrides[d]
			rem %= outStrides[d]
			src += coord * xs[d]
		}
		return x.Float64Value(src)
	}
}

// scalarUpstream extracts the single upstream gradient value of a
// scalar-valued operation.
func scalarUpstream(outputGrad *tensor.RawTensor) float64 {
	if outputGrad.NumElements() != 1 {
		panic(fmt.Sprintf("expected scalar upstream gradient, got shape %v", outputGrad.Shape()))
	}
	return outputGrad.Float64Value(0)
}

// zerosLike allocates a zero gradient shaped like x.
func zerosLike(x *tensor.RawTensor) *tensor.RawTensor {
	return tensor.MustNewRaw(x.Shape(), x.DType(), x.Device())
}

// mustAxis normalizes an axis against a shape, panicking on range errors.
func mustAxis(name string, shape tensor.Shape, axis int) int {
	a, err := shape.NormalizeAxis(axis)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	return a
}

// lanes mirrors the backend's axis iteration: a tensor splits into
// outer*inner lanes of length size along the axis.
type lanes struct {
	outer, size, inner int
}

func lanesOf(shape tensor.Shape, axis int) lanes {
	l := lanes{outer: 1, size: shape[axis], inner: 1}
	for d := 0; d < axis; d++ {
		l.outer *= shape[d]
	}
	for d := axis + 1; d < len(shape); d++ {
		l.inner *= shape[d]
	}
	return l
}

func (l lanes) index(o, j, i int) int {
	return (o*l.size+j)*l.inner + i
}
