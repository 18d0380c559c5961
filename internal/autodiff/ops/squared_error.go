package ops

import (
	"fmt"

	"github.com/JinkiJung/CNTK/internal/tensor"
)

// SquaredErrorOp computes the summed squared difference of two tensors.
//
// Forward:
//
//	loss = Σ (t - o)²
//
// The sum runs over all elements; no averaging is applied.
//
// Backward:
//
//	dL/do = 2g(o - t)
//	dL/dt = -2g(o - t)
type SquaredErrorOp struct {
	output *tensor.RawTensor // predictions
	target *tensor.RawTensor
	result *tensor.RawTensor
}

// NewSquaredErrorOp creates the op from the forward results.
func NewSquaredErrorOp(output, target, result *tensor.RawTensor) *SquaredErrorOp {
	return &SquaredErrorOp{output: output, target: target, result: result}
}

// SquaredErrorForward computes the scalar summed squared error.
func SquaredErrorForward(output, target *tensor.RawTensor, device tensor.Device) *tensor.RawTensor {
	if !output.Shape().Equal(target.Shape()) {
		panic(fmt.Sprintf("squarederror: output shape %v != target shape %v", output.Shape(), target.Shape()))
	}
	if !output.DType().IsFloat() {
		panic(fmt.Sprintf("squarederror: unsupported dtype %s", output.DType()))
	}

	result := tensor.MustNewRaw(tensor.Shape{1}, output.DType(), device)
	var sum float64
	for i := 0; i < output.NumElements(); i++ {
		d := target.Float64Value(i) - output.Float64Value(i)
		sum += d * d
	}
	result.SetFloat64Value(0, sum)
	return result
}

// Backward computes gradients for both operands.
func (op *SquaredErrorOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	g := scalarUpstream(outputGrad)
	outGrad := zerosLike(op.output)
	tgtGrad := zerosLike(op.target)

	for i := 0; i < op.output.NumElements(); i++ {
		d := 2 * g * (op.output.Float64Value(i) - op.target.Float64Value(i))
		outGrad.SetFloat64Value(i, d)
		tgtGrad.SetFloat64Value(i, -d)
	}
	return []*tensor.RawTensor{outGrad, tgtGrad}
}

// Inputs returns [output, target].
func (op *SquaredErrorOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.output, op.target}
}

// Output returns the scalar loss.
func (op *SquaredErrorOp) Output() *tensor.RawTensor { return op.result }
