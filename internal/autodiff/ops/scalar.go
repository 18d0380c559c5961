package ops

import "github.com/JinkiJung/CNTK/internal/tensor"

// AddScalarOp records output = x + c. The gradient passes through
// unchanged.
type AddScalarOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewAddScalarOp creates a new AddScalarOp.
func NewAddScalarOp(input, output *tensor.RawTensor) *AddScalarOp {
	return &AddScalarOp{input: input, output: output}
}

// Backward passes the gradient through unchanged.
func (op *AddScalarOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{outputGrad}
}

// Inputs returns [x].
func (op *AddScalarOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns x + c.
func (op *AddScalarOp) Output() *tensor.RawTensor { return op.output }

// MulScalarOp records output = c * x.
//
// Backward: d(cx)/dx = c.
type MulScalarOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	scalar float64
}

// NewMulScalarOp creates a new MulScalarOp.
func NewMulScalarOp(input, output *tensor.RawTensor, scalar float64) *MulScalarOp {
	return &MulScalarOp{input: input, output: output, scalar: scalar}
}

// Backward scales the gradient by the recorded constant.
func (op *MulScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.MulScalar(outputGrad, op.scalar)}
}

// Inputs returns [x].
func (op *MulScalarOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns c * x.
func (op *MulScalarOp) Output() *tensor.RawTensor { return op.output }

// NegOp records output = -x.
type NegOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewNegOp creates a new NegOp.
func NewNegOp(input, output *tensor.RawTensor) *NegOp {
	return &NegOp{input: input, output: output}
}

// Backward negates the gradient.
func (op *NegOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Neg(outputGrad)}
}

// Inputs returns [x].
func (op *NegOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns -x.
func (op *NegOp) Output() *tensor.RawTensor { return op.output }
