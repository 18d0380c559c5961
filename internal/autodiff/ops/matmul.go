package ops

import "github.com/JinkiJung/CNTK/internal/tensor"

// MatMulOp records output = A @ B for 2D operands.
//
// Backward:
//
//	dL/dA = grad @ Bᵀ
//	dL/dB = Aᵀ @ grad
type MatMulOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewMatMulOp creates a new MatMulOp.
func NewMatMulOp(a, b, output *tensor.RawTensor) *MatMulOp {
	return &MatMulOp{inputs: []*tensor.RawTensor{a, b}, output: output}
}

// Backward computes operand gradients for matrix multiplication.
func (op *MatMulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	gradA := backend.MatMul(outputGrad, backend.Transpose(b))
	gradB := backend.MatMul(backend.Transpose(a), outputGrad)
	return []*tensor.RawTensor{gradA, gradB}
}

// Inputs returns [A, B].
func (op *MatMulOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns A @ B.
func (op *MatMulOp) Output() *tensor.RawTensor { return op.output }
