package ops

import "github.com/JinkiJung/CNTK/internal/tensor"

// DivOp records output = a / b (element-wise).
//
// Backward: d(a/b)/da = 1/b, d(a/b)/db = -a/b².
type DivOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewDivOp creates a new DivOp.
func NewDivOp(a, b, output *tensor.RawTensor) *DivOp {
	return &DivOp{inputs: []*tensor.RawTensor{a, b}, output: output}
}

// Backward computes operand gradients for element-wise division.
func (op *DivOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]

	gradA := backend.Div(outputGrad, b)
	// -a/b² = -(a/b)/b = -output/b, reusing the forward result.
	gradB := backend.Mul(outputGrad, backend.Neg(backend.Div(op.output, b)))

	return []*tensor.RawTensor{
		reduceToShape(gradA, a.Shape(), backend),
		reduceToShape(gradB, b.Shape(), backend),
	}
}

// Inputs returns [a, b].
func (op *DivOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns a / b.
func (op *DivOp) Output() *tensor.RawTensor { return op.output }
