package ops

import "github.com/JinkiJung/CNTK/internal/tensor"

// SumOp records output = Σ x (full reduction to a single element).
//
// Backward: every element of x contributed with weight 1, so the scalar
// upstream gradient is broadcast back over x's shape.
type SumOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewSumOp creates a new SumOp.
func NewSumOp(input, output *tensor.RawTensor) *SumOp {
	return &SumOp{input: input, output: output}
}

// Backward broadcasts the scalar gradient over the operand's shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	g := scalarUpstream(outputGrad)
	grad := zerosLike(op.input)
	for i := 0; i < grad.NumElements(); i++ {
		grad.SetFloat64Value(i, g)
	}
	return []*tensor.RawTensor{grad}
}

// Inputs returns [x].
func (op *SumOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the single-element sum.
func (op *SumOp) Output() *tensor.RawTensor { return op.output }

// SumAxisOp records output = Σ x along an axis.
type SumAxisOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	axis   int
	scale  float64 // 1 for sum, 1/size for mean
}

// NewSumAxisOp creates a new SumAxisOp. The axis must be normalized.
func NewSumAxisOp(input, output *tensor.RawTensor, axis int) *SumAxisOp {
	return &SumAxisOp{input: input, output: output, axis: axis, scale: 1}
}

// NewMeanAxisOp creates the mean-along-axis variant, which only differs
// from the sum in the 1/size weighting of the backward pass.
func NewMeanAxisOp(input, output *tensor.RawTensor, axis int) *SumAxisOp {
	return &SumAxisOp{
		input:  input,
		output: output,
		axis:   axis,
		scale:  1.0 / float64(input.Shape()[axis]),
	}
}

// Backward replicates each lane's upstream gradient across the reduced
// axis, applying the sum/mean weighting.
func (op *SumAxisOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := zerosLike(op.input)
	l := lanesOf(op.input.Shape(), op.axis)

	for o := 0; o < l.outer; o++ {
		for i := 0; i < l.inner; i++ {
			g := outputGrad.Float64Value(o*l.inner+i) * op.scale
			for j := 0; j < l.size; j++ {
				grad.SetFloat64Value(l.index(o, j, i), g)
			}
		}
	}
	return []*tensor.RawTensor{grad}
}

// Inputs returns [x].
func (op *SumAxisOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the reduced tensor.
func (op *SumAxisOp) Output() *tensor.RawTensor { return op.output }
