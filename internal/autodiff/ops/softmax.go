package ops

import "github.com/JinkiJung/CNTK/internal/tensor"

// SoftmaxOp records output = softmax(x) along an axis.
//
// Backward, per lane:
//
//	dL/dx_j = s_j * (dL/ds_j - Σ_i dL/ds_i * s_i)
//
// where s is the cached softmax output.
type SoftmaxOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	axis   int
}

// NewSoftmaxOp creates a new SoftmaxOp. The axis must be normalized.
func NewSoftmaxOp(input, output *tensor.RawTensor, axis int) *SoftmaxOp {
	return &SoftmaxOp{input: input, output: output, axis: axis}
}

// Backward computes the operand gradient from the cached softmax.
func (op *SoftmaxOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := zerosLike(op.input)
	l := lanesOf(op.input.Shape(), op.axis)

	for o := 0; o < l.outer; o++ {
		for i := 0; i < l.inner; i++ {
			var dot float64
			for j := 0; j < l.size; j++ {
				idx := l.index(o, j, i)
				dot += outputGrad.Float64Value(idx) * op.output.Float64Value(idx)
			}
			for j := 0; j < l.size; j++ {
				idx := l.index(o, j, i)
				s := op.output.Float64Value(idx)
				grad.SetFloat64Value(idx, s*(outputGrad.Float64Value(idx)-dot))
			}
		}
	}
	return []*tensor.RawTensor{grad}
}

// Inputs returns [x].
func (op *SoftmaxOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns softmax(x).
func (op *SoftmaxOp) Output() *tensor.RawTensor { return op.output }

// LogSoftmaxOp records output = log(softmax(x)) along an axis.
//
// Backward, per lane:
//
//	dL/dx_j = dL/dy_j - s_j * Σ_i dL/dy_i
//
// with s_j = exp(y_j) recovered from the cached log-softmax output.
type LogSoftmaxOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	axis   int
}

// NewLogSoftmaxOp creates a new LogSoftmaxOp. The axis must be normalized.
func NewLogSoftmaxOp(input, output *tensor.RawTensor, axis int) *LogSoftmaxOp {
	return &LogSoftmaxOp{input: input, output: output, axis: axis}
}

// Backward computes the operand gradient for log-softmax.
func (op *LogSoftmaxOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	softmax := backend.Exp(op.output)
	grad := zerosLike(op.input)
	l := lanesOf(op.input.Shape(), op.axis)

	for o := 0; o < l.outer; o++ {
		for i := 0; i < l.inner; i++ {
			var gradSum float64
			for j := 0; j < l.size; j++ {
				gradSum += outputGrad.Float64Value(l.index(o, j, i))
			}
			for j := 0; j < l.size; j++ {
				idx := l.index(o, j, i)
				grad.SetFloat64Value(idx, outputGrad.Float64Value(idx)-softmax.Float64Value(idx)*gradSum)
			}
		}
	}
	return []*tensor.RawTensor{grad}
}

// Inputs returns [x].
func (op *LogSoftmaxOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns log(softmax(x)).
func (op *LogSoftmaxOp) Output() *tensor.RawTensor { return op.output }
