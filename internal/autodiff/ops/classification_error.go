package ops

import (
	"fmt"

	"github.com/JinkiJung/CNTK/internal/tensor"
)

// ClassificationErrorOp reports, per lane along the class axis, whether
// the target's argmax class is missing from the top-N scoring classes of
// the prediction, averaged over lanes.
//
// Forward:
//
//	err = mean_lanes( 1 if argmax(t) ∉ topN(o) else 0 )
//
// A result of 0 means every sample was predicted correctly, 1 means none
// was. The operator is an evaluation metric, not a training objective:
// the indicator is piecewise constant, so both gradients are zero.
type ClassificationErrorOp struct {
	output *tensor.RawTensor // class scores
	target *tensor.RawTensor // target distribution
	result *tensor.RawTensor
}

// NewClassificationErrorOp creates the op from the forward results.
func NewClassificationErrorOp(output, target, result *tensor.RawTensor) *ClassificationErrorOp {
	return &ClassificationErrorOp{output: output, target: target, result: result}
}

// ClassificationErrorForward computes the scalar mean top-N error.
func ClassificationErrorForward(output, target *tensor.RawTensor, topN, axis int, device tensor.Device) *tensor.RawTensor {
	if !output.Shape().Equal(target.Shape()) {
		panic(fmt.Sprintf("classificationerror: output shape %v != target shape %v", output.Shape(), target.Shape()))
	}
	a := mustAxis("classificationerror", output.Shape(), axis)
	size := output.Shape()[a]
	if topN < 1 || topN > size {
		panic(fmt.Sprintf("classificationerror: topN=%d out of range for %d classes", topN, size))
	}

	l := lanesOf(output.Shape(), a)
	mismatches := 0
	total := l.outer * l.inner

	for o := 0; o < l.outer; o++ {
		for i := 0; i < l.inner; i++ {
			if laneMismatch(output, target, l, o, i, topN) {
				mismatches++
			}
		}
	}

	result := tensor.MustNewRaw(tensor.Shape{1}, output.DType(), device)
	result.SetFloat64Value(0, float64(mismatches)/float64(total))
	return result
}

// laneMismatch checks one lane: the prediction counts as correct when the
// target's argmax class appears among the lane's topN highest scores,
// ties resolving to the earlier class index.
func laneMismatch(output, target *tensor.RawTensor, l lanes, o, i, topN int) bool {
	targetClass := 0
	best := target.Float64Value(l.index(o, 0, i))
	for j := 1; j < l.size; j++ {
		if v := target.Float64Value(l.index(o, j, i)); v > best {
			targetClass, best = j, v
		}
	}

	// Walk the prediction's classes in score order, knocking out the
	// current argmax until the target class appears or topN tries are
	// spent.
	scores := make([]float64, l.size)
	for j := 0; j < l.size; j++ {
		scores[j] = output.Float64Value(l.index(o, j, i))
	}
	for n := 0; n < topN; n++ {
		arg := 0
		for j := 1; j < l.size; j++ {
			if scores[j] > scores[arg] {
				arg = j
			}
		}
		if arg == targetClass {
			return false
		}
		scores[arg] = 0
	}
	return true
}

// Backward returns zero gradients: the error indicator is flat almost
// everywhere.
func (op *ClassificationErrorOp) Backward(_ *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{zerosLike(op.output), zerosLike(op.target)}
}

// Inputs returns [output, target].
func (op *ClassificationErrorOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.output, op.target}
}

// Output returns the scalar error rate.
func (op *ClassificationErrorOp) Output() *tensor.RawTensor { return op.result }
