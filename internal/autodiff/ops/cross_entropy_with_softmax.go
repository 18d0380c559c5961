package ops

import (
	"fmt"
	"math"

	"github.com/JinkiJung/CNTK/internal/tensor"
)

// CrossEntropyWithSoftmaxOp fuses softmax normalization of raw scores
// with the negative log-likelihood against a target distribution.
//
// Forward, per lane along the class axis:
//
//	loss = -Σ_j t_j · log softmax(o)_j
//	     = logsumexp(o) · Σ_j t_j - Σ_j t_j · o_j
//
// The result keeps the class axis with size 1, so a [batch, classes]
// input yields a [batch, 1] per-sample loss.
//
// Backward:
//
//	dL/do_j = g · (softmax(o)_j · Σ_i t_i - t_j)
//	dL/dt_j = -g · o_j
//
// The target gradient follows the engine's convention for the label
// input of this operator: the raw scores negated, without the constant
// logsumexp term.
type CrossEntropyWithSoftmaxOp struct {
	scores  *tensor.RawTensor // raw class scores
	target  *tensor.RawTensor // target distribution, same shape
	softmax *tensor.RawTensor // cached softmax(scores) from forward
	output  *tensor.RawTensor
	axis    int
}

// NewCrossEntropyWithSoftmaxOp creates the op from the forward results.
// The axis must be normalized and softmax already computed along it.
func NewCrossEntropyWithSoftmaxOp(scores, target, softmax, output *tensor.RawTensor, axis int) *CrossEntropyWithSoftmaxOp {
	return &CrossEntropyWithSoftmaxOp{
		scores:  scores,
		target:  target,
		softmax: softmax,
		output:  output,
		axis:    axis,
	}
}

// CrossEntropyWithSoftmaxForward computes the per-lane loss and returns
// it along with the softmax cache needed by the backward pass.
func CrossEntropyWithSoftmaxForward(scores, target *tensor.RawTensor, axis int, device tensor.Device) (loss, softmax *tensor.RawTensor) {
	if !scores.Shape().Equal(target.Shape()) {
		panic(fmt.Sprintf("crossentropywithsoftmax: scores shape %v != target shape %v", scores.Shape(), target.Shape()))
	}
	if !scores.DType().IsFloat() {
		panic(fmt.Sprintf("crossentropywithsoftmax: unsupported dtype %s", scores.DType()))
	}
	a := mustAxis("crossentropywithsoftmax", scores.Shape(), axis)

	outShape := scores.Shape().Clone()
	outShape[a] = 1
	loss = tensor.MustNewRaw(outShape, scores.DType(), device)
	softmax = tensor.MustNewRaw(scores.Shape(), scores.DType(), device)

	l := lanesOf(scores.Shape(), a)
	for o := 0; o < l.outer; o++ {
		for i := 0; i < l.inner; i++ {
			// Stable logsumexp via max subtraction.
			maxVal := scores.Float64Value(l.index(o, 0, i))
			for j := 1; j < l.size; j++ {
				if v := scores.Float64Value(l.index(o, j, i)); v > maxVal {
					maxVal = v
				}
			}
			var sumExp float64
			for j := 0; j < l.size; j++ {
				sumExp += math.Exp(scores.Float64Value(l.index(o, j, i)) - maxVal)
			}
			logSumExp := maxVal + math.Log(sumExp)

			var lossVal float64
			for j := 0; j < l.size; j++ {
				idx := l.index(o, j, i)
				s := scores.Float64Value(idx)
				softmax.SetFloat64Value(idx, math.Exp(s-logSumExp))
				lossVal += target.Float64Value(idx) * (logSumExp - s)
			}
			loss.SetFloat64Value(o*l.inner+i, lossVal)
		}
	}
	return loss, softmax
}

// Backward computes gradients for the scores and the target.
func (op *CrossEntropyWithSoftmaxOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	scoresGrad := zerosLike(op.scores)
	targetGrad := zerosLike(op.target)
	l := lanesOf(op.scores.Shape(), op.axis)

	for o := 0; o < l.outer; o++ {
		for i := 0; i < l.inner; i++ {
			g := outputGrad.Float64Value(o*l.inner + i)

			var targetSum float64
			for j := 0; j < l.size; j++ {
				targetSum += op.target.Float64Value(l.index(o, j, i))
			}

			for j := 0; j < l.size; j++ {
				idx := l.index(o, j, i)
				s := op.softmax.Float64Value(idx)
				t := op.target.Float64Value(idx)
				scoresGrad.SetFloat64Value(idx, g*(s*targetSum-t))
				targetGrad.SetFloat64Value(idx, -g*op.scores.Float64Value(idx))
			}
		}
	}
	return []*tensor.RawTensor{scoresGrad, targetGrad}
}

// Inputs returns [scores, target].
func (op *CrossEntropyWithSoftmaxOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.scores, op.target}
}

// Output returns the per-lane loss.
func (op *CrossEntropyWithSoftmaxOp) Output() *tensor.RawTensor { return op.output }
