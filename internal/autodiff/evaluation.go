package autodiff

import (
	"github.com/JinkiJung/CNTK/internal/autodiff/ops"
	"github.com/JinkiJung/CNTK/internal/tensor"
)

// CrossEntropyWithSoftmax computes the cross entropy between the softmax
// of scores and the target distribution along the given axis, and
// records the operation. The class axis is kept with size 1.
func (b *AutodiffBackend[B]) CrossEntropyWithSoftmax(scores, target *tensor.RawTensor, axis int) *tensor.RawTensor {
	a, err := scores.Shape().NormalizeAxis(axis)
	if err != nil {
		panic(err)
	}
	loss, softmax := ops.CrossEntropyWithSoftmaxForward(scores, target, a, b.Device())
	b.tape.Record(ops.NewCrossEntropyWithSoftmaxOp(scores, target, softmax, loss, a))
	return loss
}

// SquaredError computes the summed squared difference between output and
// target as a scalar, and records the operation.
func (b *AutodiffBackend[B]) SquaredError(output, target *tensor.RawTensor) *tensor.RawTensor {
	result := ops.SquaredErrorForward(output, target, b.Device())
	b.tape.Record(ops.NewSquaredErrorOp(output, target, result))
	return result
}

// ClassificationError computes the fraction of samples whose target
// class is not among the top-N predictions along the given axis. The
// operation is recorded but produces zero gradients.
func (b *AutodiffBackend[B]) ClassificationError(output, target *tensor.RawTensor, topN, axis int) *tensor.RawTensor {
	a, err := output.Shape().NormalizeAxis(axis)
	if err != nil {
		panic(err)
	}
	result := ops.ClassificationErrorForward(output, target, topN, a, b.Device())
	b.tape.Record(ops.NewClassificationErrorOp(output, target, result))
	return result
}

// BinaryCrossEntropy computes the summed binary cross entropy between a
// prediction in (0, 1) and a target, and records the operation.
func (b *AutodiffBackend[B]) BinaryCrossEntropy(prediction, target *tensor.RawTensor) *tensor.RawTensor {
	result := ops.BinaryCrossEntropyForward(prediction, target, b.Device())
	b.tape.Record(ops.NewBinaryCrossEntropyOp(prediction, target, result))
	return result
}

// WeightedBinaryCrossEntropy computes the binary cross entropy with a
// per-element weight broadcastable to the prediction shape, and records
// the operation.
func (b *AutodiffBackend[B]) WeightedBinaryCrossEntropy(prediction, target, weight *tensor.RawTensor) *tensor.RawTensor {
	result := ops.WeightedBinaryCrossEntropyForward(prediction, target, weight, b.Device())
	b.tape.Record(ops.NewWeightedBinaryCrossEntropyOp(prediction, target, weight, result))
	return result
}
