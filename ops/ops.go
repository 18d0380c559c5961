// Copyright 2026 CNTK Go Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ops provides a functional surface for the evaluation
// criteria.
//
// Every function takes tensors bound to an Evaluator backend (the
// autodiff decorator) so that gradients are recorded:
//
//	backend := autodiff.New(cpu.New())
//	loss := ops.CrossEntropyWithSoftmax(scores, labels, -1)
package ops

import (
	"github.com/JinkiJung/CNTK/internal/tensor"
)

// CrossEntropyWithSoftmax computes -sum(target * log softmax(scores))
// along the class axis. The class axis is kept with size 1, so scores
// of shape [batch, classes] give a loss of shape [batch, 1]. Negative
// axes count from the end.
func CrossEntropyWithSoftmax[T tensor.DType, B tensor.Evaluator](scores, target *tensor.Tensor[T, B], axis int) *tensor.Tensor[T, B] {
	backend := scores.Backend()
	raw := backend.CrossEntropyWithSoftmax(scores.Raw(), target.Raw(), axis)
	return tensor.New[T, B](raw, backend)
}

// SquaredError computes sum((output - target)^2) as a scalar of shape
// {1}. The sum runs over every element, it is not averaged.
func SquaredError[T tensor.DType, B tensor.Evaluator](output, target *tensor.Tensor[T, B]) *tensor.Tensor[T, B] {
	backend := output.Backend()
	raw := backend.SquaredError(output.Raw(), target.Raw())
	return tensor.New[T, B](raw, backend)
}

// ClassificationError computes the fraction of samples whose target
// class is not among the top-N predictions along the axis, as a scalar
// of shape {1}. Its gradients are zero.
func ClassificationError[T tensor.DType, B tensor.Evaluator](output, target *tensor.Tensor[T, B], topN, axis int) *tensor.Tensor[T, B] {
	backend := output.Backend()
	raw := backend.ClassificationError(output.Raw(), target.Raw(), topN, axis)
	return tensor.New[T, B](raw, backend)
}

// BinaryCrossEntropy computes -sum(t*log(x) + (1-t)*log(1-x)) as a
// scalar of shape {1}. Predictions must lie strictly inside (0, 1).
func BinaryCrossEntropy[T tensor.DType, B tensor.Evaluator](prediction, target *tensor.Tensor[T, B]) *tensor.Tensor[T, B] {
	backend := prediction.Backend()
	raw := backend.BinaryCrossEntropy(prediction.Raw(), target.Raw())
	return tensor.New[T, B](raw, backend)
}

// WeightedBinaryCrossEntropy is BinaryCrossEntropy with every element's
// contribution scaled by a weight broadcastable to the prediction
// shape.
func WeightedBinaryCrossEntropy[T tensor.DType, B tensor.Evaluator](prediction, target, weight *tensor.Tensor[T, B]) *tensor.Tensor[T, B] {
	backend := prediction.Backend()
	raw := backend.WeightedBinaryCrossEntropy(prediction.Raw(), target.Raw(), weight.Raw())
	return tensor.New[T, B](raw, backend)
}
