// Copyright 2026 CNTK Go Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network modules and training criteria.
package nn

import (
	"math/rand"

	"github.com/JinkiJung/CNTK/internal/nn"
	"github.com/JinkiJung/CNTK/internal/tensor"
)

// Module is the common interface for all neural network modules.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter represents a trainable parameter.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Linear is a fully connected layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a linear layer with Xavier initialization.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, rng *rand.Rand, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, rng, backend)
}

// Criteria

// CrossEntropyWithSoftmaxLoss is the softmax cross entropy criterion.
type CrossEntropyWithSoftmaxLoss[B tensor.Evaluator] = nn.CrossEntropyWithSoftmaxLoss[B]

// NewCrossEntropyWithSoftmaxLoss creates the criterion for the given
// class axis.
func NewCrossEntropyWithSoftmaxLoss[B tensor.Evaluator](backend B, axis int) *CrossEntropyWithSoftmaxLoss[B] {
	return nn.NewCrossEntropyWithSoftmaxLoss(backend, axis)
}

// SquaredErrorLoss is the summed squared error criterion.
type SquaredErrorLoss[B tensor.Evaluator] = nn.SquaredErrorLoss[B]

// NewSquaredErrorLoss creates the criterion.
func NewSquaredErrorLoss[B tensor.Evaluator](backend B) *SquaredErrorLoss[B] {
	return nn.NewSquaredErrorLoss(backend)
}

// BinaryCrossEntropyLoss is the binary cross entropy criterion.
type BinaryCrossEntropyLoss[B tensor.Evaluator] = nn.BinaryCrossEntropyLoss[B]

// NewBinaryCrossEntropyLoss creates the criterion.
func NewBinaryCrossEntropyLoss[B tensor.Evaluator](backend B) *BinaryCrossEntropyLoss[B] {
	return nn.NewBinaryCrossEntropyLoss(backend)
}

// ClassificationErrorMetric is the top-N classification error metric.
type ClassificationErrorMetric[B tensor.Evaluator] = nn.ClassificationErrorMetric[B]

// NewClassificationErrorMetric creates the metric.
func NewClassificationErrorMetric[B tensor.Evaluator](backend B, topN, axis int) *ClassificationErrorMetric[B] {
	return nn.NewClassificationErrorMetric(backend, topN, axis)
}
