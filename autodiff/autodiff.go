// Copyright 2026 CNTK Go Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides automatic differentiation.
//
// Reverse-mode differentiation is implemented with a gradient tape that
// wraps any compute backend:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
//
//	backend.Tape().StartRecording()
//	loss := criterion.Forward(output, target)
//	grads, err := autodiff.Backward(loss)
package autodiff

import (
	"github.com/JinkiJung/CNTK/internal/autodiff"
	"github.com/JinkiJung/CNTK/internal/tensor"
)

// Backend is the autodiff-enabled backend decorator.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New creates an autodiff backend wrapping the given backend.
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardCapable is satisfied by backends that carry a gradient tape.
type BackwardCapable = autodiff.BackwardCapable

// ErrNoTape indicates a backward pass on a backend without a tape.
var ErrNoTape = autodiff.ErrNoTape

// Backward computes gradients of output with respect to every tensor on
// its backend's tape, seeded with ones.
func Backward[T tensor.DType, B tensor.Backend](output *tensor.Tensor[T, B]) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	return autodiff.Backward(output)
}

// GetTape returns the gradient tape of a tensor's backend, or nil.
func GetTape[T tensor.DType, B tensor.Backend](t *tensor.Tensor[T, B]) *GradientTape {
	return autodiff.GetTape(t)
}
