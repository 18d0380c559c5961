// Copyright 2026 CNTK Go Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensor operations.
//
// Tensors are generic over their element type and compute backend:
//
//	import (
//	    "github.com/JinkiJung/CNTK/backend/cpu"
//	    "github.com/JinkiJung/CNTK/tensor"
//	)
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	z := x.Add(y)
package tensor

import (
	"math/rand"

	"github.com/JinkiJung/CNTK/internal/tensor"
)

// Shape describes tensor dimensions.
type Shape = tensor.Shape

// DataType identifies a tensor element type at runtime.
type DataType = tensor.DataType

// Supported element types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Int32   = tensor.Int32
)

// Device identifies the compute device a tensor lives on.
type Device = tensor.Device

// Supported devices.
const (
	CPU = tensor.CPU
	GPU = tensor.GPU
)

// DType constrains the element types tensors can hold.
type DType = tensor.DType

// RawTensor is the untyped tensor representation shared by backends.
type RawTensor = tensor.RawTensor

// Tensor is a typed tensor bound to a backend.
type Tensor[T tensor.DType, B tensor.Backend] = tensor.Tensor[T, B]

// Backend is the interface all compute backends implement.
type Backend = tensor.Backend

// Evaluator extends Backend with training and validation criteria.
type Evaluator = tensor.Evaluator

// New wraps a RawTensor in a typed tensor.
func New[T tensor.DType, B tensor.Backend](raw *RawTensor, backend B) *Tensor[T, B] {
	return tensor.New[T, B](raw, backend)
}

// NewRaw allocates a raw tensor of the given shape and dtype.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromSlice creates a tensor from a flat slice in row-major order.
func FromSlice[T tensor.DType, B tensor.Backend](data []T, shape Shape, backend B) (*Tensor[T, B], error) {
	return tensor.FromSlice(data, shape, backend)
}

// Zeros creates a zero-filled tensor.
func Zeros[T tensor.DType, B tensor.Backend](shape Shape, backend B) *Tensor[T, B] {
	return tensor.Zeros[T](shape, backend)
}

// Ones creates a ones-filled tensor.
func Ones[T tensor.DType, B tensor.Backend](shape Shape, backend B) *Tensor[T, B] {
	return tensor.Ones[T](shape, backend)
}

// Full creates a tensor filled with the given value.
func Full[T tensor.DType, B tensor.Backend](shape Shape, value T, backend B) *Tensor[T, B] {
	return tensor.Full(shape, value, backend)
}

// OneHot creates a [len(classes), numClasses] tensor with a single one
// per row.
func OneHot[T tensor.DType, B tensor.Backend](classes []int, numClasses int, backend B) (*Tensor[T, B], error) {
	return tensor.OneHot[T](classes, numClasses, backend)
}

// Rand creates a tensor with uniform random values in [0, 1).
func Rand[T tensor.DType, B tensor.Backend](shape Shape, rng *rand.Rand, backend B) *Tensor[T, B] {
	return tensor.Rand[T](shape, rng, backend)
}

// Randn creates a tensor with standard normal random values.
func Randn[T tensor.DType, B tensor.Backend](shape Shape, rng *rand.Rand, backend B) *Tensor[T, B] {
	return tensor.Randn[T](shape, rng, backend)
}
