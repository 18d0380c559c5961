// Copyright 2026 CNTK Go Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure-Go CPU compute backend.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
package cpu

import (
	"github.com/JinkiJung/CNTK/internal/backend/cpu"
	"github.com/JinkiJung/CNTK/internal/parallel"
)

// Backend is the CPU compute backend.
type Backend = cpu.CPUBackend

// Config controls worker parallelism for large tensors.
type Config = parallel.Config

// New creates a CPU backend with default parallelism.
func New() *Backend {
	return cpu.New()
}

// NewWithConfig creates a CPU backend with explicit parallelism
// settings.
func NewWithConfig(config Config) *Backend {
	return cpu.NewWithConfig(config)
}
