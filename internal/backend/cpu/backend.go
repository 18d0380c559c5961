// Package cpu implements the pure-Go CPU backend.
package cpu

import (
	"fmt"

	"github.com/JinkiJung/CNTK/internal/parallel"
	"github.com/JinkiJung/CNTK/internal/tensor"
)

// CPUBackend executes tensor operations on the host CPU.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with explicit parallelism
// settings.
func NewWithConfig(config parallel.Config) *CPUBackend {
	return &CPUBackend{
		device:   tensor.CPU,
		parallel: config,
	}
}

// Name returns the backend name.
func (c *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (c *CPUBackend) Device() tensor.Device {
	return c.device
}

// Add performs element-wise addition with broadcasting.
func (c *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary("add", a, b,
		func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (c *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary("sub", a, b,
		func(x, y float32) float32 { return x - y },
		func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (c *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary("mul", a, b,
		func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (c *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary("div", a, b,
		func(x, y float32) float32 { return x / y },
		func(x, y float64) float64 { return x / y })
}

// binary applies a broadcast-aware element-wise operation.
func (c *CPUBackend) binary(
	name string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType()))
	}

	outShape, expanded, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	result := tensor.MustNewRaw(outShape, a.DType(), c.device)

	if !expanded {
		// Fast path: identical shapes, flat loop.
		switch a.DType() {
		case tensor.Float32:
			av, bv, rv := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
			for i := range rv {
				rv[i] = f32(av[i], bv[i])
			}
		case tensor.Float64:
			av, bv, rv := a.AsFloat64(), b.AsFloat64(), result.AsFloat64()
			for i := range rv {
				rv[i] = f64(av[i], bv[i])
			}
		default:
			panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
		}
		return result
	}

	// Broadcast path: walk output coordinates, mapping each back to the
	// operands with stride 0 on expanded dimensions.
	aStride := broadcastStrides(a.Shape(), outShape)
	bStride := broadcastStrides(b.Shape(), outShape)
	outStride := outShape.ComputeStrides()
	n := outShape.NumElements()

	switch a.DType() {
	case tensor.Float32:
		av, bv, rv := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
		for i := 0; i < n; i++ {
			ai, bi := broadcastOffsets(i, outStride, aStride, bStride)
			rv[i] = f32(av[ai], bv[bi])
		}
	case tensor.Float64:
		av, bv, rv := a.AsFloat64(), b.AsFloat64(), result.AsFloat64()
		for i := 0; i < n; i++ {
			ai, bi := broadcastOffsets(i, outStride, aStride, bStride)
			rv[i] = f64(av[ai], bv[bi])
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}
	return result
}

// broadcastStrides returns strides for addressing a tensor of shape `in`
// as if it had shape `out`: dimensions of size 1 (or missing leading
// dimensions) get stride 0 so the same element repeats.
func broadcastStrides(in, out tensor.Shape) []int {
	inStrides := in.ComputeStrides()
	strides := make([]int, len(out))
	offset := len(out) - len(in)
	for i := range out {
		j := i - offset
		if j < 0 || in[j] == 1 {
			strides[i] = 0
		} else {
			strides[i] = inStrides[j]
		}
	}
	return strides
}

// broadcastOffsets decomposes a flat output index into coordinates and
// recomposes flat offsets into both operands.
func broadcastOffsets(flat int, outStride, aStride, bStride []int) (int, int) {
	ai, bi := 0, 0
	rem := flat
	for d := 0; d < len(outStride); d++ {
		coord := rem / outStride[d]
		rem %= outStride[d]
		ai += coord * aStride[d]
		bi += coord * bStride[d]
	}
	return ai, bi
}
