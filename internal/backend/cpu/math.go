package cpu

import (
	"fmt"
	"math"

	"github.com/JinkiJung/CNTK/internal/tensor"
)

// unary applies an element-wise function to a float tensor.
func (c *CPUBackend) unary(name string, x *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	result := tensor.MustNewRaw(x.Shape(), x.DType(), c.device)
	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for i, v := range src {
			dst[i] = float32(f(float64(v)))
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		for i, v := range src {
			dst[i] = f(v)
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}
	return result
}

// Neg negates every element.
func (c *CPUBackend) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unary("neg", x, func(v float64) float64 { return -v })
}

// Exp computes the element-wise exponential.
func (c *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unary("exp", x, math.Exp)
}

// Log computes the element-wise natural logarithm.
// The argument must be strictly positive; the evaluation operators keep
// their operands inside the domain before calling this kernel.
func (c *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unary("log", x, math.Log)
}

// AddScalar adds a scalar to every element.
func (c *CPUBackend) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return c.unary("addscalar", x, func(v float64) float64 { return v + scalar })
}

// MulScalar multiplies every element by a scalar.
func (c *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return c.unary("mulscalar", x, func(v float64) float64 { return v * scalar })
}
