// Package autodiff implements reverse-mode automatic differentiation as a
// decorator around any compute backend.
//
// AutodiffBackend wraps a tensor.Backend, forwards every operation to it
// and records the differentiable ones on a GradientTape. Walking the tape
// backwards yields gradients for every tensor that took part in the
// computation.
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	loss := backend.SquaredError(output.Raw(), target.Raw())
//	grads := backend.Tape().Backward(seed, backend)
package autodiff

import (
	"github.com/JinkiJung/CNTK/internal/autodiff/ops"
	"github.com/JinkiJung/CNTK/internal/tensor"
)

// AutodiffBackend decorates a backend with gradient recording. It
// implements tensor.Backend itself, so tensors can be bound to it
// directly.
type AutodiffBackend[B tensor.Backend] struct {
	inner B
	tape  *GradientTape
}

// New creates an AutodiffBackend wrapping the given backend.
func New[B tensor.Backend](backend B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{inner: backend, tape: NewGradientTape()}
}

// Tape returns the gradient tape for recording control.
func (b *AutodiffBackend[B]) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend.
func (b *AutodiffBackend[B]) Inner() B {
	return b.inner
}

// InnerBackend returns the wrapped backend as the Backend interface.
func (b *AutodiffBackend[B]) InnerBackend() tensor.Backend {
	return b.inner
}

// Name returns the backend name.
func (b *AutodiffBackend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Device returns the compute device.
func (b *AutodiffBackend[B]) Device() tensor.Device {
	return b.inner.Device()
}

// Add performs element-wise addition and records the operation.
func (b *AutodiffBackend[B]) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Add(x, y)
	b.tape.Record(ops.NewAddOp(x, y, result))
	return result
}

// Sub performs element-wise subtraction and records the operation.
func (b *AutodiffBackend[B]) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sub(x, y)
	b.tape.Record(ops.NewSubOp(x, y, result))
	return result
}

// Mul performs element-wise multiplication and records the operation.
func (b *AutodiffBackend[B]) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Mul(x, y)
	b.tape.Record(ops.NewMulOp(x, y, result))
	return result
}

// Div performs element-wise division and records the operation.
func (b *AutodiffBackend[B]) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Div(x, y)
	b.tape.Record(ops.NewDivOp(x, y, result))
	return result
}

// AddScalar adds a scalar and records the operation.
func (b *AutodiffBackend[B]) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := b.inner.AddScalar(x, scalar)
	b.tape.Record(ops.NewAddScalarOp(x, result))
	return result
}

// MulScalar multiplies by a scalar and records the operation.
func (b *AutodiffBackend[B]) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := b.inner.MulScalar(x, scalar)
	b.tape.Record(ops.NewMulScalarOp(x, result, scalar))
	return result
}

// Neg negates and records the operation.
func (b *AutodiffBackend[B]) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Neg(x)
	b.tape.Record(ops.NewNegOp(x, result))
	return result
}

// Exp computes the exponential and records the operation.
func (b *AutodiffBackend[B]) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Exp(x)
	b.tape.Record(ops.NewExpOp(x, result))
	return result
}

// Log computes the logarithm and records the operation.
func (b *AutodiffBackend[B]) Log(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Log(x)
	b.tape.Record(ops.NewLogOp(x, result))
	return result
}

// MatMul multiplies matrices and records the operation.
func (b *AutodiffBackend[B]) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.MatMul(x, y)
	b.tape.Record(ops.NewMatMulOp(x, y, result))
	return result
}

// Softmax normalizes along the axis and records the operation.
func (b *AutodiffBackend[B]) Softmax(x *tensor.RawTensor, axis int) *tensor.RawTensor {
	result := b.inner.Softmax(x, axis)
	a, err := x.Shape().NormalizeAxis(axis)
	if err != nil {
		panic(err)
	}
	b.tape.Record(ops.NewSoftmaxOp(x, result, a))
	return result
}

// LogSoftmax computes log-softmax along the axis and records the
// operation.
func (b *AutodiffBackend[B]) LogSoftmax(x *tensor.RawTensor, axis int) *tensor.RawTensor {
	result := b.inner.LogSoftmax(x, axis)
	a, err := x.Shape().NormalizeAxis(axis)
	if err != nil {
		panic(err)
	}
	b.tape.Record(ops.NewLogSoftmaxOp(x, result, a))
	return result
}

// Sum reduces to a single element and records the operation.
func (b *AutodiffBackend[B]) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sum(x)
	b.tape.Record(ops.NewSumOp(x, result))
	return result
}

// SumAxis sums along an axis and records the operation.
func (b *AutodiffBackend[B]) SumAxis(x *tensor.RawTensor, axis int, keepAxis bool) *tensor.RawTensor {
	result := b.inner.SumAxis(x, axis, keepAxis)
	a, err := x.Shape().NormalizeAxis(axis)
	if err != nil {
		panic(err)
	}
	b.tape.Record(ops.NewSumAxisOp(x, result, a))
	return result
}

// MeanAxis averages along an axis and records the operation.
func (b *AutodiffBackend[B]) MeanAxis(x *tensor.RawTensor, axis int, keepAxis bool) *tensor.RawTensor {
	result := b.inner.MeanAxis(x, axis, keepAxis)
	a, err := x.Shape().NormalizeAxis(axis)
	if err != nil {
		panic(err)
	}
	b.tape.Record(ops.NewMeanAxisOp(x, result, a))
	return result
}

// Argmax is not differentiable; it is forwarded without recording.
func (b *AutodiffBackend[B]) Argmax(x *tensor.RawTensor, axis int) *tensor.RawTensor {
	return b.inner.Argmax(x, axis)
}

// TopKIndices is not differentiable; it is forwarded without recording.
func (b *AutodiffBackend[B]) TopKIndices(x *tensor.RawTensor, axis, k int) *tensor.RawTensor {
	return b.inner.TopKIndices(x, axis, k)
}

// Reshape creates a view and records the operation, so gradients reach
// the original tensor.
func (b *AutodiffBackend[B]) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	result := b.inner.Reshape(x, shape)
	b.tape.Record(ops.NewReshapeOp(x, result))
	return result
}

// Transpose permutes axes and records the operation.
func (b *AutodiffBackend[B]) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	rank := len(x.Shape())
	if len(axes) == 0 {
		axes = make([]int, rank)
		for i := range axes {
			axes[i] = rank - 1 - i
		}
	}
	result := b.inner.Transpose(x, axes...)
	b.tape.Record(ops.NewTransposeOp(x, result, axes))
	return result
}
