package cpu

import (
	"fmt"

	"github.com/JinkiJung/CNTK/internal/parallel"
	"github.com/JinkiJung/CNTK/internal/tensor"
)

// MatMul multiplies two 2D tensors: (M, K) @ (K, N) -> (M, N).
// Rows are distributed across workers for larger inputs.
func (c *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D operands, got %v and %v", as, bs))
	}
	if as[1] != bs[0] {
		panic(fmt.Sprintf("matmul: inner dimensions differ: %v @ %v", as, bs))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	m, k, n := as[0], as[1], bs[1]
	result := tensor.MustNewRaw(tensor.Shape{m, n}, a.DType(), c.device)

	switch a.DType() {
	case tensor.Float32:
		av, bv, rv := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
		parallel.For(m, func(i int) {
			for j := 0; j < n; j++ {
				var sum float32
				for p := 0; p < k; p++ {
					sum += av[i*k+p] * bv[p*n+j]
				}
				rv[i*n+j] = sum
			}
		}, c.parallel)
	case tensor.Float64:
		av, bv, rv := a.AsFloat64(), b.AsFloat64(), result.AsFloat64()
		parallel.For(m, func(i int) {
			for j := 0; j < n; j++ {
				var sum float64
				for p := 0; p < k; p++ {
					sum += av[i*k+p] * bv[p*n+j]
				}
				rv[i*n+j] = sum
			}
		}, c.parallel)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", a.DType()))
	}
	return result
}
