package cpu

import (
	"fmt"
	"sort"

	"github.com/JinkiJung/CNTK/internal/tensor"
)

// Sum reduces all elements to a single-element tensor of shape [1].
func (c *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustNewRaw(tensor.Shape{1}, x.DType(), c.device)
	switch x.DType() {
	case tensor.Float32:
		var sum float64
		for _, v := range x.AsFloat32() {
			sum += float64(v)
		}
		result.AsFloat32()[0] = float32(sum)
	case tensor.Float64:
		var sum float64
		for _, v := range x.AsFloat64() {
			sum += v
		}
		result.AsFloat64()[0] = sum
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", x.DType()))
	}
	return result
}

// SumAxis sums along an axis. With keepAxis the reduced dimension stays
// with size 1, otherwise it is removed.
func (c *CPUBackend) SumAxis(x *tensor.RawTensor, axis int, keepAxis bool) *tensor.RawTensor {
	return c.reduceAxis("sumaxis", x, axis, keepAxis, 1)
}

// MeanAxis averages along an axis.
func (c *CPUBackend) MeanAxis(x *tensor.RawTensor, axis int, keepAxis bool) *tensor.RawTensor {
	a := mustNormalizeAxis("meanaxis", x.Shape(), axis)
	return c.reduceAxis("meanaxis", x, axis, keepAxis, 1.0/float64(x.Shape()[a]))
}

func (c *CPUBackend) reduceAxis(name string, x *tensor.RawTensor, axis int, keepAxis bool, scale float64) *tensor.RawTensor {
	a := mustNormalizeAxis(name, x.Shape(), axis)
	result := tensor.MustNewRaw(reducedShape(x.Shape(), a, keepAxis), x.DType(), c.device)
	l := lanesOf(x.Shape(), a)

	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for o := 0; o < l.outer; o++ {
			for i := 0; i < l.inner; i++ {
				var sum float64
				for j := 0; j < l.size; j++ {
					sum += float64(src[l.index(o, j, i)])
				}
				dst[o*l.inner+i] = float32(sum * scale)
			}
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		for o := 0; o < l.outer; o++ {
			for i := 0; i < l.inner; i++ {
				var sum float64
				for j := 0; j < l.size; j++ {
					sum += src[l.index(o, j, i)]
				}
				dst[o*l.inner+i] = sum * scale
			}
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}
	return result
}

func reducedShape(shape tensor.Shape, axis int, keepAxis bool) tensor.Shape {
	if keepAxis {
		out := shape.Clone()
		out[axis] = 1
		return out
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	for d, dim := range shape {
		if d != axis {
			out = append(out, dim)
		}
	}
	if len(out) == 0 {
		out = tensor.Shape{1}
	}
	return out
}

// Argmax returns the int32 indices of the maximum along the axis, ties
// resolving to the first occurrence.
func (c *CPUBackend) Argmax(x *tensor.RawTensor, axis int) *tensor.RawTensor {
	a := mustNormalizeAxis("argmax", x.Shape(), axis)
	result := tensor.MustNewRaw(reducedShape(x.Shape(), a, false), tensor.Int32, c.device)
	l := lanesOf(x.Shape(), a)
	dst := result.AsInt32()

	for o := 0; o < l.outer; o++ {
		for i := 0; i < l.inner; i++ {
			best := 0
			bestVal := x.Float64Value(l.index(o, 0, i))
			for j := 1; j < l.size; j++ {
				if v := x.Float64Value(l.index(o, j, i)); v > bestVal {
					best, bestVal = j, v
				}
			}
			dst[o*l.inner+i] = int32(best)
		}
	}
	return result
}

// TopKIndices returns the int32 indices of the k largest values along the
// axis, ordered by descending value. Equal values keep their original
// order, matching Argmax's first-occurrence tie rule.
func (c *CPUBackend) TopKIndices(x *tensor.RawTensor, axis, k int) *tensor.RawTensor {
	a := mustNormalizeAxis("topk", x.Shape(), axis)
	size := x.Shape()[a]
	if k < 1 || k > size {
		panic(fmt.Sprintf("topk: k=%d out of range for axis size %d", k, size))
	}

	outShape := x.Shape().Clone()
	outShape[a] = k
	result := tensor.MustNewRaw(outShape, tensor.Int32, c.device)
	l := lanesOf(x.Shape(), a)
	out := lanesOf(outShape, a)
	dst := result.AsInt32()

	order := make([]int, size)
	for o := 0; o < l.outer; o++ {
		for i := 0; i < l.inner; i++ {
			for j := range order {
				order[j] = j
			}
			sort.SliceStable(order, func(p, q int) bool {
				return x.Float64Value(l.index(o, order[p], i)) > x.Float64Value(l.index(o, order[q], i))
			})
			for j := 0; j < k; j++ {
				dst[out.index(o, j, i)] = int32(order[j])
			}
		}
	}
	return result
}
