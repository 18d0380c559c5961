package cpu

import (
	"fmt"
	"math"

	"github.com/JinkiJung/CNTK/internal/tensor"
)

// axisLanes describes iteration over all 1D lanes along an axis. A tensor
// of shape s decomposes into outer*inner lanes of length size; the flat
// index of element j of lane (o, i) is (o*size+j)*inner + i.
type axisLanes struct {
	outer, size, inner int
}

func lanesOf(shape tensor.Shape, axis int) axisLanes {
	l := axisLanes{outer: 1, size: shape[axis], inner: 1}
	for d := 0; d < axis; d++ {
		l.outer *= shape[d]
	}
	for d := axis + 1; d < len(shape); d++ {
		l.inner *= shape[d]
	}
	return l
}

func (l axisLanes) index(o, j, i int) int {
	return (o*l.size+j)*l.inner + i
}

// Softmax normalizes along the axis:
//
//	softmax(x)_j = exp(x_j - max(x)) / Σ_k exp(x_k - max(x))
//
// The max subtraction keeps exp from overflowing for large scores.
func (c *CPUBackend) Softmax(x *tensor.RawTensor, axis int) *tensor.RawTensor {
	axis = mustNormalizeAxis("softmax", x.Shape(), axis)
	result := tensor.MustNewRaw(x.Shape(), x.DType(), c.device)
	l := lanesOf(x.Shape(), axis)

	switch x.DType() {
	case tensor.Float32:
		softmaxLanes(x.AsFloat32(), result.AsFloat32(), l, false)
	case tensor.Float64:
		softmaxLanes(x.AsFloat64(), result.AsFloat64(), l, false)
	default:
		panic(fmt.Sprintf("softmax: unsupported dtype %s", x.DType()))
	}
	return result
}

// LogSoftmax computes log(softmax(x)) along the axis using the
// log-sum-exp trick:
//
//	log_softmax(x)_j = x_j - max(x) - log(Σ_k exp(x_k - max(x)))
func (c *CPUBackend) LogSoftmax(x *tensor.RawTensor, axis int) *tensor.RawTensor {
	axis = mustNormalizeAxis("logsoftmax", x.Shape(), axis)
	result := tensor.MustNewRaw(x.Shape(), x.DType(), c.device)
	l := lanesOf(x.Shape(), axis)

	switch x.DType() {
	case tensor.Float32:
		softmaxLanes(x.AsFloat32(), result.AsFloat32(), l, true)
	case tensor.Float64:
		softmaxLanes(x.AsFloat64(), result.AsFloat64(), l, true)
	default:
		panic(fmt.Sprintf("logsoftmax: unsupported dtype %s", x.DType()))
	}
	return result
}

func softmaxLanes[T float32 | float64](src, dst []T, l axisLanes, logDomain bool) {
	for o := 0; o < l.outer; o++ {
		for i := 0; i < l.inner; i++ {
			maxVal := src[l.index(o, 0, i)]
			for j := 1; j < l.size; j++ {
				if v := src[l.index(o, j, i)]; v > maxVal {
					maxVal = v
				}
			}

			var sumExp float64
			for j := 0; j < l.size; j++ {
				idx := l.index(o, j, i)
				e := math.Exp(float64(src[idx] - maxVal))
				dst[idx] = T(e)
				sumExp += e
			}

			if logDomain {
				logSum := math.Log(sumExp)
				for j := 0; j < l.size; j++ {
					idx := l.index(o, j, i)
					dst[idx] = src[idx] - maxVal - T(logSum)
				}
			} else {
				inv := T(1.0 / sumExp)
				for j := 0; j < l.size; j++ {
					dst[l.index(o, j, i)] *= inv
				}
			}
		}
	}
}

func mustNormalizeAxis(name string, shape tensor.Shape, axis int) int {
	a, err := shape.NormalizeAxis(axis)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	return a
}
