package tensor

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	raw, err := NewRaw(shape, TypeOf[T](), b.Device())
	if err != nil {
		panic(err)
	}
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, 1, b)
}

// Full creates a tensor filled with value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// OneHot creates a [len(classes), numClasses] tensor with a single 1 per
// row, at the class index. Used to turn label indices into target
// distributions for the loss operators.
func OneHot[T DType, B Backend](classes []int, numClasses int, b B) (*Tensor[T, B], error) {
	for i, c := range classes {
		if c < 0 || c >= numClasses {
			return nil, errors.Errorf("class %d at row %d out of range [0, %d)", c, i, numClasses)
		}
	}
	t := Zeros[T, B](Shape{len(classes), numClasses}, b)
	data := t.Data()
	for i, c := range classes {
		data[i*numClasses+c] = 1
	}
	return t, nil
}

// Rand creates a tensor with uniform values in [0, 1). Float types only.
func Rand[T DType, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	switch d := any(data).(type) {
	case []float32:
		for i := range d {
			d[i] = rng.Float32()
		}
	case []float64:
		for i := range d {
			d[i] = rng.Float64()
		}
	default:
		panic("Rand: only float32 and float64 supported")
	}
	return t
}

// Randn creates a tensor with standard normal values via the Box-Muller
// transform. Float types only.
func Randn[T DType, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	n := len(data)
	for i := 0; i < n; i += 2 {
		u1 := rng.Float64()
		u2 := rng.Float64()
		if u1 == 0 {
			u1 = math.SmallestNonzeroFloat64
		}
		r := math.Sqrt(-2.0 * math.Log(u1))
		z0 := r * math.Cos(2.0*math.Pi*u2)
		z1 := r * math.Sin(2.0*math.Pi*u2)
		setFloat(data, i, z0)
		if i+1 < n {
			setFloat(data, i+1, z1)
		}
	}
	return t
}

func setFloat[T DType](data []T, i int, v float64) {
	switch d := any(data).(type) {
	case []float32:
		d[i] = float32(v)
	case []float64:
		d[i] = v
	default:
		panic("Randn: only float32 and float64 supported")
	}
}
