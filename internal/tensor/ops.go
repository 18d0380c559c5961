package tensor

// Method shims that route through the backend. Every method returns a new
// tensor; nothing mutates its receiver.

// Add performs element-wise addition with broadcasting.
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Mul(t.raw, other.raw), t.backend)
}

// Div performs element-wise division with broadcasting.
func (t *Tensor[T, B]) Div(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Div(t.raw, other.raw), t.backend)
}

// AddScalar adds a scalar to every element.
func (t *Tensor[T, B]) AddScalar(scalar float64) *Tensor[T, B] {
	return New[T, B](t.backend.AddScalar(t.raw, scalar), t.backend)
}

// MulScalar multiplies every element by a scalar.
func (t *Tensor[T, B]) MulScalar(scalar float64) *Tensor[T, B] {
	return New[T, B](t.backend.MulScalar(t.raw, scalar), t.backend)
}

// Neg negates every element.
func (t *Tensor[T, B]) Neg() *Tensor[T, B] {
	return New[T, B](t.backend.Neg(t.raw), t.backend)
}

// Exp computes the element-wise exponential.
func (t *Tensor[T, B]) Exp() *Tensor[T, B] {
	return New[T, B](t.backend.Exp(t.raw), t.backend)
}

// Log computes the element-wise natural logarithm.
func (t *Tensor[T, B]) Log() *Tensor[T, B] {
	return New[T, B](t.backend.Log(t.raw), t.backend)
}

// MatMul multiplies two 2D tensors.
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.MatMul(t.raw, other.raw), t.backend)
}

// Softmax normalizes along the axis with a numerically stable softmax.
func (t *Tensor[T, B]) Softmax(axis int) *Tensor[T, B] {
	return New[T, B](t.backend.Softmax(t.raw, axis), t.backend)
}

// LogSoftmax computes log(softmax(x)) along the axis.
func (t *Tensor[T, B]) LogSoftmax(axis int) *Tensor[T, B] {
	return New[T, B](t.backend.LogSoftmax(t.raw, axis), t.backend)
}

// Sum reduces all elements to a single-element tensor.
func (t *Tensor[T, B]) Sum() *Tensor[T, B] {
	return New[T, B](t.backend.Sum(t.raw), t.backend)
}

// SumAxis sums along the axis.
func (t *Tensor[T, B]) SumAxis(axis int, keepAxis bool) *Tensor[T, B] {
	return New[T, B](t.backend.SumAxis(t.raw, axis, keepAxis), t.backend)
}

// MeanAxis averages along the axis.
func (t *Tensor[T, B]) MeanAxis(axis int, keepAxis bool) *Tensor[T, B] {
	return New[T, B](t.backend.MeanAxis(t.raw, axis, keepAxis), t.backend)
}

// Argmax returns the int32 indices of the maxima along the axis.
func (t *Tensor[T, B]) Argmax(axis int) *Tensor[int32, B] {
	return New[int32, B](t.backend.Argmax(t.raw, axis), t.backend)
}

// Reshape returns a tensor with the same elements and a new shape.
func (t *Tensor[T, B]) Reshape(dims ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Reshape(t.raw, Shape(dims)), t.backend)
}

// Transpose permutes the tensor's axes. With no arguments the axis order
// is reversed.
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Transpose(t.raw, axes...), t.backend)
}
