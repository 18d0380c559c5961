package tensor

// Backend is the operator set a compute device must implement. The
// evaluation operators and the autodiff engine are written against this
// interface, so a tensor never cares which device executes it.
//
// Kernels panic on contract violations (shape mismatch, unsupported
// dtype); fallible validation belongs to the callers that construct the
// tensors.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Element-wise operations with a scalar operand.
	AddScalar(x *RawTensor, scalar float64) *RawTensor
	MulScalar(x *RawTensor, scalar float64) *RawTensor

	// Element-wise unary math.
	Neg(x *RawTensor) *RawTensor
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor

	// MatMul multiplies two 2D tensors: (M, K) @ (K, N) -> (M, N).
	MatMul(a, b *RawTensor) *RawTensor

	// Normalization along an axis. Negative axes count from the end.
	// Both use max subtraction for numerical stability.
	Softmax(x *RawTensor, axis int) *RawTensor
	LogSoftmax(x *RawTensor, axis int) *RawTensor

	// Reductions.
	Sum(x *RawTensor) *RawTensor
	SumAxis(x *RawTensor, axis int, keepAxis bool) *RawTensor
	MeanAxis(x *RawTensor, axis int, keepAxis bool) *RawTensor

	// Argmax returns int32 indices of the maximum along the axis. Ties
	// resolve to the first occurrence.
	Argmax(x *RawTensor, axis int) *RawTensor

	// TopKIndices returns the int32 indices of the k largest values
	// along the axis, in descending value order. The axis dimension of
	// the result has size k.
	TopKIndices(x *RawTensor, axis, k int) *RawTensor

	// Shape operations.
	Reshape(x *RawTensor, shape Shape) *RawTensor
	Transpose(x *RawTensor, axes ...int) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
