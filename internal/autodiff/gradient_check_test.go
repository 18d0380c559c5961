package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JinkiJung/CNTK/internal/autodiff"
	"github.com/JinkiJung/CNTK/internal/backend/cpu"
	"github.com/JinkiJung/CNTK/internal/tensor"
)

// The criteria's analytic gradients are verified against central finite
// differences in float64. The cross entropy target input is excluded:
// its recorded gradient follows the label convention (the negated raw
// scores) rather than the full derivative.

const (
	fdEpsilon   = 1e-6
	fdTolerance = 1e-5
)

// numericGradient perturbs each element of x in turn and evaluates the
// scalar function f with central differences.
func numericGradient(f func(x []float64) float64, x []float64) []float64 {
	grad := make([]float64, len(x))
	point := make([]float64, len(x))
	for i := range x {
		copy(point, x)
		point[i] = x[i] + fdEpsilon
		plus := f(point)
		point[i] = x[i] - fdEpsilon
		minus := f(point)
		grad[i] = (plus - minus) / (2 * fdEpsilon)
	}
	return grad
}

func rawFromSlice(t *testing.T, data []float64, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape.Clone(), tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat64(), data)
	return raw
}

// sumAll folds a loss tensor to a single scalar so multi-lane losses
// can be finite-difference checked with a plain float function.
func sumAll(raw *tensor.RawTensor) float64 {
	var sum float64
	for i := 0; i < raw.NumElements(); i++ {
		sum += raw.Float64Value(i)
	}
	return sum
}

func tapeGradient(t *testing.T, backend *autodiff.AutodiffBackend[*cpu.CPUBackend], loss, wrt *tensor.RawTensor) []float64 {
	t.Helper()
	seed, err := tensor.NewRaw(loss.Shape().Clone(), loss.DType(), loss.Device())
	require.NoError(t, err)
	for i := 0; i < seed.NumElements(); i++ {
		seed.SetFloat64Value(i, 1)
	}
	grads := backend.Tape().Backward(seed, backend.Inner())
	require.Contains(t, grads, wrt)
	return grads[wrt].AsFloat64()
}

func TestCrossEntropyWithSoftmaxScoresGradientMatchesFiniteDifferences(t *testing.T) {
	scores := []float64{1, 2, 3, 4, 1, 7, 3, 5}
	target := []float64{0, 0, 0.5, 0.5, 0, 1, 0, 0}
	shape := tensor.Shape{2, 4}

	backend := autodiff.New(cpu.New())
	s := rawFromSlice(t, scores, shape)
	tv := rawFromSlice(t, target, shape)

	backend.Tape().StartRecording()
	loss := backend.CrossEntropyWithSoftmax(s, tv, 1)
	backend.Tape().StopRecording()

	got := tapeGradient(t, backend, loss, s)

	want := numericGradient(func(x []float64) float64 {
		other := autodiff.New(cpu.New())
		l := other.CrossEntropyWithSoftmax(rawFromSlice(t, x, shape), rawFromSlice(t, target, shape), 1)
		return sumAll(l)
	}, scores)

	for i := range want {
		assert.InDelta(t, want[i], got[i], fdTolerance, "score gradient %d", i)
	}
}

func TestSquaredErrorGradientsMatchFiniteDifferences(t *testing.T) {
	output := []float64{0.5, -1.2, 3.3, 0.7}
	target := []float64{1.0, 0.0, 2.5, -0.5}
	shape := tensor.Shape{1, 4}

	backend := autodiff.New(cpu.New())
	o := rawFromSlice(t, output, shape)
	tv := rawFromSlice(t, target, shape)

	backend.Tape().StartRecording()
	loss := backend.SquaredError(o, tv)
	backend.Tape().StopRecording()

	gotOutput := tapeGradient(t, backend, loss, o)
	wantOutput := numericGradient(func(x []float64) float64 {
		other := autodiff.New(cpu.New())
		return sumAll(other.SquaredError(rawFromSlice(t, x, shape), rawFromSlice(t, target, shape)))
	}, output)

	gotTarget := tapeGradient(t, backend, loss, tv)
	wantTarget := numericGradient(func(x []float64) float64 {
		other := autodiff.New(cpu.New())
		return sumAll(other.SquaredError(rawFromSlice(t, output, shape), rawFromSlice(t, x, shape)))
	}, target)

	for i := range wantOutput {
		assert.InDelta(t, wantOutput[i], gotOutput[i], fdTolerance, "output gradient %d", i)
		assert.InDelta(t, wantTarget[i], gotTarget[i], fdTolerance, "target gradient %d", i)
	}
}

func TestBinaryCrossEntropyGradientsMatchFiniteDifferences(t *testing.T) {
	prediction := []float64{0.2, 0.4, 0.6, 0.8}
	target := []float64{0, 0, 1, 1}
	shape := tensor.Shape{1, 4}

	backend := autodiff.New(cpu.New())
	x := rawFromSlice(t, prediction, shape)
	tv := rawFromSlice(t, target, shape)

	backend.Tape().StartRecording()
	loss := backend.BinaryCrossEntropy(x, tv)
	backend.Tape().StopRecording()

	gotPred := tapeGradient(t, backend, loss, x)
	wantPred := numericGradient(func(probe []float64) float64 {
		other := autodiff.New(cpu.New())
		return sumAll(other.BinaryCrossEntropy(rawFromSlice(t, probe, shape), rawFromSlice(t, target, shape)))
	}, prediction)

	gotTarget := tapeGradient(t, backend, loss, tv)
	wantTarget := numericGradient(func(probe []float64) float64 {
		other := autodiff.New(cpu.New())
		return sumAll(other.BinaryCrossEntropy(rawFromSlice(t, prediction, shape), rawFromSlice(t, probe, shape)))
	}, target)

	for i := range wantPred {
		assert.InDelta(t, wantPred[i], gotPred[i], fdTolerance, "prediction gradient %d", i)
		assert.InDelta(t, wantTarget[i], gotTarget[i], fdTolerance, "target gradient %d", i)
	}
}

func TestWeightedBinaryCrossEntropyWeightGradientMatchesFiniteDifferences(t *testing.T) {
	prediction := []float64{0.2, 0.4, 0.6, 0.8}
	target := []float64{0, 0, 1, 1}
	weight := []float64{1, 2, 3, 4}
	shape := tensor.Shape{1, 4}

	backend := autodiff.New(cpu.New())
	x := rawFromSlice(t, prediction, shape)
	tv := rawFromSlice(t, target, shape)
	w := rawFromSlice(t, weight, shape)

	backend.Tape().StartRecording()
	loss := backend.WeightedBinaryCrossEntropy(x, tv, w)
	backend.Tape().StopRecording()

	gotWeight := tapeGradient(t, backend, loss, w)
	wantWeight := numericGradient(func(probe []float64) float64 {
		other := autodiff.New(cpu.New())
		return sumAll(other.WeightedBinaryCrossEntropy(
			rawFromSlice(t, prediction, shape),
			rawFromSlice(t, target, shape),
			rawFromSlice(t, probe, shape)))
	}, weight)

	for i := range wantWeight {
		assert.InDelta(t, wantWeight[i], gotWeight[i], fdTolerance, "weight gradient %d", i)
	}
}

// Chained primitives: d/dx sum(exp(log(x) * 2)) = 2x.
func TestChainedPrimitivesGradientMatchesFiniteDifferences(t *testing.T) {
	input := []float64{0.5, 1.5, 2.5}
	shape := tensor.Shape{3}

	chain := func(b *autodiff.AutodiffBackend[*cpu.CPUBackend], x *tensor.RawTensor) *tensor.RawTensor {
		return b.Sum(b.Exp(b.MulScalar(b.Log(x), 2)))
	}

	backend := autodiff.New(cpu.New())
	x := rawFromSlice(t, input, shape)

	backend.Tape().StartRecording()
	loss := chain(backend, x)
	backend.Tape().StopRecording()

	got := tapeGradient(t, backend, loss, x)
	want := numericGradient(func(probe []float64) float64 {
		other := autodiff.New(cpu.New())
		return sumAll(chain(other, rawFromSlice(t, probe, shape)))
	}, input)

	for i := range want {
		assert.InDelta(t, want[i], got[i], fdTolerance, "gradient %d", i)
		assert.InDelta(t, 2*input[i], got[i], fdTolerance, "analytic 2x at %d", i)
	}
}
