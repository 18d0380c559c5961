package optim_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JinkiJung/CNTK/internal/autodiff"
	"github.com/JinkiJung/CNTK/internal/backend/cpu"
	"github.com/JinkiJung/CNTK/internal/nn"
	"github.com/JinkiJung/CNTK/internal/optim"
	"github.com/JinkiJung/CNTK/internal/tensor"
)

type adBackend = autodiff.AutodiffBackend[*cpu.CPUBackend]

func paramWithGrad(t *testing.T, backend *cpu.CPUBackend, values, gradValues []float32) (*nn.Parameter[*cpu.CPUBackend], map[*tensor.RawTensor]*tensor.RawTensor) {
	t.Helper()
	pt, err := tensor.FromSlice(values, tensor.Shape{len(values)}, backend)
	require.NoError(t, err)
	gt, err := tensor.FromSlice(gradValues, tensor.Shape{len(gradValues)}, backend)
	require.NoError(t, err)
	param := nn.NewParameter("p", pt)
	grads := map[*tensor.RawTensor]*tensor.RawTensor{pt.Raw(): gt.Raw()}
	return param, grads
}

func TestSGDStep(t *testing.T) {
	backend := cpu.New()
	param, grads := paramWithGrad(t, backend, []float32{1, 2, 3}, []float32{0.5, 0.5, 0.5})

	sgd := optim.NewSGD([]*nn.Parameter[*cpu.CPUBackend]{param}, optim.SGDConfig{LR: 0.1}, backend)
	sgd.Step(grads)

	assert.InDeltaSlice(t, []float32{0.95, 1.95, 2.95}, param.Tensor().Data(), 1e-6)
}

func TestSGDMomentumAccumulates(t *testing.T) {
	backend := cpu.New()
	param, grads := paramWithGrad(t, backend, []float32{1}, []float32{1})

	sgd := optim.NewSGD([]*nn.Parameter[*cpu.CPUBackend]{param}, optim.SGDConfig{LR: 0.1, Momentum: 0.9}, backend)

	// Step 1: v = 1, p = 1 - 0.1 = 0.9.
	sgd.Step(grads)
	assert.InDelta(t, 0.9, float64(param.Tensor().Data()[0]), 1e-6)

	// Step 2: v = 0.9 + 1 = 1.9, p = 0.9 - 0.19 = 0.71.
	sgd.Step(grads)
	assert.InDelta(t, 0.71, float64(param.Tensor().Data()[0]), 1e-6)
}

func TestSGDSkipsParamWithoutGrad(t *testing.T) {
	backend := cpu.New()
	pt, err := tensor.FromSlice([]float32{7}, tensor.Shape{1}, backend)
	require.NoError(t, err)
	param := nn.NewParameter("p", pt)

	sgd := optim.NewSGD([]*nn.Parameter[*cpu.CPUBackend]{param}, optim.SGDConfig{LR: 0.1}, backend)
	sgd.Step(map[*tensor.RawTensor]*tensor.RawTensor{})

	assert.Equal(t, float32(7), param.Tensor().Data()[0])
}

func TestSGDSetLR(t *testing.T) {
	backend := cpu.New()
	sgd := optim.NewSGD[*cpu.CPUBackend](nil, optim.SGDConfig{LR: 0.1}, backend)
	assert.Equal(t, float32(0.1), sgd.LR())
	sgd.SetLR(0.05)
	assert.Equal(t, float32(0.05), sgd.LR())
}

func TestAdamFirstStep(t *testing.T) {
	backend := cpu.New()
	param, grads := paramWithGrad(t, backend, []float32{1}, []float32{2})

	adam := optim.NewAdam([]*nn.Parameter[*cpu.CPUBackend]{param}, optim.AdamConfig{LR: 0.1}, backend)
	adam.Step(grads)

	// After bias correction the first step moves by almost exactly lr,
	// against the gradient sign: mHat = g, vHat = g², update = lr*g/(|g|+eps).
	assert.InDelta(t, 0.9, float64(param.Tensor().Data()[0]), 1e-4)
}

func TestAdamDefaults(t *testing.T) {
	backend := cpu.New()
	adam := optim.NewAdam[*cpu.CPUBackend](nil, optim.AdamConfig{}, backend)
	assert.Equal(t, float32(0.001), adam.LR())
}

// quadraticLoss computes sum((p - targetVal)^2) for a parameter held on
// an autodiff backend, leaving the computation on the tape.
func quadraticLoss(param *nn.Parameter[*adBackend], target *tensor.Tensor[float32, *adBackend]) *tensor.Tensor[float32, *adBackend] {
	diff := param.Tensor().Sub(target)
	return diff.Mul(diff).Sum()
}

func TestSGDConvergesOnQuadratic(t *testing.T) {
	backend := autodiff.New(cpu.New())

	pt, err := tensor.FromSlice([]float32{5, -3}, tensor.Shape{2}, backend)
	require.NoError(t, err)
	param := nn.NewParameter("p", pt)
	target, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	sgd := optim.NewSGD([]*nn.Parameter[*adBackend]{param}, optim.SGDConfig{LR: 0.1}, backend)

	for i := 0; i < 100; i++ {
		backend.Tape().Clear()
		backend.Tape().StartRecording()
		loss := quadraticLoss(param, target)
		grads, err := autodiff.Backward(loss)
		require.NoError(t, err)
		backend.Tape().StopRecording()

		sgd.Step(grads)
		sgd.ZeroGrad()
	}

	data := param.Tensor().Data()
	assert.InDelta(t, 1.0, float64(data[0]), 1e-3)
	assert.InDelta(t, 2.0, float64(data[1]), 1e-3)
}

func TestTrainingLoopReducesCrossEntropy(t *testing.T) {
	backend := autodiff.New(cpu.New())
	rng := rand.New(rand.NewSource(17))

	const (
		batch    = 16
		features = 4
		classes  = 3
	)

	// Linearly separable toy data: class k lives near the k-th axis.
	inputData := make([]float32, batch*features)
	labels := make([]int, batch)
	for i := 0; i < batch; i++ {
		k := i % classes
		labels[i] = k
		for j := 0; j < features; j++ {
			v := float32(rng.NormFloat64()) * 0.1
			if j == k {
				v += 2
			}
			inputData[i*features+j] = v
		}
	}

	input, err := tensor.FromSlice(inputData, tensor.Shape{batch, features}, backend)
	require.NoError(t, err)
	target, err := tensor.OneHot[float32](labels, classes, backend)
	require.NoError(t, err)

	model := nn.NewLinear(features, classes, rng, backend)
	criterion := nn.NewCrossEntropyWithSoftmaxLoss(backend, -1)
	sgd := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.5, Momentum: 0.9}, backend)

	lossAt := func() float64 {
		backend.Tape().Clear()
		backend.Tape().StartRecording()
		perSample := criterion.Forward(model.Forward(input), target)
		loss := perSample.Sum().MulScalar(1.0 / batch)
		backend.Tape().StopRecording()
		return float64(loss.Item())
	}

	initial := lossAt()

	for epoch := 0; epoch < 50; epoch++ {
		backend.Tape().Clear()
		backend.Tape().StartRecording()

		perSample := criterion.Forward(model.Forward(input), target)
		loss := perSample.Sum().MulScalar(1.0 / batch)

		grads, err := autodiff.Backward(loss)
		require.NoError(t, err)
		backend.Tape().StopRecording()

		sgd.Step(grads)
		sgd.ZeroGrad()

		require.False(t, math.IsNaN(float64(loss.Item())), "loss diverged at epoch %d", epoch)
	}

	final := lossAt()
	assert.Less(t, final, initial*0.2, "training should cut the loss substantially (%.4f -> %.4f)", initial, final)

	errRate := backend.ClassificationError(model.Forward(input).Raw(), target.Raw(), 1, -1)
	assert.Equal(t, 0.0, errRate.Float64Value(0), "separable data should be fit exactly")
}

func TestAdamConvergesOnQuadratic(t *testing.T) {
	backend := autodiff.New(cpu.New())

	pt, err := tensor.FromSlice([]float32{4}, tensor.Shape{1}, backend)
	require.NoError(t, err)
	param := nn.NewParameter("p", pt)
	target, err := tensor.FromSlice([]float32{-1}, tensor.Shape{1}, backend)
	require.NoError(t, err)

	adam := optim.NewAdam([]*nn.Parameter[*adBackend]{param}, optim.AdamConfig{LR: 0.2}, backend)

	for i := 0; i < 300; i++ {
		backend.Tape().Clear()
		backend.Tape().StartRecording()
		loss := quadraticLoss(param, target)
		grads, err := autodiff.Backward(loss)
		require.NoError(t, err)
		backend.Tape().StopRecording()

		adam.Step(grads)
		adam.ZeroGrad()
	}

	assert.InDelta(t, -1.0, float64(param.Tensor().Data()[0]), 1e-2)
}
