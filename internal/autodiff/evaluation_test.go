package autodiff_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	gorgonia "gorgonia.org/tensor"

	"github.com/JinkiJung/CNTK/internal/autodiff"
	"github.com/JinkiJung/CNTK/internal/backend/cpu"
	"github.com/JinkiJung/CNTK/internal/tensor"
)

// Every evaluation criterion is checked for the forward and the
// backward pass, in both precisions. Fixtures are held as gorgonia
// dense tensors, expected values come from small gonum-based oracles,
// and the criteria themselves run through the autodiff backend.

type precisionCase struct {
	name  string
	dtype tensor.DataType
	tol   float64
}

var precisions = []precisionCase{
	{"float32", tensor.Float32, 1e-4},
	{"float64", tensor.Float64, 1e-8},
}

func dense(shape []int, data []float64) *gorgonia.Dense {
	return gorgonia.New(gorgonia.WithShape(shape...), gorgonia.WithBacking(data))
}

func denseData(d *gorgonia.Dense) []float64 {
	return d.Data().([]float64)
}

// rawFromDense copies a float64 fixture into a raw tensor of the
// precision under test.
func rawFromDense(t *testing.T, d *gorgonia.Dense, dtype tensor.DataType) *tensor.RawTensor {
	t.Helper()
	shape := tensor.Shape(d.Shape()).Clone()
	raw, err := tensor.NewRaw(shape, dtype, tensor.CPU)
	require.NoError(t, err)
	for i, v := range denseData(d) {
		raw.SetFloat64Value(i, v)
	}
	return raw
}

func assertRawClose(t *testing.T, want *gorgonia.Dense, got *tensor.RawTensor, tol float64, what string) {
	t.Helper()
	wantData := denseData(want)
	require.Equal(t, len(wantData), got.NumElements(), "%s: element count", what)
	for i, w := range wantData {
		assert.InDelta(t, w, got.Float64Value(i), tol, "%s: element %d", what, i)
	}
}

func onesLike(t *testing.T, raw *tensor.RawTensor) *tensor.RawTensor {
	t.Helper()
	seed, err := tensor.NewRaw(raw.Shape().Clone(), raw.DType(), raw.Device())
	require.NoError(t, err)
	for i := 0; i < seed.NumElements(); i++ {
		seed.SetFloat64Value(i, 1)
	}
	return seed
}

type binaryCriterion func(backend *autodiff.AutodiffBackend[*cpu.CPUBackend], left, right *tensor.RawTensor) *tensor.RawTensor

// checkBinaryCriterion runs a two-operand criterion in both precisions
// and compares the forward result and both gradients against the
// expected dense tensors. A nil expected gradient skips that check.
func checkBinaryCriterion(
	t *testing.T,
	criterion binaryCriterion,
	left, right *gorgonia.Dense,
	wantForward, wantLeftGrad, wantRightGrad *gorgonia.Dense,
) {
	t.Helper()
	for _, p := range precisions {
		t.Run(p.name, func(t *testing.T) {
			backend := autodiff.New(cpu.New())
			l := rawFromDense(t, left, p.dtype)
			r := rawFromDense(t, right, p.dtype)

			backend.Tape().StartRecording()
			loss := criterion(backend, l, r)
			backend.Tape().StopRecording()

			assertRawClose(t, wantForward, loss, p.tol, "forward")

			grads := backend.Tape().Backward(onesLike(t, loss), backend.Inner())
			if wantLeftGrad != nil {
				require.Contains(t, grads, l, "left operand missing from gradients")
				assertRawClose(t, wantLeftGrad, grads[l], p.tol, "left gradient")
			}
			if wantRightGrad != nil {
				require.Contains(t, grads, r, "right operand missing from gradients")
				assertRawClose(t, wantRightGrad, grads[r], p.tol, "right gradient")
			}
		})
	}
}

// softmaxOracle computes a numerically stable softmax of one lane.
func softmaxOracle(scores []float64) []float64 {
	lse := floats.LogSumExp(scores)
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = math.Exp(s - lse)
	}
	return out
}

// crossEntropyOracle computes loss, score gradient and target gradient
// for one lane of cross entropy with softmax.
func crossEntropyOracle(scores, target []float64) (loss float64, scoresGrad, targetGrad []float64) {
	sm := softmaxOracle(scores)
	lse := floats.LogSumExp(scores)
	targetSum := floats.Sum(target)

	scoresGrad = make([]float64, len(scores))
	targetGrad = make([]float64, len(scores))
	for j := range scores {
		loss += target[j] * (lse - scores[j])
		scoresGrad[j] = sm[j]*targetSum - target[j]
		targetGrad[j] = -scores[j]
	}
	return loss, scoresGrad, targetGrad
}

var targetOutPairs = []struct {
	name   string
	target []float64
	output []float64
}{
	{"one_hot", []float64{0, 0, 0, 1}, []float64{1, 2, 3, 4}},
	{"split_mass", []float64{0, 0, 0.5, 0.5}, []float64{1, 2, 3, 4}},
	{"soft_target", []float64{0, 0.4, 0.3, 0.3}, []float64{2, 1, 1, 4}},
}

func TestCrossEntropyWithSoftmax(t *testing.T) {
	for _, tc := range targetOutPairs {
		t.Run(tc.name, func(t *testing.T) {
			loss, scoresGrad, targetGrad := crossEntropyOracle(tc.output, tc.target)

			checkBinaryCriterion(t,
				func(b *autodiff.AutodiffBackend[*cpu.CPUBackend], left, right *tensor.RawTensor) *tensor.RawTensor {
					return b.CrossEntropyWithSoftmax(left, right, -1)
				},
				dense([]int{1, 4}, tc.output),
				dense([]int{1, 4}, tc.target),
				dense([]int{1, 1}, []float64{loss}),
				dense([]int{1, 4}, scoresGrad),
				dense([]int{1, 4}, targetGrad),
			)
		})
	}
}

var targetOutPairsWithAxis = []struct {
	name   string
	target [][]float64
	output [][]float64
	axis   int
}{
	{"single_row_neg_axis",
		[][]float64{{0, 0, 0, 1}},
		[][]float64{{1, 2, 3, 4}}, -1},
	{"single_row_axis1",
		[][]float64{{0, 0, 0.5, 0.5}},
		[][]float64{{1, 2, 3, 4}}, 1},
	{"soft_target_axis1",
		[][]float64{{0, 0.4, 0.3, 0.3}},
		[][]float64{{2, 1, 1, 4}}, 1},
	{"two_rows",
		[][]float64{{0, 0, 0, 1}, {0, 0, 1, 0}},
		[][]float64{{1, 2, 3, 4}, {1, 2, 3, 5}}, 1},
	{"two_rows_spread",
		[][]float64{{0, 0, 0, 1}, {0, 1, 0, 0}},
		[][]float64{{1, 2, 3, 4}, {1, 7, 3, 5}}, 1},
}

func TestCrossEntropyWithSoftmaxAndAxis(t *testing.T) {
	for _, tc := range targetOutPairsWithAxis {
		t.Run(tc.name, func(t *testing.T) {
			rows := len(tc.output)
			cols := len(tc.output[0])

			output := make([]float64, 0, rows*cols)
			target := make([]float64, 0, rows*cols)
			wantLoss := make([]float64, 0, rows)
			wantScoresGrad := make([]float64, 0, rows*cols)
			wantTargetGrad := make([]float64, 0, rows*cols)

			for row := range tc.output {
				loss, sg, tg := crossEntropyOracle(tc.output[row], tc.target[row])
				output = append(output, tc.output[row]...)
				target = append(target, tc.target[row]...)
				wantLoss = append(wantLoss, loss)
				wantScoresGrad = append(wantScoresGrad, sg...)
				wantTargetGrad = append(wantTargetGrad, tg...)
			}

			axis := tc.axis
			checkBinaryCriterion(t,
				func(b *autodiff.AutodiffBackend[*cpu.CPUBackend], left, right *tensor.RawTensor) *tensor.RawTensor {
					return b.CrossEntropyWithSoftmax(left, right, axis)
				},
				dense([]int{rows, cols}, output),
				dense([]int{rows, cols}, target),
				dense([]int{rows, 1}, wantLoss),
				dense([]int{rows, cols}, wantScoresGrad),
				dense([]int{rows, cols}, wantTargetGrad),
			)
		})
	}
}

func TestSquaredError(t *testing.T) {
	for _, tc := range targetOutPairs {
		t.Run(tc.name, func(t *testing.T) {
			n := len(tc.output)
			var loss float64
			outputGrad := make([]float64, n)
			targetGrad := make([]float64, n)
			for i := range tc.output {
				d := tc.target[i] - tc.output[i]
				loss += d * d
				outputGrad[i] = 2 * (tc.output[i] - tc.target[i])
				targetGrad[i] = -outputGrad[i]
			}

			checkBinaryCriterion(t,
				func(b *autodiff.AutodiffBackend[*cpu.CPUBackend], left, right *tensor.RawTensor) *tensor.RawTensor {
					return b.SquaredError(left, right)
				},
				dense([]int{1, 4}, tc.output),
				dense([]int{1, 4}, tc.target),
				dense([]int{1}, []float64{loss}),
				dense([]int{1, 4}, outputGrad),
				dense([]int{1, 4}, targetGrad),
			)
		})
	}
}

func TestClassificationError(t *testing.T) {
	cases := []struct {
		name    string
		target  []float64
		output  []float64
		topN    int
		wantErr float64
	}{
		// Output argmax is class 3 throughout; knocking out the
		// current argmax walks 3, 2, 1, 0.
		{"top1_miss", []float64{1, 0, 0, 0}, []float64{1, 2, 3, 4}, 1, 1},
		{"top1_hit", []float64{0, 0, 0, 1}, []float64{1, 2, 3, 4}, 1, 0},
		{"top3_hit", []float64{0, 1, 0, 0}, []float64{1, 2, 3, 4}, 3, 0},
		{"top3_miss", []float64{1, 0, 0, 0}, []float64{1, 2, 3, 4}, 3, 1},
	}
	zeros := []float64{0, 0, 0, 0}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			topN := tc.topN
			checkBinaryCriterion(t,
				func(b *autodiff.AutodiffBackend[*cpu.CPUBackend], left, right *tensor.RawTensor) *tensor.RawTensor {
					return b.ClassificationError(left, right, topN, -1)
				},
				dense([]int{1, 4}, tc.output),
				dense([]int{1, 4}, tc.target),
				dense([]int{1}, []float64{tc.wantErr}),
				dense([]int{1, 4}, zeros),
				dense([]int{1, 4}, zeros),
			)
		})
	}
}

func TestClassificationErrorWithAxis(t *testing.T) {
	cases := []struct {
		name    string
		target  [][]float64
		output  [][]float64
		wantErr float64
	}{
		{"half_wrong",
			[][]float64{{0, 1, 0, 0}, {0, 1, 0, 0}},
			[][]float64{{1, 2, 3, 4}, {1, 5, 3, 4}},
			0.5},
		{"one_third_wrong",
			[][]float64{{0, 1, 0, 0}, {0, 0, 1, 0}, {0, 1, 0, 0}},
			[][]float64{{1, 2, 3, 4}, {6, 2, 7, 4}, {1, 5, 3, 4}},
			1.0 / 3.0},
		{"split_target_counts_first_max",
			[][]float64{{0, 0, 0.5, 0.5}, {0, 0, 1, 0}, {0, 1, 0, 0}},
			[][]float64{{1, 2, 3, 4}, {6, 2, 7, 4}, {1, 5, 3, 4}},
			1.0 / 3.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows := len(tc.output)
			cols := len(tc.output[0])
			output := make([]float64, 0, rows*cols)
			target := make([]float64, 0, rows*cols)
			for row := range tc.output {
				output = append(output, tc.output[row]...)
				target = append(target, tc.target[row]...)
			}
			zeros := make([]float64, rows*cols)

			checkBinaryCriterion(t,
				func(b *autodiff.AutodiffBackend[*cpu.CPUBackend], left, right *tensor.RawTensor) *tensor.RawTensor {
					return b.ClassificationError(left, right, 1, 1)
				},
				dense([]int{rows, cols}, output),
				dense([]int{rows, cols}, target),
				dense([]int{1}, []float64{tc.wantErr}),
				dense([]int{rows, cols}, zeros),
				dense([]int{rows, cols}, zeros),
			)
		})
	}
}

// binaryCrossEntropyOracle computes loss and both gradients for one
// element of binary cross entropy.
func binaryCrossEntropyOracle(x, target float64) (loss, predGrad, targetGrad float64) {
	loss = -(target*math.Log(x) + (1-target)*math.Log(1-x))
	predGrad = (x - target) / (x * (1 - x))
	targetGrad = math.Log(1-x) - math.Log(x)
	return loss, predGrad, targetGrad
}

func TestBinaryCrossEntropy(t *testing.T) {
	cases := []struct {
		name       string
		target     []float64
		prediction []float64
	}{
		{"confident", []float64{0, 1, 0, 0}, []float64{0.9, 0.9, 0.0001, 0.0001}},
		{"graded", []float64{0, 0, 1, 1}, []float64{0.2, 0.4, 0.6, 0.8}},
		{"mixed", []float64{0, 0, 1, 0}, []float64{0.8, 0.2, 0.75, 0.3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := len(tc.prediction)
			var loss float64
			predGrad := make([]float64, n)
			targetGrad := make([]float64, n)
			for i := range tc.prediction {
				l, pg, tg := binaryCrossEntropyOracle(tc.prediction[i], tc.target[i])
				loss += l
				predGrad[i] = pg
				targetGrad[i] = tg
			}

			checkBinaryCriterion(t,
				func(b *autodiff.AutodiffBackend[*cpu.CPUBackend], left, right *tensor.RawTensor) *tensor.RawTensor {
					return b.BinaryCrossEntropy(left, right)
				},
				dense([]int{1, 4}, tc.prediction),
				dense([]int{1, 4}, tc.target),
				dense([]int{1}, []float64{loss}),
				dense([]int{1, 4}, predGrad),
				dense([]int{1, 4}, targetGrad),
			)
		})
	}
}

func TestBinaryCrossEntropyRejectsBoundary(t *testing.T) {
	backend := autodiff.New(cpu.New())
	prediction := rawFromDense(t, dense([]int{1, 2}, []float64{0.5, 1.0}), tensor.Float64)
	target := rawFromDense(t, dense([]int{1, 2}, []float64{0, 1}), tensor.Float64)

	assert.Panics(t, func() {
		backend.BinaryCrossEntropy(prediction, target)
	}, "predictions at the unit interval boundary must be rejected")
}

func TestWeightedBinaryCrossEntropy(t *testing.T) {
	target := []float64{0, 1, 0, 0}
	prediction := []float64{0.9, 0.9, 0.0001, 0.0001}
	weight := []float64{1, 2, 3, 4}

	n := len(prediction)
	var loss float64
	predGrad := make([]float64, n)
	targetGrad := make([]float64, n)
	weightGrad := make([]float64, n)
	for i := range prediction {
		l, pg, tg := binaryCrossEntropyOracle(prediction[i], target[i])
		loss += weight[i] * l
		predGrad[i] = weight[i] * pg
		targetGrad[i] = weight[i] * tg
		weightGrad[i] = l
	}

	for _, p := range precisions {
		t.Run(p.name, func(t *testing.T) {
			backend := autodiff.New(cpu.New())
			x := rawFromDense(t, dense([]int{1, 4}, prediction), p.dtype)
			tv := rawFromDense(t, dense([]int{1, 4}, target), p.dtype)
			w := rawFromDense(t, dense([]int{1, 4}, weight), p.dtype)

			backend.Tape().StartRecording()
			result := backend.WeightedBinaryCrossEntropy(x, tv, w)
			backend.Tape().StopRecording()

			assertRawClose(t, dense([]int{1}, []float64{loss}), result, p.tol, "forward")

			grads := backend.Tape().Backward(onesLike(t, result), backend.Inner())
			assertRawClose(t, dense([]int{1, 4}, predGrad), grads[x], p.tol, "prediction gradient")
			assertRawClose(t, dense([]int{1, 4}, targetGrad), grads[tv], p.tol, "target gradient")
			assertRawClose(t, dense([]int{1, 4}, weightGrad), grads[w], p.tol, "weight gradient")
		})
	}
}

// A scalar weight broadcasts over every element; its gradient collapses
// back to a single value.
func TestWeightedBinaryCrossEntropyScalarWeight(t *testing.T) {
	target := []float64{0, 0, 1, 1}
	prediction := []float64{0.2, 0.4, 0.6, 0.8}
	const weightValue = 2.5

	var loss, weightGrad float64
	predGrad := make([]float64, len(prediction))
	for i := range prediction {
		l, pg, _ := binaryCrossEntropyOracle(prediction[i], target[i])
		loss += weightValue * l
		predGrad[i] = weightValue * pg
		weightGrad += l
	}

	backend := autodiff.New(cpu.New())
	x := rawFromDense(t, dense([]int{1, 4}, prediction), tensor.Float64)
	tv := rawFromDense(t, dense([]int{1, 4}, target), tensor.Float64)
	w := rawFromDense(t, dense([]int{1}, []float64{weightValue}), tensor.Float64)

	backend.Tape().StartRecording()
	result := backend.WeightedBinaryCrossEntropy(x, tv, w)
	backend.Tape().StopRecording()

	assert.InDelta(t, loss, result.Float64Value(0), 1e-8)

	grads := backend.Tape().Backward(onesLike(t, result), backend.Inner())
	assertRawClose(t, dense([]int{1, 4}, predGrad), grads[x], 1e-8, "prediction gradient")
	require.Contains(t, grads, w)
	require.Equal(t, 1, grads[w].NumElements())
	assert.InDelta(t, weightGrad, grads[w].Float64Value(0), 1e-8)
}
