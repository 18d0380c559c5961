package ops

import (
	"fmt"
	"math"

	"github.com/JinkiJung/CNTK/internal/tensor"
)

// BinaryCrossEntropyOp computes the two-class log loss of probability
// predictions against {0,1} (or soft) targets.
//
// Forward:
//
//	loss = -Σ (t·ln x + (1-t)·ln(1-x))
//
// Predictions must lie strictly inside (0, 1); the caller applies a
// sigmoid or clips before invoking the operator.
//
// Backward:
//
//	dL/dx = g · (x - t) / (x(1-x))
//	dL/dt = g · (ln(1-x) - ln x)
type BinaryCrossEntropyOp struct {
	prediction *tensor.RawTensor
	target     *tensor.RawTensor
	result     *tensor.RawTensor
}

// NewBinaryCrossEntropyOp creates the op from the forward results.
func NewBinaryCrossEntropyOp(prediction, target, result *tensor.RawTensor) *BinaryCrossEntropyOp {
	return &BinaryCrossEntropyOp{prediction: prediction, target: target, result: result}
}

// BinaryCrossEntropyForward computes the scalar binary cross-entropy.
func BinaryCrossEntropyForward(prediction, target *tensor.RawTensor, device tensor.Device) *tensor.RawTensor {
	checkBinaryCrossEntropyArgs("binarycrossentropy", prediction, target)

	result := tensor.MustNewRaw(tensor.Shape{1}, prediction.DType(), device)
	var sum float64
	for i := 0; i < prediction.NumElements(); i++ {
		x := prediction.Float64Value(i)
		t := target.Float64Value(i)
		sum -= t*math.Log(x) + (1-t)*math.Log(1-x)
	}
	result.SetFloat64Value(0, sum)
	return result
}

// Backward computes gradients for prediction and target.
func (op *BinaryCrossEntropyOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	g := scalarUpstream(outputGrad)
	predGrad := zerosLike(op.prediction)
	tgtGrad := zerosLike(op.target)

	for i := 0; i < op.prediction.NumElements(); i++ {
		x := op.prediction.Float64Value(i)
		t := op.target.Float64Value(i)
		predGrad.SetFloat64Value(i, g*(x-t)/(x*(1-x)))
		tgtGrad.SetFloat64Value(i, g*(math.Log(1-x)-math.Log(x)))
	}
	return []*tensor.RawTensor{predGrad, tgtGrad}
}

// Inputs returns [prediction, target].
func (op *BinaryCrossEntropyOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.prediction, op.target}
}

// Output returns the scalar loss.
func (op *BinaryCrossEntropyOp) Output() *tensor.RawTensor { return op.result }

// WeightedBinaryCrossEntropyOp is binary cross-entropy with a per-element
// weight, broadcastable to the prediction's shape.
//
// Forward:
//
//	loss = -Σ w · (t·ln x + (1-t)·ln(1-x))
//
// Backward:
//
//	dL/dx = g · w · (x - t) / (x(1-x))
//	dL/dt = g · w · (ln(1-x) - ln x)
//	dL/dw = -g · (t·ln x + (1-t)·ln(1-x)), summed over broadcast dims
type WeightedBinaryCrossEntropyOp struct {
	prediction *tensor.RawTensor
	target     *tensor.RawTensor
	weight     *tensor.RawTensor
	result     *tensor.RawTensor
}

// NewWeightedBinaryCrossEntropyOp creates the op from the forward results.
func NewWeightedBinaryCrossEntropyOp(prediction, target, weight, result *tensor.RawTensor) *WeightedBinaryCrossEntropyOp {
	return &WeightedBinaryCrossEntropyOp{
		prediction: prediction,
		target:     target,
		weight:     weight,
		result:     result,
	}
}

// WeightedBinaryCrossEntropyForward computes the scalar weighted loss.
func WeightedBinaryCrossEntropyForward(prediction, target, weight *tensor.RawTensor, device tensor.Device) *tensor.RawTensor {
	checkBinaryCrossEntropyArgs("weightedbinarycrossentropy", prediction, target)
	if _, _, err := tensor.BroadcastShapes(weight.Shape(), prediction.Shape()); err != nil {
		panic(fmt.Sprintf("weightedbinarycrossentropy: %v", err))
	}

	w := broadcastReader(weight, prediction.Shape())
	result := tensor.MustNewRaw(tensor.Shape{1}, prediction.DType(), device)
	var sum float64
	for i := 0; i < prediction.NumElements(); i++ {
		x := prediction.Float64Value(i)
		t := target.Float64Value(i)
		sum -= w(i) * (t*math.Log(x) + (1-t)*math.Log(1-x))
	}
	result.SetFloat64Value(0, sum)
	return result
}

// Backward computes gradients for prediction, target and weight.
func (op *WeightedBinaryCrossEntropyOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	g := scalarUpstream(outputGrad)
	predGrad := zerosLike(op.prediction)
	tgtGrad := zerosLike(op.target)
	weightGradFull := tensor.MustNewRaw(op.prediction.Shape(), op.prediction.DType(), op.prediction.Device())
	w := broadcastReader(op.weight, op.prediction.Shape())

	for i := 0; i < op.prediction.NumElements(); i++ {
		x := op.prediction.Float64Value(i)
		t := op.target.Float64Value(i)
		predGrad.SetFloat64Value(i, g*w(i)*(x-t)/(x*(1-x)))
		tgtGrad.SetFloat64Value(i, g*w(i)*(math.Log(1-x)-math.Log(x)))
		weightGradFull.SetFloat64Value(i, -g*(t*math.Log(x)+(1-t)*math.Log(1-x)))
	}

	weightGrad := reduceToShape(weightGradFull, op.weight.Shape(), backend)
	return []*tensor.RawTensor{predGrad, tgtGrad, weightGrad}
}

// Inputs returns [prediction, target, weight].
func (op *WeightedBinaryCrossEntropyOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.prediction, op.target, op.weight}
}

// Output returns the scalar loss.
func (op *WeightedBinaryCrossEntropyOp) Output() *tensor.RawTensor { return op.result }

func checkBinaryCrossEntropyArgs(name string, prediction, target *tensor.RawTensor) {
	if !prediction.Shape().Equal(target.Shape()) {
		panic(fmt.Sprintf("%s: prediction shape %v != target shape %v", name, prediction.Shape(), target.Shape()))
	}
	if !prediction.DType().IsFloat() {
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, prediction.DType()))
	}
	for i := 0; i < prediction.NumElements(); i++ {
		if x := prediction.Float64Value(i); x <= 0 || x >= 1 {
			panic(fmt.Sprintf("%s: prediction %g at index %d outside (0, 1)", name, x, i))
		}
	}
}
