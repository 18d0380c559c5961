package tensor

// Evaluator extends Backend with the evaluation criteria used for
// training and validation. The autodiff decorator implements it; plain
// compute backends do not, since every criterion needs its gradients
// recorded to be useful.
type Evaluator interface {
	Backend

	// CrossEntropyWithSoftmax computes -sum(target * log softmax(scores))
	// along the class axis. The class axis is kept with size 1.
	CrossEntropyWithSoftmax(scores, target *RawTensor, axis int) *RawTensor

	// SquaredError computes sum((output - target)^2) as a scalar.
	SquaredError(output, target *RawTensor) *RawTensor

	// ClassificationError computes the fraction of samples whose target
	// class is missing from the top-N predictions along the axis.
	ClassificationError(output, target *RawTensor, topN, axis int) *RawTensor

	// BinaryCrossEntropy computes the summed binary cross entropy of a
	// prediction strictly inside (0, 1) against a target.
	BinaryCrossEntropy(prediction, target *RawTensor) *RawTensor

	// WeightedBinaryCrossEntropy weights each element's contribution
	// with a tensor broadcastable to the prediction shape.
	WeightedBinaryCrossEntropy(prediction, target, weight *RawTensor) *RawTensor
}
