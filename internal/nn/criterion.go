package nn

import (
	"github.com/JinkiJung/CNTK/internal/tensor"
)

// CrossEntropyWithSoftmaxLoss computes the cross entropy between the
// softmax of the model scores and a target distribution.
//
// Loss per sample = -sum(target * log softmax(scores)) along the class
// axis. The criterion works on raw scores; softmax is applied
// internally with a numerically stable log-sum-exp.
//
// Example:
//
//	ce := nn.NewCrossEntropyWithSoftmaxLoss(backend, -1)
//	loss := ce.Forward(scores, labels)
type CrossEntropyWithSoftmaxLoss[B tensor.Evaluator] struct {
	backend B
	axis    int
}

// NewCrossEntropyWithSoftmaxLoss creates the criterion reducing along
// the given class axis. Negative axes count from the end.
func NewCrossEntropyWithSoftmaxLoss[B tensor.Evaluator](backend B, axis int) *CrossEntropyWithSoftmaxLoss[B] {
	return &CrossEntropyWithSoftmaxLoss[B]{backend: backend, axis: axis}
}

// Forward computes the per-sample loss with the class axis kept at
// size 1.
func (c *CrossEntropyWithSoftmaxLoss[B]) Forward(scores, target *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	raw := c.backend.CrossEntropyWithSoftmax(scores.Raw(), target.Raw(), c.axis)
	return tensor.New[float32, B](raw, c.backend)
}

// Parameters returns nil; criteria have no trainable parameters.
func (c *CrossEntropyWithSoftmaxLoss[B]) Parameters() []*Parameter[B] {
	return nil
}

// SquaredErrorLoss computes the summed squared difference between the
// model output and the target, as a scalar.
type SquaredErrorLoss[B tensor.Evaluator] struct {
	backend B
}

// NewSquaredErrorLoss creates the criterion.
func NewSquaredErrorLoss[B tensor.Evaluator](backend B) *SquaredErrorLoss[B] {
	return &SquaredErrorLoss[B]{backend: backend}
}

// Forward computes sum((output - target)^2).
func (s *SquaredErrorLoss[B]) Forward(output, target *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	raw := s.backend.SquaredError(output.Raw(), target.Raw())
	return tensor.New[float32, B](raw, s.backend)
}

// Parameters returns nil.
func (s *SquaredErrorLoss[B]) Parameters() []*Parameter[B] {
	return nil
}

// BinaryCrossEntropyLoss computes the summed binary cross entropy of
// predictions strictly inside (0, 1) against binary targets.
type BinaryCrossEntropyLoss[B tensor.Evaluator] struct {
	backend B
}

// NewBinaryCrossEntropyLoss creates the criterion.
func NewBinaryCrossEntropyLoss[B tensor.Evaluator](backend B) *BinaryCrossEntropyLoss[B] {
	return &BinaryCrossEntropyLoss[B]{backend: backend}
}

// Forward computes -sum(t*log(x) + (1-t)*log(1-x)).
func (b *BinaryCrossEntropyLoss[B]) Forward(prediction, target *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	raw := b.backend.BinaryCrossEntropy(prediction.Raw(), target.Raw())
	return tensor.New[float32, B](raw, b.backend)
}

// Parameters returns nil.
func (b *BinaryCrossEntropyLoss[B]) Parameters() []*Parameter[B] {
	return nil
}

// ClassificationErrorMetric reports the fraction of samples whose
// target class is not among the top-N predictions. It is an evaluation
// metric, not a training loss: its gradients are zero.
type ClassificationErrorMetric[B tensor.Evaluator] struct {
	backend B
	topN    int
	axis    int
}

// NewClassificationErrorMetric creates the metric. topN of 1 gives the
// plain error rate.
func NewClassificationErrorMetric[B tensor.Evaluator](backend B, topN, axis int) *ClassificationErrorMetric[B] {
	return &ClassificationErrorMetric[B]{backend: backend, topN: topN, axis: axis}
}

// Forward computes the mean error over the batch as a scalar.
func (c *ClassificationErrorMetric[B]) Forward(output, target *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	raw := c.backend.ClassificationError(output.Raw(), target.Raw(), c.topN, c.axis)
	return tensor.New[float32, B](raw, c.backend)
}

// Parameters returns nil.
func (c *ClassificationErrorMetric[B]) Parameters() []*Parameter[B] {
	return nil
}
