// Package optim implements optimization algorithms for training.
//
// Provided optimizers:
//   - SGD: stochastic gradient descent with optional momentum
//   - Adam: adaptive moment estimation
//
// Example usage:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.01}, backend)
//
//	for epoch := 0; epoch < epochs; epoch++ {
//	    backend.Tape().StartRecording()
//	    loss := criterion.Forward(model.Forward(input), targets)
//	    grads, _ := autodiff.Backward(loss)
//	    backend.Tape().StopRecording()
//	    backend.Tape().Clear()
//
//	    optimizer.Step(grads)
//	    optimizer.ZeroGrad()
//	}
package optim

import (
	"github.com/JinkiJung/CNTK/internal/nn"
	"github.com/JinkiJung/CNTK/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies gradient updates to all parameters. The map comes
	// from the tape's backward pass; parameters missing from it are
	// skipped.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears all parameter gradients. Call before each
	// backward pass to prevent accumulation across iterations.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float32
}

// getGradient retrieves the gradient for a parameter, or nil when the
// parameter did not take part in the recorded computation.
func getGradient[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	if param == nil {
		return nil
	}
	return grads[param.Tensor().Raw()]
}
