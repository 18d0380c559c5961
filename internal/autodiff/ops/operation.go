// Package ops defines the differentiable operations recorded on the
// gradient tape, including the loss/evaluation operators.
//
// Each operation captures its operands and result during the forward pass
// and knows how to turn the gradient of its result into gradients of its
// operands during the backward pass.
package ops

import "github.com/JinkiJung/CNTK/internal/tensor"

// Operation is one recorded step of the computation graph.
type Operation interface {
	// Backward computes operand gradients given the gradient of the
	// result. The returned slice is parallel to Inputs(); a nil entry
	// means no gradient flows to that operand.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the operand tensors.
	Inputs() []*tensor.RawTensor

	// Output returns the result tensor.
	Output() *tensor.RawTensor
}
