// Package nn implements neural network modules.
//
// The package provides the building blocks needed to train models
// against the evaluation criteria:
//   - Module interface: base interface for all components
//   - Parameter: trainable tensors with gradient tracking
//   - Linear: fully connected layer
//   - Criteria: cross entropy with softmax, squared error, binary
//     cross entropy and classification error
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"github.com/JinkiJung/CNTK/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module,
	// including nested module parameters. Modules without trainable
	// parameters return an empty slice.
	Parameters() []*Parameter[B]
}
