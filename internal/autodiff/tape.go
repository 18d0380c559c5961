package autodiff

import (
	"github.com/JinkiJung/CNTK/internal/autodiff/ops"
	"github.com/JinkiJung/CNTK/internal/tensor"
)

// GradientTape records operations in execution order so that gradients
// can be computed by walking the recording in reverse.
type GradientTape struct {
	operations []ops.Operation
	recording  bool
}

// NewGradientTape creates a tape that is not yet recording.
func NewGradientTape() *GradientTape {
	return &GradientTape{}
}

// StartRecording enables recording of operations.
func (t *GradientTape) StartRecording() {
	t.recording = true
}

// StopRecording disables recording of operations.
func (t *GradientTape) StopRecording() {
	t.recording = false
}

// IsRecording reports whether operations are currently recorded.
func (t *GradientTape) IsRecording() bool {
	return t.recording
}

// Record appends an operation if the tape is recording.
func (t *GradientTape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// Clear discards all recorded operations.
func (t *GradientTape) Clear() {
	t.operations = t.operations[:0]
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int {
	return len(t.operations)
}

// Backward computes gradients of the last recorded output with respect
// to every tensor on the tape. The seed is the gradient of the final
// output, usually a tensor of ones in its shape. Gradients flowing into
// the same tensor from multiple operations are accumulated.
func (t *GradientTape) Backward(seed *tensor.RawTensor, backend tensor.Backend) map[*tensor.RawTensor]*tensor.RawTensor {
	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	if len(t.operations) == 0 {
		return grads
	}
	grads[t.operations[len(t.operations)-1].Output()] = seed

	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		outputGrad, ok := grads[op.Output()]
		if !ok {
			// Output never contributed to the seed.
			continue
		}
		inputGrads := op.Backward(outputGrad, backend)
		inputs := op.Inputs()
		for j, input := range inputs {
			if inputGrads[j] == nil {
				continue
			}
			if existing, ok := grads[input]; ok {
				grads[input] = backend.Add(existing, inputGrads[j])
			} else {
				grads[input] = inputGrads[j]
			}
		}
	}
	return grads
}
