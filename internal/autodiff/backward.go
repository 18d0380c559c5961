package autodiff

import (
	"github.com/pkg/errors"

	"github.com/JinkiJung/CNTK/internal/tensor"
)

// ErrNoTape indicates a backward pass was requested on a backend that
// does not record gradients.
var ErrNoTape = errors.New("autodiff: backend has no gradient tape")

// BackwardCapable is satisfied by backends that carry a gradient tape.
type BackwardCapable interface {
	Tape() *GradientTape
}

// GetTape returns the gradient tape of a tensor's backend, or nil if
// the backend does not record gradients.
func GetTape[T tensor.DType, B tensor.Backend](t *tensor.Tensor[T, B]) *GradientTape {
	var backend any = t.Backend()
	if bc, ok := backend.(BackwardCapable); ok {
		return bc.Tape()
	}
	return nil
}

// Backward computes gradients of the given output with respect to every
// tensor recorded on its backend's tape, seeding with ones. Recording is
// stopped for the duration so that accumulation does not extend the
// tape.
func Backward[T tensor.DType, B tensor.Backend](output *tensor.Tensor[T, B]) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	tape := GetTape(output)
	if tape == nil {
		return nil, ErrNoTape
	}
	seed, err := tensor.NewRaw(output.Shape().Clone(), tensor.TypeOf[T](), output.Raw().Device())
	if err != nil {
		return nil, err
	}
	for i := 0; i < seed.Shape().NumElements(); i++ {
		seed.SetFloat64Value(i, 1)
	}
	wasRecording := tape.IsRecording()
	tape.StopRecording()
	defer func() {
		if wasRecording {
			tape.StartRecording()
		}
	}()
	return tape.Backward(seed, accumulator(output.Backend())), nil
}

// accumulator unwraps an AutodiffBackend so that gradient accumulation
// during the backward pass does not get recorded.
func accumulator(b tensor.Backend) tensor.Backend {
	type unwrapper interface {
		InnerBackend() tensor.Backend
	}
	if u, ok := any(b).(unwrapper); ok {
		return u.InnerBackend()
	}
	return b
}
