package engine

import (
	"fmt"
	"math/rand"

	"github.com/weft-ml/weft/internal/tensor"
)

// RandomGradientSource is a test-support input source: every forward pass it
// emits a fresh (rows, cols) matrix of seeded standard-normal draws. Hanging
// one off a ones-valued variable lets optimizer property tests drive an
// arbitrary gradient sequence through the regular step machinery instead of
// poking arena memory by hand. The same seed reproduces the same sequence.
type RandomGradientSource struct {
	baseOperation

	rng  *rand.Rand
	rows int
	cols int
}

// NewRandomGradientSource creates a source emitting (rows, cols) matrices
// drawn from the given seed.
func NewRandomGradientSource(ctx *ExecutionContext, rows, cols int, seed int64) (*RandomGradientSource, error) {
	if rows <= 0 || cols <= 0 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("random source dimensions must be positive, got %dx%d", rows, cols)}
	}

	return &RandomGradientSource{
		baseOperation: newBaseOperation(ctx, nil, nil),
		rng:           rand.New(rand.NewSource(seed)),
		rows:          rows,
		cols:          cols,
	}, nil
}

// ForwardPass fills a forward slot with the next pseudo-random draw.
func (s *RandomGradientSource) ForwardPass() TensorPointer {
	result := s.ctx.AllocateForwardMemory(tensor.Shape{s.rows, s.cols})

	buffer := result.Buffer()
	offset := result.Offset()
	for i := 0; i < result.Length(); i++ {
		buffer[offset+i] = float32(s.rng.NormFloat64())
	}
	return result
}

func (s *RandomGradientSource) LeftBackwardDerivative() TensorPointer {
	return NullPointer
}

func (s *RandomGradientSource) RightBackwardDerivative() TensorPointer {
	return NullPointer
}

func (s *RandomGradientSource) MaxResultShape() tensor.Shape {
	return tensor.Shape{s.rows, s.cols}
}

func (s *RandomGradientSource) ForwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{{s.rows, s.cols}}
}

func (s *RandomGradientSource) BackwardMemoryAllocations() []tensor.Shape {
	return nil
}

func (s *RandomGradientSource) RequiresGradient() bool {
	return false
}

// SampleCount returns the number of rows in each emitted matrix.
func (s *RandomGradientSource) SampleCount() int {
	return s.rows
}
