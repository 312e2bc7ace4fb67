package engine

import (
	"fmt"

	"github.com/weft-ml/weft/internal/tensor"
)

// MiniBatchInputSource feeds successive row windows of a backing row-major
// matrix into the graph, advancing by one batch per forward pass and wrapping
// around at the end of the data. Two sources constructed with the same row
// count and batch size advance in lockstep, which is how feature and label
// matrices stay paired.
//
// The source also serves as the batch-size divisor for optimizers bound to
// the graph (see InputSource).
type MiniBatchInputSource struct {
	baseOperation

	data      []float32
	rows      int
	cols      int
	batchSize int
	position  int
}

// NewMiniBatchInputSource creates a source over a (rows, cols) matrix that
// emits (batchSize, cols) windows.
func NewMiniBatchInputSource(ctx *ExecutionContext, data []float32, rows, cols, batchSize int) (*MiniBatchInputSource, error) {
	if rows <= 0 || cols <= 0 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("input source dimensions must be positive, got %dx%d", rows, cols)}
	}
	if len(data) != rows*cols {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("input source data has %d elements, %dx%d requires %d",
			len(data), rows, cols, rows*cols)}
	}
	if batchSize < 1 || batchSize > rows {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("batch size %d out of range [1, %d]", batchSize, rows)}
	}

	return &MiniBatchInputSource{
		baseOperation: newBaseOperation(ctx, nil, nil),
		data:          data,
		rows:          rows,
		cols:          cols,
		batchSize:     batchSize,
	}, nil
}

// ForwardPass copies the current batch window into a forward slot and
// advances the window.
func (s *MiniBatchInputSource) ForwardPass() TensorPointer {
	result := s.ctx.AllocateForwardMemory(tensor.Shape{s.batchSize, s.cols})

	buffer := result.Buffer()
	offset := result.Offset()
	for i := 0; i < s.batchSize; i++ {
		row := (s.position + i) % s.rows
		copy(buffer[offset+i*s.cols:offset+(i+1)*s.cols],
			s.data[row*s.cols:(row+1)*s.cols])
	}

	s.position = (s.position + s.batchSize) % s.rows
	return result
}

func (s *MiniBatchInputSource) LeftBackwardDerivative() TensorPointer {
	return NullPointer
}

func (s *MiniBatchInputSource) RightBackwardDerivative() TensorPointer {
	return NullPointer
}

func (s *MiniBatchInputSource) MaxResultShape() tensor.Shape {
	return tensor.Shape{s.batchSize, s.cols}
}

func (s *MiniBatchInputSource) ForwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{{s.batchSize, s.cols}}
}

func (s *MiniBatchInputSource) BackwardMemoryAllocations() []tensor.Shape {
	return nil
}

func (s *MiniBatchInputSource) RequiresGradient() bool {
	return false
}

// SampleCount returns the number of rows in each emitted batch.
func (s *MiniBatchInputSource) SampleCount() int {
	return s.batchSize
}
