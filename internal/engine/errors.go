package engine

import (
	"fmt"

	"github.com/weft-ml/weft/internal/tensor"
)

// GraphError reports invalid graph construction or an invalid lifecycle call,
// such as registering the same variable twice or initializing a context that
// is already initialized.
type GraphError struct {
	Reason string
}

func (e *GraphError) Error() string {
	return "graph error: " + e.Reason
}

// ShapeError reports operands whose shapes cannot be combined by an
// operation. It carries both offending shapes.
type ShapeError struct {
	Op    string
	Left  tensor.Shape
	Right tensor.Shape
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: incompatible shapes %v and %v", e.Op, e.Left, e.Right)
}

// ConfigurationError reports an optimizer or input source constructed with
// missing or invalid settings.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}
