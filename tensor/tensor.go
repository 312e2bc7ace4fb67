// Copyright 2025 Weft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/weft-ml/weft/internal/tensor"
)

// Shape represents the dimensions of a tensor; the product of its dimensions
// is the length in floats of the arena slot holding it.
type Shape = tensor.Shape

// Of is a convenience constructor: tensor.Of(2, 3) == Shape{2, 3}.
func Of(dims ...int) Shape {
	return tensor.Of(dims...)
}

// MaxShape computes the element-wise maximum of two shapes of the same rank.
func MaxShape(a, b Shape) (Shape, error) {
	return tensor.MaxShape(a, b)
}
