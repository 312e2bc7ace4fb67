package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeakyReLU(t *testing.T) {
	x := []float32{-1, 2, -3, 0}
	result := make([]float32, 4)

	LeakyReLU(x, 0, 0.01, result, 0, 4)

	expected := []float32{-0.01, 2, -0.03, 0}
	for i := range expected {
		assert.InDelta(t, expected[i], result[i], 1e-6)
	}
}

func TestLeakyReLUDerivative(t *testing.T) {
	x := []float32{-1, 2, -3}
	grad := []float32{1, 1, 1}
	result := make([]float32, 3)

	LeakyReLUDerivative(x, 0, grad, 0, 0.01, result, 0, 3)

	expected := []float32{0.01, 1, 0.01}
	for i := range expected {
		assert.InDelta(t, expected[i], result[i], 1e-6)
	}
}
