package nn

import (
	"math"
	"math/rand"
)

// heInit draws Kaiming-style initial weights: zero-mean normal with standard
// deviation sqrt(2 / fanIn), which keeps activation variance stable under
// rectifier nonlinearities.
func heInit(rng *rand.Rand, fanIn, fanOut int) []float32 {
	std := float32(math.Sqrt(2 / float64(fanIn)))
	data := make([]float32, fanIn*fanOut)
	for i := range data {
		data[i] = float32(rng.NormFloat64()) * std
	}
	return data
}
