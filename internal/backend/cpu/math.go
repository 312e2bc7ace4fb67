package cpu

// AddVectorToVector computes result = a + b element-wise over length floats.
func AddVectorToVector(a []float32, aOffset int, b []float32, bOffset int, result []float32, resultOffset int, length int) {
	for i := 0; i < length; i++ {
		result[resultOffset+i] = a[aOffset+i] + b[bOffset+i]
	}
}

// SubtractVectorFromVector computes result = a - b element-wise over length floats.
func SubtractVectorFromVector(a []float32, aOffset int, b []float32, bOffset int, result []float32, resultOffset int, length int) {
	for i := 0; i < length; i++ {
		result[resultOffset+i] = a[aOffset+i] - b[bOffset+i]
	}
}

// HadamardProduct computes result = a ⊙ b element-wise over length floats.
func HadamardProduct(a []float32, aOffset int, b []float32, bOffset int, result []float32, resultOffset int, length int) {
	for i := 0; i < length; i++ {
		result[resultOffset+i] = a[aOffset+i] * b[bOffset+i]
	}
}

// ScaleVector computes result = a * scalar over length floats.
func ScaleVector(a []float32, aOffset int, scalar float32, result []float32, resultOffset int, length int) {
	for i := 0; i < length; i++ {
		result[resultOffset+i] = a[aOffset+i] * scalar
	}
}

// BroadcastRows replicates the single (1, cols) row at src across rows rows of dst.
func BroadcastRows(src []float32, srcOffset int, dst []float32, dstOffset int, rows, cols int) {
	for i := 0; i < rows; i++ {
		copy(dst[dstOffset+i*cols:dstOffset+(i+1)*cols], src[srcOffset:srcOffset+cols])
	}
}

// SumRows reduces the (rows, cols) matrix at src along the row dimension into
// the (1, cols) vector at dst.
func SumRows(src []float32, srcOffset int, dst []float32, dstOffset int, rows, cols int) {
	for j := 0; j < cols; j++ {
		dst[dstOffset+j] = 0
	}
	for i := 0; i < rows; i++ {
		row := src[srcOffset+i*cols : srcOffset+(i+1)*cols]
		for j := 0; j < cols; j++ {
			dst[dstOffset+j] += row[j]
		}
	}
}
