package nexus

import "fmt"

// Average returns the element-wise mean of vectors. All vectors must share
// one non-zero dimension.
func Average(vectors [][]float64) ([]float64, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("average: no vectors")
	}
	dims := len(vectors[0])
	if dims == 0 {
		return nil, fmt.Errorf("average: vector 0 is empty")
	}
	if len(vectors) == 1 {
		return append([]float64(nil), vectors[0]...), nil
	}
	sum := make([]float64, dims)
	for i, vector := range vectors {
		if len(vector) != dims {
			return nil, fmt.Errorf("average: vector %d has %d dimensions, want %d", i, len(vector), dims)
		}
		for j, value := range vector {
			sum[j] += value
		}
	}
	n := float64(len(vectors))
	for j := range sum {
		sum[j] /= n
	}
	return sum, nil
}
