// business/risk/math.go
package risk

import (
	"fmt"
	"math"
)

// Feature layout: [bias, prior_seen, prior_concept_points]
const featureDim = 3

func dot(a, b [featureDim]float64) float64 {
	sum := 0.0
	for i := range featureDim {
		sum += a[i] * b[i]
	}
	return sum
}

// y = A * x
func matVecMul(A [featureDim][featureDim]float64, x [featureDim]float64) [featureDim]float64 {
	var y [featureDim]float64
	for i := range featureDim {
		sum := 0.0
		for j := range featureDim {
			sum += A[i][j] * x[j]
		}
		y[i] = sum
	}
	return y
}

// A := A + w * x x^T
func addWeightedOuter(A *[featureDim][featureDim]float64, x [featureDim]float64, w float64) {
	for i := range featureDim {
		for j := range featureDim {
			(*A)[i][j] += w * x[i] * x[j]
		}
	}
}

// b := b + r x
func addScaled(b *[featureDim]float64, x [featureDim]float64, r float64) {
	for i := range featureDim {
		(*b)[i] += r * x[i]
	}
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// Invert a featureDim x featureDim matrix using Gauss-Jordan.
func invertMatrix(A [featureDim][featureDim]float64) ([featureDim][featureDim]float64, error) {
	var aug [featureDim][2 * featureDim]float64

	// Build augmented [A | I]
	for i := range featureDim {
		for j := range featureDim {
			aug[i][j] = A[i][j]
		}
		aug[i][featureDim+i] = 1.0
	}

	// Gauss-Jordan elimination
	for col := range featureDim {
		pivot := aug[col][col]
		if math.Abs(pivot) < 1e-12 {
			return [featureDim][featureDim]float64{}, fmt.Errorf("matrix is singular")
		}

		// Normalize pivot row
		for j := range 2 * featureDim {
			aug[col][j] /= pivot
		}

		// Eliminate other rows
		for i := range featureDim {
			if i == col {
				continue
			}
			factor := aug[i][col]
			for j := range 2 * featureDim {
				aug[i][j] -= factor * aug[col][j]
			}
		}
	}

	// Extract inverse
	var inv [featureDim][featureDim]float64
	for i := range featureDim {
		for j := range featureDim {
			inv[i][j] = aug[i][featureDim+j]
		}
	}
	return inv, nil
}
