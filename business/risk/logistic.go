package risk

import (
	"fmt"
	"math"
)

// Solver constants. The fit is fully deterministic: fixed start, fixed
// iteration cap, fixed tolerance, no randomness anywhere.
const (
	maxIterations  = 25
	convergenceTol = 1e-9
	ridge          = 1e-6 // keeps the Hessian invertible on separable data
)

// Model is the pluggable predictive backend. Callers check Available
// before invoking Fit rather than branching on an error.
type Model interface {
	Available() bool
	Fit(x [][featureDim]float64, y []float64) ([featureDim]float64, error)
}

// logisticModel fits a logistic regression by iteratively reweighted
// least squares, solving each Newton step with Gauss-Jordan inversion.
type logisticModel struct{}

// NewLogisticModel returns the concrete statistical backend.
func NewLogisticModel() Model {
	return logisticModel{}
}

func (logisticModel) Available() bool { return true }

func (logisticModel) Fit(x [][featureDim]float64, y []float64) ([featureDim]float64, error) {
	var beta [featureDim]float64
	if len(x) == 0 || len(x) != len(y) {
		return beta, fmt.Errorf("bad training set: %d rows, %d labels", len(x), len(y))
	}

	for iter := 0; iter < maxIterations; iter++ {
		var hessian [featureDim][featureDim]float64
		var gradient [featureDim]float64

		for i, xi := range x {
			p := sigmoid(dot(beta, xi))
			addWeightedOuter(&hessian, xi, p*(1.0-p))
			addScaled(&gradient, xi, y[i]-p)
		}

		// ridge regularization
		for i := range featureDim {
			hessian[i][i] += ridge
			gradient[i] -= ridge * beta[i]
		}

		inv, err := invertMatrix(hessian)
		if err != nil {
			return beta, fmt.Errorf("newton step: %w", err)
		}
		delta := matVecMul(inv, gradient)

		maxStep := 0.0
		for i := range featureDim {
			beta[i] += delta[i]
			if s := math.Abs(delta[i]); s > maxStep {
				maxStep = s
			}
		}
		if maxStep < convergenceTol {
			break
		}
	}

	return beta, nil
}

// UnavailableModel is the no-op backend for deployments that disable the
// predictive feature. Available reports false; Fit always errors.
type UnavailableModel struct{}

func (UnavailableModel) Available() bool { return false }

func (UnavailableModel) Fit([][featureDim]float64, []float64) ([featureDim]float64, error) {
	return [featureDim]float64{}, fmt.Errorf("predictive backend unavailable")
}
