// Package batch implements closed-form least-squares estimators
// over a complete set of linear measurements y = H*x + v.
package batch

import (
	"fmt"

	identify "github.com/milosgajdos/go-identify"
	"github.com/milosgajdos/go-identify/estimate"
	"github.com/milosgajdos/go-identify/matrix"
	mx "github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/mat"
)

// LeastSquares returns the ordinary least-squares solution x minimizing ||H*x - y||.
// The system is solved by QR factorization of H.
// It returns error if H and y dimensions do not match, the system is underdetermined
// or H does not have full column rank.
func LeastSquares(h mat.Matrix, y mat.Vector) (*mat.VecDense, error) {
	if h == nil || y == nil {
		return nil, fmt.Errorf("invalid least squares system: H=%v y=%v", h, y)
	}

	rows, cols := h.Dims()
	if rows != y.Len() {
		return nil, fmt.Errorf("invalid measurement vector dimension: %d != %d", y.Len(), rows)
	}

	if rows < cols {
		return nil, fmt.Errorf("underdetermined system: [%d x %d]", rows, cols)
	}

	x := mat.NewVecDense(cols, nil)
	if err := x.SolveVec(h, y); err != nil {
		return nil, fmt.Errorf("failed to solve least squares: %w", err)
	}

	return x, nil
}

// WithPrior returns the Bayesian batch estimate of x given measurements y = H*x + v,
// independent measurement noise of variance r and Gaussian prior init.
// It solves the information form:
//
//	P = (H'*H/r + P0^-1)^-1
//	x = P * (H'*y/r + P0^-1*x0)
//
// The result equals the recursive least-squares estimate over the same measurements.
// It returns error if dimensions do not match, r is not positive or any of the inverses fail.
func WithPrior(h mat.Matrix, y mat.Vector, r float64, init identify.InitCond) (*estimate.Base, error) {
	if h == nil || y == nil || init == nil {
		return nil, fmt.Errorf("invalid batch system: H=%v y=%v init=%v", h, y, init)
	}

	if r <= 0 {
		return nil, fmt.Errorf("invalid measurement noise variance: %f", r)
	}

	rows, cols := h.Dims()
	if rows != y.Len() {
		return nil, fmt.Errorf("invalid measurement vector dimension: %d != %d", y.Len(), rows)
	}

	x0, p0 := init.State(), init.Cov()
	if x0.Len() != cols || p0.SymmetricDim() != cols {
		return nil, fmt.Errorf("invalid initial condition dimension: %d != %d", x0.Len(), cols)
	}

	// P0^-1
	var chol mat.Cholesky
	if ok := chol.Factorize(p0); !ok {
		return nil, fmt.Errorf("prior covariance is not positive definite")
	}
	p0Inv := mat.NewSymDense(cols, nil)
	if err := chol.InverseTo(p0Inv); err != nil {
		return nil, fmt.Errorf("failed to invert prior covariance: %w", err)
	}

	// information matrix: H'*H/r + P0^-1
	info := &mat.Dense{}
	info.Mul(h.T(), h)
	info.Scale(1/r, info)
	info.Add(info, p0Inv)

	// information vector: H'*y/r + P0^-1*x0
	hy := mat.NewVecDense(cols, nil)
	hy.MulVec(h.T(), y)
	hy.ScaleVec(1/r, hy)
	px := mat.NewVecDense(cols, nil)
	px.MulVec(p0Inv, x0)
	hy.AddVec(hy, px)

	eye, err := mx.NewDenseValIdentity(cols, 1.0)
	if err != nil {
		return nil, err
	}

	cov := &mat.Dense{}
	if err := cov.Solve(info, eye); err != nil {
		return nil, fmt.Errorf("failed to invert information matrix: %w", err)
	}

	x := mat.NewVecDense(cols, nil)
	x.MulVec(cov, hy)

	p, err := matrix.ToSymDense(cov)
	if err != nil {
		return nil, err
	}

	return estimate.NewBaseWithCov(x, p)
}
