package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Linear is a linear measurement model with unknown slope and offset:
//
//	y = R*u + b
//
// The parameter vector is x = [R, b] and the observation matrix for input u is H = [u, 1].
type Linear struct{}

// NewLinear creates new linear measurement model and returns it.
func NewLinear() *Linear {
	return &Linear{}
}

// Regressor returns 1x2 observation matrix [u, 1] for scalar input u.
// It returns error if u is not a scalar.
func (l *Linear) Regressor(u mat.Vector) (mat.Matrix, error) {
	if u == nil || u.Len() != 1 {
		return nil, fmt.Errorf("invalid input vector: %v", u)
	}

	return mat.NewDense(1, 2, []float64{u.AtVec(0), 1.0}), nil
}

// Observe returns model output H*x for parameters x and input u.
// wn is added to the output as a noise vector.
func (l *Linear) Observe(x, u, wn mat.Vector) (mat.Vector, error) {
	nx, ny := l.Dims()
	if x == nil || x.Len() != nx {
		return nil, fmt.Errorf("invalid parameter vector")
	}

	h, err := l.Regressor(u)
	if err != nil {
		return nil, err
	}

	out := mat.NewVecDense(ny, nil)
	out.MulVec(h, x)

	if wn != nil && wn.Len() == ny {
		out.AddVec(out, wn)
	}

	return out, nil
}

// Dims returns parameter and output dimensions
func (l *Linear) Dims() (nx int, ny int) {
	return 2, 1
}
