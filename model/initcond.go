package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// InitCond implements identify.InitCond
type InitCond struct {
	state *mat.VecDense
	cov   *mat.SymDense
}

// NewInitCond creates new InitCond and returns it.
// It returns error if state and cov dimensions do not match.
func NewInitCond(state mat.Vector, cov mat.Symmetric) (*InitCond, error) {
	if state == nil || cov == nil {
		return nil, fmt.Errorf("invalid initial condition: state=%v cov=%v", state, cov)
	}

	if state.Len() != cov.SymmetricDim() {
		return nil, fmt.Errorf("invalid initial condition dimensions: %d != %d", state.Len(), cov.SymmetricDim())
	}

	s := &mat.VecDense{}
	s.CloneFromVec(state)

	c := mat.NewSymDense(cov.SymmetricDim(), nil)
	c.CopySym(cov)

	return &InitCond{
		state: s,
		cov:   c,
	}, nil
}

// NewDiagInitCond creates new InitCond with diagonal covariance var.
func NewDiagInitCond(state, variance []float64) (*InitCond, error) {
	if len(state) != len(variance) {
		return nil, fmt.Errorf("invalid initial condition dimensions: %d != %d", len(state), len(variance))
	}

	cov := mat.NewSymDense(len(variance), nil)
	for i, v := range variance {
		if v < 0 {
			return nil, fmt.Errorf("invalid initial variance: %f", v)
		}
		cov.SetSym(i, i, v)
	}

	return NewInitCond(mat.NewVecDense(len(state), state), cov)
}

// State returns initial state
func (c *InitCond) State() mat.Vector {
	state := mat.NewVecDense(c.state.Len(), nil)
	state.CopyVec(c.state)

	return state
}

// Cov returns initial covariance
func (c *InitCond) Cov() mat.Symmetric {
	cov := mat.NewSymDense(c.cov.SymmetricDim(), nil)
	cov.CopySym(c.cov)

	return cov
}
