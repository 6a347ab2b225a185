package sim

import (
	"fmt"

	identify "github.com/milosgajdos/go-identify"
	"gonum.org/v1/gonum/mat"
)

// Euler advances state x of continuous-time system dyn by time step dt given input u
// using explicit Euler integration:
//
//	x[n+1] = x[n] + dt*f(x[n], u[n])
//
// It returns error if dt is not positive, x or u do not match the system dimensions
// or the system derivative fails.
func Euler(dyn identify.Dynamics, x, u mat.Vector, dt float64) (*mat.VecDense, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("invalid time step: %f", dt)
	}

	nx, nu := dyn.SystemDims()
	if x == nil || x.Len() != nx {
		return nil, fmt.Errorf("invalid state vector")
	}

	if u != nil && u.Len() != nu {
		return nil, fmt.Errorf("invalid input vector")
	}

	dx, err := dyn.Derivative(x, u)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate derivative: %w", err)
	}

	out := mat.NewVecDense(nx, nil)
	out.AddScaledVec(x, dt, dx)

	return out, nil
}
