package identify

import "gonum.org/v1/gonum/mat"

// Estimator is a recursive parameter estimator.
type Estimator interface {
	// Update corrects the estimate using input u and measurement y
	Update(u, y mat.Vector) (Estimate, error)
	// Run runs Update over a sequence of inputs and measurements
	Run(us, ys []mat.Vector) (Estimate, error)
}

// Regressor maps system input to an observation matrix
type Regressor interface {
	// Regressor returns observation matrix for input u
	Regressor(u mat.Vector) (mat.Matrix, error)
	// Dims returns parameter and output dimensions of the model
	Dims() (nx int, ny int)
}

// Propagator propagates internal state of the system to the next step
type Propagator interface {
	// Propagate propagates internal state of the system to the next step
	Propagate(x, u, wd mat.Vector, dt float64) (mat.Vector, error)
}

// Observer observes external state (output) of the system
type Observer interface {
	// Observe observes external state of the system
	Observe(x, u, wn mat.Vector) (mat.Vector, error)
}

// Dynamics is a continuous-time dynamical system
type Dynamics interface {
	// Derivative returns the time derivative of state x given input u
	Derivative(x, u mat.Vector) (mat.Vector, error)
	// SystemDims returns state and input dimensions
	SystemDims() (nx int, nu int)
}

// Model is a model of a continuous-time dynamical system
type Model interface {
	// Dynamics is system dynamics
	Dynamics
	// Propagator is system propagator
	Propagator
	// Observer is system observer
	Observer
}

// InitCond is initial condition of the estimator
type InitCond interface {
	// State returns initial state
	State() mat.Vector
	// Cov returns initial state covariance
	Cov() mat.Symmetric
}

// Estimate is an estimate of system parameters or state
type Estimate interface {
	// Val returns estimate value
	Val() mat.Vector
	// Cov returns estimate covariance
	Cov() mat.Symmetric
}

// Noise is measurement or process noise
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns covariance matrix of the noise
	Cov() mat.Symmetric
	// Sample returns a sample of the noise
	Sample() mat.Vector
	// Reset resets the noise
	Reset() error
}
