// Package vehicle implements forward longitudinal dynamics of a vehicle
// driven by an engine through a single gear and a slipping tire.
package vehicle

import (
	"errors"
	"fmt"
	"math"

	"github.com/milosgajdos/go-identify/sim"
	"gonum.org/v1/gonum/mat"
)

// State vector indices
const (
	// Position is longitudinal position in m
	Position = iota
	// Velocity is longitudinal velocity in m/s
	Velocity
	// EngineSpeed is engine angular speed in rad/s
	EngineSpeed
)

// Input vector indices
const (
	// Throttle is throttle position in [0, 1]
	Throttle = iota
	// Slope is road inclination angle in rad
	Slope
)

const (
	// StateDim is state vector length
	StateDim = 3
	// InputDim is input vector length
	InputDim = 2
)

// ErrStalled is returned when the wheel slip is undefined because the vehicle is not moving.
var ErrStalled = errors.New("vehicle velocity is zero: wheel slip undefined")

// Params are physical vehicle parameters.
type Params struct {
	// engine torque map: T = throttle*(A0 + A1*w + A2*w^2)
	A0 float64 `json:"a0"`
	A1 float64 `json:"a1"`
	A2 float64 `json:"a2"`
	// GR is gear ratio from engine to wheel
	GR float64 `json:"gear_ratio"`
	// Re is effective wheel radius, m
	Re float64 `json:"effective_radius"`
	// Je is engine and drivetrain inertia, kg*m^2
	Je float64 `json:"inertia"`
	// M is vehicle mass, kg
	M float64 `json:"mass"`
	// G is gravitational acceleration, m/s^2
	G float64 `json:"gravity"`
	// Ca is aerodynamic drag coefficient
	Ca float64 `json:"aero_drag"`
	// Cr1 is rolling resistance coefficient
	Cr1 float64 `json:"rolling_resistance"`
	// C is tire longitudinal stiffness, N
	C float64 `json:"tire_stiffness"`
	// Fmax is saturated tire force, N
	Fmax float64 `json:"max_tire_force"`
}

// DefaultParams returns parameters of a 2000 kg passenger car.
func DefaultParams() Params {
	return Params{
		A0:   400,
		A1:   0.1,
		A2:   -0.0002,
		GR:   0.35,
		Re:   0.3,
		Je:   10,
		M:    2000,
		G:    9.81,
		Ca:   1.36,
		Cr1:  0.01,
		C:    10000,
		Fmax: 10000,
	}
}

// Validate returns error if any of the parameters makes the dynamics undefined.
func (p Params) Validate() error {
	if p.Je <= 0 {
		return fmt.Errorf("invalid inertia: %f", p.Je)
	}

	if p.M <= 0 {
		return fmt.Errorf("invalid mass: %f", p.M)
	}

	if p.Re <= 0 {
		return fmt.Errorf("invalid effective radius: %f", p.Re)
	}

	if p.GR <= 0 {
		return fmt.Errorf("invalid gear ratio: %f", p.GR)
	}

	return nil
}

// Forces are the forces and torques acting on the vehicle in a given state.
type Forces struct {
	// EngineTorque is engine torque, N*m
	EngineTorque float64
	// Aero is aerodynamic drag, N
	Aero float64
	// Rolling is rolling resistance, N
	Rolling float64
	// Gravity is the gravity component along the road, N
	Gravity float64
	// Load is total load force, N
	Load float64
	// Slip is wheel slip ratio
	Slip float64
	// Tire is tire traction force, N
	Tire float64
}

// Vehicle is a longitudinal vehicle model with state [x, v, w_e] and input [throttle, alpha]
type Vehicle struct {
	p Params
}

// New creates new vehicle model and returns it.
// It returns error if p is invalid.
func New(p Params) (*Vehicle, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &Vehicle{p: p}, nil
}

// Params returns vehicle parameters
func (v *Vehicle) Params() Params {
	return v.p
}

// SystemDims returns state and input vector lengths
func (v *Vehicle) SystemDims() (nx, nu int) {
	return StateDim, InputDim
}

// Forces returns forces acting on the vehicle in state x given input u.
// It returns error if x or u have invalid dimensions or the vehicle is stalled.
func (v *Vehicle) Forces(x, u mat.Vector) (*Forces, error) {
	if x == nil || x.Len() != StateDim {
		return nil, fmt.Errorf("invalid state vector")
	}

	if u == nil || u.Len() != InputDim {
		return nil, fmt.Errorf("invalid input vector")
	}

	vel, we := x.AtVec(Velocity), x.AtVec(EngineSpeed)
	if vel == 0 {
		return nil, ErrStalled
	}

	throttle, alpha := u.AtVec(Throttle), u.AtVec(Slope)

	f := &Forces{
		EngineTorque: throttle * (v.p.A0 + v.p.A1*we + v.p.A2*we*we),
		Aero:         v.p.Ca * vel * vel,
		Rolling:      v.p.Cr1 * vel,
		Gravity:      v.p.M * v.p.G * math.Sin(alpha),
	}
	f.Load = f.Aero + f.Rolling + f.Gravity

	// wheel speed
	ww := v.p.GR * we
	f.Slip = (ww*v.p.Re - vel) / vel

	f.Tire = v.p.Fmax
	if math.Abs(f.Slip) < 1 {
		f.Tire = v.p.C * f.Slip
	}

	return f, nil
}

// Derivative returns time derivative [v, a, dw_e/dt] of state x given input u.
// It returns error if the forces can not be computed.
func (v *Vehicle) Derivative(x, u mat.Vector) (mat.Vector, error) {
	f, err := v.Forces(x, u)
	if err != nil {
		return nil, err
	}

	dx := mat.NewVecDense(StateDim, nil)
	dx.SetVec(Position, x.AtVec(Velocity))
	dx.SetVec(Velocity, (f.Tire-f.Load)/v.p.M)
	dx.SetVec(EngineSpeed, (f.EngineTorque-v.p.GR*v.p.Re*f.Load)/v.p.Je)

	return dx, nil
}

// Propagate propagates state x by time step dt given input u using explicit Euler integration.
// wd is added to the propagated state as process noise.
func (v *Vehicle) Propagate(x, u, wd mat.Vector, dt float64) (mat.Vector, error) {
	xNext, err := sim.Euler(v, x, u, dt)
	if err != nil {
		return nil, err
	}

	if wd != nil && wd.Len() == StateDim {
		xNext.AddVec(xNext, wd)
	}

	return xNext, nil
}

// Observe returns vehicle position given state x.
// wn is added to the output as a noise vector.
func (v *Vehicle) Observe(x, u, wn mat.Vector) (mat.Vector, error) {
	if x == nil || x.Len() != StateDim {
		return nil, fmt.Errorf("invalid state vector")
	}

	out := mat.NewVecDense(1, []float64{x.AtVec(Position)})
	if wn != nil && wn.Len() == 1 {
		out.AddVec(out, wn)
	}

	return out, nil
}
