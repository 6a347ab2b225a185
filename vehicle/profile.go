package vehicle

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Breakpoint is a value of a profile at a point in time or space.
type Breakpoint struct {
	At    float64 `json:"at"`
	Value float64 `json:"value"`
}

// Profile is a driving script: throttle as a piecewise linear function of time
// and road slope as a piecewise constant function of position.
type Profile struct {
	// Throttle breakpoints over time in s. Throttle is held at the end values outside the range.
	Throttle []Breakpoint `json:"throttle"`
	// Slope breakpoints over position in m. Each angle, in rad, holds until the next breakpoint;
	// the road is flat before the first one.
	Slope []Breakpoint `json:"slope"`
}

// DefaultProfile returns a 20 s script: throttle ramps from 0.2 to 0.5 over 5 s, holds for 10 s
// and releases to 0 over the last 5 s, while the road climbs 3 m over the first 60 m,
// 9 m over the next 90 m and is flat afterwards.
func DefaultProfile() Profile {
	return Profile{
		Throttle: []Breakpoint{
			{At: 0, Value: 0.2},
			{At: 5, Value: 0.5},
			{At: 15, Value: 0.5},
			{At: 20, Value: 0},
		},
		Slope: []Breakpoint{
			{At: 0, Value: math.Atan(3.0 / 60.0)},
			{At: 60, Value: math.Atan(9.0 / 90.0)},
			{At: 150, Value: 0},
		},
	}
}

// Validate returns error if the profile breakpoints are not strictly increasing
// or throttle is empty or outside [0, 1].
func (p Profile) Validate() error {
	if len(p.Throttle) == 0 {
		return fmt.Errorf("empty throttle profile")
	}

	for i, b := range p.Throttle {
		if b.Value < 0 || b.Value > 1 {
			return fmt.Errorf("invalid throttle at %.3f s: %f", b.At, b.Value)
		}
		if i > 0 && b.At <= p.Throttle[i-1].At {
			return fmt.Errorf("throttle breakpoints not increasing at %d", i)
		}
	}

	for i := 1; i < len(p.Slope); i++ {
		if p.Slope[i].At <= p.Slope[i-1].At {
			return fmt.Errorf("slope breakpoints not increasing at %d", i)
		}
	}

	return nil
}

// ThrottleAt returns throttle at time t.
func (p Profile) ThrottleAt(t float64) float64 {
	bs := p.Throttle
	if len(bs) == 0 {
		return 0
	}

	// first breakpoint past t
	i := sort.Search(len(bs), func(i int) bool { return bs[i].At > t })
	switch i {
	case 0:
		return bs[0].Value
	case len(bs):
		return bs[len(bs)-1].Value
	}

	b0, b1 := bs[i-1], bs[i]
	return b0.Value + (b1.Value-b0.Value)*(t-b0.At)/(b1.At-b0.At)
}

// SlopeAt returns road slope angle at position x.
func (p Profile) SlopeAt(x float64) float64 {
	bs := p.Slope
	i := sort.Search(len(bs), func(i int) bool { return bs[i].At > x })
	if i == 0 {
		return 0
	}

	return bs[i-1].Value
}

// Input returns vehicle input [throttle, slope] at time t for vehicle state x.
// It returns error if x is not a vehicle state.
func (p Profile) Input(t float64, x mat.Vector) (mat.Vector, error) {
	if x == nil || x.Len() != StateDim {
		return nil, fmt.Errorf("invalid state vector")
	}

	return mat.NewVecDense(InputDim, []float64{p.ThrottleAt(t), p.SlopeAt(x.AtVec(Position))}), nil
}
