// Package dataset provides current/voltage measurements for resistance estimation.
package dataset

import (
	"fmt"

	identify "github.com/milosgajdos/go-identify"
	"gonum.org/v1/gonum/mat"
)

// Measurement is a single noise-free current input paired with a noisy voltage observation.
type Measurement struct {
	// Current is input current in A
	Current float64 `json:"current"`
	// Voltage is measured voltage in V
	Voltage float64 `json:"voltage"`
}

// Resistor returns the five documented measurements of a resistor with an unknown offset.
func Resistor() []Measurement {
	return []Measurement{
		{Current: 0.2, Voltage: 1.23},
		{Current: 0.3, Voltage: 1.38},
		{Current: 0.4, Voltage: 2.06},
		{Current: 0.5, Voltage: 2.47},
		{Current: 0.6, Voltage: 3.17},
	}
}

// Regressors stacks observation rows [current, 1] of all measurements into a matrix.
// It returns error if ms is empty.
func Regressors(ms []Measurement) (*mat.Dense, error) {
	if len(ms) == 0 {
		return nil, fmt.Errorf("invalid measurements: %v", ms)
	}

	h := mat.NewDense(len(ms), 2, nil)
	for i, m := range ms {
		h.SetRow(i, []float64{m.Current, 1.0})
	}

	return h, nil
}

// Targets stacks measured voltages into a vector.
// It returns error if ms is empty.
func Targets(ms []Measurement) (*mat.VecDense, error) {
	if len(ms) == 0 {
		return nil, fmt.Errorf("invalid measurements: %v", ms)
	}

	y := mat.NewVecDense(len(ms), nil)
	for i, m := range ms {
		y.SetVec(i, m.Voltage)
	}

	return y, nil
}

// Split returns measurement currents and voltages as sequences of scalar vectors.
func Split(ms []Measurement) (us, ys []mat.Vector) {
	us = make([]mat.Vector, len(ms))
	ys = make([]mat.Vector, len(ms))
	for i, m := range ms {
		us[i] = mat.NewVecDense(1, []float64{m.Current})
		ys[i] = mat.NewVecDense(1, []float64{m.Voltage})
	}

	return us, ys
}

// Synthesize generates measurements of a linear resistor model V = slope*I + offset
// at the given currents, perturbing every voltage with a sample of scalar noise wn.
// It returns error if wn is nil or not scalar.
func Synthesize(slope, offset float64, currents []float64, wn identify.Noise) ([]Measurement, error) {
	if wn == nil || wn.Cov().SymmetricDim() != 1 {
		return nil, fmt.Errorf("invalid measurement noise: %v", wn)
	}

	ms := make([]Measurement, len(currents))
	for i, c := range currents {
		ms[i] = Measurement{
			Current: c,
			Voltage: slope*c + offset + wn.Sample().AtVec(0),
		}
	}

	return ms, nil
}
