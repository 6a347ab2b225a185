// Package sim runs fixed-step simulations of dynamical systems.
package sim

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	identify "github.com/milosgajdos/go-identify"
	"gonum.org/v1/gonum/mat"
)

// Controller computes system input at time t in state x
type Controller interface {
	// Input returns system input
	Input(t float64, x mat.Vector) (mat.Vector, error)
}

// Run simulates system m from initial state x0 over horizon seconds with fixed time step dt.
// Input is provided by ctl at every step. The trajectory contains the state at the start of
// every step, the first one being x0 at t = 0.
// It returns error if dt or horizon are not positive, ctl fails or the propagation fails.
func Run(m identify.Propagator, ctl Controller, x0 mat.Vector, dt, horizon float64) (*Trajectory, error) {
	if dt <= 0 || horizon <= 0 {
		return nil, fmt.Errorf("invalid simulation time: dt=%f horizon=%f", dt, horizon)
	}

	if x0 == nil || x0.Len() == 0 {
		return nil, fmt.Errorf("invalid initial state: %v", x0)
	}

	steps := int(math.Round(horizon / dt))
	if steps == 0 {
		return nil, fmt.Errorf("horizon %f shorter than time step %f", horizon, dt)
	}

	nx := x0.Len()
	data := mat.NewDense(steps, nx+1, nil)

	x := mat.Vector(mat.VecDenseCopyOf(x0))
	for i := 0; i < steps; i++ {
		t := float64(i) * dt

		data.Set(i, 0, t)
		for j := 0; j < nx; j++ {
			data.Set(i, j+1, x.AtVec(j))
		}

		u, err := ctl.Input(t, x)
		if err != nil {
			return nil, fmt.Errorf("step %d: failed to compute input: %w", i, err)
		}

		x, err = m.Propagate(x, u, nil, dt)
		if err != nil {
			return nil, fmt.Errorf("step %d: propagation failed: %w", i, err)
		}
	}

	return &Trajectory{data: data}, nil
}

// Trajectory is a simulated system trajectory.
// Every row stores time followed by the system state.
type Trajectory struct {
	data *mat.Dense
}

// Len returns number of trajectory samples
func (t *Trajectory) Len() int {
	r, _ := t.data.Dims()
	return r
}

// Times returns sample times
func (t *Trajectory) Times() []float64 {
	return mat.Col(nil, 0, t.data)
}

// State returns values of state element i over time.
// It panics if i is out of range.
func (t *Trajectory) State(i int) []float64 {
	return mat.Col(nil, i+1, t.data)
}

// At returns state at sample i.
// It panics if i is out of range.
func (t *Trajectory) At(i int) mat.Vector {
	row := t.data.RawRowView(i)
	return mat.NewVecDense(len(row)-1, append([]float64(nil), row[1:]...))
}

// Data returns a copy of the trajectory matrix
func (t *Trajectory) Data() *mat.Dense {
	return mat.DenseCopyOf(t.data)
}

// Write writes every sample as a line of space separated time and state elements idx to w.
// It returns error if any of idx is out of range or writing fails.
func (t *Trajectory) Write(w io.Writer, idx ...int) error {
	_, cols := t.data.Dims()
	for _, i := range idx {
		if i < 0 || i+1 >= cols {
			return fmt.Errorf("invalid state index: %d", i)
		}
	}

	bw := bufio.NewWriter(w)
	for r := 0; r < t.Len(); r++ {
		row := t.data.RawRowView(r)
		if _, err := fmt.Fprintf(bw, "%.6f", row[0]); err != nil {
			return err
		}
		for _, i := range idx {
			if _, err := fmt.Fprintf(bw, " %.6f", row[i+1]); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Save writes trajectory samples of state elements idx to file at path.
func (t *Trajectory) Save(path string, idx ...int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trajectory file: %w", err)
	}

	if err := t.Write(f, idx...); err != nil {
		f.Close()
		return fmt.Errorf("failed to write trajectory: %w", err)
	}

	return f.Close()
}
