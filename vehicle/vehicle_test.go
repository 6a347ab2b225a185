package vehicle

import (
	"errors"
	"math"
	"testing"

	identify "github.com/milosgajdos/go-identify"
	"github.com/milosgajdos/go-identify/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var _ identify.Model = (*Vehicle)(nil)

func TestNew(t *testing.T) {
	assert := assert.New(t)

	v, err := New(DefaultParams())
	assert.NotNil(v)
	assert.NoError(err)
	assert.Equal(DefaultParams(), v.Params())

	nx, nu := v.SystemDims()
	assert.Equal(StateDim, nx)
	assert.Equal(InputDim, nu)

	for _, mutate := range []func(*Params){
		func(p *Params) { p.Je = 0 },
		func(p *Params) { p.M = -1 },
		func(p *Params) { p.Re = 0 },
		func(p *Params) { p.GR = 0 },
	} {
		p := DefaultParams()
		mutate(&p)
		v, err := New(p)
		assert.Nil(v)
		assert.Error(err)
	}
}

func TestForces(t *testing.T) {
	assert := assert.New(t)
	delta := 1e-9

	v, err := New(DefaultParams())
	require.NoError(t, err)

	// flat road, tire in the linear region
	f, err := v.Forces(mat.NewVecDense(3, []float64{0, 10, 100}), mat.NewVecDense(2, []float64{0.2, 0}))
	require.NoError(t, err)
	assert.InDelta(81.6, f.EngineTorque, delta)
	assert.InDelta(136.0, f.Aero, delta)
	assert.InDelta(0.1, f.Rolling, delta)
	assert.InDelta(0.0, f.Gravity, delta)
	assert.InDelta(136.1, f.Load, delta)
	assert.InDelta(0.05, f.Slip, delta)
	assert.InDelta(500.0, f.Tire, delta)

	// uphill, tire saturated
	f, err = v.Forces(mat.NewVecDense(3, []float64{0, 5, 100}), mat.NewVecDense(2, []float64{0.2, math.Atan(0.05)}))
	require.NoError(t, err)
	assert.InDelta(1.1, f.Slip, delta)
	assert.InDelta(10000.0, f.Tire, delta)
	assert.InDelta(1013.8260444391657, f.Load, 1e-6)

	// stalled
	f, err = v.Forces(mat.NewVecDense(3, []float64{0, 0, 100}), mat.NewVecDense(2, []float64{0.2, 0}))
	assert.Nil(f)
	assert.True(errors.Is(err, ErrStalled))

	f, err = v.Forces(mat.NewVecDense(2, nil), mat.NewVecDense(2, nil))
	assert.Nil(f)
	assert.Error(err)

	f, err = v.Forces(mat.NewVecDense(3, []float64{0, 5, 100}), nil)
	assert.Nil(f)
	assert.Error(err)
}

func TestDerivative(t *testing.T) {
	assert := assert.New(t)
	delta := 1e-9

	v, err := New(DefaultParams())
	require.NoError(t, err)

	dx, err := v.Derivative(mat.NewVecDense(3, []float64{0, 10, 100}), mat.NewVecDense(2, []float64{0.2, 0}))
	require.NoError(t, err)
	assert.InDelta(10.0, dx.AtVec(Position), delta)
	assert.InDelta(0.18195, dx.AtVec(Velocity), delta)
	assert.InDelta(6.73095, dx.AtVec(EngineSpeed), delta)

	dx, err = v.Derivative(mat.NewVecDense(3, []float64{0, 5, 100}), mat.NewVecDense(2, []float64{0.2, math.Atan(0.05)}))
	require.NoError(t, err)
	assert.InDelta(4.493086977780417, dx.AtVec(Velocity), 1e-6)
	assert.InDelta(-2.4851734666112377, dx.AtVec(EngineSpeed), 1e-6)

	dx, err = v.Derivative(mat.NewVecDense(3, []float64{0, 0, 100}), mat.NewVecDense(2, nil))
	assert.Nil(dx)
	assert.Error(err)
}

func TestPropagateObserve(t *testing.T) {
	assert := assert.New(t)
	delta := 1e-9

	v, err := New(DefaultParams())
	require.NoError(t, err)

	x := mat.NewVecDense(3, []float64{0, 10, 100})
	u := mat.NewVecDense(2, []float64{0.2, 0})

	xNext, err := v.Propagate(x, u, nil, 0.01)
	require.NoError(t, err)
	assert.InDelta(0.1, xNext.AtVec(Position), delta)
	assert.InDelta(10.0018195, xNext.AtVec(Velocity), delta)
	assert.InDelta(100.0673095, xNext.AtVec(EngineSpeed), delta)

	// process noise
	wd := mat.NewVecDense(3, []float64{1, 0, 0})
	xNext, err = v.Propagate(x, u, wd, 0.01)
	require.NoError(t, err)
	assert.InDelta(1.1, xNext.AtVec(Position), delta)

	xNext, err = v.Propagate(x, u, nil, 0)
	assert.Nil(xNext)
	assert.Error(err)

	y, err := v.Observe(mat.NewVecDense(3, []float64{12.5, 10, 100}), u, nil)
	require.NoError(t, err)
	assert.Equal(12.5, y.AtVec(0))

	y, err = v.Observe(mat.NewVecDense(3, []float64{12.5, 10, 100}), u, mat.NewVecDense(1, []float64{0.5}))
	require.NoError(t, err)
	assert.Equal(13.0, y.AtVec(0))

	y, err = v.Observe(mat.NewVecDense(2, nil), u, nil)
	assert.Nil(y)
	assert.Error(err)
}

func TestSimulateDefault(t *testing.T) {
	assert := assert.New(t)

	v, err := New(DefaultParams())
	require.NoError(t, err)

	x0 := mat.NewVecDense(3, []float64{0, 5, 100})
	traj, err := sim.Run(v, DefaultProfile(), x0, 0.01, 20)
	require.NoError(t, err)
	assert.Equal(2000, traj.Len())

	pos := traj.State(Position)
	for i := 1; i < len(pos); i++ {
		assert.Greater(pos[i], pos[i-1])
	}

	last := traj.At(traj.Len() - 1)
	assert.InDelta(211.8844590250568, last.AtVec(Position), 1e-3)
	assert.InDelta(14.526088809368593, last.AtVec(Velocity), 1e-3)
	assert.InDelta(153.78554327847016, last.AtVec(EngineSpeed), 1e-3)

	mid := traj.At(1000)
	assert.InDelta(96.0088727580525, mid.AtVec(Position), 1e-3)
}
