package batch

import (
	"testing"

	"github.com/milosgajdos/go-identify/dataset"
	"github.com/milosgajdos/go-identify/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestLeastSquares(t *testing.T) {
	assert := assert.New(t)
	delta := 1e-9

	ms := dataset.Resistor()
	h, err := dataset.Regressors(ms)
	require.NoError(t, err)
	y, err := dataset.Targets(ms)
	require.NoError(t, err)

	x, err := LeastSquares(h, y)
	assert.NoError(err)
	assert.InDelta(4.97, x.AtVec(0), delta)
	assert.InDelta(0.074, x.AtVec(1), delta)

	// dimension mismatch
	x, err = LeastSquares(h, mat.NewVecDense(3, nil))
	assert.Nil(x)
	assert.Error(err)

	// underdetermined
	x, err = LeastSquares(mat.NewDense(1, 2, []float64{0.2, 1.0}), mat.NewVecDense(1, []float64{1.23}))
	assert.Nil(x)
	assert.Error(err)

	x, err = LeastSquares(nil, y)
	assert.Nil(x)
	assert.Error(err)
}

func TestWithPrior(t *testing.T) {
	assert := assert.New(t)
	delta := 1e-9

	ms := dataset.Resistor()
	h, err := dataset.Regressors(ms)
	require.NoError(t, err)
	y, err := dataset.Targets(ms)
	require.NoError(t, err)

	init, err := model.NewDiagInitCond([]float64{4.0, 0.0}, []float64{9.0, 0.2})
	require.NoError(t, err)

	est, err := WithPrior(h, y, 0.0225, init)
	assert.NoError(err)
	assert.InDelta(4.976925034352895, est.Val().AtVec(0), delta)
	assert.InDelta(0.069662578248259, est.Val().AtVec(1), delta)
	assert.InDelta(0.220408163265306, est.Trace(), delta)

	// a diffuse prior approaches ordinary least squares
	diffuse, err := model.NewDiagInitCond([]float64{4.0, 0.0}, []float64{1e4, 1e4})
	require.NoError(t, err)
	est, err = WithPrior(h, y, 0.0225, diffuse)
	assert.NoError(err)
	assert.InDelta(4.97, est.Val().AtVec(0), 1e-3)
	assert.InDelta(0.074, est.Val().AtVec(1), 1e-3)

	// invalid noise variance
	est, err = WithPrior(h, y, 0.0, init)
	assert.Nil(est)
	assert.Error(err)

	// prior dimension mismatch
	bad, err := model.NewDiagInitCond([]float64{4.0}, []float64{9.0})
	require.NoError(t, err)
	est, err = WithPrior(h, y, 0.0225, bad)
	assert.Nil(est)
	assert.Error(err)

	// singular prior
	singular, err := model.NewDiagInitCond([]float64{4.0, 0.0}, []float64{9.0, 0.0})
	require.NoError(t, err)
	est, err = WithPrior(h, y, 0.0225, singular)
	assert.Nil(est)
	assert.Error(err)
}
