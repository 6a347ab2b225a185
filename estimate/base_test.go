package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestNewBase(t *testing.T) {
	assert := assert.New(t)

	val := mat.NewVecDense(2, []float64{4.0, 0.0})
	cov := mat.NewSymDense(2, []float64{9.0, 0.0, 0.0, 0.2})

	b, err := NewBase(val)
	assert.NotNil(b)
	assert.NoError(err)
	assert.Equal(0.0, b.Trace())

	b, err = NewBase(nil)
	assert.Nil(b)
	assert.Error(err)

	b, err = NewBaseWithCov(val, cov)
	assert.NotNil(b)
	assert.NoError(err)

	b, err = NewBaseWithCov(val, mat.NewSymDense(1, []float64{1.0}))
	assert.Nil(b)
	assert.Error(err)

	b, err = NewBaseWithCov(nil, cov)
	assert.Nil(b)
	assert.Error(err)
}

func TestValCov(t *testing.T) {
	assert := assert.New(t)

	val := mat.NewVecDense(2, []float64{1.0, 2.0})
	cov := mat.NewSymDense(2, []float64{1.0, 2.0, 2.0, 4.0})

	b, err := NewBaseWithCov(val, cov)
	assert.NotNil(b)
	assert.NoError(err)

	v := b.Val()
	for i := 0; i < val.Len(); i++ {
		assert.Equal(val.AtVec(i), v.AtVec(i))
	}

	c := b.Cov()
	r, cols := c.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < cols; j++ {
			assert.Equal(cov.At(i, j), c.At(i, j))
		}
	}
	assert.InDelta(5.0, b.Trace(), 1e-12)

	// returned values are copies
	v.(*mat.VecDense).SetVec(0, 100.0)
	assert.Equal(1.0, b.Val().AtVec(0))
}

func TestString(t *testing.T) {
	assert := assert.New(t)

	b, err := NewBaseWithCov(mat.NewVecDense(2, []float64{4, 0}), mat.NewSymDense(2, []float64{9, 0, 0, 0.2}))
	assert.NotNil(b)
	assert.NoError(err)

	str := b.String()
	assert.Contains(str, "Estimate{")
	assert.Contains(str, "Val=")
	assert.Contains(str, "0.2")
}
