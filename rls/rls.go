package rls

import (
	"errors"
	"fmt"
	"math"

	identify "github.com/milosgajdos/go-identify"
	"github.com/milosgajdos/go-identify/estimate"
	"github.com/milosgajdos/go-identify/matrix"
	mx "github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/mat"
)

// ErrDegenerate is returned when the innovation covariance is not positive.
var ErrDegenerate = errors.New("degenerate innovation covariance")

// Step performs one recursive least-squares update of the estimate x with covariance p,
// given 1xN observation matrix h, scalar measurement y and measurement noise variance r:
//
//	S  = H*P*H' + r
//	K  = P*H'*S^-1
//	x' = x + K*(y - H*x)
//	P' = (I - K*H)*P
//
// It returns the updated estimate and covariance and never modifies its arguments.
// It returns error if the dimensions do not match, r is not positive or S is not positive.
func Step(x mat.Vector, p mat.Symmetric, h mat.Matrix, y, r float64) (*mat.VecDense, *mat.SymDense, error) {
	u, err := update(x, p, h, y, r, false)
	if err != nil {
		return nil, nil, err
	}

	return u.x, u.p, nil
}

// correction is a result of a single update
type correction struct {
	// x is updated estimate
	x *mat.VecDense
	// p is updated covariance
	p *mat.SymDense
	// k is the gain
	k *mat.VecDense
	// inn is innovation
	inn float64
}

func update(x mat.Vector, p mat.Symmetric, h mat.Matrix, y, r float64, joseph bool) (*correction, error) {
	if x == nil || p == nil || h == nil {
		return nil, fmt.Errorf("invalid update arguments: x=%v p=%v h=%v", x, p, h)
	}

	n := x.Len()
	if p.SymmetricDim() != n {
		return nil, fmt.Errorf("invalid covariance matrix dims: [%d x %d]", p.SymmetricDim(), p.SymmetricDim())
	}

	rows, cols := h.Dims()
	if rows != 1 || cols != n {
		return nil, fmt.Errorf("invalid observation matrix dims: [%d x %d]", rows, cols)
	}

	if !(r > 0) || math.IsInf(r, 0) {
		return nil, fmt.Errorf("invalid measurement noise variance: %f", r)
	}

	hv := mat.NewVecDense(n, mat.Row(nil, 0, h))

	// P*H'
	pht := mat.NewVecDense(n, nil)
	pht.MulVec(p, hv)

	// H*P*H' + r
	s := mat.Dot(hv, pht) + r
	if !(s > 0) || math.IsInf(s, 0) {
		return nil, fmt.Errorf("%w: %f", ErrDegenerate, s)
	}

	// Kalman gain
	k := mat.NewVecDense(n, nil)
	k.ScaleVec(1/s, pht)

	// innovation
	inn := y - mat.Dot(hv, x)

	xNext := mat.NewVecDense(n, nil)
	xNext.AddScaledVec(x, inn, k)

	eye, err := mx.NewDenseValIdentity(n, 1.0)
	if err != nil {
		return nil, err
	}

	// eye - K*H
	a := &mat.Dense{}
	a.Outer(1.0, k, hv)
	a.Sub(eye, a)

	pCorr := &mat.Dense{}
	pCorr.Mul(a, p)

	if joseph {
		apa := &mat.Dense{}
		apa.Mul(pCorr, a.T())
		// K*R*K'
		krk := &mat.Dense{}
		krk.Outer(r, k, k)
		pCorr.Add(apa, krk)
	}

	pNext, err := matrix.ToSymDense(pCorr)
	if err != nil {
		return nil, err
	}

	return &correction{
		x:   xNext,
		p:   pNext,
		k:   k,
		inn: inn,
	}, nil
}

// Option configures RLS
type Option func(*RLS) error

// WithForgetting sets the forgetting factor lambda: covariance is inflated to P/lambda
// before each update which discounts old measurements exponentially.
// lambda must be in (0, 1]; 1 disables forgetting.
func WithForgetting(lambda float64) Option {
	return func(f *RLS) error {
		if !(lambda > 0) || lambda > 1 {
			return fmt.Errorf("invalid forgetting factor: %f", lambda)
		}
		f.lambda = lambda
		return nil
	}
}

// WithJoseph makes RLS update covariance in Joseph form: (I-KH)*P*(I-KH)' + K*r*K'
func WithJoseph() Option {
	return func(f *RLS) error {
		f.joseph = true
		return nil
	}
}

// RLS is recursive least-squares estimator
type RLS struct {
	// m maps input to observation matrix
	m identify.Regressor
	// r is output noise a.k.a. measurement noise
	r identify.Noise
	// init is initial condition
	init identify.InitCond
	// x is parameter estimate
	x *mat.VecDense
	// p is estimate covariance
	p *mat.SymDense
	// k is gain of the last update
	k *mat.VecDense
	// inn is innovation of the last update
	inn float64
	// lambda is forgetting factor
	lambda float64
	// joseph enables Joseph form covariance update
	joseph bool
}

// New creates new RLS and returns it.
// It accepts the following parameters:
//   - m:      measurement model mapping inputs to observation matrices
//   - init:   initial condition i.e. prior estimate and its covariance
//   - wn:     output noise a.k.a. measurement noise
//   - opts:   RLS options
//
// It returns error if either of the following conditions is met:
//   - invalid model is given: model dimensions must be positive and the model must have a single output
//   - initial condition does not match model dimensions
//   - output noise is nil, not scalar or its variance is not positive
func New(m identify.Regressor, init identify.InitCond, wn identify.Noise, opts ...Option) (*RLS, error) {
	if m == nil || init == nil {
		return nil, fmt.Errorf("invalid model or initial condition")
	}

	nx, ny := m.Dims()
	if nx <= 0 || ny != 1 {
		return nil, fmt.Errorf("invalid model dimensions: [%d x %d]", nx, ny)
	}

	if init.State().Len() != nx || init.Cov().SymmetricDim() != nx {
		return nil, fmt.Errorf("invalid initial condition dimension: %d != %d", init.State().Len(), nx)
	}

	if wn == nil || wn.Cov().SymmetricDim() != ny {
		return nil, fmt.Errorf("invalid output noise: %v", wn)
	}

	if r := wn.Cov().At(0, 0); !(r > 0) {
		return nil, fmt.Errorf("invalid output noise variance: %f", r)
	}

	f := &RLS{
		m:      m,
		r:      wn,
		init:   init,
		k:      mat.NewVecDense(nx, nil),
		lambda: 1.0,
	}

	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}

	f.Reset()

	return f, nil
}

// Update corrects the estimate using measurement y of the system output for input u
// and returns the corrected estimate.
// It returns error if either u or y are invalid or the update is degenerate.
func (f *RLS) Update(u, y mat.Vector) (identify.Estimate, error) {
	if y == nil || y.Len() != 1 {
		return nil, fmt.Errorf("invalid measurement supplied: %v", y)
	}

	h, err := f.m.Regressor(u)
	if err != nil {
		return nil, fmt.Errorf("failed to build observation matrix: %w", err)
	}

	var p mat.Symmetric = f.p
	if f.lambda < 1 {
		inflated := mat.NewSymDense(f.p.SymmetricDim(), nil)
		inflated.ScaleSym(1/f.lambda, f.p)
		p = inflated
	}

	c, err := update(f.x, p, h, y.AtVec(0), f.r.Cov().At(0, 0), f.joseph)
	if err != nil {
		return nil, err
	}

	f.x = c.x
	f.p = c.p
	f.k = c.k
	f.inn = c.inn

	return estimate.NewBaseWithCov(f.x, f.p)
}

// Run runs Update over the sequence of inputs us and measurements ys in order
// and returns the final estimate.
// If any of the updates fails, the estimator is restored to its state before Run.
// It returns error if us and ys differ in length, are empty or any of the updates fails.
func (f *RLS) Run(us, ys []mat.Vector) (identify.Estimate, error) {
	if len(us) == 0 || len(us) != len(ys) {
		return nil, fmt.Errorf("invalid measurement sequence: %d inputs, %d measurements", len(us), len(ys))
	}

	// updates replace x, p and k rather than modifying them
	x, p, k, inn := f.x, f.p, f.k, f.inn

	var est identify.Estimate
	for i := range us {
		var err error
		est, err = f.Update(us[i], ys[i])
		if err != nil {
			f.x, f.p, f.k, f.inn = x, p, k, inn
			return nil, fmt.Errorf("update %d failed: %w", i, err)
		}
	}

	return est, nil
}

// Reset resets the estimate and its covariance to the initial condition.
func (f *RLS) Reset() {
	f.x = mat.VecDenseCopyOf(f.init.State())

	p := mat.NewSymDense(f.init.Cov().SymmetricDim(), nil)
	p.CopySym(f.init.Cov())
	f.p = p

	f.k.Zero()
	f.inn = 0
}

// Val returns current parameter estimate
func (f *RLS) Val() mat.Vector {
	return mat.VecDenseCopyOf(f.x)
}

// Model returns RLS measurement model
func (f *RLS) Model() identify.Regressor {
	return f.m
}

// OutputNoise returns output noise
func (f *RLS) OutputNoise() identify.Noise {
	return f.r
}

// Cov returns RLS covariance
func (f *RLS) Cov() mat.Symmetric {
	cov := mat.NewSymDense(f.p.SymmetricDim(), nil)
	cov.CopySym(f.p)

	return cov
}

// SetCov sets RLS covariance matrix to cov.
// It returns error if either cov is nil or its dimensions are not the same as RLS covariance dimensions.
func (f *RLS) SetCov(cov mat.Symmetric) error {
	if cov == nil {
		return fmt.Errorf("invalid covariance matrix: %v", cov)
	}

	if cov.SymmetricDim() != f.p.SymmetricDim() {
		return fmt.Errorf("invalid covariance matrix dims: [%d x %d]", cov.SymmetricDim(), cov.SymmetricDim())
	}

	f.p.CopySym(cov)

	return nil
}

// Gain returns the gain of the last update
func (f *RLS) Gain() mat.Vector {
	return mat.VecDenseCopyOf(f.k)
}

// Innovation returns the innovation of the last update
func (f *RLS) Innovation() float64 {
	return f.inn
}
