package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ToSymDense copies the upper triangle of a square matrix m into a new symmetric matrix.
// It returns error if m is nil or not square.
func ToSymDense(m mat.Matrix) (*mat.SymDense, error) {
	if m == nil {
		return nil, fmt.Errorf("invalid matrix: %v", m)
	}

	rows, cols := m.Dims()
	if rows != cols {
		return nil, fmt.Errorf("invalid matrix dimensions: [%d x %d]", rows, cols)
	}

	sym := mat.NewSymDense(rows, nil)
	for i := 0; i < rows; i++ {
		for j := i; j < cols; j++ {
			sym.SetSym(i, j, m.At(i, j))
		}
	}

	return sym, nil
}

// Asymmetry returns the largest absolute difference between mirrored elements of m.
// It panics if m is not square.
func Asymmetry(m mat.Matrix) float64 {
	rows, cols := m.Dims()
	if rows != cols {
		panic(mat.ErrShape)
	}

	var worst float64
	for i := 0; i < rows; i++ {
		for j := i + 1; j < cols; j++ {
			worst = math.Max(worst, math.Abs(m.At(i, j)-m.At(j, i)))
		}
	}

	return worst
}

// IsSymmetric returns true if m is square and its mirrored elements differ at most by tol.
func IsSymmetric(m mat.Matrix, tol float64) bool {
	rows, cols := m.Dims()
	if rows != cols {
		return false
	}

	return Asymmetry(m) <= tol
}

// Diag returns a copy of the diagonal of a square matrix m.
// It panics if m is nil.
func Diag(m mat.Matrix) []float64 {
	rows, cols := m.Dims()
	n := rows
	if cols < n {
		n = cols
	}

	diag := make([]float64, n)
	for i := range diag {
		diag[i] = m.At(i, i)
	}

	return diag
}
