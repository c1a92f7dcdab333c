// Package armodel fits an autoregressive model to a waveform via the
// autocorrelation normal equations and reports discrete-system stability
// from the pole locations. The solver degrades gracefully: the Toeplitz
// system is ridge-regularized, an ill-conditioned system falls back to a
// least-squares solve, and a constant input short-circuits to an explicitly
// flagged degenerate result instead of entering the solver.
package armodel

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/internal/config"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/mathutil"
	"github.com/DavidGostincar10342019/ekgsignals-be-sub001/pkg/wave"
)

// Status reports how the fit concluded.
type Status int

const (
	// StatusOK means the model was fit normally.
	StatusOK Status = iota
	// StatusInsufficient means too few samples for any fit.
	StatusInsufficient
	// StatusDegenerate means the input was constant or the system unsolvable;
	// the model is a flagged trivial result, not discarded.
	StatusDegenerate
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInsufficient:
		return "insufficient_data"
	default:
		return "degenerate"
	}
}

// Model is an autoregressive fit x[n] = sum_k a_k x[n-k] + e[n].
type Model struct {
	Status          Status         `json:"status"`
	Order           int            `json:"order"`
	Coefficients    []float64      `json:"coefficients,omitempty"`
	Poles           []complex128   `json:"-"`
	Zeros           []complex128   `json:"-"`
	PoleMagnitudes  []float64      `json:"pole_magnitudes,omitempty"`
	Stable          bool           `json:"stable"`
	ConditionNumber mathutil.Float `json:"condition_number"`
	UsedLeastSquares bool          `json:"used_least_squares"`
}

// Fit estimates an AR model of adaptive order min(maxOrder, N/4).
func Fit(w *wave.Waveform, cfg config.AnalysisConfig) Model {
	undef := mathutil.Float(math.NaN())
	if w == nil || w.Len() < cfg.MinSamplesForFit {
		return Model{Status: StatusInsufficient, ConditionNumber: undef}
	}
	if w.IsNearConstant() {
		// The normal equations of a constant signal are singular; report the
		// trivial system, which is stable by construction.
		return Model{Status: StatusDegenerate, Stable: true, ConditionNumber: undef}
	}

	n := w.Len()
	p := cfg.ARMaxOrder
	if n/4 < p {
		p = n / 4
	}
	if p < 1 {
		return Model{Status: StatusInsufficient, ConditionNumber: undef}
	}

	r := autocorrelation(w.Samples, p)
	coeffs, cond, usedLS, ok := solveNormalEquations(r, p, cfg)
	if !ok {
		return Model{Status: StatusDegenerate, Order: p, ConditionNumber: mathutil.Float(cond)}
	}

	poles := characteristicRoots(coeffs)
	if len(poles) == 0 {
		return Model{Status: StatusDegenerate, Order: p, Coefficients: coeffs, ConditionNumber: mathutil.Float(cond), UsedLeastSquares: usedLS}
	}
	model := Model{
		Status:           StatusOK,
		Order:            p,
		Coefficients:     coeffs,
		Poles:            poles,
		Zeros:            make([]complex128, 0), // all-pole model
		ConditionNumber:  mathutil.Float(cond),
		UsedLeastSquares: usedLS,
	}

	model.Stable = true
	model.PoleMagnitudes = make([]float64, len(poles))
	for i, pole := range poles {
		m := cmplx.Abs(pole)
		model.PoleMagnitudes[i] = m
		if m >= 1.0-cfg.StabilityEpsilon {
			model.Stable = false
		}
	}
	return model
}

// autocorrelation returns the biased estimate r[0..lag].
func autocorrelation(x []float64, lag int) []float64 {
	n := len(x)
	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	r := make([]float64, lag+1)
	for k := 0; k <= lag; k++ {
		var sum float64
		for i := 0; i < n-k; i++ {
			sum += (x[i] - mean) * (x[i+k] - mean)
		}
		r[k] = sum / float64(n)
	}
	return r
}

// solveNormalEquations builds the ridge-regularized Toeplitz system
// R a = r[1..p] and solves it by Cholesky. If the condition number exceeds
// the configured limit, or the factorization fails, it falls back to a
// QR least-squares solve of the same system.
func solveNormalEquations(r []float64, p int, cfg config.AnalysisConfig) (coeffs []float64, cond float64, usedLS, ok bool) {
	ridge := cfg.ARRidgeFraction * r[0]
	if ridge <= 0 {
		ridge = 1e-12
	}

	dense := mat.NewDense(p, p, nil)
	sym := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			v := r[j-i]
			if i == j {
				v += ridge
			}
			sym.SetSym(i, j, v)
			dense.Set(i, j, v)
			dense.Set(j, i, v)
		}
	}
	b := mat.NewVecDense(p, r[1:p+1])

	cond = mat.Cond(dense, 2)

	var sol mat.VecDense
	if cond <= cfg.ARConditionLimit {
		var chol mat.Cholesky
		if chol.Factorize(sym) {
			if err := chol.SolveVecTo(&sol, b); err == nil {
				return vecSlice(&sol), cond, false, true
			}
		}
	}

	// Ill-conditioned: least-squares solution via QR.
	var qr mat.QR
	qr.Factorize(dense)
	if err := qr.SolveVecTo(&sol, false, b); err != nil {
		return nil, cond, true, false
	}
	return vecSlice(&sol), cond, true, true
}

// characteristicRoots returns the roots of z^p - a1 z^(p-1) - ... - ap,
// computed as the eigenvalues of the companion matrix.
func characteristicRoots(coeffs []float64) []complex128 {
	p := len(coeffs)
	if p == 0 {
		return nil
	}
	if p == 1 {
		return []complex128{complex(coeffs[0], 0)}
	}

	companion := mat.NewDense(p, p, nil)
	for j, a := range coeffs {
		companion.Set(0, j, a)
	}
	for i := 1; i < p; i++ {
		companion.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if !eig.Factorize(companion, mat.EigenNone) {
		return nil
	}
	return eig.Values(nil)
}

func vecSlice(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
