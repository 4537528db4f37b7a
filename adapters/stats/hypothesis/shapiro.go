package hypothesis

import (
	"math"
	"sort"

	"abtest/domain/stats"
	"abtest/internal"
	"abtest/internal/errors"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	shapiroMinN = 3
	shapiroMaxN = 5000
)

// Royston (1995) polynomial approximations, algorithm AS R94.
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.5440, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

// ShapiroWilk tests a single sample for normality
type ShapiroWilk struct {
	logger *internal.Logger
}

// NewShapiroWilk creates a Shapiro-Wilk normality test
func NewShapiroWilk(logger *internal.Logger) *ShapiroWilk {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ShapiroWilk{logger: logger}
}

// Name returns the test name
func (s *ShapiroWilk) Name() string {
	return "shapiro_wilk"
}

// Test computes W and its p-value. A p-value below Alpha marks the sample as not normal.
func (s *ShapiroWilk) Test(xs []float64) (stats.CheckResult, error) {
	if len(xs) > shapiroMaxN {
		s.logger.Warn("[ShapiroWilk] n=%d exceeds %d, p-value may not be accurate", len(xs), shapiroMaxN)
	}

	w, p, err := shapiroWilk(xs)
	if err != nil {
		return stats.CheckResult{}, err
	}

	s.logger.Debug("[ShapiroWilk] n=%d W=%.5f p=%.5f", len(xs), w, p)
	return stats.NewCheckResult(stats.CheckNormality, s.Name(), w, p), nil
}

func shapiroWilk(xs []float64) (w, p float64, err error) {
	n := len(xs)
	if n < shapiroMinN {
		return 0, 0, errors.InsufficientData("shapiro-wilk needs at least %d observations, got %d", shapiroMinN, n)
	}

	x := make([]float64, n)
	copy(x, xs)
	sort.Float64s(x)

	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, errors.InvalidInput("shapiro-wilk input contains NaN or Inf")
		}
	}

	lo, rng := x[0], x[n-1]-x[0]
	if rng == 0 {
		return 0, 0, errors.DegenerateSample("shapiro-wilk input has zero range (all %d values equal)", n)
	}

	// Rescale to [0,1] so the sums of squares stay well conditioned.
	mean := 0.0
	for i := range x {
		x[i] = (x[i] - lo) / rng
		mean += x[i]
	}
	mean /= float64(n)

	ss := 0.0
	for _, v := range x {
		ss += (v - mean) * (v - mean)
	}

	a := shapiroCoefficients(n)
	num := 0.0
	for i, ai := range a {
		num += ai * (x[n-1-i] - x[i])
	}

	w = num * num / ss
	if w > 1 {
		w = 1
	}
	return w, shapiroPValue(w, n), nil
}

// shapiroCoefficients returns the upper-half coefficients a_n, a_{n-1}, ...
// The lower half is the mirror image with opposite sign.
func shapiroCoefficients(n int) []float64 {
	half := n / 2
	a := make([]float64, half)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		return a
	}

	an25 := float64(n) + 0.25
	m := make([]float64, half)
	summ2 := 0.0
	for i := range m {
		m[i] = -distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / an25)
		summ2 += m[i] * m[i]
	}
	summ2 *= 2
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(float64(n))

	a1 := poly(swC1, rsn) + m[0]/ssumm2

	var first int
	var fac float64
	if n > 5 {
		first = 2
		a2 := poly(swC2, rsn) + m[1]/ssumm2
		fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
		a[1] = a2
	} else {
		first = 1
		fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
	}
	a[0] = a1
	for i := first; i < half; i++ {
		a[i] = m[i] / fac
	}
	return a
}

func shapiroPValue(w float64, n int) float64 {
	if n == 3 {
		// Exact distribution; W is bounded below by 0.75.
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Pi/3)
		return math.Max(0, math.Min(1, p))
	}

	nf := float64(n)
	w1 := math.Log(1 - w)

	var y, m, s float64
	if n <= 11 {
		gamma := poly(swG, nf)
		if w1 >= gamma {
			return 0
		}
		y = -math.Log(gamma - w1)
		m = poly(swC3, nf)
		s = math.Exp(poly(swC4, nf))
	} else {
		xx := math.Log(nf)
		y = w1
		m = poly(swC5, xx)
		s = math.Exp(poly(swC6, xx))
	}

	return distuv.UnitNormal.Survival((y - m) / s)
}

// poly evaluates c[0] + c[1]x + c[2]x^2 + ...
func poly(c []float64, x float64) float64 {
	r := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		r = r*x + c[i]
	}
	return r
}
