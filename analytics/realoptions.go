// Copyright 2026 The Forge Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package analytics

import (
	"math"
	"math/rand"
	"time"

	goerrors "gopkg.in/src-d/go-errors.v1"
)

// ErrUnsupportedOptionType names an OptionType RealOptions does not
// recognize.
var ErrUnsupportedOptionType = goerrors.NewKind("unsupported real option type %q")

// ErrUnsupportedMethod names a PricingMethod RealOptions does not
// recognize.
var ErrUnsupportedMethod = goerrors.NewKind("unsupported pricing method %q")

// OptionType is one of §4.6's supported real-option shapes. Defer,
// expand and compound price like a call (the right to act increases
// value as the underlying rises); contract and abandon price like a
// put (the right to act increases value as the underlying falls);
// switch is priced as a call on the better of two operating modes,
// approximated here with a single effective volatility rather than a
// full two-asset exchange-option (Margrabe) model (§9 Open Question,
// recorded in DESIGN.md).
type OptionType string

const (
	OptionDefer    OptionType = "defer"
	OptionExpand   OptionType = "expand"
	OptionContract OptionType = "contract"
	OptionAbandon  OptionType = "abandon"
	OptionSwitch   OptionType = "switch"
	OptionCompound OptionType = "compound"
)

// PricingMethod selects the closed-form, lattice, or simulation pricer
// (§4.6 "Closed-form Black-Scholes ... Cox-Ross-Rubinstein binomial
// tree ... Longstaff-Schwartz Monte Carlo").
type PricingMethod string

const (
	MethodBlackScholes  PricingMethod = "black_scholes"
	MethodBinomial      PricingMethod = "binomial"
	MethodLongstaffSchwartz PricingMethod = "longstaff_schwartz"
)

// RealOptionsOptions is the fully-enumerated option block for the real
// options driver.
type RealOptionsOptions struct {
	Type           OptionType    `yaml:"type"`
	Method         PricingMethod `yaml:"method"`
	Underlying     float64       `yaml:"underlying"`     // S0
	Strike         float64       `yaml:"strike"`          // K (investment/abandonment cost)
	Volatility     float64       `yaml:"volatility"`      // sigma, annualized
	RiskFreeRate   float64       `yaml:"risk_free_rate"`  // r, annualized continuously compounded
	TimeToMaturity float64       `yaml:"time_to_maturity"` // T, years
	DividendYield  float64       `yaml:"dividend_yield"`  // q, continuous
	// Binomial settings (Method == MethodBinomial).
	InitialSteps int `yaml:"initial_steps"`
	MaxSteps     int `yaml:"max_steps"`
	// Longstaff-Schwartz settings (Method == MethodLongstaffSchwartz).
	Paths int    `yaml:"paths"`
	Steps int    `yaml:"steps"`
	Seed  *int64 `yaml:"seed"`
}

// RealOptionsResult is the pricing report.
type RealOptionsResult struct {
	Value        float64
	Method       PricingMethod
	StepsUsed    int // binomial only; 0 otherwise
	Converged    bool
}

// PriceRealOption implements §4.6's real options driver, dispatching to
// the method named in opts.
func PriceRealOption(opts RealOptionsOptions) (*RealOptionsResult, error) {
	isCall, err := isCallLike(opts.Type)
	if err != nil {
		return nil, err
	}
	switch opts.Method {
	case MethodBlackScholes, "":
		v := blackScholes(opts, isCall)
		return &RealOptionsResult{Value: v, Method: MethodBlackScholes}, nil
	case MethodBinomial:
		return binomialCRR(opts, isCall)
	case MethodLongstaffSchwartz:
		v := longstaffSchwartz(opts, isCall)
		return &RealOptionsResult{Value: v, Method: MethodLongstaffSchwartz}, nil
	default:
		return nil, ErrUnsupportedMethod.New(opts.Method)
	}
}

func isCallLike(t OptionType) (bool, error) {
	switch t {
	case OptionDefer, OptionExpand, OptionCompound, OptionSwitch:
		return true, nil
	case OptionContract, OptionAbandon:
		return false, nil
	default:
		return false, ErrUnsupportedOptionType.New(t)
	}
}

// blackScholes prices a European call or put (§4.6 "Closed-form
// Black-Scholes for simple European options").
func blackScholes(o RealOptionsOptions, isCall bool) float64 {
	s, k, sigma, r, t, q := o.Underlying, o.Strike, o.Volatility, o.RiskFreeRate, o.TimeToMaturity, o.DividendYield
	if t <= 0 || sigma <= 0 {
		if isCall {
			return math.Max(s-k, 0)
		}
		return math.Max(k-s, 0)
	}
	d1 := (math.Log(s/k) + (r-q+0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
	d2 := d1 - sigma*math.Sqrt(t)
	if isCall {
		return s*math.Exp(-q*t)*normCDF(d1) - k*math.Exp(-r*t)*normCDF(d2)
	}
	return k*math.Exp(-r*t)*normCDF(-d2) - s*math.Exp(-q*t)*normCDF(-d1)
}

func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// binomialCRR prices an American-exercise option with a Cox-Ross-
// Rubinstein lattice, doubling the step count until successive prices
// converge within 1e-4 or a 2048-step cap is reached (§4.6).
func binomialCRR(o RealOptionsOptions, isCall bool) (*RealOptionsResult, error) {
	n := o.InitialSteps
	if n <= 0 {
		n = 100
	}
	stepCap := o.MaxSteps
	if stepCap <= 0 {
		stepCap = 2048
	}
	prev := crrPrice(o, isCall, n)
	for n < stepCap {
		next := n * 2
		if next > stepCap {
			next = stepCap
		}
		cur := crrPrice(o, isCall, next)
		if math.Abs(cur-prev) < 1e-4 {
			return &RealOptionsResult{Value: cur, Method: MethodBinomial, StepsUsed: next, Converged: true}, nil
		}
		prev = cur
		n = next
		if next == stepCap {
			return &RealOptionsResult{Value: cur, Method: MethodBinomial, StepsUsed: next, Converged: false}, nil
		}
	}
	return &RealOptionsResult{Value: prev, Method: MethodBinomial, StepsUsed: n, Converged: false}, nil
}

func crrPrice(o RealOptionsOptions, isCall bool, n int) float64 {
	s, k, sigma, r, t, q := o.Underlying, o.Strike, o.Volatility, o.RiskFreeRate, o.TimeToMaturity, o.DividendYield
	dt := t / float64(n)
	u := math.Exp(sigma * math.Sqrt(dt))
	d := 1 / u
	disc := math.Exp(-r * dt)
	p := (math.Exp((r-q)*dt) - d) / (u - d)

	prices := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		st := s * math.Pow(u, float64(n-i)) * math.Pow(d, float64(i))
		prices[i] = payoff(st, k, isCall)
	}
	for step := n - 1; step >= 0; step-- {
		for i := 0; i <= step; i++ {
			continuation := disc * (p*prices[i] + (1-p)*prices[i+1])
			st := s * math.Pow(u, float64(step-i)) * math.Pow(d, float64(i))
			prices[i] = math.Max(continuation, payoff(st, k, isCall))
		}
	}
	return prices[0]
}

func payoff(s, k float64, isCall bool) float64 {
	if isCall {
		return math.Max(s-k, 0)
	}
	return math.Max(k-s, 0)
}

// longstaffSchwartz prices a path-dependent American-style option by
// simulating GBM paths, regressing continuation value on in-the-money
// paths with a quadratic basis, and inducting backward from maturity
// (§4.6 "Longstaff-Schwartz Monte Carlo for path-dependent").
func longstaffSchwartz(o RealOptionsOptions, isCall bool) float64 {
	paths := o.Paths
	if paths <= 0 {
		paths = 10000
	}
	steps := o.Steps
	if steps <= 0 {
		steps = 50
	}
	seed := time.Now().UnixNano()
	if o.Seed != nil {
		seed = *o.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	dt := o.TimeToMaturity / float64(steps)
	drift := (o.RiskFreeRate - o.DividendYield - 0.5*o.Volatility*o.Volatility) * dt
	vol := o.Volatility * math.Sqrt(dt)
	disc := math.Exp(-o.RiskFreeRate * dt)

	// levels[i][t] is path i's underlying level at step t (0..steps).
	levels := make([][]float64, paths)
	for i := 0; i < paths; i++ {
		levels[i] = make([]float64, steps+1)
		levels[i][0] = o.Underlying
		for t := 1; t <= steps; t++ {
			z := invNormal(rng.Float64())
			levels[i][t] = levels[i][t-1] * math.Exp(drift+vol*z)
		}
	}

	cashflow := make([]float64, paths)
	for i := 0; i < paths; i++ {
		cashflow[i] = payoff(levels[i][steps], o.Strike, isCall)
	}

	for t := steps - 1; t >= 1; t-- {
		var xs, ys []float64
		var itm []int
		for i := 0; i < paths; i++ {
			cashflow[i] *= disc
			p := payoff(levels[i][t], o.Strike, isCall)
			if p > 0 {
				itm = append(itm, i)
				xs = append(xs, levels[i][t])
				ys = append(ys, cashflow[i])
			}
		}
		if len(itm) < 3 {
			continue
		}
		b0, b1, b2 := quadraticRegression(xs, ys)
		for idx, i := range itm {
			continuation := b0 + b1*xs[idx] + b2*xs[idx]*xs[idx]
			exercise := payoff(levels[i][t], o.Strike, isCall)
			if exercise > continuation {
				cashflow[i] = exercise
			}
		}
	}

	var total float64
	for i := 0; i < paths; i++ {
		total += cashflow[i] * disc
	}
	return total / float64(paths)
}

// quadraticRegression fits y = b0 + b1*x + b2*x^2 by ordinary least
// squares via the normal equations (§4.6's basis for Longstaff-Schwartz
// continuation value).
func quadraticRegression(xs, ys []float64) (b0, b1, b2 float64) {
	n := float64(len(xs))
	var sx, sx2, sx3, sx4, sy, sxy, sx2y float64
	for i := range xs {
		x, y := xs[i], ys[i]
		x2 := x * x
		sx += x
		sx2 += x2
		sx3 += x2 * x
		sx4 += x2 * x2
		sy += y
		sxy += x * y
		sx2y += x2 * y
	}
	// Solve the 3x3 normal-equations system via Cramer's rule.
	a := [3][3]float64{
		{n, sx, sx2},
		{sx, sx2, sx3},
		{sx2, sx3, sx4},
	}
	rhs := [3]float64{sy, sxy, sx2y}
	det := det3(a)
	if det == 0 {
		return 0, 0, 0
	}
	a0 := a
	a0[0], a0[1], a0[2] = [3]float64{rhs[0], a[0][1], a[0][2]}, [3]float64{rhs[1], a[1][1], a[1][2]}, [3]float64{rhs[2], a[2][1], a[2][2]}
	a1 := a
	a1[0], a1[1], a1[2] = [3]float64{a[0][0], rhs[0], a[0][2]}, [3]float64{a[1][0], rhs[1], a[1][2]}, [3]float64{a[2][0], rhs[2], a[2][2]}
	a2 := a
	a2[0], a2[1], a2[2] = [3]float64{a[0][0], a[0][1], rhs[0]}, [3]float64{a[1][0], a[1][1], rhs[1]}, [3]float64{a[2][0], a[2][1], rhs[2]}
	return det3(a0) / det, det3(a1) / det, det3(a2) / det
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}
