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

// Package analytics is the collection of §4.6 Analytics Engines: each one
// drives the Model Evaluator (package modeleval) as a subroutine with
// parameter mutations and aggregates the results. Engines share the
// evaluator by composition, never by inheritance, and never call each
// other (§9 "Analytics engines as drivers").
package analytics

import (
	"math"
	"sort"
	"strings"

	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/mollendorff-ai/forge/model"
	"github.com/mollendorff-ai/forge/modeleval"
	"github.com/mollendorff-ai/forge/value"
)

// ErrNonNumericOutput is returned by any driver whose chosen output cell
// does not coerce to a Number (§4.6 requires numeric outputs throughout).
var ErrNonNumericOutput = goerrors.NewKind("output %q did not resolve to a number: %s")

// ErrNoCell names an input/output cell the driver could not find in the
// Computed Model.
var ErrNoCell = goerrors.NewKind("cell %q not found in model")

// lookupOutput resolves a cell name ("name", "group.member", or
// "table.column") against a Computed Model (§4.4 "Result" shape).
func lookupOutput(cm *modeleval.ComputedModel, name string) (value.Value, bool) {
	if v, ok := cm.Scalars[name]; ok {
		return v, true
	}
	if idx := strings.LastIndex(name, "."); idx > 0 {
		container, member := name[:idx], name[idx+1:]
		if g, ok := cm.Groups[container]; ok {
			if v, ok2 := g[member]; ok2 {
				return v, true
			}
		}
		if t, ok := cm.Tables[container]; ok {
			if col, ok2 := t[member]; ok2 {
				return value.Array(col), true
			}
		}
	}
	if col, ok := cm.Columns[name]; ok {
		return value.Array(col), true
	}
	return value.Value{}, false
}

// outputNumber evaluates a model once with the given overrides and
// returns the named output coerced to float64 (the common shape every
// root-finding and grid driver needs).
func outputNumber(m *model.Model, overrides []model.Override, output string, now modeleval.Clock) (float64, error) {
	cm, _, err := modeleval.EvaluateWithOverrides(m, overrides, now)
	if err != nil {
		return 0, err
	}
	v, ok := lookupOutput(cm, output)
	if !ok {
		return 0, ErrNoCell.New(output)
	}
	n, k, ok := value.ToNumber(v)
	if !ok {
		return 0, ErrNonNumericOutput.New(output, k)
	}
	return n, nil
}

func literalOverride(cell string, v float64) model.Override {
	return model.Override{CellName: cell, HasLiteral: true, LiteralOverride: v}
}

// sortedStringKeys gives deterministic map iteration (§5).
func sortedStringKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// The helpers below are the small statistics primitives the Monte Carlo,
// Bootstrap, Decision Tree and Real Options drivers all need and that
// package eval keeps private to its own PERCENTILE/STDEV implementations
// (§4.6 "Analytics engines ... never call each other" extends to not
// reaching into eval's internals either).

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddevPop(xs []float64) float64 {
	return stddev(xs, 0)
}

func stddevSample(xs []float64) float64 {
	return stddev(xs, 1)
}

func stddev(xs []float64, ddof int) float64 {
	n := len(xs) - ddof
	if n <= 0 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n))
}

// percentile is the Excel PERCENTILE.INC / R-7 linear-interpolation
// definition, matching the one eval's PERCENTILE() function exposes to
// formulas (§4.6 requires these reductions to agree with the formula
// language, not merely with each other).
func percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		lo = 0
	}
	if hi >= len(sorted) {
		hi = len(sorted) - 1
	}
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// invNormal is Peter Acklam's rational approximation to the standard
// normal quantile function, accurate to about 1.15e-9 across (0,1). No
// curated dependency offers an inverse normal CDF, so this, like
// eval's own normInv, is hand-rolled stdlib math (§8 "PERT is sampled
// as a Beta ...", documented in DESIGN.md).
func invNormal(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	if p >= 1 {
		return math.Inf(1)
	}
	const (
		a1 = -3.969683028665376e+01
		a2 = 2.209460984245205e+02
		a3 = -2.759285104469687e+02
		a4 = 1.383577518672690e+02
		a5 = -3.066479806614716e+01
		a6 = 2.506628277459239e+00

		b1 = -5.447609879822406e+01
		b2 = 1.615858368580409e+02
		b3 = -1.556989798598866e+02
		b4 = 6.680131188771972e+01
		b5 = -1.328068155288572e+01

		c1 = -7.784894002430293e-03
		c2 = -3.223964580411365e-01
		c3 = -2.400758277161838e+00
		c4 = -2.549732539343734e+00
		c5 = 4.374664141464968e+00
		c6 = 2.938163982698783e+00

		d1 = 7.784695709041462e-03
		d2 = 3.224671290700398e-01
		d3 = 2.445134137142996e+00
		d4 = 3.754408661907416e+00

		pLow  = 0.02425
		pHigh = 1 - pLow
	)
	switch {
	case p < pLow:
		q := math.Sqrt(-2 * math.Log(p))
		return (((((c1*q+c2)*q+c3)*q+c4)*q+c5)*q + c6) /
			((((d1*q+d2)*q+d3)*q+d4)*q + 1)
	case p <= pHigh:
		q := p - 0.5
		r := q * q
		return (((((a1*r+a2)*r+a3)*r+a4)*r+a5)*r + a6) * q /
			(((((b1*r+b2)*r+b3)*r+b4)*r+b5)*r + 1)
	default:
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((c1*q+c2)*q+c3)*q+c4)*q+c5)*q + c6) /
			((((d1*q+d2)*q+d3)*q+d4)*q + 1)
	}
}

// regularizedIncompleteBeta and the routines below back the PERT/Beta
// quantile needed by Monte Carlo's Latin Hypercube sampler (§4.6 "PERT is
// sampled as a Beta"). No curated dependency exposes a Beta quantile
// function, so this continued-fraction implementation (Numerical
// Recipes' betacf, via math.Lgamma) is the documented stdlib exception.
func regularizedIncompleteBeta(x, a, b float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	lbeta, _ := math.Lgamma(a)
	lbetaB, _ := math.Lgamma(b)
	lbetaAB, _ := math.Lgamma(a + b)
	bt := math.Exp(lbetaAB - lbeta - lbetaB + a*math.Log(x) + b*math.Log(1-x))
	if x < (a+1)/(a+b+2) {
		return bt * betacf(x, a, b) / a
	}
	return 1 - bt*betacf(1-x, b, a)/b
}

func betacf(x, a, b float64) float64 {
	const (
		maxIter = 200
		eps     = 3e-14
		fpMin   = 1e-300
	)
	qab := a + b
	qap := a + 1
	qam := a - 1
	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < fpMin {
		d = fpMin
	}
	d = 1 / d
	h := d
	for m := 1; m <= maxIter; m++ {
		m2 := float64(2 * m)
		aa := float64(m) * (b - float64(m)) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpMin {
			d = fpMin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpMin {
			c = fpMin
		}
		d = 1 / d
		h *= d * c
		aa = -(a + float64(m)) * (qab + float64(m)) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpMin {
			d = fpMin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpMin {
			c = fpMin
		}
		d = 1 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < eps {
			break
		}
	}
	return h
}

// invIncompleteBeta is the Beta(a,b) quantile function, found by
// bisecting regularizedIncompleteBeta the same way analytics'
// bracketedRoot bisects an output curve.
func invIncompleteBeta(p, a, b float64) float64 {
	lo, hi := 0.0, 1.0
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if regularizedIncompleteBeta(mid, a, b) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
