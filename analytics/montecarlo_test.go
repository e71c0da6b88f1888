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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mollendorff-ai/forge/model"
	"github.com/mollendorff-ai/forge/value"
)

// pvDistributionModel reproduces spec.md §8 scenario #5 end to end: a
// single MC.Normal-backed rate feeding a discounted-cash-flow formula.
func pvDistributionModel() *model.Model {
	return &model.Model{
		Version:   model.DialectFull,
		CellOrder: []string{"r", "pv"},
		Cells: map[string]model.Cell{
			"r":  {Kind: model.CellScalar, Scalar: &model.Scalar{Formula: "=MC.Normal(0.10,0.02)"}},
			"pv": {Kind: model.CellScalar, Scalar: &model.Scalar{Formula: "=1000/(1+r)^5"}},
		},
	}
}

func TestMonteCarloFullDriverReproducibleAtFixedSeed(t *testing.T) {
	seed := int64(42)
	opts := MonteCarloOptions{
		Iterations: 2000,
		Sampling:   SamplingLatinHypercube,
		Seed:       &seed,
		Outputs:    []string{"pv"},
	}
	now := func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	r1, err := MonteCarlo(pvDistributionModel(), opts, now)
	require.NoError(t, err)
	r2, err := MonteCarlo(pvDistributionModel(), opts, now)
	require.NoError(t, err)

	require.Len(t, r1.Summaries, 1)
	require.Equal(t, r1.Summaries, r2.Summaries, "identical seed must reproduce bit-identical P10/P50/P90 (§8 scenario 5)")

	s := r1.Summaries[0]
	require.Equal(t, "pv", s.Output)
	require.True(t, s.P10 < s.P50)
	require.True(t, s.P50 < s.P90)

	// Analytical expected value of 1000*(1+N(0.10,0.02))^-5, via
	// numerical integration of the normal density, as a sanity bound on
	// the simulated mean (§8 "mean within 1e-3 of the analytical
	// expected value ... for a large enough iteration count" — 2000
	// LHS draws land well within a loose bound appropriate for a test,
	// not the full 1e-3 tolerance the spec reserves for large N).
	const muR, sigmaR = 0.10, 0.02
	var weighted, totalWeight float64
	for i := -600; i <= 600; i++ {
		r := muR + sigmaR*float64(i)/200.0
		density := math.Exp(-0.5*((r-muR)/sigmaR)*((r-muR)/sigmaR)) / (sigmaR * math.Sqrt(2*math.Pi))
		weighted += density * 1000 / math.Pow(1+r, 5)
		totalWeight += density
	}
	analyticalMean := weighted / totalWeight
	require.InDelta(t, analyticalMean, s.Mean, 5.0)
}

func TestInverseCDFUniform(t *testing.T) {
	d := &value.Distribution{Name: "Uniform", Params: []float64{10, 20}}
	require.Equal(t, 10.0, inverseCDF(d, 0))
	require.Equal(t, 15.0, inverseCDF(d, 0.5))
	require.InDelta(t, 20.0, inverseCDF(d, 1), 1e-9)
}

func TestInverseCDFNormalMedianIsMean(t *testing.T) {
	d := &value.Distribution{Name: "Normal", Params: []float64{100, 15}}
	require.InDelta(t, 100.0, inverseCDF(d, 0.5), 1e-6)
}

func TestInverseCDFTriangularBoundsAndMode(t *testing.T) {
	d := &value.Distribution{Name: "Triangular", Params: []float64{0, 5, 10}}
	require.InDelta(t, 0.0, inverseCDF(d, 0), 1e-9)
	require.InDelta(t, 10.0, inverseCDF(d, 1), 1e-9)
	// At u equal to the mode's own CDF value, inverseCDF recovers the mode.
	fMode := 0.5 // (5-0)/(10-0)
	require.InDelta(t, 5.0, inverseCDF(d, fMode), 1e-9)
}

func TestInverseCDFLogNormalPositive(t *testing.T) {
	d := &value.Distribution{Name: "LogNormal", Params: []float64{0, 0.25}}
	for _, u := range []float64{0.01, 0.5, 0.99} {
		require.Greater(t, inverseCDF(d, u), 0.0)
	}
}

func TestInverseCDFPERTWithinBounds(t *testing.T) {
	d := &value.Distribution{Name: "PERT", Params: []float64{10, 50, 100}}
	for _, u := range []float64{0.01, 0.25, 0.5, 0.75, 0.99} {
		x := inverseCDF(d, u)
		require.GreaterOrEqual(t, x, 10.0)
		require.LessOrEqual(t, x, 100.0)
	}
	// PERT is monotonic in u.
	prev := math.Inf(-1)
	for u := 0.05; u < 1; u += 0.05 {
		x := inverseCDF(d, u)
		require.GreaterOrEqual(t, x, prev)
		prev = x
	}
}

func TestLatinHypercubeSamplesStrataCoverage(t *testing.T) {
	d := &value.Distribution{Name: "Uniform", Params: []float64{0, 1}}
	rng := rand.New(rand.NewSource(42))
	n := 100
	samples := latinHypercubeSamples(d, n, rng)
	require.Len(t, samples, n)
	// Every stratum [i/n, (i+1)/n) should be hit exactly once across the
	// shuffled sample set (LHS's defining property).
	counts := make([]int, n)
	for _, s := range samples {
		bucket := int(s * float64(n))
		if bucket >= n {
			bucket = n - 1
		}
		counts[bucket]++
	}
	for i, c := range counts {
		require.Equalf(t, 1, c, "stratum %d hit %d times, want exactly 1", i, c)
	}
}
