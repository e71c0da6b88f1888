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

	"github.com/mollendorff-ai/forge/model"
	"github.com/mollendorff-ai/forge/modeleval"
	"github.com/mollendorff-ai/forge/value"
)

// ErrNoDistributions is returned when a Monte Carlo spec's Model declares
// no MC.* distribution cell to drive the simulation (§4.6 "Monte
// Carlo").
var ErrNoDistributions = goerrors.NewKind("model has no MC.* distribution cells to sample")

// Sampling selects the Monte Carlo driver's draw method (§4.6, §6
// "sampling").
type Sampling string

const (
	SamplingLatinHypercube Sampling = "latin_hypercube"
	SamplingMonteCarlo     Sampling = "monte_carlo"
)

// MonteCarloOptions is the fully-enumerated §6 option block for the Monte
// Carlo driver.
type MonteCarloOptions struct {
	Iterations int      `yaml:"iterations"`
	Sampling   Sampling `yaml:"sampling"`
	Seed       *int64   `yaml:"seed"`
	Outputs    []string `yaml:"outputs"`
}

// MonteCarloSummary is one output cell's reduction over every iteration
// (§4.6 "Reduction: mean, standard deviation, percentiles P10/P50/P90,
// min, max").
type MonteCarloSummary struct {
	Output            string
	Mean, StdDev       float64
	P10, P50, P90      float64
	Min, Max           float64
}

// MonteCarloResult is the full simulation report.
type MonteCarloResult struct {
	Iterations int
	Sampling   Sampling
	Seed       int64
	Summaries  []MonteCarloSummary
}

type distCell struct {
	name string
	dist *value.Distribution
}

// MonteCarlo implements §4.6's Monte Carlo driver: a pre-scan finds every
// MC.* distribution handle, then `opts.Iterations` independent
// re-evaluations each substitute one sampled scalar per distribution
// cell via an override, strictly sequentially (§5 "Determinism over
// parallelism").
func MonteCarlo(m *model.Model, opts MonteCarloOptions, now modeleval.Clock) (*MonteCarloResult, error) {
	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = 10000
	}
	sampling := opts.Sampling
	if sampling == "" {
		sampling = SamplingLatinHypercube
	}
	seed := time.Now().UnixNano()
	if opts.Seed != nil {
		seed = *opts.Seed
	}

	dists, err := preScanDistributions(m, now)
	if err != nil {
		return nil, err
	}
	if len(dists) == 0 {
		return nil, ErrNoDistributions.New()
	}

	rng := rand.New(rand.NewSource(seed))

	// samples[d][i] is the scalar drawn for distribution d on iteration i
	// (§5 "Random sampling uses a seedable RNG whose sequence is consumed
	// in a fixed order").
	samples := make([][]float64, len(dists))
	switch sampling {
	case SamplingMonteCarlo:
		for d := range dists {
			samples[d] = make([]float64, iterations)
		}
		for i := 0; i < iterations; i++ {
			for d, dc := range dists {
				u := rng.Float64()
				samples[d][i] = inverseCDF(dc.dist, u)
			}
		}
	default: // SamplingLatinHypercube
		for d, dc := range dists {
			samples[d] = latinHypercubeSamples(dc.dist, iterations, rng)
		}
	}

	outputData := make(map[string][]float64, len(opts.Outputs))
	for _, out := range opts.Outputs {
		outputData[out] = make([]float64, 0, iterations)
	}
	for i := 0; i < iterations; i++ {
		overrides := make([]model.Override, len(dists))
		for d, dc := range dists {
			overrides[d] = literalOverride(dc.name, samples[d][i])
		}
		cm, _, err := modeleval.EvaluateWithOverrides(m, overrides, now)
		if err != nil {
			return nil, err
		}
		for _, out := range opts.Outputs {
			v, ok := lookupOutput(cm, out)
			if !ok {
				return nil, ErrNoCell.New(out)
			}
			n, k, ok := value.ToNumber(v)
			if !ok {
				return nil, ErrNonNumericOutput.New(out, k)
			}
			outputData[out] = append(outputData[out], n)
		}
	}

	res := &MonteCarloResult{Iterations: iterations, Sampling: sampling, Seed: seed}
	for _, out := range opts.Outputs {
		xs := outputData[out]
		res.Summaries = append(res.Summaries, MonteCarloSummary{
			Output: out,
			Mean:   mean(xs),
			StdDev: stddevPop(xs),
			P10:    percentile(xs, 0.10),
			P50:    percentile(xs, 0.50),
			P90:    percentile(xs, 0.90),
			Min:    minOf(xs),
			Max:    maxOf(xs),
		})
	}
	return res, nil
}

// preScanDistributions runs the base evaluation and collects every
// scalar or group-member cell whose value is an MC.* distribution
// handle, in declaration order (§4.6 "for every cell whose formula
// produced an MC.* distribution handle in a pre-scan evaluation").
func preScanDistributions(m *model.Model, now modeleval.Clock) ([]distCell, error) {
	cm, _, err := modeleval.Evaluate(m, "", now)
	if err != nil {
		return nil, err
	}
	var out []distCell
	for _, name := range cm.CellOrder {
		if v, ok := cm.Scalars[name]; ok && v.IsDistribution() {
			out = append(out, distCell{name: name, dist: v.Distribution()})
			continue
		}
		if g, ok := cm.Groups[name]; ok {
			cell := m.Cells[name]
			if cell.Group == nil {
				continue
			}
			for _, member := range cell.Group.MemberOrder {
				if v, ok := g[member]; ok && v.IsDistribution() {
					out = append(out, distCell{name: name + "." + member, dist: v.Distribution()})
				}
			}
		}
	}
	return out, nil
}

// inverseCDF maps a uniform draw u in [0,1) through the quantile
// function of one MC.* distribution (§4.2 "MC.Normal, MC.Uniform,
// MC.Triangular, MC.PERT, MC.LogNormal").
func inverseCDF(d *value.Distribution, u float64) float64 {
	p := d.Params
	switch d.Name {
	case "Normal":
		meanP, sd := p[0], p[1]
		return meanP + sd*invNormal(u)
	case "Uniform":
		lo, hi := p[0], p[1]
		return lo + u*(hi-lo)
	case "Triangular":
		lo, mode, hi := p[0], p[1], p[2]
		fMode := (mode - lo) / (hi - lo)
		if u < fMode {
			return lo + math.Sqrt(u*(hi-lo)*(mode-lo))
		}
		return hi - math.Sqrt((1-u)*(hi-lo)*(hi-mode))
	case "PERT":
		lo, mode, hi := p[0], p[1], p[2]
		lambda := 4.0
		if len(p) > 3 {
			lambda = p[3]
		}
		alpha := 1 + lambda*(mode-lo)/(hi-lo)
		beta := 1 + lambda*(hi-mode)/(hi-lo)
		x := invIncompleteBeta(u, alpha, beta)
		return lo + x*(hi-lo)
	case "LogNormal":
		muLog, sigmaLog := p[0], p[1]
		return math.Exp(muLog + sigmaLog*invNormal(u))
	default:
		return 0
	}
}

// latinHypercubeSamples stratifies [0,1] into N equal-probability bins,
// draws one uniform per stratum, Fisher-Yates shuffles the draws with
// the same RNG, and maps each through the distribution's quantile
// function (§4.6 "Latin hypercube").
func latinHypercubeSamples(d *value.Distribution, n int, rng *rand.Rand) []float64 {
	us := make([]float64, n)
	for i := 0; i < n; i++ {
		us[i] = (float64(i) + rng.Float64()) / float64(n)
	}
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		us[i], us[j] = us[j], us[i]
	}
	out := make([]float64, n)
	for i, u := range us {
		out[i] = inverseCDF(d, u)
	}
	return out
}
