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
	"math/rand"
	"time"

	goerrors "gopkg.in/src-d/go-errors.v1"
)

// ErrEmptySample is returned when Bootstrap is given no data to resample.
var ErrEmptySample = goerrors.NewKind("bootstrap sample is empty")

// ErrUnknownStatistic names a Statistic value Bootstrap does not
// recognize.
var ErrUnknownStatistic = goerrors.NewKind("unknown bootstrap statistic %q")

// Statistic is one of the reductions Bootstrap can resample (§4.6
// "Bootstrap").
type Statistic string

const (
	StatMean       Statistic = "mean"
	StatMedian     Statistic = "median"
	StatStdDev     Statistic = "std"
	StatVariance   Statistic = "var"
	StatPercentile Statistic = "percentile"
	StatMin        Statistic = "min"
	StatMax        Statistic = "max"
)

// BootstrapOptions configures a bootstrap resampling run.
type BootstrapOptions struct {
	Sample              []float64 `yaml:"sample"`
	Statistic           Statistic `yaml:"statistic"`
	PercentileParam     float64   `yaml:"percentile"` // used when Statistic == StatPercentile
	Iterations          int       `yaml:"iterations"`
	Seed                *int64    `yaml:"seed"`
	ConfidenceLevels    []float64 `yaml:"confidence_levels"` // e.g. 0.90, 0.95
}

// BootstrapResult is §4.6's report: the original estimate, the bootstrap
// mean and standard error, bias, and one percentile confidence interval
// per requested level.
type BootstrapResult struct {
	Original        float64
	BootstrapMean   float64
	StandardError   float64
	Bias            float64
	Iterations      int
	Seed            int64
	ConfidenceIntervals map[float64][2]float64
}

// Bootstrap implements §4.6's bootstrap driver: draw n indices with
// replacement `Iterations` times, compute the chosen statistic each
// time, and report the resampling distribution's summary.
func Bootstrap(opts BootstrapOptions) (*BootstrapResult, error) {
	if len(opts.Sample) == 0 {
		return nil, ErrEmptySample.New()
	}
	stat, err := statisticFunc(opts.Statistic, opts.PercentileParam)
	if err != nil {
		return nil, err
	}
	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = 10000
	}
	seed := time.Now().UnixNano()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	n := len(opts.Sample)
	original := stat(opts.Sample)
	estimates := make([]float64, iterations)
	resample := make([]float64, n)
	for i := 0; i < iterations; i++ {
		for j := 0; j < n; j++ {
			idx := rng.Intn(n)
			resample[j] = opts.Sample[idx]
		}
		estimates[i] = stat(resample)
	}

	bMean := mean(estimates)
	res := &BootstrapResult{
		Original:      original,
		BootstrapMean: bMean,
		StandardError: stddevSample(estimates),
		Bias:          bMean - original,
		Iterations:    iterations,
		Seed:          seed,
		ConfidenceIntervals: map[float64][2]float64{},
	}
	for _, level := range opts.ConfidenceLevels {
		alpha := (1 - level) / 2
		res.ConfidenceIntervals[level] = [2]float64{
			percentile(estimates, alpha),
			percentile(estimates, 1-alpha),
		}
	}
	return res, nil
}

func statisticFunc(s Statistic, p float64) (func([]float64) float64, error) {
	switch s {
	case StatMean:
		return mean, nil
	case StatMedian:
		return func(xs []float64) float64 { return percentile(xs, 0.5) }, nil
	case StatStdDev:
		return stddevSample, nil
	case StatVariance:
		return func(xs []float64) float64 { v := stddevSample(xs); return v * v }, nil
	case StatPercentile:
		return func(xs []float64) float64 { return percentile(xs, p) }, nil
	case StatMin:
		return minOf, nil
	case StatMax:
		return maxOf, nil
	default:
		return nil, ErrUnknownStatistic.New(s)
	}
}
