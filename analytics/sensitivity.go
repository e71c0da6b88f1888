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

	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/mollendorff-ai/forge/model"
	"github.com/mollendorff-ai/forge/modeleval"
)

// ErrNoBracket is returned by BreakEven/GoalSeek when the endpoints do
// not straddle the target (§4.6 "bracketed root-find").
var ErrNoBracket = goerrors.NewKind("no sign change between %v and %v for output %q")

// ErrNonConvergent is returned when a bracketed search exceeds its
// iteration cap without reaching tolerance (§8 "iteration caps ...
// returns Error(NUM)").
var ErrNonConvergent = goerrors.NewKind("%s did not converge within %d iterations")

// SensitivityOptions configures a one-input grid sweep (§4.6
// "Sensitivity: given an input name, a range [lo, hi] with step, and an
// output name, evaluate once per grid point and tabulate").
type SensitivityOptions struct {
	Input  string  `yaml:"input"`
	Low    float64 `yaml:"low"`
	High   float64 `yaml:"high"`
	Step   float64 `yaml:"step"`
	Output string  `yaml:"output"`
}

// SensitivityPoint is one grid evaluation.
type SensitivityPoint struct {
	Input  float64
	Output float64
}

// SensitivityResult is the grid, in ascending Input order.
type SensitivityResult struct {
	Points []SensitivityPoint
}

// Sensitivity implements §4.6's sensitivity driver.
func Sensitivity(m *model.Model, opts SensitivityOptions, now modeleval.Clock) (*SensitivityResult, error) {
	if opts.Step <= 0 {
		return nil, goerrors.NewKind("sensitivity step must be positive, got %v").New(opts.Step)
	}
	res := &SensitivityResult{}
	steps := int(math.Floor((opts.High-opts.Low)/opts.Step + 1e-9))
	for i := 0; i <= steps; i++ {
		x := opts.Low + float64(i)*opts.Step
		n, err := outputNumber(m, []model.Override{literalOverride(opts.Input, x)}, opts.Output, now)
		if err != nil {
			return nil, err
		}
		res.Points = append(res.Points, SensitivityPoint{Input: x, Output: n})
	}
	return res, nil
}

// BreakEven solves output(input) = 0 over [lo, hi] by bisection, 1e-6
// tolerance, 200-iteration cap (§4.6 "Break-even").
func BreakEven(m *model.Model, input, output string, lo, hi float64, now modeleval.Clock) (float64, error) {
	return bracketedRoot(m, input, output, lo, hi, 0, now)
}

// GoalSeek solves output(input) = target over [lo, hi], same method
// (§4.6 "Goal-seek: same, with a nonzero target").
func GoalSeek(m *model.Model, input, output string, lo, hi, target float64, now modeleval.Clock) (float64, error) {
	return bracketedRoot(m, input, output, lo, hi, target, now)
}

const (
	rootTolerance = 1e-6
	rootMaxIter   = 200
)

func bracketedRoot(m *model.Model, input, output string, lo, hi, target float64, now modeleval.Clock) (float64, error) {
	f := func(x float64) (float64, error) {
		n, err := outputNumber(m, []model.Override{literalOverride(input, x)}, output, now)
		if err != nil {
			return 0, err
		}
		return n - target, nil
	}
	flo, err := f(lo)
	if err != nil {
		return 0, err
	}
	fhi, err := f(hi)
	if err != nil {
		return 0, err
	}
	if flo == 0 {
		return lo, nil
	}
	if fhi == 0 {
		return hi, nil
	}
	if (flo < 0) == (fhi < 0) {
		return 0, ErrNoBracket.New(lo, hi, output)
	}
	for i := 0; i < rootMaxIter; i++ {
		mid := (lo + hi) / 2
		fmid, err := f(mid)
		if err != nil {
			return 0, err
		}
		if math.Abs(fmid) < rootTolerance || (hi-lo)/2 < rootTolerance {
			return mid, nil
		}
		if (fmid < 0) == (flo < 0) {
			lo, flo = mid, fmid
		} else {
			hi, fhi = mid, fmid
		}
	}
	return 0, ErrNonConvergent.New("break-even/goal-seek", rootMaxIter)
}
