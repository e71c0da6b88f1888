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
	"github.com/mollendorff-ai/forge/model"
	"github.com/mollendorff-ai/forge/modeleval"
	"github.com/mollendorff-ai/forge/value"
)

// VarianceOptions selects which cells are cost-variables, whose
// classification inverts (§4.6 "Cost-variables invert the
// classification"), and the threshold within which a variance reads as
// ON_TARGET rather than BEAT/MISS.
type VarianceOptions struct {
	CostCells map[string]bool
	Threshold float64 // default 0 if unset
	Cells     []string
}

// VarianceRow is one matched cell's comparison.
type VarianceRow struct {
	Cell           string
	Actual, Budget float64
	Diff, Pct      float64
	Status         string // BEAT, MISS, ON_TARGET
}

// VarianceResult is the full report.
type VarianceResult struct {
	Rows []VarianceRow
}

// VarianceAnalysis compares two Computed Models with matching cell names
// (e.g. "budget" and "actual"), emitting actual-budget, %, and a
// BEAT/MISS/ON_TARGET classification per cell (§4.6 "Variance analysis").
func VarianceAnalysis(budget, actual *modeleval.ComputedModel, opts VarianceOptions) (*VarianceResult, error) {
	res := &VarianceResult{}
	for _, cell := range opts.Cells {
		bv, ok := lookupOutput(budget, cell)
		if !ok {
			return nil, ErrNoCell.New(cell)
		}
		av, ok := lookupOutput(actual, cell)
		if !ok {
			return nil, ErrNoCell.New(cell)
		}
		bn, k, ok := value.ToNumber(bv)
		if !ok {
			return nil, ErrNonNumericOutput.New(cell, k)
		}
		an, k, ok := value.ToNumber(av)
		if !ok {
			return nil, ErrNonNumericOutput.New(cell, k)
		}
		diff := an - bn
		var pct float64
		if bn != 0 {
			pct = diff / bn
		}
		status := classify(diff, bn, opts.Threshold, opts.CostCells[cell])
		res.Rows = append(res.Rows, VarianceRow{
			Cell: cell, Actual: an, Budget: bn, Diff: diff, Pct: pct, Status: status,
		})
	}
	return res, nil
}

func classify(diff, budget, threshold float64, isCost bool) string {
	rel := diff
	if threshold > 0 && budget != 0 {
		rel = diff / budget
	}
	if abs(rel) <= threshold {
		return "ON_TARGET"
	}
	if diff == 0 {
		return "ON_TARGET"
	}
	good := diff > 0
	if isCost {
		good = !good
	}
	if good {
		return "BEAT"
	}
	return "MISS"
}

// VarianceRunOptions is the §6 option block for the variance driver
// when it is run as a single-model analytics spec rather than called
// directly with two pre-evaluated Computed Models: BudgetScenario and
// ActualScenario name the two scenarios of the same base Model to
// compare (§4.6 "Given two Computed Models (e.g. 'budget' and
// 'actual')").
type VarianceRunOptions struct {
	BudgetScenario string          `yaml:"budget_scenario"`
	ActualScenario string          `yaml:"actual_scenario"`
	Cells          []string        `yaml:"cells"`
	CostCells      map[string]bool `yaml:"cost_cells"`
	Threshold      float64         `yaml:"threshold"`
}

// RunVariance evaluates a Model once per named scenario and runs
// VarianceAnalysis over the pair, the shape run_analytics needs when a
// Model's spec names variance as its analytics kind (§6).
func RunVariance(m *model.Model, opts VarianceRunOptions, now modeleval.Clock) (*VarianceResult, error) {
	budget, _, err := modeleval.Evaluate(m, opts.BudgetScenario, now)
	if err != nil {
		return nil, err
	}
	actual, _, err := modeleval.Evaluate(m, opts.ActualScenario, now)
	if err != nil {
		return nil, err
	}
	return VarianceAnalysis(budget, actual, VarianceOptions{
		CostCells: opts.CostCells,
		Threshold: opts.Threshold,
		Cells:     opts.Cells,
	})
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
