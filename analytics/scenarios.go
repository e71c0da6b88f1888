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
	"github.com/mollendorff-ai/forge/eval"
	"github.com/mollendorff-ai/forge/model"
	"github.com/mollendorff-ai/forge/modeleval"
	"github.com/mollendorff-ai/forge/value"
)

// ScenariosCompareOptions names the scenarios and outputs to tabulate
// side by side (§4.6 "Scenarios compare").
type ScenariosCompareOptions struct {
	Scenarios []string `yaml:"scenarios"`
	Outputs   []string `yaml:"outputs"`
}

// ScenariosCompareRow is one scenario's outputs.
type ScenariosCompareRow struct {
	Scenario string
	Outputs  map[string]value.Value
	Errors   []modeleval.CellError
}

// ScenariosCompareResult is the full comparison table.
type ScenariosCompareResult struct {
	Rows []ScenariosCompareRow
}

// ScenariosCompare evaluates the model once per listed scenario name and
// tabulates the requested outputs (§4.6). It also wires a live SCENARIO()
// lookup (§4.2, §9 Open Question #2) so a scenario's own formulas may
// read another named scenario's value for a variable; lookups memoize
// per (scenario, var) and a lookup that re-enters its own scenario (a
// SCENARIO() cycle) resolves to Error(NA) rather than recursing forever.
func ScenariosCompare(m *model.Model, opts ScenariosCompareOptions, now modeleval.Clock) (*ScenariosCompareResult, error) {
	cache := map[string]*modeleval.ComputedModel{}
	inflight := map[string]bool{}

	var evalScenario func(name string) (*modeleval.ComputedModel, error)
	lookup := func(scenario, varName string) (value.Value, bool) {
		cm, err := evalScenario(scenario)
		if err != nil || cm == nil {
			return value.Value{}, false
		}
		return lookupOutput(cm, varName)
	}
	evalScenario = func(name string) (*modeleval.ComputedModel, error) {
		if cm, ok := cache[name]; ok {
			return cm, nil
		}
		if inflight[name] {
			return nil, nil
		}
		inflight[name] = true
		cm, _, err := modeleval.EvaluateForCompare(m, name, eval.ScenarioLookup(lookup), now)
		inflight[name] = false
		if err != nil {
			return nil, err
		}
		cache[name] = cm
		return cm, nil
	}

	res := &ScenariosCompareResult{}
	for _, name := range opts.Scenarios {
		cm, err := evalScenario(name)
		if err != nil {
			return nil, err
		}
		row := ScenariosCompareRow{Scenario: name, Outputs: map[string]value.Value{}}
		for _, out := range opts.Outputs {
			if v, ok := lookupOutput(cm, out); ok {
				row.Outputs[out] = v
			} else {
				row.Outputs[out] = value.Err(value.Ref)
			}
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}
