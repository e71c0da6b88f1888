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

package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mollendorff-ai/forge/analytics"
	"github.com/mollendorff-ai/forge/model"
	"github.com/mollendorff-ai/forge/value"
)

// scenarioLookupModel's "combo" formula reads another named scenario's
// "growth" live via SCENARIO(name, var), the cross-scenario lookup
// ScenariosCompare wires in (§4.2, §9 Open Question #2).
func scenarioLookupModel() *model.Model {
	return &model.Model{
		Version:   model.DialectFull,
		CellOrder: []string{"growth", "combo"},
		Cells: map[string]model.Cell{
			"growth": scalarCell("", 0.1, true),
			"combo":  scalarCell(`=growth+SCENARIO("optimistic",growth)`, nil, false),
		},
		Scenarios: []model.Scenario{
			{
				Name: "optimistic",
				Overrides: []model.Override{
					{CellName: "growth", HasLiteral: true, LiteralOverride: 0.3},
				},
			},
		},
	}
}

func TestScenariosCompareCrossScenarioLookup(t *testing.T) {
	res, err := analytics.ScenariosCompare(scenarioLookupModel(), analytics.ScenariosCompareOptions{
		Scenarios: []string{"", "optimistic"},
		Outputs:   []string{"combo", "growth"},
	}, fixedClock)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)

	base := res.Rows[0]
	require.Equal(t, "", base.Scenario)
	n, k, ok := value.ToNumber(base.Outputs["combo"])
	require.Truef(t, ok, "%s", k)
	require.InDelta(t, 0.4, n, 1e-9) // base growth 0.1 + optimistic growth 0.3
}

// SCENARIO() re-entering the scenario it is already being evaluated for
// is a self-cycle; the driver must not recurse forever, and the lookup
// resolves to Error(NA), which then propagates through the arithmetic
// (§9 Open Question #2 "a lookup that re-enters its own scenario
// resolves to Error(NA) rather than recursing forever").
func TestScenariosCompareSelfCycleResolvesToNA(t *testing.T) {
	res, err := analytics.ScenariosCompare(scenarioLookupModel(), analytics.ScenariosCompareOptions{
		Scenarios: []string{"optimistic"},
		Outputs:   []string{"combo"},
	}, fixedClock)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.True(t, res.Rows[0].Outputs["combo"].IsError())
	require.Equal(t, value.NA, res.Rows[0].Outputs["combo"].ErrorKindUnchecked())
}

func TestScenariosCompareUnknownOutputIsRefError(t *testing.T) {
	res, err := analytics.ScenariosCompare(scenarioLookupModel(), analytics.ScenariosCompareOptions{
		Scenarios: []string{""},
		Outputs:   []string{"does_not_exist"},
	}, fixedClock)
	require.NoError(t, err)
	require.True(t, res.Rows[0].Outputs["does_not_exist"].IsError())
	require.Equal(t, value.Ref, res.Rows[0].Outputs["does_not_exist"].ErrorKindUnchecked())
}
