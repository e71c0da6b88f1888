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

package modeleval_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mollendorff-ai/forge/model"
	"github.com/mollendorff-ai/forge/modeleval"
	"github.com/mollendorff-ai/forge/value"
)

func fixedClock() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

// growthModel is a small Table-driven model exercising row-wise fan-out
// (sibling-column references, a top-level scalar read from every row),
// per-row error accumulation without aborting the evaluation, and a
// scalar aggregation formula reading a whole column (§4.4).
func growthModel() *model.Model {
	return &model.Model{
		Version:   model.DialectFull,
		CellOrder: []string{"growth", "t", "total", "other"},
		Cells: map[string]model.Cell{
			"growth": {Kind: model.CellScalar, Scalar: &model.Scalar{HasValue: true, Literal: 0.1}},
			"t": {
				Kind: model.CellTable,
				Table: &model.Table{
					ColumnOrder: []string{"year", "revenue", "inv"},
					Columns: map[string]model.Column{
						"year":    {Literals: []interface{}{1.0, 2.0, 3.0}},
						"revenue": {Formula: "=1000*(1+growth)^(year-1)"},
						"inv":     {Formula: "=1/(year-2)"},
					},
				},
			},
			"total": {Kind: model.CellScalar, Scalar: &model.Scalar{Formula: "=SUM(t.revenue)"}},
			"other": {Kind: model.CellScalar, Scalar: &model.Scalar{Formula: "=5*5"}},
		},
		Scenarios: []model.Scenario{
			{
				Name: "high_growth",
				Overrides: []model.Override{
					{CellName: "growth", HasLiteral: true, LiteralOverride: 0.2},
				},
			},
		},
	}
}

func TestEvaluateRowWiseFanOutAndAggregation(t *testing.T) {
	cm, _, err := modeleval.Evaluate(growthModel(), "", fixedClock)
	require.NoError(t, err)

	revenue := cm.Tables["t"]["revenue"]
	require.Len(t, revenue, 3)
	for i, want := range []float64{1000, 1100, 1210} {
		n, k, ok := value.ToNumber(revenue[i])
		require.Truef(t, ok, "row %d: %s", i, k)
		require.InDelta(t, want, n, 1e-9)
	}

	total, k, ok := value.ToNumber(cm.Scalars["total"])
	require.Truef(t, ok, "%s", k)
	require.InDelta(t, 1000+1100+1210, total, 1e-9)

	// "other" is independent of the table entirely and must still
	// evaluate despite the "inv" column's row-1 division by zero below
	// (§4.4 step 6 "the evaluation does not abort").
	otherVal, k, ok := value.ToNumber(cm.Scalars["other"])
	require.Truef(t, ok, "%s", k)
	require.Equal(t, 25.0, otherVal)
}

func TestEvaluateAccumulatesPerRowErrorsWithoutAborting(t *testing.T) {
	cm, errs, err := modeleval.Evaluate(growthModel(), "", fixedClock)
	require.NoError(t, err)

	inv := cm.Tables["t"]["inv"]
	require.Len(t, inv, 3)
	require.False(t, inv[0].IsError()) // year=1: 1/(1-2) = -1
	require.True(t, inv[1].IsError())  // year=2: 1/(2-2) -> DIV_ZERO
	require.Equal(t, value.DivZero, inv[1].ErrorKindUnchecked())
	require.False(t, inv[2].IsError()) // year=3: 1/(3-2) = 1

	var found bool
	for _, e := range errs {
		if e.Cell == "t.inv" && e.Row == 1 && e.Kind == value.DivZero {
			found = true
		}
	}
	require.True(t, found, "expected a CellError for t.inv row 1, got %+v", errs)

	// total/other are unaffected: the only error is row-scoped to t.inv.
	_, _, ok := value.ToNumber(cm.Scalars["total"])
	require.True(t, ok)
}

func TestEvaluateWithScenarioOverridesBaseScalar(t *testing.T) {
	base, _, err := modeleval.Evaluate(growthModel(), "", fixedClock)
	require.NoError(t, err)
	baseTotal, _, _ := value.ToNumber(base.Scalars["total"])

	scenario, _, err := modeleval.Evaluate(growthModel(), "high_growth", fixedClock)
	require.NoError(t, err)
	scenarioTotal, _, _ := value.ToNumber(scenario.Scalars["total"])

	require.Greater(t, scenarioTotal, baseTotal, "doubling growth must raise total revenue")

	// Year column and formula shape are untouched by the override — only
	// the growth scalar changed (§4.5 "replaces a scalar's definition
	// wholesale").
	require.Equal(t, base.Tables["t"]["year"], scenario.Tables["t"]["year"])
}

func TestEvaluateWithOverridesAdHocPerturbation(t *testing.T) {
	m := growthModel()
	cm, _, err := modeleval.EvaluateWithOverrides(m, []model.Override{
		{CellName: "growth", HasLiteral: true, LiteralOverride: 0.0},
	}, fixedClock)
	require.NoError(t, err)

	revenue := cm.Tables["t"]["revenue"]
	for _, v := range revenue {
		n, _, ok := value.ToNumber(v)
		require.True(t, ok)
		require.InDelta(t, 1000.0, n, 1e-9) // zero growth: every year is 1000
	}
}

func TestEvaluateUnknownScenarioIsAnError(t *testing.T) {
	_, _, err := modeleval.Evaluate(growthModel(), "does_not_exist", fixedClock)
	require.Error(t, err)
}

func TestEvaluateRejectsTableUnderScalarOnlyDialect(t *testing.T) {
	m := growthModel()
	m.Version = model.DialectScalarOnly
	_, _, err := modeleval.Evaluate(m, "", fixedClock)
	require.Error(t, err)
}
