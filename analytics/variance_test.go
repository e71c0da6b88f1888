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
	"github.com/mollendorff-ai/forge/modeleval"
)

// varianceModel has a revenue cell (higher actual is good) and a cost
// cell (higher actual is bad), each overridden per scenario so budget
// and actual can diverge.
func varianceModel() *model.Model {
	return &model.Model{
		Version:   model.DialectFull,
		CellOrder: []string{"revenue", "cost", "flat"},
		Cells: map[string]model.Cell{
			"revenue": scalarCell("", 100.0, true),
			"cost":    scalarCell("", 50.0, true),
			"flat":    scalarCell("", 10.0, true),
		},
		Scenarios: []model.Scenario{
			{
				Name: "actual",
				Overrides: []model.Override{
					{CellName: "revenue", HasLiteral: true, LiteralOverride: 120.0}, // beat
					{CellName: "cost", HasLiteral: true, LiteralOverride: 60.0},     // over budget: miss
					{CellName: "flat", HasLiteral: true, LiteralOverride: 10.0},     // unchanged
				},
			},
		},
	}
}

func evaluatedVariancePair(t *testing.T) (*modeleval.ComputedModel, *modeleval.ComputedModel) {
	t.Helper()
	m := varianceModel()
	budget, _, err := modeleval.Evaluate(m, "", fixedClock)
	require.NoError(t, err)
	actual, _, err := modeleval.Evaluate(m, "actual", fixedClock)
	require.NoError(t, err)
	return budget, actual
}

func TestVarianceAnalysisRevenueBeatWhenActualExceedsBudget(t *testing.T) {
	budget, actual := evaluatedVariancePair(t)
	res, err := analytics.VarianceAnalysis(budget, actual, analytics.VarianceOptions{
		Cells: []string{"revenue"},
	})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	row := res.Rows[0]
	require.Equal(t, "BEAT", row.Status)
	require.InDelta(t, 20.0, row.Diff, 1e-9)
	require.InDelta(t, 0.2, row.Pct, 1e-9)
}

// A cost cell inverts the classification (§4.6): spending more than
// budgeted is a MISS even though the raw diff is positive.
func TestVarianceAnalysisCostCellInvertsClassification(t *testing.T) {
	budget, actual := evaluatedVariancePair(t)
	res, err := analytics.VarianceAnalysis(budget, actual, analytics.VarianceOptions{
		Cells:     []string{"cost"},
		CostCells: map[string]bool{"cost": true},
	})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	row := res.Rows[0]
	require.Equal(t, "MISS", row.Status)
	require.InDelta(t, 10.0, row.Diff, 1e-9)
}

// A cost cell that comes in UNDER budget is a BEAT, the mirror image of
// the prior case, confirming the inversion runs both directions.
func TestVarianceAnalysisCostCellUnderBudgetIsBeat(t *testing.T) {
	budget, actual := evaluatedVariancePair(t)
	res, err := analytics.VarianceAnalysis(actual, budget, analytics.VarianceOptions{
		Cells:     []string{"cost"},
		CostCells: map[string]bool{"cost": true},
	})
	require.NoError(t, err)
	require.Equal(t, "BEAT", res.Rows[0].Status)
}

func TestVarianceAnalysisUnchangedCellIsOnTarget(t *testing.T) {
	budget, actual := evaluatedVariancePair(t)
	res, err := analytics.VarianceAnalysis(budget, actual, analytics.VarianceOptions{
		Cells: []string{"flat"},
	})
	require.NoError(t, err)
	require.Equal(t, "ON_TARGET", res.Rows[0].Status)
	require.InDelta(t, 0.0, res.Rows[0].Diff, 1e-9)
}

// A non-zero threshold absorbs small relative swings into ON_TARGET even
// when the raw diff is non-zero.
func TestVarianceAnalysisThresholdAbsorbsSmallSwing(t *testing.T) {
	budget, actual := evaluatedVariancePair(t)
	res, err := analytics.VarianceAnalysis(budget, actual, analytics.VarianceOptions{
		Cells:     []string{"revenue"},
		Threshold: 0.5, // 20% move is within a 50% band
	})
	require.NoError(t, err)
	require.Equal(t, "ON_TARGET", res.Rows[0].Status)
}

func TestVarianceAnalysisUnknownCellIsError(t *testing.T) {
	budget, actual := evaluatedVariancePair(t)
	_, err := analytics.VarianceAnalysis(budget, actual, analytics.VarianceOptions{
		Cells: []string{"does_not_exist"},
	})
	require.Error(t, err)
}

func TestRunVarianceDrivesBothScenariosFromOneModel(t *testing.T) {
	res, err := analytics.RunVariance(varianceModel(), analytics.VarianceRunOptions{
		BudgetScenario: "",
		ActualScenario: "actual",
		Cells:          []string{"revenue", "cost"},
		CostCells:      map[string]bool{"cost": true},
	}, fixedClock)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	require.Equal(t, "BEAT", res.Rows[0].Status)
	require.Equal(t, "MISS", res.Rows[1].Status)
}
