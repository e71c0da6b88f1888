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

package forge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mollendorff-ai/forge/analytics"
	"github.com/mollendorff-ai/forge/model"
	"github.com/mollendorff-ai/forge/value"
)

func TestDispatchAnalyticsRejectsMismatchedSpec(t *testing.T) {
	e := NewDefault()
	defer e.Close()

	_, err := e.dispatchAnalytics(&model.Model{
		Analytics:    model.AnalyticsMonteCarlo,
		AnalyticsRaw: analytics.BootstrapOptions{},
	})
	require.Error(t, err)
}

func TestDispatchAnalyticsNoSpecDeclared(t *testing.T) {
	e := NewDefault()
	defer e.Close()

	_, err := e.dispatchAnalytics(&model.Model{})
	require.Error(t, err)
}

func TestDispatchAnalyticsDecisionTree(t *testing.T) {
	e := NewDefault()
	defer e.Close()

	root := &analytics.DecisionNode{
		Kind:  analytics.NodeTerminal,
		Value: 42,
	}
	out, err := e.dispatchAnalytics(&model.Model{
		Analytics:    model.AnalyticsDecisionTree,
		AnalyticsRaw: root,
	})
	require.NoError(t, err)
	res, ok := out.(*analytics.DecisionTreeResult)
	require.True(t, ok)
	require.Equal(t, 42.0, res.RootExpectedValue)
}

func TestNewDefaultHasNoCache(t *testing.T) {
	e := NewDefault()
	defer e.Close()
	require.Nil(t, e.db)
	require.NotNil(t, e.log)
	require.NotNil(t, e.tracer)
}

func TestEngineRegistryReturnsDefaultCatalog(t *testing.T) {
	e := NewDefault()
	defer e.Close()
	require.NotNil(t, e.Registry())
}

func dcfScalar(v float64) model.Cell {
	return model.Cell{Kind: model.CellScalar, Scalar: &model.Scalar{HasValue: true, Literal: v}}
}

func dcfFormula(formula string) model.Cell {
	return model.Cell{Kind: model.CellScalar, Scalar: &model.Scalar{Formula: formula}}
}

// fiveYearDCFModel is the reference five-year DCF: a row-wise projection
// table driven by top-level assumption scalars, with a tax line floored
// at zero via MAX(), and NPV/IRR rolled up from the net-income column.
func fiveYearDCFModel() *model.Model {
	return &model.Model{
		Version: model.DialectFull,
		CellOrder: []string{
			"revenue_y1", "growth", "gross_margin", "opex_pct", "tax_rate", "discount",
			"t", "npv", "irr",
		},
		Cells: map[string]model.Cell{
			"revenue_y1":   dcfScalar(1000000),
			"growth":       dcfScalar(0.15),
			"gross_margin": dcfScalar(0.65),
			"opex_pct":     dcfScalar(0.30),
			"tax_rate":     dcfScalar(0.25),
			"discount":     dcfScalar(0.10),
			"t": {
				Kind: model.CellTable,
				Table: &model.Table{
					ColumnOrder: []string{"year", "revenue", "gross", "opex", "ebit", "tax", "ni"},
					Columns: map[string]model.Column{
						"year":    {Literals: []interface{}{1.0, 2.0, 3.0, 4.0, 5.0}},
						"revenue": {Formula: "=revenue_y1*(1+growth)^(year-1)"},
						"gross":   {Formula: "=revenue*gross_margin"},
						"opex":    {Formula: "=revenue*opex_pct"},
						"ebit":    {Formula: "=gross-opex"},
						"tax":     {Formula: "=MAX(0,ebit*tax_rate)"},
						"ni":      {Formula: "=ebit-tax"},
					},
				},
			},
			"npv": dcfFormula("=NPV(discount,t.ni)"),
			"irr": dcfFormula("=IRR(t.ni)"),
		},
	}
}

// TestFiveYearDCFMatchesReferenceNumbers reproduces the five-year DCF
// walkthrough end to end: row-wise projection columns feeding a
// tax-floor MAX(), then NPV and IRR rolled up over the net-income
// column. All five net-income flows are positive (no initial outflow),
// so IRR has no sign change to bracket and must fail with #NUM! rather
// than return a spurious root.
func TestFiveYearDCFMatchesReferenceNumbers(t *testing.T) {
	e := NewDefault()
	defer e.Close()

	res, err := e.Evaluate(fiveYearDCFModel(), "")
	require.NoError(t, err)
	require.Empty(t, res.Errors)

	ni := res.Model.Tables["t"]["ni"]
	require.Len(t, ni, 5)
	wantNI := []float64{262500, 301875, 347156.25, 399229.6875, 459114.140625}
	for i, want := range wantNI {
		n, k, ok := value.ToNumber(ni[i])
		require.Truef(t, ok, "row %d: %s", i, k)
		require.InDelta(t, want, n, 1e-6)
	}

	npv, k, ok := value.ToNumber(res.Model.Scalars["npv"])
	require.Truef(t, ok, "%s", k)
	require.InDelta(t, 1306696.47, npv, 0.01)

	irr := res.Model.Scalars["irr"]
	require.True(t, irr.IsError())
	require.Equal(t, value.Num, irr.ErrorKindUnchecked())
}
