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
)

// tornadoModel has a big-swing driver "a", a small-swing driver "b", and a
// zero-swing driver "c" so ordering by descending |swing| is unambiguous,
// plus two equal-swing drivers "d" and "e" to exercise the declaration-
// order tie-break.
func tornadoModel() *model.Model {
	return &model.Model{
		Version:   model.DialectFull,
		CellOrder: []string{"a", "b", "c", "d", "e", "out"},
		Cells: map[string]model.Cell{
			"a":   scalarCell("", 0.0, true),
			"b":   scalarCell("", 0.0, true),
			"c":   scalarCell("", 0.0, true),
			"d":   scalarCell("", 0.0, true),
			"e":   scalarCell("", 0.0, true),
			"out": scalarCell("=a+b+c+d+e", nil, false),
		},
	}
}

func TestTornadoSortsByDescendingSwingThenDeclarationOrder(t *testing.T) {
	res, err := analytics.Tornado(tornadoModel(), analytics.TornadoOptions{
		Output: "out",
		Inputs: []analytics.TornadoInput{
			{Cell: "b", Low: 0, High: 10},  // swing 10
			{Cell: "a", Low: 0, High: 100}, // swing 100
			{Cell: "c", Low: 5, High: 5},   // swing 0
			{Cell: "d", Low: 0, High: 10},  // swing 10, declared before e
			{Cell: "e", Low: 0, High: 10},  // swing 10, declared after d
		},
	}, fixedClock)
	require.NoError(t, err)
	require.Len(t, res.Bars, 5)

	var order []string
	for _, bar := range res.Bars {
		order = append(order, bar.Cell)
	}
	// a (100) first; b, d, e tie at swing 10 and keep input-declaration
	// order; c (0) last.
	require.Equal(t, []string{"a", "b", "d", "e", "c"}, order)

	require.InDelta(t, 100.0, res.Bars[0].Swing, 1e-9)
	require.InDelta(t, 0.0, res.Bars[4].Swing, 1e-9)
}

func TestTornadoLowHighOutputsMatchSweepEndpoints(t *testing.T) {
	res, err := analytics.Tornado(tornadoModel(), analytics.TornadoOptions{
		Output: "out",
		Inputs: []analytics.TornadoInput{
			{Cell: "a", Low: -5, High: 5},
		},
	}, fixedClock)
	require.NoError(t, err)
	require.Len(t, res.Bars, 1)
	require.InDelta(t, -5.0, res.Bars[0].LowOutput, 1e-9)
	require.InDelta(t, 5.0, res.Bars[0].HighOutput, 1e-9)
	require.InDelta(t, 10.0, res.Bars[0].Swing, 1e-9)
}
