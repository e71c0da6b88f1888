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
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mollendorff-ai/forge/analytics"
	"github.com/mollendorff-ai/forge/model"
)

func fixedClock() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

func scalarCell(formula string, literal interface{}, hasValue bool) model.Cell {
	return model.Cell{Kind: model.CellScalar, Scalar: &model.Scalar{Formula: formula, Literal: literal, HasValue: hasValue}}
}

// linearModel is "y = x*2" with x a free scalar input, the minimal shape
// every sensitivity/break-even/goal-seek test perturbs.
func linearModel() *model.Model {
	return &model.Model{
		Version:   model.DialectFull,
		CellOrder: []string{"x", "y"},
		Cells: map[string]model.Cell{
			"x": scalarCell("", 1.0, true),
			"y": scalarCell("=x*2", nil, false),
		},
	}
}

func TestSensitivityGridEndpointsAndStep(t *testing.T) {
	res, err := analytics.Sensitivity(linearModel(), analytics.SensitivityOptions{
		Input: "x", Low: 0, High: 10, Step: 5, Output: "y",
	}, fixedClock)
	require.NoError(t, err)
	require.Len(t, res.Points, 3)
	require.Equal(t, analytics.SensitivityPoint{Input: 0, Output: 0}, res.Points[0])
	require.Equal(t, analytics.SensitivityPoint{Input: 5, Output: 10}, res.Points[1])
	require.Equal(t, analytics.SensitivityPoint{Input: 10, Output: 20}, res.Points[2])
}

func TestSensitivityRejectsNonPositiveStep(t *testing.T) {
	_, err := analytics.Sensitivity(linearModel(), analytics.SensitivityOptions{
		Input: "x", Low: 0, High: 10, Step: 0, Output: "y",
	}, fixedClock)
	require.Error(t, err)
}

func TestBreakEvenFindsRoot(t *testing.T) {
	m := &model.Model{
		Version:   model.DialectFull,
		CellOrder: []string{"x", "y"},
		Cells: map[string]model.Cell{
			"x": scalarCell("", 0.0, true),
			"y": scalarCell("=x-5", nil, false),
		},
	}
	root, err := analytics.BreakEven(m, "x", "y", 0, 20, fixedClock)
	require.NoError(t, err)
	require.InDelta(t, 5.0, root, 1e-6)
}

func TestGoalSeekFindsNonZeroTarget(t *testing.T) {
	root, err := analytics.GoalSeek(linearModel(), "x", "y", 0, 20, 10, fixedClock)
	require.NoError(t, err)
	require.InDelta(t, 5.0, root, 1e-6) // y=x*2=10 at x=5
}

// A curve with no sign change between the endpoints cannot be bracketed
// (§4.6 "bracketed root-find"): x^2+1 is always positive on [1,5].
func TestBreakEvenFailsWithoutBracket(t *testing.T) {
	m := &model.Model{
		Version:   model.DialectFull,
		CellOrder: []string{"x", "y"},
		Cells: map[string]model.Cell{
			"x": scalarCell("", 1.0, true),
			"y": scalarCell("=x^2+1", nil, false),
		},
	}
	_, err := analytics.BreakEven(m, "x", "y", 1, 5, fixedClock)
	require.Error(t, err)
}
