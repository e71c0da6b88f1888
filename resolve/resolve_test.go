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

package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mollendorff-ai/forge/model"
	"github.com/mollendorff-ai/forge/resolve"
)

func scalarFormula(formula string) model.Cell {
	return model.Cell{Kind: model.CellScalar, Scalar: &model.Scalar{Formula: formula}}
}

func scalarLiteral(v float64) model.Cell {
	return model.Cell{Kind: model.CellScalar, Scalar: &model.Scalar{HasValue: true, Literal: v}}
}

// Two independent formula cells with no dependency between them are both
// "ready" for Kahn's algorithm in the same pass; the plan must keep them
// in declaration order (§4.3 "breaking ties by original declaration
// order", §8 "Topological plan stability").
func TestPlanTieBreaksByDeclarationOrder(t *testing.T) {
	m := &model.Model{
		Version:   model.DialectFull,
		CellOrder: []string{"b", "c"},
		Cells: map[string]model.Cell{
			"b": scalarFormula("=1+1"),
			"c": scalarFormula("=2+2"),
		},
	}
	plan, err := resolve.Plan(m)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)
	require.Equal(t, "b", plan.Steps[0].Key)
	require.Equal(t, "c", plan.Steps[1].Key)

	// Swapping declaration order swaps the plan order, but would not
	// change the final Computed Model (neither reads the other).
	m2 := &model.Model{
		Version:   model.DialectFull,
		CellOrder: []string{"c", "b"},
		Cells:     m.Cells,
	}
	plan2, err := resolve.Plan(m2)
	require.NoError(t, err)
	require.Equal(t, "c", plan2.Steps[0].Key)
	require.Equal(t, "b", plan2.Steps[1].Key)
}

// A dependent cell must always be scheduled after its producer,
// regardless of declaration order.
func TestPlanOrdersProducerBeforeDependent(t *testing.T) {
	m := &model.Model{
		Version:   model.DialectFull,
		CellOrder: []string{"total", "base"}, // dependent declared first
		Cells: map[string]model.Cell{
			"total": scalarFormula("=base*2"),
			"base":  scalarFormula("=10"),
		},
	}
	plan, err := resolve.Plan(m)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)
	require.Equal(t, "base", plan.Steps[0].Key)
	require.Equal(t, "total", plan.Steps[1].Key)
}

// A direct two-cell cycle must fail with ErrCycle and a witness path
// naming both cells (§4.3 "report the cycle (a witnessing back-edge
// path)").
func TestPlanDetectsCycleWithWitness(t *testing.T) {
	m := &model.Model{
		Version:   model.DialectFull,
		CellOrder: []string{"x", "y"},
		Cells: map[string]model.Cell{
			"x": scalarFormula("=y+1"),
			"y": scalarFormula("=x+1"),
		},
	}
	_, err := resolve.Plan(m)
	require.Error(t, err)
	require.Contains(t, err.Error(), "x")
	require.Contains(t, err.Error(), "y")
}

// A formula that reads itself as a whole-cell dependency (not through a
// row-overlay index) is a degenerate one-node cycle.
func TestPlanDetectsSelfReferenceCycle(t *testing.T) {
	m := &model.Model{
		Version:   model.DialectFull,
		CellOrder: []string{"x"},
		Cells: map[string]model.Cell{
			"x": scalarFormula("=x+1"),
		},
	}
	_, err := resolve.Plan(m)
	require.Error(t, err)
}

// A formula referencing a name the model never declares is a
// model-level failure distinct from a cycle (§4.3 "Err(cycle |
// unresolved name)").
func TestPlanUnresolvedName(t *testing.T) {
	m := &model.Model{
		Version:   model.DialectFull,
		CellOrder: []string{"x"},
		Cells: map[string]model.Cell{
			"x": scalarFormula("=nonexistent+1"),
		},
	}
	_, err := resolve.Plan(m)
	require.Error(t, err)
}

// Within a Table, a row-wise column formula referencing a sibling
// column by its bare name resolves to that column, not a foreign
// top-level cell of the same spelling, and the Resolver orders the
// sibling column first (§4.3 "Row-wise fan-out").
func TestPlanOrdersRowWiseSiblingColumns(t *testing.T) {
	m := &model.Model{
		Version:   model.DialectFull,
		CellOrder: []string{"t"},
		Cells: map[string]model.Cell{
			"t": {
				Kind: model.CellTable,
				Table: &model.Table{
					ColumnOrder: []string{"x", "y"}, // x declared before y, but x depends on y
					Columns: map[string]model.Column{
						"x": {Formula: "=y+1"},
						"y": {Formula: "=5"},
					},
				},
			},
		},
	}
	plan, err := resolve.Plan(m)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)
	require.Equal(t, "t.y", plan.Steps[0].Key)
	require.Equal(t, resolve.VColumn, plan.Steps[0].Kind)
	require.Equal(t, "t.x", plan.Steps[1].Key)
}

// A column formula that references a top-level scalar by a name no
// sibling column uses resolves to that whole foreign cell; a constant
// scalar adds no plan step of its own (§4.3 "references to foreign names
// depend on the whole foreign cell").
func TestPlanColumnReferencingForeignScalar(t *testing.T) {
	m := &model.Model{
		Version:   model.DialectFull,
		CellOrder: []string{"rate", "t"},
		Cells: map[string]model.Cell{
			"rate": scalarLiteral(0.1),
			"t": {
				Kind: model.CellTable,
				Table: &model.Table{
					ColumnOrder: []string{"revenue"},
					Columns: map[string]model.Column{
						"revenue": {Formula: "=1000*(1+rate)"},
					},
				},
			},
		},
	}
	plan, err := resolve.Plan(m)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	require.Equal(t, "t.revenue", plan.Steps[0].Key)
}

// Dependencies returns the transitive upstream producer set for a cell,
// used by the host's audit operation (§6).
func TestDependenciesTransitiveChain(t *testing.T) {
	m := &model.Model{
		Version:   model.DialectFull,
		CellOrder: []string{"a", "b", "c"},
		Cells: map[string]model.Cell{
			"a": scalarLiteral(1),
			"b": scalarFormula("=a+1"),
			"c": scalarFormula("=b+1"),
		},
	}
	deps, err := resolve.Dependencies(m, "c")
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, deps)
}

// ExtractRefs must not treat a LET-bound name as a model dependency: it
// shadows, it does not read a cell (§4.2, §9).
func TestExtractRefsExcludesLetBoundNames(t *testing.T) {
	m := &model.Model{
		Version:   model.DialectFull,
		CellOrder: []string{"x"},
		Cells: map[string]model.Cell{
			"x": scalarFormula("=LET(n, 5, n+1)"),
		},
	}
	plan, err := resolve.Plan(m)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	require.Equal(t, "x", plan.Steps[0].Key)
}
