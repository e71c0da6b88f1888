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

// Package modeleval is the Model Evaluator (§4.4): it owns a model's
// working set, drives the Resolver and the Expression Engine, applies
// row-wise fan-out for column formulas, applies scenario overrides
// (§4.5), and produces a Computed Model plus any per-cell evaluation
// errors. It never mutates the input Model (§3 "Lifecycle").
package modeleval

import (
	"fmt"
	"strings"
	"time"

	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/mollendorff-ai/forge/ast"
	"github.com/mollendorff-ai/forge/eval"
	"github.com/mollendorff-ai/forge/model"
	"github.com/mollendorff-ai/forge/parser"
	"github.com/mollendorff-ai/forge/resolve"
	"github.com/mollendorff-ai/forge/value"
)

// ErrDialectViolation is a model-level failure (§6, §7, §8 "Dialect
// enforcement"): a "1.0.0" model contains a Table.
var ErrDialectViolation = goerrors.NewKind("cell %q: Table cells require dialect 5.0.0, model is tagged %s")

// ErrUnknownScenario is a model-level failure (§4.5): the caller asked
// for a scenario name the Model does not declare.
var ErrUnknownScenario = goerrors.NewKind("unknown scenario %q")

// ErrUnknownOverride is a model-level failure (§4.5 "Overrides that
// reference names not present in the base Model are themselves errors").
var ErrUnknownOverride = goerrors.NewKind("scenario override targets unknown cell %q")

// CellError is a single evaluation failure surfaced alongside a Computed
// Model (§4.4 step 6, §7 "Model-level failures ... cell value errors").
type CellError struct {
	Cell string
	Kind value.ErrorKind
	Row  int // -1 for non-row-wise cells
}

func (e CellError) String() string {
	if e.Row >= 0 {
		return fmt.Sprintf("%s[%d]: %s", e.Cell, e.Row, e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Cell, e.Kind)
}

// ComputedModel is the Model with every formula replaced by its resolved
// Value (§3, §4.4 "Result").
type ComputedModel struct {
	Version   model.Dialect
	CellOrder []string
	Scalars   map[string]value.Value            // top-level scalars
	Groups    map[string]map[string]value.Value // group -> member -> value
	Columns   map[string][]value.Value          // top-level Column cells
	Tables    map[string]map[string][]value.Value
}

// Clock is the host-supplied wall clock for TODAY()/NOW() (§5, §6
// "Operations consumed from the host"). Evaluate snapshots it exactly
// once per call.
type Clock func() time.Time

// Evaluate implements §6's `evaluate(model, scenario?)` operation.
func Evaluate(m *model.Model, scenarioName string, now Clock) (*ComputedModel, []CellError, error) {
	if err := checkDialect(m); err != nil {
		return nil, nil, err
	}
	working := m
	if scenarioName != "" {
		sc, ok := m.ScenarioByName(scenarioName)
		if !ok {
			return nil, nil, ErrUnknownScenario.New(scenarioName)
		}
		w, err := applyScenario(m, sc)
		if err != nil {
			return nil, nil, err
		}
		working = w
	}
	return evaluateWorking(working, now)
}

// EvaluateWithOverrides runs the Model Evaluator against an ad hoc,
// unnamed set of overrides (§4.5's override shape, without a declared
// Scenario). Analytics drivers (§4.6) use this for the single- or
// few-cell perturbations a sensitivity grid, tornado swing, or
// goal-seek probe needs, without requiring the caller to mutate the
// Model's declared scenario list.
func EvaluateWithOverrides(m *model.Model, overrides []model.Override, now Clock) (*ComputedModel, []CellError, error) {
	if err := checkDialect(m); err != nil {
		return nil, nil, err
	}
	working, err := applyScenario(m, model.Scenario{Overrides: overrides})
	if err != nil {
		return nil, nil, err
	}
	return evaluateWorking(working, now)
}

// EvaluateForCompare runs the Model Evaluator with a live SCENARIO()
// lookup wired in (§4.2, §9 Open Question #2): the Scenarios-Compare
// analytics driver (§4.6) is the one caller allowed to make SCENARIO()
// resolve to something other than Error(NA).
func EvaluateForCompare(m *model.Model, scenarioName string, lookup eval.ScenarioLookup, now Clock) (*ComputedModel, []CellError, error) {
	if err := checkDialect(m); err != nil {
		return nil, nil, err
	}
	working := m
	if scenarioName != "" {
		sc, ok := m.ScenarioByName(scenarioName)
		if !ok {
			return nil, nil, ErrUnknownScenario.New(scenarioName)
		}
		w, err := applyScenario(m, sc)
		if err != nil {
			return nil, nil, err
		}
		working = w
	}
	return evaluateWorkingScenario(working, now, lookup)
}

func evaluateWorking(working *model.Model, now Clock) (*ComputedModel, []CellError, error) {
	return evaluateWorkingScenario(working, now, nil)
}

func evaluateWorkingScenario(working *model.Model, now Clock, lookup eval.ScenarioLookup) (*ComputedModel, []CellError, error) {
	if now == nil {
		now = time.Now
	}
	plan, err := resolve.Plan(working)
	if err != nil {
		return nil, nil, err
	}

	ev := eval.New(now())
	ev.Scenario = lookup
	genv := map[string]value.Value{}
	seedConstants(working, genv)

	cm := &ComputedModel{
		Version:   working.Version,
		CellOrder: working.CellOrder,
		Scalars:   map[string]value.Value{},
		Groups:    map[string]map[string]value.Value{},
		Columns:   map[string][]value.Value{},
		Tables:    map[string]map[string][]value.Value{},
	}
	seedComputedConstants(working, cm)

	var errs []CellError
	rowCounts := map[string]int{}
	for table := range tableRowCounts(working) {
		rowCounts[table] = tableRowCounts(working)[table]
	}

	for _, step := range plan.Steps {
		switch step.Kind {
		case resolve.VScalar, resolve.VGroupMember:
			env := eval.NewEnv(genv)
			v := ev.Eval(step.AST, env)
			genv[step.Key] = v
			storeScalar(cm, step, v)
			if v.IsError() {
				errs = append(errs, CellError{Cell: step.Key, Kind: v.ErrorKindUnchecked(), Row: -1})
			}
		case resolve.VColumn:
			n := rowCounts[step.Container]
			if n == 0 {
				n = inferRowCount(genv, working, step.Container)
				rowCounts[step.Container] = n
			}
			siblingCols := working.Cells[step.Container].Table.ColumnOrder
			out := make([]value.Value, n)
			for i := 0; i < n; i++ {
				row := map[string]value.Value{}
				for _, sib := range siblingCols {
					arr, ok := genv[step.Container+"."+sib]
					if !ok || !arr.IsArray() || i >= len(arr.ArrayUnchecked()) {
						continue
					}
					row[sib] = arr.ArrayUnchecked()[i]
				}
				env := eval.NewEnv(genv).Child()
				for k, v := range row {
					env.Bind(k, v)
				}
				v := ev.Eval(step.AST, env)
				out[i] = v
				if v.IsError() {
					errs = append(errs, CellError{Cell: step.Key, Kind: v.ErrorKindUnchecked(), Row: i})
				}
			}
			genv[step.Key] = value.Array(out)
			storeColumn(cm, step, out)
		}
	}

	return cm, errs, nil
}

// checkDialect enforces §6/§8: a "1.0.0" model may not contain Tables.
func checkDialect(m *model.Model) error {
	if m.Version != model.DialectScalarOnly {
		return nil
	}
	for _, name := range m.CellOrder {
		if m.Cells[name].Kind == model.CellTable {
			return ErrDialectViolation.New(name, m.Version)
		}
	}
	return nil
}

// applyScenario clones the Model's cell map and replaces overridden
// scalars wholesale (§4.5); the base Model is never mutated.
func applyScenario(m *model.Model, sc model.Scenario) (*model.Model, error) {
	nm := *m
	nm.Cells = make(map[string]model.Cell, len(m.Cells))
	for k, v := range m.Cells {
		nm.Cells[k] = v
	}
	for _, ov := range sc.Overrides {
		if err := applyOverride(&nm, ov); err != nil {
			return nil, err
		}
	}
	return &nm, nil
}

func applyOverride(nm *model.Model, ov model.Override) error {
	newScalar := func(old model.Scalar) model.Scalar {
		if ov.HasLiteral {
			return model.Scalar{HasValue: true, Literal: ov.LiteralOverride}
		}
		return model.Scalar{HasValue: false, Formula: ov.FormulaOverride}
	}

	if idx := strings.Index(ov.CellName, "."); idx > 0 {
		group, member := ov.CellName[:idx], ov.CellName[idx+1:]
		cell, ok := nm.Cells[group]
		if !ok || cell.Kind != model.CellGroup {
			return ErrUnknownOverride.New(ov.CellName)
		}
		if _, ok := cell.Group.Members[member]; !ok {
			return ErrUnknownOverride.New(ov.CellName)
		}
		newGroup := *cell.Group
		newMembers := make(map[string]model.Scalar, len(cell.Group.Members))
		for k, v := range cell.Group.Members {
			newMembers[k] = v
		}
		newMembers[member] = newScalar(newMembers[member])
		newGroup.Members = newMembers
		nm.Cells[group] = model.Cell{Kind: model.CellGroup, Group: &newGroup}
		return nil
	}

	cell, ok := nm.Cells[ov.CellName]
	if !ok || cell.Kind != model.CellScalar {
		return ErrUnknownOverride.New(ov.CellName)
	}
	sc := newScalar(*cell.Scalar)
	nm.Cells[ov.CellName] = model.Cell{Kind: model.CellScalar, Scalar: &sc}
	return nil
}

// seedConstants populates the flat evaluation environment with every
// cell that needs no evaluation step: constant scalars, constant group
// members, and constant columns (§4.4 step 3).
func seedConstants(m *model.Model, genv map[string]value.Value) {
	for _, name := range m.CellOrder {
		cell := m.Cells[name]
		switch cell.Kind {
		case model.CellScalar:
			if !cell.Scalar.IsFormula() {
				genv[name] = literalValue(cell.Scalar.Literal, cell.Scalar.HasValue)
			}
		case model.CellGroup:
			for _, mem := range cell.Group.MemberOrder {
				sc := cell.Group.Members[mem]
				if !sc.IsFormula() {
					genv[name+"."+mem] = literalValue(sc.Literal, sc.HasValue)
				}
			}
		case model.CellTable:
			for _, col := range cell.Table.ColumnOrder {
				c := cell.Table.Columns[col]
				if !c.IsFormula() {
					vs := make([]value.Value, len(c.Literals))
					for i, lit := range c.Literals {
						vs[i] = literalValue(lit, true)
					}
					genv[name+"."+col] = value.Array(vs)
				}
			}
		case model.CellColumn:
			// A bare top-level Column cell (outside any Table).
			vs := make([]value.Value, len(cell.Column.Literals))
			for i, lit := range cell.Column.Literals {
				vs[i] = literalValue(lit, true)
			}
			genv[name] = value.Array(vs)
		}
	}
}

func seedComputedConstants(m *model.Model, cm *ComputedModel) {
	for _, name := range m.CellOrder {
		cell := m.Cells[name]
		switch cell.Kind {
		case model.CellScalar:
			if !cell.Scalar.IsFormula() {
				cm.Scalars[name] = literalValue(cell.Scalar.Literal, cell.Scalar.HasValue)
			}
		case model.CellGroup:
			members := map[string]value.Value{}
			for _, mem := range cell.Group.MemberOrder {
				sc := cell.Group.Members[mem]
				if !sc.IsFormula() {
					members[mem] = literalValue(sc.Literal, sc.HasValue)
				}
			}
			cm.Groups[name] = members
		case model.CellTable:
			cols := map[string][]value.Value{}
			for _, col := range cell.Table.ColumnOrder {
				c := cell.Table.Columns[col]
				if !c.IsFormula() {
					vs := make([]value.Value, len(c.Literals))
					for i, lit := range c.Literals {
						vs[i] = literalValue(lit, true)
					}
					cols[col] = vs
				}
			}
			cm.Tables[name] = cols
		case model.CellColumn:
			vs := make([]value.Value, len(cell.Column.Literals))
			for i, lit := range cell.Column.Literals {
				vs[i] = literalValue(lit, true)
			}
			cm.Columns[name] = vs
		}
	}
}

func literalValue(lit interface{}, has bool) value.Value {
	if !has {
		return value.Empty()
	}
	switch t := lit.(type) {
	case float64:
		return value.Number(t)
	case int:
		return value.Number(float64(t))
	case string:
		return value.Text(t)
	case bool:
		return value.Boolean(t)
	case nil:
		return value.Empty()
	default:
		return value.Empty()
	}
}

func storeScalar(cm *ComputedModel, step resolve.Step, v value.Value) {
	switch step.Kind {
	case resolve.VScalar:
		cm.Scalars[step.Key] = v
	case resolve.VGroupMember:
		if cm.Groups[step.Container] == nil {
			cm.Groups[step.Container] = map[string]value.Value{}
		}
		cm.Groups[step.Container][step.Member] = v
	}
}

func storeColumn(cm *ComputedModel, step resolve.Step, vs []value.Value) {
	if cm.Tables[step.Container] == nil {
		cm.Tables[step.Container] = map[string][]value.Value{}
	}
	cm.Tables[step.Container][step.Member] = vs
}

// tableRowCounts returns, for each Table in the model, the row count
// implied by its longest declared constant column (0 if none is
// constant; inferRowCount then takes the length of an already-evaluated
// sibling column, and a table with neither evaluates to zero rows).
func tableRowCounts(m *model.Model) map[string]int {
	out := map[string]int{}
	for _, name := range m.CellOrder {
		cell := m.Cells[name]
		if cell.Kind != model.CellTable {
			continue
		}
		best := 0
		for _, col := range cell.Table.ColumnOrder {
			c := cell.Table.Columns[col]
			if !c.IsFormula() && len(c.Literals) > best {
				best = len(c.Literals)
			}
		}
		out[name] = best
	}
	return out
}

// inferRowCount falls back to the length of whichever sibling column has
// already been evaluated, for a table whose row count is driven entirely
// by upstream formula columns rather than a constant column.
func inferRowCount(genv map[string]value.Value, m *model.Model, table string) int {
	for _, col := range m.Cells[table].Table.ColumnOrder {
		if arr, ok := genv[table+"."+col]; ok && arr.IsArray() {
			return len(arr.ArrayUnchecked())
		}
	}
	return 0
}

// ParseOverrideFormula is exposed for analytics drivers (§4.6) that build
// ad hoc single-cell overrides (sensitivity grids, tornado swings,
// goal-seek probes) without going through a declared Scenario.
func ParseOverrideFormula(formula string) (ast.Node, error) {
	return parser.Parse(formula)
}
