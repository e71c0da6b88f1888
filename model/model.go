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

// Package model defines the declarative document Forge evaluates (§3):
// an ordered mapping from name to Cell, plus scenarios, analytics spec
// and configuration. A Model is produced by an external text-document
// parser (out of scope, §1) and is immutable thereafter.
package model

// Dialect is a Model's declared feature level (§6 "version").
type Dialect string

const (
	DialectScalarOnly Dialect = "1.0.0"
	DialectFull       Dialect = "5.0.0"
)

// CellKind discriminates the four addressable shapes of §3.
type CellKind int

const (
	CellScalar CellKind = iota
	CellGroup
	CellColumn
	CellTable
)

// Scalar is "at most one of value/formula is materialized at a time"
// (§3). Formula is a raw "=..." string; it is parsed lazily by the
// evaluator and cached for the duration of one evaluation (§9 "Scenario
// overlays vs configuration maps").
type Scalar struct {
	HasValue bool
	Literal  interface{} // float64, string, bool, or nil for Empty
	Formula  string      // "" if HasValue
}

// IsFormula reports whether this Scalar is formula-backed.
func (s Scalar) IsFormula() bool { return !s.HasValue && s.Formula != "" }

// Group is a mapping from member name to Scalar, referenced as
// "group.member" (§3).
type Group struct {
	Members      map[string]Scalar
	MemberOrder  []string // declaration order, for deterministic plans
}

// Column is an ordered sequence of values belonging to a Table, optionally
// computed by a row-wise formula (§3).
type Column struct {
	Formula  string // "" for a constant array column
	Literals []interface{}
}

// IsFormula reports whether this Column is row-wise formula-backed.
func (c Column) IsFormula() bool { return c.Formula != "" }

// Table is an ordered mapping from column name to Column; every column
// that participates in a row-wise formula must share a row count (§3,
// validated by the Model Evaluator at execution time since row counts are
// only known once constant columns are loaded).
type Table struct {
	Columns     map[string]Column
	ColumnOrder []string
}

// Cell is the addressable element of a Model: exactly one of the four
// pointers below is non-nil, selected by Kind.
type Cell struct {
	Kind   CellKind
	Scalar *Scalar
	Group  *Group
	Column *Column
	Table  *Table
}

// Scenario is a named overlay of cell overrides (§4.5). Overrides replace
// a scalar's definition wholesale: LiteralOverride or FormulaOverride is
// set, never both.
type Override struct {
	CellName        string
	LiteralOverride interface{}
	HasLiteral      bool
	FormulaOverride string
}

type Scenario struct {
	Name      string
	Overrides []Override
}

// AnalyticsKind names the single analytics run recognized per §6; the
// matching engine's options travel in Model.AnalyticsRaw.
type AnalyticsKind string

const (
	AnalyticsNone          AnalyticsKind = ""
	AnalyticsSensitivity   AnalyticsKind = "sensitivity"
	AnalyticsScenarios     AnalyticsKind = "scenarios_compare"
	AnalyticsVariance      AnalyticsKind = "variance"
	AnalyticsMonteCarlo    AnalyticsKind = "monte_carlo"
	AnalyticsBootstrap     AnalyticsKind = "bootstrap"
	AnalyticsTornado       AnalyticsKind = "tornado"
	AnalyticsDecisionTree  AnalyticsKind = "decision_tree"
	AnalyticsRealOptions   AnalyticsKind = "real_options"
	AnalyticsBayesian      AnalyticsKind = "bayesian_network"
)

// Model is the engine's sole input (§3, §6): an ordered mapping from
// top-level name to Cell, plus version tag, scenarios and analytics spec.
type Model struct {
	Version     Dialect
	Cells       map[string]Cell
	CellOrder   []string // declaration order, used by the Resolver's tie-break
	Scenarios   []Scenario
	Analytics   AnalyticsKind
	AnalyticsRaw interface{} // engine-specific option struct, type-asserted by forge.RunAnalytics for the matching engine in package analytics
}

// ScenarioByName finds a scenario by name; the empty string always
// resolves to the implicit base scenario, which applies no overrides
// (§4.5).
func (m *Model) ScenarioByName(name string) (Scenario, bool) {
	if name == "" {
		return Scenario{Name: ""}, true
	}
	for _, s := range m.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}
