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

// Package resolve is the Dependency Resolver (§4.3): it extracts the
// names a formula reads, builds a vertex-index graph (§9 "Cyclic and
// shared references... use vertex-index arenas"), and orders every
// formula-bearing cell into a deterministic evaluation plan with Kahn's
// algorithm, breaking ties by declaration order.
package resolve

import (
	"fmt"
	"strings"

	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/mollendorff-ai/forge/ast"
	"github.com/mollendorff-ai/forge/model"
	"github.com/mollendorff-ai/forge/parser"
)

// ErrCycle is a model-level failure (§7): the dependency graph is not a
// DAG. The message carries a witnessing back-edge path (§4.3 "report the
// cycle (a witnessing back-edge path)").
var ErrCycle = goerrors.NewKind("dependency cycle: %s")

// ErrUnresolvedName is a model-level failure (§7): a formula reads a name
// that is not a cell in the model (§4.3 "Err(cycle | unresolved name)").
var ErrUnresolvedName = goerrors.NewKind("cell %q references unknown name %q")

// VertexKind discriminates the granularity at which a formula-bearing
// cell is scheduled (§4.3 "table-column granularity for row-wise
// computation, whole-cell granularity otherwise").
type VertexKind int

const (
	VScalar VertexKind = iota
	VGroupMember
	VColumn
	VAggregation // a scalar formula that reads one or more whole columns
)

// Step is one entry of a Plan: a single formula-bearing cell, in the
// order it must be evaluated.
type Step struct {
	Key       string // "name", "group.member", or "table.column"
	Kind      VertexKind
	Container string // group or table name; "" for a bare scalar
	Member    string // member or column name; "" for a bare scalar
	Formula   string
	AST       ast.Node
}

// Plan is the Resolver's output (§4.3 contract: "plan(model) -> Ok(...)").
type Plan struct {
	Steps []Step
}

// known records every name the model declares, and whether that name is
// itself formula-backed (needs a Step before it can be read).
type known struct {
	exists       map[string]bool
	formulaOwner map[string]bool
}

// tableSiblings maps table name -> set of column names declared in it, so
// a bare reference inside a row-wise formula can be recognized as a
// sibling-column read rather than a foreign top-level name (§4.3
// "Row-wise fan-out").
func buildKnown(m *model.Model) (known, map[string][]string) {
	k := known{exists: map[string]bool{}, formulaOwner: map[string]bool{}}
	siblings := map[string][]string{}
	for _, name := range m.CellOrder {
		cell := m.Cells[name]
		switch cell.Kind {
		case model.CellScalar:
			k.exists[name] = true
			if cell.Scalar.IsFormula() {
				k.formulaOwner[name] = true
			}
		case model.CellGroup:
			for _, mem := range cell.Group.MemberOrder {
				key := name + "." + mem
				k.exists[key] = true
				if cell.Group.Members[mem].IsFormula() {
					k.formulaOwner[key] = true
				}
			}
		case model.CellTable:
			cols := append([]string(nil), cell.Table.ColumnOrder...)
			siblings[name] = cols
			for _, col := range cell.Table.ColumnOrder {
				key := name + "." + col
				k.exists[key] = true
				if cell.Table.Columns[col].IsFormula() {
					k.formulaOwner[key] = true
				}
			}
		}
	}
	return k, siblings
}

// ExtractRefs walks an AST and returns the free names it reads (§4.3 step
// 1), excluding names bound locally by an enclosing LET or LAMBDA (those
// shadow, per §4.2/§9, and are not model dependencies). Order is
// first-encounter, deduplicated.
func ExtractRefs(n ast.Node) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(n ast.Node, bound map[string]bool)
	cloneBound := func(b map[string]bool) map[string]bool {
		nb := make(map[string]bool, len(b)+2)
		for k := range b {
			nb[k] = true
		}
		return nb
	}
	walk = func(n ast.Node, bound map[string]bool) {
		if n == nil {
			return
		}
		switch t := n.(type) {
		case *ast.Literal:
		case *ast.NameRef:
			if bound[t.Name] {
				return
			}
			if !seen[t.Name] {
				seen[t.Name] = true
				out = append(out, t.Name)
			}
		case *ast.UnaryOp:
			walk(t.Expr, bound)
		case *ast.PostfixOp:
			walk(t.Expr, bound)
		case *ast.BinaryOp:
			walk(t.Left, bound)
			walk(t.Right, bound)
		case *ast.Call:
			for _, a := range t.Args {
				walk(a, bound)
			}
		case *ast.Apply:
			walk(t.Callee, bound)
			for _, a := range t.Args {
				walk(a, bound)
			}
		case *ast.ArrayLiteral:
			for _, el := range t.Elements {
				walk(el, bound)
			}
		case *ast.LambdaLiteral:
			nb := cloneBound(bound)
			for _, p := range t.Params {
				nb[p] = true
			}
			walk(t.Body, nb)
		case *ast.LetBinding:
			nb := cloneBound(bound)
			for i, name := range t.Names {
				walk(t.Exprs[i], nb)
				nb[name] = true
			}
			walk(t.Body, nb)
		}
	}
	walk(n, map[string]bool{})
	return out
}

// resolveRef maps a raw reference name found inside a formula to the
// vertex key it actually depends on. Inside a table's row-wise formula, a
// bare (undotted) name that matches a sibling column shadows any
// top-level name of the same spelling (§4.3, matching the Model
// Evaluator's row overlay precedence, §4.4).
func resolveRef(ref, inTable string, siblings map[string][]string) string {
	if inTable != "" && !strings.Contains(ref, ".") {
		for _, c := range siblings[inTable] {
			if c == ref {
				return inTable + "." + ref
			}
		}
	}
	return ref
}

// Plan builds a deterministic evaluation plan for a Model (§4.3).
func Plan(m *model.Model) (*Plan, error) {
	k, siblings := buildKnown(m)

	var steps []Step
	stepIndex := map[string]int{}

	addStep := func(s Step) {
		stepIndex[s.Key] = len(steps)
		steps = append(steps, s)
	}

	for _, name := range m.CellOrder {
		cell := m.Cells[name]
		switch cell.Kind {
		case model.CellScalar:
			if cell.Scalar.IsFormula() {
				n, err := parser.Parse(cell.Scalar.Formula)
				if err != nil {
					return nil, err
				}
				addStep(Step{Key: name, Kind: VScalar, Formula: cell.Scalar.Formula, AST: n})
			}
		case model.CellGroup:
			for _, mem := range cell.Group.MemberOrder {
				sc := cell.Group.Members[mem]
				if sc.IsFormula() {
					n, err := parser.Parse(sc.Formula)
					if err != nil {
						return nil, err
					}
					addStep(Step{Key: name + "." + mem, Kind: VGroupMember, Container: name, Member: mem, Formula: sc.Formula, AST: n})
				}
			}
		case model.CellTable:
			for _, col := range cell.Table.ColumnOrder {
				c := cell.Table.Columns[col]
				if c.IsFormula() {
					n, err := parser.Parse(c.Formula)
					if err != nil {
						return nil, err
					}
					addStep(Step{Key: name + "." + col, Kind: VColumn, Container: name, Member: col, Formula: c.Formula, AST: n})
				}
			}
		}
	}

	// Build edges: dep -> dependents, and each step's unresolved in-degree.
	dependents := make(map[string][]string, len(steps))
	indegree := make([]int, len(steps))

	for i, s := range steps {
		refs := ExtractRefs(s.AST)
		seenDeps := map[string]bool{}
		for _, ref := range refs {
			depKey := resolveRef(ref, s.Container, siblings)
			if depKey == s.Key {
				// A row-wise column may legitimately reference itself only
				// through a different row index at evaluation time; as a
				// whole-cell dependency that is a genuine cycle.
				return nil, ErrCycle.New(s.Key + " -> " + s.Key)
			}
			if !k.exists[depKey] {
				return nil, ErrUnresolvedName.New(s.Key, ref)
			}
			if !k.formulaOwner[depKey] {
				continue // constant cell: already seeded, no ordering edge
			}
			if seenDeps[depKey] {
				continue
			}
			seenDeps[depKey] = true
			dependents[depKey] = append(dependents[depKey], s.Key)
			indegree[i]++
		}
	}

	// Kahn's algorithm, tie-broken by declaration order (§4.3, §5, §8
	// "Topological plan stability").
	ready := make([]bool, len(steps))
	for i := range steps {
		ready[i] = indegree[i] == 0
	}
	var order []Step
	placed := make([]bool, len(steps))
	for len(order) < len(steps) {
		next := -1
		for i := range steps {
			if !placed[i] && ready[i] {
				next = i
				break
			}
		}
		if next == -1 {
			return nil, ErrCycle.New(witnessCycle(steps, placed, dependents, stepIndex))
		}
		placed[next] = true
		order = append(order, steps[next])
		for _, depKey := range dependents[steps[next].Key] {
			j := stepIndex[depKey]
			indegree[j]--
			if indegree[j] == 0 {
				ready[j] = true
			}
		}
	}

	return &Plan{Steps: order}, nil
}

// witnessCycle finds a concrete back-edge path among the still-unplaced
// steps for the cycle diagnostic (§4.3, §7 "for cycles: the witnessing
// cycle"). Vertices left unplaced after Kahn's pass are exactly those on
// (or downstream of) a cycle; a DFS that tracks the current recursion
// stack finds a real back edge and reports the path from the repeated
// vertex around to itself, not merely the repeated vertex's name.
func witnessCycle(steps []Step, placed []bool, dependents map[string][]string, stepIndex map[string]int) string {
	remaining := map[string]bool{}
	for i, s := range steps {
		if !placed[i] {
			remaining[s.Key] = true
		}
	}
	// Reverse dependents into "depends on" edges restricted to remaining.
	dependsOn := map[string][]string{}
	for dep, readers := range dependents {
		if !remaining[dep] {
			continue
		}
		for _, r := range readers {
			if remaining[r] {
				dependsOn[r] = append(dependsOn[r], dep)
			}
		}
	}

	// Deterministic start order (§5 "Hash-map iteration that affects
	// results must be replaced with order-preserving traversal"):
	// declaration order among the still-unplaced steps, not map order.
	var startOrder []string
	for _, s := range steps {
		if remaining[s.Key] {
			startOrder = append(startOrder, s.Key)
		}
	}

	visited := map[string]bool{}
	onStack := map[string]bool{}
	var path []string
	var cycle []string

	var dfs func(n string) bool
	dfs = func(n string) bool {
		visited[n] = true
		onStack[n] = true
		path = append(path, n)
		for _, dep := range dependsOn[n] {
			if onStack[dep] {
				idx := 0
				for i, p := range path {
					if p == dep {
						idx = i
						break
					}
				}
				cycle = append(append([]string(nil), path[idx:]...), dep)
				return true
			}
			if !visited[dep] && dfs(dep) {
				return true
			}
		}
		onStack[n] = false
		path = path[:len(path)-1]
		return false
	}

	for _, k := range startOrder {
		if !visited[k] && dfs(k) {
			break
		}
	}
	if cycle == nil {
		// Every remaining vertex reaches a dead end without closing a
		// back edge onto itself; report the remaining set itself (still
		// deterministic, declaration-ordered) rather than nothing.
		return strings.Join(startOrder, " -> ")
	}
	return strings.Join(cycle, " -> ")
}

// Dependencies returns the upstream (producer) cell keys that cellName
// transitively reads, each once, in depth-first discovery order (§6 "dependencies
// (model, cell_name) -> DAG of upstream cells", used by audit).
func Dependencies(m *model.Model, cellName string) ([]string, error) {
	plan, err := Plan(m)
	if err != nil {
		return nil, err
	}
	byKey := map[string]Step{}
	for _, s := range plan.Steps {
		byKey[s.Key] = s
	}
	k, siblings := buildKnown(m)

	visited := map[string]bool{}
	var order []string
	var visit func(key string)
	visit = func(key string) {
		if visited[key] {
			return
		}
		visited[key] = true
		s, ok := byKey[key]
		if !ok {
			return
		}
		for _, ref := range ExtractRefs(s.AST) {
			depKey := resolveRef(ref, s.Container, siblings)
			if !k.exists[depKey] || visited[depKey] {
				continue
			}
			order = append(order, depKey)
			visit(depKey)
		}
	}
	visit(cellName)
	return order, nil
}

// DescribeCycle is a convenience for callers that want a formatted
// diagnostic without re-deriving the message text (§7).
func DescribeCycle(path string) string {
	return fmt.Sprintf("dependency cycle: %s", path)
}
