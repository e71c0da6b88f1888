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

	goerrors "gopkg.in/src-d/go-errors.v1"
)

// ErrBadProbabilities is returned when a chance node's children's
// probabilities do not sum to 1 within tolerance (§4.6 "probabilities
// must sum to 1 within 1e-9").
var ErrBadProbabilities = goerrors.NewKind("chance node %q: child probabilities sum to %v, want 1")

// ErrUnknownNodeKind names a DecisionNode.Kind value the rollback does
// not recognize.
var ErrUnknownNodeKind = goerrors.NewKind("unknown decision tree node kind %q")

const probabilityTolerance = 1e-9

// NodeKind discriminates the three tagged node shapes (§4.6 "Nodes are
// tagged decision | chance | terminal").
type NodeKind string

const (
	NodeDecision NodeKind = "decision"
	NodeChance   NodeKind = "chance"
	NodeTerminal NodeKind = "terminal"
)

// DecisionBranch is one edge out of a decision or chance node: Label
// names the choice (decision) or outcome (chance); Probability is only
// meaningful under a chance node.
type DecisionBranch struct {
	Label       string
	Probability float64
	Child       *DecisionNode
}

// DecisionNode is one node of the tree to roll back (§4.6 "Decision
// tree"). Terminal carries Value directly (possibly itself the output
// of a nested Monte Carlo run, computed by the caller beforehand);
// decision and chance carry Branches.
type DecisionNode struct {
	Name     string
	Kind     NodeKind
	Value    float64 // meaningful only when Kind == NodeTerminal
	Branches []DecisionBranch
}

// DecisionNodeResult records one decision/chance node's backed-up value
// and, for decision nodes, which branch was chosen.
type DecisionNodeResult struct {
	Name           string
	Kind           NodeKind
	ExpectedValue  float64
	ChosenBranch   string // decision nodes only
	Tied           bool   // true if more than one branch achieved the max
}

// DecisionTreeResult is the full rollback report (§4.6 "The driver
// reports the root's expected value, the optimal decision at each
// decision node, and the derived best-case / worst-case /
// probability-of-positive outcome").
type DecisionTreeResult struct {
	RootExpectedValue   float64
	Nodes               []DecisionNodeResult
	BestCase            float64
	WorstCase           float64
	ProbabilityPositive float64
}

// leafOutcome is one root-to-leaf path's terminal value and the
// cumulative probability of reaching it (chance-node probabilities
// multiplied along the path; a decision node contributes probability 1
// to its chosen branch alone, since the decision-maker always takes
// the optimal branch).
type leafOutcome struct {
	value float64
	prob  float64
}

// RollbackDecisionTree implements §4.6's decision tree driver: a
// depth-first, post-order rollback that backs up chance nodes as a
// probability-weighted sum and decision nodes as a pointwise maximum,
// tie-broken by declaration order. Best-case, worst-case and
// probability-of-positive-outcome are derived from the leaves actually
// reachable under the optimal policy (the branch not taken at a
// decision node contributes to neither).
func RollbackDecisionTree(root *DecisionNode) (*DecisionTreeResult, error) {
	var nodes []DecisionNodeResult

	var rollback func(n *DecisionNode, pathProb float64) (float64, []leafOutcome, error)
	rollback = func(n *DecisionNode, pathProb float64) (float64, []leafOutcome, error) {
		switch n.Kind {
		case NodeTerminal:
			return n.Value, []leafOutcome{{value: n.Value, prob: pathProb}}, nil
		case NodeChance:
			var sum, probSum float64
			var leaves []leafOutcome
			for _, b := range n.Branches {
				v, childLeaves, err := rollback(b.Child, pathProb*b.Probability)
				if err != nil {
					return 0, nil, err
				}
				sum += b.Probability * v
				probSum += b.Probability
				leaves = append(leaves, childLeaves...)
			}
			if math.Abs(probSum-1) > probabilityTolerance {
				return 0, nil, ErrBadProbabilities.New(n.Name, probSum)
			}
			nodes = append(nodes, DecisionNodeResult{Name: n.Name, Kind: n.Kind, ExpectedValue: sum})
			return sum, leaves, nil
		case NodeDecision:
			type branchOutcome struct {
				value  float64
				leaves []leafOutcome
			}
			outcomes := make([]branchOutcome, len(n.Branches))
			for i, b := range n.Branches {
				v, childLeaves, err := rollback(b.Child, pathProb)
				if err != nil {
					return 0, nil, err
				}
				outcomes[i] = branchOutcome{value: v, leaves: childLeaves}
			}
			best := math.Inf(-1)
			bestIdx := -1
			tied := false
			for i, o := range outcomes {
				if o.value > best {
					best = o.value
					bestIdx = i
					tied = false
				} else if o.value == best {
					tied = true
				}
			}
			nodes = append(nodes, DecisionNodeResult{
				Name: n.Name, Kind: n.Kind, ExpectedValue: best,
				ChosenBranch: n.Branches[bestIdx].Label, Tied: tied,
			})
			return best, outcomes[bestIdx].leaves, nil
		default:
			return 0, nil, ErrUnknownNodeKind.New(n.Kind)
		}
	}

	rootValue, leaves, err := rollback(root, 1.0)
	if err != nil {
		return nil, err
	}

	res := &DecisionTreeResult{RootExpectedValue: rootValue, Nodes: nodes}
	if len(leaves) > 0 {
		res.BestCase = leaves[0].value
		res.WorstCase = leaves[0].value
		var positiveProb float64
		for _, lf := range leaves {
			if lf.value > res.BestCase {
				res.BestCase = lf.value
			}
			if lf.value < res.WorstCase {
				res.WorstCase = lf.value
			}
			if lf.value > 0 {
				positiveProb += lf.prob
			}
		}
		res.ProbabilityPositive = positiveProb
	}
	return res, nil
}
