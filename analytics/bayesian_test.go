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
)

// A three-node credit-risk network: Economy -> Income -> Default.
func creditRiskNetwork(t *testing.T) *analytics.BayesianNetwork {
	t.Helper()
	nodes := []analytics.BayesianNode{
		{
			Name:   "Economy",
			States: []string{"growth", "recession"},
			CPT:    map[string][]float64{"": {0.7, 0.3}},
		},
		{
			Name:    "Income",
			States:  []string{"high", "low"},
			Parents: []string{"Economy"},
			CPT: map[string][]float64{
				"growth":    {0.8, 0.2},
				"recession": {0.3, 0.7},
			},
		},
		{
			Name:    "Default",
			States:  []string{"no", "yes"},
			Parents: []string{"Income"},
			CPT: map[string][]float64{
				"high": {0.95, 0.05},
				"low":  {0.6, 0.4},
			},
		},
	}
	net, err := analytics.NewBayesianNetwork(nodes)
	require.NoError(t, err)
	return net
}

func TestBayesianMarginalUnconditional(t *testing.T) {
	net := creditRiskNetwork(t)
	probs, err := analytics.Marginal(net, "Default", nil)
	require.NoError(t, err)
	require.Len(t, probs, 2)

	var total float64
	for _, p := range probs {
		total += p
	}
	require.InDelta(t, 1.0, total, 1e-9)

	// P(Income=high) = 0.7*0.8 + 0.3*0.3 = 0.65
	// P(Default=no) = 0.65*0.95 + 0.35*0.6 = 0.8275
	require.InDelta(t, 0.8275, probs[0], 1e-6)
	require.InDelta(t, 0.1725, probs[1], 1e-6)
}

func TestBayesianMarginalWithEvidence(t *testing.T) {
	net := creditRiskNetwork(t)
	probs, err := analytics.Marginal(net, "Default", analytics.Evidence{"Economy": "recession"})
	require.NoError(t, err)

	// Given recession: P(Income=high)=0.3, P(Income=low)=0.7
	// P(Default=no) = 0.3*0.95 + 0.7*0.6 = 0.705
	require.InDelta(t, 0.705, probs[0], 1e-6)
	require.InDelta(t, 0.295, probs[1], 1e-6)
}

// specCreditRiskNetwork is spec.md §8 scenario #6's literal reference
// network: Economy -> Revenue -> Default, three states each. Revenue is
// an identity pass-through of Economy so that the published numbers
// (economy prior [0.3,0.5,0.2]; unconditional P(default)=[0.49,0.32,0.19];
// P(default|economy=bad)=[0.19,0.33,0.48]) fall out of the Default CPT
// rows alone: CPT["bad"] is exactly the conditional-on-bad answer, and
// 0.3*CPT["good"] + 0.5*CPT["average"] + 0.2*CPT["bad"] is exactly the
// unconditional marginal.
func specCreditRiskNetwork(t *testing.T) *analytics.BayesianNetwork {
	t.Helper()
	nodes := []analytics.BayesianNode{
		{
			Name:   "Economy",
			States: []string{"good", "average", "bad"},
			CPT:    map[string][]float64{"": {0.3, 0.5, 0.2}},
		},
		{
			Name:    "Revenue",
			States:  []string{"good", "average", "bad"},
			Parents: []string{"Economy"},
			CPT: map[string][]float64{
				"good":    {1, 0, 0},
				"average": {0, 1, 0},
				"bad":     {0, 0, 1},
			},
		},
		{
			Name:    "Default",
			States:  []string{"low", "medium", "high"},
			Parents: []string{"Revenue"},
			CPT: map[string][]float64{
				"good":    {0.7, 0.2, 0.1},
				"average": {0.484, 0.388, 0.128},
				"bad":     {0.19, 0.33, 0.48},
			},
		},
	}
	net, err := analytics.NewBayesianNetwork(nodes)
	require.NoError(t, err)
	return net
}

func TestBayesianSpecCreditRiskMarginal(t *testing.T) {
	net := specCreditRiskNetwork(t)
	probs, err := analytics.Marginal(net, "Default", nil)
	require.NoError(t, err)
	require.InDelta(t, 0.49, probs[0], 1e-10)
	require.InDelta(t, 0.32, probs[1], 1e-10)
	require.InDelta(t, 0.19, probs[2], 1e-10)
}

func TestBayesianSpecCreditRiskConditionalOnBadEconomy(t *testing.T) {
	net := specCreditRiskNetwork(t)
	probs, err := analytics.Marginal(net, "Default", analytics.Evidence{"Economy": "bad"})
	require.NoError(t, err)
	require.InDelta(t, 0.19, probs[0], 1e-10)
	require.InDelta(t, 0.33, probs[1], 1e-10)
	require.InDelta(t, 0.48, probs[2], 1e-10)
}

func TestBayesianMostLikelyExplanation(t *testing.T) {
	net := creditRiskNetwork(t)
	assignment, prob, err := analytics.MostLikelyExplanation(net, analytics.Evidence{"Default": "yes"})
	require.NoError(t, err)
	require.Equal(t, "yes", assignment["Default"])
	require.Greater(t, prob, 0.0)
	// The evidence-fixed variable is echoed back unconditionally.
	require.Contains(t, assignment, "Economy")
	require.Contains(t, assignment, "Income")
}

func TestBayesianUnknownParentRejected(t *testing.T) {
	_, err := analytics.NewBayesianNetwork([]analytics.BayesianNode{
		{Name: "A", States: []string{"x", "y"}, Parents: []string{"ghost"}, CPT: map[string][]float64{"": {0.5, 0.5}}},
	})
	require.Error(t, err)
}

func TestBayesianBadCPTRowRejected(t *testing.T) {
	_, err := analytics.NewBayesianNetwork([]analytics.BayesianNode{
		{Name: "A", States: []string{"x", "y"}, CPT: map[string][]float64{"": {0.5, 0.6}}},
	})
	require.Error(t, err)
}

func TestBayesianMarginalUnknownQueryRejected(t *testing.T) {
	net := creditRiskNetwork(t)
	_, err := analytics.Marginal(net, "bogus", nil)
	require.Error(t, err)
}

func TestRunBayesianQueryDispatch(t *testing.T) {
	net := creditRiskNetwork(t)
	res, err := analytics.RunBayesianQuery(analytics.BayesianQuery{
		Network: net, Query: "Default", Mode: analytics.BayesianMarginal,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"no", "yes"}, res.States)
	require.Len(t, res.Probabilities, 2)

	mle, err := analytics.RunBayesianQuery(analytics.BayesianQuery{
		Network: net, Mode: analytics.BayesianMLE, Evidence: analytics.Evidence{"Economy": "growth"},
	})
	require.NoError(t, err)
	require.Equal(t, "growth", mle.Assignment["Economy"])
}
