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

func baseOptions(typ analytics.OptionType) analytics.RealOptionsOptions {
	return analytics.RealOptionsOptions{
		Type:           typ,
		Underlying:     100,
		Strike:         100,
		Volatility:     0.25,
		RiskFreeRate:   0.05,
		TimeToMaturity: 1,
	}
}

func TestPriceRealOptionBlackScholesDefaultMethod(t *testing.T) {
	res, err := analytics.PriceRealOption(baseOptions(analytics.OptionDefer))
	require.NoError(t, err)
	require.Equal(t, analytics.MethodBlackScholes, res.Method)
	require.Greater(t, res.Value, 0.0)
}

func TestPriceRealOptionContractIsPutLike(t *testing.T) {
	opts := baseOptions(analytics.OptionContract)
	opts.Method = analytics.MethodBlackScholes
	res, err := analytics.PriceRealOption(opts)
	require.NoError(t, err)

	callOpts := opts
	callOpts.Type = analytics.OptionExpand
	callRes, err := analytics.PriceRealOption(callOpts)
	require.NoError(t, err)

	// With identical parameters, put and call value differ (put-call
	// parity holds, they are not the same number).
	require.NotEqual(t, res.Value, callRes.Value)
}

func TestPriceRealOptionUnsupportedType(t *testing.T) {
	_, err := analytics.PriceRealOption(analytics.RealOptionsOptions{Type: "bogus"})
	require.Error(t, err)
}

func TestPriceRealOptionUnsupportedMethod(t *testing.T) {
	opts := baseOptions(analytics.OptionDefer)
	opts.Method = "bogus"
	_, err := analytics.PriceRealOption(opts)
	require.Error(t, err)
}

func TestPriceRealOptionBinomialConvergesNearBlackScholes(t *testing.T) {
	// With zero dividend yield, an American call is never optimal to
	// exercise early, so the CRR lattice should land close to the
	// closed-form European price.
	bsOpts := baseOptions(analytics.OptionDefer)
	bsOpts.Method = analytics.MethodBlackScholes
	bs, err := analytics.PriceRealOption(bsOpts)
	require.NoError(t, err)

	binOpts := bsOpts
	binOpts.Method = analytics.MethodBinomial
	binOpts.InitialSteps = 50
	bin, err := analytics.PriceRealOption(binOpts)
	require.NoError(t, err)

	require.InDelta(t, bs.Value, bin.Value, 0.5)
	require.Greater(t, bin.StepsUsed, 0)
}

func TestPriceRealOptionLongstaffSchwartzPositive(t *testing.T) {
	opts := baseOptions(analytics.OptionAbandon)
	opts.Method = analytics.MethodLongstaffSchwartz
	opts.Paths = 2000
	opts.Steps = 20
	seed := int64(99)
	opts.Seed = &seed
	res, err := analytics.PriceRealOption(opts)
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.Value, 0.0)
}

func TestPriceRealOptionLongstaffSchwartzDeterministic(t *testing.T) {
	opts := baseOptions(analytics.OptionContract)
	opts.Method = analytics.MethodLongstaffSchwartz
	opts.Paths = 1000
	opts.Steps = 10
	seed := int64(5)
	opts.Seed = &seed
	r1, err := analytics.PriceRealOption(opts)
	require.NoError(t, err)
	r2, err := analytics.PriceRealOption(opts)
	require.NoError(t, err)
	require.Equal(t, r1.Value, r2.Value)
}
