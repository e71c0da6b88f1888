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

package eval

import (
	"math"
	"strings"

	"github.com/mollendorff-ai/forge/value"
)

// init registers Forge's own forge-native functions (§4.2, §6 Design
// Notes "Variance status", "Break-even") and the MC.* distribution
// constructors (§9 "MC.* handles as values").
func init() {
	builtins["VARIANCE"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) != 2 {
			return errValue(k)
		}
		return value.Number(nums[0] - nums[1])
	}
	builtins["VARIANCE_PCT"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) != 2 {
			return errValue(k)
		}
		if nums[1] == 0 {
			return errValue(value.DivZero)
		}
		return value.Number((nums[0] - nums[1]) / nums[1])
	}
	builtins["VARIANCE_STATUS"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) < 2 || len(args) > 3 {
			return errValue(value.Value_)
		}
		actual, k, ok := value.ToNumber(args[0])
		if !ok {
			return errValue(k)
		}
		budget, k, ok := value.ToNumber(args[1])
		if !ok {
			return errValue(k)
		}
		isCost := false
		if len(args) == 3 {
			kind, k, ok := value.ToText(args[2])
			if !ok {
				return errValue(k)
			}
			isCost = strings.EqualFold(kind, "cost")
		}
		diff := actual - budget
		if diff == 0 {
			return value.Text("ON_TARGET")
		}
		good := diff > 0
		if isCost {
			good = !good
		}
		if good {
			return value.Text("BEAT")
		}
		return value.Text("MISS")
	}
	builtins["BREAKEVEN_UNITS"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) != 3 {
			return errValue(k)
		}
		fixedCosts, price, variableCost := nums[0], nums[1], nums[2]
		margin := price - variableCost
		if margin <= 0 {
			return errValue(value.Num)
		}
		// Ceiling, not round-half-up: the first unit count at which profit
		// is non-negative is never under-reported (DESIGN.md Open Question #1).
		return value.Number(math.Ceil(fixedCosts / margin))
	}
	builtins["BREAKEVEN_REVENUE"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) != 2 {
			return errValue(k)
		}
		fixedCosts, marginPct := nums[0], nums[1]
		if marginPct <= 0 {
			return errValue(value.Num)
		}
		return value.Number(fixedCosts / marginPct)
	}

	builtins["MC.Normal"] = mcHandle("Normal", 2)
	builtins["MC.Uniform"] = mcHandle("Uniform", 2)
	builtins["MC.Triangular"] = mcHandle("Triangular", 3)
	builtins["MC.PERT"] = mcHandleRange("PERT", 3, 4)
	builtins["MC.LogNormal"] = mcHandle("LogNormal", 2)
}

// mcHandle builds the constructor for a fixed-arity MC.* distribution
// (§4.2 "MC.Normal, MC.Uniform, ..."). Evaluated outside the Monte Carlo
// driver's pre-scan, it simply returns the handle Value; the driver
// intercepts it and substitutes a sampled scalar before re-evaluating
// (§9).
func mcHandle(name string, arity int) builtinFunc {
	return mcHandleRange(name, arity, arity)
}

func mcHandleRange(name string, minArity, maxArity int) builtinFunc {
	return func(e *Evaluator, args []value.Value) value.Value {
		if len(args) < minArity || len(args) > maxArity {
			return errValue(value.Value_)
		}
		nums, k, ok := argNumbers(args)
		if !ok {
			return errValue(k)
		}
		return value.DistHandle(&value.Distribution{Name: name, Params: nums})
	}
}
