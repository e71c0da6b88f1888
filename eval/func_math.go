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

	"github.com/mollendorff-ai/forge/value"
)

func init() {
	builtins["ABS"] = unaryMath(math.Abs)
	builtins["SQRT"] = func(e *Evaluator, args []value.Value) value.Value {
		n, k, ok := one(args)
		if !ok {
			return errValue(k)
		}
		if n < 0 {
			return errValue(value.Num)
		}
		return value.Number(math.Sqrt(n))
	}
	builtins["EXP"] = unaryMath(math.Exp)
	builtins["LN"] = func(e *Evaluator, args []value.Value) value.Value {
		n, k, ok := one(args)
		if !ok {
			return errValue(k)
		}
		if n <= 0 {
			return errValue(value.Num)
		}
		return value.Number(math.Log(n))
	}
	builtins["LOG10"] = func(e *Evaluator, args []value.Value) value.Value {
		n, k, ok := one(args)
		if !ok {
			return errValue(k)
		}
		if n <= 0 {
			return errValue(value.Num)
		}
		return value.Number(math.Log10(n))
	}
	builtins["LOG"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok {
			return errValue(k)
		}
		if len(nums) < 1 || len(nums) > 2 || nums[0] <= 0 {
			return errValue(value.Num)
		}
		base := 10.0
		if len(nums) == 2 {
			base = nums[1]
			if base <= 0 || base == 1 {
				return errValue(value.Num)
			}
		}
		return value.Number(math.Log(nums[0]) / math.Log(base))
	}
	builtins["SIGN"] = func(e *Evaluator, args []value.Value) value.Value {
		n, k, ok := one(args)
		if !ok {
			return errValue(k)
		}
		switch {
		case n > 0:
			return value.Number(1)
		case n < 0:
			return value.Number(-1)
		default:
			return value.Number(0)
		}
	}
	builtins["INT"] = unaryMath(math.Floor)
	builtins["PI"] = func(e *Evaluator, args []value.Value) value.Value { return value.Number(math.Pi) }

	builtins["POWER"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) != 2 {
			return errValue(k)
		}
		return power(nums[0], nums[1])
	}
	builtins["MOD"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) != 2 {
			return errValue(k)
		}
		x, d := nums[0], nums[1]
		if d == 0 {
			return errValue(value.DivZero)
		}
		r := math.Mod(x, d)
		if r != 0 && (r < 0) != (d < 0) {
			r += d
		}
		return value.Number(r)
	}
	builtins["GCD"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) == 0 {
			return errValue(k)
		}
		g := int64(math.Abs(nums[0]))
		for _, n := range nums[1:] {
			g = gcd(g, int64(math.Abs(n)))
		}
		return value.Number(float64(g))
	}
	builtins["LCM"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) == 0 {
			return errValue(k)
		}
		l := int64(math.Abs(nums[0]))
		for _, n := range nums[1:] {
			m := int64(math.Abs(n))
			if l == 0 || m == 0 {
				l = 0
				continue
			}
			l = l / gcd(l, m) * m
		}
		return value.Number(float64(l))
	}

	builtins["CEILING"] = roundToMultiple(math.Ceil)
	builtins["FLOOR"] = roundToMultiple(math.Floor)
	builtins["ROUND"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) != 2 {
			return errValue(k)
		}
		return value.Number(roundDigits(nums[0], int(nums[1])))
	}
	builtins["ROUNDUP"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) != 2 {
			return errValue(k)
		}
		scale := math.Pow(10, nums[1])
		if nums[0] >= 0 {
			return value.Number(math.Ceil(nums[0]*scale) / scale)
		}
		return value.Number(math.Floor(nums[0]*scale) / scale)
	}
	builtins["ROUNDDOWN"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) != 2 {
			return errValue(k)
		}
		scale := math.Pow(10, nums[1])
		if nums[0] >= 0 {
			return value.Number(math.Floor(nums[0]*scale) / scale)
		}
		return value.Number(math.Ceil(nums[0]*scale) / scale)
	}
	builtins["TRUNC"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) == 0 {
			return errValue(k)
		}
		digits := 0
		if len(nums) == 2 {
			digits = int(nums[1])
		}
		scale := math.Pow(10, float64(digits))
		return value.Number(math.Trunc(nums[0]*scale) / scale)
	}

	// Trig (§4.1 category "trig").
	builtins["SIN"] = unaryMath(math.Sin)
	builtins["COS"] = unaryMath(math.Cos)
	builtins["TAN"] = unaryMath(math.Tan)
	builtins["SINH"] = unaryMath(math.Sinh)
	builtins["COSH"] = unaryMath(math.Cosh)
	builtins["TANH"] = unaryMath(math.Tanh)
	builtins["ASIN"] = unaryMath(math.Asin)
	builtins["ACOS"] = unaryMath(math.Acos)
	builtins["ATAN"] = unaryMath(math.Atan)
	builtins["ATAN2"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) != 2 {
			return errValue(k)
		}
		return value.Number(math.Atan2(nums[1], nums[0]))
	}
	builtins["DEGREES"] = unaryMath(func(x float64) float64 { return x * 180 / math.Pi })
	builtins["RADIANS"] = unaryMath(func(x float64) float64 { return x * math.Pi / 180 })
}

func unaryMath(f func(float64) float64) builtinFunc {
	return func(e *Evaluator, args []value.Value) value.Value {
		n, k, ok := one(args)
		if !ok {
			return errValue(k)
		}
		return value.Number(f(n))
	}
}

func roundToMultiple(f func(float64) float64) builtinFunc {
	return func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) == 0 {
			return errValue(k)
		}
		significance := 1.0
		if len(nums) == 2 {
			significance = nums[1]
		}
		if significance == 0 {
			return value.Number(0)
		}
		return value.Number(f(nums[0]/significance) * significance)
	}
}

func roundDigits(x float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	if x >= 0 {
		return math.Floor(x*scale+0.5) / scale
	}
	return math.Ceil(x*scale-0.5) / scale
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

func one(args []value.Value) (float64, value.ErrorKind, bool) {
	if len(args) != 1 {
		return 0, value.Value_, false
	}
	return value.ToNumber(args[0])
}
