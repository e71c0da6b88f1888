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
	"strconv"
	"strings"

	"github.com/mollendorff-ai/forge/value"
)

func init() {
	builtins["SUM"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := numericOnly(flattenAll(args))
		if !ok {
			return errValue(k)
		}
		var s float64
		for _, n := range nums {
			s += n
		}
		return value.Number(s)
	}
	builtins["AVERAGE"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := numericOnly(flattenAll(args))
		if !ok {
			return errValue(k)
		}
		if len(nums) == 0 {
			return errValue(value.DivZero)
		}
		return value.Number(mean(nums))
	}
	builtins["COUNT"] = func(e *Evaluator, args []value.Value) value.Value {
		flat := flattenAll(args)
		n := 0
		for _, v := range flat {
			switch v.Kind() {
			case value.KindNumber, value.KindDate:
				n++
			}
		}
		return value.Number(float64(n))
	}
	builtins["COUNTA"] = func(e *Evaluator, args []value.Value) value.Value {
		flat := flattenAll(args)
		n := 0
		for _, v := range flat {
			if !v.IsEmpty() {
				n++
			}
		}
		return value.Number(float64(n))
	}
	builtins["COUNTBLANK"] = func(e *Evaluator, args []value.Value) value.Value {
		flat := flattenAll(args)
		n := 0
		for _, v := range flat {
			if v.IsEmpty() {
				n++
			}
		}
		return value.Number(float64(n))
	}
	builtins["MAX"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := numericOnly(flattenAll(args))
		if !ok {
			return errValue(k)
		}
		if len(nums) == 0 {
			return value.Number(0)
		}
		m := nums[0]
		for _, n := range nums[1:] {
			if n > m {
				m = n
			}
		}
		return value.Number(m)
	}
	builtins["MIN"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := numericOnly(flattenAll(args))
		if !ok {
			return errValue(k)
		}
		if len(nums) == 0 {
			return value.Number(0)
		}
		m := nums[0]
		for _, n := range nums[1:] {
			if n < m {
				m = n
			}
		}
		return value.Number(m)
	}
	builtins["PRODUCT"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := numericOnly(flattenAll(args))
		if !ok {
			return errValue(k)
		}
		p := 1.0
		for _, n := range nums {
			p *= n
		}
		return value.Number(p)
	}
	builtins["SUMPRODUCT"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) == 0 {
			return value.Number(0)
		}
		arrays := make([][]value.Value, len(args))
		for i, a := range args {
			arrays[i] = a.Flatten()
		}
		n := len(arrays[0])
		for _, a := range arrays {
			if len(a) != n {
				return errValue(value.Value_)
			}
		}
		var total float64
		for i := 0; i < n; i++ {
			prod := 1.0
			for _, a := range arrays {
				f, k, ok := value.ToNumber(a[i])
				if !ok {
					return errValue(k)
				}
				prod *= f
			}
			total += prod
		}
		return value.Number(total)
	}
	builtins["SUBTOTAL"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) < 2 {
			return errValue(value.Value_)
		}
		code, k, ok := value.ToNumber(args[0])
		if !ok {
			return errValue(k)
		}
		rest := args[1:]
		switch int(code) {
		case 9, 109:
			return builtins["SUM"](e, rest)
		case 1, 101:
			return builtins["AVERAGE"](e, rest)
		case 2, 102:
			return builtins["COUNT"](e, rest)
		case 4, 104:
			return builtins["MAX"](e, rest)
		case 5, 105:
			return builtins["MIN"](e, rest)
		default:
			return errValue(value.Value_)
		}
	}

	builtins["SUMIF"] = func(e *Evaluator, args []value.Value) value.Value { return conditionalAgg(args, condSum) }
	builtins["SUMIFS"] = func(e *Evaluator, args []value.Value) value.Value { return conditionalAggMulti(args, condSum) }
	builtins["COUNTIF"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 2 {
			return errValue(value.Value_)
		}
		rng := args[0].Flatten()
		n := 0
		for _, v := range rng {
			if criteriaMatch(v, args[1]) {
				n++
			}
		}
		return value.Number(float64(n))
	}
	builtins["COUNTIFS"] = func(e *Evaluator, args []value.Value) value.Value {
		return conditionalAggMulti(append([]value.Value{value.Empty()}, args...), condCount)
	}
	builtins["AVERAGEIF"] = func(e *Evaluator, args []value.Value) value.Value {
		return conditionalAgg(args, condAverage)
	}
	builtins["AVERAGEIFS"] = func(e *Evaluator, args []value.Value) value.Value {
		return conditionalAggMulti(args, condAverage)
	}
	builtins["MAXIFS"] = func(e *Evaluator, args []value.Value) value.Value {
		return conditionalAggMulti(args, condMax)
	}
	builtins["MINIFS"] = func(e *Evaluator, args []value.Value) value.Value {
		return conditionalAggMulti(args, condMin)
	}
}

type condReduce func(matched []float64) value.Value

func condSum(m []float64) value.Value {
	var s float64
	for _, n := range m {
		s += n
	}
	return value.Number(s)
}
func condCount(m []float64) value.Value { return value.Number(float64(len(m))) }
func condAverage(m []float64) value.Value {
	if len(m) == 0 {
		return errValue(value.DivZero)
	}
	return value.Number(mean(m))
}
func condMax(m []float64) value.Value {
	if len(m) == 0 {
		return value.Number(0)
	}
	r := m[0]
	for _, n := range m[1:] {
		if n > r {
			r = n
		}
	}
	return value.Number(r)
}
func condMin(m []float64) value.Value {
	if len(m) == 0 {
		return value.Number(0)
	}
	r := m[0]
	for _, n := range m[1:] {
		if n < r {
			r = n
		}
	}
	return value.Number(r)
}

// conditionalAgg implements SUMIF(range, criteria, [sum_range]) /
// AVERAGEIF's 2-or-3-arg shape.
func conditionalAgg(args []value.Value, reduce condReduce) value.Value {
	if len(args) < 2 || len(args) > 3 {
		return errValue(value.Value_)
	}
	rng := args[0].Flatten()
	sumRange := rng
	if len(args) == 3 {
		sumRange = args[2].Flatten()
	}
	if len(sumRange) != len(rng) {
		return errValue(value.Value_)
	}
	var matched []float64
	for i, v := range rng {
		if criteriaMatch(v, args[1]) {
			n, _, ok := value.ToNumber(sumRange[i])
			if ok {
				matched = append(matched, n)
			}
		}
	}
	return reduce(matched)
}

// conditionalAggMulti implements SUMIFS(sum_range, range1, crit1, ...) /
// MAXIFS/MINIFS/AVERAGEIFS's N-pair shape; COUNTIFS passes a dummy value
// value range in args[0].
func conditionalAggMulti(args []value.Value, reduce condReduce) value.Value {
	if len(args) < 3 || len(args)%2 != 1 {
		return errValue(value.Value_)
	}
	target := args[0].Flatten()
	pairs := args[1:]
	n := -1
	for i := 0; i < len(pairs); i += 2 {
		rng := pairs[i].Flatten()
		if n == -1 {
			n = len(rng)
		} else if len(rng) != n {
			return errValue(value.Value_)
		}
	}
	var matched []float64
	for row := 0; row < n; row++ {
		ok := true
		for i := 0; i < len(pairs); i += 2 {
			rng := pairs[i].Flatten()
			if !criteriaMatch(rng[row], pairs[i+1]) {
				ok = false
				break
			}
		}
		if ok {
			if row < len(target) {
				if f, _, ok2 := value.ToNumber(target[row]); ok2 {
					matched = append(matched, f)
				}
			} else {
				matched = append(matched, 0)
			}
		}
	}
	return reduce(matched)
}

// criteriaMatch implements the SUMIF/COUNTIF-family criteria grammar:
// a bare value means equality (case-insensitive text, numeric otherwise);
// a leading comparison operator (">", "<", ">=", "<=", "<>", "=") compares
// numerically against the remainder.
func criteriaMatch(v, criteria value.Value) bool {
	ctext, _, ok := value.ToText(criteria)
	if !ok {
		return false
	}
	for _, op := range []string{">=", "<=", "<>", ">", "<", "="} {
		if strings.HasPrefix(ctext, op) {
			rest := strings.TrimPrefix(ctext, op)
			if n, err := strconv.ParseFloat(strings.TrimSpace(rest), 64); err == nil {
				vn, _, vok := value.ToNumber(v)
				if !vok {
					return false
				}
				return compareNums(vn, n, op)
			}
		}
	}
	vn, _, vok := value.ToNumber(v)
	cn, _, cok := value.ToNumber(criteria)
	if vok && cok {
		return vn == cn
	}
	vt, _, _ := value.ToText(v)
	return value.TextEqualFold(vt, ctext)
}

func compareNums(a, b float64, op string) bool {
	switch op {
	case ">":
		return a > b
	case "<":
		return a < b
	case ">=":
		return a >= b
	case "<=":
		return a <= b
	case "<>":
		return a != b
	case "=":
		return a == b
	default:
		return false
	}
}
