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
	builtins["NPV"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) < 2 {
			return errValue(value.Value_)
		}
		rate, k, ok := value.ToNumber(args[0])
		if !ok {
			return errValue(k)
		}
		flows, k, ok := numericOnly(flattenAll(args[1:]))
		if !ok {
			return errValue(k)
		}
		return value.Number(npv(rate, flows))
	}
	builtins["IRR"] = func(e *Evaluator, args []value.Value) value.Value {
		flows, k, ok := numericOnly(flattenAll(args))
		if !ok {
			return errValue(k)
		}
		r, err := irr(flows)
		if err {
			return errValue(value.Num)
		}
		return value.Number(r)
	}
	builtins["XNPV"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 3 {
			return errValue(value.Value_)
		}
		rate, k, ok := value.ToNumber(args[0])
		if !ok {
			return errValue(k)
		}
		flows, k, ok := numericOnly(args[1].Flatten())
		if !ok {
			return errValue(k)
		}
		dates, k, ok := numericOnly(args[2].Flatten())
		if !ok {
			return errValue(k)
		}
		if len(flows) != len(dates) || len(flows) == 0 {
			return errValue(value.Value_)
		}
		return value.Number(xnpv(rate, flows, dates))
	}
	builtins["XIRR"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 2 {
			return errValue(value.Value_)
		}
		flows, k, ok := numericOnly(args[0].Flatten())
		if !ok {
			return errValue(k)
		}
		dates, k, ok := numericOnly(args[1].Flatten())
		if !ok {
			return errValue(k)
		}
		if len(flows) != len(dates) || len(flows) == 0 {
			return errValue(value.Value_)
		}
		r, err := bisect(func(rate float64) float64 { return xnpv(rate, flows, dates) }, -0.999, 10)
		if err {
			return errValue(value.Num)
		}
		return value.Number(r)
	}
	builtins["MIRR"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 3 {
			return errValue(value.Value_)
		}
		flows, k, ok := numericOnly(args[0].Flatten())
		if !ok {
			return errValue(k)
		}
		financeRate, k, ok := value.ToNumber(args[1])
		if !ok {
			return errValue(k)
		}
		reinvestRate, k, ok := value.ToNumber(args[2])
		if !ok {
			return errValue(k)
		}
		n := len(flows) - 1
		if n < 1 {
			return errValue(value.Num)
		}
		var pvNeg, fvPos float64
		for i, f := range flows {
			if f < 0 {
				pvNeg += f / math.Pow(1+financeRate, float64(i))
			} else if f > 0 {
				fvPos += f * math.Pow(1+reinvestRate, float64(n-i))
			}
		}
		if pvNeg == 0 || fvPos == 0 {
			return errValue(value.Num)
		}
		return value.Number(math.Pow(-fvPos/pvNeg, 1.0/float64(n)) - 1)
	}

	builtins["PMT"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) < 3 {
			return errValue(k)
		}
		rate, nper, pv := nums[0], nums[1], nums[2]
		fv, typ := optArg(nums, 3, 0), optArg(nums, 4, 0)
		return value.Number(pmt(rate, nper, pv, fv, typ))
	}
	builtins["PV"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) < 3 {
			return errValue(k)
		}
		rate, nper, pmtv := nums[0], nums[1], nums[2]
		fv, typ := optArg(nums, 3, 0), optArg(nums, 4, 0)
		if rate == 0 {
			return value.Number(-(pmtv*nper + fv))
		}
		factor := math.Pow(1+rate, nper)
		return value.Number(-(pmtv*(1+rate*typ)*(factor-1)/rate + fv) / factor)
	}
	builtins["FV"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) < 3 {
			return errValue(k)
		}
		rate, nper, pmtv := nums[0], nums[1], nums[2]
		pv, typ := optArg(nums, 3, 0), optArg(nums, 4, 0)
		if rate == 0 {
			return value.Number(-(pv + pmtv*nper))
		}
		factor := math.Pow(1+rate, nper)
		return value.Number(-(pv*factor + pmtv*(1+rate*typ)*(factor-1)/rate))
	}
	builtins["NPER"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) < 3 {
			return errValue(k)
		}
		rate, pmtv, pv := nums[0], nums[1], nums[2]
		fv, typ := optArg(nums, 3, 0), optArg(nums, 4, 0)
		if rate == 0 {
			if pmtv == 0 {
				return errValue(value.Num)
			}
			return value.Number(-(pv + fv) / pmtv)
		}
		num := pmtv*(1+rate*typ) - fv*rate
		den := pv*rate + pmtv*(1+rate*typ)
		if num <= 0 || den <= 0 {
			return errValue(value.Num)
		}
		return value.Number(math.Log(num/den) / math.Log(1+rate))
	}
	builtins["RATE"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) < 3 {
			return errValue(k)
		}
		nper, pmtv, pv := nums[0], nums[1], nums[2]
		fv, typ := optArg(nums, 3, 0), optArg(nums, 4, 0)
		guess := 0.1
		if len(nums) >= 6 {
			guess = nums[5]
		}
		r, err := rateNewton(nper, pmtv, pv, fv, typ, guess)
		if err {
			return errValue(value.Num)
		}
		return value.Number(r)
	}

	builtins["SLN"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) != 3 {
			return errValue(k)
		}
		cost, salvage, life := nums[0], nums[1], nums[2]
		if life == 0 {
			return errValue(value.DivZero)
		}
		return value.Number((cost - salvage) / life)
	}
	builtins["SYD"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) != 4 {
			return errValue(k)
		}
		cost, salvage, life, per := nums[0], nums[1], nums[2], nums[3]
		sumYears := life * (life + 1) / 2
		if sumYears == 0 {
			return errValue(value.DivZero)
		}
		return value.Number((cost - salvage) * (life - per + 1) / sumYears)
	}
	builtins["DB"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) < 4 {
			return errValue(k)
		}
		cost, salvage, life, period := nums[0], nums[1], nums[2], nums[3]
		month := optArg(nums, 4, 12)
		if cost == 0 || life == 0 {
			return errValue(value.DivZero)
		}
		rate := 1 - math.Pow(salvage/cost, 1/life)
		rate = math.Round(rate*1000) / 1000
		depreciated := 0.0
		var dep float64
		for p := 1; p <= int(period); p++ {
			base := cost - depreciated
			if p == 1 {
				dep = base * rate * (month / 12)
			} else if float64(p) == life+1 {
				dep = base * rate * ((12 - month) / 12)
			} else {
				dep = base * rate
			}
			depreciated += dep
		}
		return value.Number(dep)
	}
	builtins["DDB"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) < 4 {
			return errValue(k)
		}
		cost, salvage, life, period := nums[0], nums[1], nums[2], nums[3]
		factor := optArg(nums, 4, 2)
		if life == 0 {
			return errValue(value.DivZero)
		}
		bookValue := cost
		var dep float64
		for p := 1; p <= int(period); p++ {
			dep = bookValue * (factor / life)
			if bookValue-dep < salvage {
				dep = bookValue - salvage
			}
			bookValue -= dep
		}
		return value.Number(dep)
	}
	builtins["IPMT"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) < 4 {
			return errValue(k)
		}
		rate, per, nper, pv := nums[0], nums[1], nums[2], nums[3]
		fv, typ := optArg(nums, 4, 0), optArg(nums, 5, 0)
		payment := pmt(rate, nper, pv, fv, typ)
		balance := pv
		var interest float64
		for p := 1; p <= int(per); p++ {
			interest = -balance * rate
			principal := payment - interest
			balance += principal
		}
		return value.Number(interest)
	}
	builtins["PPMT"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) < 4 {
			return errValue(k)
		}
		rate, per, nper, pv := nums[0], nums[1], nums[2], nums[3]
		fv, typ := optArg(nums, 4, 0), optArg(nums, 5, 0)
		payment := pmt(rate, nper, pv, fv, typ)
		balance := pv
		var principal float64
		for p := 1; p <= int(per); p++ {
			interest := -balance * rate
			principal = payment - interest
			balance += principal
		}
		return value.Number(principal)
	}
	builtins["CUMIPMT"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) != 6 {
			return errValue(k)
		}
		rate, nper, pv, start, end, typ := nums[0], nums[1], nums[2], nums[3], nums[4], nums[5]
		payment := pmt(rate, nper, pv, 0, typ)
		balance := pv
		var total float64
		for p := 1; p <= int(end); p++ {
			interest := -balance * rate
			principal := payment - interest
			balance += principal
			if float64(p) >= start {
				total += interest
			}
		}
		return value.Number(total)
	}
	builtins["CUMPRINC"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) != 6 {
			return errValue(k)
		}
		rate, nper, pv, start, end, typ := nums[0], nums[1], nums[2], nums[3], nums[4], nums[5]
		payment := pmt(rate, nper, pv, 0, typ)
		balance := pv
		var total float64
		for p := 1; p <= int(end); p++ {
			interest := -balance * rate
			principal := payment - interest
			balance += principal
			if float64(p) >= start {
				total += principal
			}
		}
		return value.Number(total)
	}
}

func optArg(nums []float64, idx int, def float64) float64 {
	if idx < len(nums) {
		return nums[idx]
	}
	return def
}

// npv implements NPV(rate, flows): discounts from period 1 (§4.2).
func npv(rate float64, flows []float64) float64 {
	var total float64
	for i, f := range flows {
		total += f / math.Pow(1+rate, float64(i+1))
	}
	return total
}

// irr solves NPV(rate, flows)=0 by bracketed bisection with relative
// tolerance 1e-7, bracket [-0.999, 10] (§4.2).
func irr(flows []float64) (float64, bool) {
	f := func(r float64) float64 { return npv(r, flows) }
	r, err := bisect(f, -0.999, 10)
	return r, err
}

func bisect(f func(float64) float64, lo, hi float64) (float64, bool) {
	flo, fhi := f(lo), f(hi)
	if math.IsNaN(flo) || math.IsNaN(fhi) {
		return 0, true
	}
	if flo == 0 {
		return lo, false
	}
	if fhi == 0 {
		return hi, false
	}
	if (flo > 0) == (fhi > 0) {
		return 0, true
	}
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		fm := f(mid)
		if fm == 0 || (hi-lo) <= 1e-7*math.Max(1, math.Abs(mid)) {
			return mid, false
		}
		if (fm > 0) == (flo > 0) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, false
}

func xnpv(rate float64, flows, dates []float64) float64 {
	d0 := dates[0]
	var total float64
	for i, f := range flows {
		total += f / math.Pow(1+rate, (dates[i]-d0)/365)
	}
	return total
}

func pmt(rate, nper, pv, fv, typ float64) float64 {
	if rate == 0 {
		return -(pv + fv) / nper
	}
	factor := math.Pow(1+rate, nper)
	return -rate * (pv*factor + fv) / ((1 + rate*typ) * (factor - 1))
}

// rateNewton solves for RATE by Newton's method, tolerance 1e-9, cap 100
// iterations (§4.2).
func rateNewton(nper, pmtv, pv, fv, typ, guess float64) (float64, bool) {
	r := guess
	f := func(rate float64) float64 {
		if rate == 0 {
			return pv + pmtv*nper + fv
		}
		factor := math.Pow(1+rate, nper)
		return pv*factor + pmtv*(1+rate*typ)*(factor-1)/rate + fv
	}
	const h = 1e-6
	for i := 0; i < 100; i++ {
		fr := f(r)
		deriv := (f(r+h) - f(r-h)) / (2 * h)
		if deriv == 0 {
			return 0, true
		}
		next := r - fr/deriv
		if math.Abs(next-r) < 1e-9 {
			return next, false
		}
		r = next
	}
	return 0, true
}
