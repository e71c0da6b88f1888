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
	"sort"

	"github.com/mollendorff-ai/forge/value"
)

func init() {
	builtins["MEDIAN"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := numericOnly(flattenAll(args))
		if !ok {
			return errValue(k)
		}
		if len(nums) == 0 {
			return errValue(value.Num)
		}
		s := sortedCopy(nums)
		mid := len(s) / 2
		if len(s)%2 == 1 {
			return value.Number(s[mid])
		}
		return value.Number((s[mid-1] + s[mid]) / 2)
	}
	builtins["MODE"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := numericOnly(flattenAll(args))
		if !ok {
			return errValue(k)
		}
		counts := map[float64]int{}
		order := []float64{}
		for _, n := range nums {
			if counts[n] == 0 {
				order = append(order, n)
			}
			counts[n]++
		}
		best, bestCount := 0.0, 0
		for _, n := range order {
			if counts[n] > bestCount {
				best, bestCount = n, counts[n]
			}
		}
		if bestCount <= 1 {
			return errValue(value.NA)
		}
		return value.Number(best)
	}
	builtins["STDEV"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := numericOnly(flattenAll(args))
		if !ok {
			return errValue(k)
		}
		if len(nums) < 2 {
			return errValue(value.DivZero)
		}
		return value.Number(math.Sqrt(variance(nums, true)))
	}
	builtins["STDEVP"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := numericOnly(flattenAll(args))
		if !ok {
			return errValue(k)
		}
		if len(nums) == 0 {
			return errValue(value.DivZero)
		}
		return value.Number(math.Sqrt(variance(nums, false)))
	}
	builtins["VAR"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := numericOnly(flattenAll(args))
		if !ok {
			return errValue(k)
		}
		if len(nums) < 2 {
			return errValue(value.DivZero)
		}
		return value.Number(variance(nums, true))
	}
	builtins["VARP"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := numericOnly(flattenAll(args))
		if !ok {
			return errValue(k)
		}
		if len(nums) == 0 {
			return errValue(value.DivZero)
		}
		return value.Number(variance(nums, false))
	}
	builtins["KURT"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := numericOnly(flattenAll(args))
		if !ok {
			return errValue(k)
		}
		n := float64(len(nums))
		if n < 4 {
			return errValue(value.DivZero)
		}
		m := mean(nums)
		sd := math.Sqrt(variance(nums, true))
		if sd == 0 {
			return errValue(value.DivZero)
		}
		var s4 float64
		for _, x := range nums {
			s4 += math.Pow((x-m)/sd, 4)
		}
		return value.Number((n*(n+1))/((n-1)*(n-2)*(n-3))*s4 - 3*(n-1)*(n-1)/((n-2)*(n-3)))
	}
	builtins["SKEW"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := numericOnly(flattenAll(args))
		if !ok {
			return errValue(k)
		}
		n := float64(len(nums))
		if n < 3 {
			return errValue(value.DivZero)
		}
		m := mean(nums)
		sd := math.Sqrt(variance(nums, true))
		if sd == 0 {
			return errValue(value.DivZero)
		}
		var s3 float64
		for _, x := range nums {
			s3 += math.Pow((x-m)/sd, 3)
		}
		return value.Number((n / ((n - 1) * (n - 2))) * s3)
	}
	builtins["CORREL"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 2 {
			return errValue(value.Value_)
		}
		xs, k, ok := numericOnly(args[0].Flatten())
		if !ok {
			return errValue(k)
		}
		ys, k, ok := numericOnly(args[1].Flatten())
		if !ok {
			return errValue(k)
		}
		if len(xs) != len(ys) || len(xs) < 2 {
			return errValue(value.DivZero)
		}
		return value.Number(correl(xs, ys))
	}
	builtins["COVAR"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 2 {
			return errValue(value.Value_)
		}
		xs, k, ok := numericOnly(args[0].Flatten())
		if !ok {
			return errValue(k)
		}
		ys, k, ok := numericOnly(args[1].Flatten())
		if !ok {
			return errValue(k)
		}
		if len(xs) != len(ys) || len(xs) == 0 {
			return errValue(value.DivZero)
		}
		mx, my := mean(xs), mean(ys)
		var s float64
		for i := range xs {
			s += (xs[i] - mx) * (ys[i] - my)
		}
		return value.Number(s / float64(len(xs)))
	}
	builtins["FORECAST"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 3 {
			return errValue(value.Value_)
		}
		x, k, ok := value.ToNumber(args[0])
		if !ok {
			return errValue(k)
		}
		ys, k, ok := numericOnly(args[1].Flatten())
		if !ok {
			return errValue(k)
		}
		xs, k, ok := numericOnly(args[2].Flatten())
		if !ok {
			return errValue(k)
		}
		if len(xs) != len(ys) || len(xs) < 2 {
			return errValue(value.DivZero)
		}
		slope, intercept := linreg(xs, ys)
		return value.Number(intercept + slope*x)
	}
	builtins["TREND"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) < 2 {
			return errValue(value.Value_)
		}
		ys, k, ok := numericOnly(args[0].Flatten())
		if !ok {
			return errValue(k)
		}
		xs, k, ok := numericOnly(args[1].Flatten())
		if !ok {
			return errValue(k)
		}
		if len(xs) != len(ys) || len(xs) < 2 {
			return errValue(value.DivZero)
		}
		newX := xs
		if len(args) == 3 {
			newX, k, ok = numericOnly(args[2].Flatten())
			if !ok {
				return errValue(k)
			}
		}
		slope, intercept := linreg(xs, ys)
		out := make([]value.Value, len(newX))
		for i, x := range newX {
			out[i] = value.Number(intercept + slope*x)
		}
		return value.Array(out)
	}
	builtins["FREQUENCY"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 2 {
			return errValue(value.Value_)
		}
		data, k, ok := numericOnly(args[0].Flatten())
		if !ok {
			return errValue(k)
		}
		bins, k, ok := numericOnly(args[1].Flatten())
		if !ok {
			return errValue(k)
		}
		sortedBins := sortedCopy(bins)
		counts := make([]float64, len(sortedBins)+1)
		for _, d := range data {
			placed := false
			for i, b := range sortedBins {
				if d <= b {
					counts[i]++
					placed = true
					break
				}
			}
			if !placed {
				counts[len(counts)-1]++
			}
		}
		out := make([]value.Value, len(counts))
		for i, c := range counts {
			out[i] = value.Number(c)
		}
		return value.Array(out)
	}
	builtins["PERCENTILE"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 2 {
			return errValue(value.Value_)
		}
		nums, k, ok := numericOnly(args[0].Flatten())
		if !ok {
			return errValue(k)
		}
		p, k, ok := value.ToNumber(args[1])
		if !ok {
			return errValue(k)
		}
		if p < 0 || p > 1 || len(nums) == 0 {
			return errValue(value.Num)
		}
		return value.Number(percentile(nums, p))
	}
	builtins["QUARTILE"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 2 {
			return errValue(value.Value_)
		}
		nums, k, ok := numericOnly(args[0].Flatten())
		if !ok {
			return errValue(k)
		}
		q, k, ok := value.ToNumber(args[1])
		if !ok {
			return errValue(k)
		}
		if q < 0 || q > 4 || len(nums) == 0 {
			return errValue(value.Num)
		}
		return value.Number(percentile(nums, q/4))
	}
	builtins["RANK"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) < 2 {
			return errValue(value.Value_)
		}
		x, k, ok := value.ToNumber(args[0])
		if !ok {
			return errValue(k)
		}
		nums, k, ok := numericOnly(args[1].Flatten())
		if !ok {
			return errValue(k)
		}
		descending := true
		if len(args) == 3 {
			n, _, _ := value.ToNumber(args[2])
			descending = n == 0
		}
		s := sortedCopy(nums)
		if descending {
			sort.Sort(sort.Reverse(sort.Float64Slice(s)))
		}
		for i, v := range s {
			if v == x {
				return value.Number(float64(i + 1))
			}
		}
		return errValue(value.NA)
	}
	builtins["NORMSDIST"] = func(e *Evaluator, args []value.Value) value.Value {
		z, k, ok := one(args)
		if !ok {
			return errValue(k)
		}
		return value.Number(normCDF(z))
	}
	builtins["NORMDIST"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) != 3 {
			return errValue(k)
		}
		x, mu, sigma := nums[0], nums[1], nums[2]
		if sigma <= 0 {
			return errValue(value.Num)
		}
		return value.Number(normCDF((x - mu) / sigma))
	}
	builtins["NORMSINV"] = func(e *Evaluator, args []value.Value) value.Value {
		p, k, ok := one(args)
		if !ok {
			return errValue(k)
		}
		if p <= 0 || p >= 1 {
			return errValue(value.Num)
		}
		return value.Number(normInv(p))
	}
	builtins["NORMINV"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) != 3 {
			return errValue(k)
		}
		p, mu, sigma := nums[0], nums[1], nums[2]
		if p <= 0 || p >= 1 || sigma <= 0 {
			return errValue(value.Num)
		}
		return value.Number(mu + sigma*normInv(p))
	}
}

func correl(xs, ys []float64) float64 {
	mx, my := mean(xs), mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	return sxy / math.Sqrt(sxx*syy)
}

func linreg(xs, ys []float64) (slope, intercept float64) {
	mx, my := mean(xs), mean(ys)
	var num, den float64
	for i := range xs {
		num += (xs[i] - mx) * (ys[i] - my)
		den += (xs[i] - mx) * (xs[i] - mx)
	}
	if den == 0 {
		return 0, my
	}
	slope = num / den
	intercept = my - slope*mx
	return
}

// normCDF is the standard normal CDF via the error function.
func normCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

// normInv is the standard normal quantile function, solved by Newton's
// method over normCDF (adequate to the §8 1e-6 statistical tolerance).
func normInv(p float64) float64 {
	x := 0.0
	for i := 0; i < 100; i++ {
		cdf := normCDF(x)
		pdf := math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
		if pdf == 0 {
			break
		}
		dx := (cdf - p) / pdf
		x -= dx
		if math.Abs(dx) < 1e-12 {
			break
		}
	}
	return x
}
