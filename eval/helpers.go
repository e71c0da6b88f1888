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
	"sort"
	"strings"

	"github.com/mollendorff-ai/forge/value"
)

// flattenAll expands every argument's Flatten() (scalar->itself,
// array->members) into one flat slice, the shape SUM/AVERAGE/COUNT/MIN/
// MAX/PRODUCT/aggregate functions operate over (§4.2).
func flattenAll(args []value.Value) []value.Value {
	var out []value.Value
	for _, a := range args {
		out = append(out, a.Flatten()...)
	}
	return out
}

// firstError returns the first Error value among args, if any.
func firstError(args []value.Value) (value.Value, bool) {
	for _, a := range args {
		if a.IsError() {
			return a, true
		}
	}
	return value.Value{}, false
}

// numericOnly extracts the numeric entries of a flattened list, skipping
// (not coercing) non-numeric entries except booleans, which count as 0/1
// (§4.2 "SUM, AVERAGE, COUNT, MIN, MAX, PRODUCT").
func numericOnly(flat []value.Value) ([]float64, value.ErrorKind, bool) {
	var nums []float64
	for _, v := range flat {
		if v.IsError() {
			return nil, v.ErrorKindUnchecked(), false
		}
		switch v.Kind() {
		case value.KindNumber:
			nums = append(nums, v.NumberUnchecked())
		case value.KindBoolean:
			if v.BooleanUnchecked() {
				nums = append(nums, 1)
			} else {
				nums = append(nums, 0)
			}
		case value.KindDate:
			nums = append(nums, float64(v.DateUnchecked()))
		}
	}
	return nums, "", true
}

func num(v value.Value) (float64, value.ErrorKind, bool) { return value.ToNumber(v) }
func txt(v value.Value) (string, value.ErrorKind, bool)  { return value.ToText(v) }

func argNumbers(args []value.Value) ([]float64, value.ErrorKind, bool) {
	out := make([]float64, len(args))
	for i, a := range args {
		n, k, ok := value.ToNumber(a)
		if !ok {
			return nil, k, false
		}
		out[i] = n
	}
	return out, "", true
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func variance(xs []float64, sample bool) float64 {
	m := mean(xs)
	var s float64
	for _, x := range xs {
		d := x - m
		s += d * d
	}
	n := float64(len(xs))
	if sample {
		if n < 2 {
			return 0
		}
		return s / (n - 1)
	}
	if n < 1 {
		return 0
	}
	return s / n
}

func sortedCopy(xs []float64) []float64 {
	out := append([]float64(nil), xs...)
	sort.Float64s(out)
	return out
}

// percentile implements linear-interpolation percentile, the common
// spreadsheet PERCENTILE.INC convention.
func percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := sortedCopy(xs)
	if len(s) == 1 {
		return s[0]
	}
	rank := p * float64(len(s)-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= len(s) {
		return s[len(s)-1]
	}
	frac := rank - float64(lo)
	return s[lo] + frac*(s[hi]-s[lo])
}

func collapseSpaces(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

func boolToValue(b bool) value.Value { return value.Boolean(b) }
