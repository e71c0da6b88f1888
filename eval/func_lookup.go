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

	"github.com/mollendorff-ai/forge/value"
)

// asRows interprets a table_array argument as a matrix of rows: if its
// elements are themselves Arrays, each is one row; otherwise the whole
// argument is a single-column table and every element is its own
// one-cell row. This is the one place Forge's "no nested arrays" value
// model (§3, §9) is relaxed, since VLOOKUP/HLOOKUP's col/row-index
// contract is meaningless over a flat vector.
func asRows(v value.Value) [][]value.Value {
	flat := v.Flatten()
	rows := make([][]value.Value, len(flat))
	anyNested := false
	for i, el := range flat {
		if el.IsArray() {
			rows[i] = el.ArrayUnchecked()
			anyNested = true
		}
	}
	if !anyNested {
		for i, el := range flat {
			rows[i] = []value.Value{el}
		}
	}
	return rows
}

func init() {
	builtins["VLOOKUP"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) < 3 || len(args) > 4 {
			return errValue(value.Value_)
		}
		rows := asRows(args[1])
		col, k, ok := value.ToNumber(args[2])
		if !ok {
			return errValue(k)
		}
		approximate := true
		if len(args) == 4 {
			approximate, k, ok = value.ToBoolean(args[3])
			if !ok {
				return errValue(k)
			}
		}
		ci := int(col) - 1
		idx, ok := lookupRow(args[0], rows, 0, approximate)
		if !ok {
			return errValue(value.NA)
		}
		if ci < 0 || ci >= len(rows[idx]) {
			return errValue(value.Ref)
		}
		return rows[idx][ci]
	}
	builtins["HLOOKUP"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) < 3 || len(args) > 4 {
			return errValue(value.Value_)
		}
		rows := asRows(args[1]) // here "rows" are columns: rows[0] is the key row
		rowIdx, k, ok := value.ToNumber(args[2])
		if !ok {
			return errValue(k)
		}
		approximate := true
		if len(args) == 4 {
			approximate, k, ok = value.ToBoolean(args[3])
			if !ok {
				return errValue(k)
			}
		}
		if len(rows) == 0 {
			return errValue(value.NA)
		}
		key := rows[0]
		idx, ok := matchIndex(args[0], key, approximate)
		if !ok {
			return errValue(value.NA)
		}
		ri := int(rowIdx) - 1
		if ri < 0 || ri >= len(rows) {
			return errValue(value.Ref)
		}
		if idx < 0 || idx >= len(rows[ri]) {
			return errValue(value.Ref)
		}
		return rows[ri][idx]
	}
	builtins["MATCH"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) < 2 || len(args) > 3 {
			return errValue(value.Value_)
		}
		arr := args[1].Flatten()
		approximate := true
		if len(args) == 3 {
			n, k, ok := value.ToNumber(args[2])
			if !ok {
				return errValue(k)
			}
			approximate = n != 0
		}
		idx, ok := matchIndex(args[0], arr, approximate)
		if !ok {
			return errValue(value.NA)
		}
		return value.Number(float64(idx + 1))
	}
	builtins["INDEX"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) < 2 || len(args) > 3 {
			return errValue(value.Value_)
		}
		rowIdx, k, ok := value.ToNumber(args[1])
		if !ok {
			return errValue(k)
		}
		if len(args) == 3 {
			rows := asRows(args[0])
			colIdx, k, ok := value.ToNumber(args[2])
			if !ok {
				return errValue(k)
			}
			ri, ci := int(rowIdx)-1, int(colIdx)-1
			if ri < 0 || ri >= len(rows) || ci < 0 || ci >= len(rows[ri]) {
				return errValue(value.Ref)
			}
			return rows[ri][ci]
		}
		arr := args[0].Flatten()
		i := int(rowIdx) - 1
		if i < 0 || i >= len(arr) {
			return errValue(value.Ref)
		}
		return arr[i]
	}
	builtins["XLOOKUP"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) < 3 || len(args) > 6 {
			return errValue(value.Value_)
		}
		lookupArr := args[1].Flatten()
		returnArr := args[2].Flatten()
		if len(lookupArr) != len(returnArr) {
			return errValue(value.Value_)
		}
		idx, ok := matchIndex(args[0], lookupArr, false)
		if !ok {
			if len(args) >= 4 {
				return args[3]
			}
			return errValue(value.NA)
		}
		return returnArr[idx]
	}
	builtins["OFFSET"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) < 3 || len(args) > 5 {
			return errValue(value.Value_)
		}
		rows := asRows(args[0])
		rowOff, k, ok := value.ToNumber(args[1])
		if !ok {
			return errValue(k)
		}
		colOff, k, ok := value.ToNumber(args[2])
		if !ok {
			return errValue(k)
		}
		ri, ci := int(rowOff), int(colOff)
		if ri < 0 || ri >= len(rows) {
			return errValue(value.Ref)
		}
		if ci < 0 || ci >= len(rows[ri]) {
			return errValue(value.Ref)
		}
		return rows[ri][ci]
	}
	builtins["INDIRECT"] = func(e *Evaluator, args []value.Value) value.Value {
		return errValue(value.Ref)
	}
	builtins["TRANSPOSE"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 1 {
			return errValue(value.Value_)
		}
		rows := asRows(args[0])
		if len(rows) == 0 {
			return value.Array(nil)
		}
		cols := len(rows[0])
		out := make([]value.Value, 0, len(rows)*cols)
		for c := 0; c < cols; c++ {
			for _, row := range rows {
				if c < len(row) {
					out = append(out, row[c])
				} else {
					out = append(out, value.Empty())
				}
			}
		}
		return value.Array(out)
	}
	builtins["UNIQUE"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 1 {
			return errValue(value.Value_)
		}
		flat := args[0].Flatten()
		seen := map[string]bool{}
		var out []value.Value
		for _, v := range flat {
			key := v.String() + "|" + v.Kind().String()
			if !seen[key] {
				seen[key] = true
				out = append(out, v)
			}
		}
		return value.Array(out)
	}
	builtins["SORT"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) < 1 || len(args) > 2 {
			return errValue(value.Value_)
		}
		flat := append([]value.Value(nil), args[0].Flatten()...)
		ascending := true
		if len(args) == 2 {
			n, k, ok := value.ToNumber(args[1])
			if !ok {
				return errValue(k)
			}
			ascending = n >= 0
		}
		sort.SliceStable(flat, func(i, j int) bool {
			c := compare(flat[i], flat[j], "<")
			b, _, _ := value.ToBoolean(c)
			if !ascending {
				c2 := compare(flat[i], flat[j], ">")
				b, _, _ = value.ToBoolean(c2)
			}
			return b
		})
		return value.Array(flat)
	}
	builtins["FILTER"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 2 {
			return errValue(value.Value_)
		}
		data := args[0].Flatten()
		mask := args[1].Flatten()
		if len(data) != len(mask) {
			return errValue(value.Value_)
		}
		var out []value.Value
		for i, m := range mask {
			b, _, ok := value.ToBoolean(m)
			if ok && b {
				out = append(out, data[i])
			}
		}
		if len(out) == 0 {
			return errValue(value.NA)
		}
		return value.Array(out)
	}
	builtins["SEQUENCE"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) < 1 {
			return errValue(k)
		}
		rows := int(nums[0])
		cols := 1
		start := 1.0
		step := 1.0
		if len(nums) >= 2 {
			cols = int(nums[1])
		}
		if len(nums) >= 3 {
			start = nums[2]
		}
		if len(nums) >= 4 {
			step = nums[3]
		}
		out := make([]value.Value, 0, rows*cols)
		v := start
		for i := 0; i < rows*cols; i++ {
			out = append(out, value.Number(v))
			v += step
		}
		return value.Array(out)
	}
}

// lookupRow finds the matching row index for VLOOKUP's key column (column
// 0 of each row).
func lookupRow(key value.Value, rows [][]value.Value, col int, approximate bool) (int, bool) {
	keys := make([]value.Value, len(rows))
	for i, r := range rows {
		if col < len(r) {
			keys[i] = r[col]
		}
	}
	return matchIndex(key, keys, approximate)
}

// matchIndex implements MATCH's exact (approximate=false -> Error(NA) on
// miss) and approximate (largest key <= lookup value, sorted ascending)
// contracts (§4.2).
func matchIndex(key value.Value, arr []value.Value, approximate bool) (int, bool) {
	if !approximate {
		for i, v := range arr {
			eq := compare(key, v, "=")
			if b, _, ok := value.ToBoolean(eq); ok && b {
				return i, true
			}
		}
		return 0, false
	}
	best := -1
	for i, v := range arr {
		le := compare(v, key, "<=")
		if b, _, ok := value.ToBoolean(le); ok && b {
			best = i
		} else {
			break
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}
