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
	"fmt"
	"strconv"
	"strings"

	"github.com/mollendorff-ai/forge/value"
)

func init() {
	builtins["LEN"] = func(e *Evaluator, args []value.Value) value.Value {
		s, k, ok := one1Text(args)
		if !ok {
			return errValue(k)
		}
		return value.Number(float64(len([]rune(s))))
	}
	builtins["UPPER"] = textMap(strings.ToUpper)
	builtins["LOWER"] = textMap(strings.ToLower)
	builtins["TRIM"] = textMap(func(s string) string { return collapseSpaces(strings.TrimSpace(s)) })
	builtins["PROPER"] = textMap(strings.Title) //lint:ignore SA1019 spreadsheet PROPER has no stdlib unicode-aware equivalent

	builtins["LEFT"] = func(e *Evaluator, args []value.Value) value.Value {
		s, n, k, ok := textAndCount(args, 1)
		if !ok {
			return errValue(k)
		}
		r := []rune(s)
		if n > len(r) {
			n = len(r)
		}
		return value.Text(string(r[:n]))
	}
	builtins["RIGHT"] = func(e *Evaluator, args []value.Value) value.Value {
		s, n, k, ok := textAndCount(args, 1)
		if !ok {
			return errValue(k)
		}
		r := []rune(s)
		if n > len(r) {
			n = len(r)
		}
		return value.Text(string(r[len(r)-n:]))
	}
	builtins["MID"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 3 {
			return errValue(value.Value_)
		}
		s, k, ok := value.ToText(args[0])
		if !ok {
			return errValue(k)
		}
		start, k, ok := value.ToNumber(args[1])
		if !ok {
			return errValue(k)
		}
		n, k, ok := value.ToNumber(args[2])
		if !ok {
			return errValue(k)
		}
		r := []rune(s)
		from := int(start) - 1
		if from < 0 {
			from = 0
		}
		if from >= len(r) {
			return value.Text("")
		}
		to := from + int(n)
		if to > len(r) {
			to = len(r)
		}
		return value.Text(string(r[from:to]))
	}
	builtins["CONCAT"] = concatFn
	builtins["CONCATENATE"] = concatFn
	builtins["JOIN"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) < 1 {
			return errValue(value.Value_)
		}
		delim, k, ok := value.ToText(args[0])
		if !ok {
			return errValue(k)
		}
		flat := flattenAll(args[1:])
		parts := make([]string, len(flat))
		for i, v := range flat {
			t, k, ok := value.ToText(v)
			if !ok {
				return errValue(k)
			}
			parts[i] = t
		}
		return value.Text(strings.Join(parts, delim))
	}
	builtins["SPLIT"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 2 {
			return errValue(value.Value_)
		}
		s, k, ok := value.ToText(args[0])
		if !ok {
			return errValue(k)
		}
		delim, k, ok := value.ToText(args[1])
		if !ok {
			return errValue(k)
		}
		parts := strings.Split(s, delim)
		out := make([]value.Value, len(parts))
		for i, p := range parts {
			out[i] = value.Text(p)
		}
		return value.Array(out)
	}
	builtins["SUBSTITUTE"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) < 3 || len(args) > 4 {
			return errValue(value.Value_)
		}
		s, k, ok := value.ToText(args[0])
		if !ok {
			return errValue(k)
		}
		old, k, ok := value.ToText(args[1])
		if !ok {
			return errValue(k)
		}
		new_, k, ok := value.ToText(args[2])
		if !ok {
			return errValue(k)
		}
		if len(args) == 3 {
			return value.Text(strings.ReplaceAll(s, old, new_))
		}
		n, k, ok := value.ToNumber(args[3])
		if !ok {
			return errValue(k)
		}
		return value.Text(replaceNth(s, old, new_, int(n)))
	}
	builtins["REPLACE"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 4 {
			return errValue(value.Value_)
		}
		s, k, ok := value.ToText(args[0])
		if !ok {
			return errValue(k)
		}
		start, k, ok := value.ToNumber(args[1])
		if !ok {
			return errValue(k)
		}
		n, k, ok := value.ToNumber(args[2])
		if !ok {
			return errValue(k)
		}
		newText, k, ok := value.ToText(args[3])
		if !ok {
			return errValue(k)
		}
		r := []rune(s)
		from := int(start) - 1
		if from < 0 || from > len(r) {
			return errValue(value.Value_)
		}
		to := from + int(n)
		if to > len(r) {
			to = len(r)
		}
		return value.Text(string(r[:from]) + newText + string(r[to:]))
	}
	builtins["FIND"] = func(e *Evaluator, args []value.Value) value.Value {
		return findSearch(args, true)
	}
	builtins["SEARCH"] = func(e *Evaluator, args []value.Value) value.Value {
		return findSearch(args, false)
	}
	builtins["REPT"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 2 {
			return errValue(value.Value_)
		}
		s, k, ok := value.ToText(args[0])
		if !ok {
			return errValue(k)
		}
		n, k, ok := value.ToNumber(args[1])
		if !ok {
			return errValue(k)
		}
		if n < 0 {
			return errValue(value.Value_)
		}
		return value.Text(strings.Repeat(s, int(n)))
	}
	builtins["CHAR"] = func(e *Evaluator, args []value.Value) value.Value {
		n, k, ok := one(args)
		if !ok {
			return errValue(k)
		}
		return value.Text(string(rune(int(n))))
	}
	builtins["CODE"] = func(e *Evaluator, args []value.Value) value.Value {
		s, k, ok := one1Text(args)
		if !ok {
			return errValue(k)
		}
		r := []rune(s)
		if len(r) == 0 {
			return errValue(value.Value_)
		}
		return value.Number(float64(r[0]))
	}
	builtins["VALUE"] = func(e *Evaluator, args []value.Value) value.Value {
		n, k, ok := one(args)
		if !ok {
			return errValue(k)
		}
		return value.Number(n)
	}
	builtins["TEXT"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 2 {
			return errValue(value.Value_)
		}
		n, k, ok := value.ToNumber(args[0])
		if !ok {
			return errValue(k)
		}
		format, k, ok := value.ToText(args[1])
		if !ok {
			return errValue(k)
		}
		return value.Text(applyNumberFormat(n, format))
	}
}

func textMap(f func(string) string) builtinFunc {
	return func(e *Evaluator, args []value.Value) value.Value {
		s, k, ok := one1Text(args)
		if !ok {
			return errValue(k)
		}
		return value.Text(f(s))
	}
}

func one1Text(args []value.Value) (string, value.ErrorKind, bool) {
	if len(args) != 1 {
		return "", value.Value_, false
	}
	return value.ToText(args[0])
}

func textAndCount(args []value.Value, countIdx int) (string, int, value.ErrorKind, bool) {
	if len(args) < 1 || len(args) > 2 {
		return "", 0, value.Value_, false
	}
	s, k, ok := value.ToText(args[0])
	if !ok {
		return "", 0, k, false
	}
	if len(args) == 1 {
		return s, 1, "", true
	}
	n, k, ok := value.ToNumber(args[1])
	if !ok {
		return "", 0, k, false
	}
	if n < 0 {
		return "", 0, value.Value_, false
	}
	return s, int(n), "", true
}

func concatFn(e *Evaluator, args []value.Value) value.Value {
	var sb strings.Builder
	for _, v := range flattenAll(args) {
		t, k, ok := value.ToText(v)
		if !ok {
			return errValue(k)
		}
		sb.WriteString(t)
	}
	return value.Text(sb.String())
}

func replaceNth(s, old, new_ string, n int) string {
	if n < 1 {
		return s
	}
	count := 0
	idx := -1
	cur := 0
	for {
		pos := strings.Index(s[cur:], old)
		if pos < 0 {
			break
		}
		count++
		if count == n {
			idx = cur + pos
			break
		}
		cur += pos + len(old)
	}
	if idx < 0 {
		return s
	}
	return s[:idx] + new_ + s[idx+len(old):]
}

func findSearch(args []value.Value, caseSensitive bool) value.Value {
	if len(args) < 2 || len(args) > 3 {
		return errValue(value.Value_)
	}
	needle, k, ok := value.ToText(args[0])
	if !ok {
		return errValue(k)
	}
	haystack, k, ok := value.ToText(args[1])
	if !ok {
		return errValue(k)
	}
	start := 1
	if len(args) == 3 {
		n, k, ok := value.ToNumber(args[2])
		if !ok {
			return errValue(k)
		}
		start = int(n)
	}
	if start < 1 || start > len(haystack)+1 {
		return errValue(value.Value_)
	}
	h, nd := haystack, needle
	if !caseSensitive {
		h, nd = strings.ToUpper(h), strings.ToUpper(nd)
	}
	idx := strings.Index(h[start-1:], nd)
	if idx < 0 {
		return errValue(value.Value_)
	}
	return value.Number(float64(start + idx))
}

// applyNumberFormat implements a small, practical subset of spreadsheet
// number formats: "0" (integer), "0.00" style fixed decimals, and "%"
// percentage suffix.
func applyNumberFormat(n float64, format string) string {
	if strings.HasSuffix(format, "%") {
		return applyNumberFormat(n*100, strings.TrimSuffix(format, "%")) + "%"
	}
	if idx := strings.Index(format, "."); idx >= 0 {
		decimals := len(format) - idx - 1
		return strconv.FormatFloat(n, 'f', decimals, 64)
	}
	return fmt.Sprintf("%d", int64(n))
}
