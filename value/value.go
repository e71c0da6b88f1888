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

// Package value defines Forge's runtime datum: a small closed tagged union
// shared by the lexer, evaluator, dependency resolver and every analytics
// driver.
package value

import (
	"fmt"
	"sort"
	"strings"
)

// Kind discriminates the variants of Value.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindNumber
	KindText
	KindBoolean
	KindDate
	KindError
	KindArray
	// KindDistribution carries MC.* distribution parameters; it is only
	// ever produced outside a Monte Carlo driver context (§4.2, §9) and
	// behaves as a NUM error anywhere else.
	KindDistribution
	// KindLambda is a callable closure produced by LAMBDA (§4.2, §9).
	KindLambda
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindNumber:
		return "Number"
	case KindText:
		return "Text"
	case KindBoolean:
		return "Boolean"
	case KindDate:
		return "Date"
	case KindError:
		return "Error"
	case KindArray:
		return "Array"
	case KindDistribution:
		return "Distribution"
	case KindLambda:
		return "Lambda"
	default:
		return "Unknown"
	}
}

// Value is the sole runtime datum. Only one payload field is meaningful for
// a given Kind; the struct stays small and allocation-free for scalars by
// keeping Array/Distribution/Lambda payloads behind pointers.
type Value struct {
	kind   Kind
	num    float64
	text   string
	bl     bool
	date   int64
	ekind  ErrorKind
	arr    []Value
	dist   *Distribution
	lambda *Lambda
}

// Distribution is the parameter carrier for an MC.* call evaluated outside
// a simulation context (§4.2 "MC.Normal, MC.Uniform, ...", §9 "MC.* handles
// as values").
type Distribution struct {
	Name   string // "Normal", "Uniform", "Triangular", "PERT", "LogNormal"
	Params []float64
}

// Lambda is a first-class closure produced by LAMBDA (§4.2, §9). Params
// names the formal parameters; Body is the AST body (opaque here to avoid
// an import cycle — eval stores a func value via BodyEval); Env is the
// captured LET-binding environment at definition time.
type Lambda struct {
	Params  []string
	Body    interface{}
	Env     map[string]Value
	BodyEval func(env map[string]Value) Value
}

func Empty() Value                     { return Value{kind: KindEmpty} }
func Number(f float64) Value           { return Value{kind: KindNumber, num: f} }
func Text(s string) Value              { return Value{kind: KindText, text: s} }
func Boolean(b bool) Value             { return Value{kind: KindBoolean, bl: b} }
func Date(serial int64) Value          { return Value{kind: KindDate, date: serial} }
func Err(k ErrorKind) Value            { return Value{kind: KindError, ekind: k} }
func Array(vs []Value) Value           { return Value{kind: KindArray, arr: vs} }
func DistHandle(d *Distribution) Value { return Value{kind: KindDistribution, dist: d} }
func LambdaValue(l *Lambda) Value      { return Value{kind: KindLambda, lambda: l} }

func (v Value) Kind() Kind                   { return v.kind }
func (v Value) IsEmpty() bool                { return v.kind == KindEmpty }
func (v Value) IsError() bool                { return v.kind == KindError }
func (v Value) IsArray() bool                { return v.kind == KindArray }
func (v Value) IsDistribution() bool         { return v.kind == KindDistribution }
func (v Value) IsLambda() bool               { return v.kind == KindLambda }
func (v Value) NumberUnchecked() float64     { return v.num }
func (v Value) TextUnchecked() string        { return v.text }
func (v Value) BooleanUnchecked() bool       { return v.bl }
func (v Value) DateUnchecked() int64         { return v.date }
func (v Value) ErrorKindUnchecked() ErrorKind { return v.ekind }
func (v Value) ArrayUnchecked() []Value      { return v.arr }
func (v Value) Distribution() *Distribution  { return v.dist }
func (v Value) Lambda() *Lambda              { return v.lambda }

// Flatten returns the scalar values this Value contributes to an aggregate
// (SUM, AVERAGE, ...): a scalar yields itself, an array yields its members.
func (v Value) Flatten() []Value {
	if v.kind == KindArray {
		return v.arr
	}
	return []Value{v}
}

// String renders a Value for display and debugging: numbers use %.15g,
// booleans render as TRUE/FALSE, dates as their serial, errors as
// "#KIND!". CONCAT and the "&" operator do not use it; they coerce
// through ToText, whose number text can differ from this one.
func (v Value) String() string {
	switch v.kind {
	case KindEmpty:
		return ""
	case KindNumber:
		return formatNumber(v.num)
	case KindText:
		return v.text
	case KindBoolean:
		if v.bl {
			return "TRUE"
		}
		return "FALSE"
	case KindDate:
		return fmt.Sprintf("%d", v.date)
	case KindError:
		return "#" + string(v.ekind) + "!"
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.String()
		}
		return "{" + strings.Join(parts, ",") + "}"
	case KindDistribution:
		return "#DIST(" + v.dist.Name + ")"
	case KindLambda:
		return "#LAMBDA"
	default:
		return ""
	}
}

func formatNumber(f float64) string {
	s := fmt.Sprintf("%.15g", f)
	return s
}

// Equal is a deep, order-sensitive comparison used by tests and by the
// determinism property in §8; it does not implement spreadsheet "=" (see
// the eval package for that, since "=" has coercion and case-insensitivity
// rules that do not belong on the Value type itself).
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNumber:
		return a.num == b.num
	case KindText:
		return a.text == b.text
	case KindBoolean:
		return a.bl == b.bl
	case KindDate:
		return a.date == b.date
	case KindError:
		return a.ekind == b.ekind
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// SortedKeys is a small helper used throughout the evaluator and resolver
// to make map iteration deterministic (§5 "Hash-map iteration that affects
// results must be replaced with order-preserving traversal").
func SortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
