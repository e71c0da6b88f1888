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
	"github.com/mollendorff-ai/forge/ast"
	"github.com/mollendorff-ai/forge/value"
)

// builtinFunc is an eagerly-evaluated function: all its argument
// expressions are evaluated to Values (with error short-circuit already
// applied by evalCall) before the implementation runs.
type builtinFunc func(e *Evaluator, args []value.Value) value.Value

// specialForm is a function whose evaluation order is not "evaluate every
// argument, then dispatch" — IF/AND/OR/IFERROR/IFNA short-circuit (§4.2
// "State machine"), SCENARIO needs the current scenario name, not just
// argument values.
type specialForm func(e *Evaluator, env *Env, args []ast.Node) value.Value

// builtins holds every eagerly-evaluated function; populated by each
// func_*.go file's init().
var builtins = map[string]builtinFunc{}

// specialForms holds the lazily-evaluated control-flow functions.
var specialForms = map[string]specialForm{
	"IF":      sfIf,
	"IFS":     sfIfs,
	"SWITCH":  sfSwitch,
	"AND":     sfAnd,
	"OR":      sfOr,
	"IFERROR": sfIferror,
	"IFNA":    sfIfna,
	"CHOOSE":  sfChoose,
	"SCENARIO": sfScenario,
}

func sfIf(e *Evaluator, env *Env, args []ast.Node) value.Value {
	if len(args) < 2 {
		return errValue(value.Value_)
	}
	cond := e.Eval(args[0], env)
	if cond.IsError() {
		return cond
	}
	b, k, ok := value.ToBoolean(cond)
	if !ok {
		return errValue(k)
	}
	if b {
		return e.Eval(args[1], env)
	}
	if len(args) >= 3 {
		return e.Eval(args[2], env)
	}
	return value.Boolean(false)
}

// sfIfs implements IFS(cond1, val1, cond2, val2, ...): the first true
// condition's value is returned; no match -> Error(NA).
func sfIfs(e *Evaluator, env *Env, args []ast.Node) value.Value {
	for i := 0; i+1 < len(args); i += 2 {
		cond := e.Eval(args[i], env)
		if cond.IsError() {
			return cond
		}
		b, k, ok := value.ToBoolean(cond)
		if !ok {
			return errValue(k)
		}
		if b {
			return e.Eval(args[i+1], env)
		}
	}
	return errValue(value.NA)
}

// sfSwitch implements SWITCH(expr, val1, result1, ..., [default]).
func sfSwitch(e *Evaluator, env *Env, args []ast.Node) value.Value {
	if len(args) < 1 {
		return errValue(value.Value_)
	}
	subject := e.Eval(args[0], env)
	if subject.IsError() {
		return subject
	}
	i := 1
	for ; i+1 < len(args); i += 2 {
		cand := e.Eval(args[i], env)
		if cand.IsError() {
			return cand
		}
		eq := compare(subject, cand, "=")
		if b, _, ok := value.ToBoolean(eq); ok && b {
			return e.Eval(args[i+1], env)
		}
	}
	if i < len(args) {
		return e.Eval(args[i], env)
	}
	return errValue(value.NA)
}

func sfAnd(e *Evaluator, env *Env, args []ast.Node) value.Value {
	if len(args) == 0 {
		return value.Boolean(true)
	}
	for _, a := range args {
		v := e.Eval(a, env)
		if v.IsError() {
			return v
		}
		b, k, ok := value.ToBoolean(v)
		if !ok {
			return errValue(k)
		}
		if !b {
			return value.Boolean(false)
		}
	}
	return value.Boolean(true)
}

func sfOr(e *Evaluator, env *Env, args []ast.Node) value.Value {
	if len(args) == 0 {
		return value.Boolean(false)
	}
	for _, a := range args {
		v := e.Eval(a, env)
		if v.IsError() {
			return v
		}
		b, k, ok := value.ToBoolean(v)
		if !ok {
			return errValue(k)
		}
		if b {
			return value.Boolean(true)
		}
	}
	return value.Boolean(false)
}

func sfIferror(e *Evaluator, env *Env, args []ast.Node) value.Value {
	if len(args) != 2 {
		return errValue(value.Value_)
	}
	v := e.Eval(args[0], env)
	if v.IsError() {
		return e.Eval(args[1], env)
	}
	return v
}

func sfIfna(e *Evaluator, env *Env, args []ast.Node) value.Value {
	if len(args) != 2 {
		return errValue(value.Value_)
	}
	v := e.Eval(args[0], env)
	if v.IsError() && v.ErrorKindUnchecked().IsNA() {
		return e.Eval(args[1], env)
	}
	return v
}

// sfChoose implements CHOOSE(index, val1, val2, ...), 1-indexed.
func sfChoose(e *Evaluator, env *Env, args []ast.Node) value.Value {
	if len(args) < 2 {
		return errValue(value.Value_)
	}
	idxV := e.Eval(args[0], env)
	if idxV.IsError() {
		return idxV
	}
	idx, k, ok := value.ToNumber(idxV)
	if !ok {
		return errValue(k)
	}
	i := int(idx)
	if i < 1 || i > len(args)-1 {
		return errValue(value.NA)
	}
	return e.Eval(args[i], env)
}

// sfScenario implements SCENARIO(name, var) (§4.2, §4.5, §9 Open
// Question #2): outside a scenario-compare driver it is Error(NA).
func sfScenario(e *Evaluator, env *Env, args []ast.Node) value.Value {
	if len(args) != 2 {
		return errValue(value.Value_)
	}
	if e.Scenario == nil {
		return errValue(value.NA)
	}
	nameV := e.Eval(args[0], env)
	if nameV.IsError() {
		return nameV
	}
	name, k, ok := value.ToText(nameV)
	if !ok {
		return errValue(k)
	}
	varNode, ok := args[1].(*ast.NameRef)
	if !ok {
		return errValue(value.Value_)
	}
	v, found := e.Scenario(name, varNode.Name)
	if !found {
		return errValue(value.NA)
	}
	return v
}
