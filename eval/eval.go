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

// Package eval is the Expression Engine's evaluator (§4.2): a pure,
// recursive, single-pass walk of the parser's AST over an explicit
// environment, producing a Value. It never touches global or ambient
// state (§9 "Expression evaluator state").
package eval

import (
	"math"
	"strings"
	"time"

	"github.com/mollendorff-ai/forge/ast"
	"github.com/mollendorff-ai/forge/registry"
	"github.com/mollendorff-ai/forge/value"
)

// ScenarioLookup resolves SCENARIO(name, var) (§4.2, §4.5, §9 Open
// Question #2). The Model Evaluator supplies an implementation when it is
// driving a scenarios-compare analytics run; elsewhere it is nil and
// SCENARIO() always yields Error(NA).
type ScenarioLookup func(scenario, varName string) (value.Value, bool)

// Evaluator carries the read-only context a single evaluation needs: the
// function catalog and the wall-clock snapshot for TODAY()/NOW() (§5
// "snapshotted at the start of each evaluation").
type Evaluator struct {
	Registry *registry.Catalog
	Now      time.Time
	Scenario ScenarioLookup
}

// New builds an Evaluator against the default builtin catalog.
func New(now time.Time) *Evaluator {
	return &Evaluator{Registry: registry.Default, Now: now}
}

// errValue builds an Error Value; a small convenience used throughout the
// builtin functions below.
func errValue(k value.ErrorKind) value.Value { return value.Err(k) }

// Eval walks one AST node to a Value (§4.2 Evaluator).
func (e *Evaluator) Eval(n ast.Node, env *Env) value.Value {
	switch t := n.(type) {
	case *ast.Literal:
		return e.evalLiteral(t)
	case *ast.NameRef:
		if v, ok := env.Get(t.Name); ok {
			return v
		}
		return errValue(value.Name)
	case *ast.UnaryOp:
		return e.evalUnary(t, env)
	case *ast.PostfixOp:
		return e.evalPostfix(t, env)
	case *ast.BinaryOp:
		return e.evalBinary(t, env)
	case *ast.ArrayLiteral:
		return e.evalArray(t, env)
	case *ast.LambdaLiteral:
		return e.evalLambdaLiteral(t, env)
	case *ast.LetBinding:
		return e.evalLet(t, env)
	case *ast.Apply:
		return e.evalApply(t, env)
	case *ast.Call:
		return e.evalCall(t, env)
	default:
		return errValue(value.Value_)
	}
}

func (e *Evaluator) evalLiteral(l *ast.Literal) value.Value {
	switch l.Kind {
	case ast.LitNumber:
		return value.Number(l.Num)
	case ast.LitText:
		return value.Text(l.Text)
	case ast.LitBool:
		return value.Boolean(l.Bool)
	default:
		return value.Empty()
	}
}

func (e *Evaluator) evalUnary(u *ast.UnaryOp, env *Env) value.Value {
	v := e.Eval(u.Expr, env)
	if v.IsError() {
		return v
	}
	n, k, ok := value.ToNumber(v)
	if !ok {
		return errValue(k)
	}
	if u.Op == "-" {
		return value.Number(-n)
	}
	return value.Number(n)
}

func (e *Evaluator) evalPostfix(p *ast.PostfixOp, env *Env) value.Value {
	v := e.Eval(p.Expr, env)
	if v.IsError() {
		return v
	}
	n, k, ok := value.ToNumber(v)
	if !ok {
		return errValue(k)
	}
	if p.Op == "%" {
		return value.Number(n / 100)
	}
	return v
}

// evalBinary implements §4.2's Arithmetic / Concatenation / Comparison
// rules, including error short-circuit (§8 "Error short-circuit").
func (e *Evaluator) evalBinary(b *ast.BinaryOp, env *Env) value.Value {
	left := e.Eval(b.Left, env)
	if left.IsError() {
		return left
	}
	right := e.Eval(b.Right, env)
	if right.IsError() {
		return right
	}

	switch b.Op {
	case "=", "<>", "<", "<=", ">", ">=":
		return compare(left, right, b.Op)
	case "&":
		lt, k, ok := value.ToText(left)
		if !ok {
			return errValue(k)
		}
		rt, k, ok := value.ToText(right)
		if !ok {
			return errValue(k)
		}
		return value.Text(lt + rt)
	case "+", "-", "*", "/", "^":
		return arithmetic(left, right, b.Op)
	default:
		return errValue(value.Value_)
	}
}

// arithmetic implements §4.2's numeric operator contracts: DIV_ZERO,
// 0^0=1, fractional exponent of a negative base -> NUM.
func arithmetic(left, right value.Value, op string) value.Value {
	ln, k, ok := value.ToNumber(left)
	if !ok {
		return errValue(k)
	}
	rn, k, ok := value.ToNumber(right)
	if !ok {
		return errValue(k)
	}
	switch op {
	case "+":
		return value.Number(ln + rn)
	case "-":
		return value.Number(ln - rn)
	case "*":
		return value.Number(ln * rn)
	case "/":
		if rn == 0 {
			return errValue(value.DivZero)
		}
		return value.Number(ln / rn)
	case "^":
		return power(ln, rn)
	default:
		return errValue(value.Value_)
	}
}

func power(base, exp float64) value.Value {
	if base == 0 && exp == 0 {
		return value.Number(1)
	}
	if base < 0 && exp != float64(int64(exp)) {
		return errValue(value.Num)
	}
	return value.Number(math.Pow(base, exp))
}

// compare implements §4.2 Comparison: numeric if both sides coerce,
// textual (case-insensitive) otherwise; Empty compares equal to 0 and "".
func compare(a, b value.Value, op string) value.Value {
	an, _, aok := value.ToNumber(a)
	bn, _, bok := value.ToNumber(b)
	var cmp int
	if aok && bok {
		switch {
		case an < bn:
			cmp = -1
		case an > bn:
			cmp = 1
		default:
			cmp = 0
		}
	} else {
		at, _, atok := value.ToText(a)
		bt, _, btok := value.ToText(b)
		if !atok || !btok {
			return errValue(value.Value_)
		}
		at, bt = strings.ToUpper(at), strings.ToUpper(bt)
		switch {
		case at < bt:
			cmp = -1
		case at > bt:
			cmp = 1
		default:
			cmp = 0
		}
	}
	switch op {
	case "=":
		return value.Boolean(cmp == 0)
	case "<>":
		return value.Boolean(cmp != 0)
	case "<":
		return value.Boolean(cmp < 0)
	case "<=":
		return value.Boolean(cmp <= 0)
	case ">":
		return value.Boolean(cmp > 0)
	case ">=":
		return value.Boolean(cmp >= 0)
	default:
		return errValue(value.Value_)
	}
}

func (e *Evaluator) evalArray(a *ast.ArrayLiteral, env *Env) value.Value {
	out := make([]value.Value, len(a.Elements))
	for i, el := range a.Elements {
		v := e.Eval(el, env)
		if v.IsError() {
			return v
		}
		out[i] = v
	}
	return value.Array(out)
}

func (e *Evaluator) evalLambdaLiteral(l *ast.LambdaLiteral, env *Env) value.Value {
	captured := snapshotEnv(env)
	body := l.Body
	return value.LambdaValue(&value.Lambda{
		Params: l.Params,
		Body:   body,
		Env:    captured,
		BodyEval: func(callEnv map[string]value.Value) value.Value {
			child := NewEnv(captured).Child()
			for k, v := range callEnv {
				child.Bind(k, v)
			}
			return e.Eval(body, child)
		},
	})
}

// snapshotEnv flattens an environment chain into a single map for a
// LAMBDA's captured closure (§9 "a small immutable map of enclosing LET
// bindings").
func snapshotEnv(env *Env) map[string]value.Value {
	out := make(map[string]value.Value)
	var chain []*Env
	for cur := env; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].locals {
			out[k] = v
		}
	}
	return out
}

// evalLet implements LET(name1, expr1, ..., body): each pair shadows
// outer names for subsequent pairs and the body (§4.2).
func (e *Evaluator) evalLet(l *ast.LetBinding, env *Env) value.Value {
	scope := env.Child()
	for i, name := range l.Names {
		v := e.Eval(l.Exprs[i], scope)
		if v.IsError() {
			return v
		}
		scope.Bind(name, v)
	}
	return e.Eval(l.Body, scope)
}

// evalApply implements LAMBDA(...)(args) and calling a LAMBDA Value bound
// by LET (§4.2, §9).
func (e *Evaluator) evalApply(a *ast.Apply, env *Env) value.Value {
	callee := e.Eval(a.Callee, env)
	if callee.IsError() {
		return callee
	}
	if !callee.IsLambda() {
		return errValue(value.Value_)
	}
	lam := callee.Lambda()
	if len(a.Args) != len(lam.Params) {
		return errValue(value.NA)
	}
	bound := make(map[string]value.Value, len(lam.Params))
	for i, p := range lam.Params {
		v := e.Eval(a.Args[i], env)
		if v.IsError() {
			return v
		}
		bound[p] = v
	}
	return lam.BodyEval(bound)
}

// evalCall dispatches a function call: special forms (short-circuiting,
// AST-aware) first, then the generic eager builtin table (§4.2).
func (e *Evaluator) evalCall(c *ast.Call, env *Env) value.Value {
	// Calling a LAMBDA Value bound to a plain name, e.g. LET(f, LAMBDA(x,x*2), f(5)).
	if v, ok := env.Get(c.Name); ok && v.IsLambda() {
		return e.evalApply(&ast.Apply{Callee: &ast.NameRef{Name: c.Name}, Args: c.Args}, env)
	}

	if fn, ok := specialForms[c.Name]; ok {
		return fn(e, env, c.Args)
	}

	if _, ok := e.Registry.Lookup(c.Name); !ok {
		if _, ok := builtins[c.Name]; !ok {
			return errValue(value.Name)
		}
	}
	args := make([]value.Value, len(c.Args))
	for i, a := range c.Args {
		v := e.Eval(a, env)
		if v.IsError() {
			return v
		}
		args[i] = v
	}
	fn, ok := builtins[c.Name]
	if !ok {
		return errValue(value.Name)
	}
	return fn(e, args)
}
