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

func init() {
	builtins["NOT"] = func(e *Evaluator, args []value.Value) value.Value {
		b, k, ok := one1Bool(args)
		if !ok {
			return errValue(k)
		}
		return value.Boolean(!b)
	}
	builtins["XOR"] = func(e *Evaluator, args []value.Value) value.Value {
		result := false
		for _, a := range args {
			b, k, ok := value.ToBoolean(a)
			if !ok {
				return errValue(k)
			}
			result = result != b
		}
		return value.Boolean(result)
	}
	builtins["TRUE"] = func(e *Evaluator, args []value.Value) value.Value { return value.Boolean(true) }
	builtins["FALSE"] = func(e *Evaluator, args []value.Value) value.Value { return value.Boolean(false) }
	builtins["NA"] = func(e *Evaluator, args []value.Value) value.Value { return errValue(value.NA) }

	builtins["ISBLANK"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 1 {
			return errValue(value.Value_)
		}
		return value.Boolean(args[0].IsEmpty())
	}
	// ISERROR/ISNA must see the raw (possibly-Error) argument, but evalCall
	// short-circuits on the first Error before a builtin ever runs. They
	// are registered as special forms so they evaluate their own argument
	// without the generic error short-circuit.
	builtins["ISNUMBER"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 1 {
			return errValue(value.Value_)
		}
		return value.Boolean(args[0].Kind() == value.KindNumber || args[0].Kind() == value.KindDate)
	}
	builtins["ISTEXT"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 1 {
			return errValue(value.Value_)
		}
		return value.Boolean(args[0].Kind() == value.KindText)
	}
	builtins["ISLOGICAL"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 1 {
			return errValue(value.Value_)
		}
		return value.Boolean(args[0].Kind() == value.KindBoolean)
	}
	builtins["ISEVEN"] = func(e *Evaluator, args []value.Value) value.Value {
		n, k, ok := one(args)
		if !ok {
			return errValue(k)
		}
		return value.Boolean(int64(n)%2 == 0)
	}
	builtins["ISODD"] = func(e *Evaluator, args []value.Value) value.Value {
		n, k, ok := one(args)
		if !ok {
			return errValue(k)
		}
		return value.Boolean(int64(n)%2 != 0)
	}
	builtins["N"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 1 {
			return errValue(value.Value_)
		}
		switch args[0].Kind() {
		case value.KindNumber:
			return args[0]
		case value.KindBoolean:
			if args[0].BooleanUnchecked() {
				return value.Number(1)
			}
			return value.Number(0)
		case value.KindDate:
			return value.Number(float64(args[0].DateUnchecked()))
		default:
			return value.Number(0)
		}
	}
	builtins["TYPE"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 1 {
			return errValue(value.Value_)
		}
		switch args[0].Kind() {
		case value.KindNumber, value.KindDate:
			return value.Number(1)
		case value.KindText:
			return value.Number(2)
		case value.KindBoolean:
			return value.Number(4)
		case value.KindError:
			return value.Number(16)
		case value.KindArray:
			return value.Number(64)
		default:
			return value.Number(1)
		}
	}
	builtins["EXACT"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 2 {
			return errValue(value.Value_)
		}
		a, k, ok := value.ToText(args[0])
		if !ok {
			return errValue(k)
		}
		b, k, ok := value.ToText(args[1])
		if !ok {
			return errValue(k)
		}
		return value.Boolean(a == b)
	}
}

func one1Bool(args []value.Value) (bool, value.ErrorKind, bool) {
	if len(args) != 1 {
		return false, value.Value_, false
	}
	return value.ToBoolean(args[0])
}

// ISERROR/ISNA evaluate their own argument directly rather than via the
// generic eager path, since evalCall's error short-circuit would otherwise
// return the error itself before these ever run (§4.2 "except inside
// IFERROR/IFNA/ISERROR/ISNA, which catch it").
func init() {
	specialForms["ISERROR"] = func(e *Evaluator, env *Env, args []ast.Node) value.Value {
		if len(args) != 1 {
			return errValue(value.Value_)
		}
		return value.Boolean(e.Eval(args[0], env).IsError())
	}
	specialForms["ISNA"] = func(e *Evaluator, env *Env, args []ast.Node) value.Value {
		if len(args) != 1 {
			return errValue(value.Value_)
		}
		v := e.Eval(args[0], env)
		return value.Boolean(v.IsError() && v.ErrorKindUnchecked().IsNA())
	}
}
