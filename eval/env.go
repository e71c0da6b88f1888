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
	"strings"

	"github.com/mollendorff-ai/forge/value"
)

// Env is the evaluator's environment: a chain of LET/LAMBDA scopes over a
// base name->Value map supplied by the caller (the Model Evaluator, or a
// test). Passed explicitly, never ambient (§9 "Expression evaluator
// state").
type Env struct {
	locals map[string]value.Value
	parent *Env
}

// NewEnv wraps a base mapping (model cell values, a row overlay, TODAY/NOW)
// as the root of an environment chain.
func NewEnv(base map[string]value.Value) *Env {
	return &Env{locals: base}
}

// Child creates a nested scope for a LET body or a LAMBDA application,
// shadowing outer names without mutating them (§4.2 "bindings shadow outer
// names").
func (e *Env) Child() *Env {
	return &Env{locals: make(map[string]value.Value), parent: e}
}

// Bind sets a name in this scope only.
func (e *Env) Bind(name string, v value.Value) {
	e.locals[name] = v
}

// Get resolves a name, walking outward through LET/LAMBDA scopes to the
// base map. Dotted names ("group.member") are tried whole first, falling
// back to progressively shorter prefixes on miss, since a LET binding may
// shadow a group name at runtime (§9 "Name resolution").
func (e *Env) Get(name string) (value.Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.locals[name]; ok {
			return v, true
		}
	}
	if idx := strings.LastIndex(name, "."); idx > 0 {
		return e.Get(name[:idx])
	}
	return value.Value{}, false
}
