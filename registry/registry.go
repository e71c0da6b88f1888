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

// Package registry is the static catalog of Forge's ~170 built-in
// functions (§4.1), grounded on the teacher's sql.Catalog /
// sql.FunctionRegistry pattern (sql/functionregistry_test.go:
// MustRegister/Function/NewInstance-with-arity-check).
package registry

import (
	"sort"
	"sync"

	goerrors "gopkg.in/src-d/go-errors.v1"
)

// Category groups functions for discovery (§4.1).
type Category string

const (
	CategoryMath         Category = "math"
	CategoryTrig         Category = "trig"
	CategoryAggregation  Category = "aggregation"
	CategoryLogical      Category = "logical"
	CategoryText         Category = "text"
	CategoryDate         Category = "date"
	CategoryLookup       Category = "lookup"
	CategoryFinancial    Category = "financial"
	CategoryStatistical  Category = "statistical"
	CategoryConditional  Category = "conditional"
	CategoryArray        Category = "array"
	CategoryInformation  Category = "information"
	CategoryForgeNative  Category = "forge-native"
	CategoryAdvanced     Category = "advanced"
)

// ErrUnknownFunction is a model-level diagnostic (§7 "NAME ... unknown
// function name at parse time is deferred to evaluation") surfaced by
// Describe, the lookup used outside ordinary evaluation (the
// registry.describe host operation of §6).
var ErrUnknownFunction = goerrors.NewKind("unknown function: %s")

// Descriptor is a function's static metadata (§4.1).
type Descriptor struct {
	Name             string
	Category         Category
	MinArity         int
	MaxArity         int // -1 means unbounded
	ScalarCompatible bool
	IsAnalytical     bool
}

// Catalog is the read-only, process-wide registry of function
// descriptors, built once at init and never mutated during evaluation
// (§5 "The Function Registry is read-only process state, initialized
// once").
type Catalog struct {
	mu    sync.RWMutex
	byName map[string]Descriptor
}

// NewCatalog creates an empty Catalog. The package init in builtins.go
// calls MustRegister on Default for every entry of builtinDescriptors.
func NewCatalog() *Catalog {
	return &Catalog{byName: make(map[string]Descriptor)}
}

// MustRegister registers a descriptor, panicking on a duplicate name —
// a programmer error caught at process init, mirroring the teacher's
// MustRegister on sql.Catalog.
func (c *Catalog) MustRegister(d Descriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byName[d.Name]; ok {
		panic("registry: duplicate function " + d.Name)
	}
	c.byName[d.Name] = d
}

// Lookup returns a function's descriptor, or (Descriptor{}, false) if
// unknown (§4.1 "lookup(name) → descriptor | None").
func (c *Catalog) Lookup(name string) (Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.byName[name]
	return d, ok
}

// Describe is Lookup with the §6 "registry.describe" error contract.
func (c *Catalog) Describe(name string) (Descriptor, error) {
	d, ok := c.Lookup(name)
	if !ok {
		return Descriptor{}, ErrUnknownFunction.New(name)
	}
	return d, nil
}

// List returns every registered descriptor sorted by name, for the §6
// "registry.list" discovery operation.
func (c *Catalog) List() []Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Descriptor, 0, len(c.byName))
	for _, d := range c.byName {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CheckArity validates an argument count against a descriptor's
// min/max arity (§4.1).
func (d Descriptor) CheckArity(n int) bool {
	if n < d.MinArity {
		return false
	}
	if d.MaxArity >= 0 && n > d.MaxArity {
		return false
	}
	return true
}
