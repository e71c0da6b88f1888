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

// Package forge is the host-facing engine (§6): it exposes exactly the
// operations an embedding host calls — evaluate, dependencies,
// run_analytics, registry.list/describe — grounded directly on the
// teacher's engine.go Config/Engine/NewDefault shape, generalized from a
// SQL query engine to a model evaluation engine.
package forge

import (
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/hashstructure"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	msgpack "gopkg.in/vmihailenco/msgpack.v2"
	yaml "gopkg.in/yaml.v2"

	"github.com/mollendorff-ai/forge/analytics"
	"github.com/mollendorff-ai/forge/model"
	"github.com/mollendorff-ai/forge/modeleval"
	"github.com/mollendorff-ai/forge/registry"
	"github.com/mollendorff-ai/forge/resolve"
)

// Config configures a new Engine (§6). A zero Config is valid: it
// disables tracing and memoization and logs to logrus's standard
// logger, mirroring the teacher's Config/NewDefault pairing.
type Config struct {
	// Logger receives structured diagnostics for every host operation.
	// Defaults to logrus.StandardLogger().
	Logger *logrus.Logger
	// Tracer receives a span per host operation. Defaults to a no-op
	// tracer.
	Tracer opentracing.Tracer
	// CachePath, if set, opens a boltdb-backed memoization cache keyed
	// by the hash of (model, scenario): repeated evaluate() calls
	// against the same Model and scenario name are served from disk
	// instead of re-running the Model Evaluator. Empty disables the
	// cache.
	CachePath string
}

// Engine is the sole entry point an embedding host uses (§6 "Operations
// exposed to the host").
type Engine struct {
	log    *logrus.Logger
	tracer opentracing.Tracer
	db     *bolt.DB
}

var cacheBucket = []byte("forge_computed_models")

// New constructs an Engine from Config, opening the memoization cache
// if CachePath is set.
func New(cfg Config) (*Engine, error) {
	e := &Engine{log: cfg.Logger, tracer: cfg.Tracer}
	if e.log == nil {
		e.log = logrus.StandardLogger()
	}
	if e.tracer == nil {
		e.tracer = opentracing.GlobalTracer()
	}
	if cfg.CachePath != "" {
		db, err := bolt.Open(cfg.CachePath, 0600, nil)
		if err != nil {
			return nil, errors.Wrap(err, "forge: opening memoization cache")
		}
		if err := db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(cacheBucket)
			return err
		}); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "forge: initializing memoization cache bucket")
		}
		e.db = db
	}
	return e, nil
}

// NewDefault builds an Engine with no memoization cache and default
// logging/tracing, mirroring the teacher's NewDefault() convenience
// constructor.
func NewDefault() *Engine {
	e, _ := New(Config{})
	return e
}

// Close releases the memoization cache, if one is open.
func (e *Engine) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

// Registry exposes the §4.1 function catalog for the §6
// "registry.list()"/"registry.describe(name)" discovery operations.
func (e *Engine) Registry() *registry.Catalog {
	return registry.Default
}

// EvalResult is the §6 "Output document": a Computed Model plus any
// cell-level errors surfaced alongside it.
type EvalResult struct {
	Model  *modeleval.ComputedModel
	Errors []modeleval.CellError
}

// Evaluate implements §6's `evaluate(model, scenario?)`. A configured
// memoization cache is consulted first and populated on a miss.
func (e *Engine) Evaluate(m *model.Model, scenario string) (*EvalResult, error) {
	span := e.tracer.StartSpan("forge.Evaluate")
	defer span.Finish()
	log := e.log.WithFields(logrus.Fields{"scenario": scenario})

	key, hasKey := e.cacheKey(m, scenario)
	if hasKey {
		if cached, ok := e.cacheGet(key); ok {
			log.Debug("forge: evaluate served from memoization cache")
			return cached, nil
		}
	}

	cm, cellErrs, err := modeleval.Evaluate(m, scenario, time.Now)
	if err != nil {
		return nil, errors.Wrap(err, "forge: evaluate")
	}
	if len(cellErrs) > 0 {
		var merr *multierror.Error
		for _, ce := range cellErrs {
			merr = multierror.Append(merr, errors.New(ce.String()))
		}
		log.WithField("cell_errors", merr.Error()).Debug("forge: evaluation completed with cell-level errors")
	}
	res := &EvalResult{Model: cm, Errors: cellErrs}
	if hasKey {
		e.cachePut(key, res)
	}
	return res, nil
}

// Dependencies implements §6's `dependencies(model, cell_name)`, used
// by audit tooling to show a cell's full upstream set.
func (e *Engine) Dependencies(m *model.Model, cellName string) ([]string, error) {
	span := e.tracer.StartSpan("forge.Dependencies")
	defer span.Finish()
	deps, err := resolve.Dependencies(m, cellName)
	if err != nil {
		return nil, errors.Wrapf(err, "forge: dependencies of %q", cellName)
	}
	return deps, nil
}

// malformedSpec builds a §7 "model-level failure": the Model's
// AnalyticsRaw payload does not match the option type its Analytics
// kind requires.
var malformedSpec = errors.New

// AnalyticsResult is the §6 "companion result object" RunAnalytics
// returns, tagged with a run ID for audit correlation.
type AnalyticsResult struct {
	RunID string
	Kind  model.AnalyticsKind
	Value interface{}
}

// RunAnalytics implements §6's `run_analytics(model, spec)`. The spec
// is carried on model.Model.Analytics/AnalyticsRaw; RunAnalytics
// dispatches to the matching engine in package analytics and tags the
// result with a fresh run ID.
func (e *Engine) RunAnalytics(m *model.Model) (*AnalyticsResult, error) {
	span := e.tracer.StartSpan("forge.RunAnalytics")
	defer span.Finish()
	runUUID, err := uuid.NewV4()
	if err != nil {
		return nil, errors.Wrap(err, "forge: generating analytics run id")
	}
	runID := runUUID.String()
	log := e.log.WithFields(logrus.Fields{"engine": string(m.Analytics), "run_id": runID})
	log.Debug("forge: starting analytics run")

	out, err := e.dispatchAnalytics(m)
	if err != nil {
		return nil, errors.Wrapf(err, "forge: analytics run %s", runID)
	}
	log.Debug("forge: analytics run complete")
	return &AnalyticsResult{RunID: runID, Kind: m.Analytics, Value: out}, nil
}

// ParseAnalyticsSpec decodes the YAML-encoded body of a §6 `spec`
// argument into the option struct the matching engine in package
// analytics expects, using the struct's own `yaml:"..."` tags. This is
// the engine-side half of `run_analytics(model, spec)`: a host hands
// Forge the raw spec text it read from a request or a model document's
// analytics block, and Forge — not the host — owns decoding it into a
// concrete Go type, the same way it owns every other part of
// evaluation semantics.
//
// decision_tree and bayesian_network specs are graph-shaped (a
// recursive DecisionNode tree, a DAG of CPTs) rather than a flat
// option record; hosts construct those programmatically via package
// analytics directly instead of through this YAML path.
func ParseAnalyticsSpec(kind model.AnalyticsKind, specYAML []byte) (interface{}, error) {
	switch kind {
	case model.AnalyticsSensitivity:
		var opts analytics.SensitivityOptions
		if err := yaml.Unmarshal(specYAML, &opts); err != nil {
			return nil, errors.Wrap(err, "forge: decoding sensitivity spec")
		}
		return opts, nil
	case model.AnalyticsScenarios:
		var opts analytics.ScenariosCompareOptions
		if err := yaml.Unmarshal(specYAML, &opts); err != nil {
			return nil, errors.Wrap(err, "forge: decoding scenarios_compare spec")
		}
		return opts, nil
	case model.AnalyticsVariance:
		var opts analytics.VarianceRunOptions
		if err := yaml.Unmarshal(specYAML, &opts); err != nil {
			return nil, errors.Wrap(err, "forge: decoding variance spec")
		}
		return opts, nil
	case model.AnalyticsMonteCarlo:
		var opts analytics.MonteCarloOptions
		if err := yaml.Unmarshal(specYAML, &opts); err != nil {
			return nil, errors.Wrap(err, "forge: decoding monte_carlo spec")
		}
		return opts, nil
	case model.AnalyticsBootstrap:
		var opts analytics.BootstrapOptions
		if err := yaml.Unmarshal(specYAML, &opts); err != nil {
			return nil, errors.Wrap(err, "forge: decoding bootstrap spec")
		}
		return opts, nil
	case model.AnalyticsTornado:
		var opts analytics.TornadoOptions
		if err := yaml.Unmarshal(specYAML, &opts); err != nil {
			return nil, errors.Wrap(err, "forge: decoding tornado spec")
		}
		return opts, nil
	case model.AnalyticsRealOptions:
		var opts analytics.RealOptionsOptions
		if err := yaml.Unmarshal(specYAML, &opts); err != nil {
			return nil, errors.Wrap(err, "forge: decoding real_options spec")
		}
		return opts, nil
	case model.AnalyticsDecisionTree, model.AnalyticsBayesian:
		return nil, malformedSpec(fmt.Sprintf("%s specs are graph-shaped and must be built programmatically, not decoded from YAML", kind))
	default:
		return nil, malformedSpec(fmt.Sprintf("unknown analytics kind %q", kind))
	}
}

// RunAnalyticsSpec decodes specYAML with ParseAnalyticsSpec, installs
// it as m.AnalyticsRaw under kind, and runs it via RunAnalytics. It is
// the full §6 `run_analytics(model, spec)` operation when the caller
// holds spec as serialized YAML rather than an already-built options
// struct.
func (e *Engine) RunAnalyticsSpec(m *model.Model, kind model.AnalyticsKind, specYAML []byte) (*AnalyticsResult, error) {
	opts, err := ParseAnalyticsSpec(kind, specYAML)
	if err != nil {
		return nil, err
	}
	m.Analytics = kind
	m.AnalyticsRaw = opts
	return e.RunAnalytics(m)
}

func (e *Engine) dispatchAnalytics(m *model.Model) (interface{}, error) {
	now := time.Now
	switch m.Analytics {
	case model.AnalyticsSensitivity:
		opts, ok := m.AnalyticsRaw.(analytics.SensitivityOptions)
		if !ok {
			return nil, malformedSpec("malformed sensitivity spec")
		}
		return analytics.Sensitivity(m, opts, now)
	case model.AnalyticsScenarios:
		opts, ok := m.AnalyticsRaw.(analytics.ScenariosCompareOptions)
		if !ok {
			return nil, malformedSpec("malformed scenarios_compare spec")
		}
		return analytics.ScenariosCompare(m, opts, now)
	case model.AnalyticsVariance:
		opts, ok := m.AnalyticsRaw.(analytics.VarianceRunOptions)
		if !ok {
			return nil, malformedSpec("malformed variance spec")
		}
		return analytics.RunVariance(m, opts, now)
	case model.AnalyticsMonteCarlo:
		opts, ok := m.AnalyticsRaw.(analytics.MonteCarloOptions)
		if !ok {
			return nil, malformedSpec("malformed monte_carlo spec")
		}
		return analytics.MonteCarlo(m, opts, now)
	case model.AnalyticsBootstrap:
		opts, ok := m.AnalyticsRaw.(analytics.BootstrapOptions)
		if !ok {
			return nil, malformedSpec("malformed bootstrap spec")
		}
		return analytics.Bootstrap(opts)
	case model.AnalyticsTornado:
		opts, ok := m.AnalyticsRaw.(analytics.TornadoOptions)
		if !ok {
			return nil, malformedSpec("malformed tornado spec")
		}
		return analytics.Tornado(m, opts, now)
	case model.AnalyticsDecisionTree:
		root, ok := m.AnalyticsRaw.(*analytics.DecisionNode)
		if !ok {
			return nil, malformedSpec("malformed decision_tree spec")
		}
		return analytics.RollbackDecisionTree(root)
	case model.AnalyticsRealOptions:
		opts, ok := m.AnalyticsRaw.(analytics.RealOptionsOptions)
		if !ok {
			return nil, malformedSpec("malformed real_options spec")
		}
		return analytics.PriceRealOption(opts)
	case model.AnalyticsBayesian:
		q, ok := m.AnalyticsRaw.(analytics.BayesianQuery)
		if !ok {
			return nil, malformedSpec("malformed bayesian_network spec")
		}
		return analytics.RunBayesianQuery(q)
	default:
		return nil, malformedSpec("model declares no analytics spec")
	}
}

// cacheKey hashes (model, scenario) with hashstructure for the
// memoization cache's lookup key (§9 "Scenario overlays vs
// configuration maps" — this is purely a host-side optimization, not
// part of evaluation semantics, so any hash collision only costs a
// cache miss-as-hit never observed in practice at the tolerance
// hashstructure targets).
func (e *Engine) cacheKey(m *model.Model, scenario string) ([]byte, bool) {
	if e.db == nil {
		return nil, false
	}
	h, err := hashstructure.Hash(struct {
		Model    *model.Model
		Scenario string
	}{m, scenario}, nil)
	if err != nil {
		e.log.WithError(err).Warn("forge: cache key hash failed, bypassing cache")
		return nil, false
	}
	key := make([]byte, 8)
	for i := 0; i < 8; i++ {
		key[i] = byte(h >> (8 * uint(i)))
	}
	return key, true
}

func (e *Engine) cacheGet(key []byte) (*EvalResult, bool) {
	var dto computedModelDTO
	found := false
	_ = e.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(cacheBucket)
		data := b.Get(key)
		if data == nil {
			return nil
		}
		if err := msgpack.Unmarshal(data, &dto); err != nil {
			return err
		}
		found = true
		return nil
	})
	if !found {
		return nil, false
	}
	return &EvalResult{Model: dto.toComputedModel(), Errors: dto.toCellErrors()}, true
}

func (e *Engine) cachePut(key []byte, res *EvalResult) {
	dto := newComputedModelDTO(res.Model, res.Errors)
	data, err := msgpack.Marshal(dto)
	if err != nil {
		e.log.WithError(err).Warn("forge: cache encode failed, not caching")
		return
	}
	if err := e.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put(key, data)
	}); err != nil {
		e.log.WithError(err).Warn("forge: cache write failed")
	}
}
