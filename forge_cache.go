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

package forge

import (
	"github.com/mollendorff-ai/forge/model"
	"github.com/mollendorff-ai/forge/modeleval"
	"github.com/mollendorff-ai/forge/value"
)

// value.Value keeps every field private, so msgpack's reflection-based
// codec cannot marshal it directly (§9's point of the tagged union
// being a closed, opaque type). The DTO types below are the exported,
// wire-shaped mirror the memoization cache actually serializes.

type valueDTO struct {
	Kind byte
	Num  float64
	Text string
	Bool bool
	Date int64
	Err  string
	Arr  []valueDTO
}

func toValueDTO(v value.Value) valueDTO {
	switch v.Kind() {
	case value.KindNumber:
		return valueDTO{Kind: 1, Num: v.NumberUnchecked()}
	case value.KindText:
		return valueDTO{Kind: 2, Text: v.TextUnchecked()}
	case value.KindBoolean:
		return valueDTO{Kind: 3, Bool: v.BooleanUnchecked()}
	case value.KindDate:
		return valueDTO{Kind: 4, Date: v.DateUnchecked()}
	case value.KindError:
		return valueDTO{Kind: 5, Err: string(v.ErrorKindUnchecked())}
	case value.KindArray:
		arr := v.ArrayUnchecked()
		out := make([]valueDTO, len(arr))
		for i, e := range arr {
			out[i] = toValueDTO(e)
		}
		return valueDTO{Kind: 6, Arr: out}
	default:
		return valueDTO{Kind: 0}
	}
}

func fromValueDTO(d valueDTO) value.Value {
	switch d.Kind {
	case 1:
		return value.Number(d.Num)
	case 2:
		return value.Text(d.Text)
	case 3:
		return value.Boolean(d.Bool)
	case 4:
		return value.Date(d.Date)
	case 5:
		return value.Err(value.ErrorKind(d.Err))
	case 6:
		vs := make([]value.Value, len(d.Arr))
		for i, e := range d.Arr {
			vs[i] = fromValueDTO(e)
		}
		return value.Array(vs)
	default:
		return value.Empty()
	}
}

type cellErrorDTO struct {
	Cell string
	Kind string
	Row  int
}

type computedModelDTO struct {
	Version   string
	CellOrder []string
	Scalars   map[string]valueDTO
	Groups    map[string]map[string]valueDTO
	Columns   map[string][]valueDTO
	Tables    map[string]map[string][]valueDTO
	Errors    []cellErrorDTO
}

func newComputedModelDTO(cm *modeleval.ComputedModel, errs []modeleval.CellError) computedModelDTO {
	dto := computedModelDTO{
		Version:   string(cm.Version),
		CellOrder: cm.CellOrder,
		Scalars:   make(map[string]valueDTO, len(cm.Scalars)),
		Groups:    make(map[string]map[string]valueDTO, len(cm.Groups)),
		Columns:   make(map[string][]valueDTO, len(cm.Columns)),
		Tables:    make(map[string]map[string][]valueDTO, len(cm.Tables)),
	}
	for k, v := range cm.Scalars {
		dto.Scalars[k] = toValueDTO(v)
	}
	for container, members := range cm.Groups {
		m := make(map[string]valueDTO, len(members))
		for member, v := range members {
			m[member] = toValueDTO(v)
		}
		dto.Groups[container] = m
	}
	for k, col := range cm.Columns {
		out := make([]valueDTO, len(col))
		for i, v := range col {
			out[i] = toValueDTO(v)
		}
		dto.Columns[k] = out
	}
	for table, cols := range cm.Tables {
		tm := make(map[string][]valueDTO, len(cols))
		for col, vs := range cols {
			out := make([]valueDTO, len(vs))
			for i, v := range vs {
				out[i] = toValueDTO(v)
			}
			tm[col] = out
		}
		dto.Tables[table] = tm
	}
	for _, ce := range errs {
		dto.Errors = append(dto.Errors, cellErrorDTO{Cell: ce.Cell, Kind: string(ce.Kind), Row: ce.Row})
	}
	return dto
}

func (dto computedModelDTO) toComputedModel() *modeleval.ComputedModel {
	cm := &modeleval.ComputedModel{
		Version:   model.Dialect(dto.Version),
		CellOrder: dto.CellOrder,
		Scalars:   make(map[string]value.Value, len(dto.Scalars)),
		Groups:    make(map[string]map[string]value.Value, len(dto.Groups)),
		Columns:   make(map[string][]value.Value, len(dto.Columns)),
		Tables:    make(map[string]map[string][]value.Value, len(dto.Tables)),
	}
	for k, v := range dto.Scalars {
		cm.Scalars[k] = fromValueDTO(v)
	}
	for container, members := range dto.Groups {
		m := make(map[string]value.Value, len(members))
		for member, v := range members {
			m[member] = fromValueDTO(v)
		}
		cm.Groups[container] = m
	}
	for k, col := range dto.Columns {
		out := make([]value.Value, len(col))
		for i, v := range col {
			out[i] = fromValueDTO(v)
		}
		cm.Columns[k] = out
	}
	for table, cols := range dto.Tables {
		tm := make(map[string][]value.Value, len(cols))
		for col, vs := range cols {
			out := make([]value.Value, len(vs))
			for i, v := range vs {
				out[i] = fromValueDTO(v)
			}
			tm[col] = out
		}
		cm.Tables[table] = tm
	}
	return cm
}

func (dto computedModelDTO) toCellErrors() []modeleval.CellError {
	out := make([]modeleval.CellError, len(dto.Errors))
	for i, ce := range dto.Errors {
		out[i] = modeleval.CellError{Cell: ce.Cell, Kind: value.ErrorKind(ce.Kind), Row: ce.Row}
	}
	return out
}
