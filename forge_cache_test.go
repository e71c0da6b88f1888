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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mollendorff-ai/forge/modeleval"
	"github.com/mollendorff-ai/forge/value"
)

func TestValueDTORoundTrip(t *testing.T) {
	cases := []value.Value{
		value.Empty(),
		value.Number(3.25),
		value.Text("hello"),
		value.Boolean(true),
		value.Date(45000),
		value.Err(value.DivZero),
		value.Array([]value.Value{value.Number(1), value.Text("x"), value.Boolean(false)}),
	}
	for _, v := range cases {
		got := fromValueDTO(toValueDTO(v))
		require.Equal(t, v.Kind(), got.Kind())
	}
}

func TestComputedModelDTORoundTrip(t *testing.T) {
	cm := &modeleval.ComputedModel{
		Version:   "5.0.0",
		CellOrder: []string{"a", "b"},
		Scalars: map[string]value.Value{
			"a": value.Number(1),
			"b": value.Text("two"),
		},
		Groups: map[string]map[string]value.Value{
			"g": {"x": value.Number(10)},
		},
		Columns: map[string][]value.Value{
			"col": {value.Number(1), value.Number(2)},
		},
		Tables: map[string]map[string][]value.Value{
			"t": {"c1": {value.Number(5)}},
		},
	}
	errs := []modeleval.CellError{{Cell: "a", Kind: value.DivZero, Row: -1}}

	dto := newComputedModelDTO(cm, errs)
	back := dto.toComputedModel()
	backErrs := dto.toCellErrors()

	require.Equal(t, cm.Version, back.Version)
	require.Equal(t, cm.CellOrder, back.CellOrder)
	require.Equal(t, cm.Scalars["a"].Kind(), back.Scalars["a"].Kind())
	require.Equal(t, cm.Groups["g"]["x"].Kind(), back.Groups["g"]["x"].Kind())
	require.Len(t, back.Columns["col"], 2)
	require.Len(t, back.Tables["t"]["c1"], 1)
	require.Equal(t, errs, backErrs)
}
