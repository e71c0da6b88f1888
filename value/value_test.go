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

package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mollendorff-ai/forge/value"
)

func TestValueStringRendersSpreadsheetStyle(t *testing.T) {
	require := require.New(t)

	require.Equal("5", value.Number(5).String())
	require.Equal("TRUE", value.Boolean(true).String())
	require.Equal("FALSE", value.Boolean(false).String())
	require.Equal("", value.Empty().String())
	require.Equal("#VALUE!", value.Err(value.Value_).String())
}

func TestEqualIsDeepAndOrderSensitive(t *testing.T) {
	require := require.New(t)

	a := value.Array([]value.Value{value.Number(1), value.Text("x")})
	b := value.Array([]value.Value{value.Number(1), value.Text("x")})
	c := value.Array([]value.Value{value.Text("x"), value.Number(1)})

	require.True(value.Equal(a, b))
	require.False(value.Equal(a, c))
}

func TestFlattenScalarVsArray(t *testing.T) {
	require := require.New(t)

	require.Equal([]value.Value{value.Number(3)}, value.Number(3).Flatten())

	arr := value.Array([]value.Value{value.Number(1), value.Number(2)})
	require.Len(arr.Flatten(), 2)
}

func TestSortedKeysIsDeterministic(t *testing.T) {
	m := map[string]value.Value{"b": value.Number(1), "a": value.Number(2), "c": value.Number(3)}
	require.Equal(t, []string{"a", "b", "c"}, value.SortedKeys(m))
}
