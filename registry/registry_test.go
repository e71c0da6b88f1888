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

package registry_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mollendorff-ai/forge/registry"
)

func TestDefaultCatalogHasBuiltins(t *testing.T) {
	require := require.New(t)

	d, ok := registry.Default.Lookup("SUM")
	require.True(ok)
	require.Equal(registry.CategoryMath, d.Category)

	require.GreaterOrEqual(len(registry.Default.List()), 150)
}

func TestLookupMissingFunction(t *testing.T) {
	_, ok := registry.Default.Lookup("NOT_A_FUNCTION")
	require.False(t, ok)

	_, err := registry.Default.Describe("NOT_A_FUNCTION")
	require.Error(t, err)
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	c := registry.NewCatalog()
	c.MustRegister(registry.Descriptor{Name: "FOO", MinArity: 0, MaxArity: 0})
	require.Panics(t, func() {
		c.MustRegister(registry.Descriptor{Name: "FOO", MinArity: 0, MaxArity: 0})
	})
}

func TestCheckArity(t *testing.T) {
	d := registry.Descriptor{MinArity: 1, MaxArity: 2}
	require.False(t, d.CheckArity(0))
	require.True(t, d.CheckArity(1))
	require.True(t, d.CheckArity(2))
	require.False(t, d.CheckArity(3))

	unbounded := registry.Descriptor{MinArity: 0, MaxArity: -1}
	require.True(t, unbounded.CheckArity(1000))
}

func TestListIsSortedByName(t *testing.T) {
	list := registry.Default.List()
	for i := 1; i < len(list); i++ {
		require.LessOrEqual(t, list[i-1].Name, list[i].Name)
	}
}
