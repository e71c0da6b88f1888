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

package eval_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mollendorff-ai/forge/eval"
	"github.com/mollendorff-ai/forge/parser"
	"github.com/mollendorff-ai/forge/value"
)

func evalFormula(t *testing.T, src string, vars map[string]value.Value) value.Value {
	t.Helper()
	node, err := parser.Parse(src)
	require.NoError(t, err)
	e := eval.New(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return e.Eval(node, eval.NewEnv(vars))
}

func TestArithmetic(t *testing.T) {
	require.Equal(t, value.Number(7), evalFormula(t, "1+2*3", nil))
	require.Equal(t, value.Number(1), evalFormula(t, "0^0", nil))
	require.Equal(t, value.Number(5), evalFormula(t, "--5", nil))
	require.Equal(t, value.Number(-5), evalFormula(t, "---5", nil))
	require.Equal(t, value.Err(value.DivZero), evalFormula(t, "1/0", nil))
}

func TestModSignConvention(t *testing.T) {
	require.Equal(t, value.Number(1), evalFormula(t, "MOD(-5,3)", nil))
	require.Equal(t, value.Number(-2), evalFormula(t, "MOD(-5,-3)", nil))
}

func TestConcatenationAndCoercion(t *testing.T) {
	require.Equal(t, value.Number(2), evalFormula(t, "TRUE+1", nil))
	require.Equal(t, value.Number(8), evalFormula(t, `"5"+3`, nil))
	require.Equal(t, value.Text("5 items"), evalFormula(t, `CONCAT(5," items")`, nil))
}

func TestCaseInsensitiveComparison(t *testing.T) {
	require.Equal(t, value.Boolean(true), evalFormula(t, `"ABC"="abc"`, nil))
}

func TestTrimCollapsesSpaces(t *testing.T) {
	require.Equal(t, value.Number(3), evalFormula(t, `LEN(TRIM("  a  b  "))`, nil))
}

func TestIfShortCircuit(t *testing.T) {
	require.Equal(t, value.Number(1), evalFormula(t, `IF(TRUE,1,1/0)`, nil))
	require.Equal(t, value.Boolean(false), evalFormula(t, `IF(FALSE,1)`, nil))
}

func TestIferrorCatchesDivZero(t *testing.T) {
	require.Equal(t, value.Number(0), evalFormula(t, `IFERROR(1/0,0)`, nil))
}

func TestErrorShortCircuit(t *testing.T) {
	v := evalFormula(t, `1/0+5`, nil)
	require.Equal(t, value.Err(value.DivZero), v)
}

func TestLetBinding(t *testing.T) {
	require.Equal(t, value.Number(25), evalFormula(t, `LET(x,5,x*x)`, nil))
}

func TestLambdaApply(t *testing.T) {
	require.Equal(t, value.Number(10), evalFormula(t, `LAMBDA(x,x*2)(5)`, nil))
}

func TestLambdaBoundByLet(t *testing.T) {
	require.Equal(t, value.Number(10), evalFormula(t, `LET(f,LAMBDA(x,x*2),f(5))`, nil))
}

func TestNameLookupAndMissing(t *testing.T) {
	require.Equal(t, value.Number(42), evalFormula(t, "x", map[string]value.Value{"x": value.Number(42)}))
	require.Equal(t, value.Err(value.Name), evalFormula(t, "unknown_cell", nil))
}

func TestBreakevenUnitsCeiling(t *testing.T) {
	require.Equal(t, value.Number(5556), evalFormula(t, "BREAKEVEN_UNITS(500000,150,60)", nil))
}

func TestVarianceStatus(t *testing.T) {
	require.Equal(t, value.Text("BEAT"), evalFormula(t, "VARIANCE_STATUS(120,100)", nil))
	require.Equal(t, value.Text("MISS"), evalFormula(t, `VARIANCE_STATUS(120,100,"cost")`, nil))
	require.Equal(t, value.Text("ON_TARGET"), evalFormula(t, "VARIANCE_STATUS(100,100)", nil))
}

func TestDateArithmetic(t *testing.T) {
	diff := evalFormula(t, "DATE(2024,12,31)-DATE(2024,1,1)", nil)
	require.Equal(t, value.Number(365), diff)

	rolled := evalFormula(t, "DATE(2021,2,29)", nil)
	serial := rolled.DateUnchecked()
	require.Equal(t, "2021-03-01", value.DateToISO(serial))
}

func TestDatedifUnits(t *testing.T) {
	require.Equal(t, value.Number(4), evalFormula(t, `DATEDIF(DATE(2020,1,15),DATE(2024,2,10),"Y")`, nil))
	require.Equal(t, value.Number(0), evalFormula(t, `DATEDIF(DATE(2020,1,15),DATE(2024,2,10),"YM")`, nil))
	require.Equal(t, value.Number(26), evalFormula(t, `DATEDIF(DATE(2020,1,15),DATE(2024,2,10),"MD")`, nil))
}

func TestSumSkipsNonNumeric(t *testing.T) {
	vars := map[string]value.Value{
		"mixed": value.Array([]value.Value{value.Number(1), value.Text("x"), value.Boolean(true), value.Number(2)}),
	}
	require.Equal(t, value.Number(4), evalFormula(t, "SUM(mixed)", vars))
}

func TestMonteCarloHandleOutsideDriver(t *testing.T) {
	v := evalFormula(t, "MC.Normal(0.1,0.02)", nil)
	require.True(t, v.IsDistribution())
	require.Equal(t, "Normal", v.Distribution().Name)

	// Arithmetic on a distribution handle outside a simulation context is
	// a domain error, not a type error (§9).
	errV := evalFormula(t, "MC.Normal(0.1,0.02)+1", nil)
	require.Equal(t, value.Err(value.Num), errV)
}

func TestScenarioOutsideDriverIsNA(t *testing.T) {
	v := evalFormula(t, `SCENARIO("optimistic",x)`, map[string]value.Value{"x": value.Number(1)})
	require.Equal(t, value.Err(value.NA), v)
}
