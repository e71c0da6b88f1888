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

package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mollendorff-ai/forge/ast"
	"github.com/mollendorff-ai/forge/parser"
)

func TestParseStripsLeadingEquals(t *testing.T) {
	n, err := parser.Parse("=1+2")
	require.NoError(t, err)
	bin, ok := n.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, "+", bin.Op)
}

func TestParseExponentIsRightAssociative(t *testing.T) {
	n, err := parser.Parse("2^3^2")
	require.NoError(t, err)
	bin := n.(*ast.BinaryOp)
	require.Equal(t, "^", bin.Op)
	require.Equal(t, float64(2), bin.Left.(*ast.Literal).Num)
	rightBin := bin.Right.(*ast.BinaryOp)
	require.Equal(t, float64(3), rightBin.Left.(*ast.Literal).Num)
	require.Equal(t, float64(2), rightBin.Right.(*ast.Literal).Num)
}

func TestParseUnaryMinusChain(t *testing.T) {
	n, err := parser.Parse("--5")
	require.NoError(t, err)
	outer := n.(*ast.UnaryOp)
	require.Equal(t, "-", outer.Op)
	inner := outer.Expr.(*ast.UnaryOp)
	require.Equal(t, "-", inner.Op)
	require.Equal(t, float64(5), inner.Expr.(*ast.Literal).Num)
}

func TestParsePrecedenceMultiplicationBeforeAddition(t *testing.T) {
	n, err := parser.Parse("1+2*3")
	require.NoError(t, err)
	bin := n.(*ast.BinaryOp)
	require.Equal(t, "+", bin.Op)
	require.Equal(t, float64(1), bin.Left.(*ast.Literal).Num)
	mul := bin.Right.(*ast.BinaryOp)
	require.Equal(t, "*", mul.Op)
}

func TestParseFunctionCall(t *testing.T) {
	n, err := parser.Parse("SUM(a, b, 1)")
	require.NoError(t, err)
	call := n.(*ast.Call)
	require.Equal(t, "SUM", call.Name)
	require.Len(t, call.Args, 3)
}

func TestParseArrayLiteralFlattensRows(t *testing.T) {
	n, err := parser.Parse("{1,2;3,4}")
	require.NoError(t, err)
	arr := n.(*ast.ArrayLiteral)
	require.Len(t, arr.Elements, 4)
}

func TestParseLetBindings(t *testing.T) {
	n, err := parser.Parse("LET(x, 1, y, x+1, x+y)")
	require.NoError(t, err)
	let := n.(*ast.LetBinding)
	require.Equal(t, []string{"x", "y"}, let.Names)
	require.Len(t, let.Exprs, 2)
}

func TestParseLambdaAndImmediateApply(t *testing.T) {
	n, err := parser.Parse("LAMBDA(x, x*2)(5)")
	require.NoError(t, err)
	apply := n.(*ast.Apply)
	lam := apply.Callee.(*ast.LambdaLiteral)
	require.Equal(t, []string{"x"}, lam.Params)
	require.Len(t, apply.Args, 1)
}

func TestParsePostfixPercent(t *testing.T) {
	n, err := parser.Parse("50%")
	require.NoError(t, err)
	post := n.(*ast.PostfixOp)
	require.Equal(t, "%", post.Op)
}

func TestParseDottedName(t *testing.T) {
	n, err := parser.Parse("projections.revenue")
	require.NoError(t, err)
	ref := n.(*ast.NameRef)
	require.Equal(t, "projections.revenue", ref.Name)
}

func TestParseErrorOnUnexpectedToken(t *testing.T) {
	_, err := parser.Parse("1 +")
	require.Error(t, err)
}

func TestParseComparisonLowestPrecedence(t *testing.T) {
	n, err := parser.Parse("1+2=3")
	require.NoError(t, err)
	bin := n.(*ast.BinaryOp)
	require.Equal(t, "=", bin.Op)
}
