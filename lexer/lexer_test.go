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

package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mollendorff-ai/forge/lexer"
	"github.com/mollendorff-ai/forge/token"
)

func allTokens(input string) []token.Token {
	l := lexer.New(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func TestLexerBasicArithmetic(t *testing.T) {
	toks := allTokens("SUM(a,b) + 1.5e2 * -3%")
	types := make([]token.Type, len(toks))
	for i, tk := range toks {
		types[i] = tk.Type
	}
	require.Equal(t, []token.Type{
		token.IDENT, token.LPAREN, token.IDENT, token.COMMA, token.IDENT, token.RPAREN,
		token.PLUS, token.NUMBER, token.STAR, token.MINUS, token.NUMBER, token.PERCENT, token.EOF,
	}, types)
}

func TestLexerDottedIdentifier(t *testing.T) {
	toks := allTokens("projections.revenue")
	require.Equal(t, token.IDENT, toks[0].Type)
	require.Equal(t, "projections.revenue", toks[0].Literal)
}

func TestLexerQuotedTextWithEscape(t *testing.T) {
	toks := allTokens(`"say ""hi"""`)
	require.Equal(t, token.TEXT, toks[0].Type)
	require.Equal(t, `say "hi"`, toks[0].Literal)
}

func TestLexerComparisonOperators(t *testing.T) {
	toks := allTokens("<= <> >= < > =")
	types := make([]token.Type, 0, len(toks))
	for _, tk := range toks {
		types = append(types, tk.Type)
	}
	require.Equal(t, []token.Type{
		token.LTE, token.NEQ, token.GTE, token.LT, token.GT, token.EQ, token.EOF,
	}, types)
}

func TestLexerBooleanLiterals(t *testing.T) {
	toks := allTokens("TRUE FALSE true")
	require.Equal(t, token.TRUE_LIT, toks[0].Type)
	require.Equal(t, token.FALSE_LIT, toks[1].Type)
	require.Equal(t, token.TRUE_LIT, toks[2].Type)
}
