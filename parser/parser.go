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

// Package parser implements a classical Pratt / precedence-climbing
// parser over Forge's formula language (§4.2).
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mollendorff-ai/forge/ast"
	"github.com/mollendorff-ai/forge/lexer"
	"github.com/mollendorff-ai/forge/token"
)

// precedence levels, low to high (§4.2).
const (
	precLowest = iota
	precComparison
	precConcat
	precAdditive
	precMultiplicative
	precExponent
	precUnary
	precPostfix
	precPrimary
)

var binPrecedence = map[token.Type]int{
	token.EQ: precComparison, token.NEQ: precComparison,
	token.LT: precComparison, token.LTE: precComparison,
	token.GT: precComparison, token.GTE: precComparison,
	token.AMP:   precConcat,
	token.PLUS:  precAdditive,
	token.MINUS: precAdditive,
	token.STAR:  precMultiplicative,
	token.SLASH: precMultiplicative,
	token.CARET: precExponent,
}

// Error reports a syntax error with the source position of the offending
// token, per §4.2 ("Structural failures during parsing ... are reported
// by the parser to its caller").
type Error struct {
	Msg string
	Pos int
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at %d: %s", e.Pos, e.Msg)
}

// Parser turns a formula body into an ast.Node. Strip the leading "="
// before calling Parse (§4.2).
type Parser struct {
	l    *lexer.Lexer
	cur  token.Token
	peek token.Token
	err  *Error
}

// Parse strips a leading "=" if present and parses the remainder.
func Parse(formula string) (ast.Node, error) {
	body := strings.TrimPrefix(strings.TrimSpace(formula), "=")
	p := &Parser{l: lexer.New(body)}
	p.advance()
	p.advance()
	expr := p.parseExpr(precLowest)
	if p.err != nil {
		return nil, p.err
	}
	if p.cur.Type != token.EOF {
		return nil, &Error{Msg: "unexpected trailing token " + p.cur.Type.String(), Pos: p.cur.Pos}
	}
	return expr, nil
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) fail(msg string) {
	if p.err == nil {
		p.err = &Error{Msg: msg, Pos: p.cur.Pos}
	}
}

func (p *Parser) parseExpr(minPrec int) ast.Node {
	left := p.parseUnary()
	if p.err != nil {
		return left
	}
	for {
		prec, ok := binPrecedence[p.cur.Type]
		if !ok || prec < minPrec {
			break
		}
		op := p.cur
		nextMin := prec + 1
		if op.Type == token.CARET {
			// right-associative (§4.2)
			nextMin = prec
		}
		p.advance()
		right := p.parseExpr(nextMin)
		left = &ast.BinaryOp{Op: op.Literal, Left: left, Right: right}
	}
	return left
}

// parseUnary handles chains of unary "+"/"-" (§4.2 "-5 allows arbitrary
// chains of unary minus"), then defers to postfix/primary.
func (p *Parser) parseUnary() ast.Node {
	if p.cur.Type == token.PLUS || p.cur.Type == token.MINUS {
		op := p.cur.Literal
		p.advance()
		inner := p.parseUnary()
		return p.parsePostfixChain(&ast.UnaryOp{Op: op, Expr: inner})
	}
	return p.parsePostfixChain(p.parsePrimary())
}

func (p *Parser) parsePostfixChain(n ast.Node) ast.Node {
	for p.cur.Type == token.PERCENT {
		p.advance()
		n = &ast.PostfixOp{Op: "%", Expr: n}
	}
	// Immediate application of a parenthesized callee: LAMBDA(...)(args)
	for p.cur.Type == token.LPAREN {
		if _, isLambda := n.(*ast.LambdaLiteral); !isLambda {
			if _, isName := n.(*ast.NameRef); !isName {
				break
			}
		}
		p.advance()
		args := p.parseArgs()
		n = &ast.Apply{Callee: n, Args: args}
	}
	return n
}

func (p *Parser) parsePrimary() ast.Node {
	switch p.cur.Type {
	case token.NUMBER:
		f, err := strconv.ParseFloat(p.cur.Literal, 64)
		if err != nil {
			p.fail("invalid number literal " + p.cur.Literal)
			return nil
		}
		p.advance()
		return &ast.Literal{Kind: ast.LitNumber, Num: f}
	case token.TEXT:
		lit := p.cur.Literal
		p.advance()
		return &ast.Literal{Kind: ast.LitText, Text: lit}
	case token.TRUE_LIT:
		p.advance()
		return &ast.Literal{Kind: ast.LitBool, Bool: true}
	case token.FALSE_LIT:
		p.advance()
		return &ast.Literal{Kind: ast.LitBool, Bool: false}
	case token.LPAREN:
		p.advance()
		inner := p.parseExpr(precLowest)
		if p.cur.Type != token.RPAREN {
			p.fail("expected )")
			return inner
		}
		p.advance()
		return inner
	case token.LBRACE:
		return p.parseArrayLiteral()
	case token.IDENT:
		return p.parseIdentOrCall()
	default:
		p.fail("unexpected token " + p.cur.Type.String())
		p.advance()
		return &ast.Literal{Kind: ast.LitBool, Bool: false}
	}
}

func (p *Parser) parseIdentOrCall() ast.Node {
	name := p.cur.Literal
	p.advance()

	if p.cur.Type != token.LPAREN {
		return &ast.NameRef{Name: name}
	}

	upper := strings.ToUpper(name)
	p.advance() // consume (

	switch upper {
	case "LET":
		return p.parseLet()
	case "LAMBDA":
		return p.parseLambda()
	default:
		args := p.parseArgs()
		return &ast.Call{Name: name, Args: args}
	}
}

// parseArgs parses a comma-separated argument list; the caller has
// already consumed the opening "(".
func (p *Parser) parseArgs() []ast.Node {
	var args []ast.Node
	if p.cur.Type == token.RPAREN {
		p.advance()
		return args
	}
	for {
		args = append(args, p.parseExpr(precLowest))
		if p.err != nil {
			return args
		}
		if p.cur.Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if p.cur.Type != token.RPAREN {
		p.fail("expected ) or , in argument list")
		return args
	}
	p.advance()
	return args
}

// parseLet parses LET(name1, expr1, ..., body); the opening "(" has
// already been consumed (§4.2). Rather than disambiguate "is this
// identifier a new binding name or the start of the body" token-by-token,
// the whole argument list is parsed generically (like any call) and then
// split by position: every even-indexed argument but the last must be a
// plain name, every odd-indexed argument is its bound expression, and the
// final argument (the list has odd length) is the body.
func (p *Parser) parseLet() ast.Node {
	args := p.parseArgs()
	if p.err != nil {
		return nil
	}
	if len(args) == 0 || len(args)%2 == 0 {
		p.fail("LET requires name/expr pairs followed by a body")
		return nil
	}
	var names []string
	var exprs []ast.Node
	for i := 0; i < len(args)-1; i += 2 {
		nameRef, ok := args[i].(*ast.NameRef)
		if !ok {
			p.fail("LET binding name must be a plain identifier")
			return nil
		}
		names = append(names, nameRef.Name)
		exprs = append(exprs, args[i+1])
	}
	return &ast.LetBinding{Names: names, Exprs: exprs, Body: args[len(args)-1]}
}

// parseLambda parses LAMBDA(param1, ..., body); the opening "(" has
// already been consumed (§4.2, §9). Same uniform-then-split strategy as
// parseLet: every argument but the last must be a plain parameter name.
func (p *Parser) parseLambda() ast.Node {
	args := p.parseArgs()
	if p.err != nil {
		return nil
	}
	if len(args) == 0 {
		p.fail("LAMBDA requires a body")
		return nil
	}
	var params []string
	for i := 0; i < len(args)-1; i++ {
		nameRef, ok := args[i].(*ast.NameRef)
		if !ok {
			p.fail("LAMBDA parameter must be a plain identifier")
			return nil
		}
		params = append(params, nameRef.Name)
	}
	return &ast.LambdaLiteral{Params: params, Body: args[len(args)-1]}
}

// parseArrayLiteral parses "{a,b,c}" or "{a,b;c,d}"; rows are flattened
// row-major into one flat element list (§4.2 "the core treats them as
// row-major flat arrays").
func (p *Parser) parseArrayLiteral() ast.Node {
	p.advance() // consume {
	var elems []ast.Node
	if p.cur.Type == token.RBRACE {
		p.advance()
		return &ast.ArrayLiteral{Elements: elems}
	}
	for {
		elems = append(elems, p.parseExpr(precLowest))
		if p.err != nil {
			return &ast.ArrayLiteral{Elements: elems}
		}
		if p.cur.Type == token.COMMA || p.cur.Type == token.SEMI {
			p.advance()
			continue
		}
		break
	}
	if p.cur.Type != token.RBRACE {
		p.fail("expected } to close array literal")
		return &ast.ArrayLiteral{Elements: elems}
	}
	p.advance()
	return &ast.ArrayLiteral{Elements: elems}
}
