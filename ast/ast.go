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

// Package ast defines the expression tree produced by the parser and
// walked by the evaluator and the dependency resolver (§4.2, §4.3).
package ast

// Node is any expression AST node.
type Node interface {
	node()
}

// Literal is a constant number, text, or boolean.
type Literal struct {
	Kind  LiteralKind
	Num   float64
	Text  string
	Bool  bool
}

type LiteralKind int

const (
	LitNumber LiteralKind = iota
	LitText
	LitBool
)

func (*Literal) node() {}

// NameRef is a name reference, possibly dotted ("group.member"). The
// resolver treats dotted names as a single lexeme and the evaluator
// resolves them greedily at runtime, falling back to shorter prefixes on
// miss (§9 "Name resolution").
type NameRef struct {
	Name string
}

func (*NameRef) node() {}

// UnaryOp is a prefix operator: chains of unary "-" and "+" (§4.2).
type UnaryOp struct {
	Op   string // "+" or "-"
	Expr Node
}

func (*UnaryOp) node() {}

// PostfixOp is a postfix operator: "%" only, today (§4.2).
type PostfixOp struct {
	Op   string
	Expr Node
}

func (*PostfixOp) node() {}

// BinaryOp is an infix operator: comparisons, "&", "+ -", "* /", "^".
type BinaryOp struct {
	Op    string
	Left  Node
	Right Node
}

func (*BinaryOp) node() {}

// Call is a function call, f(args...), including calling a LAMBDA value
// bound to a name (§4.2 "LAMBDA(...)(args...)").
type Call struct {
	Name string
	Args []Node
}

func (*Call) node() {}

// Apply applies an inline LAMBDA literal directly to arguments:
// LAMBDA(x, x*2)(5). Distinguished from Call because the callee is an
// expression, not a registered function name (§9 "LAMBDA closures").
type Apply struct {
	Callee Node
	Args   []Node
}

func (*Apply) node() {}

// ArrayLiteral is a "{a,b,c}" or "{a,b;c,d}" literal. Rows are flattened
// row-major into a single flat list of expressions (§4.2).
type ArrayLiteral struct {
	Elements []Node
}

func (*ArrayLiteral) node() {}

// LambdaLiteral is "LAMBDA(param1, ..., body)" evaluated without
// immediate application: it produces a closure Value (§4.2, §9).
type LambdaLiteral struct {
	Params []string
	Body   Node
}

func (*LambdaLiteral) node() {}

// LetBinding is "LET(name1, expr1, ..., body)": each (name, expr) pair
// shadows outer names for subsequent pairs and for Body (§4.2).
type LetBinding struct {
	Names []string
	Exprs []Node
	Body  Node
}

func (*LetBinding) node() {}
