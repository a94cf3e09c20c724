// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// Expr is a parsed Boolean expression over declared variables (spec §6
// "expression grammar"): variables, the constants true/false, negation,
// binary connectives and/or/xor/implies/equiv, quantifiers, conditionals,
// and their TLA-style synonyms, built from a textual source by Parse and
// turned into a Handle by Manager.AddExpr.
type Expr interface {
	isExpr()
}

// ExprVar names a declared variable by its identifier.
type ExprVar struct{ Name string }

// ExprConst is a Boolean literal.
type ExprConst struct{ Value bool }

// ExprNot is logical negation.
type ExprNot struct{ X Expr }

// ExprBinary is a binary connective over two subexpressions.
type ExprBinary struct {
	Op   Op
	X, Y Expr
}

// ExprIte is the three-argument conditional ite(f, g, h), distinct from
// ExprBinary since it has no fixed Op: it lowers directly to Manager.Ite.
type ExprIte struct {
	If, Then, Else Expr
}

// ExprQuant is a single-variable quantifier, either "forall" or "exists"
// (spec §6 grammar: \A/\E and the forall/exists call forms).
type ExprQuant struct {
	Kind string // "forall" or "exists"
	Var  string
	Body Expr
}

func (ExprVar) isExpr()    {}
func (ExprConst) isExpr()  {}
func (ExprNot) isExpr()    {}
func (ExprBinary) isExpr() {}
func (ExprIte) isExpr()    {}
func (ExprQuant) isExpr()  {}

// Parser turns expression source text into an Expr tree.
type Parser interface {
	Parse(source string) (Expr, error)
}

// exprLangParser is the default Parser, grounded on expr-lang/expr's
// parser/ast subpackages (spec §11 "DOMAIN STACK": expr-lang/expr).
// expr-lang's own lexer has no tokens for TLA-style arrows or quantifier
// prefixes, so Parse first rewrites source into a form expr-lang can
// tokenize (preprocess), then walks the resulting AST (fromAST). The two
// together accept: identifiers; true/false; !/not/~; &&/&/and; ||/|/or;
// xor/^/#; implies/=>/->; equiv/<=>/<->; the call forms xor(a,b),
// ite(f,g,h), forall(v,body), exists(v,body); and the prefix/colon forms
// \A v: body, \E v: body, forall v: body, exists v: body. The forms #, ^,
// =>, ->, <=>, <-> and the prefix/colon quantifiers are rewritten only where
// they sit outside every bracket pair; inside parentheses or a call's
// argument list they are passed to expr-lang's parser unchanged.
type exprLangParser struct{}

// NewParser returns the default Parser.
func NewParser() Parser { return exprLangParser{} }

func (exprLangParser) Parse(source string) (Expr, error) {
	rewritten := preprocess(source)
	tree, err := parser.Parse(rewritten)
	if err != nil {
		return nil, fmt.Errorf("parsing expression %q: %w", source, err)
	}
	return fromAST(tree.Node)
}

// preprocess rewrites synonyms expr-lang's lexer either can't tokenize at
// all (TLA's /\, \/, \A, \E, the arrows =>/->/<=>/<->) or only tokenizes
// for unrelated purposes (^ and # aren't reliably Boolean xor operators in
// expr-lang's own grammar) into text expr-lang's parser does accept:
// call-form text for the operators with no safe native equivalent, and the
// doubled && / || forms for the single-character and/or synonyms, which
// expr-lang does parse as the connectives we want.
func preprocess(source string) string {
	source = strings.NewReplacer(
		`/\`, "&&",
		`\/`, "||",
		"~", "!",
	).Replace(source)
	source = doubleUp(source, '&')
	source = doubleUp(source, '|')
	return rewriteLogical(source)
}

// doubleUp rewrites every lone occurrence of c into cc, leaving an already
// doubled cc untouched, so "a & b" becomes "a && b" but "a && b" is left
// alone.
func doubleUp(s string, c byte) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != c {
			b.WriteByte(s[i])
			continue
		}
		b.WriteByte(c)
		b.WriteByte(c)
		if i+1 < len(s) && s[i+1] == c {
			i++
		}
	}
	return b.String()
}

// rewriteLogical recursively rewrites the lowest-precedence construct still
// present at the top level of s (a quantifier prefix, then equivalence,
// then implication, then xor) into call-form text, recursing into the
// pieces it splits off so chained occurrences are rewritten too; text inside
// brackets is never split. Left
// untouched, the result falls through to whatever expr-lang's own operator
// precedence does with the remaining &&/||/!/not/and/or tokens.
func rewriteLogical(s string) string {
	if rewritten, ok := trySplitQuantifier(s); ok {
		return rewritten
	}
	if rewritten, ok := trySplitInfix(s, []string{"<=>", "<->"}, "equiv"); ok {
		return rewritten
	}
	if rewritten, ok := trySplitInfix(s, []string{"=>", "->"}, "implies"); ok {
		return rewritten
	}
	if rewritten, ok := trySplitInfix(s, []string{"^", "#"}, "xor"); ok {
		return rewritten
	}
	return s
}

// trySplitInfix finds the first occurrence of any op in ops that sits at
// paren-depth zero, and rewrites "a OP b" into "fn(a, b)", recursing into
// both halves so chained occurrences are also rewritten. Occurrences inside
// brackets are skipped.
func trySplitInfix(s string, ops []string, fn string) (string, bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
			continue
		case ')', ']', '}':
			depth--
			continue
		}
		if depth != 0 {
			continue
		}
		for _, op := range ops {
			if strings.HasPrefix(s[i:], op) {
				left := rewriteLogical(strings.TrimSpace(s[:i]))
				right := rewriteLogical(strings.TrimSpace(s[i+len(op):]))
				return fn + "(" + left + ", " + right + ")", true
			}
		}
	}
	return s, false
}

var quantifierPrefixes = []struct{ tok, fn string }{
	{`\A`, "forall"},
	{`\E`, "exists"},
	{"forall", "forall"},
	{"exists", "exists"},
}

// trySplitQuantifier detects a leading quantifier prefix ("\A x : body",
// "forall x, y: body") and rewrites it into nested call-form text, one call
// per bound variable. The call forms forall(v, body)/exists(v, body) have no
// top-level colon and are left unchanged for fromAST to handle.
func trySplitQuantifier(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	for _, q := range quantifierPrefixes {
		if !strings.HasPrefix(trimmed, q.tok) {
			continue
		}
		rest := trimmed[len(q.tok):]
		if q.tok == "forall" || q.tok == "exists" {
			if rest == "" || isIdentByte(rest[0]) {
				continue // e.g. "forallx" is an identifier, not the keyword
			}
		}
		colon := topLevelIndex(rest, ":")
		if colon < 0 {
			continue
		}
		vars := strings.Split(rest[:colon], ",")
		body := rewriteLogical(strings.TrimSpace(rest[colon+1:]))
		for i := len(vars) - 1; i >= 0; i-- {
			v := strings.TrimSpace(vars[i])
			if v == "" {
				continue
			}
			body = fmt.Sprintf("%s(%s, %s)", q.fn, v, body)
		}
		return body, true
	}
	return s, false
}

func isIdentByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// topLevelIndex returns the index of sep in s outside any bracket nesting,
// or -1 if sep never occurs at depth zero.
func topLevelIndex(s, sep string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
		if depth == 0 && strings.HasPrefix(s[i:], sep) {
			return i
		}
	}
	return -1
}

func fromAST(n ast.Node) (Expr, error) {
	switch v := n.(type) {
	case *ast.BoolNode:
		return ExprConst{Value: v.Value}, nil
	case *ast.IdentifierNode:
		return ExprVar{Name: v.Value}, nil
	case *ast.UnaryNode:
		x, err := fromAST(v.Node)
		if err != nil {
			return nil, err
		}
		switch v.Operator {
		case "not", "!":
			return ExprNot{X: x}, nil
		default:
			return nil, fmt.Errorf("unsupported unary operator %q", v.Operator)
		}
	case *ast.BinaryNode:
		x, err := fromAST(v.Left)
		if err != nil {
			return nil, err
		}
		y, err := fromAST(v.Right)
		if err != nil {
			return nil, err
		}
		op, err := opFromToken(v.Operator)
		if err != nil {
			return nil, err
		}
		return ExprBinary{Op: op, X: x, Y: y}, nil
	case *ast.CallNode:
		return fromCall(v)
	default:
		return nil, fmt.Errorf("unsupported expression node %T", n)
	}
}

func fromCall(v *ast.CallNode) (Expr, error) {
	fn, ok := v.Callee.(*ast.IdentifierNode)
	if !ok {
		return nil, fmt.Errorf("unsupported call expression")
	}
	switch fn.Value {
	case "xor", "equiv", "implies":
		if len(v.Arguments) != 2 {
			return nil, fmt.Errorf("%s takes two arguments", fn.Value)
		}
		x, err := fromAST(v.Arguments[0])
		if err != nil {
			return nil, err
		}
		y, err := fromAST(v.Arguments[1])
		if err != nil {
			return nil, err
		}
		op, err := opFromToken(fn.Value)
		if err != nil {
			return nil, err
		}
		return ExprBinary{Op: op, X: x, Y: y}, nil
	case "ite":
		if len(v.Arguments) != 3 {
			return nil, fmt.Errorf("ite takes three arguments")
		}
		f, err := fromAST(v.Arguments[0])
		if err != nil {
			return nil, err
		}
		g, err := fromAST(v.Arguments[1])
		if err != nil {
			return nil, err
		}
		h, err := fromAST(v.Arguments[2])
		if err != nil {
			return nil, err
		}
		return ExprIte{If: f, Then: g, Else: h}, nil
	case "forall", "exists":
		if len(v.Arguments) != 2 {
			return nil, fmt.Errorf("%s takes a variable and a body", fn.Value)
		}
		varNode, ok := v.Arguments[0].(*ast.IdentifierNode)
		if !ok {
			return nil, fmt.Errorf("%s's first argument must be a variable name", fn.Value)
		}
		body, err := fromAST(v.Arguments[1])
		if err != nil {
			return nil, err
		}
		return ExprQuant{Kind: fn.Value, Var: varNode.Value, Body: body}, nil
	default:
		return nil, fmt.Errorf("unsupported call to %q", fn.Value)
	}
}

// opFromToken maps an expr-lang operator token (native or reused, per
// preprocess's doc comment) to the Op it denotes.
func opFromToken(tok string) (Op, error) {
	switch tok {
	case "and", "&&", "&":
		return OpAnd, nil
	case "or", "||", "|":
		return OpOr, nil
	case "xor", "^":
		return OpXor, nil
	case "implies", "=>", "->":
		return OpImplies, nil
	case "equiv", "<=>", "<->":
		return OpEquiv, nil
	default:
		return 0, fmt.Errorf("unsupported binary operator %q", tok)
	}
}

// AddExpr translates e into a Handle over m's declared variables. Every
// ExprVar name must already have been assigned an index by Declare.
func (m *Manager) AddExpr(e Expr) (Handle, error) {
	switch v := e.(type) {
	case ExprConst:
		if v.Value {
			return m.True(), nil
		}
		return m.False(), nil
	case ExprVar:
		idx, err := m.VarByName(v.Name)
		if err != nil {
			return Handle{}, err
		}
		return m.Ithvar(idx)
	case ExprNot:
		x, err := m.AddExpr(v.X)
		if err != nil {
			return Handle{}, err
		}
		return m.Not(x)
	case ExprBinary:
		x, err := m.AddExpr(v.X)
		if err != nil {
			return Handle{}, err
		}
		y, err := m.AddExpr(v.Y)
		if err != nil {
			return Handle{}, err
		}
		return m.binop(v.Op, x, y)
	case ExprIte:
		f, err := m.AddExpr(v.If)
		if err != nil {
			return Handle{}, err
		}
		g, err := m.AddExpr(v.Then)
		if err != nil {
			return Handle{}, err
		}
		h, err := m.AddExpr(v.Else)
		if err != nil {
			return Handle{}, err
		}
		return m.Ite(f, g, h)
	case ExprQuant:
		idx, err := m.VarByName(v.Var)
		if err != nil {
			return Handle{}, err
		}
		varset, err := m.Makeset([]int{idx})
		if err != nil {
			return Handle{}, err
		}
		body, err := m.AddExpr(v.Body)
		if err != nil {
			return Handle{}, err
		}
		switch v.Kind {
		case "forall":
			return m.Forall(body, varset)
		case "exists":
			return m.Exist(body, varset)
		default:
			return Handle{}, m.errorf(ErrInvalidInput, "unsupported quantifier %q", v.Kind)
		}
	default:
		return Handle{}, m.errorf(ErrInvalidInput, "unsupported expression node %T", e)
	}
}

// Eval parses source with p (or the default parser, if p is nil) and adds
// the result to m.
func (m *Manager) Eval(source string, p Parser) (Handle, error) {
	if p == nil {
		p = NewParser()
	}
	e, err := p.Parse(source)
	if err != nil {
		return Handle{}, err
	}
	return m.AddExpr(e)
}
