package parser

import (
	"strconv"

	"github.com/jplc/jplc/lang/ast"
	"github.com/jplc/jplc/lang/srcfile"
	"github.com/jplc/jplc/lang/token"
)

// parseExpr parses an expression at the lowest precedence level (|| &&).
func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseOrAnd()
}

// eb builds the ExprBase embedded by every expression node, anchored at
// the given source offset with no resolved type yet.
func eb(off int) ast.ExprBase { return ast.ExprBase{Off: off} }

var orAndOps = map[string]bool{"||": true, "&&": true}
var cmpOps = map[string]bool{"<": true, ">": true, "<=": true, ">=": true, "==": true, "!=": true}
var addOps = map[string]bool{"+": true, "-": true}
var mulOps = map[string]bool{"*": true, "/": true, "%": true}

func (p *Parser) opLexeme(tok token.Token) (string, bool) {
	if tok.Kind != token.OP {
		return "", false
	}
	return tok.Lexeme, true
}

// leftAssoc implements one precedence level: parse a sub-expression with
// `next`, then while the upcoming token's lexeme is in `ops`, consume it
// and fold another sub-expression in from the left.
func (p *Parser) leftAssoc(ops map[string]bool, next func() (ast.Expr, error)) (ast.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		lex, ok := p.opLexeme(tok)
		if !ok || !ops[lex] {
			return left, nil
		}
		if _, err := p.next(); err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ast.BinopExpr{ExprBase: eb(left.Offset()), Op: lex, Left: left, Right: right}
	}
}

func (p *Parser) parseOrAnd() (ast.Expr, error) {
	return p.leftAssoc(orAndOps, p.parseCompare)
}

func (p *Parser) parseCompare() (ast.Expr, error) {
	return p.leftAssoc(cmpOps, p.parseAdditive)
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	return p.leftAssoc(addOps, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	return p.leftAssoc(mulOps, p.parseUnary)
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if lex, ok := p.opLexeme(tok); ok && (lex == "-" || lex == "!") {
		if _, err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnopExpr{ExprBase: eb(tok.Offset), Op: lex, Operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case token.LSQUARE:
			if _, err := p.next(); err != nil {
				return nil, err
			}
			var indices []ast.Expr
			for {
				idx, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				indices = append(indices, idx)
				tok, err := p.next()
				if err != nil {
					return nil, err
				}
				if tok.Kind == token.RSQUARE {
					break
				}
				if tok.Kind != token.COMMA {
					return nil, unexpected(tok)
				}
			}
			e = &ast.ArrayIndexExpr{ExprBase: eb(e.Offset()), Target: e, Indices: indices}
		case token.DOT:
			if _, err := p.next(); err != nil {
				return nil, err
			}
			field, err := p.expect(token.VARIABLE)
			if err != nil {
				return nil, err
			}
			e = &ast.DotExpr{ExprBase: eb(e.Offset()), Target: e, Field: field.Lexeme}
		default:
			return e, nil
		}
	}
}

func (p *Parser) parseAtom() (ast.Expr, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case token.INTVAL:
		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, srcfile.NewError(tok.Offset, "integer literal out of range: %s", tok.Lexeme)
		}
		return &ast.IntExpr{ExprBase: eb(tok.Offset), Value: v}, nil
	case token.FLOATVAL:
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, srcfile.NewError(tok.Offset, "float literal out of range: %s", tok.Lexeme)
		}
		return &ast.FloatExpr{ExprBase: eb(tok.Offset), Value: v}, nil
	case token.TRUE:
		return &ast.TrueExpr{ExprBase: eb(tok.Offset)}, nil
	case token.FALSE:
		return &ast.FalseExpr{ExprBase: eb(tok.Offset)}, nil
	case token.LPAREN:
		next, err := p.peek()
		if err != nil {
			return nil, err
		}
		if next.Kind == token.RPAREN {
			if _, err := p.next(); err != nil {
				return nil, err
			}
			return &ast.VoidExpr{ExprBase: eb(tok.Offset)}, nil
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	case token.LSQUARE:
		var elems []ast.Expr
		first, err := p.peek()
		if err != nil {
			return nil, err
		}
		if first.Kind != token.RSQUARE {
			for {
				e, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				elems = append(elems, e)
				t, err := p.next()
				if err != nil {
					return nil, err
				}
				if t.Kind == token.RSQUARE {
					break
				}
				if t.Kind != token.COMMA {
					return nil, unexpected(t)
				}
			}
		} else {
			if _, err := p.next(); err != nil {
				return nil, err
			}
		}
		return &ast.ArrayLiteralExpr{ExprBase: eb(tok.Offset), Elements: elems}, nil
	case token.IF:
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.THEN); err != nil {
			return nil, err
		}
		thenE, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.ELSE); err != nil {
			return nil, err
		}
		elseE, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.IfExpr{ExprBase: eb(tok.Offset), Cond: cond, Then: thenE, Else: elseE}, nil
	case token.ARRAY:
		axes, err := p.parseAxes()
		if err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ArrayLoopExpr{ExprBase: eb(tok.Offset), Axes: axes, Body: body}, nil
	case token.SUM:
		axes, err := p.parseAxes()
		if err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.SumLoopExpr{ExprBase: eb(tok.Offset), Axes: axes, Body: body}, nil
	case token.VARIABLE:
		return p.parseVariableAtom(tok)
	default:
		return nil, unexpected(tok)
	}
}

// parseAxes parses the `[v1:n1, v2:n2, ...]` axis list shared by
// array-loop and sum-loop expressions.
func (p *Parser) parseAxes() ([]ast.Axis, error) {
	if _, err := p.expect(token.LSQUARE); err != nil {
		return nil, err
	}
	var axes []ast.Axis
	for {
		v, err := p.expect(token.VARIABLE)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		bound, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		axes = append(axes, ast.Axis{Var: v.Lexeme, VarOffset: v.Offset, Bound: bound})
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.RSQUARE {
			break
		}
		if tok.Kind != token.COMMA {
			return nil, unexpected(tok)
		}
	}
	return axes, nil
}

// parseVariableAtom disambiguates a bare variable reference from a call
// `name(args)` or a struct literal `name{fields}`.
func (p *Parser) parseVariableAtom(name token.Token) (ast.Expr, error) {
	next, err := p.peek()
	if err != nil {
		return nil, err
	}
	switch next.Kind {
	case token.LPAREN:
		if _, err := p.next(); err != nil {
			return nil, err
		}
		var args []ast.Expr
		t, err := p.peek()
		if err != nil {
			return nil, err
		}
		if t.Kind != token.RPAREN {
			for {
				a, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				tok, err := p.next()
				if err != nil {
					return nil, err
				}
				if tok.Kind == token.RPAREN {
					break
				}
				if tok.Kind != token.COMMA {
					return nil, unexpected(tok)
				}
			}
		} else {
			if _, err := p.next(); err != nil {
				return nil, err
			}
		}
		return &ast.CallExpr{ExprBase: eb(name.Offset), Name: name.Lexeme, Args: args}, nil
	case token.LCURLY:
		if _, err := p.next(); err != nil {
			return nil, err
		}
		var fields []ast.Expr
		t, err := p.peek()
		if err != nil {
			return nil, err
		}
		if t.Kind != token.RCURLY {
			for {
				f, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				fields = append(fields, f)
				tok, err := p.next()
				if err != nil {
					return nil, err
				}
				if tok.Kind == token.RCURLY {
					break
				}
				if tok.Kind != token.COMMA {
					return nil, unexpected(tok)
				}
			}
		} else {
			if _, err := p.next(); err != nil {
				return nil, err
			}
		}
		return &ast.StructLiteralExpr{ExprBase: eb(name.Offset), StructName: name.Lexeme, Fields: fields}, nil
	default:
		return &ast.VarExpr{ExprBase: eb(name.Offset), Name: name.Lexeme}, nil
	}
}
