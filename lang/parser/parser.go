// Package parser implements JPL's recursive-descent parser with explicit
// precedence climbing for expressions. The grammar and dispatch rules
// follow the language reference §4.2.
package parser

import (
	"github.com/jplc/jplc/lang/ast"
	"github.com/jplc/jplc/lang/lexer"
	"github.com/jplc/jplc/lang/srcfile"
	"github.com/jplc/jplc/lang/token"
)

// Parser consumes tokens from a Lexer and builds an ast.Program.
type Parser struct {
	lex *lexer.Lexer
}

// New creates a Parser over src.
func New(src []byte) *Parser {
	return &Parser{lex: lexer.New(src)}
}

// Parse consumes the entire token stream and returns the resulting
// program, or the first fatal parse error encountered.
func Parse(src []byte) (*ast.Program, error) {
	p := New(src)
	return p.parseProgram()
}

func (p *Parser) peek() (token.Token, error) { return p.lex.Peek() }
func (p *Parser) next() (token.Token, error) { return p.lex.Next() }

// expect consumes and returns the next token, erroring if its kind does
// not match.
func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	tok, err := p.next()
	if err != nil {
		return token.Token{}, err
	}
	if tok.Kind != kind {
		return token.Token{}, unexpected(tok)
	}
	return tok, nil
}

func unexpected(tok token.Token) error {
	return srcfile.NewError(tok.Offset, "unexpected token: %s", tok.String())
}

// skipNewlines consumes zero or more NEWLINE tokens.
func (p *Parser) skipNewlines() error {
	for {
		tok, err := p.peek()
		if err != nil {
			return err
		}
		if tok.Kind != token.NEWLINE {
			return nil
		}
		if _, err := p.next(); err != nil {
			return err
		}
	}
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.EOF {
			return prog, nil
		}
		cmd, err := p.parseCmd()
		if err != nil {
			return nil, err
		}
		prog.Cmds = append(prog.Cmds, cmd)

		nl, err := p.peek()
		if err != nil {
			return nil, err
		}
		if nl.Kind != token.EOF {
			if _, err := p.expect(token.NEWLINE); err != nil {
				return nil, err
			}
		}
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseCmd() (ast.Cmd, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case token.READ:
		return p.parseReadCmd(tok)
	case token.WRITE:
		return p.parseWriteCmd(tok)
	case token.LET:
		return p.parseLetCmd(tok)
	case token.ASSERT:
		return p.parseAssertCmd(tok)
	case token.PRINT:
		return p.parsePrintCmd(tok)
	case token.SHOW:
		return p.parseShowCmd(tok)
	case token.TIME:
		return p.parseTimeCmd(tok)
	case token.FN:
		return p.parseFnCmd(tok)
	case token.STRUCT:
		return p.parseStructCmd(tok)
	default:
		return nil, unexpected(tok)
	}
}

func (p *Parser) parseReadCmd(start token.Token) (ast.Cmd, error) {
	if _, err := p.expect(token.IMAGE); err != nil {
		return nil, err
	}
	str, err := p.expect(token.STRING)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.TO); err != nil {
		return nil, err
	}
	lv, err := p.parseLValue()
	if err != nil {
		return nil, err
	}
	varLV, ok := lv.(*ast.VarLValue)
	if !ok {
		return nil, srcfile.NewError(lv.Offset(), "read target must be a plain variable")
	}
	return &ast.ReadCmd{Off: start.Offset, Path: str.Lexeme, LV: varLV}, nil
}

func (p *Parser) parseWriteCmd(start token.Token) (ast.Cmd, error) {
	if _, err := p.expect(token.IMAGE); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.TO); err != nil {
		return nil, err
	}
	str, err := p.expect(token.STRING)
	if err != nil {
		return nil, err
	}
	return &ast.WriteCmd{Off: start.Offset, Value: expr, Path: str.Lexeme}, nil
}

func (p *Parser) parseLetCmd(start token.Token) (ast.Cmd, error) {
	lv, err := p.parseLValue()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.EQUALS); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.LetCmd{Off: start.Offset, LV: lv, Value: expr}, nil
}

func (p *Parser) parseAssertCmd(start token.Token) (ast.Cmd, error) {
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COMMA); err != nil {
		return nil, err
	}
	str, err := p.expect(token.STRING)
	if err != nil {
		return nil, err
	}
	return &ast.AssertCmd{Off: start.Offset, Cond: expr, Message: str.Lexeme}, nil
}

func (p *Parser) parsePrintCmd(start token.Token) (ast.Cmd, error) {
	str, err := p.expect(token.STRING)
	if err != nil {
		return nil, err
	}
	return &ast.PrintCmd{Off: start.Offset, Message: str.Lexeme}, nil
}

func (p *Parser) parseShowCmd(start token.Token) (ast.Cmd, error) {
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ShowCmd{Off: start.Offset, Value: expr}, nil
}

func (p *Parser) parseTimeCmd(start token.Token) (ast.Cmd, error) {
	cmd, err := p.parseCmd()
	if err != nil {
		return nil, err
	}
	return &ast.TimeCmd{Off: start.Offset, Cmd: cmd}, nil
}

func (p *Parser) parseFnCmd(start token.Token) (ast.Cmd, error) {
	name, err := p.expect(token.VARIABLE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []*ast.Binding
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	for tok.Kind != token.RPAREN {
		if len(params) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
		}
		pname, err := p.expect(token.VARIABLE)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		ty, err := p.parseTypeNode()
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Binding{
			Off: pname.Offset,
			LV:  &ast.VarLValue{Off: pname.Offset, Ident: pname.Lexeme},
			Ty:  ty,
		})
		tok, err = p.peek()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	ret, err := p.parseTypeNode()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LCURLY); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.NEWLINE); err != nil {
		return nil, err
	}
	var body []ast.Stmt
	for {
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.RCURLY {
			break
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
		if _, err := p.expect(token.NEWLINE); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RCURLY); err != nil {
		return nil, err
	}
	return &ast.FnCmd{Off: start.Offset, Name: name.Lexeme, Params: params, Ret: ret, Body: body}, nil
}

func (p *Parser) parseStructCmd(start token.Token) (ast.Cmd, error) {
	name, err := p.expect(token.VARIABLE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LCURLY); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.NEWLINE); err != nil {
		return nil, err
	}
	var fields []ast.StructField
	for {
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.RCURLY {
			break
		}
		fname, err := p.expect(token.VARIABLE)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		ty, err := p.parseTypeNode()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.StructField{Name: fname.Lexeme, Ty: ty})
		if _, err := p.expect(token.NEWLINE); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RCURLY); err != nil {
		return nil, err
	}
	return &ast.StructCmd{Off: start.Offset, Name: name.Lexeme, Fields: fields}, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case token.LET:
		lv, err := p.parseLValue()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.EQUALS); err != nil {
			return nil, err
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.LetStmt{Off: tok.Offset, LV: lv, Value: expr}, nil
	case token.ASSERT:
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COMMA); err != nil {
			return nil, err
		}
		str, err := p.expect(token.STRING)
		if err != nil {
			return nil, err
		}
		return &ast.AssertStmt{Off: tok.Offset, Cond: expr, Message: str.Lexeme}, nil
	case token.RETURN:
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Off: tok.Offset, Value: expr}, nil
	default:
		return nil, unexpected(tok)
	}
}

func (p *Parser) parseLValue() (ast.LValue, error) {
	name, err := p.expect(token.VARIABLE)
	if err != nil {
		return nil, err
	}
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind != token.LSQUARE {
		return &ast.VarLValue{Off: name.Offset, Ident: name.Lexeme}, nil
	}
	if _, err := p.next(); err != nil {
		return nil, err
	}
	var indices []string
	for {
		idx, err := p.expect(token.VARIABLE)
		if err != nil {
			return nil, err
		}
		indices = append(indices, idx.Lexeme)
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
	return &ast.ArrayLValue{Off: name.Offset, Ident: name.Lexeme, Indices: indices}, nil
}

// parseTypeNode parses a syntactic type: a base type (int, bool, float,
// void, or a struct name) optionally followed by `[` (`,`)* `]`, where the
// rank is the comma count plus one, e.g. `int[]` is rank 1, `int[,]` is
// rank 2.
func (p *Parser) parseTypeNode() (ast.TypeNode, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	var base ast.TypeNode
	switch tok.Kind {
	case token.INT:
		base = &ast.IntType{}
	case token.BOOL:
		base = &ast.BoolType{}
	case token.FLOAT:
		base = &ast.FloatType{}
	case token.VOID:
		base = &ast.VoidTypeNode{}
	case token.VARIABLE:
		base = &ast.StructTypeNode{Name: tok.Lexeme}
	default:
		return nil, unexpected(tok)
	}
	setOffset(base, tok.Offset)

	peeked, err := p.peek()
	if err != nil {
		return nil, err
	}
	if peeked.Kind != token.LSQUARE {
		return base, nil
	}
	if _, err := p.next(); err != nil {
		return nil, err
	}
	rank := 1
	for {
		t, err := p.peek()
		if err != nil {
			return nil, err
		}
		if t.Kind == token.RSQUARE {
			break
		}
		if _, err := p.expect(token.COMMA); err != nil {
			return nil, err
		}
		rank++
	}
	rb, err := p.expect(token.RSQUARE)
	if err != nil {
		return nil, err
	}
	arr := &ast.ArrayTypeNode{Elem: base, Rank: rank}
	setOffset(arr, tok.Offset)
	_ = rb
	return arr, nil
}

func setOffset(t ast.TypeNode, off int) {
	switch n := t.(type) {
	case *ast.IntType:
		n.Off = off
	case *ast.BoolType:
		n.Off = off
	case *ast.FloatType:
		n.Off = off
	case *ast.VoidTypeNode:
		n.Off = off
	case *ast.StructTypeNode:
		n.Off = off
	case *ast.ArrayTypeNode:
		n.Off = off
	}
}
