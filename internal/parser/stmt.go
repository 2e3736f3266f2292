package parser

import (
	"exalt/internal/ast"
	"exalt/internal/diag"
	"exalt/internal/lexer"
)

func (p *Parser) parseConcreteStmt() (ast.Stmt, *diag.Diagnostic) {
	k, err := p.peekKind()
	if err != nil {
		return nil, err
	}
	switch k {
	case lexer.LeftBrace:
		return p.parseBlock()
	case lexer.KwBreak:
		return p.parseBreak()
	case lexer.KwContinue:
		return p.parseContinue()
	case lexer.KwFor:
		return p.parseFor()
	case lexer.KwGoto:
		return p.parseGoto()
	case lexer.KwIf:
		return p.parseIf()
	case lexer.KwLabel:
		return p.parseLabel()
	case lexer.KwLet:
		return p.parseVarDecl()
	case lexer.KwMatch:
		return p.parseMatch()
	case lexer.KwPrintf:
		return p.parsePrintf()
	case lexer.KwReturn:
		return p.parseReturn()
	case lexer.KwWhile:
		return p.parseWhile()
	case lexer.KwYield:
		return p.parseYield()
	default:
		return p.parseTerminatedExprStmtOrAssignment()
	}
}

func (p *Parser) parseBlock() (ast.Stmt, *diag.Diagnostic) {
	if err := p.consume(lexer.LeftBrace); err != nil {
		return nil, err
	}
	loc := p.location()
	var stmts []ast.Stmt
	for {
		k, err := p.peekKind()
		if err != nil {
			return nil, err
		}
		if k == lexer.RightBrace {
			break
		}
		s, err := p.parseConcreteStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if err := p.consume(lexer.RightBrace); err != nil {
		return nil, err
	}
	return &ast.BlockStmt{Location: p.location().Merge(loc), Stmts: stmts}, nil
}

func (p *Parser) parseBreak() (ast.Stmt, *diag.Diagnostic) {
	if err := p.consume(lexer.KwBreak); err != nil {
		return nil, err
	}
	loc := p.location()
	if err := p.consume(lexer.Semicolon); err != nil {
		return nil, err
	}
	return &ast.BreakStmt{Location: loc}, nil
}

func (p *Parser) parseContinue() (ast.Stmt, *diag.Diagnostic) {
	if err := p.consume(lexer.KwContinue); err != nil {
		return nil, err
	}
	loc := p.location()
	if err := p.consume(lexer.Semicolon); err != nil {
		return nil, err
	}
	return &ast.ContinueStmt{Location: loc}, nil
}

func (p *Parser) parseYield() (ast.Stmt, *diag.Diagnostic) {
	if err := p.consume(lexer.KwYield); err != nil {
		return nil, err
	}
	loc := p.location()
	if err := p.consume(lexer.Semicolon); err != nil {
		return nil, err
	}
	return &ast.YieldStmt{Location: loc}, nil
}

func (p *Parser) parseGoto() (ast.Stmt, *diag.Diagnostic) {
	if err := p.consume(lexer.KwGoto); err != nil {
		return nil, err
	}
	startLoc := p.location()
	ident, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if err := p.consume(lexer.Semicolon); err != nil {
		return nil, err
	}
	return &ast.GotoStmt{Location: startLoc.Merge(ident.Location), Target: ident}, nil
}

func (p *Parser) parseLabel() (ast.Stmt, *diag.Diagnostic) {
	if err := p.consume(lexer.KwLabel); err != nil {
		return nil, err
	}
	startLoc := p.location()
	ident, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if err := p.consume(lexer.Semicolon); err != nil {
		return nil, err
	}
	return &ast.LabelStmt{Location: startLoc.Merge(ident.Location), Name: ident}, nil
}

func (p *Parser) parseVarDecl() (ast.Stmt, *diag.Diagnostic) {
	if err := p.consume(lexer.KwLet); err != nil {
		return nil, err
	}
	startLoc := p.location()
	ident, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if err := p.consume(lexer.Semicolon); err != nil {
		return nil, err
	}
	return &ast.VarDeclStmt{Location: p.location().Merge(startLoc), Name: ident}, nil
}

func (p *Parser) parseIf() (ast.Stmt, *diag.Diagnostic) {
	if err := p.consume(lexer.KwIf); err != nil {
		return nil, err
	}
	startLoc := p.location()
	if err := p.consume(lexer.LeftParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(ast.PrecLowest)
	if err != nil {
		return nil, err
	}
	if err := p.consume(lexer.RightParen); err != nil {
		return nil, err
	}
	thenPart, err := p.parseConcreteStmt()
	if err != nil {
		return nil, err
	}
	var elsePart ast.Stmt
	k, err := p.peekKind()
	if err != nil {
		return nil, err
	}
	if k == lexer.KwElse {
		if err := p.consume(lexer.KwElse); err != nil {
			return nil, err
		}
		elsePart, err = p.parseConcreteStmt()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStmt{Location: p.location().Merge(startLoc), Condition: cond, Then: thenPart, Else: elsePart}, nil
}

func (p *Parser) parseWhile() (ast.Stmt, *diag.Diagnostic) {
	if err := p.consume(lexer.KwWhile); err != nil {
		return nil, err
	}
	startLoc := p.location()
	if err := p.consume(lexer.LeftParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(ast.PrecLowest)
	if err != nil {
		return nil, err
	}
	if err := p.consume(lexer.RightParen); err != nil {
		return nil, err
	}
	body, err := p.parseConcreteStmt()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Location: p.location().Merge(startLoc), Condition: cond, Body: body}, nil
}

func (p *Parser) parseFor() (ast.Stmt, *diag.Diagnostic) {
	if err := p.consume(lexer.KwFor); err != nil {
		return nil, err
	}
	startLoc := p.location()
	if err := p.consume(lexer.LeftParen); err != nil {
		return nil, err
	}
	init, err := p.parseTerminatedExprStmtOrAssignment()
	if err != nil {
		return nil, err
	}
	if es, ok := init.(*ast.ExprStmt); ok {
		return nil, p.errAt(diag.KindExpectedAssignment, es.Location, "expected assignment")
	}
	check, err := p.parseExpression(ast.PrecLowest)
	if err != nil {
		return nil, err
	}
	if err := p.consume(lexer.Semicolon); err != nil {
		return nil, err
	}
	step, err := p.parseExprStmtOrAssignment()
	if err != nil {
		return nil, err
	}
	if err := p.consume(lexer.RightParen); err != nil {
		return nil, err
	}
	body, err := p.parseConcreteStmt()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{Location: p.location().Merge(startLoc), Init: init, Check: check, Step: step, Body: body}, nil
}

func (p *Parser) parseMatch() (ast.Stmt, *diag.Diagnostic) {
	if err := p.consume(lexer.KwMatch); err != nil {
		return nil, err
	}
	startLoc := p.location()
	if err := p.consume(lexer.LeftParen); err != nil {
		return nil, err
	}
	switchExpr, err := p.parseExpression(ast.PrecLowest)
	if err != nil {
		return nil, err
	}
	if err := p.consume(lexer.RightParen); err != nil {
		return nil, err
	}
	if err := p.consume(lexer.LeftBrace); err != nil {
		return nil, err
	}
	var cases []ast.Case
	var def ast.Stmt
	haveDefault := false
	var defaultLoc ast.Location
	for {
		k, err := p.peekKind()
		if err != nil {
			return nil, err
		}
		if k == lexer.RightBrace {
			break
		}
		if k == lexer.KwElse {
			if err := p.consume(lexer.KwElse); err != nil {
				return nil, err
			}
			loc := p.location()
			if err := p.consume(lexer.Arrow); err != nil {
				return nil, err
			}
			if haveDefault {
				d := diag.NewAt(diag.KindMultipleDefaultCases, "match can only have one default case", p.source, loc)
				d.Related = append(d.Related, diag.Locate(p.source, defaultLoc))
				return nil, d
			}
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			def = body
			haveDefault = true
			defaultLoc = loc
			continue
		}
		c, err := p.parseMatchCase()
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	if err := p.consume(lexer.RightBrace); err != nil {
		return nil, err
	}
	return &ast.MatchStmt{Location: p.location().Merge(startLoc), Switch: switchExpr, Cases: cases, Default: def}, nil
}

func (p *Parser) parseMatchCase() (ast.Case, *diag.Diagnostic) {
	conditions, err := p.parseCommaSeparatedExpressions(lexer.Arrow)
	if err != nil {
		return ast.Case{}, err
	}
	if err := p.consume(lexer.Arrow); err != nil {
		return ast.Case{}, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return ast.Case{}, err
	}
	return ast.Case{Conditions: conditions, Body: body}, nil
}

func (p *Parser) parsePrintf() (ast.Stmt, *diag.Diagnostic) {
	if err := p.consume(lexer.KwPrintf); err != nil {
		return nil, err
	}
	startLoc := p.location()
	if err := p.consume(lexer.LeftParen); err != nil {
		return nil, err
	}
	args, err := p.parseCommaSeparatedExpressions(lexer.RightParen)
	if err != nil {
		return nil, err
	}
	if err := p.consume(lexer.RightParen); err != nil {
		return nil, err
	}
	if err := p.consume(lexer.Semicolon); err != nil {
		return nil, err
	}
	return &ast.PrintfStmt{Location: p.location().Merge(startLoc), Args: args}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, *diag.Diagnostic) {
	if err := p.consume(lexer.KwReturn); err != nil {
		return nil, err
	}
	startLoc := p.location()
	k, err := p.peekKind()
	if err != nil {
		return nil, err
	}
	if k == lexer.Semicolon {
		if err := p.consume(lexer.Semicolon); err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Location: startLoc}, nil
	}
	value, err := p.parseExpression(ast.PrecLowest)
	if err != nil {
		return nil, err
	}
	if err := p.consume(lexer.Semicolon); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Location: startLoc.Merge(value.ExprLocation()), Value: value}, nil
}

// ---- expression-statements, assignment, array initializers ----

func (p *Parser) parseTerminatedExprStmtOrAssignment() (ast.Stmt, *diag.Diagnostic) {
	s, err := p.parseExprStmtOrAssignment()
	if err != nil {
		return nil, err
	}
	if err := p.consume(lexer.Semicolon); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Parser) parseExprStmtOrAssignment() (ast.Stmt, *diag.Diagnostic) {
	expr, err := p.parseExpression(ast.PrecLowest)
	if err != nil {
		return nil, err
	}
	k, err := p.peekKind()
	if err != nil {
		return nil, err
	}
	switch k {
	case lexer.Assign:
		return p.parseAssignment(expr, lexer.Assign, ast.OpAssign)
	case lexer.AssignAdd:
		return p.parseAssignment(expr, lexer.AssignAdd, ast.OpAssignAdd)
	case lexer.AssignSubtract:
		return p.parseAssignment(expr, lexer.AssignSubtract, ast.OpAssignSubtract)
	case lexer.AssignMultiply:
		return p.parseAssignment(expr, lexer.AssignMultiply, ast.OpAssignMultiply)
	case lexer.AssignDivide:
		return p.parseAssignment(expr, lexer.AssignDivide, ast.OpAssignDivide)
	case lexer.AssignModulo:
		return p.parseAssignment(expr, lexer.AssignModulo, ast.OpAssignModulo)
	case lexer.AssignBinaryOr:
		return p.parseAssignment(expr, lexer.AssignBinaryOr, ast.OpAssignBitwiseOr)
	case lexer.AssignBinaryAnd:
		return p.parseAssignment(expr, lexer.AssignBinaryAnd, ast.OpAssignBitwiseAnd)
	case lexer.AssignXor:
		return p.parseAssignment(expr, lexer.AssignXor, ast.OpAssignXor)
	case lexer.AssignRightShift:
		return p.parseAssignment(expr, lexer.AssignRightShift, ast.OpAssignRightShift)
	case lexer.AssignLeftShift:
		return p.parseAssignment(expr, lexer.AssignLeftShift, ast.OpAssignLeftShift)
	default:
		return &ast.ExprStmt{Location: expr.ExprLocation(), Expr: expr}, nil
	}
}

func (p *Parser) parseAssignment(left ast.Expr, expected lexer.Kind, op ast.Operator) (ast.Stmt, *diag.Diagnostic) {
	re, ok := left.(*ast.RefExpr)
	if !ok {
		return nil, p.errAt(diag.KindExpectedReference, left.ExprLocation(), "expected reference")
	}
	if err := p.consume(expected); err != nil {
		return nil, err
	}
	k, err := p.peekKind()
	if err != nil {
		return nil, err
	}
	var right ast.Expr
	switch k {
	case lexer.LeftBracket:
		right, err = p.parseStaticArrayInit()
	case lexer.KwArray:
		right, err = p.parseEmptyArrayInit()
	default:
		right, err = p.parseExpression(ast.PrecLowest)
	}
	if err != nil {
		return nil, err
	}
	return &ast.AssignmentStmt{Location: re.Location.Merge(right.ExprLocation()), Left: re.Ref, Op: op, Right: right}, nil
}

func (p *Parser) parseEmptyArrayInit() (ast.Expr, *diag.Diagnostic) {
	if err := p.consume(lexer.KwArray); err != nil {
		return nil, err
	}
	loc := p.location()
	if err := p.consume(lexer.LeftBracket); err != nil {
		return nil, err
	}
	count, err := p.parseExpression(ast.PrecLowest)
	if err != nil {
		return nil, err
	}
	if err := p.consume(lexer.RightBracket); err != nil {
		return nil, err
	}
	return &ast.ArrayExpr{Location: p.location().Merge(loc), Elements: []ast.Expr{count}, IsCount: true}, nil
}

func (p *Parser) parseStaticArrayInit() (ast.Expr, *diag.Diagnostic) {
	if err := p.consume(lexer.LeftBracket); err != nil {
		return nil, err
	}
	loc := p.location()
	values, err := p.parseCommaSeparatedExpressions(lexer.RightBracket)
	if err != nil {
		return nil, err
	}
	if err := p.consume(lexer.RightBracket); err != nil {
		return nil, err
	}
	return &ast.ArrayExpr{Location: p.location().Merge(loc), Elements: values}, nil
}
