// Package parser implements a recursive-descent, Pratt-style parser
// over internal/lexer's token stream, producing an internal/ast.Script.
// Structurally this replaces the teacher's internal/parser (a small
// hand-rolled descent parser keyed off a string-typed lexer.TokenType)
// with the same recursive-descent shape generalized to Exalt's larger
// grammar: prefix/infix dispatch tables keyed by token kind, a single
// Precedence-driven expression loop, and accumulate-and-continue error
// recovery into a diag.CompilerLog instead of the teacher's bare
// []error slice.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"exalt/internal/ast"
	"exalt/internal/diag"
	"exalt/internal/lexer"
)

// Parser holds the full pre-scanned token stream for one file plus a
// cursor into it; nothing here is streaming, matching the teacher's
// own Parser{tokens []Token, current int} shape.
type Parser struct {
	file   string
	source string
	toks   []lexer.Token
	pos    int
	log    *diag.CompilerLog
}

// New builds a parser over source, reporting into log.
func New(file, source string, log *diag.CompilerLog) *Parser {
	return &Parser{file: file, source: source, toks: lexer.Scan(source), log: log}
}

// Parse parses a complete script, accumulating one diagnostic and
// resynchronizing at the next top-level keyword for each declaration
// that fails, so a single error never stops the whole file.
func Parse(file, source string, log *diag.CompilerLog) *ast.Script {
	return New(file, source, log).Parse()
}

func (p *Parser) Parse() *ast.Script {
	var decls []ast.Decl
	for !p.atEnd() {
		d, err := p.parseDecl()
		if err != nil {
			p.log.Add(err)
			p.skipToNextDecl()
			continue
		}
		decls = append(decls, d)
	}
	return &ast.Script{Decls: decls}
}

func (p *Parser) skipToNextDecl() {
	for !p.atEnd() {
		switch p.toks[p.pos].Kind {
		case lexer.KwCallback, lexer.KwDef, lexer.KwEnum, lexer.KwConst:
			return
		default:
			p.pos++
		}
	}
}

func (p *Parser) atEnd() bool { return p.pos >= len(p.toks) }

// peekKind looks at the next token's kind without consuming it.
func (p *Parser) peekKind() (lexer.Kind, *diag.Diagnostic) {
	if p.atEnd() {
		return lexer.EOF, p.errEOF()
	}
	t := p.toks[p.pos]
	if t.Kind == lexer.Invalid {
		return lexer.Invalid, p.errAt(diag.KindInvalidToken, p.tokLoc(t), "invalid token")
	}
	return t.Kind, nil
}

func (p *Parser) peekLoc() ast.Location {
	if p.atEnd() {
		return ast.Location{File: p.file}
	}
	return p.tokLoc(p.toks[p.pos])
}

func (p *Parser) next() (lexer.Token, *diag.Diagnostic) {
	if p.atEnd() {
		return lexer.Token{}, p.errEOF()
	}
	t := p.toks[p.pos]
	p.pos++
	if t.Kind == lexer.Invalid {
		return lexer.Token{}, p.errAt(diag.KindInvalidToken, p.tokLoc(t), "invalid token")
	}
	return t, nil
}

// consume advances past one token, erroring if it isn't of the
// expected kind.
func (p *Parser) consume(expected lexer.Kind) *diag.Diagnostic {
	t, err := p.next()
	if err != nil {
		return err
	}
	if t.Kind != expected {
		return p.errAt(diag.KindUnexpectedToken, p.tokLoc(t), "expected token '%s' found '%s'", expected, t.Kind)
	}
	return nil
}

func (p *Parser) tokLoc(t lexer.Token) ast.Location {
	return ast.Location{File: p.file, Start: t.Start, End: t.End}
}

// location returns the span of the most recently consumed token.
func (p *Parser) location() ast.Location {
	if p.pos == 0 {
		return ast.Location{File: p.file}
	}
	return p.tokLoc(p.toks[p.pos-1])
}

func (p *Parser) errAt(kind diag.Kind, loc ast.Location, format string, args ...any) *diag.Diagnostic {
	return diag.NewAt(kind, fmt.Sprintf(format, args...), p.source, loc)
}

func (p *Parser) errEOF() *diag.Diagnostic {
	return &diag.Diagnostic{Severity: diag.SeverityError, Kind: diag.KindUnexpectedEOF, Message: "unexpected end of file"}
}

func (p *Parser) parseIdentifier() (ast.Identifier, *diag.Diagnostic) {
	if err := p.consume(lexer.Identifier); err != nil {
		return ast.Identifier{}, err
	}
	t := p.toks[p.pos-1]
	return ast.Identifier{Location: p.tokLoc(t), Value: t.Text}, nil
}

// parseDecl dispatches on the leading keyword of a top-level
// declaration.
func (p *Parser) parseDecl() (ast.Decl, *diag.Diagnostic) {
	k, err := p.peekKind()
	if err != nil {
		return nil, err
	}
	switch k {
	case lexer.KwConst:
		return p.parseConst()
	case lexer.KwEnum:
		return p.parseEnum()
	case lexer.KwLet:
		return p.parseGlobal()
	case lexer.AtSign, lexer.KwDef, lexer.KwCallback:
		annotations, err := p.parseAnnotations()
		if err != nil {
			return nil, err
		}
		k2, err := p.peekKind()
		if err != nil {
			return nil, err
		}
		switch k2 {
		case lexer.KwDef:
			return p.parseFunction(annotations)
		case lexer.KwCallback:
			return p.parseCallback(annotations)
		default:
			return nil, p.errAt(diag.KindExpectedDeclaration, p.peekLoc(), "expected declaration")
		}
	default:
		return nil, p.errAt(diag.KindExpectedDeclaration, p.peekLoc(), "expected declaration")
	}
}

func (p *Parser) parseAnnotations() ([]ast.Annotation, *diag.Diagnostic) {
	var anns []ast.Annotation
	for {
		k, err := p.peekKind()
		if err != nil {
			return nil, err
		}
		if k != lexer.AtSign {
			break
		}
		a, err := p.parseAnnotation()
		if err != nil {
			return nil, err
		}
		anns = append(anns, a)
	}
	return anns, nil
}

func (p *Parser) parseAnnotation() (ast.Annotation, *diag.Diagnostic) {
	if err := p.consume(lexer.AtSign); err != nil {
		return ast.Annotation{}, err
	}
	loc := p.location()
	ident, err := p.parseIdentifier()
	if err != nil {
		return ast.Annotation{}, err
	}
	var args []ast.Expr
	k, err := p.peekKind()
	if err != nil {
		return ast.Annotation{}, err
	}
	if k == lexer.LeftParen {
		if err := p.consume(lexer.LeftParen); err != nil {
			return ast.Annotation{}, err
		}
		k2, err := p.peekKind()
		if err != nil {
			return ast.Annotation{}, err
		}
		if k2 != lexer.RightParen {
			args, err = p.parseCommaSeparatedExpressions(lexer.RightParen)
			if err != nil {
				return ast.Annotation{}, err
			}
		}
		if err := p.consume(lexer.RightParen); err != nil {
			return ast.Annotation{}, err
		}
	}
	return ast.Annotation{Location: p.location().Merge(loc), Name: ident, Args: args}, nil
}

func (p *Parser) parseConst() (ast.Decl, *diag.Diagnostic) {
	if err := p.consume(lexer.KwConst); err != nil {
		return nil, err
	}
	loc := p.location()
	ident, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if err := p.consume(lexer.Assign); err != nil {
		return nil, err
	}
	value, err := p.parseExpression(ast.PrecLowest)
	if err != nil {
		return nil, err
	}
	if err := p.consume(lexer.Semicolon); err != nil {
		return nil, err
	}
	return &ast.ConstDecl{Location: p.location().Merge(loc), Name: ident, Value: value}, nil
}

func (p *Parser) parseEnum() (ast.Decl, *diag.Diagnostic) {
	if err := p.consume(lexer.KwEnum); err != nil {
		return nil, err
	}
	loc := p.location()
	ident, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if err := p.consume(lexer.LeftBrace); err != nil {
		return nil, err
	}
	var variants []ast.EnumVariant
	k, err := p.peekKind()
	if err != nil {
		return nil, err
	}
	if k != lexer.RightBrace {
		v, err := p.parseEnumVariant()
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
		for {
			k2, err := p.peekKind()
			if err != nil {
				return nil, err
			}
			if k2 != lexer.Comma {
				break
			}
			if err := p.consume(lexer.Comma); err != nil {
				return nil, err
			}
			k3, err := p.peekKind()
			if err != nil {
				return nil, err
			}
			if k3 != lexer.RightBrace {
				v2, err := p.parseEnumVariant()
				if err != nil {
					return nil, err
				}
				variants = append(variants, v2)
			}
		}
	}
	if err := p.consume(lexer.RightBrace); err != nil {
		return nil, err
	}
	return &ast.EnumDecl{Location: p.location().Merge(loc), Name: ident, Variants: variants}, nil
}

func (p *Parser) parseEnumVariant() (ast.EnumVariant, *diag.Diagnostic) {
	ident, err := p.parseIdentifier()
	if err != nil {
		return ast.EnumVariant{}, err
	}
	loc := p.location()
	if err := p.consume(lexer.Assign); err != nil {
		return ast.EnumVariant{}, err
	}
	value, err := p.parseExpression(ast.PrecLowest)
	if err != nil {
		return ast.EnumVariant{}, err
	}
	return ast.EnumVariant{Location: p.location().Merge(loc), Name: ident, Value: value}, nil
}

func (p *Parser) parseFunction(annotations []ast.Annotation) (ast.Decl, *diag.Diagnostic) {
	if err := p.consume(lexer.KwDef); err != nil {
		return nil, err
	}
	loc := p.location()
	ident, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	params, err := p.parseFunctionParameters()
	if err != nil {
		return nil, err
	}
	sigLoc := p.location().Merge(loc)
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDecl{Location: sigLoc, Annotations: annotations, Name: ident, Parameters: params, Body: body}, nil
}

func (p *Parser) parseFunctionParameters() ([]ast.Identifier, *diag.Diagnostic) {
	if err := p.consume(lexer.LeftParen); err != nil {
		return nil, err
	}
	var params []ast.Identifier
	k, err := p.peekKind()
	if err != nil {
		return nil, err
	}
	if k != lexer.RightParen {
		params, err = p.parseIdentifiers(lexer.RightParen)
		if err != nil {
			return nil, err
		}
	}
	if err := p.consume(lexer.RightParen); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseIdentifiers(terminator lexer.Kind) ([]ast.Identifier, *diag.Diagnostic) {
	first, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	idents := []ast.Identifier{first}
	for {
		k, err := p.peekKind()
		if err != nil {
			return nil, err
		}
		if k != lexer.Comma {
			break
		}
		if err := p.consume(lexer.Comma); err != nil {
			return nil, err
		}
		k2, err := p.peekKind()
		if err != nil {
			return nil, err
		}
		if k2 != terminator {
			id, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}
			idents = append(idents, id)
		}
	}
	return idents, nil
}

func (p *Parser) parseCallback(annotations []ast.Annotation) (ast.Decl, *diag.Diagnostic) {
	if err := p.consume(lexer.KwCallback); err != nil {
		return nil, err
	}
	loc := p.location()
	if err := p.consume(lexer.LeftBracket); err != nil {
		return nil, err
	}
	eventType, err := p.parseExpression(ast.PrecLowest)
	if err != nil {
		return nil, err
	}
	if err := p.consume(lexer.RightBracket); err != nil {
		return nil, err
	}
	if err := p.consume(lexer.LeftParen); err != nil {
		return nil, err
	}
	var args []ast.Expr
	k, err := p.peekKind()
	if err != nil {
		return nil, err
	}
	if k != lexer.RightParen {
		args, err = p.parseCommaSeparatedExpressions(lexer.RightParen)
		if err != nil {
			return nil, err
		}
	}
	if err := p.consume(lexer.RightParen); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.CallbackDecl{Location: p.location().Merge(loc), Annotations: annotations, EventType: eventType, Args: args, Body: body}, nil
}

func (p *Parser) parseGlobal() (ast.Decl, *diag.Diagnostic) {
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
	return &ast.GlobalDecl{Location: p.location().Merge(startLoc), Name: ident}, nil
}

// ---- expressions ----

func tokenPrecedence(k lexer.Kind) ast.Precedence {
	switch k {
	case lexer.Plus, lexer.FloatPlus, lexer.Minus, lexer.FloatMinus:
		return ast.PrecTerm
	case lexer.Times, lexer.FloatTimes, lexer.Divide, lexer.FloatDivide, lexer.Modulo:
		return ast.PrecFactor
	case lexer.Equal, lexer.FloatEqual, lexer.NotEqual, lexer.FloatNotEqual:
		return ast.PrecEquality
	case lexer.LessThan, lexer.FloatLessThan, lexer.LessThanOrEqualTo, lexer.FloatLessThanOrEqualTo,
		lexer.GreaterThan, lexer.FloatGreaterThan, lexer.GreaterThanOrEqualTo, lexer.FloatGreaterThanOrEqualTo:
		return ast.PrecComparison
	case lexer.RightShift, lexer.LeftShift:
		return ast.PrecShift
	case lexer.Ampersand, lexer.BinaryOr, lexer.Xor:
		return ast.PrecBitwise
	case lexer.LogicalAnd:
		return ast.PrecLogicalAnd
	case lexer.LogicalOr:
		return ast.PrecLogicalOr
	case lexer.Increment, lexer.Decrement, lexer.LogicalNot, lexer.BinaryNot:
		return ast.PrecUnary
	default:
		return ast.PrecLowest
	}
}

func (p *Parser) parseExpression(precedence ast.Precedence) (ast.Expr, *diag.Diagnostic) {
	expr, err := p.parsePrefixExpression()
	if err != nil {
		return nil, err
	}
	for {
		k, err := p.peekKind()
		if err != nil {
			return nil, err
		}
		if !(precedence < tokenPrecedence(k)) {
			break
		}
		expr, err = p.parseInfixExpression(expr)
		if err != nil {
			return nil, err
		}
	}
	return expr, nil
}

func (p *Parser) parsePrefixExpression() (ast.Expr, *diag.Diagnostic) {
	k, err := p.peekKind()
	if err != nil {
		return nil, err
	}
	switch k {
	case lexer.Times:
		return p.parseDereference()
	case lexer.Ampersand:
		return p.parseAddressOf()
	case lexer.LogicalNot:
		return p.parseUnaryExpr(lexer.LogicalNot, ast.OpLogicalNot)
	case lexer.BinaryNot:
		return p.parseUnaryExpr(lexer.BinaryNot, ast.OpBitwiseNot)
	case lexer.Minus:
		return p.parseUnaryExpr(lexer.Minus, ast.OpNegate)
	case lexer.FloatMinus:
		return p.parseUnaryExpr(lexer.FloatMinus, ast.OpFloatNegate)
	case lexer.Increment:
		return p.parsePrefixIncrement(lexer.Increment, ast.OpIncrement)
	case lexer.Decrement:
		return p.parsePrefixIncrement(lexer.Decrement, ast.OpDecrement)
	case lexer.Identifier:
		return p.parseIdentifierExpr()
	case lexer.LeftParen:
		return p.parseGrouped()
	case lexer.Int:
		return p.parseInt()
	case lexer.Float:
		return p.parseFloat()
	case lexer.Str:
		return p.parseString()
	default:
		return nil, p.errAt(diag.KindExpectedExpression, p.peekLoc(), "expected expression")
	}
}

func (p *Parser) parseDereference() (ast.Expr, *diag.Diagnostic) {
	if err := p.consume(lexer.Times); err != nil {
		return nil, err
	}
	loc := p.location()
	inner, err := p.parseExpression(ast.PrecUnary)
	if err != nil {
		return nil, err
	}
	re, ok := inner.(*ast.RefExpr)
	if !ok {
		return nil, p.errAt(diag.KindExpectedReference, inner.ExprLocation(), "expected reference")
	}
	merged := p.location().Merge(loc)
	switch r := re.Ref.(type) {
	case *ast.VarRef:
		return &ast.RefExpr{Location: merged, Ref: &ast.DereferenceRef{Ident: r.Ident}}, nil
	case *ast.IndexRef:
		return &ast.RefExpr{Location: merged, Ref: &ast.DereferenceRef{Ident: r.Ident, Offset: r.Index}}, nil
	case *ast.DereferenceRef:
		return nil, p.errAt(diag.KindDoubleDereference, merged, "Exalt does not support double dereferences")
	default:
		return nil, p.errAt(diag.KindExpectedReference, merged, "expected reference")
	}
}

func (p *Parser) parseAddressOf() (ast.Expr, *diag.Diagnostic) {
	if err := p.consume(lexer.Ampersand); err != nil {
		return nil, err
	}
	loc := p.location()
	inner, err := p.parseExpression(ast.PrecUnary)
	if err != nil {
		return nil, err
	}
	re, ok := inner.(*ast.RefExpr)
	if !ok {
		return nil, p.errAt(diag.KindExpectedReference, p.location(), "expected reference")
	}
	return &ast.AddressOfExpr{Location: p.location().Merge(loc), Ref: re.Ref}, nil
}

func (p *Parser) parsePrefixIncrement(expected lexer.Kind, op ast.Operator) (ast.Expr, *diag.Diagnostic) {
	if err := p.consume(expected); err != nil {
		return nil, err
	}
	startLoc := p.location()
	operand, err := p.parseExpression(ast.PrecUnary)
	if err != nil {
		return nil, err
	}
	re, ok := operand.(*ast.RefExpr)
	if !ok {
		return nil, p.errAt(diag.KindExpectedReference, operand.ExprLocation(), "expected reference")
	}
	return &ast.IncrementExpr{Location: startLoc.Merge(re.Location), Ref: re.Ref, Op: op, Notation: ast.Prefix}, nil
}

func (p *Parser) parseIdentifierExpr() (ast.Expr, *diag.Diagnostic) {
	ident, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	k, err := p.peekKind()
	if err != nil {
		return nil, err
	}
	switch k {
	case lexer.LeftParen:
		if err := p.consume(lexer.LeftParen); err != nil {
			return nil, err
		}
		var args []ast.Expr
		k2, err := p.peekKind()
		if err != nil {
			return nil, err
		}
		if k2 != lexer.RightParen {
			args, err = p.parseCommaSeparatedExpressions(lexer.RightParen)
			if err != nil {
				return nil, err
			}
		}
		if err := p.consume(lexer.RightParen); err != nil {
			return nil, err
		}
		return &ast.FunctionCallExpr{Location: p.location().Merge(ident.Location), Callee: ident, Args: args}, nil
	case lexer.LeftBracket:
		if err := p.consume(lexer.LeftBracket); err != nil {
			return nil, err
		}
		index, err := p.parseExpression(ast.PrecLowest)
		if err != nil {
			return nil, err
		}
		if err := p.consume(lexer.RightBracket); err != nil {
			return nil, err
		}
		return &ast.RefExpr{Location: p.location().Merge(ident.Location), Ref: &ast.IndexRef{Ident: ident, Index: index}}, nil
	case lexer.Dot:
		if err := p.consume(lexer.Dot); err != nil {
			return nil, err
		}
		variant, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		return &ast.EnumAccessExpr{Location: p.location().Merge(ident.Location), Enum: ident, Variant: variant}, nil
	default:
		return &ast.RefExpr{Location: ident.Location, Ref: &ast.VarRef{Ident: ident}}, nil
	}
}

func (p *Parser) parseCommaSeparatedExpressions(terminator lexer.Kind) ([]ast.Expr, *diag.Diagnostic) {
	first, err := p.parseExpression(ast.PrecLowest)
	if err != nil {
		return nil, err
	}
	exprs := []ast.Expr{first}
	for {
		k, err := p.peekKind()
		if err != nil {
			return nil, err
		}
		if k != lexer.Comma {
			break
		}
		if err := p.consume(lexer.Comma); err != nil {
			return nil, err
		}
		k2, err := p.peekKind()
		if err != nil {
			return nil, err
		}
		if k2 != terminator {
			e, err := p.parseExpression(ast.PrecLowest)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
		}
	}
	return exprs, nil
}

func (p *Parser) parseGrouped() (ast.Expr, *diag.Diagnostic) {
	if err := p.consume(lexer.LeftParen); err != nil {
		return nil, err
	}
	startLoc := p.location()
	expr, err := p.parseExpression(ast.PrecLowest)
	if err != nil {
		return nil, err
	}
	if err := p.consume(lexer.RightParen); err != nil {
		return nil, err
	}
	return &ast.GroupedExpr{Location: p.location().Merge(startLoc), Inner: expr}, nil
}

func (p *Parser) parseUnaryExpr(expected lexer.Kind, op ast.Operator) (ast.Expr, *diag.Diagnostic) {
	loc := p.peekLoc()
	if err := p.consume(expected); err != nil {
		return nil, err
	}
	operand, err := p.parseExpression(ast.PrecUnary)
	if err != nil {
		return nil, err
	}
	return &ast.UnaryExpr{Location: loc.Merge(operand.ExprLocation()), Operand: operand, Op: op}, nil
}

func (p *Parser) parseFloat() (ast.Expr, *diag.Diagnostic) {
	if err := p.consume(lexer.Float); err != nil {
		return nil, err
	}
	text := p.toks[p.pos-1].Text
	v, perr := strconv.ParseFloat(text, 32)
	if perr != nil {
		return nil, p.errAt(diag.KindInvalidFloatLiteral, p.location(), "float value must fit in 32 bits")
	}
	return &ast.LiteralExpr{Location: p.location(), Value: ast.Literal{Kind: ast.LiteralFloat, Float: float32(v)}}, nil
}

func (p *Parser) parseString() (ast.Expr, *diag.Diagnostic) {
	if err := p.consume(lexer.Str); err != nil {
		return nil, err
	}
	text := p.toks[p.pos-1].Text
	return &ast.LiteralExpr{Location: p.location(), Value: ast.Literal{Kind: ast.LiteralStr, Str: text[1 : len(text)-1]}}, nil
}

func (p *Parser) parseInt() (ast.Expr, *diag.Diagnostic) {
	if err := p.consume(lexer.Int); err != nil {
		return nil, err
	}
	text := p.toks[p.pos-1].Text
	var v int64
	var perr error
	switch {
	case strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X"):
		v, perr = strconv.ParseInt(text[2:], 16, 64)
	case strings.HasPrefix(text, "0o") || strings.HasPrefix(text, "0O"):
		v, perr = strconv.ParseInt(text[2:], 8, 64)
	case strings.HasPrefix(text, "0b") || strings.HasPrefix(text, "0B"):
		v, perr = strconv.ParseInt(text[2:], 2, 64)
	default:
		v, perr = strconv.ParseInt(text, 10, 64)
	}
	if perr != nil || v < -(1<<31) || v > (1<<31)-1 {
		return nil, p.errAt(diag.KindInvalidIntLiteral, p.location(), "int value must fit in 32 bits")
	}
	return &ast.LiteralExpr{Location: p.location(), Value: ast.Literal{Kind: ast.LiteralInt, Int: int32(v)}}, nil
}

func (p *Parser) parseInfixExpression(left ast.Expr) (ast.Expr, *diag.Diagnostic) {
	k, err := p.peekKind()
	if err != nil {
		return nil, err
	}
	switch k {
	case lexer.Plus:
		return p.parseBinaryExpr(left, lexer.Plus, ast.OpAdd)
	case lexer.FloatPlus:
		return p.parseBinaryExpr(left, lexer.FloatPlus, ast.OpFloatAdd)
	case lexer.Minus:
		return p.parseBinaryExpr(left, lexer.Minus, ast.OpSubtract)
	case lexer.FloatMinus:
		return p.parseBinaryExpr(left, lexer.FloatMinus, ast.OpFloatSubtract)
	case lexer.Times:
		return p.parseBinaryExpr(left, lexer.Times, ast.OpMultiply)
	case lexer.FloatTimes:
		return p.parseBinaryExpr(left, lexer.FloatTimes, ast.OpFloatMultiply)
	case lexer.Divide:
		return p.parseBinaryExpr(left, lexer.Divide, ast.OpDivide)
	case lexer.FloatDivide:
		return p.parseBinaryExpr(left, lexer.FloatDivide, ast.OpFloatDivide)
	case lexer.Modulo:
		return p.parseBinaryExpr(left, lexer.Modulo, ast.OpModulo)
	case lexer.Equal:
		return p.parseBinaryExpr(left, lexer.Equal, ast.OpEqual)
	case lexer.FloatEqual:
		return p.parseBinaryExpr(left, lexer.FloatEqual, ast.OpFloatEqual)
	case lexer.NotEqual:
		return p.parseBinaryExpr(left, lexer.NotEqual, ast.OpNotEqual)
	case lexer.FloatNotEqual:
		return p.parseBinaryExpr(left, lexer.FloatNotEqual, ast.OpFloatNotEqual)
	case lexer.LessThan:
		return p.parseBinaryExpr(left, lexer.LessThan, ast.OpLessThan)
	case lexer.FloatLessThan:
		return p.parseBinaryExpr(left, lexer.FloatLessThan, ast.OpFloatLessThan)
	case lexer.LessThanOrEqualTo:
		return p.parseBinaryExpr(left, lexer.LessThanOrEqualTo, ast.OpLessThanEqualTo)
	case lexer.FloatLessThanOrEqualTo:
		return p.parseBinaryExpr(left, lexer.FloatLessThanOrEqualTo, ast.OpFloatLessThanEqualTo)
	case lexer.GreaterThan:
		return p.parseBinaryExpr(left, lexer.GreaterThan, ast.OpGreaterThan)
	case lexer.FloatGreaterThan:
		return p.parseBinaryExpr(left, lexer.FloatGreaterThan, ast.OpFloatGreaterThan)
	case lexer.GreaterThanOrEqualTo:
		return p.parseBinaryExpr(left, lexer.GreaterThanOrEqualTo, ast.OpGreaterThanEqualTo)
	case lexer.FloatGreaterThanOrEqualTo:
		return p.parseBinaryExpr(left, lexer.FloatGreaterThanOrEqualTo, ast.OpFloatGreaterThanEqualTo)
	case lexer.RightShift:
		return p.parseBinaryExpr(left, lexer.RightShift, ast.OpRightShift)
	case lexer.LeftShift:
		return p.parseBinaryExpr(left, lexer.LeftShift, ast.OpLeftShift)
	case lexer.Ampersand:
		return p.parseBinaryExpr(left, lexer.Ampersand, ast.OpBitwiseAnd)
	case lexer.BinaryOr:
		return p.parseBinaryExpr(left, lexer.BinaryOr, ast.OpBitwiseOr)
	case lexer.Xor:
		return p.parseBinaryExpr(left, lexer.Xor, ast.OpXor)
	case lexer.LogicalAnd:
		return p.parseBinaryExpr(left, lexer.LogicalAnd, ast.OpLogicalAnd)
	case lexer.LogicalOr:
		return p.parseBinaryExpr(left, lexer.LogicalOr, ast.OpLogicalOr)
	case lexer.BinaryNot:
		return p.parseBinaryExpr(left, lexer.BinaryNot, ast.OpBitwiseNot)
	case lexer.LogicalNot:
		return p.parseBinaryExpr(left, lexer.LogicalNot, ast.OpLogicalNot)
	case lexer.Increment:
		return p.parsePostfixIncrement(left, lexer.Increment, ast.OpIncrement)
	case lexer.Decrement:
		return p.parsePostfixIncrement(left, lexer.Decrement, ast.OpDecrement)
	default:
		return nil, p.errAt(diag.KindExpectedExpression, p.peekLoc(), "expected expression")
	}
}

func (p *Parser) parsePostfixIncrement(left ast.Expr, expected lexer.Kind, op ast.Operator) (ast.Expr, *diag.Diagnostic) {
	re, ok := left.(*ast.RefExpr)
	if !ok {
		return nil, p.errAt(diag.KindExpectedReference, left.ExprLocation(), "expected reference")
	}
	if err := p.consume(expected); err != nil {
		return nil, err
	}
	return &ast.IncrementExpr{Location: p.location().Merge(re.Location), Ref: re.Ref, Op: op, Notation: ast.Postfix}, nil
}

func (p *Parser) parseBinaryExpr(left ast.Expr, expected lexer.Kind, op ast.Operator) (ast.Expr, *diag.Diagnostic) {
	if err := p.consume(expected); err != nil {
		return nil, err
	}
	right, err := p.parseExpression(op.Precedence())
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpr{Location: left.ExprLocation().Merge(right.ExprLocation()), Left: left, Op: op, Right: right}, nil
}
