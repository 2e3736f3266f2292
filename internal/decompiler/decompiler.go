// Package decompiler walks a container.Script's per-function opcode
// streams back into an ir.Script: one opcode at a time, pushing
// recovered expressions onto a stack and lining up recovered
// statements into the current block, exactly mirroring how the
// forward compiler's stack-machine target was meant to be read back.
// Loop and match-break recovery is deferred entirely to
// internal/decompiler/refine; this package only ever produces the
// literal label/goto shape the opcodes encode.
package decompiler

import (
	"fmt"

	"exalt/internal/ast"
	"exalt/internal/container"
	"exalt/internal/decompiler/ir"
	"exalt/internal/decompiler/refine"
	"exalt/internal/opcode"
)

// assignState tracks whether the next Assign/CompleteAssign opcode
// closes a plain `a = b` (Normal) or is resuming a compound assignment
// whose left side was already pushed and dereferenced for read
// (Shorthand, entered by a Dereference opcode).
type assignState int

const (
	assignNormal assignState = iota
	assignShorthand
)

type funcInfo struct {
	Name  string
	Arity int
}

// state is one function's decompilation cursor: its opcode stream,
// position, the whole script's function table (for CallById name
// resolution) and the stacks decompileOpcode reads and writes.
type state struct {
	game      opcode.Game
	code      []opcode.Opcode
	pos       int
	functions map[int]funcInfo

	exprs  exprStack
	blocks blockStack
	assign assignState
}

func (s *state) peek() (opcode.Opcode, bool) {
	if s.pos >= len(s.code) {
		return opcode.Opcode{}, false
	}
	return s.code[s.pos], true
}

func (s *state) advance() (opcode.Opcode, bool) {
	op, ok := s.peek()
	if ok {
		s.pos++
	}
	return op, ok
}

// Decompile recovers every function's source from script, in debug
// mode declaring every frame slot the tracker notices (including
// untouched scalars) rather than only the arrays a release build's
// reader actually needs spelled out.
func Decompile(script *container.Script, game opcode.Game, debug bool) (*ir.Script, error) {
	functions := map[int]funcInfo{}
	for i, fn := range script.Functions {
		if fn.FunctionType == 0 && fn.Name != nil {
			functions[i] = funcInfo{Name: *fn.Name, Arity: int(fn.Arity)}
		}
	}

	globalFrameSize := scanGlobalFrameSize(script)
	globalTracker := refine.NewVarTracker(globalFrameSize)

	out := &ir.Script{}
	for i, fn := range script.Functions {
		decl, err := decompileFunction(fn, i, game, functions, globalTracker, debug)
		if err != nil {
			return nil, fmt.Errorf("decompiler: function %d: %w", i, err)
		}
		out.Decls = append(out.Decls, decl)
	}

	globalTracker.FindEmptyArrayInits()
	requests := globalTracker.BuildDeclarationRequests(true)
	refine.InjectGlobalVarDeclarations(out, requests)
	return out, nil
}

// scanGlobalFrameSize derives the global frame's slot count from the
// highest global frame id any function references, since the binary
// container this toolchain reads carries no explicit global frame size
// field of its own.
func scanGlobalFrameSize(script *container.Script) int {
	size := 0
	for _, fn := range script.Functions {
		for _, op := range fn.Code {
			switch op.Kind {
			case opcode.GlobalVarLoad, opcode.GlobalArrLoad, opcode.GlobalPtrLoad,
				opcode.GlobalVarAddr, opcode.GlobalArrAddr, opcode.GlobalPtrAddr:
				if int(op.FrameID)+1 > size {
					size = int(op.FrameID) + 1
				}
			}
		}
	}
	return size
}

func decompileFunction(fn container.FunctionData, index int, game opcode.Game, functions map[int]funcInfo, globalTracker *refine.VarTracker, debug bool) (ir.Decl, error) {
	s := &state{game: game, code: fn.Code, functions: functions}
	s.blocks.push()
	for {
		if _, ok := s.peek(); !ok {
			break
		}
		if err := decompileOpcode(s); err != nil {
			return nil, err
		}
	}
	body := s.blocks.pop()
	hasDefaultReturn := refine.StripDefaultReturn(&body)
	block := ir.Stmt(ir.BlockStmt{Stmts: body})

	block = refine.CollapseWhileLoops(block)
	block = refine.CollapseForLoops(block)
	block = refine.AddMatchBreaks(block)
	block = refine.PruneUnusedLabels(block)

	paramCount := int(fn.Arity)
	if fn.FunctionType != 0 {
		paramCount = 0
	}
	varInfo, err := refine.CollectVarDetails(block, paramCount, fn.FrameSize, globalTracker)
	if err != nil {
		return nil, err
	}
	if !debug {
		block, err = refine.CollapseStaticArrayInits(block, varInfo)
		if err != nil {
			return nil, err
		}
	}
	varInfo.FindEmptyArrayInits()
	requests := varInfo.BuildDeclarationRequests(debug)
	if !debug {
		filtered := requests[:0]
		for _, r := range requests {
			if _, ok := r.(refine.ArrayDeclarationRequest); ok {
				filtered = append(filtered, r)
			}
		}
		requests = filtered
	}
	block, err = refine.InjectVarDeclarations(block, requests)
	if err != nil {
		return nil, err
	}

	var decl ir.Decl
	if fn.FunctionType == 0 {
		name := ""
		if fn.Name != nil {
			name = *fn.Name
		}
		decl = ir.FunctionDecl{Name: name, Arity: int(fn.Arity), Body: block}
	} else {
		args := make([]ir.Literal, len(fn.Args))
		for i, a := range fn.Args {
			switch a.Kind {
			case container.ArgInt:
				args[i] = ir.IntLiteral{Value: a.Int}
			case container.ArgFloat:
				args[i] = ir.FloatLiteral{Value: a.Float}
			default:
				args[i] = ir.StrLiteral{Value: a.Str}
			}
		}
		decl = ir.CallbackDecl{Event: fn.FunctionType, Args: args, Body: block}
	}

	if len(fn.UnknownPrefix) > 0 {
		decl = ir.AppendAnnotation(decl, ir.PrefixAnnotation{Bytes: fn.UnknownPrefix})
	}
	if len(fn.UnknownSuffix) > 0 {
		decl = ir.AppendAnnotation(decl, ir.SuffixAnnotation{Bytes: fn.UnknownSuffix})
	}
	if !hasDefaultReturn {
		decl = ir.AppendAnnotation(decl, ir.NoDefaultReturnAnnotation{})
	}
	return decl, nil
}

// decompileUntil runs decompileOpcode until the next opcode is
// Opcode{Label, label} without consuming that terminating label.
func decompileUntil(s *state, label string) error {
	for {
		op, ok := s.peek()
		if !ok {
			return fmt.Errorf("decompiler: ran out of opcodes waiting for label %q", label)
		}
		if op.Kind == opcode.Label && op.Str == label {
			return nil
		}
		if err := decompileOpcode(s); err != nil {
			return err
		}
	}
}

func decompileOpcode(s *state) error {
	op, ok := s.advance()
	if !ok {
		return fmt.Errorf("decompiler: unexpected end of opcode stream")
	}

	switch op.Kind {
	case opcode.Done, opcode.Nop0x3D, opcode.Nop0x40:
		// no-op in the decompiled tree.

	case opcode.VarLoad:
		s.exprs.push(ir.RefExpr{Ref: ir.VarReference{Frame: ir.FrameId{Index: int(op.FrameID)}}})
	case opcode.GlobalVarLoad:
		s.exprs.push(ir.RefExpr{Ref: ir.VarReference{Frame: ir.FrameId{Index: int(op.FrameID), Global: true}}})
	case opcode.VarAddr:
		s.exprs.push(ir.AddrExpr{Ref: ir.VarReference{Frame: ir.FrameId{Index: int(op.FrameID)}}})
	case opcode.GlobalVarAddr:
		s.exprs.push(ir.AddrExpr{Ref: ir.VarReference{Frame: ir.FrameId{Index: int(op.FrameID), Global: true}}})

	case opcode.ArrLoad, opcode.GlobalArrLoad, opcode.ArrAddr, opcode.GlobalArrAddr:
		index, ok := s.exprs.pop()
		if !ok {
			return fmt.Errorf("decompiler: array reference with no index on stack")
		}
		frame := ir.FrameId{Index: int(op.FrameID), Global: op.Kind == opcode.GlobalArrLoad || op.Kind == opcode.GlobalArrAddr}
		ref := ir.Reference(ir.IndexReference{Frame: frame, Index: index})
		if op.Kind == opcode.ArrLoad || op.Kind == opcode.GlobalArrLoad {
			s.exprs.push(ir.RefExpr{Ref: ref})
		} else {
			s.exprs.push(ir.AddrExpr{Ref: ref})
		}

	case opcode.PtrLoad, opcode.GlobalPtrLoad, opcode.PtrAddr, opcode.GlobalPtrAddr:
		index, ok := s.exprs.pop()
		if !ok {
			return fmt.Errorf("decompiler: pointer reference with no offset on stack")
		}
		frame := ir.FrameId{Index: int(op.FrameID), Global: op.Kind == opcode.GlobalPtrLoad || op.Kind == opcode.GlobalPtrAddr}
		ref := ir.Reference(ir.DereferenceReference{Frame: frame, Index: index})
		if op.Kind == opcode.PtrLoad || op.Kind == opcode.GlobalPtrLoad {
			s.exprs.push(ir.RefExpr{Ref: ref})
		} else {
			s.exprs.push(ir.AddrExpr{Ref: ref})
		}

	case opcode.IntLoad:
		s.exprs.push(ir.LiteralExpr{Value: ir.IntLiteral{Value: op.Int}})
	case opcode.FloatLoad:
		s.exprs.push(ir.LiteralExpr{Value: ir.FloatLiteral{Value: op.Float}})
	case opcode.StrLoad:
		s.exprs.push(ir.LiteralExpr{Value: ir.StrLiteral{Value: op.Str}})

	case opcode.Dereference:
		s.assign = assignShorthand

	case opcode.Consume:
		e, ok := s.exprs.pop()
		if !ok {
			return fmt.Errorf("decompiler: Consume with nothing on the stack")
		}
		s.blocks.line(ir.ExprStmt{Expr: e})

	case opcode.CompleteAssign, opcode.Assign:
		return decompileAssignment(s)

	case opcode.Fix:
		return decompileIntrinsicCall(s, "int", 1)
	case opcode.Float:
		return decompileIntrinsicCall(s, "float", 1)
	case opcode.StringEquals:
		return decompileIntrinsicCall(s, "streq", 2)
	case opcode.StringNotEquals:
		return decompileIntrinsicCall(s, "strne", 2)

	case opcode.Add:
		return decompileBinary(s, ast.OpAdd)
	case opcode.FloatAdd:
		return decompileBinary(s, ast.OpFloatAdd)
	case opcode.Subtract:
		return decompileBinary(s, ast.OpSubtract)
	case opcode.FloatSubtract:
		return decompileBinary(s, ast.OpFloatSubtract)
	case opcode.Multiply:
		return decompileBinary(s, ast.OpMultiply)
	case opcode.FloatMultiply:
		return decompileBinary(s, ast.OpFloatMultiply)
	case opcode.Divide:
		return decompileBinary(s, ast.OpDivide)
	case opcode.FloatDivide:
		return decompileBinary(s, ast.OpFloatDivide)
	case opcode.Modulo:
		return decompileBinary(s, ast.OpModulo)
	case opcode.BinaryOr:
		return decompileBinary(s, ast.OpBitwiseOr)
	case opcode.BinaryAnd:
		return decompileBinary(s, ast.OpBitwiseAnd)
	case opcode.Xor:
		return decompileBinary(s, ast.OpXor)
	case opcode.LeftShift:
		return decompileBinary(s, ast.OpLeftShift)
	case opcode.RightShift:
		return decompileBinary(s, ast.OpRightShift)
	case opcode.Equal:
		return decompileBinary(s, ast.OpEqual)
	case opcode.FloatEqual:
		return decompileBinary(s, ast.OpFloatEqual)
	case opcode.NotEqual:
		return decompileBinary(s, ast.OpNotEqual)
	case opcode.FloatNotEqual:
		return decompileBinary(s, ast.OpFloatNotEqual)
	case opcode.LessThan:
		return decompileBinary(s, ast.OpLessThan)
	case opcode.FloatLessThan:
		return decompileBinary(s, ast.OpFloatLessThan)
	case opcode.LessThanEqualTo:
		return decompileBinary(s, ast.OpLessThanEqualTo)
	case opcode.FloatLessThanEqualTo:
		return decompileBinary(s, ast.OpFloatLessThanEqualTo)
	case opcode.GreaterThan:
		return decompileBinary(s, ast.OpGreaterThan)
	case opcode.FloatGreaterThan:
		return decompileBinary(s, ast.OpFloatGreaterThan)
	case opcode.GreaterThanEqualTo:
		return decompileBinary(s, ast.OpGreaterThanEqualTo)
	case opcode.FloatGreaterThanEqualTo:
		return decompileBinary(s, ast.OpFloatGreaterThanEqualTo)

	case opcode.IntNegate:
		return decompileUnary(s, ast.OpNegate)
	case opcode.FloatNegate:
		return decompileUnary(s, ast.OpFloatNegate)
	case opcode.BinaryNot:
		return decompileUnary(s, ast.OpBitwiseNot)
	case opcode.LogicalNot:
		return decompileUnary(s, ast.OpLogicalNot)

	case opcode.Exlcall:
		return opcode.ErrExlcallUnimplemented

	case opcode.CallById:
		fn, ok := s.functions[op.CallID]
		if !ok {
			return fmt.Errorf("decompiler: CallById references unknown function %d", op.CallID)
		}
		args, ok := s.exprs.popArgs(fn.Arity)
		if !ok {
			return fmt.Errorf("decompiler: CallById(%d) needs %d args, fewer on stack", op.CallID, fn.Arity)
		}
		s.exprs.push(ir.CallExpr{Name: fn.Name, Args: args})
	case opcode.CallByName:
		args, ok := s.exprs.popArgs(int(op.Arity))
		if !ok {
			return fmt.Errorf("decompiler: CallByName(%q) needs %d args, fewer on stack", op.Str, op.Arity)
		}
		s.exprs.push(ir.CallExpr{Name: op.Str, Args: args})

	case opcode.Return:
		v, ok := s.exprs.pop()
		if !ok {
			return fmt.Errorf("decompiler: Return with nothing on the stack")
		}
		s.blocks.line(ir.ReturnStmt{Value: v})
	case opcode.ReturnFalse:
		s.blocks.line(ir.ReturnStmt{Value: ir.LiteralExpr{Value: ir.IntLiteral{Value: 0}}})
	case opcode.ReturnTrue:
		s.blocks.line(ir.ReturnStmt{Value: ir.LiteralExpr{Value: ir.IntLiteral{Value: 1}}})

	case opcode.Jump:
		s.blocks.line(ir.GotoStmt{Label: op.Str})
	case opcode.Label:
		s.blocks.line(ir.LabelStmt{Label: op.Str})

	case opcode.JumpNotZero:
		return fmt.Errorf("decompiler: JumpNotZero encountered outside a match")

	case opcode.Or:
		return decompileShortCircuit(s, op.Str, ast.OpLogicalOr)
	case opcode.And:
		return decompileShortCircuit(s, op.Str, ast.OpLogicalAnd)

	case opcode.JumpZero:
		return decompileIf(s, op.Str)

	case opcode.Yield:
		s.blocks.line(ir.YieldStmt{})

	case opcode.Format:
		args, ok := s.exprs.popArgs(int(op.Arity))
		if !ok {
			return fmt.Errorf("decompiler: Format(%d) needs that many args on the stack", op.Arity)
		}
		s.blocks.line(ir.PrintfStmt{Args: args})

	case opcode.Inc:
		return decompileInc(s, ast.OpIncrement)
	case opcode.Dec:
		return decompileInc(s, ast.OpDecrement)

	case opcode.Copy:
		return decompileMatch(s)

	default:
		return fmt.Errorf("decompiler: unsupported opcode %s", op)
	}
	return nil
}

func decompileIntrinsicCall(s *state, name string, arity int) error {
	args, ok := s.exprs.popArgs(arity)
	if !ok {
		return fmt.Errorf("decompiler: %s needs %d args on the stack", name, arity)
	}
	s.exprs.push(ir.CallExpr{Name: name, Args: args})
	return nil
}

// decompileAssignment closes out either a plain `left = right;` (read
// left-then-right off the stack) or, if a Dereference opcode set
// assignShorthand, a compound `left OP= right;` recovered from the
// Binary expression the intervening opcodes built. FE9 alone compiles
// assignments as expressions, leaving one extra Consume immediately
// after that this function silently swallows.
func decompileAssignment(s *state) error {
	var line ir.Stmt
	switch s.assign {
	case assignNormal:
		right, ok := s.exprs.pop()
		if !ok {
			return fmt.Errorf("decompiler: assignment missing right operand")
		}
		left, ok := s.exprs.pop()
		if !ok {
			return fmt.Errorf("decompiler: assignment missing left operand")
		}
		addr, ok := left.(ir.AddrExpr)
		if !ok {
			return fmt.Errorf("decompiler: assignment target is not an address expression")
		}
		line = ir.AssignStmt{Op: ast.OpAssign, Left: addr.Ref, Right: right}
	case assignShorthand:
		top, ok := s.exprs.pop()
		if !ok {
			return fmt.Errorf("decompiler: shorthand assignment missing binary expression")
		}
		bin, ok := top.(ir.BinaryExpr)
		if !ok {
			return fmt.Errorf("decompiler: shorthand assignment did not produce a binary expression")
		}
		addr, ok := bin.Left.(ir.AddrExpr)
		if !ok {
			return fmt.Errorf("decompiler: shorthand assignment target is not an address expression")
		}
		shorthand, ok := bin.Op.Shorthand()
		if !ok {
			return fmt.Errorf("decompiler: operator %s has no shorthand form", bin.Op)
		}
		line = ir.AssignStmt{Op: shorthand, Left: addr.Ref, Right: bin.Right}
	}
	s.assign = assignNormal
	s.blocks.line(line)

	if s.game == opcode.G1 {
		if op, ok := s.peek(); ok && op.Kind == opcode.Consume {
			s.advance()
		}
	}
	return nil
}

// decompileInc recovers ++/-- in either notation. Postfix leaves the
// pre-increment value on the stack (what decompileOpcode's surrounding
// Consume/Assign reads); prefix needs the post-increment value, which
// means replaying opcodes until the updated value is read back.
func decompileInc(s *state, op ast.Operator) error {
	operandExpr, ok := s.exprs.pop()
	if !ok {
		return fmt.Errorf("decompiler: Inc/Dec missing operand")
	}
	addr, ok := operandExpr.(ir.AddrExpr)
	if !ok {
		return fmt.Errorf("decompiler: Inc/Dec operand is not an address expression")
	}

	notation := ast.Prefix
	if top, ok := s.exprs.top(); ok {
		if r, ok := top.(ir.RefExpr); ok {
			if v, ok := r.Ref.(ir.VarReference); ok && v.Frame == addr.Ref.FrameID() {
				notation = ast.Postfix
			}
		}
	}

	if notation == ast.Prefix {
		if err := consumePrefixIncValue(s, addr.Ref.FrameID()); err != nil {
			return err
		}
		s.exprs.pop() // discard the replayed read; Expr.Inc supplies the value itself.
	}

	s.exprs.push(ir.IncExpr{Op: op, Notation: notation, Ref: addr.Ref})
	return nil
}

// consumePrefixIncValue keeps decompiling opcodes until a Ref to
// target reappears on top of the stack - the code generator re-reads
// the freshly incremented value immediately after Inc/Dec in prefix
// position.
func consumePrefixIncValue(s *state, target ir.FrameId) error {
	for {
		if top, ok := s.exprs.top(); ok {
			if r, ok := top.(ir.RefExpr); ok {
				if v, ok := r.Ref.(ir.VarReference); ok && v.Frame == target {
					return nil
				}
			}
		}
		if _, ok := s.peek(); !ok {
			return fmt.Errorf("decompiler: ran out of opcodes looking for the prefix increment's re-read")
		}
		if err := decompileOpcode(s); err != nil {
			return err
		}
	}
}

func decompileShortCircuit(s *state, label string, op ast.Operator) error {
	left, ok := s.exprs.pop()
	if !ok {
		return fmt.Errorf("decompiler: short-circuit operator missing left operand")
	}
	left = preservePrecedence(left, op)
	if err := decompileUntil(s, label); err != nil {
		return err
	}
	right, ok := s.exprs.pop()
	if !ok {
		return fmt.Errorf("decompiler: short-circuit operator missing right operand")
	}
	right = preservePrecedence(right, op)
	s.exprs.push(ir.BinaryExpr{Op: op, Left: left, Right: right})
	return nil
}

func decompileBinary(s *state, op ast.Operator) error {
	right, ok := s.exprs.pop()
	if !ok {
		return fmt.Errorf("decompiler: binary operator missing right operand")
	}
	left, ok := s.exprs.pop()
	if !ok {
		return fmt.Errorf("decompiler: binary operator missing left operand")
	}
	s.exprs.push(ir.BinaryExpr{Op: op, Left: preservePrecedence(left, op), Right: preservePrecedence(right, op)})
	return nil
}

func decompileUnary(s *state, op ast.Operator) error {
	operand, ok := s.exprs.pop()
	if !ok {
		return fmt.Errorf("decompiler: unary operator missing operand")
	}
	if op == ast.OpNegate {
		if lit, ok := operand.(ir.LiteralExpr); ok {
			if _, ok := lit.Value.(ir.IntLiteral); ok {
				s.exprs.push(ir.CallExpr{Name: "negate", Args: []ir.Expr{operand}})
				return nil
			}
		}
	}
	s.exprs.push(ir.UnaryExpr{Op: op, Operand: preservePrecedence(operand, op)})
	return nil
}

// preservePrecedence wraps operand in Grouped when printing it bare
// under op's precedence could re-associate it differently than the
// compiled source did: a looser-or-equal binding top-level operator
// needs parentheses to survive the round trip; a strictly tighter one
// reads unambiguously without them.
func preservePrecedence(operand ir.Expr, op ast.Operator) ir.Expr {
	bin, ok := operand.(ir.BinaryExpr)
	if !ok {
		return operand
	}
	if bin.Op.Precedence() > op.Precedence() {
		return operand
	}
	return ir.GroupedExpr{Inner: operand}
}

// decompileIf recovers the raw if/then shape the code generator
// emits: a JumpZero to the terminating label guards the then-block.
// Recovering an else/else-if part is refine's job (loop collapsing
// leaves genuine ifs alone; nothing in this pass ever produces one).
func decompileIf(s *state, label string) error {
	check, ok := s.exprs.pop()
	if !ok {
		return fmt.Errorf("decompiler: if missing condition")
	}
	s.blocks.push()
	if err := decompileUntil(s, label); err != nil {
		return err
	}
	then := s.blocks.pop()
	s.blocks.line(ir.IfStmt{Check: check, Then: ir.BlockStmt{Stmts: then}, TermLabel: label})
	return nil
}

// decompileMatch recovers a match statement from the
// Copy/cond/Equal/JumpNotZero-per-condition, Jump-to-next-on-false
// pattern the code generator emits, including its default arm and
// shared done label.
func decompileMatch(s *state) error {
	switch1, ok := s.exprs.pop()
	if !ok {
		return fmt.Errorf("decompiler: match missing switch expression")
	}

	var cases []ir.Case
	var doneLabel string
	for {
		var conditions []ir.Expr
		for {
			// Simulates the Copy opcode's stack-duplication effect, which
			// decompileOpcode's dispatch intercepts (treating Copy as "a
			// match begins/continues here") instead of performing.
			s.exprs.push(switch1)
			if err := decompileUntilOpcode(s, opcode.JumpNotZero); err != nil {
				return err
			}
			// The JumpNotZero itself was consumed by decompileUntilOpcode;
			// the comparison it guarded is on top of the stack as a Binary.
			top, ok := s.exprs.pop()
			if !ok {
				return fmt.Errorf("decompiler: match condition missing comparison")
			}
			bin, ok := top.(ir.BinaryExpr)
			if !ok {
				return fmt.Errorf("decompiler: match condition is not a binary expression")
			}
			conditions = append(conditions, bin.Right)

			op, ok := s.peek()
			if ok && op.Kind == opcode.Copy {
				s.advance()
				continue
			}
			break
		}

		nextOp, ok := s.advance()
		if !ok || nextOp.Kind != opcode.Jump {
			return fmt.Errorf("decompiler: match case not followed by a jump to the next case")
		}
		nextLabel := nextOp.Str

		s.blocks.push()
		if err := decompileUntil(s, nextLabel); err != nil {
			return err
		}
		s.advance() // consume the label terminating this case's body.
		body := s.blocks.pop()
		if len(body) == 0 {
			return fmt.Errorf("decompiler: match case body unexpectedly empty")
		}
		last, ok := body[len(body)-1].(ir.GotoStmt)
		if !ok {
			return fmt.Errorf("decompiler: match case body does not end in a goto to the done label")
		}
		doneLabel = last.Label
		body = body[:len(body)-1]
		cases = append(cases, ir.Case{Conditions: conditions, Body: ir.BlockStmt{Stmts: body}})

		op, ok := s.peek()
		if !ok {
			return fmt.Errorf("decompiler: match ran out of opcodes after a case")
		}
		if op.Kind == opcode.Consume {
			s.advance()
			s.blocks.line(ir.MatchStmt{Switch: switch1, Cases: cases, DoneLabel: doneLabel})
			return nil
		}
		if op.Kind == opcode.Copy {
			s.advance()
			continue
		}
		break
	}

	s.blocks.push()
	if err := decompileUntil(s, doneLabel); err != nil {
		return err
	}
	def := s.blocks.pop()
	if len(def) > 0 {
		def = def[:len(def)-1] // drop the trailing goto to the done label.
	}
	s.advance() // consume the done label.
	if op, ok := s.peek(); ok && op.Kind == opcode.Consume {
		s.advance()
	}

	s.blocks.line(ir.MatchStmt{
		Switch:    switch1,
		Cases:     cases,
		Default:   ir.BlockStmt{Stmts: def},
		DoneLabel: doneLabel,
	})
	return nil
}

// decompileUntilOpcode runs decompileOpcode until it is about to
// consume an opcode of the given kind, then consumes exactly that one
// opcode itself and returns.
func decompileUntilOpcode(s *state, kind opcode.Kind) error {
	for {
		op, ok := s.peek()
		if !ok {
			return fmt.Errorf("decompiler: ran out of opcodes waiting for kind %d", kind)
		}
		if op.Kind == kind {
			s.advance()
			return nil
		}
		if err := decompileOpcode(s); err != nil {
			return err
		}
	}
}
