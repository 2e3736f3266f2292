// Package sem defines the semantic intermediate representation that
// the analysis stage lowers a surface ast.Script into: the same shape
// of program, but with every name resolved to a concrete *Symbol,
// locations dropped (diagnostics are already attached by that point),
// and constructs that only exist to support parsing (enums, consts,
// top-level globals, includes, extern/alias declarations) erased
// into their resolved uses.
package sem

import "exalt/internal/ast"

// ConstSymbol is a named, already-folded constant value.
type ConstSymbol struct {
	Name  string
	Value ast.Literal
}

// EnumSymbol is a named enum type and its ordered variant table.
type EnumSymbol struct {
	Name     string
	Variants map[string]*ConstSymbol
	Order    []string
}

// FunctionSymbol identifies a callable by name and parameter count.
type FunctionSymbol struct {
	Name  string
	Arity int
}

// LabelSymbol tracks a goto target: whether its Label statement has
// been seen yet, for detecting gotos to undefined labels once a
// function body has been fully walked.
type LabelSymbol struct {
	Name     string
	Resolved bool
}

// VarSymbol is a resolved local, parameter, or global variable.
// For globals, FrameID is the global slot index assigned during
// analysis; locals and parameters keep -1, and internal/codegen's frame
// allocator tracks their slots in its own table.
type VarSymbol struct {
	Name        string
	Global      bool
	Array       bool
	FrameID     int
	Assignments int
}

// Ref is a resolved l-value: a symbol plus, for Index/Dereference, the
// expression selecting into it.
type Ref interface{ isRef() }

type VarRef struct{ Symbol *VarSymbol }

func (VarRef) isRef() {}

type IndexRef struct {
	Symbol *VarSymbol
	Index  Expr
}

func (IndexRef) isRef() {}

type DereferenceRef struct {
	Symbol *VarSymbol
	Offset Expr // nil if unindexed
}

func (DereferenceRef) isRef() {}

// ArrayInit is how an array-typed expression is initialized: either
// reserved as N zeroed empty slots, or populated from a fixed list of
// element expressions.
type ArrayInit interface{ isArrayInit() }

type EmptyArrayInit struct{ Size int }

func (EmptyArrayInit) isArrayInit() {}

type StaticArrayInit struct{ Elements []Expr }

func (StaticArrayInit) isArrayInit() {}

// Expr is a resolved expression: no more raw identifiers, only symbol
// references, and no source Location (diagnostics already fired
// during analysis).
type Expr interface{ isExpr() }

type ArrayExpr struct{ Init ArrayInit }

func (ArrayExpr) isExpr() {}

type LiteralExpr struct{ Value ast.Literal }

func (LiteralExpr) isExpr() {}

type GroupedExpr struct{ Inner Expr }

func (GroupedExpr) isExpr() {}

type UnaryExpr struct {
	Op      ast.Operator
	Operand Expr
}

func (UnaryExpr) isExpr() {}

type BinaryExpr struct {
	Left  Expr
	Op    ast.Operator
	Right Expr
}

func (BinaryExpr) isExpr() {}

type FunctionCallExpr struct {
	Symbol *FunctionSymbol
	Args   []Expr
}

func (FunctionCallExpr) isExpr() {}

type RefExpr struct{ Ref Ref }

func (RefExpr) isExpr() {}

type IncrementExpr struct {
	Ref      Ref
	Op       ast.Operator
	Notation ast.Notation
}

func (IncrementExpr) isExpr() {}

type AddressOfExpr struct{ Ref Ref }

func (AddressOfExpr) isExpr() {}

// Case is one branch of a match statement.
type Case struct {
	Conditions []Expr
	Body       Stmt
}

// Stmt is a resolved statement.
type Stmt interface{ isStmt() }

type AssignmentStmt struct {
	Left  Ref
	Op    ast.Operator
	Right Expr
}

func (AssignmentStmt) isStmt() {}

type BlockStmt struct{ Stmts []Stmt }

func (BlockStmt) isStmt() {}

type BreakStmt struct{}

func (BreakStmt) isStmt() {}

type ContinueStmt struct{}

func (ContinueStmt) isStmt() {}

type ExprStmt struct{ Expr Expr }

func (ExprStmt) isStmt() {}

type ForStmt struct {
	Init  Stmt
	Check Expr
	Step  Stmt
	Body  Stmt
}

func (ForStmt) isStmt() {}

type GotoStmt struct{ Symbol *LabelSymbol }

func (GotoStmt) isStmt() {}

type IfStmt struct {
	Condition Expr
	Then      Stmt
	Else      Stmt // nil if absent
}

func (IfStmt) isStmt() {}

type LabelStmt struct{ Symbol *LabelSymbol }

func (LabelStmt) isStmt() {}

type MatchStmt struct {
	Switch  Expr
	Cases   []Case
	Default Stmt // nil if absent
}

func (MatchStmt) isStmt() {}

type PrintfStmt struct{ Args []Expr }

func (PrintfStmt) isStmt() {}

type ReturnStmt struct{ Value Expr } // Value nil for a bare return

func (ReturnStmt) isStmt() {}

type VarDeclStmt struct{ Symbol *VarSymbol }

func (VarDeclStmt) isStmt() {}

type WhileStmt struct {
	Condition Expr
	Body      Stmt
}

func (WhileStmt) isStmt() {}

type YieldStmt struct{}

func (YieldStmt) isStmt() {}

// Annotation is a resolved, hard-coded function/callback modifier —
// only a fixed handful exist because annotations solely steer code
// generation, never run-time behavior.
type Annotation interface{ isAnnotation() }

type NoDefaultReturnAnnotation struct{}

func (NoDefaultReturnAnnotation) isAnnotation() {}

type PrefixAnnotation struct{ Bytes []byte }

func (PrefixAnnotation) isAnnotation() {}

type SuffixAnnotation struct{ Bytes []byte }

func (SuffixAnnotation) isAnnotation() {}

type UnknownAnnotation struct{ Value int }

func (UnknownAnnotation) isAnnotation() {}

// Decl is a resolved top-level declaration. Constants, enums, globals,
// includes, and extern/alias declarations are all erased during
// analysis: their effects are folded into the functions and callbacks
// that reference them, so only these two kinds survive into the
// semantic tree.
type Decl interface{ isDecl() }

type FunctionDecl struct {
	Annotations []Annotation
	Symbol      *FunctionSymbol
	Parameters  []*VarSymbol
	Body        Stmt
}

func (FunctionDecl) isDecl() {}

type CallbackDecl struct {
	Annotations []Annotation
	EventType   int
	Args        []ast.Literal
	Body        Stmt
}

func (CallbackDecl) isDecl() {}

// Script is a fully analyzed program ready for internal/codegen.
// Globals is the number of declared global variables; global slots are
// numbered apart from each function's own frame.
type Script struct {
	Decls   []Decl
	Globals int
}
