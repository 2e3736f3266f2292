package ast

// Ref is a raw l-value: a plain variable, an array index, or a pointer
// dereference, each still just naming an Identifier since symbol
// resolution hasn't happened yet at the surface level.
type Ref interface {
	RefLocation() Location
	isRef()
}

type VarRef struct {
	Ident Identifier
}

func (r *VarRef) RefLocation() Location { return r.Ident.Location }
func (r *VarRef) isRef()                {}

type IndexRef struct {
	Ident Identifier
	Index Expr
}

func (r *IndexRef) RefLocation() Location { return r.Ident.Location }
func (r *IndexRef) isRef()                {}

type DereferenceRef struct {
	Ident  Identifier
	Offset Expr // nil if unindexed
}

func (r *DereferenceRef) RefLocation() Location { return r.Ident.Location }
func (r *DereferenceRef) isRef()                {}

// Expr is a surface expression node.
type Expr interface {
	ExprLocation() Location
	Accept(v ExprVisitor) any
}

type ExprVisitor interface {
	VisitArray(e *ArrayExpr) any
	VisitLiteral(e *LiteralExpr) any
	VisitEnumAccess(e *EnumAccessExpr) any
	VisitUnary(e *UnaryExpr) any
	VisitBinary(e *BinaryExpr) any
	VisitFunctionCall(e *FunctionCallExpr) any
	VisitRef(e *RefExpr) any
	VisitGrouped(e *GroupedExpr) any
	VisitIncrement(e *IncrementExpr) any
	VisitAddressOf(e *AddressOfExpr) any
}

// ArrayExpr is either a static list of elements (`[1, 2, 3]`) or an
// empty array of a given length (`array[5]`), distinguished by
// IsCount; in the count form Elements holds exactly the one count
// expression.
type ArrayExpr struct {
	Location Location
	Elements []Expr
	IsCount  bool
}

func (e *ArrayExpr) ExprLocation() Location    { return e.Location }
func (e *ArrayExpr) Accept(v ExprVisitor) any  { return v.VisitArray(e) }

type LiteralExpr struct {
	Location Location
	Value    Literal
}

func (e *LiteralExpr) ExprLocation() Location { return e.Location }
func (e *LiteralExpr) Accept(v ExprVisitor) any { return v.VisitLiteral(e) }

type EnumAccessExpr struct {
	Location Location
	Enum     Identifier
	Variant  Identifier
}

func (e *EnumAccessExpr) ExprLocation() Location { return e.Location }
func (e *EnumAccessExpr) Accept(v ExprVisitor) any { return v.VisitEnumAccess(e) }

type UnaryExpr struct {
	Location Location
	Operand  Expr
	Op       Operator
}

func (e *UnaryExpr) ExprLocation() Location { return e.Location }
func (e *UnaryExpr) Accept(v ExprVisitor) any { return v.VisitUnary(e) }

type BinaryExpr struct {
	Location Location
	Left     Expr
	Op       Operator
	Right    Expr
}

func (e *BinaryExpr) ExprLocation() Location { return e.Location }
func (e *BinaryExpr) Accept(v ExprVisitor) any { return v.VisitBinary(e) }

type FunctionCallExpr struct {
	Location Location
	Callee   Identifier
	Args     []Expr
}

func (e *FunctionCallExpr) ExprLocation() Location { return e.Location }
func (e *FunctionCallExpr) Accept(v ExprVisitor) any { return v.VisitFunctionCall(e) }

type RefExpr struct {
	Location Location
	Ref      Ref
}

func (e *RefExpr) ExprLocation() Location { return e.Location }
func (e *RefExpr) Accept(v ExprVisitor) any { return v.VisitRef(e) }

type GroupedExpr struct {
	Location Location
	Inner    Expr
}

func (e *GroupedExpr) ExprLocation() Location { return e.Location }
func (e *GroupedExpr) Accept(v ExprVisitor) any { return v.VisitGrouped(e) }

type IncrementExpr struct {
	Location Location
	Ref      Ref
	Op       Operator
	Notation Notation
}

func (e *IncrementExpr) ExprLocation() Location { return e.Location }
func (e *IncrementExpr) Accept(v ExprVisitor) any { return v.VisitIncrement(e) }

type AddressOfExpr struct {
	Location Location
	Ref      Ref
}

func (e *AddressOfExpr) ExprLocation() Location { return e.Location }
func (e *AddressOfExpr) Accept(v ExprVisitor) any { return v.VisitAddressOf(e) }

// Case is one branch of a match statement: a set of values to compare
// the switch expression against (empty for the implicit default case)
// and the body to run when one matches.
type Case struct {
	Conditions []Expr
	Body       Stmt
}

// Stmt is a surface statement node.
type Stmt interface {
	StmtLocation() Location
	Accept(v StmtVisitor) any
}

type StmtVisitor interface {
	VisitAssignment(s *AssignmentStmt) any
	VisitBlock(s *BlockStmt) any
	VisitBreak(s *BreakStmt) any
	VisitContinue(s *ContinueStmt) any
	VisitExprStmt(s *ExprStmt) any
	VisitFor(s *ForStmt) any
	VisitGoto(s *GotoStmt) any
	VisitIf(s *IfStmt) any
	VisitLabel(s *LabelStmt) any
	VisitMatch(s *MatchStmt) any
	VisitPrintf(s *PrintfStmt) any
	VisitReturn(s *ReturnStmt) any
	VisitVarDecl(s *VarDeclStmt) any
	VisitWhile(s *WhileStmt) any
	VisitYield(s *YieldStmt) any
}

type AssignmentStmt struct {
	Location Location
	Left     Ref
	Op       Operator
	Right    Expr
}

func (s *AssignmentStmt) StmtLocation() Location { return s.Location }
func (s *AssignmentStmt) Accept(v StmtVisitor) any { return v.VisitAssignment(s) }

type BlockStmt struct {
	Location Location
	Stmts    []Stmt
}

func (s *BlockStmt) StmtLocation() Location { return s.Location }
func (s *BlockStmt) Accept(v StmtVisitor) any { return v.VisitBlock(s) }

type BreakStmt struct{ Location Location }

func (s *BreakStmt) StmtLocation() Location { return s.Location }
func (s *BreakStmt) Accept(v StmtVisitor) any { return v.VisitBreak(s) }

type ContinueStmt struct{ Location Location }

func (s *ContinueStmt) StmtLocation() Location { return s.Location }
func (s *ContinueStmt) Accept(v StmtVisitor) any { return v.VisitContinue(s) }

type ExprStmt struct {
	Location Location
	Expr     Expr
}

func (s *ExprStmt) StmtLocation() Location { return s.Location }
func (s *ExprStmt) Accept(v StmtVisitor) any { return v.VisitExprStmt(s) }

type ForStmt struct {
	Location Location
	Init     Stmt
	Check    Expr
	Step     Stmt
	Body     Stmt
}

func (s *ForStmt) StmtLocation() Location { return s.Location }
func (s *ForStmt) Accept(v StmtVisitor) any { return v.VisitFor(s) }

type GotoStmt struct {
	Location Location
	Target   Identifier
}

func (s *GotoStmt) StmtLocation() Location { return s.Location }
func (s *GotoStmt) Accept(v StmtVisitor) any { return v.VisitGoto(s) }

type IfStmt struct {
	Location  Location
	Condition Expr
	Then      Stmt
	Else      Stmt // nil if absent
}

func (s *IfStmt) StmtLocation() Location { return s.Location }
func (s *IfStmt) Accept(v StmtVisitor) any { return v.VisitIf(s) }

type LabelStmt struct {
	Location Location
	Name     Identifier
}

func (s *LabelStmt) StmtLocation() Location { return s.Location }
func (s *LabelStmt) Accept(v StmtVisitor) any { return v.VisitLabel(s) }

type MatchStmt struct {
	Location Location
	Switch   Expr
	Cases    []Case
	Default  Stmt // nil if absent
}

func (s *MatchStmt) StmtLocation() Location { return s.Location }
func (s *MatchStmt) Accept(v StmtVisitor) any { return v.VisitMatch(s) }

type PrintfStmt struct {
	Location Location
	Args     []Expr
}

func (s *PrintfStmt) StmtLocation() Location { return s.Location }
func (s *PrintfStmt) Accept(v StmtVisitor) any { return v.VisitPrintf(s) }

type ReturnStmt struct {
	Location Location
	Value    Expr // nil for a bare return
}

func (s *ReturnStmt) StmtLocation() Location { return s.Location }
func (s *ReturnStmt) Accept(v StmtVisitor) any { return v.VisitReturn(s) }

type VarDeclStmt struct {
	Location Location
	Name     Identifier
	Init     Expr // nil if uninitialized
}

func (s *VarDeclStmt) StmtLocation() Location { return s.Location }
func (s *VarDeclStmt) Accept(v StmtVisitor) any { return v.VisitVarDecl(s) }

type WhileStmt struct {
	Location  Location
	Condition Expr
	Body      Stmt
}

func (s *WhileStmt) StmtLocation() Location { return s.Location }
func (s *WhileStmt) Accept(v StmtVisitor) any { return v.VisitWhile(s) }

type YieldStmt struct{ Location Location }

func (s *YieldStmt) StmtLocation() Location { return s.Location }
func (s *YieldStmt) Accept(v StmtVisitor) any { return v.VisitYield(s) }

// Annotation is a `@name(args...)` decoration on a function or
// callback declaration, controlling code generation (e.g. suppressing
// the default trailing return, or injecting raw prefix/suffix bytes).
type Annotation struct {
	Location Location
	Name     Identifier
	Args     []Expr
}

// EnumVariant is one `name = value` member of an enum declaration.
type EnumVariant struct {
	Location Location
	Name     Identifier
	Value    Expr
}

// IncludePathComponent is one segment of a relative include path:
// either a named node or a ".." parent-traversal.
type IncludePathComponent struct {
	Name     string
	IsParent bool
}

// Decl is a top-level surface declaration.
type Decl interface {
	DeclLocation() Location
	IsFunctionLike() bool
}

type ConstDecl struct {
	Location Location
	Name     Identifier
	Value    Expr
}

func (d *ConstDecl) DeclLocation() Location { return d.Location }
func (d *ConstDecl) IsFunctionLike() bool   { return false }

type EnumDecl struct {
	Location Location
	Name     Identifier
	Variants []EnumVariant
}

func (d *EnumDecl) DeclLocation() Location { return d.Location }
func (d *EnumDecl) IsFunctionLike() bool   { return false }

type FunctionDecl struct {
	Location    Location
	Annotations []Annotation
	Name        Identifier
	Parameters  []Identifier
	Body        Stmt
}

func (d *FunctionDecl) DeclLocation() Location { return d.Location }
func (d *FunctionDecl) IsFunctionLike() bool   { return true }

type GlobalDecl struct {
	Location Location
	Name     Identifier
	Init     Expr // nil if uninitialized
}

func (d *GlobalDecl) DeclLocation() Location { return d.Location }
func (d *GlobalDecl) IsFunctionLike() bool   { return false }

type CallbackDecl struct {
	Location    Location
	Annotations []Annotation
	EventType   Expr
	Args        []Expr
	Body        Stmt
}

func (d *CallbackDecl) DeclLocation() Location { return d.Location }
func (d *CallbackDecl) IsFunctionLike() bool   { return true }

type IncludeDecl struct {
	Location Location
	Path     []IncludePathComponent
}

func (d *IncludeDecl) DeclLocation() Location { return d.Location }
func (d *IncludeDecl) IsFunctionLike() bool   { return false }

type FunctionAliasDecl struct {
	Location Location
	Name     Identifier
	Alias    Identifier
}

func (d *FunctionAliasDecl) DeclLocation() Location { return d.Location }
func (d *FunctionAliasDecl) IsFunctionLike() bool   { return false }

type FunctionExternDecl struct {
	Location   Location
	Name       Identifier
	Parameters []Identifier
}

func (d *FunctionExternDecl) DeclLocation() Location { return d.Location }
func (d *FunctionExternDecl) IsFunctionLike() bool   { return false }

// Script is an entire parsed (but not yet analyzed) source file.
type Script struct {
	Decls []Decl
}
