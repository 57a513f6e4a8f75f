// Package callgraph finds calls between routines that are placed in
// different ROM banks.
package callgraph

// Expr is an expression node of the program tree.
type Expr interface {
	expr()
}

// Stmt is a statement node of the program tree.
type Stmt interface {
	stmt()
}

// Ident references a variable or constant.
type Ident struct {
	Name string
}

// Number is a numeric literal.
type Number struct {
	Value int
}

// Str is a string literal.
type Str struct {
	Value string
}

// Call calls a routine by name.
type Call struct {
	Callee string
	Args   []Expr
}

// MethodCall calls a method on a receiver. Callee is the name of the routine
// that implements the method.
type MethodCall struct {
	Receiver Expr
	Method   string
	Callee   string
	Args     []Expr
}

// Binary is an operation with two operands.
type Binary struct {
	Op          string
	Left, Right Expr
}

// Unary is an operation with one operand.
type Unary struct {
	Op      string
	Operand Expr
}

// Conditional is a conditional expression.
type Conditional struct {
	Cond, Then, Else Expr
}

// FieldAccess accesses a field of a structure.
type FieldAccess struct {
	Target Expr
	Field  string
}

// Index accesses an element of an array.
type Index struct {
	Target Expr
	Index  Expr
}

// List is a list literal.
type List struct {
	Items []Expr
}

func (Ident) expr()       {}
func (Number) expr()      {}
func (Str) expr()         {}
func (Call) expr()        {}
func (MethodCall) expr()  {}
func (Binary) expr()      {}
func (Unary) expr()       {}
func (Conditional) expr() {}
func (FieldAccess) expr() {}
func (Index) expr()       {}
func (List) expr()        {}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	Expr Expr
}

// Assign assigns a value to a target.
type Assign struct {
	Target Expr
	Value  Expr
}

// Return returns from the routine, Value can be nil.
type Return struct {
	Value Expr
}

// If is a conditional statement with optional else branch.
type If struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// While is a loop with a condition.
type While struct {
	Cond Expr
	Body []Stmt
}

// For is a counting loop, all parts are optional.
type For struct {
	Init Stmt
	Cond Expr
	Step Stmt
	Body []Stmt
}

// Block groups statements.
type Block struct {
	Body []Stmt
}

func (ExprStmt) stmt() {}
func (Assign) stmt()   {}
func (Return) stmt()   {}
func (If) stmt()       {}
func (While) stmt()    {}
func (For) stmt()      {}
func (Block) stmt()    {}

// Function is a routine of the program.
type Function struct {
	Name string
	Body []Stmt
}

// Program is the whole program.
type Program struct {
	Functions []Function
}

// Assignment maps routine names to the bank they are placed in.
type Assignment map[string]int
