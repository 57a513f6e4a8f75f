package callgraph

import (
	"github.com/retroenv/retrogolib/set"
	"golang.org/x/exp/slices"
)

// CallSite is a call from a routine to a routine in another bank.
type CallSite struct {
	Caller     string
	CallerBank int
	Callee     string
	CalleeBank int
}

// Pair is a distinct combination of calling bank and called routine that
// requires a trampoline.
type Pair struct {
	CallerBank int
	Callee     string
	CalleeBank int
}

// Result contains the cross bank calls of a program.
type Result struct {
	Sites []CallSite // all cross bank call sites in program order
	Pairs []Pair     // distinct pairs sorted by caller bank and callee
}

// Analyze walks all routines of the program and returns the calls whose
// callee is assigned to a different bank than the calling routine. Calls of
// routines that are not part of the assignment, like BIOS functions, never
// cross banks.
func Analyze(prog *Program, assignment Assignment) *Result {
	a := &analyzer{
		assignment: assignment,
		pairs:      set.New[Pair](),
		result:     &Result{},
	}

	for _, fn := range prog.Functions {
		bank, ok := assignment[fn.Name]
		if !ok {
			continue
		}
		a.caller = fn.Name
		a.callerBank = bank
		a.stmts(fn.Body)
	}

	for pair := range a.pairs {
		a.result.Pairs = append(a.result.Pairs, pair)
	}
	slices.SortFunc(a.result.Pairs, func(x, y Pair) bool {
		if x.CallerBank != y.CallerBank {
			return x.CallerBank < y.CallerBank
		}
		return x.Callee < y.Callee
	})
	return a.result
}

type analyzer struct {
	assignment Assignment
	caller     string
	callerBank int

	pairs  set.Set[Pair]
	result *Result
}

func (a *analyzer) call(callee string) {
	bank, ok := a.assignment[callee]
	if !ok || bank == a.callerBank {
		return
	}

	a.result.Sites = append(a.result.Sites, CallSite{
		Caller:     a.caller,
		CallerBank: a.callerBank,
		Callee:     callee,
		CalleeBank: bank,
	})
	a.pairs.Add(Pair{CallerBank: a.callerBank, Callee: callee, CalleeBank: bank})
}

func (a *analyzer) stmts(list []Stmt) {
	for _, s := range list {
		a.stmt(s)
	}
}

func (a *analyzer) stmt(s Stmt) {
	switch s := s.(type) {
	case ExprStmt:
		a.expr(s.Expr)
	case Assign:
		a.expr(s.Target)
		a.expr(s.Value)
	case Return:
		a.expr(s.Value)
	case If:
		a.expr(s.Cond)
		a.stmts(s.Then)
		a.stmts(s.Else)
	case While:
		a.expr(s.Cond)
		a.stmts(s.Body)
	case For:
		if s.Init != nil {
			a.stmt(s.Init)
		}
		a.expr(s.Cond)
		if s.Step != nil {
			a.stmt(s.Step)
		}
		a.stmts(s.Body)
	case Block:
		a.stmts(s.Body)
	}
}

func (a *analyzer) exprs(list []Expr) {
	for _, e := range list {
		a.expr(e)
	}
}

func (a *analyzer) expr(e Expr) {
	switch e := e.(type) {
	case Call:
		a.call(e.Callee)
		a.exprs(e.Args)
	case MethodCall:
		a.expr(e.Receiver)
		a.call(e.Callee)
		a.exprs(e.Args)
	case Binary:
		a.expr(e.Left)
		a.expr(e.Right)
	case Unary:
		a.expr(e.Operand)
	case Conditional:
		a.expr(e.Cond)
		a.expr(e.Then)
		a.expr(e.Else)
	case FieldAccess:
		a.expr(e.Target)
	case Index:
		a.expr(e.Target)
		a.expr(e.Index)
	case List:
		a.exprs(e.Items)
	}
}
