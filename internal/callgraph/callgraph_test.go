package callgraph

import (
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/vecasm/internal/program"
)

func TestAnalyze(t *testing.T) {
	prog := &Program{
		Functions: []Function{
			{
				Name: "main",
				Body: []Stmt{
					ExprStmt{Expr: Call{Callee: "draw_level"}},
					If{
						Cond: Binary{Op: "<", Left: Ident{Name: "x"}, Right: Call{Callee: "draw_level"}},
						Then: []Stmt{Assign{Target: Ident{Name: "y"}, Value: Call{Callee: "wait_recal"}}},
					},
					While{
						Cond: Number{Value: 1},
						Body: []Stmt{Return{Value: Call{Callee: "draw_level", Args: []Expr{Call{Callee: "helper"}}}}},
					},
				},
			},
			{
				Name: "draw_level",
				Body: []Stmt{
					For{
						Init: Assign{Target: Ident{Name: "i"}, Value: Number{Value: 0}},
						Cond: Binary{Op: "<", Left: Ident{Name: "i"}, Right: Number{Value: 4}},
						Body: []Stmt{
							ExprStmt{Expr: MethodCall{
								Receiver: Index{Target: Ident{Name: "enemies"}, Index: Ident{Name: "i"}},
								Method:   "draw",
								Callee:   "Enemy_draw",
							}},
							ExprStmt{Expr: FieldAccess{Target: Call{Callee: "main"}, Field: "x"}},
						},
					},
				},
			},
		},
	}
	assignment := Assignment{
		"main":       0,
		"helper":     0,
		"draw_level": 1,
		"Enemy_draw": 1,
	}

	res := Analyze(prog, assignment)
	assert.Len(t, res.Sites, 4)
	assert.Equal(t, []Pair{
		{CallerBank: 0, Callee: "draw_level", CalleeBank: 1},
		{CallerBank: 1, Callee: "main", CalleeBank: 0},
	}, res.Pairs)
}

func TestAnalyze_NestedArguments(t *testing.T) {
	prog := &Program{
		Functions: []Function{{
			Name: "main",
			Body: []Stmt{
				Block{Body: []Stmt{
					ExprStmt{Expr: Call{Callee: "print", Args: []Expr{
						Conditional{
							Cond: Unary{Op: "!", Operand: Ident{Name: "done"}},
							Then: List{Items: []Expr{Call{Callee: "score"}}},
							Else: Number{Value: 0},
						},
					}}},
				}},
			},
		}},
	}

	res := Analyze(prog, Assignment{"main": 0, "score": 2})
	assert.Equal(t, []Pair{{CallerBank: 0, Callee: "score", CalleeBank: 2}}, res.Pairs)
}

func TestFromAssembly(t *testing.T) {
	sections := []program.BankSection{
		{ID: 0, Lines: strings.Split(`    JSR Wait_Recal
MAIN: JSR DRAW
.loop: BSR DRAW
    LBSR DRAW
    JMP .loop
SPEED EQU 3`, "\n")},
		{ID: 1, Lines: strings.Split(`DRAW: JSR HELP
    RTS
HELP: JMP MAIN`, "\n")},
	}

	prog, assignment := FromAssembly(sections)
	assert.Equal(t, 0, assignment["MAIN"])
	assert.Equal(t, 1, assignment["DRAW"])
	assert.Equal(t, 1, assignment["HELP"])
	_, ok := assignment["SPEED"]
	assert.False(t, ok)

	res := Analyze(prog, assignment)
	assert.Len(t, res.Sites, 4)
	assert.Equal(t, []Pair{
		{CallerBank: 0, Callee: "DRAW", CalleeBank: 1},
		{CallerBank: 1, Callee: "MAIN", CalleeBank: 0},
	}, res.Pairs)
}
