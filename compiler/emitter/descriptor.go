package emitter

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"strconv"

	"github.com/strogmv/moderr/compiler/ir"
)

// DescriptorArm maps one variant to its descriptor string. The generated
// matcher is a type switch on the variant struct, so an arm matches whatever
// the variant carries.
type DescriptorArm struct {
	Variant string
	Literal string
}

// DescriptorArms builds one arm per declared variant in declaration order.
// The sentinel gets no arm.
func DescriptorArms(spec ir.ErrorSpec) []DescriptorArm {
	declared := spec.Declared()
	arms := make([]DescriptorArm, 0, len(declared))
	for _, v := range declared {
		arms = append(arms, DescriptorArm{Variant: v.Name, Literal: v.Name})
	}
	return arms
}

// renderAsStrDecl renders the descriptor matcher as a type switch over the
// variant structs.
func renderAsStrDecl(view moduleView, arms []DescriptorArm) (string, error) {
	e := view.Error
	goNames := make(map[string]string, len(e.Variants))
	for _, v := range e.Variants {
		goNames[v.Name] = v.GoName
	}

	clauses := make([]ast.Stmt, 0, len(arms)+2)
	for _, arm := range arms {
		goName, ok := goNames[arm.Variant]
		if !ok {
			return "", fmt.Errorf("descriptor arm %s has no variant type", arm.Variant)
		}
		clauses = append(clauses, &ast.CaseClause{
			List: []ast.Expr{mustParseExpr(goName + view.TypeArgs)},
			Body: []ast.Stmt{&ast.ReturnStmt{Results: []ast.Expr{stringLit(arm.Literal)}}},
		})
	}
	clauses = append(clauses,
		&ast.CaseClause{
			List: []ast.Expr{mustParseExpr(e.Sentinel.GoName + view.TypeArgs)},
			Body: []ast.Stmt{panicStmt(stringLit(e.Sentinel.Panic))},
		},
		&ast.CaseClause{
			Body: []ast.Stmt{panicStmt(&ast.CallExpr{
				Fun:  mustParseExpr("fmt.Sprintf"),
				Args: []ast.Expr{stringLit("unreachable: unknown " + e.Name + " variant %T"), ast.NewIdent("err")},
			})},
		},
	)

	fn := &ast.FuncDecl{
		Name: ast.NewIdent(e.AsStr),
		Type: &ast.FuncType{
			TypeParams: typeParamList(view.params),
			Params: &ast.FieldList{List: []*ast.Field{{
				Names: []*ast.Ident{ast.NewIdent("err")},
				Type:  mustParseExpr(e.Name + view.TypeArgs),
			}}},
			Results: &ast.FieldList{List: []*ast.Field{{Type: ast.NewIdent("string")}}},
		},
		Body: &ast.BlockStmt{List: []ast.Stmt{
			&ast.TypeSwitchStmt{
				Assign: &ast.ExprStmt{X: &ast.TypeAssertExpr{X: ast.NewIdent("err")}},
				Body:   &ast.BlockStmt{List: clauses},
			},
		}},
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// %s returns the variant name of err.\n", e.AsStr)
	if err := format.Node(&buf, token.NewFileSet(), fn); err != nil {
		return "", fmt.Errorf("format descriptor %s: %w", e.AsStr, err)
	}
	return buf.String(), nil
}

func typeParamList(params []typeParamView) *ast.FieldList {
	if len(params) == 0 {
		return nil
	}
	fields := make([]*ast.Field, 0, len(params))
	for _, p := range params {
		fields = append(fields, &ast.Field{
			Names: []*ast.Ident{ast.NewIdent(p.Name)},
			Type:  mustParseExpr(p.Constraint),
		})
	}
	return &ast.FieldList{List: fields}
}

func panicStmt(arg ast.Expr) ast.Stmt {
	return &ast.ExprStmt{X: &ast.CallExpr{Fun: ast.NewIdent("panic"), Args: []ast.Expr{arg}}}
}

func stringLit(s string) *ast.BasicLit {
	return &ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(s)}
}

func mustParseExpr(src string) ast.Expr {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		panic(fmt.Sprintf("invalid generated expression %q: %v", src, err))
	}
	return expr
}
