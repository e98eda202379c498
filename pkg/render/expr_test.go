package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pgsqlgen/pkg/ast"
)

func newCtx(t *testing.T, sources []ast.Source) *exprCtx {
	t.Helper()
	st, err := buildSourceTable(sources)
	require.NoError(t, err)
	return &exprCtx{sources: st}
}

func TestRenderExpr_Literals(t *testing.T) {
	ctx := newCtx(t, nil)

	tests := []struct {
		name string
		e    ast.Expr
		want string
	}{
		{"int", ast.IntLit{Value: 42}, "42"},
		{"float", ast.FloatLit{Value: 3.5}, "3.5::float"},
		{"bool true", ast.BoolLit{Value: true}, "TRUE"},
		{"bool false", ast.BoolLit{Value: false}, "FALSE"},
		{"null", ast.NullLit{}, "NULL"},
		{"string", ast.StringLit{Value: "it's"}, "'it''s'"},
		{"decimal", ast.DecimalLit{Value: "12.50"}, "12.50"},
		{"param", ast.Param{Index: 0}, "$1"},
		{"count star", ast.CountStar{}, "count(*)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderExpr(tt.e, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderExpr_FieldRef(t *testing.T) {
	ctx := newCtx(t, []ast.Source{
		{Kind: ast.SourceTable, Table: &ast.TableSource{Name: "users"}},
	})
	got, err := renderExpr(ast.FieldRef{SourceIndex: 0, Field: "email"}, ctx)
	require.NoError(t, err)
	assert.Equal(t, `u0."email"`, got)
}

func TestRenderExpr_BinaryOperatorsAndParenthesization(t *testing.T) {
	ctx := newCtx(t, nil)
	expr := ast.BinaryExpr{
		Op:   ast.OpAnd,
		Left: ast.BinaryExpr{Op: ast.OpEq, Left: ast.IntLit{Value: 1}, Right: ast.IntLit{Value: 1}},
		Right: ast.BinaryExpr{Op: ast.OpGt, Left: ast.IntLit{Value: 2}, Right: ast.IntLit{Value: 1}},
	}
	got, err := renderExpr(expr, ctx)
	require.NoError(t, err)
	assert.Equal(t, "(1 = 1) AND (2 > 1)", got)
}

func TestRenderInExpr(t *testing.T) {
	ctx := newCtx(t, nil)

	got, err := renderExpr(ast.InExpr{Kind: ast.InEmpty}, ctx)
	require.NoError(t, err)
	assert.Equal(t, "false", got)

	got, err = renderExpr(ast.InExpr{
		Kind:   ast.InLiterals,
		Left:   ast.FieldRef{SourceIndex: -1},
		Values: []ast.Expr{ast.IntLit{Value: 1}, ast.IntLit{Value: 2}},
	}, &exprCtx{sources: &sourceTable{entries: []sourceEntry{{Alias: "u0"}}}})
	require.Error(t, err)

	got, err = renderExpr(ast.InExpr{
		Kind: ast.InParam,
		Left: ast.IntLit{Value: 1},
		Param: ast.Param{Index: 0},
	}, ctx)
	require.NoError(t, err)
	assert.Equal(t, "1 = ANY($1)", got)
}

func TestRenderIsNull(t *testing.T) {
	ctx := newCtx(t, nil)
	got, err := renderExpr(ast.IsNullExpr{Expr: ast.IntLit{Value: 1}}, ctx)
	require.NoError(t, err)
	assert.Equal(t, "1 IS NULL", got)

	got, err = renderExpr(ast.IsNullExpr{Expr: ast.IntLit{Value: 1}, Not: true}, ctx)
	require.NoError(t, err)
	assert.Equal(t, "1 IS NOT NULL", got)
}

func TestRenderFragment_WrapsLeadingSelect(t *testing.T) {
	ctx := newCtx(t, nil)
	frag := ast.Fragment{Parts: []ast.FragmentPart{
		ast.RawPart{Bytes: []byte("SELECT count(*) FROM t WHERE id = ")},
		ast.ExprPart{Expr: ast.IntLit{Value: 5}},
	}}
	got, err := renderExpr(frag, ctx)
	require.NoError(t, err)
	assert.Equal(t, "(SELECT count(*) FROM t WHERE id = 5)", got)
}

func TestRenderFragment_NonSelectIsNotWrapped(t *testing.T) {
	ctx := newCtx(t, nil)
	frag := ast.Fragment{Parts: []ast.FragmentPart{
		ast.RawPart{Bytes: []byte("lower(")},
		ast.ExprPart{Expr: ast.StringLit{Value: "X"}},
		ast.RawPart{Bytes: []byte(")")},
	}}
	got, err := renderExpr(frag, ctx)
	require.NoError(t, err)
	assert.Equal(t, "lower('X')", got)
}

func TestRenderIntervalAdd(t *testing.T) {
	ctx := newCtx(t, []ast.Source{
		{Kind: ast.SourceTable, Table: &ast.TableSource{Name: "users"}},
	})
	got, err := renderExpr(ast.IntervalAdd{
		Kind:   ast.DatetimeAdd,
		Expr:   ast.FieldRef{SourceIndex: 0, Field: "inserted_at"},
		Amount: ast.IntLit{Value: 3},
		Unit:   "day",
	}, ctx)
	require.NoError(t, err)
	assert.Equal(t, `u0."inserted_at"::timestamp + interval '3 day'`, got)
}

func TestRenderIntervalAdd_DateKindRecasts(t *testing.T) {
	ctx := newCtx(t, nil)
	got, err := renderExpr(ast.IntervalAdd{
		Kind:   ast.DateAdd,
		Expr:   ast.IntLit{Value: 1},
		Amount: ast.IntLit{Value: 2},
		Unit:   "month",
	}, ctx)
	require.NoError(t, err)
	assert.Equal(t, "(1::date + interval '2 month')::date", got)
}

func TestRenderCall_DistinctAndBinaryAlias(t *testing.T) {
	ctx := newCtx(t, nil)

	got, err := renderExpr(ast.Call{Func: "count", Args: []ast.Expr{ast.IntLit{Value: 1}, ast.DistinctMarker{}}}, ctx)
	require.NoError(t, err)
	assert.Equal(t, "count(DISTINCT 1)", got)

	got, err = renderExpr(ast.Call{Func: "==", Args: []ast.Expr{ast.IntLit{Value: 1}, ast.IntLit{Value: 1}}}, ctx)
	require.NoError(t, err)
	assert.Equal(t, "1 = 1", got)

	got, err = renderExpr(ast.Call{Func: "lower", Args: []ast.Expr{ast.StringLit{Value: "X"}}}, ctx)
	require.NoError(t, err)
	assert.Equal(t, "lower('X')", got)
}

func TestRenderTagged(t *testing.T) {
	ctx := newCtx(t, nil)

	got, err := renderExpr(ast.Tagged{Value: ast.IntLit{Value: 7}, Type: "id"}, ctx)
	require.NoError(t, err)
	assert.Equal(t, "7::bigint", got)

	got, err = renderExpr(ast.Tagged{Value: ast.BytesLit{Value: []byte{0xab}}, Type: "binary"}, ctx)
	require.NoError(t, err)
	assert.Equal(t, `'\xab'::bytea`, got)

	got, err = renderExpr(ast.Tagged{Value: ast.IntLit{Value: 1}, Type: "string[]"}, ctx)
	require.NoError(t, err)
	assert.Equal(t, "1::varchar[]", got)
}

func TestRenderTagged_MapUsesConfiguredType(t *testing.T) {
	ctx := &exprCtx{sources: &sourceTable{}, cfg: Config{MapType: "json"}}

	got, err := renderExpr(ast.Tagged{Value: ast.StringLit{Value: "{}"}, Type: "map"}, ctx)
	require.NoError(t, err)
	assert.Equal(t, "'{}'::json", got)
}

func TestRenderTagged_MapWithoutConfiguredTypeErrors(t *testing.T) {
	ctx := &exprCtx{sources: &sourceTable{}}

	_, err := renderExpr(ast.Tagged{Value: ast.StringLit{Value: "{}"}, Type: "map"}, ctx)
	require.Error(t, err)
}

func TestRenderBooleanList_GroupsOnConnectiveChange(t *testing.T) {
	ctx := newCtx(t, nil)
	terms := []ast.BooleanExpr{
		{Expr: ast.IntLit{Value: 1}, Op: ast.BoolAnd},
		{Expr: ast.IntLit{Value: 2}, Op: ast.BoolAnd},
		{Expr: ast.IntLit{Value: 3}, Op: ast.BoolOr},
	}
	got, err := renderBooleanList(terms, ctx)
	require.NoError(t, err)
	assert.Equal(t, "((1) AND (2)) OR (3)", got)
}

func TestRenderBooleanList_GroupsOnConnectiveChangeAtSecondTerm(t *testing.T) {
	ctx := newCtx(t, nil)
	terms := []ast.BooleanExpr{
		{Expr: ast.IntLit{Value: 1}, Op: ast.BoolAnd},
		{Expr: ast.IntLit{Value: 2}, Op: ast.BoolOr},
	}
	got, err := renderBooleanList(terms, ctx)
	require.NoError(t, err)
	assert.Equal(t, "((1)) OR (2)", got)
}

func TestRenderOrderByList(t *testing.T) {
	ctx := newCtx(t, nil)
	items := []ast.OrderByExpr{
		{Expr: ast.IntLit{Value: 1}, Dir: ast.DirDesc},
		{Expr: ast.IntLit{Value: 2}, Nulls: ast.NullsLast},
	}
	got, err := renderOrderByList(items, ctx)
	require.NoError(t, err)
	assert.Equal(t, "1 DESC,2 NULLS LAST", got)
}
