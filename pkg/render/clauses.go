package render

import (
	"strings"

	"github.com/leapstack-labs/pgsqlgen/pkg/ast"
)

// renderBooleanList folds a WHERE/HAVING term list: every term is
// individually wrapped in parens, runs of the same connective flatten,
// and a change of connective re-parenthesizes only the accumulated
// left side.
func renderBooleanList(terms []ast.BooleanExpr, ctx *exprCtx) (string, error) {
	if len(terms) == 0 {
		return "", nil
	}
	first, err := renderParenTerm(terms[0].Expr, ctx)
	if err != nil {
		return "", err
	}
	acc := first
	lastOp := terms[0].Op
	for i := 1; i < len(terms); i++ {
		t := terms[i]
		rendered, err := renderParenTerm(t.Expr, ctx)
		if err != nil {
			return "", err
		}
		if t.Op != lastOp {
			acc = "(" + acc + ")"
		}
		acc = acc + " " + strings.ToUpper(string(t.Op)) + " " + rendered
		lastOp = t.Op
	}
	return acc, nil
}

func renderParenTerm(e ast.Expr, ctx *exprCtx) (string, error) {
	s, err := renderExpr(e, ctx)
	if err != nil {
		return "", err
	}
	return "(" + s + ")", nil
}

func renderOrderByList(items []ast.OrderByExpr, ctx *exprCtx) (string, error) {
	parts := make([]string, len(items))
	for i, item := range items {
		s, err := renderOrderByItem(item, ctx)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, ","), nil
}

func renderOrderByItem(item ast.OrderByExpr, ctx *exprCtx) (string, error) {
	expr, err := renderExpr(item.Expr, ctx)
	if err != nil {
		return "", err
	}
	var dir string
	switch item.Dir {
	case ast.DirDesc:
		dir = " DESC"
	default:
		dir = ""
	}
	var nulls string
	switch item.Nulls {
	case ast.NullsFirst:
		nulls = " NULLS FIRST"
	case ast.NullsLast:
		nulls = " NULLS LAST"
	}
	return expr + dir + nulls, nil
}

func combinationKeyword(kind ast.CombinationKind) (string, bool) {
	switch kind {
	case ast.CombineUnion:
		return "UNION", false
	case ast.CombineUnionAll:
		return "UNION", true
	case ast.CombineExcept:
		return "EXCEPT", false
	case ast.CombineExceptAll:
		return "EXCEPT", true
	case ast.CombineIntersect:
		return "INTERSECT", false
	case ast.CombineIntersectAll:
		return "INTERSECT", true
	default:
		return "", false
	}
}

// lowerJoinsToFromList re-expresses UPDATE/DELETE joins as a comma-
// separated FROM/USING source list, ANDing each join's ON-expression
// into the WHERE list. Only inner joins may be lowered this way.
func lowerJoinsToFromList(joins []ast.JoinExpr, ctx *exprCtx) (string, []ast.BooleanExpr, error) {
	var parts []string
	var extra []ast.BooleanExpr
	for _, j := range joins {
		if j.Qualifier != ast.JoinInner {
			return "", nil, unsupported("only INNER joins may be re-expressed as FROM/USING for UPDATE/DELETE", ctx.query)
		}
		if len(j.Hints) > 0 {
			return "", nil, unsupported("table hints are not supported for PostgreSQL", ctx.query)
		}
		src, err := getSourceSQL(asQuery(ctx.query), ctx.sources, j.Index, ctx.cfg)
		if err != nil {
			return "", nil, err
		}
		alias, err := ctx.sources.alias(j.Index)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, src+" AS "+alias)
		if j.On != nil {
			extra = append(extra, ast.BooleanExpr{Expr: j.On, Op: ast.BoolAnd})
		}
	}
	return strings.Join(parts, ", "), extra, nil
}

func joinKeyword(q ast.JoinQualifier) (string, bool, error) {
	switch q {
	case ast.JoinInner:
		return "INNER JOIN", true, nil
	case ast.JoinInnerLateral:
		return "INNER JOIN LATERAL", true, nil
	case ast.JoinLeft:
		return "LEFT OUTER JOIN", true, nil
	case ast.JoinLeftLateral:
		return "LEFT OUTER JOIN LATERAL", true, nil
	case ast.JoinRight:
		return "RIGHT OUTER JOIN", true, nil
	case ast.JoinFull:
		return "FULL OUTER JOIN", true, nil
	case ast.JoinCross:
		return "CROSS JOIN", false, nil
	default:
		return "", false, unsupported("unknown join qualifier", nil)
	}
}
