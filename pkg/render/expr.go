package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/pgsqlgen/pkg/ast"
)

// exprCtx threads the shared, read-only state an expression render
// needs: the source table for alias lookups, the query being rendered
// (attached to errors), and the render config. Nothing here is mutated;
// rendering is pure.
type exprCtx struct {
	sources *sourceTable
	query   any
	cfg     Config
}

// binaryTokens is the static operator table.
var binaryTokens = map[ast.BinaryOp]string{
	ast.OpEq:    "=",
	ast.OpNeq:   "!=",
	ast.OpLte:   "<=",
	ast.OpGte:   ">=",
	ast.OpLt:    "<",
	ast.OpGt:    ">",
	ast.OpAdd:   "+",
	ast.OpSub:   "-",
	ast.OpMul:   "*",
	ast.OpDiv:   "/",
	ast.OpAnd:   "AND",
	ast.OpOr:    "OR",
	ast.OpILike: "ILIKE",
	ast.OpLike:  "LIKE",
}

// renderExpr is the single entry point for rendering any expression node.
func renderExpr(e ast.Expr, ctx *exprCtx) (string, error) {
	switch n := e.(type) {
	case ast.IntLit:
		return strconv.FormatInt(n.Value, 10), nil
	case ast.FloatLit:
		return strconv.FormatFloat(n.Value, 'g', -1, 64) + "::float", nil
	case ast.BoolLit:
		if n.Value {
			return "TRUE", nil
		}
		return "FALSE", nil
	case ast.NullLit:
		return "NULL", nil
	case ast.StringLit:
		return singleQuote(n.Value), nil
	case ast.BytesLit:
		return quoteBytea(n.Value), nil
	case ast.DecimalLit:
		return n.Value, nil
	case ast.Tagged:
		return renderTagged(n, ctx)
	case ast.Param:
		return "$" + strconv.Itoa(n.Index+1), nil
	case ast.FieldRef:
		return renderFieldRef(n, ctx)
	case ast.SourceRef:
		return ctx.sources.alias(n.SourceIndex)
	case ast.Subquery:
		return renderSubqueryExpr(n, ctx)
	case ast.BinaryExpr:
		return renderBinaryExpr(n, ctx)
	case ast.InExpr:
		return renderInExpr(n, ctx)
	case ast.IsNullExpr:
		return renderIsNull(n, ctx)
	case ast.NotExpr:
		inner, err := renderExpr(n.Expr, ctx)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	case ast.Fragment:
		return renderFragment(n, ctx)
	case ast.IntervalAdd:
		return renderIntervalAdd(n, ctx)
	case ast.FilterExpr:
		return renderFilter(n, ctx)
	case ast.OverExpr:
		return renderOver(n, ctx)
	case ast.TupleExpr:
		return renderList(n.Elements, ctx, "(", ")")
	case ast.ListExpr:
		return renderList(n.Elements, ctx, "ARRAY[", "]")
	case ast.CountStar:
		return "count(*)", nil
	case ast.Call:
		return renderCall(n, ctx)
	case ast.DistinctMarker:
		return "", unsupported("DISTINCT marker cannot be rendered standalone", ctx.query)
	default:
		return "", unsupported(fmt.Sprintf("unrenderable expression node %T", e), ctx.query)
	}
}

// isBinaryHead reports whether e is itself a binary-op node, the
// condition the operand parenthesizer checks before wrapping a child
// operand in parens.
func isBinaryHead(e ast.Expr) bool {
	_, ok := e.(ast.BinaryExpr)
	return ok
}

// renderOperand renders e the way it appears as a child of another
// binary expression: parenthesized iff its own head is a binary op.
func renderOperand(e ast.Expr, ctx *exprCtx) (string, error) {
	s, err := renderExpr(e, ctx)
	if err != nil {
		return "", err
	}
	if isBinaryHead(e) {
		return "(" + s + ")", nil
	}
	return s, nil
}

func renderBinaryExpr(n ast.BinaryExpr, ctx *exprCtx) (string, error) {
	token, ok := binaryTokens[n.Op]
	if !ok {
		return "", unsupported(fmt.Sprintf("unknown binary operator %q", n.Op), ctx.query)
	}
	left, err := renderOperand(n.Left, ctx)
	if err != nil {
		return "", err
	}
	right, err := renderOperand(n.Right, ctx)
	if err != nil {
		return "", err
	}
	return left + " " + token + " " + right, nil
}

func renderFieldRef(n ast.FieldRef, ctx *exprCtx) (string, error) {
	alias, err := ctx.sources.alias(n.SourceIndex)
	if err != nil {
		return "", err
	}
	field, err := quoteName(n.Field)
	if err != nil {
		return "", err
	}
	return alias + "." + field, nil
}

func renderSubqueryExpr(n ast.Subquery, ctx *exprCtx) (string, error) {
	sql, err := All(n.Query, ctx.cfg)
	if err != nil {
		return "", err
	}
	return "(" + string(sql) + ")", nil
}

// renderInExpr renders the four IN-expression shapes.
func renderInExpr(n ast.InExpr, ctx *exprCtx) (string, error) {
	switch n.Kind {
	case ast.InEmpty:
		return "false", nil
	case ast.InLiterals:
		left, err := renderExpr(n.Left, ctx)
		if err != nil {
			return "", err
		}
		vals, err := renderExprSlice(n.Values, ctx)
		if err != nil {
			return "", err
		}
		return left + " IN (" + strings.Join(vals, ",") + ")", nil
	case ast.InParam:
		left, err := renderExpr(n.Left, ctx)
		if err != nil {
			return "", err
		}
		param, err := renderExpr(n.Param, ctx)
		if err != nil {
			return "", err
		}
		return left + " = ANY(" + param + ")", nil
	case ast.InSubquery:
		left, err := renderExpr(n.Left, ctx)
		if err != nil {
			return "", err
		}
		sub, err := renderExpr(n.Sub, ctx)
		if err != nil {
			return "", err
		}
		return left + " = ANY(" + sub + ")", nil
	default:
		return "", unsupported(fmt.Sprintf("unknown IN kind %v", n.Kind), ctx.query)
	}
}

func renderIsNull(n ast.IsNullExpr, ctx *exprCtx) (string, error) {
	inner, err := renderExpr(n.Expr, ctx)
	if err != nil {
		return "", err
	}
	if n.Not {
		return inner + " IS NOT NULL", nil
	}
	return inner + " IS NULL", nil
}

// renderFragment renders a raw-SQL fragment, including the
// parens_for_select heuristic: when the first raw part starts
// (case-insensitively) with SELECT, the whole fragment is wrapped in
// parens so it composes as a scalar subquery inside a larger expression.
// This intentionally only looks at the first raw part; a fragment whose
// first part is whitespace before SELECT is not detected, and that is
// not "fixed" here.
func renderFragment(n ast.Fragment, ctx *exprCtx) (string, error) {
	var sb strings.Builder
	for _, part := range n.Parts {
		switch p := part.(type) {
		case ast.RawPart:
			sb.Write(p.Bytes)
		case ast.ExprPart:
			s, err := renderExpr(p.Expr, ctx)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		default:
			return "", unsupported(fmt.Sprintf("unsupported fragment part %T; keyword/tuple-3 fragments are rejected", part), ctx.query)
		}
	}
	out := sb.String()
	if len(n.Parts) > 0 {
		if raw, ok := n.Parts[0].(ast.RawPart); ok {
			trimmed := strings.TrimLeft(string(raw.Bytes), " \t\r\n")
			if strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") && trimmed == string(raw.Bytes) {
				return "(" + out + ")", nil
			}
		}
	}
	return out, nil
}

// renderIntervalAdd renders datetime_add / date_add interval arithmetic.
func renderIntervalAdd(n ast.IntervalAdd, ctx *exprCtx) (string, error) {
	base, err := renderExpr(n.Expr, ctx)
	if err != nil {
		return "", err
	}
	if _, tagged := n.Expr.(ast.Tagged); !tagged {
		if n.Kind == ast.DateAdd {
			base = base + "::date"
		} else {
			base = base + "::timestamp"
		}
	}
	interval, err := renderIntervalAmount(n.Amount, n.Unit, ctx)
	if err != nil {
		return "", err
	}
	result := base + " + " + interval
	if n.Kind == ast.DateAdd {
		result = "(" + result + ")::date"
	}
	return result, nil
}

func renderIntervalAmount(amount ast.Expr, unit string, ctx *exprCtx) (string, error) {
	switch a := amount.(type) {
	case ast.IntLit:
		return fmt.Sprintf("interval '%d %s'", a.Value, unit), nil
	case ast.FloatLit:
		return fmt.Sprintf("interval '%s %s'", strconv.FormatFloat(a.Value, 'f', -1, 64), unit), nil
	default:
		rendered, err := renderExpr(amount, ctx)
		if err != nil {
			return "", err
		}
		return "(" + rendered + "::numeric * interval '1 " + unit + "')", nil
	}
}

func renderFilter(n ast.FilterExpr, ctx *exprCtx) (string, error) {
	agg, err := renderExpr(n.Agg, ctx)
	if err != nil {
		return "", err
	}
	cond, err := renderExpr(n.Cond, ctx)
	if err != nil {
		return "", err
	}
	return agg + " FILTER (WHERE " + cond + ")", nil
}

func renderOver(n ast.OverExpr, ctx *exprCtx) (string, error) {
	agg, err := renderExpr(n.Agg, ctx)
	if err != nil {
		return "", err
	}
	if n.Target.Spec == nil {
		return agg + " OVER " + n.Target.Name, nil
	}
	spec, err := renderWindowDef(*n.Target.Spec, ctx)
	if err != nil {
		return "", err
	}
	return agg + " OVER (" + spec + ")", nil
}

func renderWindowDef(w ast.WindowDef, ctx *exprCtx) (string, error) {
	var parts []string
	if len(w.PartitionBy) > 0 {
		exprs, err := renderExprSlice(w.PartitionBy, ctx)
		if err != nil {
			return "", err
		}
		parts = append(parts, "PARTITION BY "+strings.Join(exprs, ","))
	}
	if len(w.OrderBy) > 0 {
		ob, err := renderOrderByList(w.OrderBy, ctx)
		if err != nil {
			return "", err
		}
		parts = append(parts, "ORDER BY "+ob)
	}
	return strings.Join(parts, " "), nil
}

func renderList(elements []ast.Expr, ctx *exprCtx, open, close string) (string, error) {
	vals, err := renderExprSlice(elements, ctx)
	if err != nil {
		return "", err
	}
	return open + strings.Join(vals, ",") + close, nil
}

func renderExprSlice(elements []ast.Expr, ctx *exprCtx) ([]string, error) {
	out := make([]string, len(elements))
	for i, e := range elements {
		s, err := renderExpr(e, ctx)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// renderCall renders a generic function call node.
func renderCall(n ast.Call, ctx *exprCtx) (string, error) {
	if len(n.Args) == 2 {
		if _, ok := n.Args[1].(ast.DistinctMarker); ok {
			rest, err := renderExpr(n.Args[0], ctx)
			if err != nil {
				return "", err
			}
			return n.Func + "(DISTINCT " + rest + ")", nil
		}
	}
	if len(n.Args) == 2 {
		if op, ok := binaryOpForFunc(n.Func); ok {
			return renderBinaryExpr(ast.BinaryExpr{Op: op, Left: n.Args[0], Right: n.Args[1]}, ctx)
		}
	}
	args, err := renderExprSlice(n.Args, ctx)
	if err != nil {
		return "", err
	}
	return n.Func + "(" + strings.Join(args, ",") + ")", nil
}

// binaryOpForFunc lets a generic Call spell a binary operator by its
// symbolic name (==, !=, <=, ...) instead of requiring a BinaryExpr node.
func binaryOpForFunc(name string) (ast.BinaryOp, bool) {
	switch ast.BinaryOp(name) {
	case ast.OpEq, ast.OpNeq, ast.OpLte, ast.OpGte, ast.OpLt, ast.OpGt,
		ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpAnd, ast.OpOr,
		ast.OpILike, ast.OpLike:
		return ast.BinaryOp(name), true
	default:
		return "", false
	}
}

// renderTagged renders the two Tagged forms: a binary payload becomes
// a bytea literal, everything else gets a ::dbtype cast via taggedToDB.
func renderTagged(n ast.Tagged, ctx *exprCtx) (string, error) {
	if b, ok := n.Value.(ast.BytesLit); ok {
		_ = b
		return renderExpr(n.Value, ctx)
	}
	inner, err := renderExpr(n.Value, ctx)
	if err != nil {
		return "", err
	}
	dbType, err := taggedToDB(n.Type, ctx.cfg)
	if err != nil {
		return "", err
	}
	return inner + "::" + dbType, nil
}

// taggedToDB maps a logical type tag to its PostgreSQL cast target,
// mirroring the rules used by the DDL renderer for consistency between
// a column's declared type and its parameter casts. "id"/"integer" cast
// to bigint here rather than the DDL-column integer type, since a
// parameter comparison needs the wider type regardless of how the
// column itself was declared.
func taggedToDB(tag string, cfg Config) (string, error) {
	array := strings.HasSuffix(tag, "[]")
	base := strings.TrimSuffix(tag, "[]")
	var dbType string
	switch base {
	case "id", "integer":
		dbType = "bigint"
	default:
		var err error
		dbType, err = scalarTypeToSQL(base, cfg)
		if err != nil {
			return "", err
		}
	}
	if array {
		return dbType + "[]", nil
	}
	return dbType, nil
}
