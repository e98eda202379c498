package render

import (
	"strings"

	"github.com/leapstack-labs/pgsqlgen/pkg/ast"
)

// All renders a SELECT statement.
func All(q *ast.Query, cfg Config) ([]byte, error) {
	st, err := buildSourceTable(q.Sources)
	if err != nil {
		return nil, err
	}
	ctx := &exprCtx{sources: st, query: q, cfg: cfg}

	var sb strings.Builder

	with, err := renderWith(q.With, q, cfg)
	if err != nil {
		return nil, err
	}
	sb.WriteString(with)

	sel, err := renderSelectList(q, ctx)
	if err != nil {
		return nil, err
	}
	sb.WriteString(sel)

	from, err := renderFrom(q, st, cfg)
	if err != nil {
		return nil, err
	}
	sb.WriteString(from)

	joins, err := renderJoins(q.Joins, ctx)
	if err != nil {
		return nil, err
	}
	sb.WriteString(joins)

	where, err := renderBooleanList(q.Wheres, ctx)
	if err != nil {
		return nil, err
	}
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	if len(q.GroupBys) > 0 {
		g, err := renderExprSlice(q.GroupBys, ctx)
		if err != nil {
			return nil, err
		}
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(g, ","))
	}

	having, err := renderBooleanList(q.Havings, ctx)
	if err != nil {
		return nil, err
	}
	if having != "" {
		sb.WriteString(" HAVING ")
		sb.WriteString(having)
	}

	if len(q.Windows) > 0 {
		w, err := renderWindowClause(q.Windows, ctx)
		if err != nil {
			return nil, err
		}
		sb.WriteString(" WINDOW ")
		sb.WriteString(w)
	}

	for _, c := range q.Combinations {
		s, err := renderCombination(c, cfg)
		if err != nil {
			return nil, err
		}
		sb.WriteString(s)
	}

	orderBy, err := effectiveOrderBy(q, ctx)
	if err != nil {
		return nil, err
	}
	if orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(orderBy)
	}

	if q.Limit != nil {
		lim, err := renderExpr(q.Limit, ctx)
		if err != nil {
			return nil, err
		}
		sb.WriteString(" LIMIT ")
		sb.WriteString(lim)
	}
	if q.Offset != nil {
		off, err := renderExpr(q.Offset, ctx)
		if err != nil {
			return nil, err
		}
		sb.WriteString(" OFFSET ")
		sb.WriteString(off)
	}
	if q.Lock != nil {
		sb.WriteString(" ")
		sb.WriteString(q.Lock.Clause)
	}

	return []byte(sb.String()), nil
}

func renderWith(w *ast.WithClause, query any, cfg Config) (string, error) {
	if w == nil || len(w.Queries) == 0 {
		return "", nil
	}
	var parts []string
	for _, named := range w.Queries {
		name, err := quoteName(named.Name)
		if err != nil {
			return "", err
		}
		var body string
		switch {
		case named.Query != nil:
			sql, err := All(named.Query, cfg)
			if err != nil {
				return "", err
			}
			body = "(" + string(sql) + ")"
		case named.Fragment != nil:
			ctx := &exprCtx{sources: &sourceTable{}, query: query, cfg: cfg}
			s, err := renderFragment(ast.Fragment{Parts: named.Fragment}, ctx)
			if err != nil {
				return "", err
			}
			body = s
		default:
			return "", unsupported("CTE has neither a query nor a fragment body", query)
		}
		parts = append(parts, name+" AS "+body)
	}
	prefix := "WITH "
	if w.Recursive {
		prefix = "WITH RECURSIVE "
	}
	return prefix + strings.Join(parts, ", ") + " ", nil
}

// renderSelectList renders the SELECT clause, including the empty ->
// "SELECT TRUE" rule and source-ref row expansion.
func renderSelectList(q *ast.Query, ctx *exprCtx) (string, error) {
	distinctKw, err := renderDistinctKeyword(q.Distinct, ctx)
	if err != nil {
		return "", err
	}
	if len(q.Select) == 0 {
		return "SELECT" + distinctKw + " TRUE", nil
	}
	parts := make([]string, 0, len(q.Select))
	for _, e := range q.Select {
		if ref, ok := e.(ast.SourceRef); ok {
			entry, err := ctx.sources.get(ref.SourceIndex)
			if err != nil {
				return "", err
			}
			if entry.Schema == "" {
				return "", missingSchema(ref.SourceIndex, q)
			}
			parts = append(parts, entry.Alias+".*")
			continue
		}
		s, err := renderExpr(e, ctx)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return "SELECT" + distinctKw + " " + strings.Join(parts, ","), nil
}

func renderDistinctKeyword(d *ast.DistinctClause, ctx *exprCtx) (string, error) {
	if d == nil {
		return "", nil
	}
	if len(d.OnExprs) > 0 {
		exprs, err := renderOrderByList(d.OnExprs, ctx)
		if err != nil {
			return "", err
		}
		return " DISTINCT ON (" + exprs + ")", nil
	}
	if d.Plain {
		return " DISTINCT", nil
	}
	return "", nil
}

// effectiveOrderBy prepends DISTINCT ON's exprs to ORDER BY.
func effectiveOrderBy(q *ast.Query, ctx *exprCtx) (string, error) {
	items := q.OrderBys
	if q.Distinct != nil && len(q.Distinct.OnExprs) > 0 {
		items = append(append([]ast.OrderByExpr{}, q.Distinct.OnExprs...), items...)
	}
	if len(items) == 0 {
		return "", nil
	}
	return renderOrderByList(items, ctx)
}

func renderFrom(q *ast.Query, st *sourceTable, cfg Config) (string, error) {
	if q.From == nil {
		return "", unsupported("query has no FROM source", q)
	}
	if len(q.From.Hints) > 0 {
		return "", unsupported("table hints are not supported for PostgreSQL", q)
	}
	src, err := getSourceSQL(q, st, q.From.Index, cfg)
	if err != nil {
		return "", err
	}
	entry, err := st.get(q.From.Index)
	if err != nil {
		return "", err
	}
	return " FROM " + src + " AS " + entry.Alias, nil
}

// getSourceSQL materializes the rendered SQL for sources.get(idx): the
// pre-quoted table text for real tables, or the rendered subquery/
// fragment form otherwise.
func getSourceSQL(q *ast.Query, st *sourceTable, idx int, cfg Config) (string, error) {
	if idx < 0 || idx >= len(q.Sources) {
		return "", unsupported("source index out of range", q)
	}
	src := q.Sources[idx]
	switch src.Kind {
	case ast.SourceTable:
		entry, err := st.get(idx)
		if err != nil {
			return "", err
		}
		return entry.Rendered, nil
	case ast.SourceSubquery:
		sql, err := All(src.Subquery, cfg)
		if err != nil {
			return "", err
		}
		return "(" + string(sql) + ")", nil
	case ast.SourceFragment:
		ctx := &exprCtx{sources: st, query: q, cfg: cfg}
		return renderFragment(ast.Fragment{Parts: src.Fragment}, ctx)
	default:
		return "", unsupported("unknown source kind", q)
	}
}

func renderJoins(joins []ast.JoinExpr, ctx *exprCtx) (string, error) {
	var sb strings.Builder
	for _, j := range joins {
		if len(j.Hints) > 0 {
			return "", unsupported("table hints are not supported for PostgreSQL", ctx.query)
		}
		kw, hasOn, err := joinKeyword(j.Qualifier)
		if err != nil {
			return "", err
		}
		src, err := getSourceSQL(asQuery(ctx.query), ctx.sources, j.Index, ctx.cfg)
		if err != nil {
			return "", err
		}
		alias, err := ctx.sources.alias(j.Index)
		if err != nil {
			return "", err
		}
		sb.WriteString(" ")
		sb.WriteString(kw)
		sb.WriteString(" ")
		sb.WriteString(src)
		sb.WriteString(" AS ")
		sb.WriteString(alias)
		if hasOn && j.On != nil {
			onSQL, err := renderExpr(j.On, ctx)
			if err != nil {
				return "", err
			}
			sb.WriteString(" ON ")
			sb.WriteString(onSQL)
		}
	}
	return sb.String(), nil
}

func asQuery(v any) *ast.Query {
	if q, ok := v.(*ast.Query); ok {
		return q
	}
	return nil
}

func renderWindowClause(windows []ast.NamedWindow, ctx *exprCtx) (string, error) {
	parts := make([]string, len(windows))
	for i, w := range windows {
		name, err := quoteName(w.Name)
		if err != nil {
			return "", err
		}
		def, err := renderWindowDef(w.Def, ctx)
		if err != nil {
			return "", err
		}
		parts[i] = name + " AS (" + def + ")"
	}
	return strings.Join(parts, ","), nil
}

func renderCombination(c ast.Combination, cfg Config) (string, error) {
	kw, all, ok := combinationKeywordAll(c.Kind)
	if !ok {
		return "", unsupported("unknown combination kind", c.Query)
	}
	sql, err := All(c.Query, cfg)
	if err != nil {
		return "", err
	}
	suffix := ""
	if all {
		suffix = " ALL"
	}
	return " " + kw + suffix + " (" + string(sql) + ")", nil
}

func combinationKeywordAll(kind ast.CombinationKind) (string, bool, bool) {
	kw, all := combinationKeyword(kind)
	return kw, all, kw != ""
}
