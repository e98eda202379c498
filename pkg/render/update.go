package render

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/pgsqlgen/pkg/ast"
)

// UpdateAll renders an UPDATE driven by a full query, with joins
// lowered to FROM.
func UpdateAll(q *ast.Query, prefix string, cfg Config) ([]byte, error) {
	st, err := buildSourceTable(q.Sources)
	if err != nil {
		return nil, err
	}
	ctx := &exprCtx{sources: st, query: q, cfg: cfg}

	if q.From == nil {
		return nil, unsupported("UPDATE query has no target source", q)
	}
	if len(q.From.Hints) > 0 {
		return nil, unsupported("table hints are not supported for PostgreSQL", q)
	}
	target, err := updateTarget(q, st, prefix)
	if err != nil {
		return nil, err
	}

	setClause, err := renderUpdateOps(q.Updates, q, ctx)
	if err != nil {
		return nil, err
	}

	fromList, extraWheres, err := lowerJoinsToFromList(q.Joins, ctx)
	if err != nil {
		return nil, err
	}

	wheres := append(append([]ast.BooleanExpr{}, q.Wheres...), extraWheres...)
	where, err := renderBooleanList(wheres, ctx)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(target)
	sb.WriteString(" SET ")
	sb.WriteString(setClause)
	if fromList != "" {
		sb.WriteString(" FROM ")
		sb.WriteString(fromList)
	}
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	r, err := renderReturning(q.Select, ctx)
	if err != nil {
		return nil, err
	}
	sb.WriteString(r)
	return []byte(sb.String()), nil
}

func updateTarget(q *ast.Query, st *sourceTable, prefix string) (string, error) {
	entry, err := st.get(q.From.Index)
	if err != nil {
		return "", err
	}
	src := q.Sources[q.From.Index]
	if src.Kind != ast.SourceTable {
		return "", unsupported("UPDATE target must be a real table", q)
	}
	rendered, err := quoteTable(prefix, src.Table.Name)
	if err != nil {
		return "", err
	}
	return rendered + " AS " + entry.Alias, nil
}

// renderUpdateOps renders the four update operators (set, increment,
// push, pull).
func renderUpdateOps(ops []ast.UpdateOp, q *ast.Query, ctx *exprCtx) (string, error) {
	target, err := ctx.sources.alias(q.From.Index)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(ops))
	for i, op := range ops {
		col, err := quoteName(op.Key)
		if err != nil {
			return "", err
		}
		val, err := renderExpr(op.Expr, ctx)
		if err != nil {
			return "", err
		}
		switch op.Op {
		case ast.UpdateSet:
			parts[i] = col + " = " + val
		case ast.UpdateInc:
			parts[i] = col + " = " + target + "." + col + " + " + val
		case ast.UpdatePush:
			parts[i] = col + " = array_append(" + target + "." + col + ", " + val + ")"
		case ast.UpdatePull:
			parts[i] = col + " = array_remove(" + target + "." + col + ", " + val + ")"
		default:
			return "", unknownUpdateOp(string(op.Op), q)
		}
	}
	return strings.Join(parts, ","), nil
}

func renderReturning(fields []ast.Expr, ctx *exprCtx) (string, error) {
	if len(fields) == 0 {
		return "", nil
	}
	parts, err := renderReturningFields(fields, ctx)
	if err != nil {
		return "", err
	}
	return " RETURNING " + strings.Join(parts, ","), nil
}

func renderReturningFields(fields []ast.Expr, ctx *exprCtx) ([]string, error) {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if ref, ok := f.(ast.SourceRef); ok {
			entry, err := ctx.sources.get(ref.SourceIndex)
			if err != nil {
				return nil, err
			}
			if entry.Schema == "" {
				return nil, missingSchema(ref.SourceIndex, ctx.query)
			}
			parts = append(parts, entry.Alias+".*")
			continue
		}
		s, err := renderExpr(f, ctx)
		if err != nil {
			return nil, err
		}
		parts = append(parts, s)
	}
	return parts, nil
}

// Update renders the single-row, by-primary-key UPDATE form. fields
// and filters are ordered column-name lists; their values are supplied
// positionally as $1..$n, fields first.
func Update(prefix, table string, fields, filters, returning []string) ([]byte, error) {
	tbl, err := quoteTable(prefix, table)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(tbl)
	sb.WriteString(" SET ")

	n := 1
	setParts := make([]string, len(fields))
	for i, f := range fields {
		col, err := quoteName(f)
		if err != nil {
			return nil, err
		}
		setParts[i] = col + " = $" + strconv.Itoa(n)
		n++
	}
	sb.WriteString(strings.Join(setParts, ","))

	if len(filters) > 0 {
		whereParts := make([]string, len(filters))
		for i, f := range filters {
			col, err := quoteName(f)
			if err != nil {
				return nil, err
			}
			whereParts[i] = col + " = $" + strconv.Itoa(n)
			n++
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(whereParts, " AND "))
	}

	if len(returning) > 0 {
		cols := make([]string, len(returning))
		for i, r := range returning {
			col, err := quoteName(r)
			if err != nil {
				return nil, err
			}
			cols[i] = col
		}
		sb.WriteString(" RETURNING ")
		sb.WriteString(strings.Join(cols, ","))
	}
	return []byte(sb.String()), nil
}
