package render

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/pgsqlgen/pkg/ast"
)

// DeleteAll renders a DELETE driven by a full query, with joins
// lowered to USING.
func DeleteAll(q *ast.Query, cfg Config) ([]byte, error) {
	st, err := buildSourceTable(q.Sources)
	if err != nil {
		return nil, err
	}
	ctx := &exprCtx{sources: st, query: q, cfg: cfg}

	if q.From == nil {
		return nil, unsupported("DELETE query has no target source", q)
	}
	if len(q.From.Hints) > 0 {
		return nil, unsupported("table hints are not supported for PostgreSQL", q)
	}
	entry, err := st.get(q.From.Index)
	if err != nil {
		return nil, err
	}
	src := q.Sources[q.From.Index]
	if src.Kind != ast.SourceTable {
		return nil, unsupported("DELETE target must be a real table", q)
	}
	target, err := quoteTable("", src.Table.Name)
	if err != nil {
		return nil, err
	}

	usingList, extraWheres, err := lowerJoinsToFromList(q.Joins, ctx)
	if err != nil {
		return nil, err
	}

	wheres := append(append([]ast.BooleanExpr{}, q.Wheres...), extraWheres...)
	where, err := renderBooleanList(wheres, ctx)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(target)
	sb.WriteString(" AS ")
	sb.WriteString(entry.Alias)
	if usingList != "" {
		sb.WriteString(" USING ")
		sb.WriteString(usingList)
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

// Delete renders the single-row, by-primary-key DELETE form.
func Delete(prefix, table string, filters, returning []string) ([]byte, error) {
	tbl, err := quoteTable(prefix, table)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(tbl)

	if len(filters) > 0 {
		whereParts := make([]string, len(filters))
		for i, f := range filters {
			col, err := quoteName(f)
			if err != nil {
				return nil, err
			}
			whereParts[i] = col + " = $" + strconv.Itoa(i+1)
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
