package render

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/pgsqlgen/pkg/ast"
)

// RowValue is one cell of an INSERT row: Nil renders DEFAULT, a
// non-nil Subquery inlines the sub-query and advances the outer
// parameter counter by ParamCount, anything else renders as the next
// $n placeholder.
type RowValue struct {
	Nil        bool
	Subquery   *ast.Query
	ParamCount int
}

// ConflictKind enumerates the four ON CONFLICT forms.
type ConflictKind int

// ConflictKind variants.
const (
	ConflictRaise ConflictKind = iota
	ConflictNothing
	ConflictUpdateFields
	ConflictUpdateQuery
)

// ConflictTargetKind enumerates the four conflict-target spellings.
type ConflictTargetKind int

// ConflictTargetKind variants.
const (
	TargetNone ConflictTargetKind = iota
	TargetConstraint
	TargetUnsafeFragment
	TargetColumns
)

// ConflictTarget is the "ON CONFLICT <target>" clause.
type ConflictTarget struct {
	Kind       ConflictTargetKind
	Name       string   // constraint name, for TargetConstraint
	Fragment   string   // raw text, for TargetUnsafeFragment
	Columns    []string // column list, for TargetColumns
}

// OnConflict is the full ON CONFLICT clause.
type OnConflict struct {
	Kind       ConflictKind
	Target     ConflictTarget
	Fields     []string // for ConflictUpdateFields: columns to SET col = EXCLUDED.col
	Query      *ast.Query // for ConflictUpdateQuery: an UPDATE-shaped query
	TableAlias string     // emitted only when Query is set
}

// Insert renders an INSERT statement from a table prefix, table, column
// header, row values, ON CONFLICT clause, and RETURNING list.
func Insert(prefix, table string, header []string, rows [][]RowValue, onConflict OnConflict, returning []string, cfg Config) ([]byte, error) {
	tbl, err := quoteTable(prefix, table)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(tbl)
	if onConflict.Kind == ConflictUpdateQuery && onConflict.TableAlias != "" {
		sb.WriteString(" AS ")
		sb.WriteString(onConflict.TableAlias)
	}

	if len(header) > 0 {
		cols := make([]string, len(header))
		for i, h := range header {
			c, err := quoteName(h)
			if err != nil {
				return nil, err
			}
			cols[i] = c
		}
		sb.WriteString(" (")
		sb.WriteString(strings.Join(cols, ","))
		sb.WriteString(")")
	}

	valuesSQL, err := renderInsertRows(header, rows, cfg)
	if err != nil {
		return nil, err
	}
	sb.WriteString(" VALUES ")
	sb.WriteString(valuesSQL)

	conflictSQL, err := renderOnConflict(onConflict, cfg)
	if err != nil {
		return nil, err
	}
	sb.WriteString(conflictSQL)

	if len(returning) > 0 {
		cols := make([]string, len(returning))
		for i, r := range returning {
			c, err := quoteName(r)
			if err != nil {
				return nil, err
			}
			cols[i] = c
		}
		sb.WriteString(" RETURNING ")
		sb.WriteString(strings.Join(cols, ","))
	}

	return []byte(sb.String()), nil
}

// renderInsertRows threads a single parameter counter across every row
// and value, starting at 1.
func renderInsertRows(header []string, rows [][]RowValue, cfg Config) (string, error) {
	if len(header) == 0 {
		parts := make([]string, len(rows))
		for i := range rows {
			parts[i] = "(DEFAULT)"
		}
		return strings.Join(parts, ","), nil
	}

	n := 1
	rowParts := make([]string, len(rows))
	for ri, row := range rows {
		cellParts := make([]string, len(row))
		for ci, cell := range row {
			switch {
			case cell.Nil:
				cellParts[ci] = "DEFAULT"
			case cell.Subquery != nil:
				sql, err := All(cell.Subquery, cfg)
				if err != nil {
					return "", err
				}
				cellParts[ci] = "(" + string(sql) + ")"
				n += cell.ParamCount
			default:
				cellParts[ci] = "$" + strconv.Itoa(n)
				n++
			}
		}
		rowParts[ri] = "(" + strings.Join(cellParts, ",") + ")"
	}
	return strings.Join(rowParts, ","), nil
}

func renderOnConflict(c OnConflict, cfg Config) (string, error) {
	switch c.Kind {
	case ConflictRaise:
		return "", nil
	case ConflictNothing:
		target, err := renderConflictTarget(c.Target)
		if err != nil {
			return "", err
		}
		return target + " DO NOTHING", nil
	case ConflictUpdateFields:
		target, err := renderConflictTarget(c.Target)
		if err != nil {
			return "", err
		}
		sets := make([]string, len(c.Fields))
		for i, f := range c.Fields {
			col, err := quoteName(f)
			if err != nil {
				return "", err
			}
			sets[i] = col + " = EXCLUDED." + col
		}
		return target + " DO UPDATE SET " + strings.Join(sets, ","), nil
	case ConflictUpdateQuery:
		target, err := renderConflictTarget(c.Target)
		if err != nil {
			return "", err
		}
		setClause, err := renderConflictQuerySet(c.Query, cfg)
		if err != nil {
			return "", err
		}
		return target + " DO UPDATE SET " + setClause, nil
	default:
		return "", unsupported("unknown ON CONFLICT kind", nil)
	}
}

// renderConflictQuerySet renders the SET list of an ON CONFLICT DO
// UPDATE driven by an update-shaped sub-query.
func renderConflictQuerySet(q *ast.Query, cfg Config) (string, error) {
	st, err := buildSourceTable(q.Sources)
	if err != nil {
		return "", err
	}
	ctx := &exprCtx{sources: st, query: q, cfg: cfg}
	return renderUpdateOps(q.Updates, q, ctx)
}

func renderConflictTarget(t ConflictTarget) (string, error) {
	prefix := " ON CONFLICT"
	switch t.Kind {
	case TargetNone:
		return prefix, nil
	case TargetConstraint:
		name, err := quoteName(t.Name)
		if err != nil {
			return "", err
		}
		return prefix + " ON CONSTRAINT " + name, nil
	case TargetUnsafeFragment:
		return prefix + " " + t.Fragment, nil
	case TargetColumns:
		cols := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			q, err := quoteName(c)
			if err != nil {
				return "", err
			}
			cols[i] = q
		}
		return prefix + " (" + strings.Join(cols, ",") + ")", nil
	default:
		return "", unsupported("unknown conflict target kind", nil)
	}
}
