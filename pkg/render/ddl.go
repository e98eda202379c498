package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leapstack-labs/pgsqlgen/pkg/ast"
)

// ExecuteDDL renders a single migration command to one or more SQL
// statements. A command can expand to more than one statement (the
// table/column definition plus any COMMENT ON statements it carries),
// always in that order.
func ExecuteDDL(cmd ast.Command, cfg Config) ([][]byte, error) {
	switch c := cmd.(type) {
	case ast.CreateTable:
		return renderCreateTable(c, cfg)
	case ast.DropTable:
		return renderDropTable(c)
	case ast.AlterTable:
		return renderAlterTable(c, cfg)
	case ast.CreateIndex:
		return renderCreateIndex(c, cfg)
	case ast.DropIndex:
		return renderDropIndex(c)
	case ast.RenameTable:
		return renderRenameTable(c)
	case ast.RenameColumn:
		return renderRenameColumn(c)
	case ast.CreateConstraint:
		return renderCreateConstraint(c, cfg)
	case ast.DropConstraint:
		return renderDropConstraint(c)
	case ast.RawCommand:
		return [][]byte{[]byte(c.SQL)}, nil
	default:
		return nil, unsupported(fmt.Sprintf("unknown DDL command %T", cmd), cmd)
	}
}

// renderCreateTable renders a CREATE TABLE statement: column
// definitions and a trailing PRIMARY KEY clause joined with ", ", plus
// one COMMENT ON per commented table/column.
func renderCreateTable(c ast.CreateTable, cfg Config) ([][]byte, error) {
	tbl, err := quoteTable(c.Table.Prefix, c.Table.Name)
	if err != nil {
		return nil, err
	}

	var parts []string
	var pkCols []string
	for _, col := range c.Columns {
		def, err := columnDefinition(c.Table, col, cfg)
		if err != nil {
			return nil, err
		}
		parts = append(parts, def)
		if col.Opts.PrimaryKey {
			qn, err := quoteName(col.Name)
			if err != nil {
				return nil, err
			}
			pkCols = append(pkCols, qn)
		}
	}
	if len(pkCols) > 0 {
		parts = append(parts, "PRIMARY KEY ("+strings.Join(pkCols, ", ")+")")
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	if c.IfNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(tbl)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(parts, ", "))
	sb.WriteString(")")

	stmts := [][]byte{[]byte(sb.String())}
	comments, err := tableComments(c.Table, c.Columns)
	if err != nil {
		return nil, err
	}
	stmts = append(stmts, comments...)
	return stmts, nil
}

// tableComments emits "COMMENT ON TABLE/COLUMN ..." statements for a
// table comment and any column comments, in table-then-column order.
func tableComments(t ast.Table, cols []ast.ColumnChange) ([][]byte, error) {
	var stmts [][]byte
	tbl, err := quoteTable(t.Prefix, t.Name)
	if err != nil {
		return nil, err
	}
	if t.Comment != "" {
		stmts = append(stmts, []byte("COMMENT ON TABLE "+tbl+" IS "+singleQuote(t.Comment)))
	}
	for _, col := range cols {
		if col.Opts.Comment == "" {
			continue
		}
		qn, err := quoteName(col.Name)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, []byte("COMMENT ON COLUMN "+tbl+"."+qn+" IS "+singleQuote(col.Opts.Comment)))
	}
	return stmts, nil
}

// columnDefinition renders "name type [NOT NULL|NULL] [DEFAULT ...]
// [CONSTRAINT ... REFERENCES ...]" in that order (end-to-end
// example 5).
func columnDefinition(owner ast.Table, cc ast.ColumnChange, cfg Config) (string, error) {
	qn, err := quoteName(cc.Name)
	if err != nil {
		return "", err
	}
	typeSQL, err := columnTypeSQL(cc.Type, cc.Opts, cfg)
	if err != nil {
		return "", err
	}
	sql := qn + " " + typeSQL

	if cc.Opts.Null != nil {
		if *cc.Opts.Null {
			sql += " NULL"
		} else {
			sql += " NOT NULL"
		}
	}

	if cc.Opts.Default != nil {
		defSQL, err := renderDefault(cc.Opts.Default, cfg)
		if err != nil {
			return "", err
		}
		sql += " DEFAULT " + defSQL
	}

	if ref, ok := cc.Type.(ast.ReferenceType); ok {
		refSQL, err := referenceConstraintSQL(owner.Name, cc.Name, ref.Reference)
		if err != nil {
			return "", err
		}
		sql += " " + refSQL
	}

	return sql, nil
}

// renderDefault renders a column DEFAULT clause: literal scalars
// render directly, maps are JSON-encoded through the configured
// json_library, fragments splice in raw, and embedded NUL bytes are
// rejected outright as an invalid default.
func renderDefault(e ast.Expr, cfg Config) (string, error) {
	switch v := e.(type) {
	case ast.StringLit:
		if strings.ContainsRune(v.Value, 0) {
			return "", invalidDefault("default string contains a NUL byte", nil)
		}
		return singleQuote(v.Value), nil
	case ast.MapLit:
		return renderMapDefault(v, cfg)
	case ast.Fragment:
		ctx := &exprCtx{sources: &sourceTable{}, cfg: cfg}
		return renderFragment(v, ctx)
	default:
		ctx := &exprCtx{sources: &sourceTable{}, cfg: cfg}
		return renderExpr(e, ctx)
	}
}

func renderMapDefault(m ast.MapLit, cfg Config) (string, error) {
	obj := make(map[string]any, len(m.Pairs))
	for _, p := range m.Pairs {
		lit, err := mapValueToGo(p.Value)
		if err != nil {
			return "", err
		}
		obj[p.Key] = lit
	}
	marshal := cfg.MarshalJSON
	if marshal == nil {
		marshal = func(v map[string]any) ([]byte, error) { return json.Marshal(v) }
	}
	b, err := marshal(obj)
	if err != nil {
		return "", invalidDefault("map default could not be JSON-encoded: "+err.Error(), nil)
	}
	return singleQuote(string(b)) + "::" + mapTypeOrDefault(cfg), nil
}

func mapTypeOrDefault(cfg Config) string {
	if cfg.MapType == "" {
		return "jsonb"
	}
	return cfg.MapType
}

// mapValueToGo unwraps the small set of literal kinds a map default's
// values may hold into plain Go values the JSON encoder understands.
func mapValueToGo(e ast.Expr) (any, error) {
	switch v := e.(type) {
	case ast.StringLit:
		return v.Value, nil
	case ast.IntLit:
		return v.Value, nil
	case ast.FloatLit:
		return v.Value, nil
	case ast.BoolLit:
		return v.Value, nil
	case ast.NullLit:
		return nil, nil
	case ast.MapLit:
		obj := make(map[string]any, len(v.Pairs))
		for _, p := range v.Pairs {
			inner, err := mapValueToGo(p.Value)
			if err != nil {
				return nil, err
			}
			obj[p.Key] = inner
		}
		return obj, nil
	default:
		return nil, invalidDefault(fmt.Sprintf("map default value %T is not a JSON-representable literal", e), nil)
	}
}

func renderDropTable(c ast.DropTable) ([][]byte, error) {
	tbl, err := quoteTable(c.Table.Prefix, c.Table.Name)
	if err != nil {
		return nil, err
	}
	sql := "DROP TABLE "
	if c.IfExists {
		sql += "IF EXISTS "
	}
	sql += tbl
	return [][]byte{[]byte(sql)}, nil
}

// renderAlterTable renders an ALTER TABLE statement. A `modify` change
// that carries a previous reference (Opts.From) emits a leading DROP
// CONSTRAINT for the old foreign key before the SET/TYPE alters. Any
// changes marked PrimaryKey are collected into a trailing
// "ADD PRIMARY KEY (...)", mirroring renderCreateTable.
func renderAlterTable(c ast.AlterTable, cfg Config) ([][]byte, error) {
	tbl, err := quoteTable(c.Table.Prefix, c.Table.Name)
	if err != nil {
		return nil, err
	}

	var alters []string
	var pkCols []string
	for _, change := range c.Changes {
		part, err := alterColumnSQL(c.Table, change, cfg)
		if err != nil {
			return nil, err
		}
		alters = append(alters, part...)
		if change.Opts.PrimaryKey {
			qn, err := quoteName(change.Name)
			if err != nil {
				return nil, err
			}
			pkCols = append(pkCols, qn)
		}
	}
	if len(pkCols) > 0 {
		alters = append(alters, "ADD PRIMARY KEY ("+strings.Join(pkCols, ", ")+")")
	}

	sql := "ALTER TABLE " + tbl + " " + strings.Join(alters, ", ")
	stmts := [][]byte{[]byte(sql)}
	comments, err := tableComments(c.Table, c.Changes)
	if err != nil {
		return nil, err
	}
	stmts = append(stmts, comments...)
	return stmts, nil
}

func alterColumnSQL(owner ast.Table, cc ast.ColumnChange, cfg Config) ([]string, error) {
	qn, err := quoteName(cc.Name)
	if err != nil {
		return nil, err
	}

	switch cc.Kind {
	case ast.ColAdd:
		def, err := columnDefinition(owner, cc, cfg)
		if err != nil {
			return nil, err
		}
		return []string{"ADD COLUMN " + def}, nil

	case ast.ColAddIfNotExists:
		def, err := columnDefinition(owner, cc, cfg)
		if err != nil {
			return nil, err
		}
		return []string{"ADD COLUMN IF NOT EXISTS " + def}, nil

	case ast.ColRemove:
		return []string{"DROP COLUMN " + qn}, nil

	case ast.ColRemoveIfExists:
		return []string{"DROP COLUMN IF EXISTS " + qn}, nil

	case ast.ColModify:
		var parts []string
		if cc.Opts.From != nil {
			name := cc.Opts.From.Name
			if name == "" {
				name = defaultFkeyName(owner.Name, cc.Name)
			}
			qName, err := quoteName(name)
			if err != nil {
				return nil, err
			}
			parts = append(parts, "DROP CONSTRAINT "+qName)
		}

		typeSQL, err := columnTypeSQL(cc.Type, cc.Opts, cfg)
		if err != nil {
			return nil, err
		}
		parts = append(parts, "ALTER COLUMN "+qn+" TYPE "+typeSQL)

		if cc.Opts.Null != nil {
			if *cc.Opts.Null {
				parts = append(parts, "ALTER COLUMN "+qn+" DROP NOT NULL")
			} else {
				parts = append(parts, "ALTER COLUMN "+qn+" SET NOT NULL")
			}
		}
		if cc.Opts.Default != nil {
			defSQL, err := renderDefault(cc.Opts.Default, cfg)
			if err != nil {
				return nil, err
			}
			parts = append(parts, "ALTER COLUMN "+qn+" SET DEFAULT "+defSQL)
		}
		if ref, ok := cc.Type.(ast.ReferenceType); ok {
			refSQL, err := referenceConstraintSQL(owner.Name, cc.Name, ref.Reference)
			if err != nil {
				return nil, err
			}
			parts = append(parts, "ADD "+refSQL)
		}
		return parts, nil

	default:
		return nil, unsupported(fmt.Sprintf("unknown column change kind %q", cc.Kind), nil)
	}
}

// renderCreateIndex renders a CREATE INDEX statement, including the
// IfNotExists DO $$ ... EXCEPTION guard, plus a trailing COMMENT ON
// INDEX when the index carries one. Concurrently is rejected alongside
// IfNotExists: a CREATE INDEX CONCURRENTLY cannot run inside the
// implicit transaction block the DO wrapper requires.
func renderCreateIndex(c ast.CreateIndex, cfg Config) ([][]byte, error) {
	if c.IfNotExists && c.Index.Concurrently {
		return nil, unsupported("CREATE INDEX CONCURRENTLY cannot be combined with if_not_exists", c)
	}

	stmt, err := createIndexStatement(c.Index, cfg)
	if err != nil {
		return nil, err
	}

	if c.IfNotExists {
		stmt = "DO $$ BEGIN " + stmt + "; EXCEPTION WHEN duplicate_table THEN END; $$"
	}
	stmts := [][]byte{[]byte(stmt)}

	if c.Index.Comment != "" {
		name, err := quoteName(c.Index.Name)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, []byte("COMMENT ON INDEX "+name+" IS "+singleQuote(c.Index.Comment)))
	}
	return stmts, nil
}

func createIndexStatement(idx ast.Index, cfg Config) (string, error) {
	tbl, err := quoteTable(idx.Prefix, idx.Table)
	if err != nil {
		return "", err
	}
	name, err := quoteName(idx.Name)
	if err != nil {
		return "", err
	}
	cols := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		qc, err := quoteName(c)
		if err != nil {
			return "", err
		}
		cols[i] = qc
	}

	var sb strings.Builder
	sb.WriteString("CREATE ")
	if idx.Unique {
		sb.WriteString("UNIQUE ")
	}
	sb.WriteString("INDEX ")
	if idx.Concurrently {
		sb.WriteString("CONCURRENTLY ")
	}
	sb.WriteString(name)
	sb.WriteString(" ON ")
	sb.WriteString(tbl)
	if idx.Using != "" {
		sb.WriteString(" USING ")
		sb.WriteString(idx.Using)
	}
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(")")

	if idx.Where != nil {
		ctx := &exprCtx{sources: &sourceTable{}, cfg: cfg}
		cond, err := renderExpr(idx.Where, ctx)
		if err != nil {
			return "", err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(cond)
	}
	return sb.String(), nil
}

func renderDropIndex(c ast.DropIndex) ([][]byte, error) {
	name, err := quoteName(c.Index.Name)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	sb.WriteString("DROP INDEX ")
	if c.Concurrently {
		sb.WriteString("CONCURRENTLY ")
	}
	if c.IfExists {
		sb.WriteString("IF EXISTS ")
	}
	if c.Index.Prefix != "" {
		qp, err := quoteName(c.Index.Prefix)
		if err != nil {
			return nil, err
		}
		sb.WriteString(qp + "." + name)
	} else {
		sb.WriteString(name)
	}
	return [][]byte{[]byte(sb.String())}, nil
}

func renderRenameTable(c ast.RenameTable) ([][]byte, error) {
	from, err := quoteTable(c.Prefix, c.From)
	if err != nil {
		return nil, err
	}
	to, err := quoteName(c.To)
	if err != nil {
		return nil, err
	}
	return [][]byte{[]byte("ALTER TABLE " + from + " RENAME TO " + to)}, nil
}

func renderRenameColumn(c ast.RenameColumn) ([][]byte, error) {
	tbl, err := quoteTable(c.Table.Prefix, c.Table.Name)
	if err != nil {
		return nil, err
	}
	from, err := quoteName(c.From)
	if err != nil {
		return nil, err
	}
	to, err := quoteName(c.To)
	if err != nil {
		return nil, err
	}
	return [][]byte{[]byte("ALTER TABLE " + tbl + " RENAME COLUMN " + from + " TO " + to)}, nil
}

// renderCreateConstraint renders an ADD CONSTRAINT statement: a
// table-level CHECK or EXCLUDE clause, mutually exclusive.
func renderCreateConstraint(c ast.CreateConstraint, cfg Config) ([][]byte, error) {
	tbl, err := quoteTable(c.Constraint.Prefix, c.Constraint.Table)
	if err != nil {
		return nil, err
	}
	name, err := quoteName(c.Constraint.Name)
	if err != nil {
		return nil, err
	}

	var body string
	switch {
	case c.Constraint.Check != nil:
		ctx := &exprCtx{sources: &sourceTable{}, cfg: cfg}
		cond, err := renderExpr(c.Constraint.Check, ctx)
		if err != nil {
			return nil, err
		}
		body = "CHECK (" + cond + ")"
	case c.Constraint.Exclude != "":
		body = "EXCLUDE " + c.Constraint.Exclude
	default:
		return nil, unsupported("constraint has neither a check nor an exclude body", c)
	}

	sql := "ALTER TABLE " + tbl + " ADD CONSTRAINT " + name + " " + body
	stmts := [][]byte{[]byte(sql)}
	if c.Constraint.Comment != "" {
		stmts = append(stmts, []byte("COMMENT ON CONSTRAINT "+name+" ON "+tbl+" IS "+singleQuote(c.Constraint.Comment)))
	}
	return stmts, nil
}

func renderDropConstraint(c ast.DropConstraint) ([][]byte, error) {
	tbl, err := quoteTable(c.Constraint.Prefix, c.Constraint.Table)
	if err != nil {
		return nil, err
	}
	name, err := quoteName(c.Constraint.Name)
	if err != nil {
		return nil, err
	}
	sql := "ALTER TABLE " + tbl + " DROP CONSTRAINT "
	if c.IfExists {
		sql += "IF EXISTS "
	}
	sql += name
	return [][]byte{[]byte(sql)}, nil
}
