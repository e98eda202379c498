package render

import (
	"strconv"

	"github.com/leapstack-labs/pgsqlgen/pkg/ast"
)

// scalarTypeToSQL maps a logical column type name to its PostgreSQL
// base type name. Kept as a package-level function (not a method)
// because the expression renderer's Tagged-value cast reuses the same
// table.
func scalarTypeToSQL(name string, cfg Config) (string, error) {
	switch name {
	case "id":
		return "integer", nil
	case "serial":
		return "serial", nil
	case "bigserial":
		return "bigserial", nil
	case "binary_id":
		return "uuid", nil
	case "string":
		return "varchar", nil
	case "binary":
		return "bytea", nil
	case "map":
		if cfg.MapType == "" {
			return "", unsupported("postgres_map_type must be configured to use map columns", nil)
		}
		return cfg.MapType, nil
	case "utc_datetime", "naive_datetime", "utc_datetime_usec", "naive_datetime_usec":
		return "timestamp", nil
	case "time", "time_usec":
		return "time", nil
	default:
		return name, nil
	}
}

func typeSuffix(name string, opts ast.ColumnOpts) string {
	switch name {
	case "time", "utc_datetime", "naive_datetime":
		p := 0
		if opts.Precision != nil {
			p = *opts.Precision
		}
		return "(" + strconv.Itoa(p) + ")"
	case "time_usec", "utc_datetime_usec", "naive_datetime_usec":
		if opts.Precision != nil {
			return "(" + strconv.Itoa(*opts.Precision) + ")"
		}
		return ""
	case "string":
		size := 255
		if opts.Size != nil {
			size = *opts.Size
		}
		return "(" + strconv.Itoa(size) + ")"
	case "numeric", "decimal":
		if opts.Precision != nil {
			scale := 0
			if opts.Scale != nil {
				scale = *opts.Scale
			}
			return "(" + strconv.Itoa(*opts.Precision) + ", " + strconv.Itoa(scale) + ")"
		}
		return ""
	default:
		return ""
	}
}

// columnTypeSQL renders a ColumnType, including the reference, serial
// and array special cases.
func columnTypeSQL(ct ast.ColumnType, opts ast.ColumnOpts, cfg Config) (string, error) {
	switch t := ct.(type) {
	case ast.SerialType:
		if t.Big {
			return "bigserial", nil
		}
		return "serial", nil
	case ast.ReferenceType:
		return fkColumnTypeSQL(t.Reference, cfg)
	case ast.NamedType:
		base, err := scalarTypeToSQL(t.Name, cfg)
		if err != nil {
			return "", err
		}
		sql := base + typeSuffix(t.Name, opts)
		if t.Array {
			sql += "[]"
		}
		return sql, nil
	default:
		return "", unsupported("unknown column type", nil)
	}
}

// fkColumnTypeSQL derives a foreign-key column's own type from the
// referenced column's declared type.
func fkColumnTypeSQL(ref *ast.Reference, cfg Config) (string, error) {
	switch t := ref.Type.(type) {
	case nil:
		return "bigint", nil
	case ast.SerialType:
		if t.Big {
			return "bigint", nil
		}
		return "integer", nil
	default:
		return columnTypeSQL(ref.Type, ast.ColumnOpts{}, cfg)
	}
}

func refActionClause(action ast.RefAction, keyword string) string {
	var token string
	switch action {
	case ast.RefNilifyAll:
		token = "SET NULL"
	case ast.RefDeleteAll, ast.RefUpdateAll:
		token = "CASCADE"
	case ast.RefRestrict:
		token = "RESTRICT"
	default:
		return ""
	}
	return " " + keyword + " " + token
}

// defaultFkeyName builds the "<table>_<col>_fkey" naming default.
func defaultFkeyName(table, column string) string {
	return table + "_" + column + "_fkey"
}

func referenceConstraintSQL(ownerTable, ownerColumn string, ref *ast.Reference) (string, error) {
	name := ref.Name
	if name == "" {
		name = defaultFkeyName(ownerTable, ownerColumn)
	}
	qName, err := quoteName(name)
	if err != nil {
		return "", err
	}
	targetTable, err := quoteTable(ref.Prefix, ref.Table)
	if err != nil {
		return "", err
	}
	targetCol, err := quoteName(ref.Column)
	if err != nil {
		return "", err
	}
	sql := "CONSTRAINT " + qName + " REFERENCES " + targetTable + "(" + targetCol + ")"
	sql += refActionClause(ref.OnDelete, "ON DELETE")
	sql += refActionClause(ref.OnUpdate, "ON UPDATE")
	return sql, nil
}
