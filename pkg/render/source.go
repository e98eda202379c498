package render

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/pgsqlgen/pkg/ast"
)

// sourceEntry is one resolved (rendered_source, alias, schema) triple.
// For table sources, Rendered is the quoted "schema"."table" text; for
// subqueries and fragments it is left empty and getSourceSQL materializes
// the SQL at the callsite instead.
type sourceEntry struct {
	Rendered string
	Alias    string
	Schema   string
}

// sourceTable is the positional, immutable alias table built once per
// rendering call. Lookup by index is O(1).
type sourceTable struct {
	entries []sourceEntry
}

// buildSourceTable derives deterministic aliases for every entry of
// sources: the first character of a real table's name, lowercased,
// when it is an ASCII letter (else "t"),
// suffixed with the source's positional index; subqueries get "s<ix>",
// fragments get "f<ix>".
func buildSourceTable(sources []ast.Source) (*sourceTable, error) {
	entries := make([]sourceEntry, len(sources))
	for i, src := range sources {
		switch src.Kind {
		case ast.SourceTable:
			t := src.Table
			rendered, err := quoteTable(t.Prefix, t.Name)
			if err != nil {
				return nil, err
			}
			entries[i] = sourceEntry{
				Rendered: rendered,
				Alias:    aliasForTable(t.Name, i),
				Schema:   t.Schema,
			}
		case ast.SourceSubquery:
			entries[i] = sourceEntry{Alias: "s" + strconv.Itoa(i)}
		case ast.SourceFragment:
			entries[i] = sourceEntry{Alias: "f" + strconv.Itoa(i)}
		default:
			return nil, unsupported(fmt.Sprintf("unknown source kind %v", src.Kind), nil)
		}
	}
	return &sourceTable{entries: entries}, nil
}

func aliasForTable(name string, index int) string {
	letter := "t"
	if len(name) > 0 {
		c := name[0]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c >= 'a' && c <= 'z' {
			letter = string(c)
		}
	}
	return letter + strconv.Itoa(index)
}

func (st *sourceTable) get(idx int) (sourceEntry, error) {
	if idx < 0 || idx >= len(st.entries) {
		return sourceEntry{}, unsupported(fmt.Sprintf("source index %d out of range (have %d sources)", idx, len(st.entries)), nil)
	}
	return st.entries[idx], nil
}

func (st *sourceTable) alias(idx int) (string, error) {
	e, err := st.get(idx)
	if err != nil {
		return "", err
	}
	return e.Alias, nil
}
