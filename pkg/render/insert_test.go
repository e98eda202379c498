package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pgsqlgen/pkg/ast"
)

func TestInsert_BasicRow(t *testing.T) {
	rows := [][]RowValue{{{}, {}}}
	sql, err := Insert("", "users", []string{"name", "email"}, rows, OnConflict{}, nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("name","email") VALUES ($1,$2)`, string(sql))
}

func TestInsert_MultipleRowsAdvanceParams(t *testing.T) {
	rows := [][]RowValue{{{}, {}}, {{}, {}}}
	sql, err := Insert("", "users", []string{"name", "email"}, rows, OnConflict{}, []string{"id"}, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("name","email") VALUES ($1,$2),($3,$4) RETURNING "id"`, string(sql))
}

func TestInsert_NoHeaderUsesDefaultValues(t *testing.T) {
	rows := [][]RowValue{{}, {}}
	sql, err := Insert("", "users", nil, rows, OnConflict{}, nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" VALUES (DEFAULT),(DEFAULT)`, string(sql))
}

func TestInsert_NilCellRendersDefault(t *testing.T) {
	rows := [][]RowValue{{{Nil: true}, {}}}
	sql, err := Insert("", "users", []string{"name", "email"}, rows, OnConflict{}, nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("name","email") VALUES (DEFAULT,$1)`, string(sql))
}

func TestInsert_SubqueryCellAdvancesByParamCount(t *testing.T) {
	sub := &ast.Query{
		Sources: []ast.Source{{Kind: ast.SourceTable, Table: &ast.TableSource{Name: "counters"}}},
		From:    &ast.From{Index: 0},
		Select:  []ast.Expr{ast.FieldRef{SourceIndex: 0, Field: "next_id"}},
	}
	rows := [][]RowValue{{{Subquery: sub, ParamCount: 0}, {}}}
	sql, err := Insert("", "users", []string{"id", "email"}, rows, OnConflict{}, nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "users" ("id","email") VALUES ((SELECT c0."next_id" FROM "counters" AS c0),$1)`,
		string(sql))
}

func TestInsert_OnConflictDoNothing(t *testing.T) {
	rows := [][]RowValue{{{}}}
	sql, err := Insert("", "users", []string{"email"}, rows, OnConflict{
		Kind:   ConflictNothing,
		Target: ConflictTarget{Kind: TargetColumns, Columns: []string{"email"}},
	}, nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("email") VALUES ($1) ON CONFLICT ("email") DO NOTHING`, string(sql))
}

func TestInsert_OnConflictUpdateFields(t *testing.T) {
	rows := [][]RowValue{{{}, {}}}
	sql, err := Insert("", "users", []string{"email", "name"}, rows, OnConflict{
		Kind:   ConflictUpdateFields,
		Target: ConflictTarget{Kind: TargetConstraint, Name: "users_email_index"},
		Fields: []string{"name"},
	}, nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "users" ("email","name") VALUES ($1,$2) ON CONFLICT ON CONSTRAINT "users_email_index" DO UPDATE SET "name" = EXCLUDED."name"`,
		string(sql))
}

func TestInsert_OnConflictUnsafeFragmentTarget(t *testing.T) {
	rows := [][]RowValue{{{}}}
	sql, err := Insert("", "users", []string{"email"}, rows, OnConflict{
		Kind:   ConflictNothing,
		Target: ConflictTarget{Kind: TargetUnsafeFragment, Fragment: "(email) WHERE active"},
	}, nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("email") VALUES ($1) ON CONFLICT (email) WHERE active DO NOTHING`, string(sql))
}
