package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pgsqlgen/pkg/ast"
)

func TestBuildSourceTable_TableAndSubqueryAndFragment(t *testing.T) {
	sources := []ast.Source{
		{Kind: ast.SourceTable, Table: &ast.TableSource{Name: "users", Schema: "public"}},
		{Kind: ast.SourceSubquery, Subquery: &ast.Query{}},
		{Kind: ast.SourceFragment, Fragment: nil},
	}
	st, err := buildSourceTable(sources)
	require.NoError(t, err)

	usersAlias, err := st.alias(0)
	require.NoError(t, err)
	assert.Equal(t, "u0", usersAlias)

	subAlias, err := st.alias(1)
	require.NoError(t, err)
	assert.Equal(t, "s1", subAlias)

	fragAlias, err := st.alias(2)
	require.NoError(t, err)
	assert.Equal(t, "f2", fragAlias)

	entry, err := st.get(0)
	require.NoError(t, err)
	assert.Equal(t, `"users"`, entry.Rendered)
	assert.Equal(t, "public", entry.Schema)
}

func TestBuildSourceTable_AliasFallsBackToT(t *testing.T) {
	sources := []ast.Source{
		{Kind: ast.SourceTable, Table: &ast.TableSource{Name: "9invalid"}},
	}
	st, err := buildSourceTable(sources)
	require.NoError(t, err)
	alias, err := st.alias(0)
	require.NoError(t, err)
	assert.Equal(t, "t0", alias)
}

func TestSourceTable_GetOutOfRange(t *testing.T) {
	st := &sourceTable{}
	_, err := st.get(0)
	assert.Error(t, err)
	renderErr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, UnsupportedFeature, renderErr.Kind)
}
