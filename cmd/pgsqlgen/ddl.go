package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/pgsqlgen/pkg/ast"
	"github.com/leapstack-labs/pgsqlgen/pkg/render"
)

func newDDLCommand() *cobra.Command {
	var fixture string
	cmd := &cobra.Command{
		Use:   "ddl",
		Short: "Render a built-in fixture migration command to SQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			command, err := ddlFixture(fixture)
			if err != nil {
				return err
			}
			stmts, err := render.ExecuteDDL(command, cfg.RenderConfig())
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"#", "Statement"})
			for i, s := range stmts {
				t.AppendRow(table.Row{i + 1, string(s)})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&fixture, "fixture", "users", "fixture name: users|posts-index|add-column")
	return cmd
}

// ddlFixture returns one of a few representative migration commands,
// mirroring the renderer's own end-to-end examples, for ad hoc
// demonstration of execute_ddl without requiring a real project.
func ddlFixture(name string) (ast.Command, error) {
	switch name {
	case "posts-index":
		return ast.CreateIndex{
			Index: ast.Index{
				Name:    "posts_author_id_index",
				Table:   "posts",
				Columns: []string{"author_id"},
			},
		}, nil
	case "add-column":
		yes := true
		return ast.AlterTable{
			Table: ast.Table{Name: "posts"},
			Changes: []ast.ColumnChange{
				{
					Kind: ast.ColAddIfNotExists,
					Name: "published_at",
					Type: ast.NamedType{Name: "utc_datetime"},
					Opts: ast.ColumnOpts{Null: &yes},
				},
			},
		}, nil
	default:
		notNull := false
		return ast.CreateTable{
			Table:       ast.Table{Name: "users"},
			IfNotExists: true,
			Columns: []ast.ColumnChange{
				{Kind: ast.ColAdd, Name: "id", Type: ast.SerialType{Big: false}, Opts: ast.ColumnOpts{PrimaryKey: true}},
				{Kind: ast.ColAdd, Name: "email", Type: ast.NamedType{Name: "string"}, Opts: ast.ColumnOpts{Null: &notNull}},
				{Kind: ast.ColAdd, Name: "author_id", Type: ast.ReferenceType{Reference: &ast.Reference{Table: "authors", Column: "id", OnDelete: ast.RefNilifyAll}}},
			},
		}, nil
	}
}
