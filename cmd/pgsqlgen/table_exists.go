package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/pgsqlgen/pkg/render"
)

func newTableExistsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "table-exists NAME",
		Short: "Print the table_exists_query for a table name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, params := render.TableExistsQuery(args[0])
			fmt.Fprintln(cmd.OutOrStdout(), sql)
			fmt.Fprintln(cmd.OutOrStdout(), params)
			return nil
		},
	}
}
