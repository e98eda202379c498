// Command pgsqlgen is a small demonstration CLI around pkg/render: it
// renders a fixed set of example migration commands to PostgreSQL DDL
// and prints the resulting statements.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/pgsqlgen/pkg/config"
)

var cfgFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pgsqlgen",
		Short:         "pgsqlgen renders query and migration ASTs to PostgreSQL SQL",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./pgsqlgen.yaml)")
	root.PersistentFlags().String("postgres-map-type", "", "SQL type used for map columns, e.g. jsonb")
	root.PersistentFlags().String("host", "", "database host")
	root.PersistentFlags().Int("port", 0, "database port")
	root.PersistentFlags().String("database", "", "database name")

	root.AddCommand(newDDLCommand())
	root.AddCommand(newTableExistsCommand())
	return root
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	return config.Load(cfgFile, cmd.Flags())
}
