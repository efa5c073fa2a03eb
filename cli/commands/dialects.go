package commands

import (
	"github.com/spf13/cobra"

	"github.com/sqlforge/sqlforge/cli/internal/ui"
	"github.com/sqlforge/sqlforge/query/sqlgen"
)

var dialectsCmd = &cobra.Command{
	Use:   "dialects",
	Short: "List the supported SQL dialects",
	Run: func(cmd *cobra.Command, args []string) {
		rows := make([][]string, 0)
		for _, name := range sqlgen.Dialects() {
			note := ""
			switch name {
			case sqlgen.DefaultDialect:
				note = "default"
			case "postgresql":
				note = "alias of postgres"
			}
			rows = append(rows, []string{name, note})
		}
		ui.PrintTable([]string{"DIALECT", "NOTES"}, rows)
	},
}
