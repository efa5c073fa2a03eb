package commands

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sqlforge/sqlforge/cli/internal/ui"
	"github.com/sqlforge/sqlforge/cli/internal/version"
	"github.com/sqlforge/sqlforge/telemetry"
)

var rootCmd = &cobra.Command{
	Use:   "sqlforge",
	Short: "Compile queries to SQL for multiple dialects",
	Long: `sqlforge builds a relational query from a compact query language
and compiles it to SQL text for duckdb, postgres, mysql or sqlite.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	telemetry.Init(version.Get().Version, os.Getenv("SQLFORGE_TELEMETRY") == "1")
	defer telemetry.Shutdown()

	start := time.Now()
	err := rootCmd.Execute()
	telemetry.RecordCommand(commandName(), compileDialect, time.Since(start), err)

	if err != nil {
		ui.PrintError("%v", err)
	}
	return err
}

func commandName() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return ""
}

func init() {
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(dialectsCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(versionCmd)
}
