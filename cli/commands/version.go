package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlforge/sqlforge/cli/internal/update"
	"github.com/sqlforge/sqlforge/cli/internal/version"
)

var versionFull bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		if versionFull {
			fmt.Println(info.FullString())
		} else {
			fmt.Println(info.String())
		}
		return update.CheckForUpdates(info.Version)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionFull, "full", false, "print build metadata")
}
