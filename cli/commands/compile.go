package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sqlforge/sqlforge/cli/internal/config"
	"github.com/sqlforge/sqlforge/cli/internal/ui"
	"github.com/sqlforge/sqlforge/cli/internal/watch"
	"github.com/sqlforge/sqlforge/internal/debug"
	"github.com/sqlforge/sqlforge/query/sqlgen"
	"github.com/sqlforge/sqlforge/rql"
)

var (
	compileDialect string
	compileOut     string
	compileWatch   bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <query-file>",
	Short: "Compile a query file to SQL",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().StringVarP(&compileDialect, "dialect", "d", "", "target SQL dialect (default from config)")
	compileCmd.Flags().StringVarP(&compileOut, "out", "o", "", "write SQL to a file instead of stdout")
	compileCmd.Flags().BoolVarP(&compileWatch, "watch", "w", false, "recompile whenever the query file changes")
}

func runCompile(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	dialect := compileDialect
	if dialect == "" {
		dialect = cfg.Dialect
	}
	out := compileOut
	if out == "" {
		out = cfg.OutputPath
	}

	compileOnce := func() error {
		sql, err := compileFile(path, dialect)
		if err != nil {
			return err
		}
		if out != "" {
			if err := afero.WriteFile(config.AppFs, out, []byte(sql+"\n"), 0644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			ui.PrintSuccess("wrote %s (%s)", out, dialect)
			return nil
		}
		ui.PrintSQL(sql)
		return nil
	}

	if !compileWatch {
		return compileOnce()
	}

	// In watch mode a broken intermediate state of the file is
	// reported, not fatal; the next save gets another chance.
	w, err := watch.NewWatcher(path, func() error {
		ui.ColorPrint(ui.Notice, "compiling %s\n", path)
		if err := compileOnce(); err != nil {
			ui.PrintError("%v", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	ui.PrintInfo("watching %s, press Ctrl-C to stop", path)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	return nil
}

func compileFile(path, dialect string) (string, error) {
	data, err := afero.ReadFile(config.AppFs, path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	debug.Log("parsing query file", "path", path, "bytes", len(data))
	q, err := rql.ParseString(path, string(data))
	if err != nil {
		return "", err
	}
	sql, err := sqlgen.Compile(q, dialect)
	if err != nil {
		return "", err
	}
	debug.Log("compiled query", "path", path, "dialect", dialect, "len", len(sql))
	return sql, nil
}
