package commands

import (
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/sqlforge/sqlforge/cli/internal/config"
	"github.com/sqlforge/sqlforge/cli/internal/ui"
	"github.com/sqlforge/sqlforge/query/cache"
	"github.com/sqlforge/sqlforge/query/sqlgen"
	"github.com/sqlforge/sqlforge/rql"
)

const replHelp = `# sqlforge repl

Type a query and press enter to see its SQL. Queries start at the
source and name the projection last:

    from employees where salary > 50000 select name, salary

## Commands

- ` + "`:dialect`" + ` — switch the target dialect
- ` + "`:help`" + ` — show this help
- ` + "`:quit`" + ` — leave the repl
`

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactively compile queries",
	RunE:  runRepl,
}

func runRepl(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	ui.PrintHeader("sqlforge", "type :help for help, :quit to leave")

	dialect := cfg.Dialect
	if dialect == "" {
		dialect, err = pickDialect()
		if err != nil {
			return err
		}
	}

	compiled := cache.New(256, 0)

	for {
		var input string
		prompt := &survey.Input{Message: dialect + ">"}
		if err := survey.AskOne(prompt, &input); err != nil {
			// Ctrl-C or closed stdin ends the session.
			return nil
		}

		switch strings.TrimSpace(input) {
		case "":
			continue
		case ":quit", ":q", ":exit":
			return nil
		case ":help", ":h":
			if err := ui.PrintMarkdown(replHelp); err != nil {
				ui.PrintError("%v", err)
			}
			continue
		case ":dialect":
			if picked, err := pickDialect(); err == nil {
				dialect = picked
			}
			continue
		}

		key := cache.Key(input, dialect)
		if sql, ok := compiled.Get(key); ok {
			ui.PrintSQL(sql)
			continue
		}

		q, err := rql.ParseString("repl", input)
		if err != nil {
			ui.PrintError("%v", err)
			continue
		}
		sql, err := sqlgen.Compile(q, dialect)
		if err != nil {
			ui.PrintError("%v", err)
			continue
		}
		compiled.Set(key, sql)
		ui.PrintSQL(sql)
	}
}

func pickDialect() (string, error) {
	var dialect string
	prompt := &survey.Select{
		Message: "Target dialect:",
		Options: sqlgen.Dialects(),
		Default: sqlgen.DefaultDialect,
	}
	err := survey.AskOne(prompt, &dialect)
	return dialect, err
}
