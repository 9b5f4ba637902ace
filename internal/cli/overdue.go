package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/locallibrary/internal/entrypoint"
	"github.com/mrlokans/locallibrary/internal/tasks"
)

// OverdueCommand prints loans past their due date and can record them in
// the audit trail the same way the scheduled sweep does.
type OverdueCommand struct {
	DatabasePath string
	Record       bool

	out io.Writer
}

func NewOverdueCommand() *OverdueCommand {
	return &OverdueCommand{out: os.Stdout}
}

func (cmd *OverdueCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("overdue", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the SQLite catalog (defaults to DATABASE_PATH)")
	fs.BoolVar(&cmd.Record, "record", false, "Write an audit event for every overdue copy")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s overdue [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List copies on loan whose due date has passed.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *OverdueCommand) Run() error {
	return withApp(cmd.DatabasePath, cmd.run)
}

func (cmd *OverdueCommand) run(ctx context.Context, app *entrypoint.App) error {
	out := cmd.out
	if out == nil {
		out = os.Stdout
	}

	overdue, err := app.Queries.ListOverdue(ctx)
	if err != nil {
		return err
	}

	today := app.Queries.Today()
	if len(overdue) == 0 {
		fmt.Fprintf(out, "No overdue loans as of %s\n", today)
	}
	for _, instance := range overdue {
		borrower := "(no borrower)"
		if instance.Borrower != nil {
			borrower = instance.Borrower.Username
		}
		fmt.Fprintf(out, "%-60s  %-16s  due %s\n", instance, borrower, instance.DueBack)
	}

	if !cmd.Record {
		return nil
	}
	sweep := tasks.OverdueSweepProcessor(app.Queries, app.Audit)
	return sweep(ctx, tasks.OverdueSweepTask{Trigger: "cli"})
}
