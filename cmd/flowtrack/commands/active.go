package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/flowtrack/internal/app/active"
)

type ActiveCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewActiveCommand returns the active command.
func NewActiveCommand(rootCmd *RootCommand, app *kingpin.Application) *ActiveCommand {
	c := &ActiveCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("active", "List the IDs of the running workflows.")
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c ActiveCommand) Name() string { return c.Cmd.FullCommand() }

func (c ActiveCommand) Run(ctx context.Context) error {
	t, closer, err := c.rootCmd.newTracker(ctx)
	if err != nil {
		return err
	}
	defer closer()

	svc, err := active.NewService(active.ServiceConfig{
		Tracker: t,
		Logger:  c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	ids, err := svc.Run(ctx, active.Request{Project: c.rootCmd.Project})
	if err != nil {
		return fmt.Errorf("could not list active workflows: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintIDs(ids); err != nil {
		return fmt.Errorf("could not print IDs: %w", err)
	}

	return nil
}
