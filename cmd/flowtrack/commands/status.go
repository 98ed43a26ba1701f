package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/flowtrack/internal/app/status"
)

type StatusCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id     string
	format string
}

// NewStatusCommand returns the status command.
func NewStatusCommand(rootCmd *RootCommand, app *kingpin.Application) *StatusCommand {
	c := &StatusCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("status", "Poll and show the status of a workflow.")
	c.Cmd.Arg("id", "Workflow ID.").Required().StringVar(&c.id)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c StatusCommand) Name() string { return c.Cmd.FullCommand() }

func (c StatusCommand) Run(ctx context.Context) error {
	t, closer, err := c.rootCmd.newTracker(ctx)
	if err != nil {
		return err
	}
	defer closer()

	svc, err := status.NewService(status.ServiceConfig{
		Tracker: t,
		Logger:  c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	w, err := svc.Run(ctx, status.Request{
		Project: c.rootCmd.Project,
		ID:      c.id,
	})
	if err != nil {
		return fmt.Errorf("could not get workflow status: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintStatus(*w); err != nil {
		return fmt.Errorf("could not print status: %w", err)
	}

	return nil
}
