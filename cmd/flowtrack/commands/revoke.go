package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/flowtrack/internal/app/revoke"
)

type RevokeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id       string
	username string
	format   string
}

// NewRevokeCommand returns the revoke command.
func NewRevokeCommand(rootCmd *RootCommand, app *kingpin.Application) *RevokeCommand {
	c := &RevokeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("revoke", "Cancel a running workflow.")
	c.Cmd.Arg("id", "Workflow ID.").Required().StringVar(&c.id)
	c.Cmd.Flag("username", "User revoking the workflow.").Default(currentUsername()).StringVar(&c.username)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c RevokeCommand) Name() string { return c.Cmd.FullCommand() }

func (c RevokeCommand) Run(ctx context.Context) error {
	t, closer, err := c.rootCmd.newTracker(ctx)
	if err != nil {
		return err
	}
	defer closer()

	svc, err := revoke.NewService(revoke.ServiceConfig{
		Tracker: t,
		Logger:  c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	w, err := svc.Run(ctx, revoke.Request{
		Project:  c.rootCmd.Project,
		ID:       c.id,
		Username: c.username,
	})
	if err != nil {
		return fmt.Errorf("could not revoke workflow: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintStatus(*w); err != nil {
		return fmt.Errorf("could not print status: %w", err)
	}

	return nil
}
