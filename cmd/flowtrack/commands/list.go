package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/flowtrack/internal/app/list"
	"github.com/slok/flowtrack/internal/model"
)

type ListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	filter string
	since  time.Duration
	limit  int
	format string
}

// NewListCommand returns the list command.
func NewListCommand(rootCmd *RootCommand, app *kingpin.Application) *ListCommand {
	c := &ListCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("list", "List the workflow history.")
	c.Cmd.Flag("filter", "Filter by state (running, finished, both).").Default(string(model.WorkflowFilterBoth)).StringVar(&c.filter)
	c.Cmd.Flag("since", "Only list the workflows created in this last period (e.g. 24h).").DurationVar(&c.since)
	c.Cmd.Flag("limit", "Max number of workflows, 0 is unlimited.").Default("0").IntVar(&c.limit)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c ListCommand) Name() string { return c.Cmd.FullCommand() }

func (c ListCommand) Run(ctx context.Context) error {
	filter, err := model.ParseWorkflowFilter(c.filter)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	return runList(ctx, c.rootCmd, c.format, list.Request{
		Project: c.rootCmd.Project,
		Filter:  filter,
		Since:   c.since,
		Limit:   c.limit,
	})
}

type PollAllCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewPollAllCommand returns the poll-all command.
func NewPollAllCommand(rootCmd *RootCommand, app *kingpin.Application) *PollAllCommand {
	c := &PollAllCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("poll-all", "Refresh the status of every workflow and list them.")
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c PollAllCommand) Name() string { return c.Cmd.FullCommand() }

func (c PollAllCommand) Run(ctx context.Context) error {
	return runList(ctx, c.rootCmd, c.format, list.Request{
		Project: c.rootCmd.Project,
		Live:    true,
	})
}

func runList(ctx context.Context, rootCmd *RootCommand, format string, req list.Request) error {
	t, closer, err := rootCmd.newTracker(ctx)
	if err != nil {
		return err
	}
	defer closer()

	svc, err := list.NewService(list.ServiceConfig{
		Tracker: t,
		Logger:  rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	ws, err := svc.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("could not list workflows: %w", err)
	}

	if err := newPrinter(format, rootCmd.Stdout).PrintList(ws); err != nil {
		return fmt.Errorf("could not print list: %w", err)
	}

	return nil
}
