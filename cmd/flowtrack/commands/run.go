package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/flowtrack/internal/app/run"
	"github.com/slok/flowtrack/internal/model"
	storageio "github.com/slok/flowtrack/internal/storage/io"
)

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	file         string
	author       string
	detach       bool
	pollInterval time.Duration
	format       string
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Launch a workflow from a YAML definition and follow it until it finishes.")
	c.Cmd.Arg("file", "Workflow definition YAML file.").Required().StringVar(&c.file)
	c.Cmd.Flag("author", "User launching the workflow.").Default(currentUsername()).StringVar(&c.author)
	c.Cmd.Flag("detach", "Don't follow the workflow after launching it. The embedded workers stop with the process, so the detached workflow stays running in the history until revoked.").BoolVar(&c.detach)
	c.Cmd.Flag("poll-interval", "Interval between workflow status polls.").Default("500ms").DurationVar(&c.pollInterval)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	path, err := filepath.Abs(c.file)
	if err != nil {
		return fmt.Errorf("could not resolve workflow path: %w", err)
	}

	t, closer, err := c.rootCmd.newTracker(ctx)
	if err != nil {
		return err
	}
	defer closer()

	svc, err := run.NewService(run.ServiceConfig{
		Tracker:      t,
		Loader:       storageio.NewWorkflowYAMLRepository(os.DirFS(filepath.Dir(path))),
		PollInterval: c.pollInterval,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	var lastDone int
	w, err := svc.Run(ctx, run.Request{
		Project:      c.rootCmd.Project,
		WorkflowPath: filepath.Base(path),
		Author:       c.author,
		Follow:       !c.detach,
		OnPoll: func(tasks model.TaskTree) {
			done := 0
			for _, n := range tasks {
				if n.Successful != nil {
					done++
				}
			}
			if done != lastDone {
				logger.Infof("%d/%d steps finished", done, len(tasks))
				lastDone = done
			}
		},
	})
	if err != nil {
		return fmt.Errorf("could not run workflow: %w", err)
	}

	p := newPrinter(c.format, c.rootCmd.Stdout)
	if err := p.PrintStatus(*w); err != nil {
		return fmt.Errorf("could not print status: %w", err)
	}

	if w.Finished() && (w.Succeeded == nil || !*w.Succeeded) {
		return fmt.Errorf("workflow %s failed", w.ID)
	}

	return nil
}
