package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/slok/flowtrack/cmd/flowtrack/commands"
	"github.com/slok/flowtrack/internal/log"
	loglogrus "github.com/slok/flowtrack/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("flowtrack", "Workflow task tracker.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Commands register their own flags.
	runCmd := commands.NewRunCommand(rootCmd, app)
	statusCmd := commands.NewStatusCommand(rootCmd, app)
	activeCmd := commands.NewActiveCommand(rootCmd, app)
	listCmd := commands.NewListCommand(rootCmd, app)
	pollAllCmd := commands.NewPollAllCommand(rootCmd, app)
	revokeCmd := commands.NewRevokeCommand(rootCmd, app)

	cmds := map[string]commands.Command{
		runCmd.Name():     runCmd,
		statusCmd.Name():  statusCmd,
		activeCmd.Name():  activeCmd,
		listCmd.Name():    listCmd,
		pollAllCmd.Name(): pollAllCmd,
		revokeCmd.Name():  revokeCmd,
	}

	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Commands printing tables or JSON on stdout run quiet unless debugging.
	quietCommands := map[string]bool{
		"list":     true,
		"status":   true,
		"active":   true,
		"poll-all": true,
	}
	if quietCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	rootCmd.Logger = newLogger(*rootCmd)

	var g run.Group

	// OS signals, a followed workflow is revoked when interrupted.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Infof("Interrupted, stopping %q command", cmdName)
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// newLogger returns the application logger, logrus based unless disabled.
func newLogger(config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	l := logrus.New()
	l.Out = config.Stderr // Stdout is for the printers.
	if config.Debug {
		l.SetLevel(logrus.DebugLevel)
	}

	switch config.LoggerType {
	case commands.LoggerTypeJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	}

	logger := loglogrus.NewLogrus(logrus.NewEntry(l)).WithValues(log.Kv{
		"version": Version,
		"project": config.Project,
	})
	logger.Debugf("Debug level is enabled")

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
