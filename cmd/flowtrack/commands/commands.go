package commands

import (
	"context"
	"fmt"
	"io"
	"os/user"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/flowtrack/internal/conventions"
	"github.com/slok/flowtrack/internal/log"
	"github.com/slok/flowtrack/internal/printer"
	"github.com/slok/flowtrack/internal/queue/builtin"
	"github.com/slok/flowtrack/internal/queue/fake"
	"github.com/slok/flowtrack/internal/storage/sqlite"
	"github.com/slok/flowtrack/internal/tracker"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"

	formatTable = "table"
	formatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	DBPath     string
	Project    string
	Queue      string
	Workers    int

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	defaultDBPath := conventions.DBPath(filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir))
	app.Flag("db-path", "Path to the workflow history SQLite database file.").Envar("FLOWTRACK_DB_PATH").Default(defaultDBPath).StringVar(&c.DBPath)
	app.Flag("project", "Project the workflows belong to.").Short('p').Default(conventions.DefaultProject).StringVar(&c.Project)
	app.Flag("queue", "Worker queue where the workflows are submitted.").Default(conventions.DefaultQueue).StringVar(&c.Queue)
	app.Flag("workers", "Number of tasks the embedded workers run at the same time.").Default("4").IntVar(&c.Workers)

	return c
}

// newTracker returns a tracker backed by the SQLite history and the embedded workers.
// The returned func releases the resources.
func (r *RootCommand) newTracker(ctx context.Context) (*tracker.Tracker, func(), error) {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: r.DBPath,
		Logger: r.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create repository: %w", err)
	}

	backend, err := fake.NewBackend(fake.BackendConfig{
		Handlers: builtin.Registry(),
		Workers:  r.Workers,
		Queues:   []string{r.Queue},
		Logger:   r.Logger,
	})
	if err != nil {
		_ = repo.Close()
		return nil, nil, fmt.Errorf("could not create task queue backend: %w", err)
	}

	t, err := tracker.NewTracker(tracker.TrackerConfig{
		Repository: repo,
		Backend:    backend,
		Queue:      r.Queue,
		Logger:     r.Logger,
	})
	if err != nil {
		_ = backend.Close()
		_ = repo.Close()
		return nil, nil, fmt.Errorf("could not create tracker: %w", err)
	}

	closer := func() {
		if err := backend.Close(); err != nil {
			r.Logger.Warningf("could not close task queue backend: %v", err)
		}
		if err := repo.Close(); err != nil {
			r.Logger.Warningf("could not close repository: %v", err)
		}
	}

	return t, closer, nil
}

func newPrinter(format string, w io.Writer) printer.Printer {
	switch format {
	case formatJSON:
		return printer.NewJSONPrinter(w)
	default:
		return printer.NewTablePrinter(w)
	}
}

func formatFlag(cmd *kingpin.CmdClause, format *string) {
	cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(format, formatTable, formatJSON)
}

// currentUsername returns the OS user name, empty if unknown.
func currentUsername() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}
