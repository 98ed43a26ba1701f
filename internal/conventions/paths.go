package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default flowtrack data directory name (relative to home).
	DefaultDataDir = ".flowtrack"
	// DBFile is the workflow history SQLite database filename.
	DBFile = "flowtrack.db"

	// DefaultQueue is the worker queue workflows are routed to.
	DefaultQueue = "workers"
	// DefaultProject is the project used when none is set.
	DefaultProject = "default"
)

// DBPath returns the workflow history database path inside a data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}
