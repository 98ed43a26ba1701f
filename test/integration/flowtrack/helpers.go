package flowtrack

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/slok/flowtrack/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		return fmt.Errorf("flowtrack binary path is required (FLOWTRACK_INTEGRATION_BINARY)")
	}

	// go test changes the CWD to the package directory, relative paths would be misleading.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("FLOWTRACK_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("flowtrack binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "FLOWTRACK_INTEGRATION"
		envBinary     = "FLOWTRACK_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{Binary: os.Getenv(envBinary)}
	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// RunCmd runs a flowtrack command against a specific history database with logging disabled.
func RunCmd(ctx context.Context, config Config, dbPath, cmdArgs string) (stdout, stderr []byte, err error) {
	args := fmt.Sprintf("--no-log --db-path %s %s", dbPath, cmdArgs)
	return testutils.RunFlowtrack(ctx, nil, config.Binary, args, true)
}

// RunWorkflow runs and follows a workflow file, printing the outcome in JSON.
func RunWorkflow(ctx context.Context, config Config, dbPath, project, file string) (stdout, stderr []byte, err error) {
	return RunCmd(ctx, config, dbPath, fmt.Sprintf("--project %s run --author alice --poll-interval 20ms --format json %s", project, file))
}

// RunList lists the workflows of a project in JSON format.
func RunList(ctx context.Context, config Config, dbPath, project, extraArgs string) (stdout, stderr []byte, err error) {
	return RunCmd(ctx, config, dbPath, fmt.Sprintf("--project %s list --format json %s", project, extraArgs))
}

// RunStatus gets the status of a workflow in JSON format.
func RunStatus(ctx context.Context, config Config, dbPath, project, id string) (stdout, stderr []byte, err error) {
	return RunCmd(ctx, config, dbPath, fmt.Sprintf("--project %s status --format json %s", project, id))
}

// WriteWorkflow writes a workflow definition in a temp dir and returns its path.
func WriteWorkflow(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("could not write workflow: %s", err)
	}

	return path
}
