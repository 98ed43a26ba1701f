package printer

import (
	"encoding/json"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/slok/flowtrack/internal/model"
)

// JSONPrinter prints workflow information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// listItem represents a workflow in the list output (subset of fields).
type listItem struct {
	ID           string     `json:"id"`
	State        string     `json:"state"`
	LaunchedBy   string     `json:"launched_by,omitempty"`
	TimeCreated  time.Time  `json:"time_created"`
	TimeFinished *time.Time `json:"time_finished"`
}

// statusOutput represents the full workflow status output.
type statusOutput struct {
	ID           string          `json:"id"`
	Project      string          `json:"project"`
	State        string          `json:"state"`
	Workflow     json.RawMessage `json:"workflow,omitempty"`
	LaunchedBy   string          `json:"launched_by,omitempty"`
	AbortedBy    string          `json:"aborted_by,omitempty"`
	TimeCreated  time.Time       `json:"time_created"`
	TimeFinished *time.Time      `json:"time_finished"`
	Succeeded    *bool           `json:"succeeded"`
	Messages     []string        `json:"messages"`
	Tasks        model.TaskTree  `json:"tasks"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintList prints workflows in JSON format with a subset of fields.
func (j *JSONPrinter) PrintList(workflows []model.WorkflowRecord) error {
	items := make([]listItem, len(workflows))
	for i, w := range workflows {
		items[i] = listItem{
			ID:           w.ID,
			State:        workflowState(w),
			LaunchedBy:   w.LaunchedBy,
			TimeCreated:  w.TimeCreated.UTC(),
			TimeFinished: utcPtr(w.TimeFinished),
		}
	}

	return j.encode(items)
}

// PrintStatus prints the detailed workflow status in JSON format.
func (j *JSONPrinter) PrintStatus(w model.WorkflowRecord) error {
	msgs := w.Messages
	if msgs == nil {
		msgs = []string{}
	}
	tasks := w.Tasks
	if tasks == nil {
		tasks = model.TaskTree{}
	}

	return j.encode(statusOutput{
		ID:           w.ID,
		Project:      w.Project,
		State:        workflowState(w),
		Workflow:     w.Description,
		LaunchedBy:   w.LaunchedBy,
		AbortedBy:    w.AbortedBy,
		TimeCreated:  w.TimeCreated.UTC(),
		TimeFinished: utcPtr(w.TimeFinished),
		Succeeded:    w.Succeeded,
		Messages:     msgs,
		Tasks:        tasks,
	})
}

// PrintTasks prints a task tree in JSON format.
func (j *JSONPrinter) PrintTasks(tasks model.TaskTree) error {
	if tasks == nil {
		tasks = model.TaskTree{}
	}
	return j.encode(tasks)
}

// PrintIDs prints a list of IDs in JSON format.
func (j *JSONPrinter) PrintIDs(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	return j.encode(ids)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
