package printer

import "github.com/slok/flowtrack/internal/model"

// Printer knows how to print workflow information in different formats.
type Printer interface {
	PrintList(workflows []model.WorkflowRecord) error
	PrintStatus(workflow model.WorkflowRecord) error
	PrintTasks(tasks model.TaskTree) error
	PrintIDs(ids []string) error
	PrintMessage(msg string) error
}
