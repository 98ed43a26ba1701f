package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/slok/flowtrack/internal/model"
)

// TablePrinter prints workflow information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintList prints workflows in a table format.
func (t *TablePrinter) PrintList(workflows []model.WorkflowRecord) error {
	if len(workflows) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tSTATE\tLAUNCHED BY\tCREATED\tDURATION")
	for _, w := range workflows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			w.ID,
			workflowState(w),
			orDash(w.LaunchedBy),
			TimeAgo(w.TimeCreated),
			FormatDuration(w.TimeCreated, w.TimeFinished),
		)
	}

	return nil
}

// PrintStatus prints a detailed workflow status with its task tree.
func (t *TablePrinter) PrintStatus(w model.WorkflowRecord) error {
	fmt.Fprintf(t.writer, "ID:          %s\n", w.ID)
	fmt.Fprintf(t.writer, "Project:     %s\n", w.Project)
	fmt.Fprintf(t.writer, "State:       %s\n", workflowState(w))
	fmt.Fprintf(t.writer, "Launched by: %s\n", orDash(w.LaunchedBy))
	if w.Aborted() {
		fmt.Fprintf(t.writer, "Aborted by:  %s\n", w.AbortedBy)
	}
	fmt.Fprintf(t.writer, "Created:     %s\n", FormatTimestamp(w.TimeCreated))
	if w.TimeFinished != nil {
		fmt.Fprintf(t.writer, "Finished:    %s\n", FormatTimestamp(*w.TimeFinished))
	}
	for _, m := range w.Messages {
		fmt.Fprintf(t.writer, "Error:       %s\n", m)
	}

	if len(w.Tasks) == 0 {
		return nil
	}
	fmt.Fprintln(t.writer)
	return t.PrintTasks(w.Tasks)
}

// PrintTasks prints a task tree, group children indented under their group.
func (t *TablePrinter) PrintTasks(tasks model.TaskTree) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "STEP\tID\tSTATUS\tPROGRESS\tINFO")
	for _, n := range tasks {
		progress := "-"
		if n.IsGroup() {
			done := 0
			if n.NumDone != nil {
				done = *n.NumDone
			}
			progress = fmt.Sprintf("%d/%d", done, len(n.Children))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", orDash(n.Name), n.ID, nodeStatus(n), progress, formatInfo(n.Info))

		for _, cid := range n.ChildIDs() {
			c := n.Children[cid]
			fmt.Fprintf(tw, "  └ %s\t%s\t%s\t-\t%s\n", orDash(c.Name), c.ID, nodeStatus(c), formatInfo(c.Info))
		}
	}

	return nil
}

// PrintIDs prints one ID per line.
func (t *TablePrinter) PrintIDs(ids []string) error {
	for _, id := range ids {
		fmt.Fprintln(t.writer, id)
	}
	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func workflowState(w model.WorkflowRecord) string {
	switch {
	case !w.Finished():
		return "running"
	case w.Aborted():
		return "aborted"
	case w.Succeeded != nil && *w.Succeeded:
		return "succeeded"
	default:
		return "failed"
	}
}

func nodeStatus(n *model.TaskNode) string {
	if n.Status == "" {
		return "PENDING"
	}
	return n.Status
}

func formatInfo(info map[string]any) string {
	if len(info) == 0 {
		return "-"
	}

	parts := make([]string, 0, len(info))
	for _, k := range sortedKeys(info) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, info[k]))
	}
	return strings.Join(parts, " ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
