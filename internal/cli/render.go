package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"task-manager/internal/domain"
)

const gridColumns = 3

// renderer writes tasks to the terminal using the configured time format
type renderer struct {
	out        io.Writer
	timeFormat string
	verbose    bool
}

func (r renderer) tasks(tasks []domain.Task, view domain.ViewMode) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(r.out, "No tasks found.")
		return err
	}
	if view == domain.ViewGrid {
		return r.grid(tasks)
	}
	return r.list(tasks)
}

func (r renderer) list(tasks []domain.Task) error {
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)

	header := "ID\tDONE\tPRIORITY\tTITLE\tCREATED"
	if r.verbose {
		header += "\tDESCRIPTION"
	}
	fmt.Fprintln(w, header)

	for _, t := range tasks {
		line := fmt.Sprintf("%d\t%s\t%s\t%s\t%s", t.ID, checkbox(t), t.Priority.DisplayName(), t.Title, t.CreatedAt.Local().Format(r.timeFormat))
		if r.verbose {
			line += "\t" + oneLine(t.Description)
		}
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}

func (r renderer) grid(tasks []domain.Task) error {
	w := tabwriter.NewWriter(r.out, 0, 0, 4, ' ', 0)

	for i := 0; i < len(tasks); i += gridColumns {
		end := min(i+gridColumns, len(tasks))
		cells := make([]string, 0, gridColumns)
		for _, t := range tasks[i:end] {
			cells = append(cells, fmt.Sprintf("#%d %s %s (%s)", t.ID, checkbox(t), t.Title, t.Priority.DisplayName()))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

func (r renderer) task(t domain.Task) error {
	w := tabwriter.NewWriter(r.out, 0, 0, 1, ' ', 0)

	status := "pending"
	if t.IsCompleted {
		status = "completed"
	}

	fmt.Fprintf(w, "ID:\t%d\n", t.ID)
	fmt.Fprintf(w, "Title:\t%s\n", t.Title)
	if t.Description != "" {
		fmt.Fprintf(w, "Description:\t%s\n", oneLine(t.Description))
	}
	fmt.Fprintf(w, "Priority:\t%s\n", t.Priority.DisplayName())
	fmt.Fprintf(w, "Status:\t%s\n", status)
	fmt.Fprintf(w, "Created:\t%s\n", t.CreatedAt.Local().Format(r.timeFormat))
	return w.Flush()
}

func checkbox(t domain.Task) string {
	if t.IsCompleted {
		return "[x]"
	}
	return "[ ]"
}

// oneLine keeps multi-line descriptions from breaking table columns
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
