package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
)

var (
	colorAccent  = lipgloss.Color("#20B9B4")
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#5C7A84")
)

var styles = struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Box     lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	Header:  lipgloss.NewStyle().Bold(true).Underline(true),
	Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	Success: lipgloss.NewStyle().Foreground(colorSuccess),
	Warning: lipgloss.NewStyle().Foreground(colorWarning),
	Error:   lipgloss.NewStyle().Foreground(colorError),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1),
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case models.StatusCompleted:
		return styles.Success
	case models.StatusInProgress:
		return styles.Warning
	default:
		return styles.Muted
	}
}

// cell pads s to width before styling so ANSI codes do not skew columns.
func cell(st lipgloss.Style, s string, width int) string {
	return st.Render(fmt.Sprintf("%-*s", width, s))
}

func dueLabel(raw string) string {
	if raw == "" {
		return "-"
	}
	if len(raw) >= len("2006-01-02") {
		return raw[:len("2006-01-02")]
	}
	return raw
}

func renderTasks(w io.Writer, tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, styles.Muted.Render("No tasks"))
		return
	}

	fmt.Fprintln(w, styles.Header.Render(fmt.Sprintf("%-36s  %-12s  %-8s  %-10s  %s", "ID", "STATUS", "PRIORITY", "DUE", "TITLE")))
	for _, t := range tasks {
		line := strings.Join([]string{
			cell(styles.Muted, t.ID, 36),
			cell(statusStyle(t.Status), t.Status, 12),
			fmt.Sprintf("%-8s", t.Priority),
			fmt.Sprintf("%-10s", dueLabel(t.DueDate)),
			t.Title,
		}, "  ")
		if len(t.Tags) > 0 {
			line += " " + styles.Muted.Render("["+strings.Join(t.Tags, ", ")+"]")
		}
		fmt.Fprintln(w, line)
	}
}

func renderTask(w io.Writer, t *models.Task) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", styles.Title.Render(t.Title))
	if t.Description != "" {
		fmt.Fprintf(&b, "%s\n", t.Description)
	}
	fmt.Fprintf(&b, "id:       %s\n", t.ID)
	fmt.Fprintf(&b, "status:   %s\n", statusStyle(t.Status).Render(t.Status))
	fmt.Fprintf(&b, "priority: %s\n", t.Priority)
	fmt.Fprintf(&b, "due:      %s", dueLabel(t.DueDate))
	if len(t.Tags) > 0 {
		fmt.Fprintf(&b, "\ntags:     %s", strings.Join(t.Tags, ", "))
	}
	fmt.Fprintln(w, styles.Box.Render(b.String()))
}

func renderStats(w io.Writer, st models.Stats) {
	overdue := fmt.Sprintf("overdue %d", st.Overdue)
	if st.Overdue > 0 {
		overdue = styles.Error.Render(overdue)
	}
	parts := []string{
		styles.Title.Render(fmt.Sprintf("total %d", st.Total)),
		styles.Muted.Render(fmt.Sprintf("pending %d", st.Pending)),
		styles.Warning.Render(fmt.Sprintf("in progress %d", st.InProgress)),
		styles.Success.Render(fmt.Sprintf("completed %d", st.Completed)),
		overdue,
	}
	fmt.Fprintln(w, styles.Box.Render(strings.Join(parts, "  ")))
}

func renderUpcoming(w io.Writer, tasks []models.UpcomingTask) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, styles.Muted.Render("No Tasks Due"))
		return
	}
	fmt.Fprintln(w, styles.Header.Render(fmt.Sprintf("%-10s  %-12s  %-8s  %s", "DUE", "STATUS", "PRIORITY", "TITLE")))
	for _, t := range tasks {
		fmt.Fprintf(w, "%-10s  %s  %-8s  %s\n", dueLabel(t.DueDate), cell(statusStyle(t.Status), t.Status, 12), t.Priority, t.Title)
	}
}

func renderActivities(w io.Writer, acts []models.Activity) {
	if len(acts) == 0 {
		fmt.Fprintln(w, styles.Muted.Render("No activity"))
		return
	}
	for _, a := range acts {
		line := fmt.Sprintf("%s  %s  %s", styles.Muted.Render(a.CreatedAt), cell(styles.Title, a.Action, 14), a.Description)
		if a.Task != nil {
			line += " " + styles.Muted.Render("("+a.Task.Title+")")
		}
		fmt.Fprintln(w, line)
	}
}

func success(w io.Writer, msg string) {
	fmt.Fprintln(w, styles.Success.Render("✓ "+msg))
}
