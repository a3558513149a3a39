package cli

import (
	"github.com/fatih/color"

	"todo/pkg/task"
)

// Sprint color functions for building styled strings.
var (
	Bold      = color.New(color.Bold).SprintFunc()
	Dim       = color.New(color.Faint).SprintFunc()
	Green     = color.New(color.FgGreen).SprintFunc()
	Red       = color.New(color.FgRed).SprintFunc()
	Yellow    = color.New(color.FgYellow).SprintFunc()
	BoldCyan  = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen = color.New(color.Bold, color.FgGreen).SprintFunc()
)

// checkbox renders a task's completion state.
func checkbox(t task.Task) string {
	if t.Completed {
		return Green("[x]")
	}
	return Dim("[ ]")
}

// titleFor styles a task title; completed tasks are dimmed.
func titleFor(t task.Task) string {
	if t.Completed {
		return Dim(t.TitleForList())
	}
	return Bold(t.TitleForList())
}
