// Package message defines the user-facing messages and labels the screens
// show, identified by stable codes so view-states stay comparable.
package message

// Code identifies a user-facing message. None means no message.
type Code int

const (
	None Code = iota
	LoadingTasksError
	LoadingTaskError
	TaskNotFound
	EmptyTask
	TaskMarkedComplete
	TaskMarkedActive
	CompletedTasksCleared
	TaskAdded
	TaskSaved
	TaskDeleted

	LabelAll
	LabelActive
	LabelCompleted
	NoTasksAll
	NoTasksActive
	NoTasksCompleted
)

var text = map[Code]string{
	LoadingTasksError:     "Error while loading tasks",
	LoadingTaskError:      "Error while loading task",
	TaskNotFound:          "Task not found",
	EmptyTask:             "Tasks cannot be empty",
	TaskMarkedComplete:    "Task marked complete",
	TaskMarkedActive:      "Task marked active",
	CompletedTasksCleared: "Completed tasks cleared",
	TaskAdded:             "Task added",
	TaskSaved:             "Task saved",
	TaskDeleted:           "Task was deleted",
	LabelAll:              "All Tasks",
	LabelActive:           "Active Tasks",
	LabelCompleted:        "Completed Tasks",
	NoTasksAll:            "You have no tasks!",
	NoTasksActive:         "You have no active tasks!",
	NoTasksCompleted:      "You have no completed tasks!",
}

// String returns the English text for c, or "" for None and unknown codes.
func (c Code) String() string {
	return text[c]
}

// MarshalText encodes the code as its text so JSON view-states are readable.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
