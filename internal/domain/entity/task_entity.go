package entity

import (
	"strings"
	"time"
)

// TaskStatus is the canonical three-state task lifecycle.
// Deployments render it with one of two label sets, see StatusLabels.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
)

// TaskPriority ranks a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Task is owned by exactly one user (CreatedBy) and is visible only to that user.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	DueDate     *time.Time
	Assignee    string
	Labels      []string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnedBy reports whether userID owns the task.
func (t *Task) OwnedBy(userID string) bool {
	return t != nil && t.CreatedBy == userID
}

// statusAliases maps every accepted external label to its canonical state.
var statusAliases = map[string]TaskStatus{
	"todo":        StatusTodo,
	"pending":     StatusTodo,
	"in-progress": StatusInProgress,
	"in_progress": StatusInProgress,
	"done":        StatusDone,
	"completed":   StatusDone,
}

// ParseTaskStatus maps a label from either label set to the canonical status.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

// ParseTaskPriority validates a priority label.
func ParseTaskPriority(s string) (TaskPriority, bool) {
	switch p := TaskPriority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, true
	}
	return "", false
}

// StatusLabels renders canonical statuses for one deployment flavour.
type StatusLabels struct {
	Todo       string
	InProgress string
	Done       string
}

var (
	StandardLabels = StatusLabels{Todo: "todo", InProgress: "in-progress", Done: "done"}
	LegacyLabels   = StatusLabels{Todo: "pending", InProgress: "in_progress", Done: "completed"}
)

// LabelsFor returns the label set by name, defaulting to StandardLabels.
func LabelsFor(name string) StatusLabels {
	if strings.EqualFold(strings.TrimSpace(name), "legacy") {
		return LegacyLabels
	}
	return StandardLabels
}

// Label renders s with this label set.
func (l StatusLabels) Label(s TaskStatus) string {
	switch s {
	case StatusInProgress:
		return l.InProgress
	case StatusDone:
		return l.Done
	default:
		return l.Todo
	}
}

// TaskStats aggregates one user's tasks by status and priority.
type TaskStats struct {
	Total      int            `json:"total"`
	Pending    int            `json:"pending"`
	InProgress int            `json:"in_progress"`
	Completed  int            `json:"completed"`
	ByPriority map[string]int `json:"by_priority"`
}

// NewTaskStats returns zeroed stats with every priority bucket present.
func NewTaskStats() *TaskStats {
	return &TaskStats{
		ByPriority: map[string]int{string(PriorityLow): 0, string(PriorityMedium): 0, string(PriorityHigh): 0},
	}
}

// Add counts n tasks with the given status and priority.
func (s *TaskStats) Add(status TaskStatus, priority TaskPriority, n int) {
	if s.ByPriority == nil {
		s.ByPriority = NewTaskStats().ByPriority
	}
	s.Total += n
	switch status {
	case StatusInProgress:
		s.InProgress += n
	case StatusDone:
		s.Completed += n
	default:
		s.Pending += n
	}
	s.ByPriority[string(priority)] += n
}
