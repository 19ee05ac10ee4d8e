// Package domain holds the Gantt task types shared by every layer.
// A GanttTask is a synthetic record fabricated for UI prototyping:
// generate → publish to observers → render / serve / summarize.
package domain

import (
	"fmt"
	"strconv"
	"time"
)

// TaskStatus tracks where a task sits on the board.
type TaskStatus string

const (
	StatusNotStarted TaskStatus = "not-started"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
	StatusTesting    TaskStatus = "testing"
	StatusOnHold     TaskStatus = "on-hold"
)

// Statuses is the closed status set, in draw order.
// The first entry doubles as the fallback for out-of-range draws.
var Statuses = []TaskStatus{
	StatusNotStarted,
	StatusInProgress,
	StatusCompleted,
	StatusTesting,
	StatusOnHold,
}

// Users is the closed set of assignees, in draw order.
var Users = []string{"Tom", "Jerry", "Alice", "Bob", "Eve", "Grace", "Mallory"}

// MaxCount caps batch sizes requested through the CLI and HTTP surfaces.
const MaxCount = 10000

// ParseCount validates a count received from a user-facing surface.
func ParseCount(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidCount
	}
	return n, CheckCount(n)
}

// CheckCount enforces 0 <= n <= MaxCount.
func CheckCount(n int) error {
	if n < 0 {
		return ErrInvalidCount
	}
	if n > MaxCount {
		return ErrCountTooLarge
	}
	return nil
}

// ParseStatus validates a status string against the closed set.
func ParseStatus(s string) (TaskStatus, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// IsKnownUser reports whether name belongs to the assignee set.
func IsKnownUser(name string) bool {
	for _, u := range Users {
		if u == name {
			return true
		}
	}
	return false
}

// GanttTask is one bar on the chart.
type GanttTask struct {
	ID       int        `json:"id" yaml:"id"`
	User     string     `json:"user" yaml:"user"`
	Task     string     `json:"task" yaml:"task"`
	Status   TaskStatus `json:"status" yaml:"status"`
	Start    time.Time  `json:"start" yaml:"start"`
	End      time.Time  `json:"end" yaml:"end"`
	Progress int        `json:"progress" yaml:"progress"`
}

// Duration returns End - Start.
func (t GanttTask) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

// Days returns the task length in whole calendar days. DST shifts of
// up to an hour still round to the calendar day count.
func (t GanttTask) Days() int {
	return int((t.Duration() + 12*time.Hour) / (24 * time.Hour))
}

// Batch is one generation pass over a board. Observers receive it after
// every regenerate.
type Batch struct {
	ID          string      `json:"batch_id" yaml:"batch_id"`
	Seq         uint64      `json:"seq" yaml:"seq"`
	Count       int         `json:"count" yaml:"count"`
	GeneratedAt time.Time   `json:"generated_at" yaml:"generated_at"`
	WindowStart time.Time   `json:"window_start" yaml:"window_start"`
	WindowEnd   time.Time   `json:"window_end" yaml:"window_end"`
	Tasks       []GanttTask `json:"tasks" yaml:"tasks"`

	// Elapsed is how long the batch took to synthesize. Not serialized.
	Elapsed time.Duration `json:"-" yaml:"-"`
}

// Summary aggregates a batch by status and assignee.
type Summary struct {
	BatchID     string             `json:"batch_id" yaml:"batch_id"`
	Total       int                `json:"total" yaml:"total"`
	ByStatus    map[TaskStatus]int `json:"by_status" yaml:"by_status"`
	ByUser      map[string]int     `json:"by_user" yaml:"by_user"`
	AvgProgress float64            `json:"avg_progress" yaml:"avg_progress"`
}

// TaskFilter narrows a task query. Empty fields match everything.
type TaskFilter struct {
	User   string
	Status TaskStatus
}

// Match reports whether t passes the filter.
func (f TaskFilter) Match(t GanttTask) bool {
	if f.User != "" && t.User != f.User {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	return true
}
