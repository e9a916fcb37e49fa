package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Priority int

const (
	PriorityUrgent Priority = 1
	PriorityNormal Priority = 2
	PriorityLow    Priority = 3
)

func (p Priority) Valid() bool {
	return p >= PriorityUrgent && p <= PriorityLow
}

func (p Priority) String() string {
	switch p {
	case PriorityUrgent:
		return "Urgent"
	case PriorityNormal:
		return "Normal"
	case PriorityLow:
		return "Low"
	default:
		return "Unknown"
	}
}

// ParsePriority accepts the numeric form value ("1", "2" or "3").
func ParsePriority(raw string) (Priority, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("priority %q is not a number", raw)
	}
	p := Priority(n)
	if !p.Valid() {
		return 0, fmt.Errorf("priority %d is not one of 1, 2, 3", n)
	}
	return p, nil
}

type Status string

const (
	StatusOpen   Status = "Open"
	StatusClosed Status = "Closed"
)

const (
	MaxRepeatIntervalDays = 365

	ColumnName               = "name"
	ColumnProject            = "project"
	ColumnPriority           = "priority"
	ColumnDescription        = "description"
	ColumnDueDate            = "due_date"
	ColumnRepeatIntervalDays = "repeat_interval_days"
	ColumnStatus             = "status"
	ColumnClosedOn           = "closed_on"
	ColumnReopenAt           = "reopen_at"
	ColumnCreatedAt          = "created_at"
)

type Task struct {
	ID                 string     `gorm:"primaryKey;size:36" json:"id"`
	Name               string     `gorm:"not null" json:"name"`
	Project            string     `json:"project"`
	Priority           Priority   `gorm:"not null;index" json:"priority"`
	Description        string     `json:"description"`
	DueDate            Date       `gorm:"type:text" json:"due_date"`
	RepeatIntervalDays int        `gorm:"not null" json:"repeat_interval_days,omitempty"`
	Status             Status     `gorm:"type:varchar(10);not null;index" json:"status"`
	ClosedOn           *time.Time `json:"closed_on,omitempty"`
	ReopenAt           *time.Time `gorm:"index" json:"reopen_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Recurs reports whether the task carries a repeat interval.
func (t *Task) Recurs() bool {
	return t.RepeatIntervalDays > 0
}

func (t *Task) IsClosed() bool {
	return t.Status == StatusClosed
}

// TaskView is a task prepared for listing, with overdue computed at read time.
type TaskView struct {
	Task
	Overdue bool `json:"overdue"`
}

// ScoredTask is a search hit together with its relevance score.
type ScoredTask struct {
	Task  `gorm:"embedded"`
	Score float64 `json:"score"`
}
