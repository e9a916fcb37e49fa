package services

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	model "task-tracker.com/task-tracker/internal/models"
)

const rescheduleDays = 7

// Clock supplies "now" in the zone that defines calendar days.
type Clock struct {
	now func() time.Time
	loc *time.Location
}

func NewClock(now func() time.Time, loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{now: now, loc: loc}
}

func SystemClock(loc *time.Location) Clock {
	return NewClock(time.Now, loc)
}

func (c Clock) Now() time.Time {
	return c.now().In(c.loc).Truncate(time.Second)
}

func (c Clock) Today() model.Date {
	return model.DateOf(c.Now())
}

func (c Clock) Location() *time.Location {
	return c.loc
}

// ComputeOverdue reports whether the task is due today or earlier, judged by
// calendar day in now's location. Tasks without a due date are never overdue.
func ComputeOverdue(task model.Task, now time.Time) bool {
	if task.DueDate.IsZero() {
		return false
	}
	return model.DateOf(now).DaysSince(task.DueDate) >= 0
}

// NextOccurrence returns midnight of the day intervalDays after due, as the
// second occurrence of a daily rule starting on due.
func NextOccurrence(due model.Date, intervalDays int, loc *time.Location) (time.Time, error) {
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.DAILY,
		Interval: intervalDays,
		Count:    2,
		Dtstart:  due.Midnight(loc),
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("recurrence rule: %w", err)
	}

	occurrences := rule.All()
	if len(occurrences) < 2 {
		return time.Time{}, fmt.Errorf("recurrence rule every %d days produced no next occurrence", intervalDays)
	}
	return occurrences[1], nil
}

// defaultDueDate back-fills tomorrow for a repeating task without a due date.
func defaultDueDate(due model.Date, repeatDays int, today model.Date) model.Date {
	if repeatDays > 0 && due.IsZero() {
		return today.AddDays(1)
	}
	return due
}
