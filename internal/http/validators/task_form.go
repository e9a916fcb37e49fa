package validators

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	apperrors "task-tracker.com/task-tracker/internal/errors"
	model "task-tracker.com/task-tracker/internal/models"
	"task-tracker.com/task-tracker/internal/services"
)

const (
	FieldName        = "task_name"
	FieldProject     = "task_project"
	FieldPriority    = "task_priority"
	FieldDescription = "task_desc"
	FieldDue         = "task_due"
	FieldRepeat      = "task_repeat"
)

// ParseTaskForm coerces the untyped task form into a TaskInput. Dates are
// read leniently in loc and kept as calendar days.
func ParseTaskForm(form url.Values, loc *time.Location) (services.TaskInput, error) {
	in := services.TaskInput{
		Name:        form.Get(FieldName),
		Project:     form.Get(FieldProject),
		Description: form.Get(FieldDescription),
		Priority:    model.PriorityNormal,
	}

	if raw := strings.TrimSpace(form.Get(FieldPriority)); raw != "" {
		priority, err := model.ParsePriority(raw)
		if err != nil {
			return in, apperrors.Validation("%v", err)
		}
		in.Priority = priority
	}

	if raw := strings.TrimSpace(form.Get(FieldDue)); raw != "" {
		due, err := parseDueDate(raw, loc)
		if err != nil {
			return in, err
		}
		in.DueDate = due
	}

	if raw := strings.TrimSpace(form.Get(FieldRepeat)); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return in, apperrors.Validation("repeat %q is not a whole number of days", raw)
		}
		// Blank means no repeat; an explicit value must be a real interval.
		if days < 1 || days > model.MaxRepeatIntervalDays {
			return in, apperrors.Validation("repeat interval must be between 1 and %d days", model.MaxRepeatIntervalDays)
		}
		in.RepeatIntervalDays = days
	}

	return in, nil
}

func parseDueDate(raw string, loc *time.Location) (model.Date, error) {
	if due, err := model.ParseDate(raw); err == nil {
		return due, nil
	}

	t, err := dateparse.ParseIn(raw, loc)
	if err != nil {
		return model.Date{}, apperrors.Validation("due date %q is not a date", raw)
	}
	return model.DateOf(t.In(loc)), nil
}
