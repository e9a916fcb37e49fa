package services

import (
	"context"
	"log/slog"
	"strings"

	"task-tracker.com/task-tracker/internal/auth"
	apperrors "task-tracker.com/task-tracker/internal/errors"
	model "task-tracker.com/task-tracker/internal/models"
	repository "task-tracker.com/task-tracker/internal/repositories"
	"task-tracker.com/task-tracker/internal/search"
)

// TaskStore is the persistence the lifecycle engine needs.
type TaskStore interface {
	Find(ctx context.Context, filter repository.Filter, sort repository.Sort) ([]model.Task, error)
	FindOne(ctx context.Context, id string) (*model.Task, error)
	Insert(ctx context.Context, task *model.Task) error
	Replace(ctx context.Context, id string, task *model.Task) error
	UpdateFields(ctx context.Context, id string, fields repository.Fields) error
	UpdateMany(ctx context.Context, filter repository.Filter, fields repository.Fields) (int64, error)
	Search(ctx context.Context, q search.Query) ([]model.ScoredTask, error)
}

// TaskInput is a validated-at-the-boundary task form.
type TaskInput struct {
	Name               string
	Project            string
	Priority           model.Priority
	Description        string
	DueDate            model.Date
	RepeatIntervalDays int
}

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

type TaskService struct {
	repo   TaskStore
	clock  Clock
	logger *slog.Logger
}

func NewTaskService(repo TaskStore, clock Clock, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		repo:   repo,
		clock:  clock,
		logger: logger,
	}
}

func (s *TaskService) Create(ctx context.Context, in TaskInput) (string, error) {
	id, err := auth.Require(ctx)
	if err != nil {
		return "", err
	}

	task, err := s.buildTask(in)
	if err != nil {
		return "", err
	}

	if err := s.repo.Insert(ctx, task); err != nil {
		return "", err
	}

	s.logger.Info("task created", "task_id", task.ID, "user", id.Username)
	return task.ID, nil
}

// Update replaces the whole record: the task comes back Open with no
// closing or reopening timestamps.
func (s *TaskService) Update(ctx context.Context, taskID string, in TaskInput) error {
	id, err := auth.Require(ctx)
	if err != nil {
		return err
	}

	task, err := s.buildTask(in)
	if err != nil {
		return err
	}

	if err := s.repo.Replace(ctx, taskID, task); err != nil {
		return err
	}

	s.logger.Info("task updated", "task_id", taskID, "user", id.Username)
	return nil
}

func (s *TaskService) Close(ctx context.Context, taskID string) error {
	id, err := auth.Require(ctx)
	if err != nil {
		return err
	}

	task, err := s.repo.FindOne(ctx, taskID)
	if err != nil {
		return err
	}
	if task.IsClosed() {
		return apperrors.Validation("task %s is already closed", taskID)
	}

	now := s.clock.Now()
	fields := repository.Fields{
		model.ColumnStatus:   model.StatusClosed,
		model.ColumnClosedOn: now.UTC(),
		model.ColumnReopenAt: nil,
	}

	// A repeat without a due date yields no reopen_at.
	if task.Recurs() && !task.DueDate.IsZero() {
		reopenAt, err := NextOccurrence(task.DueDate, task.RepeatIntervalDays, s.clock.Location())
		if err != nil {
			return err
		}
		fields[model.ColumnReopenAt] = reopenAt.UTC()
	}

	if err := s.repo.UpdateFields(ctx, taskID, fields); err != nil {
		return err
	}

	s.logger.Info("task closed",
		"task_id", taskID,
		"user", id.Username,
		"reopen_at", fields[model.ColumnReopenAt],
	)
	return nil
}

// Reprioritize clamps to an extreme: up is always Urgent, down is always Low.
func (s *TaskService) Reprioritize(ctx context.Context, taskID string, direction Direction) error {
	if _, err := auth.Require(ctx); err != nil {
		return err
	}

	var priority model.Priority
	switch direction {
	case DirectionUp:
		priority = model.PriorityUrgent
	case DirectionDown:
		priority = model.PriorityLow
	default:
		return apperrors.Validation("unknown direction %q", direction)
	}

	return s.repo.UpdateFields(ctx, taskID, repository.Fields{model.ColumnPriority: priority})
}

// Reschedule pushes the due date a week out and reopens the task.
func (s *TaskService) Reschedule(ctx context.Context, taskID string) error {
	id, err := auth.Require(ctx)
	if err != nil {
		return err
	}

	due := s.clock.Today().AddDays(rescheduleDays)
	err = s.repo.UpdateFields(ctx, taskID, repository.Fields{
		model.ColumnDueDate:  due,
		model.ColumnStatus:   model.StatusOpen,
		model.ColumnReopenAt: nil,
	})
	if err != nil {
		return err
	}

	s.logger.Info("task rescheduled", "task_id", taskID, "user", id.Username, "due_date", due.String())
	return nil
}

func (s *TaskService) Get(ctx context.Context, taskID string) (*model.Task, error) {
	if _, err := auth.Require(ctx); err != nil {
		return nil, err
	}
	return s.repo.FindOne(ctx, taskID)
}

func (s *TaskService) ListOpen(ctx context.Context) ([]model.TaskView, error) {
	return s.list(ctx, model.StatusOpen)
}

func (s *TaskService) ListClosed(ctx context.Context) ([]model.TaskView, error) {
	return s.list(ctx, model.StatusClosed)
}

func (s *TaskService) list(ctx context.Context, status model.Status) ([]model.TaskView, error) {
	if _, err := auth.Require(ctx); err != nil {
		return nil, err
	}

	tasks, err := s.repo.Find(ctx, repository.Filter{Status: status}, repository.SortPriority)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	views := make([]model.TaskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, model.TaskView{
			Task:    task,
			Overdue: status == model.StatusOpen && ComputeOverdue(task, now),
		})
	}
	return views, nil
}

func (s *TaskService) Search(ctx context.Context, text string, closed bool) ([]model.ScoredTask, error) {
	if _, err := auth.Require(ctx); err != nil {
		return nil, err
	}

	q, err := search.Build(text, closed)
	if err != nil {
		return nil, err
	}
	return s.repo.Search(ctx, q)
}

func (s *TaskService) buildTask(in TaskInput) (*model.Task, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if !in.Priority.Valid() {
		return nil, apperrors.Validation("priority %d is not one of 1, 2, 3", in.Priority)
	}
	if in.RepeatIntervalDays < 0 || in.RepeatIntervalDays > model.MaxRepeatIntervalDays {
		return nil, apperrors.Validation("repeat interval must be between 1 and %d days", model.MaxRepeatIntervalDays)
	}

	return &model.Task{
		Name:               name,
		Project:            strings.TrimSpace(in.Project),
		Priority:           in.Priority,
		Description:        strings.TrimSpace(in.Description),
		DueDate:            defaultDueDate(in.DueDate, in.RepeatIntervalDays, s.clock.Today()),
		RepeatIntervalDays: in.RepeatIntervalDays,
		Status:             model.StatusOpen,
	}, nil
}
