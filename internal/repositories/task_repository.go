package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "task-tracker.com/task-tracker/internal/errors"
	model "task-tracker.com/task-tracker/internal/models"
	"task-tracker.com/task-tracker/internal/search"
)

// Filter selects tasks. Zero fields do not constrain the result.
type Filter struct {
	Status       model.Status
	ReopenBefore *time.Time
}

func (f Filter) empty() bool {
	return f.Status == "" && f.ReopenBefore == nil
}

type Sort int

const (
	SortNone Sort = iota
	SortPriority
)

// Fields is a partial update keyed by model.Column* names.
type Fields map[string]any

type TaskRepository struct {
	db    *gorm.DB
	table string
}

func NewTaskRepository(db *gorm.DB, table string) *TaskRepository {
	return &TaskRepository{db: db, table: table}
}

func (r *TaskRepository) tasks(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.table)
}

func (r *TaskRepository) Find(ctx context.Context, filter Filter, sort Sort) ([]model.Task, error) {
	query := applyFilter(r.tasks(ctx), filter)
	if sort == SortPriority {
		query = query.Order(model.ColumnPriority + " asc").Order(model.ColumnCreatedAt + " asc")
	}

	var tasks []model.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindOne(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.tasks(ctx).First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task %s: %w", id, err)
	}
	return &task, nil
}

func (r *TaskRepository) Insert(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if err := r.tasks(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Replace overwrites every column of the task stored under id.
func (r *TaskRepository) Replace(ctx context.Context, id string, task *model.Task) error {
	task.ID = id
	res := r.tasks(ctx).
		Where("id = ?", id).
		Select("*").
		Omit("id", model.ColumnCreatedAt).
		Updates(task)
	if res.Error != nil {
		return fmt.Errorf("replace task %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

// UpdateFields merges fields into the task stored under id; other columns are untouched.
func (r *TaskRepository) UpdateFields(ctx context.Context, id string, fields Fields) error {
	res := r.tasks(ctx).
		Model(&model.Task{}).
		Where("id = ?", id).
		Updates(map[string]any(fields))
	if res.Error != nil {
		return fmt.Errorf("update task %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

// UpdateMany merges fields into every matching task in one statement and
// returns the number of tasks changed.
func (r *TaskRepository) UpdateMany(ctx context.Context, filter Filter, fields Fields) (int64, error) {
	if filter.empty() {
		return 0, errors.New("update many: refusing to update without a filter")
	}
	res := applyFilter(r.tasks(ctx).Model(&model.Task{}), filter).Updates(map[string]any(fields))
	if res.Error != nil {
		return 0, fmt.Errorf("update many tasks: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Search runs q against the full-text index. The score is the sum of the
// boosts of the fields that contain a term; bm25 orders equal scores.
func (r *TaskRepository) Search(ctx context.Context, q search.Query) ([]model.ScoredTask, error) {
	if q.Filter.Field != model.ColumnStatus {
		return nil, fmt.Errorf("search: unsupported filter field %q", q.Filter.Field)
	}

	fts := r.searchTable()
	terms := make([]string, 0, len(q.Should))
	args := make([]any, 0, len(q.Should)+3)
	for _, clause := range q.Should {
		terms = append(terms, fmt.Sprintf("%s * (t.rowid IN (SELECT rowid FROM %s WHERE %s MATCH ?))",
			strconv.FormatFloat(clause.Boost, 'f', -1, 64), fts, fts))
		args = append(args, q.FieldMatchExpression(clause.Field))
	}
	args = append(args, q.MatchExpression(), q.Filter.Value, q.Limit)

	stmt := fmt.Sprintf(`SELECT t.*, (%[3]s) AS score
FROM %[2]s
JOIN %[1]s AS t ON t.rowid = %[2]s.rowid
WHERE %[2]s MATCH ? AND t.%[5]s = ?
ORDER BY score DESC, bm25(%[2]s, %[4]s) ASC, t.%[6]s ASC
LIMIT ?`, r.table, fts, strings.Join(terms, " + "), q.Weights(), model.ColumnStatus, model.ColumnPriority)

	var hits []model.ScoredTask
	if err := r.db.WithContext(ctx).Raw(stmt, args...).Scan(&hits).Error; err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	return hits, nil
}

func applyFilter(query *gorm.DB, filter Filter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where(model.ColumnStatus+" = ?", filter.Status)
	}
	if filter.ReopenBefore != nil {
		query = query.Where(model.ColumnReopenAt+" IS NOT NULL AND "+model.ColumnReopenAt+" <= ?", filter.ReopenBefore.UTC())
	}
	return query
}
