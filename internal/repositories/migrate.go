package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	model "task-tracker.com/task-tracker/internal/models"
	"task-tracker.com/task-tracker/internal/search"
)

func (r *TaskRepository) searchTable() string {
	return r.table + "_search"
}

// Migrate creates the task table and an external-content FTS5 index over the
// searchable columns, kept in sync by triggers.
func (r *TaskRepository) Migrate(ctx context.Context) error {
	db := r.db.WithContext(ctx)

	if err := db.Table(r.table).AutoMigrate(&model.Task{}); err != nil {
		return fmt.Errorf("migrate %s: %w", r.table, err)
	}

	var indexed int64
	if err := db.Raw("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", r.searchTable()).
		Scan(&indexed).Error; err != nil {
		return fmt.Errorf("inspect search index: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range r.searchSchema() {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("migrate search index: %w", err)
			}
		}
		if indexed == 0 {
			rebuild := fmt.Sprintf("INSERT INTO %[1]s(%[1]s) VALUES('rebuild')", r.searchTable())
			if err := tx.Exec(rebuild).Error; err != nil {
				return fmt.Errorf("rebuild search index: %w", err)
			}
		}
		return nil
	})
}

func (r *TaskRepository) searchSchema() []string {
	fts := r.searchTable()
	cols := strings.Join(search.IndexedFields, ", ")
	newCols := "new." + strings.Join(search.IndexedFields, ", new.")
	oldCols := "old." + strings.Join(search.IndexedFields, ", old.")

	return []string{
		fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS %s USING fts5(%s, content='%s', content_rowid='rowid')`,
			fts, cols, r.table),
		fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %[1]s_ai AFTER INSERT ON %[2]s BEGIN
  INSERT INTO %[1]s(rowid, %[3]s) VALUES (new.rowid, %[4]s);
END`, fts, r.table, cols, newCols),
		fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %[1]s_ad AFTER DELETE ON %[2]s BEGIN
  INSERT INTO %[1]s(%[1]s, rowid, %[3]s) VALUES ('delete', old.rowid, %[4]s);
END`, fts, r.table, cols, oldCols),
		fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %[1]s_au AFTER UPDATE ON %[2]s BEGIN
  INSERT INTO %[1]s(%[1]s, rowid, %[3]s) VALUES ('delete', old.rowid, %[4]s);
  INSERT INTO %[1]s(rowid, %[3]s) VALUES (new.rowid, %[5]s);
END`, fts, r.table, cols, oldCols, newCols),
	}
}
