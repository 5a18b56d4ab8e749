package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/dutyboard/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, name, description, category, weekday_only, weekend_only, frequency_days, created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	err := scanner.Scan(
		&t.ID, &t.Name, &t.Description, &t.Category,
		&t.WeekdayOnly, &t.WeekendOnly, &t.FrequencyDays,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ValidateTask checks the catalog invariants before a task is stored or
// scheduled: known category, frequency of at least one day, and at most
// one of the day-type restrictions.
func ValidateTask(name string, category model.Category, weekdayOnly, weekendOnly bool, frequencyDays int) error {
	if name == "" {
		return fmt.Errorf("task name is required")
	}
	if !category.Valid() {
		return fmt.Errorf("unknown category %q", category)
	}
	if frequencyDays < 1 {
		return fmt.Errorf("frequency_days must be >= 1, got %d", frequencyDays)
	}
	if weekdayOnly && weekendOnly {
		return fmt.Errorf("task cannot be both weekday-only and weekend-only")
	}
	return nil
}

// List returns all tasks ordered by name, the stable catalog order the
// generator iterates in.
func (s *TaskStore) List() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskCols + ` FROM tasks ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) Create(name, description string, category model.Category, weekdayOnly, weekendOnly bool, frequencyDays int) (*model.Task, error) {
	if err := ValidateTask(name, category, weekdayOnly, weekendOnly, frequencyDays); err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (name, description, category, weekday_only, weekend_only, frequency_days) VALUES (?, ?, ?, ?, ?, ?)`,
		name, description, category, weekdayOnly, weekendOnly, frequencyDays,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) Update(id int64, name, description string, category model.Category, weekdayOnly, weekendOnly bool, frequencyDays int) (*model.Task, error) {
	if err := ValidateTask(name, category, weekdayOnly, weekendOnly, frequencyDays); err != nil {
		return nil, err
	}

	_, err := s.db.Exec(
		`UPDATE tasks SET name = ?, description = ?, category = ?, weekday_only = ?, weekend_only = ?, frequency_days = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, description, category, weekdayOnly, weekendOnly, frequencyDays, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
