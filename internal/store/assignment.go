package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/dutyboard/internal/model"
	"modernc.org/sqlite"
)

// ErrDuplicateAssignment is returned by Create when an assignment already
// exists for the same (task, date). Hitting it during generation means a
// concurrent run got there first; the caller should retry the whole run.
var ErrDuplicateAssignment = errors.New("assignment already exists for task and date")

// sqliteUniqueViolation is the SQLITE_CONSTRAINT_UNIQUE extended result code.
const sqliteUniqueViolation = 2067

// DateLayout is the storage format for assignment dates.
const DateLayout = "2006-01-02"

type AssignmentStore struct {
	db *sql.DB
}

func NewAssignmentStore(db *sql.DB) *AssignmentStore {
	return &AssignmentStore{db: db}
}

const assignmentCols = `id, task_id, person_id, date, completed, completed_by, completed_at, created_at`

func scanAssignment(scanner interface{ Scan(...any) error }) (*model.Assignment, error) {
	var a model.Assignment
	var date string
	var completedBy sql.NullInt64
	var completedAt sql.NullTime

	err := scanner.Scan(
		&a.ID, &a.TaskID, &a.PersonID, &date,
		&a.Completed, &completedBy, &completedAt, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Date, err = time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse assignment date %q: %w", date, err)
	}
	if completedBy.Valid {
		a.CompletedBy = &completedBy.Int64
	}
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	return &a, nil
}

// ListRange returns assignments with start <= date <= end, ordered by
// date then task id.
func (s *AssignmentStore) ListRange(start, end time.Time) ([]model.Assignment, error) {
	rows, err := s.db.Query(
		`SELECT `+assignmentCols+` FROM assignments WHERE date >= ? AND date <= ? ORDER BY date ASC, task_id ASC`,
		start.Format(DateLayout), end.Format(DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	return collectAssignments(rows)
}

// ListForPersonRange returns one person's assignments in the inclusive
// date range, ordered by date then task id.
func (s *AssignmentStore) ListForPersonRange(personID int64, start, end time.Time) ([]model.Assignment, error) {
	rows, err := s.db.Query(
		`SELECT `+assignmentCols+` FROM assignments WHERE person_id = ? AND date >= ? AND date <= ? ORDER BY date ASC, task_id ASC`,
		personID, start.Format(DateLayout), end.Format(DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("list person assignments: %w", err)
	}
	defer rows.Close()

	return collectAssignments(rows)
}

func collectAssignments(rows *sql.Rows) ([]model.Assignment, error) {
	var assignments []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

// Create inserts a new incomplete assignment. The UNIQUE(task_id, date)
// constraint maps to ErrDuplicateAssignment.
func (s *AssignmentStore) Create(taskID, personID int64, date time.Time) (*model.Assignment, error) {
	result, err := s.db.Exec(
		`INSERT INTO assignments (task_id, person_id, date) VALUES (?, ?, ?)`,
		taskID, personID, date.Format(DateLayout),
	)
	if err != nil {
		var serr *sqlite.Error
		if errors.As(err, &serr) && serr.Code() == sqliteUniqueViolation {
			return nil, ErrDuplicateAssignment
		}
		return nil, fmt.Errorf("insert assignment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+assignmentCols+` FROM assignments WHERE id = ?`, id)
	a, err := scanAssignment(row)
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

// MarkCompleted marks an assignment done and records who closed it.
// Any household member may complete any assignment; byPersonID is not
// checked against the assignee. Returns false if the id does not exist.
func (s *AssignmentStore) MarkCompleted(id, byPersonID int64) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE assignments SET completed = 1, completed_by = ?, completed_at = CURRENT_TIMESTAMP WHERE id = ?`,
		byPersonID, id,
	)
	if err != nil {
		return false, fmt.Errorf("mark completed: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteIncomplete removes not-yet-completed assignments in the range.
// Completed rows are never deleted, which is what makes regeneration
// safe for days the household has already signed off.
func (s *AssignmentStore) DeleteIncomplete(start, end time.Time) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM assignments WHERE date >= ? AND date <= ? AND completed = 0`,
		start.Format(DateLayout), end.Format(DateLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("delete incomplete assignments: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
