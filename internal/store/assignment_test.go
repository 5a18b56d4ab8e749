package store

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/dutyboard/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedAssignmentFixtures(t *testing.T) (*AssignmentStore, model.Task, []model.Person) {
	t.Helper()
	ts, ps, as := setupTestDB(t)

	task, err := ts.Create("Вынести ёлку", "", model.CategoryOther, false, false, 1)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	var people []model.Person
	for _, name := range []string{"Анна", "Борис"} {
		p, err := ps.Create(name)
		if err != nil {
			t.Fatalf("create person: %v", err)
		}
		people = append(people, *p)
	}
	return as, *task, people
}

func TestAssignmentCreateAndDuplicate(t *testing.T) {
	as, task, people := seedAssignmentFixtures(t)
	day := date(2025, time.September, 1)

	a, err := as.Create(task.ID, people[0].ID, day)
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	if !a.Date.Equal(day) {
		t.Errorf("date = %v, want %v", a.Date, day)
	}
	if a.Completed {
		t.Error("new assignment should not be completed")
	}

	// Same task, same date, different person: unique violation.
	_, err = as.Create(task.ID, people[1].ID, day)
	if !errors.Is(err, ErrDuplicateAssignment) {
		t.Fatalf("expected ErrDuplicateAssignment, got %v", err)
	}

	// Same task on another day is fine.
	if _, err := as.Create(task.ID, people[1].ID, day.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("create next-day assignment: %v", err)
	}
}

func TestMarkCompleted(t *testing.T) {
	as, task, people := seedAssignmentFixtures(t)

	a, err := as.Create(task.ID, people[0].ID, date(2025, time.September, 3))
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}

	// Any household member may close any assignment, not just the assignee.
	ok, err := as.MarkCompleted(a.ID, people[1].ID)
	if err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if !ok {
		t.Fatal("expected true for existing assignment")
	}

	got, err := as.ListRange(a.Date, a.Date)
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(got))
	}
	if !got[0].Completed {
		t.Error("assignment not marked completed")
	}
	if got[0].CompletedBy == nil || *got[0].CompletedBy != people[1].ID {
		t.Errorf("completed_by = %v, want %d", got[0].CompletedBy, people[1].ID)
	}
	if got[0].CompletedAt == nil {
		t.Error("completed_at not stamped")
	}

	ok, err = as.MarkCompleted(99999, people[0].ID)
	if err != nil {
		t.Fatalf("mark missing: %v", err)
	}
	if ok {
		t.Error("expected false for nonexistent assignment")
	}
}

func TestDeleteIncompleteSparesCompleted(t *testing.T) {
	as, task, people := seedAssignmentFixtures(t)
	start := date(2025, time.September, 1)
	end := date(2025, time.September, 30)

	var completed *model.Assignment
	for i := 0; i < 4; i++ {
		a, err := as.Create(task.ID, people[i%2].ID, start.AddDate(0, 0, i))
		if err != nil {
			t.Fatalf("create assignment %d: %v", i, err)
		}
		if i == 1 {
			completed = a
		}
	}
	if _, err := as.MarkCompleted(completed.ID, people[0].ID); err != nil {
		t.Fatalf("mark completed: %v", err)
	}

	deleted, err := as.DeleteIncomplete(start, end)
	if err != nil {
		t.Fatalf("delete incomplete: %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}

	remaining, err := as.ListRange(start, end)
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected 1 surviving assignment, got %d", len(remaining))
	}
	if remaining[0].ID != completed.ID {
		t.Errorf("survivor id = %d, want %d", remaining[0].ID, completed.ID)
	}
}

func TestListRangeOrdering(t *testing.T) {
	ts, ps, as := setupTestDB(t)

	t1, err := ts.Create("A task", "", model.CategoryCooking, false, false, 1)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	t2, err := ts.Create("B task", "", model.CategoryCleaning, false, false, 1)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	p, err := ps.Create("Анна")
	if err != nil {
		t.Fatalf("create person: %v", err)
	}

	// Insert out of order.
	days := []time.Time{date(2025, time.September, 2), date(2025, time.September, 1)}
	for _, d := range days {
		for _, task := range []int64{t2.ID, t1.ID} {
			if _, err := as.Create(task, p.ID, d); err != nil {
				t.Fatalf("create assignment: %v", err)
			}
		}
	}

	got, err := as.ListRange(date(2025, time.September, 1), date(2025, time.September, 30))
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 assignments, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if cur.Date.Before(prev.Date) {
			t.Errorf("dates out of order at %d", i)
		}
		if cur.Date.Equal(prev.Date) && cur.TaskID < prev.TaskID {
			t.Errorf("task ids out of order at %d", i)
		}
	}
}

func TestListForPersonRange(t *testing.T) {
	as, task, people := seedAssignmentFixtures(t)

	if _, err := as.Create(task.ID, people[0].ID, date(2025, time.September, 1)); err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	if _, err := as.Create(task.ID, people[1].ID, date(2025, time.September, 2)); err != nil {
		t.Fatalf("create assignment: %v", err)
	}

	got, err := as.ListForPersonRange(people[0].ID, date(2025, time.September, 1), date(2025, time.September, 7))
	if err != nil {
		t.Fatalf("list for person: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(got))
	}
	if got[0].PersonID != people[0].ID {
		t.Errorf("person_id = %d, want %d", got[0].PersonID, people[0].ID)
	}
}
