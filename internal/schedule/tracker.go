package schedule

import (
	"time"

	"github.com/dukerupert/dutyboard/internal/model"
)

type personTask struct {
	personID int64
	taskID   int64
}

type personCategory struct {
	personID int64
	category model.Category
}

// tracker holds the fairness counters for a single generation run. Totals
// and category counts only cover the target month; lastAssigned spans the
// whole loaded range so cooldowns survive the month boundary.
type tracker struct {
	total        map[int64]int
	byCategory   map[personCategory]int
	lastAssigned map[personTask]time.Time
}

// newTracker rebuilds counters from assignment history. categories maps
// task id to task category for the rows being replayed.
func newTracker(history []model.Assignment, categories map[int64]model.Category, monthStart, monthEnd time.Time) *tracker {
	t := &tracker{
		total:        make(map[int64]int),
		byCategory:   make(map[personCategory]int),
		lastAssigned: make(map[personTask]time.Time),
	}
	for _, a := range history {
		t.record(a.PersonID, a.TaskID, categories[a.TaskID], a.Date, monthStart, monthEnd)
	}
	return t
}

// record folds one assignment into the counters. Called for every
// historical row at setup and for every new assignment as it is created,
// so later picks in the same run see the latest state.
func (t *tracker) record(personID, taskID int64, category model.Category, date time.Time, monthStart, monthEnd time.Time) {
	key := personTask{personID: personID, taskID: taskID}
	if last, ok := t.lastAssigned[key]; !ok || date.After(last) {
		t.lastAssigned[key] = date
	}
	if !date.Before(monthStart) && !date.After(monthEnd) {
		t.total[personID]++
		t.byCategory[personCategory{personID: personID, category: category}]++
	}
}

// daysSinceAssigned reports how many days have passed since the person
// last held the task. ok is false if they never have.
func (t *tracker) daysSinceAssigned(personID, taskID int64, date time.Time) (int, bool) {
	last, ok := t.lastAssigned[personTask{personID: personID, taskID: taskID}]
	if !ok {
		return 0, false
	}
	return int(date.Sub(last).Hours() / 24), true
}
