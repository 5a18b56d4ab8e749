package schedule

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/dutyboard/internal/model"
	"github.com/dukerupert/dutyboard/internal/store"
)

// Service is the scheduling API the rest of the application talks to:
// generation, range and person queries, completion, and wiping a month
// for regeneration.
type Service struct {
	mu          sync.Mutex
	generator   *Generator
	assignments *store.AssignmentStore
	logger      *slog.Logger
}

func NewService(tasks *store.TaskStore, people *store.PersonStore, assignments *store.AssignmentStore, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		generator:   NewGenerator(tasks, people, assignments, cfg, logger),
		assignments: assignments,
		logger:      logger,
	}
}

// Generate builds the schedule for a month. Runs are serialized; a
// concurrent caller blocks until the in-flight run finishes, then its own
// run sees the fresh rows and becomes a no-op for the overlapping days.
func (s *Service) Generate(year int, month time.Month) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generator.Generate(year, month)
}

// ScheduleForRange returns assignments in the inclusive range, grouped by
// date.
func (s *Service) ScheduleForRange(start, end time.Time) (map[string][]model.Assignment, error) {
	assignments, err := s.assignments.ListRange(start, end)
	if err != nil {
		return nil, err
	}
	return groupByDate(assignments), nil
}

// MonthSchedule returns one month's assignments grouped by date.
func (s *Service) MonthSchedule(year int, month time.Month) (map[string][]model.Assignment, error) {
	start, end := MonthRange(year, month)
	return s.ScheduleForRange(start, end)
}

// DutiesForPersonWeek returns one person's assignments for the 7-day
// window starting at weekStart, grouped by date.
func (s *Service) DutiesForPersonWeek(personID int64, weekStart time.Time) (map[string][]model.Assignment, error) {
	assignments, err := s.assignments.ListForPersonRange(personID, weekStart, weekStart.AddDate(0, 0, 6))
	if err != nil {
		return nil, err
	}
	return groupByDate(assignments), nil
}

// DutiesForPersonDay returns one person's assignments for a single day.
func (s *Service) DutiesForPersonDay(personID int64, date time.Time) ([]model.Assignment, error) {
	return s.assignments.ListForPersonRange(personID, date, date)
}

// MarkCompleted closes an assignment on behalf of byPersonID. Returns
// false when the assignment does not exist.
func (s *Service) MarkCompleted(id, byPersonID int64) (bool, error) {
	return s.assignments.MarkCompleted(id, byPersonID)
}

// WipeMonth deletes the month's incomplete assignments so it can be
// regenerated from scratch. Completed assignments survive.
func (s *Service) WipeMonth(year int, month time.Month) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, end := MonthRange(year, month)
	n, err := s.assignments.DeleteIncomplete(start, end)
	if err != nil {
		return 0, err
	}
	s.logger.Info("schedule wiped", "year", year, "month", int(month), "deleted", n)
	return n, nil
}
