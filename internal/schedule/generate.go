package schedule

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dukerupert/dutyboard/internal/model"
	"github.com/dukerupert/dutyboard/internal/store"
)

// cooldownLookbackDays is how far before the month start existing
// assignments are preloaded, so cooldowns carry across the boundary.
const cooldownLookbackDays = 7

// Config holds the scheduling knobs.
type Config struct {
	// CooldownDays is the minimum gap before the same person can repeat
	// the same task.
	CooldownDays int
	// AllowWeekdayOverassign lifts the one-task-per-person weekday cap.
	AllowWeekdayOverassign bool
	// WeekendDailyCap limits tasks per person per weekend day.
	// Zero means unlimited.
	WeekendDailyCap int
}

func DefaultConfig() Config {
	return Config{CooldownDays: 2}
}

// Result is one generated month, grouped by date for display.
type Result struct {
	Days    map[string][]model.Assignment `json:"days"`
	Created int                           `json:"created"`
	Gaps    int                           `json:"gaps"`
}

// Generator produces a month of assignments day by day, picking the
// least-loaded eligible person for each task.
type Generator struct {
	tasks       *store.TaskStore
	people      *store.PersonStore
	assignments *store.AssignmentStore
	cfg         Config
	logger      *slog.Logger
}

func NewGenerator(tasks *store.TaskStore, people *store.PersonStore, assignments *store.AssignmentStore, cfg Config, logger *slog.Logger) *Generator {
	if cfg.CooldownDays < 1 {
		cfg.CooldownDays = DefaultConfig().CooldownDays
	}
	return &Generator{tasks: tasks, people: people, assignments: assignments, cfg: cfg, logger: logger}
}

// generationContext is the mutable state of a single run: fairness
// counters, the rotation cursor, and what each day has handed out so far.
type generationContext struct {
	tracker *tracker
	cursor  int
	byDate  map[string][]model.Assignment
}

// Generate builds the schedule for one calendar month. Existing
// (task, date) pairs are left alone, so re-running is idempotent; an
// empty roster or catalog yields an empty result.
func (g *Generator) Generate(year int, month time.Month) (*Result, error) {
	tasks, err := g.tasks.List()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	for _, t := range tasks {
		if err := store.ValidateTask(t.Name, t.Category, t.WeekdayOnly, t.WeekendOnly, t.FrequencyDays); err != nil {
			return nil, fmt.Errorf("invalid task %d: %w", t.ID, err)
		}
	}

	people, err := g.people.List()
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	result := &Result{Days: map[string][]model.Assignment{}}
	if len(people) == 0 || len(tasks) == 0 {
		return result, nil
	}

	monthStart, monthEnd := MonthRange(year, month)
	preloadStart := monthStart.AddDate(0, 0, -cooldownLookbackDays)

	history, err := g.assignments.ListRange(preloadStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	categories := make(map[int64]model.Category, len(tasks))
	for _, t := range tasks {
		categories[t.ID] = t.Category
	}

	run := &generationContext{
		tracker: newTracker(history, categories, monthStart, monthEnd),
		byDate:  make(map[string][]model.Assignment),
	}
	for _, a := range history {
		key := a.Date.Format(store.DateLayout)
		run.byDate[key] = append(run.byDate[key], a)
	}

	for d := monthStart; !d.After(monthEnd); d = d.AddDate(0, 0, 1) {
		if err := g.generateDay(run, people, tasks, d, monthStart, monthEnd, result); err != nil {
			return nil, err
		}
	}

	days, err := g.assignments.ListRange(monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("reload month: %w", err)
	}
	result.Days = groupByDate(days)

	g.logger.Info("schedule generated",
		"year", year,
		"month", int(month),
		"created", result.Created,
		"gaps", result.Gaps,
	)
	return result, nil
}

func (g *Generator) generateDay(run *generationContext, people []model.Person, tasks []model.Task, d, monthStart, monthEnd time.Time, result *Result) error {
	isWeekend := d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
	dateKey := d.Format(store.DateLayout)

	takenToday := make(map[int64]int)
	for _, a := range run.byDate[dateKey] {
		takenToday[a.PersonID]++
	}

	var dayTasks []model.Task
	for _, t := range tasks {
		if taskApplies(t, d, isWeekend) {
			dayTasks = append(dayTasks, t)
		}
	}
	// Cooking is handed out before cleaning before everything else, so
	// the fairness counters later tasks see already include the meals.
	sort.Slice(dayTasks, func(i, j int) bool {
		if ri, rj := dayTasks[i].Category.Rank(), dayTasks[j].Category.Rank(); ri != rj {
			return ri < rj
		}
		return dayTasks[i].ID < dayTasks[j].ID
	})

	for _, task := range dayTasks {
		if hasTask(run.byDate[dateKey], task.ID) {
			continue
		}

		candidates := g.eligibleCandidates(run, people, task, d, isWeekend, takenToday)
		if len(candidates) == 0 {
			if !isWeekend && !g.cfg.AllowWeekdayOverassign {
				// Accepted gap: nobody can take the task today.
				result.Gaps++
				g.logger.Warn("task left unassigned", "task_id", task.ID, "date", dateKey)
				continue
			}
			// Weekend (or override) relaxation: reconsider the whole
			// roster, caps and cooldown ignored, rather than leave the
			// task unassigned.
			candidates = people
		}

		best := pickCandidate(run.tracker, candidates, task, takenToday)

		a, err := g.assignments.Create(task.ID, best.ID, d)
		if err != nil {
			return fmt.Errorf("save assignment: %w", err)
		}

		run.byDate[dateKey] = append(run.byDate[dateKey], *a)
		run.tracker.record(best.ID, task.ID, task.Category, d, monthStart, monthEnd)
		takenToday[best.ID]++
		run.cursor = (run.cursor + 1) % len(people)
		result.Created++
	}
	return nil
}

// eligibleCandidates scans the roster starting at the rotation cursor and
// keeps everyone who passes the daily cap and cooldown filters.
func (g *Generator) eligibleCandidates(run *generationContext, people []model.Person, task model.Task, d time.Time, isWeekend bool, takenToday map[int64]int) []model.Person {
	var candidates []model.Person
	for i := 0; i < len(people); i++ {
		p := people[(run.cursor+i)%len(people)]

		if !isWeekend && !g.cfg.AllowWeekdayOverassign && takenToday[p.ID] >= 1 {
			continue
		}
		if isWeekend && g.cfg.WeekendDailyCap > 0 && takenToday[p.ID] >= g.cfg.WeekendDailyCap {
			continue
		}
		if days, ok := run.tracker.daysSinceAssigned(p.ID, task.ID, d); ok && days < g.cfg.CooldownDays {
			continue
		}
		candidates = append(candidates, p)
	}
	return candidates
}

// pickCandidate selects the least-loaded candidate: fewest assignments
// this month, then fewest in the task's category, then fewest today, then
// lowest id.
func pickCandidate(t *tracker, candidates []model.Person, task model.Task, takenToday map[int64]int) model.Person {
	best := candidates[0]
	bestScore := score(t, best, task, takenToday)
	for _, p := range candidates[1:] {
		if s := score(t, p, task, takenToday); less(s, bestScore) {
			best = p
			bestScore = s
		}
	}
	return best
}

func score(t *tracker, p model.Person, task model.Task, takenToday map[int64]int) [4]int64 {
	return [4]int64{
		int64(t.total[p.ID]),
		int64(t.byCategory[personCategory{personID: p.ID, category: task.Category}]),
		int64(takenToday[p.ID]),
		p.ID,
	}
}

func less(a, b [4]int64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// taskApplies reports whether the task is due on the given day. Frequency
// is anchored to the 1st of the month: day 1 has index 0.
func taskApplies(t model.Task, d time.Time, isWeekend bool) bool {
	if t.WeekdayOnly && isWeekend {
		return false
	}
	if t.WeekendOnly && !isWeekend {
		return false
	}
	if t.FrequencyDays > 1 && (d.Day()-1)%t.FrequencyDays != 0 {
		return false
	}
	return true
}

func hasTask(assignments []model.Assignment, taskID int64) bool {
	for _, a := range assignments {
		if a.TaskID == taskID {
			return true
		}
	}
	return false
}

// MonthRange returns the first and last day of a month as UTC dates.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}

func groupByDate(assignments []model.Assignment) map[string][]model.Assignment {
	grouped := make(map[string][]model.Assignment)
	for _, a := range assignments {
		key := a.Date.Format(store.DateLayout)
		grouped[key] = append(grouped[key], a)
	}
	return grouped
}
