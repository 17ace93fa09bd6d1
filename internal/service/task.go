package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Raisondetr3/tasktango/internal/errors"
	"github.com/Raisondetr3/tasktango/internal/metrics"
	"github.com/Raisondetr3/tasktango/internal/model"
	"github.com/Raisondetr3/tasktango/internal/repository"
	"github.com/Raisondetr3/tasktango/internal/scoring"
	"github.com/Raisondetr3/tasktango/pkg/logger"
)

type EventKind int

const (
	EventNone EventKind = iota
	EventOnTimeBonusAwarded
	EventCompletedCleared
)

func (k EventKind) String() string {
	switch k {
	case EventOnTimeBonusAwarded:
		return "on_time_bonus_awarded"
	case EventCompletedCleared:
		return "completed_cleared"
	default:
		return "none"
	}
}

// Event is an informational notification for the caller to surface. It is
// never persisted.
type Event struct {
	Kind   EventKind
	TaskID string
	Points int
	Count  int
}

// Result is the state after a mutation. Task is the task that was added,
// toggled or deleted; it is nil for ClearCompleted and for no-ops.
type Result struct {
	Tasks []model.Task
	Task  *model.Task
	Event Event
}

type Stats struct {
	Total      int
	Incomplete int
	Completed  int
	Points     int
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Option func(*TaskStore)

func WithClock(c Clock) Option {
	return func(s *TaskStore) { s.clock = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *TaskStore) { s.metrics = m }
}

// TaskStore owns the task collection and mirrors it to a repository after
// every mutation. Mutations are rejected until Load has run.
type TaskStore struct {
	mu      sync.Mutex
	repo    repository.TaskRepository
	clock   Clock
	metrics *metrics.Metrics

	tasks  []model.Task
	loaded bool
}

func NewTaskStore(repo repository.TaskRepository, opts ...Option) *TaskStore {
	s := &TaskStore{
		repo:    repo,
		clock:   realClock{},
		metrics: metrics.Noop(),
		tasks:   []model.Task{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load hydrates the store from the repository. Read failures are logged and
// leave the store empty. Only the first call reads.
func (s *TaskStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return
	}

	start := time.Now()
	tasks, err := s.repo.Load(ctx)
	if err != nil {
		s.metrics.PersistenceFailures.WithLabelValues("load").Inc()
		logger.LogPersistenceFallback(ctx, "load_tasks", failureCause(err), err)
		tasks = []model.Task{}
	}

	s.tasks = tasks
	s.loaded = true
	logger.LogTaskOperation(ctx, "LoadTasks", "", time.Since(start), nil)
}

func (s *TaskStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *TaskStore) Add(ctx context.Context, text string, due *model.TimeOfDay) (Result, error) {
	start := time.Now()
	operation := "AddTask"

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		logger.LogTaskOperation(ctx, operation, "", time.Since(start), errors.ErrNotLoaded)
		return Result{}, errors.ErrNotLoaded
	}

	text = strings.TrimSpace(text)
	if text == "" {
		logger.LogTaskOperation(ctx, operation, "", time.Since(start), errors.ErrEmptyText)
		return Result{}, errors.ErrEmptyText
	}

	task := model.NewTask(text, due, s.clock.Now())

	next := make([]model.Task, 0, len(s.tasks)+1)
	next = append(next, s.tasks...)
	next = append(next, task)
	s.commit(ctx, next)

	s.metrics.TasksAdded.Inc()
	logger.LogTaskOperation(ctx, operation, task.ID, time.Since(start), nil)

	created := task.Clone()
	return Result{Tasks: s.snapshot(), Task: &created}, nil
}

// AddWithTime is Add with the due time given as "HH:MM"; blank means none.
func (s *TaskStore) AddWithTime(ctx context.Context, text, timeOfDay string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return s.Add(ctx, text, nil)
	}
	if strings.TrimSpace(timeOfDay) == "" {
		return s.Add(ctx, text, nil)
	}

	tod, err := model.ParseTimeOfDay(timeOfDay)
	if err != nil {
		logger.LogTaskOperation(ctx, "AddTask", "", 0, err)
		return Result{}, fmt.Errorf("%w: %q", errors.ErrInvalidTimeOfDay, timeOfDay)
	}
	return s.Add(ctx, text, &tod)
}

// ToggleComplete flips the completion flag of id. The first completion that
// lands on time earns the bonus; un-completing never takes points back.
// An unknown id is a no-op.
func (s *TaskStore) ToggleComplete(ctx context.Context, id string) (Result, error) {
	start := time.Now()
	operation := "ToggleComplete"

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		logger.LogTaskOperation(ctx, operation, id, time.Since(start), errors.ErrNotLoaded)
		return Result{}, errors.ErrNotLoaded
	}

	idx := s.indexOf(id)
	if idx < 0 {
		logger.WithTaskID(id).DebugContext(ctx, "Toggle of unknown task ignored")
		return Result{Tasks: s.snapshot()}, nil
	}

	now := s.clock.Now()
	task := s.tasks[idx].Clone()
	var event Event

	if !task.Completed {
		if points, ok := scoring.Award(now, task); ok {
			task.Points += points
			event = Event{Kind: EventOnTimeBonusAwarded, TaskID: task.ID, Points: points}
			s.metrics.BonusPointsAwarded.Add(float64(points))
			logger.LogBonusAwarded(ctx, task.ID, points, now, *task.DueDate)
		}
		s.metrics.TasksToggled.WithLabelValues("complete").Inc()
	} else {
		s.metrics.TasksToggled.WithLabelValues("reopen").Inc()
	}
	task.Completed = !task.Completed

	next := s.cloneTasks()
	next[idx] = task
	s.commit(ctx, next)

	logger.LogTaskOperation(ctx, operation, id, time.Since(start), nil)

	toggled := task.Clone()
	return Result{Tasks: s.snapshot(), Task: &toggled, Event: event}, nil
}

// Delete removes id from the collection. An unknown id is a no-op.
func (s *TaskStore) Delete(ctx context.Context, id string) (Result, error) {
	start := time.Now()
	operation := "DeleteTask"

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		logger.LogTaskOperation(ctx, operation, id, time.Since(start), errors.ErrNotLoaded)
		return Result{}, errors.ErrNotLoaded
	}

	idx := s.indexOf(id)
	if idx < 0 {
		logger.WithTaskID(id).DebugContext(ctx, "Delete of unknown task ignored")
		return Result{Tasks: s.snapshot()}, nil
	}

	removed := s.tasks[idx].Clone()

	next := make([]model.Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:idx]...)
	next = append(next, s.tasks[idx+1:]...)
	s.commit(ctx, next)

	s.metrics.TasksDeleted.Inc()
	logger.LogTaskOperation(ctx, operation, id, time.Since(start), nil)

	return Result{Tasks: s.snapshot(), Task: &removed}, nil
}

// ClearCompleted removes every completed task in one step, keeping the
// relative order of the rest.
func (s *TaskStore) ClearCompleted(ctx context.Context) (Result, error) {
	start := time.Now()
	operation := "ClearCompleted"

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		logger.LogTaskOperation(ctx, operation, "", time.Since(start), errors.ErrNotLoaded)
		return Result{}, errors.ErrNotLoaded
	}

	next := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.Completed {
			next = append(next, t)
		}
	}
	removed := len(s.tasks) - len(next)
	s.commit(ctx, next)

	s.metrics.TasksCleared.Add(float64(removed))
	logger.LogTaskOperation(ctx, operation, "", time.Since(start), nil)

	return Result{
		Tasks: s.snapshot(),
		Event: Event{Kind: EventCompletedCleared, Count: removed},
	}, nil
}

func (s *TaskStore) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *TaskStore) Get(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return model.Task{}, false
	}
	return s.tasks[idx].Clone(), true
}

func (s *TaskStore) Incomplete() []model.Task {
	return s.filter(func(t model.Task) bool { return !t.Completed })
}

func (s *TaskStore) Completed() []model.Task {
	return s.filter(func(t model.Task) bool { return t.Completed })
}

func (s *TaskStore) TotalPoints() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalPoints(s.tasks)
}

func (s *TaskStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Total: len(s.tasks), Points: totalPoints(s.tasks)}
	for _, t := range s.tasks {
		if t.Completed {
			st.Completed++
		} else {
			st.Incomplete++
		}
	}
	return st
}

func (s *TaskStore) filter(keep func(model.Task) bool) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// commit installs next as the current collection and writes it through.
// A failed write leaves the in-memory state in place.
func (s *TaskStore) commit(ctx context.Context, next []model.Task) {
	s.tasks = next

	if err := s.repo.Save(ctx, s.tasks); err != nil {
		s.metrics.PersistenceFailures.WithLabelValues("save").Inc()
		logger.LogPersistenceFallback(ctx, "save_tasks", failureCause(err), err)
	}
}

// failureCause classifies a repository error for the fallback log.
func failureCause(err error) string {
	switch {
	case repository.IsCorruptState(err):
		return "corrupt_state"
	case repository.IsStorageError(err):
		return "storage"
	default:
		return "unknown"
	}
}

func (s *TaskStore) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *TaskStore) cloneTasks() []model.Task {
	out := make([]model.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (s *TaskStore) snapshot() []model.Task {
	return s.cloneTasks()
}

func totalPoints(tasks []model.Task) int {
	sum := 0
	for _, t := range tasks {
		sum += t.Points
	}
	return sum
}
