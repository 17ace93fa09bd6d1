package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Raisondetr3/tasktango/internal/model"
	"github.com/Raisondetr3/tasktango/internal/storage"
	"github.com/Raisondetr3/tasktango/pkg/logger"
)

const DefaultKey = "tasks"

// TaskRepository reads and writes the whole task collection at once.
type TaskRepository interface {
	Load(ctx context.Context) ([]model.Task, error)
	Save(ctx context.Context, tasks []model.Task) error
}

type taskRepository struct {
	kv  storage.KeyValueStore
	key string
}

func NewTaskRepository(kv storage.KeyValueStore, key string) TaskRepository {
	if key == "" {
		key = DefaultKey
	}
	return &taskRepository{
		kv:  kv,
		key: key,
	}
}

// Load returns an empty collection when nothing has been saved yet.
func (r *taskRepository) Load(ctx context.Context) ([]model.Task, error) {
	start := time.Now()

	raw, err := r.kv.Get(ctx, r.key)
	if err != nil {
		if storage.IsNotFound(err) {
			slog.DebugContext(ctx, "No persisted tasks, starting empty", slog.String("key", r.key))
			return []model.Task{}, nil
		}
		return nil, HandleStorageError("load_tasks", err)
	}

	tasks, err := DecodeTasks(raw)
	if err != nil {
		return nil, WrapError("load_tasks", err)
	}

	r.logSlow(ctx, "load_tasks", time.Since(start))
	return tasks, nil
}

func (r *taskRepository) Save(ctx context.Context, tasks []model.Task) error {
	start := time.Now()

	raw, err := EncodeTasks(tasks)
	if err != nil {
		return WrapError("save_tasks", err)
	}

	if err := r.kv.Set(ctx, r.key, raw); err != nil {
		return HandleStorageError("save_tasks", err)
	}

	r.logSlow(ctx, "save_tasks", time.Since(start))
	return nil
}

func (r *taskRepository) logSlow(ctx context.Context, operation string, duration time.Duration) {
	threshold := 500 * time.Millisecond
	if duration > threshold {
		logger.LogSlowOperation(ctx, operation, duration, threshold)
	}
}

// taskRecord is the persisted layout. DueDate and Points may be absent in
// records written before those fields existed.
type taskRecord struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Points    *int       `json:"points,omitempty"`
}

func EncodeTasks(tasks []model.Task) ([]byte, error) {
	records := make([]taskRecord, len(tasks))
	for i, t := range tasks {
		points := t.Points
		records[i] = taskRecord{
			ID:        t.ID,
			Text:      t.Text,
			Completed: t.Completed,
			DueDate:   t.DueDate,
			Points:    &points,
		}
	}
	return json.Marshal(records)
}

// DecodeTasks parses a persisted collection. Records without an id are
// dropped and a repeated id keeps its first occurrence.
func DecodeTasks(raw []byte) ([]model.Task, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []model.Task{}, nil
	}

	var records []taskRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	tasks := make([]model.Task, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if rec.ID == "" || seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true

		task := model.Task{
			ID:        rec.ID,
			Text:      rec.Text,
			Completed: rec.Completed,
		}
		if rec.DueDate != nil {
			due := rec.DueDate.Local()
			task.DueDate = &due
		}
		if rec.Points != nil && *rec.Points > 0 {
			task.Points = *rec.Points
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
