package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "09:00", want: TimeOfDay{Hour: 9, Minute: 0}},
		{in: "9:05", want: TimeOfDay{Hour: 9, Minute: 5}},
		{in: " 23:59 ", want: TimeOfDay{Hour: 23, Minute: 59}},
		{in: "00:00", want: TimeOfDay{}},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "12:5", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
		{in: "-1:30", wantErr: true},
		{in: "123:00", wantErr: true},
		{in: "+9:00", wantErr: true},
		{in: "-0:00", wantErr: true},
		{in: "9:+5", wantErr: true},
		{in: "٩:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeOfDay)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDay_On(t *testing.T) {
	now := time.Date(2024, time.May, 3, 17, 42, 11, 500, time.Local)

	got := TimeOfDay{Hour: 9, Minute: 30}.On(now)

	assert.Equal(t, time.Date(2024, time.May, 3, 9, 30, 0, 0, time.Local), got)
	assert.Equal(t, "09:30", TimeOfDay{Hour: 9, Minute: 30}.String())
}

func TestNewTask(t *testing.T) {
	now := time.Date(2024, time.May, 3, 8, 0, 0, 0, time.Local)

	task := NewTask("  Buy milk ", nil, now)

	_, err := uuid.Parse(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Text)
	assert.False(t, task.Completed)
	assert.Zero(t, task.Points)
	assert.Nil(t, task.DueDate)
	assert.False(t, task.HasDueDate())
}

func TestNewTask_WithDueTime(t *testing.T) {
	now := time.Date(2024, time.May, 3, 8, 0, 0, 0, time.Local)

	task := NewTask("Write report", &TimeOfDay{Hour: 14, Minute: 15}, now)

	require.NotNil(t, task.DueDate)
	assert.Equal(t, time.Date(2024, time.May, 3, 14, 15, 0, 0, time.Local), *task.DueDate)
}

func TestNewTask_UniqueIDs(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for range 100 {
		task := NewTask("x", nil, now)
		assert.False(t, seen[task.ID])
		seen[task.ID] = true
	}
}

func TestTask_Clone(t *testing.T) {
	due := time.Date(2024, time.May, 3, 9, 0, 0, 0, time.UTC)
	task := Task{ID: "a", Text: "a", DueDate: &due}

	clone := task.Clone()
	*clone.DueDate = clone.DueDate.Add(time.Hour)

	assert.Equal(t, 9, task.DueDate.Hour())
}

func TestTaskProtoRoundTrip(t *testing.T) {
	due := time.Date(2024, time.May, 3, 9, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: "a", Text: "with due", Completed: true, DueDate: &due, Points: 1},
		{ID: "b", Text: "without due"},
	}

	got, err := TasksFromProto(TasksToProto(tasks))

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, tasks[1], got[1])
	assert.Equal(t, tasks[0].ID, got[0].ID)
	assert.True(t, tasks[0].DueDate.Equal(*got[0].DueDate))
	assert.Equal(t, 1, got[0].Points)
}
