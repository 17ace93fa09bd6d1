package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// Task доменная модель задачи. DueDate == nil означает "без срока".
type Task struct {
	ID        string
	Text      string
	Completed bool
	DueDate   *time.Time
	Points    int
}

// TimeOfDay is an hour:minute pair as entered in the add form.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay accepts "H:MM" or "HH:MM" in 24-hour notation.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(mm) != 2 || len(hh) == 0 || len(hh) > 2 || !isDigits(hh) || !isDigits(mm) {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}

	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// On returns day's calendar date at the given hour and minute, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, day.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Бизнес-методы
func NewTask(text string, due *TimeOfDay, now time.Time) Task {
	task := Task{
		ID:        uuid.New().String(),
		Text:      strings.TrimSpace(text),
		Completed: false,
		Points:    0,
	}
	if due != nil {
		dueDate := due.On(now)
		task.DueDate = &dueDate
	}
	return task
}

func (t Task) HasDueDate() bool {
	return t.DueDate != nil
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}
