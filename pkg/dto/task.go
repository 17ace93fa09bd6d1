package dto

import (
	"fmt"
	"time"

	"github.com/Raisondetr3/tasktango/internal/model"
)

type AddTaskRequest struct {
	Text string `json:"text"`
	// Time is an optional "HH:MM" due time for today.
	Time string `json:"time,omitempty"`
}

type TaskResponse struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Points    int        `json:"points"`
}

type TaskListResponse struct {
	Tasks       []TaskResponse `json:"tasks"`
	TotalPoints int            `json:"totalPoints"`
}

type EventResponse struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TaskID      string `json:"taskId,omitempty"`
	Points      int    `json:"points,omitempty"`
	Count       int    `json:"count"`
}

type MutationResponse struct {
	Task        *TaskResponse  `json:"task,omitempty"`
	Tasks       []TaskResponse `json:"tasks"`
	TotalPoints int            `json:"totalPoints"`
	Event       *EventResponse `json:"event,omitempty"`
}

type StatsResponse struct {
	Total       int `json:"total"`
	Incomplete  int `json:"incomplete"`
	Completed   int `json:"completed"`
	TotalPoints int `json:"totalPoints"`
}

func NewTaskResponse(t model.Task) TaskResponse {
	return TaskResponse{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		DueDate:   t.DueDate,
		Points:    t.Points,
	}
}

func NewTaskListResponse(tasks []model.Task) TaskListResponse {
	out := make([]TaskResponse, 0, len(tasks))
	total := 0
	for _, t := range tasks {
		out = append(out, NewTaskResponse(t))
		total += t.Points
	}
	return TaskListResponse{Tasks: out, TotalPoints: total}
}

func OnTimeBonusEvent(taskID string, points int) *EventResponse {
	return &EventResponse{
		Kind:        "on_time_bonus_awarded",
		Title:       "Well Done!",
		Description: fmt.Sprintf("Task completed on time! +%d bonus point.", points),
		TaskID:      taskID,
		Points:      points,
	}
}

func CompletedClearedEvent(count int) *EventResponse {
	return &EventResponse{
		Kind:        "completed_cleared",
		Title:       "Completed Tasks Cleared",
		Description: "All completed tasks have been removed.",
		Count:       count,
	}
}
