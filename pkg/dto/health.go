package dto

import "time"

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Loaded     bool              `json:"loaded"`
	Components map[string]string `json:"components,omitempty"`
}
