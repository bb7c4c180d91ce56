package tasks

import (
	"context"
	"log"
	"time"

	"gym_app_echo/internal/models"
)

// LogInfoTaskDef logs a message and how late the worker picked the task
// up. Useful to check that a deployed worker is polling.
type LogInfoTaskDef struct {
	now func() time.Time
}

func (t *LogInfoTaskDef) TaskID() string {
	return "log_info"
}

func (t *LogInfoTaskDef) HandleExecution(ctx context.Context, task models.ScheduledTask) (map[string]interface{}, error) {
	message, ok := task.Arguments["message"].(string)
	if !ok || message == "" {
		message = "ping"
	}

	now := time.Now()
	if t.now != nil {
		now = t.now()
	}
	lag := time.Duration(0)
	if !task.Due.IsZero() && now.After(task.Due) {
		lag = now.Sub(task.Due).Round(time.Second)
	}
	log.Printf("[Task: log_info] task=%d message=%q lag=%s", task.ID, message, lag)

	return map[string]interface{}{
		"message":      message,
		"lag_seconds":  int(lag / time.Second),
		"max_attempts": task.Attempts(),
	}, nil
}

var LogInfoTask = &LogInfoTaskDef{}
