package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"gym_app_echo/internal/models"
)

// BuildScheduledTask is a helper to build ScheduledTask records generically
func BuildScheduledTask(taskName string, args interface{}, due time.Time, recurringInterval *string, taskType models.ScheduledTaskType, maxAttempt int) (*models.ScheduledTask, error) {
	argsBytes, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal args: %w", err)
	}

	var mapArgs map[string]interface{}
	if err := json.Unmarshal(argsBytes, &mapArgs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into map: %w", err)
	}

	return &models.ScheduledTask{
		TaskName:          taskName,
		Arguments:         mapArgs,
		Due:               due,
		RecurringInterval: recurringInterval,
		Status:            models.ScheduledTaskStatusActive,
		TaskType:          taskType,
		MaxAttempt:        maxAttempt,
	}, nil
}

// parseArgs decodes task arguments into a typed struct
func parseArgs(task models.ScheduledTask, dest interface{}) error {
	argsBytes, err := json.Marshal(task.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal args: %w", err)
	}
	if err := json.Unmarshal(argsBytes, dest); err != nil {
		return fmt.Errorf("failed to unmarshal args: %w", err)
	}
	return nil
}

// Queue accepts follow-up tasks, such as retries
type Queue interface {
	Enqueue(ctx context.Context, task *models.ScheduledTask) error
}

// GormQueue stores tasks in the scheduled_tasks table
type GormQueue struct {
	db *gorm.DB
}

func NewGormQueue(db *gorm.DB) *GormQueue {
	return &GormQueue{db: db}
}

func (q *GormQueue) Enqueue(ctx context.Context, task *models.ScheduledTask) error {
	return q.db.WithContext(ctx).Create(task).Error
}
