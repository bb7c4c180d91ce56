package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"gym_app_echo/internal/models"
)

// Runner picks up due tasks from the database and executes them
type Runner struct {
	db       *gorm.DB
	registry *Registry
	now      func() time.Time
}

func NewRunner(db *gorm.DB, registry *Registry) *Runner {
	return &Runner{db: db, registry: registry, now: time.Now}
}

// ProcessDue runs every active task whose due time has passed
func (r *Runner) ProcessDue(ctx context.Context) error {
	log.Println("Checking for pending tasks...")

	var pendingTasks []models.ScheduledTask
	now := r.now()
	if err := r.db.WithContext(ctx).
		Where("status = ? AND due <= ?", models.ScheduledTaskStatusActive, now).
		Order("due").
		Find(&pendingTasks).Error; err != nil {
		return fmt.Errorf("fetch pending tasks: %w", err)
	}

	if len(pendingTasks) == 0 {
		log.Println("No pending tasks found.")
		return nil
	}
	log.Printf("Found %d pending tasks.", len(pendingTasks))

	for _, task := range pendingTasks {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.Execute(ctx, task)
	}
	return nil
}

// Execute runs one task up to its attempt limit, recording a history row
// per attempt, then moves the task to its next state
func (r *Runner) Execute(ctx context.Context, task models.ScheduledTask) {
	log.Printf("Processing task: %s (ID: %d)", task.TaskName, task.ID)

	if task.Arguments == nil {
		task.Arguments = make(map[string]interface{})
	}
	task.Arguments["max_attempt"] = task.MaxAttempt

	handler, found := r.registry.Get(task.TaskName)
	if !found {
		log.Printf("Task handler not found for: %s. Marking as failure.", task.TaskName)
		now := r.now()
		r.record(ctx, models.ScheduledTaskHistory{
			ScheduledTaskID: task.ID,
			TaskName:        task.TaskName,
			RunAt:           now,
			Status:          "handler_not_found",
			AttemptNumber:   1,
			Arguments:       task.Arguments,
			Result:          map[string]interface{}{"error": "Handler not found"},
		})
		r.update(ctx, task, map[string]interface{}{
			"status":   models.ScheduledTaskStatusFailure,
			"last_run": &now,
		})
		return
	}

	var startTime time.Time
	succeeded := false
	for attempt := 1; attempt <= task.Attempts() && !succeeded; attempt++ {
		if ctx.Err() != nil {
			return
		}
		startTime = r.now()
		result, err := handler(ctx, task)
		runtimeMs := int(r.now().Sub(startTime).Milliseconds())

		status := "success"
		if err != nil {
			status = "failure"
			result = map[string]interface{}{"error": err.Error()}
			log.Printf("Task %s failed (attempt %d/%d): %v", task.TaskName, attempt, task.Attempts(), err)
		} else {
			succeeded = true
			log.Printf("Task %s completed successfully.", task.TaskName)
		}

		r.record(ctx, models.ScheduledTaskHistory{
			ScheduledTaskID: task.ID,
			TaskName:        task.TaskName,
			RunAt:           startTime,
			Runtime:         runtimeMs,
			Status:          status,
			AttemptNumber:   attempt,
			Arguments:       task.Arguments,
			Result:          result,
		})
	}

	r.update(ctx, task, nextState(task, succeeded, startTime))
}

// nextState returns the column updates applied after a task has run
func nextState(task models.ScheduledTask, succeeded bool, ranAt time.Time) map[string]interface{} {
	updates := map[string]interface{}{
		"last_run": &ranAt,
	}
	if !succeeded {
		updates["status"] = models.ScheduledTaskStatusFailure
		return updates
	}

	switch task.TaskType {
	case models.ScheduledTaskTypeRecurring:
		nextDue := task.NextDueAfter(ranAt)
		// a rule with no later occurrence would run forever otherwise
		if nextDue.After(task.Due) {
			updates["status"] = models.ScheduledTaskStatusActive
			updates["due"] = nextDue
		} else {
			updates["status"] = models.ScheduledTaskStatusDone
		}
	default:
		updates["status"] = models.ScheduledTaskStatusDone
	}
	return updates
}

func (r *Runner) record(ctx context.Context, history models.ScheduledTaskHistory) {
	if err := r.db.WithContext(ctx).Create(&history).Error; err != nil {
		log.Printf("Failed to record history for task %d: %v", history.ScheduledTaskID, err)
	}
}

func (r *Runner) update(ctx context.Context, task models.ScheduledTask, updates map[string]interface{}) {
	if err := r.db.WithContext(ctx).Model(&task).Updates(updates).Error; err != nil {
		log.Printf("Failed to update task %d: %v", task.ID, err)
	}
}
