package tasks

import (
	"context"
	"time"

	"gym_app_echo/internal/models"
	"gym_app_echo/internal/services"
)

// Reports is the slice of the KPI service the tasks need
type Reports interface {
	Now() time.Time
	RollupMonth(ctx context.Context, year int, month time.Month) (models.MonthKPI, error)
	ExpiringWithin(ctx context.Context, d time.Duration) ([]services.CustomerStatus, error)
}

// Mailer delivers one HTML email
type Mailer interface {
	Send(ctx context.Context, to []string, subject, html string) (string, error)
}

// Deps are the collaborators task handlers run against
type Deps struct {
	Reports Reports
	Mailer  Mailer
	Queue   Queue
	AppURL  string
}

// DefineTasks registers all available tasks
func DefineTasks(r *Registry, deps Deps) {
	r.Register(LogInfoTask.TaskID(), LogInfoTask.HandleExecution)

	rollup := &RollupKPITaskDef{Reports: deps.Reports}
	r.Register(rollup.TaskID(), rollup.HandleExecution)

	reminder := &ExpiryReminderTaskDef{
		Reports: deps.Reports,
		Mailer:  deps.Mailer,
		Queue:   deps.Queue,
		AppURL:  deps.AppURL,
	}
	r.Register(reminder.TaskID(), reminder.HandleExecution)
}
