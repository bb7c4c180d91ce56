package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"gym_app_echo/internal/models"
)

// RollupKPIArgs selects the month to roll up. Zero values mean the month
// before the current one.
type RollupKPIArgs struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
}

// RollupKPITaskDef stores the monthly and yearly KPI documents
type RollupKPITaskDef struct {
	Reports Reports
}

func (t *RollupKPITaskDef) TaskID() string {
	return "rollup_kpi"
}

// CreateTask builds a recurring task that rolls up the previous month on
// the first day of every month
func (t *RollupKPITaskDef) CreateTask(first time.Time) (*models.ScheduledTask, error) {
	rule := "FREQ=MONTHLY;BYMONTHDAY=1"
	return BuildScheduledTask(t.TaskID(), RollupKPIArgs{}, first, &rule, models.ScheduledTaskTypeRecurring, 3)
}

func (t *RollupKPITaskDef) HandleExecution(ctx context.Context, task models.ScheduledTask) (map[string]interface{}, error) {
	if t.Reports == nil {
		return nil, fmt.Errorf("kpi reports not configured")
	}

	var args RollupKPIArgs
	if err := parseArgs(task, &args); err != nil {
		return nil, err
	}

	year, month := args.Year, time.Month(args.Month)
	if year == 0 || month == 0 {
		now := t.Reports.Now()
		prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
		year, month = prev.Year(), prev.Month()
	}

	kpi, err := t.Reports.RollupMonth(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("rollup %04d-%02d: %w", year, int(month), err)
	}
	log.Printf("[Task: rollup_kpi] %04d-%s revenue=%.2f customers=%d", year, kpi.Month, kpi.Revenue, kpi.Customers)

	return map[string]interface{}{
		"year":          year,
		"month":         kpi.Month,
		"revenue":       kpi.Revenue,
		"customers":     kpi.Customers,
		"new_customers": kpi.NewCustomers,
	}, nil
}
