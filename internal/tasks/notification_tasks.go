package tasks

import (
	"context"
	"fmt"
	"html"
	"log"
	"time"

	"gym_app_echo/internal/models"
	"gym_app_echo/internal/services"
)

// ExpiryReminderArgs defines the arguments for the expiry reminder task.
// CustomerIDs narrows a retry to the customers that failed last time.
type ExpiryReminderArgs struct {
	Days         int      `json:"days"`
	AttemptCount int      `json:"attempt_count"`
	CustomerIDs  []string `json:"customer_ids,omitempty"`
}

// ExpiryReminderTaskDef emails customers whose membership ends soon
type ExpiryReminderTaskDef struct {
	Reports Reports
	Mailer  Mailer
	Queue   Queue
	AppURL  string
}

func (t *ExpiryReminderTaskDef) TaskID() string {
	return "expiry_reminder"
}

// CreateTask builds a ScheduledTask record for this task
func (t *ExpiryReminderTaskDef) CreateTask(args ExpiryReminderArgs, due time.Time, maxAttempt int) (*models.ScheduledTask, error) {
	return BuildScheduledTask(t.TaskID(), args, due, nil, models.ScheduledTaskTypeOneTime, maxAttempt)
}

func (t *ExpiryReminderTaskDef) HandleExecution(ctx context.Context, task models.ScheduledTask) (map[string]interface{}, error) {
	if t.Reports == nil || t.Mailer == nil {
		return nil, fmt.Errorf("expiry reminder dependencies not configured")
	}

	var args ExpiryReminderArgs
	if err := parseArgs(task, &args); err != nil {
		return nil, err
	}
	if args.Days <= 0 {
		args.Days = 3
	}

	expiring, err := t.Reports.ExpiringWithin(ctx, time.Duration(args.Days)*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("list expiring customers: %w", err)
	}
	expiring = onlyCustomers(expiring, args.CustomerIDs)

	now := t.Reports.Now()
	successCount, skippedCount := 0, 0
	var failures []string
	var failedIDs []string

	for _, customer := range expiring {
		if customer.Email == "" {
			log.Printf("Skipping reminder for %s: no email", customer.CustomerID)
			skippedCount++
			continue
		}
		subject, body := reminderMessage(customer, now, t.AppURL)
		if _, err := t.Mailer.Send(ctx, []string{customer.Email}, subject, body); err != nil {
			log.Printf("Failed to send reminder to %s: %v", customer.CustomerID, err)
			failures = append(failures, fmt.Sprintf("%s: %v", customer.CustomerID, err))
			failedIDs = append(failedIDs, customer.CustomerID)
			continue
		}
		successCount++
	}

	result := map[string]interface{}{
		"total":   len(expiring),
		"success": successCount,
		"skipped": skippedCount,
		"failure": len(failedIDs),
	}
	if len(failedIDs) == 0 {
		return result, nil
	}
	result["errors"] = failures

	maxRetries := task.Attempts()
	if args.AttemptCount >= maxRetries || t.Queue == nil {
		log.Printf("Max attempts (%d) reached for %d failed customers.", maxRetries, len(failedIDs))
		return result, fmt.Errorf("max attempts reached, failed to deliver to %d customers", len(failedIDs))
	}

	log.Printf("Partial failure: %d customers failed. Rescheduling for Attempt %d", len(failedIDs), args.AttemptCount+1)
	retryArgs := args
	retryArgs.CustomerIDs = failedIDs
	retryArgs.AttemptCount = args.AttemptCount + 1

	retry, err := t.CreateTask(retryArgs, now.Add(5*time.Minute), maxRetries)
	if err != nil {
		return result, fmt.Errorf("failed to build retry task: %w", err)
	}
	if err := t.Queue.Enqueue(ctx, retry); err != nil {
		return result, fmt.Errorf("failed to enqueue retry task: %w", err)
	}
	result["retry_attempt"] = retryArgs.AttemptCount
	return result, nil
}

func onlyCustomers(rows []services.CustomerStatus, ids []string) []services.CustomerStatus {
	if len(ids) == 0 {
		return rows
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []services.CustomerStatus
	for _, r := range rows {
		if _, ok := want[r.CustomerID]; ok {
			out = append(out, r)
		}
	}
	return out
}

func reminderMessage(c services.CustomerStatus, now time.Time, appURL string) (string, string) {
	name := c.Name
	if name == "" {
		name = "member"
	}
	subject := fmt.Sprintf("Your %s membership ends in %s", c.PlanName, services.FormatRemaining(now, c.ExpiryDate))
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your <strong>%s</strong> membership expires on %s.</p><p><a href=\"%s/account\">Renew your membership</a></p>",
		html.EscapeString(name),
		html.EscapeString(c.PlanName),
		c.ExpiryDate.In(now.Location()).Format("January 2, 2006 3:04 PM"),
		html.EscapeString(appURL),
	)
	return subject, body
}
