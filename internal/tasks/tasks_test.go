package tasks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gym_app_echo/internal/models"
	"gym_app_echo/internal/services"
)

var manila = time.FixedZone("PHT", 8*60*60)

type fakeReports struct {
	now      time.Time
	expiring []services.CustomerStatus
	rolled   []string
}

func (f *fakeReports) Now() time.Time { return f.now }

func (f *fakeReports) RollupMonth(ctx context.Context, year int, month time.Month) (models.MonthKPI, error) {
	f.rolled = append(f.rolled, time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"))
	return models.MonthKPI{Month: models.MonthKey(month), Revenue: 100, Customers: 1}, nil
}

func (f *fakeReports) ExpiringWithin(ctx context.Context, d time.Duration) ([]services.CustomerStatus, error) {
	return f.expiring, nil
}

type fakeMailer struct {
	fail map[string]bool
	sent []string
}

func (m *fakeMailer) Send(ctx context.Context, to []string, subject, html string) (string, error) {
	if m.fail[to[0]] {
		return "", errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, to[0])
	return "msg-" + to[0], nil
}

type fakeQueue struct {
	tasks []*models.ScheduledTask
}

func (q *fakeQueue) Enqueue(ctx context.Context, task *models.ScheduledTask) error {
	q.tasks = append(q.tasks, task)
	return nil
}

func TestDefineTasks(t *testing.T) {
	r := NewRegistry()
	DefineTasks(r, Deps{})

	got := strings.Join(r.Names(), ",")
	if got != "expiry_reminder,log_info,rollup_kpi" {
		t.Errorf("Names() = %s", got)
	}
	if _, ok := r.Get("send_notification"); ok {
		t.Error("unexpected handler registered")
	}
}

func TestRollupKPI(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		args map[string]interface{}
		want string
	}{
		{"defaults to previous month", time.Date(2024, 3, 1, 2, 0, 0, 0, manila), nil, "2024-02"},
		{"january rolls back a year", time.Date(2024, 1, 1, 2, 0, 0, 0, manila), nil, "2023-12"},
		{"explicit month", time.Date(2024, 3, 1, 2, 0, 0, 0, manila), map[string]interface{}{"year": 2023, "month": 6}, "2023-06"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports := &fakeReports{now: tt.now}
			task := &RollupKPITaskDef{Reports: reports}
			if _, err := task.HandleExecution(context.Background(), models.ScheduledTask{Arguments: tt.args}); err != nil {
				t.Fatalf("HandleExecution() error = %v", err)
			}
			if len(reports.rolled) != 1 || reports.rolled[0] != tt.want {
				t.Errorf("rolled = %v; want [%s]", reports.rolled, tt.want)
			}
		})
	}
}

func TestExpiryReminderRetriesFailures(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, manila)
	reports := &fakeReports{now: now, expiring: []services.CustomerStatus{
		{CustomerID: "u1", Name: "Ana", Email: "ana@example.com", PlanName: "Monthly", ExpiryDate: now.Add(48 * time.Hour)},
		{CustomerID: "u2", Name: "Ben", Email: "ben@example.com", PlanName: "Monthly", ExpiryDate: now.Add(24 * time.Hour)},
		{CustomerID: "u3", Name: "Cy", PlanName: "Monthly", ExpiryDate: now.Add(time.Hour)},
	}}
	mailer := &fakeMailer{fail: map[string]bool{"ben@example.com": true}}
	queue := &fakeQueue{}
	task := &ExpiryReminderTaskDef{Reports: reports, Mailer: mailer, Queue: queue, AppURL: "https://gym.test"}

	first := models.ScheduledTask{MaxAttempt: 2, Arguments: map[string]interface{}{"days": 3}}
	result, err := task.HandleExecution(context.Background(), first)
	if err != nil {
		t.Fatalf("first run error = %v", err)
	}
	if result["success"] != 1 || result["skipped"] != 1 || result["failure"] != 1 {
		t.Errorf("result = %v", result)
	}
	if len(queue.tasks) != 1 {
		t.Fatalf("queued %d retries; want 1", len(queue.tasks))
	}

	retry := queue.tasks[0]
	if !retry.Due.Equal(now.Add(5 * time.Minute)) {
		t.Errorf("retry due = %v", retry.Due)
	}
	var args ExpiryReminderArgs
	if err := parseArgs(*retry, &args); err != nil {
		t.Fatal(err)
	}
	if args.AttemptCount != 1 || len(args.CustomerIDs) != 1 || args.CustomerIDs[0] != "u2" {
		t.Errorf("retry args = %+v", args)
	}

	// the retry only targets u2 and gives up once attempts run out
	retry.Arguments["attempt_count"] = 2
	if _, err := task.HandleExecution(context.Background(), *retry); err == nil {
		t.Error("expected error after max attempts")
	}
	if len(mailer.sent) != 1 || len(queue.tasks) != 1 {
		t.Errorf("sent = %v, queued = %d", mailer.sent, len(queue.tasks))
	}
}

func TestReminderMessageEscapes(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, manila)
	c := services.CustomerStatus{Name: "<b>Ana</b>", PlanName: "Monthly", ExpiryDate: now.Add(48 * time.Hour)}

	subject, body := reminderMessage(c, now, "https://gym.test")
	if subject != "Your Monthly membership ends in 2 days" {
		t.Errorf("subject = %q", subject)
	}
	if strings.Contains(body, "<b>Ana</b>") || !strings.Contains(body, "https://gym.test/account") {
		t.Errorf("body = %q", body)
	}
}

func TestNextState(t *testing.T) {
	due := time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC)
	ranAt := due.Add(time.Minute)
	monthly := "FREQ=MONTHLY;BYMONTHDAY=1"

	tests := []struct {
		name      string
		task      models.ScheduledTask
		succeeded bool
		status    models.ScheduledTaskStatus
		nextDue   *time.Time
	}{
		{"failure", models.ScheduledTask{TaskType: models.ScheduledTaskTypeOneTime, Due: due}, false, models.ScheduledTaskStatusFailure, nil},
		{"one time done", models.ScheduledTask{TaskType: models.ScheduledTaskTypeOneTime, Due: due}, true, models.ScheduledTaskStatusDone, nil},
		{
			"recurring rescheduled",
			models.ScheduledTask{TaskType: models.ScheduledTaskTypeRecurring, Due: due, RecurringInterval: &monthly},
			true,
			models.ScheduledTaskStatusActive,
			timePtr(time.Date(2024, 2, 1, 2, 0, 0, 0, time.UTC)),
		},
		{"recurring without rule ends", models.ScheduledTask{TaskType: models.ScheduledTaskTypeRecurring, Due: due}, true, models.ScheduledTaskStatusDone, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextState(tt.task, tt.succeeded, ranAt)
			if got["status"] != tt.status {
				t.Errorf("status = %v; want %v", got["status"], tt.status)
			}
			due, ok := got["due"].(time.Time)
			if tt.nextDue == nil && ok {
				t.Errorf("unexpected due %v", due)
			}
			if tt.nextDue != nil && (!ok || !due.Equal(*tt.nextDue)) {
				t.Errorf("due = %v; want %v", due, *tt.nextDue)
			}
		})
	}
}

func TestBuildScheduledTask(t *testing.T) {
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	task, err := (&RollupKPITaskDef{}).CreateTask(due)
	if err != nil {
		t.Fatal(err)
	}
	if task.TaskName != "rollup_kpi" || task.Status != models.ScheduledTaskStatusActive || task.TaskType != models.ScheduledTaskTypeRecurring {
		t.Errorf("task = %+v", task)
	}
	if task.Arguments == nil || *task.RecurringInterval != "FREQ=MONTHLY;BYMONTHDAY=1" {
		t.Errorf("task = %+v", task)
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestLogInfoLag(t *testing.T) {
	due := time.Date(2024, 6, 10, 9, 0, 0, 0, manila)
	task := &LogInfoTaskDef{now: func() time.Time { return due.Add(90 * time.Second) }}

	result, err := task.HandleExecution(context.Background(), models.ScheduledTask{Due: due})
	if err != nil {
		t.Fatal(err)
	}
	if result["message"] != "ping" || result["lag_seconds"] != 90 || result["max_attempts"] != 1 {
		t.Errorf("result = %v", result)
	}
}
