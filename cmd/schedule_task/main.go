package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gym_app_echo/internal/config"
	"gym_app_echo/internal/models"
	"gym_app_echo/internal/services"
	"gym_app_echo/internal/tasks"
)

func main() {
	taskName := flag.String("task_name", "", "Name of the task (mandatory)")
	argsStr := flag.String("arguments", "{}", "JSON arguments for the task")
	dueStr := flag.String("due", "", "Due date (mandatory, format: 2006-01-02 15:04 or RFC3339)")
	taskType := flag.String("tasktype", "onetime", "Task type: onetime or recurring")
	recurring := flag.String("recurring", "", "RRULE for recurring tasks, e.g. FREQ=MONTHLY;BYMONTHDAY=1")
	maxAttempt := flag.Int("max_attempt", 3, "Max attempts")

	flag.Parse()

	if *taskName == "" || *dueStr == "" {
		fmt.Println("Usage: schedule_task -task_name <name> -due <YYYY-MM-DD HH:MM> [-arguments <json_args>] [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := config.Load()

	// Reject names the worker would mark as handler_not_found
	registry := tasks.NewRegistry()
	tasks.DefineTasks(registry, tasks.Deps{})
	if _, ok := registry.Get(*taskName); !ok {
		log.Fatalf("Unknown task %q, available: %v", *taskName, registry.Names())
	}

	var args map[string]interface{}
	if err := json.Unmarshal([]byte(*argsStr), &args); err != nil {
		log.Fatalf("Invalid JSON arguments: %v", err)
	}

	// Dates without an offset are read in the gym's time zone
	due, err := time.Parse(time.RFC3339, *dueStr)
	if err != nil {
		due, err = time.ParseInLocation("2006-01-02 15:04", *dueStr, cfg.Location())
		if err != nil {
			log.Fatalf("Invalid due date format. Use '2006-01-02 15:04' or RFC3339: %v", err)
		}
	}

	kind := models.ScheduledTaskType(*taskType)
	if kind != models.ScheduledTaskTypeOneTime && kind != models.ScheduledTaskTypeRecurring {
		log.Fatalf("Invalid tasktype %q", *taskType)
	}

	var recurringPtr *string
	if *recurring != "" {
		recurringPtr = recurring
	}
	if kind == models.ScheduledTaskTypeRecurring && recurringPtr == nil {
		log.Fatal("Recurring tasks need -recurring")
	}

	task, err := tasks.BuildScheduledTask(*taskName, args, due, recurringPtr, kind, *maxAttempt)
	if err != nil {
		log.Fatalf("Failed to build task: %v", err)
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	db, err := services.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect DB: %v", err)
	}

	if err := db.Create(task).Error; err != nil {
		log.Fatalf("Failed to create task: %v", err)
	}

	fmt.Printf("Successfully created task ID: %d\n", task.ID)
	fmt.Printf("Task: %s\nDue: %s\nType: %s\n", task.TaskName, task.Due, task.TaskType)
}
