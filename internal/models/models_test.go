package models

import (
	"testing"
	"time"
)

func TestNextDueAfter(t *testing.T) {
	due := time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC)
	monthly := "FREQ=MONTHLY;BYMONTHDAY=1"
	broken := "FREQ=SOMETIMES"

	tests := []struct {
		name string
		task ScheduledTask
		now  time.Time
		want time.Time
	}{
		{
			"one time keeps due",
			ScheduledTask{TaskType: ScheduledTaskTypeOneTime, Due: due},
			due.AddDate(0, 3, 0),
			due,
		},
		{
			"monthly advances past now",
			ScheduledTask{TaskType: ScheduledTaskTypeRecurring, Due: due, RecurringInterval: &monthly},
			time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 4, 1, 2, 0, 0, 0, time.UTC),
		},
		{
			"run exactly at due moves on",
			ScheduledTask{TaskType: ScheduledTaskTypeRecurring, Due: due, RecurringInterval: &monthly},
			due,
			time.Date(2024, 2, 1, 2, 0, 0, 0, time.UTC),
		},
		{
			"bad rule keeps due",
			ScheduledTask{TaskType: ScheduledTaskTypeRecurring, Due: due, RecurringInterval: &broken},
			due,
			due,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.NextDueAfter(tt.now); !got.Equal(tt.want) {
				t.Errorf("NextDueAfter() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestPlanPricing(t *testing.T) {
	student := 1200.0
	plan := MembershipPlan{Price: PlanPrice{Regular: 1500, Student: &student}, IsActive: true}

	tests := []struct {
		tier string
		want float64
	}{
		{PriceTierRegular, 1500},
		{PriceTierStudent, 1200},
		{PriceTierDiscount, 1500}, // no discount price set
		{"", 1500},
	}
	for _, tt := range tests {
		if got := plan.PriceFor(tt.tier); got != tt.want {
			t.Errorf("PriceFor(%q) = %v; want %v", tt.tier, got, tt.want)
		}
	}

	if TierForUser(UserTypeSenior) != PriceTierDiscount || TierForUser(UserTypeStudent) != PriceTierStudent || TierForUser("") != PriceTierRegular {
		t.Error("TierForUser mapping is wrong")
	}

	plan.IsDeleted = true
	if plan.Available() {
		t.Error("deleted plan reported available")
	}
}

func TestNewAvailedPlan(t *testing.T) {
	start := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)
	plan := MembershipPlan{ID: "p1", Name: "Monthly", Duration: 30}

	got := NewAvailedPlan(plan, 999, start)
	want := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	if !got.ExpiryDate.Equal(want) {
		t.Errorf("ExpiryDate = %v; want %v", got.ExpiryDate, want)
	}
	if got.PlanID != "p1" || got.Amount != 999 || got.Name != "Monthly" {
		t.Errorf("NewAvailedPlan() = %+v", got)
	}

	p := Payment{AvailedPlan: got}
	if !p.ActiveAt(want.Add(-time.Second)) || p.ActiveAt(want) {
		t.Error("ActiveAt boundary is wrong; expiry instant must be inactive")
	}
}
