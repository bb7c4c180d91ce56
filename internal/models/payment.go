package models

import "time"

// Payment methods
const (
	PaymentMethodCash     = "cash"
	PaymentMethodGCash    = "gcash"
	PaymentMethodCard     = "card"
	PaymentMethodMidtrans = "midtrans"
)

// Payment statuses
const (
	PaymentStatusPaid = "paid"
)

// AvailedPlan is a snapshot of the plan at the time of payment
type AvailedPlan struct {
	PlanID     string    `json:"planId" firestore:"planId"`
	Name       string    `json:"name" firestore:"name"`
	Amount     float64   `json:"amount" firestore:"amount"`
	Duration   int       `json:"duration" firestore:"duration"`
	StartDate  time.Time `json:"startDate" firestore:"startDate"`
	ExpiryDate time.Time `json:"expiryDate" firestore:"expiryDate"`
}

// NewAvailedPlan snapshots plan starting at start
func NewAvailedPlan(plan MembershipPlan, amount float64, start time.Time) AvailedPlan {
	return AvailedPlan{
		PlanID:     plan.ID,
		Name:       plan.Name,
		Amount:     amount,
		Duration:   plan.Duration,
		StartDate:  start,
		ExpiryDate: start.AddDate(0, 0, plan.Duration),
	}
}

// Payment is an immutable record of a membership purchase
type Payment struct {
	ID            string      `json:"id" firestore:"-"`
	PaymentMethod string      `json:"paymentMethod" firestore:"paymentMethod"`
	Status        string      `json:"status" firestore:"status"`
	IsNewCustomer bool        `json:"isNewCustomer" firestore:"isNewCustomer"`
	CustomerID    string      `json:"customerId" firestore:"customerId"`
	AvailedPlan   AvailedPlan `json:"availedPlan" firestore:"availedPlan"`
	ReceivedBy    string      `json:"receivedBy,omitempty" firestore:"receivedBy,omitempty"`
	CreatedAt     time.Time   `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

func (p *Payment) SetID(id string) { p.ID = id }

// ActiveAt reports whether the availed plan is still running at now
func (p Payment) ActiveAt(now time.Time) bool {
	return p.AvailedPlan.ExpiryDate.After(now)
}
