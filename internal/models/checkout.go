package models

import "time"

// CheckoutStatus tracks an online membership purchase
type CheckoutStatus string

const (
	CheckoutStatusPending  CheckoutStatus = "pending"
	CheckoutStatusPaid     CheckoutStatus = "paid"
	CheckoutStatusCanceled CheckoutStatus = "canceled"
)

// Checkout is a pending online purchase awaiting the payment gateway
type Checkout struct {
	ID          string         `json:"id" firestore:"-"`
	CustomerID  string         `json:"customerId" firestore:"customerId"`
	PlanID      string         `json:"planId" firestore:"planId"`
	Tier        string         `json:"tier" firestore:"tier"`
	Amount      float64        `json:"amount" firestore:"amount"`
	OrderID     string         `json:"orderId" firestore:"orderId"`
	Status      CheckoutStatus `json:"status" firestore:"status"`
	SnapToken   string         `json:"snapToken,omitempty" firestore:"snapToken,omitempty"`
	RedirectURL string         `json:"redirectUrl,omitempty" firestore:"redirectUrl,omitempty"`
	PaymentID   string         `json:"paymentId,omitempty" firestore:"paymentId,omitempty"`
	CreatedAt   time.Time      `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

func (c *Checkout) SetID(id string) { c.ID = id }
