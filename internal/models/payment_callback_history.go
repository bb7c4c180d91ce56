package models

import "time"

type PaymentGateway string

const (
	PaymentGatewayMidtrans PaymentGateway = "midtrans"
)

// PaymentCallbackHistory is the audit trail of gateway notifications,
// including the ones rejected for a bad signature
type PaymentCallbackHistory struct {
	ID                string         `json:"id" firestore:"-"`
	PaymentGateway    PaymentGateway `json:"paymentGateway" firestore:"paymentGateway"`
	OrderID           string         `json:"orderId" firestore:"orderId"`
	TransactionStatus string         `json:"transactionStatus" firestore:"transactionStatus"`
	FraudStatus       string         `json:"fraudStatus,omitempty" firestore:"fraudStatus,omitempty"`
	PaymentType       string         `json:"paymentType,omitempty" firestore:"paymentType,omitempty"`
	GrossAmount       string         `json:"grossAmount" firestore:"grossAmount"`
	Verified          bool           `json:"verified" firestore:"verified"`
	CreatedAt         time.Time      `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

func (h *PaymentCallbackHistory) SetID(id string) { h.ID = id }
