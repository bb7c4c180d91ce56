package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"gym_app_echo/internal/docstore"
	"gym_app_echo/internal/models"
)

// PaymentService records membership payments, at the counter or through
// the online checkout
type PaymentService struct {
	Payments  *docstore.Collection[models.Payment]
	users     *docstore.Collection[models.User]
	plans     *docstore.Collection[models.MembershipPlan]
	checkouts *docstore.Collection[models.Checkout]
	callbacks *docstore.Collection[models.PaymentCallbackHistory]
	gateway   PaymentGateway
	cache     *RedisCache
	appURL    string
	loc       *time.Location
	now       func() time.Time
}

// NewPaymentService builds the service; loc must match the KPI service so
// report cache keys line up
func NewPaymentService(store docstore.Store, gateway PaymentGateway, cache *RedisCache, appURL string, loc *time.Location) *PaymentService {
	if loc == nil {
		loc = time.Local
	}
	return &PaymentService{
		Payments:  docstore.NewCollection[models.Payment](store, models.PaymentsCollection),
		users:     docstore.NewCollection[models.User](store, models.UsersCollection),
		plans:     docstore.NewCollection[models.MembershipPlan](store, models.MembershipPlansCollection),
		checkouts: docstore.NewCollection[models.Checkout](store, models.CheckoutsCollection),
		callbacks: docstore.NewCollection[models.PaymentCallbackHistory](store, models.PaymentCallbacksCollection),
		gateway:   gateway,
		cache:     cache,
		appURL:    appURL,
		loc:       loc,
		now:       time.Now,
	}
}

// RecordPaymentInput describes a payment taken for a plan
type RecordPaymentInput struct {
	CustomerID    string
	PlanID        string
	Tier          string // empty picks the tier from the customer's type
	PaymentMethod string
	ReceivedBy    string
	StartDate     time.Time // zero means now

	// settledAmount is set for checkouts the gateway already charged. The
	// payment is then recorded at that amount even if the plan was retired
	// after checkout.
	settledAmount float64
}

// Record writes an immutable payment with a snapshot of the plan and
// marks the user as a customer
func (s *PaymentService) Record(ctx context.Context, in RecordPaymentInput) (*models.Payment, error) {
	user, err := s.users.Get(ctx, in.CustomerID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, NewValidationError("customerId", "unknown customer")
		}
		return nil, err
	}
	plan, err := s.plans.Get(ctx, in.PlanID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, NewValidationError("planId", "unknown plan")
		}
		return nil, err
	}
	if !plan.Available() && in.settledAmount == 0 {
		return nil, NewValidationError("planId", "plan is not available")
	}

	tier := in.Tier
	if tier == "" {
		tier = models.TierForUser(user.Type)
	}
	amount := plan.PriceFor(tier)
	if in.settledAmount > 0 {
		amount = in.settledAmount
	}
	start := in.StartDate
	if start.IsZero() {
		start = s.now()
	}

	payment := &models.Payment{
		PaymentMethod: in.PaymentMethod,
		Status:        models.PaymentStatusPaid,
		IsNewCustomer: !user.IsCustomer,
		CustomerID:    user.ID,
		AvailedPlan:   models.NewAvailedPlan(*plan, amount, start),
		ReceivedBy:    in.ReceivedBy,
	}
	if _, err := s.Payments.Add(ctx, payment); err != nil {
		return nil, fmt.Errorf("store payment: %w", err)
	}

	// The payment is already stored; the customer flag is best effort
	if !user.IsCustomer {
		err := s.users.Update(ctx, user.ID, map[string]interface{}{
			"isCustomer": true,
			"updatedAt":  docstore.ServerTimestamp,
		})
		if err != nil {
			log.Printf("mark user %s as customer: %v", user.ID, err)
		}
	}

	s.invalidateReports(ctx)
	return payment, nil
}

func (s *PaymentService) invalidateReports(ctx context.Context) {
	if err := s.cache.Delete(ctx, reportCacheKeys(s.now(), s.loc)...); err != nil {
		log.Printf("cache invalidate reports: %v", err)
	}
}

// CheckoutResult is what the storefront needs to open the Snap popup
type CheckoutResult struct {
	CheckoutID  string `json:"checkoutId"`
	OrderID     string `json:"orderId"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirectUrl"`
	ClientKey   string `json:"clientKey"`
}

// StartCheckout creates a pending checkout and a hosted payment page for it
func (s *PaymentService) StartCheckout(ctx context.Context, customerID, planID, tier string) (*CheckoutResult, error) {
	if s.gateway == nil {
		return nil, fmt.Errorf("payment gateway not configured")
	}

	user, err := s.users.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	plan, err := s.plans.Get(ctx, planID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, NewValidationError("planId", "unknown plan")
		}
		return nil, err
	}
	if !plan.Available() {
		return nil, NewValidationError("planId", "plan is not available")
	}
	if tier == "" {
		tier = models.TierForUser(user.Type)
	}

	amount := plan.PriceFor(tier)
	checkout := &models.Checkout{
		CustomerID: user.ID,
		PlanID:     plan.ID,
		Tier:       tier,
		Amount:     amount,
		OrderID:    "membership-" + uuid.New().String(),
		Status:     models.CheckoutStatusPending,
	}
	if _, err := s.checkouts.Add(ctx, checkout); err != nil {
		return nil, err
	}

	gross := int64(math.Round(amount))
	resp, err := s.gateway.CreateTransaction(&snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  checkout.OrderID,
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: user.Name,
			Email: user.Email,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    plan.ID,
				Name:  plan.Name,
				Price: gross,
				Qty:   1,
			},
		},
		Callbacks: &snap.Callbacks{
			Finish: s.appURL + "/account",
		},
	})
	if err != nil {
		return nil, err
	}

	err = s.checkouts.Update(ctx, checkout.ID, map[string]interface{}{
		"snapToken":   resp.Token,
		"redirectUrl": resp.RedirectURL,
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{
		CheckoutID:  checkout.ID,
		OrderID:     checkout.OrderID,
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
		ClientKey:   s.gateway.ClientKey(),
	}, nil
}

// Notification is the subset of a Midtrans HTTP notification we act on
type Notification struct {
	OrderID           string `json:"order_id" form:"order_id"`
	StatusCode        string `json:"status_code" form:"status_code"`
	GrossAmount       string `json:"gross_amount" form:"gross_amount"`
	SignatureKey      string `json:"signature_key" form:"signature_key"`
	TransactionStatus string `json:"transaction_status" form:"transaction_status"`
	FraudStatus       string `json:"fraud_status" form:"fraud_status"`
	PaymentType       string `json:"payment_type" form:"payment_type"`
}

// HandleNotification applies a gateway notification to its checkout.
// Notifications for an already paid checkout are ignored.
func (s *PaymentService) HandleNotification(ctx context.Context, n Notification) error {
	if s.gateway == nil {
		return fmt.Errorf("payment gateway not configured")
	}
	verified := s.gateway.VerifySignature(n.OrderID, n.StatusCode, n.GrossAmount, n.SignatureKey)
	s.recordCallback(ctx, n, verified)
	if !verified {
		return fmt.Errorf("%w: invalid notification signature", ErrForbidden)
	}

	found, err := s.checkouts.Query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("orderId", docstore.OpEqual, n.OrderID)},
		Limit:   1,
	})
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return docstore.ErrNotFound
	}
	checkout := found[0]
	if checkout.Status == models.CheckoutStatusPaid {
		return nil
	}

	switch n.TransactionStatus {
	case "capture":
		if n.FraudStatus != "accept" {
			return nil
		}
		return s.completeCheckout(ctx, checkout)
	case "settlement":
		return s.completeCheckout(ctx, checkout)
	case "deny", "expire", "cancel", "failure":
		return s.checkouts.Update(ctx, checkout.ID, map[string]interface{}{
			"status": string(models.CheckoutStatusCanceled),
		})
	}
	return nil
}

// recordCallback stores the notification in the audit trail. Failures are
// logged so a storage hiccup never rejects a gateway retry.
func (s *PaymentService) recordCallback(ctx context.Context, n Notification, verified bool) {
	_, err := s.callbacks.Add(ctx, &models.PaymentCallbackHistory{
		PaymentGateway:    models.PaymentGatewayMidtrans,
		OrderID:           n.OrderID,
		TransactionStatus: n.TransactionStatus,
		FraudStatus:       n.FraudStatus,
		PaymentType:       n.PaymentType,
		GrossAmount:       n.GrossAmount,
		Verified:          verified,
	})
	if err != nil {
		log.Printf("failed to record payment callback for %s: %v", n.OrderID, err)
	}
}

func (s *PaymentService) completeCheckout(ctx context.Context, checkout models.Checkout) error {
	payment, err := s.Record(ctx, RecordPaymentInput{
		CustomerID:    checkout.CustomerID,
		PlanID:        checkout.PlanID,
		Tier:          checkout.Tier,
		PaymentMethod: models.PaymentMethodMidtrans,
		settledAmount: checkout.Amount,
	})
	if err != nil {
		return err
	}
	return s.checkouts.Update(ctx, checkout.ID, map[string]interface{}{
		"status":    string(models.CheckoutStatusPaid),
		"paymentId": payment.ID,
	})
}
