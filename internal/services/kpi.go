package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"gym_app_echo/internal/docstore"
	"gym_app_echo/internal/models"
)

const (
	dailySummaryTTL  = time.Minute
	yearlySummaryTTL = 5 * time.Minute
)

// WindowTotals is the revenue and distinct customer count of a period
type WindowTotals struct {
	Revenue   float64 `json:"revenue"`
	Customers int     `json:"customers"`
}

// DailySummary compares today with yesterday
type DailySummary struct {
	Date           string       `json:"date"`
	Today          WindowTotals `json:"today"`
	Yesterday      WindowTotals `json:"yesterday"`
	RevenueChange  float64      `json:"revenueChange"`
	CustomerChange float64      `json:"customerChange"`
}

// YearlySummary holds revenue per calendar month, January first
type YearlySummary struct {
	Year    int       `json:"year"`
	Monthly []float64 `json:"monthly"`
	Total   float64   `json:"total"`
}

// CustomerStatus is one row of the active or inactive customer lists
type CustomerStatus struct {
	CustomerID    string    `json:"customerId"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PaymentID     string    `json:"paymentId"`
	PlanName      string    `json:"planName"`
	ExpiryDate    time.Time `json:"expiryDate"`
	RemainingTime string    `json:"remainingTime,omitempty"`
}

// KPIReport is the persisted rollup of a year
type KPIReport struct {
	Year   models.KPI        `json:"year"`
	Months []models.MonthKPI `json:"months"`
}

// KPIService aggregates payment documents into revenue and customer reports
type KPIService struct {
	store    docstore.Store
	payments *docstore.Collection[models.Payment]
	users    *docstore.Collection[models.User]
	cache    *RedisCache
	loc      *time.Location
	now      func() time.Time
}

func NewKPIService(store docstore.Store, cache *RedisCache, loc *time.Location) *KPIService {
	if loc == nil {
		loc = time.Local
	}
	return &KPIService{
		store:    store,
		payments: docstore.NewCollection[models.Payment](store, models.PaymentsCollection),
		users:    docstore.NewCollection[models.User](store, models.UsersCollection),
		cache:    cache,
		loc:      loc,
		now:      time.Now,
	}
}

// Location is the time zone calendar boundaries are computed in
func (s *KPIService) Location() *time.Location {
	return s.loc
}

// Now returns the current time in the service time zone
func (s *KPIService) Now() time.Time {
	return s.now().In(s.loc)
}

func dailyKey(day time.Time) string {
	return "kpi:daily:" + day.Format("2006-01-02")
}

func yearlyKey(year int) string {
	return fmt.Sprintf("kpi:yearly:%04d", year)
}

// reportCacheKeys are the summary keys a payment made at t lands in, with
// calendar days taken in loc
func reportCacheKeys(t time.Time, loc *time.Location) []string {
	local := t.In(loc)
	return []string{dailyKey(local), yearlyKey(local.Year())}
}

// PercentChange is (current-previous)/previous*100, or 100 when previous is 0
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		return 100
	}
	return (current - previous) / previous * 100
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// paymentsBetween returns payments created in [from, to)
func (s *KPIService) paymentsBetween(ctx context.Context, from, to time.Time) ([]models.Payment, error) {
	return s.payments.Query(ctx, docstore.Query{
		Filters: []docstore.Filter{
			docstore.Where("createdAt", docstore.OpGreaterOrEqual, from),
			docstore.Where("createdAt", docstore.OpLess, to),
		},
	})
}

func totals(payments []models.Payment) WindowTotals {
	var t WindowTotals
	customers := make(map[string]struct{})
	for _, p := range payments {
		t.Revenue += p.AvailedPlan.Amount
		customers[p.CustomerID] = struct{}{}
	}
	t.Customers = len(customers)
	return t
}

// DailySummary totals today's and yesterday's payments in local calendar days
func (s *KPIService) DailySummary(ctx context.Context) (DailySummary, error) {
	today := startOfDay(s.Now())
	key := dailyKey(today)

	return GetOrSet(s.cache, ctx, key, dailySummaryTTL, func() (DailySummary, error) {
		tomorrow := today.AddDate(0, 0, 1)
		yesterday := today.AddDate(0, 0, -1)

		var todays, yesterdays []models.Payment
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			todays, err = s.paymentsBetween(gctx, today, tomorrow)
			return err
		})
		g.Go(func() error {
			var err error
			yesterdays, err = s.paymentsBetween(gctx, yesterday, today)
			return err
		})
		if err := g.Wait(); err != nil {
			return DailySummary{}, fmt.Errorf("daily summary: %w", err)
		}

		t := totals(todays)
		y := totals(yesterdays)
		return DailySummary{
			Date:           today.Format("2006-01-02"),
			Today:          t,
			Yesterday:      y,
			RevenueChange:  PercentChange(t.Revenue, y.Revenue),
			CustomerChange: PercentChange(float64(t.Customers), float64(y.Customers)),
		}, nil
	})
}

// YearlySummary totals revenue for each month of year
func (s *KPIService) YearlySummary(ctx context.Context, year int) (YearlySummary, error) {
	key := yearlyKey(year)

	return GetOrSet(s.cache, ctx, key, yearlySummaryTTL, func() (YearlySummary, error) {
		monthly := make([]float64, 12)
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < 12; i++ {
			i := i
			g.Go(func() error {
				start := time.Date(year, time.Month(i+1), 1, 0, 0, 0, 0, s.loc)
				payments, err := s.paymentsBetween(gctx, start, start.AddDate(0, 1, 0))
				if err != nil {
					return err
				}
				monthly[i] = totals(payments).Revenue
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return YearlySummary{}, fmt.Errorf("yearly summary %d: %w", year, err)
		}

		summary := YearlySummary{Year: year, Monthly: monthly}
		for _, v := range monthly {
			summary.Total += v
		}
		return summary, nil
	})
}

// ActiveCustomers lists customers whose latest plan expires after now,
// soonest expiry first
func (s *KPIService) ActiveCustomers(ctx context.Context) ([]CustomerStatus, error) {
	active, _, now, err := s.classify(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.customerRows(ctx, active, now, true)
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ExpiryDate.Before(rows[j].ExpiryDate) })
	return rows, nil
}

// InactiveCustomers lists customers with no running plan, most recently
// lapsed first
func (s *KPIService) InactiveCustomers(ctx context.Context) ([]CustomerStatus, error) {
	_, inactive, now, err := s.classify(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.customerRows(ctx, inactive, now, false)
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ExpiryDate.After(rows[j].ExpiryDate) })
	return rows, nil
}

// ExpiringWithin lists active customers whose plan ends within d
func (s *KPIService) ExpiringWithin(ctx context.Context, d time.Duration) ([]CustomerStatus, error) {
	rows, err := s.ActiveCustomers(ctx)
	if err != nil {
		return nil, err
	}
	limit := s.Now().Add(d)
	var out []CustomerStatus
	for _, r := range rows {
		if !r.ExpiryDate.After(limit) {
			out = append(out, r)
		}
	}
	return out, nil
}

// classify splits customers by the expiry of their payments. A customer
// with any unexpired payment is active; the rest are inactive. Each map
// holds the latest-expiring payment per customer.
func (s *KPIService) classify(ctx context.Context) (map[string]models.Payment, map[string]models.Payment, time.Time, error) {
	now := s.Now()

	var running, lapsed []models.Payment
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		running, err = s.payments.Query(gctx, docstore.Query{Filters: []docstore.Filter{
			docstore.Where("availedPlan.expiryDate", docstore.OpGreater, now),
		}})
		return err
	})
	g.Go(func() error {
		var err error
		lapsed, err = s.payments.Query(gctx, docstore.Query{Filters: []docstore.Filter{
			docstore.Where("availedPlan.expiryDate", docstore.OpLessOrEqual, now),
		}})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, now, fmt.Errorf("classify customers: %w", err)
	}

	active := latestPerCustomer(running)
	inactive := latestPerCustomer(lapsed)
	for id := range active {
		delete(inactive, id)
	}
	return active, inactive, now, nil
}

func latestPerCustomer(payments []models.Payment) map[string]models.Payment {
	out := make(map[string]models.Payment)
	for _, p := range payments {
		if cur, ok := out[p.CustomerID]; !ok || p.AvailedPlan.ExpiryDate.After(cur.AvailedPlan.ExpiryDate) {
			out[p.CustomerID] = p
		}
	}
	return out
}

func (s *KPIService) customerRows(ctx context.Context, byCustomer map[string]models.Payment, now time.Time, withRemaining bool) ([]CustomerStatus, error) {
	rows := make([]CustomerStatus, 0, len(byCustomer))
	for id, p := range byCustomer {
		row := CustomerStatus{
			CustomerID: id,
			PaymentID:  p.ID,
			PlanName:   p.AvailedPlan.Name,
			ExpiryDate: p.AvailedPlan.ExpiryDate,
		}
		user, err := s.users.Get(ctx, id)
		switch {
		case err == nil:
			row.Name = user.Name
			row.Email = user.Email
		case !errors.Is(err, docstore.ErrNotFound):
			return nil, err
		}
		if withRemaining {
			row.RemainingTime = FormatRemaining(now, p.AvailedPlan.ExpiryDate)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FormatRemaining renders the calendar time from now until expiry as
// months, days, hours and minutes, largest unit first, skipping zero
// units. Expired plans render "Expired"; under a minute renders "0 minutes".
func FormatRemaining(now, expiry time.Time) string {
	if !expiry.After(now) {
		return "Expired"
	}
	expiry = expiry.In(now.Location())

	months := 0
	for !now.AddDate(0, months+1, 0).After(expiry) {
		months++
	}
	cursor := now.AddDate(0, months, 0)

	days := 0
	for !cursor.AddDate(0, 0, days+1).After(expiry) {
		days++
	}
	cursor = cursor.AddDate(0, 0, days)

	rest := expiry.Sub(cursor)
	hours := int(rest / time.Hour)
	minutes := int((rest % time.Hour) / time.Minute)

	var parts []string
	for _, u := range []struct {
		n    int
		unit string
	}{{months, "month"}, {days, "day"}, {hours, "hour"}, {minutes, "minute"}} {
		if u.n == 0 {
			continue
		}
		if u.n == 1 {
			parts = append(parts, "1 "+u.unit)
		} else {
			parts = append(parts, fmt.Sprintf("%d %ss", u.n, u.unit))
		}
	}
	if len(parts) == 0 {
		return "0 minutes"
	}
	return strings.Join(parts, ", ")
}

// RollupMonth recomputes and stores kpis/{yyyy}/months/{MM}, then refreshes
// the year document kpis/{yyyy}.
func (s *KPIService) RollupMonth(ctx context.Context, year int, month time.Month) (models.MonthKPI, error) {
	if month < time.January || month > time.December {
		return models.MonthKPI{}, NewValidationError("month", "must be between 1 and 12")
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
	monthPayments, err := s.paymentsBetween(ctx, start, start.AddDate(0, 1, 0))
	if err != nil {
		return models.MonthKPI{}, err
	}
	t := totals(monthPayments)
	monthKPI := models.MonthKPI{
		Month:        models.MonthKey(month),
		Revenue:      t.Revenue,
		Customers:    t.Customers,
		NewCustomers: newCustomers(monthPayments),
	}
	months := docstore.NewCollection[models.MonthKPI](s.store, models.MonthCollection(year))
	if err := months.Set(ctx, monthKPI.Month, &monthKPI); err != nil {
		return models.MonthKPI{}, fmt.Errorf("store month kpi: %w", err)
	}

	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, s.loc)
	yearPayments, err := s.paymentsBetween(ctx, yearStart, yearStart.AddDate(1, 0, 0))
	if err != nil {
		return models.MonthKPI{}, err
	}
	yt := totals(yearPayments)
	yearKPI := models.KPI{
		Year:         models.YearKey(year),
		Revenue:      yt.Revenue,
		Customers:    yt.Customers,
		NewCustomers: newCustomers(yearPayments),
	}
	years := docstore.NewCollection[models.KPI](s.store, models.KPICollection)
	if err := years.Set(ctx, yearKPI.Year, &yearKPI); err != nil {
		return models.MonthKPI{}, fmt.Errorf("store year kpi: %w", err)
	}

	if err := s.cache.Delete(ctx, yearlyKey(year)); err != nil {
		return monthKPI, err
	}
	return monthKPI, nil
}

func newCustomers(payments []models.Payment) int {
	seen := make(map[string]struct{})
	for _, p := range payments {
		if p.IsNewCustomer {
			seen[p.CustomerID] = struct{}{}
		}
	}
	return len(seen)
}

// StoredKPI reads the persisted rollup of a year
func (s *KPIService) StoredKPI(ctx context.Context, year int) (KPIReport, error) {
	years := docstore.NewCollection[models.KPI](s.store, models.KPICollection)
	yearKPI, err := years.Get(ctx, models.YearKey(year))
	if err != nil {
		return KPIReport{}, err
	}

	months, err := docstore.NewCollection[models.MonthKPI](s.store, models.MonthCollection(year)).
		Query(ctx, docstore.Query{OrderBy: "month"})
	if err != nil {
		return KPIReport{}, err
	}
	if months == nil {
		months = []models.MonthKPI{}
	}
	return KPIReport{Year: *yearKPI, Months: months}, nil
}
