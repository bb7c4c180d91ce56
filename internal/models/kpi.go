package models

import (
	"fmt"
	"time"
)

// KPI is the yearly rollup stored at kpis/{yyyy}
type KPI struct {
	Year         string    `json:"year" firestore:"year"`
	Revenue      float64   `json:"revenue" firestore:"revenue"`
	Customers    int       `json:"customers" firestore:"customers"`
	NewCustomers int       `json:"newCustomers" firestore:"newCustomers"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

func (k *KPI) SetID(id string) { k.Year = id }

// MonthKPI is the monthly rollup stored at kpis/{yyyy}/months/{MM}
type MonthKPI struct {
	Month        string    `json:"month" firestore:"month"`
	Revenue      float64   `json:"revenue" firestore:"revenue"`
	Customers    int       `json:"customers" firestore:"customers"`
	NewCustomers int       `json:"newCustomers" firestore:"newCustomers"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

func (m *MonthKPI) SetID(id string) { m.Month = id }

// KPICollection is the parent collection of yearly KPI documents
const KPICollection = "kpis"

// YearKey formats a year document id
func YearKey(year int) string {
	return fmt.Sprintf("%04d", year)
}

// MonthKey formats a month document id, two digits
func MonthKey(month time.Month) string {
	return fmt.Sprintf("%02d", int(month))
}

// MonthCollection is the path of the months sub-collection of a year
func MonthCollection(year int) string {
	return KPICollection + "/" + YearKey(year) + "/months"
}
