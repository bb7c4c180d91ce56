package models

import "time"

// PlanType groups membership plans on the storefront
type PlanType string

const (
	PlanTypeIndividual PlanType = "individual"
	PlanTypePackage    PlanType = "package"
	PlanTypeWalkIn     PlanType = "walk-in"
)

// Price tiers
const (
	PriceTierRegular  = "regular"
	PriceTierStudent  = "student"
	PriceTierDiscount = "discount"
)

// PlanPrice holds a flat price (Regular only) or tiered prices
type PlanPrice struct {
	Regular  float64  `json:"regular" firestore:"regular"`
	Student  *float64 `json:"student,omitempty" firestore:"student,omitempty"`
	Discount *float64 `json:"discount,omitempty" firestore:"discount,omitempty"`
}

// MembershipPlan is a purchasable gym membership
type MembershipPlan struct {
	ID          string    `json:"id" firestore:"-"`
	Name        string    `json:"name" firestore:"name"`
	Description string    `json:"description" firestore:"description"`
	Duration    int       `json:"duration" firestore:"duration"` // days
	Price       PlanPrice `json:"price" firestore:"price"`
	PlanType    PlanType  `json:"planType" firestore:"planType"`
	IsActive    bool      `json:"isActive" firestore:"isActive"`
	IsDeleted   bool      `json:"isDeleted" firestore:"isDeleted"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

func (p *MembershipPlan) SetID(id string) { p.ID = id }

// Available reports whether the plan can be sold
func (p MembershipPlan) Available() bool {
	return p.IsActive && !p.IsDeleted
}

// PriceFor returns the price of a tier. Tiers without a price fall back
// to the regular price.
func (p MembershipPlan) PriceFor(tier string) float64 {
	switch tier {
	case PriceTierStudent:
		if p.Price.Student != nil {
			return *p.Price.Student
		}
	case PriceTierDiscount:
		if p.Price.Discount != nil {
			return *p.Price.Discount
		}
	}
	return p.Price.Regular
}

// TierForUser maps a user type onto a price tier
func TierForUser(t UserType) string {
	switch t {
	case UserTypeStudent:
		return PriceTierStudent
	case UserTypeSenior:
		return PriceTierDiscount
	}
	return PriceTierRegular
}
