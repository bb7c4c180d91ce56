package models

import "time"

// Apparel is a storefront merchandise item
type Apparel struct {
	ID          string    `json:"id" firestore:"-"`
	Name        string    `json:"name" firestore:"name"`
	Price       float64   `json:"price" firestore:"price"`
	Discount    *float64  `json:"discount,omitempty" firestore:"discount,omitempty"`
	Image       string    `json:"image" firestore:"image"`
	Description string    `json:"description" firestore:"description"`
	Type        string    `json:"type" firestore:"type"`
	IsActive    bool      `json:"isActive" firestore:"isActive"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

func (a *Apparel) SetID(id string) { a.ID = id }
