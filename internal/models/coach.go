package models

import "time"

// Coach is a trainer profile shown on the storefront
type Coach struct {
	ID             string     `json:"id" firestore:"-"`
	Name           string     `json:"name" firestore:"name"`
	Specialization string     `json:"specialization" firestore:"specialization"`
	Bio            string     `json:"bio" firestore:"bio"` // markdown
	DateOfBirth    *time.Time `json:"dateOfBirth,omitempty" firestore:"dateOfBirth,omitempty"`
	Experience     int        `json:"experience" firestore:"experience"` // years
	Image          string     `json:"image" firestore:"image"`
	Certifications []string   `json:"certifications" firestore:"certifications"`
	Contact        string     `json:"contact" firestore:"contact"`
	IsActive       bool       `json:"isActive" firestore:"isActive"`
	CreatedAt      time.Time  `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt      time.Time  `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

func (c *Coach) SetID(id string) { c.ID = id }
