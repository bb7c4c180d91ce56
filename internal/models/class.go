package models

import "time"

// Class is a scheduled group session led by one or more coaches
type Class struct {
	ID          string    `json:"id" firestore:"-"`
	Name        string    `json:"name" firestore:"name"`
	Description string    `json:"description" firestore:"description"`
	Schedule    string    `json:"schedule" firestore:"schedule"`
	CoachIDs    []string  `json:"coachIds" firestore:"coachIds"`
	IsActive    bool      `json:"isActive" firestore:"isActive"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

func (c *Class) SetID(id string) { c.ID = id }
