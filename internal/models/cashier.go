package models

import "time"

// Cashier indexes users currently holding the cashier role. The role
// itself is the authoritative custom claim on the session token.
type Cashier struct {
	UID       string    `json:"uid" firestore:"uid"`
	Email     string    `json:"email" firestore:"email"`
	Name      string    `json:"name" firestore:"name"`
	GrantedBy string    `json:"grantedBy" firestore:"grantedBy"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

func (c *Cashier) SetID(id string) { c.UID = id }
