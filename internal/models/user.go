package models

import "time"

// UserType decides which price tier a customer pays
type UserType string

const (
	UserTypeRegular UserType = "regular"
	UserTypeStudent UserType = "student"
	UserTypeSenior  UserType = "senior"
)

// Valid reports whether t is a known user type
func (t UserType) Valid() bool {
	switch t {
	case UserTypeRegular, UserTypeStudent, UserTypeSenior:
		return true
	}
	return false
}

// User is a registered account. Roles live in auth claims, not here.
type User struct {
	ID          string     `json:"id" firestore:"-"`
	Name        string     `json:"name" firestore:"name"`
	Email       string     `json:"email" firestore:"email"`
	Sex         string     `json:"sex,omitempty" firestore:"sex,omitempty"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty" firestore:"dateOfBirth,omitempty"`
	Type        UserType   `json:"type" firestore:"type"`
	IsCustomer  bool       `json:"isCustomer" firestore:"isCustomer"`
	CreatedAt   time.Time  `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time  `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

func (u *User) SetID(id string) { u.ID = id }
