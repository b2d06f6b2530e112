package model

import (
	"math"
	"time"
)

type PlanType string

const (
	PlanFree    PlanType = "free"
	PlanPremium PlanType = "premium"
)

type User struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	IsActive      bool
	PlanType      PlanType
	PlanStartDate *time.Time
	PlanEndDate   *time.Time
	// IsPremium is a denormalized cache maintained by plan mutations and
	// the expiration sweep. Read paths that need current truth must use
	// PlanActive instead.
	IsPremium     bool
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PlanActive recomputes premium state from the plan window rather than
// trusting the stored IsPremium flag.
func (u *User) PlanActive(now time.Time) bool {
	if u.PlanType != PlanPremium {
		return false
	}
	if u.PlanEndDate == nil {
		return false
	}
	return now.Before(*u.PlanEndDate)
}

// DaysRemaining returns ceil(planEndDate - now) in days, floored at 0,
// or nil when the user has no plan end date.
func (u *User) DaysRemaining(now time.Time) *int {
	if u.PlanEndDate == nil {
		return nil
	}
	diff := u.PlanEndDate.Sub(now)
	days := int(math.Ceil(diff.Hours() / 24))
	if days < 0 {
		days = 0
	}
	return &days
}

// PublicUser is the wire representation of a user; it never carries the
// password hash and always reports live premium state.
type PublicUser struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	PlanType      PlanType   `json:"planType"`
	PlanStartDate *time.Time `json:"planStartDate"`
	PlanEndDate   *time.Time `json:"planEndDate"`
	IsPremium     bool       `json:"isPremium"`
	EmailVerified bool       `json:"emailVerified"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (u *User) Public(now time.Time) PublicUser {
	return PublicUser{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		PlanType:      u.PlanType,
		PlanStartDate: u.PlanStartDate,
		PlanEndDate:   u.PlanEndDate,
		IsPremium:     u.PlanActive(now),
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}
