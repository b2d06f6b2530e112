package model

import "time"

// CodePurpose distinguishes why a verification code was issued. Codes
// are scoped to one purpose; a code issued for password reset can never
// verify an email address.
type CodePurpose string

const (
	PurposeEmailVerification CodePurpose = "email_verification"
	PurposePasswordReset     CodePurpose = "password_reset"
	PurposeEmailChange       CodePurpose = "email_change"
	PurposePasswordChange    CodePurpose = "password_change"
)

func (p CodePurpose) Valid() bool {
	switch p {
	case PurposeEmailVerification, PurposePasswordReset, PurposeEmailChange, PurposePasswordChange:
		return true
	}
	return false
}

// VerificationCode is a single-use, time-limited numeric code bound to
// an email address and a purpose. Rows are append-only: consumed codes
// are marked used, expired codes are simply left behind.
type VerificationCode struct {
	ID        string
	Email     string
	Code      string
	Purpose   CodePurpose
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

func (c *VerificationCode) ValidAt(now time.Time) bool {
	return !c.Used && now.Before(c.ExpiresAt)
}
