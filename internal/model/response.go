package model

import "time"

// Envelope is the uniform response shape for every endpoint.
type Envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError carries a per-field validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type SubscriptionStatus struct {
	PlanType      PlanType   `json:"planType"`
	IsPremium     bool       `json:"isPremium"`
	PlanStartDate *time.Time `json:"planStartDate"`
	PlanEndDate   *time.Time `json:"planEndDate"`
	DaysRemaining *int       `json:"daysRemaining"`
	Features      []Feature  `json:"features"`
}

type PlanSummary struct {
	PlanType      PlanType   `json:"planType"`
	IsPremium     bool       `json:"isPremium"`
	PlanStartDate *time.Time `json:"planStartDate,omitempty"`
	PlanEndDate   *time.Time `json:"planEndDate,omitempty"`
}

type SubscriptionChangeRequest struct {
	DurationMonths int `json:"durationMonths"`
}

type FeatureAccess struct {
	Features  []Feature `json:"features"`
	IsPremium bool      `json:"isPremium"`
}
