package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fintrack/backend/internal/db"
	"github.com/fintrack/backend/internal/model"
)

const maxDurationMonths = 36

// planStore is the persistence surface the subscription service needs.
type planStore interface {
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	UpdatePlan(ctx context.Context, userID string, planType model.PlanType, start, end *time.Time, isPremium bool) (*model.User, error)
	ExpireLapsedPlans(ctx context.Context) (int64, error)
}

// SubscriptionService owns the premium plan state machine. Payment
// capture is external; callers reach these transitions already paid.
type SubscriptionService struct {
	store planStore
}

func NewSubscriptionService(store planStore) *SubscriptionService {
	return &SubscriptionService{store: store}
}

// Activate starts a fresh premium window from now, overwriting any
// prior plan window.
func (s *SubscriptionService) Activate(ctx context.Context, userID string, durationMonths int) (*model.User, error) {
	if err := validateDuration(durationMonths); err != nil {
		return nil, err
	}

	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	end := now.AddDate(0, durationMonths, 0)
	return s.store.UpdatePlan(ctx, userID, model.PlanPremium, &now, &end, true)
}

// Renew extends a still-active plan from its current end date, so a
// subscriber renewing early never loses paid time. A lapsed or free
// account gets a fresh window from now. PlanStartDate is only set when
// previously empty.
func (s *SubscriptionService) Renew(ctx context.Context, userID string, durationMonths int) (*model.User, error) {
	if err := validateDuration(durationMonths); err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	base := now
	if user.PlanActive(now) && user.PlanEndDate != nil {
		base = *user.PlanEndDate
	}
	end := base.AddDate(0, durationMonths, 0)

	start := user.PlanStartDate
	if start == nil {
		start = &now
	}

	return s.store.UpdatePlan(ctx, userID, model.PlanPremium, start, &end, true)
}

// Cancel expires the plan immediately. No grace period.
func (s *SubscriptionService) Cancel(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return s.store.UpdatePlan(ctx, userID, model.PlanFree, user.PlanStartDate, &now, false)
}

// Status reports the live subscription state. IsPremium is recomputed
// from the plan window, so the answer is correct even when the daily
// sweep has not caught up with an expired account yet.
func (s *SubscriptionService) Status(ctx context.Context, userID string) (*model.SubscriptionStatus, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &model.SubscriptionStatus{
		PlanType:      user.PlanType,
		IsPremium:     user.PlanActive(now),
		PlanStartDate: user.PlanStartDate,
		PlanEndDate:   user.PlanEndDate,
		DaysRemaining: user.DaysRemaining(now),
		Features:      availableFeatures(user, now),
	}, nil
}

// HasFeatureAccess gates premium-only features on live plan state.
func (s *SubscriptionService) HasFeatureAccess(ctx context.Context, userID string, feature model.Feature) (bool, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return false, err
	}

	if feature.RequiresPremium() {
		return user.PlanActive(time.Now()), nil
	}
	return true, nil
}

// ExpireLapsedPlans flips every premium account past its end date back
// to free and returns the number of accounts affected.
func (s *SubscriptionService) ExpireLapsedPlans(ctx context.Context) (int64, error) {
	return s.store.ExpireLapsedPlans(ctx)
}

func (s *SubscriptionService) getUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, fmt.Errorf("%w: account not found", ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func availableFeatures(user *model.User, now time.Time) []model.Feature {
	active := user.PlanActive(now)
	features := make([]model.Feature, 0, len(model.AllFeatures))
	for _, f := range model.AllFeatures {
		if !f.RequiresPremium() || active {
			features = append(features, f)
		}
	}
	return features
}

func validateDuration(months int) error {
	if months < 1 || months > maxDurationMonths {
		return fmt.Errorf("%w: durationMonths must be between 1 and %d", ErrInvalidInput, maxDurationMonths)
	}
	return nil
}
