package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fintrack/backend/internal/model"
)

// memStore is an in-memory stand-in for *db.Postgres. Every method
// holds the lock for its full duration, mirroring the per-statement
// atomicity the real store gets from postgres.
type memStore struct {
	mu     sync.Mutex
	users  map[string]*model.User
	emails map[string]string
	tokens map[string]*model.RefreshToken
	codes  []*model.VerificationCode

	expireErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[string]*model.User),
		emails: make(map[string]string),
		tokens: make(map[string]*model.RefreshToken),
	}
}

func (m *memStore) addUser(user *model.User) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	m.users[user.ID] = user
	m.emails[user.Email] = user.ID
	return user
}

func (m *memStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.emails[email]; exists {
		return nil, uniqueViolation()
	}
	user := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		PlanType:     model.PlanFree,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.users[user.ID] = user
	m.emails[email] = user.ID
	return copyUser(user), nil
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.emails[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return copyUser(m.users[id]), nil
}

func (m *memStore) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return copyUser(user), nil
}

func (m *memStore) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.emails[email]
	if !ok {
		return pgx.ErrNoRows
	}
	m.users[id].PasswordHash = passwordHash
	return nil
}

func (m *memStore) UpdateEmail(ctx context.Context, userID, newEmail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	if other, taken := m.emails[newEmail]; taken && other != userID {
		return uniqueViolation()
	}
	delete(m.emails, user.Email)
	user.Email = newEmail
	user.EmailVerified = false
	m.emails[newEmail] = userID
	return nil
}

func (m *memStore) MarkEmailVerified(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.emails[email]
	if !ok {
		return pgx.ErrNoRows
	}
	m.users[id].EmailVerified = true
	return nil
}

func (m *memStore) UpdatePlan(ctx context.Context, userID string, planType model.PlanType, start, end *time.Time, isPremium bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user.PlanType = planType
	user.PlanStartDate = start
	user.PlanEndDate = end
	user.IsPremium = isPremium
	return copyUser(user), nil
}

func (m *memStore) ExpireLapsedPlans(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.expireErr != nil {
		return 0, m.expireErr
	}
	now := time.Now()
	var count int64
	for _, user := range m.users {
		if user.PlanType == model.PlanPremium && user.PlanEndDate != nil && user.PlanEndDate.Before(now) {
			user.PlanType = model.PlanFree
			user.IsPremium = false
			count++
		}
	}
	return count, nil
}

func (m *memStore) InsertRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[tokenHash] = &model.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (m *memStore) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[tokenHash]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *token
	return &clone, nil
}

func (m *memStore) RevokeRefreshTokenByHash(ctx context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token, ok := m.tokens[tokenHash]; ok && token.RevokedAt == nil {
		now := time.Now()
		token.RevokedAt = &now
	}
	return nil
}

func (m *memStore) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, token := range m.tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (m *memStore) RotateRefreshToken(ctx context.Context, oldTokenID, userID, newTokenHash string, newExpiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	revoked := false
	for _, token := range m.tokens {
		if token.ID == oldTokenID && token.RevokedAt == nil {
			token.RevokedAt = &now
			revoked = true
		}
	}
	// Revoke wins, matching the conditional UPDATE in the real store:
	// an already revoked credential cannot be rotated.
	if !revoked {
		return pgx.ErrNoRows
	}
	m.tokens[newTokenHash] = &model.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: newTokenHash,
		ExpiresAt: newExpiresAt,
		CreatedAt: now,
	}
	return nil
}

func (m *memStore) InvalidateAndInsertCode(ctx context.Context, email, code string, purpose model.CodePurpose, expiresAt time.Time) (*model.VerificationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.codes {
		if existing.Email == email && existing.Purpose == purpose && !existing.Used {
			existing.Used = true
		}
	}
	record := &model.VerificationCode{
		ID:        uuid.NewString(),
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	m.codes = append(m.codes, record)
	return record, nil
}

func (m *memStore) ConsumeCode(ctx context.Context, email, code string, purpose model.CodePurpose) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var newest *model.VerificationCode
	for _, existing := range m.codes {
		if existing.Email == email && existing.Code == code && existing.Purpose == purpose {
			if newest == nil || existing.CreatedAt.After(newest.CreatedAt) {
				newest = existing
			}
		}
	}
	if newest == nil || !newest.ValidAt(time.Now()) {
		return false, nil
	}
	newest.Used = true
	return true, nil
}

func (m *memStore) liveCodes(email string, purpose model.CodePurpose) []*model.VerificationCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	var live []*model.VerificationCode
	for _, existing := range m.codes {
		if existing.Email == email && existing.Purpose == purpose && !existing.Used {
			live = append(live, existing)
		}
	}
	return live
}

func copyUser(user *model.User) *model.User {
	clone := *user
	return &clone
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func (f *fakeMailer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
