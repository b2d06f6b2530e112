package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/fintrack/backend/internal/model"
)

const codeTTL = 15 * time.Minute

// codeStore is the persistence surface the verification service needs.
type codeStore interface {
	InvalidateAndInsertCode(ctx context.Context, email, code string, purpose model.CodePurpose, expiresAt time.Time) (*model.VerificationCode, error)
	ConsumeCode(ctx context.Context, email, code string, purpose model.CodePurpose) (bool, error)
}

type mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// VerificationService issues and checks single-use, time-limited
// numeric codes scoped to an (email, purpose) pair.
type VerificationService struct {
	codes  codeStore
	mailer mailer
}

func NewVerificationService(codes codeStore, mailer mailer) *VerificationService {
	return &VerificationService{codes: codes, mailer: mailer}
}

// IssueAndSend invalidates every prior unused code for (email, purpose),
// stores a fresh one expiring in 15 minutes, and emails it. Mail
// delivery failure is logged but never fails the issuance: the code is
// live either way. Returns the plaintext code; nothing else ever sees
// it in the clear.
func (s *VerificationService) IssueAndSend(ctx context.Context, email string, purpose model.CodePurpose) (string, error) {
	if !purpose.Valid() {
		return "", fmt.Errorf("%w: unknown code purpose %q", ErrInvalidInput, purpose)
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}

	if _, err := s.codes.InvalidateAndInsertCode(ctx, email, code, purpose, time.Now().Add(codeTTL)); err != nil {
		return "", err
	}

	subject, body := renderCodeEmail(purpose, code)
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		log.Printf("[Verification] failed to deliver %s code to %s: %v", purpose, email, err)
	}

	return code, nil
}

// Verify consumes the newest code matching (email, code, purpose). The
// consume is a single conditional write, so concurrent calls with the
// same code cannot both succeed.
func (s *VerificationService) Verify(ctx context.Context, email, code string, purpose model.CodePurpose) (bool, error) {
	if !purpose.Valid() {
		return false, fmt.Errorf("%w: unknown code purpose %q", ErrInvalidInput, purpose)
	}
	return s.codes.ConsumeCode(ctx, email, code, purpose)
}

// generateCode draws a uniformly random 6-digit code. Leading zeros are
// kept, so the result is always exactly six characters wide.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
