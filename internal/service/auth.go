package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fintrack/backend/internal/db"
	"github.com/fintrack/backend/internal/model"
)

// userStore and refreshTokenStore are the slices of the persistence
// layer the auth service depends on. *db.Postgres satisfies both.
type userStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error
	UpdateEmail(ctx context.Context, userID, newEmail string) error
	MarkEmailVerified(ctx context.Context, email string) error
}

type refreshTokenStore interface {
	InsertRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	RevokeRefreshTokenByHash(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
	RotateRefreshToken(ctx context.Context, oldTokenID, userID, newTokenHash string, newExpiresAt time.Time) error
}

type AuthService struct {
	users        userStore
	tokens       refreshTokenStore
	issuer       *TokenIssuer
	verification *VerificationService
	refreshTTL   time.Duration
}

func NewAuthService(users userStore, tokens refreshTokenStore, issuer *TokenIssuer, verification *VerificationService, refreshTTL time.Duration) (*AuthService, error) {
	if refreshTTL <= 0 {
		return nil, fmt.Errorf("%w: refresh token TTL must be positive", ErrMisconfigured)
	}
	return &AuthService{
		users:        users,
		tokens:       tokens,
		issuer:       issuer,
		verification: verification,
		refreshTTL:   refreshTTL,
	}, nil
}

// Register creates the account and issues a credential pair. The
// email-verification code is sent on the side; a delivery problem never
// fails the registration.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.AuthResult, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, name, email, hash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, err
	}

	if _, err := s.verification.IssueAndSend(ctx, email, model.PurposeEmailVerification); err != nil {
		log.Printf("[Auth] failed to issue verification code for %s: %v", email, err)
	}

	return s.issueCredentials(ctx, user)
}

// Login deliberately returns the same ErrUnauthorized for an unknown
// email and a wrong password, so callers cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, ErrUnauthorized
	}

	if !user.IsActive {
		return nil, ErrUnauthorized
	}

	return s.issueCredentials(ctx, user)
}

// Refresh exchanges a live refresh credential for a new pair. The old
// credential is revoked and replaced in one step (rotation-on-use); a
// revoked or expired token is permanently invalid.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrUnauthorized
	}

	hash := hashRefreshToken(refreshToken)
	record, err := s.tokens.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if !record.UsableAt(time.Now()) {
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetUserByID(ctx, record.UserID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	newToken, newHash, err := newRefreshToken()
	if err != nil {
		return nil, err
	}

	// Rotation fails with no rows when a concurrent revoke got to the
	// old credential first. Revoke wins; no replacement is minted.
	if err := s.tokens.RotateRefreshToken(ctx, record.ID, record.UserID, newHash, time.Now().Add(s.refreshTTL)); err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	accessToken, _, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &model.TokenPair{AccessToken: accessToken, RefreshToken: newToken}, nil
}

// Logout revokes the refresh credential. Unknown tokens are a no-op
// success, so the operation is idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.tokens.RevokeRefreshTokenByHash(ctx, hashRefreshToken(refreshToken))
}

// LogoutAll revokes every live refresh credential for the user.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	return s.tokens.RevokeAllRefreshTokens(ctx, userID)
}

// ParseAccessToken validates a bearer token and returns the identity it
// carries. Pure and stateless, safe to call from any goroutine.
func (s *AuthService) ParseAccessToken(tokenStr string) (*model.AuthUser, error) {
	return s.issuer.Parse(tokenStr)
}

// VerifyEmail consumes an email_verification code and flips the
// account's verified flag.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	ok, err := s.verification.Verify(ctx, email, code, model.PurposeEmailVerification)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCodeInvalid
	}

	if err := s.users.MarkEmailVerified(ctx, email); err != nil {
		if db.IsNoRows(err) {
			return fmt.Errorf("%w: account not found", ErrNotFound)
		}
		return err
	}
	return nil
}

// ResendVerification issues a fresh email_verification code,
// invalidating any outstanding one.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			return fmt.Errorf("%w: account not found", ErrNotFound)
		}
		return err
	}

	if user.EmailVerified {
		return fmt.Errorf("%w: email already verified", ErrInvalidInput)
	}

	_, err = s.verification.IssueAndSend(ctx, email, model.PurposeEmailVerification)
	return err
}

// ForgotPassword issues a password_reset code. It succeeds silently for
// unknown emails so responses cannot reveal whether an account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	_, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			return nil
		}
		return err
	}

	_, err = s.verification.IssueAndSend(ctx, email, model.PurposePasswordReset)
	return err
}

// ResetPassword consumes a password_reset code, replaces the password,
// and revokes every refresh credential the account holds.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	ok, err := s.verification.Verify(ctx, email, code, model.PurposePasswordReset)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCodeInvalid
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePasswordByEmail(ctx, email, hash); err != nil {
		if db.IsNoRows(err) {
			return fmt.Errorf("%w: account not found", ErrNotFound)
		}
		return err
	}

	if user, err := s.users.GetUserByEmail(ctx, email); err == nil {
		if err := s.tokens.RevokeAllRefreshTokens(ctx, user.ID); err != nil {
			log.Printf("[Auth] failed to revoke sessions for %s after password reset: %v", email, err)
		}
	}

	return nil
}

// RequestPasswordChange sends a password_change code to the account's
// own address.
func (s *AuthService) RequestPasswordChange(ctx context.Context, userID string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return fmt.Errorf("%w: account not found", ErrNotFound)
		}
		return err
	}

	_, err = s.verification.IssueAndSend(ctx, user.Email, model.PurposePasswordChange)
	return err
}

// ChangePassword requires both the current password and a fresh
// password_change code before replacing the password. Other sessions
// are logged out.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, code, newPassword string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return fmt.Errorf("%w: account not found", ErrNotFound)
		}
		return err
	}

	if !CheckPassword(currentPassword, user.PasswordHash) {
		return ErrUnauthorized
	}

	ok, err := s.verification.Verify(ctx, user.Email, code, model.PurposePasswordChange)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCodeInvalid
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePasswordByEmail(ctx, user.Email, hash); err != nil {
		return err
	}

	return s.tokens.RevokeAllRefreshTokens(ctx, userID)
}

// RequestEmailChange sends an email_change code to the address the user
// wants to move to, proving they control it before anything changes.
func (s *AuthService) RequestEmailChange(ctx context.Context, userID, newEmail string) error {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		if db.IsNoRows(err) {
			return fmt.Errorf("%w: account not found", ErrNotFound)
		}
		return err
	}

	if _, err := s.users.GetUserByEmail(ctx, newEmail); err == nil {
		return fmt.Errorf("%w: email already in use", ErrConflict)
	} else if !db.IsNoRows(err) {
		return err
	}

	_, err := s.verification.IssueAndSend(ctx, newEmail, model.PurposeEmailChange)
	return err
}

// ConfirmEmailChange consumes the email_change code issued to the new
// address and moves the account over. The new address starts
// unverified.
func (s *AuthService) ConfirmEmailChange(ctx context.Context, userID, newEmail, code string) error {
	ok, err := s.verification.Verify(ctx, newEmail, code, model.PurposeEmailChange)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCodeInvalid
	}

	if err := s.users.UpdateEmail(ctx, userID, newEmail); err != nil {
		if db.IsNoRows(err) {
			return fmt.Errorf("%w: account not found", ErrNotFound)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email already in use", ErrConflict)
		}
		return err
	}
	return nil
}

// GetUser loads the account behind an authenticated request.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, fmt.Errorf("%w: account not found", ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueCredentials(ctx context.Context, user *model.User) (*model.AuthResult, error) {
	accessToken, _, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshHash, err := newRefreshToken()
	if err != nil {
		return nil, err
	}

	if err := s.tokens.InsertRefreshToken(ctx, user.ID, refreshHash, time.Now().Add(s.refreshTTL)); err != nil {
		return nil, err
	}

	return &model.AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Public(time.Now()),
	}, nil
}

// newRefreshToken returns a high-entropy opaque token and the sha256
// hash that is actually persisted.
func newRefreshToken() (string, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	return token, hashRefreshToken(token), nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
