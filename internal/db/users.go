package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fintrack/backend/internal/model"
)

const userColumns = `id, name, email, password_hash, is_active, plan_type,
	plan_start_date, plan_end_date, is_premium, email_verified, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.PlanType,
		&user.PlanStartDate,
		&user.PlanEndDate,
		&user.IsPremium,
		&user.EmailVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) CreateUser(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	query := `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + userColumns
	return scanUser(db.Pool.QueryRow(ctx, query, uuid.NewString(), name, email, passwordHash))
}

func (db *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, email))
}

func (db *Postgres) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, userID))
}

func (db *Postgres) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error {
	query := `
		UPDATE users SET password_hash = $2, updated_at = NOW()
		WHERE email = $1
	`
	tag, err := db.Pool.Exec(ctx, query, email, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (db *Postgres) UpdateEmail(ctx context.Context, userID, newEmail string) error {
	query := `
		UPDATE users SET email = $2, email_verified = FALSE, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := db.Pool.Exec(ctx, query, userID, newEmail)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (db *Postgres) MarkEmailVerified(ctx context.Context, email string) error {
	query := `
		UPDATE users SET email_verified = TRUE, updated_at = NOW()
		WHERE email = $1
	`
	tag, err := db.Pool.Exec(ctx, query, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (db *Postgres) UpdatePlan(ctx context.Context, userID string, planType model.PlanType, start, end *time.Time, isPremium bool) (*model.User, error) {
	query := `
		UPDATE users
		SET plan_type = $2, plan_start_date = $3, plan_end_date = $4,
			is_premium = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(db.Pool.QueryRow(ctx, query, userID, planType, start, end, isPremium))
}
