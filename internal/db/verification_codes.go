package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fintrack/backend/internal/model"
)

// InvalidateAndInsertCode marks every unused code for (email, purpose)
// as used and inserts the replacement inside one transaction, so a new
// issuance can never leave the subject without a live code.
func (db *Postgres) InvalidateAndInsertCode(ctx context.Context, email, code string, purpose model.CodePurpose, expiresAt time.Time) (*model.VerificationCode, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err = tx.Exec(ctx, `
		UPDATE verification_codes
		SET used = TRUE
		WHERE email = $1 AND purpose = $2 AND used = FALSE
	`, email, purpose); err != nil {
		return nil, err
	}

	record := &model.VerificationCode{
		ID:      uuid.NewString(),
		Email:   email,
		Code:    code,
		Purpose: purpose,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO verification_codes (id, email, code, purpose, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING expires_at, used, created_at
	`, record.ID, email, code, purpose, expiresAt).Scan(
		&record.ExpiresAt,
		&record.Used,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

// ConsumeCode atomically marks the most recent live code matching
// (email, code, purpose) as used. Exactly one of any number of
// concurrent calls for the same code observes a row update; everyone
// else gets false. Rows are never deleted.
func (db *Postgres) ConsumeCode(ctx context.Context, email, code string, purpose model.CodePurpose) (bool, error) {
	query := `
		UPDATE verification_codes
		SET used = TRUE
		WHERE id = (
			SELECT id FROM verification_codes
			WHERE email = $1 AND code = $2 AND purpose = $3
			ORDER BY created_at DESC
			LIMIT 1
		)
		AND used = FALSE AND expires_at > NOW()
	`
	tag, err := db.Pool.Exec(ctx, query, email, code, purpose)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
