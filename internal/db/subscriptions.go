package db

import "context"

// ExpireLapsedPlans flips every premium user whose plan window has
// passed back to free in a single statement and reports how many rows
// changed. Running it again with no time elapsed affects zero rows.
func (db *Postgres) ExpireLapsedPlans(ctx context.Context) (int64, error) {
	query := `
		UPDATE users
		SET plan_type = 'free', is_premium = FALSE, updated_at = NOW()
		WHERE plan_type = 'premium' AND plan_end_date < NOW()
	`
	tag, err := db.Pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
