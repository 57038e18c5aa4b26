package dashboard

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gleeworld/gleeworld/internal/shared"
)

// Repository provides PostgreSQL backed persistence for card orders.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetOrder returns the stored card order for an identity.
// Missing row maps to shared.ErrNotFound (first visit, use defaults).
func (r *Repository) GetOrder(ctx context.Context, identityID string) ([]string, error) {
	var order []string
	err := r.pool.QueryRow(ctx, `
		SELECT card_order FROM gw_dashboard_card_orders WHERE user_id = $1`, identityID).Scan(&order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

// SetOrder upserts the single card-order row for an identity.
func (r *Repository) SetOrder(ctx context.Context, identityID string, order []string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO gw_dashboard_card_orders (user_id, card_order, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET card_order = EXCLUDED.card_order, updated_at = NOW()`,
		identityID, order)
	return err
}
