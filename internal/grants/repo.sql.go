package grants

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gleeworld/gleeworld/internal/shared"
)

const grantColumns = `id, email, permission_key, is_active, expires_at, granted_by, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ActiveByEmail returns grants usable right now for the given email.
// The active/unexpired filter runs server-side; the resolver re-applies it.
func (r *Repository) ActiveByEmail(ctx context.Context, email string) ([]Grant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+grantColumns+`
		FROM gw_user_permissions
		WHERE lower(email) = lower($1)
		  AND is_active = TRUE
		  AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY permission_key`, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrants(rows)
}

// ListByEmail returns every grant for an email, active or not.
func (r *Repository) ListByEmail(ctx context.Context, email string) ([]Grant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+grantColumns+`
		FROM gw_user_permissions
		WHERE lower(email) = lower($1)
		ORDER BY permission_key`, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrants(rows)
}

// Insert creates a new grant. A duplicate (email, permission_key) maps to
// shared.ErrDuplicateGrant.
func (r *Repository) Insert(ctx context.Context, g Grant) (Grant, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO gw_user_permissions (email, permission_key, is_active, expires_at, granted_by)
		VALUES (lower($1), $2, TRUE, $3, $4)
		RETURNING `+grantColumns,
		strings.TrimSpace(g.Email), g.PermissionKey, g.ExpiresAt, g.GrantedBy)
	stored, err := scanGrant(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Grant{}, shared.ErrDuplicateGrant
		}
		return Grant{}, err
	}
	return stored, nil
}

// Deactivate flips is_active off without deleting the row.
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE gw_user_permissions
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExpireSweep deactivates grants past their expiry. It is idempotent;
// already-deactivated rows are not touched again.
func (r *Repository) ExpireSweep(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE gw_user_permissions
		SET is_active = FALSE, updated_at = NOW()
		WHERE is_active = TRUE AND expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanGrant(row pgx.Row) (Grant, error) {
	var g Grant
	if err := row.Scan(&g.ID, &g.Email, &g.PermissionKey, &g.IsActive, &g.ExpiresAt, &g.GrantedBy, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return Grant{}, err
	}
	return g, nil
}

func scanGrants(rows pgx.Rows) ([]Grant, error) {
	var out []Grant
	for rows.Next() {
		var g Grant
		if err := rows.Scan(&g.ID, &g.Email, &g.PermissionKey, &g.IsActive, &g.ExpiresAt, &g.GrantedBy, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
