package profiles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gleeworld/gleeworld/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FetchProfile returns the profile row for an identity.
// A missing row maps to shared.ErrNotFound; the caller decides the fallback.
func (r *Repository) FetchProfile(ctx context.Context, identityID string) (Profile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, email, COALESCE(full_name, ''), COALESCE(role, ''),
		       is_admin, is_super_admin, is_exec_board,
		       COALESCE(exec_board_role, ''), COALESCE(enrolled_courses, '{}'),
		       verified, updated_at
		FROM gw_profiles
		WHERE user_id = $1`, identityID)

	var p Profile
	if err := row.Scan(
		&p.IdentityID, &p.Email, &p.FullName, &p.Role,
		&p.IsAdmin, &p.IsSuperAdmin, &p.IsExecBoard,
		&p.ExecRole, &p.Enrollments, &p.Verified, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, shared.ErrNotFound
		}
		return Profile{}, err
	}
	return Normalize(p), nil
}
