package members

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gleeworld/gleeworld/internal/profiles"
	"github.com/gleeworld/gleeworld/internal/shared"
)

// Repository provides PostgreSQL backed persistence for member admin.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `user_id, email, COALESCE(full_name, ''), COALESCE(role, ''),
	is_admin, is_super_admin, is_exec_board, COALESCE(exec_board_role, ''),
	COALESCE(enrolled_courses, '{}'), verified, updated_at`

// List returns a page of profiles ordered by name, plus the total count.
func (r *Repository) List(ctx context.Context, page, perPage int) ([]profiles.Profile, int, error) {
	p := shared.NewPagination(page, perPage, 0)
	offset := (p.Page - 1) * p.PerPage

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM gw_profiles`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+profileColumns+`
		FROM gw_profiles
		ORDER BY full_name, email
		LIMIT $1 OFFSET $2`, p.PerPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []profiles.Profile
	for rows.Next() {
		var prof profiles.Profile
		if err := rows.Scan(
			&prof.IdentityID, &prof.Email, &prof.FullName, &prof.Role,
			&prof.IsAdmin, &prof.IsSuperAdmin, &prof.IsExecBoard, &prof.ExecRole,
			&prof.Enrollments, &prof.Verified, &prof.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, profiles.Normalize(prof))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// SetRole updates the primary role and admin flags for an identity.
// Returns shared.ErrNotFound when the profile row does not exist.
func (r *Repository) SetRole(ctx context.Context, identityID string, role profiles.Role, isAdmin, isSuperAdmin bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE gw_profiles
		SET role = $2, is_admin = $3, is_super_admin = $4, updated_at = NOW()
		WHERE user_id = $1`, identityID, role, isAdmin, isSuperAdmin)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetExecBoard updates the executive-board position for an identity.
// An empty role clears the position.
func (r *Repository) SetExecBoard(ctx context.Context, identityID string, execRole profiles.ExecRole) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE gw_profiles
		SET exec_board_role = NULLIF($2, ''), is_exec_board = ($2 <> ''), updated_at = NOW()
		WHERE user_id = $1`, identityID, string(execRole))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpsertByEmail provisions or updates a profile row keyed by email and
// returns the identity id the row belongs to. Used by bulk assignment:
// rows for not-yet-signed-in members are created ahead of first login.
func (r *Repository) UpsertByEmail(ctx context.Context, email, fullName string, role profiles.Role, execRole profiles.ExecRole, isAdmin bool) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var identityID string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO gw_profiles (user_id, email, full_name, role, exec_board_role, is_exec_board, is_admin, verified, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, NULLIF($4, ''), $4 <> '', $5, TRUE, NOW())
		ON CONFLICT (email) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    role = EXCLUDED.role,
		    exec_board_role = EXCLUDED.exec_board_role,
		    is_exec_board = EXCLUDED.is_exec_board,
		    is_admin = EXCLUDED.is_admin,
		    updated_at = NOW()
		RETURNING user_id`,
		email, strings.TrimSpace(fullName), role, string(execRole), isAdmin).Scan(&identityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return identityID, nil
}
