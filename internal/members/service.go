package members

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gleeworld/gleeworld/internal/access"
	"github.com/gleeworld/gleeworld/internal/profiles"
	"github.com/gleeworld/gleeworld/internal/shared"
)

// RepositoryPort defines data access for member administration.
type RepositoryPort interface {
	List(ctx context.Context, page, perPage int) ([]profiles.Profile, int, error)
	SetRole(ctx context.Context, identityID string, role profiles.Role, isAdmin, isSuperAdmin bool) error
	SetExecBoard(ctx context.Context, identityID string, execRole profiles.ExecRole) error
	UpsertByEmail(ctx context.Context, email, fullName string, role profiles.Role, execRole profiles.ExecRole, isAdmin bool) (string, error)
}

// Invalidator evicts cached profiles after a mutation.
type Invalidator interface {
	Invalidate(ctx context.Context, identityID string)
}

// Service handles member administration.
type Service struct {
	repo        RepositoryPort
	audit       *shared.AuditLogger
	invalidator Invalidator
	logger      *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger, invalidator Invalidator, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, invalidator: invalidator, logger: logger}
}

// List returns a page of member profiles.
func (s *Service) List(ctx context.Context, page, perPage int) ([]profiles.Profile, shared.Pagination, error) {
	list, total, err := s.repo.List(ctx, page, perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(page, perPage, total), nil
}

// AssignRole sets the primary role and admin flags for an identity.
func (s *Service) AssignRole(ctx context.Context, actorID, identityID string, role profiles.Role, isAdmin, isSuperAdmin bool) error {
	if isSuperAdmin {
		isAdmin = true
	}
	if err := s.repo.SetRole(ctx, identityID, role, isAdmin, isSuperAdmin); err != nil {
		return err
	}
	s.afterChange(ctx, actorID, "member.assign_role", identityID, map[string]any{
		"role": string(role), "is_admin": isAdmin, "is_super_admin": isSuperAdmin,
	})
	return nil
}

// AssignExecBoard sets or clears the executive-board position.
func (s *Service) AssignExecBoard(ctx context.Context, actorID, identityID string, execRole profiles.ExecRole) error {
	if execRole != "" && !access.KnownBoardRole(execRole) {
		return errors.New("members: unknown executive-board role " + string(execRole))
	}
	if err := s.repo.SetExecBoard(ctx, identityID, execRole); err != nil {
		return err
	}
	s.afterChange(ctx, actorID, "member.assign_exec_board", identityID, map[string]any{
		"exec_board_role": string(execRole),
	})
	return nil
}

// BulkAssignment is one row of a bulk exec-board assignment request.
type BulkAssignment struct {
	Email    string            `json:"email" validate:"required,email"`
	FullName string            `json:"full_name" validate:"required"`
	Role     profiles.ExecRole `json:"role" validate:"required"`
	IsAdmin  bool              `json:"is_admin"`
}

// BulkResult reports the outcome for one bulk assignment row.
type BulkResult struct {
	Email   string `json:"email"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkAssignExecBoard provisions or updates a batch of exec-board
// profiles. A bad row never aborts the batch; each row reports its own
// outcome.
func (s *Service) BulkAssignExecBoard(ctx context.Context, actorID string, rows []BulkAssignment) []BulkResult {
	results := make([]BulkResult, 0, len(rows))
	for _, row := range rows {
		result := BulkResult{Email: row.Email}
		if !access.KnownBoardRole(row.Role) {
			result.Error = "unknown executive-board role " + string(row.Role)
			results = append(results, result)
			continue
		}
		identityID, err := s.repo.UpsertByEmail(ctx, row.Email, row.FullName, profiles.RoleMember, row.Role, row.IsAdmin)
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.Success = true
		results = append(results, result)
		s.afterChange(ctx, actorID, "member.bulk_assign_exec_board", identityID, map[string]any{
			"email": row.Email, "exec_board_role": string(row.Role),
		})
	}
	return results
}

func (s *Service) afterChange(ctx context.Context, actorID, action, identityID string, meta map[string]any) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, identityID)
	}
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "profile",
		EntityID: identityID,
		Meta:     meta,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("audit member action", slog.String("action", action), slog.Any("error", err))
	}
}
