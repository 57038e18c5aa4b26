package grants

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gleeworld/gleeworld/internal/shared"
)

// RepositoryPort defines data access for the service.
type RepositoryPort interface {
	ActiveByEmail(ctx context.Context, email string) ([]Grant, error)
	ListByEmail(ctx context.Context, email string) ([]Grant, error)
	Insert(ctx context.Context, g Grant) (Grant, error)
	Deactivate(ctx context.Context, id int64) error
	ExpireSweep(ctx context.Context, now time.Time) (int64, error)
}

// Notifier announces grant changes to the recipient. Delivery runs in the
// background; failures must never block the grant itself.
type Notifier interface {
	NotifyGrantCreated(ctx context.Context, email, permissionKey string) error
}

// Service orchestrates permission-grant administration.
type Service struct {
	repo     RepositoryPort
	audit    *shared.AuditLogger
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(repo RepositoryPort, audit *shared.AuditLogger, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, notifier: notifier, logger: logger}
}

// ActiveForEmail returns the grants usable right now for the email.
func (s *Service) ActiveForEmail(ctx context.Context, email string) ([]Grant, error) {
	return s.repo.ActiveByEmail(ctx, email)
}

// ListForEmail returns all grants for the email, expired and revoked
// included, for the admin panel.
func (s *Service) ListForEmail(ctx context.Context, email string) ([]Grant, error) {
	return s.repo.ListByEmail(ctx, email)
}

// Create records a new grant and notifies the recipient.
func (s *Service) Create(ctx context.Context, actorID, email, permissionKey string, expiresAt *time.Time) (Grant, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	permissionKey = strings.TrimSpace(permissionKey)
	if email == "" || permissionKey == "" {
		return Grant{}, errors.New("grants: email and permission key required")
	}
	if !validPermissionKey(permissionKey) {
		return Grant{}, errors.New("grants: unknown permission key " + permissionKey)
	}
	if expiresAt != nil && !expiresAt.After(time.Now()) {
		return Grant{}, errors.New("grants: expiry must be in the future")
	}

	stored, err := s.repo.Insert(ctx, Grant{Email: email, PermissionKey: permissionKey, ExpiresAt: expiresAt, GrantedBy: actorID})
	if err != nil {
		return Grant{}, err
	}

	s.record(ctx, actorID, "grant.create", stored, map[string]any{"email": email, "permission_key": permissionKey})
	if s.notifier != nil {
		if err := s.notifier.NotifyGrantCreated(ctx, email, permissionKey); err != nil && s.logger != nil {
			s.logger.Warn("notify grant created", slog.String("email", email), slog.Any("error", err))
		}
	}
	return stored, nil
}

// Revoke deactivates a grant. The row is kept for history.
func (s *Service) Revoke(ctx context.Context, actorID string, id int64) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actorID, "grant.revoke", Grant{ID: id}, nil)
	return nil
}

// SweepExpired deactivates grants past their expiry and reports the count.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.ExpireSweep(ctx, now)
}

func (s *Service) record(ctx context.Context, actorID, action string, g Grant, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user_permission",
		EntityID: strconv.FormatInt(g.ID, 10),
		Meta:     meta,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("audit grant action", slog.String("action", action), slog.Any("error", err))
	}
}

func validPermissionKey(key string) bool {
	for _, known := range shared.ModuleScopes() {
		if known == key {
			return true
		}
	}
	return false
}
