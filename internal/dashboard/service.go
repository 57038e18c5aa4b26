package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gleeworld/gleeworld/internal/access"
	"github.com/gleeworld/gleeworld/internal/grants"
	"github.com/gleeworld/gleeworld/internal/profiles"
	"github.com/gleeworld/gleeworld/internal/registry"
	"github.com/gleeworld/gleeworld/internal/shared"
)

// ProfileSource loads profiles for projection.
type ProfileSource interface {
	Load(ctx context.Context, identityID string) (profiles.Profile, error)
}

// GrantSource loads the active grants for an email.
type GrantSource interface {
	ActiveForEmail(ctx context.Context, email string) ([]grants.Grant, error)
}

// OrderRepositoryPort defines card-order persistence.
type OrderRepositoryPort interface {
	GetOrder(ctx context.Context, identityID string) ([]string, error)
	SetOrder(ctx context.Context, identityID string, order []string) error
}

// Module is one projected dashboard card.
type Module struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Category  registry.Category `json:"category"`
	CanManage bool              `json:"can_manage"`
	Source    access.Source     `json:"source"`
}

// View is the projected dashboard for one identity.
type View struct {
	Modules     []Module `json:"modules"`
	StoredOrder bool     `json:"stored_order"`
}

// Service projects the dashboard and manages card ordering.
type Service struct {
	profiles ProfileSource
	grants   GrantSource
	orders   OrderRepositoryPort
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(profileSource ProfileSource, grantSource GrantSource, orders OrderRepositoryPort, logger *slog.Logger) *Service {
	return &Service{profiles: profileSource, grants: grantSource, orders: orders, logger: logger, now: time.Now}
}

// Modules resolves access for every registry module and projects the
// ordered, filtered dashboard. The profile/grant chain and the stored
// order are independent inputs and load concurrently; projection only runs
// once both have resolved.
func (s *Service) Modules(ctx context.Context, identityID string) (View, error) {
	var (
		profile     profiles.Profile
		grantList   []grants.Grant
		storedOrder []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.profiles.Load(gctx, identityID)
		if err != nil {
			return err
		}
		profile = p
		if s.grants == nil || p.Email == "" {
			return nil
		}
		list, err := s.grants.ActiveForEmail(gctx, p.Email)
		if err != nil {
			return err
		}
		grantList = list
		return nil
	})
	g.Go(func() error {
		order, err := s.orders.GetOrder(gctx, identityID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil
			}
			// Ordering is cosmetic; fall back to registry order rather
			// than failing the whole dashboard.
			if s.logger != nil {
				s.logger.Warn("load card order", slog.String("identity", identityID), slog.Any("error", err))
			}
			return nil
		}
		storedOrder = order
		return nil
	})
	if err := g.Wait(); err != nil {
		return View{}, err
	}

	mods := registry.All()
	verdicts := access.ResolveAll(profile, grantList, mods, s.now())
	projected := Project(mods, verdicts, storedOrder)

	out := make([]Module, 0, len(projected))
	for _, d := range projected {
		v := verdicts[d.ID]
		out = append(out, Module{
			ID:        d.ID,
			Title:     d.Title,
			Category:  d.Category,
			CanManage: v.CanManage,
			Source:    v.Source,
		})
	}
	return View{Modules: out, StoredOrder: storedOrder != nil}, nil
}

// ResolveModule returns the verdict for a single module id.
func (s *Service) ResolveModule(ctx context.Context, identityID, moduleID string) (access.Resolved, error) {
	mod, ok := registry.Lookup(moduleID)
	if !ok {
		return access.Resolved{}, shared.ErrNotFound
	}
	profile, err := s.profiles.Load(ctx, identityID)
	if err != nil {
		return access.Resolved{}, err
	}
	var grantList []grants.Grant
	if s.grants != nil && profile.Email != "" {
		grantList, err = s.grants.ActiveForEmail(ctx, profile.Email)
		if err != nil {
			return access.Resolved{}, err
		}
	}
	return access.Resolve(profile, grantList, mod, s.now()), nil
}

// SaveOrder persists a reordered card list for the identity. Unknown ids
// are silently dropped before persisting. The returned order is what was
// applied; a persistence error is returned alongside it so callers can
// keep the optimistic order and surface a recoverable notice.
func (s *Service) SaveOrder(ctx context.Context, identityID string, order []string) ([]string, error) {
	cleaned := CleanOrder(order)
	if err := s.orders.SetOrder(ctx, identityID, cleaned); err != nil {
		if s.logger != nil {
			s.logger.Warn("persist card order", slog.String("identity", identityID), slog.Any("error", err))
		}
		return cleaned, err
	}
	return cleaned, nil
}
