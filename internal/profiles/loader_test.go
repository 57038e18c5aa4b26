package profiles

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleeworld/gleeworld/internal/shared"
)

type countingRepo struct {
	byID  map[string]Profile
	err   error
	calls int
}

func (r *countingRepo) FetchProfile(_ context.Context, identityID string) (Profile, error) {
	r.calls++
	if r.err != nil {
		return Profile{}, r.err
	}
	p, ok := r.byID[identityID]
	if !ok {
		return Profile{}, shared.ErrNotFound
	}
	return p, nil
}

func TestLoadReturnsStoredProfile(t *testing.T) {
	repo := &countingRepo{byID: map[string]Profile{
		"u1": {IdentityID: "u1", Email: "m@gleeworld.org", Role: RoleMember, Kind: KindMember},
	}}
	loader := NewLoader(repo, nil, nil, time.Minute)

	p, err := loader.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "m@gleeworld.org", p.Email)
	assert.True(t, p.Authenticated())
}

func TestLoadMissingRowFallsBackToGuest(t *testing.T) {
	loader := NewLoader(&countingRepo{byID: map[string]Profile{}}, nil, nil, time.Minute)

	p, err := loader.Load(context.Background(), "u-unknown")
	require.NoError(t, err, "a missing row is the guest profile, not an error")
	assert.Equal(t, KindGuest, p.Kind)
	assert.Equal(t, "u-unknown", p.IdentityID)
	assert.False(t, p.Authenticated())
	assert.False(t, p.IsAdmin)
}

func TestLoadFetchErrorPropagates(t *testing.T) {
	loader := NewLoader(&countingRepo{err: errors.New("pg down")}, nil, nil, time.Minute)

	_, err := loader.Load(context.Background(), "u1")
	assert.Error(t, err, "callers need the error to fail closed")
}

func TestLoadMemoizes(t *testing.T) {
	repo := &countingRepo{byID: map[string]Profile{
		"u1": {IdentityID: "u1", Email: "m@gleeworld.org", Role: RoleMember, Kind: KindMember},
	}}
	loader := NewLoader(repo, nil, nil, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := loader.Load(ctx, "u1")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, repo.calls, "repeated loads within the ttl hit the cache")
}

func TestLoadWithZeroTTLNeverCaches(t *testing.T) {
	repo := &countingRepo{byID: map[string]Profile{
		"u1": {IdentityID: "u1", Email: "m@gleeworld.org", Role: RoleMember, Kind: KindMember},
	}}
	loader := NewLoader(repo, nil, nil, 0)
	ctx := context.Background()

	_, _ = loader.Load(ctx, "u1")
	_, _ = loader.Load(ctx, "u1")
	assert.Equal(t, 2, repo.calls)
}

func TestInvalidateEvictsCachedProfile(t *testing.T) {
	repo := &countingRepo{byID: map[string]Profile{
		"u1": {IdentityID: "u1", Email: "m@gleeworld.org", Role: RoleMember, Kind: KindMember},
	}}
	loader := NewLoader(repo, nil, nil, time.Minute)
	ctx := context.Background()

	_, err := loader.Load(ctx, "u1")
	require.NoError(t, err)

	repo.byID["u1"] = Profile{IdentityID: "u1", Email: "m@gleeworld.org", Role: RoleAdmin, Kind: KindAdmin, IsAdmin: true}
	loader.Invalidate(ctx, "u1")

	p, err := loader.Load(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, p.IsAdmin, "the next load sees the mutated row")
	assert.Equal(t, 2, repo.calls)
}

func TestLoadEmptyIdentityIsGuest(t *testing.T) {
	repo := &countingRepo{}
	loader := NewLoader(repo, nil, nil, time.Minute)

	p, err := loader.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, KindGuest, p.Kind)
	assert.Zero(t, repo.calls)
}
