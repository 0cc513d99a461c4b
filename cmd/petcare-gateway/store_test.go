package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/petcare-labs/petcare/internal/auth"
	"github.com/petcare-labs/petcare/internal/config"
	"github.com/petcare-labs/petcare/internal/fixtures"
)

var testNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func TestNewAuthenticator(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Auth.Token = "owner-token"
	cfg.Auth.Users = []config.UserConfig{
		{Name: "sam", Token: "sitter-token"},
		{Name: "alex", Token: "alex-token", Roles: []string{auth.RoleCaretaker}},
	}

	authn, err := newAuthenticator(cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, authn.Len())

	ctx := context.Background()
	sitter, err := authn.ValidateToken(ctx, "sitter-token")
	require.NoError(t, err)
	assert.True(t, sitter.HasRole(auth.RoleViewer))
	assert.False(t, sitter.HasRole(auth.RoleCaretaker))

	owner, err := authn.ValidateToken(ctx, "owner-token")
	require.NoError(t, err)
	assert.True(t, owner.HasRole(auth.RoleCaretaker))
}

func TestNewAuthenticatorRequiresToken(t *testing.T) {
	_, err := newAuthenticator(config.DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tokens configured")
}

func TestOpenMemoryStoreSeeds(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Latency = 0

	st, err := openStore(context.Background(), cfg, clock, zap.NewNop())
	require.NoError(t, err)
	defer st.Close()

	ds, err := fixtures.Default(testNow)
	require.NoError(t, err)
	pets, err := st.repo.Pets().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, pets, len(ds.Pets))
}

func TestOpenMemoryStoreWithoutSeed(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Latency = 0
	cfg.Storage.Seed = false

	st, err := openStore(context.Background(), cfg, clock, zap.NewNop())
	require.NoError(t, err)
	defer st.Close()

	pets, err := st.repo.Pets().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pets)
	assert.Nil(t, st.schema)
}

func TestOpenSQLiteStoreSeedsOnce(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.DSN = ":memory:"

	st, err := openStore(context.Background(), cfg, clock, zap.NewNop())
	require.NoError(t, err)
	defer st.Close()

	ds, err := fixtures.Default(testNow)
	require.NoError(t, err)
	reminders, err := st.repo.Reminders().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, reminders, len(ds.Reminders))

	require.NotNil(t, st.schema)
	assert.NoError(t, st.schema(context.Background()))
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Driver = "oracle"
	cfg.Storage.DSN = "x"

	_, err := openStore(context.Background(), cfg, clock, zap.NewNop())
	require.Error(t, err)
}
