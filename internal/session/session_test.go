package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/config"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/store"
)

type trackedGateway struct {
	store.Gateway
	closed *int
}

func (g trackedGateway) Close() error {
	*g.closed++
	return g.Gateway.Close()
}

// localOpener serves every mode from a local database so credential checks
// can run without a remote server.
func localOpener(t *testing.T, closed *int) OpenFunc {
	dir := t.TempDir()
	return func(ctx context.Context, cfg config.Config, _ config.Mode) (store.Gateway, error) {
		cfg.DataDir = dir
		gw, err := store.Open(ctx, cfg, config.ModeOffline)
		if err != nil {
			return nil, err
		}
		return trackedGateway{Gateway: gw, closed: closed}, nil
	}
}

func TestLoginOffline(t *testing.T) {
	closed := 0
	m := NewManager(config.Config{LowStockThreshold: 3}, localOpener(t, &closed))
	defer m.Close()

	_, err := m.Current()
	assert.ErrorIs(t, err, domain.ErrNoSession)

	sess, err := m.LoginOffline(context.Background())
	require.NoError(t, err)
	assert.Equal(t, config.ModeOffline, sess.Mode)
	assert.Equal(t, "owner", sess.User.Username)
	assert.Equal(t, domain.RoleOwner, sess.Actor().Role)

	current, err := m.Current()
	require.NoError(t, err)
	assert.Same(t, sess, current)

	products, err := current.Service.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestLoginOfflineWithoutOwnerRow(t *testing.T) {
	closed := 0
	opener := localOpener(t, &closed)
	gw, err := opener(context.Background(), config.Config{}, config.ModeOffline)
	require.NoError(t, err)
	_, err = gw.Users().Save(context.Background(), domain.User{Username: "kasir", PasswordHash: "rahasia", Role: domain.RoleStaff})
	require.NoError(t, err)
	require.NoError(t, gw.Users().Delete(context.Background(), "owner"))
	require.NoError(t, gw.Close())

	m := NewManager(config.Config{}, opener)
	defer m.Close()

	sess, err := m.LoginOffline(context.Background())
	require.NoError(t, err)
	assert.Equal(t, localOwnerName, sess.User.Username)
	assert.Equal(t, domain.RoleOwner, sess.User.Role)
}

func TestLoginOnline(t *testing.T) {
	closed := 0
	m := NewManager(config.Config{}, localOpener(t, &closed))
	defer m.Close()

	_, err := m.LoginOnline(context.Background(), "owner", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, 1, closed)
	_, err = m.Current()
	assert.ErrorIs(t, err, domain.ErrNoSession)

	sess, err := m.LoginOnline(context.Background(), "owner", "owner123")
	require.NoError(t, err)
	assert.Equal(t, config.ModeOnline, sess.Mode)
	assert.Equal(t, "owner", sess.User.Username)
}

func TestModeSwitchClosesPreviousGateway(t *testing.T) {
	closed := 0
	m := NewManager(config.Config{}, localOpener(t, &closed))

	_, err := m.LoginOffline(context.Background())
	require.NoError(t, err)
	_, err = m.LoginOnline(context.Background(), "owner", "owner123")
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	require.NoError(t, m.Logout())
	assert.Equal(t, 2, closed)
	assert.ErrorIs(t, m.Logout(), domain.ErrNoSession)
	require.NoError(t, m.Close())
	assert.Equal(t, 2, closed)
}

func TestOpenFailure(t *testing.T) {
	m := NewManager(config.Config{}, func(context.Context, config.Config, config.Mode) (store.Gateway, error) {
		return nil, errors.New("connection refused")
	})
	_, err := m.LoginOnline(context.Background(), "owner", "owner123")
	assert.ErrorContains(t, err, "connection refused")
}
