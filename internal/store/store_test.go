package store

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/config"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

func TestOpenOffline(t *testing.T) {
	cfg := config.Config{DataDir: t.TempDir(), MaxImageBytes: 1 << 20}
	gw, err := Open(context.Background(), cfg, config.ModeOffline)
	require.NoError(t, err)
	defer gw.Close()

	assert.Equal(t, config.ModeOffline, gw.Mode())
	owner, err := gw.Users().GetByUsername(context.Background(), "owner")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, owner.Role)

	png, _ := base64.StdEncoding.DecodeString("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")
	ref, err := gw.Products().UploadImage(context.Background(), "a.png", png)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "data:image/png"))

	require.NoError(t, gw.Close())
	require.NoError(t, gw.Close())
}

func TestOpenOnlineNeedsURL(t *testing.T) {
	_, err := Open(context.Background(), config.Config{}, config.ModeOnline)
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestOpenUnknownMode(t *testing.T) {
	_, err := Open(context.Background(), config.Config{}, config.Mode("LAN"))
	assert.Error(t, err)
}
