// Package session owns the active persistence gateway. Logging in opens the
// backend for the chosen mode; switching modes closes the previous one.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/config"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/service"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/store"
)

const (
	localOwnerUsername = "owner"
	localOwnerName     = "Local Owner"
)

// OpenFunc opens a gateway for mode.
type OpenFunc func(ctx context.Context, cfg config.Config, mode config.Mode) (store.Gateway, error)

func openStore(ctx context.Context, cfg config.Config, mode config.Mode) (store.Gateway, error) {
	backend, err := store.Open(ctx, cfg, mode)
	if err != nil {
		return nil, err
	}
	return backend, nil
}

type Session struct {
	User      domain.User
	Mode      config.Mode
	StartedAt time.Time
	Service   *service.Service

	gw store.Gateway
}

func (s *Session) Actor() service.Actor {
	return service.Actor{Username: s.User.Username, Role: s.User.Role}
}

type Manager struct {
	mu      sync.Mutex
	cfg     config.Config
	open    OpenFunc
	current *Session
}

// NewManager returns a manager with no active session. A nil open uses
// store.Open.
func NewManager(cfg config.Config, open OpenFunc) *Manager {
	if open == nil {
		open = openStore
	}
	return &Manager{cfg: cfg, open: open}
}

// LoginOffline opens the local database. The session runs as the stored
// owner account, or as a synthetic owner when that row is gone.
func (m *Manager) LoginOffline(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gw, svc, err := m.connect(ctx, config.ModeOffline)
	if err != nil {
		return nil, err
	}

	user, err := gw.Users().GetByUsername(ctx, localOwnerUsername)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		user = domain.User{Username: localOwnerName, Role: domain.RoleOwner}
	case err != nil:
		_ = gw.Close()
		return nil, fmt.Errorf("load local owner: %w", err)
	}
	return m.activate(gw, svc, user, config.ModeOffline), nil
}

// LoginOnline connects to the remote database and checks the credentials
// against its users table. On failure the new connection is closed and the
// previous session, if any, stays active.
func (m *Manager) LoginOnline(ctx context.Context, username, password string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gw, svc, err := m.connect(ctx, config.ModeOnline)
	if err != nil {
		return nil, err
	}
	user, err := svc.Authenticate(ctx, username, password)
	if err != nil {
		_ = gw.Close()
		return nil, err
	}
	return m.activate(gw, svc, user, config.ModeOnline), nil
}

func (m *Manager) connect(ctx context.Context, mode config.Mode) (store.Gateway, *service.Service, error) {
	gw, err := m.open(ctx, m.cfg, mode)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s backend: %w", mode, err)
	}
	svc := service.New(gw, service.WithLowStockThreshold(m.cfg.LowStockThreshold))
	return gw, svc, nil
}

func (m *Manager) activate(gw store.Gateway, svc *service.Service, user domain.User, mode config.Mode) *Session {
	m.closeCurrent()
	m.current = &Session{
		User:      user,
		Mode:      mode,
		StartedAt: time.Now(),
		Service:   svc,
		gw:        gw,
	}
	log.Info().
		Str("mode", string(mode)).
		Str("user", user.Username).
		Str("role", string(user.Role)).
		Msg("session started")
	return m.current
}

func (m *Manager) Current() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, domain.ErrNoSession
	}
	return m.current, nil
}

func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return domain.ErrNoSession
	}
	return m.closeCurrent()
}

// Close ends any active session.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCurrent()
}

func (m *Manager) closeCurrent() error {
	if m.current == nil {
		return nil
	}
	sess := m.current
	m.current = nil
	if err := sess.gw.Close(); err != nil {
		log.Error().Err(err).Str("mode", string(sess.Mode)).Msg("close backend failed")
		return fmt.Errorf("close %s backend: %w", sess.Mode, err)
	}
	log.Info().Str("mode", string(sess.Mode)).Msg("session closed")
	return nil
}
