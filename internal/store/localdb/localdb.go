// Package localdb is the OFFLINE backend: a single SQLite file in the data
// directory, accessed through gorm.
package localdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

// LogCap is how many activity log entries the local store keeps.
const LogCap = 200

const (
	defaultOwnerUsername = "owner"
	defaultOwnerPassword = "owner123"
)

type DB struct {
	gorm *gorm.DB
}

// Open creates or opens the database file, migrates the schema and seeds the
// default owner when no users exist.
func Open(ctx context.Context, path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.New(gormWriter{}, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("local database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db := &DB{gorm: conn}
	if err := conn.WithContext(ctx).AutoMigrate(
		&productRow{},
		&salesRow{},
		&logRow{},
		&userRow{},
		&settingRow{},
	); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate local database: %w", err)
	}

	if err := db.seedOwner(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Debug().Str("path", path).Msg("local database ready")
	return db, nil
}

func (db *DB) Close() error {
	sqlDB, err := db.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) Products() *ProductStore { return &ProductStore{db: db.gorm} }
func (db *DB) Sales() *SalesStore { return &SalesStore{db: db.gorm} }
func (db *DB) Logs() *LogStore { return &LogStore{db: db.gorm} }
func (db *DB) Users() *UserStore { return &UserStore{db: db.gorm} }
func (db *DB) Settings() *SettingsStore { return &SettingsStore{db: db.gorm} }

func (db *DB) seedOwner(ctx context.Context) error {
	var count int64
	if err := db.gorm.WithContext(ctx).Model(&userRow{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	owner := domain.User{Username: defaultOwnerUsername, Role: domain.RoleOwner, CreatedAt: time.Now().UTC()}
	if err := owner.SetPassword(defaultOwnerPassword); err != nil {
		return fmt.Errorf("hash default owner password: %w", err)
	}
	if err := db.gorm.WithContext(ctx).Create(toUserRow(owner)).Error; err != nil {
		return fmt.Errorf("seed default owner: %w", err)
	}
	log.Info().Str("username", owner.Username).Msg("seeded default local owner")
	return nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// lastByID drops every item whose id appears again later in items. Order of
// the survivors is kept.
func lastByID[T any](items []T, id func(T) string) []T {
	seen := make(map[string]struct{}, len(items))
	kept := make([]T, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		key := id(items[i])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, items[i])
	}
	slices.Reverse(kept)
	return kept
}

// storeErr maps gorm errors onto domain errors.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case isDuplicate(err):
		return domain.Persist(op, fmt.Errorf("%w: %v", domain.ErrDuplicate, err))
	}
	return domain.Persist(op, err)
}

type gormWriter struct{}

func (gormWriter) Printf(format string, args ...any) {
	log.Warn().Str("component", "gorm").Msgf(format, args...)
}
