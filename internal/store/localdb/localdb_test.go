package localdb

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "isvara.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenSeedsOwner(t *testing.T) {
	db := openTestDB(t)

	owner, err := db.Users().GetByUsername(context.Background(), "owner")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, owner.Role)
	ok, rehash := owner.CheckPassword("owner123")
	assert.True(t, ok)
	assert.False(t, rehash)
}

func TestOpenDoesNotReseed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isvara.db")
	ctx := context.Background()

	db, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.Users().Delete(ctx, "owner"))
	_, err = db.Users().Save(ctx, domain.User{Username: "rina", PasswordHash: "x", Role: domain.RoleAdmin})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	users, err := db.Users().List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "rina", users[0].Username)
}

func TestProductSaveGetDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	store := db.Products()

	saved, err := store.Save(ctx, domain.Product{
		SellerSKU: "KMJ-01",
		StyleName: "Kemeja Linen",
		Status:    domain.StatusActive,
		Sizes:     domain.Sizes{M: 2, L: 3},
		Price:     150000,
		Images:    []string{"a.png", "b.png"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := store.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kemeja Linen", got.StyleName)
	assert.Equal(t, 3, got.L)
	assert.Equal(t, []string{"a.png", "b.png"}, got.Images)

	got.StyleName = "Kemeja Linen Putih"
	_, err = store.Save(ctx, got)
	require.NoError(t, err)
	items, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Kemeja Linen Putih", items[0].StyleName)

	require.NoError(t, store.Delete(ctx, saved.ID))
	_, err = store.Get(ctx, saved.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, saved.ID), domain.ErrNotFound)
}

func TestProductDuplicateSellerSKU(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.Products().Save(ctx, domain.Product{SellerSKU: "DUP", StyleName: "One"})
	require.NoError(t, err)
	_, err = db.Products().Save(ctx, domain.Product{SellerSKU: "DUP", StyleName: "Two"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	var persistErr *domain.PersistenceError
	assert.ErrorAs(t, err, &persistErr)
}

func TestProductSaveBulkKeepsTimestamps(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	saved, err := db.Products().SaveBulk(ctx, []domain.Product{
		{ID: "p-1", SellerSKU: "A", StyleName: "Alpha", TotalStock: 9, CreatedAt: created, UpdatedAt: created},
		{SellerSKU: "B", StyleName: "Beta"},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.NotEmpty(t, saved[1].ID)

	got, err := db.Products().Get(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 9, got.TotalStock)
	assert.True(t, created.Equal(got.UpdatedAt))

	_, err = db.Products().SaveBulk(ctx, []domain.Product{{ID: "p-1", SellerSKU: "A", StyleName: "Alpha 2"}})
	require.NoError(t, err)
	items, err := db.Products().List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestSalesOrderingAndRestore(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	sales := db.Sales()

	for _, date := range []string{"2024-05-01 09:00", "2024-05-03 12:30", "2024-05-02 08:15"} {
		_, err := sales.Add(ctx, domain.SalesRecord{Date: date, SellerSKU: "A", Type: domain.MovementSale, Qty: 1})
		require.NoError(t, err)
	}
	items, err := sales.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "2024-05-03 12:30", items[0].Date)
	assert.Equal(t, "2024-05-01 09:00", items[2].Date)

	require.NoError(t, sales.Restore(ctx, items[:1]))
	items, err = sales.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "2024-05-03 12:30", items[0].Date)
}

func TestLogsAreCapped(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	logs := db.Logs()

	for i := 0; i < LogCap+15; i++ {
		_, err := logs.Add(ctx, domain.ActivityLogEntry{
			Timestamp: int64(1000 + i),
			Action:    domain.ActionUpdateStock,
			Item:      fmt.Sprintf("item %d", i),
			OldVal:    domain.IntValue(i),
			NewVal:    domain.IntValue(i + 1),
		})
		require.NoError(t, err)
	}

	items, err := logs.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, LogCap)
	assert.Equal(t, fmt.Sprintf("item %d", LogCap+14), items[0].Item)
	assert.Equal(t, "item 15", items[len(items)-1].Item)

	var count int64
	require.NoError(t, db.gorm.Model(&logRow{}).Count(&count).Error)
	assert.Equal(t, int64(LogCap), count)
}

func TestLogsRestoreKeepsNewest(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	entries := make([]domain.ActivityLogEntry, 0, LogCap+5)
	for i := 0; i < LogCap+5; i++ {
		entries = append(entries, domain.ActivityLogEntry{ID: fmt.Sprintf("log-%d", i), Timestamp: int64(i)})
	}
	require.NoError(t, db.Logs().Restore(ctx, entries))

	items, err := db.Logs().List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 10)
	assert.Equal(t, fmt.Sprintf("log-%d", LogCap+4), items[0].ID)
}

func TestRestoreToleratesRepeatedIDs(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Logs().Restore(ctx, []domain.ActivityLogEntry{
		{ID: "1700000000000", Timestamp: 1700000000000, Item: "first"},
		{ID: "1700000000001", Timestamp: 1700000000001, Item: "other"},
		{ID: "1700000000000", Timestamp: 1700000000000, Item: "second"},
	}))
	entries, err := db.Logs().List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "other", entries[0].Item)
	assert.Equal(t, "second", entries[1].Item)

	require.NoError(t, db.Sales().Restore(ctx, []domain.SalesRecord{
		{ID: "1700000000000", Date: "2024-05-02 10:00", SellerSKU: "A", Type: domain.MovementSale, Qty: 1},
		{ID: "1700000000000", Date: "2024-05-01 09:00", SellerSKU: "A", Type: domain.MovementSale, Qty: 3},
	}))
	records, err := db.Sales().List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].Qty)
}

func TestUserSaveMerges(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.Users().Save(ctx, domain.User{Username: "sari", PasswordHash: "hash-1", Role: domain.RoleStaff})
	require.NoError(t, err)

	merged, err := db.Users().Save(ctx, domain.User{Username: "sari", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "hash-1", merged.PasswordHash)
	assert.Equal(t, domain.RoleAdmin, merged.Role)

	got, err := db.Users().GetByUsername(ctx, "sari")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", got.PasswordHash)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	_, err = db.Users().GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSettingsDefaultsAndSave(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	settings := db.Settings()

	categories, err := settings.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategories, categories)

	require.NoError(t, settings.SaveCategories(ctx, []string{"Kaos", "Outer"}))
	require.NoError(t, settings.SaveCategories(ctx, []string{"Kaos", "Outer", "Rok"}))
	categories, err = settings.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kaos", "Outer", "Rok"}, categories)

	channels, err := settings.Channels(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultChannels, channels)
}
