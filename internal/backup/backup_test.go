package backup

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := Document{
		Products: []domain.Product{{
			ID:        "p-1",
			SellerSKU: "A1",
			StyleName: "Kaos",
			Status:    domain.StatusActive,
			Sizes:     domain.Sizes{S: 1},
			Price:     100,
			Images:    []string{"x.png"},
			CreatedAt: created,
			UpdatedAt: created,
		}},
		Sales: []domain.SalesRecord{{ID: "s-1", Date: "2024-01-02 10:00", SellerSKU: "A1", Type: domain.MovementSale, Qty: 1}},
		Logs: []domain.ActivityLogEntry{{
			ID: "l-1", Timestamp: 1704164645000, Action: domain.ActionSale, OldVal: "2", NewVal: "1",
		}},
		Categories: []string{"Kaos"},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, doc))
	assert.Contains(t, buf.String(), `"version": "2.0"`)
	assert.Contains(t, buf.String(), `"channels": []`)

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc.Products[0].SellerSKU, got.Products[0].SellerSKU)
	assert.True(t, created.Equal(got.Products[0].CreatedAt))
	assert.Equal(t, doc.Products[0].Images, got.Products[0].Images)
	assert.Equal(t, doc.Sales, got.Sales)
	assert.Equal(t, doc.Logs, got.Logs)
	assert.Equal(t, []string{"Kaos"}, got.Categories)
	assert.NotNil(t, got.Channels)
	assert.Empty(t, got.Channels)
	assert.Equal(t, Version, got.Version)
}

func TestDecodeLegacyShape(t *testing.T) {
	legacy := `{
		"isvara_products": "[{\"id\":1715000000123.45,\"seller_sku\":\"KMJ-1\",\"style_name\":\"Kemeja\",\"price\":\"150000\",\"size_m\":\"2\",\"total_stock\":2,\"imageUrl\":\"https://x/img.jpg\",\"created_at\":\"2024-05-06T10:00:00.000Z\"}]",
		"isvara_sales_records": "[{\"id\":17,\"date\":\"2024-05-06 10:00\",\"seller_sku\":\"KMJ-1\",\"type\":\"sale\",\"qty\":\"1\",\"remaining_stock\":1}]",
		"isvara_activity_log": "[{\"id\":99,\"timestamp\":1715000000000,\"action\":\"Sale\",\"oldVal\":2,\"newVal\":1,\"user\":\"owner\"}]",
		"isvara_categories": "[\"Kaos\",\"Kemeja\"]"
	}`

	doc, err := Decode(strings.NewReader(legacy))
	require.NoError(t, err)

	require.Len(t, doc.Products, 1)
	p := doc.Products[0]
	assert.Equal(t, "1715000000123.45", p.ID)
	assert.Equal(t, 150000.0, p.Price)
	assert.Equal(t, 2, p.M)
	assert.Equal(t, []string{"https://x/img.jpg"}, p.Images)
	assert.Equal(t, 2024, p.CreatedAt.Year())

	require.Len(t, doc.Sales, 1)
	assert.Equal(t, "17", doc.Sales[0].ID)
	assert.Equal(t, 1, doc.Sales[0].Qty)

	require.Len(t, doc.Logs, 1)
	assert.Equal(t, domain.LogValue("2"), doc.Logs[0].OldVal)
	assert.Equal(t, domain.LogValue("1"), doc.Logs[0].NewVal)

	assert.Equal(t, []string{"Kaos", "Kemeja"}, doc.Categories)
	assert.Nil(t, doc.Channels)
}

func TestDecodeOnlineLogColumns(t *testing.T) {
	input := `{"logs": [{
		"id": "7", "timestamp": 1715000000000, "action": "Update Stock",
		"user_name": "rina", "user_role": "ADMIN", "old_val": "4", "new_val": 5
	}, {
		"id": "8", "timestamp": 1715000000001, "user": "owner", "user_name": "ignored"
	}]}`

	doc, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, doc.Logs, 2)
	entry := doc.Logs[0]
	assert.Equal(t, "rina", entry.User)
	assert.Equal(t, domain.RoleAdmin, entry.Role)
	assert.Equal(t, domain.LogValue("4"), entry.OldVal)
	assert.Equal(t, domain.LogValue("5"), entry.NewVal)
	assert.Equal(t, "owner", doc.Logs[1].User)
}

func TestDecodeMissingCollectionsStayNil(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{"products": [], "version": "2.0"}`))
	require.NoError(t, err)
	assert.NotNil(t, doc.Products)
	assert.Nil(t, doc.Sales)
	assert.Nil(t, doc.Logs)
}

func TestDecodeRejectsInvalid(t *testing.T) {
	for _, input := range []string{"", "[]", "not json", `{"products": "[broken"}`, `{"products": 5}`} {
		_, err := Decode(strings.NewReader(input))
		assert.ErrorIs(t, err, domain.ErrParse, input)
	}
}
