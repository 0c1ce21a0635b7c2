package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/config"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/session"
)

type apiClient struct {
	t      *testing.T
	router http.Handler
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	cfg := config.Config{DataDir: t.TempDir(), MaxImageBytes: 1 << 20, LowStockThreshold: 3}
	sessions := session.NewManager(cfg, nil)
	t.Cleanup(func() { _ = sessions.Close() })
	return &apiClient{t: t, router: NewRouter(NewHandler(sessions, cfg))}
}

func (c *apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func (c *apiClient) upload(path, field, fileName string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(c.t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile(field, fileName)
	require.NoError(c.t, err)
	_, err = part.Write(content)
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (c *apiClient) login() {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/v1/session/offline", nil)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
}

func (c *apiClient) createProduct(sku, name string, sizeS int) domain.Product {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/v1/products", map[string]any{
		"seller_sku": sku,
		"style_name": name,
		"category":   "Kaos",
		"price":      100,
		"cost":       40,
		"size_s":     sizeS,
	})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[domain.Product](c.t, rec)
}

func TestHealth(t *testing.T) {
	api := newAPI(t)
	rec := api.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSessionRequired(t *testing.T) {
	api := newAPI(t)
	rec := api.do(http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	api.login()
	rec = api.do(http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[sessionView](t, rec)
	assert.Equal(t, config.ModeOffline, view.Mode)
	assert.Equal(t, domain.RoleOwner, view.Role)

	rec = api.do(http.MethodDelete, "/api/v1/session", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOnlineLoginWithoutDatabase(t *testing.T) {
	api := newAPI(t)
	rec := api.do(http.MethodPost, "/api/v1/session/online", map[string]string{"username": "owner", "password": "x"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "DATABASE_URL")
}

func TestProductLifecycle(t *testing.T) {
	api := newAPI(t)
	api.login()

	p := api.createProduct("KS-01", "Kaos Polos", 3)
	assert.Equal(t, 3, p.TotalStock)
	assert.Equal(t, 60.0, p.NettReceive)

	rec := api.do(http.MethodPost, "/api/v1/products", map[string]any{"seller_sku": "ks-01", "style_name": "Lain", "category": "Kaos", "price": 5})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodPost, "/api/v1/products", map[string]any{"seller_sku": "X", "style_name": "Y", "category": "Kaos", "price": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "price", body["field"])

	rec = api.do(http.MethodPost, "/api/v1/products", `{"seller_sku":"X","unknown":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	p.Price = 150
	rec = api.do(http.MethodPut, "/api/v1/products/"+p.ID, p)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 110.0, decodeBody[domain.Product](t, rec).NettReceive)

	rec = api.do(http.MethodPost, "/api/v1/products/"+p.ID+"/stock", map[string]int{"delta": -1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decodeBody[domain.Product](t, rec).TotalStock)

	rec = api.do(http.MethodGet, "/api/v1/products?search=polos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[struct {
		Count int `json:"count"`
	}](t, rec)
	assert.Equal(t, 1, list.Count)

	rec = api.do(http.MethodDelete, "/api/v1/products/"+p.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(http.MethodGet, "/api/v1/products/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSalesAndReturns(t *testing.T) {
	api := newAPI(t)
	api.login()
	p := api.createProduct("KS-01", "Kaos", 2)

	rec := api.do(http.MethodPost, "/api/v1/sales", map[string]any{"product_id": p.ID, "qty": 3})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "qty", decodeBody[map[string]string](t, rec)["field"])

	rec = api.do(http.MethodPost, "/api/v1/sales", map[string]any{"product_id": p.ID, "qty": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = api.do(http.MethodPost, "/api/v1/returns", map[string]any{"product_id": p.ID, "qty": 1, "remark": "cacat"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/sales", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sales := decodeBody[struct {
		Items []domain.SalesRecord `json:"items"`
	}](t, rec)
	require.Len(t, sales.Items, 2)

	rec = api.do(http.MethodGet, "/api/v1/logs?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decodeBody[struct {
		Items []domain.ActivityLogEntry `json:"items"`
	}](t, rec)
	require.Len(t, logs.Items, 1)
	assert.Equal(t, domain.ActionReturn, logs.Items[0].Action)

	rec = api.do(http.MethodGet, "/api/v1/logs?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportExport(t *testing.T) {
	api := newAPI(t)
	api.login()

	csvData := "Seller SKU,Style Name,Category,Price,Cost,S,M\nA-1,Alpha,Kaos,100,40,1,2\n,,,,,,\nB-2,Beta,Kemeja,80,50,,\n,,Kaos,5,,,\n"
	rec := api.upload("/api/v1/import", "file", "produk.csv", []byte(csvData), map[string]string{"mode": "skip"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[struct {
		FileName string `json:"file_name"`
		Result   struct {
			Imported   int `json:"imported"`
			ErrorCount int `json:"error_count"`
		} `json:"result"`
	}](t, rec)
	assert.Equal(t, "produk.csv", resp.FileName)
	assert.Equal(t, 2, resp.Result.Imported)
	assert.Equal(t, 1, resp.Result.ErrorCount)

	rec = api.upload("/api/v1/import", "file", "produk.csv", []byte(csvData), map[string]string{"mode": "merge"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = api.upload("/api/v1/import", "file", "produk.xlsx", []byte("nope"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/export?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, csvContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, rec.Body.String(), "A-1")

	rec = api.do(http.MethodGet, "/api/v1/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = api.do(http.MethodGet, "/api/v1/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/import/template", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestBackupRestore(t *testing.T) {
	src := newAPI(t)
	src.login()
	src.createProduct("KS-01", "Kaos", 4)

	rec := src.do(http.MethodGet, "/api/v1/backup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	backupJSON := rec.Body.String()
	assert.Contains(t, backupJSON, `"version": "2.0"`)

	dst := newAPI(t)
	dst.login()
	rec = dst.do(http.MethodPost, "/api/v1/restore", backupJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := decodeBody[map[string]any](t, rec)
	assert.EqualValues(t, 1, summary["products"])

	rec = dst.upload("/api/v1/restore", "file", "backup.json", []byte(backupJSON), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = dst.do(http.MethodPost, "/api/v1/restore", "{broken")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = dst.do(http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody[map[string]any](t, rec)
	assert.EqualValues(t, 1, stats["total_products"])
	assert.EqualValues(t, 4, stats["total_stock"])
}

func TestImages(t *testing.T) {
	api := newAPI(t)
	api.login()
	p := api.createProduct("KS-01", "Kaos", 1)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
	rec := api.upload("/api/v1/products/"+p.ID+"/images", "image", "depan.png", png, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	updated := decodeBody[domain.Product](t, rec)
	require.Len(t, updated.Images, 1)
	assert.True(t, strings.HasPrefix(updated.Images[0], "data:image/png;base64,"))

	rec = api.upload("/api/v1/images", "image", "notes.txt", []byte("hello"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsersEndpoints(t *testing.T) {
	api := newAPI(t)
	api.login()

	rec := api.do(http.MethodPost, "/api/v1/users", map[string]string{"username": "budi", "password": "rahasia1", "role": "STAFF"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "rahasia1")

	rec = api.do(http.MethodPut, "/api/v1/users/budi", map[string]string{"role": "ADMIN"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.RoleAdmin, decodeBody[domain.User](t, rec).Role)

	rec = api.do(http.MethodGet, "/api/v1/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodDelete, "/api/v1/users/owner", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = api.do(http.MethodDelete, "/api/v1/users/budi", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSettingsEndpoints(t *testing.T) {
	api := newAPI(t)
	api.login()

	rec := api.do(http.MethodPut, "/api/v1/settings", map[string]any{"categories": []string{"Batik", " Batik ", "Kaos"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	settings := decodeBody[domain.Settings](t, rec)
	assert.Equal(t, []string{"Batik", "Kaos"}, settings.Categories)
	assert.Equal(t, domain.DefaultChannels, settings.Channels)
}

func TestCalculateMargin(t *testing.T) {
	api := newAPI(t)
	rec := api.do(http.MethodPost, "/api/v1/margin/calculate", map[string]any{
		"price":                    100,
		"cost":                     40,
		"platform_commission":      10,
		"platform_commission_mode": "percent",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[marginResponse](t, rec)
	assert.Equal(t, 10.0, resp.Input.PlatformCommission)
	assert.Equal(t, 50.0, resp.Result.NettReceive)
	assert.Equal(t, 50.0, resp.Result.MarginPercentage)
	assert.True(t, resp.Result.IsProfitable)

	rec = api.do(http.MethodPost, "/api/v1/margin/calculate", map[string]any{"price": 100, "tax_mode": "ratio"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "tax_mode", decodeBody[map[string]string](t, rec)["field"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&domain.ValidationError{Field: "qty", Err: domain.ErrInsufficientStock}, http.StatusConflict},
		{fmt.Errorf("save: %w", domain.ErrDuplicate), http.StatusConflict},
		{domain.NewValidationError("price", "bad"), http.StatusBadRequest},
		{fmt.Errorf("parse: %w", domain.ErrParse), http.StatusBadRequest},
		{fmt.Errorf("get: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrNoSession, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{&domain.PersistenceError{Op: "list", Err: errors.New("io")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestFailHidesStoreConflictText(t *testing.T) {
	h := &Handler{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", nil)

	rec := httptest.NewRecorder()
	storeErr := &domain.PersistenceError{
		Op:  "save product",
		Err: fmt.Errorf("%w: duplicated key not allowed", domain.ErrDuplicate),
	}
	h.fail(rec, req, storeErr)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NotContains(t, rec.Body.String(), "duplicated key")
	assert.Contains(t, rec.Body.String(), "record already exists")

	rec = httptest.NewRecorder()
	h.fail(rec, req, domain.NewValidationError("seller_sku", "already exists"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "seller_sku")
}
