package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/config"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/margin"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/service"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/session"
)

type Handler struct {
	sessions       *session.Manager
	maxImageBytes  int64
	maxUploadBytes int64
}

func NewHandler(sessions *session.Manager, cfg config.Config) *Handler {
	maxImage := cfg.MaxImageBytes
	if maxImage <= 0 {
		maxImage = 5 << 20
	}
	return &Handler{sessions: sessions, maxImageBytes: maxImage, maxUploadBytes: 32 << 20}
}

// RequireSession rejects requests made before a login with 401.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.sessions.Current()
		if err != nil {
			h.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

func current(r *http.Request) (*service.Service, service.Actor) {
	sess := r.Context().Value(sessionKey).(*session.Session)
	return sess.Service, sess.Actor()
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{"status": "ok"}
	if sess, err := h.sessions.Current(); err == nil {
		payload["mode"] = sess.Mode
	}
	writeJSON(w, http.StatusOK, payload)
}

type sessionView struct {
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	Mode      config.Mode `json:"mode"`
	StartedAt time.Time   `json:"started_at"`
}

func viewSession(sess *session.Session) sessionView {
	return sessionView{
		Username:  sess.User.Username,
		Role:      sess.User.Role,
		Mode:      sess.Mode,
		StartedAt: sess.StartedAt,
	}
}

func (h *Handler) LoginOffline(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.LoginOffline(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewSession(sess))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) LoginOnline(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, err := h.sessions.LoginOnline(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewSession(sess))
}

func (h *Handler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Current()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewSession(sess))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	svc, _ := current(r)
	items, err := svc.ListProducts(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search"))); search != "" {
		filtered := items[:0]
		for _, p := range items {
			if strings.Contains(strings.ToLower(p.SellerSKU), search) || strings.Contains(strings.ToLower(p.StyleName), search) {
				filtered = append(filtered, p)
			}
		}
		items = filtered
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	svc, _ := current(r)
	product, err := svc.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p.ID = ""
	h.saveProduct(w, r, p, http.StatusCreated)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p.ID = chi.URLParam(r, "id")
	h.saveProduct(w, r, p, http.StatusOK)
}

func (h *Handler) saveProduct(w http.ResponseWriter, r *http.Request, p domain.Product, status int) {
	svc, actor := current(r)
	saved, err := svc.SaveProduct(r.Context(), actor, p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, status, saved)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	svc, actor := current(r)
	if err := svc.DeleteProduct(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type adjustStockRequest struct {
	Delta int `json:"delta"`
}

func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req adjustStockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	svc, actor := current(r)
	product, err := svc.AdjustStock(r.Context(), actor, chi.URLParam(r, "id"), req.Delta)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	svc, _ := current(r)
	records, err := svc.ListSales(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": records, "count": len(records)})
}

func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	h.recordMovement(w, r, (*service.Service).RecordSale)
}

func (h *Handler) RecordReturn(w http.ResponseWriter, r *http.Request) {
	h.recordMovement(w, r, (*service.Service).RecordReturn)
}

type movementFunc func(*service.Service, context.Context, service.Actor, service.Movement) (service.MovementResult, error)

func (h *Handler) recordMovement(w http.ResponseWriter, r *http.Request, record movementFunc) {
	var m service.Movement
	if err := decodeJSON(r, &m); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	svc, actor := current(r)
	result, err := record(svc, r.Context(), actor, m)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := parseOptionalInt(r.URL.Query().Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	svc, _ := current(r)
	entries, err := svc.ListLogs(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": entries, "count": len(entries)})
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	svc, _ := current(r)
	settings, err := svc.Settings(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var in domain.Settings
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	svc, actor := current(r)
	settings, err := svc.SaveSettings(r.Context(), actor, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	svc, actor := current(r)
	users, err := svc.ListUsers(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": users, "count": len(users)})
}

func (h *Handler) SaveUser(w http.ResponseWriter, r *http.Request) {
	var in service.UserInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if username := chi.URLParam(r, "username"); username != "" {
		in.Username = username
	}
	svc, actor := current(r)
	user, err := svc.SaveUser(r.Context(), actor, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	svc, actor := current(r)
	if err := svc.DeleteUser(r.Context(), actor, chi.URLParam(r, "username")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	svc, _ := current(r)
	stats, err := svc.Dashboard(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type marginResponse struct {
	Input     margin.Input   `json:"input"`
	Result    margin.Result  `json:"result"`
	Breakdown []margin.Slice `json:"breakdown"`
}

func (h *Handler) CalculateMargin(w http.ResponseWriter, r *http.Request) {
	var calc margin.Calculator
	if err := decodeJSON(r, &calc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for field, mode := range map[string]margin.Mode{
		"platform_commission_mode": calc.PlatformCommissionMode,
		"discount_mode":            calc.DiscountMode,
		"tax_mode":                 calc.TaxMode,
	} {
		if _, err := margin.ParseMode(string(mode)); err != nil {
			h.fail(w, r, domain.NewValidationError(field, err.Error()))
			return
		}
	}
	in := calc.Resolve()
	writeJSON(w, http.StatusOK, marginResponse{
		Input:     in,
		Result:    margin.Compute(in),
		Breakdown: margin.Breakdown(in),
	})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrDuplicate):
		return http.StatusConflict
	case errors.As(err, &verr), errors.Is(err, domain.ErrParse):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", requestID(r.Context())).Msg("request failed")
		writeError(w, status, "internal server error")
		return
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, status, map[string]any{"error": verr.Message, "field": verr.Field})
		return
	}
	if status == http.StatusConflict {
		// Conflicts from the store carry driver text.
		log.Warn().Err(err).Str("request_id", requestID(r.Context())).Msg("request conflict")
		writeError(w, status, conflictMessage(err))
		return
	}
	writeError(w, status, err.Error())
}

func conflictMessage(err error) string {
	if errors.Is(err, domain.ErrInsufficientStock) {
		return "insufficient stock"
	}
	return "record already exists"
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func parseOptionalInt(raw string, defaultValue int) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %s", raw)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("value cannot be negative")
	}
	return parsed, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
