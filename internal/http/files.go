package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/excel"
	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/service"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType  = "text/csv; charset=utf-8"
)

func (h *Handler) ImportProducts(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	strategy, err := excel.ParseStrategy(r.FormValue("strategy"))
	if err != nil {
		h.fail(w, r, domain.NewValidationError("strategy", err.Error()))
		return
	}
	duplicates, err := service.ParseDuplicateMode(r.FormValue("mode"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	svc, actor := current(r)
	result, err := svc.ImportProducts(r.Context(), actor, header.Filename, file, service.ImportOptions{
		Strategy:   strategy,
		Duplicates: duplicates,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"file_name": header.Filename,
		"result":    result,
	})
}

func (h *Handler) ImportTemplate(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := excel.WriteTemplate(&buf); err != nil {
		h.fail(w, r, err)
		return
	}
	writeAttachment(w, xlsxContentType, "isvara-template.xlsx", buf.Bytes())
}

func (h *Handler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "csv" {
		writeError(w, http.StatusBadRequest, "format must be xlsx or csv")
		return
	}

	svc, _ := current(r)
	products, err := svc.ListProducts(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	contentType := xlsxContentType
	if format == "csv" {
		contentType = csvContentType
		err = excel.WriteProductsCSV(&buf, products)
	} else {
		err = excel.WriteProductsXLSX(&buf, products)
	}
	if err != nil {
		h.fail(w, r, fmt.Errorf("export products: %w", err))
		return
	}
	name := fmt.Sprintf("isvara-products-%s.%s", time.Now().Format("20060102"), format)
	writeAttachment(w, contentType, name, buf.Bytes())
}

func (h *Handler) Backup(w http.ResponseWriter, r *http.Request) {
	svc, _ := current(r)
	var buf bytes.Buffer
	if err := svc.WriteBackup(r.Context(), &buf); err != nil {
		h.fail(w, r, err)
		return
	}
	name := fmt.Sprintf("isvara-backup-%s.json", time.Now().Format("2006-01-02"))
	writeAttachment(w, "application/json", name, buf.Bytes())
}

// Restore accepts the backup either as the raw JSON body or as the "file"
// field of a multipart form.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "failed to parse multipart form")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file field is required")
			return
		}
		defer file.Close()
		body = file
	}

	svc, actor := current(r)
	summary, err := svc.RestoreFrom(r.Context(), actor, body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	name, data, ok := h.readImage(w, r)
	if !ok {
		return
	}
	svc, actor := current(r)
	ref, err := svc.UploadImage(r.Context(), actor, name, data)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"url": ref})
}

func (h *Handler) AddProductImage(w http.ResponseWriter, r *http.Request) {
	name, data, ok := h.readImage(w, r)
	if !ok {
		return
	}
	svc, actor := current(r)
	product, err := svc.AddProductImage(r.Context(), actor, chi.URLParam(r, "id"), name, data)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) readImage(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxImageBytes + (1 << 20)); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form")
		return "", nil, false
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image field is required")
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxImageBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image")
		return "", nil, false
	}
	return filepath.Base(header.Filename), data, true
}

func writeAttachment(w http.ResponseWriter, contentType, fileName string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
