// Package media stores product images and returns the reference kept in
// Product.Images.
package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// Detect checks that data is an image no larger than maxBytes and returns its
// MIME type and canonical extension.
func Detect(data []byte, maxBytes int64) (string, string, error) {
	if len(data) == 0 {
		return "", "", domain.NewValidationError("image", "file is empty")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", "", domain.NewValidationError("image", fmt.Sprintf("file exceeds %d bytes", maxBytes))
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", "", domain.NewValidationError("image", "unsupported file type "+mtype.String())
	}
	return mtype.String(), mtype.Extension(), nil
}

// ObjectKey builds a collision-free key that keeps a readable base name.
func ObjectKey(name, ext string) string {
	base := strings.TrimSuffix(path.Base(strings.ReplaceAll(name, "\\", "/")), path.Ext(name))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" || base == "." {
		base = "image"
	}
	return "products/" + uuid.NewString() + "-" + base + ext
}

// DataURLUploader embeds the image in the returned reference. The local store
// has no file server, so the reference itself carries the bytes.
type DataURLUploader struct {
	MaxBytes int64
}

func (u DataURLUploader) Upload(_ context.Context, _ string, data []byte) (string, error) {
	mtype, _, err := Detect(data, u.MaxBytes)
	if err != nil {
		return "", err
	}
	return "data:" + mtype + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
