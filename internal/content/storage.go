package content

import (
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ImageStore keeps ticket images. The service persists only the key.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Remove(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func imageKey(up *Upload) string {
	ext := strings.ToLower(path.Ext(up.Filename))
	if len(ext) > 8 {
		ext = ""
	}
	return "tickets/" + uuid.NewString() + ext
}

func (up *Upload) contentType() string {
	if up.ContentType != "" && up.ContentType != "application/octet-stream" {
		return up.ContentType
	}
	return http.DetectContentType(up.Data)
}
