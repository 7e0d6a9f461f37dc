// Package graph serves the precompressed route-snapping graph blob. The
// blob lives on local disk in normal deployments; when absent it is
// fetched from object storage.
package graph

import (
	"context"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/rs/zerolog"
)

// FileStore defines the interface for the object-storage fallback.
type FileStore interface {
	Download(ctx context.Context, key string) ([]byte, string, error)
}

// Handler streams the graph blob.
type Handler struct {
	localPath string
	objectKey string
	files     FileStore
	log       zerolog.Logger
}

func NewHandler(localPath, objectKey string, files FileStore, log zerolog.Logger) *Handler {
	return &Handler{localPath: localPath, objectKey: objectKey, files: files, log: log}
}

// Serve handles GET /api/graph. The payload is brotli-precompressed, so
// Content-Encoding is set and the client decompresses; the blob never
// changes for a given deployment, hence the year-long cache.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	if info, err := os.Stat(h.localPath); err == nil {
		f, err := os.Open(h.localPath)
		if err != nil {
			h.log.Error().Err(err).Str("path", h.localPath).Msg("open graph file")
			http.Error(w, `{"error":"graph not available"}`, http.StatusInternalServerError)
			return
		}
		defer f.Close()

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Encoding", "br")
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
		w.Header().Set("Cache-Control", "public, max-age=31536000")
		io.Copy(w, f)
		return
	}

	data, _, err := h.files.Download(r.Context(), h.objectKey)
	if err != nil {
		h.log.Error().Err(err).Str("key", h.objectKey).Msg("graph fallback fetch")
		http.Error(w, `{"error":"remote graph not available"}`, http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Encoding", "br")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	w.Write(data)
}
