package api

import (
	"fmt"
	"io/fs"
	"net/http"
	"sync"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
)

// HashFS serves static assets and marks requests carrying the current content
// hash as immutable.
type HashFS struct {
	serv   http.Handler
	hashes sync.Map
}

func NewHashFS(fsys fs.FS, logger *zap.Logger) (*HashFS, error) {
	h := &HashFS{
		serv: http.FileServer(http.FS(fsys)),
	}

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		hashStr := fmt.Sprintf("%016x", xxh3.Hash(data))
		logger.Debug("computed static asset hash", zap.String("path", path), zap.String("hash", hashStr))
		h.hashes.Store(path, hashStr)
		return nil
	})

	return h, err
}

func (h *HashFS) GetHash(path string) string {
	if val, ok := h.hashes.Load(path); ok {
		return val.(string)
	}
	return ""
}

func (h *HashFS) FormatWithHash(path string) string {
	hash := h.GetHash(path)
	if hash != "" {
		return fmt.Sprintf("%s?hash=%s", path, hash)
	}
	return path
}

func (h *HashFS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	hash := r.URL.Query().Get("hash")
	if hash != "" && hash == h.GetHash(r.URL.Path) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	}
	h.serv.ServeHTTP(w, r)
}
