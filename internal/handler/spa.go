package handler

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SPAHandler serves the built single-page frontend.
//
// CLIENT-SIDE ROUTING:
// The frontend owns paths like /modules/abc123. The browser requests them
// directly on a hard refresh, and no such file exists on disk. Any path that
// does not name a real file is answered with index.html so the frontend's
// router can take over. Paths under /api are never rewritten: an unknown API
// route must stay a 404.
type SPAHandler struct {
	root   string
	files  http.Handler
	logger *slog.Logger
}

// NewSPAHandler checks that dir exists and contains index.html.
func NewSPAHandler(dir string, logger *slog.Logger) (*SPAHandler, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(abs, "index.html")); err != nil {
		return nil, err
	}

	return &SPAHandler{
		root:   abs,
		files:  http.FileServer(http.Dir(abs)),
		logger: logger,
	}, nil
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
			Error:   "method_not_allowed",
			Message: "method not allowed",
		})
		return
	}

	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "route not found",
		})
		return
	}

	// path.Clean on a rooted path cannot climb above "/", and http.Dir
	// rejects the rest.
	name := path.Clean("/" + r.URL.Path)
	info, err := os.Stat(filepath.Join(h.root, filepath.FromSlash(name)))
	switch {
	case err == nil && !info.IsDir():
		h.files.ServeHTTP(w, r)
		return
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		h.logger.Warn("stat frontend file", slog.String("path", name), slog.String("error", err.Error()))
	}

	// FileServer answers "/" with the directory's index.html.
	index := r.Clone(r.Context())
	index.URL.Path = "/"
	index.URL.RawPath = ""
	h.files.ServeHTTP(w, index)
}
