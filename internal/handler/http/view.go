package http

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

// ViewHandler serves the pre-built frontend. Unknown paths fall back to index.html
// so client-side routes resolve after the route guard has let them through.
type ViewHandler struct {
	dir        string
	fileServer http.Handler
}

func NewViewHandler(dir string) *ViewHandler {
	return &ViewHandler{
		dir:        dir,
		fileServer: http.FileServer(http.Dir(dir)),
	}
}

func (v *ViewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clean := path.Clean("/" + r.URL.Path)
	if clean == "/" {
		http.Redirect(w, r, defaultNextPath, http.StatusTemporaryRedirect)
		return
	}

	info, err := os.Stat(filepath.Join(v.dir, filepath.FromSlash(strings.TrimPrefix(clean, "/"))))
	if err == nil && !info.IsDir() {
		v.fileServer.ServeHTTP(w, r)
		return
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("view stat error", "path", clean, "error", err)
	}

	index := filepath.Join(v.dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, index)
}
