package server

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/portailcloud/demoserver/internal/page"
)

// route pairs a predicate with the handler that answers matching requests.
// Routes are tried in order; the first match wins.
type route struct {
	name    string
	match   func(r *http.Request) bool
	handler http.HandlerFunc
}

type handler struct {
	routes   []route
	fallback http.Handler
}

func newHandler(root string, renderer *page.Renderer, logger *slog.Logger) *handler {
	sp := &statusPage{renderer: renderer, logger: logger}
	files := http.FileServer(http.Dir(root))
	ix := &indexFile{dir: http.Dir(root), files: files}
	return &handler{
		routes: []route{
			{name: "unsupported-method", match: unsupportedMethod, handler: notImplemented},
			{name: "status-page", match: isStatusPath, handler: sp.serve},
			{name: "index-file", match: isIndexFile, handler: ix.serve},
		},
		fallback: files,
	}
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, rt := range h.routes {
		if rt.match(r) {
			rt.handler(w, r)
			return
		}
	}
	h.fallback.ServeHTTP(w, r)
}

func isStatusPath(r *http.Request) bool {
	return r.URL.Path == "/" || r.URL.Path == "/index.html"
}

// FileServer redirects any ".../index.html" to its directory, so an
// explicit request for a nested index file is served here instead.
func isIndexFile(r *http.Request) bool {
	return strings.HasSuffix(r.URL.Path, "/index.html")
}

// Only GET and HEAD are served, everything else is 501 like a plain static
// file server.
func unsupportedMethod(r *http.Request) bool {
	return r.Method != http.MethodGet && r.Method != http.MethodHead
}

func notImplemented(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Unsupported method ("+r.Method+")", http.StatusNotImplemented)
}

type indexFile struct {
	dir   http.Dir
	files http.Handler
}

func (ix *indexFile) serve(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)
	f, err := ix.dir.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "403 Forbidden", http.StatusForbidden)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
		return
	}
	if info.IsDir() {
		ix.files.ServeHTTP(w, r)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

type statusPage struct {
	renderer *page.Renderer
	logger   *slog.Logger
}

func (sp *statusPage) serve(w http.ResponseWriter, r *http.Request) {
	if sp.renderer == nil {
		http.NotFound(w, r)
		return
	}
	body, err := sp.renderer.Bytes()
	if err != nil {
		sp.logger.Error("rendering status page", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", page.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	w.Write(body)
}
