package api

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed ui
var uiFS embed.FS

// DefaultUI returns the built-in upload page.
func DefaultUI() fs.FS {
	sub, err := fs.Sub(uiFS, "ui")
	if err != nil {
		panic(err)
	}
	return sub
}

// WithUI serves the static files of ui next to the API. Paths under /api/
// go to apiHandler; unknown paths fall back to index.html.
func WithUI(apiHandler http.Handler, ui fs.FS) http.Handler {
	fileServer := http.FileServer(http.FS(ui))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			apiHandler.ServeHTTP(w, r)
			return
		}

		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name != "" && name != "index.html" {
			if info, err := fs.Stat(ui, name); err == nil && !info.IsDir() {
				setNoStore(w)
				fileServer.ServeHTTP(w, r)
				return
			}
		}
		serveIndex(w, r, ui)
	})
}

func serveIndex(w http.ResponseWriter, r *http.Request, ui fs.FS) {
	data, err := fs.ReadFile(ui, "index.html")
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("index.html not found"))
		return
	}
	setNoStore(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

func setNoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
}
