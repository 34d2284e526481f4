// Package web serves the embedded web app shell. Page paths fall back to
// index.html so client-side routes deep-link; access to them is decided by
// the route guard mounted in front of this handler.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed dist/*
var content embed.FS

// Handler returns an http.Handler that serves the embedded SPA assets.
func Handler() (http.Handler, error) {
	fsys, err := fs.Sub(content, "dist")
	if err != nil {
		return nil, fmt.Errorf("loading embedded web assets: %w", err)
	}

	indexBytes, err := fs.ReadFile(fsys, "index.html")
	if err != nil {
		return nil, fmt.Errorf("reading embedded index.html: %w", err)
	}

	static := http.FileServer(http.FS(fsys))

	serveIndex := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		// The shell depends on the session; never let a shared cache keep it.
		w.Header().Set("Cache-Control", "no-store")
		w.Write(indexBytes)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleanPath := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if cleanPath == "." || cleanPath == "" || cleanPath == "index.html" {
			serveIndex(w, r)
			return
		}

		if info, err := fs.Stat(fsys, cleanPath); err == nil && !info.IsDir() {
			static.ServeHTTP(w, r)
			return
		}

		// BrowserRouter deep-link fallback.
		serveIndex(w, r)
	}), nil
}
