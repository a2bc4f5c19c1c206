package routes

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"koomy/portal/internal/api"
	"koomy/portal/internal/branding"
	"koomy/portal/internal/logging"
)

// RegisterUIRoutes registers the branding routes every surface reads, and
// serves the head asset files from staticDir when one is configured
func RegisterUIRoutes(r chi.Router, handlers *api.Handlers, staticDir string, paths branding.AssetPaths) {
	r.Route("/branding", func(b chi.Router) {
		b.Get("/theme", handlers.Theme())
		b.Get("/theme.css", handlers.ThemeCSS())
		b.Get("/head", handlers.Head())
	})

	if staticDir == "" {
		return
	}
	fileServer := mimeTypeMiddleware(http.FileServer(http.Dir(staticDir)))
	// the files the resolved head links point at
	seen := make(map[string]bool)
	for _, p := range []string{
		paths.Favicon, paths.ProFavicon,
		paths.AppleTouchIcon, paths.ProAppleTouchIcon,
		paths.Manifest, paths.ProManifest,
	} {
		if strings.HasPrefix(p, "/") && !seen[p] {
			seen[p] = true
			r.Handle(p, fileServer)
		}
	}
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	logging.Info("Serving head assets", "dir", staticDir)
}

// mimeTypeMiddleware wraps a file server and sets correct MIME types for
// manifests and icons
func mimeTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ext := strings.ToLower(filepath.Ext(r.URL.Path))

		switch {
		case ext == ".webmanifest", strings.Contains(r.URL.Path, "manifest") && ext == ".json":
			w.Header().Set("Content-Type", "application/manifest+json")
		case ext == ".ico":
			w.Header().Set("Content-Type", "image/x-icon")
		}

		next.ServeHTTP(w, r)
	})
}
