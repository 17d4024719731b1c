package httpx

import (
	"io/fs"
	"log"
	"net/http"
	"regexp"

	portal "github.com/taxlink/partner-portal"
)

// staticAssets serves /static/* files.
// In dev mode the files come from disk so edits show up without a rebuild;
// production builds serve from the embedded filesystem.
func staticAssets(isDev bool) http.Handler {
	if isDev {
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	}

	sub, err := fs.Sub(portal.StaticFS, "static")
	if err != nil {
		log.Printf("failed to create sub-filesystem for static assets: %v", err)
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(sub))))
}

// hashedFilePattern matches content-hashed bundle names (app.abc12345.js).
var hashedFilePattern = regexp.MustCompile(`\.[a-f0-9]{8}\.(?:js|css)(?:\.map)?$`)

// staticWithCacheHeaders adds cache headers appropriate to the asset kind:
// content-hashed files never change, everything else must revalidate.
func staticWithCacheHeaders(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hashedFilePattern.MatchString(r.URL.Path) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}
		handler.ServeHTTP(w, r)
	})
}
