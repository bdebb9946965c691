// SPDX-License-Identifier: MPL-2.0

package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// siteHandler serves the built site from dir: files as-is, directories via
// their index.html, no directory listings.
func siteHandler(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		// Clean the URL path into a safe relative one; path.Clean on a
		// rooted path cannot escape upward.
		rel := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if rel == "" {
			rel = "index.html"
		}

		full := filepath.Join(dir, filepath.FromSlash(rel))
		info, err := os.Stat(full)
		if err == nil && info.IsDir() {
			// Canonicalize directory URLs so relative links resolve.
			if !strings.HasSuffix(r.URL.Path, "/") {
				http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
				return
			}
			full = filepath.Join(full, "index.html")
			info, err = os.Stat(full)
		}
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, full)
	})
}
