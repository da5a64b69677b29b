package server

import (
	"net/http"
	"strings"

	"github.com/kangruixiang/curator/internal/content"
)

const localPocketBase = content.LocalOrigin

// ContentSecurityPolicy builds the policy that lets pages load files and
// realtime streams from the PocketBase instance browsers reach at publicURL.
func ContentSecurityPolicy(publicURL string) string {
	pb := strings.TrimRight(publicURL, "/")
	directives := []string{
		"default-src 'self'",
		"connect-src 'self' " + pb,
		"img-src 'self' https://i.ytimg.com data: " + localPocketBase + " " + pb + " blob:" + pb,
		"script-src 'self' 'unsafe-inline'",
		"style-src 'self' 'unsafe-inline' " + localPocketBase + " https://fonts.googleapis.com/",
		"font-src 'self' data: " + localPocketBase + "  https://fonts.googleapis.com",
		"object-src 'none'",
		"frame-ancestors 'none'",
		"frame-src 'self' https://www.youtube.com https://www.youtube-nocookie.com " + localPocketBase,
	}
	return strings.Join(directives, "; ")
}

func cspMiddleware(next http.Handler, publicURL string) http.Handler {
	policy := ContentSecurityPolicy(publicURL)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", policy)
		next.ServeHTTP(w, r)
	})
}

func originSet(origins []string) map[string]bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return allowed
}

func corsMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	allowed := originSet(allowedOrigins)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
