package httpx

import (
	"net/http"
	"strings"
)

// IsHTMX reports whether the request was initiated by htmx (Hx-Request: true).
func IsHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Hx-Request"), "true")
}

// SetHXRedirect instructs htmx to redirect the browser to the given URL.
func SetHXRedirect(w http.ResponseWriter, url string) { w.Header().Set("Hx-Redirect", url) }

// isAJAX reports requests that expect a JSON body rather than a redirect.
func isAJAX(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		IsHTMX(r) ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}
