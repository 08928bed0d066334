package middleware

import (
	"net/http"
	"strings"

	"bizdesk/internal/session"
)

// RequireSession admits requests that carry a decodable bearer token and puts
// the session on the request context. The token's signature is left to the
// backends it is forwarded to.
//
// Browsers cannot set headers on websocket handshakes, so the token may also
// arrive as the access_token query parameter.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" {
			if token := strings.TrimSpace(r.URL.Query().Get("access_token")); token != "" {
				header = "Bearer " + token
			}
		}

		if header == "" {
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header")
			return
		}

		sess, err := session.FromHeader(header)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "malformed bearer token")
			return
		}

		next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
	})
}
