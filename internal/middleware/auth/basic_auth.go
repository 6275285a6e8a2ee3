package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/http-server/response"
)

// BasicAuth guards admin routes. Credentials are compared in constant time.
func BasicAuth(username, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || !equal(user, username) || !equal(pass, password) {
				requireAuth(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Optional applies BasicAuth only when both credentials are configured.
func Optional(username, password string) func(http.Handler) http.Handler {
	if username == "" || password == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	return BasicAuth(username, password)
}

func equal(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func requireAuth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", `Basic realm="Billing Admin"`)
	response.Error(w, r, http.StatusUnauthorized, "Non autorisé")
}
