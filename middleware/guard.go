package middleware

import (
	"errors"
	"net/http"
	"strings"

	credgate "github.com/aurelline/credgate"
)

// Protect wraps next with mandatory session enforcement. The token is
// read from the Authorization bearer header first, then from the
// session cookie. Requests without a valid, active session never reach
// next.
//
// Frozen and closed accounts get a distinguishable 401 body; everything
// else collapses to "unauthorized" so the response leaks nothing about
// why a token was rejected.
func Protect(engine *credgate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := tokenFromRequest(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			auth, err := engine.Authenticate(r.Context(), token)
			if err != nil {
				status, msg := rejectResponse(err)
				http.Error(w, msg, status)
				return
			}

			next.ServeHTTP(w, r.WithContext(credgate.ContextWithAuth(r.Context(), *auth)))
		})
	}
}

func rejectResponse(err error) (int, string) {
	switch {
	case errors.Is(err, credgate.ErrAccountFrozen):
		return http.StatusUnauthorized, "account is frozen"
	case errors.Is(err, credgate.ErrAccountClosed):
		return http.StatusUnauthorized, "account is closed"
	case errors.Is(err, credgate.ErrDependencyUnavailable):
		return http.StatusServiceUnavailable, "service unavailable"
	default:
		return http.StatusUnauthorized, "unauthorized"
	}
}

// tokenFromRequest prefers the bearer header over the cookie so API
// clients and browsers can share endpoints.
func tokenFromRequest(r *http.Request) (string, bool) {
	if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
		return token, true
	}

	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
