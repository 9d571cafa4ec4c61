package middleware

import (
	"net/http"

	credgate "github.com/aurelline/credgate"
)

// Optional wraps next with best-effort session resolution. A valid
// token attaches the auth context for handlers that personalize their
// response; a missing or rejected token passes the request through
// anonymously instead of failing it. Handlers distinguish the two with
// [credgate.AuthFromContext].
func Optional(engine *credgate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := tokenFromRequest(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			auth, ok := engine.AuthenticateOptional(r.Context(), token)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(credgate.ContextWithAuth(r.Context(), *auth)))
		})
	}
}
