package middleware

import (
	"net/http"

	credgate "github.com/aurelline/credgate"
)

// CookieName is the session cookie the guards read when no bearer
// header is present.
const CookieName = "jwt"

// SetTokenCookie writes the session token as an HttpOnly cookie whose
// lifetime matches the token's TTL. In production mode the cookie is
// Secure with SameSite=None so it survives cross-site frontends;
// otherwise SameSite=Lax keeps local development on plain HTTP working.
func SetTokenCookie(w http.ResponseWriter, engine *credgate.Engine, token string) {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(engine.TokenTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if engine.ProductionMode() {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, cookie)
}

// ClearTokenCookie expires the session cookie, logging the browser out.
func ClearTokenCookie(w http.ResponseWriter, engine *credgate.Engine) {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if engine.ProductionMode() {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, cookie)
}
