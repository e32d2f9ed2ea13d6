package http

import (
	"net/http"
	"time"
)

// SessionCookie is the name of the cookie carrying the raw session token.
const SessionCookie = "grst_session"

// CookieConfig controls how the session cookie is written. Secure is only
// off for local development over plain HTTP.
type CookieConfig struct {
	Secure bool
	TTL    time.Duration
}

func (c CookieConfig) write(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Set writes the session cookie with the configured TTL as max-age, keeping
// the client-held lifetime in lockstep with the server-side expiry.
func (c CookieConfig) Set(w http.ResponseWriter, token string) {
	c.write(w, token, int(c.TTL/time.Second))
}

// Clear expires the session cookie immediately.
func (c CookieConfig) Clear(w http.ResponseWriter) {
	c.write(w, "", -1)
}

// readSessionToken returns the raw token from the request cookie, or "".
func readSessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
