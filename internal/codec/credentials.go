package codec

import (
	"net/http"
	"strings"

	"edgegate/gateway/internal/config"
)

// ParseBasicAuth decodes an "Authorization: Basic <base64>" header value into
// a credential pair. ok is false for any malformed header; the reason is
// deliberately not distinguished so the caller can answer with one uniform
// challenge.
func ParseBasicAuth(dec Base64, header string) (user, pass string, ok bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Basic" {
		return "", "", false
	}
	raw, err := dec.DecodeString(parts[1])
	if err != nil {
		return "", "", false
	}
	decoded := string(raw)
	idx := strings.IndexByte(decoded, ':')
	if idx < 0 {
		return "", "", false
	}
	return decoded[:idx], decoded[idx+1:], true
}

// SessionCookie builds the signed-session cookie. HttpOnly always; the
// browser is the only store for the token.
func SessionCookie(cfg *config.Config, value string) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.Session.CookieName,
		Value:    value,
		Path:     cfg.Session.CookiePath,
		Secure:   cfg.Session.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearedSessionCookie expires the session cookie on the client.
func ClearedSessionCookie(cfg *config.Config) *http.Cookie {
	c := SessionCookie(cfg, "")
	c.MaxAge = -1
	return c
}

// LocaleCookie carries the visitor's locale preference so later requests skip
// geo evaluation.
func LocaleCookie(cfg *config.Config) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.Geo.Cookie,
		Value:    cfg.Geo.Locale,
		Path:     "/",
		MaxAge:   cfg.Geo.CookieMaxAgeSec,
		SameSite: http.SameSiteLaxMode,
	}
}
