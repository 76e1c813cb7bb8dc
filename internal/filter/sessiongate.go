package filter

import (
	"net/http"
	"strings"

	"edgegate/gateway/internal/codec"
	"edgegate/gateway/internal/config"
	"edgegate/gateway/internal/httputil"
	"edgegate/gateway/internal/metrics"
	"edgegate/gateway/internal/oauth"
)

// SessionGate protects the configured path prefix with the signed session
// cookie. Baseline contract: any non-passing verification is terminal, the
// cookie is cleared and the browser goes back to login. With refresh
// enabled, a well-signed-but-expired token gets exactly one refresh grant;
// a failed refresh is treated the same as a failed verification.
type SessionGate struct {
	cfg      *config.Config
	client   *oauth.Client
	sessions *oauth.Sessions
}

func NewSessionGate(cfg *config.Config, client *oauth.Client, sessions *oauth.Sessions) *SessionGate {
	return &SessionGate{cfg: cfg, client: client, sessions: sessions}
}

func (f *SessionGate) Name() string { return "session_gate" }

func (f *SessionGate) Check(w http.ResponseWriter, r *http.Request) Verdict {
	if !strings.HasPrefix(r.URL.Path, f.cfg.OAuth.ProtectedPrefix) {
		return Forward
	}
	logger := httputil.GetLogger(r.Context())

	c, err := r.Cookie(f.cfg.Session.CookieName)
	if err != nil || c.Value == "" {
		return f.reject(w, r, "no session cookie")
	}

	claims, ok, err := f.sessions.Verify(c.Value)
	if err != nil {
		// Corrupt token == no token.
		logger.Debug().Err(err).Msg("session verification failed")
		return f.reject(w, r, "verification failed")
	}
	if ok {
		metrics.SessionOutcome.WithLabelValues("verified").Inc()
		return Forward
	}

	// Signature good, token expired.
	if !f.cfg.Session.RefreshEnabled || claims.RefreshToken == "" {
		return f.reject(w, r, "session expired")
	}
	ts, err := f.client.Refresh(r.Context(), claims.RefreshToken)
	if err != nil {
		logger.Warn().Err(err).Msg("session refresh failed")
		return f.reject(w, r, "refresh failed")
	}
	signed, err := f.sessions.Issue(ts)
	if err != nil {
		logger.Error().Err(err).Msg("session re-issue failed")
		return f.reject(w, r, "refresh failed")
	}
	metrics.SessionOutcome.WithLabelValues("refreshed").Inc()
	http.SetCookie(w, codec.SessionCookie(f.cfg, signed))
	return Forward
}

func (f *SessionGate) reject(w http.ResponseWriter, r *http.Request, reason string) Verdict {
	logger := httputil.GetLogger(r.Context())
	logger.Info().Str("reason", reason).Msg("redirecting to login")
	metrics.SessionOutcome.WithLabelValues("rejected").Inc()
	http.SetCookie(w, codec.ClearedSessionCookie(f.cfg))
	http.Redirect(w, r, f.cfg.OAuth.LoginPath, http.StatusTemporaryRedirect)
	return Done
}
