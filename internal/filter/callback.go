package filter

import (
	"net/http"

	"edgegate/gateway/internal/codec"
	"edgegate/gateway/internal/config"
	"edgegate/gateway/internal/httputil"
	"edgegate/gateway/internal/metrics"
	"edgegate/gateway/internal/oauth"
)

// Callback completes the authorization-code flow: exchange the code, wrap
// the token set into a signed session cookie, and land the browser on the
// protected surface. A callback without a code is a client error, not a
// pass-through.
type Callback struct {
	cfg      *config.Config
	client   *oauth.Client
	sessions *oauth.Sessions
}

func NewCallback(cfg *config.Config, client *oauth.Client, sessions *oauth.Sessions) *Callback {
	return &Callback{cfg: cfg, client: client, sessions: sessions}
}

func (f *Callback) Name() string { return "oauth_callback" }

func (f *Callback) Check(w http.ResponseWriter, r *http.Request) Verdict {
	if r.URL.Path != f.cfg.OAuth.CallbackPath {
		return Next
	}
	logger := httputil.GetLogger(r.Context())

	code := r.URL.Query().Get("code")
	if code == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing code parameter"})
		return Done
	}

	ts, err := f.client.Exchange(r.Context(), code)
	if err != nil {
		// Hard failure by design: a broken token endpoint is
		// misconfiguration, not a per-request condition.
		logger.Error().Err(err).Msg("authorization code exchange failed")
		metrics.SessionOutcome.WithLabelValues("rejected").Inc()
		httputil.WriteJSON(w, http.StatusBadGateway, map[string]string{"error": "Token exchange failed"})
		return Done
	}

	signed, err := f.sessions.Issue(ts)
	if err != nil {
		logger.Error().Err(err).Msg("session token signing failed")
		metrics.SessionOutcome.WithLabelValues("rejected").Inc()
		httputil.WriteJSON(w, http.StatusBadGateway, map[string]string{"error": "Session issuance failed"})
		return Done
	}

	metrics.SessionOutcome.WithLabelValues("issued").Inc()
	http.SetCookie(w, codec.SessionCookie(f.cfg, signed))
	http.Redirect(w, r, f.cfg.OAuth.LandingPath, http.StatusTemporaryRedirect)
	return Done
}
