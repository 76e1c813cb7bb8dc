package filter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"edgegate/gateway/internal/cachepolicy"
	"edgegate/gateway/internal/config"
	"edgegate/gateway/internal/metrics"
	"edgegate/gateway/internal/oauth"
	"edgegate/gateway/internal/token"
)

func init() {
	metrics.MustRegister()
}

func mockConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Session.CookieName = "jwt"
	cfg.Session.CookiePath = "/"
	cfg.Session.Alg = "HS256"
	cfg.Session.SkewSec = 0
	cfg.OAuth.ClientID = "cid"
	cfg.OAuth.ClientSecret = "csecret"
	cfg.OAuth.RedirectURI = "https://example.com/oauth/callback"
	cfg.OAuth.TokenURL = "http://127.0.0.1:0/token" // tests override per case
	cfg.OAuth.TimeoutMs = 2000
	cfg.OAuth.CallbackPath = "/oauth/callback"
	cfg.OAuth.LoginPath = "/login"
	cfg.OAuth.ProtectedPrefix = "/author-tools"
	cfg.OAuth.LandingPath = "/author-tools"
	cfg.BasicAuth.Username = "staging"
	cfg.BasicAuth.Password = "hunter2"
	cfg.BasicAuth.Realm = "Protected Site"
	cfg.BasicAuth.Hosts = []string{"staging.example.com"}
	cfg.Admin.Prefix = "/editor-dashboard"
	cfg.Admin.Allow = []string{"127.0.0.1", "::1", "203.0.113.7"}
	cfg.Geo.Header = "visitor-ip-country"
	cfg.Geo.Country = "IN"
	cfg.Geo.RedirectPath = "/india"
	cfg.Geo.Locale = "en"
	cfg.Geo.Cookie = "NEXT_LOCALE"
	cfg.Geo.CookieMaxAgeSec = 365 * 24 * 3600
	cfg.Cache.LatestPath = "/blog/latest"
	cfg.Cache.LatestMaxAgeSec = 30
	cfg.Cache.LatestSWRSec = 30
	cfg.Cache.BlogPrefix = "/blog/"
	cfg.Cache.BlogMaxAgeSec = 600
	cfg.Cache.BlogSWRSec = 300
	cfg.Cache.AssetMaxAgeSec = 86400
	cfg.Assets.Prefix = "/cdn-assets/"
	cfg.Assets.TimeoutMs = 2000
	cfg.Assets.DefaultContentType = "image/png"
	cfg.Automation.Path = "/automate/trigger"
	cfg.Automation.WebhookURL = "http://127.0.0.1:0/hook" // tests override per case
	cfg.Automation.TimeoutMs = 2000
	cfg.Rewrite.From = "/latest"
	cfg.Rewrite.To = "/blog/latest"
	cfg.Rewrite.PreviewHosts = []string{"staging.example.com"}
	cfg.Bypass.Prefixes = []string{"/api/debug", "/api/cachepriming"}
	return cfg
}

func mockSessions(t *testing.T, cfg *config.Config) (*oauth.Client, *oauth.Sessions) {
	t.Helper()
	signer, err := token.NewSigner(cfg.Session.Alg, []byte("supersecretkeythatisatleast16byteslong"), cfg.Session.SkewSec)
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	return oauth.NewClient(cfg), oauth.NewSessions(signer)
}

func mockSelector(cfg *config.Config) *cachepolicy.Selector {
	return cachepolicy.NewSelector(cfg)
}

// check runs a filter against a recorded request and returns the verdict and
// recorder for assertions.
func check(t *testing.T, f Filter, r *http.Request) (Verdict, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	return f.Check(w, r), w
}

func findCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
