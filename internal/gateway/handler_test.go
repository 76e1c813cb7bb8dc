package gateway

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"edgegate/gateway/internal/config"
	"edgegate/gateway/internal/metrics"
)

func init() {
	metrics.MustRegister()
}

func mockConfig(originURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Origin.URL = originURL
	cfg.Origin.TimeoutMs = 2000
	cfg.Origin.IdleTimeoutMs = 2000
	cfg.Origin.MaxIdleConns = 10
	cfg.Origin.MaxIdleConnsPerHost = 10
	cfg.Session.CookieName = "jwt"
	cfg.Session.CookiePath = "/"
	cfg.Session.Alg = "HS256"
	cfg.Session.SigningKey = base64.RawURLEncoding.EncodeToString([]byte("supersecretkeythatisatleast16byteslong"))
	cfg.OAuth.TokenURL = "http://127.0.0.1:0/token"
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
	cfg.Admin.Allow = []string{"127.0.0.1"}
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
	cfg.Assets.UpstreamURL = "http://127.0.0.1:0"
	cfg.Assets.TimeoutMs = 2000
	cfg.Assets.DefaultContentType = "image/png"
	cfg.Automation.Path = "/automate/trigger"
	cfg.Automation.WebhookURL = "http://127.0.0.1:0/hook"
	cfg.Automation.TimeoutMs = 2000
	cfg.Rewrite.From = "/latest"
	cfg.Rewrite.To = "/blog/latest"
	cfg.Rewrite.PreviewHosts = []string{"staging.example.com"}
	cfg.Bypass.Prefixes = []string{"/api/debug"}
	return cfg
}

func mockOrigin(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "origin-header")
		w.Header().Set("X-Origin-Path", r.URL.Path)
		w.Write([]byte("origin"))
	}))
}

func TestHandler_ChainOrder(t *testing.T) {
	origin := mockOrigin(t)
	defer origin.Close()

	h, err := New(mockConfig(origin.URL))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	want := []string{
		"bypass",
		"basic_auth",
		"geo_redirect",
		"automation_trigger",
		"ip_allowlist",
		"path_rewrite",
		"asset_proxy",
		"static_bypass",
		"oauth_callback",
		"session_gate",
	}
	chain := h.Chain()
	if len(chain) != len(want) {
		t.Fatalf("chain has %d filters, want %d", len(chain), len(want))
	}
	for i, f := range chain {
		if f.Name() != want[i] {
			t.Errorf("chain[%d] = %s, want %s", i, f.Name(), want[i])
		}
	}
}

func TestHandler_PublicPathPassesThrough(t *testing.T) {
	origin := mockOrigin(t)
	defer origin.Close()

	h, _ := New(mockConfig(origin.URL))
	r := httptest.NewRequest("GET", "http://example.com/about", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != 200 || w.Body.String() != "origin" {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
	// No policy selected: the origin's own caching header survives.
	if got := w.Header().Get("Cache-Control"); got != "origin-header" {
		t.Errorf("Cache-Control = %q, want origin's own", got)
	}
}

func TestHandler_BlogPathsGetPolicy(t *testing.T) {
	origin := mockOrigin(t)
	defer origin.Close()

	h, _ := New(mockConfig(origin.URL))
	cases := []struct {
		path string
		want string
	}{
		{"/blog/latest", "public, max-age=30, stale-while-revalidate=30"},
		{"/blog/ai", "public, max-age=600, stale-while-revalidate=300"},
	}
	for _, tc := range cases {
		r := httptest.NewRequest("GET", "http://example.com"+tc.path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if got := w.Header().Get("Cache-Control"); got != tc.want {
			t.Errorf("%s: Cache-Control = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestHandler_ProtectedPathWithoutSession(t *testing.T) {
	origin := mockOrigin(t)
	defer origin.Close()

	h, _ := New(mockConfig(origin.URL))
	r := httptest.NewRequest("GET", "http://example.com/author-tools", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != 307 || w.Header().Get("Location") != "/login" {
		t.Errorf("status=%d location=%q, want 307 /login", w.Code, w.Header().Get("Location"))
	}
}

func TestHandler_AdminDeniedBeforeSessionGate(t *testing.T) {
	origin := mockOrigin(t)
	defer origin.Close()

	h, _ := New(mockConfig(origin.URL))
	r := httptest.NewRequest("GET", "http://example.com/editor-dashboard", nil)
	r.Header.Set("X-Forwarded-For", "9.9.9.9")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != 403 {
		t.Errorf("status = %d, want 403 from the allowlist, not a login redirect", w.Code)
	}
}

func TestHandler_AdminAllowedSkipsOAuth(t *testing.T) {
	origin := mockOrigin(t)
	defer origin.Close()

	h, _ := New(mockConfig(origin.URL))
	r := httptest.NewRequest("GET", "http://example.com/editor-dashboard", nil)
	r.Header.Set("X-Forwarded-For", "127.0.0.1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != 200 || w.Body.String() != "origin" {
		t.Errorf("allowlisted admin request must reach the origin: status=%d", w.Code)
	}
}

func TestHandler_RewriteReachesOriginWithNewPath(t *testing.T) {
	origin := mockOrigin(t)
	defer origin.Close()

	h, _ := New(mockConfig(origin.URL))
	r := httptest.NewRequest("GET", "http://example.com/latest", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if got := w.Header().Get("X-Origin-Path"); got != "/blog/latest" {
		t.Errorf("origin saw %q, want /blog/latest", got)
	}
}

func TestHandler_LoginBypassesSessionGate(t *testing.T) {
	origin := mockOrigin(t)
	defer origin.Close()

	h, _ := New(mockConfig(origin.URL))
	r := httptest.NewRequest("GET", "http://example.com/login", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != 200 {
		t.Errorf("login page must always be reachable: status=%d", w.Code)
	}
}

func TestHandler_BypassPrefixSkipsEverything(t *testing.T) {
	origin := mockOrigin(t)
	defer origin.Close()

	cfg := mockConfig(origin.URL)
	h, _ := New(cfg)

	// Even on a basic-auth-gated host, the cloud-function prefix forwards.
	r := httptest.NewRequest("GET", "http://staging.example.com/api/debug", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != 200 || w.Body.String() != "origin" {
		t.Errorf("bypass prefix must reach the origin: status=%d", w.Code)
	}
}

func TestHandler_OriginDown(t *testing.T) {
	origin := mockOrigin(t)
	origin.Close() // connection refused

	h, _ := New(mockConfig(origin.URL))
	r := httptest.NewRequest("GET", "http://example.com/about", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != 502 {
		t.Errorf("status = %d, want 502 when the origin is unreachable", w.Code)
	}
}
