package filter

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"edgegate/gateway/internal/codec"
	"edgegate/gateway/internal/config"
	"edgegate/gateway/internal/httputil"
)

// BasicAuth password-protects the site root on non-production hostnames.
// This is a coarse staging gate, not a production authentication system:
// comparison is exact-string against one configured pair.
type BasicAuth struct {
	cfg   *config.Config
	dec   codec.Base64
	hosts map[string]struct{}
}

func NewBasicAuth(cfg *config.Config, dec codec.Base64) *BasicAuth {
	hosts := make(map[string]struct{}, len(cfg.BasicAuth.Hosts))
	for _, h := range cfg.BasicAuth.Hosts {
		hosts[h] = struct{}{}
	}
	return &BasicAuth{cfg: cfg, dec: dec, hosts: hosts}
}

func (f *BasicAuth) Name() string { return "basic_auth" }

func (f *BasicAuth) Check(w http.ResponseWriter, r *http.Request) Verdict {
	if r.URL.Path != "/" {
		return Next
	}
	if _, gated := f.hosts[hostOnly(r.Host)]; !gated {
		return Next
	}

	auth := r.Header.Get("Authorization")
	if auth == "" {
		return f.challenge(w, "Unauthorized")
	}
	user, pass, ok := codec.ParseBasicAuth(f.dec, auth)
	if !ok {
		return f.challenge(w, "Invalid credentials")
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(f.cfg.BasicAuth.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(f.cfg.BasicAuth.Password)) == 1
	if !userOK || !passOK {
		return f.challenge(w, "Invalid credentials")
	}

	logger := httputil.GetLogger(r.Context())
	logger.Debug().Str("user", user).Msg("basic auth accepted")
	return Next
}

// challenge answers 401 with the WWW-Authenticate header browsers need to
// raise their native credential prompt.
func (f *BasicAuth) challenge(w http.ResponseWriter, body string) Verdict {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", f.cfg.BasicAuth.Realm))
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprint(w, body)
	return Done
}

func hostOnly(hostport string) string {
	for i := 0; i < len(hostport); i++ {
		if hostport[i] == ':' {
			return hostport[:i]
		}
	}
	return hostport
}
