package filter

import (
	"net/http"
	"strings"

	"edgegate/gateway/internal/config"
)

// Bypass forwards designated cloud-function prefixes untouched, before any
// other gateway logic runs. Those paths have their own handlers behind the
// origin.
type Bypass struct {
	prefixes []string
}

func NewBypass(cfg *config.Config) *Bypass {
	return &Bypass{prefixes: cfg.Bypass.Prefixes}
}

func (f *Bypass) Name() string { return "bypass" }

func (f *Bypass) Check(_ http.ResponseWriter, r *http.Request) Verdict {
	for _, p := range f.prefixes {
		if strings.HasPrefix(r.URL.Path, p) {
			return Forward
		}
	}
	return Next
}

// StaticBypass forwards framework static assets and the login page with no
// auth check. The login page must stay publicly reachable or nobody could
// ever start the OAuth flow.
type StaticBypass struct {
	loginPath string
}

func NewStaticBypass(cfg *config.Config) *StaticBypass {
	return &StaticBypass{loginPath: cfg.OAuth.LoginPath}
}

func (f *StaticBypass) Name() string { return "static_bypass" }

func (f *StaticBypass) Check(_ http.ResponseWriter, r *http.Request) Verdict {
	p := r.URL.Path
	if strings.HasPrefix(p, "/_next/") || p == "/favicon.ico" || p == f.loginPath {
		return Forward
	}
	return Next
}
