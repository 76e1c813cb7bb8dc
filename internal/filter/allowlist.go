package filter

import (
	"net/http"
	"strings"
	"time"

	"edgegate/gateway/internal/config"
	"edgegate/gateway/internal/httputil"
)

// IPAllowlist gates the administrative path prefix to a static set of
// literal IPs. Any address in the forwarded-for chain may match. No header
// means an empty chain entry, which matches nothing: the filter fails
// closed.
type IPAllowlist struct {
	prefix string
	allow  map[string]struct{}
}

func NewIPAllowlist(cfg *config.Config) *IPAllowlist {
	allow := make(map[string]struct{}, len(cfg.Admin.Allow))
	for _, ip := range cfg.Admin.Allow {
		allow[ip] = struct{}{}
	}
	return &IPAllowlist{prefix: cfg.Admin.Prefix, allow: allow}
}

func (f *IPAllowlist) Name() string { return "ip_allowlist" }

func (f *IPAllowlist) Check(w http.ResponseWriter, r *http.Request) Verdict {
	if !strings.HasPrefix(r.URL.Path, f.prefix) {
		return Next
	}

	chain := httputil.ForwardedChain(r)
	for _, ip := range chain {
		if _, ok := f.allow[ip]; ok {
			// Admin traffic skips the remaining filters, notably the
			// session gate.
			return Forward
		}
	}

	logger := httputil.GetLogger(r.Context())
	logger.Warn().Str("your_ip", chain[0]).Msg("admin path denied: IP not allowlisted")
	httputil.WriteJSON(w, http.StatusForbidden, map[string]string{
		"error":     "Forbidden",
		"message":   "Your IP address is not in the whitelist.",
		"your_ip":   chain[0],
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	return Done
}
