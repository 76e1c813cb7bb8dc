package filter

import (
	"net/http"

	"edgegate/gateway/internal/config"
	"edgegate/gateway/internal/httputil"
)

// PathRewrite maps one literal path onto another on production hosts. Test
// and preview hostnames are exempt so they keep the origin's own routing.
type PathRewrite struct {
	from    string
	to      string
	preview map[string]struct{}
}

func NewPathRewrite(cfg *config.Config) *PathRewrite {
	preview := make(map[string]struct{}, len(cfg.Rewrite.PreviewHosts))
	for _, h := range cfg.Rewrite.PreviewHosts {
		preview[h] = struct{}{}
	}
	return &PathRewrite{from: cfg.Rewrite.From, to: cfg.Rewrite.To, preview: preview}
}

func (f *PathRewrite) Name() string { return "path_rewrite" }

func (f *PathRewrite) Check(_ http.ResponseWriter, r *http.Request) Verdict {
	if r.URL.Path != f.from {
		return Next
	}
	if _, isPreview := f.preview[hostOnly(r.Host)]; isPreview {
		return Next
	}
	logger := httputil.GetLogger(r.Context())
	logger.Debug().Str("from", f.from).Str("to", f.to).Msg("rewriting path")
	r.URL.Path = f.to
	return Forward
}
