package filter

import (
	"io"
	"net/http"
	"strings"

	"edgegate/gateway/internal/cachepolicy"
	"edgegate/gateway/internal/config"
	"edgegate/gateway/internal/httputil"
	"edgegate/gateway/internal/metrics"
)

// AssetProxy republishes CMS-hosted binary assets under the site's own
// domain. Upstream headers are replaced, not passed through: the public
// cache contract is ours, not the CMS's.
type AssetProxy struct {
	cfg  *config.Config
	sel  *cachepolicy.Selector
	http *http.Client
}

func NewAssetProxy(cfg *config.Config, sel *cachepolicy.Selector) *AssetProxy {
	return &AssetProxy{
		cfg:  cfg,
		sel:  sel,
		http: &http.Client{Timeout: cfg.AssetTimeout()},
	}
}

func (f *AssetProxy) Name() string { return "asset_proxy" }

func (f *AssetProxy) Check(w http.ResponseWriter, r *http.Request) Verdict {
	if !strings.HasPrefix(r.URL.Path, f.cfg.Assets.Prefix) {
		return Next
	}
	logger := httputil.GetLogger(r.Context())

	id := strings.TrimPrefix(r.URL.Path, f.cfg.Assets.Prefix)
	if id == "" {
		metrics.AssetProxy.WithLabelValues("not_found").Inc()
		http.Error(w, "Asset not found", http.StatusNotFound)
		return Done
	}

	target := strings.TrimSuffix(f.cfg.Assets.UpstreamURL, "/") + "/" + id
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		metrics.AssetProxy.WithLabelValues("upstream_error").Inc()
		http.Error(w, "Error fetching asset", http.StatusBadGateway)
		return Done
	}
	resp, err := f.http.Do(req)
	if err != nil {
		logger.Error().Err(err).Str("asset", id).Msg("asset upstream fetch failed")
		metrics.AssetProxy.WithLabelValues("upstream_error").Inc()
		http.Error(w, "Error fetching asset", http.StatusBadGateway)
		return Done
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn().Int("status", resp.StatusCode).Str("asset", id).Msg("asset not found upstream")
		metrics.AssetProxy.WithLabelValues("not_found").Inc()
		http.Error(w, "Asset not found", http.StatusNotFound)
		return Done
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = f.cfg.Assets.DefaultContentType
	}
	w.Header().Set("Content-Type", ct)
	if policy, ok := f.sel.Select(r.URL.Path); ok {
		w.Header().Set("Cache-Control", policy.String())
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, resp.Body); err != nil {
		logger.Warn().Err(err).Str("asset", id).Msg("asset body streaming interrupted")
	}
	metrics.AssetProxy.WithLabelValues("hit").Inc()
	return Done
}
