package filter

import (
	"net/http"

	"edgegate/gateway/internal/codec"
	"edgegate/gateway/internal/config"
)

// GeoRedirect sends root-path visitors from one configured country to a
// region-specific path, pinning a locale cookie so later requests skip geo
// evaluation. The country header is injected by the network edge; it is not
// client-controlled. Every other country/path combination passes through
// unmodified.
type GeoRedirect struct {
	cfg *config.Config
}

func NewGeoRedirect(cfg *config.Config) *GeoRedirect {
	return &GeoRedirect{cfg: cfg}
}

func (f *GeoRedirect) Name() string { return "geo_redirect" }

func (f *GeoRedirect) Check(w http.ResponseWriter, r *http.Request) Verdict {
	if r.URL.Path != "/" {
		return Next
	}
	if r.Header.Get(f.cfg.Geo.Header) != f.cfg.Geo.Country {
		return Next
	}
	http.SetCookie(w, codec.LocaleCookie(f.cfg))
	http.Redirect(w, r, f.cfg.Geo.RedirectPath, http.StatusTemporaryRedirect)
	return Done
}
