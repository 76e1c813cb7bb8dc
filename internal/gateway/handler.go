// Package gateway wires the interceptor chain and forwards whatever survives
// it to the origin application.
package gateway

import (
	"context"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"edgegate/gateway/internal/cachepolicy"
	"edgegate/gateway/internal/codec"
	"edgegate/gateway/internal/config"
	"edgegate/gateway/internal/filter"
	internalhttp "edgegate/gateway/internal/httputil"
	"edgegate/gateway/internal/metrics"
	"edgegate/gateway/internal/oauth"
	"edgegate/gateway/internal/token"
)

type policyKey struct{}

// Handler evaluates the ordered filter chain and forwards to the origin with
// the selected cache policy applied. The chain is data: order lives here and
// nowhere else.
type Handler struct {
	cfg      *config.Config
	selector *cachepolicy.Selector
	chain    []filter.Filter
	origin   *httputil.ReverseProxy
}

// New builds the full gateway: codec, session signer, oauth client and the
// filter chain in its fixed precedence order.
func New(cfg *config.Config) (*Handler, error) {
	signer, err := token.NewSigner(cfg.Session.Alg, cfg.SigningKeyBytes(), cfg.Session.SkewSec)
	if err != nil {
		return nil, err
	}
	client := oauth.NewClient(cfg)
	sessions := oauth.NewSessions(signer)
	selector := cachepolicy.NewSelector(cfg)
	dec := codec.NewStd()

	chain := []filter.Filter{
		filter.NewBypass(cfg),
		filter.NewBasicAuth(cfg, dec),
		filter.NewGeoRedirect(cfg),
		filter.NewAutomationTrigger(cfg),
		filter.NewIPAllowlist(cfg),
		filter.NewPathRewrite(cfg),
		filter.NewAssetProxy(cfg, selector),
		filter.NewStaticBypass(cfg),
		filter.NewCallback(cfg, client, sessions),
		filter.NewSessionGate(cfg, client, sessions),
	}

	h := &Handler{cfg: cfg, selector: selector, chain: chain}
	if err := h.buildOriginProxy(); err != nil {
		return nil, err
	}
	return h, nil
}

// Chain exposes the filter order for inspection and tests.
func (h *Handler) Chain() []filter.Filter {
	return h.chain
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RequestDuration.Observe(time.Since(start).Seconds())
	}()

	// Cache policy is computed once per request; the origin forwarder
	// applies it after the chain settles.
	if policy, ok := h.selector.Select(r.URL.Path); ok {
		r = r.WithContext(context.WithValue(r.Context(), policyKey{}, policy))
	}

	for _, f := range h.chain {
		v := f.Check(w, r)
		metrics.FilterVerdict.WithLabelValues(f.Name(), v.String()).Inc()
		switch v {
		case filter.Done:
			return
		case filter.Forward:
			h.origin.ServeHTTP(w, r)
			return
		}
	}
	h.origin.ServeHTTP(w, r)
}

func (h *Handler) buildOriginProxy() error {
	target, err := url.Parse(h.cfg.Origin.URL)
	if err != nil {
		return err
	}
	proxy := httputil.NewSingleHostReverseProxy(target)

	timeout := h.cfg.OriginTimeout()
	proxy.Transport = &http.Transport{
		MaxIdleConns:          h.cfg.Origin.MaxIdleConns,
		MaxIdleConnsPerHost:   h.cfg.Origin.MaxIdleConnsPerHost,
		IdleConnTimeout:       time.Duration(h.cfg.Origin.IdleTimeoutMs) * time.Millisecond,
		ResponseHeaderTimeout: timeout,
		TLSHandshakeTimeout:   timeout / 3,
		ExpectContinueTimeout: 1 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2: true,
	}

	originalDirector := proxy.Director
	proxy.Director = func(req *http.Request) {
		originalDirector(req)
		if requestID := internalhttp.GetRequestID(req.Context()); requestID != "" {
			req.Header.Set("X-Request-ID", requestID)
		}
	}

	// The selected policy overrides the origin's caching header; without a
	// selection the origin's own header passes through unchanged.
	proxy.ModifyResponse = func(resp *http.Response) error {
		if policy, ok := resp.Request.Context().Value(policyKey{}).(cachepolicy.Policy); ok {
			resp.Header.Set("Cache-Control", policy.String())
		}
		return nil
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger := internalhttp.GetLogger(r.Context())
		if err == context.Canceled {
			logger.Debug().Msg("origin request canceled")
			metrics.OriginErrors.WithLabelValues("canceled").Inc()
			return
		}
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			logger.Warn().Err(err).Msg("origin timeout")
			metrics.OriginErrors.WithLabelValues("timeout").Inc()
			http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
			return
		}
		logger.Error().Err(err).Msg("origin error")
		metrics.OriginErrors.WithLabelValues("other").Inc()
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	h.origin = proxy
	return nil
}
