package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"edgegate/gateway/internal/config"
	"edgegate/gateway/internal/httputil"
	"edgegate/gateway/internal/metrics"
)

// AutomationTrigger accepts POSTs on the trigger endpoint and relays them to
// the external automation webhook. The webhook's answer is logged but never
// affects the acknowledgement; retries, if any, belong to the automation
// service.
type AutomationTrigger struct {
	cfg  *config.Config
	http *http.Client
}

func NewAutomationTrigger(cfg *config.Config) *AutomationTrigger {
	return &AutomationTrigger{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.AutomationTimeout()},
	}
}

func (f *AutomationTrigger) Name() string { return "automation_trigger" }

func (f *AutomationTrigger) Check(w http.ResponseWriter, r *http.Request) Verdict {
	if r.URL.Path != f.cfg.Automation.Path {
		return Next
	}
	if r.Method != http.MethodPost {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return Done
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing path parameter"})
		return Done
	}

	logger := httputil.GetLogger(r.Context())
	body, _ := json.Marshal(map[string]string{"path": path})
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, f.cfg.Automation.WebhookURL, bytes.NewReader(body))
	if err != nil {
		logger.Error().Err(err).Msg("building automation webhook request")
	} else {
		req.Header.Set("Content-Type", "application/json")
		resp, err := f.http.Do(req)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("automation webhook call failed")
		} else {
			resp.Body.Close()
			logger.Info().Int("status", resp.StatusCode).Str("path", path).Msg("automation webhook triggered")
		}
	}

	metrics.AutomationTriggers.Inc()
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Automate triggered for %s", path),
	})
	return Done
}
