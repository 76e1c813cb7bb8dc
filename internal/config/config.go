package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerCfg struct {
	Listen         string `yaml:"listen"`
	ReadTimeoutMs  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs int    `yaml:"write_timeout_ms"`
}

type LoggingCfg struct {
	Level string `yaml:"level"` // info|debug
}

type SessionCfg struct {
	CookieName     string `yaml:"cookie_name"`
	CookiePath     string `yaml:"cookie_path"`
	Secure         bool   `yaml:"secure"`
	Alg            string `yaml:"alg"`
	SigningKey     string `yaml:"signing_key"` // base64url, >=16 bytes decoded
	SkewSec        int    `yaml:"skew_sec"`
	RefreshEnabled bool   `yaml:"refresh_enabled"`
}

type OAuthCfg struct {
	ClientID        string `yaml:"client_id"`
	ClientSecret    string `yaml:"client_secret"`
	RedirectURI     string `yaml:"redirect_uri"`
	TokenURL        string `yaml:"token_url"`
	TimeoutMs       int    `yaml:"timeout_ms"`
	CallbackPath    string `yaml:"callback_path"`
	LoginPath       string `yaml:"login_path"`
	ProtectedPrefix string `yaml:"protected_prefix"`
	LandingPath     string `yaml:"landing_path"`
}

type BasicAuthCfg struct {
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	Realm    string   `yaml:"realm"`
	Hosts    []string `yaml:"hosts"` // non-production hostnames gated at "/"
}

type AdminCfg struct {
	Prefix string   `yaml:"prefix"`
	Allow  []string `yaml:"allow"` // literal IPs, exact match
}

type GeoCfg struct {
	Header          string `yaml:"header"`
	Country         string `yaml:"country"`
	RedirectPath    string `yaml:"redirect_path"`
	Locale          string `yaml:"locale"`
	Cookie          string `yaml:"cookie"`
	CookieMaxAgeSec int    `yaml:"cookie_max_age_sec"`
}

type CacheCfg struct {
	LatestPath      string   `yaml:"latest_path"`
	LatestMaxAgeSec int      `yaml:"latest_max_age_sec"`
	LatestSWRSec    int      `yaml:"latest_swr_sec"`
	BlogPrefix      string   `yaml:"blog_prefix"`
	BlogMaxAgeSec   int      `yaml:"blog_max_age_sec"`
	BlogSWRSec      int      `yaml:"blog_swr_sec"`
	Exclude         []string `yaml:"exclude"` // high-churn paths with no override
	AssetMaxAgeSec  int      `yaml:"asset_max_age_sec"`
}

type AssetsCfg struct {
	Prefix             string `yaml:"prefix"`
	UpstreamURL        string `yaml:"upstream_url"`
	TimeoutMs          int    `yaml:"timeout_ms"`
	DefaultContentType string `yaml:"default_content_type"`
}

type AutomationCfg struct {
	Path       string `yaml:"path"`
	WebhookURL string `yaml:"webhook_url"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

type RewriteCfg struct {
	From         string   `yaml:"from"`
	To           string   `yaml:"to"`
	PreviewHosts []string `yaml:"preview_hosts"` // hosts where the rewrite is skipped
}

type OriginCfg struct {
	URL                 string `yaml:"url"`
	TimeoutMs           int    `yaml:"timeout_ms"`
	IdleTimeoutMs       int    `yaml:"idle_timeout_ms"`
	MaxIdleConns        int    `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int    `yaml:"max_idle_conns_per_host"`
}

type BypassCfg struct {
	Prefixes []string `yaml:"prefixes"` // cloud-function paths, forwarded untouched
}

type Config struct {
	Server     ServerCfg     `yaml:"server"`
	Logging    LoggingCfg    `yaml:"logging"`
	Session    SessionCfg    `yaml:"session"`
	OAuth      OAuthCfg      `yaml:"oauth"`
	BasicAuth  BasicAuthCfg  `yaml:"basic_auth"`
	Admin      AdminCfg      `yaml:"admin"`
	Geo        GeoCfg        `yaml:"geo"`
	Cache      CacheCfg      `yaml:"cache"`
	Assets     AssetsCfg     `yaml:"assets"`
	Automation AutomationCfg `yaml:"automation"`
	Rewrite    RewriteCfg    `yaml:"rewrite"`
	Origin     OriginCfg     `yaml:"origin"`
	Bypass     BypassCfg     `yaml:"bypass"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.ReadTimeoutMs == 0 {
		c.Server.ReadTimeoutMs = 10000
	}
	if c.Server.WriteTimeoutMs == 0 {
		c.Server.WriteTimeoutMs = 30000
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "jwt"
	}
	if c.Session.CookiePath == "" {
		c.Session.CookiePath = "/"
	}
	if c.Session.Alg == "" {
		c.Session.Alg = "HS256"
	}
	if c.Session.SkewSec == 0 {
		c.Session.SkewSec = 30
	}
	if c.OAuth.TimeoutMs == 0 {
		c.OAuth.TimeoutMs = 10000
	}
	if c.OAuth.CallbackPath == "" {
		c.OAuth.CallbackPath = "/oauth/callback"
	}
	if c.OAuth.LoginPath == "" {
		c.OAuth.LoginPath = "/login"
	}
	if c.OAuth.ProtectedPrefix == "" {
		c.OAuth.ProtectedPrefix = "/author-tools"
	}
	if c.OAuth.LandingPath == "" {
		c.OAuth.LandingPath = c.OAuth.ProtectedPrefix
	}
	if c.BasicAuth.Realm == "" {
		c.BasicAuth.Realm = "Protected Site"
	}
	if c.Admin.Prefix == "" {
		c.Admin.Prefix = "/editor-dashboard"
	}
	if c.Geo.Header == "" {
		c.Geo.Header = "visitor-ip-country"
	}
	if c.Geo.Country == "" {
		c.Geo.Country = "IN"
	}
	if c.Geo.RedirectPath == "" {
		c.Geo.RedirectPath = "/india"
	}
	if c.Geo.Locale == "" {
		c.Geo.Locale = "en"
	}
	if c.Geo.Cookie == "" {
		c.Geo.Cookie = "NEXT_LOCALE"
	}
	if c.Geo.CookieMaxAgeSec == 0 {
		c.Geo.CookieMaxAgeSec = 365 * 24 * 3600
	}
	if c.Cache.LatestPath == "" {
		c.Cache.LatestPath = "/blog/latest"
	}
	if c.Cache.LatestMaxAgeSec == 0 {
		c.Cache.LatestMaxAgeSec = 30
	}
	if c.Cache.LatestSWRSec == 0 {
		c.Cache.LatestSWRSec = 30
	}
	if c.Cache.BlogPrefix == "" {
		c.Cache.BlogPrefix = "/blog/"
	}
	if c.Cache.BlogMaxAgeSec == 0 {
		c.Cache.BlogMaxAgeSec = 600
	}
	if c.Cache.BlogSWRSec == 0 {
		c.Cache.BlogSWRSec = 300
	}
	if c.Cache.AssetMaxAgeSec == 0 {
		c.Cache.AssetMaxAgeSec = 86400
	}
	if c.Assets.Prefix == "" {
		c.Assets.Prefix = "/cdn-assets/"
	}
	if c.Assets.TimeoutMs == 0 {
		c.Assets.TimeoutMs = 10000
	}
	if c.Assets.DefaultContentType == "" {
		c.Assets.DefaultContentType = "image/png"
	}
	if c.Automation.Path == "" {
		c.Automation.Path = "/automate/trigger"
	}
	if c.Automation.TimeoutMs == 0 {
		c.Automation.TimeoutMs = 10000
	}
	if c.Rewrite.From == "" {
		c.Rewrite.From = "/latest"
	}
	if c.Rewrite.To == "" {
		c.Rewrite.To = "/blog/latest"
	}
	if c.Origin.TimeoutMs == 0 {
		c.Origin.TimeoutMs = 30000
	}
	if c.Origin.IdleTimeoutMs == 0 {
		c.Origin.IdleTimeoutMs = 90000
	}
	if c.Origin.MaxIdleConns == 0 {
		c.Origin.MaxIdleConns = 100
	}
	if c.Origin.MaxIdleConnsPerHost == 0 {
		c.Origin.MaxIdleConnsPerHost = 10
	}
}

func (c *Config) Validate() error {
	if c.Origin.URL == "" {
		return errors.New("origin.url required")
	}
	if _, err := url.Parse(c.Origin.URL); err != nil {
		return fmt.Errorf("invalid origin.url: %w", err)
	}
	key, err := base64.RawURLEncoding.DecodeString(c.Session.SigningKey)
	if err != nil {
		return fmt.Errorf("session.signing_key must be base64url: %w", err)
	}
	if len(key) < 16 {
		return errors.New("session.signing_key too short; need >=16 bytes")
	}
	switch c.Session.Alg {
	case "HS256", "HS384", "HS512":
	default:
		return errors.New("session.alg must be HS256/384/512")
	}
	if len(c.BasicAuth.Hosts) > 0 && (c.BasicAuth.Username == "" || c.BasicAuth.Password == "") {
		return errors.New("basic_auth.username and basic_auth.password required when basic_auth.hosts set")
	}
	if len(c.Admin.Allow) == 0 {
		return errors.New("admin.allow requires at least one IP")
	}
	if c.OAuth.TokenURL == "" {
		return errors.New("oauth.token_url required")
	}
	if _, err := url.Parse(c.OAuth.TokenURL); err != nil {
		return fmt.Errorf("invalid oauth.token_url: %w", err)
	}
	if c.Assets.UpstreamURL == "" {
		return errors.New("assets.upstream_url required")
	}
	if c.Automation.WebhookURL == "" {
		return errors.New("automation.webhook_url required")
	}
	return nil
}

func (c *Config) OriginTimeout() time.Duration {
	return time.Duration(c.Origin.TimeoutMs) * time.Millisecond
}

func (c *Config) AssetTimeout() time.Duration {
	return time.Duration(c.Assets.TimeoutMs) * time.Millisecond
}

func (c *Config) OAuthTimeout() time.Duration {
	return time.Duration(c.OAuth.TimeoutMs) * time.Millisecond
}

func (c *Config) AutomationTimeout() time.Duration {
	return time.Duration(c.Automation.TimeoutMs) * time.Millisecond
}

func (c *Config) SigningKeyBytes() []byte {
	b, _ := base64.RawURLEncoding.DecodeString(c.Session.SigningKey)
	return b
}
