// Package cachepolicy maps request paths to Cache-Control directives. The
// selector is pure: same path, same policy, no I/O.
package cachepolicy

import (
	"fmt"
	"strings"

	"edgegate/gateway/internal/config"
)

type Policy struct {
	MaxAgeSec int
	SWRSec    int
	Public    bool
}

func (p Policy) String() string {
	vis := "private"
	if p.Public {
		vis = "public"
	}
	if p.SWRSec > 0 {
		return fmt.Sprintf("%s, max-age=%d, stale-while-revalidate=%d", vis, p.MaxAgeSec, p.SWRSec)
	}
	return fmt.Sprintf("%s, max-age=%d", vis, p.MaxAgeSec)
}

type Selector struct {
	latestPath  string
	latest      Policy
	blogPrefix  string
	blog        Policy
	exclude     map[string]struct{}
	assetPrefix string
	asset       Policy
}

func NewSelector(cfg *config.Config) *Selector {
	s := &Selector{
		latestPath:  cfg.Cache.LatestPath,
		latest:      Policy{MaxAgeSec: cfg.Cache.LatestMaxAgeSec, SWRSec: cfg.Cache.LatestSWRSec, Public: true},
		blogPrefix:  cfg.Cache.BlogPrefix,
		blog:        Policy{MaxAgeSec: cfg.Cache.BlogMaxAgeSec, SWRSec: cfg.Cache.BlogSWRSec, Public: true},
		exclude:     make(map[string]struct{}, len(cfg.Cache.Exclude)),
		assetPrefix: cfg.Assets.Prefix,
		asset:       Policy{MaxAgeSec: cfg.Cache.AssetMaxAgeSec, Public: true},
	}
	for _, p := range cfg.Cache.Exclude {
		s.exclude[p] = struct{}{}
	}
	return s
}

// Select returns the Cache-Control policy for path, or ok=false when the
// origin's own header should pass through. Rules run in order, first match
// wins.
func (s *Selector) Select(path string) (Policy, bool) {
	if path == s.latestPath {
		return s.latest, true
	}
	if strings.HasPrefix(path, s.blogPrefix) && path != s.latestPath {
		if _, skip := s.exclude[path]; skip {
			return Policy{}, false
		}
		return s.blog, true
	}
	if strings.HasPrefix(path, s.assetPrefix) {
		return s.asset, true
	}
	return Policy{}, false
}
