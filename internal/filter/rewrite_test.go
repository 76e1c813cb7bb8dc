package filter

import (
	"net/http/httptest"
	"testing"
)

func TestPathRewrite_ProductionHost(t *testing.T) {
	f := NewPathRewrite(mockConfig())

	r := httptest.NewRequest("GET", "http://example.com/latest", nil)
	v, _ := check(t, f, r)
	if v != Forward {
		t.Fatalf("verdict = %v, want Forward", v)
	}
	if r.URL.Path != "/blog/latest" {
		t.Errorf("path = %q, want /blog/latest", r.URL.Path)
	}
}

func TestPathRewrite_PreviewHostSkipped(t *testing.T) {
	f := NewPathRewrite(mockConfig())

	r := httptest.NewRequest("GET", "http://staging.example.com/latest", nil)
	v, _ := check(t, f, r)
	if v != Next {
		t.Fatalf("verdict = %v, want Next", v)
	}
	if r.URL.Path != "/latest" {
		t.Errorf("preview host path must stay untouched, got %q", r.URL.Path)
	}
}

func TestPathRewrite_OtherPaths(t *testing.T) {
	f := NewPathRewrite(mockConfig())

	r := httptest.NewRequest("GET", "http://example.com/latest/sub", nil)
	if v, _ := check(t, f, r); v != Next {
		t.Error("only the literal path is rewritten")
	}
}

func TestBypass_Prefixes(t *testing.T) {
	f := NewBypass(mockConfig())

	r := httptest.NewRequest("GET", "http://example.com/api/debug", nil)
	if v, _ := check(t, f, r); v != Forward {
		t.Error("bypass prefix must forward unmodified")
	}
	r = httptest.NewRequest("GET", "http://example.com/api/cachepriming/run", nil)
	if v, _ := check(t, f, r); v != Forward {
		t.Error("bypass prefix must match by prefix")
	}
	r = httptest.NewRequest("GET", "http://example.com/blog/latest", nil)
	if v, _ := check(t, f, r); v != Next {
		t.Error("other paths continue down the chain")
	}
}

func TestStaticBypass(t *testing.T) {
	f := NewStaticBypass(mockConfig())

	for _, p := range []string{"/_next/static/chunk.js", "/favicon.ico", "/login"} {
		r := httptest.NewRequest("GET", "http://example.com"+p, nil)
		if v, _ := check(t, f, r); v != Forward {
			t.Errorf("%s must forward without auth", p)
		}
	}
	r := httptest.NewRequest("GET", "http://example.com/author-tools", nil)
	if v, _ := check(t, f, r); v != Next {
		t.Error("protected paths continue down the chain")
	}
}
