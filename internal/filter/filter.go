// Package filter contains the gateway's interceptors. Each filter inspects
// the request and either lets the chain continue, writes a terminal response,
// or short-circuits straight to the origin. The dispatcher owns the order.
package filter

import "net/http"

type Verdict int

const (
	// Next: not my request, run the remaining filters.
	Next Verdict = iota
	// Done: a terminal response has been written.
	Done
	// Forward: stop filtering and forward to the origin now.
	Forward
)

func (v Verdict) String() string {
	switch v {
	case Done:
		return "done"
	case Forward:
		return "forward"
	default:
		return "next"
	}
}

// Filter is one interceptor in the chain. Check must be reentrant: filters
// hold no per-request state and all configuration is read-only.
type Filter interface {
	Name() string
	Check(w http.ResponseWriter, r *http.Request) Verdict
}
