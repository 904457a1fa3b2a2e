package router

import (
	"context"
	"net/http"
	"strings"

	"github.com/ovaphlow/pitchfork/service-community-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-community-go/pkg/response"
)

type segment struct {
	literal string
	capture bool
}

type route struct {
	pattern  string
	segments []segment
	methods  map[string]http.Handler
}

// Table is an ordered route table. Patterns are slash separated; a segment
// written as {name} captures one non-empty path segment. The first pattern
// that matches the path structurally wins, even if it lacks the method.
// A Table is built at startup and read-only afterwards.
type Table struct {
	routes []*route
}

func NewTable() *Table { return &Table{} }

// Handle registers h for method on pattern. A pattern registered twice keeps
// its original position.
func (t *Table) Handle(pattern, method string, h http.Handler) {
	pattern = strings.Trim(pattern, "/")
	method = strings.ToUpper(method)
	for _, rt := range t.routes {
		if rt.pattern == pattern {
			rt.methods[method] = h
			return
		}
	}
	t.routes = append(t.routes, &route{
		pattern:  pattern,
		segments: parsePattern(pattern),
		methods:  map[string]http.Handler{method: h},
	})
}

// HandleFunc is Handle for plain functions.
func (t *Table) HandleFunc(pattern, method string, h http.HandlerFunc) {
	t.Handle(pattern, method, h)
}

func parsePattern(pattern string) []segment {
	if pattern == "" {
		return nil
	}
	parts := strings.Split(pattern, "/")
	segs := make([]segment, len(parts))
	for i, p := range parts {
		if len(p) > 2 && p[0] == '{' && p[len(p)-1] == '}' {
			segs[i] = segment{capture: true}
		} else {
			segs[i] = segment{literal: p}
		}
	}
	return segs
}

// match reports whether path fits the route and returns the captures in
// pattern order.
func (rt *route) match(parts []string) ([]string, bool) {
	if len(parts) != len(rt.segments) {
		return nil, false
	}
	var params []string
	for i, seg := range rt.segments {
		switch {
		case seg.capture:
			if parts[i] == "" {
				return nil, false
			}
			params = append(params, parts[i])
		case seg.literal != parts[i]:
			return nil, false
		}
	}
	return params, true
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Lookup finds the handler for method and path. path is matched as given,
// so captures keep any percent-encoding. ok is false when no pattern
// matches or the first matching pattern has no handler for method.
func (t *Table) Lookup(method, path string) (h http.Handler, params []string, ok bool) {
	parts := splitPath(path)
	for _, rt := range t.routes {
		caps, matched := rt.match(parts)
		if !matched {
			continue
		}
		h, ok = rt.methods[strings.ToUpper(method)]
		return h, caps, ok
	}
	return nil, nil, false
}

func (t *Table) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// match on the raw path so an encoded '/' stays inside its segment
	h, params, ok := t.Lookup(r.Method, r.URL.EscapedPath())
	if !ok {
		NotFound(w, r)
		return
	}
	if len(params) > 0 {
		r = r.WithContext(context.WithValue(r.Context(), paramsKey{}, params))
	}
	h.ServeHTTP(w, r)
}

// NotFound writes the route miss envelope. Unknown paths and unsupported
// methods share it.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	response.Write(w, http.StatusNotFound, response.Envelope{
		Status: false,
		Errors: []apperr.Detail{{Message: "Route not found.", Code: apperr.RouteNotFound}},
	})
}

type paramsKey struct{}

// Params returns the captured segments of the matched pattern in order.
func Params(r *http.Request) []string {
	p, _ := r.Context().Value(paramsKey{}).([]string)
	return p
}

// Param returns the i-th capture or "" when there is none.
func Param(r *http.Request, i int) string {
	p := Params(r)
	if i < 0 || i >= len(p) {
		return ""
	}
	return p[i]
}
