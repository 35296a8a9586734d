package rest

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// corsBaselineMethods are always allowed for preflight regardless of
// configuration.
var corsBaselineMethods = []string{http.MethodGet, http.MethodHead, http.MethodPost}

// CORSPolicy matches request origins against an allow-list of patterns and
// answers preflight requests. An origin that matches no pattern is not
// blocked outright; the request simply proceeds without CORS headers and the
// browser enforces same-origin semantics.
type CORSPolicy struct {
	origins []*regexp.Regexp
	methods []string
}

// NewCORSPolicy compiles the origin patterns and normalizes the method list.
// The baseline GET/HEAD/POST methods are always included.
func NewCORSPolicy(originPatterns, methods []string) (*CORSPolicy, error) {
	p := &CORSPolicy{}
	for _, pattern := range originPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("rest: cors origin pattern %q: %w", pattern, err)
		}
		p.origins = append(p.origins, re)
	}
	seen := make(map[string]struct{})
	for _, m := range methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m == "" {
			continue
		}
		if _, ok := seen[m]; !ok {
			seen[m] = struct{}{}
			p.methods = append(p.methods, m)
		}
	}
	for _, m := range corsBaselineMethods {
		if _, ok := seen[m]; !ok {
			seen[m] = struct{}{}
			p.methods = append(p.methods, m)
		}
	}
	return p, nil
}

// AllowedMethods returns the normalized allow-method list.
func (p *CORSPolicy) AllowedMethods() []string {
	return append([]string(nil), p.methods...)
}

// handle processes a request carrying an Origin header. It reports true when
// the request was answered here (a preflight, allowed or denied) and false
// when normal processing should continue.
func (p *CORSPolicy) handle(w http.ResponseWriter, r *http.Request) bool {
	if p == nil || len(p.origins) == 0 {
		return false
	}
	origin := r.Header.Get("Origin")
	matched := false
	for _, re := range p.origins {
		if re.MatchString(origin) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Expose-Headers", "Content-Length")
	if r.Method == http.MethodOptions {
		p.preflight(w, r)
		return true
	}
	return false
}

func (p *CORSPolicy) preflight(w http.ResponseWriter, r *http.Request) {
	requested := strings.ToUpper(r.Header.Get("Access-Control-Request-Method"))
	allowed := false
	for _, m := range p.methods {
		if m == requested {
			allowed = true
			break
		}
	}
	if !allowed {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	w.Header().Set("Access-Control-Allow-Methods", strings.Join(p.methods, ", "))
	w.Header().Set("Access-Control-Max-Age", "3600")
	if headers := r.Header.Get("Access-Control-Request-Headers"); headers != "" {
		w.Header().Set("Access-Control-Allow-Headers", headers)
	}
	w.WriteHeader(http.StatusOK)
}
