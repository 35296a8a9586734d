package rest

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// AcceptClause is one parsed media range from an Accept header.
type AcceptClause struct {
	Quality   float64
	MediaType string
}

// ParseAccept parses an Accept header into clauses ordered by descending
// quality. The sort is stable, so clauses of equal quality keep their header
// order. An empty header is treated as accepting anything.
func ParseAccept(header string) []AcceptClause {
	if strings.TrimSpace(header) == "" {
		return []AcceptClause{{Quality: 1, MediaType: "*/*"}}
	}
	parts := strings.Split(header, ",")
	clauses := make([]AcceptClause, 0, len(parts))
	for _, part := range parts {
		mediaType, params, _ := strings.Cut(part, ";")
		mediaType = strings.TrimSpace(mediaType)
		if mediaType == "" {
			continue
		}
		quality := 1.0
		for _, param := range strings.Split(params, ";") {
			k, v, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || strings.TrimSpace(k) != "q" {
				continue
			}
			if q, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				quality = q
			}
		}
		clauses = append(clauses, AcceptClause{Quality: quality, MediaType: mediaType})
	}
	sort.SliceStable(clauses, func(i, j int) bool { return clauses[i].Quality > clauses[j].Quality })
	return clauses
}

// Accepts reports whether the request's Accept header names contentType.
// When allowWildcard is set, a */* clause also counts as a match.
func Accepts(r *http.Request, contentType string, allowWildcard bool) bool {
	for _, clause := range ParseAccept(r.Header.Get("Accept")) {
		if clause.MediaType == contentType {
			return true
		}
		if allowWildcard && clause.MediaType == "*/*" {
			return true
		}
	}
	return false
}

// AcceptsJSON reports whether the client explicitly accepts JSON.
func AcceptsJSON(r *http.Request) bool {
	return Accepts(r, "application/json", false)
}

// AcceptsHTML reports whether the client explicitly accepts HTML.
func AcceptsHTML(r *http.Request) bool {
	return Accepts(r, "text/html", false)
}
