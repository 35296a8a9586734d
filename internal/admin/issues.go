package admin

import (
	"net/http"

	"github.com/ostiary-dev/ostiary/internal/rest"
)

// NewIssuesResource builds the read-only issue log resource.
func NewIssuesResource(deps Deps) *rest.Resource {
	res := rest.NewResource("Issues")
	res.RequireAuth = true
	res.HTML(func(w http.ResponseWriter, r *http.Request) (any, error) {
		return map[string]any{"Issues": deps.Database.Issues.List()}, nil
	})
	res.JSON(func(w http.ResponseWriter, r *http.Request) (any, error) {
		return deps.Database.Issues.List(), nil
	})
	return res
}
