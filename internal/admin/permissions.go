package admin

import (
	"net/http"

	"github.com/ostiary-dev/ostiary/internal/rest"
)

// NewPermissionsResource builds the read-only permission enumeration. It
// lists every permission the application has registered or ever checked.
func NewPermissionsResource(deps Deps) *rest.Resource {
	res := rest.NewResource("Permissions")
	res.RequireAuth = true
	res.HTML(func(w http.ResponseWriter, r *http.Request) (any, error) {
		return map[string]any{"Permissions": deps.Registry.List()}, nil
	})
	res.JSON(func(w http.ResponseWriter, r *http.Request) (any, error) {
		return deps.Registry.List(), nil
	})
	return res
}
