package admin

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ostiary-dev/ostiary/internal/auth"
	"github.com/ostiary-dev/ostiary/internal/rbac"
	"github.com/ostiary-dev/ostiary/internal/rest"
)

type roleListView struct {
	Role rbac.Role
	URL  string
}

// NewRolesResource builds the role collection resource.
func NewRolesResource(deps Deps) *rest.Resource {
	res := rest.NewResource("RolesAdmin")
	res.RequireAuth = true
	res.HTML(func(w http.ResponseWriter, r *http.Request) (any, error) {
		roles := deps.Database.Roles.List()
		views := make([]roleListView, 0, len(roles))
		for _, role := range roles {
			views = append(views, roleListView{Role: role, URL: role.Name + "/"})
		}
		return map[string]any{
			"Roles":       views,
			"Permissions": deps.Registry.List(),
		}, nil
	})
	res.JSON(func(w http.ResponseWriter, r *http.Request) (any, error) {
		byName := make(map[string]rbac.Role)
		for _, role := range deps.Database.Roles.List() {
			byName[role.Name] = role
		}
		return byName, nil
	})
	return res
}

type roleForm struct {
	Name string `validate:"required,max=64,excludesall= /"`
}

// NewRoleResource builds the per-role entity resource. PUT validates every
// referenced permission and sub-role before touching the store, so invalid
// input never partially mutates state. The bootstrap admin role is immutable.
func NewRoleResource(deps Deps) *rest.Resource {
	res := rest.NewResource("RoleAdmin")
	res.RequireAuth = true

	res.HTML(func(w http.ResponseWriter, r *http.Request) (any, error) {
		name := chi.URLParam(r, "rolename")
		role, found := deps.Database.Roles.Get(name)
		if !found {
			w.WriteHeader(http.StatusNotFound)
			role = rbac.NewRole(name, nil, nil)
		}
		return map[string]any{
			"Role":           role,
			"Found":          found,
			"AllRoles":       deps.Database.Roles.Names(),
			"AllPermissions": deps.Registry.List(),
		}, nil
	})
	res.JSON(func(w http.ResponseWriter, r *http.Request) (any, error) {
		name := chi.URLParam(r, "rolename")
		role, found := deps.Database.Roles.Get(name)
		if !found {
			rest.WriteError(w, r, http.StatusNotFound, fmt.Sprintf("Role %q not found.", name))
			return rest.NotDoneYet, nil
		}
		return role, nil
	})

	res.Method(http.MethodPut, func(w http.ResponseWriter, r *http.Request) {
		if !deps.Dispatcher.RequirePermission(w, r, res, http.MethodPut) {
			return
		}
		name := chi.URLParam(r, "rolename")
		if name == auth.AdminUsername {
			rest.WriteError(w, r, http.StatusBadRequest, "Cannot edit built-in role 'admin'.")
			return
		}
		if err := r.ParseForm(); err != nil {
			rest.WriteError(w, r, http.StatusBadRequest, "Bad Request")
			return
		}
		if err := deps.Validate.Struct(roleForm{Name: name}); err != nil {
			rest.WriteError(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid role: %v", err))
			return
		}

		permissions := r.PostForm["permissions"]
		for _, perm := range permissions {
			if !deps.Registry.Has(perm) {
				rest.WriteError(w, r, http.StatusBadRequest,
					fmt.Sprintf("Cannot create role with unknown permission %q.", perm))
				return
			}
		}
		subRoles := r.PostForm["subroles"]
		for _, sub := range subRoles {
			if _, ok := deps.Database.Roles.Get(sub); !ok {
				rest.WriteError(w, r, http.StatusBadRequest,
					fmt.Sprintf("Cannot create role with unknown sub-role %q.", sub))
				return
			}
		}

		deps.Database.Roles.Set(rbac.NewRole(name, permissions, subRoles))
		w.WriteHeader(http.StatusOK)
	})

	res.Method(http.MethodDelete, func(w http.ResponseWriter, r *http.Request) {
		if !deps.Dispatcher.RequirePermission(w, r, res, http.MethodDelete) {
			return
		}
		name := chi.URLParam(r, "rolename")
		if name == auth.AdminUsername {
			rest.WriteError(w, r, http.StatusBadRequest, "Cannot delete built-in role 'admin'.")
			return
		}
		if err := deps.Database.Roles.Delete(name); err != nil {
			rest.WriteError(w, r, http.StatusNotFound, fmt.Sprintf("Role %q not found.", name))
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	return res
}
