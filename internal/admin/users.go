// Package admin exposes the management surface: users, roles, permissions,
// runtime settings, and the issue log. Entity-level invariants (protected
// bootstrap entities, referential checks before writes) live here, not in
// the stores.
package admin

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ostiary-dev/ostiary/internal/auth"
	"github.com/ostiary-dev/ostiary/internal/db"
	"github.com/ostiary-dev/ostiary/internal/rbac"
	"github.com/ostiary-dev/ostiary/internal/rest"
)

// Deps groups the collaborators shared by all admin resources.
type Deps struct {
	Dispatcher *rest.Dispatcher
	Database   *db.Database
	Registry   *rbac.Registry
	Validate   *validator.Validate

	// KDFIterations and KDFAlgorithm parameterize password hashes created
	// through user upserts.
	KDFIterations int
	KDFAlgorithm  string
}

// userListView is the HTML model entry for one user row.
type userListView struct {
	User auth.User
	URL  string
}

// NewUsersResource builds the user collection resource (list only; entity
// operations live on the per-user resource).
func NewUsersResource(deps Deps) *rest.Resource {
	res := rest.NewResource("UsersAdmin")
	res.RequireAuth = true
	res.HTML(func(w http.ResponseWriter, r *http.Request) (any, error) {
		users := deps.Database.Users.List()
		views := make([]userListView, 0, len(users))
		for _, u := range users {
			views = append(views, userListView{User: u, URL: u.Username + "/"})
		}
		return map[string]any{
			"Users":       views,
			"Roles":       deps.Database.Roles.Names(),
			"Permissions": deps.Registry.List(),
		}, nil
	})
	res.JSON(func(w http.ResponseWriter, r *http.Request) (any, error) {
		byName := make(map[string]auth.User)
		for _, u := range deps.Database.Users.List() {
			byName[u.Username] = u
		}
		return byName, nil
	})
	return res
}

type userForm struct {
	Username string `validate:"required,max=64,excludesall= /"`
	Password string `validate:"max=128"`
}

// NewUserResource builds the per-user entity resource: GET, PUT (full
// replace, upsert), DELETE. The bootstrap admin user is immutable here.
func NewUserResource(deps Deps) *rest.Resource {
	res := rest.NewResource("UserAdmin")
	res.RequireAuth = true

	res.HTML(func(w http.ResponseWriter, r *http.Request) (any, error) {
		username := chi.URLParam(r, "username")
		user, found := deps.Database.Users.Get(username)
		if !found {
			w.WriteHeader(http.StatusNotFound)
			user = auth.User{Username: username}
		}
		return map[string]any{
			"User":        user,
			"Found":       found,
			"Roles":       deps.Database.Roles.Names(),
			"Permissions": deps.Registry.List(),
		}, nil
	})
	res.JSON(func(w http.ResponseWriter, r *http.Request) (any, error) {
		username := chi.URLParam(r, "username")
		user, found := deps.Database.Users.Get(username)
		if !found {
			rest.WriteError(w, r, http.StatusNotFound, fmt.Sprintf("User %q not found.", username))
			return rest.NotDoneYet, nil
		}
		return user, nil
	})

	res.Method(http.MethodPut, func(w http.ResponseWriter, r *http.Request) {
		if !deps.Dispatcher.RequirePermission(w, r, res, http.MethodPut) {
			return
		}
		username := chi.URLParam(r, "username")
		if username == auth.AdminUsername {
			rest.WriteError(w, r, http.StatusForbidden,
				"Forbidden: Cannot edit built-in user 'admin'.")
			return
		}
		if err := r.ParseForm(); err != nil {
			rest.WriteError(w, r, http.StatusBadRequest, "Bad Request")
			return
		}
		form := userForm{Username: username, Password: r.PostFormValue("password")}
		if err := deps.Validate.Struct(form); err != nil {
			rest.WriteError(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid user: %v", err))
			return
		}
		user, err := auth.NewUser(username, form.Password, deps.KDFIterations, deps.KDFAlgorithm)
		if err != nil {
			rest.WriteError(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid user: %v", err))
			return
		}
		// Full replace: the submitted sets win, no merging.
		for _, role := range r.PostForm["roles"] {
			user.Roles.Add(role)
		}
		for _, perm := range r.PostForm["permissions"] {
			user.Permissions.Add(perm)
		}
		deps.Database.Users.Set(user)
		w.WriteHeader(http.StatusOK)
	})

	res.Method(http.MethodDelete, func(w http.ResponseWriter, r *http.Request) {
		if !deps.Dispatcher.RequirePermission(w, r, res, http.MethodDelete) {
			return
		}
		username := chi.URLParam(r, "username")
		if username == auth.AdminUsername {
			rest.WriteError(w, r, http.StatusForbidden,
				"Forbidden: Cannot remove built-in user 'admin'.")
			return
		}
		if err := deps.Database.Users.Delete(username); err != nil {
			rest.WriteError(w, r, http.StatusNotFound, fmt.Sprintf("User %q not found.", username))
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	return res
}
