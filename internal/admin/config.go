package admin

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ostiary-dev/ostiary/internal/rest"
	"github.com/ostiary-dev/ostiary/internal/settings"
	"github.com/ostiary-dev/ostiary/internal/shared"
)

// NewConfigResource builds the runtime settings resource. GET lists all
// variables; POST applies submitted values to matching variables, skipping
// read-only ones. onApply (optional) runs after a successful update so the
// application can react, e.g. re-level its logger.
func NewConfigResource(deps Deps, model *settings.Model, onApply func()) *rest.Resource {
	res := rest.NewResource("Config")
	res.RequireAuth = true

	res.HTML(func(w http.ResponseWriter, r *http.Request) (any, error) {
		return map[string]any{"Variables": model.List()}, nil
	})
	res.JSON(func(w http.ResponseWriter, r *http.Request) (any, error) {
		return model, nil
	})

	res.Method(http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
		if !deps.Dispatcher.RequirePermission(w, r, res, http.MethodPost) {
			return
		}
		if err := r.ParseForm(); err != nil {
			rest.WriteError(w, r, http.StatusBadRequest, "Bad Request")
			return
		}
		// Validate the whole submission before applying any of it.
		updates := make(map[string]string)
		for name, values := range r.PostForm {
			if !model.Has(name) || model.IsReadOnly(name) || len(values) == 0 {
				continue
			}
			updates[name] = values[0]
		}
		for name, value := range updates {
			if err := model.Validate(name, value); err != nil {
				if errors.Is(err, shared.ErrInvalidValue) {
					rest.WriteError(w, r, http.StatusBadRequest,
						fmt.Sprintf("Invalid value for %q.", name))
					return
				}
				rest.WriteError(w, r, http.StatusBadRequest, err.Error())
				return
			}
		}
		for name, value := range updates {
			_ = model.Set(name, value)
		}
		if onApply != nil {
			onApply()
		}
		if rest.AcceptsHTML(r) {
			rest.SeeOther(w, r.URL.Path, nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	return res
}
