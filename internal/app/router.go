package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/ostiary-dev/ostiary/internal/admin"
	"github.com/ostiary-dev/ostiary/internal/auth"
	"github.com/ostiary-dev/ostiary/internal/db"
	"github.com/ostiary-dev/ostiary/internal/observability"
	"github.com/ostiary-dev/ostiary/internal/rbac"
	"github.com/ostiary-dev/ostiary/internal/rest"
	"github.com/ostiary-dev/ostiary/internal/session"
	"github.com/ostiary-dev/ostiary/internal/settings"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger     *slog.Logger
	Config     *Config
	Dispatcher *rest.Dispatcher
	Database   *db.Database
	Registry   *rbac.Registry
	Sessions   *session.Store
	Hasher     *auth.Hasher
	Settings   *settings.Model

	// ApplySettings is invoked after a successful configuration update so
	// the process can pick up new values (log level, for example).
	ApplySettings func()

	Validate *validator.Validate
	Metrics  *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	d := params.Dispatcher
	deps := admin.Deps{
		Dispatcher:    d,
		Database:      params.Database,
		Registry:      params.Registry,
		Validate:      params.Validate,
		KDFIterations: params.Config.KDFIterations,
		KDFAlgorithm:  params.Config.KDFAlgorithm,
	}

	r.Handle("/", d.Handle(newRootResource(params.Config)))

	login := d.Handle(auth.NewLoginResource(auth.LoginConfig{
		Users:       params.Database.Users,
		Sessions:    params.Sessions,
		Hasher:      params.Hasher,
		CookieName:  d.CookieName(),
		HardTimeout: params.Config.SessionHardTimeout,
		SoftTimeout: params.Config.SessionSoftTimeout,
	}))
	if params.Config.LoginRatePerMinute > 0 {
		login = httprate.LimitByIP(params.Config.LoginRatePerMinute, time.Minute)(login)
	}
	mount(r, "/login", login)
	mount(r, "/logout", d.Handle(auth.NewLogoutResource(d, params.Sessions)))

	mount(r, "/admin/users", d.Handle(admin.NewUsersResource(deps)))
	mount(r, "/admin/users/{username}", d.Handle(admin.NewUserResource(deps)))
	mount(r, "/admin/roles", d.Handle(admin.NewRolesResource(deps)))
	mount(r, "/admin/roles/{rolename}", d.Handle(admin.NewRoleResource(deps)))
	mount(r, "/admin/permissions", d.Handle(admin.NewPermissionsResource(deps)))
	mount(r, "/config", d.Handle(admin.NewConfigResource(deps, params.Settings, params.ApplySettings)))
	mount(r, "/issues", d.Handle(admin.NewIssuesResource(deps)))

	return r
}

// mount registers a resource handler under both the bare pattern and its
// trailing-slash form. chi treats the two as distinct routes, and the
// dispatcher redirects the bare form to the canonical slash form itself.
func mount(r chi.Router, pattern string, h http.Handler) {
	r.Handle(pattern, h)
	r.Handle(pattern+"/", h)
}

func newRootResource(cfg *Config) *rest.Resource {
	res := rest.NewResource("Root")
	res.HTML(func(w http.ResponseWriter, r *http.Request) (any, error) {
		return map[string]any{"AppEnv": cfg.AppEnv}, nil
	})
	res.JSON(func(w http.ResponseWriter, r *http.Request) (any, error) {
		return map[string]string{"service": "ostiary", "env": cfg.AppEnv}, nil
	})
	return res
}
