package rest

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"

	"github.com/ostiary-dev/ostiary/internal/issues"
	"github.com/ostiary-dev/ostiary/internal/rbac"
	"github.com/ostiary-dev/ostiary/internal/session"
	"github.com/ostiary-dev/ostiary/internal/view"
)

// DispatcherParams groups the collaborators a Dispatcher needs.
type DispatcherParams struct {
	Logger     *slog.Logger
	Sessions   *session.Store
	Checker    *rbac.Checker
	Registry   *rbac.Registry
	Views      *view.Engine
	CORS       *CORSPolicy
	Issues     *issues.Store
	LoginURL   string
	CookieName string
}

// Dispatcher runs the per-request pipeline for every resource: trailing
// slash canonicalization, authentication, CORS, permission auto-checks,
// content negotiation, and producer invocation.
type Dispatcher struct {
	logger     *slog.Logger
	sessions   *session.Store
	checker    *rbac.Checker
	registry   *rbac.Registry
	views      *view.Engine
	cors       *CORSPolicy
	issues     *issues.Store
	loginURL   string
	cookieName string
}

// NewDispatcher constructs a Dispatcher from params, applying defaults for
// the login URL and session cookie name.
func NewDispatcher(p DispatcherParams) *Dispatcher {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.LoginURL == "" {
		p.LoginURL = "/login/"
	}
	if p.CookieName == "" {
		p.CookieName = "OSTIARY_SESSION"
	}
	return &Dispatcher{
		logger:     p.Logger,
		sessions:   p.Sessions,
		checker:    p.Checker,
		registry:   p.Registry,
		views:      p.Views,
		cors:       p.CORS,
		issues:     p.Issues,
		loginURL:   p.LoginURL,
		cookieName: p.CookieName,
	}
}

// CookieName returns the configured session cookie name.
func (d *Dispatcher) CookieName() string { return d.cookieName }

// LoginURL returns the configured login URL.
func (d *Dispatcher) LoginURL() string { return d.loginURL }

// Handle wires the pipeline around res and returns the resulting handler.
// When the resource requires authentication its default permissions are
// registered so the admin surface can enumerate them up front.
func (d *Dispatcher) Handle(res *Resource) http.Handler {
	if res.RequireAuth {
		for _, method := range res.methodNames() {
			d.registry.Add(res.PermissionFor(method))
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Canonical form ends in a slash; everything else redirects there.
		if !strings.HasSuffix(r.URL.Path, "/") {
			target := r.URL.Path + "/"
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, target, http.StatusFound)
			return
		}

		if res.RequireAuth {
			username, ok := d.Authenticate(r)
			if !ok {
				d.loginRequired(w, r)
				return
			}
			r = r.WithContext(ContextWithUsername(r.Context(), username))
		}

		if r.Header.Get("Origin") != "" && d.cors != nil {
			if d.cors.handle(w, r) {
				return
			}
		}

		switch r.Method {
		case http.MethodGet, http.MethodHead:
			w.Header().Set("Cache-Control", "no-cache")
			d.serveGet(w, r, res)
		default:
			h, ok := res.methodFor(r.Method)
			if !ok {
				w.Header().Set("Allow", strings.Join(res.methodNames(), ", "))
				WriteError(w, r, http.StatusMethodNotAllowed, "Method Not Allowed")
				return
			}
			h(w, r)
		}
	})
}

// Authenticate resolves the request's identity: a bearer token takes
// precedence over the session cookie. A valid lookup slides the session's
// soft expiry as a side effect.
func (d *Dispatcher) Authenticate(r *http.Request) (string, bool) {
	token := d.SessionToken(r)
	if token == "" {
		return "", false
	}
	s, ok := d.sessions.Get(token)
	if !ok {
		return "", false
	}
	return s.Username, true
}

// SessionToken extracts the session token from the Authorization header or,
// failing that, the session cookie.
func (d *Dispatcher) SessionToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie(d.cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// RequirePermission checks the default permission for method and writes a
// 403 in the negotiated format when the user lacks it. It reports whether
// processing may continue.
func (d *Dispatcher) RequirePermission(w http.ResponseWriter, r *http.Request, res *Resource, method string) bool {
	username := UsernameFromContext(r.Context())
	if d.checker.HasPermission(username, res.PermissionFor(method)) {
		return true
	}
	WriteError(w, r, http.StatusForbidden, "Forbidden")
	return false
}

func (d *Dispatcher) loginRequired(w http.ResponseWriter, r *http.Request) {
	if AcceptsHTML(r) {
		SeeOther(w, d.loginURL, url.Values{"redirect-url": {r.URL.RequestURI()}})
		return
	}
	msg := fmt.Sprintf("Login required. Login at %q. Form-based authentication is available.", d.loginURL)
	WriteError(w, r, http.StatusForbidden, msg)
}

func (d *Dispatcher) serveGet(w http.ResponseWriter, r *http.Request, res *Resource) {
	var producer ModelFunc
	mediaType := ""
	for _, clause := range ParseAccept(r.Header.Get("Accept")) {
		if f, ok := res.producerFor(clause.MediaType); ok {
			producer = f
			mediaType = clause.MediaType
			break
		}
	}
	if producer == nil {
		WriteError(w, r, http.StatusNotAcceptable, "Not Acceptable")
		return
	}
	w.Header().Set("Content-Type", mediaType)

	if res.RequireAuth && res.AutoCheckGetPermissions {
		if !d.RequirePermission(w, r, res, http.MethodGet) {
			return
		}
	}

	// Failures past this point are the producer's; record them before
	// re-raising so the transport's recovery handler owns the 500.
	defer func() {
		if p := recover(); p != nil {
			d.recordFailure(r, fmt.Sprintf("%v", p))
			panic(p)
		}
	}()

	model, err := producer(w, r)
	if err != nil {
		d.fail(r, err)
	}
	if model == NotDoneYet {
		return
	}

	switch v := model.(type) {
	case nil:
		return
	case string:
		_, _ = io.WriteString(w, v)
	case []byte:
		_, _ = w.Write(v)
	default:
		if isHTMLMediaType(mediaType) {
			d.renderTemplate(w, r, res, model)
			return
		}
		data, err := marshalModel(model)
		if err != nil {
			d.fail(r, err)
		}
		_, _ = w.Write(append(data, '\n'))
	}
}

func (d *Dispatcher) renderTemplate(w http.ResponseWriter, r *http.Request, res *Resource, model any) {
	var buf bytes.Buffer
	if err := d.views.Render(&buf, res.Template, model); err != nil {
		// Includes view.ErrTemplateNotFound: a missing template is fatal,
		// never silently swallowed.
		d.fail(r, err)
	}
	_, _ = w.Write(buf.Bytes())
}

// fail logs the error with enough context to reconstruct the failing
// resource path and raises it. The deferred recover in serveGet files the
// issue record; the transport layer (the recovery middleware) produces the
// client-visible 500.
func (d *Dispatcher) fail(r *http.Request, err error) {
	d.logger.Error("resource producer failed",
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Any("error", err),
	)
	panic(err)
}

func (d *Dispatcher) recordFailure(r *http.Request, message string) {
	if d.issues == nil {
		return
	}
	d.issues.Add(issues.Issue{
		Level:        "error",
		Message:      "resource producer failed",
		ResourcePath: r.URL.Path,
		Exception:    message,
		CallStack:    string(debug.Stack()),
	})
}

func isHTMLMediaType(mediaType string) bool {
	for _, mt := range htmlMediaTypes {
		if mt == mediaType {
			return true
		}
	}
	return false
}
