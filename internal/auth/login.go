package auth

import (
	"net/http"
	"time"

	"github.com/ostiary-dev/ostiary/internal/rest"
	"github.com/ostiary-dev/ostiary/internal/session"
)

// LoginConfig carries the collaborators and timeouts of the login flow.
type LoginConfig struct {
	Users       *UserStore
	Sessions    *session.Store
	Hasher      *Hasher
	CookieName  string
	HardTimeout time.Duration
	SoftTimeout time.Duration
}

// NewLoginResource builds the login resource. GET renders the login form
// (carrying through an optional redirect-url), POST performs the credential
// check and branches on the client's preferred content type.
func NewLoginResource(cfg LoginConfig) *rest.Resource {
	res := rest.NewResource("Login")
	res.HTML(func(w http.ResponseWriter, r *http.Request) (any, error) {
		return map[string]any{"RedirectURL": r.URL.Query().Get("redirect-url")}, nil
	})
	res.Method(http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
		handleLogin(w, r, cfg)
	})
	return res
}

func handleLogin(w http.ResponseWriter, r *http.Request, cfg LoginConfig) {
	if err := r.ParseForm(); err != nil {
		rest.WriteError(w, r, http.StatusBadRequest, "Bad Request")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, found := cfg.Users.Get(username)
	if !found {
		// No hash comparison for unknown users. This skips wasted KDF work;
		// it is not a timing-safety guarantee.
		loginFailed(w, r)
		return
	}

	// The KDF comparison is CPU-expensive and runs under the hasher's
	// concurrency bound so login bursts cannot stall other requests.
	match, err := cfg.Hasher.Compare(r.Context(), user.Password, password)
	if err != nil {
		rest.WriteError(w, r, http.StatusServiceUnavailable, "Service Unavailable")
		return
	}
	if !match {
		loginFailed(w, r)
		return
	}

	id := cfg.Sessions.Create(username, cfg.HardTimeout, cfg.SoftTimeout)
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
	})

	switch {
	case rest.AcceptsHTML(r):
		target := r.PostFormValue("redirect-url")
		if target == "" {
			target = "/"
		}
		rest.SeeOther(w, target, nil)
	case rest.AcceptsJSON(r):
		rest.WriteJSON(w, http.StatusOK, map[string]string{"session-id": id})
	default:
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("No supported media type requested. Session ID: " + id))
	}
}

func loginFailed(w http.ResponseWriter, r *http.Request) {
	if rest.AcceptsJSON(r) {
		rest.WriteJSON(w, http.StatusForbidden, map[string]string{"message": "Authentication failed"})
		return
	}
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte("Authentication failed"))
}

// NewLogoutResource builds the logout resource. POST and DELETE remove the
// session (idempotently) and clear the cookie.
func NewLogoutResource(d *rest.Dispatcher, sessions *session.Store) *rest.Resource {
	res := rest.NewResource("Logout")
	res.HTML(func(w http.ResponseWriter, r *http.Request) (any, error) {
		return map[string]any{}, nil
	})
	logout := func(w http.ResponseWriter, r *http.Request) {
		if token := d.SessionToken(r); token != "" {
			sessions.Delete(token)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     d.CookieName(),
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
		if rest.AcceptsJSON(r) {
			rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		rest.SeeOther(w, "/", nil)
	}
	res.Method(http.MethodPost, logout)
	res.Method(http.MethodDelete, logout)
	return res
}
