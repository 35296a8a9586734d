package rest

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ostiary-dev/ostiary/internal/issues"
	"github.com/ostiary-dev/ostiary/internal/rbac"
	"github.com/ostiary-dev/ostiary/internal/session"
	"github.com/ostiary-dev/ostiary/internal/shared"
	"github.com/ostiary-dev/ostiary/internal/view"
)

// stubUsers maps usernames to direct permission grants.
type stubUsers map[string][]string

func (s stubUsers) UserGrants(username string) (shared.StringSet, shared.StringSet, bool) {
	perms, ok := s[username]
	if !ok {
		return nil, nil, false
	}
	return shared.NewStringSet(perms...), shared.NewStringSet(), true
}

type harness struct {
	dispatcher *Dispatcher
	sessions   *session.Store
	issues     *issues.Store
}

func newHarness(t *testing.T, users stubUsers) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewStore(logger)
	registry := rbac.NewRegistry()
	issueLog := issues.NewStore()
	views := view.NewEngine(fstest.MapFS{
		"templates/Widget.html": {Data: []byte("<p>{{.Greeting}}</p>")},
	})
	cors, err := NewCORSPolicy([]string{`https://ok\.example\.com`}, nil)
	require.NoError(t, err)

	d := NewDispatcher(DispatcherParams{
		Logger:   logger,
		Sessions: sessions,
		Checker:  rbac.NewChecker(users, rbac.NewRoleStore(), registry),
		Registry: registry,
		Views:    views,
		CORS:     cors,
		Issues:   issueLog,
	})
	return &harness{dispatcher: d, sessions: sessions, issues: issueLog}
}

func (h *harness) login(username string) string {
	return h.sessions.Create(username, time.Hour, time.Hour)
}

func widgetResource() *Resource {
	res := NewResource("Widget")
	res.HTML(func(w http.ResponseWriter, r *http.Request) (any, error) {
		return map[string]any{"Greeting": "hello"}, nil
	})
	res.JSON(func(w http.ResponseWriter, r *http.Request) (any, error) {
		return map[string]string{"greeting": "hello"}, nil
	})
	return res
}

func TestTrailingSlashRedirect(t *testing.T) {
	h := newHarness(t, stubUsers{})
	handler := h.dispatcher.Handle(widgetResource())

	req := httptest.NewRequest(http.MethodGet, "/widget?page=2", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/widget/?page=2", rec.Header().Get("Location"))
}

func TestRenderHTML(t *testing.T) {
	h := newHarness(t, stubUsers{})
	handler := h.dispatcher.Handle(widgetResource())

	req := httptest.NewRequest(http.MethodGet, "/widget/", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	require.Equal(t, "<p>hello</p>", rec.Body.String())
}

func TestRenderJSON(t *testing.T) {
	h := newHarness(t, stubUsers{})
	handler := h.dispatcher.Handle(widgetResource())

	req := httptest.NewRequest(http.MethodGet, "/widget/", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"greeting":"hello"}`, rec.Body.String())
}

func TestNotAcceptable(t *testing.T) {
	h := newHarness(t, stubUsers{})
	res := NewResource("Data")
	res.JSON(func(w http.ResponseWriter, r *http.Request) (any, error) { return nil, nil })
	handler := h.dispatcher.Handle(res)

	req := httptest.NewRequest(http.MethodGet, "/data/", nil)
	req.Header.Set("Accept", "text/csv")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotAcceptable, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newHarness(t, stubUsers{})
	handler := h.dispatcher.Handle(widgetResource())

	req := httptest.NewRequest(http.MethodDelete, "/widget/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Contains(t, rec.Header().Get("Allow"), http.MethodGet)
}

func TestLoginRequiredHTML(t *testing.T) {
	h := newHarness(t, stubUsers{})
	res := widgetResource()
	res.RequireAuth = true
	handler := h.dispatcher.Handle(res)

	req := httptest.NewRequest(http.MethodGet, "/widget/?page=2", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login/?redirect-url=%2Fwidget%2F%3Fpage%3D2", rec.Header().Get("Location"))
}

func TestLoginRequiredJSON(t *testing.T) {
	h := newHarness(t, stubUsers{})
	res := widgetResource()
	res.RequireAuth = true
	handler := h.dispatcher.Handle(res)

	req := httptest.NewRequest(http.MethodGet, "/widget/", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "Login required")
}

func TestBearerTokenAuthenticates(t *testing.T) {
	h := newHarness(t, stubUsers{"alice": {"Widget-GET"}})
	res := widgetResource()
	res.RequireAuth = true
	handler := h.dispatcher.Handle(res)

	req := httptest.NewRequest(http.MethodGet, "/widget/", nil)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.login("alice"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCookieAuthenticates(t *testing.T) {
	h := newHarness(t, stubUsers{"alice": {"Widget-GET"}})
	res := widgetResource()
	res.RequireAuth = true
	handler := h.dispatcher.Handle(res)

	req := httptest.NewRequest(http.MethodGet, "/widget/", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: h.dispatcher.CookieName(), Value: h.login("alice")})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAutoPermissionCheckDenies(t *testing.T) {
	h := newHarness(t, stubUsers{"bob": {}})
	res := widgetResource()
	res.RequireAuth = true
	handler := h.dispatcher.Handle(res)

	req := httptest.NewRequest(http.MethodGet, "/widget/", nil)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.login("bob"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.JSONEq(t, `{"error":"Forbidden"}`, rec.Body.String())
}

func TestAutoPermissionCheckDisabled(t *testing.T) {
	h := newHarness(t, stubUsers{"bob": {}})
	res := widgetResource()
	res.RequireAuth = true
	res.AutoCheckGetPermissions = false
	handler := h.dispatcher.Handle(res)

	req := httptest.NewRequest(http.MethodGet, "/widget/", nil)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.login("bob"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleRegistersDefaultPermissions(t *testing.T) {
	h := newHarness(t, stubUsers{})
	res := widgetResource()
	res.RequireAuth = true
	res.Method(http.MethodPut, func(w http.ResponseWriter, r *http.Request) {})
	h.dispatcher.Handle(res)

	registered := h.dispatcher.registry.List()
	require.Contains(t, registered, "Widget-GET")
	require.Contains(t, registered, "Widget-PUT")
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	h := newHarness(t, stubUsers{})
	invoked := false
	res := NewResource("Widget")
	res.HTML(func(w http.ResponseWriter, r *http.Request) (any, error) {
		invoked = true
		return nil, nil
	})
	handler := h.dispatcher.Handle(res)

	req := httptest.NewRequest(http.MethodOptions, "/widget/", nil)
	req.Header.Set("Origin", "https://ok.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, invoked, "preflight must not reach the producer")
	require.Equal(t, "https://ok.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNotDoneYetLeavesResponseAlone(t *testing.T) {
	h := newHarness(t, stubUsers{})
	res := NewResource("Stream")
	res.JSON(func(w http.ResponseWriter, r *http.Request) (any, error) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("partial"))
		return NotDoneYet, nil
	})
	handler := h.dispatcher.Handle(res)

	req := httptest.NewRequest(http.MethodGet, "/stream/", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, "partial", rec.Body.String())
}

func TestProducerErrorPanicsAndRecordsIssue(t *testing.T) {
	h := newHarness(t, stubUsers{})
	res := NewResource("Broken")
	res.JSON(func(w http.ResponseWriter, r *http.Request) (any, error) {
		return nil, io.ErrUnexpectedEOF
	})
	handler := h.dispatcher.Handle(res)

	req := httptest.NewRequest(http.MethodGet, "/broken/", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	require.Panics(t, func() { handler.ServeHTTP(rec, req) })
	recorded := h.issues.List()
	require.Len(t, recorded, 1)
	require.Equal(t, "/broken/", recorded[0].ResourcePath)
}

func TestMissingTemplateIsFatal(t *testing.T) {
	h := newHarness(t, stubUsers{})
	res := NewResource("Ghost")
	res.HTML(func(w http.ResponseWriter, r *http.Request) (any, error) {
		return map[string]any{}, nil
	})
	handler := h.dispatcher.Handle(res)

	req := httptest.NewRequest(http.MethodGet, "/ghost/", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	require.Panics(t, func() { handler.ServeHTTP(rec, req) })
	require.Equal(t, 1, h.issues.Len())
}

func TestStringModelSentVerbatim(t *testing.T) {
	h := newHarness(t, stubUsers{})
	res := NewResource("Raw")
	res.Produce("text/csv", func(w http.ResponseWriter, r *http.Request) (any, error) {
		return "a,b\n1,2\n", nil
	})
	handler := h.dispatcher.Handle(res)

	req := httptest.NewRequest(http.MethodGet, "/raw/", nil)
	req.Header.Set("Accept", "text/csv")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	require.Equal(t, "a,b\n1,2\n", rec.Body.String())
}
