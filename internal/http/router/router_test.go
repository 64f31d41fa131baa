package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memcache "github.com/socialsignin/socialguard/internal/cache/memory"
	"github.com/socialsignin/socialguard/internal/connect"
	connectctrl "github.com/socialsignin/socialguard/internal/http/controllers/connect"
	healthctrl "github.com/socialsignin/socialguard/internal/http/controllers/health"
	mectrl "github.com/socialsignin/socialguard/internal/http/controllers/me"
	signupctrl "github.com/socialsignin/socialguard/internal/http/controllers/signup"
	mw "github.com/socialsignin/socialguard/internal/http/middlewares"
	"github.com/socialsignin/socialguard/internal/security/access"
	"github.com/socialsignin/socialguard/internal/security/authn"
	"github.com/socialsignin/socialguard/internal/security/registry"
	"github.com/socialsignin/socialguard/internal/session"
	"github.com/socialsignin/socialguard/internal/signup"
	memstore "github.com/socialsignin/socialguard/internal/store/adapters/memory"
)

type env struct {
	handler  http.Handler
	sessions *connect.Sessions
	issuer   *session.Issuer
}

func newEnv(t *testing.T) *env {
	t.Helper()

	accounts := memstore.New()
	backend := memcache.New(time.Minute)
	sessions := connect.NewSessions(backend, time.Minute)
	reg := registry.New([]string{"twitter", "facebook"})
	factory := authn.NewFactory(reg)

	oracle := access.NewRuleOracle([]access.Rule{
		{PathPrefix: "/me", AnyOf: []authn.Authority{"ROLE_USER_TWITTER", "ROLE_USER_FACEBOOK"}},
	})
	resolver, err := access.NewResolver(oracle, reg, factory)
	require.NoError(t, err)

	issuer, err := session.NewIssuer([]byte(strings.Repeat("k", 32)), "test", time.Hour)
	require.NoError(t, err)

	handler := New(Deps{
		Signup:         signupctrl.NewController(signup.NewCoordinator(accounts, sessions), factory, issuer),
		Connect:        connectctrl.NewController(reg),
		Health:         healthctrl.NewHealthController(nil),
		Me:             mectrl.NewController(accounts),
		Oracle:         oracle,
		Resolver:       resolver,
		Authentication: mw.WithAuthentication(issuer),
	})
	return &env{handler: handler, sessions: sessions, issuer: issuer}
}

func (e *env) request(method, target string, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, http.StatusOK, e.request(http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, e.request(http.MethodGet, "/readyz", "").Code)
}

func TestGuardRedirectsToMissingProvider(t *testing.T) {
	e := newEnv(t)

	// La regla es any-of: la combinación mínima es un solo provider, el
	// primero en orden de registro ("facebook" < "twitter").
	w := e.request(http.MethodGet, "/me", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "facebook", w.Header().Get(mw.RequiredProvidersHeader))
	assert.Equal(t, "/connect/facebook?required=facebook", w.Header().Get("Location"))
}

func TestConnectLandingValidatesProvider(t *testing.T) {
	e := newEnv(t)

	w := e.request(http.MethodGet, "/connect/twitter?required=twitter,facebook", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp connectctrl.LandingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "twitter", resp.Provider)
	assert.Equal(t, []string{"twitter", "facebook"}, resp.Required)

	assert.Equal(t, http.StatusNotFound, e.request(http.MethodGet, "/connect/myspace", "").Code)
}

func TestSignupFlowEndToEnd(t *testing.T) {
	e := newEnv(t)

	const sid = "signup-session-1"
	signupCookie := &http.Cookie{Name: "sg_signup", Value: sid}

	err := e.sessions.Put(context.Background(), sid, connect.Connection{
		Provider:       "twitter",
		ProviderUserID: "tw-42",
		Username:       "Keith",
		DisplayName:    "Keith S",
	}, "")
	require.NoError(t, err)

	// GET /signup sugiere el username de la conexión pendiente.
	w := e.request(http.MethodGet, "/signup", "", signupCookie)
	require.Equal(t, http.StatusOK, w.Code)
	var form struct {
		Username string `json:"username"`
		Provider string `json:"provider"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &form))
	assert.Equal(t, "keith", form.Username)
	assert.Equal(t, "twitter", form.Provider)

	// POST /signup crea la cuenta y establece la sesión.
	w = e.request(http.MethodPost, "/signup", `{"username":"keith"}`, signupCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == e.issuer.CookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "expected a session cookie after sign-up")

	// La sesión nueva ya desbloquea el recurso protegido.
	w = e.request(http.MethodGet, "/me", "", sessionCookie)
	require.Equal(t, http.StatusOK, w.Code)
	var me mectrl.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "keith", me.Username)
	assert.Contains(t, me.Authorities, "ROLE_USER_TWITTER")
	assert.Equal(t, []string{"twitter"}, me.Providers)
}

func TestSignupRejectsInvalidUsername(t *testing.T) {
	e := newEnv(t)

	const sid = "signup-session-2"
	signupCookie := &http.Cookie{Name: "sg_signup", Value: sid}
	err := e.sessions.Put(context.Background(), sid, connect.Connection{
		Provider:       "twitter",
		ProviderUserID: "tw-43",
	}, "")
	require.NoError(t, err)

	w := e.request(http.MethodPost, "/signup", `{"username":"NOT VALID!!"}`, signupCookie)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "username")
}

func TestSignupWithoutPendingConnectionFails(t *testing.T) {
	e := newEnv(t)

	w := e.request(http.MethodPost, "/signup", `{"username":"nobody"}`,
		&http.Cookie{Name: "sg_signup", Value: "no-such-session"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
