package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/talkscribe/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

func TestHealthzAndMetrics(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = h.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# metrics")
}

func TestRegister(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/auth/register", "", `{"email":"ann@example.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	got := decode[map[string]any](t, rec.Body.Bytes())
	assert.Equal(t, "acc", got["access_token"])
	assert.Equal(t, "ref", got["refresh_token"])
	user := got["user"].(map[string]any)
	assert.Equal(t, "ann", user["name"])

	h.users.registerErr = common.ErrDuplicateUser
	rec = h.do(t, http.MethodPost, "/api/auth/register", "", `{"email":"ann@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	h.users.registerErr = common.ErrMissingCredentials
	rec = h.do(t, http.MethodPost, "/api/auth/register", "", `{"email":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/auth/register", "", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"ann@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	h.users.loginErr = common.ErrInvalidCredentials
	rec = h.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"ann@example.com","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decode[errorResponse](t, rec.Body.Bytes()).Error)
}

func TestRefreshAndLogout(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/auth/refresh", "", `{"refresh_token":"ref"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acc2", decode[tokenPairDTO](t, rec.Body.Bytes()).AccessToken)

	rec = h.do(t, http.MethodPost, "/api/auth/refresh", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.users.refreshErr = common.ErrRefreshTokenExpired
	rec = h.do(t, http.MethodPost, "/api/auth/refresh", "", `{"refresh_token":"old"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/auth/logout", "", `{"refresh_token":"ref"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAuth(t *testing.T) {
	h := newHarness(t)

	for _, token := range []string{"", "bogus", "expired"} {
		rec := h.do(t, http.MethodGet, "/api/transcripts", token, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "token %q", token)
		assert.Equal(t, "Unauthorized", decode[errorResponse](t, rec.Body.Bytes()).Error)
	}

	rec := h.do(t, http.MethodGet, "/api/me", "good", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", decode[userDTO](t, rec.Body.Bytes()).ID)
}

func TestTranslateEndpoint(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/translate", "good", `{"text":"hello","target":"fr"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[fr] hello", decode[translateResponse](t, rec.Body.Bytes()).Translated)

	rec = h.do(t, http.MethodPost, "/api/translate", "good", `{"text":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[es] hello", decode[translateResponse](t, rec.Body.Bytes()).Translated)

	rec = h.do(t, http.MethodPost, "/api/translate", "good", `{"text":"hello","target":"xx"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/translate", "", `{"text":"hello"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestParseDuration(t *testing.T) {
	cases := map[string]int{"": 0, "12": 12, " 7 ": 7, "3.6": 4, "-2": 0, "abc": 0, "NaN": 0}
	for in, want := range cases {
		assert.Equal(t, want, parseDuration(in), "input %q", in)
	}
}
