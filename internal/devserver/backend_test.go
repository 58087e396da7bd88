package devserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/clansession/internal/client/api"
	"github.com/dmitrijs2005/clansession/internal/common"
	"github.com/dmitrijs2005/clansession/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthed_RejectsExpiredJWT(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	b := NewBackend(WithJWT([]byte("k"), time.Minute))
	b.jwt.now = func() time.Time { return now }

	pair, err := b.IssueTokens("li")
	require.NoError(t, err)

	get := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sectCharacter/teams", nil)
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+pair.AccessToken)
		rec := httptest.NewRecorder()
		b.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, get())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, http.StatusUnauthorized, get())
}

func TestAuthed_OpaqueTokens(t *testing.T) {
	b := NewBackend()
	pair, err := b.IssueTokens("li")
	require.NoError(t, err)
	assert.Equal(t, "access-1", pair.AccessToken)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sectCharacter/teams", nil)
	rec := httptest.NewRecorder()
	b.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Len(t, b.Calls("/api/v1/sectCharacter/teams"), 1)
}

func postLogin(t *testing.T, b *Backend, path, user, password string) api.Envelope[api.TokenPair] {
	t.Helper()
	body, err := json.Marshal(api.LoginRequest{Username: user, Password: password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	b.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env api.Envelope[api.TokenPair]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestLogin_ComparesBcryptHashes(t *testing.T) {
	b := NewBackend(WithHashCost(bcrypt.MinCost))
	b.AddUser("li", "pw")

	ok := postLogin(t, b, "/api/v1/systemUser/login", "li", "pw")
	require.True(t, ok.Success)
	require.NotNil(t, ok.Data)
	assert.NotEmpty(t, ok.Data.AccessToken)

	bad := postLogin(t, b, "/api/v1/systemUser/login", "li", "PW")
	assert.False(t, bad.Success)
	assert.Equal(t, "invalid username or password", bad.Message)
}

func TestRegister_StoresHashOnly(t *testing.T) {
	b := NewBackend(WithHashCost(bcrypt.MinCost))

	env := postLogin(t, b, "/api/v1/systemUser/register", "zhang", "secret")
	require.True(t, env.Success)

	b.mu.Lock()
	hash := b.users["zhang"]
	b.mu.Unlock()
	assert.NotContains(t, string(hash), "secret")
	assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte("secret")))

	assert.True(t, postLogin(t, b, "/api/v1/systemUser/login", "zhang", "secret").Success)
}

func TestRecord_LogsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(logging.DriverSlog, "debug", &buf)
	require.NoError(t, err)
	b := NewBackend(WithLogger(log))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/captcha/get", strings.NewReader(`{}`))
	req.Header.Set(common.RequestIDHeaderName, "req-42")
	b.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), "request_id=req-42")
	assert.Contains(t, buf.String(), "path=/api/v1/captcha/get")
}
