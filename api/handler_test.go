package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tradersecho/tradersecho/config"
	"github.com/tradersecho/tradersecho/database"
	"github.com/tradersecho/tradersecho/models"
)

func newTestServer(t *testing.T) (*Server, *gin.Engine, *gorm.DB) {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{}
	cfg.App.Name = "tradersecho-test"
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenDuration = time.Hour
	cfg.Auth.AdminToken = "admin-token"
	cfg.Collector.SnapshotSeconds = 1

	server := NewServer(db, cfg)
	return server, server.SetupRoutes(), db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signupAndLogin(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/signup",
		fmt.Sprintf(`{"username":%q,"password":"hunter22"}`, username), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var token TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

func TestHealth(t *testing.T) {
	_, r, _ := newTestServer(t)
	w := doJSON(t, r, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignupLoginAndMe(t *testing.T) {
	_, r, _ := newTestServer(t)
	token := signupAndLogin(t, r, "alice")

	// duplicate signup rejected
	w := doJSON(t, r, http.MethodPost, "/api/auth/signup",
		`{"username":"alice","password":"hunter22"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// wrong password rejected
	w = doJSON(t, r, http.MethodPost, "/api/auth/login",
		`{"username":"alice","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// login works
	w = doJSON(t, r, http.MethodPost, "/api/auth/login",
		`{"username":"alice","password":"hunter22"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// me requires and honors the bearer token
	w = doJSON(t, r, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/me", "", map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var me UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "alice", me.Username)
	assert.False(t, me.Pro)
}

func TestProGatingAndAdminUpgrade(t *testing.T) {
	_, r, _ := newTestServer(t)
	token := signupAndLogin(t, r, "bob")
	authz := map[string]string{"Authorization": "Bearer " + token}

	w := doJSON(t, r, http.MethodGet, "/api/pro/snapshot", "", authz)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// wrong admin token
	w = doJSON(t, r, http.MethodPost, "/api/admin/make-pro?username=bob", "",
		map[string]string{"X-Admin-Token": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/admin/make-pro?username=bob", "",
		map[string]string{"X-Admin-Token": "admin-token"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/pro/snapshot", "", authz)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFreeDailyEndpoint(t *testing.T) {
	_, r, db := newTestServer(t)
	day := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	for i, ticker := range []string{"AAPL", "TSLA", "NVDA"} {
		require.NoError(t, db.Create(&models.DailyRollup{
			Ticker: ticker, Day: day, Mentions: 10 - i, Interest: float64(10 - i),
		}).Error)
	}

	w := doJSON(t, r, http.MethodGet, "/api/free/daily?limit=2&sort=interest_score", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var items []models.DailyItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "AAPL", items[0].Ticker)
	assert.Equal(t, items[0].Interest, items[0].InterestScore)

	// ticker filter
	w = doJSON(t, r, http.MethodGet, "/api/free/daily?tickers=tsla", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "TSLA", items[0].Ticker)
}

func TestBillingStubs(t *testing.T) {
	_, r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/billing/create-checkout-session", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"url":null}`, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/billing/webhook", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
}
