package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alumnihub/alumni-api/api/testhelpers"
	"github.com/alumnihub/alumni-api/config"
	"github.com/alumnihub/alumni-api/mailer"
)

const testSecret = "test-secret"

func newTestApp() (*App, *testhelpers.MockDB) {
	db := testhelpers.NewMockDB()
	a := &App{
		Config: config.Config{
			JWTSecret:      testSecret,
			RateLimitRPS:   100,
			RateLimitBurst: 100,
			RequestTimeout: 5 * time.Second,
		},
		DB:     db,
		Mailer: mailer.LogSender{},
	}
	a.Router = a.New()
	return a, db
}

func executeRequest(a *App, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, req)
	return rr
}

func checkResponseCode(t *testing.T, expected, actual int) {
	if expected != actual {
		t.Errorf("Expected response code %d. Got %d\n", expected, actual)
	}
}

func signedToken(t *testing.T, userType string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "64b7f0c2a1b2c3d4e5f60718",
		"email": "admin@example.org",
		"type":  userType,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestUnknownRoute(t *testing.T) {
	a, _ := newTestApp()
	req, _ := http.NewRequest("GET", "/asdf", nil)
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusNotFound, response.Code)
	assert.Contains(t, response.Body.String(), `"success":false`)
}

func TestHealthCheckRoute(t *testing.T) {
	a, _ := newTestApp()
	req, _ := http.NewRequest("GET", "/health", nil)
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusOK, response.Code)
	var body map[string]bool
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
	assert.True(t, body["alive"])
}

func TestMetricsRoute(t *testing.T) {
	a, _ := newTestApp()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Body.String(), "go_goroutines")
}

func TestAdminRoutesRequireToken(t *testing.T) {
	a, _ := newTestApp()
	for _, path := range []string{"/api/admin/stats", "/api/admin/contacts", "/api/admin/newsletter/subscribers"} {
		req, _ := http.NewRequest("GET", path, nil)
		response := executeRequest(a, req)
		checkResponseCode(t, http.StatusUnauthorized, response.Code)
	}
}

func TestAdminRoutesRejectNonAdmin(t *testing.T) {
	a, _ := newTestApp()
	req, _ := http.NewRequest("GET", "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "alumnus"))
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusForbidden, response.Code)
}

func TestAdminStatsWithAdminToken(t *testing.T) {
	a, db := newTestApp()
	for _, name := range []string{"users", "jobs", "jobReferrals", "mentorshipMatches", "businesses",
		"achievements", "news", "newsletterSubscribers", "contacts"} {
		db.C(name).On("CountDocuments", mock.Anything, mock.Anything).Return(int64(3), nil)
	}

	req, _ := http.NewRequest("GET", "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "admin"))
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Body.String(), `"users":3`)
}

func TestFeaturedJobRequiresAdmin(t *testing.T) {
	a, _ := newTestApp()
	req, _ := http.NewRequest("PATCH", "/api/jobs/64b7f0c2a1b2c3d4e5f60718/featured", strings.NewReader(`{"isFeatured":true}`))
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusUnauthorized, response.Code)
}

func TestStaticJobRoutesWinOverID(t *testing.T) {
	a, db := newTestApp()
	coll := db.C("jobReferrals")
	coll.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(testhelpers.Cursor(nil), nil)
	coll.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)

	req, _ := http.NewRequest("GET", "/api/jobs/referrals", nil)
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Body.String(), `"totalCount":0`)
}

func TestRequestIDHeader(t *testing.T) {
	a, _ := newTestApp()
	req, _ := http.NewRequest("GET", "/api/jobs/not-an-id", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusBadRequest, response.Code)
	assert.Equal(t, "abc-123", response.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	a, _ := newTestApp()
	a.Config.CORSOrigins = []string{"http://localhost:5173"}

	req, _ := http.NewRequest("OPTIONS", "/api/jobs", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	a.Handler().ServeHTTP(rr, req)

	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}
