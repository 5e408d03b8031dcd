package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avesovich/reporting-with-rss-news/internal/api"
	"github.com/avesovich/reporting-with-rss-news/internal/auth"
	"github.com/avesovich/reporting-with-rss-news/internal/config"
	"github.com/avesovich/reporting-with-rss-news/internal/container"
	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiEnv struct {
	router *gin.Engine
	ctr    *container.Container
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Database.Driver = "sqlite"
	// shared-cache name keeps the pool on one in-memory database
	cfg.Database.DBName = fmt.Sprintf("file:apitest_%s?mode=memory&cache=shared",
		strings.ReplaceAll(uuid.NewString(), "-", ""))
	cfg.Auth.JWTSecret = "test-secret"
	cfg.App.Timezone = "UTC"
	cfg.App.UploadDir = t.TempDir()

	logger := logrus.New()
	logger.SetOutput(testWriter{t})

	ctr, err := container.NewContainer(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { ctr.Close() })

	return &apiEnv{router: api.SetupRoutes(cfg, ctr), ctr: ctr}
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func (e *apiEnv) seedUser(t *testing.T, name, role string) string {
	t.Helper()
	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	require.NoError(t, e.ctr.DB().Create(&model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: hash,
		Role:         role,
	}).Error)
	return e.login(t, name+"@example.com", "correct-horse")
}

func (e *apiEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	w := e.request(t, http.MethodPost, "/api/v1/login", "", gin.H{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Token)
	return body.Data.Token
}

func (e *apiEnv) request(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func reportPayload(title string) gin.H {
	return gin.H{
		"title":            title,
		"type_of_report":   "Phishing",
		"publication_date": "2026-03-02",
		"url":              "https://example.com/advisory",
		"detailed_summary": "Credential harvesting campaign.",
		"analysis":         "Lookalike domains registered in bulk.",
		"recommendation":   "Enforce phishing-resistant MFA.",
	}
}

func articleID(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.ID)
	return body.Data.ID
}

func TestAPI_LoginDenied(t *testing.T) {
	env := newAPIEnv(t)
	env.seedUser(t, "admin", model.RoleAdministrator)

	w := env.request(t, http.MethodPost, "/api/v1/login", "", gin.H{
		"email": "admin@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodPost, "/api/v1/login", "", gin.H{"email": "admin@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_RequiresToken(t *testing.T) {
	env := newAPIEnv(t)

	w := env.request(t, http.MethodGet, "/api/v1/articles/status/Review", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodGet, "/api/v1/articles/status/Review", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_ApprovalLifecycle(t *testing.T) {
	env := newAPIEnv(t)
	editorTok := env.seedUser(t, "editor", model.RoleEditor)
	adminTok := env.seedUser(t, "admin", model.RoleAdministrator)
	execTok := env.seedUser(t, "exec", model.RoleExecutive)

	w := env.request(t, http.MethodPost, "/api/v1/articles", editorTok, reportPayload("Phishing wave"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := articleID(t, w)

	// admin sends it back for revision
	w = env.request(t, http.MethodPost, "/api/v1/articles/"+id+"/disapprove", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the editor resubmits
	w = env.request(t, http.MethodPut, "/api/v1/articles/"+id, editorTok, reportPayload("Phishing wave (revised)"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// admin evaluates via the generic decision endpoint
	w = env.request(t, http.MethodPost, "/api/v1/articles/"+id+"/decision", adminTok, gin.H{"decision": "approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// executive grants final approval
	w = env.request(t, http.MethodPost, "/api/v1/articles/"+id+"/approve", execTok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data struct {
			ApprovalStatus string `json:"approval_status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, model.StatusApproved, body.Data.ApprovalStatus)

	w = env.request(t, http.MethodGet, "/api/v1/articles/status/Approved", adminTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_ErrorMapping(t *testing.T) {
	env := newAPIEnv(t)
	editorTok := env.seedUser(t, "editor", model.RoleEditor)
	adminTok := env.seedUser(t, "admin", model.RoleAdministrator)
	execTok := env.seedUser(t, "exec", model.RoleExecutive)

	// validation -> 422 with field messages
	bad := reportPayload("")
	bad["url"] = "not-a-url"
	w := env.request(t, http.MethodPost, "/api/v1/articles", editorTok, bad)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var errBody struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errBody))
	assert.Contains(t, errBody.Fields, "title")
	assert.Contains(t, errBody.Fields, "url")

	// forbidden -> 403
	w = env.request(t, http.MethodPost, "/api/v1/articles", adminTok, reportPayload("nope"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// missing article -> 404
	w = env.request(t, http.MethodGet, "/api/v1/articles/"+uuid.NewString(), adminTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// illegal transition -> 422
	w = env.request(t, http.MethodPost, "/api/v1/articles", editorTok, reportPayload("fresh"))
	require.Equal(t, http.StatusCreated, w.Code)
	id := articleID(t, w)
	w = env.request(t, http.MethodPost, "/api/v1/articles/"+id+"/approve", execTok, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// unknown status segment -> 404
	w = env.request(t, http.MethodGet, "/api/v1/articles/status/Pending", adminTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_ExecutiveVisibility(t *testing.T) {
	env := newAPIEnv(t)
	editorTok := env.seedUser(t, "editor", model.RoleEditor)
	execTok := env.seedUser(t, "exec", model.RoleExecutive)

	w := env.request(t, http.MethodPost, "/api/v1/articles", editorTok, reportPayload("hidden from execs"))
	require.Equal(t, http.StatusCreated, w.Code)
	id := articleID(t, w)

	w = env.request(t, http.MethodGet, "/api/v1/articles/status/Review", execTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodGet, "/api/v1/articles/"+id, execTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAPI_CommentsOnArticle(t *testing.T) {
	env := newAPIEnv(t)
	editorTok := env.seedUser(t, "editor", model.RoleEditor)
	adminTok := env.seedUser(t, "admin", model.RoleAdministrator)

	w := env.request(t, http.MethodPost, "/api/v1/articles", editorTok, reportPayload("needs feedback"))
	require.Equal(t, http.StatusCreated, w.Code)
	id := articleID(t, w)

	w = env.request(t, http.MethodPost, "/api/v1/articles/"+id+"/comments", adminTok,
		gin.H{"comment": "tighten the analysis"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// editors receive feedback, they do not write it
	w = env.request(t, http.MethodPost, "/api/v1/articles/"+id+"/comments", editorTok,
		gin.H{"comment": "noted"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAPI_ExportCSV(t *testing.T) {
	env := newAPIEnv(t)
	editorTok := env.seedUser(t, "editor", model.RoleEditor)

	w := env.request(t, http.MethodPost, "/api/v1/articles", editorTok, reportPayload("exported"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodGet, "/api/v1/articles/status/Review/export", editorTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "exported")
}

func TestAPI_UserManagement(t *testing.T) {
	env := newAPIEnv(t)
	adminTok := env.seedUser(t, "admin", model.RoleAdministrator)
	editorTok := env.seedUser(t, "editor", model.RoleEditor)

	w := env.request(t, http.MethodPost, "/api/v1/users", adminTok, gin.H{
		"name": "New Exec", "email": "exec2@example.com",
		"password": "long-enough", "role": model.RoleExecutive,
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.request(t, http.MethodGet, "/api/v1/users", adminTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// account management is admin-only
	w = env.request(t, http.MethodGet, "/api/v1/users", editorTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAPI_ChartsAndStats(t *testing.T) {
	env := newAPIEnv(t)
	editorTok := env.seedUser(t, "editor", model.RoleEditor)
	adminTok := env.seedUser(t, "admin", model.RoleAdministrator)

	w := env.request(t, http.MethodPost, "/api/v1/articles", editorTok, reportPayload("charted"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodGet, "/api/v1/charts/stats", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stats struct {
		Data struct {
			TotalReports int64 `json:"total_reports"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats.Data.TotalReports)

	w = env.request(t, http.MethodGet, "/api/v1/charts/reports", adminTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet,
		"/api/v1/charts/line?type_of_report=Phishing&date_filter=Today", adminTok, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAPI_NewsListing(t *testing.T) {
	env := newAPIEnv(t)
	adminTok := env.seedUser(t, "admin", model.RoleAdministrator)

	w := env.request(t, http.MethodGet, "/api/v1/news", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, "/api/v1/news?sort=random", adminTok, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAPI_HealthAndHeaders(t *testing.T) {
	env := newAPIEnv(t)

	w := env.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = env.request(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
