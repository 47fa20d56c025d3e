package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"freelance-crm/internal/auth"
	"freelance-crm/internal/config"
	"freelance-crm/internal/handlers"
	"freelance-crm/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSetupRouter(t *testing.T) {
	db, err := storage.NewDB(":memory:")
	require.NoError(t, err, "failed to create database")
	defer db.Close()

	if _, err := os.Stat("../../web/templates"); os.IsNotExist(err) {
		t.Skip("Template directory not found, skipping router test")
	}
	h := handlers.NewHandlers(db, "../../web/templates", false)

	// Registering conflicting patterns panics here.
	mux := setupRouter(h, "../../web/static")

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		allowAlt   []int
	}{
		{name: "Root redirects to /dashboard", method: "GET", path: "/", wantStatus: http.StatusFound},
		{
			name:       "Static file access",
			method:     "GET",
			path:       "/static/style.css",
			wantStatus: http.StatusOK,
			allowAlt:   []int{http.StatusNotFound},
		},
		{name: "Login page is public", method: "GET", path: "/login", wantStatus: http.StatusOK},
		{name: "Dashboard requires auth", method: "GET", path: "/dashboard", wantStatus: http.StatusFound},
		{name: "Projects require auth", method: "GET", path: "/projects/1", wantStatus: http.StatusFound},
		{name: "API requires auth", method: "GET", path: "/api/v1/clients", wantStatus: http.StatusUnauthorized},
		{name: "Token endpoint without token service", method: "POST", path: "/api/v1/token", wantStatus: http.StatusServiceUnavailable},
		{name: "Health check", method: "GET", path: "/healthz", wantStatus: http.StatusOK},
		{name: "Unknown route", method: "GET", path: "/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			assert.NotEmpty(t, w.Header().Get(handlers.RequestIDHeader))
			if len(tt.allowAlt) > 0 {
				acceptableStatuses := append([]int{tt.wantStatus}, tt.allowAlt...)
				assert.Contains(t, acceptableStatuses, w.Code,
					"%s %s returned unexpected status", tt.method, tt.path)
			} else {
				assert.Equal(t, tt.wantStatus, w.Code,
					"%s %s returned unexpected status", tt.method, tt.path)
			}
		})
	}
}

func TestAPIFlowWithBearerToken(t *testing.T) {
	db, err := storage.NewDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	hash, err := auth.HashPassword("secret")
	require.NoError(t, err)
	_, err = db.CreateUser(ctx, "alice", "Alice", hash)
	require.NoError(t, err)

	h := handlers.NewHandlers(db, "../../web/templates", false,
		handlers.WithTokenService(auth.NewTokenService("test-secret", time.Hour)))
	router := setupRouter(h, "../../web/static")

	do := func(method, path, token, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := do("POST", "/api/v1/token", "", `{"username":"alice","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do("POST", "/api/v1/token", "", `{"username":"alice","password":"secret"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tok handlers.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	require.NotEmpty(t, tok.Token)
	assert.Equal(t, "Bearer", tok.TokenType)

	w = do("POST", "/api/v1/clients", tok.Token, `{"name":"Acme","email":"billing@acme.test"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var client struct{ ID int64 }
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &client))

	w = do("POST", "/api/v1/projects", tok.Token, `{"client_id":`+itoa(client.ID)+`,"name":"Site","rate":50}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var project struct{ ID int64 }
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))

	w = do("POST", "/api/v1/time-entries", tok.Token, `{"project_id":`+itoa(project.ID)+`,"hours":2}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	due := time.Now().AddDate(0, 0, 30).UTC().Format(time.RFC3339)
	w = do("POST", "/api/v1/invoices/from-time", tok.Token, `{"project_id":`+itoa(project.ID)+`,"due_date":"`+due+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var inv struct {
		Number string
		Amount float64
		Status string
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inv))
	assert.Equal(t, "INV-0001", inv.Number)
	assert.InDelta(t, 100.0, inv.Amount, 0.001)
	assert.Equal(t, "draft", inv.Status)

	// The entries are billed now, so a second derivation has nothing to invoice.
	w = do("POST", "/api/v1/invoices/from-time", tok.Token, `{"project_id":`+itoa(project.ID)+`,"due_date":"`+due+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do("GET", "/api/v1/clients", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBootstrapAdmin(t *testing.T) {
	db, err := storage.NewDB(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, bootstrapAdmin(ctx, db, config.AuthConfig{}, zap.NewNop()))
	count, err := db.UserCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	cfg := config.AuthConfig{AdminUser: "admin", AdminPassword: "pw"}
	require.NoError(t, bootstrapAdmin(ctx, db, cfg, zap.NewNop()))
	require.NoError(t, bootstrapAdmin(ctx, db, cfg, zap.NewNop()))
	count, err = db.UserCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
