package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRouter(origins ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware(), CORSMiddleware(origins), SecurityMiddleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		method     string
		origin     string
		wantCode   int
		wantOrigin string
	}{
		{"allow all", nil, http.MethodGet, "https://lms.example.com", http.StatusOK, "*"},
		{"listed origin", []string{"https://lms.example.com"}, http.MethodGet, "https://lms.example.com", http.StatusOK, "https://lms.example.com"},
		{"unlisted origin still served", []string{"https://lms.example.com"}, http.MethodGet, "https://evil.example.com", http.StatusOK, ""},
		{"listed preflight", []string{"https://lms.example.com"}, http.MethodOptions, "https://lms.example.com", http.StatusNoContent, "https://lms.example.com"},
		{"unlisted preflight", []string{"https://lms.example.com"}, http.MethodOptions, "https://evil.example.com", http.StatusForbidden, ""},
		{"no origin", []string{"https://lms.example.com"}, http.MethodGet, "", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/ping", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			corsRouter(tt.origins...).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	router := corsRouter()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}
