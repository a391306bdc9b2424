package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/submission-service/internal/models"
	"github.com/SAP-F-2025/submission-service/internal/repositories/memory"
	"github.com/SAP-F-2025/submission-service/internal/utils"
)

type stubParser map[string]*casdoorsdk.Claims

func (p stubParser) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	if claims, ok := p[token]; ok {
		return claims, nil
	}
	return nil, errors.New("signature is invalid")
}

func claimsFor(id string, roles ...string) *casdoorsdk.Claims {
	user := casdoorsdk.User{Id: id, Email: id + "@example.com"}
	for _, r := range roles {
		user.Roles = append(user.Roles, &casdoorsdk.Role{Name: r})
	}
	return &casdoorsdk.Claims{User: user}
}

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := memory.NewRepository()
	repo.PutUser(&models.User{ID: "known", Role: models.RoleMentor, Email: "known@example.com"})

	parser := stubParser{
		"known-token":      claimsFor("known"),
		"learner-token":    claimsFor("fresh"),
		"instructor-token": claimsFor("instructor-7", "instructor"),
		"admin-token":      claimsFor("root", "admin"),
	}
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	auth := NewTokenAuthMiddleware(parser, repo.User(), logger)

	router := gin.New()
	router.Use(auth.AuthMiddleware())
	router.GET("/whoami", func(c *gin.Context) {
		role, _ := GetUserRoleFromContext(c)
		id, _ := GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})
	router.GET("/mentor", auth.RequireRoleMiddleware(models.RoleMentor), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	router := newAuthRouter(t)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{"missing header", "", http.StatusUnauthorized, "authorization header"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "authorization header"},
		{"invalid token", "Bearer forged", http.StatusUnauthorized, "invalid token"},
		{"directory user", "Bearer known-token", http.StatusOK, `"role":"mentor"`},
		{"claims fallback", "bearer learner-token", http.StatusOK, `"role":"learner"`},
		{"claims role mapping", "Bearer instructor-token", http.StatusOK, `"role":"mentor"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestRequireRoleMiddleware(t *testing.T) {
	router := newAuthRouter(t)

	for token, want := range map[string]int{
		"learner-token":    http.StatusForbidden,
		"instructor-token": http.StatusNoContent,
		"admin-token":      http.StatusNoContent,
	} {
		req := httptest.NewRequest(http.MethodGet, "/mentor", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, token)
	}
}
