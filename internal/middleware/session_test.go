package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pageza/preflight/backend/internal/mocks"
	"github.com/pageza/preflight/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newSessionRouter(resolver SessionResolver, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SessionMiddleware(resolver))
	handlers := append(extra, func(c *gin.Context) {
		s := GetSession(c)
		c.JSON(http.StatusOK, gin.H{"email": s.Email, "admin": s.IsAdmin})
	})
	router.GET("/", handlers...)
	return router
}

func TestSessionMiddlewareResolvesBearerToken(t *testing.T) {
	resolver := new(mocks.MockSessionResolver)
	resolver.On("SessionFromToken", "good").Return(types.Session{Email: "admin@example.com", IsAdmin: true}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rr := httptest.NewRecorder()
	newSessionRouter(resolver).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"email":"admin@example.com","admin":true}`, rr.Body.String())
	resolver.AssertExpectations(t)
}

func TestSessionMiddlewareTreatsInvalidTokenAsAnonymous(t *testing.T) {
	resolver := new(mocks.MockSessionResolver)
	resolver.On("SessionFromToken", "bad").Return(types.Session{}, errors.New("token is expired"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rr := httptest.NewRecorder()
	newSessionRouter(resolver).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"email":"","admin":false}`, rr.Body.String())
}

func TestSessionMiddlewareIgnoresOtherSchemes(t *testing.T) {
	resolver := new(mocks.MockSessionResolver)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rr := httptest.NewRecorder()
	newSessionRouter(resolver).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	resolver.AssertNotCalled(t, "SessionFromToken", mock.Anything)
}

func TestRequireAdmin(t *testing.T) {
	resolver := new(mocks.MockSessionResolver)
	resolver.On("SessionFromToken", "admin").Return(types.Session{Email: "admin@example.com", IsAdmin: true}, nil)
	resolver.On("SessionFromToken", "user").Return(types.Session{Email: "user@example.com"}, nil)
	router := newSessionRouter(resolver, RequireAdmin())

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "anonymous", header: "", want: http.StatusUnauthorized},
		{name: "non-admin", header: "Bearer user", want: http.StatusForbidden},
		{name: "admin", header: "Bearer admin", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}
