package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reviewhub/internal/httpapi/apperr"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) RequestSignup(ctx context.Context, username, email string) (*models.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) ConfirmSignup(ctx context.Context, username, code string) (string, error) {
	args := m.Called(ctx, username, code)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func newAuthTestRouter(authService service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v1 := r.Group("/api/v1")
	NewAuthHandler(authService).RegisterRoutes(v1, func(c *gin.Context) { c.Next() })
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSignupEndpoint(t *testing.T) {
	authService := new(MockAuthService)
	r := newAuthTestRouter(authService)

	authService.On("RequestSignup", mock.Anything, "leto", "leto@arrakis.io").
		Return(&models.User{Username: "leto", Email: "leto@arrakis.io"}, nil)

	w := postJSON(t, r, "/api/v1/auth/signup", gin.H{"username": "leto", "email": "leto@arrakis.io"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "leto", resp["username"])
	assert.Equal(t, "leto@arrakis.io", resp["email"])
}

func TestSignupEndpoint_BadRequest(t *testing.T) {
	authService := new(MockAuthService)
	r := newAuthTestRouter(authService)

	// missing email
	w := postJSON(t, r, "/api/v1/auth/signup", gin.H{"username": "leto"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// not an email
	w = postJSON(t, r, "/api/v1/auth/signup", gin.H{"username": "leto", "email": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	authService.AssertNotCalled(t, "RequestSignup", mock.Anything, mock.Anything, mock.Anything)
}

func TestSignupEndpoint_Conflict(t *testing.T) {
	authService := new(MockAuthService)
	r := newAuthTestRouter(authService)

	authService.On("RequestSignup", mock.Anything, "leto", "leto@arrakis.io").
		Return(nil, apperr.Conflictf("username %q already taken", "leto"))

	w := postJSON(t, r, "/api/v1/auth/signup", gin.H{"username": "leto", "email": "leto@arrakis.io"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTokenEndpoint(t *testing.T) {
	authService := new(MockAuthService)
	r := newAuthTestRouter(authService)

	authService.On("ConfirmSignup", mock.Anything, "leto", "CODE0000000000000000000000000000").
		Return("signed.jwt.token", nil)

	w := postJSON(t, r, "/api/v1/auth/token", gin.H{
		"username":          "leto",
		"confirmation_code": "CODE0000000000000000000000000000",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "signed.jwt.token", resp["token"])
}

func TestTokenEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown username", apperr.NotFoundf("user %q not found", "ghost"), http.StatusNotFound},
		{"wrong code", apperr.Validationf("confirmation code is not valid"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authService := new(MockAuthService)
			r := newAuthTestRouter(authService)

			authService.On("ConfirmSignup", mock.Anything, "ghost", "CODE0000000000000000000000000000").
				Return("", tt.err)

			w := postJSON(t, r, "/api/v1/auth/token", gin.H{
				"username":          "ghost",
				"confirmation_code": "CODE0000000000000000000000000000",
			})
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
