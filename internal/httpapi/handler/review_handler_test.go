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

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/rbac"
)

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	args := m.Called(ctx, titleID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	args := m.Called(ctx, titleID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, titleID int64, authorID, text string, score int) (*models.Review, error) {
	args := m.Called(ctx, titleID, authorID, text, score)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, titleID, reviewID int64, req *dto.UpdateReviewRequest) (*models.Review, error) {
	args := m.Called(ctx, titleID, reviewID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, titleID, reviewID int64) error {
	args := m.Called(ctx, titleID, reviewID)
	return args.Error(0)
}

// asActor installs a resolved actor the way the auth middleware does.
func asActor(actor rbac.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("actor", actor)
		c.Next()
	}
}

func newReviewTestRouter(svc *MockReviewService, actorMiddleware ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.Use(actorMiddleware...)
	NewReviewHandler(svc).RegisterRoutes(v1)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateReviewEndpoint(t *testing.T) {
	svc := new(MockReviewService)
	author := rbac.Actor{UserID: "u-1", Role: rbac.RoleUser, Authenticated: true}
	r := newReviewTestRouter(svc, asActor(author))

	svc.On("Create", mock.Anything, int64(1), "u-1", "a classic", 9).
		Return(&models.Review{ID: 42, TitleID: 1, AuthorID: "u-1", Text: "a classic", Score: 9}, nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/titles/1/reviews", gin.H{"text": "a classic", "score": 9})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateReviewEndpoint_Anonymous(t *testing.T) {
	svc := new(MockReviewService)
	r := newReviewTestRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/api/v1/titles/1/reviews", gin.H{"text": "a classic", "score": 9})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateReviewEndpoint_NonAuthorForbidden(t *testing.T) {
	svc := new(MockReviewService)
	other := rbac.Actor{UserID: "u-2", Role: rbac.RoleUser, Authenticated: true}
	r := newReviewTestRouter(svc, asActor(other))

	svc.On("Get", mock.Anything, int64(1), int64(42)).
		Return(&models.Review{ID: 42, TitleID: 1, AuthorID: "u-1"}, nil)

	w := doJSON(t, r, http.MethodPatch, "/api/v1/titles/1/reviews/42", gin.H{"text": "edited"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateReviewEndpoint_Author(t *testing.T) {
	svc := new(MockReviewService)
	author := rbac.Actor{UserID: "u-1", Role: rbac.RoleUser, Authenticated: true}
	r := newReviewTestRouter(svc, asActor(author))

	svc.On("Get", mock.Anything, int64(1), int64(42)).
		Return(&models.Review{ID: 42, TitleID: 1, AuthorID: "u-1", Text: "old", Score: 3}, nil)
	svc.On("Update", mock.Anything, int64(1), int64(42), mock.AnythingOfType("*dto.UpdateReviewRequest")).
		Return(&models.Review{ID: 42, TitleID: 1, AuthorID: "u-1", Text: "edited", Score: 3}, nil)

	w := doJSON(t, r, http.MethodPatch, "/api/v1/titles/1/reviews/42", gin.H{"text": "edited"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteReviewEndpoint_ModeratorOnly(t *testing.T) {
	tests := []struct {
		name       string
		actor      rbac.Actor
		wantStatus int
	}{
		{"moderator", rbac.Actor{UserID: "m", Role: rbac.RoleModerator, Authenticated: true}, http.StatusNoContent},
		{"admin", rbac.Actor{UserID: "a", Role: rbac.RoleAdmin, Authenticated: true}, http.StatusForbidden},
		{"author", rbac.Actor{UserID: "u-1", Role: rbac.RoleUser, Authenticated: true}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReviewService)
			r := newReviewTestRouter(svc, asActor(tt.actor))

			svc.On("Get", mock.Anything, int64(1), int64(42)).
				Return(&models.Review{ID: 42, TitleID: 1, AuthorID: "u-1"}, nil)
			svc.On("Delete", mock.Anything, int64(1), int64(42)).Return(nil)

			w := doJSON(t, r, http.MethodDelete, "/api/v1/titles/1/reviews/42", nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusNoContent {
				svc.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestListReviewsEndpoint_Pagination(t *testing.T) {
	svc := new(MockReviewService)
	r := newReviewTestRouter(svc)

	svc.On("ListByTitle", mock.Anything, int64(1), 2, 5).
		Return([]models.Review{{ID: 42, TitleID: 1, Score: 9}}, int64(11), nil)

	w := doJSON(t, r, http.MethodGet, "/api/v1/titles/1/reviews?page=2&page_size=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Count   int64             `json:"count"`
		Results []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(11), page.Count)
	assert.Len(t, page.Results, 1)
}

func TestReviewEndpoint_BadID(t *testing.T) {
	svc := new(MockReviewService)
	r := newReviewTestRouter(svc)

	w := doJSON(t, r, http.MethodGet, "/api/v1/titles/abc/reviews", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
