package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"animov/pkg/content"
	"animov/pkg/logger"
	"animov/pkg/middleware"
	"animov/pkg/validation"
	"animov/services/comment/internal/entity"
	"animov/services/comment/internal/repo/persistent"
	"animov/services/comment/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const parentID = "5f8a1c2e-9b3d-4e6f-8a7b-1c2d3e4f5a6b"

// MockCommentUseCase is a mock implementation of CommentUseCase
type MockCommentUseCase struct {
	mock.Mock
}

func (m *MockCommentUseCase) Create(ctx context.Context, userID string, in entity.CommentInput) (*entity.Comment, error) {
	args := m.Called(userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Comment), args.Error(1)
}

func (m *MockCommentUseCase) List(ctx context.Context, viewerID string, q entity.ListQuery) (*entity.CommentPage, error) {
	args := m.Called(viewerID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CommentPage), args.Error(1)
}

func (m *MockCommentUseCase) Update(ctx context.Context, userID, id string, patch entity.CommentPatch) (*entity.Comment, error) {
	args := m.Called(userID, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Comment), args.Error(1)
}

func (m *MockCommentUseCase) Delete(ctx context.Context, userID, id string) error {
	return m.Called(userID, id).Error(0)
}

func (m *MockCommentUseCase) Like(ctx context.Context, userID, id string) (*entity.LikeState, error) {
	args := m.Called(userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LikeState), args.Error(1)
}

func (m *MockCommentUseCase) Unlike(ctx context.Context, userID, id string) (*entity.LikeState, error) {
	args := m.Called(userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LikeState), args.Error(1)
}

func (m *MockCommentUseCase) Rating(ctx context.Context, contentID string, contentType content.Type) (*entity.RatingSummary, error) {
	args := m.Called(contentID, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RatingSummary), args.Error(1)
}

var _ usecase.CommentUseCase = (*MockCommentUseCase)(nil)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		panic(err)
	}
	return gin.New()
}

func asUser(userID string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		h(c)
	}
}

func newHandler(uc usecase.CommentUseCase) *CommentHandler {
	return NewCommentHandler(uc, logger.NewWithOptions(io.Discard, "info", false))
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func TestListComments_Anonymous(t *testing.T) {
	mockUseCase := new(MockCommentUseCase)
	router := setupTestRouter()
	router.GET("/comments", newHandler(mockUseCase).ListComments)

	mockUseCase.On("List", "", entity.ListQuery{ContentID: "1399", ContentType: content.TypeTV, Limit: 5, Offset: 10}).
		Return(&entity.CommentPage{Comments: []*entity.Comment{}, Limit: 5, Offset: 10}, nil)

	w := serve(router, http.MethodGet, "/comments?contentId=1399&contentType=tv&limit=5&offset=10", "")

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestListComments_Replies(t *testing.T) {
	mockUseCase := new(MockCommentUseCase)
	router := setupTestRouter()
	router.GET("/comments", asUser("user-1", newHandler(mockUseCase).ListComments))

	mockUseCase.On("List", "user-1", entity.ListQuery{ContentID: "tv-1399", ContentType: content.TypeTV, ParentID: parentID}).
		Return(&entity.CommentPage{Limit: 20}, nil)

	w := serve(router, http.MethodGet, "/comments?contentId=tv-1399&contentType=tv&parentId="+parentID, "")

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestListComments_BadQuery(t *testing.T) {
	cases := []string{
		"/comments?contentType=tv",
		"/comments?contentId=1&contentType=game",
		"/comments?contentId=1&contentType=tv&parentId=x",
	}
	for _, path := range cases {
		mockUseCase := new(MockCommentUseCase)
		router := setupTestRouter()
		router.GET("/comments", newHandler(mockUseCase).ListComments)

		w := serve(router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		mockUseCase.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	}
}

func TestCreateComment(t *testing.T) {
	mockUseCase := new(MockCommentUseCase)
	router := setupTestRouter()
	router.POST("/comments", asUser("user-1", newHandler(mockUseCase).CreateComment))

	rating := 9
	mockUseCase.On("Create", "user-1", entity.CommentInput{ContentID: "5114", ContentType: content.TypeAnime, Text: "Peak", Rating: &rating}).
		Return(&entity.Comment{ID: "c-1", ContentID: "anime-5114"}, nil)

	w := serve(router, http.MethodPost, "/comments", `{"contentId":"5114","contentType":"anime","text":"Peak","rating":9}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"contentId":"anime-5114"`)
	mockUseCase.AssertExpectations(t)
}

func TestCreateComment_Invalid(t *testing.T) {
	cases := []string{
		`{"contentId":"1","contentType":"anime","text":"   "}`,
		`{"contentId":"1","contentType":"anime"}`,
		`{"contentId":"1","contentType":"anime","text":"ok","rating":0}`,
		`{"contentId":"1","contentType":"anime","text":"ok","rating":11}`,
		`{"contentId":"1","contentType":"anime","text":"ok","parentId":"123"}`,
	}
	for _, body := range cases {
		mockUseCase := new(MockCommentUseCase)
		router := setupTestRouter()
		router.POST("/comments", asUser("user-1", newHandler(mockUseCase).CreateComment))

		w := serve(router, http.MethodPost, "/comments", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestCreateComment_ParentMismatch(t *testing.T) {
	mockUseCase := new(MockCommentUseCase)
	router := setupTestRouter()
	router.POST("/comments", asUser("user-1", newHandler(mockUseCase).CreateComment))

	mockUseCase.On("Create", "user-1", mock.Anything).Return(nil, usecase.ErrParentMismatch)

	w := serve(router, http.MethodPost, "/comments", `{"contentId":"1","contentType":"anime","text":"ok","parentId":"`+parentID+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateComment_Forbidden(t *testing.T) {
	mockUseCase := new(MockCommentUseCase)
	router := setupTestRouter()
	router.PATCH("/comments/:id", asUser("user-2", newHandler(mockUseCase).UpdateComment))

	mockUseCase.On("Update", "user-2", "c-1", mock.Anything).Return(nil, usecase.ErrNotCommentOwner)

	w := serve(router, http.MethodPatch, "/comments/c-1", `{"text":"edited"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteComment(t *testing.T) {
	mockUseCase := new(MockCommentUseCase)
	router := setupTestRouter()
	router.DELETE("/comments/:id", asUser("user-1", newHandler(mockUseCase).DeleteComment))

	mockUseCase.On("Delete", "user-1", "c-1").Return(nil)
	mockUseCase.On("Delete", "user-1", "c-2").Return(persistent.ErrCommentNotFound)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodDelete, "/comments/c-1", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodDelete, "/comments/c-2", "").Code)
}

func TestLikeAndUnlike(t *testing.T) {
	mockUseCase := new(MockCommentUseCase)
	handler := newHandler(mockUseCase)
	router := setupTestRouter()
	router.POST("/comments/:id/like", asUser("user-1", handler.LikeComment))
	router.DELETE("/comments/:id/like", asUser("user-1", handler.UnlikeComment))

	mockUseCase.On("Like", "user-1", "c-1").Return(&entity.LikeState{Liked: true, LikeCount: 3}, nil)
	mockUseCase.On("Unlike", "user-1", "c-1").Return(&entity.LikeState{Liked: false, LikeCount: 2}, nil)

	w := serve(router, http.MethodPost, "/comments/c-1/like", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"liked":true,"likeCount":3}}`, w.Body.String())

	w = serve(router, http.MethodDelete, "/comments/c-1/like", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"liked":false,"likeCount":2}}`, w.Body.String())
}

func TestGetRating(t *testing.T) {
	mockUseCase := new(MockCommentUseCase)
	router := setupTestRouter()
	router.GET("/comments/rating", newHandler(mockUseCase).GetRating)

	mockUseCase.On("Rating", "603", content.TypeMovie).Return(&entity.RatingSummary{
		ContentID: "movie-603",
		Count:     1,
		Average:   9,
		Histogram: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0, 6: 0, 7: 0, 8: 0, 9: 1, 10: 0},
	}, nil)

	w := serve(router, http.MethodGet, "/comments/rating?contentId=603&contentType=movie", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"9":1`)
	assert.Contains(t, w.Body.String(), `"10":0`)
}
