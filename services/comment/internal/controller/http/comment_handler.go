package http

import (
	"animov/pkg/content"
	"animov/pkg/logger"
	"animov/pkg/middleware"
	"animov/pkg/response"
	"animov/services/comment/internal/entity"
	"animov/services/comment/internal/usecase"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentUseCase usecase.CommentUseCase
	logger         *logger.Logger
}

func NewCommentHandler(commentUseCase usecase.CommentUseCase, logger *logger.Logger) *CommentHandler {
	return &CommentHandler{
		commentUseCase: commentUseCase,
		logger:         logger,
	}
}

type CreateCommentRequest struct {
	ContentID   string `json:"contentId" binding:"required,contentid"`
	ContentType string `json:"contentType" binding:"required,oneof=movie tv anime manga book"`
	Text        string `json:"text" binding:"required,notblank,max=2000"`
	Rating      *int   `json:"rating" binding:"omitempty,min=1,max=10"`
	ParentID    string `json:"parentId" binding:"omitempty,uuid"`
}

type UpdateCommentRequest struct {
	Text   *string `json:"text" binding:"omitempty,notblank,max=2000"`
	Rating *int    `json:"rating" binding:"omitempty,min=1,max=10"`
}

type ListCommentsQuery struct {
	ContentID   string `form:"contentId" binding:"required,contentid"`
	ContentType string `form:"contentType" binding:"required,oneof=movie tv anime manga book"`
	ParentID    string `form:"parentId" binding:"omitempty,uuid"`
	Limit       int    `form:"limit" binding:"omitempty,min=1"`
	Offset      int    `form:"offset" binding:"omitempty,min=0"`
}

type RatingQuery struct {
	ContentID   string `form:"contentId" binding:"required,contentid"`
	ContentType string `form:"contentType" binding:"required,oneof=movie tv anime manga book"`
}

// ListComments godoc
// @Summary      List comments
// @Description  Top-level comments on a piece of content, or the direct replies to parentId
// @Tags         comments
// @Produce      json
// @Param        contentId   query string true  "Content ID"
// @Param        contentType query string true  "Content type"
// @Param        parentId    query string false "Parent comment ID"
// @Param        limit       query int    false "Page size (default 20, max 100)"
// @Param        offset      query int    false "Offset"
// @Success      200  {object}  entity.CommentPage
// @Failure      400  {object}  map[string]string
// @Router       /comments [get]
func (h *CommentHandler) ListComments(c *gin.Context) {
	var q ListCommentsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}

	page, err := h.commentUseCase.List(c.Request.Context(), middleware.UserID(c), entity.ListQuery{
		ContentID:   q.ContentID,
		ContentType: content.Type(q.ContentType),
		ParentID:    q.ParentID,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, page)
}

// CreateComment godoc
// @Summary      Post a comment or reply
// @Description  Replies reference a comment on the same content and carry no rating
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateCommentRequest true "Comment"
// @Success      201  {object}  entity.Comment
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /comments [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	comment, err := h.commentUseCase.Create(c.Request.Context(), middleware.UserID(c), entity.CommentInput{
		ContentID:   req.ContentID,
		ContentType: content.Type(req.ContentType),
		Text:        req.Text,
		Rating:      req.Rating,
		ParentID:    req.ParentID,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, comment)
}

// UpdateComment godoc
// @Summary      Edit a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string               true "Comment ID"
// @Param        request body UpdateCommentRequest true "Fields to change"
// @Success      200  {object}  entity.Comment
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /comments/{id} [patch]
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	comment, err := h.commentUseCase.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), entity.CommentPatch{
		Text:   req.Text,
		Rating: req.Rating,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, comment)
}

// DeleteComment godoc
// @Summary      Delete a comment
// @Description  Removes the comment, its replies and their likes
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Comment ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /comments/{id} [delete]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	if err := h.commentUseCase.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

// LikeComment godoc
// @Summary      Like a comment
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Comment ID"
// @Success      200  {object}  entity.LikeState
// @Failure      404  {object}  map[string]string
// @Router       /comments/{id}/like [post]
func (h *CommentHandler) LikeComment(c *gin.Context) {
	state, err := h.commentUseCase.Like(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, state)
}

// UnlikeComment godoc
// @Summary      Remove a like
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Comment ID"
// @Success      200  {object}  entity.LikeState
// @Failure      404  {object}  map[string]string
// @Router       /comments/{id}/like [delete]
func (h *CommentHandler) UnlikeComment(c *gin.Context) {
	state, err := h.commentUseCase.Unlike(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, state)
}

// GetRating godoc
// @Summary      Rating summary
// @Description  Count, mean and 1-10 histogram over ratings in top-level comments
// @Tags         comments
// @Produce      json
// @Param        contentId   query string true "Content ID"
// @Param        contentType query string true "Content type"
// @Success      200  {object}  entity.RatingSummary
// @Failure      400  {object}  map[string]string
// @Router       /comments/rating [get]
func (h *CommentHandler) GetRating(c *gin.Context) {
	var q RatingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}

	summary, err := h.commentUseCase.Rating(c.Request.Context(), q.ContentID, content.Type(q.ContentType))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, summary)
}
