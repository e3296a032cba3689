package http

import (
	"animov/pkg/logger"
	"animov/pkg/middleware"
	"animov/pkg/response"
	"animov/services/social/internal/entity"
	"animov/services/social/internal/usecase"

	"github.com/gin-gonic/gin"
)

type SocialHandler struct {
	socialUseCase usecase.SocialUseCase
	logger        *logger.Logger
}

func NewSocialHandler(socialUseCase usecase.SocialUseCase, logger *logger.Logger) *SocialHandler {
	return &SocialHandler{
		socialUseCase: socialUseCase,
		logger:        logger,
	}
}

type FriendRequest struct {
	UserID   string `json:"userId" binding:"required_without=Username,omitempty,uuid"`
	Username string `json:"username" binding:"required_without=UserID,omitempty,max=30"`
}

// ListFriends godoc
// @Summary      List friends
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   entity.Friendship
// @Failure      401  {object}  map[string]string
// @Router       /friends [get]
func (h *SocialHandler) ListFriends(c *gin.Context) {
	friends, err := h.socialUseCase.Friends(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, friends)
}

// ListRequests godoc
// @Summary      List pending friend requests
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        direction query string false "incoming or outgoing (both when omitted)"
// @Success      200  {array}   entity.Friendship
// @Failure      400  {object}  map[string]string
// @Router       /friends/requests [get]
func (h *SocialHandler) ListRequests(c *gin.Context) {
	requests, err := h.socialUseCase.Requests(c.Request.Context(), middleware.UserID(c), entity.Direction(c.Query("direction")))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, requests)
}

// SendRequest godoc
// @Summary      Send a friend request
// @Description  Address the request by userId or by username
// @Tags         friends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body FriendRequest true "Addressee"
// @Success      201  {object}  entity.Friendship
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /friends/requests [post]
func (h *SocialHandler) SendRequest(c *gin.Context) {
	var req FriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	friendship, err := h.socialUseCase.SendRequest(c.Request.Context(), middleware.UserID(c), entity.RequestTarget{
		UserID:   req.UserID,
		Username: req.Username,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, friendship)
}

// AcceptRequest godoc
// @Summary      Accept a friend request
// @Description  Only the addressee of a pending request can accept it
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Friendship ID"
// @Success      200  {object}  entity.Friendship
// @Failure      404  {object}  map[string]string
// @Router       /friends/{id}/accept [post]
func (h *SocialHandler) AcceptRequest(c *gin.Context) {
	friendship, err := h.socialUseCase.Accept(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, friendship)
}

// RejectRequest godoc
// @Summary      Reject or cancel a friend request
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Friendship ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /friends/{id}/reject [post]
func (h *SocialHandler) RejectRequest(c *gin.Context) {
	if err := h.socialUseCase.Reject(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

// Unfriend godoc
// @Summary      Remove a friend
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Friendship ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /friends/{id} [delete]
func (h *SocialHandler) Unfriend(c *gin.Context) {
	if err := h.socialUseCase.Unfriend(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

// ListBlocked godoc
// @Summary      List blocked users
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   entity.Friendship
// @Router       /friends/blocked [get]
func (h *SocialHandler) ListBlocked(c *gin.Context) {
	blocked, err := h.socialUseCase.Blocked(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, blocked)
}

// Block godoc
// @Summary      Block a user
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        userId path string true "User ID"
// @Success      200  {object}  entity.Relationship
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /friends/block/{userId} [post]
func (h *SocialHandler) Block(c *gin.Context) {
	rel, err := h.socialUseCase.Block(c.Request.Context(), middleware.UserID(c), c.Param("userId"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, rel)
}

// Unblock godoc
// @Summary      Unblock a user
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        userId path string true "User ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /friends/block/{userId} [delete]
func (h *SocialHandler) Unblock(c *gin.Context) {
	if err := h.socialUseCase.Unblock(c.Request.Context(), middleware.UserID(c), c.Param("userId")); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

// GetRelationship godoc
// @Summary      Relationship with a user
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        userId path string true "User ID"
// @Success      200  {object}  entity.Relationship
// @Failure      404  {object}  map[string]string
// @Router       /friends/status/{userId} [get]
func (h *SocialHandler) GetRelationship(c *gin.Context) {
	rel, err := h.socialUseCase.Relationship(c.Request.Context(), middleware.UserID(c), c.Param("userId"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, rel)
}

// RegisterRoutes mounts the friends routes on rg.
func (h *SocialHandler) RegisterRoutes(rg *gin.RouterGroup) {
	friends := rg.Group("/friends")
	friends.GET("", h.ListFriends)
	friends.GET("/requests", h.ListRequests)
	friends.POST("/requests", h.SendRequest)
	friends.GET("/blocked", h.ListBlocked)
	friends.POST("/block/:userId", h.Block)
	friends.DELETE("/block/:userId", h.Unblock)
	friends.GET("/status/:userId", h.GetRelationship)
	friends.POST("/:id/accept", h.AcceptRequest)
	friends.POST("/:id/reject", h.RejectRequest)
	friends.DELETE("/:id", h.Unfriend)
}
