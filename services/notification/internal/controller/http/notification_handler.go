package http

import (
	"context"
	"time"

	"animov/pkg/logger"
	"animov/pkg/middleware"
	"animov/pkg/response"
	"animov/services/notification/internal/entity"
	"animov/services/notification/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type NotificationHandler struct {
	notificationUseCase usecase.NotificationUseCase
	logger              *logger.Logger
}

func NewNotificationHandler(notificationUseCase usecase.NotificationUseCase, logger *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
		logger:              logger,
	}
}

type ListNotificationsQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// GetNotifications godoc
// @Summary      Get user notifications
// @Description  Newest first; the inbox keeps the latest 100 entries
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query int false "Number of notifications to return (max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200  {object}  entity.NotificationPage
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	var query ListNotificationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, err)
		return
	}

	page, err := h.notificationUseCase.List(c.Request.Context(), middleware.UserID(c), query.Limit, query.Offset)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, page)
}

// ClearNotifications godoc
// @Summary      Clear notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /notifications [delete]
func (h *NotificationHandler) ClearNotifications(c *gin.Context) {
	if err := h.notificationUseCase.Clear(c.Request.Context(), middleware.UserID(c)); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"cleared": true})
}

// StreamNotifications godoc
// @Summary      Stream notifications
// @Description  Upgrades to a WebSocket and pushes each new notification as a JSON message
// @Tags         notifications
// @Security     BearerAuth
// @Success      101  {string}  string "Switching Protocols"
// @Failure      401  {object}  map[string]string
// @Router       /notifications/stream [get]
func (h *NotificationHandler) StreamNotifications(c *gin.Context) {
	userID := middleware.UserID(c)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed for user %s: %v", userID, err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// The client never sends data; a read error means it went away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	err = h.notificationUseCase.Stream(ctx, userID, func(n entity.Notification) error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(n)
	})
	if err != nil {
		h.logger.Warn("Notification stream for user %s ended: %v", userID, err)
	}
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.GetNotifications)
	rg.DELETE("/notifications", h.ClearNotifications)
	rg.GET("/notifications/stream", h.StreamNotifications)
}
