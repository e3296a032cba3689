package http

import (
	"strconv"

	"animov/pkg/content"
	"animov/pkg/logger"
	"animov/pkg/middleware"
	"animov/pkg/response"
	"animov/services/library/internal/entity"
	"animov/services/library/internal/usecase"

	"github.com/gin-gonic/gin"
)

type LibraryHandler struct {
	libraryUseCase usecase.LibraryUseCase
	logger         *logger.Logger
}

func NewLibraryHandler(libraryUseCase usecase.LibraryUseCase, logger *logger.Logger) *LibraryHandler {
	return &LibraryHandler{
		libraryUseCase: libraryUseCase,
		logger:         logger,
	}
}

type AddFavoriteRequest struct {
	ContentID   string   `json:"contentId" binding:"required,contentid"`
	ContentType string   `json:"contentType" binding:"required,oneof=movie tv anime manga book"`
	Title       string   `json:"title" binding:"max=500"`
	PosterURL   string   `json:"posterUrl" binding:"omitempty,url,max=500"`
	Rating      *float64 `json:"rating" binding:"omitempty,min=0,max=10"`
}

type UpdateFavoriteRequest struct {
	Title     *string  `json:"title" binding:"omitempty,max=500"`
	PosterURL *string  `json:"posterUrl" binding:"omitempty,max=500"`
	Rating    *float64 `json:"rating" binding:"omitempty,min=0,max=10"`
}

type AddListItemRequest struct {
	ContentID   string `json:"contentId" binding:"required,contentid"`
	ContentType string `json:"contentType" binding:"required,oneof=movie tv anime manga book"`
	Title       string `json:"title" binding:"max=500"`
	PosterURL   string `json:"posterUrl" binding:"omitempty,url,max=500"`
	Status      string `json:"status"`
	Progress    *int   `json:"progress" binding:"omitempty,min=0"`
	Notes       string `json:"notes" binding:"max=2000"`
}

type UpdateListItemRequest struct {
	Status   *string `json:"status"`
	Progress *int    `json:"progress" binding:"omitempty,min=0"`
	Notes    *string `json:"notes" binding:"omitempty,max=2000"`
}

type ContainsQuery struct {
	ContentID   string `form:"contentId" binding:"required,contentid"`
	ContentType string `form:"contentType" binding:"required,oneof=movie tv anime manga book"`
}

func expandRequested(c *gin.Context) bool {
	expand, _ := strconv.ParseBool(c.Query("expand"))
	return expand
}

// ListFavorites godoc
// @Summary      List favorites
// @Tags         favorites
// @Produce      json
// @Security     BearerAuth
// @Param        contentType query string false "Filter by content type"
// @Param        expand      query bool   false "Attach catalog details"
// @Success      200  {array}   entity.Favorite
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /favorites [get]
func (h *LibraryHandler) ListFavorites(c *gin.Context) {
	favorites, err := h.libraryUseCase.ListFavorites(c.Request.Context(), middleware.UserID(c), content.Type(c.Query("contentType")), expandRequested(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, favorites)
}

// AddFavorite godoc
// @Summary      Add a favorite
// @Tags         favorites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AddFavoriteRequest true "Content to favorite"
// @Success      201  {object}  entity.Favorite
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /favorites [post]
func (h *LibraryHandler) AddFavorite(c *gin.Context) {
	var req AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	favorite, err := h.libraryUseCase.AddFavorite(c.Request.Context(), middleware.UserID(c), entity.FavoriteInput{
		ContentID:   req.ContentID,
		ContentType: content.Type(req.ContentType),
		Title:       req.Title,
		PosterURL:   req.PosterURL,
		Rating:      req.Rating,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, favorite)
}

// UpdateFavorite godoc
// @Summary      Update a favorite
// @Tags         favorites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                true "Favorite ID"
// @Param        request body UpdateFavoriteRequest true "Fields to change"
// @Success      200  {object}  entity.Favorite
// @Failure      404  {object}  map[string]string
// @Router       /favorites/{id} [patch]
// @Router       /favorites/{id} [put]
func (h *LibraryHandler) UpdateFavorite(c *gin.Context) {
	var req UpdateFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	favorite, err := h.libraryUseCase.UpdateFavorite(c.Request.Context(), middleware.UserID(c), c.Param("id"), entity.FavoritePatch{
		Title:     req.Title,
		PosterURL: req.PosterURL,
		Rating:    req.Rating,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, favorite)
}

// RemoveFavorite godoc
// @Summary      Remove a favorite
// @Tags         favorites
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Favorite ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /favorites/{id} [delete]
func (h *LibraryHandler) RemoveFavorite(c *gin.Context) {
	if err := h.libraryUseCase.RemoveFavorite(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

// FavoriteContains godoc
// @Summary      Check whether content is a favorite
// @Tags         favorites
// @Produce      json
// @Security     BearerAuth
// @Param        contentId   query string true "Content ID"
// @Param        contentType query string true "Content type"
// @Success      200  {object}  entity.Membership
// @Failure      400  {object}  map[string]string
// @Router       /favorites/contains [get]
func (h *LibraryHandler) FavoriteContains(c *gin.Context) {
	var q ContainsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}

	membership, err := h.libraryUseCase.FavoriteStatus(c.Request.Context(), middleware.UserID(c), q.ContentID, content.Type(q.ContentType))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, membership)
}

// ListItems godoc
// @Summary      List watchlist or readlist entries
// @Tags         lists
// @Produce      json
// @Security     BearerAuth
// @Param        status      query string false "Filter by status"
// @Param        contentType query string false "Filter by content type"
// @Param        expand      query bool   false "Attach catalog details"
// @Success      200  {array}   entity.ListItem
// @Failure      400  {object}  map[string]string
// @Router       /watchlist [get]
// @Router       /readlist [get]
func (h *LibraryHandler) ListItems(kind entity.ListKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := entity.ListFilter{
			Status:      c.Query("status"),
			ContentType: content.Type(c.Query("contentType")),
		}
		items, err := h.libraryUseCase.ListItems(c.Request.Context(), kind, middleware.UserID(c), filter, expandRequested(c))
		if err != nil {
			response.Error(c, h.logger, err)
			return
		}
		response.OK(c, items)
	}
}

// AddItem godoc
// @Summary      Add to the watchlist or readlist
// @Description  The watchlist takes movie, tv and anime; the readlist takes manga and book
// @Tags         lists
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AddListItemRequest true "Entry"
// @Success      201  {object}  entity.ListItem
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /watchlist [post]
// @Router       /readlist [post]
func (h *LibraryHandler) AddItem(kind entity.ListKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddListItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err)
			return
		}

		item, err := h.libraryUseCase.AddToList(c.Request.Context(), kind, middleware.UserID(c), entity.ListItemInput{
			ContentID:   req.ContentID,
			ContentType: content.Type(req.ContentType),
			Title:       req.Title,
			PosterURL:   req.PosterURL,
			Status:      req.Status,
			Progress:    req.Progress,
			Notes:       req.Notes,
		})
		if err != nil {
			response.Error(c, h.logger, err)
			return
		}
		response.Created(c, item)
	}
}

// UpdateItem godoc
// @Summary      Update a watchlist or readlist entry
// @Tags         lists
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                true "Entry ID"
// @Param        request body UpdateListItemRequest true "Fields to change"
// @Success      200  {object}  entity.ListItem
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /watchlist/{id} [patch]
// @Router       /readlist/{id} [patch]
func (h *LibraryHandler) UpdateItem(kind entity.ListKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateListItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err)
			return
		}

		item, err := h.libraryUseCase.UpdateListItem(c.Request.Context(), kind, middleware.UserID(c), c.Param("id"), entity.ListItemPatch{
			Status:   req.Status,
			Progress: req.Progress,
			Notes:    req.Notes,
		})
		if err != nil {
			response.Error(c, h.logger, err)
			return
		}
		response.OK(c, item)
	}
}

// RemoveItem godoc
// @Summary      Remove a watchlist or readlist entry
// @Tags         lists
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Entry ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /watchlist/{id} [delete]
// @Router       /readlist/{id} [delete]
func (h *LibraryHandler) RemoveItem(kind entity.ListKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.libraryUseCase.RemoveListItem(c.Request.Context(), kind, middleware.UserID(c), c.Param("id")); err != nil {
			response.Error(c, h.logger, err)
			return
		}
		response.OK(c, gin.H{"deleted": true})
	}
}

// ItemContains godoc
// @Summary      Check whether content is on the watchlist or readlist
// @Tags         lists
// @Produce      json
// @Security     BearerAuth
// @Param        contentId   query string true "Content ID"
// @Param        contentType query string true "Content type"
// @Success      200  {object}  entity.Membership
// @Failure      400  {object}  map[string]string
// @Router       /watchlist/contains [get]
// @Router       /readlist/contains [get]
func (h *LibraryHandler) ItemContains(kind entity.ListKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q ContainsQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			response.BadRequest(c, err)
			return
		}

		membership, err := h.libraryUseCase.ListStatus(c.Request.Context(), kind, middleware.UserID(c), q.ContentID, content.Type(q.ContentType))
		if err != nil {
			response.Error(c, h.logger, err)
			return
		}
		response.OK(c, membership)
	}
}

// RegisterRoutes mounts the three lists on rg.
func (h *LibraryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	favorites := rg.Group("/favorites")
	favorites.GET("", h.ListFavorites)
	favorites.POST("", h.AddFavorite)
	favorites.GET("/contains", h.FavoriteContains)
	favorites.PATCH("/:id", h.UpdateFavorite)
	favorites.PUT("/:id", h.UpdateFavorite)
	favorites.DELETE("/:id", h.RemoveFavorite)

	for _, kind := range []entity.ListKind{entity.Watchlist, entity.Readlist} {
		list := rg.Group("/" + string(kind))
		list.GET("", h.ListItems(kind))
		list.POST("", h.AddItem(kind))
		list.GET("/contains", h.ItemContains(kind))
		list.PATCH("/:id", h.UpdateItem(kind))
		list.PUT("/:id", h.UpdateItem(kind))
		list.DELETE("/:id", h.RemoveItem(kind))
	}
}
