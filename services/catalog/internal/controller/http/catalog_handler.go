package http

import (
	"animov/pkg/content"
	"animov/pkg/logger"
	"animov/pkg/response"
	"animov/services/catalog/internal/usecase"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogUseCase usecase.CatalogUseCase
	logger         *logger.Logger
}

func NewCatalogHandler(catalogUseCase usecase.CatalogUseCase, logger *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogUseCase: catalogUseCase,
		logger:         logger,
	}
}

type SearchQuery struct {
	Query string `form:"q" binding:"required,notblank,max=200"`
	Page  int    `form:"page" binding:"omitempty,min=1,max=100"`
}

type typeURI struct {
	Type string `uri:"type" binding:"required,oneof=movie tv anime manga book"`
}

func (h *CatalogHandler) bindType(c *gin.Context) (content.Type, bool) {
	var uri typeURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return "", false
	}
	return content.Type(uri.Type), true
}

// Search godoc
// @Summary      Search a catalog
// @Description  Searches the upstream catalog that serves the given content type
// @Tags         catalog
// @Produce      json
// @Param        type path  string true  "Content type" Enums(movie, tv, anime, manga, book)
// @Param        q    query string true  "Search text"
// @Param        page query int    false "Page number" default(1)
// @Success      200  {object}  catalog.Page
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /catalog/{type}/search [get]
func (h *CatalogHandler) Search(c *gin.Context) {
	contentType, ok := h.bindType(c)
	if !ok {
		return
	}
	var query SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, err)
		return
	}
	if query.Page == 0 {
		query.Page = 1
	}

	page, err := h.catalogUseCase.Search(c.Request.Context(), contentType, query.Query, query.Page)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, page)
}

// Trending godoc
// @Summary      Trending titles
// @Tags         catalog
// @Produce      json
// @Param        type path string true "Content type" Enums(movie, tv, anime, manga, book)
// @Success      200  {object}  catalog.Page
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /catalog/{type}/trending [get]
func (h *CatalogHandler) Trending(c *gin.Context) {
	contentType, ok := h.bindType(c)
	if !ok {
		return
	}

	page, err := h.catalogUseCase.Trending(c.Request.Context(), contentType)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, page)
}

// GetDetails godoc
// @Summary      Title details
// @Tags         catalog
// @Produce      json
// @Param        type path string true "Content type" Enums(movie, tv, anime, manga, book)
// @Param        id   path string true "External or namespaced content ID"
// @Success      200  {object}  catalog.Item
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /catalog/{type}/{id} [get]
func (h *CatalogHandler) GetDetails(c *gin.Context) {
	contentType, ok := h.bindType(c)
	if !ok {
		return
	}

	item, err := h.catalogUseCase.Details(c.Request.Context(), contentType, c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, item)
}

func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	catalogGroup := rg.Group("/catalog/:type")
	{
		catalogGroup.GET("/search", h.Search)
		catalogGroup.GET("/trending", h.Trending)
		catalogGroup.GET("/:id", h.GetDetails)
	}
}
