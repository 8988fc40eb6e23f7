package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// SlugHandler serves a slug-identified catalogue collection. Entries have no
// detail view; only DELETE is routed on /:slug.
type SlugHandler[T models.Category | models.Genre] struct {
	service service.SlugService[T]
	auth    *policy.Authorizer
	render  func([]T) []dto.SlugResponse
}

func NewCategoryHandler(svc service.CategoryService) *SlugHandler[models.Category] {
	return &SlugHandler[models.Category]{service: svc, auth: policy.Categories, render: dto.ToCategoryResponses}
}

func NewGenreHandler(svc service.GenreService) *SlugHandler[models.Genre] {
	return &SlugHandler[models.Genre]{service: svc, auth: policy.Genres, render: dto.ToGenreResponses}
}

func (h *SlugHandler[T]) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.List)
	router.POST("", h.Create)
	router.DELETE("/:slug", h.Delete)
}

// List returns the collection, optionally filtered by ?search= on name
func (h *SlugHandler[T]) List(c *gin.Context) {
	if !enforce(c, h.auth, policy.ActionList, nil) {
		return
	}

	page, pageSize := pageParams(c)
	items, total, err := h.service.List(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginated(h.render(items), total, page, pageSize))
}

func (h *SlugHandler[T]) Create(c *gin.Context) {
	if !enforce(c, h.auth, policy.ActionCreate, nil) {
		return
	}
	var req dto.SlugRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.service.Create(c.Request.Context(), req.Name, req.Slug)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.render([]T{*item})[0])
}

func (h *SlugHandler[T]) Delete(c *gin.Context) {
	if !enforce(c, h.auth, policy.ActionDelete, nil) {
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}

	noContent(c)
}
