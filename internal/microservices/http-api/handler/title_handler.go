package handler

import (
	"net/http"
	"strconv"

	"yamdb/internal/microservices/http-api/apperror"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type TitleHandler struct {
	titleService service.TitleService
}

func NewTitleHandler(titleService service.TitleService) *TitleHandler {
	return &TitleHandler{titleService: titleService}
}

// RegisterRoutes registers title routes; reviews hang off /:title_id
func (h *TitleHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.List)
	router.POST("", h.Create)
	router.GET("/:title_id", h.Get)
	router.PATCH("/:title_id", h.Update)
	router.DELETE("/:title_id", h.Delete)
}

// List returns titles filtered by genre, category, name and year
// GET /api/v1/titles?genre=drama&category=film&name=war&year=1999
func (h *TitleHandler) List(c *gin.Context) {
	if !enforce(c, policy.Titles, policy.ActionList, nil) {
		return
	}

	filter := repository.TitleFilter{
		Genre:    c.Query("genre"),
		Category: c.Query("category"),
		Name:     c.Query("name"),
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperror.Validation("year", "enter a whole number"))
			return
		}
		filter.Year = year
	}

	page, pageSize := pageParams(c)
	titles, total, err := h.titleService.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginated(dto.ToTitleResponses(titles), total, page, pageSize))
}

func (h *TitleHandler) Get(c *gin.Context) {
	title, ok := h.load(c)
	if !ok || !enforce(c, policy.Titles, policy.ActionRetrieve, nil) {
		return
	}
	c.JSON(http.StatusOK, dto.ToTitleResponse(title))
}

func (h *TitleHandler) Create(c *gin.Context) {
	if !enforce(c, policy.Titles, policy.ActionCreate, nil) {
		return
	}
	var req dto.CreateTitleRequest
	if !bindJSON(c, &req) {
		return
	}

	title, err := h.titleService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTitleResponse(title))
}

// Update applies a partial update; PUT is not routed
func (h *TitleHandler) Update(c *gin.Context) {
	title, ok := h.load(c)
	if !ok || !enforce(c, policy.Titles, policy.ActionUpdate, nil) {
		return
	}
	var req dto.UpdateTitleRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.titleService.Update(c.Request.Context(), title, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTitleResponse(updated))
}

func (h *TitleHandler) Delete(c *gin.Context) {
	title, ok := h.load(c)
	if !ok || !enforce(c, policy.Titles, policy.ActionDelete, nil) {
		return
	}

	if err := h.titleService.Delete(c.Request.Context(), title); err != nil {
		respondError(c, err)
		return
	}

	noContent(c)
}

func (h *TitleHandler) load(c *gin.Context) (*models.Title, bool) {
	id, ok := pathID(c, "title_id", "title")
	if !ok {
		return nil, false
	}
	title, err := h.titleService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return title, true
}
