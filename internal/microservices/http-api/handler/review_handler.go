package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// ReviewHandler serves /titles/:title_id/reviews. The title is resolved
// before the policy check and before the body is read.
type ReviewHandler struct {
	reviewService service.ReviewService
	resolver      *service.Resolver
}

func NewReviewHandler(reviewService service.ReviewService, resolver *service.Resolver) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, resolver: resolver}
}

func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	reviews := router.Group("/:title_id/reviews")
	{
		reviews.GET("", h.List)
		reviews.POST("", h.Create)
		reviews.GET("/:review_id", h.Get)
		reviews.PATCH("/:review_id", h.Update)
		reviews.DELETE("/:review_id", h.Delete)
	}
}

func (h *ReviewHandler) List(c *gin.Context) {
	title, ok := h.title(c)
	if !ok || !enforce(c, policy.Reviews, policy.ActionList, nil) {
		return
	}

	page, pageSize := pageParams(c)
	reviews, total, err := h.reviewService.List(c.Request.Context(), title, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginated(dto.ToReviewResponses(reviews), total, page, pageSize))
}

// Create posts the caller's review of the title; one per user and title
func (h *ReviewHandler) Create(c *gin.Context) {
	title, ok := h.title(c)
	if !ok || !enforce(c, policy.Reviews, policy.ActionCreate, nil) {
		return
	}
	var req dto.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), title, middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToReviewResponse(review))
}

func (h *ReviewHandler) Get(c *gin.Context) {
	review, ok := h.review(c)
	if !ok || !enforce(c, policy.Reviews, policy.ActionRetrieve, review) {
		return
	}
	c.JSON(http.StatusOK, dto.ToReviewResponse(review))
}

func (h *ReviewHandler) Update(c *gin.Context) {
	review, ok := h.review(c)
	if !ok || !enforce(c, policy.Reviews, policy.ActionUpdate, review) {
		return
	}
	var req dto.UpdateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.reviewService.Update(c.Request.Context(), review, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToReviewResponse(updated))
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	review, ok := h.review(c)
	if !ok || !enforce(c, policy.Reviews, policy.ActionDelete, review) {
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), review); err != nil {
		respondError(c, err)
		return
	}

	noContent(c)
}

func (h *ReviewHandler) title(c *gin.Context) (*models.Title, bool) {
	id, ok := pathID(c, "title_id", "title")
	if !ok {
		return nil, false
	}
	res, err := h.resolver.Title(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	title, err := res.OrNotFound("title")
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return title, true
}

func (h *ReviewHandler) review(c *gin.Context) (*models.Review, bool) {
	return resolveReview(c, h.resolver)
}

// resolveReview finds the review named by :review_id, scoped to :title_id
// when the route has one.
func resolveReview(c *gin.Context, resolver *service.Resolver) (*models.Review, bool) {
	var titleID int64
	if c.Param("title_id") != "" {
		id, ok := pathID(c, "title_id", "title")
		if !ok {
			return nil, false
		}
		titleID = id
	}
	reviewID, ok := pathID(c, "review_id", "review")
	if !ok {
		return nil, false
	}

	res, err := resolver.Review(c.Request.Context(), titleID, reviewID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	review, err := res.OrNotFound("review")
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return review, true
}
