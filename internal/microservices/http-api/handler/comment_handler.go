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

// CommentHandler serves the comments of a review, both under
// /titles/:title_id/reviews/:review_id/comments and /reviews/:review_id/comments.
type CommentHandler struct {
	commentService service.CommentService
	resolver       *service.Resolver
}

func NewCommentHandler(commentService service.CommentService, resolver *service.Resolver) *CommentHandler {
	return &CommentHandler{commentService: commentService, resolver: resolver}
}

// RegisterRoutes registers comment routes on a group whose path ends in /:review_id
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	comments := router.Group("/comments")
	{
		comments.GET("", h.List)
		comments.POST("", h.Create)
		comments.GET("/:comment_id", h.Get)
		comments.PATCH("/:comment_id", h.Update)
		comments.DELETE("/:comment_id", h.Delete)
	}
}

func (h *CommentHandler) List(c *gin.Context) {
	review, ok := resolveReview(c, h.resolver)
	if !ok || !enforce(c, policy.Comments, policy.ActionList, nil) {
		return
	}

	page, pageSize := pageParams(c)
	comments, total, err := h.commentService.List(c.Request.Context(), review, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginated(dto.ToCommentResponses(comments), total, page, pageSize))
}

func (h *CommentHandler) Create(c *gin.Context) {
	review, ok := resolveReview(c, h.resolver)
	if !ok || !enforce(c, policy.Comments, policy.ActionCreate, nil) {
		return
	}
	var req dto.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), review, middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCommentResponse(comment))
}

func (h *CommentHandler) Get(c *gin.Context) {
	comment, ok := h.comment(c)
	if !ok || !enforce(c, policy.Comments, policy.ActionRetrieve, comment) {
		return
	}
	c.JSON(http.StatusOK, dto.ToCommentResponse(comment))
}

func (h *CommentHandler) Update(c *gin.Context) {
	comment, ok := h.comment(c)
	if !ok || !enforce(c, policy.Comments, policy.ActionUpdate, comment) {
		return
	}
	var req dto.UpdateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.commentService.Update(c.Request.Context(), comment, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCommentResponse(updated))
}

func (h *CommentHandler) Delete(c *gin.Context) {
	comment, ok := h.comment(c)
	if !ok || !enforce(c, policy.Comments, policy.ActionDelete, comment) {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), comment); err != nil {
		respondError(c, err)
		return
	}

	noContent(c)
}

func (h *CommentHandler) comment(c *gin.Context) (*models.Comment, bool) {
	review, ok := resolveReview(c, h.resolver)
	if !ok {
		return nil, false
	}
	commentID, ok := pathID(c, "comment_id", "comment")
	if !ok {
		return nil, false
	}

	res, err := h.resolver.Comment(c.Request.Context(), review.ID, commentID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	comment, err := res.OrNotFound("comment")
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return comment, true
}
