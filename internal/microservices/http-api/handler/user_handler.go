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

// UserHandler serves admin user management under /users and the caller's
// own profile under /users/me.
type UserHandler struct {
	userService service.UserService
	resolver    *service.Resolver
}

func NewUserHandler(userService service.UserService, resolver *service.Resolver) *UserHandler {
	return &UserHandler{userService: userService, resolver: resolver}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.List)
	router.POST("", h.Create)

	// DELETE is routed so it reaches the policy and is refused there
	router.GET("/me", h.GetMe)
	router.PATCH("/me", h.UpdateMe)
	router.DELETE("/me", h.DeleteMe)

	router.GET("/:username", h.Get)
	router.PATCH("/:username", h.Update)
	router.DELETE("/:username", h.Delete)
}

// List returns users, optionally filtered by ?search= on username
func (h *UserHandler) List(c *gin.Context) {
	if !enforce(c, policy.Users, policy.ActionList, nil) {
		return
	}

	page, pageSize := pageParams(c)
	users, total, err := h.userService.List(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginated(dto.ToUserResponses(users), total, page, pageSize))
}

func (h *UserHandler) Create(c *gin.Context) {
	if !enforce(c, policy.Users, policy.ActionCreate, nil) {
		return
	}
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}

func (h *UserHandler) Get(c *gin.Context) {
	user, ok := h.load(c, policy.ActionRetrieve)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *UserHandler) Update(c *gin.Context) {
	user, ok := h.load(c, policy.ActionUpdate)
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.userService.Update(c.Request.Context(), user, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(updated))
}

func (h *UserHandler) Delete(c *gin.Context) {
	user, ok := h.load(c, policy.ActionDelete)
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	noContent(c)
}

// GetMe returns the caller's own profile
// GET /api/v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	if !enforce(c, policy.Me, policy.ActionRetrieve, nil) {
		return
	}

	user, err := h.userService.Me(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// UpdateMe edits the caller's own profile; a role in the body is ignored
// PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	if !enforce(c, policy.Me, policy.ActionUpdate, nil) {
		return
	}
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Me(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	updated, err := h.userService.UpdateSelf(c.Request.Context(), user, req.AsUserUpdate())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(updated))
}

// DeleteMe is always refused with 405
func (h *UserHandler) DeleteMe(c *gin.Context) {
	enforce(c, policy.Me, policy.ActionDelete, nil)
}

// load enforces the admin policy, then resolves :username.
func (h *UserHandler) load(c *gin.Context, action policy.Action) (*models.User, bool) {
	if !enforce(c, policy.Users, action, nil) {
		return nil, false
	}

	res, err := h.resolver.User(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	user, err := res.OrNotFound("user")
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return user, true
}
