package handler

import (
	"net/http"
	"strconv"

	"yamdb/internal/microservices/http-api/apperror"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/policy"

	"github.com/gin-gonic/gin"
)

// respondError writes err as a JSON body. Unclassified errors are attached
// to the context for the error logger and reported as 500.
func respondError(c *gin.Context, err error) {
	if apperror.KindOf(err) == apperror.KindInternal {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(apperror.Status(err), apperror.BodyOf(err))
}

// bindJSON decodes the body into dst and reports per-field errors on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, dto.FieldErrors(err))
		return false
	}
	return true
}

// enforce checks the actor against the authorizer and writes the denial.
func enforce(c *gin.Context, auth *policy.Authorizer, action policy.Action, res policy.Owned) bool {
	if err := auth.Enforce(middleware.ActorFrom(c), action, res); err != nil {
		respondError(c, err)
		return false
	}
	return true
}

// pathID parses a numeric path parameter. A malformed id cannot name an
// existing resource, so it is reported as not found.
func pathID(c *gin.Context, name, resource string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		respondError(c, apperror.NotFound(resource))
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context) (int, int) {
	return dto.PageParams(c.Query("page"), c.Query("page_size"))
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
