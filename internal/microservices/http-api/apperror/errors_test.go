package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("username", "required"), http.StatusBadRequest},
		{Conflict("email", "taken"), http.StatusBadRequest},
		{InvalidCredentials("bad code"), http.StatusBadRequest},
		{NotAuthenticated("no token"), http.StatusUnauthorized},
		{Permission("nope"), http.StatusForbidden},
		{NotFound("title"), http.StatusNotFound},
		{MethodNotAllowed("PUT"), http.StatusMethodNotAllowed},
		{ErrThrottled, http.StatusTooManyRequests},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("load review: %w", NotFound("review"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrPermission))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestWithCollectsFields(t *testing.T) {
	err := NewValidation()
	assert.False(t, err.HasFields())

	err.With("year", "must not be in the future").With("name", "required").With("name", "too long")

	assert.True(t, err.HasFields())
	assert.Equal(t, []string{"required", "too long"}, err.Fields["name"])
	assert.Equal(t, "validation failed (name: required, too long; year: must not be in the future)", err.Error())
}

func TestBodyOf(t *testing.T) {
	body := BodyOf(Conflict("slug", "taken"))
	assert.Equal(t, "taken", body["error"])
	assert.Equal(t, map[string][]string{"slug": {"taken"}}, body["fields"])

	body = BodyOf(NotFound("title"))
	assert.NotContains(t, body, "fields")

	body = BodyOf(errors.New("pq: connection refused"))
	assert.Equal(t, "internal server error", body["error"])
}
