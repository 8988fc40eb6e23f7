package dto

import (
	"math"
	"testing"

	"yamdb/internal/microservices/http-api/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupFieldsValidation(t *testing.T) {
	tests := []struct {
		name   string
		in     SignupFields
		fields []string
	}{
		{"valid", SignupFields{Username: "critic.1", Email: "c@example.com"}, nil},
		{"reserved me", SignupFields{Username: "Me", Email: "c@example.com"}, []string{"username"}},
		{"bad characters", SignupFields{Username: "bad name!", Email: "c@example.com"}, []string{"username"}},
		{"bad email", SignupFields{Username: "critic", Email: "nope"}, []string{"email"}},
		{"both missing", SignupFields{}, []string{"username", "email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validator().Struct(tt.in)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			verr := FieldErrors(err)
			assert.Equal(t, apperror.KindValidation, verr.Kind)
			for _, f := range tt.fields {
				assert.Contains(t, verr.Fields, f)
			}
			assert.Len(t, verr.Fields, len(tt.fields))
		})
	}
}

func TestFieldErrorsNonValidation(t *testing.T) {
	verr := FieldErrors(assert.AnError)
	assert.Equal(t, apperror.KindValidation, verr.Kind)
	assert.Contains(t, verr.Fields, "body")
}

func TestPageParams(t *testing.T) {
	tests := []struct {
		page, size         string
		wantPage, wantSize int
	}{
		{"", "", 1, DefaultPageSize},
		{"3", "50", 3, 50},
		{"0", "500", 1, DefaultPageSize},
		{"x", "-1", 1, DefaultPageSize},
	}
	for _, tt := range tests {
		page, size := PageParams(tt.page, tt.size)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantSize, size)
	}
}

func TestPageParamsClampsHugePage(t *testing.T) {
	for _, raw := range []string{"9223372036854775807", "92233720368547758", "21474837"} {
		page, size := PageParams(raw, "100")
		assert.Equal(t, maxPage, page, raw)
		assert.Positive(t, (page-1)*size, raw)
		assert.LessOrEqual(t, (page-1)*size, math.MaxInt32, raw)
	}
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated[int](nil, 41, 2, 20)
	assert.NotNil(t, p.Data)
	assert.Equal(t, int64(3), p.TotalPages)

	p = NewPaginated([]int{1}, 40, 1, 20)
	assert.Equal(t, int64(2), p.TotalPages)
}
