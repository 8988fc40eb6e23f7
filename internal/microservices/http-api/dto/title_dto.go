package dto

import "yamdb/internal/microservices/http-api/models"

// CreateTitleRequest: write representation; category and genres by slug
type CreateTitleRequest struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description *string  `json:"description"`
	Category    *string  `json:"category" binding:"omitempty,slug"`
	Genre       []string `json:"genre" binding:"dive,slug"`
}

// UpdateTitleRequest: partial update. An empty category slug clears the category.
type UpdateTitleRequest struct {
	Name        *string   `json:"name" binding:"omitempty,max=256"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category" binding:"omitempty,slug"`
	Genre       *[]string `json:"genre" binding:"omitempty,dive,slug"`
}

// TitleResponse: read representation with nested catalogue objects
type TitleResponse struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Year        int            `json:"year"`
	Rating      *float64       `json:"rating"`
	Description *string        `json:"description"`
	Genre       []SlugResponse `json:"genre"`
	Category    *SlugResponse  `json:"category"`
}

func ToTitleResponse(t *models.Title) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       ToGenreResponses(t.Genres),
	}
	if t.Category != nil {
		c := ToCategoryResponse(t.Category)
		resp.Category = &c
	}
	return resp
}

func ToTitleResponses(list []models.Title) []TitleResponse {
	out := make([]TitleResponse, 0, len(list))
	for i := range list {
		out = append(out, ToTitleResponse(&list[i]))
	}
	return out
}
