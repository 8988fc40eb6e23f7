package dto

import "yamdb/internal/microservices/http-api/models"

// SlugRequest: payload for creating a category or a genre
type SlugRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

// SlugResponse is the shared shape of categories and genres
type SlugResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func ToCategoryResponse(c *models.Category) SlugResponse {
	return SlugResponse{Name: c.Name, Slug: c.Slug}
}

func ToGenreResponse(g *models.Genre) SlugResponse {
	return SlugResponse{Name: g.Name, Slug: g.Slug}
}

func ToCategoryResponses(list []models.Category) []SlugResponse {
	out := make([]SlugResponse, 0, len(list))
	for i := range list {
		out = append(out, ToCategoryResponse(&list[i]))
	}
	return out
}

func ToGenreResponses(list []models.Genre) []SlugResponse {
	out := make([]SlugResponse, 0, len(list))
	for i := range list {
		out = append(out, ToGenreResponse(&list[i]))
	}
	return out
}
