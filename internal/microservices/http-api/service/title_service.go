package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"yamdb/internal/microservices/http-api/apperror"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
)

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	Get(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, req dto.CreateTitleRequest) (*models.Title, error)
	Update(ctx context.Context, title *models.Title, req dto.UpdateTitleRequest) (*models.Title, error)
	Delete(ctx context.Context, title *models.Title) error
}

type titleService struct {
	titles     repository.TitleRepository
	reviews    repository.ReviewRepository
	categories repository.CategoryRepository
	genres     repository.GenreRepository
	now        func() time.Time
}

func NewTitleService(
	titles repository.TitleRepository,
	reviews repository.ReviewRepository,
	categories repository.CategoryRepository,
	genres repository.GenreRepository,
) TitleService {
	return &titleService{
		titles:     titles,
		reviews:    reviews,
		categories: categories,
		genres:     genres,
		now:        time.Now,
	}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	titles, total, err := s.titles.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	if err := s.fillRatings(ctx, titles); err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*models.Title, error) {
	title, err := s.titles.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("title")
		}
		return nil, err
	}
	one := []models.Title{*title}
	if err := s.fillRatings(ctx, one); err != nil {
		return nil, err
	}
	title.Rating = one[0].Rating
	return title, nil
}

// Create validates every field first so a bad genre slug leaves nothing behind.
func (s *titleService) Create(ctx context.Context, req dto.CreateTitleRequest) (*models.Title, error) {
	verr := apperror.NewValidation()
	s.checkYear(verr, req.Year)

	title := &models.Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
	}
	if req.Category != nil && *req.Category != "" {
		if err := s.setCategory(ctx, verr, title, *req.Category); err != nil {
			return nil, err
		}
	}
	genres, err := s.lookupGenres(ctx, verr, req.Genre)
	if err != nil {
		return nil, err
	}
	title.Genres = genres

	if verr.HasFields() {
		return nil, verr
	}
	if err := s.titles.Create(ctx, title); err != nil {
		return nil, err
	}
	return title, nil
}

func (s *titleService) Update(ctx context.Context, title *models.Title, req dto.UpdateTitleRequest) (*models.Title, error) {
	verr := apperror.NewValidation()

	if req.Name != nil {
		title.Name = *req.Name
	}
	if req.Year != nil {
		s.checkYear(verr, *req.Year)
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = req.Description
	}
	if req.Category != nil {
		if *req.Category == "" {
			title.CategoryID = nil
			title.Category = nil
		} else if err := s.setCategory(ctx, verr, title, *req.Category); err != nil {
			return nil, err
		}
	}
	replaceGenres := req.Genre != nil
	if replaceGenres {
		genres, err := s.lookupGenres(ctx, verr, *req.Genre)
		if err != nil {
			return nil, err
		}
		title.Genres = genres
	}

	if verr.HasFields() {
		return nil, verr
	}
	if err := s.titles.Update(ctx, title, replaceGenres); err != nil {
		return nil, err
	}
	return s.Get(ctx, title.ID)
}

func (s *titleService) Delete(ctx context.Context, title *models.Title) error {
	if err := s.titles.Delete(ctx, title.ID); err != nil {
		if isNotFound(err) {
			return apperror.NotFound("title")
		}
		return err
	}
	return nil
}

func (s *titleService) checkYear(verr *apperror.Error, year int) {
	if current := s.now().Year(); year > current {
		verr.With("year", fmt.Sprintf("year cannot be later than %d", current))
	}
}

func (s *titleService) setCategory(ctx context.Context, verr *apperror.Error, title *models.Title, slug string) error {
	category, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		if isNotFound(err) {
			verr.With("category", fmt.Sprintf("unknown category %q", slug))
			return nil
		}
		return err
	}
	title.CategoryID = &category.ID
	title.Category = category
	return nil
}

func (s *titleService) lookupGenres(ctx context.Context, verr *apperror.Error, slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return []models.Genre{}, nil
	}
	genres, err := s.genres.FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(genres))
	for _, g := range genres {
		known[g.Slug] = true
	}
	var missing []string
	for _, slug := range slugs {
		if !known[slug] {
			missing = append(missing, slug)
		}
	}
	if len(missing) > 0 {
		verr.With("genre", "unknown genre(s): "+strings.Join(missing, ", "))
	}
	return genres, nil
}

// fillRatings sets Rating on each title to the mean of its review scores.
func (s *titleService) fillRatings(ctx context.Context, titles []models.Title) error {
	if len(titles) == 0 {
		return nil
	}
	ids := make([]int64, len(titles))
	for i := range titles {
		ids[i] = titles[i].ID
	}
	scores, err := s.reviews.ScoresByTitle(ctx, ids)
	if err != nil {
		return err
	}
	for i := range titles {
		titles[i].Rating = models.Mean(scores[titles[i].ID])
	}
	return nil
}
