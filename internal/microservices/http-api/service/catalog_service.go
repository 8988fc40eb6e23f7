package service

import (
	"context"
	"errors"

	"yamdb/internal/microservices/http-api/apperror"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
)

// SlugService manages a slug-identified catalogue entry (categories, genres).
// Entries can be listed, created and deleted; they are never updated.
type SlugService[T models.Category | models.Genre] interface {
	List(ctx context.Context, search string, page, pageSize int) ([]T, int64, error)
	Create(ctx context.Context, name, slug string) (*T, error)
	Delete(ctx context.Context, slug string) error
}

type (
	CategoryService = SlugService[models.Category]
	GenreService    = SlugService[models.Genre]
)

type slugService[T models.Category | models.Genre] struct {
	repo  repository.SlugRepository[T]
	kind  string
	build func(name, slug string) *T
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &slugService[models.Category]{
		repo: repo,
		kind: "category",
		build: func(name, slug string) *models.Category {
			return &models.Category{Name: name, Slug: slug}
		},
	}
}

func NewGenreService(repo repository.GenreRepository) GenreService {
	return &slugService[models.Genre]{
		repo: repo,
		kind: "genre",
		build: func(name, slug string) *models.Genre {
			return &models.Genre{Name: name, Slug: slug}
		},
	}
}

func (s *slugService[T]) List(ctx context.Context, search string, page, pageSize int) ([]T, int64, error) {
	return s.repo.List(ctx, search, page, pageSize)
}

func (s *slugService[T]) Create(ctx context.Context, name, slug string) (*T, error) {
	item := s.build(name, slug)
	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("slug", s.kind+" with this slug already exists")
		}
		return nil, err
	}
	return item, nil
}

func (s *slugService[T]) Delete(ctx context.Context, slug string) error {
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		if isNotFound(err) {
			return apperror.NotFound(s.kind)
		}
		return err
	}
	return nil
}
