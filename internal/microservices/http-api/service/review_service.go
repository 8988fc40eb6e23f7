package service

import (
	"context"
	"errors"

	"yamdb/internal/microservices/http-api/apperror"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/repository"
)

var errAlreadyReviewed = apperror.Conflict("title", "you have already reviewed this title")

// ReviewService works on reviews whose title has already been resolved.
type ReviewService interface {
	List(ctx context.Context, title *models.Title, page, pageSize int) ([]models.Review, int64, error)
	Create(ctx context.Context, title *models.Title, author policy.Actor, req dto.CreateReviewRequest) (*models.Review, error)
	Update(ctx context.Context, review *models.Review, req dto.UpdateReviewRequest) (*models.Review, error)
	Delete(ctx context.Context, review *models.Review) error
}

type reviewService struct {
	reviews repository.ReviewRepository
}

func NewReviewService(reviews repository.ReviewRepository) ReviewService {
	return &reviewService{reviews: reviews}
}

func (s *reviewService) List(ctx context.Context, title *models.Title, page, pageSize int) ([]models.Review, int64, error) {
	return s.reviews.ListByTitle(ctx, title.ID, page, pageSize)
}

// Create attaches the review to title and author. The existence check gives a
// friendly error in the common case; the unique index settles races.
func (s *reviewService) Create(ctx context.Context, title *models.Title, author policy.Actor, req dto.CreateReviewRequest) (*models.Review, error) {
	exists, err := s.reviews.ExistsForAuthor(ctx, title.ID, author.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errAlreadyReviewed
	}

	review := &models.Review{
		TitleID:  title.ID,
		AuthorID: author.UserID,
		Text:     req.Text,
		Score:    req.Score,
		Author:   models.User{ID: author.UserID, Username: author.Username},
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errAlreadyReviewed
		}
		return nil, err
	}
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, review *models.Review, req dto.UpdateReviewRequest) (*models.Review, error) {
	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		review.Score = *req.Score
	}
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, review *models.Review) error {
	return s.reviews.Delete(ctx, review.ID)
}
