package service

import (
	"context"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/repository"
)

// CommentService works on comments whose review has already been resolved.
type CommentService interface {
	List(ctx context.Context, review *models.Review, page, pageSize int) ([]models.Comment, int64, error)
	Create(ctx context.Context, review *models.Review, author policy.Actor, req dto.CreateCommentRequest) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment, req dto.UpdateCommentRequest) (*models.Comment, error)
	Delete(ctx context.Context, comment *models.Comment) error
}

type commentService struct {
	comments repository.CommentRepository
}

func NewCommentService(comments repository.CommentRepository) CommentService {
	return &commentService{comments: comments}
}

func (s *commentService) List(ctx context.Context, review *models.Review, page, pageSize int) ([]models.Comment, int64, error) {
	return s.comments.ListByReview(ctx, review.ID, page, pageSize)
}

func (s *commentService) Create(ctx context.Context, review *models.Review, author policy.Actor, req dto.CreateCommentRequest) (*models.Comment, error) {
	comment := &models.Comment{
		ReviewID: review.ID,
		AuthorID: author.UserID,
		Text:     req.Text,
		Author:   models.User{ID: author.UserID, Username: author.Username},
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) Update(ctx context.Context, comment *models.Comment, req dto.UpdateCommentRequest) (*models.Comment, error) {
	if req.Text != nil {
		comment.Text = *req.Text
	}
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, comment *models.Comment) error {
	return s.comments.Delete(ctx, comment.ID)
}
