package service

import (
	"context"

	"yamdb/internal/microservices/http-api/apperror"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
)

// Resolution is the outcome of looking up a path parameter: either the
// entity was found or it was not. Infrastructure failures are reported
// separately as errors.
type Resolution[P any] struct {
	value P
	found bool
}

func Found[P any](p P) Resolution[P] {
	return Resolution[P]{value: p, found: true}
}

func NotFound[P any]() Resolution[P] {
	return Resolution[P]{}
}

// Get returns the resolved value and whether it exists.
func (r Resolution[P]) Get() (P, bool) {
	return r.value, r.found
}

// OrNotFound turns a miss into a NotFound error naming the resource.
func (r Resolution[P]) OrNotFound(resource string) (P, error) {
	if !r.found {
		var zero P
		return zero, apperror.NotFound(resource)
	}
	return r.value, nil
}

// Resolver locates the parents of nested resources (title → review → comment)
// and users by username. Children are only found under their own parent.
type Resolver struct {
	titles   repository.TitleRepository
	reviews  repository.ReviewRepository
	comments repository.CommentRepository
	users    repository.UserRepository
}

func NewResolver(
	titles repository.TitleRepository,
	reviews repository.ReviewRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
) *Resolver {
	return &Resolver{titles: titles, reviews: reviews, comments: comments, users: users}
}

func (r *Resolver) Title(ctx context.Context, id int64) (Resolution[*models.Title], error) {
	title, err := r.titles.FindByID(ctx, id)
	return resolve(title, err)
}

// Review resolves a review. A non-zero titleID requires the review to belong to that title.
func (r *Resolver) Review(ctx context.Context, titleID, reviewID int64) (Resolution[*models.Review], error) {
	review, err := r.reviews.FindByID(ctx, reviewID)
	res, err := resolve(review, err)
	if err != nil {
		return res, err
	}
	if res.found && titleID != 0 && review.TitleID != titleID {
		return NotFound[*models.Review](), nil
	}
	return res, nil
}

// Comment resolves a comment that belongs to reviewID.
func (r *Resolver) Comment(ctx context.Context, reviewID, commentID int64) (Resolution[*models.Comment], error) {
	comment, err := r.comments.FindByID(ctx, commentID)
	res, err := resolve(comment, err)
	if err != nil {
		return res, err
	}
	if res.found && comment.ReviewID != reviewID {
		return NotFound[*models.Comment](), nil
	}
	return res, nil
}

func (r *Resolver) User(ctx context.Context, username string) (Resolution[*models.User], error) {
	user, err := r.users.FindByUsername(ctx, username)
	return resolve(user, err)
}

func resolve[P any](p P, err error) (Resolution[P], error) {
	if err != nil {
		if isNotFound(err) {
			return NotFound[P](), nil
		}
		return NotFound[P](), err
	}
	return Found(p), nil
}
