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

type UserService interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error)
	Create(ctx context.Context, req dto.CreateUserRequest) (*models.User, error)
	// Update is the admin edit; it may change the role.
	Update(ctx context.Context, user *models.User, req dto.UpdateUserRequest) (*models.User, error)
	// UpdateSelf edits the caller's own profile and ignores any role change.
	UpdateSelf(ctx context.Context, user *models.User, req dto.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, user *models.User) error
	Me(ctx context.Context, actor policy.Actor) (*models.User, error)

	CreateSuperuser(ctx context.Context, username, email string) (*models.User, error)
	SetRole(ctx context.Context, username string, role policy.Role) (*models.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	return s.users.List(ctx, search, page, pageSize)
}

func (s *userService) Create(ctx context.Context, req dto.CreateUserRequest) (*models.User, error) {
	user := models.NewUser(req.Username, req.Email)
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Bio = req.Bio
	if req.Role != "" {
		if err := s.applyRole(user, req.Role); err != nil {
			return nil, err
		}
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, translateUserErr(err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, user *models.User, req dto.UpdateUserRequest) (*models.User, error) {
	req.ApplyTo(user)
	if req.Role != nil {
		if err := s.applyRole(user, *req.Role); err != nil {
			return nil, err
		}
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, translateUserErr(err)
	}
	return user, nil
}

func (s *userService) UpdateSelf(ctx context.Context, user *models.User, req dto.UpdateUserRequest) (*models.User, error) {
	req.Role = nil
	return s.Update(ctx, user, req)
}

func (s *userService) Delete(ctx context.Context, user *models.User) error {
	return s.users.Delete(ctx, user.ID)
}

// Me loads the actor's own record.
func (s *userService) Me(ctx context.Context, actor policy.Actor) (*models.User, error) {
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("user")
		}
		return nil, err
	}
	return user, nil
}

// CreateSuperuser creates an admin account, or promotes the existing account
// with that username when the email matches.
func (s *userService) CreateSuperuser(ctx context.Context, username, email string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if user.Email != email {
			return nil, apperror.Conflict("email", "username registered with a different email")
		}
		user.PromoteSuperuser()
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	case !isNotFound(err):
		return nil, err
	}

	if err := dto.Validator().Struct(dto.SignupFields{Username: username, Email: email}); err != nil {
		return nil, dto.FieldErrors(err)
	}
	user = models.NewUser(username, email)
	user.PromoteSuperuser()
	if err := s.users.Create(ctx, user); err != nil {
		return nil, translateUserErr(err)
	}
	return user, nil
}

func (s *userService) SetRole(ctx context.Context, username string, role policy.Role) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("user")
		}
		return nil, err
	}
	if err := s.applyRole(user, string(role)); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) applyRole(user *models.User, raw string) error {
	role, err := policy.ParseRole(raw)
	if err != nil {
		return apperror.Validation("role", err.Error())
	}
	if err := user.SetRole(role); err != nil {
		return apperror.Validation("role", err.Error())
	}
	return nil
}

func translateUserErr(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		field := conflictField(err)
		return apperror.Conflict(field, "a user with this "+field+" already exists")
	}
	return err
}
