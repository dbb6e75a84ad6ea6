package service

import (
	"context"
	"errors"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewUserService(repo domain.Repository, logger *zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: nopLogger(logger)}
}

func (s *UserService) Create(ctx context.Context, name, email string) (*models.User, error) {
	user := &models.User{Name: name, Email: email}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, domain.Conflict("Email %s is already registered", email)
		}
		return nil, err
	}
	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User with id %d not found", id)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

// Update merges the non-nil fields of patch into the stored user.
func (s *UserService) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	var updated *models.User
	err := s.repo.WithinTx(ctx, func(repo domain.Repository) error {
		user, err := repo.GetUserByID(ctx, id)
		if err != nil {
			return notFound(err, "User with id %d not found", id)
		}
		patch.Apply(user)

		if err := repo.UpdateUser(ctx, user); err != nil {
			switch {
			case errors.Is(err, database.ErrDuplicateEmail):
				return domain.Conflict("Email %s is already registered", user.Email)
			case errors.Is(err, database.ErrNotFound):
				return domain.NotFound("User with id %d not found", id)
			}
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return notFound(err, "User with id %d not found", id)
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}
