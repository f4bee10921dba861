package service

import (
	"context"
	"errors"

	"github.com/AlibekovAA/bloglist/backend/internal/common/logger"
	userdomain "github.com/AlibekovAA/bloglist/backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/bloglist/backend/internal/user/repository"
)

type UserService struct {
	repo userrepo.Repository
	log  *logger.Logger
}

func NewUserService(repo userrepo.Repository, log *logger.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

func (s *UserService) ListUsers(ctx context.Context) ([]userdomain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "users_list_failed",
		}).Errorf("list users failed: %v", err)
		return nil, err
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": string(id),
				"action":  "user_get_failed",
			}).Errorf("get user failed: %v", err)
		}
		return userdomain.User{}, err
	}
	return user, nil
}
