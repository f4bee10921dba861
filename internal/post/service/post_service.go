package service

import (
	"context"
	"errors"
	"time"

	"github.com/AlibekovAA/bloglist/backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/bloglist/backend/internal/common/crypto"
	"github.com/AlibekovAA/bloglist/backend/internal/common/jwtverify"
	"github.com/AlibekovAA/bloglist/backend/internal/common/logger"
	"github.com/AlibekovAA/bloglist/backend/internal/common/resilience"
	"github.com/AlibekovAA/bloglist/backend/internal/post/domain"
	"github.com/AlibekovAA/bloglist/backend/internal/post/repository"
	userdomain "github.com/AlibekovAA/bloglist/backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/bloglist/backend/internal/user/repository"
)

type TokenValidator interface {
	Validate(rawToken string) (jwtverify.Claims, error)
}

type UserLookup interface {
	FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error)
}

type Deps struct {
	Repo        repository.Repository
	Users       UserLookup
	Tokens      TokenValidator
	IDGenerator commoncrypto.IDGenerator
	Clock       clock.Clock
	Log         *logger.Logger
}

type Config struct {
	CircuitBreakerThreshold int32
	CircuitBreakerTimeout   time.Duration
	CircuitBreakerReset     time.Duration
}

type PostService struct {
	repo        repository.Repository
	users       UserLookup
	tokens      TokenValidator
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	cb          resilience.CircuitBreakerInterface
	log         *logger.Logger
}

func NewPostService(deps Deps, cfg Config) *PostService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &PostService{
		repo:        deps.Repo,
		users:       deps.Users,
		tokens:      deps.Tokens,
		idGenerator: deps.IDGenerator,
		clock:       clk,
		cb: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Threshold:  cfg.CircuitBreakerThreshold,
			Timeout:    cfg.CircuitBreakerTimeout,
			ResetAfter: cfg.CircuitBreakerReset,
			Name:       "posts",
			Logger:     deps.Log,
			Clock:      clk,
		}),
		log: deps.Log,
	}
}

type CreateInput struct {
	Title  string
	Author string
	URL    string
	Likes  *int
}

type UpdateInput struct {
	Title  *string
	Author *string
	URL    *string
	Likes  *int
}

func (s *PostService) ListPosts(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	err := s.cb.Call(ctx, func(ctx context.Context) error {
		var err error
		posts, err = s.repo.FindAll(ctx)
		return err
	})
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "post_list_failed",
		}).Errorf("list posts failed: %v", err)
		return nil, mapRepositoryError(err, "POST_LIST_FAILED", "failed to list posts")
	}
	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, id domain.ID) (domain.Post, error) {
	if !commoncrypto.IsValidID(string(id)) {
		return domain.Post{}, ErrPostNotFound
	}

	post, err := s.findPost(ctx, id)
	if err != nil {
		return domain.Post{}, err
	}
	return post, nil
}

// CreatePost binds the new post to the user carried by rawToken. The token
// is checked before the payload.
func (s *PostService) CreatePost(ctx context.Context, rawToken string, input CreateInput) (domain.Post, error) {
	claims, err := s.tokens.Validate(rawToken)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "post_create_unauthorized",
		}).Warnf("create post rejected: %v", err)
		return domain.Post{}, err
	}

	if err := validateCreate(input); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": claims.UserID,
			"action":  "post_create_validation_failed",
		}).Warnf("create post validation failed: %v", err)
		return domain.Post{}, err
	}

	likes := 0
	if input.Likes != nil {
		likes = *input.Likes
	}

	var owner userdomain.User
	err = s.cb.Call(ctx, func(ctx context.Context) error {
		var err error
		owner, err = s.users.FindByID(ctx, userdomain.ID(claims.UserID))
		return err
	})
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": claims.UserID,
				"action":  "post_create_unknown_user",
			}).Warn("create post rejected: token user does not exist")
			return domain.Post{}, ErrUnauthorized
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": claims.UserID,
			"action":  "post_create_user_lookup_failed",
		}).Errorf("create post failed: user lookup error: %v", err)
		return domain.Post{}, mapRepositoryError(err, "USER_LOOKUP_FAILED", "failed to look up user")
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return domain.Post{}, mapRepositoryError(err, "ID_GENERATION_FAILED", "failed to generate post id")
	}

	post := domain.Post{
		ID:        domain.ID(id),
		Title:     input.Title,
		Author:    input.Author,
		URL:       input.URL,
		Likes:     likes,
		OwnerID:   owner.ID,
		Owner:     owner.Summary(),
		CreatedAt: s.clock.Now(),
	}

	var created domain.Post
	err = s.cb.Call(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.repo.Create(ctx, post)
		return err
	})
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return domain.Post{}, ErrUnauthorized
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": claims.UserID,
			"action":  "post_create_failed",
		}).Errorf("create post failed: %v", err)
		return domain.Post{}, mapRepositoryError(err, "POST_CREATE_FAILED", "failed to create post")
	}

	incrementPostsCreated()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": claims.UserID,
		"post_id": string(created.ID),
		"action":  "post_create_success",
	}).Info("post created")

	return created, nil
}

// UpdatePost replaces the supplied fields of a post. Any caller may update
// any post; liking is open to everyone.
func (s *PostService) UpdatePost(ctx context.Context, id domain.ID, input UpdateInput) (domain.Post, error) {
	if err := validateUpdate(input); err != nil {
		return domain.Post{}, err
	}

	if !commoncrypto.IsValidID(string(id)) {
		return domain.Post{}, ErrPostNotFound
	}

	update := domain.Update{
		Title:  input.Title,
		Author: input.Author,
		URL:    input.URL,
		Likes:  input.Likes,
	}

	if update.IsEmpty() {
		return s.findPost(ctx, id)
	}

	var updated domain.Post
	err := s.cb.Call(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.repo.Update(ctx, id, update)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrPostNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"post_id": string(id),
				"action":  "post_update_failed",
			}).Errorf("update post failed: %v", err)
		}
		return domain.Post{}, mapRepositoryError(err, "POST_UPDATE_FAILED", "failed to update post")
	}

	incrementPostsUpdated()
	s.log.WithFields(ctx, logger.Fields{
		"post_id": string(id),
		"likes":   updated.Likes,
		"action":  "post_update_success",
	}).Info("post updated")

	return updated, nil
}

// DeletePost removes a post on behalf of its owner. Ownership is decided by
// the post's OwnerID alone.
func (s *PostService) DeletePost(ctx context.Context, rawToken string, id domain.ID) error {
	claims, err := s.tokens.Validate(rawToken)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"post_id": string(id),
			"action":  "post_delete_unauthorized",
		}).Warnf("delete post rejected: %v", err)
		return err
	}

	if !commoncrypto.IsValidID(string(id)) {
		return ErrPostNotFound
	}

	post, err := s.findPost(ctx, id)
	if err != nil {
		return err
	}

	if string(post.OwnerID) != claims.UserID {
		recordOwnershipDenied("delete")
		s.log.WithFields(ctx, logger.Fields{
			"user_id":  claims.UserID,
			"post_id":  string(id),
			"owner_id": string(post.OwnerID),
			"action":   "post_delete_forbidden",
		}).Warn("delete post rejected: not the owner")
		return ErrForbidden
	}

	err = s.cb.Call(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		if !errors.Is(err, ErrPostNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": claims.UserID,
				"post_id": string(id),
				"action":  "post_delete_failed",
			}).Errorf("delete post failed: %v", err)
		}
		return mapRepositoryError(err, "POST_DELETE_FAILED", "failed to delete post")
	}

	incrementPostsDeleted()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": claims.UserID,
		"post_id": string(id),
		"action":  "post_delete_success",
	}).Info("post deleted")

	return nil
}

func (s *PostService) findPost(ctx context.Context, id domain.ID) (domain.Post, error) {
	var post domain.Post
	err := s.cb.Call(ctx, func(ctx context.Context) error {
		var err error
		post, err = s.repo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrPostNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"post_id": string(id),
				"action":  "post_get_failed",
			}).Errorf("get post failed: %v", err)
		}
		return domain.Post{}, mapRepositoryError(err, "POST_GET_FAILED", "failed to get post")
	}
	return post, nil
}
