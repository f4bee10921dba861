package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/AlibekovAA/bloglist/backend/internal/common/clock"
	"github.com/AlibekovAA/bloglist/backend/internal/common/constants"
	"github.com/AlibekovAA/bloglist/backend/internal/common/jwtverify"
	"github.com/AlibekovAA/bloglist/backend/internal/common/logger"
	"github.com/AlibekovAA/bloglist/backend/internal/post/domain"
	"github.com/AlibekovAA/bloglist/backend/internal/post/repository"
	"github.com/AlibekovAA/bloglist/backend/internal/post/service"
	userdomain "github.com/AlibekovAA/bloglist/backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/bloglist/backend/internal/user/repository"
)

const (
	ownerID  = "0b9b2f7e-5d1c-4c4e-9a57-1f0f1d2c3b4a"
	otherID  = "7e1d3c2b-4a5f-4e6d-8c7b-9a0f1e2d3c4b"
	postID   = "c3f1a2b4-5d6e-4f70-8a9b-0c1d2e3f4a5b"
	newID    = "e5d4c3b2-a190-4f8e-9d7c-6b5a4f3e2d1c"
	ownerTok = "owner-token"
	otherTok = "other-token"
)

type mockPostRepo struct {
	findAllFunc  func(ctx context.Context) ([]domain.Post, error)
	findByIDFunc func(ctx context.Context, id domain.ID) (domain.Post, error)
	createFunc   func(ctx context.Context, post domain.Post) (domain.Post, error)
	updateFunc   func(ctx context.Context, id domain.ID, update domain.Update) (domain.Post, error)
	deleteFunc   func(ctx context.Context, id domain.ID) error
}

func (m *mockPostRepo) FindAll(ctx context.Context) ([]domain.Post, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return []domain.Post{}, nil
}

func (m *mockPostRepo) FindByID(ctx context.Context, id domain.ID) (domain.Post, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return domain.Post{}, repository.ErrPostNotFound
}

func (m *mockPostRepo) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, post)
	}
	return post, nil
}

func (m *mockPostRepo) Update(ctx context.Context, id domain.ID, update domain.Update) (domain.Post, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, update)
	}
	return domain.Post{}, repository.ErrPostNotFound
}

func (m *mockPostRepo) Delete(ctx context.Context, id domain.ID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockUserLookup struct {
	findByIDFunc func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
}

func (m *mockUserLookup) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	switch id {
	case ownerID:
		return userdomain.User{ID: ownerID, Username: "test"}, nil
	case otherID:
		return userdomain.User{ID: otherID, Username: "other"}, nil
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

// mockTokens maps opaque test tokens to identities.
type mockTokens struct{}

func (mockTokens) Validate(rawToken string) (jwtverify.Claims, error) {
	switch rawToken {
	case "":
		return jwtverify.Claims{}, jwtverify.ErrMissingToken
	case ownerTok:
		return jwtverify.Claims{UserID: ownerID, Username: "test"}, nil
	case otherTok:
		return jwtverify.Claims{UserID: otherID, Username: "other"}, nil
	}
	return jwtverify.Claims{}, jwtverify.ErrInvalidToken
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return newID, nil
}

func setupPostService(t *testing.T) (*service.PostService, *mockPostRepo, *mockUserLookup, *clock.MockClock) {
	t.Helper()
	repo := &mockPostRepo{}
	users := &mockUserLookup{}
	mockClock := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	svc := service.NewPostService(
		service.Deps{
			Repo:        repo,
			Users:       users,
			Tokens:      mockTokens{},
			IDGenerator: &mockIDGenerator{},
			Clock:       mockClock,
			Log:         logger.NewDiscard(),
		},
		service.Config{
			CircuitBreakerThreshold: constants.TestCircuitBreakerThreshold,
			CircuitBreakerTimeout:   constants.TestCircuitBreakerTimeout,
			CircuitBreakerReset:     constants.TestCircuitBreakerReset,
		},
	)
	return svc, repo, users, mockClock
}

func ownedPost() domain.Post {
	return domain.Post{
		ID:      postID,
		Title:   "HTML is easy",
		Author:  "Pekka",
		URL:     "html://pekanblog.com",
		Likes:   6,
		OwnerID: ownerID,
		Owner:   userdomain.Summary{ID: ownerID, Username: "test"},
	}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
