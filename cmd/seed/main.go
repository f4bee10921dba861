package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/AlibekovAA/bloglist/backend/internal/common/bootstrap"
	"github.com/AlibekovAA/bloglist/backend/internal/common/clock"
	"github.com/AlibekovAA/bloglist/backend/internal/post/domain"
	userdomain "github.com/AlibekovAA/bloglist/backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/bloglist/backend/internal/user/repository"
)

const (
	seedUsername = "test"
	seedName     = "Test User"
	seedPassword = "sekret"
)

var seedPosts = []domain.Post{
	{Title: "HTML is easy", Author: "Pekka", URL: "html://pekanblog.com", Likes: 6},
	{Title: "Browser can execute only Javascript", Author: "Markku", URL: "html://markunblogi.com", Likes: 6},
}

func main() {
	ctx := context.Background()

	app, err := bootstrap.NewApp(ctx, "seed")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := seed(ctx, app, clock.NewRealClock()); err != nil {
		app.Log.Errorf("seed failed: %v", err)
		app.Close()
		os.Exit(1)
	}
	app.Log.Info("seed complete")
}

// seed creates the test user and its posts. An existing user is reused, so
// running it twice only adds posts the user does not already have.
func seed(ctx context.Context, app *bootstrap.App, clk clock.Clock) error {
	user, err := app.UserRepo.FindByUsername(ctx, seedUsername)
	if errors.Is(err, userrepo.ErrUserNotFound) {
		user, err = createUser(ctx, app, clk)
	}
	if err != nil {
		return err
	}

	existing, err := app.PostRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, p := range existing {
		if p.OwnerID == user.ID {
			have[p.Title] = true
		}
	}

	for _, p := range seedPosts {
		if have[p.Title] {
			continue
		}
		id, err := app.IDGenerator.NewID()
		if err != nil {
			return err
		}
		p.ID = domain.ID(id)
		p.OwnerID = user.ID
		p.CreatedAt = clk.Now()
		if _, err := app.PostRepo.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to seed post %q: %w", p.Title, err)
		}
		app.Log.Infof("seeded post %q", p.Title)
	}
	return nil
}

func createUser(ctx context.Context, app *bootstrap.App, clk clock.Clock) (userdomain.User, error) {
	hash, err := app.Hasher.Hash(seedPassword)
	if err != nil {
		return userdomain.User{}, err
	}
	id, err := app.IDGenerator.NewID()
	if err != nil {
		return userdomain.User{}, err
	}

	user := userdomain.User{
		ID:           userdomain.ID(id),
		Username:     seedUsername,
		Name:         seedName,
		PasswordHash: hash,
		PostIDs:      []string{},
		CreatedAt:    clk.Now(),
	}
	if err := app.UserRepo.Create(ctx, user); err != nil {
		return userdomain.User{}, fmt.Errorf("failed to seed user: %w", err)
	}
	app.Log.Infof("seeded user %q", seedUsername)
	return user, nil
}
