package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/AlibekovAA/bloglist/backend/internal/auth/http"
	authservice "github.com/AlibekovAA/bloglist/backend/internal/auth/service"
	"github.com/AlibekovAA/bloglist/backend/internal/common/bootstrap"
	"github.com/AlibekovAA/bloglist/backend/internal/common/clock"
	commonhttp "github.com/AlibekovAA/bloglist/backend/internal/common/http"
	"github.com/AlibekovAA/bloglist/backend/internal/common/jwtverify"
	srv "github.com/AlibekovAA/bloglist/backend/internal/common/server"
	posthttp "github.com/AlibekovAA/bloglist/backend/internal/post/http"
	postservice "github.com/AlibekovAA/bloglist/backend/internal/post/service"
	userhttp "github.com/AlibekovAA/bloglist/backend/internal/user/http"
	userservice "github.com/AlibekovAA/bloglist/backend/internal/user/service"
)

func main() {
	app, err := bootstrap.NewApp(context.Background(), "bloglist")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	cfg := app.Config
	log := app.Log
	clk := clock.NewRealClock()
	validator := jwtverify.NewValidator(cfg.JWTSecret)

	authService := authservice.NewAuthService(
		authservice.Deps{
			Repo:        app.UserRepo,
			Hasher:      app.Hasher,
			IDGenerator: app.IDGenerator,
			Clock:       clk,
			Log:         log,
		},
		authservice.Config{
			JWTSecret:               cfg.JWTSecret,
			TokenTTL:                cfg.TokenTTL,
			CircuitBreakerThreshold: cfg.CircuitBreakerThreshold,
			CircuitBreakerTimeout:   cfg.CircuitBreakerTimeout,
			CircuitBreakerReset:     cfg.CircuitBreakerReset,
		},
	)

	postService := postservice.NewPostService(
		postservice.Deps{
			Repo:        app.PostRepo,
			Users:       app.UserRepo,
			Tokens:      validator,
			IDGenerator: app.IDGenerator,
			Clock:       clk,
			Log:         log,
		},
		postservice.Config{
			CircuitBreakerThreshold: cfg.CircuitBreakerThreshold,
			CircuitBreakerTimeout:   cfg.CircuitBreakerTimeout,
			CircuitBreakerReset:     cfg.CircuitBreakerReset,
		},
	)

	userService := userservice.NewUserService(app.UserRepo, log)

	mux := http.NewServeMux()
	authhttp.NewHandler(authService, cfg.RequestTimeout, log).Routes(mux)
	userhttp.NewHandler(userService, validator, cfg.RequestTimeout, log).Routes(mux)
	posthttp.NewHandler(postService, cfg.RequestTimeout, log).Routes(mux)
	mux.HandleFunc("GET /health", commonhttp.HealthHandler(app.Pool, log))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("/", commonhttp.UnknownEndpoint)

	rateLimiter := commonhttp.NewStrictRateLimiter()
	handler := commonhttp.BuildBaseHandler(log, rateLimiter.Middleware(mux))

	server := srv.New(srv.DefaultConfig(cfg.HTTPPort), handler)

	hooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Info("bloglist service: stopping rate limiters")
			rateLimiter.Stop()
			return nil
		},
	}

	if err := srv.Run(server, log, "bloglist", hooks...); err != nil {
		log.Errorf("bloglist service exited with error: %v", err)
		app.Close()
		os.Exit(1)
	}
}
