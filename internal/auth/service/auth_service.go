package service

import (
	"context"
	"errors"
	"time"

	"github.com/AlibekovAA/bloglist/backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/bloglist/backend/internal/common/crypto"
	"github.com/AlibekovAA/bloglist/backend/internal/common/logger"
	"github.com/AlibekovAA/bloglist/backend/internal/common/resilience"
	userdomain "github.com/AlibekovAA/bloglist/backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/bloglist/backend/internal/user/repository"
)

type Deps struct {
	Repo        userrepo.Repository
	Hasher      commoncrypto.PasswordHasher
	IDGenerator commoncrypto.IDGenerator
	Clock       clock.Clock
	Log         *logger.Logger
}

type Config struct {
	JWTSecret               string
	TokenTTL                time.Duration
	CircuitBreakerThreshold int32
	CircuitBreakerTimeout   time.Duration
	CircuitBreakerReset     time.Duration
}

type AuthService struct {
	repo        userrepo.Repository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	issuer      *TokenIssuer
	clock       clock.Clock
	cb          resilience.CircuitBreakerInterface
	log         *logger.Logger
}

func NewAuthService(deps Deps, cfg Config) *AuthService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &AuthService{
		repo:        deps.Repo,
		hasher:      deps.Hasher,
		idGenerator: deps.IDGenerator,
		issuer:      NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL, clk),
		clock:       clk,
		cb: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Threshold:  cfg.CircuitBreakerThreshold,
			Timeout:    cfg.CircuitBreakerTimeout,
			ResetAfter: cfg.CircuitBreakerReset,
			Name:       "auth_users",
			Logger:     deps.Log,
			Clock:      clk,
		}),
		log: deps.Log,
	}
}

type RegisterInput struct {
	Username string
	Name     string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	Token    string
	Username string
	Name     string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (userdomain.User, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := validateRegistration(input); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return userdomain.User{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return userdomain.User{}, newInternalError("HASH_FAILED", "failed to hash password", err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_id_generation_failed",
		}).Errorf("register failed: id generation error: %v", err)
		return userdomain.User{}, newInternalError("ID_GENERATION_FAILED", "failed to generate user id", err)
	}

	user := userdomain.User{
		ID:           userdomain.ID(id),
		Username:     input.Username,
		Name:         input.Name,
		PasswordHash: hash,
		PostIDs:      []string{},
		CreatedAt:    s.clock.Now(),
	}

	err = s.call(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, userrepo.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_username_exists",
			}).Warn("register failed: already exists")
			return userdomain.User{}, ErrUsernameTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		if mapped := handleCircuitBreakerError(err); mapped != err {
			return userdomain.User{}, mapped
		}
		return userdomain.User{}, newInternalError("DB_ERROR", "failed to create user", err)
	}

	incrementUsersRegistered()
	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "register_success",
	}).Info("register success")

	return user, nil
}

// Login exchanges a username and password for a session token. Unknown
// users and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "login_attempt",
	}).Info("login attempt")

	if input.Username == "" || input.Password == "" {
		recordLoginAttempt("rejected")
		return LoginResult{}, ErrInvalidCredentials
	}

	var user userdomain.User
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.repo.FindByUsername(ctx, input.Username)
		return err
	})
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "login_user_not_found",
			}).Warn("login failed: not found")
			recordLoginAttempt("rejected")
			return LoginResult{}, ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		recordLoginAttempt("error")
		if mapped := handleCircuitBreakerError(err); mapped != err {
			return LoginResult{}, mapped
		}
		return LoginResult{}, newInternalError("DB_ERROR", "failed to fetch user", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_invalid_password",
		}).Warn("login failed: invalid password")
		recordLoginAttempt("rejected")
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"user_id":  string(user.ID),
			"action":   "login_token_issue_failed",
		}).Errorf("login failed: token issue error: %v", err)
		recordLoginAttempt("error")
		return LoginResult{}, newInternalError("TOKEN_ISSUE_FAILED", "failed to issue token", err)
	}

	recordLoginAttempt("success")
	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "login_success",
	}).Info("login success")

	return LoginResult{
		Token:    token,
		Username: user.Username,
		Name:     user.Name,
	}, nil
}

func (s *AuthService) call(ctx context.Context, fn func(context.Context) error) error {
	return s.cb.Call(ctx, fn)
}
