package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/bloglist/backend/internal/common/db"
	commonerrors "github.com/AlibekovAA/bloglist/backend/internal/common/errors"
	"github.com/AlibekovAA/bloglist/backend/internal/common/logger"
	"github.com/AlibekovAA/bloglist/backend/internal/user/domain"
)

var (
	ErrUserNotFound          = commonerrors.ErrUserNotFound
	ErrUsernameAlreadyExists = commonerrors.ErrUsernameAlreadyExists
)

type Repository interface {
	Create(ctx context.Context, user domain.User) error
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewPgRepository(pool *pgxpool.Pool, log *logger.Logger) *PgRepository {
	return &PgRepository{pool: pool, log: log}
}

const selectUser = `SELECT id::text, username, name, password_hash, post_ids::text[], created_at FROM users`

func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (id, username, name, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		string(user.ID),
		user.Username,
		user.Name,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil && db.IsUniqueViolation(err) {
		db.MeasureQueryDuration("create user", start)
		return ErrUsernameAlreadyExists
	}
	return db.HandleExecError(err, "create user", start)
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.findOne(ctx, "find user by username", selectUser+` WHERE username = $1`, username)
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	return r.findOne(ctx, "find user by id", selectUser+` WHERE id = $1`, string(id))
}

func (r *PgRepository) findOne(ctx context.Context, operation, query string, arg any) (domain.User, error) {
	return db.Retry(ctx, r.log, db.DefaultRetryConfig, operation, func(ctx context.Context) (domain.User, error) {
		start := time.Now()
		var user domain.User
		err := r.pool.QueryRow(ctx, query, arg).
			Scan(&user.ID, &user.Username, &user.Name, &user.PasswordHash, &user.PostIDs, &user.CreatedAt)
		return user, db.HandleQueryError(err, ErrUserNotFound, operation, start)
	})
}

func (r *PgRepository) List(ctx context.Context) ([]domain.User, error) {
	return db.Retry(ctx, r.log, db.DefaultRetryConfig, "list users", func(ctx context.Context) ([]domain.User, error) {
		start := time.Now()
		rows, err := r.pool.Query(ctx, selectUser+` ORDER BY created_at ASC, username ASC`)
		if err != nil {
			return nil, db.HandleQueryError(err, nil, "list users", start)
		}
		defer rows.Close()

		users := make([]domain.User, 0)
		for rows.Next() {
			var u domain.User
			if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash, &u.PostIDs, &u.CreatedAt); err != nil {
				return nil, db.HandleQueryError(err, nil, "scan user", start)
			}
			users = append(users, u)
		}
		return users, db.HandleQueryError(rows.Err(), nil, "list users", start)
	})
}
