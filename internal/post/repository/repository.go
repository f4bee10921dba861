package repository

import (
	"context"
	"net/http"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/bloglist/backend/internal/common/db"
	commonerrors "github.com/AlibekovAA/bloglist/backend/internal/common/errors"
	"github.com/AlibekovAA/bloglist/backend/internal/common/logger"
	"github.com/AlibekovAA/bloglist/backend/internal/post/domain"
)

var ErrPostNotFound = commonerrors.NewDomainError(
	"POST_NOT_FOUND",
	commonerrors.CategoryNotFound,
	http.StatusNotFound,
	"post not found",
)

type Repository interface {
	FindAll(ctx context.Context) ([]domain.Post, error)
	FindByID(ctx context.Context, id domain.ID) (domain.Post, error)
	Create(ctx context.Context, post domain.Post) (domain.Post, error)
	Update(ctx context.Context, id domain.ID, update domain.Update) (domain.Post, error)
	Delete(ctx context.Context, id domain.ID) error
}

type PgRepository struct {
	pool *pgxpool.Pool
	tx   db.TxManager
	log  *logger.Logger
}

func NewPgRepository(pool *pgxpool.Pool, log *logger.Logger) *PgRepository {
	return &PgRepository{
		pool: pool,
		tx:   db.NewPgTxManager(pool),
		log:  log,
	}
}

const selectPost = `
SELECT p.id::text, p.title, p.author, p.url, p.likes, p.owner_id::text, u.username, p.created_at
FROM posts p
JOIN users u ON u.id = p.owner_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (domain.Post, error) {
	var p domain.Post
	err := row.Scan(&p.ID, &p.Title, &p.Author, &p.URL, &p.Likes, &p.OwnerID, &p.Owner.Username, &p.CreatedAt)
	p.Owner.ID = p.OwnerID
	return p, err
}

func (r *PgRepository) FindAll(ctx context.Context) ([]domain.Post, error) {
	return db.Retry(ctx, r.log, db.DefaultRetryConfig, "list posts", func(ctx context.Context) ([]domain.Post, error) {
		start := time.Now()
		rows, err := r.pool.Query(ctx, selectPost+` ORDER BY p.created_at ASC, p.id ASC`)
		if err != nil {
			return nil, db.HandleQueryError(err, nil, "list posts", start)
		}
		defer rows.Close()

		posts := make([]domain.Post, 0)
		for rows.Next() {
			p, err := scanPost(rows)
			if err != nil {
				return nil, db.HandleQueryError(err, nil, "scan post", start)
			}
			posts = append(posts, p)
		}
		return posts, db.HandleQueryError(rows.Err(), nil, "list posts", start)
	})
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.Post, error) {
	return db.Retry(ctx, r.log, db.DefaultRetryConfig, "find post by id", func(ctx context.Context) (domain.Post, error) {
		start := time.Now()
		post, err := scanPost(r.pool.QueryRow(ctx, selectPost+` WHERE p.id = $1`, string(id)))
		return post, db.HandleQueryError(err, ErrPostNotFound, "find post by id", start)
	})
}

// Create stores the post and appends its id to the owner's post list in one
// transaction.
func (r *PgRepository) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	var created domain.Post
	err := r.tx.WithTx(ctx, "create post", func(ctx context.Context, tx pgx.Tx) error {
		start := time.Now()
		_, err := tx.Exec(
			ctx,
			`INSERT INTO posts (id, title, author, url, likes, owner_id, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			string(post.ID),
			post.Title,
			post.Author,
			post.URL,
			post.Likes,
			string(post.OwnerID),
			post.CreatedAt,
		)
		if err := db.HandleExecError(err, "create post", start); err != nil {
			return err
		}

		start = time.Now()
		tag, err := tx.Exec(
			ctx,
			`UPDATE users SET post_ids = array_append(post_ids, $2::uuid) WHERE id = $1`,
			string(post.OwnerID),
			string(post.ID),
		)
		if err := db.HandleExecError(err, "append user post", start); err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return commonerrors.ErrUserNotFound
		}

		start = time.Now()
		created, err = scanPost(tx.QueryRow(ctx, selectPost+` WHERE p.id = $1`, string(post.ID)))
		return db.HandleQueryError(err, ErrPostNotFound, "find created post", start)
	})
	if err != nil {
		return domain.Post{}, err
	}
	return created, nil
}

func (r *PgRepository) Update(ctx context.Context, id domain.ID, update domain.Update) (domain.Post, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`WITH updated AS (
			UPDATE posts SET
				title = COALESCE($2, title),
				author = COALESCE($3, author),
				url = COALESCE($4, url),
				likes = COALESCE($5, likes)
			WHERE id = $1
			RETURNING id, title, author, url, likes, owner_id, created_at
		)
		SELECT p.id::text, p.title, p.author, p.url, p.likes, p.owner_id::text, u.username, p.created_at
		FROM updated p
		JOIN users u ON u.id = p.owner_id`,
		string(id),
		update.Title,
		update.Author,
		update.URL,
		update.Likes,
	)
	post, err := scanPost(row)
	if err := db.HandleQueryError(err, ErrPostNotFound, "update post", start); err != nil {
		return domain.Post{}, err
	}
	return post, nil
}

// Delete removes the post and drops its id from the owner's post list in one
// transaction. Deleting an absent post reports ErrPostNotFound.
func (r *PgRepository) Delete(ctx context.Context, id domain.ID) error {
	return r.tx.WithTx(ctx, "delete post", func(ctx context.Context, tx pgx.Tx) error {
		start := time.Now()
		var ownerID string
		err := tx.QueryRow(ctx, `DELETE FROM posts WHERE id = $1 RETURNING owner_id::text`, string(id)).Scan(&ownerID)
		if err := db.HandleQueryError(err, ErrPostNotFound, "delete post", start); err != nil {
			return err
		}

		start = time.Now()
		_, err = tx.Exec(
			ctx,
			`UPDATE users SET post_ids = array_remove(post_ids, $2::uuid) WHERE id = $1`,
			ownerID,
			string(id),
		)
		return db.HandleExecError(err, "remove user post", start)
	})
}
