package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"linkmark-backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, oauth_provider, oauth_id, email, profile_image)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	user.ID = uuid.New()

	return r.pool.QueryRow(ctx, query,
		user.ID, user.Username, user.OAuthProvider, user.OAuthID, user.Email, user.ProfileImage,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

const userColumns = `id, username, oauth_provider, oauth_id, email, profile_image, is_premium, created_at, updated_at`

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.OAuthProvider, &user.OAuthID, &user.Email,
		&user.ProfileImage, &user.IsPremium, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) GetByOAuth(ctx context.Context, email, oauthID string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND oauth_id = $2`

	err := r.pool.QueryRow(ctx, query, email, oauthID).Scan(
		&user.ID, &user.Username, &user.OAuthProvider, &user.OAuthID, &user.Email,
		&user.ProfileImage, &user.IsPremium, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) GetByOAuthID(ctx context.Context, oauthID string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE oauth_id = $1`

	err := r.pool.QueryRow(ctx, query, oauthID).Scan(
		&user.ID, &user.Username, &user.OAuthProvider, &user.OAuthID, &user.Email,
		&user.ProfileImage, &user.IsPremium, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ExistsTx checks user existence inside the caller's transaction.
func (r *UserRepo) ExistsTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", id).Scan(&exists)
	return exists, err
}
