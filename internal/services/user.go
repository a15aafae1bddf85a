package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"linkmark-backend/internal/middleware"
	"linkmark-backend/internal/models"
	"linkmark-backend/internal/repository"
)

type UserService struct {
	userRepo *repository.UserRepo
	jwtAuth  *middleware.JWTAuth
}

func NewUserService(userRepo *repository.UserRepo, jwtAuth *middleware.JWTAuth) *UserService {
	return &UserService{userRepo: userRepo, jwtAuth: jwtAuth}
}

// Create registers a user keyed by their OAuth identity. The identity is
// assumed to be already verified by the OAuth provider on the client side.
func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	fields := map[string]string{}
	if req.Username == "" {
		fields["username"] = "must not be empty"
	}
	if req.OAuthProvider == "" {
		fields["oauth_provider"] = "must not be empty"
	}
	if req.OAuthID == "" {
		fields["oauth_id"] = "must not be empty"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	user := &models.User{
		Username:      req.Username,
		OAuthProvider: req.OAuthProvider,
		OAuthID:       req.OAuthID,
		Email:         req.Email,
		ProfileImage:  req.ProfileImage,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, &ConflictError{Message: fmt.Sprintf("%s account already registered", req.OAuthProvider)}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login matches an OAuth identity to a registered user and issues a token.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.OAuthID == "" {
		return nil, &ValidationError{Fields: map[string]string{"oauth_id": "must not be empty"}}
	}

	var (
		user *models.User
		err  error
	)
	if req.Email != "" {
		user, err = s.userRepo.GetByOAuth(ctx, req.Email, req.OAuthID)
	} else {
		user, err = s.userRepo.GetByOAuthID(ctx, req.OAuthID)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "Cannot find user"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	token, err := s.jwtAuth.GenerateAccessToken(user.ID, user.OAuthProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	return &models.LoginResponse{User: user, AccessToken: token}, nil
}

func (s *UserService) GetMe(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: fmt.Sprintf("User %s not found", userID)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}
