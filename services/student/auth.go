package student

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sem-Five-Project/edimy/models"
	"github.com/Sem-Five-Project/edimy/utils"
)

const tokenLifetime = 7 * 24 * time.Hour

// SignUp creates a student account and returns a signed session token.
func (s *DefaultStudentService) SignUp(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	if name == "" || email == "" {
		return nil, fmt.Errorf("name and email are required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	if existing, err := s.Repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, fmt.Errorf("an account with email %s already exists", email)
	} else if err != nil && err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	stu := &models.Student{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.Repo.Create(ctx, stu); err != nil {
		utils.GetLogger().Error("failed to create student", zap.Error(err))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return s.issueToken(ctx, stu)
}

// SignIn verifies the password and returns a fresh session token.
func (s *DefaultStudentService) SignIn(ctx context.Context, email, password string) (*AuthResponse, error) {
	stu, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("invalid email or password")
		}
		utils.GetLogger().Error("failed to fetch student", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stu.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	return s.issueToken(ctx, stu)
}

// issueToken signs a JWT and stores its hash so tokens can be revoked on
// sign-out.
func (s *DefaultStudentService) issueToken(ctx context.Context, stu *models.Student) (*AuthResponse, error) {
	token, err := utils.GenerateToken(stu.ID, stu.Email, tokenLifetime)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.Repo.UpdateAuthToken(ctx, stu.ID, utils.HashToken(token)); err != nil {
		return nil, fmt.Errorf("failed to store session token: %w", err)
	}
	s.invalidateCachedToken(stu.ID)
	return &AuthResponse{
		ID:    stu.ID,
		Name:  stu.Name,
		Email: stu.Email,
		Token: token,
	}, nil
}

func (s *DefaultStudentService) GetByID(ctx context.Context, id string) (*models.Student, error) {
	stu, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("student %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch student: %w", err)
	}
	return stu, nil
}

// SignOut clears the stored token hash, invalidating outstanding tokens.
func (s *DefaultStudentService) SignOut(ctx context.Context, id string) error {
	if err := s.Repo.UpdateAuthToken(ctx, id, ""); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	s.invalidateCachedToken(id)
	return nil
}

func (s *DefaultStudentService) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	s.invalidateCachedToken(id)
	return nil
}

// invalidateCachedToken drops the auth-cache entry after a token rotation
// so a revoked token cannot ride a stale cached hash.
func (s *DefaultStudentService) invalidateCachedToken(id string) {
	if s.AuthCache == nil {
		return
	}
	if err := utils.InvalidateAuthTokenHash(s.AuthCache, id); err != nil {
		utils.GetLogger().Warn("failed to invalidate cached auth token", zap.String("studentId", id), zap.Error(err))
	}
}
