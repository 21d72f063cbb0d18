package student

import (
	"context"

	"github.com/go-redis/redis/v8"

	studentRepo "github.com/Sem-Five-Project/edimy/database/repository/student"
	"github.com/Sem-Five-Project/edimy/models"
)

// AuthResponse carries the student's identity and session token after a
// successful signup or signin.
type AuthResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// StudentService manages student accounts and authentication.
type StudentService interface {
	SignUp(ctx context.Context, name, email, password string) (*AuthResponse, error)
	SignIn(ctx context.Context, email, password string) (*AuthResponse, error)
	GetByID(ctx context.Context, id string) (*models.Student, error)
	SignOut(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// DefaultStudentService is the production implementation. AuthCache, when
// set, is kept coherent with the stored token hash on every rotation.
type DefaultStudentService struct {
	Repo      studentRepo.StudentRepository
	AuthCache *redis.Client
}
