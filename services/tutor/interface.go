package tutor

import (
	"context"

	tutorRepo "github.com/Sem-Five-Project/edimy/database/repository/tutor"
	"github.com/Sem-Five-Project/edimy/models"
	"github.com/Sem-Five-Project/edimy/services/storage"
)

// TutorService manages tutor profiles and the browse surface students
// pick tutors from.
type TutorService interface {
	Register(ctx context.Context, t *models.Tutor) (*models.Tutor, error)
	GetByID(ctx context.Context, id string) (*models.Tutor, error)
	Search(ctx context.Context, q models.TutorSearchQuery) ([]models.Tutor, error)
	UpdateProfile(ctx context.Context, t *models.Tutor) (*models.Tutor, error)
	SetProfilePhoto(ctx context.Context, tutorID, localFilePath string) (*models.Tutor, error)
	RateTutor(ctx context.Context, tutorID string, rating float64) error
	Delete(ctx context.Context, tutorID string) error
}

// DefaultTutorService is the production implementation.
type DefaultTutorService struct {
	Repo    tutorRepo.TutorRepository
	Storage storage.StorageService
}
