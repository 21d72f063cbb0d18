// File: database/repository/tutor/interface.go
package tutorRepo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Sem-Five-Project/edimy/database"
	"github.com/Sem-Five-Project/edimy/models"
)

// TutorRepository persists tutor profiles.
type TutorRepository interface {
	Create(ctx context.Context, tutor *models.Tutor) error
	GetByID(ctx context.Context, id string) (*models.Tutor, error)
	GetByEmail(ctx context.Context, email string) (*models.Tutor, error)
	Search(ctx context.Context, q models.TutorSearchQuery) ([]models.Tutor, error)
	Update(ctx context.Context, tutor *models.Tutor) error
	AddRating(ctx context.Context, id string, rating float64) error
	Delete(ctx context.Context, id string) error
}

type mongoTutorRepo struct {
	coll *mongo.Collection
}

// NewMongoTutorRepo constructs a new MongoDB TutorRepository.
func NewMongoTutorRepo() TutorRepository {
	return &mongoTutorRepo{
		coll: database.DB().Collection("tutors"),
	}
}
