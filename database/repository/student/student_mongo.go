// File: database/repository/student/student_mongo.go
package studentRepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Sem-Five-Project/edimy/database"
	"github.com/Sem-Five-Project/edimy/models"
)

// StudentRepository persists student accounts.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id string) (*models.Student, error)
	GetByEmail(ctx context.Context, email string) (*models.Student, error)
	UpdateAuthToken(ctx context.Context, id, hashedToken string) error
	Delete(ctx context.Context, id string) error
}

type mongoStudentRepo struct {
	coll *mongo.Collection
}

// NewMongoStudentRepo constructs a new MongoDB StudentRepository.
func NewMongoStudentRepo() StudentRepository {
	return &mongoStudentRepo{
		coll: database.DB().Collection("students"),
	}
}

const opTimeout = 5 * time.Second

func (r *mongoStudentRepo) Create(ctx context.Context, student *models.Student) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if student.ID == "" {
		student.ID = uuid.New().String()
	}
	now := time.Now()
	student.CreatedAt = now
	student.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, student)
	return err
}

func (r *mongoStudentRepo) GetByID(ctx context.Context, id string) (*models.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var student models.Student
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&student); err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *mongoStudentRepo) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var student models.Student
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&student); err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *mongoStudentRepo) UpdateAuthToken(ctx context.Context, id, hashedToken string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"authToken": hashedToken, "updatedAt": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoStudentRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
