// File: database/repository/tutor/tutor_mongo.go
package tutorRepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Sem-Five-Project/edimy/models"
)

const opTimeout = 5 * time.Second

func (r *mongoTutorRepo) Create(ctx context.Context, tutor *models.Tutor) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if tutor.ID == "" {
		tutor.ID = uuid.New().String()
	}
	now := time.Now()
	tutor.CreatedAt = now
	tutor.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, tutor)
	return err
}

func (r *mongoTutorRepo) GetByID(ctx context.Context, id string) (*models.Tutor, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var tutor models.Tutor
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&tutor); err != nil {
		return nil, err
	}
	return &tutor, nil
}

func (r *mongoTutorRepo) GetByEmail(ctx context.Context, email string) (*models.Tutor, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var tutor models.Tutor
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&tutor); err != nil {
		return nil, err
	}
	return &tutor, nil
}

func (r *mongoTutorRepo) Search(ctx context.Context, q models.TutorSearchQuery) ([]models.Tutor, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{}
	if q.Subject != "" {
		filter["subjects.name"] = q.Subject
	}
	if q.Language != "" {
		filter["languages"] = q.Language
	}
	if q.MinRating > 0 {
		filter["rating"] = bson.M{"$gte": q.MinRating}
	}
	if q.MaxRate > 0 {
		sub := bson.M{"hourlyRate": bson.M{"$lte": q.MaxRate}}
		if q.Subject != "" {
			sub["name"] = q.Subject
		}
		delete(filter, "subjects.name")
		filter["subjects"] = bson.M{"$elemMatch": sub}
	}

	pageSize := q.PageSize
	if pageSize <= 0 || pageSize > 50 {
		pageSize = 20
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tutors []models.Tutor
	if err := cursor.All(ctx, &tutors); err != nil {
		return nil, err
	}
	return tutors, nil
}

func (r *mongoTutorRepo) Update(ctx context.Context, tutor *models.Tutor) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tutor.UpdatedAt = time.Now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": tutor.ID}, tutor)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoTutorRepo) AddRating(ctx context.Context, id string, rating float64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tutor, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Running average over the stored count.
	total := tutor.Rating*float64(tutor.RatingCount) + rating
	tutor.RatingCount++
	tutor.Rating = total / float64(tutor.RatingCount)

	update := bson.M{"$set": bson.M{
		"rating":      tutor.Rating,
		"ratingCount": tutor.RatingCount,
		"updatedAt":   time.Now(),
	}}
	_, err = r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	return err
}

func (r *mongoTutorRepo) Delete(ctx context.Context, id string) error {
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
