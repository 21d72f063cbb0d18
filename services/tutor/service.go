package tutor

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Sem-Five-Project/edimy/models"
	"github.com/Sem-Five-Project/edimy/utils"
)

const profilePhotoFolder = "tutors/profile"

// Register validates and persists a new tutor profile.
func (s *DefaultTutorService) Register(ctx context.Context, t *models.Tutor) (*models.Tutor, error) {
	if t.Name == "" || t.Email == "" {
		return nil, fmt.Errorf("tutor name and email are required")
	}
	if len(t.Subjects) == 0 {
		return nil, fmt.Errorf("tutor must offer at least one subject")
	}
	for _, sub := range t.Subjects {
		if sub.Name == "" || sub.HourlyRate <= 0 {
			return nil, fmt.Errorf("subject %q must have a positive hourly rate", sub.Name)
		}
	}
	if len(t.Languages) == 0 {
		return nil, fmt.Errorf("tutor must teach in at least one language")
	}

	if existing, err := s.Repo.GetByEmail(ctx, t.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("a tutor with email %s already exists", t.Email)
	} else if err != nil && err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to check existing tutor: %w", err)
	}

	t.Rating = 0
	t.RatingCount = 0
	t.Verified = false
	if err := s.Repo.Create(ctx, t); err != nil {
		utils.GetLogger().Error("failed to create tutor", zap.Error(err))
		return nil, fmt.Errorf("failed to register tutor: %w", err)
	}
	return t, nil
}

func (s *DefaultTutorService) GetByID(ctx context.Context, id string) (*models.Tutor, error) {
	t, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("tutor %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch tutor: %w", err)
	}
	return t, nil
}

// Search applies default paging before delegating to the repository.
func (s *DefaultTutorService) Search(ctx context.Context, q models.TutorSearchQuery) ([]models.Tutor, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 50 {
		q.PageSize = 20
	}
	results, err := s.Repo.Search(ctx, q)
	if err != nil {
		utils.GetLogger().Error("tutor search failed", zap.Error(err))
		return nil, fmt.Errorf("tutor search failed: %w", err)
	}
	return results, nil
}

// UpdateProfile replaces mutable profile fields. Rating fields are managed
// by RateTutor and are never overwritten here.
func (s *DefaultTutorService) UpdateProfile(ctx context.Context, t *models.Tutor) (*models.Tutor, error) {
	existing, err := s.Repo.GetByID(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("tutor %s not found", t.ID)
	}

	existing.Name = t.Name
	existing.Bio = t.Bio
	if len(t.Subjects) > 0 {
		existing.Subjects = t.Subjects
	}
	if len(t.Languages) > 0 {
		existing.Languages = t.Languages
	}
	existing.ExperienceYears = t.ExperienceYears

	if err := s.Repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update tutor: %w", err)
	}
	return existing, nil
}

// SetProfilePhoto uploads the photo to media storage and stores the
// resulting URL on the profile.
func (s *DefaultTutorService) SetProfilePhoto(ctx context.Context, tutorID, localFilePath string) (*models.Tutor, error) {
	t, err := s.Repo.GetByID(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("tutor %s not found", tutorID)
	}

	publicID, err := s.Storage.UploadFile(ctx, localFilePath, profilePhotoFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to upload profile photo: %w", err)
	}
	url, err := s.Storage.GetDownloadURL(ctx, "image", publicID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve photo URL: %w", err)
	}

	t.ProfileImageURL = url
	if err := s.Repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save profile photo: %w", err)
	}
	return t, nil
}

// RateTutor records a rating between 1 and 5.
func (s *DefaultTutorService) RateTutor(ctx context.Context, tutorID string, rating float64) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	if err := s.Repo.AddRating(ctx, tutorID, rating); err != nil {
		utils.GetLogger().Error("failed to record rating",
			zap.String("tutorID", tutorID), zap.Error(err))
		return fmt.Errorf("failed to record rating: %w", err)
	}
	return nil
}

func (s *DefaultTutorService) Delete(ctx context.Context, tutorID string) error {
	if err := s.Repo.Delete(ctx, tutorID); err != nil {
		return fmt.Errorf("failed to delete tutor: %w", err)
	}
	return nil
}
