package models

import "time"

// TutorSubject is a subject a tutor offers, priced independently.
type TutorSubject struct {
	Name       string  `bson:"name" json:"name"`
	HourlyRate float64 `bson:"hourlyRate" json:"hourlyRate"`
}

// Tutor represents a tutoring provider on the marketplace.
type Tutor struct {
	ID              string         `bson:"id" json:"id"`
	Name            string         `bson:"name" json:"name"`
	Email           string         `bson:"email" json:"email"`
	Bio             string         `bson:"bio,omitempty" json:"bio,omitempty"`
	Subjects        []TutorSubject `bson:"subjects" json:"subjects"`
	Languages       []string       `bson:"languages" json:"languages"`
	Rating          float64        `bson:"rating" json:"rating"`
	RatingCount     int            `bson:"ratingCount" json:"ratingCount"`
	ExperienceYears int            `bson:"experienceYears" json:"experienceYears"`
	ProfileImageURL string         `bson:"profileImageUrl,omitempty" json:"profileImageUrl,omitempty"`
	Verified        bool           `bson:"verified" json:"verified"`
	CreatedAt       time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// SubjectRate returns the hourly rate for the named subject.
// The second return value is false when the tutor does not offer it.
func (t *Tutor) SubjectRate(subject string) (float64, bool) {
	for _, s := range t.Subjects {
		if s.Name == subject {
			return s.HourlyRate, true
		}
	}
	return 0, false
}

// TeachesLanguage reports whether the tutor teaches in the given language.
func (t *Tutor) TeachesLanguage(lang string) bool {
	for _, l := range t.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// TutorSearchQuery carries filters for the tutor browse surface.
type TutorSearchQuery struct {
	Subject   string  `form:"subject" json:"subject,omitempty"`
	Language  string  `form:"language" json:"language,omitempty"`
	MinRating float64 `form:"minRating" json:"minRating,omitempty"`
	MaxRate   float64 `form:"maxRate" json:"maxRate,omitempty"`
	Page      int     `form:"page" json:"page,omitempty"`
	PageSize  int     `form:"pageSize" json:"pageSize,omitempty"`
}
