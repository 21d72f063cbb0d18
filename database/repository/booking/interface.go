// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Sem-Five-Project/edimy/database"
	"github.com/Sem-Five-Project/edimy/models"
)

// BookingRepository persists confirmed booking records.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByStudent(ctx context.Context, studentID string) ([]models.Booking, error)
	GetByTutor(ctx context.Context, tutorID string) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SetPaymentID(ctx context.Context, id, paymentID string) error
	SetMeetingLink(ctx context.Context, id, link string) error
}

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a new MongoDB BookingRepository.
func NewMongoBookingRepo() BookingRepository {
	return &mongoBookingRepo{
		coll: database.DB().Collection("bookings"),
	}
}
