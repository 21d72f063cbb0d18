package handlers

import (
	"github.com/go-redis/redis/v8"

	studentRepoPkg "github.com/Sem-Five-Project/edimy/database/repository/student"
)

// HandlerBundle aggregates the handlers and the repositories route
// registration needs for auth middleware.
type HandlerBundle struct {
	StudentRepo studentRepoPkg.StudentRepository
	AuthCache   *redis.Client

	Students *StudentHandler
	Tutors   *TutorHandler
	Booking  *BookingHandler
}
