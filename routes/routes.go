package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Sem-Five-Project/edimy/handlers"
	"github.com/Sem-Five-Project/edimy/middleware"
)

// RegisterStudentRoutes registers student account endpoints.
func RegisterStudentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/students")
	{
		api.POST("/signup", hb.Students.SignUp)
		api.POST("/signin", hb.Students.SignIn)

		// Protected routes (require authentication)
		api.Use(middleware.StudentAuthMiddleware(hb.StudentRepo, hb.AuthCache))
		api.GET("/me", hb.Students.Profile)
		api.POST("/signout", hb.Students.SignOut)
		api.DELETE("/me", hb.Students.Delete)
	}
}

// RegisterTutorRoutes registers tutor profile and availability endpoints.
func RegisterTutorRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/tutors")
	{
		// Public browse surface.
		api.GET("", hb.Tutors.Search)
		api.GET("/:id", hb.Tutors.GetByID)
		api.GET("/:id/slots", hb.Tutors.ListSlots)

		api.POST("/register", hb.Tutors.Register)

		// Profile and availability management.
		api.PATCH("/:id", hb.Tutors.Update)
		api.POST("/:id/photo", hb.Tutors.UploadPhoto)
		api.DELETE("/:id", hb.Tutors.Delete)
		api.POST("/:id/slots", hb.Tutors.CreateSlots)
		api.DELETE("/:id/slots/:slotID", hb.Tutors.DeleteSlot)

		// Rating requires an authenticated student.
		api.POST("/:id/rate", middleware.StudentAuthMiddleware(hb.StudentRepo, hb.AuthCache), hb.Tutors.Rate)
	}
}

// RegisterBookingRoutes sets up the endpoints for the booking flow.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/booking")
	{
		bookingGroup.Use(middleware.StudentAuthMiddleware(hb.StudentRepo, hb.AuthCache))
		bookingGroup.POST("/session", hb.Booking.InitiateSession)
		bookingGroup.GET("/session/:sessionID", hb.Booking.GetSession)
		bookingGroup.PUT("/session/:sessionID/tutor", hb.Booking.SelectTutor)
		bookingGroup.PUT("/session/:sessionID/date", hb.Booking.SelectDate)
		bookingGroup.PUT("/session/:sessionID/preferences", hb.Booking.SetPreferences)
		bookingGroup.POST("/session/:sessionID/reserve", hb.Booking.ReserveSlot)
		bookingGroup.POST("/session/:sessionID/reserve-monthly", hb.Booking.ReserveMonthly)
		bookingGroup.POST("/session/:sessionID/proceed", hb.Booking.Proceed)
		bookingGroup.POST("/session/:sessionID/back", hb.Booking.GoBack)
		bookingGroup.POST("/session/:sessionID/payment", hb.Booking.InitPayment)
		bookingGroup.POST("/session/:sessionID/reset", hb.Booking.ResetSession)
		bookingGroup.DELETE("/session/:sessionID", hb.Booking.CancelSession)
		bookingGroup.GET("/history", hb.Booking.ListBookings)
	}
}

// RegisterPaymentRoutes registers the PayHere notify callback. It stays
// outside the auth group; the md5 signature authenticates the caller.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/payments/notify", hb.Booking.PaymentNotify)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Edimy"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterStudentRoutes(r, hb)
	RegisterTutorRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterHealthRoute(r)
}
