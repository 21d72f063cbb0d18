package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	bookingRepo "github.com/Sem-Five-Project/edimy/database/repository/booking"
	studentRepo "github.com/Sem-Five-Project/edimy/database/repository/student"
	"github.com/Sem-Five-Project/edimy/models"
	"github.com/Sem-Five-Project/edimy/services/booking"
	"github.com/Sem-Five-Project/edimy/services/payment"
)

// BookingHandler exposes the booking flow over HTTP. Every session mutation
// funnels through the flow service.
type BookingHandler struct {
	Flow     booking.BookingFlowService
	Students studentRepo.StudentRepository
	Bookings bookingRepo.BookingRepository
	PayHere  *payment.PayHereClient
	Logger   *zap.Logger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(flow booking.BookingFlowService, students studentRepo.StudentRepository, bookings bookingRepo.BookingRepository, payhere *payment.PayHereClient, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		Flow:     flow,
		Students: students,
		Bookings: bookings,
		PayHere:  payhere,
		Logger:   logger,
	}
}

func (h *BookingHandler) flowError(c *gin.Context, err error) {
	if errors.Is(err, booking.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	var fe *booking.FlowError
	if errors.As(err, &fe) {
		status := http.StatusConflict
		if fe.Code == "transitionBlocked" {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": fe.Message, "code": fe.Code})
		return
	}
	h.Logger.Error("booking flow request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// InitiateSession starts a booking flow for the authenticated student.
func (h *BookingHandler) InitiateSession(c *gin.Context) {
	studentID := c.GetString("studentID")
	if studentID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	session, err := h.Flow.InitiateSession(c.Request.Context(), studentID)
	if err != nil {
		h.flowError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetSession returns the current state of a booking session.
func (h *BookingHandler) GetSession(c *gin.Context) {
	session, err := h.Flow.GetSession(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		h.flowError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SelectTutor attaches a tutor to the session and advances to slot selection.
func (h *BookingHandler) SelectTutor(c *gin.Context) {
	var input struct {
		TutorID string `json:"tutorId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	session, err := h.Flow.SelectTutor(c.Request.Context(), c.Param("sessionID"), input.TutorID)
	if err != nil {
		h.flowError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SelectDate sets the date the student is browsing slots for.
func (h *BookingHandler) SelectDate(c *gin.Context) {
	var input struct {
		Date string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	session, err := h.Flow.SelectDate(c.Request.Context(), c.Param("sessionID"), input.Date)
	if err != nil {
		h.flowError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SetPreferences stores subject, language and class type on the session.
func (h *BookingHandler) SetPreferences(c *gin.Context) {
	var prefs models.BookingPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	session, err := h.Flow.SetPreferences(c.Request.Context(), c.Param("sessionID"), prefs)
	if err != nil {
		h.flowError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ReserveSlot locks a single slot for the session and starts the
// reservation countdown.
func (h *BookingHandler) ReserveSlot(c *gin.Context) {
	var input struct {
		SlotID string `json:"slotId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	session, err := h.Flow.ReserveSlot(c.Request.Context(), c.Param("sessionID"), input.SlotID)
	if err != nil {
		h.flowError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ReserveMonthly expands the requested weekly patterns over the month and
// locks every matching available slot.
func (h *BookingHandler) ReserveMonthly(c *gin.Context) {
	var input struct {
		Patterns   []models.SlotPattern `json:"patterns" binding:"required"`
		AnchorDate string               `json:"anchorDate" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	session, err := h.Flow.ReserveMonthly(c.Request.Context(), c.Param("sessionID"), input.Patterns, input.AnchorDate)
	if err != nil {
		h.flowError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Proceed attempts to advance the session to the requested step. A blocked
// transition returns the reason without mutating the session.
func (h *BookingHandler) Proceed(c *gin.Context) {
	var input struct {
		Step models.BookingStep `json:"step" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	result, session, err := h.Flow.ProceedToStep(c.Request.Context(), c.Param("sessionID"), input.Step)
	if err != nil {
		h.flowError(c, err)
		return
	}
	if !result.Allowed {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"allowed": false,
			"reason":  result.Reason,
			"session": session,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"allowed": true, "session": session})
}

// GoBack steps the session backwards, releasing slot locks when the edge
// requires it.
func (h *BookingHandler) GoBack(c *gin.Context) {
	session, err := h.Flow.GoBack(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		h.flowError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// InitPayment creates the pending booking record and returns the signed
// PayHere checkout payload for it.
func (h *BookingHandler) InitPayment(c *gin.Context) {
	ctx := c.Request.Context()
	pending, err := h.Flow.CreatePendingBooking(ctx, c.Param("sessionID"))
	if err != nil {
		h.flowError(c, err)
		return
	}

	stu, err := h.Students.GetByID(ctx, pending.StudentID)
	if err != nil {
		h.Logger.Error("failed to fetch student for checkout", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to prepare checkout"})
		return
	}

	checkout := h.PayHere.BuildCheckout(pending, stu.Name, stu.Email)
	c.JSON(http.StatusOK, gin.H{"booking": pending, "checkout": checkout})
}

// PaymentNotify is the PayHere server-to-server callback. It is the only
// unauthenticated booking endpoint; the md5 signature is the auth.
func (h *BookingHandler) PaymentNotify(c *gin.Context) {
	var n models.PayHereNotification
	if err := c.ShouldBind(&n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification"})
		return
	}

	if !h.PayHere.VerifyNotification(&n) {
		h.Logger.Warn("payment notification failed signature check",
			zap.String("orderId", n.OrderID))
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature mismatch"})
		return
	}

	ctx := c.Request.Context()
	rec, err := h.Bookings.GetByID(ctx, n.OrderID)
	if err != nil {
		h.Logger.Warn("payment notification for unknown booking",
			zap.String("orderId", n.OrderID), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown order"})
		return
	}

	status := payment.BookingStatusFor(n.StatusCode)
	if status == models.BookingStatusConfirmed {
		if _, err := h.Flow.ConfirmPayment(ctx, rec.SessionID, n.PaymentID); err != nil {
			h.flowError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": models.BookingStatusConfirmed})
		return
	}

	// Cancelled, failed or chargedback: record the status and put the
	// session back to slot selection with its locks released.
	if err := h.Bookings.UpdateStatus(ctx, rec.ID, status); err != nil {
		h.Logger.Error("failed to update booking status",
			zap.String("bookingId", rec.ID), zap.Error(err))
	}
	if rec.SessionID != "" {
		if _, err := h.Flow.ResetSession(ctx, rec.SessionID); err != nil && !errors.Is(err, booking.ErrSessionNotFound) {
			h.Logger.Error("failed to reset session after payment failure",
				zap.String("sessionId", rec.SessionID), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// ResetSession clears slot locks and selections, keeping the session alive.
func (h *BookingHandler) ResetSession(c *gin.Context) {
	session, err := h.Flow.ResetSession(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		h.flowError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// CancelSession abandons the flow entirely.
func (h *BookingHandler) CancelSession(c *gin.Context) {
	if err := h.Flow.CancelSession(c.Request.Context(), c.Param("sessionID")); err != nil {
		h.flowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// ListBookings returns the authenticated student's booking history.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	studentID := c.GetString("studentID")
	if studentID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	records, err := h.Bookings.GetByStudent(c.Request.Context(), studentID)
	if err != nil {
		h.Logger.Error("failed to list bookings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}
	c.JSON(http.StatusOK, records)
}
