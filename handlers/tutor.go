package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	slotRepo "github.com/Sem-Five-Project/edimy/database/repository/slot"
	"github.com/Sem-Five-Project/edimy/models"
	"github.com/Sem-Five-Project/edimy/services/tutor"
)

// TutorHandler exposes tutor profiles, the browse surface, and tutor
// availability management.
type TutorHandler struct {
	Svc    tutor.TutorService
	Slots  slotRepo.SlotRepository
	Logger *zap.Logger
}

// NewTutorHandler constructs a TutorHandler.
func NewTutorHandler(svc tutor.TutorService, slots slotRepo.SlotRepository, logger *zap.Logger) *TutorHandler {
	return &TutorHandler{Svc: svc, Slots: slots, Logger: logger}
}

// Register creates a new tutor profile.
func (h *TutorHandler) Register(c *gin.Context) {
	var t models.Tutor
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	created, err := h.Svc.Register(c.Request.Context(), &t)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetByID returns one tutor profile.
func (h *TutorHandler) GetByID(c *gin.Context) {
	t, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

// Search filters tutors by subject, language, rating and rate.
func (h *TutorHandler) Search(c *gin.Context) {
	var q models.TutorSearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query", "details": err.Error()})
		return
	}

	results, err := h.Svc.Search(c.Request.Context(), q)
	if err != nil {
		h.Logger.Error("tutor search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tutors": results, "count": len(results)})
}

// Update replaces mutable profile fields.
func (h *TutorHandler) Update(c *gin.Context) {
	var t models.Tutor
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	t.ID = c.Param("id")

	updated, err := h.Svc.UpdateProfile(c.Request.Context(), &t)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UploadPhoto accepts a multipart profile photo and stores it.
func (h *TutorHandler) UploadPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}

	tmpPath := filepath.Join(os.TempDir(), filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		h.Logger.Error("failed to save uploaded photo", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to receive file"})
		return
	}
	defer os.Remove(tmpPath)

	updated, err := h.Svc.SetProfilePhoto(c.Request.Context(), c.Param("id"), tmpPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Rate records a student rating for a tutor.
func (h *TutorHandler) Rate(c *gin.Context) {
	var input struct {
		Rating float64 `json:"rating" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := h.Svc.RateTutor(c.Request.Context(), c.Param("id"), input.Rating); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Delete removes a tutor profile.
func (h *TutorHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// CreateSlots publishes availability slots for a tutor.
func (h *TutorHandler) CreateSlots(c *gin.Context) {
	var input struct {
		Slots []models.TimeSlot `json:"slots" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	tutorID := c.Param("id")
	for i := range input.Slots {
		input.Slots[i].TutorID = tutorID
		input.Slots[i].Status = models.SlotStatusAvailable
		if input.Slots[i].Start >= input.Slots[i].End {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slot start must precede end"})
			return
		}
	}

	ids, err := h.Slots.CreateMany(c.Request.Context(), input.Slots)
	if err != nil {
		h.Logger.Error("failed to create slots", zap.String("tutorID", tutorID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create slots"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"slotIds": ids})
}

// ListSlots returns a tutor's slots for one date.
func (h *TutorHandler) ListSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}

	slots, err := h.Slots.GetByTutorAndDate(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		h.Logger.Error("failed to list slots", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list slots"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// DeleteSlot removes one of the tutor's slots.
func (h *TutorHandler) DeleteSlot(c *gin.Context) {
	if err := h.Slots.DeleteByID(c.Request.Context(), c.Param("id"), c.Param("slotID")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
