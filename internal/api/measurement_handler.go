package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"ymfit/studio-app/internal/domain"
	"ymfit/studio-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MeasurementHandler exposes body measurement and progress photo endpoints.
type MeasurementHandler struct {
	measurementService service.MeasurementService
}

func NewMeasurementHandler(measurementService service.MeasurementService) *MeasurementHandler {
	return &MeasurementHandler{measurementService: measurementService}
}

type MeasurementRequest struct {
	Date       time.Time `json:"date" binding:"required"`
	WeightKg   float64   `json:"weightKg,omitempty"`
	BodyFatPct float64   `json:"bodyFatPct,omitempty"`
	ChestCm    float64   `json:"chestCm,omitempty"`
	WaistCm    float64   `json:"waistCm,omitempty"`
	HipsCm     float64   `json:"hipsCm,omitempty"`
	ArmCm      float64   `json:"armCm,omitempty"`
	ThighCm    float64   `json:"thighCm,omitempty"`
	Notes      string    `json:"notes,omitempty"`
}

type PhotoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type PhotoConfirmRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

func (req *MeasurementRequest) toDomain() *domain.Measurement {
	return &domain.Measurement{
		Date:       req.Date,
		WeightKg:   req.WeightKg,
		BodyFatPct: req.BodyFatPct,
		ChestCm:    req.ChestCm,
		WaistCm:    req.WaistCm,
		HipsCm:     req.HipsCm,
		ArmCm:      req.ArmCm,
		ThighCm:    req.ThighCm,
		Notes:      req.Notes,
	}
}

func abortWithMeasurementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTraineeNotFound), errors.Is(err, service.ErrTraineeNotManaged):
		abortWithError(c, http.StatusNotFound, "Trainee not found on your roster")
	case errors.Is(err, service.ErrMeasurementNotFound):
		abortWithError(c, http.StatusNotFound, "Measurement not found")
	case errors.Is(err, service.ErrMeasurementAccessDenied):
		abortWithError(c, http.StatusForbidden, "Access denied to this measurement")
	default:
		abortWithError(c, http.StatusInternalServerError, "Measurement operation failed")
	}
}

// CreateMeasurement handles POST /api/v1/trainer/trainees/:traineeId/measurements.
func (h *MeasurementHandler) CreateMeasurement(c *gin.Context) {
	trainerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	traineeID, err := primitive.ObjectIDFromHex(c.Param("traineeId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainee ID format")
		return
	}

	var req MeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	m := req.toDomain()
	m.TraineeID = traineeID
	created, err := h.measurementService.CreateMeasurement(c.Request.Context(), trainerID, m)
	if err != nil {
		abortWithMeasurementError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetMeasurements handles GET /api/v1/trainees/:traineeId/measurements.
func (h *MeasurementHandler) GetMeasurements(c *gin.Context) {
	callerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	traineeID, err := primitive.ObjectIDFromHex(c.Param("traineeId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainee ID format")
		return
	}

	measurements, err := h.measurementService.GetMeasurementsForTrainee(c.Request.Context(), callerID, traineeID)
	if err != nil {
		abortWithMeasurementError(c, err)
		return
	}
	c.JSON(http.StatusOK, measurements)
}

// UpdateMeasurement handles PUT /api/v1/trainer/measurements/:measurementId.
func (h *MeasurementHandler) UpdateMeasurement(c *gin.Context) {
	trainerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	measurementID, err := primitive.ObjectIDFromHex(c.Param("measurementId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid measurement ID format")
		return
	}

	var req MeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	m := req.toDomain()
	m.ID = measurementID
	updated, err := h.measurementService.UpdateMeasurement(c.Request.Context(), trainerID, m)
	if err != nil {
		abortWithMeasurementError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteMeasurement handles DELETE /api/v1/trainer/measurements/:measurementId.
func (h *MeasurementHandler) DeleteMeasurement(c *gin.Context) {
	trainerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	measurementID, err := primitive.ObjectIDFromHex(c.Param("measurementId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid measurement ID format")
		return
	}

	if err := h.measurementService.DeleteMeasurement(c.Request.Context(), trainerID, measurementID); err != nil {
		abortWithMeasurementError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestPhotoUpload handles POST /api/v1/trainer/measurements/:measurementId/photos.
func (h *MeasurementHandler) RequestPhotoUpload(c *gin.Context) {
	trainerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	measurementID, err := primitive.ObjectIDFromHex(c.Param("measurementId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid measurement ID format")
		return
	}

	var req PhotoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	info, err := h.measurementService.RequestPhotoUpload(c.Request.Context(), trainerID, measurementID, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrMeasurementNotFound) || errors.Is(err, service.ErrMeasurementAccessDenied) {
			abortWithMeasurementError(c, err)
			return
		}
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, info)
}

// ConfirmPhotoUpload handles POST /api/v1/trainer/measurements/:measurementId/photos/confirm.
func (h *MeasurementHandler) ConfirmPhotoUpload(c *gin.Context) {
	trainerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	measurementID, err := primitive.ObjectIDFromHex(c.Param("measurementId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid measurement ID format")
		return
	}

	var req PhotoConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	m, err := h.measurementService.ConfirmPhotoUpload(c.Request.Context(), trainerID, measurementID, req.ObjectKey)
	if err != nil {
		abortWithMeasurementError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// GetPhotoDownloadURL handles GET /api/v1/measurements/:measurementId/photos?key=...
func (h *MeasurementHandler) GetPhotoDownloadURL(c *gin.Context) {
	callerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	measurementID, err := primitive.ObjectIDFromHex(c.Param("measurementId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid measurement ID format")
		return
	}
	objectKey := c.Query("key")
	if objectKey == "" {
		abortWithError(c, http.StatusBadRequest, "Query parameter 'key' is required")
		return
	}

	url, err := h.measurementService.GetPhotoDownloadURL(c.Request.Context(), callerID, measurementID, objectKey)
	if err != nil {
		abortWithMeasurementError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}
