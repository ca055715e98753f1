package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/vet-scheduler/internal/middleware"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
	ucAvailability "github.com/BruksfildServices01/vet-scheduler/internal/usecase/availability"
)

// ======================================================
// HANDLER
// ======================================================

type AvailabilityHandler struct {
	create *ucAvailability.CreateWindow
	update *ucAvailability.UpdateWindow
	delete *ucAvailability.DeleteWindow
	list   *ucAvailability.ListWindows
	slots  *ucAvailability.ListSlots

	defaultDuration int
}

func NewAvailabilityHandler(
	create *ucAvailability.CreateWindow,
	update *ucAvailability.UpdateWindow,
	del *ucAvailability.DeleteWindow,
	list *ucAvailability.ListWindows,
	slots *ucAvailability.ListSlots,
	defaultDuration int,
) *AvailabilityHandler {
	return &AvailabilityHandler{
		create:          create,
		update:          update,
		delete:          del,
		list:            list,
		slots:           slots,
		defaultDuration: defaultDuration,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type WindowRequest struct {
	VeterinarianID  uint                    `json:"veterinarian_id" binding:"required"`
	DayOfWeek       string                  `json:"day_of_week"`
	ExceptionalDate string                  `json:"exceptional_date" binding:"omitempty,isodate"`
	StartTime       string                  `json:"start_time" binding:"required,hhmm"`
	EndTime         string                  `json:"end_time" binding:"required,hhmm"`
	Mode            models.ConsultationMode `json:"mode" binding:"omitempty,oneof=online in_person both"`
	IsAvailable     *bool                   `json:"is_available"`
}

type WindowPatchRequest struct {
	DayOfWeek       *string                  `json:"day_of_week"`
	ExceptionalDate *string                  `json:"exceptional_date" binding:"omitempty,isodate"`
	StartTime       *string                  `json:"start_time" binding:"omitempty,hhmm"`
	EndTime         *string                  `json:"end_time" binding:"omitempty,hhmm"`
	Mode            *models.ConsultationMode `json:"mode" binding:"omitempty,oneof=online in_person both"`
	IsAvailable     *bool                    `json:"is_available"`
}

// ======================================================
// WINDOWS
// ======================================================

func (h *AvailabilityHandler) CreateWindow(c *gin.Context) {
	var req WindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	w, err := h.create.Execute(c.Request.Context(), ucAvailability.WindowInput{
		ActorID:         middleware.ActorID(c),
		VeterinarianID:  req.VeterinarianID,
		DayOfWeek:       req.DayOfWeek,
		ExceptionalDate: req.ExceptionalDate,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Mode:            req.Mode,
		IsAvailable:     req.IsAvailable,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, w)
}

func (h *AvailabilityHandler) UpdateWindow(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req WindowPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	w, err := h.update.Execute(c.Request.Context(), id, ucAvailability.WindowPatch{
		ActorID:         middleware.ActorID(c),
		DayOfWeek:       req.DayOfWeek,
		ExceptionalDate: req.ExceptionalDate,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Mode:            req.Mode,
		IsAvailable:     req.IsAvailable,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, w)
}

func (h *AvailabilityHandler) DeleteWindow(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.delete.Execute(c.Request.Context(), middleware.ActorID(c), id); err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.NoContent(c)
}

// ListWindows: ?vetId= required, ?day= a weekday name or YYYY-MM-DD.
func (h *AvailabilityHandler) ListWindows(c *gin.Context) {
	vetID, ok := uintQuery(c, "vetId")
	if !ok {
		return
	}
	if vetID == 0 {
		httperr.BadRequest(c, "missing_filter", "vetId is required.")
		return
	}

	windows, err := h.list.Execute(c.Request.Context(), vetID, c.Query("day"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, windows)
}

// ======================================================
// SLOTS
// ======================================================

func (h *AvailabilityHandler) AvailableSlots(c *gin.Context) {
	vetID, ok := uintQuery(c, "vetId")
	if !ok {
		return
	}
	if vetID == 0 {
		httperr.BadRequest(c, "missing_filter", "vetId is required.")
		return
	}

	duration := h.defaultDuration
	if raw := c.Query("duration"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_duration", "Duration must be a number of minutes.")
			return
		}
		duration = d
	}

	slots, err := h.slots.Execute(c.Request.Context(), ucAvailability.ListSlotsInput{
		VeterinarianID:  vetID,
		Date:            c.Query("date"),
		DurationMinutes: duration,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"veterinarian_id":  vetID,
		"date":             c.Query("date"),
		"duration_minutes": duration,
		"slots":            slots,
	})
}
