package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/vet-scheduler/internal/middleware"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
	ucAppointment "github.com/BruksfildServices01/vet-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create      *ucAppointment.CreateAppointment
	update      *ucAppointment.UpdateAppointment
	confirm     *ucAppointment.ConfirmAppointment
	cancel      *ucAppointment.CancelAppointment
	addAnimal   *ucAppointment.AddAnimal
	get         *ucAppointment.GetAppointment
	list        *ucAppointment.ListAppointments
	today       *ucAppointment.TodayUnconsulted
	unconsulted *ucAppointment.UnconsultedAnimals
}

func NewAppointmentHandler(
	create *ucAppointment.CreateAppointment,
	update *ucAppointment.UpdateAppointment,
	confirm *ucAppointment.ConfirmAppointment,
	cancel *ucAppointment.CancelAppointment,
	addAnimal *ucAppointment.AddAnimal,
	get *ucAppointment.GetAppointment,
	list *ucAppointment.ListAppointments,
	today *ucAppointment.TodayUnconsulted,
	unconsulted *ucAppointment.UnconsultedAnimals,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:      create,
		update:      update,
		confirm:     confirm,
		cancel:      cancel,
		addAnimal:   addAnimal,
		get:         get,
		list:        list,
		today:       today,
		unconsulted: unconsulted,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	VeterinarianID  uint                   `json:"veterinarian_id" binding:"required"`
	OwnerID         uint                   `json:"owner_id" binding:"required"`
	Date            string                 `json:"date" binding:"required,isodate"`
	Time            string                 `json:"time" binding:"required,hhmm"`
	DurationMinutes int                    `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	Kind            models.AppointmentKind `json:"kind" binding:"required,oneof=online in_person"`
	Reason          string                 `json:"reason" binding:"max=255"`
	Notes           string                 `json:"notes"`
}

type UpdateAppointmentRequest struct {
	Date            *string                 `json:"date" binding:"omitempty,isodate"`
	Time            *string                 `json:"time" binding:"omitempty,hhmm"`
	DurationMinutes *int                    `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	Kind            *models.AppointmentKind `json:"kind" binding:"omitempty,oneof=online in_person"`
	Reason          *string                 `json:"reason" binding:"omitempty,max=255"`
	Notes           *string                 `json:"notes"`
	VeterinarianID  *uint                   `json:"veterinarian_id" binding:"omitempty,min=1"`
	OwnerID         *uint                   `json:"owner_id" binding:"omitempty,min=1"`
}

// ======================================================
// COMMANDS
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		ActorID:         middleware.ActorID(c),
		VeterinarianID:  req.VeterinarianID,
		OwnerID:         req.OwnerID,
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
		Kind:            req.Kind,
		Reason:          req.Reason,
		Notes:           req.Notes,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, ap)
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ap, err := h.update.Execute(c.Request.Context(), middleware.ActorID(c), id, domain.Patch{
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
		Kind:            req.Kind,
		Reason:          req.Reason,
		Notes:           req.Notes,
		VeterinarianID:  req.VeterinarianID,
		OwnerID:         req.OwnerID,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.confirm.Execute(c.Request.Context(), middleware.ActorID(c), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.cancel.Execute(c.Request.Context(), middleware.ActorID(c), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) AddAnimal(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	animalID, ok := uintParam(c, "animalId")
	if !ok {
		return
	}

	ap, err := h.addAnimal.Execute(c.Request.Context(), middleware.ActorID(c), id, animalID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.Created(c, ap)
}

// ======================================================
// QUERIES
// ======================================================

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

// List: ?ownerId= | ?vetId= with optional status=confirmed,completed and from=YYYY-MM-DD.
func (h *AppointmentHandler) List(c *gin.Context) {
	ownerID, ok := uintQuery(c, "ownerId")
	if !ok {
		return
	}
	vetID, ok := uintQuery(c, "vetId")
	if !ok {
		return
	}

	var statuses []string
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, s)
			}
		}
	}

	aps, err := h.list.Execute(c.Request.Context(), ucAppointment.ListQuery{
		OwnerID:        ownerID,
		VeterinarianID: vetID,
		Statuses:       statuses,
		From:           c.Query("from"),
		Date:           c.Query("date"),
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, aps)
}

func (h *AppointmentHandler) TodayUnconsulted(c *gin.Context) {
	vetID, ok := uintParam(c, "vetId")
	if !ok {
		return
	}

	aps, err := h.today.Execute(c.Request.Context(), vetID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, aps)
}

func (h *AppointmentHandler) UnconsultedAnimals(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	animals, err := h.unconsulted.Execute(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, animals)
}
