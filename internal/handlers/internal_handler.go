package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
	ucAppointment "github.com/BruksfildServices01/vet-scheduler/internal/usecase/appointment"
)

// InternalHandler receives notifications from the consultation and payment
// services. Routes are restricted to the system role.
type InternalHandler struct {
	completion *ucAppointment.Completion
	payments   *ucAppointment.Payments
}

func NewInternalHandler(
	completion *ucAppointment.Completion,
	payments *ucAppointment.Payments,
) *InternalHandler {
	return &InternalHandler{completion: completion, payments: payments}
}

type PaymentEventRequest struct {
	EventID       string               `json:"event_id" binding:"required,max=120"`
	Provider      string               `json:"provider" binding:"required,max=40"`
	AppointmentID uint                 `json:"appointment_id" binding:"required"`
	PaymentID     uint                 `json:"payment_id"`
	Status        models.PaymentStatus `json:"status" binding:"required"`
}

func (h *InternalHandler) ConsultationRecorded(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.completion.OnConsultationRecorded(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *InternalHandler) ConsultationDeleted(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.completion.OnConsultationDeleted(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

// PaymentEvent answers 200 for duplicates too, so providers stop retrying.
func (h *InternalHandler) PaymentEvent(c *gin.Context) {
	var req PaymentEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.payments.HandleEvent(c.Request.Context(), ucAppointment.PaymentEvent{
		EventID:       req.EventID,
		Provider:      req.Provider,
		AppointmentID: req.AppointmentID,
		PaymentID:     req.PaymentID,
		Status:        req.Status,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"duplicate":   res.Duplicate,
		"appointment": res.Appointment,
	})
}
