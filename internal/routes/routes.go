package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/BruksfildServices01/vet-scheduler/internal/handlers"
	"github.com/BruksfildServices01/vet-scheduler/internal/middleware"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
	ucAppointment "github.com/BruksfildServices01/vet-scheduler/internal/usecase/appointment"
	ucAvailability "github.com/BruksfildServices01/vet-scheduler/internal/usecase/availability"
)

func RegisterRoutes(r *gin.Engine, d *Deps) {
	cfg := d.Config

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(
		middleware.CORSMiddleware(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(d.Metrics),
		gin.Recovery(),
	)

	// ======================================================
	// USE CASES - AVAILABILITY
	// ======================================================
	createWindowUC := ucAvailability.NewCreateWindow(d.Availability, d.Identity, d.Audit)
	updateWindowUC := ucAvailability.NewUpdateWindow(d.Availability, d.Audit)
	deleteWindowUC := ucAvailability.NewDeleteWindow(d.Availability, d.Audit)
	listWindowsUC := ucAvailability.NewListWindows(d.Availability)
	listSlotsUC := ucAvailability.NewListSlots(d.Appointments, d.Metrics)

	// ======================================================
	// USE CASES - APPOINTMENTS
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(
		d.Appointments,
		d.Identity,
		d.Audit,
		d.Metrics,
		cfg.DefaultAppointmentMinutes,
	)
	updateAppointmentUC := ucAppointment.NewUpdateAppointment(d.Appointments, d.Identity, d.Audit, d.Metrics)
	confirmAppointmentUC := ucAppointment.NewConfirmAppointment(d.Appointments, d.Audit, d.Metrics)
	cancelAppointmentUC := ucAppointment.NewCancelAppointment(d.Appointments, d.Audit, d.Metrics)
	addAnimalUC := ucAppointment.NewAddAnimal(d.Appointments, d.Audit)
	getAppointmentUC := ucAppointment.NewGetAppointment(d.Appointments)
	listAppointmentsUC := ucAppointment.NewListAppointments(d.Appointments)
	todayUnconsultedUC := ucAppointment.NewTodayUnconsulted(d.Appointments, d.Consultations, cfg.ClinicTimezone)
	unconsultedAnimalsUC := ucAppointment.NewUnconsultedAnimals(d.Appointments, d.Consultations)

	completionUC := ucAppointment.NewCompletion(d.Appointments, d.Consultations, d.Audit, d.Metrics)
	paymentsUC := ucAppointment.NewPayments(d.Appointments, d.Deduper, d.Audit, d.Metrics)

	// ======================================================
	// HANDLERS
	// ======================================================
	availabilityHandler := handlers.NewAvailabilityHandler(
		createWindowUC,
		updateWindowUC,
		deleteWindowUC,
		listWindowsUC,
		listSlotsUC,
		cfg.DefaultAppointmentMinutes,
	)

	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		updateAppointmentUC,
		confirmAppointmentUC,
		cancelAppointmentUC,
		addAnimalUC,
		getAppointmentUC,
		listAppointmentsUC,
		todayUnconsultedUC,
		unconsultedAnimalsUC,
	)

	internalHandler := handlers.NewInternalHandler(completionUC, paymentsUC)

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  rate.Limit(cfg.RateLimitRPS),
		Burst: cfg.RateLimitBurst,
	})

	// ======================================================
	// PUBLIC
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	// ======================================================
	// AUTHENTICATED API
	// ======================================================
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	windows := api.Group("/availability-windows")
	{
		windows.GET("", availabilityHandler.ListWindows)

		manage := windows.Group("")
		manage.Use(middleware.RequireRoles(models.RoleVeterinarian, models.RoleAdmin))
		manage.POST("", availabilityHandler.CreateWindow)
		manage.PATCH("/:id", availabilityHandler.UpdateWindow)
		manage.DELETE("/:id", availabilityHandler.DeleteWindow)
	}

	api.GET("/available-slots", limiter.RateLimit(), availabilityHandler.AvailableSlots)

	appointments := api.Group("/appointments")
	{
		appointments.POST("", appointmentHandler.Create)
		appointments.GET("", appointmentHandler.List)
		appointments.GET("/:id", appointmentHandler.Get)
		appointments.PATCH("/:id", appointmentHandler.Update)
		appointments.POST(
			"/:id/confirm",
			middleware.RequireRoles(models.RoleVeterinarian, models.RoleAdmin),
			appointmentHandler.Confirm,
		)
		appointments.POST("/:id/cancel", appointmentHandler.Cancel)
		appointments.POST("/:id/animals/:animalId", appointmentHandler.AddAnimal)
		appointments.GET("/:id/unconsulted-animals", appointmentHandler.UnconsultedAnimals)
	}

	api.GET("/veterinarians/:vetId/appointments/today-unconsulted", appointmentHandler.TodayUnconsulted)

	if d.DB != nil {
		auditLogsHandler := handlers.NewAuditLogsHandler(d.DB)
		api.GET("/audit-logs", middleware.RequireRoles(models.RoleAdmin), auditLogsHandler.List)
	}

	// ======================================================
	// INTERNAL (consultation + payment services)
	// ======================================================
	internal := api.Group("/internal")
	internal.Use(middleware.RequireRoles(models.RoleSystem))
	{
		internal.POST("/appointments/:id/consultation-recorded", internalHandler.ConsultationRecorded)
		internal.POST("/appointments/:id/consultation-deleted", internalHandler.ConsultationDeleted)
		internal.POST("/payments/events", internalHandler.PaymentEvent)
	}
}
