package routers

import (
	"ambica-diagnostic-service/internal/app/delivery/http/controllers"
	"ambica-diagnostic-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachAppointmentRoutes(router chi.Router, middlewares *middlewares.Middlewares, appointmentController *controllers.AppointmentController) {
	router.Get("/slots", appointmentController.GetAvailability)

	router.Group(func(r chi.Router) {
		r.Use(middlewares.Authenticate)
		r.Post("/", appointmentController.CreateAppointment)
		r.Get("/", appointmentController.FindMine)
		r.With(middlewares.RequireAdmin).Get("/all", appointmentController.FindAll)
		r.Get("/{appointmentID}", appointmentController.FindByID)
		r.Post("/{appointmentID}/cancel", appointmentController.Cancel)
		r.With(middlewares.RequireAdmin).Post("/{appointmentID}/collect", appointmentController.Collect)
		r.With(middlewares.RequireAdmin).Post("/{appointmentID}/complete", appointmentController.Complete)
	})
}
