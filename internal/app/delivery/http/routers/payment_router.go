package routers

import (
	"ambica-diagnostic-service/internal/app/delivery/http/controllers"
	"ambica-diagnostic-service/internal/app/delivery/http/middlewares"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"time"

	"github.com/go-chi/chi/v5"
)

func attachPaymentRoutes(router chi.Router, middlewares *middlewares.Middlewares, paymentController *controllers.PaymentController) {
	paymentQuota := middlewares.UserQuota(constvars.QuotaGroupPayment, time.Minute, middlewares.InternalConfig.App.PaymentRateLimitPerMinute)

	router.Use(middlewares.Authenticate)
	router.With(paymentQuota).Post("/create-order", paymentController.CreateOrder)
	router.With(paymentQuota).Post("/verify", paymentController.Verify)
	router.Get("/history", paymentController.History)
	router.With(middlewares.RequireAdmin).Post("/{orderRef}/expire", paymentController.Expire)
}
