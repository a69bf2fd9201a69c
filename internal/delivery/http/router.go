package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"eventparticipation/internal/delivery/http/controllers"
	"eventparticipation/internal/delivery/http/middleware"
	"eventparticipation/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Participation *controllers.ParticipationController
	Payment       *controllers.PaymentController
	Health        *controllers.HealthController
}

// NewRouter initializes the HTTP router with all application routes.
// gateway may be nil, in which case the payment callback is unauthenticated.
func NewRouter(c Controllers, verifier domain.TokenVerifier, gateway middleware.TokenMatcher, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	admin := middleware.RequireRole(verifier, logger, middleware.RoleAdmin)
	gatewayOnly := middleware.RequireGatewayToken(gateway)

	// Participations
	mux.HandleFunc("POST /participations/price-calc", c.Participation.CalculatePrice)
	mux.HandleFunc("POST /participations/start", c.Participation.StartParticipation)
	mux.HandleFunc("PUT /participations/edit", c.Participation.EditParticipation)
	mux.HandleFunc("GET /participations/check", c.Participation.CheckParticipation)
	mux.HandleFunc("GET /participations/{id}", c.Participation.GetParticipation)
	mux.HandleFunc("DELETE /participations/delete/{id}", admin(c.Participation.DeleteParticipation))
	mux.HandleFunc("POST /participations/{id}/cancel", admin(c.Participation.CancelParticipation))
	mux.HandleFunc("GET /participations", admin(c.Participation.ListParticipations))

	// Payment gateway
	mux.HandleFunc("POST /participations/payment-callback", gatewayOnly(c.Payment.PaymentCallback))

	// Ops
	mux.HandleFunc("GET /health", c.Health.Health)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
