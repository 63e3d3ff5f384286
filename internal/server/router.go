package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"orderenricher/internal/order/controller"
)

func NewRouter(
	webhookCtrl *controller.WebhookController,
	eventsCtrl *controller.WebhookEventsController,
	metricsHandler http.Handler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(Recoverer(logger))
	r.Use(RequestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Post("/api/webhook", webhookCtrl.HandleOrderWebhook)
	r.Get("/api/webhook/events/{orderId}", eventsCtrl.ListByOrder)

	return otelhttp.NewHandler(r, "order-enricher")
}
