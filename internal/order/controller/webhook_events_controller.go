package controller

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"orderenricher/internal/dto"
)

const maxEventsPerOrder = 50

type WebhookEventsController struct {
	events WebhookEventRepository
	logger *zap.Logger
}

func NewWebhookEventsController(events WebhookEventRepository, logger *zap.Logger) *WebhookEventsController {
	return &WebhookEventsController{
		events: events,
		logger: logger,
	}
}

func (c *WebhookEventsController) ListByOrder(w http.ResponseWriter, r *http.Request) {
	orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "VALIDATION_ERROR",
			"message": "orderId is required",
		}, c.logger)
		return
	}

	events, err := c.events.FindByOrderID(r.Context(), orderID, maxEventsPerOrder)
	if err != nil {
		c.logger.Error("listing webhook events failed", zap.String("orderId", orderID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "INTERNAL_ERROR",
			"message": "an unexpected error occurred",
		}, c.logger)
		return
	}

	resp := dto.WebhookEventsResponse{
		OrderID: orderID,
		Events:  make([]dto.WebhookEventDTO, 0, len(events)),
	}
	for _, e := range events {
		resp.Events = append(resp.Events, dto.NewWebhookEventDTO(e))
	}

	writeJSON(w, http.StatusOK, resp, c.logger)
}
