package controller

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"orderenricher/internal/domain"
	"orderenricher/internal/dto"
	apperrors "orderenricher/internal/errors"
	"orderenricher/internal/infrastructure/metrics"
)

const maxWebhookBodyBytes = 1 << 20

type EnrichOrderUseCase interface {
	EnrichOrder(ctx context.Context, orderID domain.OrderID) (*domain.EnrichedOrder, error)
}

type WebhookEventRepository interface {
	Save(ctx context.Context, event *domain.WebhookEvent) error
	FindByOrderID(ctx context.Context, orderID string, limit int) ([]domain.WebhookEvent, error)
}

type WebhookOptions struct {
	SecretHeader string
	Secret       string
}

type WebhookController struct {
	useCase   EnrichOrderUseCase
	events    WebhookEventRepository
	opts      WebhookOptions
	configErr error
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewWebhookController builds the handler. A non-nil configErr makes every
// delivery fail with 500 before any outbound call.
func NewWebhookController(
	useCase EnrichOrderUseCase,
	events WebhookEventRepository,
	opts WebhookOptions,
	configErr error,
	m *metrics.Metrics,
	logger *zap.Logger,
) *WebhookController {
	return &WebhookController{
		useCase:   useCase,
		events:    events,
		opts:      opts,
		configErr: configErr,
		metrics:   m,
		logger:    logger,
	}
}

func (c *WebhookController) HandleOrderWebhook(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	if c.configErr != nil {
		logger.Error("rejecting webhook: service is misconfigured", zap.Error(c.configErr))
		c.metrics.Webhooks.WithLabelValues(domain.WebhookEventFailed).Inc()
		c.recordOutcome(r.Context(), logger, traceID, "", domain.WebhookEventFailed, "CONFIGURATION_ERROR")
		c.writeErrorResponse(w, traceID, "", http.StatusInternalServerError, "CONFIGURATION_ERROR", c.configErr.Error(), nil)
		return
	}

	if !c.authorized(r) {
		logger.Warn("webhook secret mismatch")
		c.metrics.Webhooks.WithLabelValues(domain.WebhookEventRejected).Inc()
		c.recordOutcome(r.Context(), logger, traceID, "", domain.WebhookEventRejected, "UNAUTHORIZED")
		c.writeErrorResponse(w, traceID, "", http.StatusUnauthorized, "UNAUTHORIZED", "invalid webhook secret", nil)
		return
	}

	testMode := r.URL.Query().Get("test") == "true"
	orderID, err := decodeOrderID(w, r, testMode)
	if err != nil {
		logger.Warn("invalid webhook payload", zap.Bool("testMode", testMode), zap.Error(err))
		c.metrics.Webhooks.WithLabelValues(domain.WebhookEventRejected).Inc()
		c.recordOutcome(r.Context(), logger, traceID, "", domain.WebhookEventRejected, "VALIDATION_ERROR")
		ve, ok := apperrors.IsValidationError(err)
		if !ok {
			ve = apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
				Field:   "body",
				Message: "request body must be valid JSON",
			})
		}
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	logger = logger.With(zap.String("orderId", orderID.String()))
	logger.Info("webhook received", zap.Bool("testMode", testMode))

	result, err := c.useCase.EnrichOrder(r.Context(), orderID)
	if err != nil {
		code := c.handleUseCaseError(w, traceID, orderID, err, logger)
		c.recordOutcome(r.Context(), logger, traceID, orderID.String(), domain.WebhookEventFailed, code)
		return
	}

	c.metrics.Webhooks.WithLabelValues(domain.WebhookEventSucceeded).Inc()
	c.record(r.Context(), logger, &domain.WebhookEvent{
		TraceID:     traceID,
		OrderID:     orderID.String(),
		Status:      domain.WebhookEventSucceeded,
		CompanyID:   result.Company.CompanyID,
		E8CompanyID: result.Company.ExtraFieldValue,
	})

	c.writeJSON(w, http.StatusOK, dto.NewEnrichedOrderResponse(traceID, result))
}

func (c *WebhookController) authorized(r *http.Request) bool {
	if c.opts.Secret == "" {
		return true
	}
	got := r.Header.Get(c.opts.SecretHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(c.opts.Secret)) == 1
}

func decodeOrderID(w http.ResponseWriter, r *http.Request, testMode bool) (domain.OrderID, error) {
	body := http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	decoder := json.NewDecoder(body)

	if testMode {
		var payload dto.TestWebhookPayload
		if err := decoder.Decode(&payload); err != nil {
			return "", invalidOrderID(err, "orderId")
		}
		if payload.OrderID.IsZero() {
			return "", apperrors.NewValidationError("orderId missing in test payload", apperrors.ValidationDetail{
				Field:   "orderId",
				Message: "orderId is required",
			})
		}
		return payload.OrderID, nil
	}

	var payload dto.WebhookPayload
	if err := decoder.Decode(&payload); err != nil {
		return "", invalidOrderID(err, "data.id")
	}
	if payload.OrderID().IsZero() {
		return "", apperrors.NewValidationError("Order ID missing in webhook payload", apperrors.ValidationDetail{
			Field:   "data.id",
			Message: "data.id is required",
		})
	}
	return payload.OrderID(), nil
}

// invalidOrderID turns a rejected id into a validation error on field and
// leaves any other decode error untouched.
func invalidOrderID(err error, field string) error {
	if !errors.Is(err, domain.ErrInvalidOrderID) {
		return err
	}
	return apperrors.NewValidationError("invalid order id", apperrors.ValidationDetail{
		Field:   field,
		Message: err.Error(),
	})
}

// handleUseCaseError writes the error response and returns its code.
func (c *WebhookController) handleUseCaseError(w http.ResponseWriter, traceID string, orderID domain.OrderID, err error, logger *zap.Logger) string {
	c.metrics.Webhooks.WithLabelValues(domain.WebhookEventFailed).Inc()

	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return "VALIDATION_ERROR"
	}

	if ue, ok := apperrors.IsUpstreamFetchError(err); ok {
		logger.Error("upstream fetch failed", zap.String("resource", ue.Resource), zap.Int("status", ue.StatusCode))
		c.writeErrorResponse(w, traceID, orderID, http.StatusInternalServerError, "UPSTREAM_FETCH_ERROR", ue.Error(), &upstreamDetail{resource: ue.Resource, status: ue.StatusCode})
		return "UPSTREAM_FETCH_ERROR"
	}

	if me, ok := apperrors.IsMalformedResponseError(err); ok {
		logger.Error("malformed upstream response", zap.String("resource", me.Resource), zap.Error(err))
		c.writeErrorResponse(w, traceID, orderID, http.StatusInternalServerError, "MALFORMED_RESPONSE", me.Error(), &upstreamDetail{resource: me.Resource})
		return "MALFORMED_RESPONSE"
	}

	if te, ok := apperrors.IsTransportError(err); ok {
		logger.Error("upstream unreachable", zap.String("resource", te.Resource), zap.Error(err))
		c.writeErrorResponse(w, traceID, orderID, http.StatusInternalServerError, "TRANSPORT_ERROR", te.Error(), &upstreamDetail{resource: te.Resource})
		return "TRANSPORT_ERROR"
	}

	ie := apperrors.NewInternalError("enriching order", err)
	if errors.Is(err, context.Canceled) {
		logger.Warn("request cancelled by caller", zap.Error(ie))
	} else {
		logger.Error("unexpected error", zap.Error(ie))
	}
	c.writeErrorResponse(w, traceID, orderID, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	return "INTERNAL_ERROR"
}

func (c *WebhookController) recordOutcome(ctx context.Context, logger *zap.Logger, traceID, orderID, status, code string) {
	c.record(ctx, logger, &domain.WebhookEvent{
		TraceID:   traceID,
		OrderID:   orderID,
		Status:    status,
		ErrorCode: &code,
	})
}

// record stores the delivery outcome. It never affects the response.
func (c *WebhookController) record(ctx context.Context, logger *zap.Logger, event *domain.WebhookEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := c.events.Save(ctx, event); err != nil {
		logger.Error("failed to record webhook event", zap.Error(err))
	}
}

type upstreamDetail struct {
	resource string
	status   int
}

func (c *WebhookController) writeErrorResponse(w http.ResponseWriter, traceID string, orderID domain.OrderID, statusCode int, code string, message string, detail *upstreamDetail) {
	response := dto.WebhookErrorResponse{
		Success:   false,
		TraceID:   traceID,
		Status:    statusCode,
		Code:      code,
		Message:   message,
		OrderID:   orderID.String(),
		Timestamp: time.Now().UTC(),
	}
	if detail != nil {
		response.Resource = detail.resource
		response.UpstreamStatus = detail.status
	}

	writeJSON(w, statusCode, response, c.logger)
}

type validationErrorResponse struct {
	Success bool                         `json:"success"`
	TraceID string                       `json:"traceId"`
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *WebhookController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	response := validationErrorResponse{
		Success: false,
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	}

	writeJSON(w, http.StatusBadRequest, response, c.logger)
}

func (c *WebhookController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, data, c.logger)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
