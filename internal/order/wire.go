package order

import (
	"database/sql"

	"go.uber.org/zap"

	companyservice "orderenricher/internal/company/service"
	"orderenricher/internal/config"
	"orderenricher/internal/infrastructure/b2b"
	"orderenricher/internal/infrastructure/bigcommerce"
	"orderenricher/internal/infrastructure/metrics"
	"orderenricher/internal/order/controller"
	orderrepo "orderenricher/internal/order/repository"
	"orderenricher/internal/order/usecase"
)

type Module struct {
	Webhook *controller.WebhookController
	Events  *controller.WebhookEventsController
}

// NewModule wires the enrichment pipeline. db may be nil, in which case
// webhook events are not persisted. configErr is reported on every delivery.
func NewModule(cfg *config.Config, configErr error, db *sql.DB, m *metrics.Metrics, logger *zap.Logger) *Module {
	store := bigcommerce.NewClient(cfg.Store, m, logger)
	directory := b2b.NewClient(cfg.B2B, m, logger)

	resolver := companyservice.NewCompanyResolver(directory, companyservice.OptionsFromConfig(cfg.B2B), m, logger)
	uc := usecase.NewEnrichOrderUseCase(store, resolver, cfg.Store.SubResources, logger)

	var events controller.WebhookEventRepository = orderrepo.NopWebhookEventRepository{}
	if db != nil {
		events = orderrepo.NewMySQLWebhookEventRepository(db)
	}

	opts := controller.WebhookOptions{
		SecretHeader: cfg.Webhook.SecretHeader,
		Secret:       cfg.Webhook.Secret,
	}

	return &Module{
		Webhook: controller.NewWebhookController(uc, events, opts, configErr, m, logger),
		Events:  controller.NewWebhookEventsController(events, logger),
	}
}
