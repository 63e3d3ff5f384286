package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"orderenricher/internal/domain"
	apperrors "orderenricher/internal/errors"
	"orderenricher/internal/infrastructure/bigcommerce"
)

type StoreClient interface {
	GetOrder(ctx context.Context, orderID domain.OrderID) (*domain.Order, error)
	GetOrderProducts(ctx context.Context, orderID domain.OrderID) ([]domain.LineItem, error)
	GetCustomer(ctx context.Context, customerID int64) (*domain.Customer, error)
	GetOrderSubResource(ctx context.Context, orderID domain.OrderID, name string) (json.RawMessage, error)
}

type CompanyResolver interface {
	Resolve(ctx context.Context, customerCompany string) (domain.CompanyResolution, error)
}

// EnrichOrderUseCase assembles an EnrichedOrder from the store and B2B APIs.
// No call is retried; the first failure ends the attempt.
type EnrichOrderUseCase struct {
	store        StoreClient
	companies    CompanyResolver
	subResources []string
	logger       *zap.Logger
}

func NewEnrichOrderUseCase(
	store StoreClient,
	companies CompanyResolver,
	subResources []string,
	logger *zap.Logger,
) *EnrichOrderUseCase {
	return &EnrichOrderUseCase{
		store:        store,
		companies:    companies,
		subResources: subResources,
		logger:       logger,
	}
}

func (uc *EnrichOrderUseCase) EnrichOrder(ctx context.Context, orderID domain.OrderID) (*domain.EnrichedOrder, error) {
	logger := uc.logger.With(zap.String("orderId", orderID.String()))

	if orderID.IsZero() {
		return nil, apperrors.NewValidationError("order id is required", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "order id is required",
		})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Optional sub-resources never fail the resolution.
	var optional sync.WaitGroup
	subResources := make(map[string]domain.SubResource, len(uc.subResources))
	var mu sync.Mutex
	for _, name := range uc.subResources {
		optional.Add(1)
		go func(name string) {
			defer optional.Done()
			sub := domain.SubResource{}
			raw, err := uc.store.GetOrderSubResource(ctx, orderID, name)
			if err != nil {
				logger.Warn("optional sub-resource failed", zap.String("subResource", name), zap.Error(err))
				sub.Err = err.Error()
			} else {
				sub.Data = raw
			}
			mu.Lock()
			subResources[name] = sub
			mu.Unlock()
		}(name)
	}

	var (
		order    *domain.Order
		products []domain.LineItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		order, err = uc.store.GetOrder(gctx, orderID)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = uc.store.GetOrderProducts(gctx, orderID)
		return err
	})
	if err := g.Wait(); err != nil {
		cancel()
		optional.Wait()
		logger.Error("fetching order failed", zap.Error(err))
		return nil, err
	}
	optional.Wait()

	result := &domain.EnrichedOrder{
		Order:    *order,
		Products: products,
	}
	if len(subResources) > 0 {
		result.SubResources = subResources
	}
	uc.attachTypedSubResources(result, logger)

	if !order.HasCustomer() {
		depErr := apperrors.NewMissingDependencyError(bigcommerce.ResourceCustomer, "order.customer_id")
		logger.Warn("skipping company resolution", zap.Error(depErr))
		result.AddWarning(depErr.Error())
		return result, nil
	}

	customer, err := uc.store.GetCustomer(ctx, order.CustomerID)
	if err != nil {
		logger.Error("fetching customer failed", zap.Int64("customerId", order.CustomerID), zap.Error(err))
		return nil, err
	}
	result.Customer = customer

	if !customer.HasCompany() {
		logger.Info("customer has no company", zap.Int64("customerId", customer.ID))
		result.AddWarning(fmt.Sprintf("customer %d has no company", customer.ID))
		return result, nil
	}

	resolution, err := uc.companies.Resolve(ctx, customer.Company)
	if err != nil {
		logger.Error("resolving company failed", zap.String("company", customer.Company), zap.Error(err))
		return nil, err
	}
	result.Company = resolution
	if !resolution.Matched() {
		result.AddWarning(fmt.Sprintf("no B2B company named %q", customer.Company))
	}

	logger.Info("order enriched",
		zap.Int64("customerId", customer.ID),
		zap.Int64p("companyId", resolution.CompanyID),
		zap.Stringp("e8CompanyId", resolution.ExtraFieldValue),
	)
	return result, nil
}

// attachTypedSubResources decodes coupons and fees onto the order. A payload
// that does not decode is turned into an inline error.
func (uc *EnrichOrderUseCase) attachTypedSubResources(result *domain.EnrichedOrder, logger *zap.Logger) {
	if sub, ok := result.SubResources["coupons"]; ok && !sub.Failed() {
		coupons, err := bigcommerce.DecodeCoupons(sub.Data)
		if err != nil {
			logger.Warn("decoding coupons failed", zap.Error(err))
			result.SubResources["coupons"] = domain.SubResource{Err: err.Error()}
		} else {
			result.Order.Coupons = coupons
		}
	}

	if sub, ok := result.SubResources["fees"]; ok && !sub.Failed() {
		fees, err := bigcommerce.DecodeFees(sub.Data)
		if err != nil {
			logger.Warn("decoding fees failed", zap.Error(err))
			result.SubResources["fees"] = domain.SubResource{Err: err.Error()}
		} else {
			result.Order.Fees = fees
		}
	}
}
