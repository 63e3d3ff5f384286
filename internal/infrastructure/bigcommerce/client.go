package bigcommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"orderenricher/internal/config"
	"orderenricher/internal/domain"
	"orderenricher/internal/infrastructure/metrics"
	"orderenricher/internal/infrastructure/restclient"
)

const (
	ResourceOrder    = "order"
	ResourceProducts = "products"
	ResourceCustomer = "customer"
)

// Client reads orders and customers from the store's v2 REST API.
type Client struct {
	rest *restclient.Client
}

func NewClient(cfg config.StoreConfig, m *metrics.Metrics, logger *zap.Logger) *Client {
	headers := http.Header{}
	headers.Set("X-Auth-Token", cfg.AccessToken)
	headers.Set("Accept", "application/json")
	headers.Set("Content-Type", "application/json")

	baseURL := fmt.Sprintf("%s/stores/%s", cfg.APIURL, url.PathEscape(cfg.StoreHash))
	return &Client{
		rest: restclient.New(baseURL, headers, cfg.HTTP, m, logger.Named("store-api")),
	}
}

func orderPath(orderID domain.OrderID) string {
	return "/v2/orders/" + url.PathEscape(orderID.String())
}

func (c *Client) GetOrder(ctx context.Context, orderID domain.OrderID) (*domain.Order, error) {
	var payload orderPayload
	if err := c.rest.GetJSON(ctx, ResourceOrder, orderPath(orderID), nil, &payload); err != nil {
		return nil, err
	}
	order, err := payload.toDomain()
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) GetOrderProducts(ctx context.Context, orderID domain.OrderID) ([]domain.LineItem, error) {
	var payload []lineItemPayload
	if err := c.rest.GetJSON(ctx, ResourceProducts, orderPath(orderID)+"/products", nil, &payload); err != nil {
		return nil, err
	}

	items := make([]domain.LineItem, 0, len(payload))
	for _, p := range payload {
		items = append(items, p.toDomain())
	}
	return items, nil
}

func (c *Client) GetCustomer(ctx context.Context, customerID int64) (*domain.Customer, error) {
	var payload customerPayload
	path := "/v2/customers/" + strconv.FormatInt(customerID, 10)
	if err := c.rest.GetJSON(ctx, ResourceCustomer, path, nil, &payload); err != nil {
		return nil, err
	}
	customer, err := payload.toDomain()
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetOrderSubResource returns the raw payload of /v2/orders/{id}/{name}.
// An empty response is reported as an empty JSON list.
func (c *Client) GetOrderSubResource(ctx context.Context, orderID domain.OrderID, name string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.rest.GetJSON(ctx, name, orderPath(orderID)+"/"+url.PathEscape(name), nil, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("[]")
	}
	return raw, nil
}
