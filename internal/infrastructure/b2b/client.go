package b2b

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"orderenricher/internal/config"
	"orderenricher/internal/domain"
	apperrors "orderenricher/internal/errors"
	"orderenricher/internal/infrastructure/metrics"
	"orderenricher/internal/infrastructure/restclient"
)

const (
	ResourceCompanies = "companies"
	ResourceCompany   = "company"

	companiesPath = "/api/v3/io/companies"
)

// Client reads companies from the B2B REST API.
type Client struct {
	rest     *restclient.Client
	pageSize int
	maxPages int
	logger   *zap.Logger
}

func NewClient(cfg config.B2BConfig, m *metrics.Metrics, logger *zap.Logger) *Client {
	headers := http.Header{}
	if cfg.AuthScheme == config.B2BAuthBearer {
		headers.Set("Authorization", "Bearer "+cfg.AccessToken)
	} else {
		headers.Set("X-Auth-Token", cfg.AccessToken)
	}
	if cfg.ClientID != "" {
		headers.Set("X-Auth-Client", cfg.ClientID)
	}
	headers.Set("Accept", "application/json")
	headers.Set("Content-Type", "application/json")

	logger = logger.Named("b2b-api")
	return &Client{
		rest:     restclient.New(cfg.APIURL, headers, cfg.HTTP, m, logger),
		pageSize: cfg.PageSize,
		maxPages: cfg.MaxPages,
		logger:   logger,
	}
}

// ListCompanies pages through the company list. A non-empty name is passed
// to the API as a server-side filter; callers must still match locally.
func (c *Client) ListCompanies(ctx context.Context, name string) ([]domain.Company, error) {
	var companies []domain.Company

	for page := 0; page < c.maxPages; page++ {
		offset := page * c.pageSize
		query := url.Values{}
		query.Set("limit", strconv.Itoa(c.pageSize))
		query.Set("offset", strconv.Itoa(offset))
		if name != "" {
			query.Set("name", name)
		}

		var resp listResponse
		if err := c.rest.GetJSON(ctx, ResourceCompanies, companiesPath, query, &resp); err != nil {
			return nil, err
		}

		for _, p := range resp.Data {
			company, err := p.toDomain()
			if err != nil {
				return nil, apperrors.NewMalformedResponseError(ResourceCompanies, err)
			}
			companies = append(companies, company)
		}

		if !hasMore(resp, offset, c.pageSize) {
			return companies, nil
		}
	}

	c.logger.Warn("company list truncated",
		zap.Int("maxPages", c.maxPages),
		zap.Int("fetched", len(companies)),
	)
	return companies, nil
}

func hasMore(resp listResponse, offset, pageSize int) bool {
	if len(resp.Data) < pageSize {
		return false
	}
	if p := resp.Meta.Pagination; p != nil && p.TotalCount > 0 {
		return offset+len(resp.Data) < p.TotalCount
	}
	return true
}

func (c *Client) GetCompany(ctx context.Context, companyID int64) (*domain.Company, error) {
	var resp detailResponse
	path := companiesPath + "/" + strconv.FormatInt(companyID, 10)
	if err := c.rest.GetJSON(ctx, ResourceCompany, path, nil, &resp); err != nil {
		return nil, err
	}

	company, err := resp.Data.toDomain()
	if err != nil {
		return nil, apperrors.NewMalformedResponseError(ResourceCompany, err)
	}
	return &company, nil
}
