package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"orderenricher/internal/config"
	"orderenricher/internal/domain"
	"orderenricher/internal/infrastructure/metrics"
)

type CompanyDirectory interface {
	ListCompanies(ctx context.Context, name string) ([]domain.Company, error)
	GetCompany(ctx context.Context, companyID int64) (*domain.Company, error)
}

type ResolverOptions struct {
	ExtraFieldName    string
	ServerSideFilter  bool
	ExtraFieldsSource string
}

func OptionsFromConfig(cfg config.B2BConfig) ResolverOptions {
	return ResolverOptions{
		ExtraFieldName:    cfg.ExtraFieldName,
		ServerSideFilter:  cfg.CompanyLookup == config.CompanyLookupServer,
		ExtraFieldsSource: cfg.ExtraFieldsSource,
	}
}

// CompanyResolver maps a customer's free-text company to a B2B company and
// reads the configured extra field from it.
type CompanyResolver struct {
	directory CompanyDirectory
	opts      ResolverOptions
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewCompanyResolver(directory CompanyDirectory, opts ResolverOptions, m *metrics.Metrics, logger *zap.Logger) *CompanyResolver {
	if opts.ExtraFieldName == "" {
		opts.ExtraFieldName = domain.DefaultExtraFieldName
	}
	if opts.ExtraFieldsSource == "" {
		opts.ExtraFieldsSource = config.ExtraFieldsAuto
	}
	return &CompanyResolver{
		directory: directory,
		opts:      opts,
		metrics:   m,
		logger:    logger,
	}
}

// Resolve returns an empty resolution when the customer has no company or
// no company matches; only failed API calls are errors.
func (r *CompanyResolver) Resolve(ctx context.Context, customerCompany string) (domain.CompanyResolution, error) {
	if strings.TrimSpace(customerCompany) == "" {
		r.metrics.CompanyMatches.WithLabelValues("no_company").Inc()
		return domain.CompanyResolution{}, nil
	}

	filter := ""
	if r.opts.ServerSideFilter {
		filter = customerCompany
	}

	companies, err := r.directory.ListCompanies(ctx, filter)
	if err != nil {
		return domain.CompanyResolution{}, err
	}

	matched, ok := domain.FindCompanyByName(companies, customerCompany)
	if !ok {
		r.metrics.CompanyMatches.WithLabelValues("unmatched").Inc()
		r.logger.Info("no company matches customer company",
			zap.String("customerCompany", customerCompany),
			zap.Int("candidates", len(companies)),
		)
		return domain.CompanyResolution{}, nil
	}

	id := matched.ID
	name := matched.Name
	resolution := domain.CompanyResolution{CompanyID: &id, CompanyName: &name}

	value, found, err := r.extraFieldValue(ctx, matched)
	if err != nil {
		return domain.CompanyResolution{}, err
	}
	if found {
		resolution.ExtraFieldValue = &value
		r.metrics.CompanyMatches.WithLabelValues("matched").Inc()
	} else {
		r.metrics.CompanyMatches.WithLabelValues("matched_without_field").Inc()
		r.logger.Info("matched company has no extra field",
			zap.Int64("companyId", id),
			zap.String("field", r.opts.ExtraFieldName),
		)
	}

	return resolution, nil
}

func (r *CompanyResolver) extraFieldValue(ctx context.Context, company *domain.Company) (string, bool, error) {
	if r.opts.ExtraFieldsSource != config.ExtraFieldsFromDetail {
		if value, ok := company.ExtraFieldValue(r.opts.ExtraFieldName); ok {
			return value, true, nil
		}
		if r.opts.ExtraFieldsSource == config.ExtraFieldsFromList {
			return "", false, nil
		}
	}

	detail, err := r.directory.GetCompany(ctx, company.ID)
	if err != nil {
		return "", false, err
	}
	value, ok := detail.ExtraFieldValue(r.opts.ExtraFieldName)
	return value, ok, nil
}
