package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	apperrors "orderenricher/internal/errors"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Store    StoreConfig    `yaml:"store"`
	B2B      B2BConfig      `yaml:"b2b"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

type DatabaseConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type WebhookConfig struct {
	SecretHeader string `yaml:"secretHeader"`
	Secret       string `yaml:"secret"`
}

// HTTPClientConfig bounds every outbound call made to one API.
type HTTPClientConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	RateLimit  float64       `yaml:"rateLimit"`
	RateBurst  int           `yaml:"rateBurst"`
	MaxRespMiB int           `yaml:"maxResponseMiB"`
}

type StoreConfig struct {
	APIURL       string           `yaml:"apiUrl"`
	StoreHash    string           `yaml:"storeHash"`
	AccessToken  string           `yaml:"accessToken"`
	SubResources []string         `yaml:"subResources"`
	HTTP         HTTPClientConfig `yaml:"http"`
}

const (
	CompanyLookupClient = "client"
	CompanyLookupServer = "server"

	ExtraFieldsFromList   = "list"
	ExtraFieldsFromDetail = "detail"
	ExtraFieldsAuto       = "auto"

	B2BAuthHeader = "header"
	B2BAuthBearer = "bearer"
)

type B2BConfig struct {
	APIURL            string           `yaml:"apiUrl"`
	AccessToken       string           `yaml:"accessToken"`
	ClientID          string           `yaml:"clientId"`
	AuthScheme        string           `yaml:"authScheme"`
	CompanyLookup     string           `yaml:"companyLookup"`
	ExtraFieldsSource string           `yaml:"extraFieldsSource"`
	ExtraFieldName    string           `yaml:"extraFieldName"`
	PageSize          int              `yaml:"pageSize"`
	MaxPages          int              `yaml:"maxPages"`
	HTTP              HTTPClientConfig `yaml:"http"`
}

// SupportedSubResources lists the optional order sub-resources that can be
// fetched alongside the order.
var SupportedSubResources = map[string]bool{
	"coupons":            true,
	"fees":               true,
	"shipping_addresses": true,
	"consignments":       true,
	"shipments":          true,
}

// Default returns the settings used for every key absent from the config
// file and the environment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            3306,
			User:            "enricher",
			Name:            "order_enricher",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Log: LogConfig{Level: "info"},
		Store: StoreConfig{
			APIURL: "https://api.bigcommerce.com",
			HTTP:   HTTPClientConfig{Timeout: 10 * time.Second, MaxRespMiB: 10},
		},
		B2B: B2BConfig{
			APIURL:            "https://api-b2b.bigcommerce.com",
			AuthScheme:        B2BAuthHeader,
			CompanyLookup:     CompanyLookupClient,
			ExtraFieldsSource: ExtraFieldsAuto,
			ExtraFieldName:    "E8 Company ID",
			PageSize:          250,
			MaxPages:          20,
			HTTP:              HTTPClientConfig{Timeout: 10 * time.Second, MaxRespMiB: 10},
		},
	}
}

// ApplyEnv overrides cfg with any matching environment variable.
func ApplyEnv(cfg *Config) error {
	v := viper.New()
	v.AutomaticEnv()

	setString := func(key string, dst *string) {
		if s := v.GetString(key); s != "" {
			*dst = s
		}
	}
	setInt := func(key string, dst *int) {
		if v.GetString(key) != "" {
			*dst = v.GetInt(key)
		}
	}

	setInt("SERVER_PORT", &cfg.Server.Port)
	setString("LOG_LEVEL", &cfg.Log.Level)

	if v.GetString("DB_ENABLED") != "" {
		cfg.Database.Enabled = v.GetBool("DB_ENABLED")
	}
	setString("DB_HOST", &cfg.Database.Host)
	setInt("DB_PORT", &cfg.Database.Port)
	setString("DB_USER", &cfg.Database.User)
	setString("DB_PASSWORD", &cfg.Database.Password)
	setString("DB_NAME", &cfg.Database.Name)
	setInt("DB_MAX_OPEN_CONNS", &cfg.Database.MaxOpenConns)
	setInt("DB_MAX_IDLE_CONNS", &cfg.Database.MaxIdleConns)
	if s := v.GetString("DB_CONN_MAX_LIFETIME"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parsing DB_CONN_MAX_LIFETIME: %w", err)
		}
		cfg.Database.ConnMaxLifetime = d
	}

	setString("WEBHOOK_SECRET_HEADER", &cfg.Webhook.SecretHeader)
	setString("WEBHOOK_SECRET", &cfg.Webhook.Secret)

	setString("BC_API_URL", &cfg.Store.APIURL)
	setString("BC_STORE_HASH", &cfg.Store.StoreHash)
	setString("BC_ACCESS_TOKEN", &cfg.Store.AccessToken)
	if s := v.GetString("BC_SUB_RESOURCES"); s != "" {
		cfg.Store.SubResources = splitList(s)
	}

	setString("BC_B2B_API_URL", &cfg.B2B.APIURL)
	setString("BC_B2B_ACCESS_TOKEN", &cfg.B2B.AccessToken)
	setString("BC_B2B_CLIENT_ID", &cfg.B2B.ClientID)
	setString("BC_B2B_AUTH_SCHEME", &cfg.B2B.AuthScheme)
	setString("BC_B2B_COMPANY_LOOKUP", &cfg.B2B.CompanyLookup)
	setString("BC_B2B_EXTRA_FIELDS_SOURCE", &cfg.B2B.ExtraFieldsSource)
	setString("BC_B2B_EXTRA_FIELD_NAME", &cfg.B2B.ExtraFieldName)

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the settings every webhook request depends on. It returns
// the first problem found as a *errors.ConfigurationError.
func (c *Config) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"store.storeHash", c.Store.StoreHash},
		{"store.accessToken", c.Store.AccessToken},
		{"store.apiUrl", c.Store.APIURL},
		{"b2b.accessToken", c.B2B.AccessToken},
		{"b2b.apiUrl", c.B2B.APIURL},
		{"b2b.extraFieldName", c.B2B.ExtraFieldName},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperrors.NewConfigurationError(r.field, "is required")
		}
	}

	switch c.B2B.AuthScheme {
	case B2BAuthHeader, B2BAuthBearer:
	default:
		return apperrors.NewConfigurationError("b2b.authScheme", fmt.Sprintf("unsupported value %q", c.B2B.AuthScheme))
	}

	switch c.B2B.CompanyLookup {
	case CompanyLookupClient, CompanyLookupServer:
	default:
		return apperrors.NewConfigurationError("b2b.companyLookup", fmt.Sprintf("unsupported value %q", c.B2B.CompanyLookup))
	}

	switch c.B2B.ExtraFieldsSource {
	case ExtraFieldsFromList, ExtraFieldsFromDetail, ExtraFieldsAuto:
	default:
		return apperrors.NewConfigurationError("b2b.extraFieldsSource", fmt.Sprintf("unsupported value %q", c.B2B.ExtraFieldsSource))
	}

	if c.B2B.PageSize <= 0 {
		return apperrors.NewConfigurationError("b2b.pageSize", "must be positive")
	}
	if c.B2B.MaxPages <= 0 {
		return apperrors.NewConfigurationError("b2b.maxPages", "must be positive")
	}

	for _, name := range c.Store.SubResources {
		if !SupportedSubResources[name] {
			return apperrors.NewConfigurationError("store.subResources", fmt.Sprintf("unsupported sub-resource %q", name))
		}
	}

	if c.Webhook.Secret != "" && c.Webhook.SecretHeader == "" {
		return apperrors.NewConfigurationError("webhook.secretHeader", "is required when webhook.secret is set")
	}

	return nil
}
