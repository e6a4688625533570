package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tournevent/mondialrelay/pkg/mondialrelay"
	"github.com/tournevent/mondialrelay/pkg/mondialrelay/rest"
	"github.com/tournevent/mondialrelay/pkg/mondialrelay/soap"
)

// Config holds all configuration for the CLI and the carrier clients.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Mondial Relay account
	Enseigne   string `envconfig:"MONDIALRELAY_ENSEIGNE" default:"BDTEST13"`
	PrivateKey string `envconfig:"MONDIALRELAY_PRIVATE_KEY" default:"PrivateK"`
	BrandID    string `envconfig:"MONDIALRELAY_BRAND_ID" default:"11"`
	APIURL     string `envconfig:"MONDIALRELAY_API_URL" default:"https://api.mondialrelay.com/Web_Services.asmx"`
	UseMock    bool   `envconfig:"MONDIALRELAY_USE_MOCK" default:"false"`

	// API V2 (optional, shipment creation only)
	V2BaseURL  string `envconfig:"MONDIALRELAY_V2_BASE_URL" default:"https://connect-api.mondialrelay.com/api"`
	V2Login    string `envconfig:"MONDIALRELAY_V2_LOGIN"`
	V2Password string `envconfig:"MONDIALRELAY_V2_PASSWORD"`
	V2Format   string `envconfig:"MONDIALRELAY_V2_FORMAT" default:"10x15"`
	PreferV2   bool   `envconfig:"MONDIALRELAY_PREFER_V2" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"mondialrelay"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the account settings before any client is built.
func (c *Config) Validate() error {
	if issues := mondialrelay.ValidateEnseigne(c.Enseigne); len(issues) > 0 {
		return fmt.Errorf("invalid enseigne: %s", issues[0])
	}
	if c.PrivateKey == "" {
		return fmt.Errorf("private key is required")
	}
	if c.V2Enabled() && c.V2Password == "" {
		return fmt.Errorf("V2 password is required when a V2 login is set")
	}
	return nil
}

// V2Enabled reports whether the API V2 credentials are configured.
func (c *Config) V2Enabled() bool {
	return c.V2Login != ""
}

// SOAPConfig returns the settings of the SOAP gateway client.
func (c *Config) SOAPConfig() soap.Config {
	return soap.Config{
		Enseigne:   c.Enseigne,
		PrivateKey: c.PrivateKey,
		APIURL:     c.APIURL,
		UseMock:    c.UseMock,
	}
}

// RESTConfig returns the settings of the API V2 client.
func (c *Config) RESTConfig() rest.Config {
	return rest.Config{
		BaseURL:      c.V2BaseURL,
		Login:        c.V2Login,
		Password:     c.V2Password,
		CustomerID:   c.Enseigne,
		OutputFormat: c.V2Format,
		UseMock:      c.UseMock,
	}
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.String("mondialrelay.enseigne", c.Enseigne),
		attribute.Bool("mondialrelay.v2.enabled", c.V2Enabled()),
		attribute.Bool("mondialrelay.mock", c.UseMock),
	}
}
