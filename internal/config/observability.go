package config

// OtelConfig holds OpenTelemetry trace export configuration.
//
// Tracing is off by default; when enabled, spans are exported over OTLP/HTTP
// to the configured collector endpoint. See internal/observability for setup.
type OtelConfig struct {
	// Enabled turns trace export on (default: false)
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// Endpoint is the OTLP/HTTP collector endpoint (default: localhost:4318)
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	// Environment is the deployment environment tag (default: dev)
	Environment string `mapstructure:"environment" json:"environment"`
	// ServiceName is the reported service name (default: fathom)
	ServiceName string `mapstructure:"service_name" json:"service_name"`
}
