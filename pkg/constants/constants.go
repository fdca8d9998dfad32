// Package constants provides shared constants for the tax-impact application.
package constants

// Tax constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// ReferencePersonalRelief is the monthly personal relief deducted from
	// computed tax before it is floored at zero.
	ReferencePersonalRelief = 2400.0

	// ReferenceCurrency is the display currency code of the reference schedule.
	ReferenceCurrency = "KES"

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment overrides of configuration keys
	EnvPrefix = "TAXIMPACT"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// CorrelationIDHeader carries the request correlation id
	CorrelationIDHeader = "X-Correlation-ID"
)

// Validation constants
const (
	// SectorSumTolerance is how far the sector percentages may drift from 100
	SectorSumTolerance = 1e-6
)
