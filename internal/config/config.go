// Package config defines the data structures related to configuration and
// includes functions for loading the config and turning it into tax tables.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/tax-impact/internal/tax"
	"github.com/iwvelando/tax-impact/pkg/constants"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Configuration holds all configuration for tax-impact.
type Configuration struct {
	Currency string         `yaml:"currency,omitempty"`
	Schedule ScheduleConfig `yaml:"schedule,omitempty"`
	Sectors  []SectorConfig `yaml:"sectors,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// ScheduleConfig describes the bracket table. Omitted brackets select the
// reference schedule; omitted relief selects the reference relief.
type ScheduleConfig struct {
	Relief   *float64        `yaml:"relief,omitempty"`
	Brackets []BracketConfig `yaml:"brackets,omitempty"`
}

// BracketConfig is one tier. A missing Upper marks the top, unbounded tier.
type BracketConfig struct {
	Lower int64   `yaml:"lower"`
	Upper *int64  `yaml:"upper,omitempty"`
	Rate  float64 `yaml:"rate"`
}

// SectorConfig is one budget sector weight, in percent.
type SectorConfig struct {
	Name       string  `yaml:"name"`
	Percentage float64 `yaml:"percentage"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults make the keys known to viper so environment overrides reach
	// Unmarshal even when the file omits them.
	v.SetDefault("currency", constants.ReferenceCurrency)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", "")
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. An empty path loads defaults and environment
// overrides only.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file, %s", err)
		}
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	configuration.Currency = strings.TrimSpace(configuration.Currency)
	if configuration.Currency == "" {
		configuration.Currency = constants.ReferenceCurrency
	}
	return &configuration, nil
}

// TaxSchedule converts the schedule section into a tax.Schedule without
// validating it.
func (c *Configuration) TaxSchedule() tax.Schedule {
	schedule := tax.ReferenceSchedule()
	if len(c.Schedule.Brackets) > 0 {
		schedule.Brackets = make([]tax.Bracket, 0, len(c.Schedule.Brackets))
		for _, b := range c.Schedule.Brackets {
			upper := tax.Unbounded
			if b.Upper != nil {
				upper = *b.Upper
			}
			schedule.Brackets = append(schedule.Brackets, tax.Bracket{
				Lower: b.Lower,
				Upper: upper,
				Rate:  b.Rate,
			})
		}
	}
	if c.Schedule.Relief != nil {
		schedule.Relief = *c.Schedule.Relief
	}
	return schedule
}

// TaxSectors converts the sectors section into allocations, falling back to
// the reference table when none are configured.
func (c *Configuration) TaxSectors() []tax.SectorAllocation {
	if len(c.Sectors) == 0 {
		return tax.ReferenceSectors()
	}
	sectors := make([]tax.SectorAllocation, 0, len(c.Sectors))
	for _, s := range c.Sectors {
		sectors = append(sectors, tax.SectorAllocation{
			Sector:     strings.TrimSpace(s.Name),
			Percentage: s.Percentage,
		})
	}
	return sectors
}

// Build converts and validates the configured tables.
func (c *Configuration) Build() (tax.Schedule, []tax.SectorAllocation, error) {
	schedule := c.TaxSchedule()
	if err := schedule.Validate(); err != nil {
		return tax.Schedule{}, nil, fmt.Errorf("invalid schedule configuration: %w", err)
	}
	sectors := c.TaxSectors()
	if err := tax.ValidateSectors(sectors); err != nil {
		return tax.Schedule{}, nil, fmt.Errorf("invalid sectors configuration: %w", err)
	}
	return schedule, sectors, nil
}

// NewCalculator builds a tax.Calculator from the configured tables.
func (c *Configuration) NewCalculator(logger *zap.Logger) (*tax.Calculator, error) {
	schedule, sectors, err := c.Build()
	if err != nil {
		return nil, err
	}
	return tax.NewCalculator(logger, schedule, sectors)
}

// ValidateConfiguration returns warnings about settings that are legal but
// probably unintended. Hard defects are reported by Build.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if len(c.Schedule.Brackets) > 0 && c.Schedule.Relief == nil {
		warnings = append(warnings, fmt.Sprintf("Custom brackets configured without relief - using reference relief of %.0f",
			constants.ReferencePersonalRelief))
	}
	if c.Schedule.Relief != nil && *c.Schedule.Relief == 0 {
		warnings = append(warnings, "Personal relief is zero - every taxable income produces a liability")
	}

	for i, b := range c.Schedule.Brackets {
		if b.Upper == nil && i != len(c.Schedule.Brackets)-1 {
			warnings = append(warnings, fmt.Sprintf("Bracket %d has no upper bound but is not the last bracket", i))
		}
	}

	for _, s := range c.Sectors {
		if s.Percentage == 0 && strings.TrimSpace(s.Name) != "" {
			warnings = append(warnings, fmt.Sprintf("Sector '%s' has a 0%% allocation and will always show 0", s.Name))
		}
	}

	return warnings
}
