package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/iwvelando/tax-impact/internal/tax"
	"github.com/iwvelando/tax-impact/pkg/constants"
	"go.uber.org/zap"
)

const customConfig = `currency: USD
schedule:
  relief: 100
  brackets:
    - lower: 0
      upper: 1000
      rate: 0.1
    - lower: 1001
      rate: 0.2
sectors:
  - name: Schools
    percentage: 60
  - name: Roads
    percentage: 40
logging:
  level: debug
  format: console
output:
  format: csv
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Defaults only",
			configPath: "",
		},
		{
			name:       "Custom config file",
			configPath: writeConfig(t, customConfig),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestDefaultsBuildReferenceTables(t *testing.T) {
	conf, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Currency != "KES" {
		t.Errorf("Currency = %q, expected KES", conf.Currency)
	}

	schedule, sectors, err := conf.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if diff := cmp.Diff(tax.ReferenceSchedule(), schedule); diff != "" {
		t.Errorf("schedule mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(tax.ReferenceSectors(), sectors); diff != "" {
		t.Errorf("sectors mismatch (-want +got):\n%s", diff)
	}
	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("expected no warnings for defaults, got %v", warnings)
	}
}

func TestCustomConfiguration(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader(customConfig))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	if conf.Currency != "USD" {
		t.Errorf("Currency = %q, expected USD", conf.Currency)
	}
	if conf.Logging.Level != "debug" || conf.Logging.Format != "console" {
		t.Errorf("unexpected logging config %+v", conf.Logging)
	}
	if conf.Output.Format != "csv" {
		t.Errorf("Output.Format = %q, expected csv", conf.Output.Format)
	}

	schedule, sectors, err := conf.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	wantSchedule := tax.Schedule{
		Brackets: []tax.Bracket{
			{Lower: 0, Upper: 1000, Rate: 0.1},
			{Lower: 1001, Upper: tax.Unbounded, Rate: 0.2},
		},
		Relief: 100,
	}
	if diff := cmp.Diff(wantSchedule, schedule); diff != "" {
		t.Errorf("schedule mismatch (-want +got):\n%s", diff)
	}
	wantSectors := []tax.SectorAllocation{
		{Sector: "Schools", Percentage: 60},
		{Sector: "Roads", Percentage: 40},
	}
	if diff := cmp.Diff(wantSectors, sectors); diff != "" {
		t.Errorf("sectors mismatch (-want +got):\n%s", diff)
	}

	calc, err := conf.NewCalculator(zap.NewNop())
	if err != nil {
		t.Fatalf("NewCalculator() error = %v", err)
	}
	// 1001 * 0.1 + 999 * 0.2 - 100 = 199.9
	result := calc.Calculate(2000)
	if result.MonthlyTax != 200 || result.YearlyTax != 2400 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestReliefOverrideKeepsReferenceBrackets(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader("schedule:\n  relief: 0\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	schedule := conf.TaxSchedule()
	if schedule.Relief != 0 {
		t.Errorf("Relief = %v, expected 0", schedule.Relief)
	}
	if len(schedule.Brackets) != len(tax.ReferenceSchedule().Brackets) {
		t.Errorf("expected reference brackets, got %d", len(schedule.Brackets))
	}
	warnings := conf.ValidateConfiguration()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "relief is zero") {
		t.Errorf("unexpected warnings %v", warnings)
	}
}

func TestBuildRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		err      error
	}{
		{
			name: "Gap between brackets",
			contents: `schedule:
  brackets:
    - lower: 0
      upper: 100
      rate: 0.1
    - lower: 200
      rate: 0.2
`,
			err: tax.ErrBracketGap,
		},
		{
			name: "Sectors do not sum to 100",
			contents: `sectors:
  - name: Health
    percentage: 30
`,
			err: tax.ErrSectorSum,
		},
		{
			name: "Bounded top bracket",
			contents: `schedule:
  brackets:
    - lower: 0
      upper: 100
      rate: 0.1
`,
			err: tax.ErrFinalBracketBounded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf, err := LoadConfigurationFromReader(strings.NewReader(tt.contents))
			if err != nil {
				t.Fatalf("LoadConfigurationFromReader() error = %v", err)
			}
			if _, _, err := conf.Build(); !errors.Is(err, tt.err) {
				t.Errorf("Build() error = %v, expected %v", err, tt.err)
			}
		})
	}
}

func TestValidateConfigurationWarnings(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader(`schedule:
  brackets:
    - lower: 0
      rate: 0.1
    - lower: 1
      rate: 0.2
sectors:
  - name: Health
    percentage: 100
  - name: Culture
    percentage: 0
`))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	warnings := conf.ValidateConfiguration()
	expected := []string{
		"Custom brackets configured without relief - using reference relief of 2400",
		"Bracket 0 has no upper bound but is not the last bracket",
		"Sector 'Culture' has a 0% allocation and will always show 0",
	}
	if diff := cmp.Diff(expected, warnings); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("TAXIMPACT_CURRENCY", "UGX")
	t.Setenv("TAXIMPACT_LOGGING_LEVEL", "warn")

	conf, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Currency != "UGX" {
		t.Errorf("Currency = %q, expected UGX", conf.Currency)
	}
	if conf.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, expected warn", conf.Logging.Level)
	}
}

func TestExampleConfigurationMatchesReference(t *testing.T) {
	conf, err := LoadConfiguration(filepath.Join("..", "..", constants.ExampleConfigFile))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	schedule, sectors, err := conf.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if diff := cmp.Diff(tax.ReferenceSchedule(), schedule); diff != "" {
		t.Errorf("example schedule differs from reference (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(tax.ReferenceSectors(), sectors); diff != "" {
		t.Errorf("example sectors differ from reference (-want +got):\n%s", diff)
	}
	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}
