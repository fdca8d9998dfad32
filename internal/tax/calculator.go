package tax

import (
	"fmt"

	"github.com/iwvelando/tax-impact/pkg/income"
	"go.uber.org/zap"
)

// Calculator binds a validated schedule and sector table to a logger. The
// tables are copied on construction and never modified, so one Calculator
// can serve any number of goroutines.
type Calculator struct {
	logger   *zap.Logger
	schedule Schedule
	sectors  []SectorAllocation
}

// NewCalculator validates the tables and returns a Calculator over copies of
// them.
func NewCalculator(logger *zap.Logger, schedule Schedule, sectors []SectorAllocation) (*Calculator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := schedule.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tax schedule: %w", err)
	}
	if err := ValidateSectors(sectors); err != nil {
		return nil, fmt.Errorf("invalid sector allocations: %w", err)
	}

	return &Calculator{
		logger:   logger,
		schedule: schedule.Clone(),
		sectors:  append([]SectorAllocation(nil), sectors...),
	}, nil
}

// Schedule returns a copy of the configured schedule.
func (c *Calculator) Schedule() Schedule {
	return c.schedule.Clone()
}

// Sectors returns a copy of the configured sector allocations.
func (c *Calculator) Sectors() []SectorAllocation {
	return append([]SectorAllocation(nil), c.sectors...)
}

// Calculate computes the result for a numeric gross monthly income.
func (c *Calculator) Calculate(grossMonthlyIncome float64) Result {
	if normalized := income.Normalize(grossMonthlyIncome); normalized != grossMonthlyIncome {
		c.logger.Debug("income normalized to zero",
			zap.String("op", "tax.Calculate"),
			zap.Float64("input", grossMonthlyIncome),
		)
	}

	result := Calculate(c.schedule, c.sectors, grossMonthlyIncome)
	c.logger.Debug("tax computed",
		zap.String("op", "tax.Calculate"),
		zap.Float64("income", result.Income),
		zap.Int64("monthlyTax", result.MonthlyTax),
		zap.Int64("yearlyTax", result.YearlyTax),
		zap.Int64("roundingResidue", result.RoundingResidue()),
	)
	return result
}

// CalculateString computes the result for raw user input. Unparseable input
// is logged and computed as zero income.
func (c *Calculator) CalculateString(raw string) Result {
	amount, err := income.ParseStrict(raw)
	if err != nil {
		c.logger.Debug("income input rejected, using zero",
			zap.String("op", "tax.CalculateString"),
			zap.String("input", raw),
			zap.Error(err),
		)
	}
	return c.Calculate(amount)
}
