package tax

import (
	"math"

	"github.com/iwvelando/tax-impact/pkg/constants"
	"github.com/iwvelando/tax-impact/pkg/income"
	"github.com/iwvelando/tax-impact/pkg/mathutil"
)

// Band is the share of income that fell into one bracket and the tax it
// attracted. Upper is nil for the open-ended top bracket.
type Band struct {
	Lower   int64   `json:"lower"`
	Upper   *int64  `json:"upper"`
	Rate    float64 `json:"rate"`
	Taxable float64 `json:"taxable"`
	Tax     float64 `json:"tax"`
}

// SectorAmount is one line of the sector breakdown.
type SectorAmount struct {
	Sector string `json:"sector"`
	Amount int64  `json:"amount"`
}

// Result is the outcome of a single computation.
type Result struct {
	Income          float64        `json:"income"`
	GrossTax        float64        `json:"grossTax"`
	Relief          float64        `json:"relief"`
	MonthlyTax      int64          `json:"monthlyTax"`
	YearlyTax       int64          `json:"yearlyTax"`
	Bands           []Band         `json:"bands"`
	SectorBreakdown []SectorAmount `json:"sectorBreakdown"`
}

// BreakdownTotal is the sum of the independently rounded sector amounts.
func (r Result) BreakdownTotal() int64 {
	var total int64
	for _, line := range r.SectorBreakdown {
		total += line.Amount
	}
	return total
}

// RoundingResidue is BreakdownTotal minus YearlyTax. Sector amounts are
// rounded one by one and are not reconciled, so this may be non-zero.
func (r Result) RoundingResidue() int64 {
	return r.BreakdownTotal() - r.YearlyTax
}

// bands walks the brackets in order, letting each consume up to its width
// of the remaining income. The unbounded bracket absorbs whatever is left.
func bands(schedule Schedule, grossMonthlyIncome float64) []Band {
	remaining := income.Normalize(grossMonthlyIncome)
	out := make([]Band, 0, len(schedule.Brackets))
	for _, b := range schedule.Brackets {
		if remaining <= 0 {
			break
		}
		taxable := remaining
		if !b.IsUnbounded() {
			taxable = mathutil.Min(remaining, float64(b.Width()))
		}
		var upper *int64
		if !b.IsUnbounded() {
			upper = &b.Upper
		}
		out = append(out, Band{
			Lower:   b.Lower,
			Upper:   upper,
			Rate:    b.Rate,
			Taxable: taxable,
			Tax:     taxable * b.Rate,
		})
		remaining -= taxable
	}
	return out
}

// GrossTax returns the unrounded bracket tax before personal relief.
func GrossTax(schedule Schedule, grossMonthlyIncome float64) float64 {
	var tax float64
	for _, band := range bands(schedule, grossMonthlyIncome) {
		tax += band.Tax
	}
	return tax
}

// ComputeMonthlyTax returns the monthly liability: bracket tax less the
// schedule's relief, floored at zero and rounded to a whole unit. Negative,
// NaN or infinite income is treated as zero.
func ComputeMonthlyTax(schedule Schedule, grossMonthlyIncome float64) int64 {
	return applyRelief(schedule, GrossTax(schedule, grossMonthlyIncome))
}

func applyRelief(schedule Schedule, grossTax float64) int64 {
	return mathutil.RoundUnit(mathutil.Max(0, grossTax-schedule.Relief))
}

// maxMonthlyTax is the largest monthly liability that scales to a year
// without overflowing int64.
const maxMonthlyTax = math.MaxInt64 / constants.MonthsPerYear

// ComputeYearlyProjection scales a monthly liability to a year. Liabilities
// too large to scale are clamped first.
func ComputeYearlyProjection(monthlyTax int64) int64 {
	if monthlyTax > maxMonthlyTax {
		monthlyTax = maxMonthlyTax
	}
	return monthlyTax * constants.MonthsPerYear
}

// ComputeSectorBreakdown splits yearlyTax across sectors in their given
// order. Each amount is rounded on its own, so the lines need not add up to
// yearlyTax exactly.
func ComputeSectorBreakdown(yearlyTax int64, sectors []SectorAllocation) []SectorAmount {
	breakdown := make([]SectorAmount, 0, len(sectors))
	for _, sector := range sectors {
		breakdown = append(breakdown, SectorAmount{
			Sector: sector.Sector,
			Amount: mathutil.RoundUnit(mathutil.ApplyPercentage(float64(yearlyTax), sector.Percentage)),
		})
	}
	return breakdown
}

// Calculate runs the full computation for one gross monthly income.
func Calculate(schedule Schedule, sectors []SectorAllocation, grossMonthlyIncome float64) Result {
	normalized := income.Normalize(grossMonthlyIncome)
	detail := bands(schedule, normalized)

	var grossTax float64
	for _, band := range detail {
		grossTax += band.Tax
	}

	monthly := applyRelief(schedule, grossTax)
	yearly := ComputeYearlyProjection(monthly)
	return Result{
		Income:          normalized,
		GrossTax:        grossTax,
		Relief:          schedule.Relief,
		MonthlyTax:      monthly,
		YearlyTax:       yearly,
		Bands:           detail,
		SectorBreakdown: ComputeSectorBreakdown(yearly, sectors),
	}
}

// CalculateString parses a raw income string and runs Calculate. Input that
// does not parse is computed as zero income.
func CalculateString(schedule Schedule, sectors []SectorAllocation, raw string) Result {
	return Calculate(schedule, sectors, income.Parse(raw))
}
