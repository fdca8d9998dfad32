// Package tax implements the progressive monthly income-tax computation and
// the derived yearly projection and sector breakdown.
//
// Schedules and sector tables are plain values passed into every computation.
// Nothing in this package holds mutable package-level state, so all functions
// are safe for concurrent use.
package tax

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/tax-impact/pkg/constants"
	"github.com/iwvelando/tax-impact/pkg/mathutil"
)

// Unbounded is the Upper sentinel of the open-ended top bracket.
const Unbounded int64 = -1

// Configuration defects reported by Schedule.Validate and ValidateSectors.
var (
	ErrEmptySchedule       = errors.New("schedule has no brackets")
	ErrBracketGap          = errors.New("brackets do not partition the income range")
	ErrBracketBounds       = errors.New("bracket upper bound must be greater than its lower bound")
	ErrBracketRate         = errors.New("bracket rate must be within [0, 1]")
	ErrNotProgressive      = errors.New("bracket rates must be non-decreasing")
	ErrUnboundedNotLast    = errors.New("only the final bracket may be unbounded")
	ErrFinalBracketBounded = errors.New("final bracket must be unbounded")
	ErrNegativeRelief      = errors.New("personal relief must be a non-negative amount")
	ErrNoSectors           = errors.New("no sector allocations configured")
	ErrSectorName          = errors.New("sector names must be non-empty and unique")
	ErrSectorPercentage    = errors.New("sector percentage must be within [0, 100]")
	ErrSectorSum           = errors.New("sector percentages must sum to 100")
)

// Bracket is one marginal tier. Both bounds are inclusive whole currency
// units; Upper is Unbounded for the top tier.
type Bracket struct {
	Lower int64   `json:"lower"`
	Upper int64   `json:"upper"`
	Rate  float64 `json:"rate"`
}

// IsUnbounded reports whether the bracket absorbs all remaining income.
func (b Bracket) IsUnbounded() bool {
	return b.Upper == Unbounded
}

// Width is the amount of income the bracket can absorb. It is only
// meaningful for bounded brackets.
func (b Bracket) Width() int64 {
	return b.Upper - b.Lower + 1
}

// Schedule is an ordered set of brackets plus the fixed monthly personal
// relief subtracted from the bracket tax.
type Schedule struct {
	Brackets []Bracket `json:"brackets"`
	Relief   float64   `json:"relief"`
}

// Clone returns a deep copy so callers never share bracket storage.
func (s Schedule) Clone() Schedule {
	return Schedule{
		Brackets: append([]Bracket(nil), s.Brackets...),
		Relief:   s.Relief,
	}
}

// Validate checks the schedule invariants: brackets start at zero, each
// bracket begins one unit after the previous one ends, rates are in [0, 1]
// and non-decreasing, and only the last bracket is unbounded.
func (s Schedule) Validate() error {
	if len(s.Brackets) == 0 {
		return ErrEmptySchedule
	}
	if math.IsNaN(s.Relief) || math.IsInf(s.Relief, 0) || s.Relief < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeRelief, s.Relief)
	}
	if s.Brackets[0].Lower != 0 {
		return fmt.Errorf("%w: first bracket starts at %d, expected 0", ErrBracketGap, s.Brackets[0].Lower)
	}

	last := len(s.Brackets) - 1
	for i, b := range s.Brackets {
		if math.IsNaN(b.Rate) || b.Rate < 0 || b.Rate > 1 {
			return fmt.Errorf("%w: bracket %d has rate %v", ErrBracketRate, i, b.Rate)
		}
		if i > 0 && b.Rate < s.Brackets[i-1].Rate {
			return fmt.Errorf("%w: bracket %d rate %v is below %v", ErrNotProgressive, i, b.Rate, s.Brackets[i-1].Rate)
		}
		if b.IsUnbounded() {
			if i != last {
				return fmt.Errorf("%w: bracket %d", ErrUnboundedNotLast, i)
			}
			continue
		}
		if i == last {
			return fmt.Errorf("%w: bracket %d ends at %d", ErrFinalBracketBounded, i, b.Upper)
		}
		if b.Upper <= b.Lower {
			return fmt.Errorf("%w: bracket %d spans %d-%d", ErrBracketBounds, i, b.Lower, b.Upper)
		}
		if next := s.Brackets[i+1]; next.Lower != b.Upper+1 {
			return fmt.Errorf("%w: bracket %d ends at %d but bracket %d starts at %d",
				ErrBracketGap, i, b.Upper, i+1, next.Lower)
		}
	}
	return nil
}

// Thresholds returns, for each bounded bracket, the income at which that
// bracket is fully consumed. Income above a threshold is taxed at the next
// bracket's rate.
func (s Schedule) Thresholds() []int64 {
	thresholds := make([]int64, 0, len(s.Brackets))
	var cumulative int64
	for _, b := range s.Brackets {
		if b.IsUnbounded() {
			break
		}
		cumulative += b.Width()
		thresholds = append(thresholds, cumulative)
	}
	return thresholds
}

// SectorAllocation is the share of tax shown against one budget sector.
type SectorAllocation struct {
	Sector     string  `json:"sector"`
	Percentage float64 `json:"percentage"`
}

// ValidateSectors checks that names are present and unique, each percentage
// lies in [0, 100] and the percentages sum to 100.
func ValidateSectors(sectors []SectorAllocation) error {
	if len(sectors) == 0 {
		return ErrNoSectors
	}

	seen := make(map[string]struct{}, len(sectors))
	var sum float64
	for i, sector := range sectors {
		if sector.Sector == "" {
			return fmt.Errorf("%w: sector %d has no name", ErrSectorName, i)
		}
		if _, dup := seen[sector.Sector]; dup {
			return fmt.Errorf("%w: %q appears more than once", ErrSectorName, sector.Sector)
		}
		seen[sector.Sector] = struct{}{}

		if math.IsNaN(sector.Percentage) || sector.Percentage < 0 || sector.Percentage > constants.PercentageMultiplier {
			return fmt.Errorf("%w: %q has %v", ErrSectorPercentage, sector.Sector, sector.Percentage)
		}
		sum += sector.Percentage
	}

	if !mathutil.WithinTolerance(sum, constants.PercentageMultiplier, constants.SectorSumTolerance) {
		return fmt.Errorf("%w: got %v", ErrSectorSum, sum)
	}
	return nil
}

// ReferenceSchedule returns the monthly PAYE schedule used by the dashboard:
// 10% to 24,000, 25% to 32,333, 30% to 500,000, 32.5% to 800,000 and 35%
// above, with 2,400 monthly personal relief.
func ReferenceSchedule() Schedule {
	return Schedule{
		Brackets: []Bracket{
			{Lower: 0, Upper: 24000, Rate: 0.10},
			{Lower: 24001, Upper: 32333, Rate: 0.25},
			{Lower: 32334, Upper: 500000, Rate: 0.30},
			{Lower: 500001, Upper: 800000, Rate: 0.325},
			{Lower: 800001, Upper: Unbounded, Rate: 0.35},
		},
		Relief: constants.ReferencePersonalRelief,
	}
}

// ReferenceSectors returns the illustrative "where your tax goes" weights in
// display order.
func ReferenceSectors() []SectorAllocation {
	return []SectorAllocation{
		{Sector: "Education", Percentage: 25},
		{Sector: "Health", Percentage: 15},
		{Sector: "Infrastructure", Percentage: 20},
		{Sector: "Security", Percentage: 12},
		{Sector: "Agriculture", Percentage: 8},
		{Sector: "Others", Percentage: 20},
	}
}
