package output

import "github.com/iwvelando/tax-impact/internal/tax"

// ScheduleView is the JSON form of a schedule and its sector weights.
type ScheduleView struct {
	Currency string                 `json:"currency"`
	Relief   float64                `json:"relief"`
	Brackets []BracketView          `json:"brackets"`
	Sectors  []tax.SectorAllocation `json:"sectors"`
}

// BracketView is one bracket with Upper left null for the open-ended top.
type BracketView struct {
	Lower int64   `json:"lower"`
	Upper *int64  `json:"upper"`
	Rate  float64 `json:"rate"`
}

// NewScheduleView builds the display form of a schedule.
func NewScheduleView(currency string, schedule tax.Schedule, sectors []tax.SectorAllocation) ScheduleView {
	brackets := make([]BracketView, 0, len(schedule.Brackets))
	for _, b := range schedule.Brackets {
		view := BracketView{Lower: b.Lower, Rate: b.Rate}
		if !b.IsUnbounded() {
			upper := b.Upper
			view.Upper = &upper
		}
		brackets = append(brackets, view)
	}
	return ScheduleView{
		Currency: currency,
		Relief:   schedule.Relief,
		Brackets: brackets,
		Sectors:  sectors,
	}
}
