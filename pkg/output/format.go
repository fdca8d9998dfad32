// Package output provides utilities for formatting and displaying tax results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/tax-impact/internal/tax"
	"github.com/iwvelando/tax-impact/pkg/format"
)

// Report is a tax.Result decorated with display strings.
type Report struct {
	tax.Result
	Currency        string    `json:"currency"`
	BreakdownTotal  int64     `json:"breakdownTotal"`
	RoundingResidue int64     `json:"roundingResidue"`
	Formatted       Formatted `json:"formatted"`
}

// Formatted holds currency strings for the headline amounts and each sector.
// Sectors keep the order of the breakdown.
type Formatted struct {
	MonthlyTax      string            `json:"monthlyTax"`
	YearlyTax       string            `json:"yearlyTax"`
	SectorBreakdown []FormattedSector `json:"sectorBreakdown"`
}

// FormattedSector is one sector line rendered in the report currency.
type FormattedSector struct {
	Sector string `json:"sector"`
	Amount string `json:"amount"`
}

// NewReport builds the display form of a result.
func NewReport(currency string, result tax.Result) Report {
	sectors := make([]FormattedSector, 0, len(result.SectorBreakdown))
	for _, line := range result.SectorBreakdown {
		sectors = append(sectors, FormattedSector{
			Sector: line.Sector,
			Amount: format.Currency(currency, line.Amount),
		})
	}
	return Report{
		Result:          result,
		Currency:        currency,
		BreakdownTotal:  result.BreakdownTotal(),
		RoundingResidue: result.RoundingResidue(),
		Formatted: Formatted{
			MonthlyTax:      format.Currency(currency, result.MonthlyTax),
			YearlyTax:       format.Currency(currency, result.YearlyTax),
			SectorBreakdown: sectors,
		},
	}
}

// PrettyFormat writes a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, currency string, results []tax.Result) {
	for i, result := range results {
		fmt.Fprintf(w, "--- Tax impact for monthly income %s ---\n", format.Decimal(result.Income))
		fmt.Fprintf(w, "Bracket               | Rate   | Taxable        | Tax\n")
		fmt.Fprintf(w, "_______               | ____   | _______        | ___\n")
		for _, band := range result.Bands {
			fmt.Fprintf(w, "%-21s | %-6s | %-14s | %s\n",
				bracketLabel(band.Lower, band.Upper), format.Rate(band.Rate),
				format.Decimal(band.Taxable), format.Decimal(band.Tax))
		}
		fmt.Fprintf(w, "Gross tax        : %s\n", format.Decimal(result.GrossTax))
		fmt.Fprintf(w, "Personal relief  : %s\n", format.Decimal(result.Relief))
		fmt.Fprintf(w, "Monthly PAYE     : %s\n", format.Currency(currency, result.MonthlyTax))
		fmt.Fprintf(w, "Yearly PAYE      : %s\n", format.Currency(currency, result.YearlyTax))
		fmt.Fprintf(w, "Where your tax goes:\n")
		for _, line := range result.SectorBreakdown {
			fmt.Fprintf(w, "  %-16s %s\n", line.Sector, format.Currency(currency, line.Amount))
		}
		if residue := result.RoundingResidue(); residue != 0 {
			fmt.Fprintf(w, "  (sector amounts are rounded individually and differ from the yearly total by %d)\n", residue)
		}
		if i < len(results)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
}

// CsvFormat writes one row per result with a column per sector.
func CsvFormat(w io.Writer, results []tax.Result) error {
	writer := csv.NewWriter(w)

	header := []string{"income", "gross tax", "relief", "monthly tax", "yearly tax"}
	if len(results) > 0 {
		for _, line := range results[0].SectorBreakdown {
			header = append(header, line.Sector)
		}
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, result := range results {
		row := []string{
			strconv.FormatFloat(result.Income, 'f', 2, 64),
			strconv.FormatFloat(result.GrossTax, 'f', 2, 64),
			strconv.FormatFloat(result.Relief, 'f', 2, 64),
			strconv.FormatInt(result.MonthlyTax, 10),
			strconv.FormatInt(result.YearlyTax, 10),
		}
		for _, line := range result.SectorBreakdown {
			row = append(row, strconv.FormatInt(line.Amount, 10))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// JSONFormat writes the reports as an indented JSON array.
func JSONFormat(w io.Writer, currency string, results []tax.Result) error {
	reports := make([]Report, 0, len(results))
	for _, result := range results {
		reports = append(reports, NewReport(currency, result))
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(reports)
}

func bracketLabel(lower int64, upper *int64) string {
	if upper == nil {
		return fmt.Sprintf("above %s", format.Currency("", lower-1))
	}
	return fmt.Sprintf("%s - %s", format.Currency("", lower), format.Currency("", *upper))
}
