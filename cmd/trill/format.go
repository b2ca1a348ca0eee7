package main

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/gregersn/trill/pkgs/calculator"
	"github.com/gregersn/trill/pkgs/value"
)

// formatValue renders a result value, rounding any float to digits places
// (spec.md's CLI "--digits N" formatting flag).
func formatValue(v value.Value, digits int) string {
	if v.IsFloat() {
		return strconv.FormatFloat(round(v.AsFloat(), digits), 'f', -1, 64)
	}
	return v.String()
}

func round(f float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(f*scale) / scale
}

// renderReport prints one distribution as a table: one row per outcome,
// probabilities scaled by multiplier, with a trailer row carrying the
// numeric summary when the distribution is numeric (spec.md §4.4's
// mean/spread/mean-deviation report).
func renderReport(report calculator.Report, digits int, multiplier float64) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Outcome", "Probability"})

	for _, entry := range report.Entries {
		p := entry.Probability * multiplier
		table.Append([]string{
			entry.Value.String(),
			strconv.FormatFloat(round(p, digits), 'f', -1, 64),
		})
	}

	if report.Numeric {
		table.SetFooter([]string{
			"mean " + strconv.FormatFloat(round(report.Mean, digits), 'f', -1, 64),
			fmt.Sprintf("spread %s / mean-dev %s",
				strconv.FormatFloat(round(report.Spread, digits), 'f', -1, 64),
				strconv.FormatFloat(round(report.MeanDev, digits), 'f', -1, 64)),
		})
	}

	table.Render()
}
