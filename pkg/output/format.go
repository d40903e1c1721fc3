// Package output provides utilities for formatting and displaying
// amortization schedules.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/datetime"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/inflation"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/schedule"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, name string, s *schedule.Schedule) {
	p := message.NewPrinter(language.English)
	fmt.Fprintf(w, "--- Amortization schedule for %s ---\n", name)
	fmt.Fprintf(w, "#    | Date       | Payment     | Principal   | Interest    | Balance\n")
	fmt.Fprintf(w, "____ | __________ | ___________ | ___________ | ___________ | ___________\n")
	for _, payment := range s.Payments {
		_, _ = p.Fprintf(w, "%4d | %s | $%.2f | $%.2f | $%.2f | $%.2f\n",
			payment.Number, payment.Date.Format(datetime.DateLayout),
			payment.Amount, payment.Principal, payment.Interest, payment.Balance)
	}
	_, _ = p.Fprintf(w, "Total interest: $%.2f | Total paid: $%.2f | Payoff: %s\n",
		s.TotalInterest, s.TotalPayment, s.PayoffDate.Format(datetime.DateLayout))
}

// PrettyFormatAdjusted outputs the present-value summary for an
// inflation-adjusted schedule.
func PrettyFormatAdjusted(w io.Writer, name string, adjusted *inflation.AdjustedSchedule) {
	p := message.NewPrinter(language.English)
	_, _ = p.Fprintf(w, "--- Inflation-adjusted totals for %s ---\n", name)
	_, _ = p.Fprintf(w, "Nominal total: $%.2f | Present value: $%.2f | Savings: $%.2f\n",
		adjusted.TotalOriginal, adjusted.TotalAdjusted, adjusted.Savings)
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(w io.Writer, s *schedule.Schedule) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"number", "date", "amount", "principal", "interest", "balance"}); err != nil {
		return err
	}
	for _, payment := range s.Payments {
		record := []string{
			strconv.Itoa(payment.Number),
			payment.Date.Format(datetime.DateLayout),
			strconv.FormatFloat(payment.Amount, 'f', 2, 64),
			strconv.FormatFloat(payment.Principal, 'f', 2, 64),
			strconv.FormatFloat(payment.Interest, 'f', 2, 64),
			strconv.FormatFloat(payment.Balance, 'f', 2, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
