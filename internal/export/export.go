// Package export renders a group's ledger as an Excel workbook.
package export

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

// Sheet names, in workbook order.
const (
	SummarySheet     = "Summary"
	SettlementsSheet = "Settlements"
	ExpensesSheet    = "Expenses"
)

const dateLayout = "2006-01-02"

// Report is everything a workbook shows for one group.
type Report struct {
	Group     *models.Group
	Expenses  []*models.Expense
	Summaries []calculator.BalanceSummary
	Plan      calculator.SettlementPlan
}

// Workbook builds the Summary, Settlements and Expenses sheets.
func Workbook(r Report) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename default sheet: %w", err)
	}
	for _, name := range []string{SettlementsSheet, ExpensesSheet} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create %s sheet: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	w := &writer{f: f, header: header}
	w.summary(r)
	w.settlements(r)
	w.expenses(r)
	if w.err != nil {
		f.Close()
		return nil, w.err
	}
	return f, nil
}

// Bytes renders the workbook as .xlsx content.
func Bytes(r Report) ([]byte, error) {
	f, err := Workbook(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename is the download name for a group's export, e.g. "Ski_Trip_2026-01-31.xlsx".
func Filename(groupName string, at time.Time) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			return r
		case unicode.IsSpace(r):
			return '_'
		default:
			return -1
		}
	}, strings.TrimSpace(groupName))
	if clean == "" {
		clean = "group"
	}
	return fmt.Sprintf("%s_%s.xlsx", clean, at.UTC().Format(dateLayout))
}

// writer keeps the first error so sheet code reads straight through.
type writer struct {
	f      *excelize.File
	header int
	err    error
}

func (w *writer) row(sheet string, row int, values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err == nil {
		err = w.f.SetSheetRow(sheet, cell, &values)
	}
	if err != nil {
		w.err = fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
}

func (w *writer) headerRow(sheet string, row int, titles ...string) {
	values := make([]any, len(titles))
	for i, t := range titles {
		values[i] = t
	}
	w.row(sheet, row, values...)
	if w.err != nil {
		return
	}

	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(titles), row)
	if err := w.f.SetCellStyle(sheet, first, last, w.header); err != nil {
		w.err = fmt.Errorf("failed to style %s header: %w", sheet, err)
		return
	}
	lastCol, _ := excelize.ColumnNumberToName(len(titles))
	if err := w.f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		w.err = fmt.Errorf("failed to size %s columns: %w", sheet, err)
	}
}

func (w *writer) summary(r Report) {
	w.row(SummarySheet, 1, "Group", r.Group.Name)
	w.headerRow(SummarySheet, 3, "Member", "Total Paid", "Total Owed", "Balance")
	for i, s := range r.Summaries {
		w.row(SummarySheet, 4+i,
			s.Name,
			calculator.RoundCents(s.TotalPaid),
			calculator.RoundCents(s.TotalOwed),
			calculator.RoundCents(s.Balance),
		)
	}
}

func (w *writer) settlements(r Report) {
	w.headerRow(SettlementsSheet, 1, "From", "To", "Amount", "Display")
	row := 2
	for _, s := range r.Plan.Settlements {
		w.row(SettlementsSheet, row,
			s.PayerName, s.ReceiverName, calculator.RoundCents(s.Amount), calculator.FormatCurrency(s.Amount))
		row++
	}
	if len(r.Plan.Unmatched) == 0 {
		return
	}

	row++
	w.headerRow(SettlementsSheet, row, "Unmatched", "Balance")
	for _, u := range r.Plan.Unmatched {
		row++
		w.row(SettlementsSheet, row, u.Name, calculator.RoundCents(u.Balance))
	}
}

// expenses writes one row per expense with each member's share in its own column.
func (w *writer) expenses(r Report) {
	members := r.Group.LedgerMembers()
	names := make(map[string]string, len(r.Group.Members))
	titles := []string{"Date", "Description", "Paid By", "Amount", "Split"}
	for _, m := range r.Group.Members {
		names[m.UserID] = m.Name
		titles = append(titles, m.Name)
	}
	w.headerRow(ExpensesSheet, 1, titles...)

	for i, e := range r.Expenses {
		paidBy, ok := names[e.PaidBy]
		if !ok {
			paidBy = e.PaidBy
		}
		values := []any{
			time.Unix(e.Date, 0).UTC().Format(dateLayout),
			e.Description,
			paidBy,
			calculator.RoundCents(e.Amount),
			e.SplitType,
		}

		shares, err := calculator.ComputeBalances(members, []calculator.Expense{e.LedgerExpense()})
		if err != nil {
			w.err = fmt.Errorf("failed to compute shares of expense %s: %w", e.ID, err)
			return
		}
		for _, s := range shares {
			values = append(values, calculator.RoundCents(s.TotalOwed))
		}
		w.row(ExpensesSheet, 2+i, values...)
	}
}
