// Command settle computes balances and a settlement plan for a group
// described in a JSON file, without a server or database.
//
// Usage:
//
//	settle [-json] [ledger.json]
//
// The input looks like:
//
//	{
//	  "members":  [{"userId": "a", "name": "Alice"}, {"userId": "b", "name": "Bob"}],
//	  "expenses": [{"id": "1", "amount": 30, "paidBy": "a", "splitType": "equal"}]
//	}
//
// With no file argument the ledger is read from stdin.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/pkg/logging"
)

type ledger struct {
	Members  []member  `json:"members"`
	Expenses []expense `json:"expenses"`
}

type member struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

type expense struct {
	ID           string        `json:"id"`
	Amount       float64       `json:"amount"`
	PaidBy       string        `json:"paidBy"`
	SplitType    string        `json:"splitType"`
	SplitDetails []splitDetail `json:"splitDetails,omitempty"`
}

type splitDetail struct {
	UserID string  `json:"userId"`
	Amount float64 `json:"amount"`
}

type result struct {
	Summaries []calculator.BalanceSummary
	Plan      calculator.SettlementPlan
}

func main() {
	asJSON := flag.Bool("json", false, "print the result as JSON")
	logLevel := flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-json] [ledger.json]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	logging.Setup(*logLevel)

	if err := run(flag.Arg(0), *asJSON, os.Stdout); err != nil {
		slog.Error("Failed to settle ledger", "error", err)
		os.Exit(1)
	}
}

func run(path string, asJSON bool, out io.Writer) error {
	in := io.Reader(os.Stdin)
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open ledger: %w", err)
		}
		defer f.Close()
		in = f
	}

	res, err := settle(in)
	if err != nil {
		return err
	}

	if asJSON {
		err = writeJSON(out, res)
	} else {
		err = writeTable(out, res)
	}
	if err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// settle decodes a ledger and runs both balance stages on it.
func settle(r io.Reader) (*result, error) {
	var l ledger
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("failed to decode ledger: %w", err)
	}

	members := make([]calculator.Member, len(l.Members))
	for i, m := range l.Members {
		members[i] = calculator.Member{UserID: m.UserID, Name: m.Name}
	}
	expenses := make([]calculator.Expense, len(l.Expenses))
	for i, e := range l.Expenses {
		expenses[i] = calculator.Expense{
			ID:        e.ID,
			Amount:    e.Amount,
			PaidBy:    e.PaidBy,
			SplitType: calculator.SplitType(e.SplitType),
		}
		for _, d := range e.SplitDetails {
			expenses[i].SplitDetails = append(expenses[i].SplitDetails, calculator.SplitDetail{UserID: d.UserID, Amount: d.Amount})
		}
	}

	summaries, err := calculator.ComputeBalances(members, expenses)
	if err != nil {
		return nil, err
	}

	plan := calculator.Plan(summaries)
	if len(plan.Unmatched) > 0 {
		slog.Warn("Ledger does not balance, some amounts are unmatched", "imbalance", calculator.Imbalance(summaries))
	}
	return &result{Summaries: summaries, Plan: plan}, nil
}

type summaryJSON struct {
	UserID    string  `json:"userId"`
	Name      string  `json:"name,omitempty"`
	TotalPaid float64 `json:"totalPaid"`
	TotalOwed float64 `json:"totalOwed"`
	Balance   float64 `json:"balance"`
}

type settlementJSON struct {
	From     string  `json:"from"`
	FromName string  `json:"fromName,omitempty"`
	To       string  `json:"to"`
	ToName   string  `json:"toName,omitempty"`
	Amount   float64 `json:"amount"`
}

type residualJSON struct {
	UserID  string  `json:"userId"`
	Name    string  `json:"name,omitempty"`
	Balance float64 `json:"balance"`
}

type resultJSON struct {
	Summaries   []summaryJSON    `json:"summaries"`
	Settlements []settlementJSON `json:"settlements"`
	Unmatched   []residualJSON   `json:"unmatched,omitempty"`
}

func writeJSON(w io.Writer, res *result) error {
	out := resultJSON{
		Summaries:   make([]summaryJSON, 0, len(res.Summaries)),
		Settlements: make([]settlementJSON, 0, len(res.Plan.Settlements)),
	}
	for _, s := range res.Summaries {
		out.Summaries = append(out.Summaries, summaryJSON{
			UserID: s.UserID, Name: s.Name, TotalPaid: s.TotalPaid, TotalOwed: s.TotalOwed, Balance: s.Balance,
		})
	}
	for _, s := range res.Plan.Settlements {
		out.Settlements = append(out.Settlements, settlementJSON{
			From: s.Payer, FromName: s.PayerName, To: s.Receiver, ToName: s.ReceiverName, Amount: s.Amount,
		})
	}
	for _, u := range res.Plan.Unmatched {
		out.Unmatched = append(out.Unmatched, residualJSON{UserID: u.UserID, Name: u.Name, Balance: u.Balance})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeTable(w io.Writer, res *result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(tw, "MEMBER\tPAID\tOWED\tBALANCE\t")
	for _, s := range res.Summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			displayName(s.Name, s.UserID),
			calculator.FormatCurrency(s.TotalPaid),
			calculator.FormatCurrency(s.TotalOwed),
			calculator.FormatCurrency(s.Balance),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	if len(res.Plan.Settlements) == 0 {
		fmt.Fprintln(w, "Everyone is settled up.")
	}
	for _, s := range res.Plan.Settlements {
		fmt.Fprintf(w, "%s pays %s %s\n",
			displayName(s.PayerName, s.Payer),
			displayName(s.ReceiverName, s.Receiver),
			calculator.FormatCurrency(s.Amount),
		)
	}
	for _, u := range res.Plan.Unmatched {
		fmt.Fprintf(w, "unmatched: %s %s\n", displayName(u.Name, u.UserID), calculator.FormatCurrency(u.Balance))
	}
	return nil
}

func displayName(name, userID string) string {
	if name != "" {
		return name
	}
	return userID
}
