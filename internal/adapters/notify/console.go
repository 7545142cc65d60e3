package notify

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/polyweather/internal/domain"
)

// Console implementa ports.Notifier imprimiendo el resultado del run.
type Console struct {
	out     io.Writer
	verbose bool // imprime además la tabla fila-por-contrato
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(verbose bool) *Console {
	return &Console{out: os.Stdout, verbose: verbose}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, verbose bool) *Console {
	return &Console{out: w, verbose: verbose}
}

// Notify imprime los trades simulados, el ledger opcional y el resumen final.
func (c *Console) Notify(_ context.Context, result domain.RunResult, rows []domain.BacktestRow) error {
	if len(result.Trades) == 0 {
		fmt.Fprintf(c.out, "\n  No positions taken for %s (%s).\n", result.City, result.Period)
	} else {
		c.printTrades(result.Trades)
	}

	if c.verbose && len(rows) > 0 {
		c.printLedger(rows)
	}

	c.printSummary(result)
	return nil
}

// printTrades imprime una tabla con las posiciones simuladas.
func (c *Console) printTrades(trades []domain.TradeSummary) {
	fmt.Fprintf(c.out, "\n  Simulated positions:\n\n")

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Date", "Side", "Bucket", "Entry", "Fair", "Edge", "Res", "Source", "PnL")

	for i, t := range trades {
		res := fmt.Sprintf("%.0f", t.Resolution)
		pnl := fmt.Sprintf("$%.2f", t.PnL)
		if t.Source == "PENDING" {
			res = "-"
			pnl = "pending"
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			t.Date,
			string(t.Side),
			truncate(t.Question, 38),
			fmt.Sprintf("%.3f", t.EntryPrice),
			fmt.Sprintf("%.2f", t.FairPrice),
			fmt.Sprintf("%+.3f", t.Edge),
			res,
			t.Source,
			pnl,
		)
	}
	table.Render()
}

// printLedger imprime el contexto completo de grupo, fila por contrato.
func (c *Console) printLedger(rows []domain.BacktestRow) {
	fmt.Fprintf(c.out, "\n  Full market-group ledger:\n\n")

	table := tablewriter.NewWriter(c.out)
	table.Header("Date", "Bucket", "Side", "Target°F", "Prob", "Entry", "Res", "PnL")

	for _, r := range rows {
		if r.Summary {
			continue
		}
		table.Append(
			r.StartOfDay[:10],
			truncate(r.OutcomeBucket, 24),
			string(r.Side),
			fmt.Sprintf("%.1f", r.TargetF),
			r.PredictedProb,
			fmt.Sprintf("%.3f", r.EntryPrice),
			r.Resolution,
			r.PnL,
		)
	}
	table.Render()
}

// printSummary imprime los agregados del run.
func (c *Console) printSummary(r domain.RunResult) {
	fmt.Fprintf(c.out, "\n  --- Backtest Summary: %s ---\n", r.City)
	fmt.Fprintf(c.out, "  Period:            %s\n", r.Period)
	fmt.Fprintf(c.out, "  Markets found:     %d\n", r.MarketsFound)
	fmt.Fprintf(c.out, "  Total Invested:    $%.2f\n", r.TotalInvested)
	fmt.Fprintf(c.out, "  Total Payout:      $%.2f\n", r.TotalPayout)
	if r.PendingInvested > 0 {
		fmt.Fprintf(c.out, "  Pending Invested:  $%.2f\n", r.PendingInvested)
		fmt.Fprintf(c.out, "  Resolved ROI:      %.2f%%\n", r.ResolvedROI)
	}
	fmt.Fprintf(c.out, "  Final PnL:         $%.2f\n", r.FinalPnL)
	fmt.Fprintf(c.out, "  Final ROI:         %.2f%%\n", r.FinalROI)
	if r.CSVPath != "" {
		fmt.Fprintf(c.out, "  Results saved to:  %s\n", r.CSVPath)
	}
	if !r.Success {
		fmt.Fprintf(c.out, "  RUN INCOMPLETE:    %s\n", r.Error)
	}
	fmt.Fprintln(c.out)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
