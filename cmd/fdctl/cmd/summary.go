package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard/internal/dto"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

var summaryOpts struct {
	email    string
	password string
	month    string
	year     string
	kind     string
	category string
	page     int
}

// summaryCmd prints the dashboard of one filter selection.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the dashboard totals for a period",
	Long: `Signs in and prints the summary cards, the expense split by category and the
monthly totals. Month and year default to the current ones; pass "all" to drop them.

Example:
  fdctl summary --email ana@example.com --password ... --month all --year 2024 --kind despesa`,
	RunE: runSummary,
}

func init() {
	addCredentialFlags(summaryCmd, &summaryOpts.email, &summaryOpts.password)
	summaryCmd.Flags().StringVar(&summaryOpts.month, "month", "", `month 1-12 or "all"`)
	summaryCmd.Flags().StringVar(&summaryOpts.year, "year", "", `year or "all"`)
	summaryCmd.Flags().StringVar(&summaryOpts.kind, "kind", "", `expense, income or "all"`)
	summaryCmd.Flags().StringVar(&summaryOpts.category, "category", "", `category or "all"`)
	summaryCmd.Flags().IntVar(&summaryOpts.page, "page", 1, "transaction page")
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	filter, err := summaryFilter(time.Now().In(loc))
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.signIn(ctx, summaryOpts.email, summaryOpts.password)
	if err != nil {
		return err
	}
	defer a.signOut(ctx, sess)

	d := a.services.Dashboard.BuildDashboard(ctx, sess, portssvc.DashboardQuery{Filter: filter, Page: summaryOpts.page})
	locale, err := language.Parse(cfg.Locale)
	if err != nil {
		locale = language.BrazilianPortuguese
	}
	resp := dto.ToDashboardResponse(d, locale)

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	return writeSummary(cmd.OutOrStdout(), resp)
}

// summaryFilter applies the current month and year unless the flags choose otherwise.
func summaryFilter(now time.Time) (domain.Filter, error) {
	month, year := summaryOpts.month, summaryOpts.year
	def := domain.DefaultFilter(now)
	if month == "" {
		month = def.MonthString()
	}
	if year == "" {
		year = def.YearString()
	}
	return domain.ParseFilter(month, year, summaryOpts.kind, summaryOpts.category)
}

func writeSummary(out io.Writer, resp dto.DashboardResponse) error {
	if resp.Degraded {
		fmt.Fprintln(out, "Warning: the store could not be read; showing empty data.")
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Period\t%s\n", resp.PeriodLabel)
	fmt.Fprintf(w, "Income\t%s\n", resp.Totals.Income.Formatted)
	fmt.Fprintf(w, "Expense\t%s\n", resp.Totals.Expense.Formatted)
	fmt.Fprintf(w, "Balance\t%s\n", resp.Totals.Balance.Formatted)

	if len(resp.CategoryTotals) > 0 {
		fmt.Fprintln(w, "\nCategory\tAmount\tShare")
		for _, c := range resp.CategoryTotals {
			fmt.Fprintf(w, "%s\t%s\t%s%%\n", c.Category, c.Amount.Formatted, c.Percent.StringFixed(1))
		}
	}

	if len(resp.Monthly) > 0 {
		fmt.Fprintln(w, "\nMonth\tIncome\tExpense")
		for _, m := range resp.Monthly {
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.Label, m.Income.StringFixed(2), m.Expense.StringFixed(2))
		}
	}

	fmt.Fprintf(w, "\nTransactions\t%d (page %d of %d)\n", resp.Page.TotalItems, resp.Page.Page, resp.Page.TotalPages)
	return w.Flush()
}
