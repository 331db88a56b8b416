package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/exporter"
	"github.com/fintrack-dev/fintrack/internal/model"
)

func newTransactionsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txn"},
		Short:   "List and remove transactions",
	}
	cmd.AddCommand(newTransactionsListCommand(a), newTransactionsRemoveCommand(a))
	return cmd
}

func newTransactionsListCommand(a *app) *cobra.Command {
	var from, to, category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions with income and expense totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := parseDay("--from", from)
			if err != nil {
				return err
			}
			end, err := parseDay("--to", to)
			if err != nil {
				return err
			}

			st, err := a.open()
			if err != nil {
				return err
			}

			var categoryID string
			if category != "" {
				c, err := findCategory(st.cats, category)
				if err != nil {
					return err
				}
				categoryID = c.ID
			}

			names := make(map[string]string)
			for _, c := range st.cats.List() {
				names[c.ID] = c.Name
			}

			income, expense := decimal.Zero, decimal.Zero
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tTYPE\tCATEGORY\tAMOUNT\tDESCRIPTION")
			for _, t := range exporter.FilterByDate(st.txns.List(), start, end) {
				if categoryID != "" && t.CategoryID != categoryID {
					continue
				}
				name, ok := names[t.CategoryID]
				if !ok {
					name = exporter.UnknownCategory
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Date.Format(dayLayout), t.Type, name, t.Amount.StringFixed(2), t.Description)

				if t.Type == model.TypeIncome {
					income = income.Add(t.Amount)
				} else {
					expense = expense.Add(t.Amount)
				}
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nIncome %s  Expenses %s  Net %s\n",
				income.StringFixed(2), expense.StringFixed(2), income.Sub(expense).StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&category, "category", "", "only show one category (ID or name)")
	return cmd
}

func newTransactionsRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Remove a transaction",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.open()
			if err != nil {
				return err
			}
			if err := st.txns.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed transaction %s\n", args[0])
			return nil
		},
	}
}
