package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/categories"
	"github.com/fintrack-dev/fintrack/internal/model"
)

func newCategoriesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage categories",
	}
	cmd.AddCommand(
		newCategoriesListCommand(a),
		newCategoriesAddCommand(a),
		newCategoriesEditCommand(a),
		newCategoriesRemoveCommand(a),
	)
	return cmd
}

func newCategoriesListCommand(a *app) *cobra.Command {
	var typeFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.open()
			if err != nil {
				return err
			}

			var want model.TransactionType
			if typeFilter != "" {
				if want, err = parseType(typeFilter); err != nil {
					return err
				}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tICON\tCOLOR")
			for _, c := range st.cats.List() {
				if want != "" && c.Type != want {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Type, c.Icon, swatch(c.Color))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&typeFilter, "type", "", "only show income or expense categories")
	return cmd
}

func newCategoriesAddCommand(a *app) *cobra.Command {
	var typ, color, icon string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.open()
			if err != nil {
				return err
			}
			t, err := parseType(typ)
			if err != nil {
				return err
			}
			if color == "" {
				color = st.cfg.Import.CategoryColor
			}
			if icon == "" {
				icon = st.cfg.Import.CategoryIcon
			}

			c, err := st.cats.Create(model.Category{Name: args[0], Type: t, Color: color, Icon: icon})
			if err != nil {
				return err
			}
			if err := st.cats.Save(st.root); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added category %s (%s)\n", c.Name, c.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", string(model.TypeExpense), "income or expense")
	cmd.Flags().StringVar(&color, "color", "", "hex color (default from config)")
	cmd.Flags().StringVar(&icon, "icon", "", "icon name (default from config)")
	return cmd
}

func newCategoriesEditCommand(a *app) *cobra.Command {
	var name, typ, color, icon string

	cmd := &cobra.Command{
		Use:   "edit ID|NAME",
		Short: "Change a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.open()
			if err != nil {
				return err
			}
			c, err := findCategory(st.cats, args[0])
			if err != nil {
				return err
			}

			var p categories.Patch
			flags := cmd.Flags()
			if flags.Changed("name") {
				p.Name = &name
			}
			if flags.Changed("type") {
				t, err := parseType(typ)
				if err != nil {
					return err
				}
				p.Type = &t
			}
			if flags.Changed("color") {
				p.Color = &color
			}
			if flags.Changed("icon") {
				p.Icon = &icon
			}

			updated, err := st.cats.Update(c.ID, p)
			if err != nil {
				return err
			}
			if err := st.cats.Save(st.root); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated category %s (%s)\n", updated.Name, updated.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&typ, "type", "", "income or expense")
	cmd.Flags().StringVar(&color, "color", "", "hex color")
	cmd.Flags().StringVar(&icon, "icon", "", "icon name")
	return cmd
}

func newCategoriesRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID|NAME",
		Aliases: []string{"remove"},
		Short:   "Remove an unused category",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.open()
			if err != nil {
				return err
			}
			c, err := findCategory(st.cats, args[0])
			if err != nil {
				return err
			}
			if st.txns.ReferencesCategory(c.ID) {
				return fmt.Errorf("category %s is used by transactions", c.Name)
			}

			if err := st.cats.Delete(c.ID); err != nil {
				return err
			}
			if err := st.cats.Save(st.root); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed category %s\n", c.Name)
			return nil
		},
	}
}

// findCategory resolves a category by ID, then by name.
func findCategory(cats *categories.Service, ref string) (model.Category, error) {
	if c, ok := cats.Get(ref); ok {
		return c, nil
	}
	if c, ok := cats.FindByName(ref); ok {
		return c, nil
	}
	return model.Category{}, fmt.Errorf("%w: %s", categories.ErrNotFound, ref)
}

// parseType is stricter than model.ParseTransactionType: typos are errors.
func parseType(s string) (model.TransactionType, error) {
	t := model.TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("invalid type %q (want income or expense)", s)
	}
	return t, nil
}

// swatch renders a color sample followed by its hex code.
func swatch(color string) string {
	if color == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■") + " " + color
}
