package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/fdg312/mealcraft/internal/catalog"
	"github.com/fdg312/mealcraft/internal/export"
	"github.com/fdg312/mealcraft/internal/planner"
	"github.com/fdg312/mealcraft/internal/recipes"
	"github.com/fdg312/mealcraft/internal/slots"
	"github.com/fdg312/mealcraft/internal/week"
)

func newWeekCmd(a *app) *cobra.Command {
	var offset int
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print the meal plan of a week",
		Example: `  mealcraft week
  mealcraft week --offset 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.startPlanner(cmd.Context(), offset)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			printWeek(cmd.OutOrStdout(), ctrl.State())
			return nil
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "weeks relative to the current one (-1 = last week)")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var offset int
	cmd := &cobra.Command{
		Use:   "add DAY SLOT RECIPE_ID",
		Short: "Put a recipe into a calendar slot",
		Long: `DAY is 0-6 (0 = Monday) or a day name. SLOT is one of:
  breakfast, morning_snack, lunch, afternoon_snack, dinner
An occupied slot is replaced.`,
		Example: `  mealcraft add mon breakfast 3
  mealcraft add 4 dinner 12 --offset 1`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(args[0])
			if err != nil {
				return err
			}
			slot := strings.ToLower(args[1])
			if !slots.IsValidSlot(slot) {
				return fmt.Errorf("unknown slot %q", args[1])
			}
			recipeID, err := parseID(args[2], "RECIPE_ID")
			if err != nil {
				return err
			}

			ctrl, err := a.startPlanner(cmd.Context(), offset)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			if err := ctrl.AddEntry(cmd.Context(), day, slot, recipeID); err != nil {
				return fmt.Errorf("add entry: %w", err)
			}

			e, ok := ctrl.Entry(day, slot)
			if !ok {
				return fmt.Errorf("entry not visible after reload")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s): %s [entry %d]\n",
				slots.Days[day], slots.Label(slot), week.ISODate(week.DayDate(ctrl.State().WeekStart, day)), e.RecipeName, e.ID)
			return nil
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "weeks relative to the current one")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ENTRY_ID",
		Short: "Remove a meal plan entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "ENTRY_ID")
			if err != nil {
				return err
			}
			if err := a.client.MealPlans.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("remove entry %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Meal plan entry %d removed\n", id)
			return nil
		},
	}
}

func newRecipesCmd(a *app) *cobra.Command {
	var search, category string
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "List recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := catalog.New(a.client.Recipes, a.logger)
			if err := cat.Load(cmd.Context()); err != nil {
				return fmt.Errorf("%s: %w", catalog.LoadErrorMessage, err)
			}

			list := cat.Search(search)
			if category != "" {
				list = slots.FilterByCategory(list, category)
			}
			printRecipes(cmd.OutOrStdout(), list, search)
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive name filter")
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		offset int
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download a week plan as pdf, csv or html",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			weekStart := week.Shift(week.StartOfWeek(a.now()), offset)

			doc, err := a.client.MealPlans.Export(cmd.Context(), week.ISODate(weekStart), string(f))
			if err != nil {
				return fmt.Errorf("export week: %w", err)
			}

			if out == "" {
				out = export.FileName(weekStart, f)
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(doc)
				return err
			}
			if err := os.WriteFile(out, doc, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", out, len(doc))
			return nil
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "weeks relative to the current one")
	cmd.Flags().StringVar(&format, "format", "pdf", "pdf, csv or html")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file, - for stdout")
	return cmd
}

func printWeek(w io.Writer, st planner.State) {
	fmt.Fprintln(w, week.RangeLabel(st.WeekStart))

	headers := []string{""}
	for day, label := range slots.Days {
		headers = append(headers, fmt.Sprintf("%s %d", label, week.DayDate(st.WeekStart, day).Day()))
	}

	rows := make([][]string, 0, len(slots.Slots))
	for _, slot := range slots.Slots {
		row := []string{slots.Emoji(slot.Category) + " " + slot.Label}
		for day := range slots.Days {
			cell := "-"
			if e, ok := st.Entry(day, slot.Key); ok {
				cell = fmt.Sprintf("%s #%d", e.RecipeName, e.ID)
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

func printRecipes(w io.Writer, list []recipes.Recipe, search string) {
	if len(list) == 0 {
		fmt.Fprintln(w, catalog.GridMessage(search))
		return
	}

	rows := make([][]string, 0, len(list))
	for _, r := range list {
		rows = append(rows, []string{
			fmt.Sprint(r.ID),
			slots.Emoji(r.Category) + " " + r.Name,
			strings.ToLower(r.Category),
			fmt.Sprintf("%d min", r.PrepTime),
			fmt.Sprint(r.Portions),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Name", "Category", "Prep", "Portions").
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}
