package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skilltree/pkg/store"
)

// historyCommand creates the run history commands.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, show and delete recorded runs",
		Long: `Every build is recorded with its input hash, seed and per-category
summary. Runs are kept in MongoDB when SKILLTREE_MONGO_URI is set, else as
JSON files in the config directory.`,
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyShowCommand())
	cmd.AddCommand(c.historyDeleteCommand())

	return cmd
}

func (c *CLI) historyListCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				printInfo("No runs recorded")
				return nil
			}
			printRunTable(runs, time.Now())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultListLimit, "number of runs to list")
	return cmd
}

func (c *CLI) historyShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			run, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			placed, unplaced := run.Totals()
			printKeyValue("Run", run.ID)
			printKeyValue("Created", run.CreatedAt.Local().Format(time.DateTime))
			printKeyValue("Seed", fmt.Sprintf("%d", run.Seed))
			printKeyValue("Input", run.InputHash)
			if run.Builder != "" {
				printKeyValue("Built by", run.Builder)
			}
			printKeyValue("Nodes", fmt.Sprintf("%d placed, %d unplaced", placed, unplaced))
			printNewline()
			if run.Result != nil {
				printResultTable(run.Result)
			}
			printNewline()
			printNextStep("Browse", fmt.Sprintf("%s inspect --run %s", appName, run.ID))
			return nil
		},
	}
}

func (c *CLI) historyDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [run-id]",
		Short: "Delete a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted run %s", args[0])
			return nil
		},
	}
}

// printRunTable prints run headers with times relative to now.
func printRunTable(runs []*store.Run, now time.Time) {
	rows := make([][]string, len(runs))
	for i, r := range runs {
		placed, unplaced := r.Totals()
		rows[i] = []string{r.ID, formatRelativeTime(r.CreatedAt, now), fmt.Sprintf("%d", r.Seed),
			fmt.Sprintf("%d", len(r.Categories)), fmt.Sprintf("%d", placed), fmt.Sprintf("%d", unplaced)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Run", "Created", "Seed", "Categories", "Placed", "Unplaced").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 1 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})
	fmt.Println(t.Render())
}

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
