package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/provgraph/provis/pkg/archive"
	"github.com/provgraph/provis/pkg/errors"
)

// runsCommand creates the runs command for browsing the archive.
func (c *CLI) runsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse archived layout runs",
	}

	cmd.AddCommand(c.runsListCommand())
	cmd.AddCommand(c.runsShowCommand())
	cmd.AddCommand(c.runsDeleteCommand())

	return cmd
}

// openArchive opens the configured archive backend.
func (c *CLI) openArchive(cmd *cobra.Command) (archive.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := newArchive(cmd.Context(), cfg.Archive)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if store == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "run archive is disabled (archive.backend = none)")
	}
	return store, nil
}

// runsListCommand creates the "runs list" subcommand.
func (c *CLI) runsListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openArchive(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if len(runs) == 0 {
				printInfo("No archived runs")
				return nil
			}

			fmt.Println(renderRunsTable(runs))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to show (0 = all)")

	return cmd
}

// runsShowCommand creates the "runs show" subcommand.
func (c *CLI) runsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one archived run in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openArchive(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printKeyValue("ID", run.ID)
			if run.GraphName != "" {
				printKeyValue("Graph", run.GraphName)
			}
			printKeyValue("Hash", run.GraphHash)
			printKeyValue("Strategy", run.Strategy)
			printKeyValue("Tool", run.Tool)
			printKeyValue("Depth", fmt.Sprintf("%d", run.Depth))
			printKeyValue("Workers", fmt.Sprintf("%d", run.Workers))
			printKeyValue("Zoom", fmt.Sprintf("%t", run.Zoom))
			printKeyValue("Nodes", fmt.Sprintf("%d", run.Nodes))
			printKeyValue("Edges", fmt.Sprintf("%d", run.Edges))
			printKeyValue("Extent", fmt.Sprintf("%.0f × %.0f", run.Width, run.Height))
			printKeyValue("Duration", run.Duration.Round(time.Millisecond).String())
			printKeyValue("Cached", fmt.Sprintf("%t", run.CacheHit))
			printKeyValue("Created", run.CreatedAt.Local().Format(time.RFC1123))
			if len(run.Layout) > 0 {
				printKeyValue("Layout", formatSize(int64(len(run.Layout))))
			}
			return nil
		},
	}
}

// runsDeleteCommand creates the "runs delete" subcommand.
func (c *CLI) runsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openArchive(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete run: %w", err)
			}
			printSuccess("Deleted run %s", args[0])
			return nil
		},
	}
}

// renderRunsTable renders runs as a bordered table.
func renderRunsTable(runs []*archive.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		name := r.GraphName
		if name == "" && len(r.GraphHash) >= 12 {
			name = r.GraphHash[:12]
		}
		cached := ""
		if r.CacheHit {
			cached = iconSuccess
		}
		rows = append(rows, []string{
			r.ID,
			name,
			r.Strategy,
			fmt.Sprintf("%d", r.Nodes),
			fmt.Sprintf("%d", r.Edges),
			cached,
			formatRelativeTime(r.CreatedAt),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Graph", "Strategy", "Nodes", "Edges", "Cached", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			switch col {
			case 0, 6:
				return lipgloss.NewStyle().Foreground(colorDim)
			case 5:
				return lipgloss.NewStyle().Foreground(colorGreen)
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}
