package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/sptree/pkg/errors"
	"github.com/matzehuels/sptree/pkg/storage"
)

// graphsCommand creates the command group for saved graphs.
func (c *CLI) graphsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graphs",
		Short: "Manage saved graphs",
		Long: `Manage saved graphs.

Saved graphs live in the local storage directory ([storage] dir, by default
~/.local/share/sptree/graphs) under a name. The HTTP API uses the same
directory when it runs without MongoDB, so graphs saved from the browser
show up here.`,
	}

	cmd.AddCommand(c.graphsListCommand())
	cmd.AddCommand(c.graphsSaveCommand())
	cmd.AddCommand(c.graphsExportCommand())
	cmd.AddCommand(c.graphsDeleteCommand())

	return cmd
}

func (c *CLI) graphsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved graphs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newGraphStore()
			if err != nil {
				return err
			}
			defer store.Close()

			infos, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				printInfo("No saved graphs")
				printDetail("Directory: %s", store.Dir())
				return nil
			}
			fmt.Println(graphsTable(infos))
			return nil
		},
	}
}

func (c *CLI) graphsSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <name> <graph>",
		Short: "Save a graph file under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := errs.ValidateGraphName(name); err != nil {
				return err
			}
			g, err := readGraph(args[1])
			if err != nil {
				return err
			}
			store, err := c.newGraphStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Save(cmd.Context(), name, g.Export()); err != nil {
				return err
			}
			printSuccess("Saved %s (%d vertices)", name, g.Len())
			return nil
		},
	}
}

func (c *CLI) graphsExportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Write a saved graph to a file or stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := errs.ValidateGraphName(name); err != nil {
				return err
			}
			store, err := c.newGraphStore()
			if err != nil {
				return err
			}
			defer store.Close()

			g, err := storage.LoadGraph(cmd.Context(), store, name)
			if err != nil {
				return err
			}
			if err := writeGraph(g, output); err != nil {
				return err
			}
			if output != "" {
				printSuccess("Exported %s", name)
				printFile(output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.txt or .json); stdout if empty")
	return cmd
}

func (c *CLI) graphsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := errs.ValidateGraphName(name); err != nil {
				return err
			}
			store, err := c.newGraphStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), name); err != nil {
				return err
			}
			printSuccess("Deleted %s", name)
			return nil
		},
	}
}

func graphsTable(infos []storage.Info) string {
	rows := make([][]string, len(infos))
	for i, info := range infos {
		rows[i] = []string{info.Name, fmt.Sprint(info.Vertices), formatRelativeTime(info.UpdatedAt, time.Now())}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Vertices", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleHighlight
			}
			return StyleDim
		}).
		Render()
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
