package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/incept5/eve-showcase/pkg/content"
	"github.com/incept5/eve-showcase/pkg/theme"
)

// catalog loads the configured catalog for a read-only command.
func (c *CLI) catalog(ctx context.Context) (*content.Catalog, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return c.openCatalog(ctx, cfg)
}

// =============================================================================
// list
// =============================================================================

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var ids bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the capabilities in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog(cmd.Context())
			if err != nil {
				return err
			}
			if ids {
				for _, cp := range cat.All() {
					fmt.Fprintln(cmd.OutOrStdout(), cp.ID)
				}
				return nil
			}
			writeCatalogTable(cmd.OutOrStdout(), cat)
			return nil
		},
	}

	cmd.Flags().BoolVar(&ids, "ids", false, "print only capability ids")

	return cmd
}

// writeCatalogTable prints the catalog as a bordered table.
func writeCatalogTable(w io.Writer, cat *content.Catalog) {
	rows := make([][]string, 0, cat.Len())
	for _, cp := range cat.All() {
		rows = append(rows, []string{cp.ID, cp.Title, cp.Subtitle, strconv.Itoa(len(cp.Commands))})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Title", "Subtitle", "Cmds").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return listSelectedStyle
			case col == 2 || col == 3:
				return listDimStyle
			}
			return listNormalStyle
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, listDimStyle.Render(fmt.Sprintf("  %d capabilities", cat.Len())))
}

// =============================================================================
// show
// =============================================================================

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	var (
		raw       bool
		themeName string
		width     int
	)

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one capability in the terminal",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return completeIDs(cmd.Context(), c, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, err := c.catalog(ctx)
			if err != nil {
				return err
			}
			cp, err := cat.Get(args[0])
			if err != nil {
				return err
			}

			md := capabilityMarkdown(cp)
			if raw {
				_, err := io.WriteString(cmd.OutOrStdout(), md)
				return err
			}

			t, err := c.terminalTheme(ctx, themeName)
			if err != nil {
				return err
			}
			r, err := newMarkdownRenderer(t, width)
			if err != nil {
				return err
			}
			out, err := r.Render(md)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without styling")
	cmd.Flags().StringVar(&themeName, "theme", "", "light or dark (default: preference)")
	cmd.Flags().IntVar(&width, "width", 80, "word wrap width")

	return cmd
}

// terminalTheme returns the named theme, or the stored preference when name
// is empty.
func (c *CLI) terminalTheme(ctx context.Context, name string) (theme.Theme, error) {
	if name != "" {
		return theme.Parse(name)
	}
	pref, err := c.preference(ctx)
	if err != nil {
		return "", err
	}
	return pref.Current(), nil
}

// completeIDs offers capability ids for the first argument.
func completeIDs(ctx context.Context, c *CLI, args []string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cat, err := c.catalog(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ids := make([]string, 0, cat.Len())
	for _, cp := range cat.All() {
		ids = append(ids, cp.ID+"\t"+cp.Title)
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// =============================================================================
// llms
// =============================================================================

// llmsCommand creates the llms command.
func (c *CLI) llmsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "llms",
		Short: "Print the catalog as llms.txt",
		Long:  `Print the plain-text summary of the catalog that the site serves at /llms.txt.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog(cmd.Context())
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), content.LLMsTxt(cat))
			return err
		},
	}
}
