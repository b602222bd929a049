package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/incept5/eve-showcase/pkg/theme"
)

// themeCommand creates the theme command. Without a subcommand it prints
// the current theme.
func (c *CLI) themeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the theme preference",
		Long: `Show or change the stored theme preference.

The preference is kept in ~/.config/eveshow/preferences.toml and used by
show, browse, render and as the default of serve and build. When nothing is
stored, EVESHOW_THEME is used, then the terminal background.`,
		Args: cobra.NoArgs,
		RunE: c.runThemeGet,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the current theme",
		Args:  cobra.NoArgs,
		RunE:  c.runThemeGet,
	})
	cmd.AddCommand(c.themeSetCommand())
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and dark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pref, err := c.preference(cmd.Context())
			if err != nil {
				return err
			}
			next, err := pref.Toggle(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), next)
			return nil
		},
	})

	return cmd
}

func (c *CLI) runThemeGet(cmd *cobra.Command, args []string) error {
	pref, err := c.preference(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), pref.Current())
	return nil
}

// themeSetCommand creates the "theme set" subcommand.
func (c *CLI) themeSetCommand() *cobra.Command {
	names := make([]string, len(theme.All))
	for i, t := range theme.All {
		names[i] = t.String()
	}

	return &cobra.Command{
		Use:       "set <light|dark>",
		Short:     "Store a theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := theme.Parse(args[0])
			if err != nil {
				return err
			}
			pref, err := c.preference(cmd.Context())
			if err != nil {
				return err
			}
			if err := pref.Set(cmd.Context(), t); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}
}
