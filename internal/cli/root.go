// Package cli implements the eveshow command-line interface.
//
// eveshow serves the Eve Horizon capability showcase, exports it as a static
// site and browses the same catalog in the terminal. The CLI is built with
// cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - serve: run the HTTP site
//   - build: export the site to a directory
//   - list, show, browse: read the catalog in the terminal
//   - render: render one diagram to SVG
//   - llms: print llms.txt
//   - theme: read or change the theme preference
//   - cache: manage the diagram cache
//
// # Configuration
//
// Settings come from ~/.config/eveshow/config.toml, EVESHOW_* environment
// variables and the global flags --config, --content and --no-cache, in
// increasing order of precedence. --verbose (-v) enables debug logging and
// logs render, cache and HTTP events.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/incept5/eve-showcase/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "eveshow serves the Eve Horizon capability showcase",
		Long:         `eveshow serves, exports and browses the Eve Horizon capability showcase: a catalog of platform capabilities, each with a rendered architecture diagram, details and CLI reference.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default ~/.config/eveshow/config.toml)")
	flags.StringVar(&c.contentSrc, "content", "", "catalog file or http(s) URL (default: embedded catalog)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the diagram cache")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.llmsCommand())
	root.AddCommand(c.themeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
