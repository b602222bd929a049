package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/incept5/eve-showcase/pkg/content"
	"github.com/incept5/eve-showcase/pkg/site"
	"github.com/incept5/eve-showcase/pkg/theme"
)

const defaultBuildDir = "dist"

// buildOpts holds the build flags.
type buildOpts struct {
	concurrency int
	theme       string
	strict      bool
}

// buildCommand creates the build command that exports the static site.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build [dir]",
		Short: "Export the showcase as a static site",
		Long: `Export the showcase as static files (default ./dist).

Every page carries both diagram themes and switches between them in the
browser. Standalone SVGs are written to diagrams/<id>.<theme>.svg.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := defaultBuildDir
			if len(args) == 1 {
				dir = args[0]
			}
			return c.runBuild(cmd.Context(), dir, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "j", 0, "parallel renders (default: number of CPUs)")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "initial page theme: light or dark (default: preference)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when any diagram does not render")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, dir string, opts buildOpts) error {
	prog := newProgress(c.Logger)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	catalog, err := c.openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	eng, err := c.newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	t, err := c.serverTheme(ctx, opts.theme)
	if err != nil {
		return err
	}

	s, err := site.New(site.Options{
		Store:  content.NewStore(catalog, content.WithStoreLogger(c.Logger)),
		Engine: eng,
		Theme:  t,
		Logger: c.Logger,
	})
	if err != nil {
		return err
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %d capabilities in %d themes...", catalog.Len(), len(theme.All)))
	spinner.Start()
	res, err := s.Export(ctx, dir, site.ExportOptions{Concurrency: opts.concurrency, Theme: t})
	spinner.Stop()
	if err != nil {
		return err
	}

	printSuccess("Exported %d files", len(res.Files))
	printStats(
		fmt.Sprintf("%d capabilities", catalog.Len()),
		fmt.Sprintf("%d diagrams", catalog.Len()*len(theme.All)-len(res.Failed)),
		prog.elapsed().String(),
	)
	printFile(filepath.Join(dir, "index.html"))
	for _, name := range res.Failed {
		printWarning("Diagram %s did not render", name)
	}
	prog.done("Exported site", "dir", dir, "files", len(res.Files), "failed", len(res.Failed))

	if len(res.Failed) > 0 && opts.strict {
		return fmt.Errorf("%d diagrams failed to render", len(res.Failed))
	}

	printNewline()
	printNextStep("Preview", "python3 -m http.server -d "+dir)
	return nil
}
