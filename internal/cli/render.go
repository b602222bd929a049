package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/incept5/eve-showcase/pkg/diagram"
	"github.com/incept5/eve-showcase/pkg/errors"
	"github.com/incept5/eve-showcase/pkg/theme"
)

// renderOpts holds the render flags.
type renderOpts struct {
	output string // output file, "-" for stdout
	theme  string
}

// renderCommand creates the render command.
//
// The argument is a capability id, or a path to a file holding diagram
// source. Without -o the SVG is written to <name>.<theme>.svg.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <id|file>",
		Short: "Render one diagram to SVG",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			ids, dir := completeIDs(cmd.Context(), c, args)
			return ids, dir &^ cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default <name>.<theme>.svg)")
	cmd.Flags().StringVarP(&opts.theme, "theme", "t", "", "light or dark (default: preference)")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, stdout io.Writer, arg string, opts renderOpts) error {
	prog := newProgress(c.Logger)

	if ext := filepath.Ext(opts.output); opts.output != "-" && ext != "" && !strings.EqualFold(ext, ".svg") {
		return errors.New(errors.ErrCodeUnsupported, "cannot write %s: only SVG output is supported", ext)
	}

	t, err := c.terminalTheme(ctx, opts.theme)
	if err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	name, source, err := c.diagramSource(ctx, arg)
	if err != nil {
		return err
	}

	eng, err := c.newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	r := diagram.NewRenderer(eng,
		diagram.WithLogger(c.Logger),
		diagram.WithObserver(func(s diagram.State) {
			if s.Loading {
				c.Logger.Debug("Rendering", "name", name, "theme", s.Request.Theme, "request", s.RequestID)
			}
		}),
	)
	defer r.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s (%s)...", name, t))
	spinner.Start()
	res, err := settle(ctx, r, source, t)
	spinner.Stop()
	if err != nil {
		return err
	}
	if res.Failed() {
		return errors.New(errors.ErrCodeRenderFailed, "render %s: %s", name, res.Err)
	}

	path := opts.output
	if path == "" {
		path = fmt.Sprintf("%s.%s.svg", name, t)
	}
	if path == "-" {
		_, err := stdout.Write(res.Markup)
		return err
	}
	if err := writeOutput(path, res.Markup); err != nil {
		return err
	}

	printSuccess("Rendered %s", name)
	printFile(path)
	prog.done("Rendered diagram", "name", name, "theme", t, "bytes", len(res.Markup))
	return nil
}

// diagramSource resolves the render argument. An existing file is read as
// diagram source; anything else is looked up as a capability id.
func (c *CLI) diagramSource(ctx context.Context, arg string) (name, source string, err error) {
	if fi, statErr := os.Stat(arg); statErr == nil && !fi.IsDir() {
		data, err := os.ReadFile(arg)
		if err != nil {
			return "", "", errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", arg)
		}
		name = strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg))
		return name, string(data), nil
	}

	cat, err := c.catalog(ctx)
	if err != nil {
		return "", "", err
	}
	cp, err := cat.Get(arg)
	if err != nil {
		return "", "", err
	}
	return cp.ID, cp.Diagram, nil
}

// settle starts a render and waits for its result.
func settle(ctx context.Context, r *diagram.Renderer, source string, t theme.Theme) (*diagram.Result, error) {
	if err := r.Render(ctx, source, t); err != nil {
		return nil, err
	}
	st, err := r.Settle(ctx)
	if err != nil {
		return nil, err
	}
	return st.Result, nil
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
