package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/incept5/eve-showcase/pkg/content"
	"github.com/incept5/eve-showcase/pkg/site"
	"github.com/incept5/eve-showcase/pkg/theme"
)

// serveOpts holds the serve flags.
type serveOpts struct {
	listen string
	theme  string
	watch  bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the showcase over HTTP",
		Long: `Serve the showcase site.

Pages are rendered per request. Diagrams go through the configured cache, so
a restart with the file or redis backend serves them without re-rendering.
With --watch the catalog file is reloaded when it changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.listen, "listen", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "default theme for visitors without a cookie: light or dark")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload the catalog file when it changes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cmd *cobra.Command, opts serveOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("listen") {
		cfg.Server.Listen = opts.listen
	}
	if cmd.Flags().Changed("theme") {
		cfg.Server.Theme = opts.theme
	}
	if cmd.Flags().Changed("watch") {
		cfg.Content.Watch = opts.watch
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	catalog, err := c.openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	store := content.NewStore(catalog,
		content.WithStoreLogger(c.Logger),
		content.OnReload(func(cat *content.Catalog) {
			c.Logger.Info("Catalog reloaded", "capabilities", cat.Len())
		}),
	)

	eng, err := c.newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	defTheme, err := c.serverTheme(ctx, cfg.Server.Theme)
	if err != nil {
		return err
	}

	s, err := site.New(site.Options{
		Store:     store,
		Engine:    eng,
		Theme:     defTheme,
		Logger:    c.Logger,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
	})
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.Listen, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	printSuccess("Serving %d capabilities", catalog.Len())
	printKeyValue("URL", StyleLink.Render("http://"+ln.Addr().String()))
	printKeyValue("Theme", defTheme.String())
	printKeyValue("Cache", cfg.Cache.Backend)
	if cfg.Content.Watch {
		printKeyValue("Watching", cfg.Content.Source)
	}
	printNewline()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.Content.Watch {
		g.Go(func() error {
			return store.Watch(gctx, cfg.Content.Source)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		c.Logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	// A signal stops the server cleanly; report success, not cancellation.
	return nil
}

// serverTheme resolves the default theme for visitors: the explicit setting
// wins, then the stored preference.
func (c *CLI) serverTheme(ctx context.Context, configured string) (theme.Theme, error) {
	if configured != "" {
		return theme.Parse(configured)
	}
	pref, err := c.preference(ctx)
	if err != nil {
		return "", err
	}
	return pref.Current(), nil
}
