package site

import (
	"context"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/incept5/eve-showcase/pkg/buildinfo"
	"github.com/incept5/eve-showcase/pkg/content"
	"github.com/incept5/eve-showcase/pkg/diagram"
	"github.com/incept5/eve-showcase/pkg/errors"
	"github.com/incept5/eve-showcase/pkg/render"
	"github.com/incept5/eve-showcase/pkg/theme"
)

//go:embed templates static
var assets embed.FS

// ThemeCookie stores the visitor's theme.
const ThemeCookie = "eve-showcase-theme"

// Options configures a Site.
type Options struct {
	// Store provides the catalog. Required.
	Store *content.Store
	// Engine renders diagrams. Required.
	Engine render.Engine
	// Theme is used when neither the query nor the cookie picks one.
	// Defaults to theme.Default.
	Theme  theme.Theme
	Logger *log.Logger
	// RateLimit is the sustained diagram requests per second per client;
	// zero disables limiting.
	RateLimit float64
	RateBurst int
}

// Site holds parsed templates and the dependencies shared by handlers.
type Site struct {
	store   *content.Store
	engine  render.Engine
	theme   theme.Theme
	logger  *log.Logger
	limiter *clientLimiter
	pages   map[string]*template.Template
	static  bool // pages are written by Export
}

// New parses the embedded templates and returns a Site.
func New(opts Options) (*Site, error) {
	if opts.Store == nil || opts.Engine == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "site needs a catalog store and a render engine")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if !opts.Theme.Valid() {
		opts.Theme = theme.Default
	}

	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	s := &Site{
		store:  opts.Store,
		engine: opts.Engine,
		theme:  opts.Theme,
		logger: opts.Logger,
		pages:  pages,
	}
	if opts.RateLimit > 0 {
		s.limiter = newClientLimiter(opts.RateLimit, opts.RateBurst)
	}
	return s, nil
}

var pageFiles = []string{"home.html", "detail.html", "llms.html"}

func parseTemplates() (map[string]*template.Template, error) {
	base, err := template.New("").Funcs(funcMap).ParseFS(assets,
		"templates/base.html",
		"templates/partials/*.html",
	)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse base templates")
	}
	// Each page gets its own clone so its {{define "content"}} does not
	// collide with the others.
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, pf := range pageFiles {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if pages[pf], err = clone.ParseFS(assets, "templates/"+pf); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse %s", pf)
		}
	}
	return pages, nil
}

// Handler returns the router with all routes and middleware.
func (s *Site) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	staticFS, _ := fs.Sub(assets, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	r.Get("/", s.handleHome)
	r.Get("/healthz", s.handleHealth)
	r.Get("/llms", s.handleLLMsPage)
	r.Get("/llms.txt", s.handleLLMsTxt)
	r.Post("/theme", s.handleTheme)
	r.Route("/diagrams", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.middleware)
		}
		r.Get("/{name}", s.handleDiagram)
	})
	r.Get("/{id}", s.handleDetail)

	return r
}

// renderDiagram runs one renderer for the lifetime of the call. It returns
// ctx's error when the caller goes away before the diagram settles.
func (s *Site) renderDiagram(ctx context.Context, source string, t theme.Theme) (*diagram.Result, error) {
	r := diagram.NewRenderer(s.engine, diagram.WithLogger(s.logger))
	defer r.Close()
	return settle(ctx, r, source, t)
}

// settle issues a request on r and waits for its result.
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

// page is the data every template sees.
type page struct {
	Title   string
	Theme   theme.Theme
	Toggle  theme.Theme
	Path    string
	Static  bool
	Version string
}

func (s *Site) newPage(title, path string, t theme.Theme) page {
	return page{
		Title:   title,
		Theme:   t,
		Toggle:  t.Toggle(),
		Path:    path,
		Static:  s.static,
		Version: buildinfo.Version,
	}
}

func (s *Site) execute(w io.Writer, name string, data any) error {
	tmpl, ok := s.pages[name]
	if !ok {
		return errors.New(errors.ErrCodeInternal, "template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}
