package site

import (
	"bytes"
	"context"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/incept5/eve-showcase/pkg/content"
	"github.com/incept5/eve-showcase/pkg/diagram"
	"github.com/incept5/eve-showcase/pkg/theme"
)

type stat struct{ Value, Label string }

var homeStats = []stat{
	{"5", "Agent Harnesses"},
	{"2", "Chat Channels"},
	{"2", "Identity Providers"},
	{"60+", "CLI Commands"},
}

type homePage struct {
	page
	Stats        []stat
	Capabilities []*content.Capability
}

type detailPage struct {
	page
	Cap      *content.Capability
	Diagrams []themedDiagram
	Manifest template.HTML
	Prev     *content.Capability
	Next     *content.Capability
}

type themedDiagram struct {
	Theme  theme.Theme
	Markup template.HTML
	Failed bool
}

type llmsPage struct {
	page
	Content string
}

// resolveTheme picks the theme for a request: ?theme=, then the cookie,
// then the server default. Invalid values are skipped.
func (s *Site) resolveTheme(r *http.Request) theme.Theme {
	if t, err := theme.Parse(r.URL.Query().Get("theme")); err == nil {
		return t
	}
	if c, err := r.Cookie(ThemeCookie); err == nil {
		if t, err := theme.Parse(c.Value); err == nil {
			return t
		}
	}
	return s.theme
}

func (s *Site) writeHome(w io.Writer, c *content.Catalog, t theme.Theme) error {
	return s.execute(w, "home.html", homePage{
		page:         s.newPage("Eve Horizon", "/", t),
		Stats:        homeStats,
		Capabilities: c.All(),
	})
}

// writeDetail renders the detail page in theme t with one diagram per entry
// of variants. The page's renderer is reused for each variant in turn. It
// fails only when ctx ends before a diagram settles or the template breaks;
// a failed render is shown inline.
func (s *Site) writeDetail(ctx context.Context, w io.Writer, c *content.Catalog, cp *content.Capability, t theme.Theme, variants []theme.Theme) error {
	r := diagram.NewRenderer(s.engine, diagram.WithLogger(s.logger))
	defer r.Close()

	prev, next := c.Neighbors(cp.ID)
	data := detailPage{
		page: s.newPage(cp.Title, "/"+cp.ID, t),
		Cap:  cp,
		Prev: prev,
		Next: next,
	}
	for _, vt := range variants {
		res, err := settle(ctx, r, cp.Diagram, vt)
		if err != nil {
			return err
		}
		data.Diagrams = append(data.Diagrams, themedDiagram{
			Theme:  vt,
			Markup: template.HTML(res.Markup),
			Failed: res.Failed(),
		})
	}
	if cp.ManifestExample != "" {
		data.Manifest = highlightYAML(cp.ManifestExample, t)
	}
	return s.execute(w, "detail.html", data)
}

func (s *Site) writeLLMsPage(w io.Writer, c *content.Catalog, t theme.Theme) error {
	return s.execute(w, "llms.html", llmsPage{
		page:    s.newPage("llms.txt", "/llms", t),
		Content: content.LLMsTxt(c),
	})
}

// respond buffers a page so template errors still produce a clean 500.
func (s *Site) respond(w http.ResponseWriter, r *http.Request, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		if r.Context().Err() != nil {
			s.logger.Debug("client went away", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
			return
		}
		s.logger.Error("render page", "path", r.URL.Path, "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Site) handleHome(w http.ResponseWriter, r *http.Request) {
	c, t := s.store.Catalog(), s.resolveTheme(r)
	s.respond(w, r, func(w io.Writer) error { return s.writeHome(w, c, t) })
}

func (s *Site) handleDetail(w http.ResponseWriter, r *http.Request) {
	c := s.store.Catalog()
	cp, ok := c.Lookup(chi.URLParam(r, "id"))
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	t := s.resolveTheme(r)
	s.respond(w, r, func(w io.Writer) error { return s.writeDetail(r.Context(), w, c, cp, t, []theme.Theme{t}) })
}

func (s *Site) handleLLMsPage(w http.ResponseWriter, r *http.Request) {
	c, t := s.store.Catalog(), s.resolveTheme(r)
	s.respond(w, r, func(w io.Writer) error { return s.writeLLMsPage(w, c, t) })
}

func (s *Site) handleLLMsTxt(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, content.LLMsTxt(s.store.Catalog()))
}

func (s *Site) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

// handleTheme flips the theme cookie and sends the visitor back to the
// page named by the "return" form field.
func (s *Site) handleTheme(w http.ResponseWriter, r *http.Request) {
	next := s.resolveTheme(r).Toggle()
	if err := r.ParseForm(); err == nil {
		if t, err := theme.Parse(r.PostForm.Get("theme")); err == nil {
			next = t
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     ThemeCookie,
		Value:    next.String(),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, safeReturn(r.PostForm.Get("return")), http.StatusSeeOther)
}

// safeReturn accepts only local absolute paths.
func safeReturn(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return "/"
	}
	u, err := url.Parse(target)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return "/"
	}
	return u.RequestURI()
}
