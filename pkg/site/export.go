package site

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/incept5/eve-showcase/pkg/content"
	"github.com/incept5/eve-showcase/pkg/errors"
	"github.com/incept5/eve-showcase/pkg/theme"
)

// ExportOptions configures Export.
type ExportOptions struct {
	// Concurrency bounds parallel page and diagram renders. Defaults to
	// the number of CPUs.
	Concurrency int
	// Theme is the initial theme of exported pages. Defaults to the site
	// theme.
	Theme theme.Theme
}

// ExportResult summarizes an export.
type ExportResult struct {
	Files  []string // written paths relative to the output directory, sorted
	Failed []string // "<id>.<theme>" for diagrams that did not render
}

// Export writes a static copy of the site into dir:
//
//	index.html
//	<id>/index.html           detail pages carrying both diagram themes
//	llms/index.html, llms.txt
//	diagrams/<id>.<theme>.svg
//	static/...
//
// A diagram that fails to render is shown inline on its page, left out of
// diagrams/ and listed in ExportResult.Failed.
func (s *Site) Export(ctx context.Context, dir string, opts ExportOptions) (*ExportResult, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	if !opts.Theme.Valid() {
		opts.Theme = s.theme
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create output dir")
	}

	st := *s
	st.static = true
	ex := &exporter{site: &st, dir: dir}
	c := s.store.Catalog()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	g.Go(func() error {
		return ex.page(gctx, "index.html", func(w io.Writer) error { return st.writeHome(w, c, opts.Theme) })
	})
	g.Go(func() error {
		return ex.page(gctx, "llms/index.html", func(w io.Writer) error { return st.writeLLMsPage(w, c, opts.Theme) })
	})
	g.Go(func() error {
		return ex.write("llms.txt", []byte(content.LLMsTxt(c)))
	})
	g.Go(func() error { return ex.assets() })

	for _, cp := range c.All() {
		g.Go(func() error {
			return ex.page(gctx, cp.ID+"/index.html", func(w io.Writer) error {
				return st.writeDetail(gctx, w, c, cp, opts.Theme, theme.All)
			})
		})
		for _, t := range theme.All {
			g.Go(func() error { return ex.diagram(gctx, cp, t) })
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(ex.res.Files)
	sort.Strings(ex.res.Failed)
	return &ex.res, nil
}

type exporter struct {
	site *Site
	dir  string

	mu  sync.Mutex
	res ExportResult
}

func (e *exporter) page(ctx context.Context, rel string, write func(io.Writer) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "render %s", rel)
	}
	return e.write(rel, buf.Bytes())
}

func (e *exporter) diagram(ctx context.Context, cp *content.Capability, t theme.Theme) error {
	res, err := e.site.renderDiagram(ctx, cp.Diagram, t)
	if err != nil {
		return err
	}
	name := cp.ID + "." + t.String()
	if res.Failed() {
		e.site.logger.Warn("diagram failed", "id", cp.ID, "theme", t, "err", res.Err)
		e.mu.Lock()
		e.res.Failed = append(e.res.Failed, name)
		e.mu.Unlock()
		return nil
	}
	return e.write("diagrams/"+name+".svg", res.Markup)
}

func (e *exporter) assets() error {
	return fs.WalkDir(assets, "static", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(assets, p)
		if err != nil {
			return err
		}
		return e.write(path.Clean(p), data)
	})
}

// write stores data at rel below the output directory.
func (e *exporter) write(rel string, data []byte) error {
	if err := errors.ValidatePath(rel); err != nil {
		return err
	}
	full := filepath.Join(e.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return err
	}
	e.mu.Lock()
	e.res.Files = append(e.res.Files, rel)
	e.mu.Unlock()
	return nil
}
