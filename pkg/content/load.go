package content

import (
	"bytes"
	"context"
	_ "embed"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"
	"gopkg.in/yaml.v3"

	"github.com/incept5/eve-showcase/pkg/cache"
	"github.com/incept5/eve-showcase/pkg/errors"
	"github.com/incept5/eve-showcase/pkg/observability"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// maxCatalogSize bounds remote catalog bodies.
const maxCatalogSize = 4 << 20

type catalogFile struct {
	Capabilities []Capability `yaml:"capabilities"`
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Parse(bytes.NewReader(embeddedCatalog))
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
})

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	return defaultCatalog()
}

// Parse decodes and validates a YAML catalog. Unknown fields are errors so
// typos in hand-edited catalogs surface early.
func Parse(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f catalogFile
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "catalog is empty")
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode catalog")
	}
	return NewCatalog(f.Capabilities)
}

// LoadFile reads a catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "catalog file %s not found", path)
		}
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Open loads a catalog with a default [Loader].
func Open(ctx context.Context, src string) (*Catalog, error) {
	return NewLoader(LoaderOptions{}).Open(ctx, src)
}

// =============================================================================
// Loader
// =============================================================================

// LoaderOptions configures a Loader. Zero values pick defaults.
type LoaderOptions struct {
	Client *retryablehttp.Client
	// Cache keeps the last good copy of remote catalogs; it is served when
	// the remote cannot be reached.
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration // lifetime of cached remote copies, default 30 days
	Logger *log.Logger
}

// Loader opens catalogs from the embedded copy, files or URLs.
type Loader struct {
	client *retryablehttp.Client
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// NewLoader creates a loader.
func NewLoader(opts LoaderOptions) *Loader {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Client == nil {
		opts.Client = newHTTPClient(opts.Logger)
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * 24 * time.Hour
	}
	return &Loader{
		client: opts.Client,
		cache:  opts.Cache,
		keyer:  opts.Keyer,
		ttl:    opts.TTL,
		logger: opts.Logger,
	}
}

// Open dispatches on src: "" is the embedded catalog, http(s) URLs are
// fetched, anything else is a file path.
func (l *Loader) Open(ctx context.Context, src string) (*Catalog, error) {
	switch {
	case src == "":
		return Default(), nil
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.LoadURL(ctx, src)
	default:
		return LoadFile(src)
	}
}

// LoadURL fetches a catalog over HTTP, retrying transient failures. A
// successfully parsed body is cached; when the remote is unreachable the
// cached copy is used instead.
func (l *Loader) LoadURL(ctx context.Context, rawURL string) (*Catalog, error) {
	if err := errors.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	key := l.keyer.HTTPKey("catalog", rawURL)

	body, fetchErr := l.fetch(ctx, rawURL)
	if fetchErr == nil {
		c, err := Parse(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rawURL, err)
		}
		if err := l.cache.Set(ctx, key, body, l.ttl); err != nil {
			l.logger.Warn("cache remote catalog", "url", rawURL, "err", err)
		}
		return c, nil
	}

	if !errors.Is(fetchErr, errors.ErrCodeNetwork) && !errors.Is(fetchErr, errors.ErrCodeTimeout) {
		return nil, fetchErr
	}
	cached, hit, err := l.cache.Get(ctx, key)
	if err != nil || !hit {
		return nil, fetchErr
	}
	c, err := Parse(bytes.NewReader(cached))
	if err != nil {
		return nil, fetchErr
	}
	l.logger.Warn("remote catalog unavailable, using cached copy", "url", rawURL, "err", fetchErr)
	return c, nil
}

func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse catalog url")
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build catalog request")
	}
	req.Header.Set("Accept", "application/yaml, text/yaml, text/plain")

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, u.Host, u.Path)
	start := time.Now()

	resp, err := l.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, u.Host, u.Path, err)
		if isTimeout(err) {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "fetch catalog %s", rawURL)
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch catalog %s", rawURL)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, http.MethodGet, u.Host, u.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeNotFound, "catalog %s not found", rawURL)
	case resp.StatusCode == http.StatusTooManyRequests:
		limited := &errors.RateLimitedError{RetryAfter: retryAfter(resp.Header.Get("Retry-After"))}
		return nil, errors.Wrap(errors.ErrCodeNetwork, limited, "fetch catalog %s", rawURL)
	case resp.StatusCode >= 500:
		return nil, errors.New(errors.ErrCodeNetwork, "fetch catalog %s: HTTP %d", rawURL, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "fetch catalog %s: HTTP %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogSize+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "read catalog %s", rawURL)
	}
	if len(body) > maxCatalogSize {
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "catalog %s exceeds %d bytes", rawURL, maxCatalogSize)
	}
	return body, nil
}

func newHTTPClient(logger *log.Logger) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = 15 * time.Second
	client.Logger = retryLogger{logger.WithPrefix("http")}
	// Hand the last response back so status codes map to error codes.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return client
}

// isTimeout reports whether err is a deadline or transport timeout.
func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return stderrors.As(err, &ne) && ne.Timeout()
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// retryLogger adapts a charmbracelet logger to retryablehttp.LeveledLogger.
type retryLogger struct{ l *log.Logger }

func (r retryLogger) Error(msg string, kv ...any) { r.l.Error(msg, kv...) }
func (r retryLogger) Warn(msg string, kv ...any)  { r.l.Warn(msg, kv...) }
func (r retryLogger) Info(msg string, kv ...any)  { r.l.Debug(msg, kv...) }
func (r retryLogger) Debug(msg string, kv ...any) { r.l.Debug(msg, kv...) }

var _ retryablehttp.LeveledLogger = retryLogger{}
