package view

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// layoutFunc is the template function a layout calls to include the page.
const layoutFunc = "embed"

var (
	// ErrTemplateNotFound is returned when a page or layout name is not in the loaded set.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrNotLoaded is returned by Render and Check before a successful Load.
	ErrNotLoaded = errors.New("views not loaded")
)

// Engine renders named html/template views for Fiber. Templates are parsed
// once per Load and shared by all requests.
type Engine struct {
	source  Source
	reload  bool
	timeout time.Duration
	loc     *time.Location
	logOut  io.Writer
	funcs   template.FuncMap

	mu    sync.RWMutex
	root  *template.Template
	names []string
}

var _ fiber.Views = (*Engine)(nil)

type Option func(*Engine)

// WithReload re-reads the source before every render.
func WithReload(reload bool) Option {
	return func(e *Engine) { e.reload = reload }
}

// WithLocation sets the time zone used for log timestamps.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithLogWriter redirects the engine's JSON log lines.
func WithLogWriter(w io.Writer) Option {
	return func(e *Engine) {
		if w != nil {
			e.logOut = w
		}
	}
}

// WithFuncs registers extra template functions. The layout function name
// is reserved.
func WithFuncs(funcs template.FuncMap) Option {
	return func(e *Engine) {
		for k, v := range funcs {
			if k == layoutFunc {
				continue
			}
			e.funcs[k] = v
		}
	}
}

// New creates an Engine over src. Nothing is read until Load.
func New(src Source, opts ...Option) *Engine {
	e := &Engine{
		source:  src,
		timeout: 10 * time.Second,
		loc:     time.UTC,
		logOut:  os.Stdout,
		funcs: template.FuncMap{
			layoutFunc: func() (template.HTML, error) {
				return "", fmt.Errorf("%s called outside a layout", layoutFunc)
			},
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load parses every template of the source. On failure the previously
// loaded set stays in place. Without reload a loaded set is kept, so the
// call fiber.New makes after an explicit Load does not read the source again.
func (e *Engine) Load() error {
	if !e.reload && e.loaded() {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	return e.load(ctx)
}

func (e *Engine) load(ctx context.Context) error {
	start := time.Now()

	files, err := e.source.Files(ctx)
	if err != nil {
		e.logError(err, start)
		return fmt.Errorf("load %s views: %w", e.source.Name(), err)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)

	root := template.New("").Funcs(e.funcs)
	for _, name := range names {
		if _, err := root.New(name).Parse(string(files[name])); err != nil {
			e.logError(err, start)
			return fmt.Errorf("parse template %s: %w", name, err)
		}
	}

	e.mu.Lock()
	e.root = root
	e.names = names
	e.mu.Unlock()

	e.logJSON(map[string]any{
		"level":       "info",
		"component":   "views",
		"event":       "views_loaded",
		"source":      e.source.Name(),
		"templates":   len(names),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

// Render executes the named template with binding and writes it to w.
// With a layout, the layout is executed and calls {{ embed }} to include the
// page. Output is buffered so a failed render writes nothing.
func (e *Engine) Render(w io.Writer, name string, binding any, layout ...string) error {
	if e.reload {
		if err := e.Load(); err != nil {
			return err
		}
	}

	e.mu.RLock()
	root := e.root
	e.mu.RUnlock()
	if root == nil {
		return ErrNotLoaded
	}

	tmpl := root.Lookup(name)
	if tmpl == nil {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	// Pages run under the read lock so a layout render cannot rebind embed
	// underneath them; inside a page embed is always the outside-layout stub.
	var page bytes.Buffer
	e.mu.RLock()
	err := tmpl.Execute(&page, binding)
	e.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}

	if len(layout) == 0 || layout[0] == "" {
		_, err = page.WriteTo(w)
		return err
	}

	lay := root.Lookup(layout[0])
	if lay == nil {
		return fmt.Errorf("%w: layout %s", ErrTemplateNotFound, layout[0])
	}
	var buf bytes.Buffer
	if err := e.executeLayout(&buf, lay, template.HTML(page.String()), binding); err != nil {
		return fmt.Errorf("execute layout %s: %w", layout[0], err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// executeLayout runs lay with embed bound to the rendered page. Funcs
// rebinds the function map shared by the whole set, hence the write lock.
func (e *Engine) executeLayout(w io.Writer, lay *template.Template, page template.HTML, binding any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer lay.Funcs(template.FuncMap{layoutFunc: e.funcs[layoutFunc]})
	lay.Funcs(template.FuncMap{
		layoutFunc: func() (template.HTML, error) { return page, nil },
	})
	return lay.Execute(w, binding)
}

func (e *Engine) loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.root != nil
}

// Check reports whether the template source is reachable and a set has
// been loaded.
func (e *Engine) Check(ctx context.Context) error {
	if !e.loaded() {
		return ErrNotLoaded
	}
	return e.source.Check(ctx)
}

// Names lists the loaded template names in order.
func (e *Engine) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.names)
}

func (e *Engine) logError(err error, start time.Time) {
	e.logJSON(map[string]any{
		"level":         "error",
		"component":     "views",
		"event":         "views_load_failed",
		"source":        e.source.Name(),
		"error_message": err.Error(),
		"duration_ms":   time.Since(start).Milliseconds(),
	})
}

func (e *Engine) logJSON(data map[string]any) {
	data["ts"] = time.Now().In(e.loc).Format(time.RFC3339Nano)
	b, err := json.Marshal(data)
	if err != nil {
		return
	}
	b = append(b, '\n')
	_, _ = e.logOut.Write(b)
}
