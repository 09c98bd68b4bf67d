package view

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"hellomvc/internal/config"
	"hellomvc/internal/storage"
)

//go:embed templates/*.html
var embeddedFS embed.FS

// ErrUnknownSource is returned by NewSource for an unrecognized VIEWS_SOURCE.
var ErrUnknownSource = errors.New("unknown views source")

// Source yields raw template files keyed by template name. The name is the
// slash-separated path relative to the source root without the extension,
// so "partials/footer.html" becomes "partials/footer".
type Source interface {
	Name() string
	Files(ctx context.Context) (map[string][]byte, error)
	Check(ctx context.Context) error
}

// NewSource builds the Source selected by cfg. store is only consulted for
// the s3 source and may be nil otherwise.
func NewSource(cfg config.ViewsConfig, store storage.Storage) (Source, error) {
	switch cfg.Source {
	case config.ViewsSourceEmbed, "":
		return Embedded(), nil
	case config.ViewsSourceDir:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("views dir is required")
		}
		return FromDir(cfg.Dir, cfg.Ext), nil
	case config.ViewsSourceS3:
		if store == nil {
			return nil, fmt.Errorf("views source %q requires object storage", cfg.Source)
		}
		return FromStorage(store, cfg.Prefix, cfg.Ext), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
	}
}

type fsSource struct {
	name string
	fsys fs.FS
	ext  string
}

// FromFS reads every file ending in ext below the root of fsys.
func FromFS(name string, fsys fs.FS, ext string) Source {
	return &fsSource{name: name, fsys: fsys, ext: ext}
}

// FromDir reads templates from a directory on disk.
func FromDir(dir, ext string) Source {
	return FromFS(config.ViewsSourceDir, os.DirFS(dir), ext)
}

// Embedded returns the templates compiled into the binary.
func Embedded() Source {
	sub, err := fs.Sub(embeddedFS, "templates")
	if err != nil {
		// fs.Sub only fails on an invalid path literal.
		panic(err)
	}
	return FromFS(config.ViewsSourceEmbed, sub, ".html")
}

func (s *fsSource) Name() string { return s.name }

func (s *fsSource) Files(ctx context.Context) (map[string][]byte, error) {
	files := make(map[string][]byte)
	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name, ok := templateName(p, s.ext)
		if !ok {
			return nil
		}
		b, err := fs.ReadFile(s.fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		files[name] = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (s *fsSource) Check(context.Context) error {
	if _, err := fs.Stat(s.fsys, "."); err != nil {
		return fmt.Errorf("%s source unavailable: %w", s.name, err)
	}
	return nil
}

type storageSource struct {
	store  storage.Storage
	prefix string
	ext    string
}

// FromStorage reads templates stored as objects under prefix.
func FromStorage(store storage.Storage, prefix, ext string) Source {
	return &storageSource{store: store, prefix: prefix, ext: ext}
}

func (s *storageSource) Name() string { return config.ViewsSourceS3 }

func (s *storageSource) Files(ctx context.Context) (map[string][]byte, error) {
	objects, err := s.store.List(ctx, s.prefix)
	if err != nil {
		return nil, err
	}

	files := make(map[string][]byte, len(objects))
	for _, obj := range objects {
		rel := strings.TrimPrefix(strings.TrimPrefix(obj.Key, s.prefix), "/")
		name, ok := templateName(rel, s.ext)
		if !ok {
			continue
		}
		b, err := s.read(ctx, obj.Key)
		if err != nil {
			return nil, err
		}
		files[name] = b
	}
	return files, nil
}

func (s *storageSource) read(ctx context.Context, key string) ([]byte, error) {
	rc, _, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return b, nil
}

func (s *storageSource) Check(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func templateName(p, ext string) (string, bool) {
	p = path.Clean(p)
	if ext == "" || len(p) <= len(ext) || !strings.HasSuffix(p, ext) {
		return "", false
	}
	return strings.TrimSuffix(p, ext), true
}
