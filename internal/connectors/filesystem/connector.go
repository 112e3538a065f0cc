// Package filesystem provides a Connector that reads documents from a local
// directory and watches it with fsnotify.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Default configuration values.
const (
	// DefaultMaxFileSize matches the HTTP upload limit.
	DefaultMaxFileSize = 10 << 20

	// DefaultDebounce coalesces the burst of events a single save produces.
	DefaultDebounce = 100 * time.Millisecond
)

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("filesystem connector closed")

// Connector reads files from a root directory.
type Connector struct {
	rootPath    string
	recursive   bool
	maxFileSize int64
	debounce    time.Duration

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// Option configures a Connector.
type Option func(*Connector)

// WithRecursive descends into subdirectories.
func WithRecursive(recursive bool) Option {
	return func(c *Connector) {
		c.recursive = recursive
	}
}

// WithMaxFileSize skips larger files.
func WithMaxFileSize(n int64) Option {
	return func(c *Connector) {
		if n > 0 {
			c.maxFileSize = n
		}
	}
}

// WithDebounce sets how long Watch waits for a path to settle.
func WithDebounce(d time.Duration) Option {
	return func(c *Connector) {
		if d >= 0 {
			c.debounce = d
		}
	}
}

// New creates a filesystem connector. The path is not checked until
// Validate, FullSync or Watch.
func New(rootPath string, opts ...Option) *Connector {
	c := &Connector{
		rootPath:    rootPath,
		maxFileSize: DefaultMaxFileSize,
		debounce:    DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Type returns "filesystem".
func (c *Connector) Type() string {
	return "filesystem"
}

// Root returns the directory being read.
func (c *Connector) Root() string {
	return c.rootPath
}

// Validate checks the root exists and is a directory.
func (c *Connector) Validate(_ context.Context) error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", c.rootPath)
	}
	return nil
}

// FullSync walks the root and emits each visible regular file. Hidden files
// and directories are skipped. Per-file read failures go to the error
// channel and the walk continues, so callers must drain both channels.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		if err := c.Validate(ctx); err != nil {
			errs <- err
			return
		}

		walkErr := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				c.sendErr(ctx, errs, err)
				return nil
			}
			if path == c.rootPath {
				return nil
			}
			if isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if !c.recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			doc, err := c.read(path)
			if err != nil {
				c.sendErr(ctx, errs, err)
				return nil
			}

			select {
			case docs <- *doc:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if walkErr != nil {
			c.sendErr(ctx, errs, walkErr)
		}
	}()

	return docs, errs
}

// Watch starts an fsnotify watcher on the root (and subdirectories when
// recursive). Events for a path are debounced, then the file is stat'ed:
// present means created or updated, absent means deleted. The channel is
// closed when ctx is cancelled or Close is called.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}
	if c.watcher != nil {
		return nil, fmt.Errorf("filesystem connector already watching %s", c.rootPath)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	known := make(map[string]bool)
	err = filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path != c.rootPath && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != c.rootPath && !c.recursive {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		known[path] = true
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", c.rootPath, err)
	}

	c.watcher = watcher
	changes := make(chan domain.RawDocumentChange)
	go c.watchLoop(ctx, watcher, known, changes)

	logger.Debug("Watching %s (recursive=%v)", c.rootPath, c.recursive)
	return changes, nil
}

func (c *Connector) watchLoop(
	ctx context.Context,
	watcher *fsnotify.Watcher,
	known map[string]bool,
	changes chan<- domain.RawDocumentChange,
) {
	defer close(changes)
	defer func() {
		c.mu.Lock()
		if c.watcher == watcher {
			c.watcher = nil
		}
		c.mu.Unlock()
		watcher.Close()
	}()

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(c.tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if isHidden(filepath.Base(event.Name)) {
				continue
			}
			if event.Has(fsnotify.Create) && c.recursive {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						logger.Warn("watch %s: %v", event.Name, err)
					}
					continue
				}
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error: %v", err)

		case now := <-ticker.C:
			for path, at := range pending {
				if now.Sub(at) < c.debounce {
					continue
				}
				delete(pending, path)

				change, ok := c.resolve(path, known)
				if !ok {
					continue
				}
				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// resolve turns a settled path into a change event.
func (c *Connector) resolve(path string, known map[string]bool) (domain.RawDocumentChange, bool) {
	info, err := os.Stat(path)
	if err != nil {
		if !known[path] {
			return domain.RawDocumentChange{}, false
		}
		delete(known, path)
		return domain.RawDocumentChange{
			Type:     domain.ChangeDeleted,
			Document: domain.RawDocument{URI: path},
		}, true
	}
	if !info.Mode().IsRegular() {
		return domain.RawDocumentChange{}, false
	}

	doc, err := c.read(path)
	if err != nil {
		logger.Warn("read %s: %v", path, err)
		return domain.RawDocumentChange{}, false
	}

	changeType := domain.ChangeUpdated
	if !known[path] {
		changeType = domain.ChangeCreated
		known[path] = true
	}
	return domain.RawDocumentChange{Type: changeType, Document: *doc}, true
}

func (c *Connector) tick() time.Duration {
	if c.debounce <= 0 {
		return 10 * time.Millisecond
	}
	return c.debounce / 2
}

// Close stops any active watch. Safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

// ReadFile loads a single file as a raw document, enforcing the size limit.
func (c *Connector) ReadFile(path string) (*domain.RawDocument, error) {
	return c.read(path)
}

func (c *Connector) read(path string) (*domain.RawDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > c.maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d",
			domain.ErrInvalidInput, path, info.Size(), c.maxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &domain.RawDocument{URI: path, Content: content}, nil
}

func (c *Connector) sendErr(ctx context.Context, errs chan<- error, err error) {
	select {
	case errs <- err:
	case <-ctx.Done():
	}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
