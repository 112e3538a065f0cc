package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure ImportService implements the interface.
var _ driving.ImportService = (*ImportService)(nil)

// ConnectorFactory opens a connector rooted at dir.
type ConnectorFactory func(dir string, recursive bool) driven.Connector

// ImportService turns files into uploads. Files are decoded by the
// normaliser registry and identified by their absolute path, so importing
// the same file twice replaces the earlier document.
type ImportService struct {
	registry   driven.NormaliserRegistry
	documents  driving.DocumentService
	connectors ConnectorFactory
}

// NewImportService creates an import service.
func NewImportService(
	registry driven.NormaliserRegistry,
	documents driving.DocumentService,
	connectors ConnectorFactory,
) *ImportService {
	return &ImportService{
		registry:   registry,
		documents:  documents,
		connectors: connectors,
	}
}

// PathDocumentID returns the stable document ID for a file path.
func PathDocumentID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(path))).String()
}

// ImportPaths decodes and uploads every file under paths. Unsupported files
// found while walking a directory are skipped; unsupported files named
// explicitly are errors.
func (s *ImportService) ImportPaths(
	ctx context.Context, paths []string, opts driving.ImportOptions,
) ([]domain.Document, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no paths given", domain.ErrInvalidInput)
	}
	if opts.ID != "" && len(paths) != 1 {
		return nil, fmt.Errorf("%w: --id needs exactly one file", domain.ErrInvalidInput)
	}

	var (
		reqs []driving.UploadRequest
		errs []error
	)

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if !info.IsDir() {
			req, err := s.decodeFile(ctx, path)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if opts.ID != "" {
				req.ID = opts.ID
			}
			reqs = append(reqs, *req)
			continue
		}

		if opts.ID != "" {
			return nil, fmt.Errorf("%w: --id cannot be used with a directory", domain.ErrInvalidInput)
		}
		dirReqs, dirErrs := s.decodeDir(ctx, path, opts.Recursive)
		reqs = append(reqs, dirReqs...)
		errs = append(errs, dirErrs...)
	}

	if len(reqs) == 0 {
		return nil, errors.Join(errs...)
	}

	docs, err := s.documents.UploadBatch(ctx, reqs)
	errs = append(errs, err)
	return docs, errors.Join(errs...)
}

// ImportRaw decodes raw and uploads it.
func (s *ImportService) ImportRaw(ctx context.Context, raw *domain.RawDocument, id string) (*domain.Document, error) {
	req, err := s.decode(ctx, raw)
	if err != nil {
		return nil, err
	}
	req.ID = id
	return s.documents.Upload(ctx, *req)
}

// Watch uploads the current contents of dir, then applies changes as they
// happen. Files whose content is unchanged since they were last indexed are
// not re-embedded.
func (s *ImportService) Watch(
	ctx context.Context, dir string, opts driving.ImportOptions, report func(driving.WatchEvent),
) error {
	if report == nil {
		report = func(driving.WatchEvent) {}
	}

	conn := s.connectors(dir, opts.Recursive)
	defer conn.Close()

	changes, err := conn.Watch(ctx)
	if err != nil {
		return err
	}

	logger.Section("Watch")
	docs, errs := conn.FullSync(ctx)
	for docs != nil || errs != nil {
		select {
		case raw, ok := <-docs:
			if !ok {
				docs = nil
				continue
			}
			report(s.apply(ctx, domain.RawDocumentChange{Type: domain.ChangeCreated, Document: raw}))
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			report(driving.WatchEvent{Change: domain.ChangeCreated, Err: err})
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			report(s.apply(ctx, change))
		}
	}
}

func (s *ImportService) apply(ctx context.Context, change domain.RawDocumentChange) driving.WatchEvent {
	path := change.Document.URI
	event := driving.WatchEvent{Path: path, Change: change.Type}
	id := PathDocumentID(path)

	if change.Type == domain.ChangeDeleted {
		if err := s.documents.Remove(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			event.Err = err
		}
		return event
	}

	req, err := s.decode(ctx, &change.Document)
	if err != nil {
		event.Err = fmt.Errorf("%s: %w", path, err)
		return event
	}
	req.ID = id

	if existing, err := s.documents.Get(ctx, id); err == nil &&
		existing.State == domain.StateIndexed && existing.Content == req.Content {
		logger.Debug("Unchanged: %s", path)
		event.Document = existing
		return event
	}

	event.Document, event.Err = s.documents.Upload(ctx, *req)
	return event
}

func (s *ImportService) decodeFile(ctx context.Context, path string) (*driving.UploadRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	req, err := s.decode(ctx, &domain.RawDocument{URI: path, Content: content})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	req.ID = PathDocumentID(path)
	return req, nil
}

func (s *ImportService) decodeDir(ctx context.Context, dir string, recursive bool) ([]driving.UploadRequest, []error) {
	conn := s.connectors(dir, recursive)
	defer conn.Close()

	var (
		reqs []driving.UploadRequest
		errs []error
	)

	docs, scanErrs := conn.FullSync(ctx)
	for docs != nil || scanErrs != nil {
		select {
		case raw, ok := <-docs:
			if !ok {
				docs = nil
				continue
			}
			req, err := s.decode(ctx, &raw)
			if errors.Is(err, domain.ErrUnsupportedType) {
				logger.Debug("Skipping %s: %v", raw.URI, err)
				continue
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", raw.URI, err))
				continue
			}
			req.ID = PathDocumentID(raw.URI)
			reqs = append(reqs, *req)
		case err, ok := <-scanErrs:
			if !ok {
				scanErrs = nil
				continue
			}
			errs = append(errs, err)
		}
	}

	logger.Debug("Found %d documents in %s", len(reqs), dir)
	return reqs, errs
}

func (s *ImportService) decode(ctx context.Context, raw *domain.RawDocument) (*driving.UploadRequest, error) {
	result, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, err
	}
	name := result.Name
	if name == "" {
		name = filepath.Base(raw.URI)
	}
	return &driving.UploadRequest{
		Name:     name,
		Content:  result.Content,
		MIMEType: result.MIMEType,
	}, nil
}
