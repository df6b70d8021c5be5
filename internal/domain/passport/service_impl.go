package passport

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"path"
	"time"

	"passport-admin-go/internal/domain/record"
	"passport-admin-go/internal/pkg/assembler"
	"passport-admin-go/internal/pkg/fetch"
	"passport-admin-go/internal/pkg/layout"
	"passport-admin-go/internal/pkg/logger"
	"passport-admin-go/internal/pkg/metrics"
	"passport-admin-go/internal/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ImageCache resolves remote image URLs to local handles.
type ImageCache interface {
	layout.Resolver
	FetchAndCache(ctx context.Context, url string) string
}

type DocumentAssembler interface {
	Assemble(ctx context.Context, in assembler.Input) (*assembler.Document, error)
}

type ResourceFetcher interface {
	Get(ctx context.Context, url string) (*fetch.Resource, error)
}

// Archive receives a copy of every generated passport.
type Archive interface {
	Save(ctx context.Context, name string, pdf []byte) int
}

var _ Service = (*ServiceImpl)(nil)

type ServiceImpl struct {
	registry  *Registry
	images    ImageCache
	builder   *layout.Builder
	assembler DocumentAssembler
	fetcher   ResourceFetcher
	archive   Archive
	now       func() time.Time
}

type Option func(*ServiceImpl)

func WithArchive(a Archive) Option {
	return func(s *ServiceImpl) {
		s.archive = a
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *ServiceImpl) {
		s.now = now
	}
}

func NewService(registry *Registry, images ImageCache, builder *layout.Builder, asm DocumentAssembler, fetcher ResourceFetcher, opts ...Option) *ServiceImpl {
	s := &ServiceImpl{
		registry:  registry,
		images:    images,
		builder:   builder,
		assembler: asm,
		fetcher:   fetcher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dashboard loads the tables on first use and serves the held copy afterwards.
func (s *ServiceImpl) Dashboard(ctx context.Context) (*Dashboard, error) {
	if !s.registry.Loaded() {
		return s.Refresh(ctx)
	}
	return s.dashboard(), nil
}

func (s *ServiceImpl) Refresh(ctx context.Context) (*Dashboard, error) {
	ctx, span := tracing.StartSpan(ctx, "PassportService.Refresh")
	defer span.End()

	if err := s.registry.Load(ctx); err != nil {
		tracing.RecordError(ctx, err)
		logger.Error("Failed to load records", zap.Error(err))
		return nil, err
	}
	d := s.dashboard()
	logger.Info("Records loaded",
		zap.Int("applications", len(d.Applications)),
		zap.Int("renewals", len(d.Renewals)))
	return d, nil
}

func (s *ServiceImpl) dashboard() *Dashboard {
	return &Dashboard{
		Applications: newRows(record.KindApplications, s.registry.List(record.KindApplications)),
		Renewals:     newRows(record.KindRenewals, s.registry.List(record.KindRenewals)),
		LoadedAt:     s.registry.LoadedAt(),
	}
}

// View prefetches the photo and signature so the preview and a later
// generation reuse the same cached bytes.
func (s *ServiceImpl) View(ctx context.Context, table, id string) (*Details, error) {
	kind, rec, err := s.lookup(ctx, table, id)
	if err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "PassportService.View")
	defer span.End()
	span.SetAttributes(attribute.String("record.reference", rec.Reference(kind)))

	return &Details{
		Table:        kind,
		Reference:    rec.Reference(kind),
		DocumentID:   rec.DocumentID(),
		Status:       rec.EffectiveStatus(),
		Record:       rec,
		PhotoSrc:     s.images.FetchAndCache(ctx, rec.PhotoURL),
		SignatureSrc: s.images.FetchAndCache(ctx, rec.SignatureURL),
		HasDocuments: rec.DocsURL != "",
	}, nil
}

func (s *ServiceImpl) Approve(ctx context.Context, table, id string) (record.Record, error) {
	return s.setStatus(ctx, table, id, record.StatusApproved)
}

func (s *ServiceImpl) Decline(ctx context.Context, table, id string) (record.Record, error) {
	return s.setStatus(ctx, table, id, record.StatusDeclined)
}

func (s *ServiceImpl) setStatus(ctx context.Context, table, id string, status record.Status) (record.Record, error) {
	kind, err := parseTable(table)
	if err != nil {
		return record.Record{}, err
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return record.Record{}, err
	}

	ctx, span := tracing.StartSpan(ctx, "PassportService.SetStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("record.table", string(kind)),
		attribute.String("record.id", id),
		attribute.String("record.status", string(status)),
	)

	log := logger.WithContext(
		zap.String("table", string(kind)),
		zap.String("id", id),
		zap.String("status", string(status)),
	)
	if operator := OperatorFromContext(ctx); operator != "" {
		log = log.With(zap.String("operator", operator))
	}

	rec, err := s.registry.SetStatus(ctx, kind, record.ID(id), status, s.now())
	if err != nil {
		metrics.StatusChangesTotal.WithLabelValues(string(kind), string(status), "error").Inc()
		tracing.RecordError(ctx, err)
		log.Error("Failed to update status", zap.Error(err))
		return record.Record{}, err
	}
	metrics.StatusChangesTotal.WithLabelValues(string(kind), string(status), "success").Inc()
	log.Info("Status updated")
	return rec, nil
}

// GeneratePassport builds the printable document for a record. Both tables
// produce an LS-{id} document.
func (s *ServiceImpl) GeneratePassport(ctx context.Context, table, id string) (*assembler.Document, error) {
	kind, rec, err := s.lookup(ctx, table, id)
	if err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "PassportService.GeneratePassport")
	defer span.End()
	span.SetAttributes(
		attribute.String("passport.document_id", rec.DocumentID()),
		attribute.String("passport.type", rec.PassportType),
	)

	log := logger.Log.With(
		zap.String("table", string(kind)),
		zap.String("document_id", rec.DocumentID()),
	)
	log.Info("Generating passport", zap.String("passport_type", rec.PassportType))

	// warm the cache so the builder resolves local handles instead of remote URLs
	s.images.FetchAndCache(ctx, rec.PhotoURL)
	s.images.FetchAndCache(ctx, rec.SignatureURL)

	doc, err := s.assembler.Assemble(ctx, assembler.Input{
		DocumentID:   rec.DocumentID(),
		PassportType: rec.PassportType,
		Pages:        s.builder.Pages(rec, s.images),
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		log.Error("Failed to generate passport", zap.Error(err))
		return nil, err
	}

	if s.archive != nil {
		s.archive.Save(ctx, doc.Filename, doc.PDF)
	}

	log.Info("Passport generated",
		zap.String("filename", doc.Filename),
		zap.Int("pages", len(doc.Pages)),
		zap.Int("size_bytes", len(doc.PDF)))
	return doc, nil
}

// DownloadDocuments fetches the record's supporting documents as
// documents_{id} with the extension taken from the URL path or content type.
func (s *ServiceImpl) DownloadDocuments(ctx context.Context, table, id string) (*Download, error) {
	_, rec, err := s.lookup(ctx, table, id)
	if err != nil {
		return nil, err
	}
	if rec.DocsURL == "" {
		return nil, fmt.Errorf("%s: %w", id, ErrNoDocuments)
	}

	res, err := s.fetcher.Get(ctx, rec.DocsURL)
	if err != nil {
		logger.Error("Failed to download documents",
			zap.String("id", id),
			zap.String("url", rec.DocsURL),
			zap.Error(err))
		return nil, fmt.Errorf("failed to download documents: %w", err)
	}

	return &Download{
		Filename:    "documents_" + string(rec.ID) + documentExt(rec.DocsURL, res.ContentType),
		ContentType: res.ContentType,
		Data:        res.Data,
	}, nil
}

func (s *ServiceImpl) lookup(ctx context.Context, table, id string) (record.Kind, record.Record, error) {
	kind, err := parseTable(table)
	if err != nil {
		return "", record.Record{}, err
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return "", record.Record{}, err
	}
	rec, err := s.registry.Get(kind, record.ID(id))
	if err != nil {
		return "", record.Record{}, err
	}
	return kind, rec, nil
}

func (s *ServiceImpl) ensureLoaded(ctx context.Context) error {
	if s.registry.Loaded() {
		return nil
	}
	return s.registry.Load(ctx)
}

func parseTable(table string) (record.Kind, error) {
	kind, err := record.ParseKind(table)
	if errors.Is(err, record.ErrUnknownKind) {
		return "", fmt.Errorf("%q: %w", table, ErrUnknownTable)
	}
	return kind, err
}

func documentExt(rawURL, contentType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if ext := path.Ext(u.Path); ext != "" && len(ext) <= 6 {
			return ext
		}
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
			return preferredExt(mediaType, exts)
		}
	}
	return ""
}

// mime.ExtensionsByType sorts alphabetically, which gives ".jfif" for JPEG.
func preferredExt(mediaType string, exts []string) string {
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "application/pdf":
		return ".pdf"
	}
	return exts[0]
}
