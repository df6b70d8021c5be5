package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"passport-admin-go/internal/pkg/logger"
	"passport-admin-go/internal/pkg/metrics"
	"passport-admin-go/internal/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Sink stores one generated document under a name.
type Sink interface {
	Name() string
	Put(ctx context.Context, name string, data []byte) error
}

// Archiver copies generated passports to every configured sink.
// A nil or empty Archiver is disabled.
type Archiver struct {
	sinks []Sink
}

func New(sinks ...Sink) *Archiver {
	a := &Archiver{}
	for _, s := range sinks {
		if s != nil {
			a.sinks = append(a.sinks, s)
		}
	}
	return a
}

func (a *Archiver) Enabled() bool {
	return a != nil && len(a.sinks) > 0
}

// Save writes pdf to all sinks. Failures are logged and counted, never returned:
// archiving must not fail the download it accompanies.
func (a *Archiver) Save(ctx context.Context, name string, pdf []byte) int {
	if !a.Enabled() {
		return 0
	}

	ctx, span := tracing.StartSpan(ctx, "Archiver.Save")
	defer span.End()
	span.SetAttributes(attribute.String("archive.name", name), attribute.Int("archive.size", len(pdf)))

	name = cleanName(name)
	written := 0
	for _, sink := range a.sinks {
		if err := sink.Put(ctx, name, pdf); err != nil {
			metrics.ArchiveWritesTotal.WithLabelValues(sink.Name(), "error").Inc()
			tracing.RecordError(ctx, err)
			logger.Warn("Failed to archive passport",
				zap.String("backend", sink.Name()),
				zap.String("name", name),
				zap.Error(err))
			continue
		}
		metrics.ArchiveWritesTotal.WithLabelValues(sink.Name(), "success").Inc()
		written++
	}
	return written
}

// cleanName keeps only the final path element so callers cannot escape the sink root.
func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "passport.pdf"
	}
	return name
}

// DirSink writes documents into a local directory.
type DirSink struct {
	dir string
}

// NewDirSink creates dir if needed. An empty dir yields a nil sink.
func NewDirSink(dir string) (*DirSink, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &DirSink{dir: dir}, nil
}

func (s *DirSink) Name() string { return "dir" }

func (s *DirSink) Put(_ context.Context, name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".archive-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, name))
}
