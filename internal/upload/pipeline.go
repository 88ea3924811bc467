// Package upload implements the knowledge-base ingestion pipeline: per-file
// validation, sequential transfer, and result reconciliation.
package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GAYIVORE/studybuddy-cli/internal/client"
	"github.com/GAYIVORE/studybuddy-cli/internal/metrics"
	"github.com/GAYIVORE/studybuddy-cli/internal/models"
	"github.com/GAYIVORE/studybuddy-cli/internal/session"
)

// MaxFileSize is the upload size ceiling.
const MaxFileSize = 10 << 20 // 10 MiB

// allowedExtensions is the ingestion allow-list: documents, plain text,
// and markdown.
var allowedExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
	".md":  true,
}

// Ingestor is the remote document-ingestion collaborator.
type Ingestor interface {
	Upload(ctx context.Context, filename string, file io.Reader, description string) (*client.UploadResult, error)
}

// Sink receives the record of each successful ingestion.
type Sink interface {
	RecordUpload(rec models.UploadedFileRecord)
}

// Pipeline drains selected files one full transfer at a time, so list order
// matches submission order and at most one request is in flight.
type Pipeline struct {
	ingestor Ingestor
	sink     Sink
	ui       session.UI
	logger   *slog.Logger
	stats    *metrics.Collector

	// OnTransition, when set, observes every item state change. Used by the
	// progress display.
	OnTransition func(item models.UploadItem)
}

// New creates a pipeline. ui, logger, and stats may be nil.
func New(ingestor Ingestor, sink Sink, ui session.UI, logger *slog.Logger, stats *metrics.Collector) *Pipeline {
	if ui == nil {
		ui = session.NopUI{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if stats == nil {
		stats = metrics.NewCollector()
	}
	return &Pipeline{
		ingestor: ingestor,
		sink:     sink,
		ui:       ui,
		logger:   logger,
		stats:    stats,
	}
}

// Validate checks the filename extension and size against the ingestion
// rules. An error here means the file never enters the pipeline.
func Validate(name string, sizeBytes int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return fmt.Errorf("file type %q not allowed (allowed: .pdf, .txt, .md)", ext)
	}
	if sizeBytes > MaxFileSize {
		return fmt.Errorf("file too large (%d bytes, max %d MB)", sizeBytes, MaxFileSize>>20)
	}
	return nil
}

// Process uploads the given files strictly sequentially and returns the
// terminal state of every item that entered the pipeline. Files failing
// validation are rejected up front with a diagnostic and produce no item.
func (p *Pipeline) Process(ctx context.Context, paths []string, description string) []models.UploadItem {
	var items []models.UploadItem
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			p.logger.Warn("upload rejected", "path", path, "error", err)
			p.ui.Notify(fmt.Sprintf("Cannot read %s: %v", filepath.Base(path), err),
				session.SeverityError, 3*time.Second)
			continue
		}

		name := filepath.Base(path)
		if err := Validate(name, info.Size()); err != nil {
			p.logger.Warn("upload rejected", "file", name, "error", err)
			p.ui.Notify(fmt.Sprintf("%s: %v", name, err), session.SeverityWarning, 3*time.Second)
			continue
		}

		item := models.UploadItem{
			ID:        uuid.New().String(),
			Path:      path,
			Name:      name,
			SizeBytes: info.Size(),
			Status:    models.UploadPending,
		}
		p.transition(&item, models.UploadPending)

		p.upload(ctx, &item, description)
		items = append(items, item)
	}
	return items
}

// upload runs one full transfer cycle for a validated item.
func (p *Pipeline) upload(ctx context.Context, item *models.UploadItem, description string) {
	file, err := os.Open(item.Path)
	if err != nil {
		p.fail(item, fmt.Errorf("open file: %w", err))
		return
	}
	defer file.Close()

	p.transition(item, models.UploadUploading)

	var result *client.UploadResult
	err = p.stats.Time(metrics.OpUpload, func() error {
		var upErr error
		result, upErr = p.ingestor.Upload(ctx, item.Name, file, description)
		return upErr
	})
	if err != nil {
		p.fail(item, err)
		return
	}

	p.transition(item, models.UploadSuccess)
	p.logger.Info("document ingested", "file", item.Name, "chunks", result.ChunksAdded)
	p.ui.Notify(fmt.Sprintf("%s added to knowledge base (%d chunks).", item.Name, result.ChunksAdded),
		session.SeveritySuccess, 3*time.Second)

	if p.sink != nil {
		p.sink.RecordUpload(models.UploadedFileRecord{
			Name:       item.Name,
			SizeBytes:  item.SizeBytes,
			ChunkCount: result.ChunksAdded,
			Timestamp:  time.Now(),
		})
	}
}

// fail marks an item's terminal error state and emits its diagnostic.
// No retry is attempted.
func (p *Pipeline) fail(item *models.UploadItem, err error) {
	item.Err = err
	p.transition(item, models.UploadError)
	p.logger.Warn("upload failed", "file", item.Name, "error", err)
	p.ui.Notify(fmt.Sprintf("Upload of %s failed: %v", item.Name, err),
		session.SeverityError, 3*time.Second)
}

func (p *Pipeline) transition(item *models.UploadItem, status models.UploadStatus) {
	item.Status = status
	if p.OnTransition != nil {
		p.OnTransition(*item)
	}
}
