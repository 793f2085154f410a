// Package services – ImportService
//
// This file implements the ImportService, which runs CSV discount uploads
// through the csvimport loader and stores each run's report. Only one run
// executes at a time. When the caller supplies an idempotency key, a retry
// with the same (user, key) inside the configured TTL replays the stored
// report instead of importing again.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/tbourn/go-benefits-backend/internal/csvimport"
	"github.com/tbourn/go-benefits-backend/internal/domain"
	"github.com/tbourn/go-benefits-backend/internal/observability"
	"github.com/tbourn/go-benefits-backend/internal/repo"
)

// ImportRequest describes one upload.
type ImportRequest struct {
	UserID    string
	Key       string // optional idempotency key
	Filename  string
	Size      int64 // bytes; negative when unknown
	Delimiter string
	Body      io.Reader
}

// ImportResult is the report of a run, either fresh or replayed.
type ImportResult struct {
	Run      *domain.ImportRun
	Lines    []string
	Replayed bool
}

// ImportService executes and records CSV imports.
type ImportService struct {
	DB *gorm.DB
	// Delimiter is used when a request does not name one.
	Delimiter string
	// MaxBytes caps the upload size; <= 0 disables the check.
	MaxBytes int64
	// RunTTL is how long a keyed run can be replayed.
	RunTTL time.Duration
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	mu sync.Mutex
}

func (s *ImportService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Import checks the upload, replays a stored run for a known key, or loads
// the file and stores a new run. Header problems surface as errors matching
// csvimport.ErrHeadersNotSuitable; per-row problems are part of the result.
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if !strings.EqualFold(filepath.Ext(req.Filename), ".csv") {
		return nil, ErrInvalidFileType
	}
	if req.Size == 0 {
		return nil, ErrEmptyUpload
	}
	if s.MaxBytes > 0 && req.Size > s.MaxBytes {
		return nil, ErrFileTooLarge
	}

	if res, err := s.replay(ctx, req.UserID, req.Key); res != nil || err != nil {
		return res, err
	}

	if !s.mu.TryLock() {
		return nil, ErrImportInProgress
	}
	defer s.mu.Unlock()

	delim := req.Delimiter
	if delim == "" {
		delim = s.Delimiter
	}

	ctx, span := observability.Tracer("services/ImportService").Start(ctx, "import.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("import.filename", req.Filename),
		attribute.String("import.delimiter", delim),
	)

	lg := zerolog.Ctx(ctx)
	if lg.GetLevel() == zerolog.Disabled {
		lg = &log.Logger
	}
	lg.Info().Str("filename", req.Filename).Str("delimiter", delim).Msg("import started")
	ctx = lg.WithContext(ctx)

	started := s.now()
	loader := &csvimport.Loader{DB: s.DB, Now: s.now}
	report, err := loader.Load(ctx, req.Body, delim)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, csvimport.ErrHeadersNotSuitable) || errors.Is(err, csvimport.ErrEmptyDelimiter) {
			observability.RecordImportRun(observability.ImportResultRejected)
			lg.Warn().Err(err).Msg("import rejected")
		} else {
			observability.RecordImportRun(observability.ImportResultError)
			lg.Error().Err(err).Msg("import aborted")
		}
		return nil, err
	}

	lines := report.Lines()
	encoded, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("encode outcomes: %w", err)
	}
	run := &domain.ImportRun{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Filename:  req.Filename,
		Delimiter: delim,
		Total:     report.Total,
		OK:        report.OK,
		Skipped:   report.Skipped,
		Failed:    report.Failed,
		Outcomes:  string(encoded),
	}
	if req.Key != "" {
		key := req.Key
		run.Key = &key
	}
	if err := repo.CreateImportRun(ctx, s.DB, run, s.RunTTL); err != nil {
		// Rows are already committed; the report is still returned.
		lg.Error().Err(err).Msg("store import run")
	}

	observability.RecordImportRows(report.OK, report.Skipped, report.Failed)
	observability.RecordImportRun(observability.ImportResultCompleted)
	span.SetAttributes(
		attribute.Int("import.total", report.Total),
		attribute.Int("import.ok", report.OK),
		attribute.Int("import.skipped", report.Skipped),
		attribute.Int("import.failed", report.Failed),
	)
	lg.Info().
		Str("import_id", run.ID).
		Int("total", report.Total).
		Int("ok", report.OK).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Dur("took", s.now().Sub(started)).
		Msg("import finished")

	return &ImportResult{Run: run, Lines: lines}, nil
}

// replay returns the stored result for (userID, key) when one is still
// valid. A nil result and nil error mean "run the import".
func (s *ImportService) replay(ctx context.Context, userID, key string) (*ImportResult, error) {
	if key == "" {
		return nil, nil
	}
	run, err := repo.GetImportRunByKey(ctx, s.DB, userID, key, s.now().UTC())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	res, err := resultOf(run)
	if err != nil {
		return nil, err
	}
	res.Replayed = true
	observability.RecordImportRun(observability.ImportResultReplayed)
	return res, nil
}

// IsReplay reports whether a stored, unexpired run exists for (userID, key).
// The idempotency middleware uses it to exempt retries from rate limiting.
func (s *ImportService) IsReplay(ctx context.Context, userID, key string, now time.Time) (bool, error) {
	_, err := repo.GetImportRunByKey(ctx, s.DB, userID, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// GetRun returns a stored run by id.
func (s *ImportService) GetRun(ctx context.Context, id string) (*ImportResult, error) {
	run, err := repo.GetImportRun(ctx, s.DB, id)
	if err != nil {
		return nil, mapStoreErr(err, ErrImportRunNotFound)
	}
	return resultOf(run)
}

// Export writes every discount in the upload format using delimiter, or the
// configured one when empty.
func (s *ImportService) Export(ctx context.Context, w io.Writer, delimiter string) error {
	if delimiter == "" {
		delimiter = s.Delimiter
	}
	all, err := repo.AllDiscounts(ctx, s.DB)
	if err != nil {
		return err
	}
	return csvimport.Export(w, all, delimiter)
}

// PurgeExpiredRuns deletes runs whose replay window has passed.
func (s *ImportService) PurgeExpiredRuns(ctx context.Context) (int64, error) {
	return repo.DeleteExpiredImportRuns(ctx, s.DB, s.now().UTC())
}

func resultOf(run *domain.ImportRun) (*ImportResult, error) {
	lines := []string{}
	if run.Outcomes != "" {
		if err := json.Unmarshal([]byte(run.Outcomes), &lines); err != nil {
			return nil, fmt.Errorf("decode outcomes of run %s: %w", run.ID, err)
		}
	}
	return &ImportResult{Run: run, Lines: lines}, nil
}
