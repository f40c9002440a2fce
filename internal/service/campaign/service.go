package campaign

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/discount-generator/internal/datanorm"
	"github.com/ignite/discount-generator/internal/domain"
	"github.com/ignite/discount-generator/internal/export"
	"github.com/ignite/discount-generator/internal/pkg/distlock"
	"github.com/ignite/discount-generator/internal/pkg/logger"
	"github.com/ignite/discount-generator/internal/report"
	"github.com/ignite/discount-generator/internal/segmentation"
	"github.com/ignite/discount-generator/internal/storage"
)

// DefaultTTL bounds how long an idle session is kept.
const DefaultTTL = 2 * time.Hour

// Service implements the dashboard workflow: upload, preview, process,
// inspect and export. All public methods are safe for concurrent use if the
// underlying repository is concurrency-safe.
type Service struct {
	repo     Repository
	importer *datanorm.Importer
	pipeline *Pipeline
	store    storage.ExportStore
	locks    distlock.Factory
	ttl      time.Duration
	now      func() time.Time

	source        *datanorm.SQLSource
	sourceQuery   string
	sourceTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithTTL sets the session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithExportStore enables Publish.
func WithExportStore(store storage.ExportStore) Option {
	return func(s *Service) { s.store = store }
}

// WithLocks sets how Process serializes runs of one session. The default
// only excludes concurrent runs within this process.
func WithLocks(f distlock.Factory) Option {
	return func(s *Service) { s.locks = f }
}

// WithSource enables ImportSource with a fixed query. A zero timeout leaves
// the query bounded only by the caller's context.
func WithSource(src *datanorm.SQLSource, query string, timeout time.Duration) Option {
	return func(s *Service) {
		s.source = src
		s.sourceQuery = query
		s.sourceTimeout = timeout
	}
}

// WithClock sets the source of session timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a campaign service backed by the given repository.
func NewService(repo Repository, importer *datanorm.Importer, pipeline *Pipeline, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		importer: importer,
		pipeline: pipeline,
		locks:    distlock.NewFactory(nil, 0),
		ttl:      DefaultTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload normalizes an uploaded file into a new session.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (*Session, error) {
	table, res, err := s.importer.ImportReader(ctx, r, filename)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, filename, *table, res)
}

// ImportSource runs the configured source query into a new session.
func (s *Service) ImportSource(ctx context.Context) (*Session, error) {
	if s.source == nil || s.sourceQuery == "" {
		return nil, ErrNoSource
	}
	qctx := ctx
	if s.sourceTimeout > 0 {
		var cancel context.CancelFunc
		qctx, cancel = context.WithTimeout(ctx, s.sourceTimeout)
		defer cancel()
	}
	table, res, err := s.source.Load(qctx, s.sourceQuery)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, res.SourceFile, *table, res)
}

func (s *Service) create(ctx context.Context, filename string, table domain.Table, res *datanorm.ImportResult) (*Session, error) {
	now := s.now()
	sess := &Session{
		ID:        uuid.New().String(),
		Filename:  filename,
		Table:     table,
		Import:    res,
		Preview:   report.Preview(table),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(ctx, sess, s.ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	logger.Info("session created", "session_id", sess.ID, "file", filename, "customers", table.Len())
	return sess, nil
}

// Get returns a session.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.repo.Get(ctx, id)
}

// Delete discards a session and its results.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Process runs the pipeline over the session's table, replacing any earlier
// result. A second Process on the same session while one is running fails
// with ErrSessionBusy.
func (s *Service) Process(ctx context.Context, id string) (*Run, error) {
	lock := s.locks("process:" + id)
	ok, err := lock.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}
	if !ok {
		return nil, ErrSessionBusy
	}
	defer lock.Release(context.WithoutCancel(ctx))

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	run, err := s.pipeline.Run(sess.Table)
	if err != nil {
		return nil, err
	}
	sess.Run = run
	sess.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, sess, s.ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return run, nil
}

// ProcessSample creates and processes a session from SampleTable.
func (s *Service) ProcessSample(ctx context.Context) (*Session, error) {
	sess, err := s.create(ctx, SampleFilename, SampleTable(s.now()), nil)
	if err != nil {
		return nil, err
	}
	run, err := s.Process(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	sess.Run = run
	return sess, nil
}

func (s *Service) processed(ctx context.Context, id string) (*Session, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.Processed() {
		return nil, ErrNotProcessed
	}
	return sess, nil
}

// Result returns the processed run of a session.
func (s *Service) Result(ctx context.Context, id string) (*Run, error) {
	sess, err := s.processed(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Run, nil
}

// Offers returns the offers of a processed session, optionally restricted
// to one segment.
func (s *Service) Offers(ctx context.Context, id string, segment domain.Segment) ([]domain.OfferRecord, error) {
	if segment != "" && !segment.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSegment, segment)
	}
	run, err := s.Result(ctx, id)
	if err != nil {
		return nil, err
	}
	if segment == "" {
		return run.Offers, nil
	}
	out := make([]domain.OfferRecord, 0)
	for _, o := range run.Offers {
		if o.Segment == segment {
			out = append(out, o)
		}
	}
	return out, nil
}

// Explain returns the offer at row (0-based) with the rule trace that
// produced its segment, evaluated at the run's processing time.
func (s *Service) Explain(ctx context.Context, id string, row int) (*domain.OfferRecord, *segmentation.Explanation, error) {
	run, err := s.Result(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if row < 0 || row >= len(run.Offers) {
		return nil, nil, ErrRowOutOfRange
	}
	offer := run.Offers[row]
	exp, err := s.pipeline.Classifier().ExplainAt(offer.CustomerRecord, run.ProcessedAt)
	if err != nil {
		return nil, nil, err
	}
	return &offer, exp, nil
}

// Export renders a processed session as an xlsx workbook and returns it with
// its download file name.
func (s *Service) Export(ctx context.Context, id string) ([]byte, string, error) {
	run, err := s.Result(ctx, id)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, run.Offers, run.Summary, run.Segments); err != nil {
		return nil, "", fmt.Errorf("build workbook: %w", err)
	}
	return buf.Bytes(), export.FileName(run.ProcessedAt), nil
}

// Publish uploads the workbook to the configured export store.
func (s *Service) Publish(ctx context.Context, id string) (*storage.Object, error) {
	if s.store == nil {
		return nil, storage.ErrNotConfigured
	}
	data, name, err := s.Export(ctx, id)
	if err != nil {
		return nil, err
	}
	obj, err := s.store.Save(ctx, id+"/"+name, data, export.ContentType)
	if err != nil {
		return nil, fmt.Errorf("publish export: %w", err)
	}
	logger.Info("export published", "session_id", id, "backend", obj.Backend, "key", obj.Key)
	return obj, nil
}
