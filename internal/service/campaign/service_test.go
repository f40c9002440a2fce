package campaign_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/discount-generator/internal/datanorm"
	"github.com/ignite/discount-generator/internal/domain"
	"github.com/ignite/discount-generator/internal/offers"
	"github.com/ignite/discount-generator/internal/pkg/distlock"
	"github.com/ignite/discount-generator/internal/segmentation"
	"github.com/ignite/discount-generator/internal/service/campaign"
	"github.com/ignite/discount-generator/internal/storage"
)

// memRepo is an in-memory session repository for unit testing.
type memRepo struct {
	mu       sync.Mutex
	sessions map[string]campaign.Session
	ttls     map[string]time.Duration
}

func newMemRepo() *memRepo {
	return &memRepo{sessions: make(map[string]campaign.Session), ttls: make(map[string]time.Duration)}
}

func (m *memRepo) Get(_ context.Context, id string) (*campaign.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, campaign.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memRepo) Save(_ context.Context, s *campaign.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	m.ttls[s.ID] = ttl
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// fixedSource always draws the same promo suffix.
type fixedSource int

func (f fixedSource) Intn(int) int { return int(f) }

var testNow = time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func newTestService(t *testing.T, opts ...campaign.Option) (*campaign.Service, *memRepo) {
	t.Helper()
	gen, err := offers.NewGenerator(offers.WithIntSource(fixedSource(1234)))
	require.NoError(t, err)
	pipeline := campaign.NewPipeline(segmentation.NewClassifier(), gen, clock)
	importer := datanorm.NewImporter(datanorm.Options{Now: clock, Location: time.UTC})

	repo := newMemRepo()
	opts = append([]campaign.Option{campaign.WithClock(clock), campaign.WithTTL(30 * time.Minute)}, opts...)
	return campaign.NewService(repo, importer, pipeline, opts...), repo
}

const uploadCSV = "name,phone,orders,amount,last_order\n" +
	"asha rao,9845012345,25,7500,2025-06-25\n" +
	"ravi,,2,400,2025-06-27\n" +
	"meera,9900011122,15,3500,2025-06-10\n"

func TestUploadAndProcess(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Upload(ctx, "customers.csv", strings.NewReader(uploadCSV))
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.False(t, sess.Processed())
	assert.Equal(t, 3, sess.Preview.Customers)
	assert.Equal(t, 11400.0, sess.Preview.TotalSpend)
	assert.Equal(t, 30*time.Minute, repo.ttls[sess.ID])

	_, err = svc.Result(ctx, sess.ID)
	assert.ErrorIs(t, err, campaign.ErrNotProcessed)

	run, err := svc.Process(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, run.Offers, 3)
	assert.Equal(t, testNow, run.ProcessedAt)

	assert.Equal(t, domain.SegmentVIP, run.Offers[0].Segment)
	assert.Equal(t, 32.0, run.Offers[0].DiscountPct)
	assert.Equal(t, "VIPE2234", run.Offers[0].PromoCode)
	assert.Equal(t, domain.SegmentNew, run.Offers[1].Segment)
	assert.Equal(t, "Welcome Offer", run.Offers[1].CampaignType)
	assert.Equal(t, domain.SegmentLapsed, run.Offers[2].Segment)
	assert.Equal(t, 30.0, run.Offers[2].DiscountPct)

	assert.Equal(t, 3, run.Summary.TotalCustomers)
	assert.Len(t, run.Segments, 3)

	stored, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, stored.Processed())
}

func TestUploadSchemaError(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Upload(context.Background(), "bad.csv", strings.NewReader("name,amount\nx,1\n"))

	var schemaErr *domain.SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestProcessUnknownSession(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Process(context.Background(), "missing")
	assert.ErrorIs(t, err, campaign.ErrSessionNotFound)
}

func TestProcessSample(t *testing.T) {
	svc, _ := newTestService(t)

	sess, err := svc.ProcessSample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, campaign.SampleFilename, sess.Filename)
	require.True(t, sess.Processed())
	require.Len(t, sess.Run.Offers, 3)

	got := []domain.Segment{sess.Run.Offers[0].Segment, sess.Run.Offers[1].Segment, sess.Run.Offers[2].Segment}
	assert.Equal(t, []domain.Segment{domain.SegmentRegular, domain.SegmentLapsed, domain.SegmentVIP}, got)
	assert.Equal(t, 21.0, sess.Run.Offers[0].DiscountPct)
	assert.Equal(t, 28.0, sess.Run.Offers[2].DiscountPct)
}

func TestOffersFilter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	sess, err := svc.Upload(ctx, "customers.csv", strings.NewReader(uploadCSV))
	require.NoError(t, err)
	_, err = svc.Process(ctx, sess.ID)
	require.NoError(t, err)

	vip, err := svc.Offers(ctx, sess.ID, domain.SegmentVIP)
	require.NoError(t, err)
	require.Len(t, vip, 1)
	assert.Equal(t, "Asha Rao", vip[0].CustomerName)

	none, err := svc.Offers(ctx, sess.ID, domain.SegmentOccasional)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.Offers(ctx, sess.ID, "Gold")
	assert.ErrorIs(t, err, campaign.ErrInvalidSegment)
}

func TestExplain(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	sess, err := svc.Upload(ctx, "customers.csv", strings.NewReader(uploadCSV))
	require.NoError(t, err)
	_, err = svc.Process(ctx, sess.ID)
	require.NoError(t, err)

	offer, exp, err := svc.Explain(ctx, sess.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "Meera", offer.CustomerName)
	assert.Equal(t, domain.SegmentLapsed, exp.Segment)
	assert.Equal(t, 20, exp.Facts.DaysSince)

	_, _, err = svc.Explain(ctx, sess.ID, 3)
	assert.ErrorIs(t, err, campaign.ErrRowOutOfRange)
}

func TestExportAndPublish(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	svc, _ := newTestService(t, campaign.WithExportStore(store))
	ctx := context.Background()

	sess, err := svc.ProcessSample(ctx)
	require.NoError(t, err)

	data, name, err := svc.Export(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "discount_recommendations_20250630_120000.xlsx", name)
	assert.Equal(t, "PK", string(data[:2]))

	obj, err := svc.Publish(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID+"/"+name, obj.Key)
	assert.Equal(t, int64(len(data)), obj.Size)
}

func TestPublishWithoutStore(t *testing.T) {
	svc, _ := newTestService(t)
	sess, err := svc.ProcessSample(context.Background())
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), sess.ID)
	assert.ErrorIs(t, err, storage.ErrNotConfigured)
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	sess, err := svc.ProcessSample(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, sess.ID))
	_, err = svc.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, campaign.ErrSessionNotFound)
}

// heldLock is a lock someone else already owns.
type heldLock struct{}

func (heldLock) Acquire(context.Context) (bool, error) { return false, nil }
func (heldLock) Release(context.Context) error         { return nil }

func TestProcessBusy(t *testing.T) {
	svc, _ := newTestService(t, campaign.WithLocks(func(string) distlock.DistLock { return heldLock{} }))
	ctx := context.Background()
	sess, err := svc.Upload(ctx, "customers.csv", strings.NewReader(uploadCSV))
	require.NoError(t, err)

	_, err = svc.Process(ctx, sess.ID)
	assert.ErrorIs(t, err, campaign.ErrSessionBusy)
}

func TestProcessReleasesLock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	sess, err := svc.Upload(ctx, "customers.csv", strings.NewReader(uploadCSV))
	require.NoError(t, err)

	_, err = svc.Process(ctx, sess.ID)
	require.NoError(t, err)
	_, err = svc.Process(ctx, sess.ID)
	assert.NoError(t, err)
}

func TestImportSource(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM customer_spend").
		WillReturnRows(sqlmock.NewRows([]string{"customer_name", "total_orders", "total_spent", "last_order_date"}).
			AddRow("asha rao", int64(25), 7500.0, "2025-06-25").
			AddRow("meera", int64(15), 3500.0, "2025-06-10"))

	importer := datanorm.NewImporter(datanorm.Options{Now: clock, Location: time.UTC})
	src := datanorm.NewSQLSource(db, importer)
	svc, _ := newTestService(t, campaign.WithSource(src, "SELECT * FROM customer_spend", time.Minute))
	ctx := context.Background()

	sess, err := svc.ImportSource(ctx)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, "sql", sess.Filename)
	assert.Equal(t, datanorm.FormatSQL, sess.Import.Format)
	assert.Equal(t, 2, sess.Preview.Customers)

	run, err := svc.Process(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, run.Offers, 2)
	assert.Equal(t, domain.SegmentVIP, run.Offers[0].Segment)
	assert.Equal(t, domain.SegmentLapsed, run.Offers[1].Segment)
}

func TestImportSourceQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("relation does not exist"))

	src := datanorm.NewSQLSource(db, datanorm.NewImporter(datanorm.Options{Now: clock}))
	svc, repo := newTestService(t, campaign.WithSource(src, "SELECT 1", 0))

	_, err = svc.ImportSource(context.Background())
	assert.ErrorContains(t, err, "relation does not exist")
	assert.Empty(t, repo.sessions)
}

func TestImportSourceNotConfigured(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.ImportSource(context.Background())
	assert.ErrorIs(t, err, campaign.ErrNoSource)
}
