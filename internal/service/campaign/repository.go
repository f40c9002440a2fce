package campaign

import (
	"context"
	"time"

	"github.com/ignite/discount-generator/internal/datanorm"
	"github.com/ignite/discount-generator/internal/domain"
	"github.com/ignite/discount-generator/internal/report"
)

// Session is one dashboard workflow: an uploaded table and, once processed,
// its campaign run.
type Session struct {
	ID        string                 `json:"id"`
	Filename  string                 `json:"filename"`
	Table     domain.Table           `json:"table"`
	Import    *datanorm.ImportResult `json:"import,omitempty"`
	Preview   report.PreviewStats    `json:"preview"`
	Run       *Run                   `json:"run,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Processed reports whether a run result is attached.
func (s *Session) Processed() bool { return s.Run != nil }

// Repository defines the session storage contract.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a session. Returns ErrSessionNotFound if it doesn't exist
	// or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Save creates or replaces a session, resetting its expiry to ttl.
	Save(ctx context.Context, s *Session, ttl time.Duration) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
}
