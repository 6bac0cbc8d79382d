package episode

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence boundary for episodes.
type Repository interface {
	Create(ctx context.Context, ep *Episode) error
	Update(ctx context.Context, ep *Episode) error
	GetByID(ctx context.Context, id uuid.UUID) (*Episode, error)
	List(ctx context.Context, filter Filter) ([]Episode, int, error)
	ExpireBefore(ctx context.Context, cutoff time.Time) ([]Episode, error)
}
