package store

import (
	"context"
	"time"

	"github.com/ykvlv/pr-reminder-bot/internal/domain"
)

// Repo defines the membership store: tracked users, exempt users and today's submissions.
type Repo interface {
	AddTracked(ctx context.Context, handle string) (bool, error)
	RecordSubmission(ctx context.Context, handle, link string, at time.Time) error
	AddExempt(ctx context.Context, handle string) (bool, error)
	RemoveExempt(ctx context.Context, handle string) (bool, error)
	IsExempt(ctx context.Context, handle string) (bool, error)
	Snapshot(ctx context.Context) (domain.Snapshot, error)
	MissingForToday(ctx context.Context) ([]string, error)
	ResetDaily(ctx context.Context) (int, error)
	Close() error
}
