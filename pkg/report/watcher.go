package report

import (
	"context"
	"fmt"

	"github.com/inflammetry/platform/pkg/common/models"
	"github.com/redis/go-redis/v9"
)

// Watcher follows study events and keeps a live per-patient tally of
// recorded observations in Redis, so dashboards can read activity without
// touching the study database.
type Watcher struct {
	client *redis.Client
}

func NewWatcher(client *redis.Client) *Watcher {
	return &Watcher{client: client}
}

func tallyKey(patient string) string {
	return fmt.Sprintf("observations:%s", patient)
}

// Handle processes one study event. Events other than observations are
// ignored.
func (w *Watcher) Handle(ctx context.Context, event models.Event) error {
	if event.Type != "observation" {
		return nil
	}
	patient := event.Metadata["subject"]
	if patient == "" {
		return nil
	}
	return w.client.Incr(ctx, tallyKey(patient)).Err()
}

// Count returns the number of observations seen for a patient since the
// tally started.
func (w *Watcher) Count(ctx context.Context, patient string) (int64, error) {
	count, err := w.client.Get(ctx, tallyKey(patient)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}
