package publish

import (
	"context"
	"time"
)

// DefaultCooldown is the pause after every upload.
const DefaultCooldown = 5 * time.Second

// Pause blocks for d or until ctx is done.
type Pause func(ctx context.Context, d time.Duration) error

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
