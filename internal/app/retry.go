package app

import (
	"context"
	"errors"
	"time"

	"github.com/example/foreman/internal/ports/secondary"
)

// withStorageRetry runs op, retrying with doubling backoff while it
// fails with StorageUnavailableError. Other errors return immediately.
// After retries are exhausted the last storage error is returned and
// the caller treats it as fatal.
func withStorageRetry(ctx context.Context, retries int, op func() error) error {
	backoff := 100 * time.Millisecond

	var err error
	for attempt := 0; ; attempt++ {
		err = op()
		if err == nil {
			return nil
		}

		var unavailable *secondary.StorageUnavailableError
		if !errors.As(err, &unavailable) {
			return err
		}
		if attempt >= retries {
			return err
		}

		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}
