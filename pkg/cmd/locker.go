package cmd

import (
	"context"
	"log/slog"

	"github.com/dukex/flowgate/pkg/locker"
)

// NewLocker returns a redis-backed locker when redisURL is set so several
// API replicas serialize on the same workflow, otherwise an in-process one.
// The returned close function is never nil.
func NewLocker(ctx context.Context, logger *slog.Logger, redisURL string) (locker.Locker, func() error, error) {
	if redisURL == "" {
		return locker.NewMemory(), func() error { return nil }, nil
	}

	redisLocker, err := locker.NewRedisFromURL(ctx, redisURL, logger)
	if err != nil {
		return nil, nil, err
	}

	return redisLocker, redisLocker.Close, nil
}
