package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const pingTimeout = 5 * time.Second

// Ping returns a readiness check that passes while any seed broker answers.
func Ping(client *kgo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return errors.New("kafka client not configured")
		}
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("no kafka brokers reachable: %w", err)
		}
		return nil
	}
}
