// Package sink delivers traversal records to downstream systems.
//
// The Redis sink appends records to a Redis Stream, one entry per record, in
// the order the traversal emitted them. It stores nothing a later traversal
// could reuse: pages are never cached and every traversal goes back to the
// API.
package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Writer is anything that can deliver one record downstream.
type Writer interface {
	Write(ctx context.Context, record any) error
}

// Redis appends records to a Redis Stream.
type Redis struct {
	rdb    *redis.Client
	stream string
	logger zerolog.Logger
}

// NewRedis creates a Redis stream sink.
func NewRedis(rdb *redis.Client, stream string) *Redis {
	if rdb == nil {
		panic("redis client cannot be nil")
	}
	if stream == "" {
		panic("stream name cannot be empty")
	}
	return &Redis{
		rdb:    rdb,
		stream: stream,
		logger: log.With().Str("component", "redis-sink").Str("stream", stream).Logger(),
	}
}

// Stream returns the stream name records are appended to.
func (s *Redis) Stream() string {
	return s.stream
}

// Write appends one record to the stream as a JSON payload under the
// "record" field. Entry IDs are assigned by Redis, so stream order is
// delivery order.
func (s *Redis) Write(ctx context.Context, record any) error {
	payload, err := json.Marshal(record)
	if err != nil {
		sinkErrorsTotal.WithLabelValues(s.stream).Inc()
		return fmt.Errorf("marshal record: %w", err)
	}

	err = s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		ID:     "*",
		Values: map[string]any{"record": payload},
	}).Err()
	if err != nil {
		sinkErrorsTotal.WithLabelValues(s.stream).Inc()
		return fmt.Errorf("redis xadd: %w", err)
	}

	sinkRecordsTotal.WithLabelValues(s.stream).Inc()
	s.logger.Debug().Msg("Record delivered")
	return nil
}
