package common

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"infinite-experiment/flightsurety/internal/logging"
	"infinite-experiment/flightsurety/internal/models/dtos"
)

// RedisQueueService carries oracle request events over a Redis Stream
type RedisQueueService struct {
	client *redis.Client
	stream string
}

func NewRedisQueueService(client *redis.Client, stream string) *RedisQueueService {
	return &RedisQueueService{
		client: client,
		stream: stream,
	}
}

// PublishOracleRequest appends an event to the stream
func (s *RedisQueueService) PublishOracleRequest(ctx context.Context, event dtos.OracleRequestEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal oracle request: %w", err)
	}

	// XADD stream * data <json>
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}
	if _, err := s.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}
	return nil
}

// DequeueOracleRequest reads one event for the consumer group.
// Returns (nil, "", nil) when the block time elapses without messages.
func (s *RedisQueueService) DequeueOracleRequest(ctx context.Context, groupName, consumerName string, blockTime time.Duration) (*dtos.OracleRequestEvent, string, error) {
	args := &redis.XReadGroupArgs{
		Group:    groupName,
		Consumer: consumerName,
		Streams:  []string{s.stream, ">"}, // ">" means new messages only
		Count:    1,
		Block:    blockTime,
	}

	streams, err := s.client.XReadGroup(ctx, args).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to read from stream: %w", err)
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, "", nil
	}

	msg := streams[0].Messages[0]
	event, err := decodeOracleRequest(msg)
	if err != nil {
		return nil, msg.ID, err
	}
	return event, msg.ID, nil
}

// Ack acknowledges successful processing of a message
func (s *RedisQueueService) Ack(ctx context.Context, groupName, messageID string) error {
	return s.client.XAck(ctx, s.stream, groupName, messageID).Err()
}

// CreateConsumerGroup creates the group if it doesn't exist
func (s *RedisQueueService) CreateConsumerGroup(ctx context.Context, groupName string) error {
	// XGROUP CREATE stream group 0 MKSTREAM
	err := s.client.XGroupCreateMkStream(ctx, s.stream, groupName, "0").Err()
	if err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil
	}
	return err
}

// GetQueueLength returns the number of entries in the stream
func (s *RedisQueueService) GetQueueLength(ctx context.Context) (int64, error) {
	length, err := s.client.XLen(ctx, s.stream).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	return length, nil
}

// ClaimStale takes over events left pending by dead consumers
func (s *RedisQueueService) ClaimStale(ctx context.Context, groupName, consumerName string, minIdleTime time.Duration) ([]*dtos.OracleRequestEvent, []string, error) {
	pending, err := s.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: s.stream,
		Group:  groupName,
		Start:  "-",
		End:    "+",
		Count:  100,
	}).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get pending messages: %w", err)
	}

	var staleIDs []string
	for _, p := range pending {
		if p.Idle >= minIdleTime {
			staleIDs = append(staleIDs, p.ID)
		}
	}
	if len(staleIDs) == 0 {
		return nil, nil, nil
	}

	messages, err := s.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   s.stream,
		Group:    groupName,
		Consumer: consumerName,
		MinIdle:  minIdleTime,
		Messages: staleIDs,
	}).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to claim stale messages: %w", err)
	}

	var (
		events []*dtos.OracleRequestEvent
		ids    []string
	)
	for _, msg := range messages {
		event, err := decodeOracleRequest(msg)
		if err != nil {
			logging.Warn("Skipping undecodable oracle request", "message_id", msg.ID, "error", err)
			continue
		}
		events = append(events, event)
		ids = append(ids, msg.ID)
	}
	return events, ids, nil
}

func decodeOracleRequest(msg redis.XMessage) (*dtos.OracleRequestEvent, error) {
	dataStr, ok := msg.Values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid message format: data field missing")
	}
	var event dtos.OracleRequestEvent
	if err := json.Unmarshal([]byte(dataStr), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal oracle request: %w", err)
	}
	return &event, nil
}
