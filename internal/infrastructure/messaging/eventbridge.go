package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nodemapper-backend/internal/infrastructure/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// MaxBatchSize is the PutEvents entry limit.
const MaxBatchSize = 10

// EventBridgeAPI is the subset of the EventBridge client the publisher uses.
type EventBridgeAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventBridgeConfig configures an EventBridgePublisher.
type EventBridgeConfig struct {
	EventBusName string
	Source       string
	BatchSize    int
	MaxRetries   int
	RetryBackoff time.Duration
}

// EventBridgePublisher sends domain events to an EventBridge bus.
type EventBridgePublisher struct {
	client  EventBridgeAPI
	cfg     EventBridgeConfig
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewEventBridgeClient builds a client from the default AWS credential chain.
func NewEventBridgeClient(ctx context.Context, region string) (*eventbridge.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return eventbridge.NewFromConfig(awsCfg), nil
}

// NewEventBridgePublisher creates a publisher. metrics may be nil.
func NewEventBridgePublisher(client EventBridgeAPI, cfg EventBridgeConfig, metrics *observability.Collector, logger *zap.Logger) *EventBridgePublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 || cfg.BatchSize > MaxBatchSize {
		cfg.BatchSize = MaxBatchSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	return &EventBridgePublisher{
		client:  client,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// Publish sends events in batches of at most BatchSize. It stops at the first
// batch that cannot be delivered.
func (p *EventBridgePublisher) Publish(ctx context.Context, events ...Event) error {
	for start := 0; start < len(events); start += p.cfg.BatchSize {
		end := min(start+p.cfg.BatchSize, len(events))
		if err := p.publishWithRetry(ctx, events[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *EventBridgePublisher) publishWithRetry(ctx context.Context, batch []Event) error {
	backoff := p.cfg.RetryBackoff

	var err error
	for attempt := 1; attempt <= p.cfg.MaxRetries; attempt++ {
		err = p.publishBatch(ctx, batch)
		if err == nil || !isRetryable(err) || attempt == p.cfg.MaxRetries {
			break
		}

		p.logger.Warn("Retrying event publication",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (p *EventBridgePublisher) publishBatch(ctx context.Context, batch []Event) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(batch))
	sent := make([]Event, 0, len(batch))

	for _, event := range batch {
		detail, err := json.Marshal(event)
		if err != nil {
			p.logger.Error("Failed to marshal event",
				zap.String("event_type", event.Type),
				zap.Error(err),
			)
			p.countFailed(event.Type)
			continue
		}

		entry := types.PutEventsRequestEntry{
			Source:     aws.String(p.cfg.Source),
			DetailType: aws.String(event.Type),
			Detail:     aws.String(string(detail)),
			Time:       aws.Time(event.Timestamp),
		}
		if p.cfg.EventBusName != "" {
			entry.EventBusName = aws.String(p.cfg.EventBusName)
		}
		entries = append(entries, entry)
		sent = append(sent, event)
	}

	if len(entries) == 0 {
		return nil
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return classifyAWSError(err)
	}

	failed := 0
	for i, entry := range out.Entries {
		if i >= len(sent) {
			break
		}
		if entry.ErrorCode != nil {
			failed++
			p.countFailed(sent[i].Type)
			p.logger.Error("Failed to publish event",
				zap.String("event_id", sent[i].ID),
				zap.String("event_type", sent[i].Type),
				zap.String("error_code", aws.ToString(entry.ErrorCode)),
				zap.String("error_message", aws.ToString(entry.ErrorMessage)),
			)
			continue
		}
		p.countPublished(sent[i].Type)
	}

	if failed > 0 || out.FailedEntryCount > 0 {
		return &PartialFailureError{Failed: max(failed, int(out.FailedEntryCount)), Total: len(entries)}
	}

	p.logger.Debug("Events published to EventBridge",
		zap.Int("count", len(entries)),
		zap.String("event_bus", p.cfg.EventBusName),
	)
	return nil
}

func (p *EventBridgePublisher) countPublished(eventType string) {
	if p.metrics != nil {
		p.metrics.EventsPublished.WithLabelValues(eventType).Inc()
	}
}

func (p *EventBridgePublisher) countFailed(eventType string) {
	if p.metrics != nil {
		p.metrics.EventsFailed.WithLabelValues(eventType).Inc()
	}
}

// PartialFailureError reports entries EventBridge rejected individually.
// It is not retried, since resending would duplicate the accepted entries.
type PartialFailureError struct {
	Failed int
	Total  int
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%d of %d events failed to publish", e.Failed, e.Total)
}

// RetryableError marks a transient AWS failure.
type RetryableError struct {
	Code string
	Err  error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error %s: %v", e.Code, e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }

var retryableCodes = map[string]bool{
	"ThrottlingException":         true,
	"InternalException":           true,
	"ServiceUnavailable":          true,
	"RequestLimitExceeded":        true,
	"LimitExceededException":      true,
	"ServiceUnavailableException": true,
}

// classifyAWSError wraps transient AWS API errors in RetryableError.
func classifyAWSError(err error) error {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return fmt.Errorf("failed to publish events to EventBridge: %w", err)
	}
	if retryableCodes[ae.ErrorCode()] || ae.ErrorFault() == smithy.FaultServer {
		return &RetryableError{Code: ae.ErrorCode(), Err: err}
	}
	return fmt.Errorf("eventbridge rejected request (%s): %w", ae.ErrorCode(), err)
}

func isRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}
