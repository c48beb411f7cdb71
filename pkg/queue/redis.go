package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"BundleScope/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisQueue is a Redis-list backed job queue. Failed messages are retried
// on a delay via a sorted set; messages that exhaust their retries land on
// a dead-letter list for manual inspection.
type RedisQueue struct {
	logger    *logger.Logger
	config    *QueueConfig
	client    *redis.Client
	jobs      map[string]Job
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool
	stopCh    chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	keyPrefix string
}

var _ QueueService = (*RedisQueue)(nil)

// RedisQueueOption configures RedisQueue.
type RedisQueueOption func(*RedisQueue)

// WithKeyPrefix sets a custom key prefix.
func WithKeyPrefix(prefix string) RedisQueueOption {
	return func(r *RedisQueue) {
		r.keyPrefix = prefix
	}
}

// NewRedisQueue creates a new Redis queue.
func NewRedisQueue(lgr *logger.Logger, config *QueueConfig, client *redis.Client, opts ...RedisQueueOption) *RedisQueue {
	if config == nil {
		config = &QueueConfig{}
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	rq := &RedisQueue{
		logger:    lgr.Component("queue"),
		config:    config,
		client:    client,
		jobs:      make(map[string]Job),
		stopCh:    make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
		keyPrefix: "bundlescope:queue",
	}
	for _, opt := range opts {
		opt(rq)
	}
	return rq
}

// RegisterJob registers a handler for one message type.
func (r *RedisQueue) RegisterJob(job Job) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.Type()]; exists {
		r.logger.Warn("job already registered", logger.String("job", job.Name()))
		return
	}
	r.jobs[job.Type()] = job
	r.logger.Info("job registered",
		logger.String("job", job.Name()),
		logger.String("type", job.Type()))
}

// Start pings Redis and launches the workers and the retry processor.
func (r *RedisQueue) Start() error {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return fmt.Errorf("queue already running")
	}
	r.isRunning = true
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		r.mu.Lock()
		r.isRunning = false
		r.mu.Unlock()
		return fmt.Errorf("redis ping: %w", err)
	}

	for i := 0; i < r.config.Workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	r.wg.Add(1)
	go r.retryProcessor()

	r.logger.Info("queue started", logger.Int("workers", r.config.Workers))
	return nil
}

// Stop drains workers, bounded by ctx.
func (r *RedisQueue) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return nil
	}
	r.isRunning = false
	r.cancel()
	close(r.stopCh)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		r.logger.Warn("timeout waiting for queue workers", logger.Error(ctx.Err()))
		return fmt.Errorf("queue stop: %w", ctx.Err())
	case <-done:
		r.logger.Info("queue stopped")
		return nil
	}
}

// PublishMessage enqueues a payload (implements QueueService).
func (r *RedisQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.isRunning {
		return fmt.Errorf("queue not running")
	}
	if _, exists := r.jobs[msgType]; !exists {
		return fmt.Errorf("no job registered for type: %s", msgType)
	}

	msg := Message{
		ID:        strconv.FormatInt(time.Now().UnixNano(), 10),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := r.client.LPush(ctx, r.queueKey(), data).Err(); err != nil {
		return fmt.Errorf("lpush: %w", err)
	}
	return nil
}

func (r *RedisQueue) worker(id int) {
	defer r.wg.Done()

	for {
		select {
		case <-r.stopCh:
			return
		case <-r.ctx.Done():
			return
		default:
			r.processNext()
		}
	}
}

func (r *RedisQueue) processNext() {
	ctx, cancel := context.WithTimeout(r.ctx, 2*time.Second)
	defer cancel()

	result, err := r.client.BRPop(ctx, time.Second, r.queueKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return
		}
		r.logger.Error("brpop error", logger.Error(err))
		time.Sleep(time.Second)
		return
	}
	if len(result) < 2 {
		return
	}

	var msg Message
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		r.logger.Error("unmarshal message", logger.Error(err))
		return
	}
	r.dispatch(msg)
}

func (r *RedisQueue) dispatch(msg Message) {
	r.mu.RLock()
	job, exists := r.jobs[msg.Type]
	r.mu.RUnlock()
	if !exists {
		r.logger.Error("no job for message",
			logger.String("type", msg.Type),
			logger.String("id", msg.ID))
		return
	}

	if err := job.Handle(r.ctx, normalizePayload(msg.Payload)); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		r.handleFailure(msg, job, err)
	}
}

// normalizePayload turns JSON-decoded maps back into raw JSON so jobs can
// unmarshal into their concrete types via ParsePayload.
func normalizePayload(payload interface{}) interface{} {
	m, ok := payload.(map[string]interface{})
	if !ok {
		return payload
	}
	data, err := json.Marshal(m)
	if err != nil {
		return payload
	}
	return json.RawMessage(data)
}

func (r *RedisQueue) handleFailure(msg Message, job Job, err error) {
	r.logger.Error("message processing error",
		logger.String("id", msg.ID),
		logger.String("job", job.Name()),
		logger.Int("attempt", msg.Attempts+1),
		logger.Error(err))

	if msg.Attempts >= r.config.RetryLimit {
		r.deadLetter(msg)
		return
	}
	msg.Attempts++
	r.scheduleRetry(msg, time.Now().Add(r.config.RetryDelay))
}

func (r *RedisQueue) scheduleRetry(msg Message, at time.Time) {
	data, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("marshal retry", logger.Error(err))
		return
	}
	err = r.client.ZAdd(context.Background(), r.retryKey(), redis.Z{
		Score:  float64(at.Unix()),
		Member: data,
	}).Err()
	if err != nil {
		r.logger.Error("zadd retry", logger.Error(err))
	}
}

func (r *RedisQueue) deadLetter(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("marshal dlq", logger.Error(err))
		return
	}
	if err := r.client.LPush(context.Background(), r.dlqKey(), data).Err(); err != nil {
		r.logger.Error("lpush dlq", logger.Error(err))
	}
	r.logger.Error("message dead-lettered",
		logger.String("id", msg.ID),
		logger.String("type", msg.Type))
}

// retryProcessor moves due retry messages back onto the main queue.
func (r *RedisQueue) retryProcessor() {
	defer r.wg.Done()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.requeueDue()
		}
	}
}

func (r *RedisQueue) requeueDue() {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	due, err := r.client.ZRangeByScore(r.ctx, r.retryKey(), &redis.ZRangeBy{
		Min: "0",
		Max: now,
	}).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		r.logger.Error("fetch retry messages", logger.Error(err))
		return
	}

	for _, member := range due {
		pipe := r.client.TxPipeline()
		pipe.ZRem(r.ctx, r.retryKey(), member)
		pipe.LPush(r.ctx, r.queueKey(), member)
		if _, err := pipe.Exec(r.ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			r.logger.Error("requeue retry message", logger.Error(err))
		}
	}
}

func (r *RedisQueue) queueKey() string { return r.keyPrefix + ":messages" }
func (r *RedisQueue) retryKey() string { return r.keyPrefix + ":retry" }
func (r *RedisQueue) dlqKey() string   { return r.keyPrefix + ":dlq" }
