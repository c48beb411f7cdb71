package logger

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Publisher sends aggregated log batches to an external sink.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

type CollectorConfig struct {
	FlushInterval  time.Duration // e.g. 30s
	CountThreshold int           // max unique entries before an early flush
	Topic          string
	Publisher      Publisher
}

type AggregatedEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// Collector deduplicates repeated error logs and flushes them in batches,
// keeping noisy degradation paths from flooding the sink.
type Collector struct {
	cfg     *CollectorConfig
	entries map[string]*AggregatedEntry
	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewCollector(cfg *CollectorConfig) *Collector {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Collector{
		cfg:     cfg,
		entries: make(map[string]*AggregatedEntry),
		cancel:  cancel,
	}
	c.wg.Add(1)
	go c.loop(ctx)
	return c
}

func (c *Collector) Add(level, msg string, fields []Field) {
	fieldMap := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		k, v := f.GetKeyValue()
		fieldMap[k] = v
	}

	now := time.Now()
	key := entryKey(level, msg, fieldMap)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.Count++
		e.LastSeen = now
	} else {
		c.entries[key] = &AggregatedEntry{
			Level:     level,
			Message:   msg,
			Fields:    fieldMap,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}

	if len(c.entries) >= c.cfg.CountThreshold {
		c.flushLocked()
	}
}

func entryKey(level, msg string, fields map[string]interface{}) string {
	data, _ := json.Marshal(struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields"`
	}{level, msg, fields})
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

func (c *Collector) loop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.flushLocked()
			c.mu.Unlock()
		case <-ctx.Done():
			c.mu.Lock()
			c.flushLocked()
			c.mu.Unlock()
			return
		}
	}
}

func (c *Collector) flushLocked() {
	if len(c.entries) == 0 {
		return
	}

	batch := make([]AggregatedEntry, 0, len(c.entries))
	for _, e := range c.entries {
		batch = append(batch, *e)
	}
	c.entries = make(map[string]*AggregatedEntry)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := c.cfg.Publisher.PublishMessage(ctx, c.cfg.Topic, batch); err != nil {
			fmt.Printf("log collector flush failed: %v\n", err)
		}
	}()
}

func (c *Collector) Close() {
	c.cancel()
	c.wg.Wait()
}
