package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/lucaswan/paperdesk/internal/config"
	"github.com/lucaswan/paperdesk/pkg/logger"
)

const (
	TaskTypeMail = "mail:deliver"
)

// MailTask represents an email delivery job. The body may contain invitation
// accept links; the payload itself is never logged.
type MailTask struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// MailQueue defines the interface for mail delivery dispatch.
type MailQueue interface {
	// Enqueue adds a task to the queue
	Enqueue(task *MailTask) error
	// IsAsync returns true if queue processes tasks asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// Global mail queue instance
var (
	globalMailQueue MailQueue
	mailQueueOnce   sync.Once
)

// InitMailQueue initializes the global mail queue based on config
func InitMailQueue(cfg *config.Config) MailQueue {
	mailQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncMailQueue(&cfg.Redis)
			if err != nil {
				logger.Infof("[MailQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalMailQueue = NewSyncMailQueue()
			} else {
				logger.Infof("[MailQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalMailQueue = queue
			}
		} else {
			logger.Infof("[MailQueue] Sync queue initialized (Redis disabled)")
			globalMailQueue = NewSyncMailQueue()
		}
	})
	return globalMailQueue
}

// GetMailQueue returns the global mail queue instance
func GetMailQueue() MailQueue {
	return globalMailQueue
}

// AsyncMailQueue implements MailQueue using asynq (Redis-based)
type AsyncMailQueue struct {
	client *asynq.Client
}

// NewAsyncMailQueue creates a new Redis-based async queue
func NewAsyncMailQueue(cfg *config.RedisConfig) (*AsyncMailQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Ping Redis via the inspector to verify the connection before use
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	_, err := inspector.Queues()
	if err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncMailQueue{client: client}, nil
}

// Enqueue adds a mail task to the async queue
func (q *AsyncMailQueue) Enqueue(task *MailTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeMail, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Infof("[AsyncMailQueue] Task enqueued: id=%s, queue=%s", info.ID, info.Queue)
	return nil
}

// IsAsync returns true for async queue
func (q *AsyncMailQueue) IsAsync() bool {
	return true
}

// Close closes the async queue client
func (q *AsyncMailQueue) Close() error {
	return q.client.Close()
}

// SyncMailQueue implements MailQueue with synchronous processing (no Redis)
type SyncMailQueue struct {
	processor func(context.Context, *MailTask) error
}

// NewSyncMailQueue creates a new synchronous queue
func NewSyncMailQueue() *SyncMailQueue {
	return &SyncMailQueue{}
}

// SetProcessor sets the function to process tasks synchronously
func (q *SyncMailQueue) SetProcessor(processor func(context.Context, *MailTask) error) {
	q.processor = processor
}

// Enqueue processes the task immediately in a goroutine so the HTTP
// response is not blocked on SMTP
func (q *SyncMailQueue) Enqueue(task *MailTask) error {
	if q.processor == nil {
		logger.Infof("[SyncMailQueue] Warning: no processor set, task will be dropped")
		return nil
	}

	go func() {
		ctx := context.Background()
		if err := q.processor(ctx, task); err != nil {
			logger.Infof("[SyncMailQueue] Mail delivery failed: %v", err)
		}
	}()

	return nil
}

// IsAsync returns false for sync queue
func (q *SyncMailQueue) IsAsync() bool {
	return false
}

// Close is a no-op for sync queue
func (q *SyncMailQueue) Close() error {
	return nil
}
