package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/lucaswan/paperdesk/internal/config"
	"github.com/lucaswan/paperdesk/pkg/logger"
)

// MailWorker processes async mail tasks from the queue
type MailWorker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor func(context.Context, *MailTask) error
	wg        sync.WaitGroup
	running   bool
	mu        sync.Mutex
}

// NewMailWorker creates a new worker instance
func NewMailWorker(cfg *config.RedisConfig) *MailWorker {
	if !cfg.Enabled {
		return nil
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Infof("[MailWorker] Error processing task %s: %v", task.Type(), err)
			}),
		},
	)

	return &MailWorker{
		server: server,
		mux:    asynq.NewServeMux(),
	}
}

// SetProcessor sets the function that delivers mail tasks
func (w *MailWorker) SetProcessor(processor func(context.Context, *MailTask) error) {
	w.processor = processor
}

// Start begins processing tasks
func (w *MailWorker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.mux.HandleFunc(TaskTypeMail, w.handleMailTask)

	w.running = true
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		logger.Infof("[MailWorker] Starting async worker...")
		if err := w.server.Run(w.mux); err != nil {
			logger.Infof("[MailWorker] Server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the worker
func (w *MailWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	logger.Infof("[MailWorker] Shutting down...")
	w.server.Shutdown()
	w.running = false
	w.wg.Wait()
	logger.Infof("[MailWorker] Shutdown complete")
}

// handleMailTask processes a single mail task. The payload carries accept
// links so only recipient count and subject are logged.
func (w *MailWorker) handleMailTask(ctx context.Context, t *asynq.Task) error {
	var task MailTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		logger.Infof("[MailWorker] Failed to unmarshal task: %v", err)
		return err
	}

	logger.Infof("[MailWorker] Delivering mail: recipients=%d, subject=%s", len(task.To), task.Subject)

	if w.processor == nil {
		logger.Infof("[MailWorker] Warning: no processor set")
		return nil
	}

	return w.processor(ctx, &task)
}

// Global worker instance
var (
	globalMailWorker *MailWorker
	mailWorkerOnce   sync.Once
)

// InitMailWorker initializes the global worker
func InitMailWorker(cfg *config.RedisConfig) *MailWorker {
	mailWorkerOnce.Do(func() {
		globalMailWorker = NewMailWorker(cfg)
	})
	return globalMailWorker
}

// GetMailWorker returns the global worker instance
func GetMailWorker() *MailWorker {
	return globalMailWorker
}
