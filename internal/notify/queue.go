package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"actionflow/backend/internal/config"
	"actionflow/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Queue pushes notifications onto a Redis list. Notify returns at once; the
// push runs in its own goroutine and failures are only logged.
type Queue struct {
	rdb     *redis.Client
	key     string
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
}

func NewQueue(rdb *redis.Client, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		rdb:     rdb,
		key:     config.NotificationQueueKey,
		timeout: config.NotificationSendTimeout,
		logger:  logger,
	}
}

func (q *Queue) Notify(ctx context.Context, n models.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		q.logger.Error("notification not encoded", zap.String("kind", string(n.Kind)), zap.Error(err))
		return
	}

	// the request context may be cancelled as soon as the handler returns
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.timeout)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer cancel()
		if err := q.rdb.LPush(pushCtx, q.key, payload).Err(); err != nil {
			q.logger.Error("notification not queued",
				zap.String("kind", string(n.Kind)),
				zap.String("recipient", n.Recipient),
				zap.Error(err))
		}
	}()
}

// Wait blocks until every pending push has finished.
func (q *Queue) Wait() {
	q.wg.Wait()
}
