package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"actionflow/backend/internal/config"
	"actionflow/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Sender delivers one rendered message.
type Sender interface {
	Name() string
	Send(ctx context.Context, to, subject, body string) error
}

// Dispatcher pops queued notifications and hands them to every sender.
type Dispatcher struct {
	rdb      *redis.Client
	key      string
	renderer *Renderer
	senders  []Sender
	logger   *zap.Logger
	// PollTimeout bounds each BRPOP so Run notices cancellation.
	PollTimeout time.Duration
}

func NewDispatcher(rdb *redis.Client, r *Renderer, logger *zap.Logger, senders ...Sender) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		rdb:         rdb,
		key:         config.NotificationQueueKey,
		renderer:    r,
		senders:     senders,
		logger:      logger,
		PollTimeout: 5 * time.Second,
	}
}

// Run delivers notifications until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("notification dispatcher started", zap.Int("senders", len(d.senders)))
	for {
		res, err := d.rdb.BRPop(ctx, d.PollTimeout, d.key).Result()
		if ctx.Err() != nil {
			d.logger.Info("notification dispatcher stopped")
			return
		}
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			d.logger.Error("notification queue read failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		// res is [key, value]
		if err := d.Handle(ctx, res[1]); err != nil {
			d.logger.Error("notification not delivered", zap.Error(err))
		}
	}
}

// Handle renders one queued payload and sends it through every sender. It
// returns the joined sender errors.
func (d *Dispatcher) Handle(ctx context.Context, payload string) error {
	var n models.Notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}
	subject, body, err := d.renderer.Render(n)
	if err != nil {
		return err
	}

	var errs []error
	for _, s := range d.senders {
		sendCtx, cancel := context.WithTimeout(ctx, config.NotificationSendTimeout)
		err := s.Send(sendCtx, n.Recipient, subject, body)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		d.logger.Debug("notification sent",
			zap.String("sender", s.Name()),
			zap.String("kind", string(n.Kind)),
			zap.String("recipient", n.Recipient))
	}
	return errors.Join(errs...)
}
