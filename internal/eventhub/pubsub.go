package eventhub

import (
	"context"
	"encoding/json"

	"actionflow/backend/internal/config"
	"actionflow/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StartPubSubListener subscribes to the complaint event channel and feeds
// every event into the hub until ctx is done. It returns once the
// subscription is confirmed.
func (m *ManagerService) StartPubSubListener(ctx context.Context, rdb *redis.Client) error {
	pubsub := rdb.Subscribe(ctx, config.ComplaintEventsChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return err
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev models.ComplaintEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					m.logger.Warn("bad complaint event on pub/sub", zap.Error(err))
					continue
				}
				select {
				case m.EventCh <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return nil
}
