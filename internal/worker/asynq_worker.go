package worker

import (
	"context"
	"encoding/json"

	"github.com/qr-pickup/internal/logger"
	"github.com/qr-pickup/internal/provider"
	"github.com/qr-pickup/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPickupGeocodeRetry, c.handlePickupGeocodeRetry)
}

func (c *Consumer) handlePickupGeocodeRetry(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_geocode_retry_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PickupGeocodeRetryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_geocode_retry_unmarshal_failed", "error", err)
		return err
	}
	if payload.PickupID == 0 {
		logger.Debugw("worker_geocode_retry_skip_invalid_payload", "pickup_id", payload.PickupID)
		return nil
	}
	if c.BackfillService == nil {
		logger.Warnw("worker_geocode_retry_skip_service_nil", "pickup_id", payload.PickupID)
		return nil
	}
	if err := c.BackfillService.BackfillOne(ctx, payload.PickupID); err != nil {
		logger.Warnw("worker_geocode_retry_failed", "pickup_id", payload.PickupID, "error", err)
		return err
	}
	return nil
}
