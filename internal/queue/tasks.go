package queue

import (
	"encoding/json"

	"github.com/qr-pickup/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPickupGeocodeRetry 回收请求地址补查任务
	TaskPickupGeocodeRetry = constants.TaskPickupGeocodeRetry
)

// PickupGeocodeRetryPayload 地址补查任务载荷
type PickupGeocodeRetryPayload struct {
	PickupID uint `json:"pickup_id"`
}

// NewPickupGeocodeRetryTask 创建地址补查任务
func NewPickupGeocodeRetryTask(payload PickupGeocodeRetryPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPickupGeocodeRetry, body), nil
}
