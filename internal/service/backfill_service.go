package service

import (
	"context"
	"math"
	"time"

	"github.com/qr-pickup/internal/constants"
	"github.com/qr-pickup/internal/logger"
	"github.com/qr-pickup/internal/repository"
)

// BackfillResult 一次补全批次的结果
type BackfillResult struct {
	Updated   int   `json:"updated"`
	Remaining int64 `json:"remaining"`
}

// BackfillService 地址补全批处理
// 逐条串行调用逆地理编码并保持固定间隔，不允许并行化
type BackfillService struct {
	pickupRepo repository.PickupRequestRepository
	geocoder   Geocoder
	delay      time.Duration
}

// NewBackfillService 创建地址补全服务
func NewBackfillService(pickupRepo repository.PickupRequestRepository, geocoder Geocoder, delay time.Duration) *BackfillService {
	if delay <= 0 {
		delay = 250 * time.Millisecond
	}
	return &BackfillService{
		pickupRepo: pickupRepo,
		geocoder:   geocoder,
		delay:      delay,
	}
}

// Run 补全一批缺失地址的记录
// 失败的记录跳过不计数，留待下一轮；记录级幂等，可安全重跑
func (s *BackfillService) Run(ctx context.Context, limit int) (BackfillResult, error) {
	limit = normalizeBackfillLimit(limit)

	rows, err := s.pickupRepo.ListMissingAddress(limit)
	if err != nil {
		return BackfillResult{}, err
	}

	updated := 0
	for i, row := range rows {
		if i > 0 {
			// Nominatim 限速要求：逐条调用之间保持间隔
			if err := sleepCtx(ctx, s.delay); err != nil {
				return BackfillResult{Updated: updated}, err
			}
		}

		if math.IsNaN(row.Lat) || math.IsNaN(row.Lng) ||
			math.IsInf(row.Lat, 0) || math.IsInf(row.Lng, 0) {
			continue
		}

		address, geocodeErr := s.geocoder.Reverse(ctx, row.Lat, row.Lng)
		if geocodeErr != nil {
			logger.Warnw("backfill_geocode_failed", "pickup_id", row.ID, "error", geocodeErr)
			continue
		}
		if address == "" {
			continue
		}

		applied, updateErr := s.pickupRepo.UpdateAddressIfEmpty(row.ID, address)
		if updateErr != nil {
			logger.Warnw("backfill_update_failed", "pickup_id", row.ID, "error", updateErr)
			continue
		}
		if applied {
			updated++
		}
	}

	remaining, err := s.pickupRepo.CountMissingAddress()
	if err != nil {
		return BackfillResult{Updated: updated}, err
	}
	return BackfillResult{Updated: updated, Remaining: remaining}, nil
}

// BackfillOne 补全单条记录的地址（队列补查任务使用）
func (s *BackfillService) BackfillOne(ctx context.Context, pickupID uint) error {
	row, err := s.pickupRepo.GetByID(pickupID)
	if err != nil {
		return err
	}
	if row == nil || row.HasAddress() {
		return nil
	}

	address, err := s.geocoder.Reverse(ctx, row.Lat, row.Lng)
	if err != nil {
		return err
	}
	if address == "" {
		return nil
	}

	_, err = s.pickupRepo.UpdateAddressIfEmpty(row.ID, address)
	return err
}

func normalizeBackfillLimit(limit int) int {
	if limit <= 0 {
		return constants.BackfillDefaultLimit
	}
	if limit > constants.BackfillMaxLimit {
		return constants.BackfillMaxLimit
	}
	return limit
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
