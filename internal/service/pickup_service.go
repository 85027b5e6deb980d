package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/qr-pickup/internal/constants"
	"github.com/qr-pickup/internal/http/response"
	"github.com/qr-pickup/internal/logger"
	"github.com/qr-pickup/internal/models"
	"github.com/qr-pickup/internal/repository"
)

// GeocodeRetryEnqueuer 地址补查任务入队接口
type GeocodeRetryEnqueuer interface {
	EnqueuePickupGeocodeRetry(pickupID uint, delay time.Duration) error
}

// CreatePickupInput 回收请求提交载荷
// 数值字段保留原始文本，由服务端统一解析与钳制
type CreatePickupInput struct {
	SKU        string
	ItemNo     string
	Qty        string
	LoadStatus string
	Note       string
	Lat        string
	Lng        string
	Accuracy   string
	Photo      []byte
	PhotoType  string
}

// PickupService 回收请求提交管线
type PickupService struct {
	pickupRepo  repository.PickupRequestRepository
	productRepo repository.ProductRepository
	geocoder    Geocoder
	photoStore  PhotoStore
	enqueuer    GeocodeRetryEnqueuer
	retryDelay  time.Duration
}

// NewPickupService 创建回收请求服务
func NewPickupService(
	pickupRepo repository.PickupRequestRepository,
	productRepo repository.ProductRepository,
	geocoder Geocoder,
	photoStore PhotoStore,
	enqueuer GeocodeRetryEnqueuer,
	retryDelay time.Duration,
) *PickupService {
	return &PickupService{
		pickupRepo:  pickupRepo,
		productRepo: productRepo,
		geocoder:    geocoder,
		photoStore:  photoStore,
		enqueuer:    enqueuer,
		retryDelay:  retryDelay,
	}
}

// Create 校验并持久化一次回收请求
// 顺序：校验 → 逆地理编码（尽力而为） → 照片上传（硬失败） → 入库
func (s *PickupService) Create(ctx context.Context, input CreatePickupInput) (*models.PickupRequest, error) {
	sku := strings.ToUpper(strings.TrimSpace(input.SKU))
	if sku == "" {
		return nil, response.WrapError(response.CodeBadRequest, "Invalid sku", nil)
	}
	exists, err := s.productRepo.ExistsSKU(sku)
	if err != nil {
		return nil, response.WrapError(response.CodeInternal, "Product lookup failed", err)
	}
	if !exists {
		return nil, response.WrapError(response.CodeBadRequest, "Invalid sku", nil)
	}

	lat, latOK := parseFiniteFloat(input.Lat)
	lng, lngOK := parseFiniteFloat(input.Lng)
	if !latOK || !lngOK {
		return nil, response.WrapError(response.CodeBadRequest, "Invalid lat/lng", nil)
	}

	row := &models.PickupRequest{
		SKU:        sku,
		ItemNo:     normalizeItemNo(input.ItemNo),
		Qty:        NormalizeQty(input.Qty),
		LoadStatus: NormalizeLoadStatus(input.LoadStatus),
		Note:       NormalizeNote(input.Note),
		Lat:        lat,
		Lng:        lng,
		Accuracy:   normalizeAccuracy(input.Accuracy),
	}

	address, geocodeErr := s.geocoder.Reverse(ctx, lat, lng)
	if geocodeErr != nil {
		logger.Warnw("pickup_geocode_failed", "sku", sku, "error", geocodeErr)
	}
	if address != "" {
		row.Address = &address
	}

	if len(input.Photo) > 0 {
		photoURL, err := s.photoStore.Save(sku, input.Photo, input.PhotoType)
		if err != nil {
			if isPhotoClientError(err) {
				return nil, response.WrapError(response.CodeBadRequest, "Invalid photo format", err)
			}
			return nil, response.WrapError(response.CodeInternal, "Photo upload failed", err)
		}
		row.PhotoURL = &photoURL
	}

	if err := s.pickupRepo.Create(row); err != nil {
		return nil, response.WrapError(response.CodeInternal, "Insert failed", err)
	}

	// 编码失败的记录排队补查，地址留空不阻塞提交
	if row.Address == nil && s.enqueuer != nil {
		if err := s.enqueuer.EnqueuePickupGeocodeRetry(row.ID, s.retryDelay); err != nil {
			logger.Warnw("pickup_geocode_retry_enqueue_failed", "pickup_id", row.ID, "error", err)
		}
	}

	return row, nil
}

// NormalizeQty 解析数量并钳制到 [1,999]，非法输入回退为 1
func NormalizeQty(raw string) int {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || qty <= 0 {
		return constants.QtyMin
	}
	if qty > constants.QtyMax {
		return constants.QtyMax
	}
	return qty
}

// NormalizeLoadStatus 适载状态归一化，仅 O/X 保留，其余归 UNKNOWN
func NormalizeLoadStatus(raw string) string {
	status := strings.ToUpper(strings.TrimSpace(raw))
	if status == constants.LoadStatusLoaded || status == constants.LoadStatusUnloaded {
		return status
	}
	return constants.LoadStatusUnknown
}

// NormalizeNote 备注去首尾空白并按字符截断到 100
func NormalizeNote(raw string) string {
	note := strings.TrimSpace(raw)
	runes := []rune(note)
	if len(runes) > constants.NoteMaxRunes {
		return string(runes[:constants.NoteMaxRunes])
	}
	return note
}

// ParseScanCode 解析扫码载荷 <sku>_<item_no>
// 按第一个下划线切分，SKU 转大写，个别番号保留原大小写
func ParseScanCode(raw string) (string, *string) {
	trimmed := strings.TrimSpace(raw)
	idx := strings.Index(trimmed, "_")
	if idx < 0 {
		return strings.ToUpper(trimmed), nil
	}
	sku := strings.ToUpper(trimmed[:idx])
	item := strings.TrimSpace(trimmed[idx+1:])
	if item == "" {
		return sku, nil
	}
	return sku, &item
}

func normalizeItemNo(raw string) *string {
	item := strings.TrimSpace(raw)
	if item == "" {
		return nil
	}
	return &item
}

func normalizeAccuracy(raw string) *float64 {
	value, ok := parseFiniteFloat(raw)
	if !ok || value < 0 {
		return nil
	}
	return &value
}

func parseFiniteFloat(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

func isPhotoClientError(err error) bool {
	return errors.Is(err, ErrPhotoType) ||
		errors.Is(err, ErrPhotoTooLarge) ||
		errors.Is(err, ErrPhotoEncoding)
}
