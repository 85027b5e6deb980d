package repository

import (
	"errors"

	"github.com/qr-pickup/internal/models"

	"gorm.io/gorm"
)

// PickupRequestRepository 回收请求数据访问接口
type PickupRequestRepository interface {
	Create(row *models.PickupRequest) error
	GetByID(id uint) (*models.PickupRequest, error)
	ListRecent(limit int) ([]models.PickupRequest, error)
	ListMissingAddress(limit int) ([]models.PickupRequest, error)
	CountMissingAddress() (int64, error)
	UpdateAddressIfEmpty(id uint, address string) (bool, error)
}

// GormPickupRequestRepository GORM 实现
type GormPickupRequestRepository struct {
	db *gorm.DB
}

// NewPickupRequestRepository 创建回收请求仓库
func NewPickupRequestRepository(db *gorm.DB) *GormPickupRequestRepository {
	return &GormPickupRequestRepository{db: db}
}

// Create 插入一条回收请求
func (r *GormPickupRequestRepository) Create(row *models.PickupRequest) error {
	return r.db.Create(row).Error
}

// GetByID 根据 ID 获取回收请求
func (r *GormPickupRequestRepository) GetByID(id uint) (*models.PickupRequest, error) {
	var row models.PickupRequest
	if err := r.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListRecent 按创建时间倒序获取最近的回收请求
func (r *GormPickupRequestRepository) ListRecent(limit int) ([]models.PickupRequest, error) {
	var rows []models.PickupRequest
	query := r.db.Model(&models.PickupRequest{}).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListMissingAddress 获取地址缺失的记录，最近的优先
func (r *GormPickupRequestRepository) ListMissingAddress(limit int) ([]models.PickupRequest, error) {
	var rows []models.PickupRequest
	query := r.db.Model(&models.PickupRequest{}).
		Where("address IS NULL OR address = ?", "").
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountMissingAddress 统计地址缺失的记录数
func (r *GormPickupRequestRepository) CountMissingAddress() (int64, error) {
	var count int64
	err := r.db.Model(&models.PickupRequest{}).
		Where("address IS NULL OR address = ?", "").
		Count(&count).Error
	return count, err
}

// UpdateAddressIfEmpty 仅在地址仍为空时写入（空→值单向迁移）
func (r *GormPickupRequestRepository) UpdateAddressIfEmpty(id uint, address string) (bool, error) {
	result := r.db.Model(&models.PickupRequest{}).
		Where("id = ?", id).
		Where("address IS NULL OR address = ?", "").
		Update("address", address)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
