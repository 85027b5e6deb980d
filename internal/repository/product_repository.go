package repository

import (
	"errors"
	"strings"

	"github.com/qr-pickup/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 产品目录数据访问接口
type ProductRepository interface {
	ListActive() ([]models.Product, error)
	GetBySKU(sku string) (*models.Product, error)
	ExistsSKU(sku string) (bool, error)
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建产品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// ListActive 获取启用的产品列表
func (r *GormProductRepository) ListActive() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Model(&models.Product{}).
		Where("is_active = ?", true).
		Order("sku ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetBySKU 根据 SKU 获取产品（大小写不敏感）
func (r *GormProductRepository) GetBySKU(sku string) (*models.Product, error) {
	normalized := strings.ToUpper(strings.TrimSpace(sku))
	if normalized == "" {
		return nil, nil
	}
	var product models.Product
	if err := r.db.Where("sku = ?", normalized).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// ExistsSKU 判断 SKU 是否在注册表中且启用
func (r *GormProductRepository) ExistsSKU(sku string) (bool, error) {
	normalized := strings.ToUpper(strings.TrimSpace(sku))
	if normalized == "" {
		return false, nil
	}
	var count int64
	err := r.db.Model(&models.Product{}).
		Where("sku = ? AND is_active = ?", normalized, true).
		Count(&count).Error
	return count > 0, err
}
