package models

import (
	"time"
)

// Product 产品目录（回收对象的 SKU 注册表）
type Product struct {
	ID        uint      `gorm:"primarykey" json:"id"`                           // 主键
	SKU       string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"sku"` // 产品编码（大写，唯一）
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`         // 展示名称
	Image     string    `gorm:"type:varchar(255)" json:"image"`                 // 产品图片路径
	Message   string    `gorm:"type:varchar(255)" json:"message"`               // 扫码页提示文案
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`            // 是否启用
	CreatedAt time.Time `json:"created_at"`                                     // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                     // 更新时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
