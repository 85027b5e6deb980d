package models

import (
	"time"
)

// PickupRequest 回收请求记录
// 创建后不可变，仅 address 允许从空值补全一次
type PickupRequest struct {
	ID         uint      `gorm:"primarykey" json:"id"`                           // 主键
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                        // 创建时间（库端赋值）
	SKU        string    `gorm:"type:varchar(32);not null;index" json:"sku"`     // 产品编码（大写）
	ItemNo     *string   `gorm:"type:varchar(64)" json:"item_no"`                // 个别番号（保留原大小写）
	Qty        int       `gorm:"not null;default:1" json:"qty"`                  // 数量 [1,999]
	LoadStatus string    `gorm:"type:varchar(10);not null" json:"load_status"`   // 适载状态 O/X/UNKNOWN
	Note       string    `gorm:"type:varchar(255)" json:"note"`                  // 备注（≤100 字符）
	Lat        float64   `gorm:"not null" json:"lat"`                            // 纬度
	Lng        float64   `gorm:"not null" json:"lng"`                            // 经度
	Accuracy   *float64  `json:"accuracy"`                                       // 定位精度（米）
	Address    *string   `gorm:"type:varchar(512)" json:"address"`               // 逆地理编码地址（可补全）
	PhotoURL   *string   `gorm:"type:varchar(512);column:photo_url" json:"photo_url"` // 照片地址
}

// TableName 指定表名
func (PickupRequest) TableName() string {
	return "pickup_requests"
}

// HasAddress 判断地址是否已补全
func (r *PickupRequest) HasAddress() bool {
	return r != nil && r.Address != nil && *r.Address != ""
}
