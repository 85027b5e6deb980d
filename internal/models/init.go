package models

import (
	"strings"

	"github.com/qr-pickup/internal/logger"
)

// defaultProducts 默认产品目录
var defaultProducts = []Product{
	{SKU: "BPS", Name: "BPS", Image: "/products/BPS.jpg", Message: "회수 대상 제품입니다. 아래 버튼을 눌러 회수 요청을 보내주세요.", IsActive: true},
	{SKU: "MS108", Name: "MS108", Image: "/products/MS108.jpg", Message: "회수 대상 제품입니다. 아래 버튼을 눌러 회수 요청을 보내주세요.", IsActive: true},
	{SKU: "MS112", Name: "MS112", Image: "/products/MS112.jpg", Message: "회수 대상 제품입니다. 아래 버튼을 눌러 회수 요청을 보내주세요.", IsActive: true},
}

// InitDefaultProducts 初始化默认产品目录
// 只补缺失的 SKU，已有记录不改动
func InitDefaultProducts() error {
	for _, product := range defaultProducts {
		sku := strings.ToUpper(strings.TrimSpace(product.SKU))
		var count int64
		if err := DB.Model(&Product{}).Where("sku = ?", sku).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		product.SKU = sku
		if err := DB.Create(&product).Error; err != nil {
			return err
		}
		logger.Infow("default_product_seeded", "sku", sku)
	}
	return nil
}
