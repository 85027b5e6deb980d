package main

import (
	"fmt"
	"time"

	"github.com/qr-pickup/internal/config"
	"github.com/qr-pickup/internal/constants"
	"github.com/qr-pickup/internal/logger"
	"github.com/qr-pickup/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 产品目录
	if err := models.InitDefaultProducts(); err != nil {
		stdLog.Fatalf("Failed to seed products: %v", err)
	}

	// 示例回收请求
	now := time.Now()
	seoulCityHall := "서울특별시 중구 세종대로 110"
	busanStation := "부산광역시 동구 중앙대로 206"
	itemA := "KDA0001"
	itemB := "KDA0002"
	goodAccuracy := 12.0
	badAccuracy := 180.0

	samples := []models.PickupRequest{
		{
			SKU:        "BPS",
			ItemNo:     &itemA,
			Qty:        2,
			LoadStatus: constants.LoadStatusLoaded,
			Note:       "경비실 앞에 두었습니다",
			Lat:        37.5663,
			Lng:        126.9779,
			Accuracy:   &goodAccuracy,
			Address:    &seoulCityHall,
			CreatedAt:  now.Add(-26 * time.Hour),
		},
		{
			SKU:        "MS108",
			ItemNo:     &itemB,
			Qty:        1,
			LoadStatus: constants.LoadStatusUnloaded,
			Note:       "",
			Lat:        35.1151,
			Lng:        129.0403,
			Accuracy:   &badAccuracy,
			Address:    &busanStation,
			CreatedAt:  now.Add(-3 * time.Hour),
		},
		{
			SKU:        "MS112",
			Qty:        1,
			LoadStatus: constants.LoadStatusUnknown,
			Note:       "주소 미확정 샘플",
			Lat:        37.3943,
			Lng:        127.1107,
			CreatedAt:  now.Add(-30 * time.Minute),
		},
	}

	created := 0
	for _, row := range samples {
		var count int64
		if err := models.DB.Model(&models.PickupRequest{}).
			Where("sku = ? AND lat = ? AND lng = ?", row.SKU, row.Lat, row.Lng).
			Count(&count).Error; err != nil {
			stdLog.Printf("Failed to check pickup sample for %s: %v", row.SKU, err)
			continue
		}
		if count > 0 {
			stdLog.Printf("Pickup sample already exists: %s", row.SKU)
			continue
		}
		if err := models.DB.Create(&row).Error; err != nil {
			stdLog.Printf("Failed to create pickup sample for %s: %v", row.SKU, err)
			continue
		}
		created++
		stdLog.Printf("Created pickup sample: %s", row.SKU)
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Products (BPS / MS108 / MS112)")
	fmt.Printf("- %d Pickup request samples\n", created)
}
