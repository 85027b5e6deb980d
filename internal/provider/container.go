package provider

import (
	"time"

	"github.com/qr-pickup/internal/cache"
	"github.com/qr-pickup/internal/config"
	"github.com/qr-pickup/internal/logger"
	"github.com/qr-pickup/internal/models"
	"github.com/qr-pickup/internal/queue"
	"github.com/qr-pickup/internal/repository"
	"github.com/qr-pickup/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	PickupRepo  repository.PickupRequestRepository
	ProductRepo repository.ProductRepository

	// Services
	GeocodeService  *service.GeocodeService
	PhotoService    *service.PhotoService
	PickupService   *service.PickupService
	BackfillService *service.BackfillService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.PickupRepo = repository.NewPickupRequestRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
}

func (c *Container) initServices() {
	c.GeocodeService = service.NewGeocodeService(c.Config.Geocode)
	c.PhotoService = service.NewPhotoService(c.Config.Upload)

	retryDelay := time.Duration(c.Config.Queue.GeocodeRetryDelaySec) * time.Second
	var enqueuer service.GeocodeRetryEnqueuer
	if c.QueueClient != nil && c.QueueClient.Enabled() {
		enqueuer = c.QueueClient
	}
	c.PickupService = service.NewPickupService(
		c.PickupRepo,
		c.ProductRepo,
		c.GeocodeService,
		c.PhotoService,
		enqueuer,
		retryDelay,
	)

	geocodeDelay := time.Duration(c.Config.Geocode.DelayMS) * time.Millisecond
	c.BackfillService = service.NewBackfillService(c.PickupRepo, c.GeocodeService, geocodeDelay)
}
