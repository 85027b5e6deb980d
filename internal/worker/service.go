package worker

import (
	"context"
	"errors"
	"time"

	"github.com/qr-pickup/internal/config"
	"github.com/qr-pickup/internal/logger"
	"github.com/qr-pickup/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务
type Service struct {
	name             string
	server           *asynq.Server
	mux              *asynq.ServeMux
	consumer         *Consumer
	backfillInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:             "worker",
		server:           server,
		mux:              mux,
		consumer:         consumer,
		backfillInterval: time.Duration(cfg.BackfillIntervalMinute) * time.Minute,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.backfillInterval > 0 && s.consumer != nil && s.consumer.BackfillService != nil {
		go s.runBackfillLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runBackfillLoop 周期性补全缺失地址
func (s *Service) runBackfillLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.BackfillService == nil {
		return
	}
	runOnce := func() {
		result, err := s.consumer.BackfillService.Run(ctx, 0)
		if err != nil {
			logger.Warnw("worker_backfill_run_failed", "error", err)
			return
		}
		if result.Updated > 0 || result.Remaining > 0 {
			logger.Infow("worker_backfill_run",
				"updated", result.Updated,
				"remaining", result.Remaining,
			)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.backfillInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
