package location

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// 定位采集错误
var (
	ErrUnsupported         = errors.New("geolocation is not supported on this device")
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("location signal unavailable")
	ErrNoLocation          = errors.New("no location sample received before timeout")
	ErrAcquireInProgress   = errors.New("location acquisition already in progress")
)

// Sample 一次定位采样
type Sample struct {
	Lat      float64
	Lng      float64
	Accuracy float64 // 米
}

// Update 定位源推送的一次更新，Err 与 Sample 互斥
type Update struct {
	Sample Sample
	Err    error
}

// Source 定位更新源
// Watch 返回更新通道与取消函数；取消后不再推送
type Source interface {
	Watch(ctx context.Context) (<-chan Update, context.CancelFunc, error)
}

// State 采集状态机状态
type State int32

const (
	StateIdle State = iota
	StateSampling
	StateSatisfied
	StateTimedOut
	StateFailed
)

// String 状态名
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSampling:
		return "sampling"
	case StateSatisfied:
		return "satisfied"
	case StateTimedOut:
		return "timed_out"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options 采集参数
type Options struct {
	TargetAccuracyM float64       // 达标精度阈值（米）
	MaxWait         time.Duration // 最长等待时间
}

const (
	defaultTargetAccuracyM = 30.0
	defaultMaxWait         = 15 * time.Second
)

// Acquirer 定位采集器
// 事件驱动的状态机：采样达标立即结束，超时回退到最近一次采样
type Acquirer struct {
	source  Source
	opts    Options
	state   atomic.Int32
	sending atomic.Bool

	mu     sync.Mutex
	latest Sample
	has    bool
}

// NewAcquirer 创建定位采集器
func NewAcquirer(source Source, opts Options) *Acquirer {
	if opts.TargetAccuracyM <= 0 {
		opts.TargetAccuracyM = defaultTargetAccuracyM
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = defaultMaxWait
	}
	return &Acquirer{source: source, opts: opts}
}

// State 当前状态
func (a *Acquirer) State() State {
	return State(a.state.Load())
}

// Acquire 采集一次"足够好"的定位
// 采样精度 ≤ 阈值立即成功；超时回退最近一次采样；从未收到采样则失败。
// 任何退出路径都恰好取消一次订阅与定时器；并发调用直接拒绝。
func (a *Acquirer) Acquire(ctx context.Context) (Sample, error) {
	if !a.sending.CompareAndSwap(false, true) {
		return Sample{}, ErrAcquireInProgress
	}
	defer a.sending.Store(false)

	if a.source == nil {
		a.state.Store(int32(StateFailed))
		return Sample{}, ErrUnsupported
	}

	a.state.Store(int32(StateSampling))
	a.mu.Lock()
	a.latest = Sample{}
	a.has = false
	a.mu.Unlock()

	updates, cancel, err := a.source.Watch(ctx)
	if err != nil {
		a.state.Store(int32(StateFailed))
		return Sample{}, err
	}
	defer cancel()

	timer := time.NewTimer(a.opts.MaxWait)
	defer timer.Stop()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return a.fallback()
			}
			if update.Err != nil {
				a.state.Store(int32(StateFailed))
				return Sample{}, update.Err
			}
			a.mu.Lock()
			a.latest = update.Sample
			a.has = true
			a.mu.Unlock()
			if update.Sample.Accuracy <= a.opts.TargetAccuracyM {
				a.state.Store(int32(StateSatisfied))
				return update.Sample, nil
			}
		case <-timer.C:
			return a.fallback()
		case <-ctx.Done():
			a.state.Store(int32(StateFailed))
			return Sample{}, ctx.Err()
		}
	}
}

// fallback 超时路径：有采样则回退最近一次，否则报无定位
func (a *Acquirer) fallback() (Sample, error) {
	a.mu.Lock()
	latest, has := a.latest, a.has
	a.mu.Unlock()
	if has {
		a.state.Store(int32(StateTimedOut))
		return latest, nil
	}
	a.state.Store(int32(StateFailed))
	return Sample{}, ErrNoLocation
}
