package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/qr-pickup/internal/cache"
	"github.com/qr-pickup/internal/config"
	"github.com/qr-pickup/internal/logger"

	"github.com/go-resty/resty/v2"
)

// Geocoder 逆地理编码接口
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (string, error)
}

type nominatimReverseResponse struct {
	DisplayName string `json:"display_name"`
}

// GeocodeService Nominatim 逆地理编码客户端
type GeocodeService struct {
	httpClient     *resty.Client
	acceptLanguage string
	cacheTTL       time.Duration
}

// NewGeocodeService 创建逆地理编码服务
func NewGeocodeService(cfg config.GeocodeConfig) *GeocodeService {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = "qr-pickup/1.0"
	}
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	cacheTTL := time.Duration(cfg.CacheTTLHours) * time.Hour
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")

	acceptLanguage := strings.TrimSpace(cfg.AcceptLanguage)
	if acceptLanguage == "" {
		acceptLanguage = "ko"
	}

	return &GeocodeService{
		httpClient:     client,
		acceptLanguage: acceptLanguage,
		cacheTTL:       cacheTTL,
	}
}

// Reverse 坐标转地址
// 失败返回空地址和错误，调用方决定是否降级
func (s *GeocodeService) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	cacheKey := geocodeCacheKey(lat, lng)
	if cached, hit, err := cache.GetString(ctx, cacheKey); err == nil && hit && cached != "" {
		return cached, nil
	}

	var result nominatimReverseResponse
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"format":          "jsonv2",
			"lat":             strconv.FormatFloat(lat, 'f', -1, 64),
			"lon":             strconv.FormatFloat(lng, 'f', -1, 64),
			"zoom":            "18",
			"addressdetails":  "1",
			"accept-language": s.acceptLanguage,
		}).
		SetResult(&result).
		Get("/reverse")
	if err != nil {
		return "", fmt.Errorf("reverse geocode request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("reverse geocode status %d", resp.StatusCode())
	}

	address := strings.TrimSpace(result.DisplayName)
	if address == "" {
		return "", nil
	}

	if err := cache.SetString(ctx, cacheKey, address, s.cacheTTL); err != nil {
		logger.Warnw("geocode_cache_set_failed", "error", err)
	}
	return address, nil
}

// geocodeCacheKey 按 5 位小数取整坐标生成缓存 key
func geocodeCacheKey(lat, lng float64) string {
	return fmt.Sprintf("geocode:%.5f,%.5f", lat, lng)
}
