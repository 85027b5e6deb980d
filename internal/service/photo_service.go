package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/qr-pickup/internal/config"
	"github.com/qr-pickup/internal/constants"

	"github.com/google/uuid"
)

// 照片校验错误（客户端错误，区别于写盘失败）
var (
	ErrPhotoType     = errors.New("photo content type not allowed")
	ErrPhotoTooLarge = errors.New("photo exceeds size limit")
	ErrPhotoEncoding = errors.New("photo payload is not a valid base64 data url")
)

var photoExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// PhotoStore 照片存储接口
type PhotoStore interface {
	Save(sku string, data []byte, declaredType string) (string, error)
}

// PhotoService 本地照片存储
// 路径按产品编码+时间戳+随机后缀生成，公开地址由 /uploads 静态路由提供
type PhotoService struct {
	cfg config.UploadConfig
}

// NewPhotoService 创建照片存储服务
func NewPhotoService(cfg config.UploadConfig) *PhotoService {
	return &PhotoService{cfg: cfg}
}

// Save 校验并保存一张照片，返回公开访问路径
func (s *PhotoService) Save(sku string, data []byte, declaredType string) (string, error) {
	maxSize := s.cfg.MaxSize
	if maxSize <= 0 {
		maxSize = constants.PhotoMaxBytes
	}
	if int64(len(data)) > maxSize {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrPhotoTooLarge, len(data), maxSize)
	}

	contentType := sniffContentType(data)
	if !s.isAllowedType(contentType) && !s.isAllowedType(declaredType) {
		return "", fmt.Errorf("%w: %s", ErrPhotoType, firstNonEmpty(declaredType, contentType))
	}

	ext, ok := photoExtensions[strings.ToLower(contentType)]
	if !ok {
		ext, ok = photoExtensions[normalizeContentType(declaredType)]
	}
	if !ok {
		ext = "jpg"
	}

	dir := strings.TrimSpace(s.cfg.Dir)
	if dir == "" {
		dir = "uploads"
	}
	skuDir := strings.ToUpper(strings.TrimSpace(sku))
	if skuDir == "" {
		skuDir = "UNKNOWN"
	}

	filename := fmt.Sprintf("%d_%s.%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	savePath := filepath.Join(dir, skuDir, filename)
	if err := os.MkdirAll(filepath.Dir(savePath), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(savePath, data, 0o644); err != nil {
		return "", err
	}

	return fmt.Sprintf("/uploads/%s/%s", skuDir, filename), nil
}

func (s *PhotoService) isAllowedType(contentType string) bool {
	normalized := normalizeContentType(contentType)
	if normalized == "" {
		return false
	}
	allowed := s.cfg.AllowedTypes
	if len(allowed) == 0 {
		allowed = []string{"image/jpeg", "image/png", "image/webp"}
	}
	for _, t := range allowed {
		if strings.EqualFold(normalized, strings.TrimSpace(t)) {
			return true
		}
	}
	return false
}

// ParsePhotoDataURL 解析 base64 data URL，返回 MIME 类型与解码后的字节
func ParsePhotoDataURL(dataURL string) (string, []byte, error) {
	raw := strings.TrimSpace(dataURL)
	if !strings.HasPrefix(raw, "data:") {
		return "", nil, ErrPhotoEncoding
	}
	comma := strings.Index(raw, ",")
	if comma < 0 {
		return "", nil, ErrPhotoEncoding
	}
	meta := raw[len("data:"):comma]
	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, ErrPhotoEncoding
	}
	mime := strings.TrimSuffix(meta, ";base64")
	if mime == "" {
		return "", nil, ErrPhotoEncoding
	}
	data, err := base64.StdEncoding.DecodeString(raw[comma+1:])
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrPhotoEncoding, err)
	}
	return mime, data, nil
}

func sniffContentType(data []byte) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return http.DetectContentType(head)
}

func normalizeContentType(contentType string) string {
	value := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(value, ";"); idx >= 0 {
		value = strings.TrimSpace(value[:idx])
	}
	if value == "image/jpg" {
		value = "image/jpeg"
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
