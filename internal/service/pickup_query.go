package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/qr-pickup/internal/constants"
	"github.com/qr-pickup/internal/models"
)

// QueryState 列表查询状态
// 全部字段来自用户输入，空值表示不过滤
type QueryState struct {
	Text     string // 文本检索（个别番号/SKU/地址/备注）
	SKU      string // SKU 过滤，空或 ALL 表示不过滤
	DateKey  string // 单日过滤（KST 民用日期 yyyy-mm-dd）
	DateFrom string // 起始日期（含）
	DateTo   string // 截止日期（含）
}

// QueryResult 列表查询结果
type QueryResult struct {
	Rows         []models.PickupRequest
	ExactMatches int
}

// ApplyQuery 对回收请求列表做过滤与排序
// 纯函数：相同输入必得相同输出，不持有任何隐藏状态
func ApplyQuery(rows []models.PickupRequest, state QueryState) QueryResult {
	text := strings.ToUpper(strings.TrimSpace(state.Text))
	skuFilter := strings.ToUpper(strings.TrimSpace(state.SKU))
	if skuFilter == constants.QueryFilterAll {
		skuFilter = ""
	}
	dateKey := strings.TrimSpace(state.DateKey)
	if strings.EqualFold(dateKey, constants.QueryFilterAll) {
		dateKey = ""
	}
	dateFrom := strings.TrimSpace(state.DateFrom)
	dateTo := strings.TrimSpace(state.DateTo)

	out := make([]models.PickupRequest, 0, len(rows))
	for _, r := range rows {
		if skuFilter != "" && strings.ToUpper(r.SKU) != skuFilter {
			continue
		}

		if dateKey != "" || dateFrom != "" || dateTo != "" {
			key := CivilDateKey(r.CreatedAt, constants.CivilOffsetMinutes)
			if dateKey != "" && key != dateKey {
				continue
			}
			if dateFrom != "" && key < dateFrom {
				continue
			}
			if dateTo != "" && key > dateTo {
				continue
			}
		}

		if text != "" && !matchesText(&r, text) {
			continue
		}

		out = append(out, r)
	}

	exact := 0
	if text != "" {
		for _, r := range out {
			if isExactItemMatch(&r, text) {
				exact++
			}
		}
		sort.SliceStable(out, func(i, j int) bool {
			iExact := isExactItemMatch(&out[i], text)
			jExact := isExactItemMatch(&out[j], text)
			if iExact != jExact {
				return iExact
			}
			return createdSortKey(out[i].CreatedAt) > createdSortKey(out[j].CreatedAt)
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			return createdSortKey(out[i].CreatedAt) > createdSortKey(out[j].CreatedAt)
		})
	}

	return QueryResult{Rows: out, ExactMatches: exact}
}

// CivilDateKey 时间戳转固定时区的民用日期 key（yyyy-mm-dd）
// 所有日期过滤与展示统一走这一个函数
func CivilDateKey(t time.Time, offsetMinutes int) string {
	if t.IsZero() {
		return ""
	}
	zone := time.FixedZone("civil", offsetMinutes*60)
	return t.In(zone).Format("2006-01-02")
}

// MapsLink 生成谷歌地图链接
func MapsLink(lat, lng float64) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%v,%v", lat, lng)
}

// MapsEmbedSrc 生成内嵌地图地址（缩放 16 级）
func MapsEmbedSrc(lat, lng float64) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%v,%v&z=16&output=embed", lat, lng)
}

// IsLowAccuracy 判断定位精度是否达到低精度徽标阈值
func IsLowAccuracy(accuracy *float64, thresholdM float64) bool {
	if accuracy == nil || thresholdM <= 0 {
		return false
	}
	value := *accuracy
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return false
	}
	return value >= thresholdM
}

func matchesText(r *models.PickupRequest, upperText string) bool {
	item := ""
	if r.ItemNo != nil {
		item = strings.ToUpper(*r.ItemNo)
	}
	addr := ""
	if r.Address != nil {
		addr = strings.ToUpper(*r.Address)
	}
	return strings.Contains(item, upperText) ||
		strings.Contains(strings.ToUpper(r.SKU), upperText) ||
		strings.Contains(addr, upperText) ||
		strings.Contains(strings.ToUpper(r.Note), upperText)
}

func isExactItemMatch(r *models.PickupRequest, upperText string) bool {
	if r.ItemNo == nil {
		return false
	}
	return strings.ToUpper(*r.ItemNo) == upperText
}

// createdSortKey 无法解析的时间排在所有有效日期之后
func createdSortKey(t time.Time) int64 {
	if t.IsZero() {
		return math.MinInt64
	}
	return t.UnixMilli()
}
