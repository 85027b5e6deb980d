package admin

import (
	"strconv"
	"strings"

	"github.com/qr-pickup/internal/constants"
	"github.com/qr-pickup/internal/http/response"
	"github.com/qr-pickup/internal/models"
	"github.com/qr-pickup/internal/service"

	"github.com/gin-gonic/gin"
)

// adminPickupView 管理端列表行视图
type adminPickupView struct {
	ID          uint     `json:"id"`
	SKU         string   `json:"sku"`
	ItemNo      *string  `json:"item_no"`
	Qty         int      `json:"qty"`
	LoadStatus  string   `json:"load_status"`
	Note        string   `json:"note"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Accuracy    *float64 `json:"accuracy"`
	LowAccuracy bool     `json:"low_accuracy"`
	Address     *string  `json:"address"`
	PhotoURL    *string  `json:"photo_url"`
	DateKey     string   `json:"date_key"`
	CreatedAt   string   `json:"created_at"`
	MapURL      string   `json:"map_url"`
	MapEmbedURL string   `json:"map_embed_url"`
}

// ListPickups 管理端回收请求列表
// 过滤与排序在取回最近 limit 条后于内存中完成
func (h *Handler) ListPickups(c *gin.Context) {
	limit := h.resolveListLimit(c.Query("limit"))

	rows, err := h.PickupRepo.ListRecent(limit)
	if err != nil {
		response.Error(c, response.CodeInternal, "Pickup list failed")
		return
	}

	result := service.ApplyQuery(rows, service.QueryState{
		Text:     c.Query("q"),
		SKU:      c.Query("sku"),
		DateKey:  c.Query("date"),
		DateFrom: c.Query("from"),
		DateTo:   c.Query("to"),
	})

	badAccuracy := h.Config.Location.BadAccuracyM
	views := make([]adminPickupView, 0, len(result.Rows))
	for _, row := range result.Rows {
		views = append(views, buildAdminPickupView(row, badAccuracy))
	}

	response.Success(c, gin.H{
		"rows":          views,
		"total":         len(views),
		"exact_matches": result.ExactMatches,
	})
}

// BackfillAddresses 手动触发一批地址补全
func (h *Handler) BackfillAddresses(c *gin.Context) {
	var req struct {
		Limit int `json:"limit"`
	}
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	result, err := h.BackfillService.Run(c.Request.Context(), req.Limit)
	if err != nil {
		response.Error(c, response.CodeInternal, "Backfill failed")
		return
	}

	response.Success(c, gin.H{
		"ok":        true,
		"updated":   result.Updated,
		"remaining": result.Remaining,
	})
}

func (h *Handler) resolveListLimit(raw string) int {
	defaultLimit := constants.ListDefaultLimit
	maxLimit := constants.ListMaxLimit
	if h.Config != nil {
		if h.Config.List.DefaultLimit > 0 {
			defaultLimit = h.Config.List.DefaultLimit
		}
		if h.Config.List.MaxLimit > 0 {
			maxLimit = h.Config.List.MaxLimit
		}
	}
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func buildAdminPickupView(row models.PickupRequest, badAccuracyM float64) adminPickupView {
	return adminPickupView{
		ID:          row.ID,
		SKU:         row.SKU,
		ItemNo:      row.ItemNo,
		Qty:         row.Qty,
		LoadStatus:  row.LoadStatus,
		Note:        row.Note,
		Lat:         row.Lat,
		Lng:         row.Lng,
		Accuracy:    row.Accuracy,
		LowAccuracy: service.IsLowAccuracy(row.Accuracy, badAccuracyM),
		Address:     row.Address,
		PhotoURL:    row.PhotoURL,
		DateKey:     service.CivilDateKey(row.CreatedAt, constants.CivilOffsetMinutes),
		CreatedAt:   row.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		MapURL:      service.MapsLink(row.Lat, row.Lng),
		MapEmbedURL: service.MapsEmbedSrc(row.Lat, row.Lng),
	}
}
