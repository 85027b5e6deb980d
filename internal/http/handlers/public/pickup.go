package public

import (
	"io"
	"strings"

	"github.com/qr-pickup/internal/http/response"
	"github.com/qr-pickup/internal/service"

	"github.com/gin-gonic/gin"
)

// createPickupJSON JSON 提交载荷
// 数值字段收原始文本，解析与钳制交给服务层
type createPickupJSON struct {
	SKU          string `json:"sku"`
	ItemNo       string `json:"item_no"`
	Qty          string `json:"qty"`
	LoadStatus   string `json:"load_status"`
	Note         string `json:"note"`
	Lat          string `json:"lat"`
	Lng          string `json:"lng"`
	Accuracy     string `json:"accuracy"`
	PhotoDataURL string `json:"photo_data_url"`
}

// pickupRowView 提交成功后的行视图
type pickupRowView struct {
	ID         uint     `json:"id"`
	SKU        string   `json:"sku"`
	ItemNo     *string  `json:"item_no"`
	Qty        int      `json:"qty"`
	LoadStatus string   `json:"load_status"`
	Note       string   `json:"note"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	Accuracy   *float64 `json:"accuracy"`
	Address    *string  `json:"address"`
	PhotoURL   *string  `json:"photo_url"`
	CreatedAt  string   `json:"created_at"`
}

// CreatePickup 提交一次回收请求
// 同时支持 multipart/form-data（photo 文件字段）与 JSON（photo_data_url 字段）
func (h *Handler) CreatePickup(c *gin.Context) {
	input, err := h.bindCreatePickup(c)
	if err != nil {
		response.ErrorFrom(c, err)
		return
	}

	row, err := h.PickupService.Create(c.Request.Context(), input)
	if err != nil {
		response.ErrorFrom(c, err)
		return
	}

	response.Success(c, gin.H{
		"ok": true,
		"row": pickupRowView{
			ID:         row.ID,
			SKU:        row.SKU,
			ItemNo:     row.ItemNo,
			Qty:        row.Qty,
			LoadStatus: row.LoadStatus,
			Note:       row.Note,
			Lat:        row.Lat,
			Lng:        row.Lng,
			Accuracy:   row.Accuracy,
			Address:    row.Address,
			PhotoURL:   row.PhotoURL,
			CreatedAt:  row.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		},
		"address":   row.Address,
		"photo_url": row.PhotoURL,
	})
}

func (h *Handler) bindCreatePickup(c *gin.Context) (service.CreatePickupInput, error) {
	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return h.bindCreatePickupForm(c)
	}
	return h.bindCreatePickupJSON(c)
}

func (h *Handler) bindCreatePickupForm(c *gin.Context) (service.CreatePickupInput, error) {
	input := service.CreatePickupInput{
		SKU:        c.PostForm("sku"),
		ItemNo:     c.PostForm("item_no"),
		Qty:        c.PostForm("qty"),
		LoadStatus: c.PostForm("load_status"),
		Note:       c.PostForm("note"),
		Lat:        c.PostForm("lat"),
		Lng:        c.PostForm("lng"),
		Accuracy:   c.PostForm("accuracy"),
	}

	file, err := c.FormFile("photo")
	if err != nil || file == nil {
		return input, nil
	}
	opened, err := file.Open()
	if err != nil {
		return input, response.WrapError(response.CodeBadRequest, "Invalid photo format", err)
	}
	defer opened.Close()
	data, err := io.ReadAll(opened)
	if err != nil {
		return input, response.WrapError(response.CodeBadRequest, "Invalid photo format", err)
	}
	input.Photo = data
	input.PhotoType = file.Header.Get("Content-Type")
	return input, nil
}

func (h *Handler) bindCreatePickupJSON(c *gin.Context) (service.CreatePickupInput, error) {
	var req createPickupJSON
	if err := c.ShouldBindJSON(&req); err != nil {
		return service.CreatePickupInput{}, response.WrapError(response.CodeBadRequest, "Invalid request body", err)
	}
	input := service.CreatePickupInput{
		SKU:        req.SKU,
		ItemNo:     req.ItemNo,
		Qty:        req.Qty,
		LoadStatus: req.LoadStatus,
		Note:       req.Note,
		Lat:        req.Lat,
		Lng:        req.Lng,
		Accuracy:   req.Accuracy,
	}
	if strings.TrimSpace(req.PhotoDataURL) != "" {
		mime, data, err := service.ParsePhotoDataURL(req.PhotoDataURL)
		if err != nil {
			return input, response.WrapError(response.CodeBadRequest, "Invalid photo format", err)
		}
		input.Photo = data
		input.PhotoType = mime
	}
	return input, nil
}
