package public

import (
	"github.com/qr-pickup/internal/http/response"
	"github.com/qr-pickup/internal/service"

	"github.com/gin-gonic/gin"
)

// productView 扫码页产品视图
type productView struct {
	SKU     string `json:"sku"`
	Name    string `json:"name"`
	Image   string `json:"image"`
	Message string `json:"message"`
}

// GetProducts 获取启用的产品目录
func (h *Handler) GetProducts(c *gin.Context) {
	products, err := h.ProductRepo.ListActive()
	if err != nil {
		response.Error(c, response.CodeInternal, "Product list failed")
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, productView{
			SKU:     p.SKU,
			Name:    p.Name,
			Image:   p.Image,
			Message: p.Message,
		})
	}
	response.Success(c, gin.H{"products": views})
}

// GetProductByCode 解析扫码载荷并返回对应产品
// code 形如 <sku> 或 <sku>_<item_no>，按第一个下划线切分
func (h *Handler) GetProductByCode(c *gin.Context) {
	sku, itemNo := service.ParseScanCode(c.Param("code"))
	if sku == "" {
		response.BadRequest(c, "Invalid code")
		return
	}

	product, err := h.ProductRepo.GetBySKU(sku)
	if err != nil {
		response.Error(c, response.CodeInternal, "Product lookup failed")
		return
	}
	if product == nil || !product.IsActive {
		response.NotFound(c, "Unknown product")
		return
	}

	response.Success(c, gin.H{
		"product": productView{
			SKU:     product.SKU,
			Name:    product.Name,
			Image:   product.Image,
			Message: product.Message,
		},
		"item_no": itemNo,
	})
}
