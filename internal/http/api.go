package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bakeshop/internal/catalog"
	"bakeshop/internal/domain"
	"bakeshop/internal/pricing"
)

// @Summary Health check
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type quoteReq struct {
	UnitAmount     int64  `form:"unitAmount" binding:"required"`
	DiscountAmount int64  `form:"discountAmount"`
	Currency       string `form:"currency" binding:"required"`
	Quantity       int    `form:"quantity" binding:"required"`
}

// @Summary Price a quantity
// @Description Applies the bulk tier above 3 units and formats the total for display.
// @Tags pricing
// @Produce json
// @Param unitAmount query int true "Unit amount in minor units"
// @Param discountAmount query int false "Discounted unit amount in minor units"
// @Param currency query string true "ISO 4217 code"
// @Param quantity query int true "Quantity"
// @Success 200 {object} pricing.Quote
// @Failure 400 {object} map[string]string
// @Router /quote [get]
func (s *Server) quote(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}
	discount := req.DiscountAmount
	if _, ok := c.GetQuery("discountAmount"); !ok {
		discount = req.UnitAmount
	}
	q, err := pricing.NewQuote(req.UnitAmount, discount, req.Currency, req.Quantity)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, q)
}

type slotResp struct {
	ID        domain.SlotID   `json:"id"`
	Date      domain.SlotDate `json:"date"`
	Available int             `json:"available"`
	Label     string          `json:"label"`
	MaxOrder  int             `json:"maxOrder"`
}

// @Summary List pickup slots
// @Tags slots
// @Produce json
// @Success 200 {array} slotResp
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /slots [get]
func (s *Server) listSlots(c *gin.Context) {
	slots, err := s.svc.Reservation.Slots(backendContext(c))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	out := make([]slotResp, 0, len(slots))
	for _, sl := range slots {
		out = append(out, slotResp{
			ID:        sl.ID,
			Date:      sl.Date,
			Available: sl.Available,
			Label:     catalog.Label(sl.Available),
			MaxOrder:  min(sl.Available, domain.MaxPerOrder),
		})
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Current reservation view
// @Description The visitor's selection, quantity bounds and quote.
// @Tags reservation
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /reservation [get]
func (s *Server) reservation(c *gin.Context) {
	v, err := s.svc.Reservation.View(c.Request.Context(), visitID(c))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	resp := gin.H{
		"state":        v.State(),
		"canIncrement": v.CanIncrement(),
		"canDecrement": v.CanDecrement(),
		"canSubmit":    v.CanSubmit(),
	}
	if sel := v.Selection(); sel != nil {
		resp["slotId"] = sel.Slot.ID
		resp["quantity"] = sel.Quantity
		resp["maxQuantity"] = v.MaxQuantity()
	}
	if q := v.Quote(); q != nil {
		resp["quote"] = q
	}
	if msg := v.Error(); msg != "" {
		resp["error"] = msg
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, resp)
}
