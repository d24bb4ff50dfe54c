package handler

import (
	"fmt"
	"net/http"

	"famorders/internal/dto"
	"famorders/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductionHandler struct{ svc service.ProductionService }

func NewProductionHandler(svc service.ProductionService) *ProductionHandler {
	return &ProductionHandler{svc: svc}
}

// Needs godoc
// @Summary      Production needs for a delivery date
// @Description  Sums open order lines per product and rounds up to the product batch size.
// @Tags         production
// @Produce      json
// @Param        date query   string true "YYYY-MM-DD"
// @Success      200  {array} dto.ProductionNeed
// @Router       /v1/production [get]
func (h *ProductionHandler) Needs(c *gin.Context) {
	var filter dto.ProductionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Needs(c.Request.Context(), filter.Date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Sheet godoc
// @Summary      Printable production sheet
// @Tags         production
// @Produce      application/pdf
// @Param        date query string true "YYYY-MM-DD"
// @Success      200
// @Router       /v1/production/sheet [get]
func (h *ProductionHandler) Sheet(c *gin.Context) {
	var filter dto.ProductionFilter
	if !bindQuery(c, &filter) {
		return
	}
	pdf, err := h.svc.Sheet(c.Request.Context(), filter.Date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="producao_%s.pdf"`, filter.Date))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
