package handler

import (
	"net/http"

	"famorders/internal/dto"
	"famorders/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PlansHandler struct {
	plans        service.PlanService
	materializer service.MaterializerService
}

func NewPlansHandler(plans service.PlanService, materializer service.MaterializerService) *PlansHandler {
	return &PlansHandler{plans: plans, materializer: materializer}
}

// planExists writes the 404 for an unknown plan. The materializer itself
// treats a missing plan as nothing to do.
func (h *PlansHandler) planExists(c *gin.Context, id uuid.UUID) bool {
	if _, err := h.plans.Get(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return false
	}
	return true
}

// Create godoc
// @Summary      Create a recurring plan
// @Tags         recurring
// @Accept       json
// @Produce      json
// @Param        body body     dto.PlanRequest true "Plan"
// @Success      201  {object} dto.PlanResponse
// @Failure      400  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/recurring/plans [post]
func (h *PlansHandler) Create(c *gin.Context) {
	var req dto.PlanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.plans.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List recurring plans
// @Tags         recurring
// @Produce      json
// @Param        customer_id query string false "Customer UUID"
// @Success      200 {array} dto.PlanResponse
// @Router       /v1/recurring/plans [get]
func (h *PlansHandler) List(c *gin.Context) {
	var filter dto.PlanFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.plans.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a recurring plan
// @Tags         recurring
// @Produce      json
// @Param        id  path     string true "Plan UUID"
// @Success      200 {object} dto.PlanResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/recurring/plans/{id} [get]
func (h *PlansHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.plans.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Update a recurring plan
// @Description  Rewrites every field and replaces the item set.
// @Tags         recurring
// @Accept       json
// @Produce      json
// @Param        id   path     string          true "Plan UUID"
// @Param        body body     dto.PlanRequest true "Plan"
// @Success      200  {object} dto.PlanResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/recurring/plans/{id} [put]
func (h *PlansHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.PlanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.plans.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete a recurring plan
// @Tags         recurring
// @Param        id path string true "Plan UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/recurring/plans/{id} [delete]
func (h *PlansHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.plans.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GenerateDeliveries godoc
// @Summary      Generate weekly deliveries
// @Description  Creates the month's delivery orders (all occurrences but the first). Returns only new orders.
// @Tags         recurring
// @Accept       json
// @Produce      json
// @Param        id   path     string            true "Plan UUID"
// @Param        body body     dto.PeriodRequest true "Month"
// @Success      200  {array}  dto.OrderResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/recurring/plans/{id}/deliveries [post]
func (h *PlansHandler) GenerateDeliveries(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.PeriodRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if !h.planExists(c, id) {
		return
	}
	resp, err := h.materializer.GenerateDeliveries(c.Request.Context(), id, req.Month, req.Year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MonthlyPayment godoc
// @Summary      Create the monthly payment order
// @Description  Returns the month's payment order, creating it if needed. 201 when created, 200 when it existed, 204 when there is nothing to bill.
// @Tags         recurring
// @Accept       json
// @Produce      json
// @Param        id   path     string            true "Plan UUID"
// @Param        body body     dto.PeriodRequest true "Month"
// @Success      200  {object} dto.OrderResponse
// @Success      201  {object} dto.OrderResponse
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /v1/recurring/plans/{id}/monthly-payment [post]
func (h *PlansHandler) MonthlyPayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.PeriodRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if !h.planExists(c, id) {
		return
	}
	resp, created, err := h.materializer.CreateMonthlyPayment(c.Request.Context(), id, req.Month, req.Year)
	if err != nil {
		respondError(c, err)
		return
	}
	switch {
	case resp == nil:
		c.Status(http.StatusNoContent)
	case created:
		c.JSON(http.StatusCreated, resp)
	default:
		c.JSON(http.StatusOK, resp)
	}
}

// Schedule godoc
// @Summary      Schedule a month
// @Description  Queues payment and delivery generation for every active plan.
// @Tags         recurring
// @Accept       json
// @Produce      json
// @Param        body body     dto.PeriodRequest true "Month"
// @Success      202  {object} dto.ScheduleResponse
// @Router       /v1/recurring/schedule [post]
func (h *PlansHandler) Schedule(c *gin.Context) {
	var req dto.PeriodRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.plans.ScheduleMonth(c.Request.Context(), req.Month, req.Year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}
