package handler

import (
	"net/http"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/dto"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/middleware"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/service"

	"github.com/gin-gonic/gin"
)

type InstallmentsHandler struct{ svc service.InstallmentService }

func NewInstallmentsHandler(svc service.InstallmentService) *InstallmentsHandler {
	return &InstallmentsHandler{svc: svc}
}

// PayInstallment handles POST /v1/installments/payments/:id/pay.
func (h *InstallmentsHandler) PayInstallment(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.PayInstallmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.PayInstallment(c.Request.Context(), middleware.ActorID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InstallmentsHandler) ListPlans(c *gin.Context) {
	plans, err := h.svc.ListPlans(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": plans})
}

func (h *InstallmentsHandler) ListCustomerPlans(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	plans, err := h.svc.ListCustomerPlans(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": plans})
}

func (h *InstallmentsHandler) GetPlan(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	plan, err := h.svc.GetPlan(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *InstallmentsHandler) GetReceipt(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	receipt, err := h.svc.GetReceipt(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}
