package handler

import (
	"net/http"
	"path/filepath"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/dto"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/middleware"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler { return &ReportsHandler{svc: svc} }

// SalesReport handles GET /v1/reports/sales. Queued reports answer 202 with
// the report id to poll.
func (h *ReportsHandler) SalesReport(c *gin.Context) {
	var q dto.SalesReportQuery
	if !bindQuery(c, &q) {
		return
	}
	res, err := h.svc.BuildSalesReport(c.Request.Context(), middleware.ActorID(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	if res.Queued {
		c.JSON(http.StatusAccepted, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ReportsHandler) Status(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ReportStatus(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

var reportContentTypes = map[string]string{
	"json": "application/json",
	"pdf":  "application/pdf",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func (h *ReportsHandler) Download(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	path, format, err := h.svc.DownloadReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if ct, ok := reportContentTypes[format]; ok {
		c.Header("Content-Type", ct)
	}
	c.FileAttachment(path, filepath.Base(path))
}
