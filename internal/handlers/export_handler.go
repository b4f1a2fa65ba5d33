package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/SAP-F-2025/refdata-service/internal/services"
	"github.com/SAP-F-2025/refdata-service/internal/utils"
	"github.com/SAP-F-2025/refdata-service/internal/workbook"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	BaseHandler
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
	}
}

// Export streams the selected data types as an xlsx workbook
// @Summary Export workbook
// @Tags export
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param request body services.ExportRequest true "Data types to export"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Router /admin/export [post]
func (h *ExportHandler) Export(c *gin.Context) {
	var req services.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Exporting workbook", "data_types", len(req.IncludedDataTypes))

	exported, err := h.exportService.Export(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := workbook.Write(&buf, exported); err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to write workbook", err)
		return
	}

	fileName := fmt.Sprintf("refdata-export-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	h.LogResponse(c, http.StatusOK, "Export finished", "sheets", len(exported))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
