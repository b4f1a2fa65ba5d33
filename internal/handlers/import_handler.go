package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/services"
	"github.com/SAP-F-2025/refdata-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const maxWorkbookSize = 32 << 20

type ImportHandler struct {
	BaseHandler
	importService services.ImportService
}

func NewImportHandler(importService services.ImportService, logger utils.Logger) *ImportHandler {
	return &ImportHandler{
		BaseHandler:   NewBaseHandler(logger),
		importService: importService,
	}
}

// Import runs a workbook import
// @Summary Import workbook
// @Description Imports a reference data or program workbook inside one transaction
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param kind path string true "Import kind (referenceData or program)"
// @Param file formData file true "xlsx workbook"
// @Param dryRun formData bool false "Validate only, roll back at the end"
// @Param skipExisting formData bool false "Leave existing rows untouched"
// @Param includedDataTypes formData string false "Comma separated data types"
// @Success 200 {object} services.ImportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/import/{kind} [post]
func (h *ImportHandler) Import(c *gin.Context) {
	kind := models.ImportKind(ParseStringIDParam(c, "kind"))
	if kind == "" {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "A workbook file is required", err)
		return
	}
	if fileHeader.Size > maxWorkbookSize {
		h.RespondWithError(c, http.StatusRequestEntityTooLarge, "Workbook is too large", nil)
		return
	}

	c.Set(utils.ContextKeyImportKind, string(kind))
	h.LogRequest(c, "Importing workbook", "kind", kind, "file_name", fileHeader.Filename, "file_size", fileHeader.Size)

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Failed to read uploaded workbook", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Failed to read uploaded workbook", err)
		return
	}

	dryRun, _ := strconv.ParseBool(c.DefaultPostForm("dryRun", "false"))
	skipExisting, _ := strconv.ParseBool(c.DefaultPostForm("skipExisting", "false"))

	resp, err := h.importService.Import(c.Request.Context(), &services.ImportRequest{
		Kind:              kind,
		Source:            services.BytesSource{FileName: fileHeader.Filename, Data: data},
		FileSize:          fileHeader.Size,
		DryRun:            dryRun,
		SkipExisting:      skipExisting,
		IncludedDataTypes: parseCSV(c.PostForm("includedDataTypes")),
		UserID:            userIDFromContext(c),
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Set(utils.ContextKeyImportJobID, resp.JobID)
	h.LogResponse(c, http.StatusOK, "Import finished",
		"job_id", resp.JobID,
		"didnt_send_reason", resp.DidntSendReason,
		"error_count", len(resp.Errors))
	c.JSON(http.StatusOK, resp)
}

// GetJob returns the history record of one import
// @Summary Get import job
// @Tags import
// @Produce json
// @Param id path string true "Import job ID"
// @Success 200 {object} models.ImportJob
// @Failure 404 {object} ErrorResponse
// @Router /admin/import/jobs/{id} [get]
func (h *ImportHandler) GetJob(c *gin.Context) {
	jobID := ParseStringIDParam(c, "id")
	if jobID == "" {
		return
	}

	job, err := h.importService.GetJob(c.Request.Context(), jobID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListJobs returns the most recent imports
// @Summary List import jobs
// @Tags import
// @Produce json
// @Param limit query int false "Maximum number of jobs"
// @Success 200 {object} SuccessResponse
// @Router /admin/import/jobs [get]
func (h *ImportHandler) ListJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	jobs, err := h.importService.ListJobs(c.Request.Context(), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Import jobs retrieved", jobs, "count", len(jobs))
}
