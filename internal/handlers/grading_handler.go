package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/submission-service/internal/models"
	"github.com/SAP-F-2025/submission-service/internal/repositories"
	"github.com/SAP-F-2025/submission-service/internal/services"
	"github.com/SAP-F-2025/submission-service/internal/utils"
	"github.com/SAP-F-2025/submission-service/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// submissionListQuery is the query string accepted by the mentor listing
type submissionListQuery struct {
	Status    string `json:"status" validate:"omitempty,submission_status"`
	UserID    string `json:"user_id" validate:"omitempty,max=255"`
	Page      int    `json:"page" validate:"min=1"`
	Size      int    `json:"size" validate:"min=1,max=100"`
	SortBy    string `json:"sort_by" validate:"omitempty,oneof=created_at attempt_number auto_score submitted_at"`
	SortOrder string `json:"sort_order" validate:"omitempty,oneof=asc desc"`
}

// GradingHandler serves the mentor side: grading, release and reporting
type GradingHandler struct {
	BaseHandler
	submissionService services.SubmissionService
	releaseService    services.ReleaseCoordinator
	exportService     services.ExportService
	validator         *validator.Validator
}

func NewGradingHandler(
	submissionService services.SubmissionService,
	releaseService services.ReleaseCoordinator,
	exportService services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *GradingHandler {
	return &GradingHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
		releaseService:    releaseService,
		exportService:     exportService,
		validator:         validator,
	}
}

// GradeSubmission applies mentor overrides
// @Summary Grade submission
// @Tags grading
// @Accept json
// @Produce json
// @Param id path uint true "Submission ID"
// @Param body body models.GradeRequest true "Overrides"
// @Success 200 {object} models.SubmissionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /submissions/{id}/grade [post]
func (h *GradingHandler) GradeSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	graderID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req models.GradeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Grading submission", "submission_id", id, "overrides", len(req.Overrides))

	submission, err := h.submissionService.Grade(c.Request.Context(), id, &req, graderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// ReleaseSubmission publishes one result to its learner
// @Summary Release submission
// @Tags grading
// @Produce json
// @Param id path uint true "Submission ID"
// @Success 200 {object} models.SubmissionResponse
// @Failure 409 {object} ErrorResponse
// @Router /submissions/{id}/release [post]
func (h *GradingHandler) ReleaseSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	releaserID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Releasing submission", "submission_id", id)

	submission, err := h.submissionService.Release(c.Request.Context(), id, releaserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// ListPageSubmissions lists every submission of a page
// @Summary List page submissions
// @Tags grading
// @Produce json
// @Param page_id path uint true "Page ID"
// @Param status query string false "Status filter"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} models.SubmissionListResponse
// @Router /pages/{page_id}/submissions [get]
func (h *GradingHandler) ListPageSubmissions(c *gin.Context) {
	pageID := h.parseIDParam(c, "page_id")
	if pageID == 0 {
		return
	}
	mentorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	filters, ok := h.parseSubmissionFilters(c)
	if !ok {
		return
	}

	list, err := h.submissionService.ListForPage(c.Request.Context(), pageID, filters, mentorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// BulkRelease releases every graded submission of a page
// @Summary Bulk release
// @Tags grading
// @Produce json
// @Param page_id path uint true "Page ID"
// @Success 200 {object} models.BulkReleaseResponse
// @Router /pages/{page_id}/submissions/release [post]
func (h *GradingHandler) BulkRelease(c *gin.Context) {
	pageID := h.parseIDParam(c, "page_id")
	if pageID == 0 {
		return
	}
	mentorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Bulk releasing submissions", "page_id", pageID)

	result, err := h.releaseService.BulkRelease(c.Request.Context(), pageID, mentorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportGradebook downloads the page gradebook as a spreadsheet
// @Summary Export gradebook
// @Tags grading
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param page_id path uint true "Page ID"
// @Success 200 {file} file
// @Router /pages/{page_id}/submissions/export [get]
func (h *GradingHandler) ExportGradebook(c *gin.Context) {
	pageID := h.parseIDParam(c, "page_id")
	if pageID == 0 {
		return
	}
	mentorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	data, err := h.exportService.ExportGradebook(c.Request.Context(), pageID, mentorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="gradebook-page-%d.xlsx"`, pageID))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *GradingHandler) parseSubmissionFilters(c *gin.Context) (repositories.SubmissionFilters, bool) {
	query := submissionListQuery{
		Status:    c.Query("status"),
		UserID:    c.Query("user_id"),
		Page:      h.parseIntQuery(c, "page", 1),
		Size:      h.parseIntQuery(c, "size", 20),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if err := h.validator.Validate(&query); err != nil {
		h.handleServiceError(c, err)
		return repositories.SubmissionFilters{}, false
	}

	filters := repositories.SubmissionFilters{
		Limit:     query.Size,
		Offset:    (query.Page - 1) * query.Size,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	if query.Status != "" {
		status := models.SubmissionStatus(query.Status)
		filters.Status = &status
	}
	if query.UserID != "" {
		filters.UserID = &query.UserID
	}
	return filters, true
}
