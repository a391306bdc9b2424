package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/submission-service/internal/models"
	"github.com/SAP-F-2025/submission-service/internal/services"
	"github.com/SAP-F-2025/submission-service/internal/utils"
)

// SubmissionHandler serves the learner side of the lifecycle
type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
}

func NewSubmissionHandler(submissionService services.SubmissionService, logger utils.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
	}
}

// StartSubmission starts or resumes an attempt on a page
// @Summary Start submission
// @Tags submissions
// @Accept json
// @Produce json
// @Param page_id path uint true "Page ID"
// @Param body body models.StartSubmissionRequest true "Course of the page"
// @Success 201 {object} models.SubmissionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /pages/{page_id}/submissions [post]
func (h *SubmissionHandler) StartSubmission(c *gin.Context) {
	pageID := h.parseIDParam(c, "page_id")
	if pageID == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req models.StartSubmissionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.PageID = pageID

	h.LogRequest(c, "Starting submission", "page_id", pageID, "course_id", req.CourseID)

	submission, err := h.submissionService.Start(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// ListMySubmissions returns the caller's attempts on a page
// @Summary List my submissions
// @Tags submissions
// @Produce json
// @Param page_id path uint true "Page ID"
// @Success 200 {array} models.SubmissionResponse
// @Router /pages/{page_id}/submissions/me [get]
func (h *SubmissionHandler) ListMySubmissions(c *gin.Context) {
	pageID := h.parseIDParam(c, "page_id")
	if pageID == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	submissions, err := h.submissionService.ListMine(c.Request.Context(), pageID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

// GetSubmission returns one submission in the caller's view
// @Summary Get submission
// @Tags submissions
// @Produce json
// @Param id path uint true "Submission ID"
// @Success 200 {object} models.SubmissionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	submission, err := h.submissionService.Get(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// SaveAnswers replaces the draft answers
// @Summary Save draft answers
// @Tags submissions
// @Accept json
// @Param id path uint true "Submission ID"
// @Param body body models.SaveAnswersRequest true "Answers"
// @Success 204
// @Failure 409 {object} ErrorResponse
// @Router /submissions/{id}/answers [put]
func (h *SubmissionHandler) SaveAnswers(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req models.SaveAnswersRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.submissionService.SaveAnswers(c.Request.Context(), id, &req, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SubmitSubmission finalizes the attempt. An empty body submits the saved draft.
// @Summary Submit submission
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Submission ID"
// @Param body body models.SubmitRequest false "Final answers"
// @Success 200 {object} models.SubmissionResponse
// @Failure 409 {object} ErrorResponse
// @Router /submissions/{id}/submit [post]
func (h *SubmissionHandler) SubmitSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req *models.SubmitRequest
	var body models.SubmitRequest
	switch err := c.ShouldBindJSON(&body); {
	case err == nil:
		req = &body
	case errors.Is(err, io.EOF):
	default:
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	h.LogRequest(c, "Submitting submission", "submission_id", id)

	submission, err := h.submissionService.Submit(c.Request.Context(), id, req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}
