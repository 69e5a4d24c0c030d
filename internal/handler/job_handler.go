package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"adpnorm/internal/domain"
	"adpnorm/internal/service"
)

// JobHandler handles normalization job endpoints.
type JobHandler struct {
	jobService service.JobService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobService service.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// Submit handles POST /api/v1/jobs
//
// The multipart form carries the analysis result in "file" and optional
// overrides: page_ids (comma separated), selection_mode, retention_mode,
// field_suffix, use_all_pages, consolidate and quality_adjust.
func (h *JobHandler) Submit(c *gin.Context) {
	clientID, ok := clientFromContext(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	input := &service.SubmitInput{
		ClientID:      clientID,
		File:          file,
		FileSize:      header.Size,
		ContentType:   header.Header.Get("Content-Type"),
		PageIDs:       splitPageIDs(c.PostForm("page_ids")),
		SelectionMode: c.PostForm("selection_mode"),
		RetentionMode: c.PostForm("retention_mode"),
	}
	if v, ok := c.GetPostForm("field_suffix"); ok {
		input.FieldSuffix = &v
	}
	for name, dst := range map[string]**bool{
		"use_all_pages":  &input.UseAllPages,
		"consolidate":    &input.Consolidate,
		"quality_adjust": &input.QualityAdjust,
	} {
		raw, present := c.GetPostForm(name)
		if !present || raw == "" {
			continue
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", name+" must be a boolean")
			return
		}
		*dst = &b
	}

	job, err := h.jobService.Submit(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, job)
}

func splitPageIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// List handles GET /api/v1/jobs
func (h *JobHandler) List(c *gin.Context) {
	clientID, ok := clientFromContext(c)
	if !ok {
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	jobs, total, err := h.jobService.List(c.Request.Context(), clientID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, jobs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Get handles GET /api/v1/jobs/:id
func (h *JobHandler) Get(c *gin.Context) {
	clientID, jobID, ok := jobParams(c)
	if !ok {
		return
	}

	detail, err := h.jobService.Get(c.Request.Context(), clientID, jobID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, detail)
}

// Fields handles GET /api/v1/jobs/:id/fields
func (h *JobHandler) Fields(c *gin.Context) {
	clientID, jobID, ok := jobParams(c)
	if !ok {
		return
	}

	fields, err := h.jobService.Fields(c.Request.Context(), clientID, jobID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, fields)
}

// Layout handles GET /api/v1/jobs/:id/pages/:page_id/layout
func (h *JobHandler) Layout(c *gin.Context) {
	clientID, jobID, ok := jobParams(c)
	if !ok {
		return
	}

	url, err := h.jobService.LayoutURL(c.Request.Context(), clientID, jobID, c.Param("page_id"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}

// Export handles GET /api/v1/jobs/:id/export/:format
func (h *JobHandler) Export(c *gin.Context) {
	clientID, jobID, ok := jobParams(c)
	if !ok {
		return
	}

	out, err := h.jobService.Export(c.Request.Context(), clientID, jobID, domain.ExportFormat(strings.ToLower(c.Param("format"))))
	if err != nil {
		HandleError(c, err)
		return
	}

	contentType := out.ContentType
	if strings.HasPrefix(contentType, "text/") {
		contentType += "; charset=utf-8"
	}
	c.Header("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
	c.Data(http.StatusOK, contentType, out.Data)
}

func jobParams(c *gin.Context) (clientID, jobID uuid.UUID, ok bool) {
	clientID, ok = clientFromContext(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid job ID")
		return uuid.Nil, uuid.Nil, false
	}
	return clientID, jobID, true
}
