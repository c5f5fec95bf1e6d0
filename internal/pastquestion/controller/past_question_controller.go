package controller

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"examarchive/internal/common/query"
	"examarchive/internal/pastquestion/service"
	pkgerrors "examarchive/pkg/errors"
	"examarchive/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// PastQuestionController handles past-question HTTP endpoints.
type PastQuestionController struct {
	pastQuestionService *service.PastQuestionService
}

// NewPastQuestionController creates a new PastQuestionController.
func NewPastQuestionController(pastQuestionService *service.PastQuestionService) *PastQuestionController {
	return &PastQuestionController{pastQuestionService: pastQuestionService}
}

// Create handles the authenticated multipart upload.
func (h *PastQuestionController) Create(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "File is required")
		return
	}
	if fileHeader.Size > h.pastQuestionService.MaxFileSize() {
		response.Error(c, pkgerrors.New(pkgerrors.FileTooLarge).
			WithDetail("max_bytes", h.pastQuestionService.MaxFileSize()))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "File is unreadable")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	payload, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(c, "File is unreadable")
		return
	}

	record, err := h.pastQuestionService.Upload(c.Request.Context(), service.UploadInput{
		Title:     c.PostForm("title"),
		Subject:   c.PostForm("subject"),
		ClassName: c.PostForm("className"),
		Year:      c.PostForm("year"),
		FileName:  fileHeader.Filename,
		MimeType:  fileHeader.Header.Get("Content-Type"),
		Payload:   payload,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, record)
}

// List handles the public filtered listing.
func (h *PastQuestionController) List(c *gin.Context) {
	filter := query.Filter{
		Q:         c.Query("q"),
		Subject:   c.Query("subject"),
		ClassName: c.Query("className"),
		Year:      c.Query("year"),
	}
	if limit := c.Query("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			filter.Limit = n
		}
	}
	if offset := c.Query("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil {
			filter.Offset = n
		}
	}

	result, err := h.pastQuestionService.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Get handles single-record lookup.
func (h *PastQuestionController) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	record, err := h.pastQuestionService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, record)
}

// Download streams the stored payload back as an attachment.
func (h *PastQuestionController) Download(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	record, stream, err := h.pastQuestionService.Download(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer func() {
		_ = stream.Close()
	}()

	contentType := record.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	extraHeaders := map[string]string{
		"Content-Disposition":    fmt.Sprintf("attachment; filename=%q", sanitizeFilename(record.FileName)),
		"X-Content-Type-Options": "nosniff",
	}

	c.DataFromReader(200, record.Size, contentType, stream, extraHeaders)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.NotFound(c, "Past question not found")
		return 0, false
	}
	return id, true
}

// sanitizeFilename strips characters that would break or abuse the
// Content-Disposition header.
func sanitizeFilename(name string) string {
	if name == "" {
		return "past-question"
	}
	replacer := strings.NewReplacer(`"`, "", `\`, "", "/", "", "..", "")
	safe := replacer.Replace(name)
	if len(safe) > 255 {
		safe = safe[:255]
	}
	if safe == "" {
		return "past-question"
	}
	return safe
}
