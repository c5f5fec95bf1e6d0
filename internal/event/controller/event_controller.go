package controller

import (
	"io"
	"strconv"

	"examarchive/internal/event/service"
	"examarchive/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// EventController handles event HTTP endpoints.
type EventController struct {
	eventService *service.EventService
}

// NewEventController creates a new EventController.
func NewEventController(eventService *service.EventService) *EventController {
	return &EventController{eventService: eventService}
}

// Create handles the admin multipart event creation. The image part is
// required; the service rejects a create without one.
func (h *EventController) Create(c *gin.Context) {
	payload, ok := readImage(c)
	if !ok {
		return
	}

	event, err := h.eventService.Create(c.Request.Context(), service.CreateInput{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Date:         c.PostForm("date"),
		Location:     c.PostForm("location"),
		ImagePayload: payload,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, event)
}

// List handles the public event listing with an optional free-text query.
func (h *EventController) List(c *gin.Context) {
	events, err := h.eventService.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, events)
}

// Get handles single-event lookup.
func (h *EventController) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	event, err := h.eventService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, event)
}

// Update handles the admin partial update. Omitted fields keep their
// stored values.
func (h *EventController) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	payload, ok := readImage(c)
	if !ok {
		return
	}

	event, err := h.eventService.Update(c.Request.Context(), id, service.UpdateInput{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Date:         c.PostForm("date"),
		Location:     c.PostForm("location"),
		ImagePayload: payload,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, event)
}

// Delete handles the admin event removal and echoes the deleted record.
func (h *EventController) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	event, err := h.eventService.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, event)
}

// readImage pulls the "image" multipart part. A missing part is left for
// the service to judge; an unreadable one is a client error.
func readImage(c *gin.Context) ([]byte, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil, true
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Image is unreadable")
		return nil, false
	}
	defer func() {
		_ = file.Close()
	}()

	payload, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(c, "Image is unreadable")
		return nil, false
	}
	return payload, true
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.NotFound(c, "Event not found")
		return 0, false
	}
	return id, true
}
