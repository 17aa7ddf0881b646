package events

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherhq/events-api/internal/models"
	"github.com/gatherhq/events-api/internal/pagination"
	"github.com/gatherhq/events-api/internal/timezone"
	"github.com/gatherhq/events-api/pkg/database"
	"github.com/gatherhq/events-api/pkg/response"
)

const defaultPerPage = 10

// CreateRequest is the body for POST /events. Times are wall-clock strings
// interpreted in the request's resolved timezone unless they carry an offset.
type CreateRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Location    *string `json:"location" binding:"omitempty,max=255"`
	StartTime   string  `json:"start_time" binding:"required"`
	EndTime     string  `json:"end_time" binding:"required"`
	MaxCapacity *int    `json:"max_capacity" binding:"required"`
}

// UpdateRequest is the body for PUT /events/:id. All fields optional.
type UpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Location    *string `json:"location" binding:"omitempty,max=255"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	MaxCapacity *int    `json:"max_capacity"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an event handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

func resolveTz(c *gin.Context) string {
	return timezone.Resolve(c.Query("tz"), c.GetHeader("X-Timezone"))
}

// Create handles POST /events.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.UnprocessableEntity(c, "invalid request: "+err.Error())
		return
	}

	tz := resolveTz(c)
	start, err := timezone.ToUTC(req.StartTime, tz)
	if err != nil {
		response.UnprocessableEntity(c, "start_time: "+err.Error())
		return
	}
	end, err := timezone.ToUTC(req.EndTime, tz)
	if err != nil {
		response.UnprocessableEntity(c, "end_time: "+err.Error())
		return
	}

	e, err := h.svc.Create(c.Request.Context(), CreateInput{
		Name:        req.Name,
		Location:    req.Location,
		StartTime:   start,
		EndTime:     end,
		MaxCapacity: *req.MaxCapacity,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.render(c, e, tz, response.Created)
}

// Get handles GET /events/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	e, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.render(c, e, resolveTz(c), response.OK)
}

// Update handles PUT /events/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.UnprocessableEntity(c, "invalid request: "+err.Error())
		return
	}

	tz := resolveTz(c)
	patch := models.EventPatch{
		Name:        req.Name,
		Location:    req.Location,
		MaxCapacity: req.MaxCapacity,
	}
	var err error
	if patch.StartTime, err = parseOptionalTime(req.StartTime, tz); err != nil {
		response.UnprocessableEntity(c, "start_time: "+err.Error())
		return
	}
	if patch.EndTime, err = parseOptionalTime(req.EndTime, tz); err != nil {
		response.UnprocessableEntity(c, "end_time: "+err.Error())
		return
	}

	e, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.render(c, e, tz, response.OK)
}

// Delete handles DELETE /events/:id. Attendees are removed by cascade.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	response.NoContent(c)
}

// List handles GET /events. include_past=1 includes events that already ended.
func (h *Handler) List(c *gin.Context) {
	includePast := c.Query("include_past") == "1"
	params := pagination.Parse(c.Query("page"), c.Query("per_page"), defaultPerPage)

	list, meta, err := h.svc.List(c.Request.Context(), includePast, params)
	if err != nil {
		h.writeError(c, err)
		return
	}

	tz := resolveTz(c)
	resources, err := NewResourceList(list, tz)
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	response.Page(c, resources, meta)
}

// eventID parses the :id path segment. Anything that is not a uuid cannot
// name an existing event, so it reports 404 rather than 400.
func eventID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, "event not found")
		return uuid.Nil, false
	}
	return id, true
}

func parseOptionalTime(s *string, tz string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := timezone.ToUTC(*s, tz)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *Handler) render(c *gin.Context, e *models.Event, tz string, send func(*gin.Context, any)) {
	res, err := NewResource(e, tz)
	if err != nil {
		// Unknown zone surfaced at formatting time.
		response.UnprocessableEntity(c, err.Error())
		return
	}
	send(c, res)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var ve models.ValidationError
	var cce *models.CapacityConflictError
	switch {
	case errors.Is(err, models.ErrNotFound):
		response.NotFound(c, "event not found")
	case errors.As(err, &cce):
		response.Conflict(c, cce.Error())
	case errors.As(err, &ve):
		response.UnprocessableEntity(c, ve.Error())
	case errors.Is(err, database.ErrUnavailable):
		response.ServiceUnavailable(c, "temporary contention, please retry")
	default:
		h.logger.Error("event operation failed", zap.Error(err))
		response.Internal(c, "internal error")
	}
}
