package registrations

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherhq/events-api/internal/models"
	"github.com/gatherhq/events-api/internal/pagination"
	"github.com/gatherhq/events-api/internal/timezone"
	"github.com/gatherhq/events-api/pkg/database"
	"github.com/gatherhq/events-api/pkg/response"
)

const defaultPerPage = 20

// RegisterRequest is the body for POST /events/:id/register.
type RegisterRequest struct {
	Name  string `json:"name" binding:"required,max=255"`
	Email string `json:"email" binding:"required,email,max=255"`
}

// Resource is the wire form of an attendee with timestamps rendered in the
// request's resolved timezone.
type Resource struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

// NewResource renders an attendee in the given timezone.
func NewResource(a *models.Attendee, tz string) (Resource, error) {
	created, err := timezone.Format(a.CreatedAt, tz)
	if err != nil {
		return Resource{}, err
	}
	updated, err := timezone.Format(a.UpdatedAt, tz)
	if err != nil {
		return Resource{}, err
	}
	return Resource{
		ID:        a.ID,
		EventID:   a.EventID,
		Name:      a.Name,
		Email:     a.Email,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Register handles POST /events/:id/register.
func (h *Handler) Register(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.UnprocessableEntity(c, "invalid request: "+err.Error())
		return
	}

	attendee, err := h.svc.Register(c.Request.Context(), eventID, req.Name, req.Email)
	if err != nil {
		h.writeError(c, err)
		return
	}

	tz := timezone.Resolve(c.Query("tz"), c.GetHeader("X-Timezone"))
	res, err := NewResource(attendee, tz)
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	response.Created(c, res)
}

// List handles GET /events/:id/attendees with search (q), sort, and
// pagination query parameters.
func (h *Handler) List(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}

	params := pagination.Parse(c.Query("page"), c.Query("per_page"), defaultPerPage)
	list, meta, err := h.svc.List(c.Request.Context(), eventID, c.Query("q"), c.Query("sort"), params)
	if err != nil {
		h.writeError(c, err)
		return
	}

	tz := timezone.Resolve(c.Query("tz"), c.GetHeader("X-Timezone"))
	resources := make([]Resource, 0, len(list))
	for i := range list {
		res, err := NewResource(&list[i], tz)
		if err != nil {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		resources = append(resources, res)
	}
	response.Page(c, resources, meta)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var ve models.ValidationError
	switch {
	case errors.Is(err, models.ErrNotFound):
		response.NotFound(c, "event not found")
	case errors.Is(err, models.ErrEventFull):
		response.Conflict(c, "Event is at full capacity")
	case errors.Is(err, models.ErrAlreadyRegistered):
		response.Conflict(c, "You are already registered for this event with this email")
	case errors.As(err, &ve):
		response.UnprocessableEntity(c, ve.Error())
	case errors.Is(err, database.ErrUnavailable):
		response.ServiceUnavailable(c, "temporary contention, please retry")
	default:
		h.logger.Error("registration operation failed", zap.Error(err))
		response.Internal(c, "internal error")
	}
}
