package episode

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jestelle/slash-podcast/internal/domain/document"
	"github.com/jestelle/slash-podcast/pkg/response"
)

// Handler wires HTTP routes to the Service.
type Handler struct {
	service *Service
}

// NewHandler returns a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts podcast routes. generationMW throttles the
// expensive creation endpoint.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, generationMW gin.HandlerFunc) {
	podcasts := rg.Group("/podcasts")
	{
		podcasts.POST("", generationMW, h.create)
		podcasts.GET("", h.list)
		podcasts.GET("/:id", h.get)
		podcasts.GET("/:id/audio", h.audio)
	}
}

func (h *Handler) create(c *gin.Context) {
	ctx := c.Request.Context()

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("pdf")
		if err != nil {
			response.BadRequest(c, "missing_pdf", "multipart requests must carry a pdf file")
			return
		}
		opened, err := file.Open()
		if err != nil {
			response.InternalServerError(c, err)
			return
		}
		defer opened.Close()

		ep, err := h.service.CreateFromPDF(ctx, c.PostForm("title"), file.Filename, opened, file.Size)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.Header("Location", "/api/v1/podcasts/"+ep.ID.String())
		c.JSON(http.StatusAccepted, ep)
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}
	ep, err := h.service.CreateFromDocument(ctx, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Location", "/api/v1/podcasts/"+ep.ID.String())
	c.JSON(http.StatusAccepted, ep)
}

func (h *Handler) list(c *gin.Context) {
	filter := Filter{
		Limit:  response.GetLimit(c, 50, 200),
		Offset: response.GetOffset(c),
	}
	ctx := c.Request.Context()
	episodes, total, err := h.service.List(ctx, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Paginated(c, episodes, total, filter.Offset, filter.Limit)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := h.episodeID(c)
	if !ok {
		return
	}
	ep, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ep)
}

func (h *Handler) audio(c *gin.Context) {
	id, ok := h.episodeID(c)
	if !ok {
		return
	}
	path, err := h.service.Audio(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Type", "audio/mpeg")
	c.File(path)
}

func (h *Handler) episodeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid_id", "episode id must be a uuid")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var verr validator.ValidationErrors
	switch {
	case errors.As(err, &verr):
		response.ValidationError(c, err)
	case errors.Is(err, ErrMissingSource):
		response.BadRequest(c, "missing_source", err.Error())
	case errors.Is(err, document.ErrInvalidSource):
		response.BadRequest(c, "invalid_document", "could not extract a document id from the given value")
	case errors.Is(err, document.ErrTooLarge):
		response.PayloadTooLarge(c, "pdf exceeds the configured size limit")
	case errors.Is(err, document.ErrNoTextContent):
		response.UnprocessableEntity(c, "no_text_content", "no text content found in the source")
	case errors.Is(err, document.ErrPermissionDenied):
		response.Forbidden(c, "permission denied for the requested document")
	case errors.Is(err, document.ErrAuthRequired):
		response.Unauthorized(c, "google docs authentication required")
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "episode")
	case errors.Is(err, ErrAudioNotReady):
		response.Conflict(c, "audio_not_ready", "episode audio is not ready yet")
	default:
		response.InternalServerError(c, err)
	}
}
