package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	allocationapp "github.com/rentbooks/backend/internal/application/allocation"
	"github.com/rentbooks/backend/internal/interfaces/http/dto"
	"github.com/rentbooks/backend/internal/interfaces/http/middleware"
)

// PropertyHandler handles property API endpoints
type PropertyHandler struct {
	BaseHandler
	service *allocationapp.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(service *allocationapp.PropertyService) *PropertyHandler {
	return &PropertyHandler{service: service}
}

// CreateProperty registers a new property
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	var req allocationapp.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.service.CreateProperty(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetProperty returns a property by ID
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetProperty(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListProperties returns all properties ordered by code
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	responses, err := h.service.ListProperties(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, responses, int64(len(responses)))
}

// DeactivateProperty removes a property from future selections
func (h *PropertyHandler) DeactivateProperty(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	resp, err := h.service.DeactivateProperty(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *PropertyHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid property ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid property ID")
		return uuid.Nil, false
	}
	return id, true
}

// RegisterRoutes registers property routes
func (h *PropertyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	properties := rg.Group("/properties")
	{
		properties.GET("", h.ListProperties)
		properties.POST("", h.CreateProperty)
		properties.GET(":id", h.GetProperty)
		properties.POST(":id/deactivate", h.DeactivateProperty)
	}
}
