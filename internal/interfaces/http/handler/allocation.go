package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	allocationapp "github.com/rentbooks/backend/internal/application/allocation"
	"github.com/rentbooks/backend/internal/interfaces/http/dto"
	"github.com/rentbooks/backend/internal/interfaces/http/middleware"
)

// AllocationHandler handles tax declaration API endpoints
type AllocationHandler struct {
	BaseHandler
	service *allocationapp.AllocationService
}

// NewAllocationHandler creates a new AllocationHandler
func NewAllocationHandler(service *allocationapp.AllocationService) *AllocationHandler {
	return &AllocationHandler{service: service}
}

// CreateDeclaration creates a new declaration draft
func (h *AllocationHandler) CreateDeclaration(c *gin.Context) {
	var req allocationapp.CreateDeclarationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.service.CreateDeclaration(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// UpdateDeclaration edits an uncommitted declaration and returns it to draft
func (h *AllocationHandler) UpdateDeclaration(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req allocationapp.UpdateDeclarationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.service.UpdateDeclaration(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetDeclaration returns a declaration by ID
func (h *AllocationHandler) GetDeclaration(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetDeclaration(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListDeclarations returns all declarations, newest first
func (h *AllocationHandler) ListDeclarations(c *gin.Context) {
	responses, err := h.service.ListDeclarations(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, responses, int64(len(responses)))
}

// PreviewDeclaration computes and stores the allocation plan for a declaration
func (h *AllocationHandler) PreviewDeclaration(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	resp, err := h.service.PreviewDeclaration(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CommitDeclaration emits the previewed plan's transactions and finalizes
// the declaration
func (h *AllocationHandler) CommitDeclaration(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	resp, err := h.service.CommitDeclaration(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *AllocationHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid declaration ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid declaration ID")
		return uuid.Nil, false
	}
	return id, true
}

// RegisterRoutes registers declaration routes
func (h *AllocationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	declarations := rg.Group("/declarations")
	{
		declarations.GET("", h.ListDeclarations)
		declarations.POST("", h.CreateDeclaration)
		declarations.GET(":id", h.GetDeclaration)
		declarations.PUT(":id", h.UpdateDeclaration)
		declarations.POST(":id/preview", h.PreviewDeclaration)
		declarations.POST(":id/commit", h.CommitDeclaration)
	}
}
