package handler

import (
	"github.com/gin-gonic/gin"
	allocationapp "github.com/rentbooks/backend/internal/application/allocation"
	"github.com/rentbooks/backend/internal/interfaces/http/middleware"
)

// ExpenseSplitHandler handles expense split API endpoints
type ExpenseSplitHandler struct {
	BaseHandler
	service *allocationapp.ExpenseSplitService
}

// NewExpenseSplitHandler creates a new ExpenseSplitHandler
func NewExpenseSplitHandler(service *allocationapp.ExpenseSplitService) *ExpenseSplitHandler {
	return &ExpenseSplitHandler{service: service}
}

// PreviewExpenseSplit computes the per-property shares without writing
// anything
func (h *ExpenseSplitHandler) PreviewExpenseSplit(c *gin.Context) {
	var req allocationapp.ExpenseSplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.service.PreviewExpenseSplit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CommitExpenseSplit computes the split and writes one transaction per
// property
func (h *ExpenseSplitHandler) CommitExpenseSplit(c *gin.Context) {
	var req allocationapp.ExpenseSplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.service.CommitExpenseSplit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RegisterRoutes registers expense split routes
func (h *ExpenseSplitHandler) RegisterRoutes(rg *gin.RouterGroup) {
	splits := rg.Group("/expense-splits")
	{
		splits.POST("/preview", h.PreviewExpenseSplit)
		splits.POST("", h.CommitExpenseSplit)
	}
}
